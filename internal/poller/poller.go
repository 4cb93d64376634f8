// internal/poller/poller.go
package poller

import (
	"errors"
	"log/slog"
	"time"

	"github.com/tamzrod/ec-probe/internal/classify"
	"github.com/tamzrod/ec-probe/internal/clock"
	"github.com/tamzrod/ec-probe/internal/report"
	"github.com/tamzrod/ec-probe/internal/snapshot"
)

// Config is the runtime config the poller needs.
type Config struct {
	Mode     Mode
	Interval time.Duration
	Duration time.Duration // 0 = unbounded
	Capacity int
	Trail    int

	Clock     clock.Clock
	Publisher Publisher
	Logger    *slog.Logger
}

// Poller owns the active controller and the session history. It is a
// single-threaded, clock-driven reader: one capture, one render, one
// sleep per tick.
type Poller struct {
	cfg   Config
	ctrl  snapshot.Reader
	sink  Sink
	store *snapshot.Store
	log   *slog.Logger
}

// New creates a poller with immutable config. The store is preallocated
// here.
func New(cfg Config, ctrl snapshot.Reader, sink Sink) (*Poller, error) {
	if ctrl == nil {
		return nil, errors.New("poller: controller required")
	}
	if sink == nil {
		return nil, errors.New("poller: sink required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if cfg.Duration < 0 {
		return nil, errors.New("poller: duration must be >= 0")
	}
	if cfg.Trail <= 0 {
		cfg.Trail = classify.DefaultTrail
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Poller{
		cfg:   cfg,
		ctrl:  ctrl,
		sink:  sink,
		store: snapshot.NewStore(cfg.Capacity),
		log:   logger,
	}, nil
}

// MaxTicks is the iteration cap derived from Duration/Interval. Zero
// means unbounded. A non-zero duration shorter than one interval still
// allows one tick.
func (p *Poller) MaxTicks() int {
	if p.cfg.Duration <= 0 {
		return 0
	}
	n := int(p.cfg.Duration / p.cfg.Interval)
	if n < 1 {
		n = 1
	}
	return n
}

// Store exposes the session history. Only the poller mutates it.
func (p *Poller) Store() *snapshot.Store { return p.store }

// PollOnce performs exactly one capture and appends it.
// All-or-nothing: any failed read aborts the tick and nothing is stored.
// accepted is false when the store is already full.
func (p *Poller) PollOnce() (accepted bool, err error) {
	s, err := snapshot.Capture(p.ctrl)
	if err != nil {
		return false, err
	}
	return p.store.Append(s), nil
}

// render classifies the newest tick for the mode in effect.
func (p *Poller) render() error {
	all := p.store.All()
	n := len(all)
	tick := n - 1

	switch p.cfg.Mode {
	case ModeWatch:
		current := all[n-1]
		previous := current
		if n > 1 {
			previous = all[n-2]
		}
		return p.sink.Watch(tick, classify.Watch(current, previous, all[:n-1]))
	default:
		return p.sink.Monitor(tick, classify.Monitor(all, p.cfg.Trail))
	}
}

// WriteReport renders the whole history to path. It is never cancelled.
func (p *Poller) WriteReport(path string, f report.Format) error {
	return report.WriteFile(path, p.store.All(), f)
}
