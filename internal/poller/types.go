// internal/poller/types.go
package poller

import (
	"github.com/tamzrod/ec-probe/internal/classify"
	"github.com/tamzrod/ec-probe/internal/snapshot"
	"github.com/tamzrod/ec-probe/internal/status"
)

// Mode selects the per-tick classification.
type Mode int

const (
	// ModeMonitor renders trends of registers that moved in the session.
	ModeMonitor Mode = iota
	// ModeWatch renders the full grid tagged against the previous tick.
	ModeWatch
)

func (m Mode) String() string {
	switch m {
	case ModeMonitor:
		return "monitor"
	case ModeWatch:
		return "watch"
	}
	return "unknown"
}

// StopReason records why Run returned.
type StopReason int

const (
	StopNone StopReason = iota
	StopCapacity
	StopSignal
	StopDuration
	StopError
)

func (r StopReason) String() string {
	switch r {
	case StopCapacity:
		return "capacity"
	case StopSignal:
		return "signal"
	case StopDuration:
		return "duration"
	case StopError:
		return "error"
	}
	return "none"
}

// Sink receives classified register data once per tick. It owns colors
// and layout.
type Sink interface {
	Watch(tick int, grid classify.Grid) error
	Monitor(tick int, trends []classify.Trend) error
}

// Publisher republishes captures. Failures are logged, never fatal.
type Publisher interface {
	Publish(s snapshot.Snapshot) error
	PublishStatus(s status.Snapshot) error
}

// Result is the outcome of one session.
type Result struct {
	Ticks  int
	Reason StopReason
	Err    error // non-nil only when Reason is StopError
}
