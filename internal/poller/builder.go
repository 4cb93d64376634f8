// internal/poller/builder.go
package poller

import (
	"log/slog"
	"time"

	cfg "github.com/tamzrod/ec-probe/internal/config"
	"github.com/tamzrod/ec-probe/internal/mirror"
	"github.com/tamzrod/ec-probe/internal/snapshot"
)

// Build constructs a Poller from a validated, normalized config and wires
// the optional mirror. The returned closer releases the mirror
// connection; the controller stays owned by the caller.
func Build(c *cfg.Config, mode Mode, ctrl snapshot.Reader, sink Sink, logger *slog.Logger) (*Poller, func() error, error) {
	pc := Config{
		Mode:     mode,
		Interval: time.Duration(c.Session.IntervalMs) * time.Millisecond,
		Duration: time.Duration(c.Session.DurationMs) * time.Millisecond,
		Capacity: c.Session.Capacity,
		Trail:    c.Session.Trail,
		Logger:   logger,
	}

	closer := func() error { return nil }

	if m := c.Mirror; m != nil {
		mr, err := mirror.New(mirror.Config{
			Endpoint:      m.Endpoint,
			UnitID:        m.UnitID,
			Timeout:       time.Duration(m.TimeoutMs) * time.Millisecond,
			Address:       m.Address,
			StatusAddress: m.StatusAddress,
		})
		if err != nil {
			return nil, nil, err
		}
		pc.Publisher = mr
		closer = mr.Close
	}

	p, err := New(pc, ctrl, sink)
	if err != nil {
		_ = closer()
		return nil, nil, err
	}

	return p, closer, nil
}
