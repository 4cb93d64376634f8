// internal/poller/runner.go
package poller

import (
	"sync/atomic"

	"github.com/tamzrod/ec-probe/internal/status"
)

// Run drives the session until a stop condition holds:
//
//	Idle -> Running -> Stopped(capacity | signal | duration | error)
//
// Stop conditions are checked before each capture, so a stop flag
// raised during the sleep prevents the next capture while a flag raised
// mid-capture lets that capture finish. No retries: a failed capture
// ends the session with StopError.
func (p *Poller) Run(stop *atomic.Bool) Result {
	var res Result
	maxTicks := p.MaxTicks()

	for {
		if r := p.stopReason(stop, res.Ticks, maxTicks); r != StopNone {
			res.Reason = r
			break
		}

		accepted, err := p.PollOnce()
		if err != nil {
			return p.fail(res, "capture failed", err)
		}
		if !accepted {
			res.Reason = StopCapacity
			break
		}
		res.Ticks++

		p.publish(res.Ticks)

		if err := p.render(); err != nil {
			return p.fail(res, "render failed", err)
		}

		p.cfg.Clock.Sleep(p.cfg.Interval)
	}

	p.publishStatus(status.HealthStopped, nil, res.Ticks)
	p.log.Info("session stopped", "reason", res.Reason.String(), "ticks", res.Ticks)
	return res
}

// fail ends the session with StopError. The mirror sees HealthError
// with the cause's code.
func (p *Poller) fail(res Result, msg string, err error) Result {
	res.Reason = StopError
	res.Err = err
	p.publishStatus(status.HealthError, err, res.Ticks)
	p.log.Error(msg, "tick", res.Ticks, "error", err)
	return res
}

func (p *Poller) stopReason(stop *atomic.Bool, ticks, maxTicks int) StopReason {
	switch {
	case stop != nil && stop.Load():
		return StopSignal
	case maxTicks > 0 && ticks >= maxTicks:
		return StopDuration
	case p.store.Full():
		return StopCapacity
	}
	return StopNone
}

func (p *Poller) publish(ticks int) {
	if p.cfg.Publisher == nil {
		return
	}
	s, _ := p.store.Last()
	if err := p.cfg.Publisher.Publish(s); err != nil {
		p.log.Warn("mirror publish failed", "tick", ticks, "error", err)
	}
	p.publishStatus(status.HealthOK, nil, ticks)
}

func (p *Poller) publishStatus(health uint16, err error, ticks int) {
	if p.cfg.Publisher == nil {
		return
	}
	st := status.Snapshot{
		Health:        health,
		LastErrorCode: status.ErrorCode(err),
		Ticks:         uint32(ticks),
	}
	if err := p.cfg.Publisher.PublishStatus(st); err != nil {
		p.log.Warn("mirror status failed", "error", err)
	}
}
