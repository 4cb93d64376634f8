// internal/poller/poller_test.go
package poller

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tamzrod/ec-probe/internal/classify"
	"github.com/tamzrod/ec-probe/internal/clock"
	cfg "github.com/tamzrod/ec-probe/internal/config"
	"github.com/tamzrod/ec-probe/internal/ec"
	"github.com/tamzrod/ec-probe/internal/ec/ectest"
	"github.com/tamzrod/ec-probe/internal/snapshot"
	"github.com/tamzrod/ec-probe/internal/status"
)

// ---- fakes ----

type fakeSink struct {
	watches  []classify.Grid
	monitors [][]classify.Trend
	ticks    []int
	fail     error
}

func (f *fakeSink) Watch(tick int, g classify.Grid) error {
	f.ticks = append(f.ticks, tick)
	f.watches = append(f.watches, g)
	return f.fail
}

func (f *fakeSink) Monitor(tick int, trends []classify.Trend) error {
	f.ticks = append(f.ticks, tick)
	f.monitors = append(f.monitors, trends)
	return f.fail
}

type fakePublisher struct {
	published int
	statuses  []status.Snapshot
	fail      error
}

func (f *fakePublisher) Publish(snapshot.Snapshot) error {
	f.published++
	return f.fail
}

func (f *fakePublisher) PublishStatus(s status.Snapshot) error {
	f.statuses = append(f.statuses, s)
	return f.fail
}

func openFake(t *testing.T) *ectest.Controller {
	t.Helper()
	c := &ectest.Controller{}
	if err := c.Open(); err != nil {
		t.Fatalf("open: %v", err)
	}
	return c
}

func newPoller(t *testing.T, c Config, ctrl snapshot.Reader, sink Sink) (*Poller, *clock.FakeClock) {
	t.Helper()
	clk := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	c.Clock = clk
	if c.Interval == 0 {
		c.Interval = 500 * time.Millisecond
	}
	p, err := New(c, ctrl, sink)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	return p, clk
}

// ---- tests ----

func TestNew_Validation(t *testing.T) {
	ctrl := openFake(t)
	if _, err := New(Config{Interval: time.Second}, nil, &fakeSink{}); err == nil {
		t.Fatalf("expected controller error")
	}
	if _, err := New(Config{Interval: time.Second}, ctrl, nil); err == nil {
		t.Fatalf("expected sink error")
	}
	if _, err := New(Config{}, ctrl, &fakeSink{}); err == nil {
		t.Fatalf("expected interval error")
	}
	if _, err := New(Config{Interval: time.Second, Duration: -1}, ctrl, &fakeSink{}); err == nil {
		t.Fatalf("expected duration error")
	}
}

func TestPollOnce_Success(t *testing.T) {
	ctrl := openFake(t)
	ctrl.Set(0x10, 0x42)

	p, _ := newPoller(t, Config{Capacity: 2}, ctrl, &fakeSink{})

	ok, err := p.PollOnce()
	if err != nil || !ok {
		t.Fatalf("PollOnce ok=%v err=%v", ok, err)
	}
	if p.Store().Len() != 1 || p.Store().At(0)[0x10] != 0x42 {
		t.Fatalf("snapshot not stored")
	}
}

func TestPollOnce_Failure(t *testing.T) {
	ctrl := openFake(t)
	ctrl.ReadErr = map[int]error{0xC0: errors.New("ibf stuck")}

	p, _ := newPoller(t, Config{Capacity: 2}, ctrl, &fakeSink{})

	if _, err := p.PollOnce(); err == nil {
		t.Fatalf("expected error, got nil")
	}
	if p.Store().Len() != 0 {
		t.Fatalf("failed capture must not be stored")
	}
}

func TestRun_StopsAtCapacity(t *testing.T) {
	const capacity = 5
	ctrl := openFake(t)
	sink := &fakeSink{}
	p, clk := newPoller(t, Config{Capacity: capacity}, ctrl, sink)

	var stop atomic.Bool
	res := p.Run(&stop)

	if res.Reason != StopCapacity || res.Err != nil {
		t.Fatalf("expected capacity stop, got %v err=%v", res.Reason, res.Err)
	}
	if res.Ticks != capacity || p.Store().Len() != capacity {
		t.Fatalf("ticks=%d stored=%d want %d", res.Ticks, p.Store().Len(), capacity)
	}
	if ctrl.Reads != capacity*snapshot.Size {
		t.Fatalf("reads=%d want %d", ctrl.Reads, capacity*snapshot.Size)
	}
	if len(clk.Sleeps()) != capacity {
		t.Fatalf("sleeps=%d want %d", len(clk.Sleeps()), capacity)
	}
}

func TestRun_StopsAtDuration(t *testing.T) {
	ctrl := openFake(t)
	p, _ := newPoller(t, Config{
		Interval: 100 * time.Millisecond,
		Duration: 350 * time.Millisecond,
		Capacity: 100,
	}, ctrl, &fakeSink{})

	if p.MaxTicks() != 3 {
		t.Fatalf("MaxTicks=%d want 3", p.MaxTicks())
	}

	res := p.Run(nil)
	if res.Reason != StopDuration || res.Ticks != 3 {
		t.Fatalf("got reason=%v ticks=%d", res.Reason, res.Ticks)
	}
}

func TestMaxTicks_ShortDurationAllowsOneTick(t *testing.T) {
	ctrl := openFake(t)
	p, _ := newPoller(t, Config{Interval: time.Second, Duration: time.Millisecond}, ctrl, &fakeSink{})
	if p.MaxTicks() != 1 {
		t.Fatalf("MaxTicks=%d want 1", p.MaxTicks())
	}

	p, _ = newPoller(t, Config{Interval: time.Second}, ctrl, &fakeSink{})
	if p.MaxTicks() != 0 {
		t.Fatalf("MaxTicks=%d want 0 (unbounded)", p.MaxTicks())
	}
}

func TestRun_SignalDuringSleepPreventsNextCapture(t *testing.T) {
	ctrl := openFake(t)
	p, clk := newPoller(t, Config{Capacity: 100}, ctrl, &fakeSink{})

	var stop atomic.Bool
	clk.OnSleep = func(time.Duration) {
		if len(clk.Sleeps()) == 2 {
			stop.Store(true)
		}
	}

	res := p.Run(&stop)
	if res.Reason != StopSignal {
		t.Fatalf("expected signal stop, got %v", res.Reason)
	}
	if res.Ticks != 2 || ctrl.Reads != 2*snapshot.Size {
		t.Fatalf("ticks=%d reads=%d: capture started after stop", res.Ticks, ctrl.Reads)
	}
}

func TestRun_SignalDuringCaptureLetsItFinish(t *testing.T) {
	ctrl := openFake(t)
	p, _ := newPoller(t, Config{Capacity: 100}, ctrl, &fakeSink{})

	var stop atomic.Bool
	ctrl.OnRead = func(addr int) {
		if addr == 100 {
			stop.Store(true)
		}
	}

	res := p.Run(&stop)
	if res.Reason != StopSignal {
		t.Fatalf("expected signal stop, got %v", res.Reason)
	}
	if res.Ticks != 1 || p.Store().Len() != 1 {
		t.Fatalf("in-flight capture must complete: ticks=%d stored=%d", res.Ticks, p.Store().Len())
	}
	if ctrl.Reads != snapshot.Size {
		t.Fatalf("reads=%d want %d", ctrl.Reads, snapshot.Size)
	}
}

func TestRun_SignalBeforeStart(t *testing.T) {
	ctrl := openFake(t)
	p, _ := newPoller(t, Config{}, ctrl, &fakeSink{})

	var stop atomic.Bool
	stop.Store(true)

	res := p.Run(&stop)
	if res.Reason != StopSignal || res.Ticks != 0 || ctrl.Reads != 0 {
		t.Fatalf("got reason=%v ticks=%d reads=%d", res.Reason, res.Ticks, ctrl.Reads)
	}
}

func TestRun_CaptureErrorIsFatal(t *testing.T) {
	ctrl := openFake(t)
	pub := &fakePublisher{}
	p, _ := newPoller(t, Config{Capacity: 100, Publisher: pub}, ctrl, &fakeSink{})

	calls := 0
	ctrl.OnRead = func(addr int) {
		if addr == 0 {
			calls++
			if calls == 3 {
				ctrl.ReadErr = map[int]error{7: ec.ErrTimeout}
			}
		}
	}

	res := p.Run(nil)
	if res.Reason != StopError {
		t.Fatalf("expected error stop, got %v", res.Reason)
	}
	if !errors.Is(res.Err, ec.ErrTimeout) || !errors.Is(res.Err, ec.ErrRegisterRead) {
		t.Fatalf("unexpected err: %v", res.Err)
	}
	if res.Ticks != 2 || p.Store().Len() != 2 {
		t.Fatalf("ticks=%d stored=%d want 2", res.Ticks, p.Store().Len())
	}

	last := pub.statuses[len(pub.statuses)-1]
	if last.Health != status.HealthError || last.LastErrorCode != status.CodeTimeout {
		t.Fatalf("unexpected final status: %+v", last)
	}
}

func TestRun_WatchTagsAgainstPrevious(t *testing.T) {
	ctrl := openFake(t)
	sink := &fakeSink{}
	p, clk := newPoller(t, Config{Mode: ModeWatch, Capacity: 3}, ctrl, sink)

	clk.OnSleep = func(time.Duration) {
		switch len(clk.Sleeps()) {
		case 1:
			ctrl.Set(0x20, 0x01)
		case 2:
			ctrl.Set(0x21, 0xFF)
		}
	}

	res := p.Run(nil)
	if res.Ticks != 3 || len(sink.watches) != 3 {
		t.Fatalf("ticks=%d renders=%d", res.Ticks, len(sink.watches))
	}

	if g := sink.watches[0]; g[0x20].Tag != classify.AllZeros {
		t.Fatalf("baseline tick: got %v", g[0x20].Tag)
	}
	if g := sink.watches[1]; g[0x20].Tag != classify.ChangedNow {
		t.Fatalf("tick 1: 0x20 got %v", g[0x20].Tag)
	}
	g := sink.watches[2]
	if g[0x20].Tag != classify.ChangedInWindow {
		t.Fatalf("tick 2: 0x20 got %v", g[0x20].Tag)
	}
	if g[0x21].Tag != classify.ChangedNow {
		t.Fatalf("tick 2: 0x21 got %v", g[0x21].Tag)
	}
	if sink.ticks[2] != 2 {
		t.Fatalf("tick index=%d want 2", sink.ticks[2])
	}
}

func TestRun_MonitorShowsOnlyMovingRegisters(t *testing.T) {
	ctrl := openFake(t)
	ctrl.Set(0x07, 0x42)
	sink := &fakeSink{}
	p, clk := newPoller(t, Config{Mode: ModeMonitor, Capacity: 10}, ctrl, sink)

	clk.OnSleep = func(time.Duration) {
		if len(clk.Sleeps()) == 4 {
			ctrl.Set(0x09, 0x01)
		}
	}

	p.Run(nil)

	last := sink.monitors[len(sink.monitors)-1]
	if len(last) != 1 || last[0].Addr != 0x09 {
		t.Fatalf("unexpected trends: %+v", last)
	}
	if len(sink.monitors[0]) != 0 {
		t.Fatalf("first tick cannot show changes")
	}
}

func TestRun_SinkErrorReportsHealthError(t *testing.T) {
	ctrl := openFake(t)
	pub := &fakePublisher{}
	sinkErr := errors.New("stdout closed")
	p, clk := newPoller(t, Config{Capacity: 100, Publisher: pub}, ctrl, &fakeSink{fail: sinkErr})

	res := p.Run(nil)
	if res.Reason != StopError || !errors.Is(res.Err, sinkErr) {
		t.Fatalf("got reason=%v err=%v", res.Reason, res.Err)
	}
	if res.Ticks != 1 || len(clk.Sleeps()) != 0 {
		t.Fatalf("ticks=%d sleeps=%d want 1, 0", res.Ticks, len(clk.Sleeps()))
	}

	last := pub.statuses[len(pub.statuses)-1]
	if last.Health != status.HealthError || last.LastErrorCode != status.CodeGeneric || last.Ticks != 1 {
		t.Fatalf("unexpected final status: %+v", last)
	}
}

func TestRun_PublisherFailureNotFatal(t *testing.T) {
	ctrl := openFake(t)
	pub := &fakePublisher{fail: errors.New("connection reset")}
	p, _ := newPoller(t, Config{Capacity: 3, Publisher: pub}, ctrl, &fakeSink{})

	res := p.Run(nil)
	if res.Reason != StopCapacity || res.Ticks != 3 {
		t.Fatalf("got reason=%v ticks=%d", res.Reason, res.Ticks)
	}
	if pub.published != 3 {
		t.Fatalf("published=%d want 3", pub.published)
	}
	final := pub.statuses[len(pub.statuses)-1]
	if final.Health != status.HealthStopped || final.Ticks != 3 {
		t.Fatalf("unexpected final status: %+v", final)
	}
}

func TestBuild_FromConfig(t *testing.T) {
	c := &cfg.Config{Session: cfg.SessionConfig{DurationMs: 2000}}
	cfg.Normalize(c)

	p, closeFn, err := Build(c, ModeMonitor, openFake(t), &fakeSink{}, nil)
	if err != nil {
		t.Fatalf("Build err=%v", err)
	}
	defer closeFn()

	if p.MaxTicks() != 4 {
		t.Fatalf("MaxTicks=%d want 4", p.MaxTicks())
	}
	if p.Store().Cap() != cfg.DefaultCapacity {
		t.Fatalf("capacity=%d", p.Store().Cap())
	}
}

func TestModeAndReasonStrings(t *testing.T) {
	if ModeWatch.String() != "watch" || StopDuration.String() != "duration" {
		t.Fatalf("unexpected names")
	}
}
