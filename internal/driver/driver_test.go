package driver

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rickgao/levelfeed/internal/scheduler"
	"github.com/rickgao/levelfeed/internal/study"
)

// fakeStudy records calls and detects overlapping ticks.
type fakeStudy struct {
	mu        sync.Mutex
	resets    int
	ticks     int
	suspended int
	inTick    atomic.Bool
	overlap   atomic.Bool
	script    []scheduler.ActionKind
}

func (f *fakeStudy) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
}

func (f *fakeStudy) Tick(in study.TickInput) scheduler.Action {
	if !f.inTick.CompareAndSwap(false, true) {
		f.overlap.Store(true)
	}
	defer f.inTick.Store(false)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.ticks++
	if in.Suspended {
		f.suspended++
	}

	if len(f.script) > 0 {
		k := f.script[0]
		f.script = f.script[1:]
		return scheduler.Action{Kind: k}
	}
	return scheduler.Action{Kind: scheduler.NoOp}
}

func (f *fakeStudy) counts() (resets, ticks, suspended int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resets, f.ticks, f.suspended
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

func TestDriver_StartStop(t *testing.T) {
	s := &fakeStudy{}
	d := New(Config{TickInterval: 5 * time.Millisecond}, s, wallClock{}, nil)

	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	time.Sleep(60 * time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := d.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	resets, ticks, _ := s.counts()
	if resets != 1 {
		t.Errorf("resets = %d, want 1", resets)
	}
	if ticks < 2 {
		t.Errorf("ticks = %d, want >= 2", ticks)
	}
	if int64(ticks) != d.Ticks() {
		t.Errorf("Ticks() = %d, want %d", d.Ticks(), ticks)
	}
	if s.overlap.Load() {
		t.Error("ticks overlapped")
	}
}

func TestDriver_Suspend(t *testing.T) {
	s := &fakeStudy{}
	d := New(Config{TickInterval: 5 * time.Millisecond}, s, wallClock{}, nil)
	d.Suspend(true)
	if !d.Suspended() {
		t.Fatal("Suspended() = false after Suspend(true)")
	}

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	d.Stop(stopCtx)

	_, ticks, suspended := s.counts()
	if ticks == 0 || suspended != ticks {
		t.Errorf("suspended = %d of %d ticks, want all", suspended, ticks)
	}
}

func TestNew_DefaultTickInterval(t *testing.T) {
	d := New(Config{}, &fakeStudy{}, wallClock{}, nil)
	if d.cfg.TickInterval != DefaultConfig().TickInterval {
		t.Errorf("TickInterval = %v, want %v", d.cfg.TickInterval, DefaultConfig().TickInterval)
	}
}

func TestRunOnce(t *testing.T) {
	s := &fakeStudy{script: []scheduler.ActionKind{
		scheduler.StartFetch,
		scheduler.AwaitMore,
		scheduler.AwaitMore,
		scheduler.HandleSuccess,
		scheduler.StartFetch,
	}}

	a, err := RunOnce(context.Background(), s, wallClock{}, time.Millisecond, 100)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if a.Kind != scheduler.HandleSuccess {
		t.Errorf("Kind = %v, want %v", a.Kind, scheduler.HandleSuccess)
	}

	resets, ticks, _ := s.counts()
	if resets != 1 || ticks != 4 {
		t.Errorf("resets/ticks = %d/%d, want 1/4", resets, ticks)
	}
}

func TestRunOnce_MaxTicks(t *testing.T) {
	s := &fakeStudy{}

	a, err := RunOnce(context.Background(), s, wallClock{}, time.Millisecond, 3)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if a.Kind != scheduler.NoOp {
		t.Errorf("Kind = %v, want %v", a.Kind, scheduler.NoOp)
	}
	if _, ticks, _ := s.counts(); ticks != 3 {
		t.Errorf("ticks = %d, want 3", ticks)
	}
}

func TestRunOnce_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := RunOnce(ctx, &fakeStudy{}, wallClock{}, time.Hour, 10); err == nil {
		t.Error("expected context error")
	}
}
