package driver

import (
	"context"
	"testing"
	"time"

	"github.com/rickgao/levelfeed/internal/chart"
	"github.com/rickgao/levelfeed/internal/render"
	"github.com/rickgao/levelfeed/internal/scheduler"
	"github.com/rickgao/levelfeed/internal/study"
)

// stalledTransport accepts every request and never answers.
type stalledTransport struct{ started int }

func (s *stalledTransport) StartFetch(url string) bool {
	s.started++
	return true
}

func (s *stalledTransport) CurrentResponse() string { return "" }

type utcClock struct{}

func (utcClock) Now() time.Time { return time.Now().UTC() }

func (utcClock) TradingDayStart(t time.Time) time.Time {
	return t.Truncate(24 * time.Hour)
}

func newStalledSession(timeoutTicks int) (*study.Session, *stalledTransport) {
	transport := &stalledTransport{}
	renderer := render.New(chart.NewMemory(), utcClock{}, render.DefaultBaseOffset, nil)
	settings := study.DefaultSettings()
	settings.URL = "https://feeds.example.com/levels.csv"
	settings.Interval = time.Hour

	sched := scheduler.New(scheduler.Config{TimeoutTicks: timeoutTicks})
	return study.New(settings, sched, transport, renderer, nil, nil), transport
}

func TestRunOnce_StalledFeedTimesOut(t *testing.T) {
	tests := []struct {
		name         string
		timeoutTicks int
	}{
		{"small threshold", 5},
		{"one tick threshold", 1},
		{"default threshold", scheduler.DefaultTimeoutTicks},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, transport := newStalledSession(tt.timeoutTicks)

			a, err := RunOnce(context.Background(), s, utcClock{}, 0, TicksToTimeout(tt.timeoutTicks))
			if err != nil {
				t.Fatalf("RunOnce: %v", err)
			}
			if a.Kind != scheduler.HandleTimeout {
				t.Errorf("Kind = %v, want %v", a.Kind, scheduler.HandleTimeout)
			}
			if transport.started != 1 {
				t.Errorf("requests started = %d, want 1", transport.started)
			}
			if got := s.Stats().Timeouts; got != 1 {
				t.Errorf("Timeouts = %d, want 1", got)
			}
		})
	}
}

func TestRunOnce_OneTickShortOfTimeout(t *testing.T) {
	s, _ := newStalledSession(5)

	a, err := RunOnce(context.Background(), s, utcClock{}, 0, TicksToTimeout(5)-1)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if a.Kind != scheduler.AwaitMore {
		t.Errorf("Kind = %v, want %v", a.Kind, scheduler.AwaitMore)
	}
}
