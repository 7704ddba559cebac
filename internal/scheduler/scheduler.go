package scheduler

import "time"

// Scheduler is the refresh state machine for one session. It is not safe for
// concurrent use; the host drives it from a single thread of control.
type Scheduler struct {
	cfg   Config
	state FetchState
}

// New creates a Scheduler in the Idle state.
func New(cfg Config) *Scheduler {
	if cfg.TimeoutTicks <= 0 {
		cfg.TimeoutTicks = DefaultTimeoutTicks
	}
	return &Scheduler{cfg: cfg}
}

// State returns a copy of the current fetch state.
func (s *Scheduler) State() FetchState {
	return s.state
}

// Reset reinitializes the fetch state to Idle with no history.
func (s *Scheduler) Reset() {
	s.state = FetchState{}
}

// Tick advances the state machine by one host invocation.
//
// resp is the transport's current response and is only consulted while a
// request is outstanding. start asks the transport to begin a request and
// reports whether it was accepted; it is only called from Idle once the
// interval has elapsed.
func (s *Scheduler) Tick(now time.Time, interval time.Duration, resp Response, start func() bool) Action {
	if s.state.CallsSinceSent > s.cfg.TimeoutTicks {
		s.state.Status = Idle
		s.state.CallsSinceSent = 0
		return Action{Kind: HandleTimeout}
	}

	if s.state.Status == AwaitingResponse {
		s.state.CallsSinceSent++
		if !resp.Ready {
			return Action{Kind: AwaitMore}
		}

		s.state.Status = Idle
		s.state.CallsSinceSent = 0
		if resp.Err {
			return Action{Kind: HandleFailure}
		}
		return Action{Kind: HandleSuccess, Body: resp.Body}
	}

	if !s.state.LastFetch.IsZero() && now.Before(s.state.LastFetch.Add(interval)) {
		return Action{Kind: NoOp}
	}

	s.state.LastFetch = now
	if !start() {
		return Action{Kind: NoOp}
	}

	s.state.Status = AwaitingResponse
	s.state.CallsSinceSent = 0
	return Action{Kind: StartFetch}
}
