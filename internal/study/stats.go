package study

import (
	"sync/atomic"
	"time"
)

// Event names attached to log records under the "event" key.
const (
	EventTransportStartFailure = "transport_start_failure"
	EventTransportTimeout      = "transport_timeout"
	EventTransportError        = "transport_error"
	EventFeedMisconfigured     = "feed_misconfigured"
	EventParseAbort            = "parse_abort"
	EventParseRowDefect        = "parse_row_defect"
)

// Stats is a snapshot of session counters.
type Stats struct {
	Fetches       int64
	Renders       int64
	Levels        int64 // levels in the last render
	Failures      int64
	Timeouts      int64
	StartFailures int64
	ParseAborts   int64
	RowDefects    int64
	Misconfigured int64
	Resets        int64
	LastRender    time.Time // zero until the first render
}

type counters struct {
	fetches       atomic.Int64
	renders       atomic.Int64
	levels        atomic.Int64
	failures      atomic.Int64
	timeouts      atomic.Int64
	startFailures atomic.Int64
	parseAborts   atomic.Int64
	rowDefects    atomic.Int64
	misconfigured atomic.Int64
	resets        atomic.Int64
	lastRender    atomic.Int64 // µs since epoch, 0 = never
}

// Stats returns current counters. Safe to call from any goroutine.
func (s *Session) Stats() Stats {
	st := Stats{
		Fetches:       s.stats.fetches.Load(),
		Renders:       s.stats.renders.Load(),
		Levels:        s.stats.levels.Load(),
		Failures:      s.stats.failures.Load(),
		Timeouts:      s.stats.timeouts.Load(),
		StartFailures: s.stats.startFailures.Load(),
		ParseAborts:   s.stats.parseAborts.Load(),
		RowDefects:    s.stats.rowDefects.Load(),
		Misconfigured: s.stats.misconfigured.Load(),
		Resets:        s.stats.resets.Load(),
	}
	if us := s.stats.lastRender.Load(); us != 0 {
		st.LastRender = time.UnixMicro(us)
	}
	return st
}
