package study

import (
	"log/slog"
	"time"

	"github.com/rickgao/levelfeed/internal/model"
	"github.com/rickgao/levelfeed/internal/parser"
	"github.com/rickgao/levelfeed/internal/render"
	"github.com/rickgao/levelfeed/internal/scheduler"
)

// PlaceholderURL is the default feed URL; a session using it does nothing.
const PlaceholderURL = "https://spotgamma-system-files.s3.amazonaws.com/ENTER_VALID_URL.csv"

// Transport is the host's asynchronous HTTP API.
type Transport interface {
	// StartFetch begins a request and reports whether it was accepted.
	StartFetch(url string) bool

	// CurrentResponse is "" while pending, "ERROR" on failure, else the body.
	CurrentResponse() string
}

// Recorder receives every successfully rendered level set.
type Recorder interface {
	Record(levels []model.PriceLevel, fetchedAt time.Time)
}

// Settings are the user-facing inputs of the study.
type Settings struct {
	URL           string
	Interval      time.Duration // minimum time between fetch attempts
	ColorOverride model.RGB     // zero means use feed colors
	FontSize      int
	LineWidth     int
	LineStyle     model.LineStyle
}

// DefaultSettings mirrors the study's input defaults.
func DefaultSettings() Settings {
	return Settings{
		URL:       PlaceholderURL,
		Interval:  5 * time.Minute,
		FontSize:  14,
		LineWidth: 1,
	}
}

// TickInput is what the host knows at one invocation.
type TickInput struct {
	Now       time.Time
	Anchor    time.Time // bar time the lines are anchored to; zero means Now
	Suspended bool      // study hidden or full recalculation in progress
}

// Session is the state of one study instance on one chart. It is not safe
// for concurrent Tick calls; Stats may be read from any goroutine.
type Session struct {
	settings  Settings
	transport Transport
	sched     *scheduler.Scheduler
	renderer  *render.Renderer
	recorder  Recorder
	logger    *slog.Logger

	startFn func() bool
	stats   counters
}

// New creates a Session. recorder may be nil.
func New(
	settings Settings,
	sched *scheduler.Scheduler,
	transport Transport,
	renderer *render.Renderer,
	recorder Recorder,
	logger *slog.Logger,
) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		settings:  settings,
		transport: transport,
		sched:     sched,
		renderer:  renderer,
		recorder:  recorder,
		logger:    logger,
	}
	s.startFn = s.startFetch
	return s
}

// Settings returns the current inputs.
func (s *Session) Settings() Settings {
	return s.settings
}

// SetSettings replaces the inputs. Takes effect on the next tick.
func (s *Session) SetSettings(settings Settings) {
	s.settings = settings
}

// Reset reinitializes the fetch state. The next clear probes the chart for
// lines instead of trusting the stored count.
func (s *Session) Reset() {
	s.sched.Reset()
	s.renderer.Forget()
	s.stats.resets.Add(1)
	s.logger.Debug("session reset")
}

// FetchState returns a copy of the scheduler state.
func (s *Session) FetchState() scheduler.FetchState {
	return s.sched.State()
}

// Tick runs one host invocation and returns what the scheduler decided.
func (s *Session) Tick(in TickInput) scheduler.Action {
	if in.Suspended {
		return scheduler.Action{Kind: scheduler.NoOp}
	}

	if s.settings.URL == PlaceholderURL {
		s.stats.misconfigured.Add(1)
		s.logger.Warn("please set up the study: feed url is the placeholder",
			"event", EventFeedMisconfigured,
		)
		return scheduler.Action{Kind: scheduler.NoOp}
	}

	var resp scheduler.Response
	if s.sched.State().Status == scheduler.AwaitingResponse {
		resp = scheduler.ResponseFromBody(s.transport.CurrentResponse())
	}

	action := s.sched.Tick(in.Now, s.settings.Interval, resp, s.startFn)

	switch action.Kind {
	case scheduler.StartFetch:
		s.stats.fetches.Add(1)
	case scheduler.HandleTimeout:
		s.stats.timeouts.Add(1)
		s.logger.Warn("request marked as failed",
			"event", EventTransportTimeout,
			"url", s.settings.URL,
		)
	case scheduler.HandleFailure:
		s.stats.failures.Add(1)
		s.logger.Warn("error while making the request, verify the url",
			"event", EventTransportError,
			"url", s.settings.URL,
		)
	case scheduler.HandleSuccess:
		s.handleBody(action.Body, in)
	}

	return action
}

// startFetch is handed to the scheduler as its start callback.
func (s *Session) startFetch() bool {
	if !s.transport.StartFetch(s.settings.URL) {
		s.stats.startFailures.Add(1)
		s.logger.Error("error making http request",
			"event", EventTransportStartFailure,
			"url", s.settings.URL,
		)
		return false
	}
	s.logger.Debug("feed request sent", "url", s.settings.URL)
	return true
}

// handleBody parses a downloaded feed and redraws the chart. A price abort
// leaves the previously drawn lines in place.
func (s *Session) handleBody(body string, in TickInput) {
	s.logger.Debug("downloaded data", "bytes", len(body), "body", body)

	res, err := parser.Collect(body)

	for _, d := range res.Defects {
		s.stats.rowDefects.Add(1)
		s.logger.Warn("bad color token, using default",
			"event", EventParseRowDefect,
			"row", d.Row,
			"value", d.Value,
			"error", d.Err,
		)
	}

	if err != nil {
		s.stats.parseAborts.Add(1)
		s.logger.Error("feed parse aborted, keeping previous levels",
			"event", EventParseAbort,
			"error", err,
		)
		return
	}

	anchor := in.Anchor
	if anchor.IsZero() {
		anchor = in.Now
	}

	s.logger.Debug("adding levels", "count", len(res.Levels))
	s.renderer.Render(res.Levels, render.Style{
		LineWidth:     s.settings.LineWidth,
		FontSize:      s.settings.FontSize,
		ColorOverride: s.settings.ColorOverride,
		LineStyle:     s.settings.LineStyle,
		DayBase:       anchor,
	})
	s.stats.renders.Add(1)
	s.stats.levels.Store(int64(len(res.Levels)))
	s.stats.lastRender.Store(in.Now.UnixMicro())

	s.logger.Info("added levels", "count", len(res.Levels))

	if s.recorder != nil {
		s.recorder.Record(res.Levels, in.Now)
	}
}
