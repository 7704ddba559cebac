package scheduler

import "time"

// DefaultTimeoutTicks is the number of ticks a request may stay outstanding.
const DefaultTimeoutTicks = 500

// ResponseError is the body a transport reports for a failed request.
const ResponseError = "ERROR"

// Status is the fetch state.
type Status int

const (
	Idle Status = iota
	AwaitingResponse
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingResponse:
		return "awaiting_response"
	default:
		return "unknown"
	}
}

// FetchState is owned by a Scheduler and only mutated inside Tick and Reset.
type FetchState struct {
	Status         Status
	CallsSinceSent int
	LastFetch      time.Time // zero until the first fetch attempt
}

// ActionKind tells the caller what a tick decided.
type ActionKind int

const (
	NoOp ActionKind = iota
	StartFetch
	AwaitMore
	HandleSuccess
	HandleFailure
	HandleTimeout
)

func (k ActionKind) String() string {
	switch k {
	case NoOp:
		return "noop"
	case StartFetch:
		return "start_fetch"
	case AwaitMore:
		return "await_more"
	case HandleSuccess:
		return "handle_success"
	case HandleFailure:
		return "handle_failure"
	case HandleTimeout:
		return "handle_timeout"
	default:
		return "unknown"
	}
}

// Action is the result of one tick. Body is only set for HandleSuccess.
type Action struct {
	Kind ActionKind
	Body string
}

// Response is a poll of the transport's current response.
type Response struct {
	Ready bool   // A response (success or failure) has arrived
	Err   bool   // The transport reported failure
	Body  string // Response body when Ready and not Err
}

// ResponseFromBody maps the transport's current response text: empty while
// pending, ResponseError on failure, otherwise the body.
func ResponseFromBody(body string) Response {
	switch body {
	case "":
		return Response{}
	case ResponseError:
		return Response{Ready: true, Err: true}
	default:
		return Response{Ready: true, Body: body}
	}
}

// Config holds scheduler configuration.
type Config struct {
	TimeoutTicks int // Ticks before an outstanding request is abandoned (default: 500)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		TimeoutTicks: DefaultTimeoutTicks,
	}
}
