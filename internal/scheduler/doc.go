// Package scheduler implements the refresh state machine that decides, on every
// host tick, whether to start a fetch, wait for one, or hand off its result.
//
// The scheduler never blocks and never allocates. A request in flight is
// tracked by polling the transport on each tick, and a request that never
// answers is abandoned after a fixed number of ticks rather than a wall-clock
// deadline.
package scheduler
