// Package driver implements the in-process host for a study session.
//
// The Driver:
//   - Raises the reset signal once on start
//   - Calls Session.Tick from a single goroutine on every tick interval
//   - Honors a suspend flag that turns ticks into no-ops
//   - Stops gracefully, waiting for the tick loop to exit
package driver
