// Package api provides the HTTP transport used to download the level feed.
//
// The transport is polled rather than awaited: StartFetch returns at once and
// the outcome appears later in CurrentResponse as an empty string (pending),
// "ERROR" (failed), or the response body.
package api
