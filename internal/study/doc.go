// Package study is the host-facing entry point of the level feed.
//
// A Session is driven by repeated calls to Tick from a single thread of
// control, typically once per market-data update. Each call returns promptly:
// it may start a download, poll one that is in flight, or parse a completed
// body and redraw the chart. Failures are logged and retried on a later tick;
// none of them propagate to the host.
package study
