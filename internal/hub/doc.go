// Package hub serves the drawn levels to chart clients over HTTP.
//
// Routes:
//   - GET /health     study counters and line count
//   - GET /levels     the current line set as JSON
//   - GET /chart.png  the current line set rendered as an image
//   - /suspend        GET reports, PUT raises and DELETE clears the
//     suspend signal; ticks are no-ops while it is raised
//   - GET /ws         a websocket that receives a snapshot on connect and
//     then every draw and delete made on the surface
package hub
