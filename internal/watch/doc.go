// Package watch follows a hub's /ws stream and keeps a local mirror of the
// drawn lines.
package watch
