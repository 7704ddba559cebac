package watch

import (
	"errors"
	"time"
)

// Errors
var (
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// Config holds client settings.
type Config struct {
	URL              string        // ws:// or wss:// address of the hub's /ws route
	HandshakeTimeout time.Duration // Dial handshake limit (default: 10s)
	WriteTimeout     time.Duration // Control frame write limit (default: 5s)
	PingTimeout      time.Duration // Stale after this long without ping or pong (default: 90s)
	HeartbeatPeriod  time.Duration // Time between keepalive pings (default: 30s)
	BufferSize       int           // Events queued for the consumer (default: 256)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
		PingTimeout:      90 * time.Second,
		HeartbeatPeriod:  30 * time.Second,
		BufferSize:       256,
	}
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = def.HandshakeTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.PingTimeout <= 0 {
		c.PingTimeout = def.PingTimeout
	}
	if c.HeartbeatPeriod <= 0 {
		c.HeartbeatPeriod = def.HeartbeatPeriod
	}
	if c.BufferSize <= 0 {
		c.BufferSize = def.BufferSize
	}
}
