package watch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/levelfeed/internal/chart"
	"github.com/rickgao/levelfeed/internal/hub"
)

// Client is a single websocket connection to a hub.
type Client struct {
	cfg    Config
	logger *slog.Logger

	conn   *websocket.Conn
	mirror *chart.Memory

	// Output channels
	events chan hub.Event
	errors chan error
	done   chan struct{}

	// State
	mu         sync.RWMutex
	connected  bool
	lastPingAt time.Time
	closed     bool
}

// NewClient creates a client. Nothing is dialed until Connect.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()

	return &Client{
		cfg:    cfg,
		logger: logger,
		mirror: chart.NewMemory(),
		events: make(chan hub.Event, cfg.BufferSize),
		errors: make(chan error, 1),
		done:   make(chan struct{}),
	}
}

// Connect dials the hub and starts reading.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrAlreadyClosed
	}
	c.mu.Unlock()

	header := http.Header{}
	header.Set("Accept", "application/json")

	dialer := websocket.Dialer{
		HandshakeTimeout: c.cfg.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, header)
	if err != nil {
		return fmt.Errorf("dial hub: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.lastPingAt = time.Now()
	c.mu.Unlock()

	// The hub pings; answer and record liveness.
	conn.SetPingHandler(func(data string) error {
		c.touch()
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(data),
			time.Now().Add(time.Second),
		)
	})
	conn.SetPongHandler(func(string) error {
		c.touch()
		return nil
	})

	go c.readLoop()
	go c.heartbeatLoop()

	c.logger.Debug("websocket connected", "url", c.cfg.URL)
	return nil
}

// Close gracefully closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.connected = false
	conn := c.conn
	c.mu.Unlock()

	close(c.done)

	if conn != nil {
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		return conn.Close()
	}
	return nil
}

// Events returns every event after it has been applied to the mirror.
func (c *Client) Events() <-chan hub.Event {
	return c.events
}

// Errors returns connection errors. At most one is delivered.
func (c *Client) Errors() <-chan error {
	return c.errors
}

// Mirror returns the local copy of the hub's surface.
func (c *Client) Mirror() *chart.Memory {
	return c.mirror
}

// IsConnected returns the current connection state.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *Client) touch() {
	c.mu.Lock()
	c.lastPingAt = time.Now()
	c.mu.Unlock()
}

func (c *Client) fail(err error) {
	select {
	case c.errors <- err:
	default:
	}
}

// readLoop decodes events, applies them, and forwards them.
func (c *Client) readLoop() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
	}()

	for {
		var ev hub.Event
		if err := c.conn.ReadJSON(&ev); err != nil {
			// Ignore errors after Close() is called
			select {
			case <-c.done:
			default:
				c.fail(err)
			}
			return
		}

		if err := c.apply(ev); err != nil {
			c.logger.Warn("dropping malformed event", "type", ev.Type, "error", err)
			continue
		}

		select {
		case c.events <- ev:
		case <-c.done:
			return
		default:
			c.logger.Warn("event buffer full, dropping event", "type", ev.Type)
		}
	}
}

// apply updates the mirror. A snapshot replaces it wholesale.
func (c *Client) apply(ev hub.Event) error {
	switch ev.Type {
	case hub.EventSnapshot:
		keep := make(map[int]struct{}, len(ev.Lines))
		for _, l := range ev.Lines {
			keep[l.ID] = struct{}{}
		}
		for _, existing := range c.mirror.Lines() {
			if _, ok := keep[existing.ID]; !ok {
				c.mirror.DeleteLine(existing.ID)
			}
		}
		for _, l := range ev.Lines {
			spec, err := l.Spec()
			if err != nil {
				return err
			}
			c.mirror.DrawLine(spec)
		}
	case hub.EventDraw:
		if ev.Line == nil {
			return fmt.Errorf("draw event %d has no line", ev.ID)
		}
		spec, err := ev.Line.Spec()
		if err != nil {
			return err
		}
		c.mirror.DrawLine(spec)
	case hub.EventDelete:
		c.mirror.DeleteLine(ev.ID)
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	return nil
}

// heartbeatLoop keeps the connection alive and reports it stale.
func (c *Client) heartbeatLoop() {
	ticker := time.NewTicker(c.cfg.HeartbeatPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(c.cfg.WriteTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
			}

			c.mu.RLock()
			lastPing := c.lastPingAt
			c.mu.RUnlock()

			if time.Since(lastPing) > c.cfg.PingTimeout {
				c.logger.Warn("no ping received, connection stale",
					"last_ping", lastPing,
					"timeout", c.cfg.PingTimeout,
				)
				c.fail(ErrStaleConnection)
				return
			}
		}
	}
}
