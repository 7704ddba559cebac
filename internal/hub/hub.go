package hub

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/rickgao/levelfeed/internal/chart"
	"github.com/rickgao/levelfeed/internal/model"
	"github.com/rickgao/levelfeed/internal/study"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// StatsSource reports study counters.
type StatsSource interface {
	Stats() study.Stats
}

// Pinger checks a storage dependency. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Suspender toggles the host's suspend signal. *driver.Driver satisfies it.
type Suspender interface {
	Suspend(v bool)
	Suspended() bool
}

// Config holds hub settings.
type Config struct {
	ImageWidth  int
	ImageHeight int

	// EventBuffer bounds surface events waiting to be fanned out.
	EventBuffer int

	// ClientBuffer bounds events queued for one client. A client that
	// falls this far behind is disconnected.
	ClientBuffer int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ImageWidth:   1200,
		ImageHeight:  600,
		EventBuffer:  256,
		ClientBuffer: 64,
	}
}

type client struct {
	conn *websocket.Conn
	send chan Event
}

// Hub publishes the surface over HTTP and websocket.
type Hub struct {
	cfg       Config
	surface   *chart.Memory
	stats     StatsSource
	db        Pinger
	suspender Suspender
	logger    *slog.Logger

	upgrader websocket.Upgrader

	events     chan Event
	register   chan *client
	unregister chan *client

	clientsMu sync.RWMutex
	clients   map[*client]struct{}

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a hub over surface and subscribes to its changes.
// stats, db and suspender may be nil.
func New(cfg Config, surface *chart.Memory, stats StatsSource, db Pinger, suspender Suspender, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.ImageWidth <= 0 {
		cfg.ImageWidth = def.ImageWidth
	}
	if cfg.ImageHeight <= 0 {
		cfg.ImageHeight = def.ImageHeight
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = def.EventBuffer
	}
	if cfg.ClientBuffer <= 0 {
		cfg.ClientBuffer = def.ClientBuffer
	}

	h := &Hub{
		cfg:        cfg,
		surface:    surface,
		stats:      stats,
		db:         db,
		suspender:  suspender,
		logger:     logger,
		events:     make(chan Event, cfg.EventBuffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		clients:    make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	surface.Observe(h)
	return h
}

// Handler returns the HTTP routes.
func (h *Hub) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/levels", h.handleLevels).Methods(http.MethodGet)
	r.HandleFunc("/chart.png", h.handleChart).Methods(http.MethodGet)
	r.HandleFunc("/ws", h.handleWebSocket).Methods(http.MethodGet)
	r.HandleFunc("/suspend", h.handleSuspend).Methods(http.MethodGet, http.MethodPut, http.MethodDelete)
	return r
}

// Start begins fanning surface events out to websocket clients.
func (h *Hub) Start(ctx context.Context) error {
	h.ctx, h.cancel = context.WithCancel(ctx)

	h.wg.Add(1)
	go h.run()

	h.logger.Info("hub started")
	return nil
}

// Stop disconnects every client and waits for the fan-out loop.
func (h *Hub) Stop(ctx context.Context) error {
	h.logger.Info("stopping hub")

	if h.cancel != nil {
		h.cancel()
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.logger.Info("hub stopped")
	case <-ctx.Done():
		h.logger.Warn("hub stop timed out")
	}
	return nil
}

// Clients returns the number of connected websocket clients.
func (h *Hub) Clients() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// LineDrawn implements chart.Observer.
func (h *Hub) LineDrawn(spec model.LineSpec) {
	line := NewLine(spec)
	h.publish(Event{Type: EventDraw, ID: spec.ID, Line: &line})
}

// LineDeleted implements chart.Observer.
func (h *Hub) LineDeleted(id int) {
	h.publish(Event{Type: EventDelete, ID: id})
}

// publish runs under the surface lock, so it never blocks.
func (h *Hub) publish(ev Event) {
	select {
	case h.events <- ev:
	default:
		h.logger.Warn("hub event buffer full, dropping event", "type", ev.Type, "id", ev.ID)
	}
}

// run owns the client set. Registration and fan-out share one loop so a
// new client's snapshot is always queued before any later event.
func (h *Hub) run() {
	defer h.wg.Done()

	for {
		select {
		case <-h.ctx.Done():
			h.clientsMu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.clientsMu.Unlock()
			return

		case c := <-h.register:
			// Events still buffered may predate the snapshot. Replaying them
			// is harmless: draws replace by id and deleting a missing id is
			// ignored by clients.
			c.send <- h.snapshot()
			h.clientsMu.Lock()
			h.clients[c] = struct{}{}
			h.clientsMu.Unlock()

		case c := <-h.unregister:
			h.clientsMu.Lock()
			if _, ok := h.clients[c]; ok {
				close(c.send)
				delete(h.clients, c)
			}
			h.clientsMu.Unlock()

		case ev := <-h.events:
			h.clientsMu.Lock()
			for c := range h.clients {
				select {
				case c.send <- ev:
				default:
					h.logger.Warn("websocket client too slow, disconnecting")
					close(c.send)
					delete(h.clients, c)
				}
			}
			h.clientsMu.Unlock()
		}
	}
}

func (h *Hub) snapshot() Event {
	specs := h.surface.Lines()
	lines := make([]Line, len(specs))
	for i, s := range specs {
		lines[i] = NewLine(s)
	}
	return Event{Type: EventSnapshot, Lines: lines}
}
