package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/levelfeed/internal/chart"
)

func (h *Hub) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := HealthResponse{
		Status:     "healthy",
		Components: make(map[string]any),
	}

	if h.stats != nil {
		st := h.stats.Stats()
		counters := map[string]any{
			"fetches":        st.Fetches,
			"renders":        st.Renders,
			"levels":         st.Levels,
			"failures":       st.Failures,
			"timeouts":       st.Timeouts,
			"start_failures": st.StartFailures,
			"parse_aborts":   st.ParseAborts,
			"row_defects":    st.RowDefects,
			"misconfigured":  st.Misconfigured,
			"resets":         st.Resets,
		}
		if !st.LastRender.IsZero() {
			counters["last_render"] = st.LastRender.UTC()
		} else {
			health.Status = "degraded"
		}
		health.Components["study"] = counters
	}

	if h.suspender != nil {
		health.Components["suspended"] = h.suspender.Suspended()
	}

	health.Components["chart"] = map[string]any{
		"lines":   h.surface.Len(),
		"clients": h.Clients(),
	}

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["postgres"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["postgres"] = "connected"
		}
	}

	if health.Status == "unhealthy" {
		writeJSON(w, http.StatusServiceUnavailable, health)
		return
	}
	writeJSON(w, http.StatusOK, health)
}

// handleSuspend reports the suspend signal on GET, raises it on PUT and
// clears it on DELETE.
func (h *Hub) handleSuspend(w http.ResponseWriter, r *http.Request) {
	if h.suspender == nil {
		http.Error(w, "suspend not supported", http.StatusNotImplemented)
		return
	}

	switch r.Method {
	case http.MethodPut:
		h.suspender.Suspend(true)
		h.logger.Info("study suspended", "remote", r.RemoteAddr)
	case http.MethodDelete:
		h.suspender.Suspend(false)
		h.logger.Info("study resumed", "remote", r.RemoteAddr)
	}

	writeJSON(w, http.StatusOK, SuspendResponse{Suspended: h.suspender.Suspended()})
}

func (h *Hub) handleLevels(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot()
	writeJSON(w, http.StatusOK, LevelsResponse{
		Count: len(snap.Lines),
		Lines: snap.Lines,
	})
}

func (h *Hub) handleChart(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := chart.RenderPNG(h.surface.Lines(), h.cfg.ImageWidth, h.cfg.ImageHeight, &buf)
	if errors.Is(err, chart.ErrNoLines) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		h.logger.Error("render chart failed", "error", err)
		http.Error(w, "render chart failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.ctx == nil || h.ctx.Err() != nil {
		http.Error(w, "hub not running", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan Event, h.cfg.ClientBuffer)}
	select {
	case h.register <- c:
	case <-h.ctx.Done():
		conn.Close()
		return
	}

	h.logger.Info("websocket client connected", "remote", r.RemoteAddr)

	go h.writePump(c)
	h.readPump(c)
}

// readPump discards client input and detects disconnects.
func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.ctx.Done():
		}
		c.conn.Close()
		h.logger.Info("websocket client disconnected")
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump is the only writer on c.conn.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
