package render

import (
	"log/slog"
	"time"

	"github.com/rickgao/levelfeed/internal/model"
)

// DefaultBaseOffset is the first line ID reserved for feed lines.
const DefaultBaseOffset = 2020

// LineSpan is how long each level line extends from the trading-day start.
const LineSpan = 3 * 24 * time.Hour

// Surface is the host's chart drawing API.
type Surface interface {
	LineExists(id int) bool
	DeleteLine(id int)
	DrawLine(spec model.LineSpec)
}

// Clock provides the host's notion of time.
type Clock interface {
	Now() time.Time
	TradingDayStart(t time.Time) time.Time
}

// Style is applied uniformly to every line of a render.
type Style struct {
	LineWidth     int
	FontSize      int
	ColorOverride model.RGB // zero means use each level's own color
	LineStyle     model.LineStyle
	DayBase       time.Time // anchor; lines begin at its trading-day start
}

// Renderer owns the drawn line set for one session.
type Renderer struct {
	surface Surface
	clock   Clock
	base    int
	logger  *slog.Logger

	drawn int  // lines drawn by the last render
	known bool // drawn is authoritative; false until the first clear
}

// New creates a Renderer drawing IDs from base upward.
func New(surface Surface, clock Clock, base int, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		surface: surface,
		clock:   clock,
		base:    base,
		logger:  logger,
	}
}

// Base returns the first reserved line ID.
func (r *Renderer) Base() int {
	return r.base
}

// Drawn returns the number of lines from the last render.
func (r *Renderer) Drawn() int {
	return r.drawn
}

// Render replaces the drawn set with one line per level.
func (r *Renderer) Render(levels []model.PriceLevel, style Style) {
	r.Clear()

	begin := r.clock.TradingDayStart(style.DayBase)
	end := begin.Add(LineSpan)

	for i, level := range levels {
		color := level.Color
		if !style.ColorOverride.IsZero() {
			color = style.ColorOverride
		}

		r.surface.DrawLine(model.LineSpec{
			ID:       r.base + i,
			Begin:    begin,
			End:      end,
			Price:    level.Price,
			Color:    color,
			Width:    style.LineWidth,
			Label:    level.Label,
			FontSize: style.FontSize,
			Style:    style.LineStyle,
		})
	}

	r.drawn = len(levels)
	r.known = true
}

// Clear deletes every line from the last render.
//
// Before the first render the count is unknown (the chart may still carry
// lines from an earlier process), so IDs are probed upward from base until
// one is missing.
func (r *Renderer) Clear() {
	if r.known {
		for id := r.base; id < r.base+r.drawn; id++ {
			r.surface.DeleteLine(id)
		}
	} else {
		n := 0
		for id := r.base; r.surface.LineExists(id); id++ {
			r.surface.DeleteLine(id)
			n++
		}
		if n > 0 {
			r.logger.Debug("removed stale lines", "base", r.base, "count", n)
		}
	}

	r.drawn = 0
	r.known = true
}

// Forget drops the stored count so the next clear probes the surface.
func (r *Renderer) Forget() {
	r.drawn = 0
	r.known = false
}
