package hub

import (
	"fmt"

	"github.com/rickgao/levelfeed/internal/model"
	"github.com/rickgao/levelfeed/internal/parser"
)

// Event types sent over /ws.
const (
	EventSnapshot = "snapshot"
	EventDraw     = "draw"
	EventDelete   = "delete"
)

// Line is the wire form of a drawn line.
type Line struct {
	model.LineSpec
	Color string `json:"color"` // RRGGBB
	Style string `json:"style"`
}

// NewLine converts a surface line to its wire form.
func NewLine(spec model.LineSpec) Line {
	return Line{
		LineSpec: spec,
		Color:    spec.Color.Hex(),
		Style:    spec.Style.String(),
	}
}

// Event is one websocket message.
type Event struct {
	Type  string `json:"type"`
	ID    int    `json:"id,omitempty"`
	Line  *Line  `json:"line,omitempty"`
	Lines []Line `json:"lines,omitempty"`
}

// LevelsResponse is the body of GET /levels.
type LevelsResponse struct {
	Count int    `json:"count"`
	Lines []Line `json:"lines"`
}

// SuspendResponse is the body of /suspend.
type SuspendResponse struct {
	Suspended bool `json:"suspended"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string         `json:"status"`
	Components map[string]any `json:"components"`
}

// Spec converts a wire line back to a surface line.
func (l Line) Spec() (model.LineSpec, error) {
	spec := l.LineSpec
	color, err := parser.ParseColor(l.Color)
	if err != nil {
		return model.LineSpec{}, fmt.Errorf("line %d color: %w", l.ID, err)
	}
	style, err := model.ParseLineStyle(l.Style)
	if err != nil {
		return model.LineSpec{}, fmt.Errorf("line %d style: %w", l.ID, err)
	}
	spec.Color = color
	spec.Style = style
	return spec, nil
}
