package model

import (
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// Feed Types
// -----------------------------------------------------------------------------

// RGB is a 24-bit color.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// DefaultColor is the neutral gray used when a row carries no usable color token.
var DefaultColor = RGB{R: 0xCC, G: 0xCC, B: 0xCC}

// Hex returns the color as 6 upper-case hex digits (e.g. "FF0000").
func (c RGB) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// IsZero reports whether the color is black, which doubles as the
// "use feed color" override sentinel.
func (c RGB) IsZero() bool {
	return c == RGB{}
}

// PriceLevel is one parsed CSV row.
type PriceLevel struct {
	Price float64 // Column A, > 0
	Label string  // Column B, verbatim
	Color RGB     // Column C, decoded or DefaultColor
}

// -----------------------------------------------------------------------------
// Drawing Types
// -----------------------------------------------------------------------------

// LineStyle is the stroke style of a drawn line.
type LineStyle int

const (
	LineStyleSolid LineStyle = iota
	LineStyleDashed
	LineStyleDotted
)

// String returns the config name of the style.
func (s LineStyle) String() string {
	switch s {
	case LineStyleDashed:
		return "dashed"
	case LineStyleDotted:
		return "dotted"
	default:
		return "solid"
	}
}

// ParseLineStyle maps a config name to a LineStyle. Empty means solid.
func ParseLineStyle(name string) (LineStyle, error) {
	switch name {
	case "", "solid":
		return LineStyleSolid, nil
	case "dashed":
		return LineStyleDashed, nil
	case "dotted":
		return LineStyleDotted, nil
	default:
		return LineStyleSolid, fmt.Errorf("unknown line style %q", name)
	}
}

// LineSpec describes one horizontal line handed to a drawing surface.
// Price is used for both Y endpoints.
type LineSpec struct {
	ID       int       `json:"id"`
	Begin    time.Time `json:"begin"`
	End      time.Time `json:"end"`
	Price    float64   `json:"price"`
	Color    RGB       `json:"-"`
	Width    int       `json:"width"`
	Label    string    `json:"label"`
	FontSize int       `json:"font_size"`
	Style    LineStyle `json:"-"`
}
