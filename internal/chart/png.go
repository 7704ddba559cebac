package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/rickgao/levelfeed/internal/model"
)

// ErrNoLines is returned by RenderPNG when there is nothing to draw.
var ErrNoLines = errors.New("no lines to render")

// RenderPNG draws lines as a time/price chart and writes the PNG to w.
func RenderPNG(lines []model.LineSpec, width, height int, w io.Writer) error {
	if len(lines) == 0 {
		return ErrNoLines
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	series := make([]chart.Series, 0, len(lines)+1)
	labels := make([]chart.Value2, 0, len(lines))

	for _, l := range lines {
		lo = math.Min(lo, l.Price)
		hi = math.Max(hi, l.Price)

		series = append(series, chart.TimeSeries{
			Name:    l.Label,
			XValues: []time.Time{l.Begin, l.End},
			YValues: []float64{l.Price, l.Price},
			Style:   lineStyle(l),
		})
		labels = append(labels, chart.Value2{
			XValue: chart.TimeToFloat64(l.Begin),
			YValue: l.Price,
			Label:  fmt.Sprintf("%s %.2f", l.Label, l.Price),
		})
	}
	series = append(series, chart.AnnotationSeries{Annotations: labels})

	pad := math.Max(1, (hi-lo)*0.05)
	graph := chart.Chart{
		Width:  width,
		Height: height,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("01-02 15:04"),
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: lo - pad, Max: hi + pad},
		},
		Series: series,
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func lineStyle(l model.LineSpec) chart.Style {
	s := chart.Style{
		StrokeColor: drawing.Color{R: l.Color.R, G: l.Color.G, B: l.Color.B, A: 255},
		StrokeWidth: float64(max(l.Width, 1)),
		FontSize:    float64(l.FontSize),
	}
	switch l.Style {
	case model.LineStyleDashed:
		s.StrokeDashArray = []float64{6, 4}
	case model.LineStyleDotted:
		s.StrokeDashArray = []float64{1, 3}
	}
	return s
}
