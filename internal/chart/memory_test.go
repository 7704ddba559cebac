package chart

import (
	"bytes"
	"errors"
	"image/png"
	"testing"
	"time"

	"github.com/rickgao/levelfeed/internal/model"
)

// recorder collects observer events in order.
type recorder struct {
	events []string
}

func (r *recorder) LineDrawn(spec model.LineSpec) {
	r.events = append(r.events, "draw")
}

func (r *recorder) LineDeleted(id int) {
	r.events = append(r.events, "delete")
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	rec := &recorder{}
	m.Observe(rec)

	m.DrawLine(model.LineSpec{ID: 2021, Price: 4400})
	m.DrawLine(model.LineSpec{ID: 2020, Price: 4500})

	if !m.LineExists(2020) {
		t.Error("LineExists(2020) = false, want true")
	}
	if m.LineExists(2022) {
		t.Error("LineExists(2022) = true, want false")
	}

	lines := m.Lines()
	if len(lines) != 2 {
		t.Fatalf("len(Lines()) = %d, want 2", len(lines))
	}
	if lines[0].ID != 2020 || lines[1].ID != 2021 {
		t.Errorf("Lines() IDs = %d, %d, want 2020, 2021", lines[0].ID, lines[1].ID)
	}

	m.DeleteLine(2020)
	m.DeleteLine(9999) // missing, no event

	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}

	want := []string{"draw", "draw", "delete"}
	if len(rec.events) != len(want) {
		t.Fatalf("events = %v, want %v", rec.events, want)
	}
	for i := range want {
		if rec.events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, rec.events[i], want[i])
		}
	}
}

func TestRenderPNG(t *testing.T) {
	begin := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	lines := []model.LineSpec{
		{ID: 2020, Begin: begin, End: begin.Add(72 * time.Hour), Price: 4500, Label: "Call Wall", Color: model.RGB{G: 0xFF}, Width: 1},
		{ID: 2021, Begin: begin, End: begin.Add(72 * time.Hour), Price: 4400, Label: "Put Wall", Color: model.RGB{R: 0xFF}, Width: 2, Style: model.LineStyleDashed},
	}

	var buf bytes.Buffer
	if err := RenderPNG(lines, 800, 400, &buf); err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 400 {
		t.Errorf("bounds = %v, want 800x400", b)
	}
}

func TestRenderPNG_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderPNG(nil, 800, 400, &buf); !errors.Is(err, ErrNoLines) {
		t.Errorf("RenderPNG(nil) error = %v, want ErrNoLines", err)
	}
}
