package parser

import (
	"errors"
	"reflect"
	"testing"

	"github.com/rickgao/levelfeed/internal/model"
)

func TestCollect(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		want        []model.PriceLevel
		wantDefects int
		wantAbort   bool
	}{
		{
			name: "single row",
			raw:  "4500.25,Call Wall,#00FF00\n",
			want: []model.PriceLevel{
				{Price: 4500.25, Label: "Call Wall", Color: model.RGB{G: 0xFF}},
			},
		},
		{
			name: "rows keep input order and duplicates",
			raw:  "4500,Call Wall,#00FF00\n4400,Put Wall,#FF0000\n4500,Call Wall,#00FF00\n",
			want: []model.PriceLevel{
				{Price: 4500, Label: "Call Wall", Color: model.RGB{G: 0xFF}},
				{Price: 4400, Label: "Put Wall", Color: model.RGB{R: 0xFF}},
				{Price: 4500, Label: "Call Wall", Color: model.RGB{G: 0xFF}},
			},
		},
		{
			name: "short line ends the body",
			raw:  "100.5,Gamma Wall,X\nshort\n200.5,Never Seen,#FFFFFF\n",
			want: []model.PriceLevel{
				{Price: 100.5, Label: "Gamma Wall", Color: model.DefaultColor},
			},
		},
		{
			name: "empty body",
			raw:  "",
			want: nil,
		},
		{
			name: "crlf line endings",
			raw:  "4500.00,Zero Gamma,#0000FF\r\n",
			want: []model.PriceLevel{
				{Price: 4500, Label: "Zero Gamma", Color: model.RGB{B: 0xFF}},
			},
		},
		{
			name: "extra columns ignored",
			raw:  "4500.00,Hedge Wall,#112233,ignored,also ignored\n",
			want: []model.PriceLevel{
				{Price: 4500, Label: "Hedge Wall", Color: model.RGB{R: 0x11, G: 0x22, B: 0x33}},
			},
		},
		{
			name: "missing color column",
			raw:  "4500.00,Key Gamma\n",
			want: []model.PriceLevel{
				{Price: 4500, Label: "Key Gamma", Color: model.DefaultColor},
			},
		},
		{
			name: "lowercase hex",
			raw:  "4500.00,Vol Trigger,#a0b0c0\n",
			want: []model.PriceLevel{
				{Price: 4500, Label: "Vol Trigger", Color: model.RGB{R: 0xA0, G: 0xB0, B: 0xC0}},
			},
		},
		{
			name: "malformed hex keeps row in gray",
			raw:  "4500.00,Call Wall,#GG0000\n4400.00,Put Wall,#FF0000\n",
			want: []model.PriceLevel{
				{Price: 4500, Label: "Call Wall", Color: model.DefaultColor},
				{Price: 4400, Label: "Put Wall", Color: model.RGB{R: 0xFF}},
			},
			wantDefects: 1,
		},
		{
			name:      "non-positive price aborts the body",
			raw:       "100.5,Gamma Wall,#FF0000\n-1,Bad,#00FF00\n",
			wantAbort: true,
		},
		{
			name:      "zero price aborts",
			raw:       "0.000000,Nothing,#FF0000\n",
			wantAbort: true,
		},
		{
			name:      "overflowing price aborts",
			raw:       "1e400,Huge Level,#FF0000\n",
			wantAbort: true,
		},
		{
			name:      "underflowing price aborts",
			raw:       "1e-400,Tiny Level,#FF0000\n",
			wantAbort: true,
		},
		{
			name:      "unparsable price aborts",
			raw:       "price,label,color\n4500,Call Wall,#00FF00\n",
			wantAbort: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Collect(tt.raw)
			if tt.wantAbort {
				if err == nil {
					t.Fatal("expected abort error, got nil")
				}
				if !errors.Is(err, ErrBadPrice) {
					t.Errorf("error = %v, want ErrBadPrice", err)
				}
				if len(res.Levels) != 0 {
					t.Errorf("len(Levels) = %d, want 0 after abort", len(res.Levels))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(res.Levels, tt.want) {
				t.Errorf("Levels = %+v, want %+v", res.Levels, tt.want)
			}
			if len(res.Defects) != tt.wantDefects {
				t.Errorf("len(Defects) = %d, want %d", len(res.Defects), tt.wantDefects)
			}
		})
	}
}

func TestCollect_Idempotent(t *testing.T) {
	raw := "4500,Call Wall,#00FF00\n4400,Put Wall,bad\n4450,Zero Gamma,#GGGGGG\n"

	first, err1 := Collect(raw)
	second, err2 := Collect(raw)

	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("second parse = %+v, want %+v", second, first)
	}
}

func TestParse_ColorTokenLength(t *testing.T) {
	tokens := []string{"", "#", "FF0000", "#FF00000", "0xFF0000", "red"}

	for _, tok := range tokens {
		t.Run(tok, func(t *testing.T) {
			res, err := Collect("4500.00,Level," + tok + "\n")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(res.Levels) != 1 {
				t.Fatalf("len(Levels) = %d, want 1", len(res.Levels))
			}
			if res.Levels[0].Color != model.DefaultColor {
				t.Errorf("Color = %v, want %v", res.Levels[0].Color, model.DefaultColor)
			}
		})
	}
}

func TestParse_AbortIsLast(t *testing.T) {
	raw := "4500.00,Call Wall,#00FF00\nNaN-price,Bad,#00FF00\n4400.00,Put Wall,#FF0000\n"

	var levels int
	var errs []error
	for level, err := range Parse(raw) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if level.Price <= 0 {
			t.Errorf("clean row with price %v", level.Price)
		}
		levels++
	}

	if levels != 1 {
		t.Errorf("levels = %d, want 1", levels)
	}
	if len(errs) != 1 {
		t.Fatalf("len(errs) = %d, want 1", len(errs))
	}

	var pe *ParseError
	if !errors.As(errs[0], &pe) {
		t.Fatalf("error type = %T, want *ParseError", errs[0])
	}
	if pe.Row != 2 {
		t.Errorf("Row = %d, want 2", pe.Row)
	}
	if !pe.Aborts() {
		t.Error("Aborts() = false, want true")
	}
}

func TestParse_RowDefect(t *testing.T) {
	var got []error
	for _, err := range Parse("4500.00,Call Wall,#12ZZ56\n") {
		got = append(got, err)
	}

	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}

	var pe *ParseError
	if !errors.As(got[0], &pe) {
		t.Fatalf("error type = %T, want *ParseError", got[0])
	}
	if pe.Kind != KindRowDefect {
		t.Errorf("Kind = %v, want %v", pe.Kind, KindRowDefect)
	}
	if !errors.Is(pe, ErrBadColor) {
		t.Errorf("error = %v, want ErrBadColor", pe)
	}
	if pe.Value != "#12ZZ56" {
		t.Errorf("Value = %q, want %q", pe.Value, "#12ZZ56")
	}
}

func TestParse_SingleUse(t *testing.T) {
	seq := Parse("4500.00,Call Wall,#00FF00\n")

	var first, second int
	for range seq {
		first++
	}
	for range seq {
		second++
	}

	if first != 1 {
		t.Errorf("first range = %d, want 1", first)
	}
	if second != 0 {
		t.Errorf("second range = %d, want 0", second)
	}
}

func TestParse_StopEarly(t *testing.T) {
	raw := "4500.00,Call Wall,#00FF00\n4400.00,Put Wall,#FF0000\n"

	var n int
	for range Parse(raw) {
		n++
		break
	}
	if n != 1 {
		t.Errorf("n = %d, want 1", n)
	}
}
