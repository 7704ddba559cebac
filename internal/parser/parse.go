package parser

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rickgao/levelfeed/internal/model"
)

// MinLineLength is the shortest line treated as data. Anything shorter ends the body.
const MinLineLength = 10

// colorTokenLength is a leading symbol plus 6 hex digits, e.g. "#FF8800".
const colorTokenLength = 7

const defaultColorHex = "CCCCCC"

// Parse returns a lazy sequence over the levels in raw.
//
// Each element is a level and an error. A nil error is a clean row. A
// *ParseError of KindRowDefect comes with a usable level colored
// model.DefaultColor. A *ParseError of KindPriceAbort comes with a zero level
// and is always the last element.
//
// The sequence can be ranged over once; later ranges yield nothing.
func Parse(raw string) iter.Seq2[model.PriceLevel, error] {
	consumed := false
	return func(yield func(model.PriceLevel, error) bool) {
		if consumed {
			return
		}
		consumed = true

		row := 0
		for line := range strings.SplitSeq(raw, "\n") {
			row++
			line = strings.TrimSuffix(line, "\r")
			if len(line) < MinLineLength {
				return
			}

			level, perr := parseLine(row, line)
			if perr == nil {
				if !yield(level, nil) {
					return
				}
				continue
			}
			if !yield(level, perr) || perr.Aborts() {
				return
			}
		}
	}
}

// parseLine decodes one data line. The returned error is nil or a *ParseError.
func parseLine(row int, line string) (model.PriceLevel, *ParseError) {
	cols := strings.Split(line, ",")

	price, err := parsePrice(cols[0])
	if err != nil {
		return model.PriceLevel{}, &ParseError{
			Row:   row,
			Kind:  KindPriceAbort,
			Value: cols[0],
			Err:   err,
		}
	}

	level := model.PriceLevel{Price: price, Color: model.DefaultColor}
	if len(cols) > 1 {
		level.Label = cols[1]
	}

	hex := defaultColorHex
	if len(cols) > 2 && len(cols[2]) == colorTokenLength {
		hex = cols[2][1:]
	}

	color, err := decodeHex(hex)
	if err != nil {
		return level, &ParseError{
			Row:   row,
			Kind:  KindRowDefect,
			Value: cols[2],
			Err:   err,
		}
	}
	level.Color = color

	return level, nil
}

// parsePrice parses column A. Only strictly positive values are accepted.
func parsePrice(cell string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(cell))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBadPrice, err)
	}
	if d.Sign() <= 0 {
		return 0, ErrBadPrice
	}
	// Out-of-range values would convert to Inf or underflow to 0.
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) || f <= 0 {
		return 0, fmt.Errorf("%w: %s out of range", ErrBadPrice, cell)
	}
	return f, nil
}

// decodeHex decodes exactly 6 hex digits as RRGGBB.
func decodeHex(hex string) (model.RGB, error) {
	if len(hex) != 6 {
		return model.RGB{}, ErrBadColor
	}

	var channels [3]uint8
	for i := range channels {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return model.RGB{}, fmt.Errorf("%w: %w", ErrBadColor, err)
		}
		channels[i] = uint8(v)
	}

	return model.RGB{R: channels[0], G: channels[1], B: channels[2]}, nil
}

// Result is a fully drained feed body.
type Result struct {
	Levels  []model.PriceLevel
	Defects []*ParseError
}

// Collect drains Parse(raw). On a price abort it returns no levels and the
// abort error; row defects seen before the abort are still reported.
func Collect(raw string) (Result, error) {
	var res Result
	for level, err := range Parse(raw) {
		if err != nil {
			var pe *ParseError
			if !errors.As(err, &pe) || pe.Aborts() {
				return Result{Defects: res.Defects}, err
			}
			res.Defects = append(res.Defects, pe)
		}
		res.Levels = append(res.Levels, level)
	}
	return res, nil
}

// ParseColor decodes a "#RRGGBB" or "RRGGBB" token.
func ParseColor(token string) (model.RGB, error) {
	return decodeHex(strings.TrimPrefix(token, "#"))
}
