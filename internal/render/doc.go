// Package render draws price levels onto a chart surface as horizontal lines.
//
// Each render fully replaces the previous one: every line from the last call
// is deleted before the new set is drawn at base, base+1, ... in input order.
package render
