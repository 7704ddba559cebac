// Package model defines shared data types used across the level feed.
//
// Conventions:
//   - Prices: float64 in the instrument's quote units, always > 0 once parsed
//   - Colors: 8-bit RGB triples, rendered as 6 upper-case hex digits
//   - Line IDs: dense integers starting at the renderer's base offset
package model
