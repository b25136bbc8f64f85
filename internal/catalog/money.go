package catalog

import "math"

// Round2 rounds a monetary amount to 2 decimals. Computations run at full
// float64 precision; rounding happens once, at output boundaries.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
