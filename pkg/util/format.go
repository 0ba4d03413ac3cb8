package util

import (
	"math"

	"github.com/shopspring/decimal"
)

// FormatFixed renders v with exactly places digits after the point, rounding half away from zero.
// NaN and infinities are rendered as "NaN", "+Inf" and "-Inf".
func FormatFixed(v float64, places int32) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}
