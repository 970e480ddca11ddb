package model

import "math"

// SumAmounts adds decimal amounts with two-digit precision.  Values are
// summed as integer cents so that 1000 + 200.10 is exactly 1200.10.
func SumAmounts(base float64, extras ...float64) float64 {
	cents := toCents(base)
	for _, e := range extras {
		cents += toCents(e)
	}
	return float64(cents) / 100
}

func toCents(v float64) int64 { return int64(math.Round(v * 100)) }
