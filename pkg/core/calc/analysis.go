// Package calc provides deterministic numeric helpers shared by the projection
// engine and the ratio calculator. Nothing here knows about statement types.
package calc

import "math"

// DaysInYear is the day-count basis for working-capital and turnover conversions.
const DaysInYear = 365.0

// =============================================================================
// SAFE ARITHMETIC
// =============================================================================

// SafeDiv divides and reports whether the quotient is defined: the
// denominator is non-zero and the result is finite.
func SafeDiv(numerator, denominator float64) (float64, bool) {
	if denominator == 0 {
		return 0, false
	}
	q := numerator / denominator
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 0, false
	}
	return q, true
}

// Average returns the simple two-point average used for opening/closing balances.
func Average(current, prior float64) float64 {
	return (current + prior) / 2
}

// DaysOf converts an annual flow to a balance using a day-count driver.
// e.g. AR = Revenue / 365 * DSO
func DaysOf(annualFlow, days float64) float64 {
	return (annualFlow / DaysInYear) * days
}

// =============================================================================
// RATIO PRIMITIVES
// =============================================================================

// TurnoverToDays converts a turnover multiple to days (365 / turnover).
func TurnoverToDays(turnover float64) (float64, bool) {
	if turnover == 0 || math.IsInf(turnover, 0) || math.IsNaN(turnover) {
		return 0, false
	}
	return DaysInYear / turnover, true
}

// GrowthRate returns (current - prior) / |prior|.
func GrowthRate(current, prior float64) (float64, bool) {
	if prior == 0 {
		return 0, false
	}
	return (current - prior) / math.Abs(prior), true
}
