package projection

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidForecastYears = errors.New("number of forecast years must be positive")
	ErrNegativeTargetCash   = errors.New("target minimum cash cannot be negative")
	ErrNonFiniteStatement   = errors.New("projected value is not a finite number")
)

// ConfigError is returned before any year is computed.
type ConfigError struct {
	Field string
	Value float64
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// InvariantViolation reports a year whose balance sheet does not balance.
// With correct step arithmetic this cannot happen; seeing one means a defect.
type InvariantViolation struct {
	Year                      int     `json:"year"`
	TotalAssets               float64 `json:"total_assets"`
	TotalLiabilitiesAndEquity float64 `json:"total_liabilities_and_equity"`
	Difference                float64 `json:"difference"`
	Tolerance                 float64 `json:"tolerance"`
}

func (v *InvariantViolation) Error() string {
	return fmt.Sprintf("year %d: balance sheet out of balance: assets %.6f, liabilities+equity %.6f (diff %.6f, tolerance %g)",
		v.Year, v.TotalAssets, v.TotalLiabilitiesAndEquity, v.Difference, v.Tolerance)
}

// NumericError reports the first line of a year that overflowed or became NaN.
// The run stops there in both strict and non-strict mode.
type NumericError struct {
	Year  int
	Line  string // e.g. "pnl.revenue"
	Value float64
}

func (e *NumericError) Error() string {
	return fmt.Sprintf("year %d: %s is %v: %v", e.Year, e.Line, e.Value, ErrNonFiniteStatement)
}

func (e *NumericError) Unwrap() error { return ErrNonFiniteStatement }
