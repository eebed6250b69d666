package projection

import (
	"math"
	"reflect"
	"strings"

	"financial_forecast/pkg/core/calc"
)

// CheckInvariant verifies Assets = Liabilities + Equity for one projected year.
// It returns nil when the sheet balances within tolerance.
func CheckInvariant(year int, bs BalanceSheet, tolerance float64) *InvariantViolation {
	if tolerance <= 0 {
		tolerance = calc.DefaultBalanceTolerance
	}
	res := calc.CheckBalance(bs.TotalAssets, bs.TotalLiabilitiesAndEquity, tolerance)
	if res.IsBalanced {
		return nil
	}
	return &InvariantViolation{
		Year:                      year,
		TotalAssets:               bs.TotalAssets,
		TotalLiabilitiesAndEquity: bs.TotalLiabilitiesAndEquity,
		Difference:                res.BalanceGap,
		Tolerance:                 tolerance,
	}
}

// CheckFinite returns a NumericError for the first NaN or infinite line of fs.
func CheckFinite(fs FinancialStatements) *NumericError {
	parts := []struct {
		prefix string
		value  any
	}{
		{"pnl", fs.PnL},
		{"balance_sheet", fs.BalanceSheet},
		{"cash_flow_statement", fs.CashFlow},
	}
	for _, part := range parts {
		rv := reflect.ValueOf(part.value)
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			f := rv.Field(i)
			if f.Kind() != reflect.Float64 {
				continue
			}
			if x := f.Float(); math.IsNaN(x) || math.IsInf(x, 0) {
				name := strings.SplitN(rt.Field(i).Tag.Get("json"), ",", 2)[0]
				return &NumericError{Year: fs.Year, Line: part.prefix + "." + name, Value: x}
			}
		}
	}
	return nil
}
