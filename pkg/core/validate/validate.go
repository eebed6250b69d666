package validate

import (
	"fmt"
	"math"

	"financial_forecast/pkg/core/calc"
	"financial_forecast/pkg/core/projection"
)

// =============================================================================
// YEAR-OVER-YEAR (YoY) CALCULATIONS
// =============================================================================

// YoYResult holds the result of a YoY calculation.
type YoYResult struct {
	CurrentYear  int     `json:"current_year"`
	PriorYear    int     `json:"prior_year"`
	CurrentValue float64 `json:"current_value"`
	PriorValue   float64 `json:"prior_value"`
	ChangeAbs    float64 `json:"change_abs"` // Absolute change
	ChangePct    float64 `json:"change_pct"` // Percentage change
	Label        string  `json:"label"`      // e.g., "Revenue", "Net Income"
}

// CalculateYoY calculates year-over-year change between two values.
// Returns percentage change: (current - prior) / |prior| * 100, 0 when prior is 0.
func CalculateYoY(current, prior float64) float64 {
	g, ok := calc.GrowthRate(current, prior)
	if !ok {
		return 0
	}
	return g * 100
}

// Line extracts one value from a year's statements.
type Line func(fs projection.FinancialStatements) float64

// Common lines for YoY series.
var (
	Revenue   Line = func(fs projection.FinancialStatements) float64 { return fs.PnL.Revenue }
	NetIncome Line = func(fs projection.FinancialStatements) float64 { return fs.PnL.NetIncome }
	EndCash   Line = func(fs projection.FinancialStatements) float64 { return fs.BalanceSheet.Cash }
	Debt      Line = func(fs projection.FinancialStatements) float64 { return fs.BalanceSheet.Debt }
)

// YoYSeries returns the YoY change of a line for each projected year, year 1 against the base.
func YoYSeries(p *projection.Projection, label string, line Line) []YoYResult {
	if p == nil || len(p.Statements) == 0 {
		return nil
	}
	out := make([]YoYResult, 0, len(p.Statements))
	prior := p.Base.Statements()
	for _, fs := range p.Statements {
		cur, pri := line(fs), line(prior)
		out = append(out, YoYResult{
			CurrentYear:  fs.Year,
			PriorYear:    prior.Year,
			CurrentValue: cur,
			PriorValue:   pri,
			ChangeAbs:    cur - pri,
			ChangePct:    CalculateYoY(cur, pri),
			Label:        label,
		})
		prior = fs
	}
	return out
}

// =============================================================================
// CAGR (Compound Annual Growth Rate)
// =============================================================================

// CAGRResult holds the result of a CAGR calculation.
type CAGRResult struct {
	StartYear  int     `json:"start_year"`
	EndYear    int     `json:"end_year"`
	StartValue float64 `json:"start_value"`
	EndValue   float64 `json:"end_value"`
	Years      int     `json:"years"`
	CAGR       float64 `json:"cagr"` // As percentage
}

// CalculateCAGR calculates compound annual growth rate.
// CAGR = ((EndValue / StartValue) ^ (1/years)) - 1
func CalculateCAGR(startValue, endValue float64, years int) float64 {
	if startValue <= 0 || endValue < 0 || years <= 0 {
		return 0
	}
	return (math.Pow(endValue/startValue, 1.0/float64(years)) - 1) * 100
}

// CAGROf computes the CAGR of a line from the base year to the last projected year.
func CAGROf(p *projection.Projection, line Line) (*CAGRResult, error) {
	if p == nil || len(p.Statements) == 0 {
		return nil, fmt.Errorf("no projected years")
	}
	start := p.Base.Statements()
	end := p.Statements[len(p.Statements)-1]
	if line(start) <= 0 {
		return nil, fmt.Errorf("start value %.2f must be positive", line(start))
	}

	numYears := end.Year - start.Year
	return &CAGRResult{
		StartYear:  start.Year,
		EndYear:    end.Year,
		StartValue: line(start),
		EndValue:   line(end),
		Years:      numYears,
		CAGR:       CalculateCAGR(line(start), line(end), numYears),
	}, nil
}

// =============================================================================
// CASH FLOW VALIDATION
// =============================================================================

// CashFlowCheck verifies CFO + CFI + CFF = Net Change in Cash.
type CashFlowCheck struct {
	CFO           float64 `json:"cfo"`
	CFI           float64 `json:"cfi"`
	CFF           float64 `json:"cff"`
	ComputedTotal float64 `json:"computed_total"`
	ReportedTotal float64 `json:"reported_total"`
	Difference    float64 `json:"difference"`
	IsBalanced    bool    `json:"is_balanced"`
	Tolerance     float64 `json:"tolerance"`
}

// CheckCashFlowEquation validates CFO + CFI + CFF = Net Change.
func CheckCashFlowEquation(cf projection.CashFlowStatement, tolerance float64) *CashFlowCheck {
	computed := cf.NetCashFromOperations + cf.NetCashFromInvesting + cf.NetCashFromFinancing
	diff := cf.NetChangeInCash - computed

	return &CashFlowCheck{
		CFO:           cf.NetCashFromOperations,
		CFI:           cf.NetCashFromInvesting,
		CFF:           cf.NetCashFromFinancing,
		ComputedTotal: computed,
		ReportedTotal: cf.NetChangeInCash,
		Difference:    diff,
		IsBalanced:    math.Abs(diff) <= tolerance,
		Tolerance:     tolerance,
	}
}

// =============================================================================
// FREE CASH FLOW
// =============================================================================

// CalculateFCF computes Free Cash Flow = CFO - CapEx (CapEx as a positive spend).
func CalculateFCF(cf projection.CashFlowStatement) float64 {
	return cf.NetCashFromOperations - cf.CapitalExpenditures
}
