// Package validate provides cross-statement checks over projected years.
// This file implements the linkage checks between P&L, cash flow and balance sheet.
package validate

import (
	"math"

	"financial_forecast/pkg/core/calc"
	"financial_forecast/pkg/core/projection"
)

// =============================================================================
// CROSS-STATEMENT LINKAGE VALIDATION
// =============================================================================

// LinkageReport contains all cross-statement validation results for one year
type LinkageReport struct {
	Year         int                   `json:"year"`
	PnLToCF      *NetIncomeLinkage     `json:"pnl_to_cf"` // P&L → CF
	CFToBS       *CashLinkage          `json:"cf_to_bs"`  // CF → BS
	RetainedEarn *RetainedEarningsLink `json:"retained_earnings"`
	CashFlowEq   *CashFlowCheck        `json:"cash_flow_equation"` // CFO + CFI + CFF = net change
	Rolls        []BalanceRoll         `json:"rolls"` // Debt, share capital, PP&E
	AllPassed    bool                  `json:"all_passed"`
	FailedChecks []string              `json:"failed_checks,omitempty"`
}

// NetIncomeLinkage validates: P&L Net Income == CF Net Income start
type NetIncomeLinkage struct {
	PnLNetIncome float64 `json:"pnl_net_income"`
	CFNetIncome  float64 `json:"cf_net_income"`
	Difference   float64 `json:"difference"`
	IsLinked     bool    `json:"is_linked"`
	Tolerance    float64 `json:"tolerance"`
}

// CashLinkage validates: CF Ending == BS Cash, CF Beginning == prior BS Cash,
// and CF Net Change == BS Cash YoY
type CashLinkage struct {
	CFCashEnding   float64 `json:"cf_cash_ending"`
	BSCash         float64 `json:"bs_cash"`
	DifferenceCash float64 `json:"difference_cash"`

	CFCashBeginning   float64 `json:"cf_cash_beginning"`
	PriorBSCash       float64 `json:"prior_bs_cash"`
	DifferenceOpening float64 `json:"difference_opening"`

	CFNetChange  float64 `json:"cf_net_change"`
	BSCashChange float64 `json:"bs_cash_change"` // Current Year - Prior Year
	DifferenceNC float64 `json:"difference_net_change"`

	IsLinked  bool    `json:"is_linked"`
	Tolerance float64 `json:"tolerance"`
}

// RetainedEarningsLink validates: ΔRE == Net Income - Dividends
type RetainedEarningsLink struct {
	NetIncome        float64 `json:"net_income"`
	DividendsPaid    float64 `json:"dividends_paid"`
	ExpectedREChange float64 `json:"expected_re_change"` // NI - Div
	ActualREChange   float64 `json:"actual_re_change"`   // RE this year - RE last year
	Difference       float64 `json:"difference"`
	IsLinked         bool    `json:"is_linked"`
	Tolerance        float64 `json:"tolerance"`
}

// BalanceRoll validates: closing == opening + flows for one balance sheet line
type BalanceRoll struct {
	Item           string  `json:"item"`
	Opening        float64 `json:"opening"`
	Closing        float64 `json:"closing"`
	ExpectedChange float64 `json:"expected_change"`
	ActualChange   float64 `json:"actual_change"`
	Difference     float64 `json:"difference"`
	IsLinked       bool    `json:"is_linked"`
	Tolerance      float64 `json:"tolerance"`
}

// =============================================================================
// LINKAGE VALIDATION FUNCTIONS
// =============================================================================

// ValidateLinkages performs all cross-statement validations for a single year
// against the prior year-end balance sheet.
func ValidateLinkages(cur projection.FinancialStatements, prior projection.BalanceSheet, tolerance float64) *LinkageReport {
	if tolerance <= 0 {
		tolerance = calc.DefaultBalanceTolerance
	}
	report := &LinkageReport{
		Year:      cur.Year,
		AllPassed: true,
	}
	fail := func(check string) {
		report.AllPassed = false
		report.FailedChecks = append(report.FailedChecks, check)
	}

	// 1. P&L → CF: Net Income Linkage
	report.PnLToCF = validateNetIncomeLinkage(cur.PnL, cur.CashFlow, tolerance)
	if !report.PnLToCF.IsLinked {
		fail("P&L Net Income → CF Net Income")
	}

	// 2. CF → BS: Cash Linkage
	report.CFToBS = validateCashLinkage(cur.CashFlow, cur.BalanceSheet, prior, tolerance)
	if !report.CFToBS.IsLinked {
		fail("CF Cash → BS Cash")
	}

	// 3. P&L → BS: Retained Earnings Linkage
	report.RetainedEarn = validateRetainedEarningsLinkage(cur, prior, tolerance)
	if !report.RetainedEarn.IsLinked {
		fail("ΔRetained Earnings = NI - Dividends")
	}

	// 4. CFS internal: CFO + CFI + CFF = Net Change
	report.CashFlowEq = CheckCashFlowEquation(cur.CashFlow, tolerance)
	if !report.CashFlowEq.IsBalanced {
		fail("CFO + CFI + CFF = Net Change")
	}

	// 5. Balance rolls driven by the cash flow statement
	cf := cur.CashFlow
	bs := cur.BalanceSheet
	report.Rolls = []BalanceRoll{
		// Debt is floored at zero, so the roll is checked against the floored expectation
		rollFloored("Debt", prior.Debt, bs.Debt, cf.NewDebtIssued-cf.DebtRepaid, tolerance),
		roll("Share Capital", prior.ShareCapital, bs.ShareCapital, cf.NewEquityIssued-cf.ShareBuybacks, tolerance),
		roll("Gross PP&E", prior.GrossPPE, bs.GrossPPE, cf.CapitalExpenditures, tolerance),
		roll("Accumulated Depreciation", prior.AccumulatedDepreciation, bs.AccumulatedDepreciation, cur.PnL.Depreciation, tolerance),
	}
	for _, r := range report.Rolls {
		if !r.IsLinked {
			fail("Δ" + r.Item + " roll-forward")
		}
	}

	return report
}

// ValidateRun validates every projected year, using the base year as the prior of year 1.
func ValidateRun(p *projection.Projection, tolerance float64) []*LinkageReport {
	if p == nil {
		return nil
	}
	reports := make([]*LinkageReport, 0, len(p.Statements))
	prior := p.Base.BalanceSheet
	for _, fs := range p.Statements {
		reports = append(reports, ValidateLinkages(fs, prior, tolerance))
		prior = fs.BalanceSheet
	}
	return reports
}

// AllLinked reports whether every report passed.
func AllLinked(reports []*LinkageReport) bool {
	for _, r := range reports {
		if !r.AllPassed {
			return false
		}
	}
	return true
}

// validateNetIncomeLinkage checks P&L Net Income == CF Net Income start
func validateNetIncomeLinkage(pnl projection.PnL, cf projection.CashFlowStatement, tolerance float64) *NetIncomeLinkage {
	diff := pnl.NetIncome - cf.NetIncome
	return &NetIncomeLinkage{
		PnLNetIncome: pnl.NetIncome,
		CFNetIncome:  cf.NetIncome,
		Difference:   diff,
		IsLinked:     math.Abs(diff) <= tolerance,
		Tolerance:    tolerance,
	}
}

// validateCashLinkage checks the cash line on both ends of the year
func validateCashLinkage(cf projection.CashFlowStatement, bsCurrent, bsPrior projection.BalanceSheet, tolerance float64) *CashLinkage {
	result := &CashLinkage{
		CFCashEnding:    cf.EndingCash,
		BSCash:          bsCurrent.Cash,
		CFCashBeginning: cf.BeginningCash,
		PriorBSCash:     bsPrior.Cash,
		CFNetChange:     cf.NetChangeInCash,
		BSCashChange:    bsCurrent.Cash - bsPrior.Cash,
		Tolerance:       tolerance,
	}
	result.DifferenceCash = result.CFCashEnding - result.BSCash
	result.DifferenceOpening = result.CFCashBeginning - result.PriorBSCash
	result.DifferenceNC = result.CFNetChange - result.BSCashChange

	// All three checks must pass
	result.IsLinked = math.Abs(result.DifferenceCash) <= tolerance &&
		math.Abs(result.DifferenceOpening) <= tolerance &&
		math.Abs(result.DifferenceNC) <= tolerance

	return result
}

// validateRetainedEarningsLinkage checks ΔRE == Net Income - Dividends
func validateRetainedEarningsLinkage(cur projection.FinancialStatements, prior projection.BalanceSheet, tolerance float64) *RetainedEarningsLink {
	result := &RetainedEarningsLink{
		NetIncome:     cur.PnL.NetIncome,
		DividendsPaid: cur.CashFlow.DividendsPaid,
		Tolerance:     tolerance,
	}
	result.ExpectedREChange = result.NetIncome - result.DividendsPaid
	result.ActualREChange = cur.BalanceSheet.RetainedEarnings - prior.RetainedEarnings
	result.Difference = result.ActualREChange - result.ExpectedREChange
	result.IsLinked = math.Abs(result.Difference) <= tolerance
	return result
}

func roll(item string, opening, closing, expectedChange, tolerance float64) BalanceRoll {
	actual := closing - opening
	diff := actual - expectedChange
	return BalanceRoll{
		Item:           item,
		Opening:        opening,
		Closing:        closing,
		ExpectedChange: expectedChange,
		ActualChange:   actual,
		Difference:     diff,
		IsLinked:       math.Abs(diff) <= tolerance,
		Tolerance:      tolerance,
	}
}

func rollFloored(item string, opening, closing, flow, tolerance float64) BalanceRoll {
	return roll(item, opening, closing, math.Max(0, opening+flow)-opening, tolerance)
}
