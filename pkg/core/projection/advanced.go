package projection

import "math"

// StepAdvanced projects one year with debt as the plug.
//
// Debt is issued or repaid so that ending cash lands on TargetMinimumCash.
// Repayment is capped at the outstanding balance; when the cap binds the unused
// surplus stays in cash and the returned Clamp describes it.
func StepAdvanced(prior YearState, a AdvancedAssumptions) StepResult {
	op := projectOperations(prior, a.Assumptions, prior.Cash*a.InterestIncomeOnCashRate)
	priorDebt := prior.BalanceSheet.Debt

	cf := op.cashFlow
	cf.NewEquityIssued = a.NewEquityIssued
	cf.ShareBuybacks = a.ShareBuybacks

	// Cash after operations, investing, dividends and equity, before any debt movement
	preDebt := NewCashFlowStatement(cf)
	debtChangeNeeded := a.TargetMinimumCash - preDebt.EndingCash

	cf.NewDebtIssued = math.Max(0, debtChangeNeeded)
	cf.DebtRepaid = math.Max(0, -debtChangeNeeded)

	var clamp *RepaymentClamp
	if outstanding := math.Max(0, priorDebt); cf.DebtRepaid > outstanding {
		clamp = &RepaymentClamp{
			RequestedRepayment: cf.DebtRepaid,
			OutstandingDebt:    outstanding,
			UnusedSurplus:      cf.DebtRepaid - outstanding,
		}
		cf.DebtRepaid = outstanding
		cf.NewDebtIssued = 0
	}

	cfs := NewCashFlowStatement(cf)

	bs := op.bs
	bs.Cash = cfs.EndingCash
	bs.Debt = math.Max(0, priorDebt+cfs.NewDebtIssued-cfs.DebtRepaid)
	bs.ShareCapital = prior.BalanceSheet.ShareCapital + cfs.NewEquityIssued - cfs.ShareBuybacks
	bs.RetainedEarnings = prior.BalanceSheet.RetainedEarnings + op.pnl.NetIncome - cfs.DividendsPaid

	return StepResult{
		PnL:          op.pnl,
		BalanceSheet: NewBalanceSheet(bs),
		CashFlow:     cfs,
		Clamp:        clamp,
	}
}
