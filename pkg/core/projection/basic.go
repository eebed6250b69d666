package projection

import "financial_forecast/pkg/core/calc"

// operatingYear holds the lines both variants compute identically.
type operatingYear struct {
	pnl      PnL
	bs       BalanceSheetInputs // provisional: cash, debt, equity still to be set
	cashFlow CashFlowInputs     // working capital and capex filled
}

// projectOperations runs the P&L and the operating/investing balances.
// interestIncome is zero in the basic variant.
func projectOperations(prior YearState, a Assumptions, interestIncome float64) operatingYear {
	prevBS := prior.BalanceSheet

	// 1. P&L
	revenue := prior.PnL.Revenue * (1 + a.RevenueGrowthRate)
	cogs := revenue * (1 - a.GrossProfitMargin)
	pnl := NewPnL(PnLInputs{
		Revenue:           revenue,
		COGS:              cogs,
		OperatingExpenses: revenue * a.OperatingExpenseAsPctRevenue,
		Depreciation:      prevBS.GrossPPE * a.DepreciationRate, // flat rate on last year's gross base
		InterestExpense:   prevBS.Debt * a.InterestRateOnDebt,
		InterestIncome:    interestIncome,
		TaxRate:           a.TaxRate,
	})

	// 2. Working capital and PP&E
	ar := calc.DaysOf(revenue, a.ARDays)
	inventory := calc.DaysOf(cogs, a.InventoryDays)
	ap := calc.DaysOf(cogs, a.APDays)
	capex := revenue * a.CapExAsPctRevenue

	bs := prevBS.Inputs()
	bs.AccountsReceivable = ar
	bs.Inventory = inventory
	bs.AccountsPayable = ap
	bs.GrossPPE = prevBS.GrossPPE + capex
	bs.AccumulatedDepreciation = prevBS.AccumulatedDepreciation + pnl.Depreciation

	return operatingYear{
		pnl: pnl,
		bs:  bs,
		cashFlow: CashFlowInputs{
			BeginningCash:       prior.Cash,
			NetIncome:           pnl.NetIncome,
			Depreciation:        pnl.Depreciation,
			ChangeInAR:          ar - prevBS.AccountsReceivable,
			ChangeInInventory:   inventory - prevBS.Inventory,
			ChangeInAP:          ap - prevBS.AccountsPayable,
			CapitalExpenditures: capex,
			DividendsPaid:       pnl.NetIncome * a.DividendPayoutRatio,
		},
	}
}

// StepBasic projects one year with debt held constant and cash as the plug.
func StepBasic(prior YearState, a Assumptions) StepResult {
	op := projectOperations(prior, a, 0)

	cfs := NewCashFlowStatement(op.cashFlow)

	bs := op.bs
	bs.Cash = cfs.EndingCash
	bs.Debt = prior.BalanceSheet.Debt
	bs.RetainedEarnings = prior.BalanceSheet.RetainedEarnings + op.pnl.NetIncome - cfs.DividendsPaid

	return StepResult{
		PnL:          op.pnl,
		BalanceSheet: NewBalanceSheet(bs),
		CashFlow:     cfs,
	}
}
