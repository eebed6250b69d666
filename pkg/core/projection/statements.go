package projection

// PnLInputs are the independent lines of a P&L. Everything else is derived.
type PnLInputs struct {
	Revenue           float64
	COGS              float64
	OperatingExpenses float64
	Depreciation      float64
	InterestExpense   float64
	InterestIncome    float64
	TaxRate           float64 // applied only when EBT > 0
}

// NewPnL builds a fully-derived P&L.
func NewPnL(in PnLInputs) PnL {
	grossProfit := in.Revenue - in.COGS
	ebit := grossProfit - in.OperatingExpenses - in.Depreciation
	ebt := ebit - in.InterestExpense + in.InterestIncome

	taxes := 0.0
	if ebt > 0 {
		taxes = ebt * in.TaxRate
	}

	return PnL{
		Revenue:           in.Revenue,
		COGS:              in.COGS,
		GrossProfit:       grossProfit,
		OperatingExpenses: in.OperatingExpenses,
		Depreciation:      in.Depreciation,
		EBIT:              ebit,
		InterestExpense:   in.InterestExpense,
		InterestIncome:    in.InterestIncome,
		EBT:               ebt,
		Taxes:             taxes,
		NetIncome:         ebt - taxes,
	}
}

// BalanceSheetInputs are the stored balances; NetPPE and totals are derived.
type BalanceSheetInputs struct {
	Cash                    float64
	AccountsReceivable      float64
	Inventory               float64
	GrossPPE                float64
	AccumulatedDepreciation float64
	AccountsPayable         float64
	Debt                    float64
	ShareCapital            float64
	RetainedEarnings        float64
}

// NewBalanceSheet builds a balance sheet with all subtotals filled in.
func NewBalanceSheet(in BalanceSheetInputs) BalanceSheet {
	netPPE := in.GrossPPE - in.AccumulatedDepreciation
	totalAssets := in.Cash + in.AccountsReceivable + in.Inventory + netPPE
	totalLiabilities := in.AccountsPayable + in.Debt
	totalEquity := in.ShareCapital + in.RetainedEarnings

	return BalanceSheet{
		Cash:                      in.Cash,
		AccountsReceivable:        in.AccountsReceivable,
		Inventory:                 in.Inventory,
		GrossPPE:                  in.GrossPPE,
		AccumulatedDepreciation:   in.AccumulatedDepreciation,
		NetPPE:                    netPPE,
		TotalAssets:               totalAssets,
		AccountsPayable:           in.AccountsPayable,
		Debt:                      in.Debt,
		TotalLiabilities:          totalLiabilities,
		ShareCapital:              in.ShareCapital,
		RetainedEarnings:          in.RetainedEarnings,
		TotalEquity:               totalEquity,
		TotalLiabilitiesAndEquity: totalLiabilities + totalEquity,
	}
}

// Inputs returns the stored balances of bs, ready to be adjusted and rebuilt.
func (bs BalanceSheet) Inputs() BalanceSheetInputs {
	return BalanceSheetInputs{
		Cash:                    bs.Cash,
		AccountsReceivable:      bs.AccountsReceivable,
		Inventory:               bs.Inventory,
		GrossPPE:                bs.GrossPPE,
		AccumulatedDepreciation: bs.AccumulatedDepreciation,
		AccountsPayable:         bs.AccountsPayable,
		Debt:                    bs.Debt,
		ShareCapital:            bs.ShareCapital,
		RetainedEarnings:        bs.RetainedEarnings,
	}
}

// CashFlowInputs carry the balance movements of one year.
// CapitalExpenditures is a positive spend amount.
type CashFlowInputs struct {
	BeginningCash       float64
	NetIncome           float64
	Depreciation        float64
	ChangeInAR          float64
	ChangeInInventory   float64
	ChangeInAP          float64
	CapitalExpenditures float64
	DividendsPaid       float64
	NewDebtIssued       float64
	DebtRepaid          float64
	NewEquityIssued     float64
	ShareBuybacks       float64
}

// NewCashFlowStatement computes the three sub-totals and ending cash.
func NewCashFlowStatement(in CashFlowInputs) CashFlowStatement {
	cfo := in.NetIncome + in.Depreciation - in.ChangeInAR - in.ChangeInInventory + in.ChangeInAP
	cfi := -in.CapitalExpenditures
	cff := in.NewDebtIssued - in.DebtRepaid + in.NewEquityIssued - in.ShareBuybacks - in.DividendsPaid
	netChange := cfo + cfi + cff

	return CashFlowStatement{
		NetIncome:             in.NetIncome,
		Depreciation:          in.Depreciation,
		ChangeInAR:            in.ChangeInAR,
		ChangeInInventory:     in.ChangeInInventory,
		ChangeInAP:            in.ChangeInAP,
		NetCashFromOperations: cfo,
		CapitalExpenditures:   in.CapitalExpenditures,
		NetCashFromInvesting:  cfi,
		DividendsPaid:         in.DividendsPaid,
		NewDebtIssued:         in.NewDebtIssued,
		DebtRepaid:            in.DebtRepaid,
		NewEquityIssued:       in.NewEquityIssued,
		ShareBuybacks:         in.ShareBuybacks,
		NetCashFromFinancing:  cff,
		NetChangeInCash:       netChange,
		BeginningCash:         in.BeginningCash,
		EndingCash:            in.BeginningCash + netChange,
	}
}
