package ratios

import "financial_forecast/pkg/core/projection"

// CommonSize expresses each line of one year as a share of a base:
// income statement lines over revenue, balance sheet lines over total assets.
type CommonSize struct {
	Year            int     `json:"year"`
	IncomeStatement []Share `json:"income_statement"`
	BalanceSheet    []Share `json:"balance_sheet"`
}

// Share is one common-size line.
type Share struct {
	Line  string `json:"line"`
	Ratio Ratio  `json:"ratio"`
}

// CommonSizeYear builds the common-size view of fs. A zero base leaves every
// line undefined.
func CommonSizeYear(fs projection.FinancialStatements) CommonSize {
	pnl := fs.PnL
	bs := fs.BalanceSheet

	of := func(base float64, lines ...entry) []Share {
		out := make([]Share, 0, len(lines))
		for _, l := range lines {
			out = append(out, Share{Line: l.name, Ratio: div(l.value, base)})
		}
		return out
	}

	return CommonSize{
		Year: fs.Year,
		IncomeStatement: of(pnl.Revenue,
			entry{"Revenue", pnl.Revenue},
			entry{"COGS", pnl.COGS},
			entry{"Gross Profit", pnl.GrossProfit},
			entry{"Operating Expenses", pnl.OperatingExpenses},
			entry{"Depreciation", pnl.Depreciation},
			entry{"EBIT", pnl.EBIT},
			entry{"Interest Expense", pnl.InterestExpense},
			entry{"Interest Income", pnl.InterestIncome},
			entry{"EBT", pnl.EBT},
			entry{"Taxes", pnl.Taxes},
			entry{"Net Income", pnl.NetIncome},
		),
		BalanceSheet: of(bs.TotalAssets,
			entry{"Cash", bs.Cash},
			entry{"Accounts Receivable", bs.AccountsReceivable},
			entry{"Inventory", bs.Inventory},
			entry{"Net PP&E", bs.NetPPE},
			entry{"Total Assets", bs.TotalAssets},
			entry{"Accounts Payable", bs.AccountsPayable},
			entry{"Debt", bs.Debt},
			entry{"Share Capital", bs.ShareCapital},
			entry{"Retained Earnings", bs.RetainedEarnings},
			entry{"Total Liabilities & Equity", bs.TotalLiabilitiesAndEquity},
		),
	}
}

type entry struct {
	name  string
	value float64
}

// CommonSizeProjection returns the common-size view of every projected year.
func CommonSizeProjection(p *projection.Projection) []CommonSize {
	if p == nil {
		return nil
	}
	out := make([]CommonSize, 0, len(p.Statements))
	for _, fs := range p.Statements {
		out = append(out, CommonSizeYear(fs))
	}
	return out
}
