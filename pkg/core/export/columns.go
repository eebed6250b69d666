// Package export flattens projected statements into CSV rows and XLSX workbooks.
package export

import (
	"github.com/shopspring/decimal"

	"financial_forecast/pkg/core/projection"
)

// Column is one exported line item.
type Column struct {
	Statement string // "P&L", "BS" or "CFS"
	Field     string
	Value     func(fs projection.FinancialStatements) float64
}

// Header is the CSV column title, e.g. "BS: Cash".
func (c Column) Header() string { return c.Statement + ": " + c.Field }

func pnl(field string, v func(p projection.PnL) float64) Column {
	return Column{"P&L", field, func(fs projection.FinancialStatements) float64 { return v(fs.PnL) }}
}

func bs(field string, v func(b projection.BalanceSheet) float64) Column {
	return Column{"BS", field, func(fs projection.FinancialStatements) float64 { return v(fs.BalanceSheet) }}
}

func cfs(field string, v func(c projection.CashFlowStatement) float64) Column {
	return Column{"CFS", field, func(fs projection.FinancialStatements) float64 { return v(fs.CashFlow) }}
}

// Columns lists every statement line in declaration order.
// AR and inventory changes are shown as cash effects (an increase is negative).
var Columns = []Column{
	pnl("Revenue", func(p projection.PnL) float64 { return p.Revenue }),
	pnl("COGS", func(p projection.PnL) float64 { return p.COGS }),
	pnl("GrossProfit", func(p projection.PnL) float64 { return p.GrossProfit }),
	pnl("OperatingExpenses", func(p projection.PnL) float64 { return p.OperatingExpenses }),
	pnl("Depreciation", func(p projection.PnL) float64 { return p.Depreciation }),
	pnl("EBIT", func(p projection.PnL) float64 { return p.EBIT }),
	pnl("InterestExpense", func(p projection.PnL) float64 { return p.InterestExpense }),
	pnl("InterestIncome", func(p projection.PnL) float64 { return p.InterestIncome }),
	pnl("EBT", func(p projection.PnL) float64 { return p.EBT }),
	pnl("Taxes", func(p projection.PnL) float64 { return p.Taxes }),
	pnl("NetIncome", func(p projection.PnL) float64 { return p.NetIncome }),

	bs("Cash", func(b projection.BalanceSheet) float64 { return b.Cash }),
	bs("AccountsReceivable", func(b projection.BalanceSheet) float64 { return b.AccountsReceivable }),
	bs("Inventory", func(b projection.BalanceSheet) float64 { return b.Inventory }),
	bs("GrossPPE", func(b projection.BalanceSheet) float64 { return b.GrossPPE }),
	bs("AccumulatedDepreciation", func(b projection.BalanceSheet) float64 { return b.AccumulatedDepreciation }),
	bs("NetPPE", func(b projection.BalanceSheet) float64 { return b.NetPPE }),
	bs("TotalAssets", func(b projection.BalanceSheet) float64 { return b.TotalAssets }),
	bs("AccountsPayable", func(b projection.BalanceSheet) float64 { return b.AccountsPayable }),
	bs("Debt", func(b projection.BalanceSheet) float64 { return b.Debt }),
	bs("TotalLiabilities", func(b projection.BalanceSheet) float64 { return b.TotalLiabilities }),
	bs("ShareCapital", func(b projection.BalanceSheet) float64 { return b.ShareCapital }),
	bs("RetainedEarnings", func(b projection.BalanceSheet) float64 { return b.RetainedEarnings }),
	bs("TotalEquity", func(b projection.BalanceSheet) float64 { return b.TotalEquity }),
	bs("TotalLiabilitiesAndEquity", func(b projection.BalanceSheet) float64 { return b.TotalLiabilitiesAndEquity }),

	cfs("NetIncome", func(c projection.CashFlowStatement) float64 { return c.NetIncome }),
	cfs("Depreciation", func(c projection.CashFlowStatement) float64 { return c.Depreciation }),
	cfs("ChangeInAR", func(c projection.CashFlowStatement) float64 { return -c.ChangeInAR }),
	cfs("ChangeInInventory", func(c projection.CashFlowStatement) float64 { return -c.ChangeInInventory }),
	cfs("ChangeInAP", func(c projection.CashFlowStatement) float64 { return c.ChangeInAP }),
	cfs("NetCashFromOperations", func(c projection.CashFlowStatement) float64 { return c.NetCashFromOperations }),
	cfs("CapitalExpenditures", func(c projection.CashFlowStatement) float64 { return c.CapitalExpenditures }),
	cfs("NetCashFromInvesting", func(c projection.CashFlowStatement) float64 { return c.NetCashFromInvesting }),
	cfs("DividendsPaid", func(c projection.CashFlowStatement) float64 { return c.DividendsPaid }),
	cfs("NewDebtIssued", func(c projection.CashFlowStatement) float64 { return c.NewDebtIssued }),
	cfs("DebtRepaid", func(c projection.CashFlowStatement) float64 { return c.DebtRepaid }),
	cfs("NewEquityIssued", func(c projection.CashFlowStatement) float64 { return c.NewEquityIssued }),
	cfs("ShareBuybacks", func(c projection.CashFlowStatement) float64 { return c.ShareBuybacks }),
	cfs("NetCashFromFinancing", func(c projection.CashFlowStatement) float64 { return c.NetCashFromFinancing }),
	cfs("NetChangeInCash", func(c projection.CashFlowStatement) float64 { return c.NetChangeInCash }),
	cfs("BeginningCash", func(c projection.CashFlowStatement) float64 { return c.BeginningCash }),
	cfs("EndingCash", func(c projection.CashFlowStatement) float64 { return c.EndingCash }),
}

// ColumnsFor returns the columns of one statement ("P&L", "BS" or "CFS").
func ColumnsFor(statement string) []Column {
	var out []Column
	for _, c := range Columns {
		if c.Statement == statement {
			out = append(out, c)
		}
	}
	return out
}

// Round2 rounds half away from zero to cents.
func Round2(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
