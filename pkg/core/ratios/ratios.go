// Package ratios computes profitability, liquidity, leverage and efficiency
// ratios over projected statements. It only reads its inputs.
package ratios

import (
	"encoding/json"

	"financial_forecast/pkg/core/calc"
	"financial_forecast/pkg/core/projection"
)

// Status tells whether a ratio has a finite value.
type Status string

const (
	StatusOK        Status = "ok"
	StatusUndefined Status = "undefined" // zero denominator with no meaningful limit
	StatusInfinite  Status = "infinite"  // zero denominator where the ratio is unbounded (e.g. no payables)
)

// Ratio is a value plus its status. Value is only meaningful when Status is ok.
type Ratio struct {
	Value  float64
	Status Status
}

func ok(v float64) Ratio { return Ratio{Value: v, Status: StatusOK} }

var (
	undefined = Ratio{Status: StatusUndefined}
	infinite  = Ratio{Status: StatusInfinite}
)

// OK reports whether the ratio has a finite value.
func (r Ratio) OK() bool { return r.Status == StatusOK }

// MarshalJSON writes {"value": x|null, "status": "..."} so no NaN or Inf reaches JSON.
func (r Ratio) MarshalJSON() ([]byte, error) {
	out := struct {
		Value  *float64 `json:"value"`
		Status Status   `json:"status"`
	}{Status: r.Status}
	if r.OK() {
		v := r.Value
		out.Value = &v
	}
	return json.Marshal(out)
}

func (r *Ratio) UnmarshalJSON(data []byte) error {
	var in struct {
		Value  *float64 `json:"value"`
		Status Status   `json:"status"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Status = in.Status
	r.Value = 0
	if in.Value != nil {
		r.Value = *in.Value
	}
	return nil
}

// div returns undefined when the denominator is zero.
func div(n, d float64) Ratio {
	if v, defined := calc.SafeDiv(n, d); defined {
		return ok(v)
	}
	return undefined
}

// divInf returns infinite when the denominator is zero.
func divInf(n, d float64) Ratio {
	if v, defined := calc.SafeDiv(n, d); defined {
		return ok(v)
	}
	return infinite
}

// overAverage divides by the average of current and prior balances when a
// non-zero prior balance exists, else by the current balance.
func overAverage(n, cur float64, prior *float64) Ratio {
	if prior != nil && *prior != 0 {
		return div(n, calc.Average(cur, *prior))
	}
	return div(n, cur)
}

func toDays(turnover Ratio) Ratio {
	if !turnover.OK() {
		return undefined
	}
	if d, defined := calc.TurnoverToDays(turnover.Value); defined {
		return ok(d)
	}
	return undefined
}

// YearRatios is the full ratio set for one year.
type YearRatios struct {
	Year int `json:"year"`

	// Profitability
	GrossProfitMargin     Ratio `json:"gross_profit_margin"`
	OperatingProfitMargin Ratio `json:"operating_profit_margin"`
	NetProfitMargin       Ratio `json:"net_profit_margin"`
	ReturnOnAssets        Ratio `json:"return_on_assets"`
	ReturnOnEquity        Ratio `json:"return_on_equity"`

	// Liquidity (accounts payable is the only current liability)
	CurrentRatio Ratio `json:"current_ratio"`
	QuickRatio   Ratio `json:"quick_ratio"`
	CashRatio    Ratio `json:"cash_ratio"`

	// Solvency
	DebtToEquity     Ratio `json:"debt_to_equity"`
	DebtToAssets     Ratio `json:"debt_to_assets"`
	InterestCoverage Ratio `json:"interest_coverage"`

	// Efficiency
	InventoryTurnover        Ratio `json:"inventory_turnover"`
	DaysInventoryOutstanding Ratio `json:"days_inventory_outstanding"`
	ReceivablesTurnover      Ratio `json:"receivables_turnover"`
	DaysSalesOutstanding     Ratio `json:"days_sales_outstanding"`
	PayablesTurnover         Ratio `json:"payables_turnover"`
	DaysPayablesOutstanding  Ratio `json:"days_payables_outstanding"`
	AssetTurnover            Ratio `json:"asset_turnover"`
}

// ForYear computes the ratios of fs. prev, when given, enables average-balance ratios.
func ForYear(fs projection.FinancialStatements, prev *projection.FinancialStatements) YearRatios {
	pnl := fs.PnL
	bs := fs.BalanceSheet

	var prevAssets, prevEquity, prevInventory, prevAR, prevAP *float64
	if prev != nil {
		p := prev.BalanceSheet
		prevAssets, prevEquity = &p.TotalAssets, &p.TotalEquity
		prevInventory, prevAR, prevAP = &p.Inventory, &p.AccountsReceivable, &p.AccountsPayable
	}

	r := YearRatios{
		Year: fs.Year,

		GrossProfitMargin:     div(pnl.GrossProfit, pnl.Revenue),
		OperatingProfitMargin: div(pnl.EBIT, pnl.Revenue),
		NetProfitMargin:       div(pnl.NetIncome, pnl.Revenue),
		ReturnOnAssets:        overAverage(pnl.NetIncome, bs.TotalAssets, prevAssets),
		ReturnOnEquity:        overAverage(pnl.NetIncome, bs.TotalEquity, prevEquity),

		CurrentRatio: divInf(bs.Cash+bs.AccountsReceivable+bs.Inventory, bs.AccountsPayable),
		QuickRatio:   divInf(bs.Cash+bs.AccountsReceivable, bs.AccountsPayable),
		CashRatio:    divInf(bs.Cash, bs.AccountsPayable),

		DebtToEquity:     divInf(bs.Debt, bs.TotalEquity),
		DebtToAssets:     div(bs.Debt, bs.TotalAssets),
		InterestCoverage: divInf(pnl.EBIT, pnl.InterestExpense),

		InventoryTurnover:   overAverage(pnl.COGS, bs.Inventory, prevInventory),
		ReceivablesTurnover: overAverage(pnl.Revenue, bs.AccountsReceivable, prevAR),
		PayablesTurnover:    overAverage(pnl.COGS, bs.AccountsPayable, prevAP),
		AssetTurnover:       overAverage(pnl.Revenue, bs.TotalAssets, prevAssets),
	}
	r.DaysInventoryOutstanding = toDays(r.InventoryTurnover)
	r.DaysSalesOutstanding = toDays(r.ReceivablesTurnover)
	r.DaysPayablesOutstanding = toDays(r.PayablesTurnover)
	return r
}

// ForRun computes ratios for each year in order. base, when given, is the prior of the first year.
func ForRun(statements []projection.FinancialStatements, base *projection.FinancialStatements) []YearRatios {
	out := make([]YearRatios, 0, len(statements))
	prev := base
	for i := range statements {
		out = append(out, ForYear(statements[i], prev))
		prev = &statements[i]
	}
	return out
}

// ForProjection uses the run's base year as the prior of year 1.
func ForProjection(p *projection.Projection) []YearRatios {
	if p == nil {
		return nil
	}
	base := p.Base.Statements()
	return ForRun(p.Statements, &base)
}

// Named is one labelled ratio, for tabular output.
type Named struct {
	Name  string
	Ratio Ratio
}

// Entries lists the ratios in display order.
func (r YearRatios) Entries() []Named {
	return []Named{
		{"Gross Profit Margin", r.GrossProfitMargin},
		{"Operating Profit Margin", r.OperatingProfitMargin},
		{"Net Profit Margin", r.NetProfitMargin},
		{"Return on Assets (ROA)", r.ReturnOnAssets},
		{"Return on Equity (ROE)", r.ReturnOnEquity},
		{"Current Ratio", r.CurrentRatio},
		{"Quick Ratio", r.QuickRatio},
		{"Cash Ratio", r.CashRatio},
		{"Debt-to-Equity Ratio", r.DebtToEquity},
		{"Debt-to-Assets Ratio", r.DebtToAssets},
		{"Interest Coverage Ratio", r.InterestCoverage},
		{"Inventory Turnover", r.InventoryTurnover},
		{"Days Inventory Outstanding", r.DaysInventoryOutstanding},
		{"Accounts Receivable Turnover", r.ReceivablesTurnover},
		{"Days Sales Outstanding", r.DaysSalesOutstanding},
		{"Accounts Payable Turnover", r.PayablesTurnover},
		{"Days Payables Outstanding", r.DaysPayablesOutstanding},
		{"Asset Turnover", r.AssetTurnover},
	}
}
