package projection

// PnL holds one year's Profit & Loss statement.
// Build it with NewPnL; derived lines are never set by hand.
type PnL struct {
	Revenue           float64 `json:"revenue" yaml:"revenue"`
	COGS              float64 `json:"cogs" yaml:"cogs"`
	GrossProfit       float64 `json:"gross_profit" yaml:"gross_profit"`
	OperatingExpenses float64 `json:"operating_expenses" yaml:"operating_expenses"`
	Depreciation      float64 `json:"depreciation" yaml:"depreciation"`
	EBIT              float64 `json:"ebit" yaml:"ebit"`
	InterestExpense   float64 `json:"interest_expense" yaml:"interest_expense"`
	InterestIncome    float64 `json:"interest_income" yaml:"interest_income"`
	EBT               float64 `json:"ebt" yaml:"ebt"`
	Taxes             float64 `json:"taxes" yaml:"taxes"`
	NetIncome         float64 `json:"net_income" yaml:"net_income"`
}

// BalanceSheet is a point-in-time snapshot at year end.
// Build it with NewBalanceSheet so that NetPPE and all totals are consistent.
type BalanceSheet struct {
	// Assets
	Cash                    float64 `json:"cash" yaml:"cash"`
	AccountsReceivable      float64 `json:"accounts_receivable" yaml:"accounts_receivable"`
	Inventory               float64 `json:"inventory" yaml:"inventory"`
	GrossPPE                float64 `json:"gross_ppe" yaml:"gross_ppe"`
	AccumulatedDepreciation float64 `json:"accumulated_depreciation" yaml:"accumulated_depreciation"` // positive contra balance
	NetPPE                  float64 `json:"net_ppe" yaml:"net_ppe"`
	TotalAssets             float64 `json:"total_assets" yaml:"total_assets"`

	// Liabilities & Equity
	AccountsPayable           float64 `json:"accounts_payable" yaml:"accounts_payable"`
	Debt                      float64 `json:"debt" yaml:"debt"`
	TotalLiabilities          float64 `json:"total_liabilities" yaml:"total_liabilities"`
	ShareCapital              float64 `json:"share_capital" yaml:"share_capital"`
	RetainedEarnings          float64 `json:"retained_earnings" yaml:"retained_earnings"`
	TotalEquity               float64 `json:"total_equity" yaml:"total_equity"`
	TotalLiabilitiesAndEquity float64 `json:"total_liabilities_and_equity" yaml:"total_liabilities_and_equity"`
}

// CashFlowStatement reconciles beginning to ending cash for one year.
// Working-capital changes are stored as balance deltas (increase = positive);
// the operating subtotal applies the sign (AR/Inventory increase uses cash, AP increase is a source).
type CashFlowStatement struct {
	// Operations
	NetIncome             float64 `json:"net_income"`
	Depreciation          float64 `json:"depreciation"`
	ChangeInAR            float64 `json:"change_in_ar"`
	ChangeInInventory     float64 `json:"change_in_inventory"`
	ChangeInAP            float64 `json:"change_in_ap"`
	NetCashFromOperations float64 `json:"net_cash_from_operations"`

	// Investing
	CapitalExpenditures  float64 `json:"capital_expenditures"`
	NetCashFromInvesting float64 `json:"net_cash_from_investing"`

	// Financing
	DividendsPaid        float64 `json:"dividends_paid"`
	NewDebtIssued        float64 `json:"new_debt_issued"`
	DebtRepaid           float64 `json:"debt_repaid"`
	NewEquityIssued      float64 `json:"new_equity_issued"`
	ShareBuybacks        float64 `json:"share_buybacks"`
	NetCashFromFinancing float64 `json:"net_cash_from_financing"`

	// Summary
	NetChangeInCash float64 `json:"net_change_in_cash"`
	BeginningCash   float64 `json:"beginning_cash"`
	EndingCash      float64 `json:"ending_cash"`
}

// FinancialStatements bundles the three statements for a single projected year.
type FinancialStatements struct {
	Year         int               `json:"year"`
	PnL          PnL               `json:"pnl"`
	BalanceSheet BalanceSheet      `json:"balance_sheet"`
	CashFlow     CashFlowStatement `json:"cash_flow_statement"`
}

// BaseYearData is the year-0 seed of a projection run.
type BaseYearData struct {
	PnL          PnL          `json:"pnl"`
	BalanceSheet BalanceSheet `json:"balance_sheet"`
	Cash         float64      `json:"cash"` // opening cash for year 1
}

// NewBaseYearData seeds a run from base statements, carrying the balance sheet cash forward.
func NewBaseYearData(pnl PnL, bs BalanceSheet) BaseYearData {
	return BaseYearData{PnL: pnl, BalanceSheet: bs, Cash: bs.Cash}
}

// State returns the year-0 state that the first year-step consumes.
func (b BaseYearData) State() YearState {
	return YearState{PnL: b.PnL, BalanceSheet: b.BalanceSheet, Cash: b.Cash}
}

// Statements exposes the base year as year 0 for consumers that need a prior year
// (average-balance ratios, linkage checks). The cash flow statement is empty.
func (b BaseYearData) Statements() FinancialStatements {
	return FinancialStatements{Year: 0, PnL: b.PnL, BalanceSheet: b.BalanceSheet}
}

// Assumptions are the core forecasting drivers, constant across all forecast years.
type Assumptions struct {
	RevenueGrowthRate            float64 `json:"revenue_growth_rate" yaml:"revenue_growth_rate"`
	GrossProfitMargin            float64 `json:"gross_profit_margin" yaml:"gross_profit_margin"`                         // COGS = Revenue * (1 - margin)
	OperatingExpenseAsPctRevenue float64 `json:"operating_expense_pct_revenue" yaml:"operating_expense_pct_revenue"`     // excludes depreciation
	CapExAsPctRevenue            float64 `json:"capex_pct_revenue" yaml:"capex_pct_revenue"`
	DepreciationRate             float64 `json:"depreciation_rate" yaml:"depreciation_rate"`                             // % of prior Gross PP&E
	ARDays                       float64 `json:"ar_days" yaml:"ar_days"`
	APDays                       float64 `json:"ap_days" yaml:"ap_days"`
	InventoryDays                float64 `json:"inventory_days" yaml:"inventory_days"`
	InterestRateOnDebt           float64 `json:"interest_rate_on_debt" yaml:"interest_rate_on_debt"`                     // on prior-year debt
	TaxRate                      float64 `json:"tax_rate" yaml:"tax_rate"`
	DividendPayoutRatio          float64 `json:"dividend_payout_ratio" yaml:"dividend_payout_ratio"`                     // % of Net Income
}

// AdvancedAssumptions adds interest on cash, equity activity and the debt-sizing plug.
type AdvancedAssumptions struct {
	Assumptions `yaml:",inline"`

	TargetMinimumCash        float64 `json:"target_minimum_cash" yaml:"target_minimum_cash"`
	InterestIncomeOnCashRate float64 `json:"interest_income_on_cash_rate" yaml:"interest_income_on_cash_rate"` // on prior-year cash
	NewEquityIssued          float64 `json:"new_equity_issued" yaml:"new_equity_issued"`                       // per year
	ShareBuybacks            float64 `json:"share_buybacks" yaml:"share_buybacks"`                             // per year
}

// Variant selects the year-step transition function.
type Variant string

const (
	VariantBasic    Variant = "basic"
	VariantAdvanced Variant = "advanced"
)

// YearState is the prior-year state threaded into each year-step.
type YearState struct {
	PnL          PnL
	BalanceSheet BalanceSheet
	Cash         float64
}

// RepaymentClamp records a year where the surplus available for repayment exceeded
// outstanding debt. The unused surplus stays in cash; it is not redistributed.
type RepaymentClamp struct {
	RequestedRepayment float64 `json:"requested_repayment"`
	OutstandingDebt    float64 `json:"outstanding_debt"`
	UnusedSurplus      float64 `json:"unused_surplus"`
}

// StepResult is the output of one year-step.
type StepResult struct {
	PnL          PnL
	BalanceSheet BalanceSheet
	CashFlow     CashFlowStatement
	Clamp        *RepaymentClamp // advanced variant only
}

// Next returns the state consumed by the following year-step.
func (r StepResult) Next() YearState {
	return YearState{PnL: r.PnL, BalanceSheet: r.BalanceSheet, Cash: r.CashFlow.EndingCash}
}

// Statements bundles the step output for the given year.
func (r StepResult) Statements(year int) FinancialStatements {
	return FinancialStatements{Year: year, PnL: r.PnL, BalanceSheet: r.BalanceSheet, CashFlow: r.CashFlow}
}
