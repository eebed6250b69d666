// Package scenario holds the user-facing inputs of a projection run: the base
// year, the drivers and the variant. It loads them from files, validates them
// the way the input form does, and runs one or many scenarios through the engine.
package scenario

import (
	"fmt"

	"financial_forecast/pkg/core/projection"
)

// DefaultYears is used when a scenario leaves years unset.
const DefaultYears = 5

// BaseYear is the last reported year in form units.
// The base P&L is taxed at the drivers' tax rate.
type BaseYear struct {
	Revenue           float64 `yaml:"revenue" json:"revenue" validate:"finite,gt=0"`
	COGS              float64 `yaml:"cogs" json:"cogs" validate:"finite,gte=0"`
	OperatingExpenses float64 `yaml:"operating_expenses" json:"operating_expenses" validate:"finite,gte=0"`
	Depreciation      float64 `yaml:"depreciation" json:"depreciation" validate:"finite,gte=0"`
	InterestExpense   float64 `yaml:"interest_expense" json:"interest_expense" validate:"finite,gte=0"`

	Cash                    float64 `yaml:"cash" json:"cash" validate:"finite,gte=0"`
	AccountsReceivable      float64 `yaml:"accounts_receivable" json:"accounts_receivable" validate:"finite,gte=0"`
	Inventory               float64 `yaml:"inventory" json:"inventory" validate:"finite,gte=0"`
	GrossPPE                float64 `yaml:"gross_ppe" json:"gross_ppe" validate:"finite,gte=0"`
	AccumulatedDepreciation float64 `yaml:"accumulated_depreciation" json:"accumulated_depreciation" validate:"finite,gte=0"`
	AccountsPayable         float64 `yaml:"accounts_payable" json:"accounts_payable" validate:"finite,gte=0"`
	Debt                    float64 `yaml:"debt" json:"debt" validate:"finite,gte=0"`
	ShareCapital            float64 `yaml:"share_capital" json:"share_capital" validate:"finite,gte=0"`
	RetainedEarnings        float64 `yaml:"retained_earnings" json:"retained_earnings" validate:"finite"` // may be a deficit
}

// Drivers are the constant per-year assumptions shared by both variants.
type Drivers struct {
	RevenueGrowthRate            float64 `yaml:"revenue_growth_rate" json:"revenue_growth_rate" validate:"finite,gte=-1"`
	GrossProfitMargin            float64 `yaml:"gross_profit_margin" json:"gross_profit_margin" validate:"finite,gte=0,lte=1"`
	OperatingExpenseAsPctRevenue float64 `yaml:"operating_expense_pct_revenue" json:"operating_expense_pct_revenue" validate:"finite,gte=0,lte=1"`
	CapExAsPctRevenue            float64 `yaml:"capex_pct_revenue" json:"capex_pct_revenue" validate:"finite,gte=0,lte=1"`
	DepreciationRate             float64 `yaml:"depreciation_rate" json:"depreciation_rate" validate:"finite,gte=0"`
	ARDays                       float64 `yaml:"ar_days" json:"ar_days" validate:"finite,gte=0"`
	APDays                       float64 `yaml:"ap_days" json:"ap_days" validate:"finite,gte=0"`
	InventoryDays                float64 `yaml:"inventory_days" json:"inventory_days" validate:"finite,gte=0"`
	InterestRateOnDebt           float64 `yaml:"interest_rate_on_debt" json:"interest_rate_on_debt" validate:"finite,gte=0"`
	TaxRate                      float64 `yaml:"tax_rate" json:"tax_rate" validate:"finite,gte=0,lte=1"`
	DividendPayoutRatio          float64 `yaml:"dividend_payout_ratio" json:"dividend_payout_ratio" validate:"finite,gte=0,lte=1"`
}

// AdvancedDrivers switch on the debt-plug variant.
type AdvancedDrivers struct {
	TargetMinimumCash        float64 `yaml:"target_minimum_cash" json:"target_minimum_cash" validate:"finite,gte=0"`
	InterestIncomeOnCashRate float64 `yaml:"interest_income_on_cash_rate" json:"interest_income_on_cash_rate" validate:"finite,gte=0"`
	NewEquityIssued          float64 `yaml:"new_equity_issued" json:"new_equity_issued" validate:"finite,gte=0"`
	ShareBuybacks            float64 `yaml:"share_buybacks" json:"share_buybacks" validate:"finite,gte=0"`
}

// Scenario is one named projection request.
type Scenario struct {
	Name        string             `yaml:"name" json:"name"`
	Variant     projection.Variant `yaml:"variant,omitempty" json:"variant,omitempty" validate:"omitempty,oneof=basic advanced"`
	Years       int                `yaml:"years,omitempty" json:"years,omitempty"`
	BaseYear    BaseYear           `yaml:"base_year" json:"base_year"`
	Assumptions Drivers            `yaml:"assumptions" json:"assumptions"`
	Advanced    *AdvancedDrivers   `yaml:"advanced,omitempty" json:"advanced,omitempty"`
}

// ResolvedVariant returns the explicit variant, or advanced when advanced drivers are present.
func (s *Scenario) ResolvedVariant() projection.Variant {
	if s.Variant != "" {
		return s.Variant
	}
	if s.Advanced != nil {
		return projection.VariantAdvanced
	}
	return projection.VariantBasic
}

// ApplyDefaults fills the name and years when unset.
func (s *Scenario) ApplyDefaults(name string, years int) {
	if s.Name == "" {
		s.Name = name
	}
	if s.Years == 0 {
		if years <= 0 {
			years = DefaultYears
		}
		s.Years = years
	}
}

// BaseYearData builds the base-year statements with the engine constructors.
func (s *Scenario) BaseYearData() projection.BaseYearData {
	b := s.BaseYear
	pnl := projection.NewPnL(projection.PnLInputs{
		Revenue:           b.Revenue,
		COGS:              b.COGS,
		OperatingExpenses: b.OperatingExpenses,
		Depreciation:      b.Depreciation,
		InterestExpense:   b.InterestExpense,
		TaxRate:           s.Assumptions.TaxRate,
	})
	bs := projection.NewBalanceSheet(b.balanceInputs())
	return projection.NewBaseYearData(pnl, bs)
}

func (b BaseYear) balanceInputs() projection.BalanceSheetInputs {
	return projection.BalanceSheetInputs{
		Cash:                    b.Cash,
		AccountsReceivable:      b.AccountsReceivable,
		Inventory:               b.Inventory,
		GrossPPE:                b.GrossPPE,
		AccumulatedDepreciation: b.AccumulatedDepreciation,
		AccountsPayable:         b.AccountsPayable,
		Debt:                    b.Debt,
		ShareCapital:            b.ShareCapital,
		RetainedEarnings:        b.RetainedEarnings,
	}
}

func (d Drivers) assumptions() projection.Assumptions {
	return projection.Assumptions{
		RevenueGrowthRate:            d.RevenueGrowthRate,
		GrossProfitMargin:            d.GrossProfitMargin,
		OperatingExpenseAsPctRevenue: d.OperatingExpenseAsPctRevenue,
		CapExAsPctRevenue:            d.CapExAsPctRevenue,
		DepreciationRate:             d.DepreciationRate,
		ARDays:                       d.ARDays,
		APDays:                       d.APDays,
		InventoryDays:                d.InventoryDays,
		InterestRateOnDebt:           d.InterestRateOnDebt,
		TaxRate:                      d.TaxRate,
		DividendPayoutRatio:          d.DividendPayoutRatio,
	}
}

// Model returns the engine model for the resolved variant.
func (s *Scenario) Model() (projection.Model, error) {
	switch v := s.ResolvedVariant(); v {
	case projection.VariantBasic:
		return s.Assumptions.assumptions(), nil
	case projection.VariantAdvanced:
		adv := AdvancedDrivers{}
		if s.Advanced != nil {
			adv = *s.Advanced
		}
		return projection.AdvancedAssumptions{
			Assumptions:              s.Assumptions.assumptions(),
			TargetMinimumCash:        adv.TargetMinimumCash,
			InterestIncomeOnCashRate: adv.InterestIncomeOnCashRate,
			NewEquityIssued:          adv.NewEquityIssued,
			ShareBuybacks:            adv.ShareBuybacks,
		}, nil
	default:
		return nil, fmt.Errorf("unknown variant %q", v)
	}
}
