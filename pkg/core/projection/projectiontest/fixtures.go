// Package projectiontest provides the reference base year and assumption sets
// used across the forecast packages' tests.
package projectiontest

import "financial_forecast/pkg/core/projection"

// Base is the reference company: Assets = 520, L&E = 520.
func Base() projection.BaseYearData {
	pnl := projection.NewPnL(projection.PnLInputs{
		Revenue:           1000,
		COGS:              600,
		OperatingExpenses: 250,
		Depreciation:      50,
		InterestExpense:   10,
		TaxRate:           0.25,
	})
	bs := projection.NewBalanceSheet(projection.BalanceSheetInputs{
		Cash:                    100,
		AccountsReceivable:      50,
		Inventory:               70,
		GrossPPE:                500,
		AccumulatedDepreciation: 200,
		AccountsPayable:         60,
		Debt:                    150,
		ShareCapital:            200,
		RetainedEarnings:        110,
	})
	return projection.NewBaseYearData(pnl, bs)
}

// Assumptions are the reference basic drivers.
func Assumptions() projection.Assumptions {
	return projection.Assumptions{
		RevenueGrowthRate:            0.10,
		GrossProfitMargin:            0.40,
		OperatingExpenseAsPctRevenue: 0.25,
		CapExAsPctRevenue:            0.05,
		DepreciationRate:             0.10,
		ARDays:                       30,
		APDays:                       45,
		InventoryDays:                60,
		InterestRateOnDebt:           0.05,
		TaxRate:                      0.25,
		DividendPayoutRatio:          0.30,
	}
}

// Advanced extends Assumptions with a 50 cash target and modest equity activity.
func Advanced() projection.AdvancedAssumptions {
	return projection.AdvancedAssumptions{
		Assumptions:              Assumptions(),
		TargetMinimumCash:        50,
		InterestIncomeOnCashRate: 0.01,
		NewEquityIssued:          10,
		ShareBuybacks:            5,
	}
}
