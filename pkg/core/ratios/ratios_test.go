package ratios_test

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"financial_forecast/pkg/core/projection"
	"financial_forecast/pkg/core/projection/projectiontest"
	"financial_forecast/pkg/core/ratios"
)

func expectOK(t *testing.T, name string, r ratios.Ratio, exp float64) {
	t.Helper()
	if !r.OK() {
		t.Errorf("%s: expected ok, got %s", name, r.Status)
		return
	}
	if math.Abs(r.Value-exp) > 1e-9 {
		t.Errorf("%s: expected %.9f, got %.9f", name, exp, r.Value)
	}
}

func TestForYear_AverageBalancesAgainstBase(t *testing.T) {
	proj, err := projection.ProjectBasic(projectiontest.Base(), projectiontest.Assumptions(), 1)
	if err != nil {
		t.Fatalf("ProjectBasic failed: %v", err)
	}
	all := ratios.ForProjection(proj)
	if len(all) != 1 {
		t.Fatalf("Expected 1 ratio set, got %d", len(all))
	}
	r := all[0]
	fs := proj.Statements[0]
	bs, base := fs.BalanceSheet, proj.Base.BalanceSheet

	expectOK(t, "GrossProfitMargin", r.GrossProfitMargin, 0.40)
	expectOK(t, "OperatingProfitMargin", r.OperatingProfitMargin, 115.0/1100)
	expectOK(t, "NetProfitMargin", r.NetProfitMargin, 80.625/1100)
	expectOK(t, "ROA", r.ReturnOnAssets, 80.625/((bs.TotalAssets+base.TotalAssets)/2))
	expectOK(t, "ROE", r.ReturnOnEquity, 80.625/((bs.TotalEquity+base.TotalEquity)/2))
	expectOK(t, "CurrentRatio", r.CurrentRatio, (bs.Cash+bs.AccountsReceivable+bs.Inventory)/bs.AccountsPayable)
	expectOK(t, "QuickRatio", r.QuickRatio, (bs.Cash+bs.AccountsReceivable)/bs.AccountsPayable)
	expectOK(t, "CashRatio", r.CashRatio, bs.Cash/bs.AccountsPayable)
	expectOK(t, "DebtToEquity", r.DebtToEquity, 150/bs.TotalEquity)
	expectOK(t, "DebtToAssets", r.DebtToAssets, 150/bs.TotalAssets)
	expectOK(t, "InterestCoverage", r.InterestCoverage, 115/7.5)

	invTurn := 660 / ((bs.Inventory + 70) / 2)
	expectOK(t, "InventoryTurnover", r.InventoryTurnover, invTurn)
	expectOK(t, "DIO", r.DaysInventoryOutstanding, 365/invTurn)
	arTurn := 1100 / ((bs.AccountsReceivable + 50) / 2)
	expectOK(t, "ReceivablesTurnover", r.ReceivablesTurnover, arTurn)
	expectOK(t, "DSO", r.DaysSalesOutstanding, 365/arTurn)
	apTurn := 660 / ((bs.AccountsPayable + 60) / 2)
	expectOK(t, "PayablesTurnover", r.PayablesTurnover, apTurn)
	expectOK(t, "DPO", r.DaysPayablesOutstanding, 365/apTurn)
	expectOK(t, "AssetTurnover", r.AssetTurnover, 1100/((bs.TotalAssets+base.TotalAssets)/2))
}

func TestForYear_NoPriorUsesCurrentBalances(t *testing.T) {
	proj, err := projection.ProjectBasic(projectiontest.Base(), projectiontest.Assumptions(), 1)
	if err != nil {
		t.Fatalf("ProjectBasic failed: %v", err)
	}
	fs := proj.Statements[0]
	r := ratios.ForYear(fs, nil)

	expectOK(t, "ROA", r.ReturnOnAssets, fs.PnL.NetIncome/fs.BalanceSheet.TotalAssets)
	// Days on closing balances reproduce the assumption drivers
	expectOK(t, "DSO", r.DaysSalesOutstanding, 30)
	expectOK(t, "DIO", r.DaysInventoryOutstanding, 60)
	expectOK(t, "DPO", r.DaysPayablesOutstanding, 45)
}

func TestForYear_ZeroDenominators(t *testing.T) {
	fs := projection.FinancialStatements{
		Year: 1,
		PnL:  projection.NewPnL(projection.PnLInputs{Revenue: 0, COGS: 0}),
		BalanceSheet: projection.NewBalanceSheet(projection.BalanceSheetInputs{
			Cash:         10,
			ShareCapital: 10,
		}),
	}
	r := ratios.ForYear(fs, nil)

	if r.GrossProfitMargin.Status != ratios.StatusUndefined {
		t.Errorf("Margin on zero revenue should be undefined, got %s", r.GrossProfitMargin.Status)
	}
	if r.CurrentRatio.Status != ratios.StatusInfinite {
		t.Errorf("Current ratio with no payables should be infinite, got %s", r.CurrentRatio.Status)
	}
	if r.InterestCoverage.Status != ratios.StatusInfinite {
		t.Errorf("Coverage with no interest should be infinite, got %s", r.InterestCoverage.Status)
	}
	if r.InventoryTurnover.Status != ratios.StatusUndefined || r.DaysInventoryOutstanding.Status != ratios.StatusUndefined {
		t.Errorf("Inventory ratios should be undefined: %v / %v", r.InventoryTurnover, r.DaysInventoryOutstanding)
	}
	expectOK(t, "DebtToEquity", r.DebtToEquity, 0)

	fs.BalanceSheet = projection.NewBalanceSheet(projection.BalanceSheetInputs{Cash: 10, Debt: 10})
	if ratios.ForYear(fs, nil).DebtToEquity.Status != ratios.StatusInfinite {
		t.Error("D/E with zero equity should be infinite")
	}
}

func TestForRun_ChainsPriorYears(t *testing.T) {
	proj, err := projection.ProjectAdvanced(projectiontest.Base(), projectiontest.Advanced(), 4)
	if err != nil {
		t.Fatalf("ProjectAdvanced failed: %v", err)
	}
	all := ratios.ForRun(proj.Statements, nil)
	if len(all) != 4 {
		t.Fatalf("Expected 4 ratio sets, got %d", len(all))
	}

	// Year 1 without a base falls back to closing balances
	first := proj.Statements[0]
	expectOK(t, "Y1 ROA", all[0].ReturnOnAssets, first.PnL.NetIncome/first.BalanceSheet.TotalAssets)

	// Year 3 averages with year 2
	y2, y3 := proj.Statements[1].BalanceSheet, proj.Statements[2]
	expectOK(t, "Y3 ROA", all[2].ReturnOnAssets, y3.PnL.NetIncome/((y3.BalanceSheet.TotalAssets+y2.TotalAssets)/2))
	for i, r := range all {
		if r.Year != i+1 {
			t.Errorf("Expected year %d, got %d", i+1, r.Year)
		}
	}
}

func TestRatio_JSON(t *testing.T) {
	fs := projection.FinancialStatements{
		Year:         1,
		PnL:          projection.NewPnL(projection.PnLInputs{Revenue: 100, COGS: 50}),
		BalanceSheet: projection.NewBalanceSheet(projection.BalanceSheetInputs{Cash: 10, ShareCapital: 10}),
	}
	b, err := json.Marshal(ratios.ForYear(fs, nil))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"current_ratio":{"value":null,"status":"infinite"}`) {
		t.Errorf("Expected infinite current ratio with null value, got %s", s)
	}
	if !strings.Contains(s, `"gross_profit_margin":{"value":0.5,"status":"ok"}`) {
		t.Errorf("Expected gross margin 0.5, got %s", s)
	}

	var back ratios.YearRatios
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back.CurrentRatio.Status != ratios.StatusInfinite || back.GrossProfitMargin.Value != 0.5 {
		t.Errorf("Round trip lost data: %+v", back)
	}
}

func TestEntries_Order(t *testing.T) {
	entries := ratios.YearRatios{}.Entries()
	if len(entries) != 18 {
		t.Fatalf("Expected 18 ratios, got %d", len(entries))
	}
	if entries[0].Name != "Gross Profit Margin" || entries[17].Name != "Asset Turnover" {
		t.Errorf("Unexpected order: first %q last %q", entries[0].Name, entries[17].Name)
	}
}
