package projection_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"financial_forecast/pkg/core/projection"
	"financial_forecast/pkg/core/projection/projectiontest"
)

const tol = 1e-6

func near(t *testing.T, name string, got, exp float64) {
	t.Helper()
	if math.Abs(got-exp) > tol {
		t.Errorf("%s: expected %.7f, got %.7f", name, exp, got)
	}
}

func TestProjectBasic_YearOne(t *testing.T) {
	proj, err := projection.ProjectBasic(projectiontest.Base(), projectiontest.Assumptions(), 1)
	if err != nil {
		t.Fatalf("ProjectBasic failed: %v", err)
	}
	if len(proj.Statements) != 1 {
		t.Fatalf("Expected 1 year, got %d", len(proj.Statements))
	}
	y1 := proj.Statements[0]
	if y1.Year != 1 {
		t.Errorf("Expected year 1, got %d", y1.Year)
	}

	p := y1.PnL
	near(t, "Revenue", p.Revenue, 1100)
	near(t, "COGS", p.COGS, 660)
	near(t, "GrossProfit", p.GrossProfit, 440)
	near(t, "OperatingExpenses", p.OperatingExpenses, 275)
	near(t, "Depreciation", p.Depreciation, 50)
	near(t, "EBIT", p.EBIT, 115)
	near(t, "InterestExpense", p.InterestExpense, 7.5)
	near(t, "InterestIncome", p.InterestIncome, 0)
	near(t, "EBT", p.EBT, 107.5)
	near(t, "Taxes", p.Taxes, 26.875)
	near(t, "NetIncome", p.NetIncome, 80.625)

	bs := y1.BalanceSheet
	near(t, "AR", bs.AccountsReceivable, 1100.0/365*30)
	near(t, "Inventory", bs.Inventory, 660.0/365*60)
	near(t, "AP", bs.AccountsPayable, 660.0/365*45)
	near(t, "GrossPPE", bs.GrossPPE, 555)
	near(t, "AccumulatedDepreciation", bs.AccumulatedDepreciation, 250)
	near(t, "NetPPE", bs.NetPPE, 305)
	near(t, "Debt", bs.Debt, 150)
	near(t, "ShareCapital", bs.ShareCapital, 200)
	near(t, "RetainedEarnings", bs.RetainedEarnings, 166.4375)

	cf := y1.CashFlow
	near(t, "CFO", cf.NetCashFromOperations, 73.0907534)
	near(t, "CapEx", cf.CapitalExpenditures, 55)
	near(t, "CFI", cf.NetCashFromInvesting, -55)
	near(t, "Dividends", cf.DividendsPaid, 24.1875)
	near(t, "CFF", cf.NetCashFromFinancing, -24.1875)
	near(t, "BeginningCash", cf.BeginningCash, 100)
	near(t, "EndingCash", cf.EndingCash, 93.9032534)
	near(t, "BS Cash", bs.Cash, cf.EndingCash)

	if math.Abs(bs.TotalAssets-bs.TotalLiabilitiesAndEquity) > tol {
		t.Errorf("Balance sheet does not balance: A=%.6f L+E=%.6f", bs.TotalAssets, bs.TotalLiabilitiesAndEquity)
	}
	if len(proj.Diagnostics) != 0 {
		t.Errorf("Expected no diagnostics, got %v", proj.Diagnostics)
	}
}

func TestProjectAdvanced_YearOne(t *testing.T) {
	proj, err := projection.ProjectAdvanced(projectiontest.Base(), projectiontest.Advanced(), 1)
	if err != nil {
		t.Fatalf("ProjectAdvanced failed: %v", err)
	}
	y1 := proj.Statements[0]

	near(t, "InterestIncome", y1.PnL.InterestIncome, 1.0)
	near(t, "EBT", y1.PnL.EBT, 108.5)
	near(t, "NetIncome", y1.PnL.NetIncome, 81.375)
	near(t, "Dividends", y1.CashFlow.DividendsPaid, 24.4125)
	near(t, "NewEquityIssued", y1.CashFlow.NewEquityIssued, 10)
	near(t, "ShareBuybacks", y1.CashFlow.ShareBuybacks, 5)
	near(t, "NewDebtIssued", y1.CashFlow.NewDebtIssued, 0)
	near(t, "DebtRepaid", y1.CashFlow.DebtRepaid, 49.4282534)
	near(t, "Debt", y1.BalanceSheet.Debt, 100.5717466)
	near(t, "ShareCapital", y1.BalanceSheet.ShareCapital, 205)
	near(t, "RetainedEarnings", y1.BalanceSheet.RetainedEarnings, 166.9625)

	if math.Abs(y1.BalanceSheet.Cash-50) > 1e-9 {
		t.Errorf("Expected ending cash at target 50, got %.12f", y1.BalanceSheet.Cash)
	}
	if len(proj.Diagnostics) != 0 {
		t.Errorf("Expected no diagnostics, got %v", proj.Diagnostics)
	}
}

func TestProjectAdvanced_IssuesDebtBelowTarget(t *testing.T) {
	a := projectiontest.Advanced()
	a.TargetMinimumCash = 500

	proj, err := projection.ProjectAdvanced(projectiontest.Base(), a, 1)
	if err != nil {
		t.Fatalf("ProjectAdvanced failed: %v", err)
	}
	cf := proj.Statements[0].CashFlow
	near(t, "NewDebtIssued", cf.NewDebtIssued, 400.5717466)
	near(t, "DebtRepaid", cf.DebtRepaid, 0)
	near(t, "Debt", proj.Statements[0].BalanceSheet.Debt, 550.5717466)
	near(t, "Cash", proj.Statements[0].BalanceSheet.Cash, 500)
}

func TestProjectAdvanced_RepaymentClamped(t *testing.T) {
	// Debt 10 instead of 150; share capital absorbs the difference so the base still balances.
	base := projectiontest.Base()
	in := base.BalanceSheet.Inputs()
	in.Debt = 10
	in.ShareCapital = 340
	base = projection.NewBaseYearData(base.PnL, projection.NewBalanceSheet(in))

	proj, err := projection.ProjectAdvanced(base, projectiontest.Advanced(), 1)
	if err != nil {
		t.Fatalf("ProjectAdvanced failed: %v", err)
	}
	y1 := proj.Statements[0]

	near(t, "DebtRepaid", y1.CashFlow.DebtRepaid, 10)
	near(t, "NewDebtIssued", y1.CashFlow.NewDebtIssued, 0)
	near(t, "Debt", y1.BalanceSheet.Debt, 0)
	// Surplus is not redistributed: cash ends above target
	near(t, "Cash", y1.BalanceSheet.Cash, 93.1032534)

	if len(proj.Diagnostics) != 1 {
		t.Fatalf("Expected one diagnostic, got %v", proj.Diagnostics)
	}
	d := proj.Diagnostics[0]
	if d.Kind != projection.DiagnosticRepaymentClamped || d.Year != 1 || d.Clamp == nil {
		t.Fatalf("Unexpected diagnostic: %+v", d)
	}
	near(t, "RequestedRepayment", d.Clamp.RequestedRepayment, 53.1032534)
	near(t, "UnusedSurplus", d.Clamp.UnusedSurplus, 43.1032534)
	if !proj.Balanced() {
		t.Error("A clamp is not an imbalance")
	}
}

func TestProject_Properties(t *testing.T) {
	zeroDebt := projectiontest.Base()
	in := zeroDebt.BalanceSheet.Inputs()
	in.Debt = 0
	in.ShareCapital = 350
	zeroDebt = projection.NewBaseYearData(zeroDebt.PnL, projection.NewBalanceSheet(in))

	shrinking := projectiontest.Assumptions()
	shrinking.RevenueGrowthRate = -0.2
	shrinking.GrossProfitMargin = 0.1

	tests := []struct {
		name  string
		base  projection.BaseYearData
		model projection.Model
	}{
		{"basic", projectiontest.Base(), projectiontest.Assumptions()},
		{"basic shrinking", projectiontest.Base(), shrinking},
		{"advanced", projectiontest.Base(), projectiontest.Advanced()},
		{"advanced zero debt", zeroDebt, projectiontest.Advanced()},
		{"advanced shrinking", projectiontest.Base(), projection.AdvancedAssumptions{Assumptions: shrinking, TargetMinimumCash: 200}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proj, err := projection.NewEngine(nil).Project(tt.base, tt.model, 10)
			if err != nil {
				t.Fatalf("Project failed: %v", err)
			}
			if len(proj.Statements) != 10 {
				t.Fatalf("Expected 10 years, got %d", len(proj.Statements))
			}
			prevEnding := tt.base.Cash
			for i, fs := range proj.Statements {
				if fs.Year != i+1 {
					t.Errorf("Expected year %d, got %d", i+1, fs.Year)
				}
				bs := fs.BalanceSheet
				if math.Abs(bs.TotalAssets-bs.TotalLiabilitiesAndEquity) > tol {
					t.Errorf("Year %d: A=%.6f L+E=%.6f", fs.Year, bs.TotalAssets, bs.TotalLiabilitiesAndEquity)
				}
				if fs.CashFlow.EndingCash != bs.Cash {
					t.Errorf("Year %d: ending cash %.6f != BS cash %.6f", fs.Year, fs.CashFlow.EndingCash, bs.Cash)
				}
				if fs.CashFlow.BeginningCash != prevEnding {
					t.Errorf("Year %d: beginning cash %.6f != prior ending %.6f", fs.Year, fs.CashFlow.BeginningCash, prevEnding)
				}
				if bs.Debt < 0 {
					t.Errorf("Year %d: negative debt %.6f", fs.Year, bs.Debt)
				}
				prevEnding = fs.CashFlow.EndingCash
			}
			if !proj.Balanced() {
				t.Errorf("Unexpected imbalance diagnostics: %v", proj.Diagnostics)
			}
		})
	}
}

func TestProject_Deterministic(t *testing.T) {
	run := func() []byte {
		proj, err := projection.ProjectAdvanced(projectiontest.Base(), projectiontest.Advanced(), 7)
		if err != nil {
			t.Fatalf("ProjectAdvanced failed: %v", err)
		}
		b, err := json.Marshal(proj)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		return b
	}
	if !bytes.Equal(run(), run()) {
		t.Error("Expected identical output for identical inputs")
	}
}

func TestProject_ConfigErrors(t *testing.T) {
	for _, n := range []int{0, -3} {
		proj, err := projection.ProjectBasic(projectiontest.Base(), projectiontest.Assumptions(), n)
		if !errors.Is(err, projection.ErrInvalidForecastYears) {
			t.Errorf("years=%d: expected ErrInvalidForecastYears, got %v", n, err)
		}
		if proj != nil {
			t.Errorf("years=%d: expected no partial output", n)
		}
	}

	a := projectiontest.Advanced()
	a.TargetMinimumCash = -1
	_, err := projection.ProjectAdvanced(projectiontest.Base(), a, 5)
	if !errors.Is(err, projection.ErrNegativeTargetCash) {
		t.Errorf("Expected ErrNegativeTargetCash, got %v", err)
	}
	var cfgErr *projection.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "target_minimum_cash" {
		t.Errorf("Expected ConfigError on target_minimum_cash, got %v", err)
	}

	// Zero target is allowed
	a.TargetMinimumCash = 0
	if _, err := projection.ProjectAdvanced(projectiontest.Base(), a, 5); err != nil {
		t.Errorf("Zero target should be accepted: %v", err)
	}
}

// leakyModel breaks the balance identity from year 2 onward.
type leakyModel struct {
	projection.Assumptions
}

func (m leakyModel) Step(prior projection.YearState) projection.StepResult {
	res := projection.StepBasic(prior, m.Assumptions)
	if prior.PnL.Revenue > 1000 {
		res.BalanceSheet.TotalAssets += 0.5
	}
	return res
}

func TestProject_InvariantViolation(t *testing.T) {
	model := leakyModel{projectiontest.Assumptions()}

	engine := projection.NewEngine(nil)
	proj, err := engine.Project(projectiontest.Base(), model, 3)
	if err != nil {
		t.Fatalf("Non-strict run should not fail: %v", err)
	}
	if len(proj.Statements) != 3 {
		t.Fatalf("Expected all 3 years, got %d", len(proj.Statements))
	}
	if proj.Balanced() {
		t.Error("Expected imbalance to be reported")
	}
	outcomes := proj.Outcomes()
	if !outcomes[0].OK() {
		t.Errorf("Year 1 should balance: %v", outcomes[0].Violation)
	}
	for _, o := range outcomes[1:] {
		if o.OK() {
			t.Errorf("Year %d should carry a violation", o.Statements.Year)
			continue
		}
		near(t, "Difference", o.Violation.Difference, 0.5)
	}

	engine.Strict = true
	proj, err = engine.Project(projectiontest.Base(), model, 3)
	var v *projection.InvariantViolation
	if !errors.As(err, &v) {
		t.Fatalf("Expected InvariantViolation, got %v", err)
	}
	if v.Year != 2 {
		t.Errorf("Expected violation in year 2, got %d", v.Year)
	}
	if proj != nil {
		t.Error("Strict mode should return no partial output")
	}
}

func TestProject_NonFiniteYearAborts(t *testing.T) {
	tests := []struct {
		name   string
		growth float64
	}{
		{"overflow", 1e308},
		{"nan", math.NaN()},
		{"inf", math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := projectiontest.Assumptions()
			a.RevenueGrowthRate = tt.growth

			for _, strict := range []bool{false, true} {
				engine := projection.NewEngine(nil)
				engine.Strict = strict
				proj, err := engine.Project(projectiontest.Base(), a, 3)
				if proj != nil {
					t.Errorf("strict=%v: expected no output", strict)
				}
				if !errors.Is(err, projection.ErrNonFiniteStatement) {
					t.Fatalf("strict=%v: expected ErrNonFiniteStatement, got %v", strict, err)
				}
				var ne *projection.NumericError
				if !errors.As(err, &ne) {
					t.Fatalf("strict=%v: expected NumericError, got %T", strict, err)
				}
				if ne.Year != 1 || ne.Line != "pnl.revenue" {
					t.Errorf("strict=%v: unexpected error %+v", strict, ne)
				}
			}
		})
	}
}

func TestCheckFinite(t *testing.T) {
	proj, err := projection.ProjectBasic(projectiontest.Base(), projectiontest.Assumptions(), 1)
	if err != nil {
		t.Fatalf("ProjectBasic failed: %v", err)
	}
	fs := proj.Statements[0]
	if ne := projection.CheckFinite(fs); ne != nil {
		t.Fatalf("Clean year flagged: %v", ne)
	}
	fs.CashFlow.EndingCash = math.Inf(-1)
	ne := projection.CheckFinite(fs)
	if ne == nil || ne.Line != "cash_flow_statement.ending_cash" {
		t.Fatalf("Expected ending cash to be flagged, got %+v", ne)
	}
}

func TestProject_ClampIsNotAWarning(t *testing.T) {
	base := projectiontest.Base()
	in := base.BalanceSheet.Inputs()
	in.Debt = 10
	in.ShareCapital = 340
	base = projection.NewBaseYearData(base.PnL, projection.NewBalanceSheet(in))

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	proj, err := projection.NewEngine(logger).Project(base, projectiontest.Advanced(), 3)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if len(proj.Diagnostics) == 0 {
		t.Fatal("Expected clamp diagnostics")
	}

	clampLogs := 0
	for _, e := range hook.AllEntries() {
		if e.Level <= logrus.WarnLevel {
			t.Errorf("Unexpected %s entry: %s", e.Level, e.Message)
		}
		if strings.HasPrefix(e.Message, "debt repayment capped") {
			clampLogs++
			if e.Level != logrus.InfoLevel {
				t.Errorf("Clamp logged at %s", e.Level)
			}
		}
	}
	if clampLogs != len(proj.Diagnostics) {
		t.Errorf("Expected %d clamp entries, got %d", len(proj.Diagnostics), clampLogs)
	}
}

func TestStep_NextThreadsEndingCash(t *testing.T) {
	base := projectiontest.Base()
	res := projection.StepBasic(base.State(), projectiontest.Assumptions())
	next := res.Next()
	if next.Cash != res.CashFlow.EndingCash {
		t.Errorf("Expected next cash %.6f, got %.6f", res.CashFlow.EndingCash, next.Cash)
	}
	if next.BalanceSheet != res.BalanceSheet || next.PnL != res.PnL {
		t.Error("Next should carry the step's statements")
	}

	// The base seed is never modified by a step
	if base.BalanceSheet.Cash != 100 || base.PnL.Revenue != 1000 {
		t.Error("Base year mutated")
	}
}

func TestNewPnL_NoTaxOnLoss(t *testing.T) {
	p := projection.NewPnL(projection.PnLInputs{
		Revenue:           100,
		COGS:              80,
		OperatingExpenses: 40,
		TaxRate:           0.25,
	})
	near(t, "EBT", p.EBT, -20)
	near(t, "Taxes", p.Taxes, 0)
	near(t, "NetIncome", p.NetIncome, -20)
}

func TestProjection_Year(t *testing.T) {
	proj, err := projection.ProjectBasic(projectiontest.Base(), projectiontest.Assumptions(), 3)
	if err != nil {
		t.Fatalf("ProjectBasic failed: %v", err)
	}
	if _, ok := proj.Year(0); ok {
		t.Error("Year 0 is the base, not a projected year")
	}
	fs, ok := proj.Year(3)
	if !ok || fs.Year != 3 {
		t.Errorf("Expected year 3, got %+v", fs.Year)
	}
	if _, ok := proj.Year(4); ok {
		t.Error("Expected year 4 to be out of range")
	}
}
