package calc

import (
	"math"
	"testing"
)

func TestCheckBalance(t *testing.T) {
	res := CheckBalance(520, 520, 1e-6)
	if !res.IsBalanced {
		t.Errorf("Expected balanced, gap %f", res.BalanceGap)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", res.Warnings)
	}

	res = CheckBalance(520.5, 520, 1e-6)
	if res.IsBalanced {
		t.Error("Expected imbalance to be detected")
	}
	if math.Abs(res.BalanceGap-0.5) > 1e-12 {
		t.Errorf("Expected gap 0.5, got %f", res.BalanceGap)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("Expected one warning, got %v", res.Warnings)
	}
}

func TestCheckBalance_DefaultTolerance(t *testing.T) {
	// 1e-7 is inside the default 1e-6 band
	if !CheckBalance(100.0000001, 100, 0).IsBalanced {
		t.Error("Expected default tolerance to absorb 1e-7")
	}
	if CheckBalance(100.00001, 100, 0).IsBalanced {
		t.Error("Expected 1e-5 to exceed default tolerance")
	}
}

func TestSafeDivAndDays(t *testing.T) {
	if _, ok := SafeDiv(1, 0); ok {
		t.Error("Expected division by zero to be undefined")
	}
	v, ok := SafeDiv(10, 4)
	if !ok || v != 2.5 {
		t.Errorf("Expected 2.5, got %f", v)
	}
	if _, ok := SafeDiv(1e308, 1e-308); ok {
		t.Error("Expected an overflowing quotient to be undefined")
	}

	// AR = 1100 / 365 * 30
	ar := DaysOf(1100, 30)
	if math.Abs(ar-90.4109589) > 1e-6 {
		t.Errorf("Expected AR ~90.41, got %f", ar)
	}

	days, ok := TurnoverToDays(12.1666)
	if !ok || math.Abs(days-30.0) > 0.01 {
		t.Errorf("Expected ~30 days, got %f", days)
	}
	if _, ok := TurnoverToDays(0); ok {
		t.Error("Expected zero turnover to be undefined")
	}
}

func TestGrowthRate(t *testing.T) {
	g, ok := GrowthRate(1100, 1000)
	if !ok || math.Abs(g-0.10) > 1e-12 {
		t.Errorf("Expected 10%% growth, got %f", g)
	}
	if _, ok := GrowthRate(5, 0); ok {
		t.Error("Expected growth from zero to be undefined")
	}
}
