package calc

import (
	"fmt"
	"math"
)

// DefaultBalanceTolerance is the absolute tolerance used for A = L + E checks.
const DefaultBalanceTolerance = 1e-6

// VerificationResult holds the status of integrity checks
type VerificationResult struct {
	IsBalanced bool     `json:"is_balanced"`
	BalanceGap float64  `json:"balance_gap"`
	Warnings   []string `json:"warnings,omitempty"`
}

// CheckBalance verifies Assets = Liabilities + Equity within an absolute tolerance.
// A non-positive tolerance falls back to DefaultBalanceTolerance.
func CheckBalance(totalAssets, totalLiabilitiesAndEquity, tolerance float64) VerificationResult {
	if tolerance <= 0 {
		tolerance = DefaultBalanceTolerance
	}
	gap := totalAssets - totalLiabilitiesAndEquity
	isBalanced := math.Abs(gap) <= tolerance

	var warnings []string
	if !isBalanced {
		warnings = append(warnings, fmt.Sprintf("Balance Sheet out of balance by %.6f", gap))
	}

	return VerificationResult{
		IsBalanced: isBalanced,
		BalanceGap: gap,
		Warnings:   warnings,
	}
}
