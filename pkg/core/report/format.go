package report

import (
	"strings"
	"unicode"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"financial_forecast/pkg/core/export"
	"financial_forecast/pkg/core/ratios"
)

// DefaultCurrency is used when Options.Currency is empty or unknown.
const DefaultCurrency = money.USD

// FormatMoney renders v in the currency's display form, e.g. "$1,100.00".
// Unknown currency codes fall back to a plain two-decimal number.
func FormatMoney(v float64, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return export.Round2(v).StringFixed(2)
	}
	minor := decimal.NewFromFloat(v).Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

// FormatRatio renders a ratio to four decimals, or its status.
func FormatRatio(r ratios.Ratio) string {
	switch r.Status {
	case ratios.StatusOK:
		return decimal.NewFromFloat(r.Value).StringFixed(4)
	case ratios.StatusInfinite:
		return "∞"
	default:
		return "N/A"
	}
}

// FormatPercent renders a share with one decimal and a percent sign.
func FormatPercent(r ratios.Ratio) string {
	if r.Status != ratios.StatusOK {
		return FormatRatio(r)
	}
	return decimal.NewFromFloat(r.Value).Shift(2).StringFixed(1) + "%"
}

// Humanize splits a CamelCase field name into words, keeping acronyms: "ChangeInAR" → "Change In AR".
func Humanize(field string) string {
	runes := []rune(field)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte(' ')
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}
