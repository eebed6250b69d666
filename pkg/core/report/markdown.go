// Package report renders a projection run as Markdown, HTML or terminal text.
package report

import (
	"fmt"
	"math"
	"strings"

	"financial_forecast/pkg/core/export"
	"financial_forecast/pkg/core/projection"
	"financial_forecast/pkg/core/ratios"
	"financial_forecast/pkg/core/validate"
)

// DisplayBalanceTolerance is the difference above which the balance check line is flagged.
// It is looser than the engine's invariant tolerance because it compares displayed cents.
const DisplayBalanceTolerance = 0.01

// Options control report rendering.
type Options struct {
	Title    string
	Currency string // ISO code, defaults to USD
}

func (o Options) currency() string {
	if o.Currency == "" {
		return DefaultCurrency
	}
	return o.Currency
}

// statementSections pairs each table heading with its export columns.
var statementSections = []struct {
	title     string
	statement string
}{
	{"Profit & Loss", "P&L"},
	{"Balance Sheet", "BS"},
	{"Cash Flow Statement", "CFS"},
}

// Markdown renders the run. yearRatios may be nil to omit the ratio table.
func Markdown(p *projection.Projection, yearRatios []ratios.YearRatios, opts Options) string {
	var b strings.Builder
	cur := opts.currency()

	title := opts.Title
	if title == "" {
		title = "Financial Projection"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if p == nil || len(p.Statements) == 0 {
		b.WriteString("_No projected years._\n")
		return b.String()
	}
	fmt.Fprintf(&b, "Variant: **%s** · Years: **%d** · Currency: **%s**\n\n", p.Variant, len(p.Statements), cur)

	writeSummary(&b, p, cur)

	for _, s := range statementSections {
		fmt.Fprintf(&b, "## %s\n\n", s.title)
		writeYearHeader(&b, p.Statements)
		for _, c := range export.ColumnsFor(s.statement) {
			fmt.Fprintf(&b, "| %s |", Humanize(c.Field))
			for _, fs := range p.Statements {
				fmt.Fprintf(&b, " %s |", FormatMoney(c.Value(fs), cur))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	writeBalanceCheck(&b, p, cur)
	writeDiagnostics(&b, p)
	writeGrowth(&b, p)

	if len(yearRatios) > 0 {
		b.WriteString("## Ratios\n\n")
		writeRatioTable(&b, yearRatios)
	}

	return b.String()
}

// RatioTable renders only the ratio table, one column per year.
func RatioTable(yearRatios []ratios.YearRatios) string {
	var b strings.Builder
	writeRatioTable(&b, yearRatios)
	return b.String()
}

func writeRatioTable(b *strings.Builder, yearRatios []ratios.YearRatios) {
	if len(yearRatios) == 0 {
		return
	}
	b.WriteString("| Ratio |")
	for _, r := range yearRatios {
		fmt.Fprintf(b, " Year %d |", r.Year)
	}
	b.WriteString("\n|---|")
	for range yearRatios {
		b.WriteString("---:|")
	}
	b.WriteString("\n")
	for i, named := range yearRatios[0].Entries() {
		fmt.Fprintf(b, "| %s |", named.Name)
		for _, r := range yearRatios {
			fmt.Fprintf(b, " %s |", FormatRatio(r.Entries()[i].Ratio))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeYearHeader(b *strings.Builder, statements []projection.FinancialStatements) {
	b.WriteString("| Line Item |")
	for _, fs := range statements {
		fmt.Fprintf(b, " Year %d |", fs.Year)
	}
	b.WriteString("\n|---|")
	for range statements {
		b.WriteString("---:|")
	}
	b.WriteString("\n")
}

func writeSummary(b *strings.Builder, p *projection.Projection, cur string) {
	last := p.Statements[len(p.Statements)-1]
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(b, "- Revenue: %s → %s\n", FormatMoney(p.Base.PnL.Revenue, cur), FormatMoney(last.PnL.Revenue, cur))
	if cagr, err := validate.CAGROf(p, validate.Revenue); err == nil {
		fmt.Fprintf(b, "- Revenue CAGR: %.2f%%\n", cagr.CAGR)
	}
	fmt.Fprintf(b, "- Year %d net income: %s\n", last.Year, FormatMoney(last.PnL.NetIncome, cur))
	fmt.Fprintf(b, "- Ending cash: %s · Ending debt: %s\n", FormatMoney(last.BalanceSheet.Cash, cur), FormatMoney(last.BalanceSheet.Debt, cur))

	fcf := 0.0
	for _, fs := range p.Statements {
		fcf += validate.CalculateFCF(fs.CashFlow)
	}
	fmt.Fprintf(b, "- Cumulative free cash flow: %s\n\n", FormatMoney(fcf, cur))
}

// growthLines are the rows of the year-over-year table.
var growthLines = []struct {
	label string
	line  validate.Line
}{
	{"Revenue", validate.Revenue},
	{"Net Income", validate.NetIncome},
	{"Cash", validate.EndCash},
	{"Debt", validate.Debt},
}

func writeGrowth(b *strings.Builder, p *projection.Projection) {
	b.WriteString("## Year-over-Year Growth\n\n")
	writeYearHeader(b, p.Statements)
	for _, g := range growthLines {
		fmt.Fprintf(b, "| %s |", g.label)
		for _, yoy := range validate.YoYSeries(p, g.label, g.line) {
			if yoy.PriorValue == 0 {
				b.WriteString(" N/A |")
				continue
			}
			fmt.Fprintf(b, " %.2f%% |", yoy.ChangePct)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeBalanceCheck(b *strings.Builder, p *projection.Projection, cur string) {
	b.WriteString("## Balance Check\n\n")
	b.WriteString("| Year | Total Assets | Total Liabilities & Equity | Difference | Status |\n")
	b.WriteString("|---|---:|---:|---:|---|\n")
	for _, fs := range p.Statements {
		bs := fs.BalanceSheet
		diff := bs.TotalAssets - bs.TotalLiabilitiesAndEquity
		status := "OK"
		if math.Abs(diff) > DisplayBalanceTolerance {
			status = "**IMBALANCE**"
		}
		fmt.Fprintf(b, "| %d | %s | %s | %s | %s |\n", fs.Year,
			FormatMoney(bs.TotalAssets, cur), FormatMoney(bs.TotalLiabilitiesAndEquity, cur),
			export.Round2(diff).StringFixed(2), status)
	}
	b.WriteString("\n")
}

func writeDiagnostics(b *strings.Builder, p *projection.Projection) {
	if len(p.Diagnostics) == 0 {
		return
	}
	b.WriteString("## Diagnostics\n\n")
	for _, d := range p.Diagnostics {
		fmt.Fprintf(b, "- Year %d (`%s`): %s\n", d.Year, d.Kind, d.Message)
	}
	b.WriteString("\n")
}

// CommonSizeTable renders the common-size views as two tables: income
// statement over revenue and balance sheet over total assets.
func CommonSizeTable(views []ratios.CommonSize) string {
	if len(views) == 0 {
		return ""
	}
	var b strings.Builder
	writeShareTable(&b, "% of Revenue", views, func(v ratios.CommonSize) []ratios.Share { return v.IncomeStatement })
	writeShareTable(&b, "% of Total Assets", views, func(v ratios.CommonSize) []ratios.Share { return v.BalanceSheet })
	return b.String()
}

func writeShareTable(b *strings.Builder, title string, views []ratios.CommonSize, lines func(ratios.CommonSize) []ratios.Share) {
	fmt.Fprintf(b, "| %s |", title)
	for _, v := range views {
		fmt.Fprintf(b, " Year %d |", v.Year)
	}
	b.WriteString("\n|---|")
	for range views {
		b.WriteString("---:|")
	}
	b.WriteString("\n")
	for i, share := range lines(views[0]) {
		fmt.Fprintf(b, "| %s |", share.Line)
		for _, v := range views {
			fmt.Fprintf(b, " %s |", FormatPercent(lines(v)[i].Ratio))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
