package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"financial_forecast/pkg/core/projection"
	"financial_forecast/pkg/core/projection/projectiontest"
	"financial_forecast/pkg/core/ratios"
)

// countTables parses md and returns the number of top-level GFM tables.
func countTables(md string) int {
	doc := markdown.Parser().Parse(text.NewReader([]byte(md)))
	n := 0
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Kind() == extast.KindTable {
			n++
		}
	}
	return n
}

func basicRun(t *testing.T, years int) *projection.Projection {
	t.Helper()
	proj, err := projection.ProjectBasic(projectiontest.Base(), projectiontest.Assumptions(), years)
	if err != nil {
		t.Fatalf("ProjectBasic failed: %v", err)
	}
	return proj
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		v        float64
		currency string
		want     string
	}{
		{1100, "USD", "$1,100.00"},
		{93.9032534, "USD", "$93.90"},
		{-40.4109589, "USD", "-$40.41"},
		{80.625, "USD", "$80.63"},
		{12.5, "XXX-unknown", "12.50"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.v, tt.currency); got != tt.want {
			t.Errorf("FormatMoney(%v, %s) = %q, want %q", tt.v, tt.currency, got, tt.want)
		}
	}
}

func TestHumanize(t *testing.T) {
	tests := map[string]string{
		"Revenue":                   "Revenue",
		"COGS":                      "COGS",
		"GrossPPE":                  "Gross PPE",
		"ChangeInAR":                "Change In AR",
		"TotalLiabilitiesAndEquity": "Total Liabilities And Equity",
		"EBIT":                      "EBIT",
	}
	for in, want := range tests {
		if got := Humanize(in); got != want {
			t.Errorf("Humanize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatRatio(t *testing.T) {
	if got := FormatRatio(ratios.Ratio{Value: 0.4, Status: ratios.StatusOK}); got != "0.4000" {
		t.Errorf("Expected 0.4000, got %q", got)
	}
	if got := FormatRatio(ratios.Ratio{Status: ratios.StatusInfinite}); got != "∞" {
		t.Errorf("Expected ∞, got %q", got)
	}
	if got := FormatRatio(ratios.Ratio{Status: ratios.StatusUndefined}); got != "N/A" {
		t.Errorf("Expected N/A, got %q", got)
	}
}

func TestMarkdown_Sections(t *testing.T) {
	proj := basicRun(t, 3)
	md := Markdown(proj, ratios.ForProjection(proj), Options{Title: "Acme Forecast"})

	for _, want := range []string{
		"# Acme Forecast",
		"## Summary",
		"Revenue CAGR: 10.00%",
		"## Profit & Loss",
		"## Balance Sheet",
		"## Cash Flow Statement",
		"## Balance Check",
		"## Ratios",
		"## Year-over-Year Growth",
		"| Revenue | 10.00% | 10.00% | 10.00% |",
		"| Revenue | $1,100.00 | $1,210.00 | $1,331.00 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown missing %q", want)
		}
	}
	if strings.Contains(md, "## Diagnostics") {
		t.Error("Clean run should have no diagnostics section")
	}
	if strings.Contains(md, "IMBALANCE") {
		t.Error("Clean run should not flag imbalance")
	}

	// Three statements, balance check, growth, ratios
	if n := countTables(md); n != 6 {
		t.Errorf("Expected 6 tables, got %d", n)
	}
}

func TestMarkdown_DiagnosticsAndImbalance(t *testing.T) {
	proj := basicRun(t, 1)
	proj.Statements[0].BalanceSheet.TotalAssets += 1
	proj.Diagnostics = append(proj.Diagnostics, projection.Diagnostic{
		Year:    1,
		Kind:    projection.DiagnosticRepaymentClamped,
		Message: "debt repayment capped",
	})

	md := Markdown(proj, nil, Options{})
	if !strings.Contains(md, "# Financial Projection") {
		t.Error("Expected default title")
	}
	if !strings.Contains(md, "**IMBALANCE**") {
		t.Error("Expected imbalance flag above display tolerance")
	}
	if !strings.Contains(md, "- Year 1 (`debt_repayment_clamped`): debt repayment capped") {
		t.Errorf("Expected diagnostic line, got:\n%s", md)
	}
	if strings.Contains(md, "## Ratios") {
		t.Error("Ratios section should be omitted without ratios")
	}
}

func TestRatioTable(t *testing.T) {
	proj := basicRun(t, 2)
	md := RatioTable(ratios.ForProjection(proj))
	if !strings.HasPrefix(md, "| Ratio | Year 1 | Year 2 |") {
		t.Errorf("Unexpected header: %q", strings.SplitN(md, "\n", 2)[0])
	}
	if !strings.Contains(md, "| Gross Profit Margin | 0.4000 | 0.4000 |") {
		t.Errorf("Missing gross margin row:\n%s", md)
	}
	if countTables(md) != 1 {
		t.Error("Expected exactly one table")
	}
	if RatioTable(nil) != "" {
		t.Error("Expected empty output without ratios")
	}
}

func TestCommonSizeTable(t *testing.T) {
	proj := basicRun(t, 2)
	md := CommonSizeTable(ratios.CommonSizeProjection(proj))
	if !strings.HasPrefix(md, "| % of Revenue | Year 1 | Year 2 |") {
		t.Errorf("Unexpected header: %q", strings.SplitN(md, "\n", 2)[0])
	}
	if !strings.Contains(md, "| Gross Profit | 40.0% | 40.0% |") {
		t.Errorf("Missing gross profit row:\n%s", md)
	}
	if !strings.Contains(md, "| Total Assets | 100.0% | 100.0% |") {
		t.Errorf("Missing total assets row:\n%s", md)
	}
	if countTables(md) != 2 {
		t.Errorf("Expected two tables, got %d", countTables(md))
	}
	if CommonSizeTable(nil) != "" {
		t.Error("Expected empty output without views")
	}
}

func TestMarkdown_Empty(t *testing.T) {
	md := Markdown(nil, nil, Options{Title: "Empty"})
	if !strings.Contains(md, "_No projected years._") {
		t.Errorf("Unexpected empty report: %q", md)
	}
}

func TestRenderHTML(t *testing.T) {
	proj := basicRun(t, 2)
	md := Markdown(proj, nil, Options{Title: "HTML <Report>"})

	page, err := RenderHTML(md, "HTML <Report>")
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		t.Fatalf("Failed to parse HTML: %v", err)
	}
	if got := doc.Find("title").Text(); got != "HTML <Report>" {
		t.Errorf("Expected escaped title to round-trip, got %q", got)
	}
	if n := doc.Find("table").Length(); n != 5 {
		t.Errorf("Expected 5 tables, got %d", n)
	}

	pnl := doc.Find("table").First()
	if got := pnl.Find("thead th").Eq(1).Text(); got != "Year 1" {
		t.Errorf("Expected first year column header, got %q", got)
	}
	firstRow := pnl.Find("tbody tr").First()
	if got := firstRow.Find("td").Eq(0).Text(); got != "Revenue" {
		t.Errorf("Expected Revenue row, got %q", got)
	}
	if got := firstRow.Find("td").Eq(1).Text(); got != "$1,100.00" {
		t.Errorf("Expected $1,100.00, got %q", got)
	}

	statuses := doc.Find("table").Eq(3).Find("tbody tr td:last-child")
	statuses.Each(func(i int, s *goquery.Selection) {
		if s.Text() != "OK" {
			t.Errorf("Balance check row %d: expected OK, got %q", i, s.Text())
		}
	})
}

func TestCleanMarkdown(t *testing.T) {
	if got := CleanMarkdown("```markdown\n# Title\n```"); got != "# Title" {
		t.Errorf("Expected fence stripped, got %q", got)
	}
	if got := CleanMarkdown("  # Title  "); got != "# Title" {
		t.Errorf("Expected trim, got %q", got)
	}
}

func TestRenderTerminal(t *testing.T) {
	proj := basicRun(t, 1)
	out, err := RenderTerminal(Markdown(proj, nil, Options{}), "notty", 120)
	if err != nil {
		t.Fatalf("RenderTerminal failed: %v", err)
	}
	if !strings.Contains(out, "Balance Check") {
		t.Error("Expected Balance Check heading in terminal output")
	}
}
