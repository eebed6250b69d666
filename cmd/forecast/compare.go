package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"financial_forecast/pkg/core/report"
	"financial_forecast/pkg/core/scenario"
)

func newCompareCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <scenario-file>...",
		Short: "Run several scenarios side by side",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			style, _ := cmd.Flags().GetString("style")

			scenarios, err := scenario.LoadAll(args)
			if err != nil {
				return err
			}
			for _, s := range scenarios {
				s.ApplyDefaults(s.Name, a.cfg.Engine.DefaultYears)
			}

			results, err := scenario.Compare(cmd.Context(), a.engine, scenarios)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				return writeJSON(out, results)
			case "markdown":
				_, err := io.WriteString(out, comparisonMarkdown(results, a.cfg.Report.Currency))
				return err
			case "table":
				rendered, err := report.RenderTerminal(comparisonMarkdown(results, a.cfg.Report.Currency), style, 0)
				if err != nil {
					return err
				}
				_, err = io.WriteString(out, rendered)
				return err
			default:
				return fmt.Errorf("unsupported format %q (want table, markdown or json)", format)
			}
		},
	}
	cmd.Flags().StringP("format", "f", "table", "output format: table|markdown|json")
	cmd.Flags().String("style", "auto", "terminal style for table output")
	return cmd
}

// comparisonMarkdown summarises the final projected year of each scenario.
func comparisonMarkdown(results []scenario.Result, currency string) string {
	var b strings.Builder
	b.WriteString("# Scenario Comparison\n\n")
	b.WriteString("| Scenario | Variant | Years | Revenue | Net Income | Cash | Debt | Balanced | Notes |\n")
	b.WriteString("|---|---|---:|---:|---:|---:|---:|---|---|\n")
	for _, r := range results {
		if r.Err != nil || r.Projection == nil || len(r.Projection.Statements) == 0 {
			fmt.Fprintf(&b, "| %s | | | | | | | | %s |\n", r.Name, escapeCell(r.Error))
			continue
		}
		p := r.Projection
		last := p.Statements[len(p.Statements)-1]
		balanced := "yes"
		if !p.Balanced() {
			balanced = "**no**"
		}
		notes := ""
		if n := len(p.Diagnostics); n > 0 {
			notes = fmt.Sprintf("%d diagnostic(s)", n)
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %s | %s | %s | %s | %s | %s |\n",
			r.Name, p.Variant, len(p.Statements),
			report.FormatMoney(last.PnL.Revenue, currency),
			report.FormatMoney(last.PnL.NetIncome, currency),
			report.FormatMoney(last.BalanceSheet.Cash, currency),
			report.FormatMoney(last.BalanceSheet.Debt, currency),
			balanced, notes)
	}
	b.WriteString("\n")
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
