package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"financial_forecast/pkg/core/export"
	"financial_forecast/pkg/core/projection"
	"financial_forecast/pkg/core/ratios"
	"financial_forecast/pkg/core/report"
	"financial_forecast/pkg/core/scenario"
	"financial_forecast/pkg/core/validate"
)

var runFormats = []string{"table", "markdown", "json", "csv", "xlsx"}

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario-file>",
		Short: "Project a scenario and print or export the statements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			outPath, _ := cmd.Flags().GetString("out")
			style, _ := cmd.Flags().GetString("style")
			years, _ := cmd.Flags().GetInt("years")

			s, p, err := a.project(cmd, args[0], years)
			if err != nil {
				return err
			}
			return a.writeRun(cmd, s, p, format, outPath, style)
		},
	}
	cmd.Flags().StringP("format", "f", "table", "output format: "+strings.Join(runFormats, "|"))
	cmd.Flags().StringP("out", "o", "", "write output to a file instead of stdout")
	cmd.Flags().Int("years", 0, "override the scenario's forecast years")
	cmd.Flags().String("style", "auto", "terminal style for table output (auto, dark, light, notty)")
	return cmd
}

func newRatiosCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratios <scenario-file>",
		Short: "Print the year-over-year ratio table for a scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			style, _ := cmd.Flags().GetString("style")

			commonSize, _ := cmd.Flags().GetBool("common-size")

			_, p, err := a.project(cmd, args[0], 0)
			if err != nil {
				return err
			}

			var data any
			var md string
			if commonSize {
				views := ratios.CommonSizeProjection(p)
				data, md = views, report.CommonSizeTable(views)
			} else {
				yearRatios := ratios.ForProjection(p)
				data, md = yearRatios, report.RatioTable(yearRatios)
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				return writeJSON(out, data)
			case "markdown":
				_, err := io.WriteString(out, md)
				return err
			case "table":
				rendered, err := report.RenderTerminal(md, style, 0)
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
	cmd.Flags().Bool("common-size", false, "print common-size statements instead of ratios")
	return cmd
}

// project loads, defaults and runs one scenario file.
func (a *app) project(cmd *cobra.Command, path string, years int) (*scenario.Scenario, *projection.Projection, error) {
	s, err := scenario.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if years != 0 {
		s.Years = years
	}
	s.ApplyDefaults(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), a.cfg.Engine.DefaultYears)

	p, err := scenario.Run(cmd.Context(), a.engine, s)
	if err != nil {
		return nil, nil, err
	}
	a.logger.WithField("scenario", s.Name).
		WithField("variant", p.Variant).
		WithField("years", len(p.Statements)).
		Debug("[FORECAST] scenario projected")
	return s, p, nil
}

// runOutput is the JSON shape of `run --format json`.
type runOutput struct {
	Name       string                    `json:"name"`
	Projection *projection.Projection    `json:"projection"`
	Ratios     []ratios.YearRatios       `json:"ratios"`
	Linkages   []*validate.LinkageReport `json:"linkages"`
	AllLinked  bool                      `json:"all_linked"`
}

func (a *app) writeRun(cmd *cobra.Command, s *scenario.Scenario, p *projection.Projection, format, outPath, style string) error {
	yearRatios := ratios.ForProjection(p)
	opts := report.Options{Title: s.Name, Currency: a.cfg.Report.Currency}

	var buf bytes.Buffer
	switch format {
	case "table":
		rendered, err := report.RenderTerminal(report.Markdown(p, yearRatios, opts), style, 0)
		if err != nil {
			return err
		}
		buf.WriteString(rendered)
	case "markdown":
		buf.WriteString(report.Markdown(p, yearRatios, opts))
	case "json":
		links := validate.ValidateRun(p, a.engine.Tolerance)
		if err := writeJSON(&buf, runOutput{
			Name:       s.Name,
			Projection: p,
			Ratios:     yearRatios,
			Linkages:   links,
			AllLinked:  validate.AllLinked(links),
		}); err != nil {
			return err
		}
	case "csv":
		if err := export.WriteCSV(&buf, p.Statements); err != nil {
			return err
		}
	case "xlsx":
		if outPath == "" {
			return fmt.Errorf("xlsx output needs --out")
		}
		if err := export.SaveXLSX(outPath, p.Statements, yearRatios); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outPath)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (want %s)", format, strings.Join(runFormats, ", "))
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outPath)
		return nil
	}
	_, err := cmd.OutOrStdout().Write(buf.Bytes())
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
