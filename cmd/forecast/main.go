// Command forecast projects three-statement financial forecasts from scenario files.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"financial_forecast/pkg/core/config"
	"financial_forecast/pkg/core/projection"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the state shared by subcommands after config is loaded.
type app struct {
	cfg    *config.Config
	logger *logrus.Logger
	engine *projection.Engine
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "forecast",
		Short: "Three-statement financial forecast engine",
		Long: `forecast projects a P&L, balance sheet and cash flow statement forward
from a base year and a set of drivers. Scenario files may be YAML, JSON or HJSON.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().String("config", "", "config file path (default: ./config/forecast.yaml)")
	root.PersistentFlags().String("env-file", ".env", "dotenv file loaded before config")
	root.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	root.PersistentFlags().Bool("strict", false, "abort on a balance sheet invariant violation")
	root.PersistentFlags().String("currency", "", "ISO currency code for reports (default from config)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newRunCmd(a))
	root.AddCommand(newRatiosCmd(a))
	root.AddCommand(newCompareCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadEnvFiles(envFile); err != nil {
		return err
	}

	var err error
	configFile, _ := cmd.Flags().GetString("config")
	if configFile != "" {
		a.cfg, err = config.LoadFromFile(configFile)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		a.cfg.Logging.Level = level
	}
	if cmd.Flags().Changed("strict") {
		a.cfg.Engine.StrictBalance, _ = cmd.Flags().GetBool("strict")
	}
	if currency, _ := cmd.Flags().GetString("currency"); currency != "" {
		a.cfg.Report.Currency = currency
	}

	a.logger = config.ConfigureLogger(a.cfg.Logging)
	a.logger.SetOutput(cmd.ErrOrStderr())
	a.engine = a.cfg.Engine.NewEngine(a.logger)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "forecast %s\n", version)
			fmt.Fprintf(out, "  commit:  %s\n", commit)
			fmt.Fprintf(out, "  built:   %s\n", date)
		},
	}
}
