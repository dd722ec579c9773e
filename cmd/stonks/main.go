// Stonks is a market data dashboard for stocks, crypto and macro indicators.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seenimoa/stonks/internal/config"
	"github.com/seenimoa/stonks/internal/logger"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, lossStyle.Render(err.Error()))
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stonks",
	Short: "Market data dashboard",
	Long: `Stonks serves quotes, price history and analytics for stocks,
crypto, commodities, forex, indices, treasury yields and macro
indicators. Run "stonks serve" for the HTTP API or use the
subcommands for one-off lookups.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		logger.Install(logger.New(logger.Config{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		}, cmd.ErrOrStderr()))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json", false, "print raw JSON instead of formatted output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(technicalCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(macroCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(investCmd)
	rootCmd.AddCommand(sentimentCmd)
	rootCmd.AddCommand(scanCmd)
}

func out(cmd *cobra.Command) printer {
	asJSON, _ := cmd.Flags().GetBool("json")
	return printer{w: cmd.OutOrStdout(), json: asJSON}
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		p := out(cmd)
		p.title("Stonks " + version)
		p.row("commit", commit)
		p.row("built", date)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and provider key status",
	RunE: func(cmd *cobra.Command, args []string) error {
		keys := config.CheckAPIKeys(cfg)
		p := out(cmd)
		if ok, err := p.emit(map[string]any{"version": version, "config": cfg, "keys": keys}); ok {
			return err
		}

		p.title("Stonks System Status")
		p.row("Version", fmt.Sprintf("%s (%s)", version, commit))
		p.row("API Server", cfg.API.Addr())
		p.row("Log Level", cfg.Logging.Level)

		p.section("Analysis")
		p.row("Concurrent Fetches", fmt.Sprint(cfg.Analysis.ConcurrentFetches))
		p.row("Simulations", fmt.Sprint(cfg.Analysis.Simulations))
		p.row("Forecast Days", fmt.Sprint(cfg.Analysis.ForecastDays))
		p.row("Snapshot Dir", orNone(cfg.Scan.ExportDir))
		p.row("Snapshot Max Age", cfg.Scan.MaxAge().String())

		p.section("API Keys")
		for _, k := range keys {
			status := lossStyle.Render("not set")
			if k.IsSet {
				status = gainStyle.Render(fmt.Sprintf("set (%s: %s)", k.Source, k.Masked))
			} else if k.Fallback != "" {
				status += labelStyle.Render(" → " + k.Fallback)
			}
			p.row(k.Name, status)
		}
		return nil
	},
}

// --- Providers Command ---

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List data providers and the models they serve",
	RunE: func(cmd *cobra.Command, args []string) error {
		dash, err := newDashboard(cfg)
		if err != nil {
			return err
		}
		st := dash.Providers()
		p := out(cmd)
		if ok, err := p.emit(st); ok {
			return err
		}

		rows := make([][]string, 0, len(st.Providers))
		for _, info := range st.Providers {
			models := make([]string, len(info.Models))
			for i, m := range info.Models {
				models[i] = string(m)
			}
			rows = append(rows, []string{info.Name, info.Description, strings.Join(models, ", ")})
		}
		p.table([]string{"Provider", "Description", "Models"}, rows)
		return nil
	},
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return labelStyle.Render("disabled")
	}
	return s
}
