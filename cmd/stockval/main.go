// stockval — DCF stock valuation service backed by Alpha Vantage.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/valuehound/stockval/api"
	"github.com/valuehound/stockval/internal/alphavantage"
	"github.com/valuehound/stockval/internal/config"
	"github.com/valuehound/stockval/internal/infra"
	"github.com/valuehound/stockval/internal/valuation"
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
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stockval",
	Short: "stockval — two-stage DCF stock valuation over Alpha Vantage data",
	Long: `stockval fetches company fundamentals from the Alpha Vantage query API,
computes the weighted average cost of capital from the latest annual
statements, and discounts projected free cash flows to an intrinsic
price per share. Runs as an HTTP API server or as a one-shot CLI.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A .env file is optional; absence is not an error.
		_ = godotenv.Load()

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

		level := cfg.Logging.Level
		if override, _ := cmd.Flags().GetString("log-level"); override != "" {
			level = override
		}
		if err := infra.SetupLogging(level, cfg.Logging.Format); err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(valueCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stockval %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := api.NewServer(cfg)
		if err != nil {
			return err
		}

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		zap.L().Info("starting API server", zap.String("addr", addr), zap.String("version", version))
		return srv.ListenAndServe(addr)
	},
}

// --- Value Command (one-shot valuation) ---

var valueCmd = &cobra.Command{
	Use:   "value [symbol]",
	Short: "Compute a DCF valuation for a symbol and print the result",
	Long: `Compute a DCF valuation for a symbol without starting the server.

The --growth flag takes a comma-separated vector of annual growth rates;
the final element is the terminal (perpetual) growth rate.

Example:
  stockval value INPST --growth 0.16,0.07,0.025`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		symbol := strings.ToUpper(args[0])

		rawRates, _ := cmd.Flags().GetString("growth")
		growthRates, err := parseGrowthVector(rawRates)
		if err != nil {
			return err
		}

		riskFree, err := cfg.Market.RiskFreeRateDecimal()
		if err != nil {
			return err
		}
		riskPremium, err := cfg.Market.MarketRiskPremiumDecimal()
		if err != nil {
			return err
		}

		client := alphavantage.NewClient(alphavantage.Options{
			BaseURL:    cfg.AlphaVantage.BaseURL,
			APIKey:     cfg.AlphaVantage.APIKey,
			Timeout:    time.Duration(cfg.AlphaVantage.TimeoutSec) * time.Second,
			CacheTTL:   time.Duration(cfg.AlphaVantage.CacheTTLSec) * time.Second,
			RatePerMin: cfg.AlphaVantage.RatePerMin,
		})

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		sheets, err := client.BalanceSheets(ctx, symbol)
		if err != nil {
			return err
		}
		statements, err := client.IncomeStatements(ctx, symbol)
		if err != nil {
			return err
		}
		flows, err := client.CashFlows(ctx, symbol)
		if err != nil {
			return err
		}
		overview, err := client.Overview(ctx, symbol)
		if err != nil {
			return err
		}

		latestBS, err := valuation.LatestBalanceSheet(sheets)
		if err != nil {
			return err
		}
		latestIS, err := valuation.LatestIncomeStatement(statements)
		if err != nil {
			return err
		}
		latestCF, err := valuation.LatestCashFlow(flows)
		if err != nil {
			return err
		}

		market := valuation.MarketConstants{
			RiskFreeRate:      riskFree,
			MarketRiskPremium: riskPremium,
		}
		waccInputs, err := valuation.AssembleWACCInputs(latestIS, latestBS, overview, market)
		if err != nil {
			return err
		}
		wacc, err := valuation.ComputeWACC(waccInputs)
		if err != nil {
			return err
		}

		dcfInputs, err := valuation.AssembleDCFInputs(latestCF, latestBS, overview, growthRates, wacc)
		if err != nil {
			return err
		}
		price, err := valuation.ComputeDCFPricePerShare(dcfInputs)
		if err != nil {
			return err
		}

		fmt.Printf("💰 DCF valuation: %s\n", symbol)
		fmt.Printf("   Fiscal period:   %s\n", latestBS.FiscalDateEnding)
		fmt.Printf("   WACC:            %s\n", wacc)
		fmt.Printf("   Intrinsic price: %s\n", price)
		return nil
	},
}

func init() {
	valueCmd.Flags().String("growth", "0.16,0.145,0.13,0.115,0.10,0.085,0.07,0.055,0.04,0.03,0.025",
		"comma-separated growth rates, terminal rate last")
}

// parseGrowthVector parses a comma-separated growth rate list.
func parseGrowthVector(raw string) ([]decimal.Decimal, error) {
	parts := strings.Split(raw, ",")
	if len(parts) < 2 {
		return nil, fmt.Errorf("--growth needs at least two rates (explicit years plus terminal), got %q", raw)
	}
	rates := make([]decimal.Decimal, 0, len(parts))
	for _, p := range parts {
		d, err := decimal.NewFromString(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid growth rate %q", p)
		}
		rates = append(rates, d)
	}
	return rates, nil
}
