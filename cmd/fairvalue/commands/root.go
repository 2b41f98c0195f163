package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile      string
	assumptionsFile string
	verbose         bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fairvalue",
	Short: "DCF fair value estimates for listed equities",
	Long: `fairvalue estimates the intrinsic value per share of a stock.

Provider fundamentals (income statement, balance sheet, stats, consensus
estimates, 10Y treasury) feed a WACC → growth → discounted cash flow pipeline.

Usage:
  go run ./cmd/fairvalue [command]

Examples:
  go run ./cmd/fairvalue evaluate --tickers AAPL,MSFT
  go run ./cmd/fairvalue api --port 8080
  go run ./cmd/fairvalue watch --tickers AAPL --once`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "env file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&assumptionsFile, "assumptions", "", "valuation assumptions YAML (default from ASSUMPTIONS_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
