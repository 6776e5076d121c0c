package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "allocsim",
	Short: "Simulate allocation strategies against historical market data",
	Long: `allocsim drives a simulated brokerage account through historical
daily price data, asking a strategy for a target allocation each day and
rebalancing toward it with minimal trading. Output is a pair of
normalized return series plus a full transaction ledger for audit.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}
