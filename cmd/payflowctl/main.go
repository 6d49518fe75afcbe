package main

import (
	"fmt"
	"os"

	"payflow/internal/cli/commands"
	"payflow/internal/cli/config"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	cfgFile string
	apiURL  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "payflowctl",
		Short: "Command-line client for the PayFlow gateway",
		Long: `payflowctl is a developer-friendly CLI for PayFlow: register and log in,
manage a merchant profile and its API keys, create orders, and inspect
payments, refunds, and platform-wide analytics.

Examples:
  payflowctl auth register
  payflowctl auth login
  payflowctl merchant create
  payflowctl merchant keys issue
  payflowctl order create --amount 50000 --currency INR
  payflowctl payment capture pf_pay_xxxxxxxx`,
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile != "" {
				if err := config.Load(cfgFile); err != nil {
					return fmt.Errorf("loading config: %w", err)
				}
			} else if err := config.Init(); err != nil {
				return fmt.Errorf("initializing config: %w", err)
			}
			if apiURL != "" {
				config.SetAPIURL(apiURL)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.payflowctl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "override the configured API base URL")

	rootCmd.AddCommand(commands.NewAuthCommands())
	rootCmd.AddCommand(commands.NewMerchantCommands())
	rootCmd.AddCommand(commands.NewOrderCommands())
	rootCmd.AddCommand(commands.NewPaymentCommands())
	rootCmd.AddCommand(commands.NewAdminCommands())
	rootCmd.AddCommand(commands.NewHealthCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
