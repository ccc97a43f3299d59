// Package cmd provides the CLI commands for plancost.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"plancost/internal/config"
	"plancost/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "plancost",
	Short: "Estimate costs for Terraform plans",
	Long: `plancost estimates the cloud costs of a Terraform project before
it is applied.

It reads a Terraform plan in JSON form, builds a graph of the planned
resources, prices their cost drivers against a pricing service and
prints an hourly and monthly cost breakdown.

Examples:
  plancost breakdown --tfplan-json plan.json
  plancost breakdown --tfdir ./infrastructure
  plancost breakdown --tfdir ./infrastructure -o json`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.plancost.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(breakdownCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("plancost version 0.1.0")
	},
}
