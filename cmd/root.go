// =============================================================================
// Order Fulfillment - Root Command
// =============================================================================
//
// COBRA CLI STRUCTURE:
//   rootCmd (fulfillment)
//   ├── runCmd      (fulfillment run)
//   ├── fetchCmd    (fulfillment fetch)
//   ├── validateCmd (fulfillment validate)
//   └── versionCmd  (fulfillment version)
//
// Every command loads the configuration the same way: the YAML file named by
// --config, then environment variables, then key=value arguments.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/citycreek/order-fulfillment/internal/config"
	"github.com/citycreek/order-fulfillment/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "fulfillment",
	Short: "Order fulfillment - turn store orders into shipping and accounting files",
	Long: `Order fulfillment downloads the store's orders and customers, removes
cancelled, unknown-customer and repeated orders, and writes:

  - a fulfillment CSV for the shipping partner
  - an IIF file for the accounting ledger
  - a tabular import CSV (and optionally an XLSX workbook)

Settings come from the config file, the environment, and key=value
arguments, in increasing priority.

Example Usage:
  fulfillment run                                  # Full batch run
  fulfillment run xml.order_file=orders.xml        # Use a saved order file
  fulfillment run --config ./prod.yaml             # Use a custom config file
  fulfillment validate                             # Check the configuration`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the CLI. Any error exits with status 1.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultPath,
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// loadConfig reads the configuration with args as key=value overrides.
func loadConfig(args []string) (*config.Config, error) {
	overrides, err := config.ParseArgs(args)
	if err != nil {
		return nil, err
	}
	if verbose {
		overrides["logging.level"] = "debug"
	}
	return config.Load(cfgFile, overrides)
}

// newLogger builds the logger described by cfg.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
}
