// =============================================================================
// Order Fulfillment - Run Command
// =============================================================================
//
// COMMAND USAGE:
//   fulfillment run [key=value ...]
//
// PROCESSING PIPELINE:
//   1. Load configuration (file, environment, arguments)
//   2. Load customers and orders (saved XML or fresh download)
//   3. Reconcile orders against the customer list
//   4. Write the ledger, tabular and fulfillment exports
//   5. Upload the fulfillment CSV when FTP is enabled
//   6. Report ignored and processed orders
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/citycreek/order-fulfillment/internal/config"
	"github.com/citycreek/order-fulfillment/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run [key=value ...]",
	Short: "Fetch, reconcile and export orders",
	Long: `The run command performs one batch: it loads customers and orders,
drops cancelled, unknown-customer and repeated orders, and appends the
results to the fulfillment, ledger and tabular files.

A run with no customers stops before writing anything. A run with no
orders writes nothing. A failed FTP upload is reported but the exports
are kept.

Accepted keys:
  ` + strings.Join(config.OverrideKeys(), "\n  "),

	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd.Context(), args)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runBatch(ctx context.Context, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := pipeline.New(cfg, logger).Run(ctx)
	if err != nil {
		logger.Error("run failed", zap.String("run_id", res.RunID), zap.Error(err))
		return err
	}

	fmt.Printf("%d order(s) processed, %d ignored\n", len(res.Orders), len(res.Removals))
	for _, f := range res.Files {
		fmt.Printf("  %s\n", f)
	}
	if res.DeliveryErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: delivery failed: %v\n", res.DeliveryErr)
	}
	return nil
}
