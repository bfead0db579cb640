package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/citycreek/order-fulfillment/internal/pipeline"
)

// fetchCmd downloads the XML snapshots without processing them, so a run
// can later be repeated against the same data with xml.order_file and
// xml.customer_file.
var fetchCmd = &cobra.Command{
	Use:   "fetch [key=value ...]",
	Short: "Download the order and customer XML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(args)
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		files, err := pipeline.New(cfg, logger).Fetch(cmd.Context())
		for _, f := range files {
			fmt.Printf("  %s\n", f)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
