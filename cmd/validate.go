package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// validateCmd checks the configuration without touching the network or the
// output directories.
var validateCmd = &cobra.Command{
	Use:   "validate [key=value ...]",
	Short: "Check the configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(args)
		if err != nil {
			return err
		}
		if _, err := newLogger(cfg); err != nil {
			return err
		}

		fmt.Println("Configuration OK")
		fmt.Printf("  XML directory:      %s\n", cfg.XML.Dir)
		fmt.Printf("  Fulfillment:        %s/%s\n", cfg.Fulfillment.Dir, cfg.Fulfillment.FileName)
		fmt.Printf("  Ledger directory:   %s (transactions: %t)\n", cfg.Ledger.Dir, cfg.Ledger.IncludeTransactions)
		fmt.Printf("  Tabular:            %s/%s\n", cfg.Tabular.Dir, cfg.Tabular.FileName)
		fmt.Printf("  Excluded products:  %s\n", cfg.Shipping.ExcludedProducts)
		fmt.Printf("  FTP delivery:       %t\n", cfg.FTP.Enabled)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
