// =============================================================================
// Order Fulfillment - Main Entry Point
// =============================================================================
//
// This is the main entry point for the order fulfillment batch tool. It
// delegates command execution to the cmd package.
//
// USAGE:
//   fulfillment run [key=value ...]   - Fetch, reconcile and export orders
//   fulfillment fetch                 - Download the order and customer XML
//   fulfillment validate              - Check the configuration
//   fulfillment version               - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Readers, reconciliation, exporters and delivery
//   - pkg/       : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/citycreek/order-fulfillment/cmd"
)

func main() {
	cmd.Execute()
}
