package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "requisition",
		Short: "Requisition - resolve task requirements and trade for missing items",
		Long: `Requisition loads requirement plans, checks them against the game world
and fulfils what is missing: walking, equipping, switching spellbooks and
buying or selling items on the exchange and in shops.

Plans run against an in-memory sandbox world seeded from the plan file.
Offer ledgers and trades are persisted to the configured database.

Examples:
  requisition plan inspect --plan plans/feathers.yaml
  requisition fulfill --plan plans/feathers.yaml --context PRE_TASK
  requisition ledger list
  requisition trades list --limit 20
  requisition config show`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("REQUISITION_CONFIG"),
		"Path to config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewPlanCommand())
	rootCmd.AddCommand(NewFulfillCommand())
	rootCmd.AddCommand(NewLedgerCommand())
	rootCmd.AddCommand(NewTradesCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
