package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/requisition-go/internal/adapters/persistence"
	"github.com/andrescamacho/requisition-go/internal/infrastructure/database"
)

// NewLedgerCommand creates the ledger command with subcommands
func NewLedgerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Offer recovery ledger operations",
		Long: `View and clear persisted offer recovery ledgers.

When an exchange offer is cancelled to free a slot, its unfilled part is
recorded in the owning requirement's ledger and reissued on the next
attempt. Ledgers are snapshotted to the database so they survive a crash.

Examples:
  requisition ledger list
  requisition ledger show --key "SHOP/PRE_TASK/BUY:Grand Exchange::314"
  requisition ledger clear --key "SHOP/PRE_TASK/BUY:Grand Exchange::314"`,
	}

	cmd.AddCommand(newLedgerListCommand())
	cmd.AddCommand(newLedgerShowCommand())
	cmd.AddCommand(newLedgerClearCommand())

	return cmd
}

// newLedgerListCommand creates the ledger list subcommand
func newLedgerListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored ledgers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedgerRepository(func(ctx context.Context, repo *persistence.GormOfferLedgerRepository) error {
				summaries, err := repo.List(ctx)
				if err != nil {
					return err
				}
				displayLedgerList(cmd.OutOrStdout(), summaries)
				return nil
			})
		},
	}
}

// newLedgerShowCommand creates the ledger show subcommand
func newLedgerShowCommand() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the entries of one ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedgerRepository(func(ctx context.Context, repo *persistence.GormOfferLedgerRepository) error {
				offers, err := repo.Load(ctx, key)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(offers) == 0 {
					fmt.Fprintf(out, "No entries for %s\n", key)
					return nil
				}
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tITEM\tOP\tREMAINING\tTOTAL\tPRICE\tSLOT\tCANCELLED")
				for _, o := range offers {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
						o.ID, o.ItemName, o.Operation, o.RemainingQuantity, o.TotalQuantity,
						o.Price, o.OriginalSlot, o.CancelledAt.Format(time.RFC3339))
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Requirement key [required]")
	cmd.MarkFlagRequired("key")

	return cmd
}

// newLedgerClearCommand creates the ledger clear subcommand
func newLedgerClearCommand() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop the stored ledger of one requirement",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedgerRepository(func(ctx context.Context, repo *persistence.GormOfferLedgerRepository) error {
				if err := repo.Delete(ctx, key); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared ledger %s\n", key)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Requirement key [required]")
	cmd.MarkFlagRequired("key")

	return cmd
}

func withLedgerRepository(fn func(ctx context.Context, repo *persistence.GormOfferLedgerRepository) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	return fn(context.Background(), persistence.NewGormOfferLedgerRepository(db, nil))
}

func displayLedgerList(out io.Writer, summaries []persistence.LedgerSummary) {
	if len(summaries) == 0 {
		fmt.Fprintln(out, "No stored ledgers")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REQUIREMENT\tENTRIES\tREMAINING\tSAVED")
	fmt.Fprintln(w, "-----------\t-------\t---------\t-----")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", s.RequirementKey, s.Entries, s.Remaining, s.LastSavedAt.Format(time.RFC3339))
	}
	w.Flush()
}
