package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/requisition-go/internal/adapters/persistence"
	"github.com/andrescamacho/requisition-go/internal/domain/shop"
	"github.com/andrescamacho/requisition-go/internal/infrastructure/database"
)

// NewTradesCommand creates the trades command with subcommands
func NewTradesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trades",
		Short: "Trade log operations",
		Long: `View completed market transactions.

Every batch bought or sold by the engine is recorded with its session,
requirement, market, world and price.

Examples:
  requisition trades list
  requisition trades list --session 6f1c... --limit 10`,
	}

	cmd.AddCommand(newTradesListCommand())

	return cmd
}

// newTradesListCommand creates the trades list subcommand
func newTradesListCommand() *cobra.Command {
	var filter persistence.TradeFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent trades, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			records, err := persistence.NewGormTradeRepository(db).FindRecent(context.Background(), filter)
			if err != nil {
				return err
			}
			displayTrades(cmd.OutOrStdout(), records)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.SessionID, "session", "", "Filter by session ID")
	cmd.Flags().StringVar(&filter.RequirementKey, "key", "", "Filter by requirement key")
	cmd.Flags().IntVar(&filter.Limit, "limit", 50, "Maximum number of trades to return")

	return cmd
}

func displayTrades(out io.Writer, records []shop.TradeRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No trades recorded")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tOP\tMARKET\tITEM\tQTY\tPRICE\tVALUE\tWORLD\tREQUIREMENT")
	fmt.Fprintln(w, "----\t--\t------\t----\t---\t-----\t-----\t-----\t-----------")
	total := 0
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.RecordedAt.Format(time.RFC3339), r.Operation, r.MarketKind, r.ItemName,
			r.Quantity, r.Price, r.Value(), r.World, r.RequirementKey)
		total += r.Value()
	}
	w.Flush()
	fmt.Fprintf(out, "\n%d trades, total value %d\n", len(records), total)
}
