package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/andrescamacho/requisition-go/internal/adapters/metrics"
	"github.com/andrescamacho/requisition-go/internal/adapters/persistence"
	"github.com/andrescamacho/requisition-go/internal/adapters/plan"
	"github.com/andrescamacho/requisition-go/internal/adapters/sandbox"
	"github.com/andrescamacho/requisition-go/internal/application/fulfillment"
	"github.com/andrescamacho/requisition-go/internal/application/mediator"
	"github.com/andrescamacho/requisition-go/internal/application/resolution"
	"github.com/andrescamacho/requisition-go/internal/application/session"
	"github.com/andrescamacho/requisition-go/internal/application/store"
	"github.com/andrescamacho/requisition-go/internal/domain/requirement"
	"github.com/andrescamacho/requisition-go/internal/domain/shared"
	"github.com/andrescamacho/requisition-go/internal/infrastructure/config"
	"github.com/andrescamacho/requisition-go/internal/infrastructure/database"
)

// NewFulfillCommand creates the fulfill command
func NewFulfillCommand() *cobra.Command {
	var (
		planPath    string
		taskContext string
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "fulfill",
		Short: "Resolve a plan's requirements against its sandbox world",
		Long: `Resolve every requirement of a plan for one task phase.

Standard requirements are fulfilled first, most urgent first. External
requirements are attempted only when every standard requirement holds.
Shop requirements trade on the exchange or in shops; offer ledgers and
trades are persisted to the configured database.

Exit status is non-zero when a mandatory requirement fails.

Examples:
  requisition fulfill --plan plans/feathers.yaml
  requisition fulfill --plan plans/feathers.yaml --context POST_TASK --timeout 10m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			ctx, closeLog, err := withLogger(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeLog()

			return runFulfill(ctx, cmd.OutOrStdout(), cfg, planPath, taskContext)
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "Path to plan YAML [required]")
	cmd.Flags().StringVar(&taskContext, "context", "", "Task phase: PRE_TASK, POST_TASK or BOTH (default: plan context)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Abort resolution after this long (0 = no limit)")
	cmd.MarkFlagRequired("plan")

	return cmd
}

// runtime holds everything one fulfill run needs
type runtime struct {
	plan     *plan.Plan
	world    *sandbox.World
	store    *store.RequirementStore
	engine   *fulfillment.Engine
	mediator mediator.Mediator
	db       *gorm.DB
	metrics  *metrics.Server
}

// newRuntime assembles the runtime for p.
//
// Workflow:
//  1. Build the sandbox world from the plan seed
//  2. Open the database for ledger snapshots and trades
//  3. Register Prometheus collectors and start the scrape endpoint (if enabled)
//  4. Build the engine, store and resolver, and wire them into the mediator
func newRuntime(ctx context.Context, cfg *config.Config, p *plan.Plan) (*runtime, error) {
	world, err := sandbox.NewWorld(p.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to build sandbox world: %w", err)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}
	rt := &runtime{plan: p, world: world, db: db, mediator: mediator.NewMediator()}

	opts := []fulfillment.Option{
		fulfillment.WithLedgerRepository(persistence.NewGormOfferLedgerRepository(db, nil)),
		fulfillment.WithTradeRecorder(persistence.NewGormTradeRepository(db)),
	}

	rt.mediator.Use(session.SessionMiddleware())
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		fm := metrics.NewFulfillmentMetricsCollector()
		rm := metrics.NewRequestMetricsCollector()
		if err := fm.Register(); err != nil {
			rt.Close(ctx)
			return nil, fmt.Errorf("failed to register fulfillment metrics: %w", err)
		}
		if err := rm.Register(); err != nil {
			rt.Close(ctx)
			return nil, fmt.Errorf("failed to register request metrics: %w", err)
		}
		opts = append(opts, fulfillment.WithMetrics(fm))
		rt.mediator.Use(metrics.PrometheusMiddleware(rm))

		rt.metrics, err = metrics.NewServer(cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
		if err != nil {
			rt.Close(ctx)
			return nil, err
		}
		rt.metrics.Start()
	}

	rt.engine = fulfillment.NewEngine(world, cfg.Fulfillment.EngineConfig(), opts...)
	rt.store = store.NewRequirementStore()
	p.Register(ctx, rt.store)

	env := &requirement.Environment{World: world, Shops: rt.engine}
	resolver := resolution.NewResolver(shared.NewRealClock())
	if err := resolution.RegisterHandlers(rt.mediator, resolver, rt.store, env, rt.engine); err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("failed to register handlers: %w", err)
	}
	return rt, nil
}

// Close releases the database and stops the metrics endpoint
func (rt *runtime) Close(ctx context.Context) {
	if rt.metrics != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = rt.metrics.Shutdown(shutdownCtx)
	}
	if rt.db != nil {
		_ = database.Close(rt.db)
	}
}

func runFulfill(ctx context.Context, out io.Writer, cfg *config.Config, planPath, taskContext string) error {
	p, err := loadPlan(cfg, planPath)
	if err != nil {
		return err
	}

	tc := p.Context
	if taskContext != "" {
		if tc, err = shared.ParseTaskContext(taskContext); err != nil {
			return err
		}
	}

	rt, err := newRuntime(ctx, cfg, p)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	resp, err := rt.mediator.Send(ctx, &resolution.ResolveRequirementsCommand{
		TaskContext: tc,
		Operation:   p.Name,
	})
	report, _ := resp.(*resolution.Report)
	if report != nil {
		displayReport(out, p.Name, report)
		displayWorld(out, rt.world.Summarize())
	}
	if err != nil {
		return fmt.Errorf("resolution failed: %w", err)
	}
	if report.Blocked() {
		return fmt.Errorf("mandatory requirements failed: %d of %d units unmet", len(report.Failed()), len(report.Outcomes))
	}
	return nil
}

func displayReport(out io.Writer, name string, report *resolution.Report) {
	fmt.Fprintf(out, "Plan %s (%s): %d/%d fulfilled in %s\n\n",
		name, report.TaskContext, report.Fulfilled(), len(report.Outcomes), report.Duration.Round(time.Millisecond))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PHASE\tGROUP\tPRIORITY\tSTATUS\tDURATION\tREQUIREMENT")
	fmt.Fprintln(w, "-----\t-----\t--------\t------\t--------\t-----------")
	for _, o := range report.Outcomes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			o.Phase, o.Group, o.Priority, outcomeStatus(o), o.Duration.Round(time.Millisecond), o.Description)
	}
	w.Flush()

	if report.ExternalSkipped {
		fmt.Fprintln(out, "\nExternal requirements skipped: standard requirements unmet")
	}
}

func outcomeStatus(o resolution.Outcome) string {
	switch {
	case o.AlreadyMet:
		return "MET"
	case o.Fulfilled:
		return "DONE"
	case o.Blocking():
		return "BLOCKED"
	default:
		return "FAILED"
	}
}

func displayWorld(out io.Writer, s sandbox.Summary) {
	fmt.Fprintf(out, "\nWorld %d at %s, spellbook %s\n", s.World, s.Position, s.Spellbook)
	printStock(out, "Inventory", s.Inventory)
	printStock(out, "Bank", s.Bank)
}

func printStock(out io.Writer, title string, stock map[string]int) {
	if len(stock) == 0 {
		return
	}
	names := make([]string, 0, len(stock))
	for name := range stock {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(out, "%s:\n", title)
	for _, name := range names {
		fmt.Fprintf(out, "  %-20s %d\n", name, stock[name])
	}
}
