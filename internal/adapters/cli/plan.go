package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/requisition-go/internal/adapters/sandbox"
	"github.com/andrescamacho/requisition-go/internal/application/store"
	"github.com/andrescamacho/requisition-go/internal/domain/requirement"
	"github.com/andrescamacho/requisition-go/internal/domain/shared"
)

// NewPlanCommand creates the plan command with subcommands
func NewPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Requirement plan operations",
		Long: `Inspect requirement plans without acting on them.

Examples:
  requisition plan inspect --plan plans/feathers.yaml
  requisition plan inspect --plan plans/feathers.yaml --context POST_TASK --status`,
	}

	cmd.AddCommand(newPlanInspectCommand())

	return cmd
}

// newPlanInspectCommand creates the plan inspect subcommand
func newPlanInspectCommand() *cobra.Command {
	var (
		planPath    string
		taskContext string
		status      bool
		noColor     bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the requirements of a plan as a tree",
		Long: `Load a plan, file it into a requirement store and print what the
resolver would attempt for one task phase.

With --status each requirement is checked against the plan's sandbox
world and marked [✓] when it already holds.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, closeLog, err := withLogger(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeLog()

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

			var env *requirement.Environment
			if status {
				world, err := sandbox.NewWorld(p.Seed)
				if err != nil {
					return fmt.Errorf("failed to build sandbox world: %w", err)
				}
				env = &requirement.Environment{World: world}
			}

			s := store.NewRequirementStore()
			p.Register(ctx, s)
			if err := s.ValidateConsistency(ctx); err != nil {
				return fmt.Errorf("plan is inconsistent: %w", err)
			}

			printPlan(ctx, cmd, p.Name, tc, s, NewTreeFormatter(!noColor, env))
			return nil
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "Path to plan YAML [required]")
	cmd.Flags().StringVar(&taskContext, "context", "", "Task phase: PRE_TASK, POST_TASK or BOTH (default: plan context)")
	cmd.Flags().BoolVar(&status, "status", false, "Check each requirement against the sandbox world")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable ANSI colors")
	cmd.MarkFlagRequired("plan")

	return cmd
}

func printPlan(ctx context.Context, cmd *cobra.Command, name string, tc shared.TaskContext, s *store.RequirementStore, f *TreeFormatter) {
	var standard, external []requirement.Requirement
	for _, r := range s.All() {
		if r.TaskContext().AppliesTo(tc) {
			standard = append(standard, r)
		}
	}
	for _, r := range s.External() {
		if r.TaskContext().AppliesTo(tc) {
			external = append(external, r)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Plan %s (%s)\n\n", name, tc)
	fmt.Fprint(out, f.FormatTree(ctx, fmt.Sprintf("Standard (%d)", len(standard)), standard))
	fmt.Fprintln(out)
	fmt.Fprint(out, f.FormatTree(ctx, fmt.Sprintf("External (%d)", len(external)), external))
}
