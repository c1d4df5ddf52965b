package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/requisition-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration settings",
		Long: `Inspect Requisition configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (RQ_* prefix, e.g. RQ_DATABASE_TYPE)
2. Config file (config.yaml)
3. Default values

Examples:
  requisition config show
  requisition config show --json`,
	}

	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Warning: Failed to load config: %v\n", err)
				fmt.Fprintln(cmd.OutOrStdout(), "Using default configuration.")
				cfg = config.LoadConfigOrDefault(configPath)
			}

			if asJSON {
				redacted := *cfg
				redacted.Database = cfg.Database.Redacted()
				data, err := json.MarshalIndent(redacted, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal config: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			displayConfig(cmd, cfg)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print configuration as JSON")

	return cmd
}

func displayConfig(cmd *cobra.Command, cfg *config.Config) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Requisition Configuration")
	fmt.Fprintln(out, "=========================")

	fmt.Fprintln(out, "\nDatabase:")
	fmt.Fprintf(out, "  Type: %s\n", cfg.Database.Type)
	if cfg.Database.Type == "sqlite" {
		fmt.Fprintf(out, "  Path: %s\n", cfg.Database.Path)
	} else if cfg.Database.URL != "" {
		fmt.Fprintln(out, "  URL:  (set)")
	} else {
		fmt.Fprintf(out, "  Host: %s:%d\n", cfg.Database.Host, cfg.Database.Port)
		fmt.Fprintf(out, "  Name: %s\n", cfg.Database.Name)
	}

	fmt.Fprintln(out, "\nLogging:")
	fmt.Fprintf(out, "  Level:  %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "  Format: %s\n", cfg.Logging.Format)
	fmt.Fprintf(out, "  Output: %s\n", cfg.Logging.Output)

	fmt.Fprintln(out, "\nMetrics:")
	fmt.Fprintf(out, "  Enabled: %t\n", cfg.Metrics.Enabled)
	fmt.Fprintf(out, "  Endpoint: %s\n", cfg.Metrics.Endpoint())

	ex := cfg.Fulfillment.Exchange
	fmt.Fprintln(out, "\nExchange:")
	fmt.Fprintf(out, "  Offer timeout:   %s\n", ex.OfferTimeout)
	fmt.Fprintf(out, "  Poll interval:   %s\n", ex.PollInterval)
	fmt.Fprintf(out, "  Slots kept free: %d\n", ex.SlotsToKeepFree)
	fmt.Fprintf(out, "  Markup:          %.1f%%\n", ex.MarkupPercent)
	fmt.Fprintf(out, "  Depth step:      %.1f%% x %d\n", ex.DepthStepPercent, ex.MaxDepthSteps)

	sh := cfg.Fulfillment.Shop
	fmt.Fprintln(out, "\nShop:")
	fmt.Fprintf(out, "  World hopping:    %t (%s, max %d consecutive)\n", !sh.DisableWorldHopping, sh.HopStrategy, sh.MaxConsecutiveHops)
	fmt.Fprintf(out, "  Banking:          %t\n", !sh.DisableBanking)
	fmt.Fprintf(out, "  Open attempts:    %d\n", sh.OpenAttempts)
	fmt.Fprintf(out, "  Max visits:       %d\n", sh.MaxVisits)
	fmt.Fprintf(out, "  Actions per sec:  %.1f (burst %d)\n", cfg.Fulfillment.ActionsPerSecond, cfg.Fulfillment.ActionBurst)
}
