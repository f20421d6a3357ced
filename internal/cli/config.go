package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"StockCorrelator/internal/config"
)

func newConfigCmd(ro *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Generate or validate configuration files",
		Long: `Manage configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate the configuration (file, .env and CORRELATOR_* variables)`,
	}

	var output string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default configuration file",
		// Writing a fresh file must not depend on the current one loading.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Default().SaveToFile(output); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Created default configuration: %s\n", output)
			fmt.Fprintf(cmd.OutOrStdout(), "\nEdit the file and run with:\n  correlator watch --config %s\n", output)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "o", "config.yaml", "output config file path")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the loaded configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ro.Config()
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Configuration valid: %s\n", ro.ConfigPath)
			fmt.Fprintf(out, "  Data source: %s\n", cfg.DataSource.Type)
			fmt.Fprintf(out, "  Watch: %d pairs on %q\n", len(cfg.Watch.Pairs), cfg.Watch.Cron)
			fmt.Fprintf(out, "  Telegram: %t\n", cfg.Telegram.Enabled())
			fmt.Fprintf(out, "  Chart: %s %.0fx%.0f in\n", cfg.Chart.Format, cfg.Chart.Width, cfg.Chart.Height)
			return nil
		},
	}

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}
