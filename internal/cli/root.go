// Package cli wires the correlator's cobra commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"StockCorrelator/internal/collector"
	"StockCorrelator/internal/config"
	"StockCorrelator/internal/logger"
)

const defaultConfigPath = "configs/config.yaml"

// RootOptions is shared by every subcommand.
type RootOptions struct {
	ConfigPath string
	LogLevel   string

	cfg        *config.Config
	newFetcher func(*config.Config) (collector.Fetcher, error)
}

// Config returns the configuration loaded before the command ran.
func (o *RootOptions) Config() *config.Config {
	return o.cfg
}

func (o *RootOptions) load() error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Env); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	o.cfg = cfg
	return nil
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&RootOptions{newFetcher: collector.New})
}

func newRootCmd(ro *RootOptions) *cobra.Command {
	cfgPath := defaultConfigPath
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}

	cmd := &cobra.Command{
		Use:   "correlator",
		Short: "Pearson correlation of two instruments' daily closes",
		Long: `Correlator fetches the daily close series of two instruments, drops missing
values, aligns them on their common trading dates and computes the Pearson
correlation coefficient.

Examples:
  correlator analyze AAPL MSFT 2023-01-01 2024-01-01 --out chart.png
  correlator watch --config configs/config.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ro.load()
		},
	}

	cmd.PersistentFlags().StringVarP(&ro.ConfigPath, "config", "c", cfgPath, "path to YAML config file")
	cmd.PersistentFlags().StringVar(&ro.LogLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	cmd.AddCommand(
		newAnalyzeCmd(ro),
		newWatchCmd(ro),
		newConfigCmd(ro),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the root command.
func Execute() error {
	defer logger.Sync()
	return NewRootCmd().Execute()
}
