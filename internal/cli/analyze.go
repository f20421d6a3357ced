package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"StockCorrelator/internal/engine"
	"StockCorrelator/internal/logger"
	"StockCorrelator/internal/metrics"
	"StockCorrelator/internal/render"
	"StockCorrelator/internal/request"
)

func newAnalyzeCmd(ro *RootOptions) *cobra.Command {
	var (
		outPath  string
		format   string
		source   string
		parallel bool
	)

	cmd := &cobra.Command{
		Use:   "analyze SYMBOL_A SYMBOL_B START END",
		Short: "Correlate two instruments over [START, END)",
		Long: `Fetch both close series, align them on common dates and print the Pearson
correlation. Dates are YYYY-MM-DD; END is exclusive.

Example:
  correlator analyze AAPL MSFT 2023-01-01 2024-01-01 --out chart.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := request.FromArgs(args)
			if err != nil {
				return err
			}

			cfg := ro.Config()
			chartFormat, err := resolveFormat(format, outPath, cfg.Chart.Format)
			if err != nil {
				return err
			}
			if source != "" {
				cfg.DataSource.Type = strings.ToLower(source)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}
			fetcher, err := ro.newFetcher(cfg)
			if err != nil {
				return fmt.Errorf("init data source: %w", err)
			}
			if c, ok := fetcher.(io.Closer); ok {
				defer c.Close()
			}

			log := logger.Get().With("pair", req.String(), "source", fetcher.Name())
			eng := engine.New(fetcher, engine.Options{ParallelFetch: parallel || cfg.Engine.ParallelFetch})

			started := time.Now()
			analysis, err := eng.Compute(cmd.Context(), req.SymbolA, req.SymbolB, req.Start, req.End)
			if err != nil {
				metrics.ObserveAnalysis(fetcher.Name(), string(engine.KindOf(err)), time.Since(started))
				log.Debugw("analysis failed", "kind", engine.KindOf(err), "error", err)
				return errors.New(engine.MessageOf(err))
			}
			metrics.ObserveAnalysis(fetcher.Name(), "success", time.Since(started))
			log.Debugw("analysis done", "rows", analysis.Table.Len(), "took", time.Since(started))

			fmt.Fprint(cmd.OutOrStdout(), render.Summary(analysis))

			if outPath == "" {
				return nil
			}
			opts := render.ChartOptions{Format: chartFormat, Width: cfg.Chart.Width, Height: cfg.Chart.Height}
			chart, err := render.Chart(analysis.Table, analysis.Correlation, opts)
			if err != nil {
				return fmt.Errorf("render chart: %w", err)
			}
			if err := os.WriteFile(outPath, chart, 0o644); err != nil {
				return fmt.Errorf("write chart: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Chart written to %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the chart to this file")
	cmd.Flags().StringVar(&format, "format", "", "chart format: png or svg (default from --out extension)")
	cmd.Flags().StringVar(&source, "source", "", "override data_source.type (yahoo, vstrader, alphavantage, sqlite)")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "fetch both series concurrently")
	return cmd
}

// resolveFormat picks the chart format from --format, then the --out
// extension, then the config. Anything but png or svg is rejected.
func resolveFormat(flag, outPath, fallback string) (string, error) {
	if flag != "" {
		f := strings.ToLower(flag)
		if f != "png" && f != "svg" {
			return "", fmt.Errorf("unsupported --format %q: use png or svg", flag)
		}
		return f, nil
	}
	if ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(outPath), ".")); ext != "" {
		if ext != "png" && ext != "svg" {
			return "", fmt.Errorf("unsupported chart extension %q: use .png or .svg, or set --format", ext)
		}
		return ext, nil
	}
	return fallback, nil
}
