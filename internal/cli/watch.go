package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"StockCorrelator/internal/engine"
	"StockCorrelator/internal/logger"
	"StockCorrelator/internal/metrics"
	"StockCorrelator/internal/notifier"
	"StockCorrelator/internal/render"
	"StockCorrelator/internal/scheduler"
)

func newWatchCmd(ro *RootOptions) *cobra.Command {
	var runOnStart bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Recompute the configured pairs on a cron schedule",
		Long: `Run as a service: recompute watch.pairs on watch.cron, deliver reports to
Telegram and answer /corr commands. Exposes Prometheus metrics when
metrics.addr is set. Stops on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ro.Config()
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}
			log := logger.Get()

			fetcher, err := ro.newFetcher(cfg)
			if err != nil {
				return fmt.Errorf("init data source: %w", err)
			}
			if c, ok := fetcher.(io.Closer); ok {
				defer c.Close()
			}
			log.Infow("data source ready", "source", fetcher.Name())

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			eng := engine.New(fetcher, engine.Options{ParallelFetch: cfg.Engine.ParallelFetch})
			chart := render.ChartOptions{Format: cfg.Chart.Format, Width: cfg.Chart.Width, Height: cfg.Chart.Height}
			sched := scheduler.NewScheduler(eng, nil, cfg.Watch.Pairs, chart)

			var tn *notifier.TelegramNotifier
			if cfg.Telegram.Enabled() {
				chatID, err := cfg.Telegram.ChatIDInt()
				if err != nil {
					return err
				}
				tn, err = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, chatID, cfg.Proxy)
				if err != nil {
					return fmt.Errorf("init telegram: %w", err)
				}
				sched.Notifier = tn
			} else {
				log.Warnw("telegram not configured, reports are only logged")
			}

			if err := sched.Register(cfg.Watch.Cron); err != nil {
				return err
			}
			sched.Start(ctx)
			defer sched.Stop()

			if cfg.Metrics.Addr != "" {
				srv := metrics.Serve(cfg.Metrics.Addr, func(err error) {
					log.Errorw("metrics server failed", "error", err)
				})
				log.Infow("metrics listening", "addr", cfg.Metrics.Addr)
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
			}

			if tn != nil {
				go tn.StartPolling(ctx, sched.HandleCommand)
			}

			if runOnStart || cfg.Watch.RunOnStart {
				log.Infow("run_on_start enabled, computing watched pairs now")
				go sched.RunWatch()
			}

			log.Infow("correlator is running, press Ctrl+C to stop", "cron", cfg.Watch.Cron, "pairs", len(cfg.Watch.Pairs))
			<-ctx.Done()
			log.Infow("shutdown signal received, stopping")
			return nil
		},
	}

	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "compute every watched pair once at startup")
	return cmd
}
