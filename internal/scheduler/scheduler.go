package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"StockCorrelator/internal/config"
	"StockCorrelator/internal/engine"
	"StockCorrelator/internal/logger"
	"StockCorrelator/internal/metrics"
	"StockCorrelator/internal/model"
	"StockCorrelator/internal/notifier"
	"StockCorrelator/internal/render"
	"StockCorrelator/internal/request"
)

const helpText = "Available commands:\n" +
	"• /corr SYMBOL_A SYMBOL_B START END\n" +
	"• /watch (recompute watched pairs now)\n" +
	"• /pairs"

// PairResult is the outcome of one watched pair.
type PairResult struct {
	Request  request.Request
	Analysis *model.Analysis
	Err      error
}

// Scheduler recomputes the watched pairs on a cron schedule and answers chat
// commands.
type Scheduler struct {
	Cron     *cron.Cron
	Engine   *engine.Engine
	Notifier notifier.Notifier // nil disables delivery
	Pairs    []config.PairConfig
	Chart    render.ChartOptions

	ctx      context.Context
	now      func() time.Time
	log      *logger.Logger
	watching atomic.Bool
}

// NewScheduler creates a new Scheduler.
func NewScheduler(eng *engine.Engine, n notifier.Notifier, pairs []config.PairConfig, chart render.ChartOptions) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Engine:   eng,
		Notifier: n,
		Pairs:    pairs,
		Chart:    chart,
		ctx:      context.Background(),
		now:      time.Now,
		log:      logger.Get().With("component", "scheduler"),
	}
}

// Register adds the watch job under a six-field cron expression.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, func() { s.RunWatch() }); err != nil {
		return fmt.Errorf("register watch task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler; jobs run under ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.Cron.Start()
	s.log.Infow("scheduler started", "pairs", len(s.Pairs))
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Infow("scheduler stopped")
}

// RunWatch runs RunNow unless a watch run is already in progress, and reports
// whether it started one.
func (s *Scheduler) RunWatch() bool {
	if !s.watching.CompareAndSwap(false, true) {
		s.log.Warnw("watch task already running, skipping")
		return false
	}
	defer s.watching.Store(false)
	s.RunNow(s.ctx)
	return true
}

// RunNow recomputes every watched pair once, in order, and delivers each
// result. One failing pair does not stop the others.
func (s *Scheduler) RunNow(ctx context.Context) []PairResult {
	runID := uuid.NewString()
	log := s.log.With("run_id", runID)
	log.Infow("running watch task", "pairs", len(s.Pairs))

	results := make([]PairResult, 0, len(s.Pairs))
	for _, p := range s.Pairs {
		req, err := request.Lookback(p.SymbolA, p.SymbolB, p.LookbackDays, s.now())
		if err != nil {
			log.Warnw("skipping pair", "symbol_a", p.SymbolA, "symbol_b", p.SymbolB, "error", err)
			results = append(results, PairResult{Err: err})
			continue
		}

		analysis, err := s.Analyze(ctx, req)
		results = append(results, PairResult{Request: req, Analysis: analysis, Err: err})
		if err != nil {
			log.Errorw("pair failed", "pair", req.String(), "kind", engine.KindOf(err), "error", err)
			s.trySend(render.HTMLError(req.String(), engine.MessageOf(err)))
			continue
		}
		log.Infow("pair computed", "pair", req.String(),
			"rows", analysis.Table.Len(), "correlation", render.FormatCorrelation(analysis.Correlation))
		if analysis.Correlation.Valid {
			metrics.LastCorrelation.WithLabelValues(req.SymbolA + "/" + req.SymbolB).Set(analysis.Correlation.Float64)
		}
		s.deliver(analysis)
	}
	return results
}

// Analyze runs one request through the engine and records metrics.
func (s *Scheduler) Analyze(ctx context.Context, req request.Request) (*model.Analysis, error) {
	started := time.Now()
	analysis, err := s.Engine.Compute(ctx, req.SymbolA, req.SymbolB, req.Start, req.End)

	status := "success"
	if err != nil {
		status = string(engine.KindOf(err))
	}
	metrics.ObserveAnalysis(s.Engine.Source(), status, time.Since(started))
	return analysis, err
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) notifier.Reply {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.Reply{Text: helpText}
	}
	// "/corr@my_bot" in group chats
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")

	switch name {
	case "/corr":
		req, err := request.FromArgs(fields[1:])
		if err != nil {
			return notifier.Reply{Text: render.HTMLError("Invalid request", err.Error())}
		}
		analysis, err := s.Analyze(ctx, req)
		if err != nil {
			return notifier.Reply{Text: render.HTMLError(req.String(), engine.MessageOf(err))}
		}
		return s.chartReply(analysis)
	case "/watch":
		if s.watching.Load() {
			return notifier.Reply{Text: "A watch run is already in progress."}
		}
		go s.RunWatch()
		return notifier.Reply{Text: fmt.Sprintf("Recomputing %d watched pairs…", len(s.Pairs))}
	case "/pairs":
		if len(s.Pairs) == 0 {
			return notifier.Reply{Text: "No pairs are watched."}
		}
		var b strings.Builder
		b.WriteString("Watched pairs:\n")
		for _, p := range s.Pairs {
			fmt.Fprintf(&b, "• %s / %s (%d days)\n", p.SymbolA, p.SymbolB, p.LookbackDays)
		}
		return notifier.Reply{Text: b.String()}
	default:
		return notifier.Reply{Text: helpText}
	}
}

// chartReply renders a fresh chart; a rendering failure still returns the text report.
func (s *Scheduler) chartReply(a *model.Analysis) notifier.Reply {
	reply := notifier.Reply{Text: render.HTMLReport(a), Format: s.Chart.Format}
	chart, err := render.Chart(a.Table, a.Correlation, s.Chart)
	if err != nil {
		s.log.Warnw("render chart failed", "error", err)
		return reply
	}
	reply.Chart = chart
	return reply
}

func (s *Scheduler) deliver(a *model.Analysis) {
	if s.Notifier == nil {
		return
	}
	reply := s.chartReply(a)
	var err error
	if len(reply.Chart) > 0 {
		err = s.Notifier.SendChart(reply.Chart, reply.Format, reply.Text)
	} else {
		err = s.Notifier.Send(reply.Text)
	}
	metrics.ObserveNotification(err)
	if err != nil {
		s.log.Errorw("send notification failed", "error", err)
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	err := s.Notifier.Send(text)
	metrics.ObserveNotification(err)
	if err != nil {
		s.log.Errorw("send notification failed", "error", err)
	}
}
