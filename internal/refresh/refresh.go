// Package refresh warms the bar cache for a symbol list in rate-limit friendly
// groups, writes a run report and optionally exports each refreshed series.
package refresh

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"us-bars/internal/barcache"
	"us-bars/internal/model"
	"us-bars/internal/saver"
	"us-bars/internal/slogx"
)

const (
	DefaultGroupSize         = 5
	DefaultGroupDelay        = 12 * time.Second
	DefaultHeartbeatInterval = 30 * time.Second
)

// BarGetter is the cache read path; *barcache.Manager implements it.
type BarGetter interface {
	GetBars(ctx context.Context, symbol string, days int, tf model.Timeframe) (*barcache.Result, error)
}

// Options configures a Refresher. Zero values fall back to the defaults above.
type Options struct {
	GroupSize  int
	GroupDelay time.Duration
	// Days is the window requested per series; 0 means barcache.MaxBars.
	Days       int
	Timeframes []model.Timeframe

	// ReportDir receives .lastrun.success.json / .lastrun.failed.json. Empty disables the report.
	ReportDir string
	// ExportDir and Saver enable export of refreshed series. Nil Saver disables export.
	ExportDir string
	Saver     saver.Saver

	HeartbeatInterval time.Duration
	// LogOutput receives fan-in worker log lines (default os.Stdout).
	LogOutput io.Writer
}

// Job is one (symbol, timeframe) refresh.
type Job struct {
	Symbol    string
	Timeframe model.Timeframe
}

// JobResult is sent by workers for fan-in.
type JobResult struct {
	Ok        bool
	Symbol    string
	Timeframe model.Timeframe
	Reason    string
	Bars      int
}

// Summary is the outcome of one Run.
type Summary struct {
	Success     int
	Failed      int
	Bars        int
	SuccessList []string
	FailedList  []FailedEntry
}

// Refresher runs batch refreshes against a BarGetter.
type Refresher struct {
	getter BarGetter
	opts   Options
}

// New creates a Refresher, filling unset options with defaults.
func New(getter BarGetter, opts Options) *Refresher {
	if opts.GroupSize <= 0 {
		opts.GroupSize = DefaultGroupSize
	}
	if opts.GroupDelay < 0 {
		opts.GroupDelay = 0
	}
	if opts.Days <= 0 {
		opts.Days = barcache.MaxBars
	}
	if len(opts.Timeframes) == 0 {
		opts.Timeframes = []model.Timeframe{model.Daily}
	}
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stdout
	}
	return &Refresher{getter: getter, opts: opts}
}

// Groups splits symbols into consecutive groups of at most size.
func Groups(symbols []string, size int) [][]string {
	if size <= 0 {
		size = DefaultGroupSize
	}
	var groups [][]string
	for i := 0; i < len(symbols); i += size {
		groups = append(groups, symbols[i:min(i+size, len(symbols))])
	}
	return groups
}

// Run refreshes every symbol for every configured timeframe. Jobs inside a
// group run concurrently; groups are separated by GroupDelay. Cancelling ctx
// stops before the next group and returns ctx.Err() with the partial summary.
func (r *Refresher) Run(ctx context.Context, symbols []string) (Summary, error) {
	groups := Groups(symbols, r.opts.GroupSize)
	totalJobs := len(symbols) * len(r.opts.Timeframes)
	slog.Info("refresh start", "symbols", len(symbols), "timeframes", len(r.opts.Timeframes),
		"groups", len(groups), "group_delay", r.opts.GroupDelay)

	logs := make(chan string, 2048)
	logger := slogx.NewChanLogger(logs, slog.LevelInfo)
	var logWg sync.WaitGroup
	logWg.Add(1)
	go func() {
		defer logWg.Done()
		runLogWriter(r.opts.LogOutput, logs)
	}()

	results := make(chan JobResult, totalJobs+1)
	col := &collector{barsPerSymbol: make(map[string]int)}
	var resWg sync.WaitGroup
	resWg.Add(1)
	go func() {
		defer resWg.Done()
		col.run(results)
	}()

	hbCtx, stopHeartbeat := context.WithCancel(ctx)
	var hbWg sync.WaitGroup
	hbWg.Add(1)
	go func() {
		defer hbWg.Done()
		runHeartbeat(hbCtx, r.opts.HeartbeatInterval, totalJobs, col, logger)
	}()

	runErr := r.runGroups(ctx, groups, logger, results)

	close(results)
	resWg.Wait()
	// The heartbeat must be gone before logs is closed.
	stopHeartbeat()
	hbWg.Wait()

	sum := col.summary()
	logSummary(logger, col, sum)
	close(logs)
	logWg.Wait()

	if r.opts.ReportDir != "" && (len(sum.SuccessList) > 0 || len(sum.FailedList) > 0) {
		if err := writeRunReport(r.opts.ReportDir, sum.SuccessList, sum.FailedList); err != nil {
			slog.Warn("could not write run report", "error", err)
		} else {
			slog.Info("run report saved", "success", len(sum.SuccessList), "failed", len(sum.FailedList))
		}
	}
	slog.Info("refresh done", "success", sum.Success, "failed", sum.Failed, "bars", sum.Bars)
	return sum, runErr
}

func (r *Refresher) runGroups(ctx context.Context, groups [][]string, logger *slog.Logger, results chan<- JobResult) error {
	for i, group := range groups {
		if i > 0 && r.opts.GroupDelay > 0 {
			timer := time.NewTimer(r.opts.GroupDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
			case <-timer.C:
			}
		}
		if err := ctx.Err(); err != nil {
			logger.Warn("refresh cancelled", "group", i, "groups", len(groups))
			return err
		}

		var g errgroup.Group
		for _, symbol := range group {
			for _, tf := range r.opts.Timeframes {
				job := Job{Symbol: symbol, Timeframe: tf}
				g.Go(func() error {
					results <- r.runJob(ctx, job, logger)
					return nil
				})
			}
		}
		_ = g.Wait()
		logger.Info("group done", "group", i+1, "groups", len(groups), "symbols", len(group))
	}
	return nil
}

func (r *Refresher) runJob(ctx context.Context, job Job, logger *slog.Logger) JobResult {
	res, err := r.getter.GetBars(ctx, job.Symbol, r.opts.Days, job.Timeframe)
	if err != nil {
		logger.Error("refresh fail", "symbol", job.Symbol, "timeframe", job.Timeframe, "reason", err.Error())
		return JobResult{Symbol: job.Symbol, Timeframe: job.Timeframe, Reason: err.Error()}
	}

	if r.opts.Saver != nil {
		path, err := exportBars(r.opts.ExportDir, r.opts.Saver, res.Symbol, job.Timeframe, res.Data)
		if err != nil {
			logger.Error("export fail", "symbol", job.Symbol, "timeframe", job.Timeframe, "reason", err.Error())
			return JobResult{Symbol: job.Symbol, Timeframe: job.Timeframe, Reason: "export: " + err.Error()}
		}
		logger.Info("exported", "symbol", job.Symbol, "timeframe", job.Timeframe, "path", path)
	}

	logger.Info("refresh ok", "symbol", job.Symbol, "timeframe", job.Timeframe, "bars", len(res.Data))
	return JobResult{Ok: true, Symbol: job.Symbol, Timeframe: job.Timeframe, Bars: len(res.Data)}
}

func logSummary(logger *slog.Logger, col *collector, sum Summary) {
	logger.Info("summary", "total_bars", sum.Bars, "success", sum.Success, "failed", sum.Failed)
	symbols := make([]string, 0, len(col.barsPerSymbol))
	for s := range col.barsPerSymbol {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	for _, s := range symbols {
		logger.Debug("summary symbol", "symbol", s, "bars", col.barsPerSymbol[s])
	}
	if len(sum.FailedList) > 0 {
		logger.Info("summary failed", "count", len(sum.FailedList), "reasons", joinFailedReasons(sum.FailedList))
	}
}
