package refresh

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

func runLogWriter(w io.Writer, lines <-chan string) {
	for s := range lines {
		fmt.Fprintln(w, s)
	}
}

// collector aggregates JobResults; heartbeat reads it concurrently.
type collector struct {
	mu            sync.Mutex
	success       int
	failed        int
	barsPerSymbol map[string]int
	successList   []string
	failedList    []FailedEntry
}

func (c *collector) run(results <-chan JobResult) {
	for r := range results {
		c.mu.Lock()
		if r.Ok {
			c.success++
			c.successList = appendSuccess(c.successList, r.Symbol)
			c.barsPerSymbol[r.Symbol] += r.Bars
		} else {
			c.failed++
			c.failedList = append(c.failedList, FailedEntry{Symbol: r.Symbol, Timeframe: string(r.Timeframe), Reason: r.Reason})
		}
		c.mu.Unlock()
	}
}

func (c *collector) counts() (success, failed, bars int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.barsPerSymbol {
		bars += n
	}
	return c.success, c.failed, bars
}

func (c *collector) summary() Summary {
	s, f, bars := c.counts()
	c.mu.Lock()
	defer c.mu.Unlock()
	return Summary{
		Success:     s,
		Failed:      f,
		Bars:        bars,
		SuccessList: append([]string(nil), c.successList...),
		FailedList:  append([]FailedEntry(nil), c.failedList...),
	}
}

func runHeartbeat(ctx context.Context, interval time.Duration, totalJobs int, c *collector, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s, f, bars := c.counts()
			logger.Info("heartbeat", "done", s+f, "total", totalJobs, "success", s, "failed", f, "bars", bars)
		}
	}
}
