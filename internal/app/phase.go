package app

import (
	"context"
	"log/slog"
	"time"

	"us-bars/internal/refresh"
)

// Runner is one batch refresh pass; *refresh.Refresher implements it.
type Runner interface {
	Run(ctx context.Context, symbols []string) (refresh.Summary, error)
}

// RunSchedule orchestrates the refresh loop: run → wait until next run time → run.
// It returns when ctx is cancelled, or after one pass when once is set.
func RunSchedule(ctx context.Context, cfg *Config, r Runner, symbols []string, once bool) error {
	for {
		if _, err := r.Run(ctx, symbols); err != nil {
			if ctx.Err() != nil {
				slog.Info("refresh interrupted, stopping")
				return nil
			}
			return err
		}
		if once {
			return nil
		}

		nextRun := nextRunTime(time.Now().UTC(), cfg.RefreshRunHour, cfg.RefreshRunMinute)
		waitDur := time.Until(nextRun)
		slog.Info("done, wait until next run", "hours", waitDur.Hours(), "until", nextRun.Format("2006-01-02 15:04"))
		timer := time.NewTimer(waitDur)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			slog.Info("stopping refresh schedule", "next_run", nextRun.Format("2006-01-02 15:04"))
			return nil
		}
	}
}

// nextRunTime returns the next hour:min UTC strictly after now.
func nextRunTime(now time.Time, hour, min int) time.Time {
	now = now.UTC()
	targetToday := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, time.UTC)
	if now.Before(targetToday) {
		return targetToday
	}
	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), hour, min, 0, 0, time.UTC)
}
