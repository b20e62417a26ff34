package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"us-bars/internal/refresh"
)

func TestNextRunTime(t *testing.T) {
	tests := []struct {
		now  time.Time
		want time.Time
	}{
		{time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC), time.Date(2024, 3, 15, 22, 30, 0, 0, time.UTC)},
		{time.Date(2024, 3, 15, 22, 30, 0, 0, time.UTC), time.Date(2024, 3, 16, 22, 30, 0, 0, time.UTC)},
		{time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 22, 30, 0, 0, time.UTC)},
		// 20:00 in New York is already 00:00 UTC the next day.
		{time.Date(2024, 3, 15, 20, 0, 0, 0, time.FixedZone("EDT", -4*3600)), time.Date(2024, 3, 16, 22, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := nextRunTime(tt.now, 22, 30); !got.Equal(tt.want) {
			t.Errorf("nextRunTime(%v) = %v, want %v", tt.now, got, tt.want)
		}
	}
}

type countingRunner struct {
	runs int
	err  error
	hook func()
}

func (r *countingRunner) Run(ctx context.Context, symbols []string) (refresh.Summary, error) {
	r.runs++
	if r.hook != nil {
		r.hook()
	}
	return refresh.Summary{Success: len(symbols)}, r.err
}

func TestRunScheduleOnce(t *testing.T) {
	r := &countingRunner{}
	if err := RunSchedule(context.Background(), &Config{}, r, []string{"AAPL"}, true); err != nil {
		t.Fatal(err)
	}
	if r.runs != 1 {
		t.Fatalf("runs = %d", r.runs)
	}
}

func TestRunScheduleStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &countingRunner{hook: cancel}
	done := make(chan error, 1)
	go func() { done <- RunSchedule(ctx, &Config{RefreshRunHour: 0, RefreshRunMinute: 0}, r, nil, false) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("schedule did not stop")
	}
	if r.runs != 1 {
		t.Fatalf("runs = %d", r.runs)
	}
}

func TestRunScheduleReturnsRunError(t *testing.T) {
	boom := errors.New("boom")
	r := &countingRunner{err: boom}
	if err := RunSchedule(context.Background(), &Config{}, r, nil, false); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}
