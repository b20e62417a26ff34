package slogx

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"Error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestChanWriterSplitsLines(t *testing.T) {
	ch := make(chan string, 4)
	w := &ChanWriter{Ch: ch}
	w.Write([]byte("first\nsec"))
	w.Write([]byte("ond\n"))
	close(ch)

	var got []string
	for l := range ch {
		got = append(got, l)
	}
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("got %q", got)
	}
}

func TestChanWriterDropsWhenFull(t *testing.T) {
	ch := make(chan string, 1)
	w := &ChanWriter{Ch: ch}
	w.Write([]byte("a\nb\nc\n"))
	if w.Dropped() != 2 {
		t.Fatalf("dropped = %d, want 2", w.Dropped())
	}
	if <-ch != "a" {
		t.Fatal("first line should be delivered")
	}
}

func TestNewChanLoggerLevel(t *testing.T) {
	ch := make(chan string, 4)
	logger := NewChanLogger(ch, slog.LevelInfo)
	logger.Debug("hidden")
	logger.Info("refresh ok", "symbol", "AAPL")
	close(ch)

	var lines []string
	for l := range ch {
		lines = append(lines, l)
	}
	if len(lines) != 1 || !strings.Contains(lines[0], "symbol=AAPL") {
		t.Fatalf("got %q", lines)
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn")
	logger.Info("nope")
	logger.Warn("yes")
	if strings.Contains(buf.String(), "nope") || !strings.Contains(buf.String(), "yes") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
