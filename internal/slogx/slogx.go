// Package slogx holds slog helpers shared by the server and the batch refresher.
package slogx

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// ChanWriter buffers writes and sends complete lines to a channel.
// Used with slog.TextHandler for fan-in logging; lines are dropped when the
// channel is full so workers never block on logging.
type ChanWriter struct {
	Ch      chan<- string
	buf     []byte
	dropped atomic.Int64
}

func (w *ChanWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		line := string(w.buf[:i])
		w.buf = w.buf[i+1:]
		select {
		case w.Ch <- line:
		default:
			w.dropped.Add(1)
		}
	}
	return len(p), nil
}

// Dropped reports how many lines were discarded because the channel was full.
func (w *ChanWriter) Dropped() int64 { return w.dropped.Load() }

// NewChanLogger creates a text-format logger that writes lines to ch.
// slog handlers serialize their writes, so one ChanWriter is safe to share.
func NewChanLogger(ch chan<- string, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(&ChanWriter{Ch: ch}, &slog.HandlerOptions{Level: level}))
}

// ParseLevel converts string (debug|info|warn|error) to slog.Level. Unknown → info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a text logger on w with the given level string.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
}

// NewDefault creates a logger writing to stderr with the given level string.
func NewDefault(level string) *slog.Logger {
	return New(os.Stderr, level)
}
