// Package httpapi exposes the bar cache over HTTP.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"us-bars/internal/barcache"
	"us-bars/internal/model"
)

const (
	DefaultDays     = 100
	shutdownTimeout = 5 * time.Second
)

// BarGetter is the cache read path; *barcache.Manager implements it.
type BarGetter interface {
	GetBars(ctx context.Context, symbol string, days int, tf model.Timeframe) (*barcache.Result, error)
}

// Options configures the HTTP surface.
type Options struct {
	Addr         string
	StaticDir    string // optional, served at /
	CORSOrigin   string // default "*"
	DefaultDays  int
	ProviderName string
}

type Server struct {
	opts     Options
	bars     BarGetter
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time
	srv      *http.Server
}

func NewServer(bars BarGetter, opts Options, logger *slog.Logger) *Server {
	if opts.CORSOrigin == "" {
		opts.CORSOrigin = "*"
	}
	if opts.DefaultDays <= 0 {
		opts.DefaultDays = DefaultDays
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		opts:     opts,
		bars:     bars,
		logger:   logger.With("component", "http"),
		validate: validator.New(),
		now:      time.Now,
	}
}

// Handler returns the full middleware-wrapped route tree.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/bars/{symbol}", s.handleBars)
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.opts.StaticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(s.opts.StaticDir)))
	}
	return s.requestID(s.logRequests(s.cors(mux)))
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("http shutdown", "error", err)
		}
	}()

	s.logger.Info("http server starting", "addr", ln.Addr().String(), "static", s.opts.StaticDir)
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}
