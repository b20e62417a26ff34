package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"us-bars/internal/model"
)

type barsQuery struct {
	Symbol    string `validate:"required,max=10"`
	Days      int    `validate:"min=1,max=10000"`
	Timeframe model.Timeframe
}

type errorResponse struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retry_after,omitempty"`
}

type healthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
	Time     string `json:"time"`
}

// GET /api/bars/{symbol}?days=N&timeframe=TF
func (s *Server) handleBars(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseBarsQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.bars.GetBars(r.Context(), q.Symbol, q.Days, q.Timeframe)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Provider: s.opts.ProviderName,
		Time:     s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) parseBarsQuery(r *http.Request) (barsQuery, error) {
	q := barsQuery{Symbol: r.PathValue("symbol"), Days: s.opts.DefaultDays}
	values := r.URL.Query()

	if v := values.Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return q, fmt.Errorf("%w: days must be an integer, got %q", errBadRequest, v)
		}
		q.Days = n
	}
	tf, err := model.ParseTimeframe(values.Get("timeframe"))
	if err != nil {
		return q, err
	}
	q.Timeframe = tf

	if err := s.validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "Symbol" {
			return q, fmt.Errorf("%w: %q", model.ErrInvalidSymbol, q.Symbol)
		}
		return q, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return q, nil
}

var errBadRequest = errors.New("bad request")

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, model.ErrInvalidSymbol),
		errors.Is(err, model.ErrInvalidTimeframe):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, model.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorResponse{Error: err.Error()}

	var rl *model.RateLimitedError
	if errors.As(err, &rl) {
		secs := int(math.Ceil(rl.RetryAfter(s.now()).Seconds()))
		body.RetryAfter = secs
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "status", status, "error", err, "request_id", RequestIDFrom(r.Context()))
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
