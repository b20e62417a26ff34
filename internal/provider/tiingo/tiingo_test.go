package tiingo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"us-bars/internal/model"
)

var fixedNow = time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New("secret", WithBaseURL(srv.URL), WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestFetchDaily(t *testing.T) {
	var gotPath, gotStart, gotToken string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotStart = r.URL.Query().Get("startDate")
		gotToken = r.URL.Query().Get("token")
		w.Write([]byte(`[
			{"date":"2024-03-13T00:00:00.000Z","open":10,"high":12,"low":9,"close":11,"volume":1000},
			{"date":"2024-03-14T00:00:00.000Z","open":11,"high":13,"low":10,"close":12,"volume":2.5e3}
		]`))
	})

	since := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)
	bars, err := c.FetchDaily(context.Background(), "AAPL", &since)
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/tiingo/daily/aapl/prices" || gotStart != "2024-03-13" || gotToken != "secret" {
		t.Errorf("request path=%q start=%q token=%q", gotPath, gotStart, gotToken)
	}
	if len(bars) != 2 || bars[0].Time != "2024-03-13" || bars[1].Time != "2024-03-14" {
		t.Fatalf("unexpected bars %+v", bars)
	}
	if bars[1].Volume == nil || *bars[1].Volume != 2500 {
		t.Errorf("volume = %v", bars[1].Volume)
	}
}

func TestFetchDailyFullHistory(t *testing.T) {
	var gotStart string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotStart = r.URL.Query().Get("startDate")
		w.Write([]byte(`[]`))
	})
	bars, err := c.FetchDaily(context.Background(), "AAPL", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 0 {
		t.Fatalf("want no bars, got %d", len(bars))
	}
	if gotStart != "2019-03-15" {
		t.Errorf("startDate = %q, want 5y lookback", gotStart)
	}
}

func TestFetchIntraday(t *testing.T) {
	var gotPath, gotFreq string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFreq = r.URL.Query().Get("resampleFreq")
		w.Write([]byte(`[{"date":"2024-03-14T13:30:00.000Z","open":1,"high":2,"low":0.5,"close":1.5}]`))
	})
	bars, err := c.FetchIntraday(context.Background(), "msft", nil)
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/iex/msft/prices" || gotFreq != "4hour" {
		t.Errorf("path=%q freq=%q", gotPath, gotFreq)
	}
	if len(bars) != 1 || bars[0].Time != "2024-03-14T13:30:00Z" || bars[0].Volume != nil {
		t.Fatalf("unexpected bars %+v", bars)
	}
}

func TestRateLimitIsEmpty(t *testing.T) {
	for name, h := range map[string]http.HandlerFunc{
		"429": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "slow down", http.StatusTooManyRequests)
		},
		"allocation": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("Error: You have run over your hourly request allocation."))
		},
	} {
		c := newTestClient(t, h)
		bars, err := c.FetchDaily(context.Background(), "AAPL", nil)
		if err != nil || len(bars) != 0 {
			t.Errorf("%s: bars=%v err=%v, want empty and nil", name, bars, err)
		}
	}
}

func TestUpstreamErrors(t *testing.T) {
	for name, h := range map[string]http.HandlerFunc{
		"500": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
		"bad json": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"detail":"Not found."}`))
		},
		"bad date": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"date":"yesterday","open":1,"high":1,"low":1,"close":1}]`))
		},
	} {
		c := newTestClient(t, h)
		if _, err := c.FetchDaily(context.Background(), "AAPL", nil); !errors.Is(err, model.ErrUpstream) {
			t.Errorf("%s: err = %v, want ErrUpstream", name, err)
		}
	}
}

func TestNewRequiresToken(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty token")
	}
}
