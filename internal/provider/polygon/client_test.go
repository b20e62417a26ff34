package polygon

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

func newTestClient(t *testing.T, keys []string, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(keys, WithBaseURL(srv.URL), WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestFetchDaily(t *testing.T) {
	var gotPath string
	c := newTestClient(t, []string{"key-one"}, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		// 2024-03-14 00:00 and 2024-03-15 00:00 America/New_York (EDT, UTC-4).
		w.Write([]byte(`{"status":"OK","results":[
			{"t":1710388800000,"o":10,"h":12,"l":9,"c":11,"v":1000},
			{"t":1710475200000,"o":11,"h":13,"l":10,"c":12,"v":2.5e3}
		]}`))
	})
	since := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	bars, err := c.FetchDaily(context.Background(), "AAPL", &since)
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/v2/aggs/ticker/AAPL/range/1/day/2024-03-14/2024-03-15" {
		t.Errorf("path = %q", gotPath)
	}
	if len(bars) != 2 || bars[0].Time != "2024-03-14" || bars[1].Time != "2024-03-15" {
		t.Fatalf("unexpected bars %+v", bars)
	}
	if *bars[1].Volume != 2500 {
		t.Errorf("volume = %d", *bars[1].Volume)
	}
}

func TestFetchIntradayDelayed(t *testing.T) {
	var gotPath string
	c := newTestClient(t, []string{"k"}, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"status":"DELAYED","results":[{"t":1710424800000,"o":1,"h":2,"l":0.5,"c":1.5}]}`))
	})
	bars, err := c.FetchIntraday(context.Background(), "MSFT", nil)
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/v2/aggs/ticker/MSFT/range/4/hour/2024-02-14/2024-03-15" {
		t.Errorf("path = %q", gotPath)
	}
	if len(bars) != 1 || bars[0].Time != "2024-03-14T14:00:00Z" || bars[0].Volume != nil {
		t.Fatalf("unexpected bars %+v", bars)
	}
}

func TestRateLimitIsEmpty(t *testing.T) {
	c := newTestClient(t, []string{"k"}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	bars, err := c.FetchDaily(context.Background(), "AAPL", nil)
	if err != nil || len(bars) != 0 {
		t.Fatalf("bars=%v err=%v", bars, err)
	}
}

func TestUpstreamErrors(t *testing.T) {
	for name, h := range map[string]http.HandlerFunc{
		"500": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
		"status error": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"ERROR","error":"Unknown API Key"}`))
		},
		"bad json": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>`))
		},
	} {
		c := newTestClient(t, []string{"k"}, h)
		if _, err := c.FetchDaily(context.Background(), "AAPL", nil); !errors.Is(err, model.ErrUpstream) {
			t.Errorf("%s: err = %v, want ErrUpstream", name, err)
		}
	}
}

func TestKeysRotate(t *testing.T) {
	var seen []string
	c := newTestClient(t, []string{"a", "", "b"}, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.Query().Get("apiKey"))
		w.Write([]byte(`{"status":"OK","results":[]}`))
	})
	if c.Keys() != 2 {
		t.Fatalf("Keys() = %d, want 2", c.Keys())
	}
	for i := 0; i < 3; i++ {
		if _, err := c.FetchDaily(context.Background(), "AAPL", nil); err != nil {
			t.Fatal(err)
		}
	}
	if len(seen) != 3 || seen[0] != "a" || seen[1] != "b" || seen[2] != "a" {
		t.Fatalf("keys used = %v", seen)
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error without keys")
	}
}
