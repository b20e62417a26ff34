package model

import (
	"errors"
	"testing"
	"time"
)

func TestParseTimeframe(t *testing.T) {
	tests := []struct {
		in   string
		want Timeframe
	}{
		{"", Daily},
		{"1d", Daily},
		{"1D", Daily},
		{" daily ", Daily},
		{"4h", FourHour},
		{"4HOUR", FourHour},
		{"1w", Weekly},
		{"Weekly", Weekly},
		{"1M", Monthly},
		{"1mo", Monthly},
		{"month", Monthly},
	}
	for _, tt := range tests {
		got, err := ParseTimeframe(tt.in)
		if err != nil {
			t.Errorf("ParseTimeframe(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTimeframe(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := ParseTimeframe("15m"); !errors.Is(err, ErrInvalidTimeframe) {
		t.Errorf("ParseTimeframe(15m) error = %v, want ErrInvalidTimeframe", err)
	}
}

func TestTimeframeDailySpan(t *testing.T) {
	if Weekly.DailySpan() != 7 || Monthly.DailySpan() != 30 || Daily.DailySpan() != 1 {
		t.Fatal("unexpected daily span")
	}
	if !Weekly.Derived() || !Monthly.Derived() || Daily.Derived() || FourHour.Derived() {
		t.Fatal("unexpected derived flags")
	}
}

func TestValidateSymbol(t *testing.T) {
	valid := []string{"AAPL", "brk.b", "BF-B", "A", "ABCDEFGHIJ"}
	for _, s := range valid {
		if err := ValidateSymbol(s); err != nil {
			t.Errorf("ValidateSymbol(%q) = %v, want nil", s, err)
		}
	}
	invalid := []string{"", "ABCDEFGHIJK", "../etc", "A/B", "AAPL ", "A$"}
	for _, s := range invalid {
		if err := ValidateSymbol(s); !errors.Is(err, ErrInvalidSymbol) {
			t.Errorf("ValidateSymbol(%q) = %v, want ErrInvalidSymbol", s, err)
		}
	}
}

func TestSanitizeSymbol(t *testing.T) {
	got, err := SanitizeSymbol("../brk.b")
	if err != nil {
		t.Fatal(err)
	}
	if got != "..BRK.B" {
		t.Errorf("SanitizeSymbol = %q, want ..BRK.B", got)
	}
	if _, err := SanitizeSymbol("///"); !errors.Is(err, ErrInvalidSymbol) {
		t.Errorf("empty after sanitize: err = %v", err)
	}
	if _, err := SanitizeSymbol("ABCDEFGHIJK"); !errors.Is(err, ErrInvalidSymbol) {
		t.Errorf("too long: err = %v", err)
	}
}

func TestRateLimitedError(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var err error = &RateLimitedError{Until: now.Add(15 * time.Minute)}
	if !errors.Is(err, ErrRateLimited) {
		t.Fatal("RateLimitedError should match ErrRateLimited")
	}
	var rl *RateLimitedError
	if !errors.As(err, &rl) {
		t.Fatal("errors.As failed")
	}
	if got := rl.RetryAfter(now); got != 15*time.Minute {
		t.Errorf("RetryAfter = %v", got)
	}
	if got := rl.RetryAfter(now.Add(time.Hour)); got != 0 {
		t.Errorf("RetryAfter after deadline = %v", got)
	}
}
