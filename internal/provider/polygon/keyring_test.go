package polygon

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestKeyRingRoundRobin(t *testing.T) {
	r, err := newKeyRing([]string{"a", "", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if r.size() != 3 {
		t.Fatalf("size = %d, want 3", r.size())
	}
	var got []string
	for i := 0; i < 5; i++ {
		k, err := r.take(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, k)
	}
	want := []string{"a", "b", "c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestKeyRingEmpty(t *testing.T) {
	if _, err := newKeyRing([]string{"", ""}); err == nil {
		t.Fatal("expected error for no keys")
	}
}

func TestKeyRingPacesEachKey(t *testing.T) {
	r, _ := newKeyRing([]string{"only"})
	r.interval = 40 * time.Millisecond

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := r.take(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Fatalf("elapsed %v, want >= 2 intervals", elapsed)
	}
}

func TestKeyRingWaitHonoursContext(t *testing.T) {
	r, _ := newKeyRing([]string{"only"})
	r.interval = time.Hour
	if _, err := r.take(context.Background()); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := r.take(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestKeyPrefix(t *testing.T) {
	if keyPrefix("abcdefghijkl") != "abcdefgh" || keyPrefix("short") != "short" {
		t.Fatal("unexpected prefix")
	}
}
