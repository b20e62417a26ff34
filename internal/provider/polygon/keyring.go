package polygon

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// keyRing hands out API keys round-robin so the per-key rate limit is spread
// across every configured key. With a non-zero interval each key is also paced:
// a key is handed out at most once per interval (free plans allow 5 req/min,
// i.e. 12s per key).
type keyRing struct {
	mu       sync.Mutex
	keys     []string
	next     int
	nextFree []time.Time
	interval time.Duration
}

func newKeyRing(keys []string) (*keyRing, error) {
	var clean []string
	for _, k := range keys {
		if k != "" {
			clean = append(clean, k)
		}
	}
	if len(clean) == 0 {
		return nil, fmt.Errorf("polygon: at least one API key is required")
	}
	return &keyRing{keys: clean, nextFree: make([]time.Time, len(clean))}, nil
}

// take returns the next key, waiting until it may be used again. The slot is
// reserved under the lock so concurrent callers queue instead of bursting.
func (r *keyRing) take(ctx context.Context) (string, error) {
	r.mu.Lock()
	i := r.next
	r.next = (r.next + 1) % len(r.keys)
	now := time.Now()
	ready := r.nextFree[i]
	if ready.Before(now) {
		ready = now
	}
	r.nextFree[i] = ready.Add(r.interval)
	r.mu.Unlock()

	wait := time.Until(ready)
	if wait <= 0 {
		return r.keys[i], nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		return r.keys[i], nil
	}
}

func (r *keyRing) size() int {
	return len(r.keys)
}

// keyPrefix shortens a key for logs.
func keyPrefix(key string) string {
	if len(key) > 8 {
		return key[:8]
	}
	return key
}
