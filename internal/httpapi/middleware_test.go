package httpapi

import (
	"fmt"
	"testing"

	"github.com/realtydesk/realtydesk/internal/config"
)

func TestLimiterPoolBoundsKeyCount(t *testing.T) {
	pool := newLimiterPool(config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1})
	pool.maxKeys = 4

	for i := 0; i < 100; i++ {
		pool.get(fmt.Sprintf("caller-%d", i))
	}
	if n := len(pool.limiters); n > 4 {
		t.Fatalf("limiter map exceeded cap: %d entries", n)
	}
}

func TestLimiterPoolReusesBucketPerKey(t *testing.T) {
	pool := newLimiterPool(config.RateLimitConfig{RequestsPerSecond: 1, Burst: 2})

	lim := pool.get("alice")
	if pool.get("alice") != lim {
		t.Fatal("expected the same limiter for repeated key")
	}

	lim.Allow()
	lim.Allow()
	if pool.get("alice").Allow() {
		t.Fatal("expected the bucket to be exhausted after burst")
	}
}
