package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	limiter := NewMemoryLimiter(MemoryLimiterConfig{Now: func() time.Time { return now }})

	for i := 0; i < 3; i++ {
		decision, err := limiter.Allow(context.Background(), "actor:u1", 3, time.Minute)
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !decision.Allowed {
			t.Fatalf("request %d must be allowed", i)
		}
		if decision.Remaining != 3-(i+1) {
			t.Fatalf("remaining = %d after %d requests", decision.Remaining, i+1)
		}
	}

	decision, err := limiter.Allow(context.Background(), "actor:u1", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("fourth request must be denied")
	}
	if decision.Remaining != 0 {
		t.Fatalf("remaining = %d", decision.Remaining)
	}

	// A new window resets the budget.
	now = now.Add(2 * time.Minute)
	decision, err = limiter.Allow(context.Background(), "actor:u1", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("request in new window must be allowed")
	}
}

func TestMemoryLimiterKeysIsolated(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	limiter := NewMemoryLimiter(MemoryLimiterConfig{Now: func() time.Time { return now }})

	if d, _ := limiter.Allow(context.Background(), "actor:u1", 1, time.Minute); !d.Allowed {
		t.Fatalf("first u1 request must be allowed")
	}
	if d, _ := limiter.Allow(context.Background(), "actor:u1", 1, time.Minute); d.Allowed {
		t.Fatalf("second u1 request must be denied")
	}
	if d, _ := limiter.Allow(context.Background(), "actor:u2", 1, time.Minute); !d.Allowed {
		t.Fatalf("u2 must have its own budget")
	}
}

func TestMemoryLimiterZeroLimit(t *testing.T) {
	limiter := NewMemoryLimiter(MemoryLimiterConfig{})
	decision, err := limiter.Allow(context.Background(), "actor:u1", 0, time.Minute)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("zero limit disables limiting")
	}
}
