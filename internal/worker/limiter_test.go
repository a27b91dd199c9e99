package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(0, 0)

	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := limiter.Wait(context.Background()); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("disabled limiter should not block, took %v", elapsed)
	}
	if !limiter.Allow() {
		t.Error("disabled limiter should always allow")
	}
}

func TestLimiter_Throttles(t *testing.T) {
	// 1 burst, 10 rps: the second request must wait ~100ms
	limiter := NewLimiter(10, 1)

	if err := limiter.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	start := time.Now()
	if err := limiter.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("expected throttling, second request took %v", elapsed)
	}
}

func TestLimiter_ContextCancel(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	if err := limiter.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx); err == nil {
		t.Error("expected context error, got nil")
	}
}

func TestLimiter_Allow(t *testing.T) {
	limiter := NewLimiter(1, 1)
	if !limiter.Allow() {
		t.Error("first request should be allowed")
	}
	if limiter.Allow() {
		t.Error("second immediate request should be denied")
	}
}
