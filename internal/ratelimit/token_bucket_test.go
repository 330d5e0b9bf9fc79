package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNewTokenBucketLimiter(t *testing.T) {
	tests := []struct {
		name    string
		rpm     int
		wantRPM int
	}{
		{name: "valid limit", rpm: 50, wantRPM: 50},
		{name: "zero treated as unlimited", rpm: 0, wantRPM: unlimitedRPM},
		{name: "negative treated as unlimited", rpm: -1, wantRPM: unlimitedRPM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := NewTokenBucketLimiter(tt.rpm)
			if limiter == nil {
				t.Fatal("NewTokenBucketLimiter returned nil")
			}
			if limiter.GetRPM() != tt.wantRPM {
				t.Errorf("rpm = %d, want %d", limiter.GetRPM(), tt.wantRPM)
			}
		})
	}
}

func TestAllow(t *testing.T) {
	tests := []struct {
		name        string
		rpm         int
		numRequests int
		wantAllowed int
	}{
		{name: "under limit", rpm: 10, numRequests: 5, wantAllowed: 5},
		{name: "at capacity", rpm: 5, numRequests: 10, wantAllowed: 5},
		{name: "unlimited", rpm: 0, numRequests: 100, wantAllowed: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := NewTokenBucketLimiter(tt.rpm)
			ctx := context.Background()

			allowed := 0
			for i := 0; i < tt.numRequests; i++ {
				if limiter.Allow(ctx) {
					allowed++
				}
			}

			if allowed != tt.wantAllowed {
				t.Errorf("Allow() allowed %d requests, want %d", allowed, tt.wantAllowed)
			}
		})
	}
}

func TestWait(t *testing.T) {
	t.Run("blocks until capacity available", func(t *testing.T) {
		limiter := NewTokenBucketLimiter(60) // 1 per second, burst 60

		for i := 0; i < 60; i++ {
			if err := limiter.Wait(context.Background()); err != nil {
				t.Fatalf("Wait() %d failed: %v", i, err)
			}
		}

		start := time.Now()
		if err := limiter.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() after burst failed: %v", err)
		}
		elapsed := time.Since(start)

		if elapsed < 500*time.Millisecond {
			t.Errorf("Wait() did not block long enough: %v", elapsed)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		limiter := NewTokenBucketLimiter(1)
		ctx, cancel := context.WithCancel(context.Background())

		_ = limiter.Allow(ctx)

		cancel()
		err := limiter.Wait(ctx)
		if !errors.Is(err, ErrContextCancelled) {
			t.Errorf("Wait() error = %v, want ErrContextCancelled", err)
		}
	})

	t.Run("respects context deadline", func(t *testing.T) {
		limiter := NewTokenBucketLimiter(1)
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		_ = limiter.Allow(ctx)

		if err := limiter.Wait(ctx); err == nil {
			t.Error("Wait() succeeded, want error")
		}
	})
}

func TestSetLimit(t *testing.T) {
	t.Run("updates limit dynamically", func(t *testing.T) {
		limiter := NewTokenBucketLimiter(10)
		limiter.SetLimit(50)

		if limiter.GetRPM() != 50 {
			t.Errorf("rpm = %d, want 50", limiter.GetRPM())
		}
	})

	t.Run("new limit takes effect immediately", func(t *testing.T) {
		limiter := NewTokenBucketLimiter(5)
		ctx := context.Background()

		for i := 0; i < 5; i++ {
			limiter.Allow(ctx)
		}

		if limiter.Allow(ctx) {
			t.Error("Allow() succeeded after exhausting limit")
		}

		limiter.SetLimit(100)

		if !limiter.Allow(ctx) {
			t.Error("Allow() failed after increasing limit")
		}
	})

	t.Run("thread safe", func(t *testing.T) {
		limiter := NewTokenBucketLimiter(100)
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				for j := 0; j < 10; j++ {
					limiter.SetLimit(50 + n)
					_ = limiter.Allow(ctx)
				}
			}(i)
		}
		wg.Wait()
	})
}

func TestConcurrency(t *testing.T) {
	t.Run("multiple goroutines calling Allow/Wait", func(t *testing.T) {
		limiter := NewTokenBucketLimiter(100)
		ctx := context.Background()

		var wg sync.WaitGroup
		successCount := int32(0)
		var mu sync.Mutex

		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 10; j++ {
					if limiter.Allow(ctx) {
						mu.Lock()
						successCount++
						mu.Unlock()
					}
					if j%3 == 0 {
						_ = limiter.Wait(ctx)
					}
				}
			}()
		}

		wg.Wait()

		if successCount == 0 {
			t.Error("No requests succeeded under concurrent load")
		}
	})
}
