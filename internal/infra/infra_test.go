package infra

import (
	"context"
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache(time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}

	c.Set("k", "v1")
	got, ok := c.Get("k")
	if !ok || got.(string) != "v1" {
		t.Errorf("Get: got %v, %v", got, ok)
	}

	// Overwrite replaces the value.
	c.Set("k", "v2")
	got, _ = c.Get("k")
	if got.(string) != "v2" {
		t.Errorf("after overwrite: got %v", got)
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(time.Minute)
	c.SetWithTTL("k", 42, 10*time.Millisecond)

	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected hit before expiry")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after expiry")
	}
}

func TestCacheInvalidate(t *testing.T) {
	c := NewCache(time.Minute)
	c.Set("k", 1)
	c.Invalidate("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after invalidation")
	}
}

func TestRateLimiterAllowsUpToCapacity(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		start := time.Now()
		if err := rl.Wait(ctx); err != nil {
			t.Fatalf("Wait() error: %v", err)
		}
		if time.Since(start) > 50*time.Millisecond {
			t.Errorf("request %d should not block", i)
		}
	}
}

func TestRateLimiterBlocksWhenExhausted(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	if err := rl.Wait(ctx); err != nil {
		t.Fatalf("first Wait() error: %v", err)
	}

	err := rl.Wait(ctx)
	if err == nil {
		t.Fatal("expected context deadline while bucket is empty")
	}
	if err != context.DeadlineExceeded {
		t.Errorf("error: got %v, want context.DeadlineExceeded", err)
	}
}

func TestRateLimiterRefills(t *testing.T) {
	rl := NewRateLimiter(2, 50*time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := rl.Wait(ctx); err != nil {
			t.Fatal(err)
		}
	}

	// After a full window the bucket refills to capacity.
	time.Sleep(60 * time.Millisecond)
	done := make(chan error, 1)
	go func() { done <- rl.Wait(ctx) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Wait() after refill: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait() did not return after refill window")
	}
}
