package service

import (
	"context"
	"testing"
	"time"
)

func TestOTPRateLimiter_WindowAndMax(t *testing.T) {
	l := NewOTPRateLimiter(time.Minute, 2).(*otpRateLimiter)
	now := time.Now().UTC()
	l.now = func() time.Time { return now }
	ctx := context.Background()

	if !l.Allow(ctx, "k") || !l.Allow(ctx, "k") {
		t.Fatalf("expected first two requests allowed")
	}
	if l.Allow(ctx, "k") {
		t.Fatalf("expected third request denied")
	}
	if !l.Allow(ctx, "other") {
		t.Fatalf("expected other keys to be independent")
	}

	l.now = func() time.Time { return now.Add(61 * time.Second) }
	if !l.Allow(ctx, "k") {
		t.Fatalf("expected request allowed after window")
	}
}

func TestOTPRateLimiter_RejectsEmptyKey(t *testing.T) {
	l := NewOTPRateLimiter(time.Minute, 5)
	if l.Allow(context.Background(), "  ") {
		t.Fatalf("expected blank key to be rejected")
	}
}
