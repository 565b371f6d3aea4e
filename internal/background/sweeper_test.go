package background

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/securepulses/gatekeeper/internal/services"
)

func TestLimiterSweeper_RemovesStaleKeys(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	limiter := services.NewRateLimitService(services.RateLimitConfig{
		MaxAttempts:   3,
		Window:        time.Millisecond,
		MinAttemptGap: 0,
	}, logger)

	limiter.Check("key-a")
	if limiter.TrackedKeys() != 1 {
		t.Fatal("expected one tracked key")
	}

	sweeper := NewLimiterSweeper(limiter, logger, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		sweeper.Start(ctx)
		close(done)
	}()

	deadline := time.After(time.Second)
	for limiter.TrackedKeys() != 0 {
		select {
		case <-deadline:
			t.Fatal("sweeper never removed the stale key")
		case <-time.After(5 * time.Millisecond):
		}
	}

	sweeper.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestLimiterSweeper_StopsOnContextCancel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	limiter := services.NewRateLimitService(services.RateLimitConfig{
		MaxAttempts: 3,
		Window:      time.Minute,
	}, logger)

	sweeper := NewLimiterSweeper(limiter, logger, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		sweeper.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on context cancellation")
	}
}
