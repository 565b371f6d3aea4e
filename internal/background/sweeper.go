package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/securepulses/gatekeeper/internal/services"
)

// LimiterSweeper periodically drops rate-limiter keys whose attempts have all
// aged out of the window, so the in-memory map can't grow without bound.
type LimiterSweeper struct {
	limiter  *services.RateLimitService
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewLimiterSweeper creates a new limiter sweeper
func NewLimiterSweeper(limiter *services.RateLimitService, logger *slog.Logger, interval time.Duration) *LimiterSweeper {
	return &LimiterSweeper{
		limiter:  limiter,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep task
func (ls *LimiterSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(ls.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ls.runSweep()
		case <-ls.stopCh:
			ls.logger.Info("limiter sweeper stopped")
			return
		case <-ctx.Done():
			ls.logger.Info("limiter sweeper context cancelled")
			return
		}
	}
}

func (ls *LimiterSweeper) runSweep() {
	removed := ls.limiter.Sweep()
	if removed > 0 {
		ls.logger.Info("stale rate-limit keys removed", slog.Int("keys_removed", removed))
	}
}

// Stop signals the sweeper to stop
func (ls *LimiterSweeper) Stop() {
	close(ls.stopCh)
}
