package services

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/securepulses/gatekeeper/internal/models"
)

// RateLimitConfig holds configuration for rate limiting behavior
type RateLimitConfig struct {
	MaxAttempts   int           // attempts allowed per window
	Window        time.Duration // sliding window length
	MinAttemptGap time.Duration // minimum spacing between consecutive attempts
}

// RateLimitService is a sliding-window limiter over in-memory per-key attempt
// timestamps. Counters live only in memory: entries expire implicitly and the
// background sweeper reclaims stale keys.
//
// Check filters, decides and records under one lock, so two concurrent
// submissions can never both observe count = max-1 and proceed.
type RateLimitService struct {
	config RateLimitConfig
	logger *slog.Logger

	mu       sync.Mutex
	attempts map[string][]time.Time

	now func() time.Time // overridable in tests
}

// NewRateLimitService creates a new RateLimitService
func NewRateLimitService(config RateLimitConfig, logger *slog.Logger) *RateLimitService {
	return &RateLimitService{
		config:   config,
		logger:   logger,
		attempts: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// Check applies the sliding-window and minimum-gap rules for the given key.
// An allowed check records the attempt; a denied one does not.
func (s *RateLimitService) Check(key string) models.RateLimitResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-s.config.Window)

	recent := s.attempts[key][:0]
	for _, t := range s.attempts[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) > 0 {
		if gap := now.Sub(recent[len(recent)-1]); gap < s.config.MinAttemptGap {
			s.attempts[key] = recent
			s.logger.Warn("attempt below minimum gap",
				slog.String("key", key),
				slog.Duration("gap", gap))
			return models.RateLimitResult{RetryAfter: s.config.MinAttemptGap - gap}
		}
	}

	if len(recent) >= s.config.MaxAttempts {
		s.attempts[key] = recent
		s.logger.Warn("rate limit exceeded",
			slog.String("key", key),
			slog.Int("attempts_in_window", len(recent)))
		// Oldest attempt leaving the window frees a slot.
		return models.RateLimitResult{RetryAfter: recent[0].Add(s.config.Window).Sub(now)}
	}

	recent = append(recent, now)
	s.attempts[key] = recent

	return models.RateLimitResult{
		Allowed:   true,
		Remaining: s.config.MaxAttempts - len(recent),
	}
}

// Sweep drops keys whose attempts have all aged out of the window. Returns
// the number of keys removed.
func (s *RateLimitService) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.config.Window)
	removed := 0
	for key, timestamps := range s.attempts {
		if len(timestamps) == 0 || !timestamps[len(timestamps)-1].After(cutoff) {
			delete(s.attempts, key)
			removed++
		}
	}
	return removed
}

// TrackedKeys reports how many keys currently hold state.
func (s *RateLimitService) TrackedKeys() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attempts)
}

// ClientKey derives the identifying key for a submission from the
// server-observed IP and User-Agent. The client-supplied fingerprint is
// deliberately excluded: it is unreliable and attacker-chosen, so it is only
// ever logged as a hint.
func ClientKey(ipAddress, userAgent string) string {
	hash := sha256.Sum256([]byte(ipAddress + ":" + userAgent))
	return fmt.Sprintf("%x", hash)[:32]
}
