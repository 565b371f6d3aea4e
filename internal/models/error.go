package models

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure conditions
var (
	ErrBadRequest         = errors.New("bad request")
	ErrSuspiciousActivity = errors.New("suspicious activity detected")
	ErrRateLimitExceeded  = errors.New("rate limit exceeded")
	ErrDispatchFailed     = errors.New("notification dispatch failed")
	ErrConfiguration      = errors.New("service misconfigured")
)

// Field validation reason codes.
const (
	ReasonRequired     = "required"
	ReasonTooShort     = "too_short"
	ReasonTooLong      = "too_long"
	ReasonBadFormat    = "bad_format"
	ReasonInvalidChars = "invalid_chars"
)

// FieldError reports the first field-level validation violation. It is
// user-correctable and safe to surface verbatim.
type FieldError struct {
	Field   string
	Reason  string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Is(target error) bool {
	return target == ErrBadRequest
}

// RateLimitError carries the retry hint for a denied attempt.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimitExceeded
}
