package models

import "time"

// ContactSubmission is one sanitized contact-form submission moving through
// the gatekeeping pipeline. It is consumed exactly once and never persisted.
type ContactSubmission struct {
	ID       string
	Name     string
	Email    string
	Phone    string
	Company  string
	Message  string
	Honeypot string

	Metadata SubmissionMetadata

	// Server-observed client identity, never taken from the request body
	IPAddress string
	UserAgent string

	ReceivedAt time.Time
}

// SubmissionMetadata carries the passive signals captured by the form client.
// All of it is attacker-controlled and only feeds heuristics, never trust.
type SubmissionMetadata struct {
	SubmitTime       int64  // unix milliseconds at submit click
	FormLoadTime     int64  // unix milliseconds when the form became interactive
	UserAgent        string // as reported by the client, may differ from the header
	ScreenResolution string
	Timezone         string
	Fingerprint      string // weak hint only, many browsers block canvas fingerprinting
}

// FillDuration is the time the client claims the user spent on the form.
func (m SubmissionMetadata) FillDuration() time.Duration {
	return time.Duration(m.SubmitTime-m.FormLoadTime) * time.Millisecond
}

// Abuse signal reason codes.
const (
	ReasonHoneypot          = "honeypot"
	ReasonTooFast           = "too_fast"
	ReasonStaleSession      = "stale_session"
	ReasonSpamKeywords      = "spam_keywords"
	ReasonSuspiciousPattern = "suspicious_pattern"
	ReasonBotUserAgent      = "bot_user_agent"
	ReasonLowDiversity      = "low_diversity"
	ReasonThrowawayValue    = "throwaway_value"
)

// Verdict is the outcome of the abuse detector.
type Verdict struct {
	Reasons []string
}

// Clean reports whether no signal fired.
func (v Verdict) Clean() bool {
	return len(v.Reasons) == 0
}

// Suspicious reports whether the submission should be blocked. Policy is
// strict: a single signal is enough.
func (v Verdict) Suspicious() bool {
	return len(v.Reasons) >= 1
}

// RateLimitResult is the outcome of a rate-limit check for one key.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}
