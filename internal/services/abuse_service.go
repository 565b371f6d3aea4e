package services

import (
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/securepulses/gatekeeper/internal/models"
)

// AbuseConfig holds the behavioral thresholds for the abuse detector.
type AbuseConfig struct {
	MinFillTime time.Duration // below this the form was filled faster than a human could
	MaxFillTime time.Duration // above this the session is stale, likely a replayed capture
}

// AbuseDetector evaluates behavioral and content heuristics over a validated
// submission. Every signal is independent; all of them are evaluated so the
// incident log carries the full picture even though one is enough to block.
type AbuseDetector struct {
	config AbuseConfig
	logger *slog.Logger
}

// NewAbuseDetector creates a new AbuseDetector
func NewAbuseDetector(config AbuseConfig, logger *slog.Logger) *AbuseDetector {
	return &AbuseDetector{
		config: config,
		logger: logger,
	}
}

// spamKeywords is matched case-insensitively as substrings of the combined
// field text. Kept lowercase.
var spamKeywords = []string{
	"casino", "poker", "viagra", "cialis",
	"bitcoin", "crypto", "investment", "trading", "profit",
	"loan offer", "quick money",
	"ddos", "malware", "backlink",
}

// botUserAgents flags automation clients. Matched case-insensitively.
var botUserAgents = []string{
	"bot", "crawler", "spider",
	"curl", "wget", "python", "php", "java", "node", "axios",
}

// throwawayValues are placeholder strings bots and testers type into name and
// company fields.
var throwawayValues = []string{"test", "fake", "spam", "123", "aaa", "xxx"}

var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)https?://`),
	regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`), // card-like digit groups
	regexp.MustCompile(`(?i)<script|javascript:|data:text/html`),
}

// Shouting runs are only meaningful in prose, not in email addresses.
var reUppercaseRun = regexp.MustCompile(`[A-Z]{6,}`)

// Inspect returns the verdict for one submission. The honeypot is checked
// before everything else and short-circuits: any value in it means no human
// filled the form, so the other signals add nothing.
func (d *AbuseDetector) Inspect(sub *models.ContactSubmission) models.Verdict {
	if sub.Honeypot != "" {
		d.logger.Warn("honeypot tripped",
			slog.String("submission_id", sub.ID),
			slog.String("ip_address", sub.IPAddress))
		return models.Verdict{Reasons: []string{models.ReasonHoneypot}}
	}

	var reasons []string

	fill := sub.Metadata.FillDuration()
	if fill < d.config.MinFillTime {
		reasons = append(reasons, models.ReasonTooFast)
	} else if fill > d.config.MaxFillTime {
		reasons = append(reasons, models.ReasonStaleSession)
	}

	combined := strings.ToLower(sub.Name + " " + sub.Email + " " + sub.Company + " " + sub.Message)
	for _, keyword := range spamKeywords {
		if strings.Contains(combined, keyword) {
			reasons = append(reasons, models.ReasonSpamKeywords)
			break
		}
	}

	if hasSuspiciousPattern(sub.Name+" "+sub.Email+" "+sub.Company+" "+sub.Message) ||
		reUppercaseRun.MatchString(sub.Message) {
		reasons = append(reasons, models.ReasonSuspiciousPattern)
	}

	if isBotUserAgent(sub.UserAgent) || isBotUserAgent(sub.Metadata.UserAgent) {
		reasons = append(reasons, models.ReasonBotUserAgent)
	}

	if lowLexicalDiversity(sub.Message) {
		reasons = append(reasons, models.ReasonLowDiversity)
	}

	if isThrowawayValue(sub.Name) || isThrowawayValue(sub.Company) {
		reasons = append(reasons, models.ReasonThrowawayValue)
	}

	if len(reasons) > 0 {
		d.logger.Warn("submission flagged",
			slog.String("submission_id", sub.ID),
			slog.String("ip_address", sub.IPAddress),
			slog.Any("reasons", reasons))
	}

	return models.Verdict{Reasons: reasons}
}

func hasSuspiciousPattern(text string) bool {
	for _, pattern := range suspiciousPatterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	// Runs of six or more identical characters. RE2 has no backreferences,
	// so this one is counted by hand.
	return longestRun(text) >= 6
}

func longestRun(text string) int {
	var prev rune
	longest, run := 0, 0
	for _, r := range text {
		if r == prev {
			run++
		} else {
			run = 1
			prev = r
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

func isBotUserAgent(ua string) bool {
	if ua == "" {
		return false
	}
	lowered := strings.ToLower(ua)
	for _, marker := range botUserAgents {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

// lowLexicalDiversity flags messages where the same few words repeat: word
// count above 10 with under 30% unique words reads like keyword-stuffed spam.
func lowLexicalDiversity(message string) bool {
	words := strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) <= 10 {
		return false
	}

	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}
	ratio := float64(len(unique)) / float64(len(words))
	return ratio < 0.3
}

func isThrowawayValue(value string) bool {
	if value == "" {
		return false
	}
	lowered := strings.ToLower(value)
	for _, marker := range throwawayValues {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
