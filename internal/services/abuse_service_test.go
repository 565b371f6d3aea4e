package services

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/securepulses/gatekeeper/internal/models"
	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDetector() *AbuseDetector {
	return NewAbuseDetector(AbuseConfig{
		MinFillTime: 3 * time.Second,
		MaxFillTime: 30 * time.Minute,
	}, discardLogger())
}

func humanSubmission() *models.ContactSubmission {
	return &models.ContactSubmission{
		ID:        "sub-1",
		Name:      "Jane Doe",
		Email:     "jane@co.com",
		Message:   "We would like a security review of our infrastructure.",
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64) Gecko/20100101 Firefox/128.0",
		Metadata: models.SubmissionMetadata{
			FormLoadTime: 1_000,
			SubmitTime:   11_000, // 10s fill, comfortably human
		},
	}
}

func TestInspect_CleanSubmission(t *testing.T) {
	verdict := testDetector().Inspect(humanSubmission())
	assert.True(t, verdict.Clean())
	assert.False(t, verdict.Suspicious())
}

func TestInspect_HoneypotShortCircuits(t *testing.T) {
	sub := humanSubmission()
	sub.Honeypot = "gotcha"
	sub.Message = "casino viagra https://spam.example" // would trip other signals

	verdict := testDetector().Inspect(sub)
	assert.Equal(t, []string{models.ReasonHoneypot}, verdict.Reasons)
}

func TestInspect_TooFast(t *testing.T) {
	sub := humanSubmission()
	sub.Metadata.FormLoadTime = 1_000
	sub.Metadata.SubmitTime = 1_500 // 500ms

	verdict := testDetector().Inspect(sub)
	assert.Contains(t, verdict.Reasons, models.ReasonTooFast)
}

func TestInspect_MissingTimestampsReadAsTooFast(t *testing.T) {
	sub := humanSubmission()
	sub.Metadata = models.SubmissionMetadata{}

	verdict := testDetector().Inspect(sub)
	assert.Contains(t, verdict.Reasons, models.ReasonTooFast)
}

func TestInspect_StaleSession(t *testing.T) {
	sub := humanSubmission()
	sub.Metadata.FormLoadTime = 0
	sub.Metadata.SubmitTime = (31 * time.Minute).Milliseconds()

	verdict := testDetector().Inspect(sub)
	assert.Contains(t, verdict.Reasons, models.ReasonStaleSession)
}

func TestInspect_SpamKeywords(t *testing.T) {
	sub := humanSubmission()
	sub.Message = "Exclusive CASINO bonus waiting for you, claim it today."

	verdict := testDetector().Inspect(sub)
	assert.Contains(t, verdict.Reasons, models.ReasonSpamKeywords)
}

func TestInspect_SuspiciousPatterns(t *testing.T) {
	cases := map[string]string{
		"url":          "Check out https://evil.example/offer before it expires.",
		"card number":  "My card 4111 1111 1111 1111 was charged twice last week.",
		"markup":       "Hello <script>alert(1)</script> is this thing working ok",
		"repeat run":   "Heeeeeeelp me with something important please thanks.",
		"shouting run": "URGENT REPLY NOW or lose your account access forever.",
	}
	for name, message := range cases {
		sub := humanSubmission()
		sub.Message = message
		verdict := testDetector().Inspect(sub)
		assert.Contains(t, verdict.Reasons, models.ReasonSuspiciousPattern, "case %s", name)
	}
}

func TestInspect_UppercaseRunOnlyAppliesToMessage(t *testing.T) {
	sub := humanSubmission()
	sub.Email = "JANEDOE@CO.COM"

	verdict := testDetector().Inspect(sub)
	assert.NotContains(t, verdict.Reasons, models.ReasonSuspiciousPattern)
}

func TestInspect_BotUserAgent(t *testing.T) {
	for _, ua := range []string{"curl/8.5.0", "python-requests/2.31", "Googlebot/2.1", "axios/1.6"} {
		sub := humanSubmission()
		sub.UserAgent = ua
		verdict := testDetector().Inspect(sub)
		assert.Contains(t, verdict.Reasons, models.ReasonBotUserAgent, "ua %q", ua)
	}
}

func TestInspect_BotUserAgentFromClientMetadata(t *testing.T) {
	sub := humanSubmission()
	sub.Metadata.UserAgent = "node-fetch/3.0"

	verdict := testDetector().Inspect(sub)
	assert.Contains(t, verdict.Reasons, models.ReasonBotUserAgent)
}

func TestInspect_LowLexicalDiversity(t *testing.T) {
	sub := humanSubmission()
	sub.Message = strings.TrimSpace(strings.Repeat("buy now ", 20))

	verdict := testDetector().Inspect(sub)
	assert.Contains(t, verdict.Reasons, models.ReasonLowDiversity)
}

func TestInspect_ThrowawayValues(t *testing.T) {
	sub := humanSubmission()
	sub.Name = "Test User"

	verdict := testDetector().Inspect(sub)
	assert.Contains(t, verdict.Reasons, models.ReasonThrowawayValue)

	sub = humanSubmission()
	sub.Company = "aaa"
	verdict = testDetector().Inspect(sub)
	assert.Contains(t, verdict.Reasons, models.ReasonThrowawayValue)
}

func TestInspect_CollectsAllReasons(t *testing.T) {
	sub := humanSubmission()
	sub.Metadata.SubmitTime = sub.Metadata.FormLoadTime + 100
	sub.UserAgent = "curl/8.5.0"
	sub.Message = "Visit https://spam.example for the best casino bonuses online."

	verdict := testDetector().Inspect(sub)
	assert.Contains(t, verdict.Reasons, models.ReasonTooFast)
	assert.Contains(t, verdict.Reasons, models.ReasonBotUserAgent)
	assert.Contains(t, verdict.Reasons, models.ReasonSpamKeywords)
	assert.Contains(t, verdict.Reasons, models.ReasonSuspiciousPattern)
}

func TestLongestRun(t *testing.T) {
	assert.Equal(t, 0, longestRun(""))
	assert.Equal(t, 1, longestRun("abc"))
	assert.Equal(t, 6, longestRun("xaaaaaay"))
	assert.Equal(t, 3, longestRun("ééé"))
}
