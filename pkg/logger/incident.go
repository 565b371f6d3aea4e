package logger

import (
	"context"
	"log/slog"
	"time"
)

// Incident represents a rejected or failed submission attempt worth an audit
// trail entry.
type Incident struct {
	EventType    string // "abuse_rejection", "rate_limit", "dispatch_failure", ...
	SubmissionID string
	IPAddress    string
	UserAgent    string
	Email        string // masked before logging
	Reasons      []string
	Fingerprint  string // client-supplied hint, untrusted
	Metadata     map[string]string
}

// IncidentLogger records security-relevant pipeline events. It replaces the
// browser-side incident reporting the form used to do: server-side, structured
// and with personal data masked.
type IncidentLogger struct {
	logger *slog.Logger
}

// NewIncidentLogger creates a new incident logger
func NewIncidentLogger(logger *slog.Logger) *IncidentLogger {
	return &IncidentLogger{
		logger: logger,
	}
}

// Log writes one incident at warn level.
func (il *IncidentLogger) Log(incident Incident) {
	attrs := []slog.Attr{
		slog.String("audit_type", "contact_gate"),
		slog.String("event_type", incident.EventType),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if incident.SubmissionID != "" {
		attrs = append(attrs, slog.String("submission_id", incident.SubmissionID))
	}
	if incident.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", incident.IPAddress))
	}
	if incident.UserAgent != "" {
		attrs = append(attrs, slog.String("user_agent", incident.UserAgent))
	}
	if incident.Email != "" {
		attrs = append(attrs, slog.String("email", SanitizedEmail(incident.Email)))
	}
	if len(incident.Reasons) > 0 {
		attrs = append(attrs, slog.Any("reasons", incident.Reasons))
	}
	if incident.Fingerprint != "" {
		attrs = append(attrs, slog.String("client_fingerprint", incident.Fingerprint))
	}
	for key, val := range incident.Metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	il.logger.LogAttrs(context.Background(), slog.LevelWarn, "incident", attrs...)
}
