package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/securepulses/gatekeeper/internal/models"
	"github.com/securepulses/gatekeeper/internal/validation"
	pkglogger "github.com/securepulses/gatekeeper/pkg/logger"
	"github.com/securepulses/gatekeeper/pkg/sanitize"
)

// ContactService runs the gatekeeping pipeline for one submission attempt:
// honeypot guard, sanitize, validate, abuse check, rate limit, dispatch.
// The flow is strictly linear; no state survives a submission except the
// limiter's counters.
type ContactService struct {
	detector  *AbuseDetector
	limiter   *RateLimitService
	sender    NotificationSender
	incidents *pkglogger.IncidentLogger
	logger    *slog.Logger

	sendConfirmation bool
	dispatchTimeout  time.Duration
}

// NewContactService creates a new ContactService
func NewContactService(
	detector *AbuseDetector,
	limiter *RateLimitService,
	sender NotificationSender,
	incidents *pkglogger.IncidentLogger,
	logger *slog.Logger,
	sendConfirmation bool,
	dispatchTimeout time.Duration,
) *ContactService {
	return &ContactService{
		detector:         detector,
		limiter:          limiter,
		sender:           sender,
		incidents:        incidents,
		logger:           logger,
		sendConfirmation: sendConfirmation,
		dispatchTimeout:  dispatchTimeout,
	}
}

// Process consumes one submission attempt. On success the notification sender
// has been invoked; every failure is one of the sentinel errors in models so
// the handler can map it without seeing internals.
func (s *ContactService) Process(ctx context.Context, sub *models.ContactSubmission) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.ReceivedAt.IsZero() {
		sub.ReceivedAt = time.Now()
	}

	// The honeypot supersedes every other check: any value in it means the
	// form was filled by automation, so nothing downstream may run.
	if sub.Honeypot != "" {
		s.incidents.Log(pkglogger.Incident{
			EventType:    "abuse_rejection",
			SubmissionID: sub.ID,
			IPAddress:    sub.IPAddress,
			UserAgent:    sub.UserAgent,
			Email:        sub.Email,
			Reasons:      []string{models.ReasonHoneypot},
			Fingerprint:  sub.Metadata.Fingerprint,
		})
		return models.ErrSuspiciousActivity
	}

	s.sanitizeFields(sub)

	if fieldErr := validation.ValidateSubmission(sub); fieldErr != nil {
		return fieldErr
	}

	if verdict := s.detector.Inspect(sub); verdict.Suspicious() {
		s.incidents.Log(pkglogger.Incident{
			EventType:    "abuse_rejection",
			SubmissionID: sub.ID,
			IPAddress:    sub.IPAddress,
			UserAgent:    sub.UserAgent,
			Email:        sub.Email,
			Reasons:      verdict.Reasons,
			Fingerprint:  sub.Metadata.Fingerprint,
		})
		return models.ErrSuspiciousActivity
	}

	result := s.limiter.Check(ClientKey(sub.IPAddress, sub.UserAgent))
	if !result.Allowed {
		s.incidents.Log(pkglogger.Incident{
			EventType:    "rate_limit",
			SubmissionID: sub.ID,
			IPAddress:    sub.IPAddress,
			UserAgent:    sub.UserAgent,
			Email:        sub.Email,
			Fingerprint:  sub.Metadata.Fingerprint,
			Metadata: map[string]string{
				"retry_after": result.RetryAfter.String(),
			},
		})
		return &models.RateLimitError{RetryAfter: result.RetryAfter}
	}

	return s.dispatch(ctx, sub)
}

func (s *ContactService) dispatch(ctx context.Context, sub *models.ContactSubmission) error {
	// Defense in depth: the sender only ever sees sanitizer output, even if a
	// future code path reaches here some other way.
	s.sanitizeFields(sub)

	ctx, cancel := context.WithTimeout(ctx, s.dispatchTimeout)
	defer cancel()

	if err := s.sender.SendAdminNotification(ctx, sub); err != nil {
		s.incidents.Log(pkglogger.Incident{
			EventType:    "dispatch_failure",
			SubmissionID: sub.ID,
			IPAddress:    sub.IPAddress,
			Email:        sub.Email,
		})
		return fmt.Errorf("%w: %v", models.ErrDispatchFailed, err)
	}

	// The admin notification is the one that matters; a failed courtesy
	// confirmation is logged but does not fail the submission.
	if s.sendConfirmation {
		if err := s.sender.SendConfirmation(ctx, sub); err != nil {
			s.logger.Error("confirmation email failed",
				slog.String("submission_id", sub.ID),
				slog.Any("error", err))
		}
	}

	s.logger.Info("submission dispatched",
		slog.String("submission_id", sub.ID),
		slog.String("email", pkglogger.SanitizedEmail(sub.Email)),
		slog.String("fill_duration", sub.Metadata.FillDuration().String()),
		slog.String("message_len", strconv.Itoa(len(sub.Message))))

	return nil
}

func (s *ContactService) sanitizeFields(sub *models.ContactSubmission) {
	sub.Name = sanitize.Clean(sub.Name, sanitize.FieldName)
	sub.Email = sanitize.Clean(sub.Email, sanitize.FieldEmail)
	sub.Phone = sanitize.Clean(sub.Phone, sanitize.FieldPhone)
	sub.Company = sanitize.Clean(sub.Company, sanitize.FieldCompany)
	sub.Message = sanitize.Clean(sub.Message, sanitize.FieldMessage)
}
