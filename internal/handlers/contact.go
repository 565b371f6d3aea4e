package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/securepulses/gatekeeper/internal/models"
	pkghttp "github.com/securepulses/gatekeeper/pkg/http"
)

// ContactPipeline defines the interface for the submission gatekeeping logic
type ContactPipeline interface {
	Process(ctx context.Context, sub *models.ContactSubmission) error
}

// ContactHandler handles contact form submissions
type ContactHandler struct {
	pipeline     ContactPipeline
	ipConfig     *pkghttp.IPConfig
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(pipeline ContactPipeline, ipConfig *pkghttp.IPConfig, maxBodyBytes int64, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		pipeline:     pipeline,
		ipConfig:     ipConfig,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// ContactRequest represents the request body for a contact submission
type ContactRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Phone    string          `json:"phone"`
	Company  string          `json:"company"`
	Message  string          `json:"message"`
	Honeypot string          `json:"honeypot"`
	Metadata ContactMetadata `json:"metadata"`
}

// ContactMetadata carries the passive client signals sent by the form.
type ContactMetadata struct {
	SubmitTime       int64  `json:"submitTime"`
	FormLoadTime     int64  `json:"formLoadTime"`
	UserAgent        string `json:"userAgent"`
	ScreenResolution string `json:"screenResolution"`
	Timezone         string `json:"timezone"`
	Fingerprint      string `json:"fingerprint"`
}

// ContactResponse represents a successful submission response
type ContactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Submit handles POST /api/contact. All pipeline failures map onto the small
// set of user-facing categories; rejections are deliberately vague so a bot
// can't learn which filter it tripped.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			pkghttp.WritePayloadTooLarge(w, "Request body too large")
			return
		}
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	sub := &models.ContactSubmission{
		Name:     req.Name,
		Email:    strings.TrimSpace(req.Email),
		Phone:    req.Phone,
		Company:  req.Company,
		Message:  req.Message,
		Honeypot: req.Honeypot,
		Metadata: models.SubmissionMetadata{
			SubmitTime:       req.Metadata.SubmitTime,
			FormLoadTime:     req.Metadata.FormLoadTime,
			UserAgent:        req.Metadata.UserAgent,
			ScreenResolution: req.Metadata.ScreenResolution,
			Timezone:         req.Metadata.Timezone,
			Fingerprint:      req.Metadata.Fingerprint,
		},
		IPAddress:  pkghttp.ExtractClientIP(r, h.ipConfig),
		UserAgent:  r.Header.Get("User-Agent"),
		ReceivedAt: time.Now(),
	}

	if err := h.pipeline.Process(r.Context(), sub); err != nil {
		var fieldErr *models.FieldError
		var rateErr *models.RateLimitError

		switch {
		case errors.As(err, &fieldErr):
			pkghttp.WriteError(w, http.StatusBadRequest, "validation_failed", fieldErr.Message)
		case errors.Is(err, models.ErrSuspiciousActivity):
			// Same status as a validation failure, different code; the body
			// never says which signal fired.
			pkghttp.WriteError(w, http.StatusBadRequest, "rejected",
				"Your request could not be processed. Please try again later.")
		case errors.As(err, &rateErr):
			pkghttp.WriteTooManyRequests(w,
				"Too many requests. Please wait before sending again.", rateErr.RetryAfter)
		default:
			// Dispatch and configuration failures: full detail stays in the
			// server log, the client gets the same generic message.
			h.logger.Error("contact submission failed",
				slog.String("submission_id", sub.ID),
				slog.Any("error", err))
			pkghttp.WriteInternalError(w, "Something went wrong. Please try again later.")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ContactResponse{
		Success: true,
		Message: "Message sent successfully",
	})
}
