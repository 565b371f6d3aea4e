// Package validation enforces per-field syntactic rules on sanitized
// submissions. Fields are checked in a fixed order (name, email, phone,
// company, message) and only the first violation is reported, so the error a
// user sees is deterministic.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/securepulses/gatekeeper/internal/models"
)

// submissionRules mirrors the contact submission with validation tags.
// Struct field order is the validation order.
type submissionRules struct {
	Name    string `validate:"required,min=2,max=100,person_name"`
	Email   string `validate:"required,email,max=254"`
	Phone   string `validate:"omitempty,contact_phone"`
	Company string `validate:"omitempty,max=200,company_name"`
	Message string `validate:"required,min=10,max=2000"`
}

// Global validator instance (reused across all submissions)
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Panics on a non-function argument only, safe at init.
	_ = v.RegisterValidation("person_name", isPersonName)
	_ = v.RegisterValidation("company_name", isCompanyName)
	_ = v.RegisterValidation("contact_phone", isContactPhone)

	return v
}

// ValidateSubmission returns the first field violation, or nil if the
// submission is syntactically valid. Run on sanitized values only.
func ValidateSubmission(sub *models.ContactSubmission) *models.FieldError {
	rules := submissionRules{
		Name:    sub.Name,
		Email:   sub.Email,
		Phone:   sub.Phone,
		Company: sub.Company,
		Message: sub.Message,
	}

	err := validate.Struct(rules)
	if err == nil {
		return nil
	}

	ve, ok := err.(validator.ValidationErrors)
	if !ok || len(ve) == 0 {
		return &models.FieldError{
			Field:   "form",
			Reason:  models.ReasonBadFormat,
			Message: "submission could not be validated",
		}
	}

	first := ve[0]
	field := strings.ToLower(first.StructField())
	return &models.FieldError{
		Field:   field,
		Reason:  reasonForTag(first.Tag()),
		Message: messageFor(field, first),
	}
}

func reasonForTag(tag string) string {
	switch tag {
	case "required":
		return models.ReasonRequired
	case "min":
		return models.ReasonTooShort
	case "max":
		return models.ReasonTooLong
	case "email", "contact_phone":
		return models.ReasonBadFormat
	case "person_name", "company_name":
		return models.ReasonInvalidChars
	default:
		return models.ReasonBadFormat
	}
}

// messageFor converts a validator FieldError to a user-friendly message
func messageFor(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", field, fe.Param())
	case "email":
		return "must be a valid email address"
	case "contact_phone":
		return "must be a valid phone number"
	case "person_name", "company_name":
		return fmt.Sprintf("%s contains invalid characters", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// isPersonName allows letters in any script, spaces, apostrophes and hyphens.
func isPersonName(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if unicode.IsLetter(r) {
			continue
		}
		switch r {
		case ' ', '\'', '’', '-':
			continue
		}
		return false
	}
	return true
}

// isCompanyName allows letters, digits, spaces and the punctuation that shows
// up in real company names.
func isCompanyName(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		if strings.ContainsRune("&.,- ", r) {
			continue
		}
		return false
	}
	return true
}

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9\s\-()]{6,15}$`)

func isContactPhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(fl.Field().String())
}
