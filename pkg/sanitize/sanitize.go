// Package sanitize cleans untrusted form input for display and transport.
// Sanitization always succeeds and returns a string, possibly empty; anything
// that looks like markup or an injection vector is removed, never escaped.
package sanitize

import (
	"regexp"
	"strings"
)

// Field identifies which contact-form field a value belongs to, which
// determines its maximum length.
type Field int

const (
	FieldName Field = iota
	FieldEmail
	FieldPhone
	FieldCompany
	FieldMessage
)

// MaxLen returns the per-field truncation limit in runes.
func (f Field) MaxLen() int {
	switch f {
	case FieldName:
		return 100
	case FieldEmail:
		return 254
	case FieldPhone:
		return 20
	case FieldCompany:
		return 200
	case FieldMessage:
		return 2000
	default:
		return 1000
	}
}

var (
	// Script and style blocks go first so their contents never survive the
	// generic tag strip below.
	reScriptBlock = regexp.MustCompile(`(?is)<(?:script|style)\b[^>]*>.*?</(?:script|style)\s*>`)
	// Unclosed or half-stripped script/style fragments. The generic tag
	// pattern needs a closing '>', so a bare "<script" would otherwise leak.
	reScriptFragment = regexp.MustCompile(`(?i)</?(?:script|style)\b[^>]*>?`)
	reTag            = regexp.MustCompile(`<[^>]*>`)
	reScheme         = regexp.MustCompile(`(?i)(?:javascript|vbscript|data)\s*:`)
	reEventHandler   = regexp.MustCompile(`(?i)\bon\w+\s*=`)
	reWhitespace     = regexp.MustCompile(`\s+`)
)

// Clean sanitizes a raw field value: dangerous constructs are removed to a
// fixpoint, whitespace is collapsed, and the result is truncated to the
// field's limit. Clean is idempotent.
func Clean(input string, field Field) string {
	out := Strip(input)

	// Truncation, not rejection. Rune-safe so multibyte names survive.
	runes := []rune(out)
	if max := field.MaxLen(); len(runes) > max {
		out = strings.TrimSpace(string(runes[:max]))
	}
	return out
}

// Strip removes markup and injection vectors and normalizes whitespace,
// without applying any length limit.
func Strip(input string) string {
	out := input

	// Removal can expose new matches (nested tags, split scheme names), so
	// iterate until the string stops changing. Every pass shrinks the string,
	// so this terminates.
	for {
		prev := out
		out = reScriptBlock.ReplaceAllString(out, "")
		out = reScriptFragment.ReplaceAllString(out, "")
		out = reTag.ReplaceAllString(out, "")
		out = reScheme.ReplaceAllString(out, "")
		out = reEventHandler.ReplaceAllString(out, "")
		if out == prev {
			break
		}
	}

	out = reWhitespace.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}
