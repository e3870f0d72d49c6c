package flows

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dadmor/campaignforge/internal/wizard"
)

var urlPattern = regexp.MustCompile(`^https?://.+\..+`)

// rule checks one field of a step's merged values.
type rule func(data map[string]any) error

// validateRules composes field rules into a step validation function.
func validateRules(rules ...rule) func(data map[string]any) error {
	return func(data map[string]any) error {
		for _, r := range rules {
			if err := r(data); err != nil {
				return err
			}
		}
		return nil
	}
}

// lengthRule enforces string length bounds; max 0 means unbounded.
func lengthRule(field string, min, max int, msg string) rule {
	return func(data map[string]any) error {
		s := strings.TrimSpace(asString(data[field]))
		if len(s) < min || (max > 0 && len(s) > max) {
			return &wizard.FieldError{Field: field, Message: msg}
		}
		return nil
	}
}

// rangeRule enforces numeric bounds.
func rangeRule(field string, min, max float64, msg string) rule {
	return func(data map[string]any) error {
		n, ok := asNumber(data[field])
		if !ok || n < min || n > max {
			return &wizard.FieldError{Field: field, Message: msg}
		}
		return nil
	}
}

// urlRule enforces an http(s) URL with a dot in the host.
func urlRule(field string) rule {
	return func(data map[string]any) error {
		if !urlPattern.MatchString(strings.TrimSpace(asString(data[field]))) {
			return &wizard.FieldError{
				Field:   field,
				Message: "enter a valid URL (e.g. https://example.com)",
			}
		}
		return nil
	}
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}

// present mirrors the truthiness gate the operations validate with:
// a key must exist and be non-empty.
func present(result wizard.Result, key string) bool {
	v, ok := result[key]
	if !ok || v == nil {
		return false
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val) != ""
	case []any:
		return len(val) > 0
	case []string:
		return len(val) > 0
	case float64:
		return val != 0
	default:
		return true
	}
}

// joinKeywords flattens the keywords field for prompt interpolation.
// The store holds whatever shape the model returned ([]any after JSON
// decoding, []string from local edits, or a plain string).
func joinKeywords(v any) string {
	switch val := v.(type) {
	case []string:
		return strings.Join(val, ", ")
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = asString(item)
		}
		return strings.Join(parts, ", ")
	default:
		return asString(v)
	}
}
