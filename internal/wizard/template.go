package wizard

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// RenderTemplate substitutes every {{key}} placeholder in tmpl with the
// stringified value of vars[key]. Placeholders without a matching
// variable are left verbatim: an unresolved marker in a live prompt is
// a template bug to catch in tests, not a runtime fault worth failing
// an operation over.
func RenderTemplate(tmpl string, vars map[string]any) string {
	return placeholderRe.ReplaceAllStringFunc(tmpl, func(match string) string {
		key := placeholderRe.FindStringSubmatch(match)[1]
		v, ok := vars[key]
		if !ok {
			return match
		}
		return stringify(v)
	})
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []string:
		return strings.Join(val, ", ")
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = stringify(item)
		}
		return strings.Join(parts, ", ")
	case float64:
		// Whole numbers print without the trailing ".000000" noise.
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
