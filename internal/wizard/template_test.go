package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		vars map[string]any
		want string
	}{
		{
			name: "simple substitution",
			tmpl: "Analyze the website {{url}}.",
			vars: map[string]any{"url": "https://example.com"},
			want: "Analyze the website https://example.com.",
		},
		{
			name: "whitespace inside braces",
			tmpl: "Industry: {{ industry }}",
			vars: map[string]any{"industry": "e-commerce"},
			want: "Industry: e-commerce",
		},
		{
			name: "repeated placeholder",
			tmpl: "{{url}} and again {{url}}",
			vars: map[string]any{"url": "https://a.example"},
			want: "https://a.example and again https://a.example",
		},
		{
			name: "unresolved placeholder left verbatim",
			tmpl: "Budget: {{budget}}",
			vars: map[string]any{},
			want: "Budget: {{budget}}",
		},
		{
			name: "string slice joins with commas",
			tmpl: "Keywords: {{keywords}}",
			vars: map[string]any{"keywords": []string{"handmade", "crafts", "local"}},
			want: "Keywords: handmade, crafts, local",
		},
		{
			name: "any slice joins with commas",
			tmpl: "Keywords: {{keywords}}",
			vars: map[string]any{"keywords": []any{"handmade", "crafts"}},
			want: "Keywords: handmade, crafts",
		},
		{
			name: "whole float prints as integer",
			tmpl: "Budget: {{budget}} PLN",
			vars: map[string]any{"budget": float64(5000)},
			want: "Budget: 5000 PLN",
		},
		{
			name: "fractional float keeps fraction",
			tmpl: "Rate: {{rate}}",
			vars: map[string]any{"rate": 0.5},
			want: "Rate: 0.5",
		},
		{
			name: "nil renders empty",
			tmpl: "Notes: {{notes}}.",
			vars: map[string]any{"notes": nil},
			want: "Notes: .",
		},
		{
			name: "no placeholders",
			tmpl: "Return strict JSON.",
			vars: map[string]any{"url": "https://example.com"},
			want: "Return strict JSON.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderTemplate(tt.tmpl, tt.vars))
		})
	}
}
