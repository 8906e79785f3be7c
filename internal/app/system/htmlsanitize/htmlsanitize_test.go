package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/placementhub/internal/app/system/htmlsanitize"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        string
		mustNotHave string
	}{
		{name: "empty", input: "", want: ""},
		{name: "plain text", input: "Hello, World!", want: "Hello, World!"},
		{name: "safe markup", input: "<p><strong>Bold</strong> and <em>italic</em></p>", want: "<p><strong>Bold</strong> and <em>italic</em></p>"},
		{name: "placeholder", input: "<p>Dear {{contact_name}},</p>", want: "<p>Dear {{contact_name}},</p>"},
		{name: "script removed", input: "<p>Hello</p><script>alert('xss')</script>", want: "<p>Hello</p>"},
		{name: "onclick removed", input: `<p onclick="alert(1)">Hi</p>`, mustNotHave: "onclick"},
		{name: "javascript href removed", input: `<a href="javascript:alert(1)">x</a>`, mustNotHave: "javascript:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := htmlsanitize.Sanitize(tt.input)
			if tt.mustNotHave != "" {
				if strings.Contains(got, tt.mustNotHave) {
					t.Errorf("Sanitize(%q) = %q, still contains %q", tt.input, got, tt.mustNotHave)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitize_KeepsSafeLinks(t *testing.T) {
	got := htmlsanitize.Sanitize(`<a href="https://example.com">Link</a>`)
	if !strings.Contains(got, `href="https://example.com"`) {
		t.Errorf("expected safe link kept, got %q", got)
	}
}
