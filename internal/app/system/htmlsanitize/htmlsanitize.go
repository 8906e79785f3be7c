// Package htmlsanitize cleans user-authored HTML (mail template and custom
// mail bodies) before it is stored.
package htmlsanitize

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	once   sync.Once
	policy *bluemonday.Policy
)

func mailPolicy() *bluemonday.Policy {
	once.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowElements("table", "thead", "tbody", "tr", "td", "th", "center")
		p.AllowAttrs("align", "width", "cellpadding", "cellspacing", "border").OnElements("table", "td", "th")
		p.AllowStandardURLs()
		policy = p
	})
	return policy
}

// Sanitize removes scripts, event handlers and unsafe URLs from s.
// Template placeholders such as {{company_name}} pass through untouched.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return mailPolicy().Sanitize(s)
}
