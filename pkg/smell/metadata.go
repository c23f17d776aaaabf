package smell

import (
	"strings"
	"sync/atomic"
)

// DefaultDocsBaseURL is the hosted documentation site.
const DefaultDocsBaseURL = "https://mlsmell.dev/docs/rules"

// docsBaseURL is read by analyzer workers while diagnostics are built.
var docsBaseURL atomic.Pointer[string]

// BuildDocURL returns the documentation page of a rule, keyed by lower-case ID.
func BuildDocURL(ruleID string) string {
	base := DefaultDocsBaseURL
	if p := docsBaseURL.Load(); p != nil {
		base = *p
	}
	return base + "/" + strings.ToLower(ruleID)
}

// SetDocsBaseURL points documentation links at a mirror of the rule docs.
func SetDocsBaseURL(url string) {
	url = strings.TrimSuffix(url, "/")
	docsBaseURL.Store(&url)
}

// ResetDocsBaseURL restores DefaultDocsBaseURL.
func ResetDocsBaseURL() {
	docsBaseURL.Store(nil)
}
