// internal/app/system/sanitize/sanitize.go

// Package sanitize strips markup from free-text input fields (names,
// comments, feedback) before they are stored and echoed back as JSON.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Text removes all HTML from s and trims surrounding whitespace.
func Text(s string) string {
	return strings.TrimSpace(policy.Sanitize(s))
}
