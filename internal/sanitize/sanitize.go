// Package sanitize filters untrusted rich-text before it is stored or mailed.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	relaxed = bluemonday.UGCPolicy()
	strict  = bluemonday.StrictPolicy()
)

// Clean keeps basic user-generated formatting and drops everything else.
// Stored rich-text fields always pass through here.
func Clean(input string) string {
	return strings.TrimSpace(relaxed.Sanitize(input))
}

// Strip removes all markup, yielding a plain-text rendition suitable for the
// text/plain part of an outbound email.
func Strip(input string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(input)))
}
