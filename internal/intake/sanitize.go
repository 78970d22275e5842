package intake

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	stripPolicy = bluemonday.StrictPolicy()
	whitespace  = regexp.MustCompile(`\s+`)
)

// SanitizeBody strips all markup, collapses runs of whitespace to a
// single space, and trims. Idempotent: sanitizing an already-sanitized
// string yields the same string.
func SanitizeBody(s string) string {
	out := stripPolicy.Sanitize(s)
	// The strict policy entity-escapes what it keeps; undo that so plain
	// text like "a < b" survives a second pass unchanged.
	out = html.UnescapeString(out)
	out = whitespace.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}
