// Package sanitize strips markup from user-supplied text before it reaches
// the store. Every free-text field (names, recipients, message bodies) goes
// through Clean exactly once, on the write path.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// The strict policy removes every tag and attribute, keeping text content.
var policy = bluemonday.StrictPolicy()

// Clean removes markup and surrounding whitespace. The policy entity-escapes
// its output for HTML contexts; these are plain-text fields, so the escaping
// is undone to keep markup-free input byte-identical. Deterministic and
// side-effect free.
func Clean(input string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(input)))
}
