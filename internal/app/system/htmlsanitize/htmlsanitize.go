// Package htmlsanitize strips unsafe markup from user-supplied profile text.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict = bluemonday.StrictPolicy()
	rich   = bluemonday.UGCPolicy()
)

// Text removes every tag and returns plain text. Entities escaped by the
// policy are decoded again so "Tom & Jerry" round-trips unchanged.
func Text(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// Rich keeps basic formatting (paragraphs, emphasis, lists, safe links) and
// removes scripts, event handlers and javascript: URLs.
func Rich(s string) string {
	if s == "" {
		return ""
	}
	return rich.Sanitize(s)
}
