package validation

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText strips all markup from user-entered free text and trims it.
// Entities produced by the policy are decoded again so plain text round-trips.
func SanitizeText(input string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(input)))
}

// SanitizeList sanitises every item and drops the ones left empty.
func SanitizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := SanitizeText(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
