package listing

import (
	"html"
	"regexp"
	"strings"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// cleanText turns an upstream field into plain text: entities unescaped,
// tags stripped, whitespace collapsed. Upstream titles sometimes arrive as
// "Senior&nbsp;Engineer" or "<b>Backend</b> Developer".
func cleanText(s string) string {
	if s == "" {
		return ""
	}
	unescaped := html.UnescapeString(s)
	plain := htmlTagRegex.ReplaceAllString(unescaped, "")
	return strings.Join(strings.Fields(plain), " ")
}
