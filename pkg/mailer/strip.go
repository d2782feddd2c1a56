package mailer

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// StripTags renders an HTML body as plain text for the text/plain part.
func StripTags(body string) string {
	body = strings.NewReplacer("</p>", "\n", "<br>", "\n", "</h2>", "\n").Replace(body)
	text := html.UnescapeString(strict.Sanitize(body))
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
