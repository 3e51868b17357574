package notifier

import (
	"strings"

	"github.com/pkg/errors"

	"fbgroup-notifier/internal/scraper"
)

var placeholders = map[string]bool{
	"url":          true,
	"content":      true,
	"listing_text": true,
}

// ValidateTemplate checks that a message template only uses {url},
// {content} and {listing_text}. Literal braces are written {{ and }}.
func ValidateTemplate(tmpl string) error {
	for i := 0; i < len(tmpl); i++ {
		switch tmpl[i] {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				i++
				continue
			}
			end := strings.IndexByte(tmpl[i:], '}')
			if end < 0 {
				return errors.Errorf("unclosed '{' at offset %d", i)
			}
			name := tmpl[i+1 : i+end]
			if !placeholders[name] {
				return errors.Errorf("unknown placeholder {%s}", name)
			}
			i += end
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				i++
				continue
			}
			return errors.Errorf("single '}' at offset %d", i)
		}
	}
	return nil
}

// Format fills the template with the post fields.
func Format(tmpl string, post scraper.Post) string {
	r := strings.NewReplacer(
		"{{", "{",
		"}}", "}",
		"{url}", post.URL,
		"{content}", post.Content,
		"{listing_text}", post.ListingText,
	)
	return r.Replace(tmpl)
}
