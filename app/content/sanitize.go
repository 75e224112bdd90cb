package content

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

const ExcerptLength = 180

// Sanitizer cleans text pulled from remote feeds before it is stored
type Sanitizer struct {
	strict *bluemonday.Policy
	body   *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		strict: bluemonday.StrictPolicy(),
		body:   bodyPolicy(),
	}
}

// bodyPolicy allows the usual post markup but drops hyperlinks while keeping their text
func bodyPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowStandardAttributes()
	p.AllowImages()
	p.AllowLists()
	p.AllowTables()
	p.AllowElements("p", "br", "hr", "div", "span", "blockquote", "pre", "code",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"b", "strong", "i", "em", "u", "s", "sub", "sup", "small", "mark",
		"figure", "figcaption", "abbr", "cite", "q")
	p.AllowAttrs("cite").OnElements("blockquote", "q")
	return p
}

// Title strips every tag and returns plain text
func (s *Sanitizer) Title(raw string) string {
	return plain(s.strict.Sanitize(raw))
}

// Tag strips markup from a keyword
func (s *Sanitizer) Tag(raw string) string {
	return plain(s.strict.Sanitize(raw))
}

// Body keeps post markup, removes hyperlinks and scripts
func (s *Sanitizer) Body(raw string) string {
	return strings.TrimSpace(s.body.Sanitize(strings.TrimSpace(raw)))
}

// Excerpt returns the first ExcerptLength characters of the body text
func (s *Sanitizer) Excerpt(body string) string {
	text := plain(s.strict.Sanitize(body))
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= ExcerptLength {
		return text
	}
	return strings.TrimSpace(string([]rune(text)[:ExcerptLength]))
}

// plain turns strict-policy output back into readable text; bluemonday
// escapes entities, storage keeps the literal characters
func plain(s string) string {
	return strings.TrimSpace(html.UnescapeString(s))
}
