// Package sanitize makes comment text safe to embed in HTML.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// escapes are applied in order; '&' must come first so entities produced by
// later replacements are not escaped twice.
var escapes = []struct{ from, to string }{
	{"&", "&amp;"},
	{"<", "&lt;"},
	{">", "&gt;"},
	{`"`, "&quot;"},
	{"'", "&#x27;"},
	{"/", "&#x2F;"},
}

// Escape replaces the six HTML-significant characters with entities.
// Every other character is left untouched. Escape is not idempotent.
func Escape(text string) string {
	if !strings.ContainsAny(text, `&<>"'/`) {
		return text
	}
	out := text
	for _, e := range escapes {
		out = strings.ReplaceAll(out, e.from, e.to)
	}
	return out
}

// Sanitizer optionally strips markup before escaping.
type Sanitizer struct {
	strip  bool
	policy *bluemonday.Policy
}

// New returns a Sanitizer. With stripMarkup set, tags are removed with a
// strict policy before Escape runs.
func New(stripMarkup bool) *Sanitizer {
	s := &Sanitizer{strip: stripMarkup}
	if stripMarkup {
		s.policy = bluemonday.StrictPolicy()
	}
	return s
}

// Sanitize returns the HTML-safe form of text.
func (s *Sanitizer) Sanitize(text string) string {
	if s.strip {
		text = StripMarkup(s.policy, text)
	}
	return Escape(text)
}

// StripMarkup removes every tag and unescapes the entities bluemonday emits,
// leaving plain text for Escape.
func StripMarkup(p *bluemonday.Policy, text string) string {
	if p == nil {
		p = bluemonday.StrictPolicy()
	}
	return html.UnescapeString(p.Sanitize(text))
}
