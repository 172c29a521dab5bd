// Package sanitize strips markup from user supplied text before it is moderated or stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer reduces input to plain text. Safe for concurrent use.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func New() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// maxPasses bounds how many layers of entity encoding Text will peel off.
const maxPasses = 4

// Text drops every tag, decodes the entities bluemonday escaped and trims
// surrounding whitespace. Decoding can surface tags that arrived entity-encoded,
// so sanitizing repeats until the output is stable. Input still changing after
// maxPasses is returned in escaped form. Plain text comes back unchanged apart
// from trimming.
func (s *Sanitizer) Text(raw string) string {
	if raw == "" {
		return ""
	}
	out := raw
	for i := 0; i < maxPasses; i++ {
		next := html.UnescapeString(s.policy.Sanitize(out))
		if next == out {
			return strings.TrimSpace(out)
		}
		out = next
	}
	return strings.TrimSpace(s.policy.Sanitize(out))
}

// All applies Text to every element, keeping order and dropping empty results.
func (s *Sanitizer) All(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if v := s.Text(r); v != "" {
			out = append(out, v)
		}
	}
	return out
}
