// Package filter decides which messages are worth delivering. A message
// matches when it contains at least one configured keyword and none of the
// excluded ones; matching is case-insensitive substring containment.
package filter

import "strings"

// Filter holds the normalized keyword sets. Build it once at startup; it is
// immutable afterwards and safe for concurrent use.
type Filter struct {
	keywords []term
	excluded []string
}

// term keeps the configured casing for reporting next to the lowered form
// used for matching.
type term struct {
	display string
	lowered string
}

// New builds a Filter from the configured keyword and exclusion lists. Terms
// are trimmed, empties dropped, and duplicates (case-insensitive) removed;
// configured order is preserved.
func New(keywords, excluded []string) *Filter {
	f := &Filter{}
	seen := make(map[string]bool)
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		low := strings.ToLower(kw)
		if seen[low] {
			continue
		}
		seen[low] = true
		f.keywords = append(f.keywords, term{display: kw, lowered: low})
	}
	seen = make(map[string]bool)
	for _, ex := range excluded {
		ex = strings.TrimSpace(ex)
		if ex == "" {
			continue
		}
		low := strings.ToLower(ex)
		if seen[low] {
			continue
		}
		seen[low] = true
		f.excluded = append(f.excluded, low)
	}
	return f
}

// Match reports whether text passes the filter, along with the keywords that
// hit (in configured order and casing). Rules, in precedence order: any
// excluded term present vetoes the message outright; an empty keyword list
// matches everything, empty text included; otherwise at least one keyword
// must be contained in the text.
func (f *Filter) Match(text string) ([]string, bool) {
	lowered := strings.ToLower(text)
	for _, ex := range f.excluded {
		if strings.Contains(lowered, ex) {
			return nil, false
		}
	}
	if len(f.keywords) == 0 {
		// no keywords configured means no filtering: pass everything
		return nil, true
	}
	var matched []string
	for _, kw := range f.keywords {
		if strings.Contains(lowered, kw.lowered) {
			matched = append(matched, kw.display)
		}
	}
	return matched, len(matched) > 0
}

// Matches is Match without the keyword report.
func (f *Filter) Matches(text string) bool {
	_, ok := f.Match(text)
	return ok
}

// Keywords returns the normalized inclusion terms in configured casing.
func (f *Filter) Keywords() []string {
	out := make([]string, len(f.keywords))
	for i, kw := range f.keywords {
		out[i] = kw.display
	}
	return out
}
