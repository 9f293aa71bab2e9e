package wptl

import (
	"fmt"
	"regexp"
)

// PlaceholderEntry is the segment a token stands for and the markup it replaced.
type PlaceholderEntry struct {
	Segment TextSegment
	Raw     string // Exact markup swapped out; used as the untranslated fallback
}

// PlaceholderMap is an insertion-ordered mapping from placeholder token to entry.
type PlaceholderMap struct {
	tokens  []string
	entries map[string]PlaceholderEntry
	dropped []TextSegment
}

// NewPlaceholderMap creates an empty map.
func NewPlaceholderMap() *PlaceholderMap {
	return &PlaceholderMap{entries: make(map[string]PlaceholderEntry)}
}

// PlaceholderToken returns the token for index n.
func PlaceholderToken(n int) string {
	return fmt.Sprintf("%s%d%s", PlaceholderPrefix, n, PlaceholderSuffix)
}

// placeholderPattern matches any token produced by PlaceholderToken.
var placeholderPattern = regexp.MustCompile(regexp.QuoteMeta(PlaceholderPrefix) + `\d+` + regexp.QuoteMeta(PlaceholderSuffix))

// FindPlaceholders returns every token occurring in s, in order of appearance.
func FindPlaceholders(s string) []string {
	return placeholderPattern.FindAllString(s, -1)
}

// ReplacePlaceholders calls fn for every token in s and substitutes the
// result. Replacement is a single pass, so text returned by fn is never
// rescanned.
func ReplacePlaceholders(s string, fn func(token string) string) string {
	return placeholderPattern.ReplaceAllStringFunc(s, fn)
}

// PlaceholderSpans returns the byte ranges of every token in s.
func PlaceholderSpans(s string) [][]int {
	return placeholderPattern.FindAllStringIndex(s, -1)
}

// Add appends an entry. Adding an existing token replaces its entry in place.
func (m *PlaceholderMap) Add(token string, seg TextSegment, raw string) {
	if _, ok := m.entries[token]; !ok {
		m.tokens = append(m.tokens, token)
	}
	m.entries[token] = PlaceholderEntry{Segment: seg, Raw: raw}
}

// Drop records a segment that could not be substituted.
func (m *PlaceholderMap) Drop(seg TextSegment) {
	m.dropped = append(m.dropped, seg)
}

// Get returns the entry for a token.
func (m *PlaceholderMap) Get(token string) (PlaceholderEntry, bool) {
	e, ok := m.entries[token]
	return e, ok
}

// Tokens returns the tokens in insertion order.
func (m *PlaceholderMap) Tokens() []string {
	out := make([]string, len(m.tokens))
	copy(out, m.tokens)
	return out
}

// Dropped returns the segments that never received a token.
func (m *PlaceholderMap) Dropped() []TextSegment {
	return m.dropped
}

// Len returns the number of tokens.
func (m *PlaceholderMap) Len() int {
	return len(m.tokens)
}
