package wptl

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Batch is one or more segment texts sent to the provider in a single call.
type Batch struct {
	Text   string   // Segment texts joined by BatchDelimiter
	Tokens []string // Tokens in the same order as their texts in Text
}

// BuildBatches groups the given tokens into batches of at most budget runes.
// Tokens are taken in the order given; unknown tokens are skipped. A segment
// longer than the budget always travels alone and is never truncated, and so
// does a segment containing a delimiter line, since its response could not be
// split back apart.
func BuildBatches(pm *PlaceholderMap, tokens []string, budget int) []Batch {
	if budget <= 0 {
		budget = DefaultBatchBudget
	}
	delimLen := utf8.RuneCountInString(BatchDelimiter)

	var batches []Batch
	var texts, current []string
	size := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		batches = append(batches, Batch{
			Text:   strings.Join(texts, BatchDelimiter),
			Tokens: current,
		})
		texts, current, size = nil, nil, 0
	}

	for _, token := range tokens {
		entry, ok := pm.Get(token)
		if !ok {
			continue
		}
		text := entry.Segment.Text
		n := utf8.RuneCountInString(text)

		if n > budget || delimiterPattern.MatchString(text) {
			flush()
			batches = append(batches, Batch{Text: text, Tokens: []string{token}})
			continue
		}

		next := size + n
		if len(current) > 0 {
			next += delimLen
		}
		if next > budget {
			flush()
			next = n
		}
		texts = append(texts, text)
		current = append(current, token)
		size = next
	}
	flush()

	return batches
}

// delimiterPattern accepts the delimiter with the loose spacing and dash
// counts that models tend to produce.
var delimiterPattern = regexp.MustCompile(`(?m)^[ \t]*-{3,}[ \t]*$`)

// SplitBatchResponse splits a translated batch back into its parts.
// Blank parts are discarded.
func SplitBatchResponse(text string) []string {
	raw := delimiterPattern.Split(text, -1)
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
