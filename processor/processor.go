// Package processor provides content processing implementations.
package processor

import "github.com/ZaguanLabs/wptl"

// ContentProcessor is an alias to the main package interface.
type ContentProcessor = wptl.ContentProcessor

// TextSegment is an alias to the main package type.
type TextSegment = wptl.TextSegment

// PlaceholderMap is an alias to the main package type.
type PlaceholderMap = wptl.PlaceholderMap

// Strategy selects how segments are swapped for placeholder tokens.
type Strategy string

const (
	// StrategyTree replaces each segment's own node in the parsed tree.
	StrategyTree Strategy = "tree"
	// StrategyLiteral replaces segment text in the raw markup, longest first.
	StrategyLiteral Strategy = "literal"
)

// ParseStrategy maps a config value to a Strategy. Empty selects StrategyTree.
func ParseStrategy(s string) (Strategy, bool) {
	switch Strategy(s) {
	case "", StrategyTree:
		return StrategyTree, true
	case StrategyLiteral:
		return StrategyLiteral, true
	}
	return "", false
}
