package wptl

// TextSegment is one translatable run of visible text taken from a document.
type TextSegment struct {
	ID    int    // Position in extraction order
	Text  string // Visible text (trimmed; whitespace collapsed for mixed content)
	Path  string // Ancestor breadcrumb, e.g. "body > div > p" (tracing only)
	Hash  string // SHA-256 of Text
	Mixed bool   // True when Text is the merged text of a mixed-content element
}

// MinSegmentLength is the minimum rune count for a text run to be translated.
const MinSegmentLength = 2

// BatchDelimiter separates segment texts inside one batch.
const BatchDelimiter = "\n---\n"

// DefaultBatchBudget is the per-request character budget for a batch.
const DefaultBatchBudget = 500

// PlaceholderPrefix and PlaceholderSuffix frame every placeholder token.
const (
	PlaceholderPrefix = "__TRANSLATE_PLACEHOLDER_"
	PlaceholderSuffix = "__"
)

// IgnoredTags contains HTML tags whose content is never extracted.
var IgnoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"iframe":   true,
	"code":     true,
	"pre":      true,
	"textarea": true,
}

// MixedContentTags are the text-bearing elements whose text is merged into a
// single segment when they hold both direct text and child elements.
var MixedContentTags = map[string]bool{
	"h1":     true,
	"h2":     true,
	"h3":     true,
	"h4":     true,
	"h5":     true,
	"h6":     true,
	"p":      true,
	"div":    true,
	"span":   true,
	"a":      true,
	"li":     true,
	"td":     true,
	"th":     true,
	"label":  true,
	"button": true,
}

// Stage names a step of the translation pipeline.
type Stage string

const (
	StageIdle        Stage = "idle"
	StageFetching    Stage = "fetching"
	StageAnalyzing   Stage = "analyzing"
	StageTranslating Stage = "translating"
	StageFinalizing  Stage = "finalizing"
	StageCreating    Stage = "creating"
	StageComplete    Stage = "complete"
)

// Progress percentages for the fixed pipeline stages.
const (
	ProgressAnalyzing  = 10
	ProgressFinalizing = 90
	ProgressComplete   = 100
)

// ProgressFunc receives pipeline progress. Percent never decreases within a run.
type ProgressFunc func(percent int, message string)

// Request describes a single HTML translation.
type Request struct {
	TargetLang string // Language code ("es") or display name ("Spanish")
	SourceLang string // Defaults to the translator's source language
	Model      string // Provider model id; empty uses the provider default
}

// Result is the outcome of a translation run.
type Result struct {
	Content         string                // Final HTML
	RunID           string                // Correlates log lines for this run
	TotalSegments   int                   // Segments found by the extractor
	Tokens          int                   // Placeholder tokens emitted
	Batches         int                   // Remote calls made
	TranslatedCount int                   // Tokens translated by the provider
	CachedCount     int                   // Tokens served from cache
	FallbackCount   int                   // Tokens that kept their original text
	Dropped         []TextSegment         // Segments that could not be substituted
	Mismatches      []*SplitMismatchError // Batches whose response did not split cleanly
}
