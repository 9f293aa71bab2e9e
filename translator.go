package wptl

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Translator is the main translation engine.
type Translator struct {
	targetLang        string
	sourceLang        string
	model             string
	provider          AIProvider
	cache             TranslationCache
	batchBudget       int
	parallelThreshold int
	logger            *zap.Logger
	processors        map[string]ContentProcessor
}

// AIProvider is the interface for AI translation backends.
type AIProvider interface {
	Translate(ctx context.Context, req TranslateRequest) (string, error)
}

// TranslateRequest contains the parameters for one remote translation call.
type TranslateRequest struct {
	Text       string // Batch text, segments joined by BatchDelimiter
	TargetLang string // Human-readable target language name, e.g. "Spanish"
	SourceLang string // Human-readable source language name, may be empty
	Model      string // Model id; empty selects the provider default
}

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// ContentProcessor extracts segments from content and swaps them for
// placeholder tokens and back.
type ContentProcessor interface {
	Extract(content string) (interface{}, []TextSegment, error)
	Encode(parsed interface{}, segments []TextSegment) (string, *PlaceholderMap, error)
	Decode(prepared string, pm *PlaceholderMap, translations map[string]string) string
	ContentType() string
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithTargetLang sets the default target language.
func WithTargetLang(lang string) TranslatorOption {
	return func(t *Translator) {
		t.targetLang = lang
	}
}

// WithSourceLang sets the source language. Without one the provider detects
// it and every run is translated.
func WithSourceLang(lang string) TranslatorOption {
	return func(t *Translator) {
		t.sourceLang = lang
	}
}

// WithModel sets the default model id passed to the provider.
func WithModel(model string) TranslatorOption {
	return func(t *Translator) {
		t.model = model
	}
}

// WithCache sets the translation cache.
func WithCache(cache TranslationCache) TranslatorOption {
	return func(t *Translator) {
		t.cache = cache
	}
}

// WithBatchBudget sets the per-request character budget.
func WithBatchBudget(n int) TranslatorOption {
	return func(t *Translator) {
		if n > 0 {
			t.batchBudget = n
		}
	}
}

// WithParallelThreshold sets the minimum token count for parallel cache lookup.
func WithParallelThreshold(n int) TranslatorOption {
	return func(t *Translator) {
		t.parallelThreshold = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) TranslatorOption {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithProcessor registers a content processor.
func WithProcessor(processor ContentProcessor) TranslatorOption {
	return func(t *Translator) {
		t.processors[processor.ContentType()] = processor
	}
}

// NewTranslator creates a new Translator backed by the given provider.
func NewTranslator(provider AIProvider, opts ...TranslatorOption) *Translator {
	t := &Translator{
		provider:          provider,
		batchBudget:       DefaultBatchBudget,
		parallelThreshold: 5,
		logger:            zap.NewNop(),
		processors:        make(map[string]ContentProcessor),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// TranslateHTML is a convenience method for translating HTML content.
func (t *Translator) TranslateHTML(ctx context.Context, html string, req Request, progress ProgressFunc) (*Result, error) {
	return t.Process(ctx, html, "html", req, progress)
}

// Process translates content of the specified type.
//
// Batches are sent one after another. Cancelling ctx stops the run before the
// next batch starts; a call already in flight is bounded by the provider.
func (t *Translator) Process(ctx context.Context, content string, contentType string, req Request, progress ProgressFunc) (*Result, error) {
	runID := uuid.NewString()
	log := t.logger.With(zap.String("run_id", runID))
	report := newProgressReporter(progress, log)

	target := req.TargetLang
	if target == "" {
		target = t.targetLang
	}
	if target == "" {
		return nil, &TranslationError{Message: "target language is required"}
	}
	source := req.SourceLang
	if source == "" {
		source = t.sourceLang
	}
	model := req.Model
	if model == "" {
		model = t.model
	}
	targetLang := ResolveLanguage(target)

	result := &Result{Content: content, RunID: runID}

	// Only a declared source language can match the target
	if source != "" && sameBaseLang(source, targetLang.Code) {
		report.update(StageComplete, ProgressComplete, "Source and target language match, nothing to translate")
		return result, nil
	}

	processor, ok := t.processors[contentType]
	if !ok {
		return nil, &ProcessorError{
			Message:     "no processor registered for content type",
			ContentType: contentType,
		}
	}

	log.Info("translation started",
		zap.String("target", targetLang.Code),
		zap.String("model", model),
		zap.Int("content_length", len(content)))

	report.update(StageAnalyzing, ProgressAnalyzing, "Analyzing content...")

	parsed, segments, err := processor.Extract(content)
	if err != nil {
		return nil, &TranslationError{Message: "extracting text failed", Cause: err}
	}
	result.TotalSegments = len(segments)

	if len(segments) == 0 {
		log.Info("no translatable content")
		report.update(StageComplete, ProgressComplete, "No translatable content found")
		return result, nil
	}

	prepared, pm, err := processor.Encode(parsed, segments)
	if err != nil {
		return nil, &TranslationError{Message: "inserting placeholders failed", Cause: err}
	}
	result.Tokens = pm.Len()
	result.Dropped = pm.Dropped()
	for _, seg := range result.Dropped {
		log.Warn("segment dropped during substitution",
			zap.Int("segment", seg.ID),
			zap.String("path", seg.Path),
			zap.String("text", truncate(seg.Text, 60)))
	}

	if pm.Len() == 0 {
		report.update(StageComplete, ProgressComplete, "No translatable content could be substituted")
		return result, nil
	}

	translations, misses := t.lookupCache(pm, targetLang.Code, model)
	result.CachedCount = len(translations)

	batches := BuildBatches(pm, misses, t.batchBudget)
	result.Batches = len(batches)
	log.Debug("content analyzed",
		zap.Int("segments", len(segments)),
		zap.Int("tokens", pm.Len()),
		zap.Int("cached", result.CachedCount),
		zap.Int("batches", len(batches)))

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return nil, &TranslationError{Message: "translation cancelled", Cause: err}
		}

		report.update(StageTranslating, batchProgress(i, len(batches)),
			fmt.Sprintf("Translating batch %d of %d...", i+1, len(batches)))

		out, err := t.provider.Translate(ctx, TranslateRequest{
			Text:       batch.Text,
			TargetLang: targetLang.Name,
			SourceLang: GetLanguageName(source),
			Model:      model,
		})
		if err != nil {
			log.Error("batch failed", zap.Int("batch", i+1), zap.Error(err))
			return nil, &TranslationError{
				Message: fmt.Sprintf("translating batch %d of %d failed", i+1, len(batches)),
				Cause:   err,
			}
		}

		parts, mismatch := ResolveBatch(i+1, batch, out)
		if mismatch != nil {
			result.Mismatches = append(result.Mismatches, mismatch)
			log.Warn("batch response did not split cleanly, using original text for missing parts",
				zap.Int("batch", i+1),
				zap.Int("expected", mismatch.Expected),
				zap.Int("got", mismatch.Got))
		}

		for token, text := range parts {
			translations[token] = text
			result.TranslatedCount++
			t.storeCache(pm, token, text, targetLang.Code, model)
		}
	}

	report.update(StageFinalizing, ProgressFinalizing, "Finalizing translation...")

	result.FallbackCount = pm.Len() - len(translations)
	final := processor.Decode(prepared, pm, translations)

	// Set HTML attributes if applicable
	if contentType == "html" && hasHTMLElement(final) {
		final = t.setHTMLAttributes(final, targetLang.Code)
	}
	result.Content = final

	log.Info("translation finished",
		zap.Int("batches", result.Batches),
		zap.Int("translated", result.TranslatedCount),
		zap.Int("cached", result.CachedCount),
		zap.Int("fallback", result.FallbackCount))

	report.update(StageComplete, ProgressComplete, "Translation complete")
	return result, nil
}

// ResolveBatch maps a batch response onto the batch tokens.
//
// A single-token batch takes the whole response. A multi-token batch is split
// on the delimiter and parts are assigned positionally; tokens without a part
// are left out of the returned map so they fall back to their original text.
// A non-nil SplitMismatchError reports the shortfall or surplus.
func ResolveBatch(index int, batch Batch, response string) (map[string]string, *SplitMismatchError) {
	out := make(map[string]string, len(batch.Tokens))

	if len(batch.Tokens) == 1 {
		text := strings.TrimSpace(response)
		if text == "" {
			return out, &SplitMismatchError{Batch: index, Expected: 1, Got: 0}
		}
		out[batch.Tokens[0]] = text
		return out, nil
	}

	parts := SplitBatchResponse(response)
	for i, token := range batch.Tokens {
		if i >= len(parts) {
			break
		}
		out[token] = parts[i]
	}

	if len(parts) != len(batch.Tokens) {
		return out, &SplitMismatchError{Batch: index, Expected: len(batch.Tokens), Got: len(parts)}
	}
	return out, nil
}

// lookupCache resolves cached tokens and returns the remaining tokens in map order.
func (t *Translator) lookupCache(pm *PlaceholderMap, targetLang, model string) (map[string]string, []string) {
	translations := make(map[string]string)
	tokens := pm.Tokens()
	if t.cache == nil {
		return translations, tokens
	}

	segments := make([]TextSegment, 0, len(tokens))
	for _, token := range tokens {
		entry, _ := pm.Get(token)
		segments = append(segments, entry.Segment)
	}

	var hits map[string]string
	if len(segments) >= t.parallelThreshold {
		hits, _ = ParallelCacheLookup(t.cache, segments, targetLang, model)
	} else {
		hits = make(map[string]string)
		for _, seg := range segments {
			if v, ok := t.cache.Get(CacheKey(seg.Hash, targetLang, model)); ok {
				hits[seg.Hash] = v
			}
		}
	}

	var misses []string
	for _, token := range tokens {
		entry, _ := pm.Get(token)
		if v, ok := hits[entry.Segment.Hash]; ok {
			translations[token] = v
			continue
		}
		misses = append(misses, token)
	}
	return translations, misses
}

func (t *Translator) storeCache(pm *PlaceholderMap, token, text, targetLang, model string) {
	if t.cache == nil {
		return
	}
	entry, ok := pm.Get(token)
	if !ok {
		return
	}
	if err := t.cache.Set(CacheKey(entry.Segment.Hash, targetLang, model), text); err != nil {
		t.logger.Debug("cache set failed", zap.Error(err)) // cache failures never fail a run
	}
}

// setHTMLAttributes sets lang and dir attributes on the <html> tag.
func (t *Translator) setHTMLAttributes(content string, targetLang string) string {
	z := html.NewTokenizer(strings.NewReader(content))
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return content
		}
		n := len(z.Raw())
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.DataAtom != atom.Html {
				return content
			}
			tok.Attr = setAttr(tok.Attr, "lang", ToHTMLLang(targetLang))
			tok.Attr = setAttr(tok.Attr, "dir", GetDirection(targetLang))
			// Only the start tag is rewritten; the rest of the document keeps its bytes
			return content[:offset] + tok.String() + content[offset+n:]
		}
		offset += n
	}
}

func setAttr(attrs []html.Attribute, key, val string) []html.Attribute {
	for i := range attrs {
		if attrs[i].Namespace == "" && attrs[i].Key == key {
			attrs[i].Val = val
			return attrs
		}
	}
	return append(attrs, html.Attribute{Key: key, Val: val})
}

// TargetLang returns the default target language.
func (t *Translator) TargetLang() string {
	return t.targetLang
}

// SourceLang returns the source language.
func (t *Translator) SourceLang() string {
	return t.sourceLang
}

// BatchBudget returns the per-request character budget.
func (t *Translator) BatchBudget() int {
	return t.batchBudget
}

// progressReporter forwards progress while keeping percent non-decreasing.
type progressReporter struct {
	fn     ProgressFunc
	logger *zap.Logger
	stage  Stage
	last   int
}

func newProgressReporter(fn ProgressFunc, logger *zap.Logger) *progressReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &progressReporter{fn: fn, logger: logger, stage: StageIdle}
}

func (r *progressReporter) update(stage Stage, percent int, message string) {
	if percent < r.last {
		percent = r.last
	}
	if percent > ProgressComplete {
		percent = ProgressComplete
	}
	r.last = percent
	if stage != r.stage {
		r.logger.Debug("stage", zap.String("stage", string(stage)), zap.Int("percent", percent))
		r.stage = stage
	}
	if r.fn != nil {
		r.fn(percent, message)
	}
}

// batchProgress spreads batches over the 10..90 range.
func batchProgress(i, n int) int {
	if n <= 0 {
		return ProgressAnalyzing
	}
	return ProgressAnalyzing + (ProgressFinalizing-ProgressAnalyzing)*i/n
}

func hasHTMLElement(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(lower, "<html")
}

// sameBaseLang compares the base language codes (e.g., "en" for "en_US").
func sameBaseLang(a, b string) bool {
	return normalizeBaseLang(ResolveLanguage(a).Code) == normalizeBaseLang(ResolveLanguage(b).Code)
}

// normalizeBaseLang extracts the base language code (e.g., "en" from "en_US").
func normalizeBaseLang(lang string) string {
	lang = strings.ReplaceAll(lang, "-", "_")
	parts := strings.Split(lang, "_")
	return strings.ToLower(parts[0])
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
