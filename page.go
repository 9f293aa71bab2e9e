package wptl

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Page is a destination page. The typed fields are the ones the workflow
// reads or writes; Metadata keeps every field exactly as the store returned
// it so builder-specific data survives a copy untouched.
type Page struct {
	ID       int
	Title    string
	Content  string
	Slug     string
	Status   string
	Link     string
	Template string
	Parent   int
	Metadata map[string]json.RawMessage
}

// PageStore reads and creates pages at the destination.
type PageStore interface {
	GetPage(ctx context.Context, id int) (*Page, error)
	CreatePage(ctx context.Context, draft *Page) (*Page, error)
}

// draftExcluded reports whether a field is owned by the destination and must
// not be sent back when creating a copy.
func draftExcluded(key string) bool {
	switch key {
	case "id", "link", "guid", "_links", "_embedded":
		return true
	}
	return strings.HasPrefix(key, "modified") || strings.HasPrefix(key, "date")
}

// NewDraft builds the translated copy of page: every field is carried over
// except the destination-owned ones, then title, content, status and slug are
// set for the target language.
func NewDraft(page *Page, translatedHTML string, lang Language) *Page {
	meta := make(map[string]json.RawMessage, len(page.Metadata))
	for k, v := range page.Metadata {
		if !draftExcluded(k) {
			meta[k] = v
		}
	}

	return &Page{
		Title:    fmt.Sprintf("%s - %s", page.Title, lang.Name),
		Content:  translatedHTML,
		Slug:     fmt.Sprintf("%s-%s", page.Slug, strings.ToLower(lang.Code)),
		Status:   "draft",
		Template: page.Template,
		Parent:   page.Parent,
		Metadata: meta,
	}
}

// PageResult is the outcome of a page translation.
type PageResult struct {
	Source      *Page
	Created     *Page
	Language    Language
	Translation *Result
}

// PageTranslator runs the fetch, translate, create workflow for one page.
type PageTranslator struct {
	store      PageStore
	translator *Translator
	logger     *zap.Logger
}

// NewPageTranslator creates a PageTranslator. A nil logger discards output.
func NewPageTranslator(store PageStore, translator *Translator, logger *zap.Logger) *PageTranslator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageTranslator{store: store, translator: translator, logger: logger}
}

// Workflow progress bounds. Translation progress is scaled into the
// translating window so the overall stream never goes backwards.
const (
	pageProgressFetching    = 0
	pageProgressTranslating = 5
	pageProgressCreating    = 90
)

// TranslatePage fetches a page, translates its content into lang and creates
// the translated copy as a draft. Nothing is written when translation fails.
// A failed create is returned as a *PublishError.
func (pt *PageTranslator) TranslatePage(ctx context.Context, pageID int, lang string, model string, progress ProgressFunc) (*PageResult, error) {
	target := ResolveLanguage(lang)
	log := pt.logger.With(zap.Int("page_id", pageID), zap.String("lang", target.Code))
	reporter := newProgressReporter(progress, log)

	reporter.update(StageFetching, pageProgressFetching, "Fetching page content...")
	page, err := pt.store.GetPage(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("fetching page %d: %w", pageID, err)
	}
	log.Info("page fetched", zap.String("title", page.Title), zap.Int("bytes", len(page.Content)))

	window := pageProgressCreating - pageProgressTranslating
	result, err := pt.translator.TranslateHTML(ctx, page.Content, Request{
		TargetLang: target.Code,
		Model:      model,
	}, func(percent int, message string) {
		reporter.update(StageTranslating, pageProgressTranslating+percent*window/ProgressComplete, message)
	})
	if err != nil {
		return nil, err
	}

	reporter.update(StageCreating, pageProgressCreating, "Creating translated page...")
	created, err := pt.store.CreatePage(ctx, NewDraft(page, result.Content, target))
	if err != nil {
		return nil, err
	}
	log.Info("draft created", zap.Int("new_page_id", created.ID), zap.String("slug", created.Slug))

	reporter.update(StageComplete, ProgressComplete, fmt.Sprintf("Translation completed! New page %q created as a draft.", created.Title))
	return &PageResult{
		Source:      page,
		Created:     created,
		Language:    target,
		Translation: result,
	}, nil
}
