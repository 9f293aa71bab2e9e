package wptl

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type fakePageStore struct {
	pages     map[int]*Page
	created   []*Page
	createErr error
}

func (s *fakePageStore) GetPage(ctx context.Context, id int) (*Page, error) {
	page, ok := s.pages[id]
	if !ok {
		return nil, &PublishError{Operation: "get page", StatusCode: 404, Message: "Invalid post ID."}
	}
	return page, nil
}

func (s *fakePageStore) CreatePage(ctx context.Context, draft *Page) (*Page, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, draft)
	out := *draft
	out.ID = 100 + len(s.created)
	return &out, nil
}

func newFakeStore() *fakePageStore {
	return &fakePageStore{pages: map[int]*Page{
		42: {
			ID:       42,
			Title:    "About us",
			Content:  "<p>Hello</p><p>World</p>",
			Slug:     "about",
			Status:   "publish",
			Link:     "https://example.com/about/",
			Template: "elementor_canvas",
			Parent:   7,
			Metadata: map[string]json.RawMessage{
				"id":             json.RawMessage(`42`),
				"link":           json.RawMessage(`"https://example.com/about/"`),
				"guid":           json.RawMessage(`{"rendered":"https://example.com/?page_id=42"}`),
				"date":           json.RawMessage(`"2024-01-01T10:00:00"`),
				"date_gmt":       json.RawMessage(`"2024-01-01T09:00:00"`),
				"modified":       json.RawMessage(`"2024-02-01T10:00:00"`),
				"modified_gmt":   json.RawMessage(`"2024-02-01T09:00:00"`),
				"_links":         json.RawMessage(`{}`),
				"menu_order":     json.RawMessage(`3`),
				"meta":           json.RawMessage(`{"_elementor_edit_mode":"builder"}`),
				"comment_status": json.RawMessage(`"closed"`),
			},
		},
	}}
}

func TestNewDraft(t *testing.T) {
	page := newFakeStore().pages[42]

	draft := NewDraft(page, "<p>Hola</p>", ResolveLanguage("es"))

	if draft.Title != "About us - Spanish" {
		t.Errorf("Title = %q", draft.Title)
	}
	if draft.Slug != "about-es" {
		t.Errorf("Slug = %q", draft.Slug)
	}
	if draft.Status != "draft" {
		t.Errorf("Status = %q", draft.Status)
	}
	if draft.Content != "<p>Hola</p>" {
		t.Errorf("Content = %q", draft.Content)
	}
	if draft.ID != 0 || draft.Link != "" {
		t.Errorf("destination-owned fields should be empty: %+v", draft)
	}
	if draft.Template != "elementor_canvas" || draft.Parent != 7 {
		t.Errorf("Template/Parent not carried over: %+v", draft)
	}

	for _, key := range []string{"id", "link", "guid", "date", "date_gmt", "modified", "modified_gmt", "_links"} {
		if _, ok := draft.Metadata[key]; ok {
			t.Errorf("metadata %q should be excluded", key)
		}
	}
	for _, key := range []string{"menu_order", "meta", "comment_status"} {
		if string(draft.Metadata[key]) != string(page.Metadata[key]) {
			t.Errorf("metadata %q should be copied verbatim", key)
		}
	}

	if _, ok := page.Metadata["id"]; !ok {
		t.Error("source metadata must not be modified")
	}
}

func TestNewDraft_RegionCode(t *testing.T) {
	draft := NewDraft(&Page{Title: "Home", Slug: "home"}, "", ResolveLanguage("pt_BR"))
	if draft.Slug != "home-pt_br" {
		t.Errorf("Slug = %q", draft.Slug)
	}
}

func TestPageTranslator_TranslatePage(t *testing.T) {
	store := newFakeStore()
	provider := newMockProvider()
	translator := newTestTranslator(provider)
	pt := NewPageTranslator(store, translator, nil)

	var percents []int
	var messages []string
	result, err := pt.TranslatePage(context.Background(), 42, "es", "gemini-2.0-flash", func(p int, msg string) {
		percents = append(percents, p)
		messages = append(messages, msg)
	})
	if err != nil {
		t.Fatalf("TranslatePage failed: %v", err)
	}

	if len(store.created) != 1 {
		t.Fatalf("Expected 1 created page, got %d", len(store.created))
	}
	if store.created[0].Content != "<p>Hola</p><p>Mundo</p>" {
		t.Errorf("created content = %q", store.created[0].Content)
	}
	if result.Created.ID != 101 || result.Source.ID != 42 {
		t.Errorf("unexpected result ids: %d, %d", result.Created.ID, result.Source.ID)
	}
	if result.Language.Code != "es" || result.Translation.TranslatedCount != 2 {
		t.Errorf("unexpected result: %+v", result)
	}
	if provider.requests[0].Model != "gemini-2.0-flash" {
		t.Errorf("Model = %q", provider.requests[0].Model)
	}

	if percents[0] != 0 || messages[0] != "Fetching page content..." {
		t.Errorf("first update = %d %q", percents[0], messages[0])
	}
	for i := 1; i < len(percents); i++ {
		if percents[i] < percents[i-1] {
			t.Fatalf("progress went backwards: %v", percents)
		}
	}
	if percents[len(percents)-1] != ProgressComplete {
		t.Errorf("progress should end at 100: %v", percents)
	}
	sawCreating := false
	for i, msg := range messages {
		if msg == "Creating translated page..." {
			sawCreating = true
			if percents[i] != 90 {
				t.Errorf("creating at %d", percents[i])
			}
		}
	}
	if !sawCreating {
		t.Errorf("missing creating stage in %v", messages)
	}
}

func TestPageTranslator_FetchError(t *testing.T) {
	store := newFakeStore()
	provider := newMockProvider()
	pt := NewPageTranslator(store, newTestTranslator(provider), nil)

	_, err := pt.TranslatePage(context.Background(), 999, "es", "", nil)

	var pubErr *PublishError
	if !errors.As(err, &pubErr) || pubErr.StatusCode != 404 {
		t.Fatalf("expected wrapped PublishError, got %v", err)
	}
	if len(provider.requests) != 0 {
		t.Error("nothing should be translated when the fetch fails")
	}
}

func TestPageTranslator_TranslationFailure(t *testing.T) {
	store := newFakeStore()
	provider := newMockProvider()
	provider.respond = func(req TranslateRequest) (string, error) {
		return "", &ProviderError{Message: "Translation API error: boom", StatusCode: 500}
	}
	pt := NewPageTranslator(store, newTestTranslator(provider), nil)

	_, err := pt.TranslatePage(context.Background(), 42, "es", "", nil)

	var transErr *TranslationError
	if !errors.As(err, &transErr) {
		t.Fatalf("expected TranslationError, got %v", err)
	}
	if len(store.created) != 0 {
		t.Error("no page may be created when translation fails")
	}
}

func TestPageTranslator_CreateFailure(t *testing.T) {
	store := newFakeStore()
	store.createErr = &PublishError{Operation: "create page", StatusCode: 403, Message: "Sorry, you are not allowed to create posts."}
	pt := NewPageTranslator(store, newTestTranslator(newMockProvider()), nil)

	_, err := pt.TranslatePage(context.Background(), 42, "fr", "", nil)

	var pubErr *PublishError
	if !errors.As(err, &pubErr) {
		t.Fatalf("expected PublishError, got %v", err)
	}
	if !pubErr.Unauthenticated() {
		t.Error("403 should report Unauthenticated")
	}
	var transErr *TranslationError
	if errors.As(err, &transErr) {
		t.Error("create failures must be distinct from translation failures")
	}
}

func TestPageTranslator_TranslatePage_IntoEnglish(t *testing.T) {
	store := &fakePageStore{pages: map[int]*Page{
		7: {ID: 7, Title: "Über uns", Slug: "ueber-uns", Content: "<p>Willkommen auf unserer Seite</p>"},
	}}
	provider := newMockProvider()
	provider.translations["Willkommen auf unserer Seite"] = "Welcome to our site"
	pt := NewPageTranslator(store, newTestTranslator(provider), nil)

	result, err := pt.TranslatePage(context.Background(), 7, "en", "", nil)
	if err != nil {
		t.Fatalf("TranslatePage failed: %v", err)
	}
	if len(provider.requests) != 1 || result.Translation.TranslatedCount != 1 {
		t.Fatalf("calls=%d result=%+v", len(provider.requests), result.Translation)
	}
	draft := store.created[0]
	if draft.Title != "Über uns - English" || draft.Content != "<p>Welcome to our site</p>" {
		t.Errorf("draft = %q / %q", draft.Title, draft.Content)
	}
}
