package processor

import (
	"errors"
	"strings"
	"testing"

	"github.com/ZaguanLabs/wptl"
)

func TestHTMLProcessor_Extract_Basic(t *testing.T) {
	p := NewHTMLProcessor()

	html := `<div><h1>Hello World</h1><p>Welcome to our site.</p></div>`
	parsed, segments, err := p.Extract(html)

	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if parsed == nil {
		t.Fatal("parsed should not be nil")
	}

	if len(segments) != 2 {
		t.Fatalf("Expected 2 segments, got %d", len(segments))
	}

	if segments[0].Text != "Hello World" {
		t.Errorf("Expected 'Hello World', got %q", segments[0].Text)
	}
	if segments[0].Hash != wptl.HashText("Hello World") {
		t.Error("Hash should be the hash of the text")
	}
	if segments[0].Path != "body > div > h1" {
		t.Errorf("Path = %q", segments[0].Path)
	}
	if segments[1].ID != 1 {
		t.Errorf("Expected ID 1, got %d", segments[1].ID)
	}
	if segments[1].Text != "Welcome to our site." {
		t.Errorf("Expected 'Welcome to our site.', got %q", segments[1].Text)
	}
}

func TestHTMLProcessor_Extract_MixedContent(t *testing.T) {
	p := NewHTMLProcessor()

	_, segments, err := p.Extract(`<p>Hello <b>world</b></p>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(segments) != 1 {
		t.Fatalf("Expected 1 segment, got %d: %+v", len(segments), segments)
	}
	if segments[0].Text != "Hello world" {
		t.Errorf("Expected 'Hello world', got %q", segments[0].Text)
	}
	if !segments[0].Mixed {
		t.Error("segment should be marked mixed")
	}
}

func TestHTMLProcessor_Extract_MixedCollapsesWhitespace(t *testing.T) {
	p := NewHTMLProcessor()

	_, segments, _ := p.Extract("<li>Read\n   the <a href=\"/docs\">full\tguide</a><br>today</li>")
	if len(segments) != 1 {
		t.Fatalf("Expected 1 segment, got %d", len(segments))
	}
	if segments[0].Text != "Read the full guide today" {
		t.Errorf("got %q", segments[0].Text)
	}
}

func TestHTMLProcessor_Extract_IgnoredTags(t *testing.T) {
	p := NewHTMLProcessor()

	html := `<div>
		<p>Translate me</p>
		<script>doNotTranslate();</script>
		<style>.class { color: red; }</style>
		<code>const x = 1;</code>
		<pre>preformatted</pre>
		<textarea>form input</textarea>
	</div>`

	_, segments, err := p.Extract(html)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(segments) != 1 {
		t.Fatalf("Expected 1 segment (only 'Translate me'), got %d", len(segments))
	}
	if segments[0].Text != "Translate me" {
		t.Errorf("Expected 'Translate me', got %q", segments[0].Text)
	}
}

func TestHTMLProcessor_Extract_ScriptAndNumbers(t *testing.T) {
	p := NewHTMLProcessor()

	_, segments, err := p.Extract(`<script>var x=1;</script><p>5</p><p>12.50 - 3</p>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(segments) != 0 {
		t.Errorf("Expected no segments, got %+v", segments)
	}
}

func TestHTMLProcessor_Extract_TextWithDigits(t *testing.T) {
	p := NewHTMLProcessor()

	_, segments, err := p.Extract(`<p>Price: 5</p>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(segments) != 1 || segments[0].Text != "Price: 5" {
		t.Errorf("Expected one segment 'Price: 5', got %+v", segments)
	}
}

func TestHTMLProcessor_Extract_MinLength(t *testing.T) {
	p := NewHTMLProcessor()

	_, segments, _ := p.Extract(`<p>a</p><p>Go</p>`)
	if len(segments) != 1 || segments[0].Text != "Go" {
		t.Errorf("Expected only 'Go', got %+v", segments)
	}

	p = NewHTMLProcessor(WithMinLength(3))
	_, segments, _ = p.Extract(`<p>a</p><p>Go</p>`)
	if len(segments) != 0 {
		t.Errorf("Expected no segments with min length 3, got %+v", segments)
	}
}

func TestHTMLProcessor_Extract_Hidden(t *testing.T) {
	p := NewHTMLProcessor()

	html := `<div>
		<p data-no-translate>Keep this</p>
		<p style="color: red; display: none">Hidden by style</p>
		<div style="visibility:hidden !important"><span>Invisible</span></div>
		<p hidden>Hidden attribute</p>
		<p style="display: block">Translate this</p>
	</div>`

	_, segments, err := p.Extract(html)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(segments) != 1 {
		t.Fatalf("Expected 1 segment, got %d: %+v", len(segments), segments)
	}
	if segments[0].Text != "Translate this" {
		t.Errorf("Expected 'Translate this', got %q", segments[0].Text)
	}
}

func TestHTMLProcessor_Extract_HiddenChildDoesNotMakeMixed(t *testing.T) {
	p := NewHTMLProcessor()

	_, segments, _ := p.Extract(`<p>Visible text<span hidden>secret</span></p>`)
	if len(segments) != 1 {
		t.Fatalf("Expected 1 segment, got %d", len(segments))
	}
	if segments[0].Mixed || segments[0].Text != "Visible text" {
		t.Errorf("got %+v", segments[0])
	}
}

func TestHTMLProcessor_Extract_SkippedChildrenKeepElementUnmixed(t *testing.T) {
	p := NewHTMLProcessor()

	html := `<p>Call us <span style="display:none">internal-note</span><script>track()</script> <b>today</b></p>`
	parsed, segments, err := p.Extract(html)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(segments) != 2 || segments[0].Text != "Call us" || segments[1].Text != "today" {
		t.Fatalf("segments = %+v", segments)
	}
	for _, seg := range segments {
		if seg.Mixed {
			t.Errorf("%q should not be mixed", seg.Text)
		}
	}

	prepared, pm, err := p.Encode(parsed, segments)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	out := p.Decode(prepared, pm, map[string]string{
		wptl.PlaceholderToken(0): "Llámenos",
		wptl.PlaceholderToken(1): "hoy",
	})
	want := `<p>Llámenos <span style="display:none">internal-note</span><script>track()</script> <b>hoy</b></p>`
	if out != want {
		t.Errorf("got  %q\nwant %q", out, want)
	}
}

func TestHTMLProcessor_Extract_NestedIgnoredKeepsElementUnmixed(t *testing.T) {
	p := NewHTMLProcessor()

	parsed, segments, _ := p.Extract(`<li>Docs <span><code>x = 1</code> here</span></li>`)
	if len(segments) != 2 || segments[0].Text != "Docs" || segments[1].Text != "here" {
		t.Fatalf("segments = %+v", segments)
	}

	prepared, pm, _ := p.Encode(parsed, segments)
	out := p.Decode(prepared, pm, map[string]string{
		wptl.PlaceholderToken(0): "Doku",
		wptl.PlaceholderToken(1): "hier",
	})
	if out != `<li>Doku <span><code>x = 1</code> hier</span></li>` {
		t.Errorf("got %q", out)
	}
}

func TestHTMLProcessor_Extract_CustomIgnoredTags(t *testing.T) {
	p := NewHTMLProcessorWithIgnoredTags([]string{"ASIDE"})

	_, segments, _ := p.Extract(`<aside>Sidebar</aside><pre>Preformatted</pre>`)
	if len(segments) != 1 || segments[0].Text != "Preformatted" {
		t.Errorf("got %+v", segments)
	}
}

func TestHTMLProcessor_Encode_Fragment(t *testing.T) {
	p := NewHTMLProcessor()

	parsed, segments, _ := p.Extract(`<p>Hello <b>world</b></p>`)
	prepared, pm, err := p.Encode(parsed, segments)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	token := wptl.PlaceholderToken(0)
	if prepared != "<p>"+token+"</p>" {
		t.Errorf("prepared = %q", prepared)
	}
	entry, ok := pm.Get(token)
	if !ok {
		t.Fatal("token missing from map")
	}
	if entry.Raw != "Hello <b>world</b>" {
		t.Errorf("Raw = %q", entry.Raw)
	}

	out := p.Decode(prepared, pm, map[string]string{token: "Hola mundo"})
	if out != "<p>Hola mundo</p>" {
		t.Errorf("Decode = %q", out)
	}
}

func TestHTMLProcessor_Encode_Coverage(t *testing.T) {
	p := NewHTMLProcessor()

	html := `<div class="hero"><h1>Welcome</h1><p>Our <em>best</em> offer</p>` +
		`<ul><li>First item</li><li>Second item</li></ul><p>Welcome</p></div>`
	parsed, segments, _ := p.Extract(html)
	prepared, pm, err := p.Encode(parsed, segments)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	for _, seg := range segments {
		if strings.Contains(prepared, seg.Text) {
			t.Errorf("segment %q still present in prepared markup", seg.Text)
		}
	}

	// "Welcome" occurs twice and shares a token
	if pm.Len() != 4 {
		t.Errorf("Expected 4 tokens, got %d", pm.Len())
	}
	if got := strings.Count(prepared, wptl.PlaceholderToken(0)); got != 2 {
		t.Errorf("Expected duplicate text to reuse its token, found %d occurrences", got)
	}
	if !strings.Contains(prepared, `<div class="hero">`) {
		t.Errorf("attributes lost: %q", prepared)
	}
}

func TestHTMLProcessor_RoundTrip(t *testing.T) {
	p := NewHTMLProcessor()

	html := `<div class="wp-block-group"><!-- wp:heading --><h2 class="title">Fish &amp; Chips</h2>` +
		"\n  <p>It&#39;s   <a href=\"/menu\">our menu</a></p>\n" +
		`<p>Open daily</p><script>track();</script></div>`

	parsed, segments, _ := p.Extract(html)
	prepared, pm, err := p.Encode(parsed, segments)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// No translations at all restores every token's original markup
	out := p.Decode(prepared, pm, nil)
	if out != html {
		t.Errorf("round trip changed markup:\n got %q\nwant %q", out, html)
	}
}

func TestHTMLProcessor_RoundTrip_SourceBytes(t *testing.T) {
	p := NewHTMLProcessor()

	html := `<p>Caf&eacute; &amp; bar&nbsp;open</p><img src="a.jpg" alt=logo><br><p>&copy; 2024 Acme</p>`
	parsed, segments, _ := p.Extract(html)
	if len(segments) != 2 || segments[0].Text != "Café & bar\u00a0open" || segments[1].Text != "© 2024 Acme" {
		t.Fatalf("segments = %+v", segments)
	}
	prepared, pm, err := p.Encode(parsed, segments)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	want := `<p>` + wptl.PlaceholderToken(0) + `</p><img src="a.jpg" alt=logo><br><p>` + wptl.PlaceholderToken(1) + `</p>`
	if prepared != want {
		t.Errorf("prepared = %q, want %q", prepared, want)
	}
	if entry, _ := pm.Get(wptl.PlaceholderToken(0)); entry.Raw != "Caf&eacute; &amp; bar&nbsp;open" {
		t.Errorf("Raw = %q", entry.Raw)
	}

	// Translations equal to the source text give back the source bytes
	identity := make(map[string]string)
	for _, token := range pm.Tokens() {
		entry, _ := pm.Get(token)
		identity[token] = entry.Segment.Text
	}
	if out := p.Decode(prepared, pm, identity); out != html {
		t.Errorf("identity round trip:\n got %q\nwant %q", out, html)
	}
	if out := p.Decode(prepared, pm, nil); out != html {
		t.Errorf("untranslated round trip:\n got %q\nwant %q", out, html)
	}

	out := p.Decode(prepared, pm, map[string]string{wptl.PlaceholderToken(0): "Café & bar abierto"})
	if out != `<p>Café &amp; bar abierto</p><img src="a.jpg" alt=logo><br><p>&copy; 2024 Acme</p>` {
		t.Errorf("translated = %q", out)
	}
}

func TestHTMLProcessor_Encode_KeepsEdgeWhitespaceReferences(t *testing.T) {
	p := NewHTMLProcessor()

	parsed, segments, _ := p.Extract("<p>&nbsp; Hello there&#32;\n</p>")
	prepared, pm, _ := p.Encode(parsed, segments)

	if want := "<p>&nbsp; " + wptl.PlaceholderToken(0) + "&#32;\n</p>"; prepared != want {
		t.Errorf("prepared = %q, want %q", prepared, want)
	}
	if entry, _ := pm.Get(wptl.PlaceholderToken(0)); entry.Raw != "Hello there" {
		t.Errorf("Raw = %q", entry.Raw)
	}
}

func TestHTMLProcessor_Encode_RestructuredInputFallsBack(t *testing.T) {
	p := NewHTMLProcessor()

	// The stray end tag is dropped by the parser and both texts merge
	parsed, segments, _ := p.Extract(`<p>one</span>two</p>`)
	if len(segments) != 1 || segments[0].Text != "onetwo" {
		t.Fatalf("segments = %+v", segments)
	}
	prepared, pm, err := p.Encode(parsed, segments)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if prepared != "<p>"+wptl.PlaceholderToken(0)+"</p>" {
		t.Errorf("prepared = %q", prepared)
	}
	if out := p.Decode(prepared, pm, map[string]string{wptl.PlaceholderToken(0): "eins zwei"}); out != "<p>eins zwei</p>" {
		t.Errorf("Decode = %q", out)
	}
}

func TestHTMLProcessor_Encode_MixedKeepsSourceMarkup(t *testing.T) {
	p := NewHTMLProcessor()

	html := `<p>Read <a href=/docs class='x'>the&nbsp;docs</a><br/>now</p>`
	parsed, segments, _ := p.Extract(html)
	if len(segments) != 1 || !segments[0].Mixed {
		t.Fatalf("segments = %+v", segments)
	}
	prepared, pm, _ := p.Encode(parsed, segments)
	entry, _ := pm.Get(wptl.PlaceholderToken(0))
	if entry.Raw != `Read <a href=/docs class='x'>the&nbsp;docs</a><br/>now` {
		t.Errorf("Raw = %q", entry.Raw)
	}
	if out := p.Decode(prepared, pm, map[string]string{wptl.PlaceholderToken(0): entry.Segment.Text}); out != html {
		t.Errorf("identity round trip = %q", out)
	}
}

func TestHTMLProcessor_Decode_EscapesTranslations(t *testing.T) {
	p := NewHTMLProcessor()

	parsed, segments, _ := p.Extract(`<p>Terms</p>`)
	prepared, pm, _ := p.Encode(parsed, segments)

	out := p.Decode(prepared, pm, map[string]string{wptl.PlaceholderToken(0): "A <b> & C"})
	if out != "<p>A &lt;b&gt; &amp; C</p>" {
		t.Errorf("got %q", out)
	}
}

func TestHTMLProcessor_Decode_DoesNotRescan(t *testing.T) {
	p := NewHTMLProcessor()

	parsed, segments, _ := p.Extract(`<p>First one</p><p>Second one</p>`)
	prepared, pm, _ := p.Encode(parsed, segments)

	out := p.Decode(prepared, pm, map[string]string{
		wptl.PlaceholderToken(0): wptl.PlaceholderToken(1),
		wptl.PlaceholderToken(1): "Segundo",
	})
	want := "<p>" + wptl.PlaceholderToken(1) + "</p><p>Segundo</p>"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestHTMLProcessor_FullDocument(t *testing.T) {
	p := NewHTMLProcessor()

	html := `<!DOCTYPE html><html><head><title>Home page</title></head><body><p>Hello there</p></body></html>`
	parsed, segments, err := p.Extract(html)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("Expected 2 segments, got %d", len(segments))
	}
	if segments[1].Path != "body > p" {
		t.Errorf("Path = %q", segments[1].Path)
	}

	prepared, pm, _ := p.Encode(parsed, segments)
	if !strings.HasPrefix(prepared, "<!DOCTYPE html><html>") {
		t.Errorf("document structure lost: %q", prepared)
	}
	out := p.Decode(prepared, pm, nil)
	if out != html {
		t.Errorf("round trip changed document: %q", out)
	}
}

func TestHTMLProcessor_Encode_Twice(t *testing.T) {
	p := NewHTMLProcessor()

	parsed, segments, _ := p.Extract(`<p>Hello there</p>`)
	if _, _, err := p.Encode(parsed, segments); err != nil {
		t.Fatalf("first Encode failed: %v", err)
	}
	if _, _, err := p.Encode(parsed, segments); err == nil {
		t.Error("second Encode should fail")
	}
}

func TestHTMLProcessor_Encode_InvalidParsed(t *testing.T) {
	p := NewHTMLProcessor()

	_, _, err := p.Encode("not parsed", nil)
	var procErr *wptl.ProcessorError
	if !errors.As(err, &procErr) || procErr.ContentType != "html" {
		t.Errorf("expected html ProcessorError, got %v", err)
	}
}

func TestHTMLProcessor_Literal_LongestFirst(t *testing.T) {
	p := NewHTMLProcessor(WithStrategy(StrategyLiteral))

	html := `<h1>Contact us today</h1><p>Contact</p>`
	parsed, segments, _ := p.Extract(html)
	prepared, pm, err := p.Encode(parsed, segments)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	want := "<h1>" + wptl.PlaceholderToken(0) + "</h1><p>" + wptl.PlaceholderToken(1) + "</p>"
	if prepared != want {
		t.Errorf("prepared = %q, want %q", prepared, want)
	}
	if out := p.Decode(prepared, pm, nil); out != html {
		t.Errorf("round trip = %q", out)
	}
}

func TestHTMLProcessor_Literal_DropsUnmatched(t *testing.T) {
	p := NewHTMLProcessor(WithStrategy(StrategyLiteral))

	parsed, segments, _ := p.Extract(`<p>Hello <b>world</b></p><p>Plain text</p>`)
	prepared, pm, _ := p.Encode(parsed, segments)

	if len(pm.Dropped()) != 1 || pm.Dropped()[0].Text != "Hello world" {
		t.Errorf("Dropped = %+v", pm.Dropped())
	}
	if pm.Len() != 1 {
		t.Errorf("Expected 1 token, got %d", pm.Len())
	}
	if !strings.Contains(prepared, "Hello <b>world</b>") {
		t.Errorf("unmatched segment should stay untouched: %q", prepared)
	}
}

func TestHTMLProcessor_Literal_BoundaryAnchoring(t *testing.T) {
	html := `<a title="Home">Home</a>`

	p := NewHTMLProcessor(WithStrategy(StrategyLiteral))
	parsed, segments, _ := p.Extract(html)
	prepared, _, _ := p.Encode(parsed, segments)
	if strings.Count(prepared, wptl.PlaceholderToken(0)) != 2 {
		t.Errorf("unanchored match should also hit the attribute: %q", prepared)
	}

	p = NewHTMLProcessor(WithStrategy(StrategyLiteral), WithBoundaryAnchoring(true))
	parsed, segments, _ = p.Extract(html)
	prepared, _, _ = p.Encode(parsed, segments)
	want := `<a title="Home">` + wptl.PlaceholderToken(0) + `</a>`
	if prepared != want {
		t.Errorf("prepared = %q, want %q", prepared, want)
	}
}

func TestHTMLProcessor_Literal_SkipsTokens(t *testing.T) {
	p := NewHTMLProcessor(WithStrategy(StrategyLiteral))

	// "PLACEHOLDER" would otherwise match inside the first token
	parsed, segments, _ := p.Extract(`<p>A PLACEHOLDER here</p><p>PLACEHOLDER</p>`)
	prepared, pm, _ := p.Encode(parsed, segments)

	if got := wptl.FindPlaceholders(prepared); len(got) != 2 {
		t.Errorf("tokens = %v in %q", got, prepared)
	}
	if out := p.Decode(prepared, pm, nil); out != `<p>A PLACEHOLDER here</p><p>PLACEHOLDER</p>` {
		t.Errorf("round trip = %q", out)
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in   string
		want Strategy
		ok   bool
	}{
		{"", StrategyTree, true},
		{"tree", StrategyTree, true},
		{"literal", StrategyLiteral, true},
		{"regex", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseStrategy(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseStrategy(%q) = %q, %v", tt.in, got, ok)
		}
	}
}

func TestHiddenStyle(t *testing.T) {
	tests := map[string]bool{
		"display:none":                  true,
		"DISPLAY: None;":                true,
		"color: red; visibility:hidden": true,
		"display: flex":                 false,
		"":                              false,
		"visibility: visible":           false,
	}
	for style, want := range tests {
		if got := hiddenStyle(style); got != want {
			t.Errorf("hiddenStyle(%q) = %v, want %v", style, got, want)
		}
	}
}

func TestHTMLProcessor_ContentType(t *testing.T) {
	p := NewHTMLProcessor()
	if p.ContentType() != "html" {
		t.Errorf("Expected 'html', got %q", p.ContentType())
	}
}
