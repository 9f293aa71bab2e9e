package processor

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/ZaguanLabs/wptl"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLProcessor extracts visible text from HTML and swaps it for placeholder
// tokens so the markup survives translation untouched.
type HTMLProcessor struct {
	ignoredTags map[string]bool
	mixedTags   map[string]bool
	minLength   int
	strategy    Strategy
	anchored    bool
}

// HTMLOption configures an HTMLProcessor.
type HTMLOption func(*HTMLProcessor)

// WithStrategy selects the substitution strategy.
func WithStrategy(s Strategy) HTMLOption {
	return func(p *HTMLProcessor) {
		p.strategy = s
	}
}

// WithBoundaryAnchoring makes the literal strategy match a segment only when
// it is bounded by a tag edge or whitespace on both sides.
func WithBoundaryAnchoring(on bool) HTMLOption {
	return func(p *HTMLProcessor) {
		p.anchored = on
	}
}

// WithMinLength overrides the minimum segment length in runes.
func WithMinLength(n int) HTMLOption {
	return func(p *HTMLProcessor) {
		if n > 0 {
			p.minLength = n
		}
	}
}

// NewHTMLProcessor creates a new HTML processor with default ignored tags.
func NewHTMLProcessor(opts ...HTMLOption) *HTMLProcessor {
	p := &HTMLProcessor{
		ignoredTags: wptl.IgnoredTags,
		mixedTags:   wptl.MixedContentTags,
		minLength:   wptl.MinSegmentLength,
		strategy:    StrategyTree,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewHTMLProcessorWithIgnoredTags creates a new HTML processor with custom ignored tags.
func NewHTMLProcessorWithIgnoredTags(tags []string, opts ...HTMLOption) *HTMLProcessor {
	ignored := make(map[string]bool)
	for _, tag := range tags {
		ignored[strings.ToLower(tag)] = true
	}
	p := NewHTMLProcessor(opts...)
	p.ignoredTags = ignored
	return p
}

// Strategy returns the configured substitution strategy.
func (p *HTMLProcessor) Strategy() Strategy {
	return p.strategy
}

// parsedHTML holds the parsed tree and the node behind each segment.
type parsedHTML struct {
	source   string
	doc      *goquery.Document
	root     *html.Node
	fragment bool
	targets  []*html.Node // targets[i] produced segment i
	encoded  bool
}

// Extract parses HTML and returns its translatable segments in document order.
// Input without an <html> element or doctype is treated as a body fragment and
// is rendered back without added wrappers.
func (p *HTMLProcessor) Extract(content string) (interface{}, []TextSegment, error) {
	ph, err := parse(content)
	if err != nil {
		return nil, nil, &wptl.ProcessorError{
			Message:     "failed to parse HTML",
			Cause:       err,
			ContentType: "html",
		}
	}

	skip := p.hiddenNodes(ph.doc)
	var segments []TextSegment

	add := func(n *html.Node, text string, mixed bool) {
		if !p.acceptable(text) {
			return
		}
		segments = append(segments, TextSegment{
			ID:    len(segments),
			Text:  text,
			Path:  nodePath(n),
			Hash:  wptl.HashText(text),
			Mixed: mixed,
		})
		ph.targets = append(ph.targets, n)
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if p.ignoredTags[n.Data] || skip[n] {
				return
			}
			if p.isMixed(n, skip) {
				var b strings.Builder
				p.visibleText(n, skip, &b)
				add(n, strings.Join(strings.Fields(b.String()), " "), true)
				return
			}
		case html.TextNode:
			add(n, strings.TrimSpace(n.Data), false)
			return
		case html.CommentNode, html.DoctypeNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(ph.root)

	return ph, segments, nil
}

// Encode swaps every segment for a placeholder token and returns the prepared
// markup. Segments that cannot be placed are recorded as dropped. The parsed
// value is consumed: Encode may be called once per Extract.
func (p *HTMLProcessor) Encode(parsed interface{}, segments []TextSegment) (string, *PlaceholderMap, error) {
	ph, ok := parsed.(*parsedHTML)
	if !ok {
		return "", nil, &wptl.ProcessorError{
			Message:     "invalid parsed content type",
			ContentType: "html",
		}
	}
	if ph.encoded {
		return "", nil, &wptl.ProcessorError{
			Message:     "document already encoded",
			ContentType: "html",
		}
	}
	ph.encoded = true

	if p.strategy == StrategyLiteral {
		out, pm := p.encodeLiteral(ph.source, segments)
		return out, pm, nil
	}
	return p.encodeTree(ph, segments)
}

// encodeTree writes tokens into the source bytes so untouched markup comes
// back exactly as it was written. Input the parser restructured (misnested
// tags, foster-parented table text) goes through encodeRender instead.
func (p *HTMLProcessor) encodeTree(ph *parsedHTML, segments []TextSegment) (string, *PlaceholderMap, error) {
	if out, pm, ok := p.encodeSplice(ph, segments); ok {
		return out, pm, nil
	}
	return p.encodeRender(ph, segments)
}

// encodeRender swaps segments for tokens in the parsed tree and renders it.
// The result is equivalent markup, not the original bytes.
func (p *HTMLProcessor) encodeRender(ph *parsedHTML, segments []TextSegment) (string, *PlaceholderMap, error) {
	pm := wptl.NewPlaceholderMap()
	byKey := make(map[string]string)

	for _, seg := range segments {
		if seg.ID < 0 || seg.ID >= len(ph.targets) {
			pm.Drop(seg)
			continue
		}
		n := ph.targets[seg.ID]

		raw := html.EscapeString(seg.Text)
		if n.Type == html.ElementNode {
			inner, err := innerHTML(n)
			if err != nil {
				pm.Drop(seg)
				continue
			}
			raw = inner
		}

		key := seg.Text + "\x00" + raw
		token, ok := byKey[key]
		if !ok {
			token = wptl.PlaceholderToken(pm.Len())
			byKey[key] = token
			pm.Add(token, seg, raw)
		}

		if n.Type == html.TextNode {
			n.Data = preserveWhitespace(n.Data, token)
			continue
		}
		for c := n.FirstChild; c != nil; c = n.FirstChild {
			n.RemoveChild(c)
		}
		n.AppendChild(&html.Node{Type: html.TextNode, Data: token})
	}

	out, err := ph.render()
	if err != nil {
		return "", nil, &wptl.ProcessorError{
			Message:     "failed to serialize HTML",
			Cause:       err,
			ContentType: "html",
		}
	}
	return out, pm, nil
}

// encodeLiteral replaces segment text directly in the source, longest first so
// a segment that contains another is consumed before the shorter one runs.
func (p *HTMLProcessor) encodeLiteral(source string, segments []TextSegment) (string, *PlaceholderMap) {
	pm := wptl.NewPlaceholderMap()

	seen := make(map[string]bool)
	ordered := make([]TextSegment, 0, len(segments))
	for _, seg := range segments {
		if seen[seg.Text] {
			continue
		}
		seen[seg.Text] = true
		ordered = append(ordered, seg)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return utf8.RuneCountInString(ordered[i].Text) > utf8.RuneCountInString(ordered[j].Text)
	})

	out := source
	for _, seg := range ordered {
		token := wptl.PlaceholderToken(pm.Len())
		quoted := regexp.QuoteMeta(seg.Text)

		var re *regexp.Regexp
		repl := token
		if p.anchored {
			re = regexp.MustCompile(`(^|[>\s])` + quoted + `($|[<\s])`)
			repl = "${1}" + token + "${2}"
		} else {
			re = regexp.MustCompile(quoted)
		}

		next, n := replaceOutsideTokens(out, re, repl, p.anchored)
		if n == 0 {
			pm.Drop(seg)
			continue
		}
		out = next
		pm.Add(token, seg, seg.Text)
	}
	return out, pm
}

// replaceOutsideTokens applies re to the text between existing tokens only.
func replaceOutsideTokens(s string, re *regexp.Regexp, repl string, expand bool) (string, int) {
	var b strings.Builder
	count, last := 0, 0
	spans := append(wptl.PlaceholderSpans(s), []int{len(s), len(s)})

	for _, sp := range spans {
		gap := s[last:sp[0]]
		if m := re.FindAllStringIndex(gap, -1); len(m) > 0 {
			count += len(m)
			if expand {
				gap = re.ReplaceAllString(gap, repl)
			} else {
				gap = re.ReplaceAllLiteralString(gap, repl)
			}
		}
		b.WriteString(gap)
		b.WriteString(s[sp[0]:sp[1]])
		last = sp[1]
	}
	return b.String(), count
}

// Decode substitutes translations for tokens. A token without a translation,
// or whose translation is its own source text, gets back the markup it
// replaced, inner markup of mixed elements included.
func (p *HTMLProcessor) Decode(prepared string, pm *PlaceholderMap, translations map[string]string) string {
	return wptl.ReplacePlaceholders(prepared, func(token string) string {
		entry, known := pm.Get(token)
		t, ok := translations[token]
		switch {
		case ok && !(known && t == entry.Segment.Text):
			return html.EscapeString(t)
		case known:
			return entry.Raw
		}
		return token
	})
}

// ContentType returns "html".
func (p *HTMLProcessor) ContentType() string {
	return "html"
}

func (p *HTMLProcessor) acceptable(text string) bool {
	if utf8.RuneCountInString(text) < p.minLength {
		return false
	}
	for _, r := range text {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// isMixed reports whether n is a text-bearing element holding both direct
// text and child elements. An element with an ignored or hidden descendant is
// never mixed: collapsing it to one token would drop that descendant, so its
// children are visited one by one instead.
func (p *HTMLProcessor) isMixed(n *html.Node, skip map[*html.Node]bool) bool {
	if !p.mixedTags[n.Data] {
		return false
	}
	var text, elem bool
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				text = true
			}
		case html.ElementNode:
			if p.ignoredTags[c.Data] || skip[c] {
				return false
			}
			elem = true
		}
	}
	return text && elem && !p.holdsSkipped(n, skip)
}

// holdsSkipped reports whether any element below n is ignored or hidden.
func (p *HTMLProcessor) holdsSkipped(n *html.Node, skip map[*html.Node]bool) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if p.ignoredTags[c.Data] || skip[c] || p.holdsSkipped(c, skip) {
			return true
		}
	}
	return false
}

func (p *HTMLProcessor) visibleText(n *html.Node, skip map[*html.Node]bool, b *strings.Builder) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			b.WriteString(c.Data)
		case html.ElementNode:
			if p.ignoredTags[c.Data] || skip[c] {
				continue
			}
			if c.DataAtom == atom.Br {
				b.WriteByte(' ')
				continue
			}
			p.visibleText(c, skip, b)
		}
	}
}

// hiddenNodes collects elements that are hidden or opted out of translation.
func (p *HTMLProcessor) hiddenNodes(doc *goquery.Document) map[*html.Node]bool {
	skip := make(map[*html.Node]bool)
	mark := func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			skip[n] = true
		}
	}
	doc.Find("[data-no-translate], [hidden]").Each(mark)
	doc.Find("[style]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return hiddenStyle(s.AttrOr("style", ""))
	}).Each(mark)
	return skip
}

// hiddenStyle reports whether an inline style hides the element.
func hiddenStyle(style string) bool {
	for _, decl := range strings.Split(style, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(val), "!important")))
		switch {
		case prop == "display" && val == "none":
			return true
		case prop == "visibility" && val == "hidden":
			return true
		}
	}
	return false
}

// nodePath returns the element breadcrumb for n, e.g. "body > div > p".
func nodePath(n *html.Node) string {
	if n.Type == html.TextNode {
		n = n.Parent
	}
	var parts []string
	for ; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && n.DataAtom != atom.Html {
			parts = append(parts, n.Data)
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > ")
}

func parse(content string) (*parsedHTML, error) {
	if isDocument(content) {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
		if err != nil {
			return nil, err
		}
		return &parsedHTML{source: content, doc: doc, root: doc.Nodes[0]}, nil
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		body.AppendChild(n)
	}
	return &parsedHTML{
		source:   content,
		doc:      goquery.NewDocumentFromNode(body),
		root:     body,
		fragment: true,
	}, nil
}

func (ph *parsedHTML) render() (string, error) {
	if !ph.fragment {
		return ph.doc.Html()
	}
	return innerHTML(ph.root)
}

func innerHTML(n *html.Node) (string, error) {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func isDocument(content string) bool {
	head := strings.ToLower(strings.TrimSpace(content))
	return strings.HasPrefix(head, "<!doctype") || strings.Contains(head, "<html")
}

// preserveWhitespace keeps the original leading/trailing whitespace around replacement.
func preserveWhitespace(original, replacement string) string {
	trimmedLeft := strings.TrimLeftFunc(original, unicode.IsSpace)
	leading := original[:len(original)-len(trimmedLeft)]
	trailing := trimmedLeft[len(strings.TrimRightFunc(trimmedLeft, unicode.IsSpace)):]
	return leading + replacement + trailing
}

// Verify HTMLProcessor implements ContentProcessor
var _ ContentProcessor = (*HTMLProcessor)(nil)
