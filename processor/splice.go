package processor

import (
	"io"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ZaguanLabs/wptl"
	"golang.org/x/net/html"
)

// maxRefLen bounds the length of a character reference, "&...;" included.
const maxRefLen = 40

// sourceToken is one tokenizer token and the bytes it spans in the source.
type sourceToken struct {
	typ        html.TokenType
	name       string // Lowercase tag name for tag tokens
	text       string // Unescaped text for text tokens
	start, end int
}

// splicer maps parsed text nodes back onto the source bytes they were read
// from, so placeholders can be written into the original markup instead of
// a re-rendered tree.
type splicer struct {
	src    string
	toks   []sourceToken
	textAt map[*html.Node]int // Non-blank text node to its token index
}

// newSplicer tokenizes src and pairs every non-blank text node under root
// with a non-blank text token, in order. It fails when the parser moved,
// merged or split text so the two sequences no longer line up.
func newSplicer(src string, root *html.Node) (*splicer, bool) {
	toks, ok := tokenizeSource(src)
	if !ok {
		return nil, false
	}

	var texts []int
	for i, t := range toks {
		if t.typ == html.TextToken && strings.TrimSpace(t.text) != "" {
			texts = append(texts, i)
		}
	}

	s := &splicer{src: src, toks: toks, textAt: make(map[*html.Node]int, len(texts))}
	next := 0
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.TextNode {
			want := strings.TrimSpace(n.Data)
			if want == "" {
				return true
			}
			if next >= len(texts) || strings.TrimSpace(toks[texts[next]].text) != want {
				return false
			}
			s.textAt[n] = texts[next]
			next++
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	if !walk(root) || next != len(texts) {
		return nil, false
	}
	return s, true
}

func tokenizeSource(src string) ([]sourceToken, bool) {
	z := html.NewTokenizer(strings.NewReader(src))
	var toks []sourceToken
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return toks, z.Err() == io.EOF && offset == len(src)
		}
		n := len(z.Raw())
		tok := sourceToken{typ: tt, start: offset, end: offset + n}
		offset += n

		switch tt {
		case html.TextToken:
			tok.text = string(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tok.name = string(name)
		}
		toks = append(toks, tok)
	}
}

// textSpan returns the source bytes of text node n without the surrounding
// whitespace. The bytes must decode to exactly the trimmed node text.
func (s *splicer) textSpan(n *html.Node) (int, int, bool) {
	i, ok := s.textAt[n]
	if !ok {
		return 0, 0, false
	}
	start, end := trimRawSpace(s.src, s.toks[i].start, s.toks[i].end)
	if decodeRaw(s.src[start:end]) != strings.TrimSpace(n.Data) {
		return 0, 0, false
	}
	return start, end, true
}

// innerSpan returns the source bytes between the start and end tag of
// element n. The span must hold exactly the text tokens of n's subtree.
func (s *splicer) innerSpan(n *html.Node) (int, int, bool) {
	var idx []int
	var collect func(*html.Node)
	collect = func(c *html.Node) {
		if i, ok := s.textAt[c]; ok {
			idx = append(idx, i)
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			collect(cc)
		}
	}
	collect(n)
	if len(idx) == 0 {
		return 0, 0, false
	}

	open := -1
	for i := idx[0] - 1; i >= 0; i-- {
		if t := s.toks[i]; t.typ == html.StartTagToken && t.name == n.Data {
			open = i
			break
		}
	}
	if open < 0 {
		return 0, 0, false
	}

	closing, depth := -1, 1
	for i := open + 1; i < len(s.toks) && closing < 0; i++ {
		t := s.toks[i]
		if t.name != n.Data {
			continue
		}
		switch t.typ {
		case html.StartTagToken:
			depth++
		case html.EndTagToken:
			if depth--; depth == 0 {
				closing = i
			}
		}
	}
	if closing < 0 {
		return 0, 0, false
	}

	k := 0
	for i := open + 1; i < closing; i++ {
		t := s.toks[i]
		if t.typ != html.TextToken || strings.TrimSpace(t.text) == "" {
			continue
		}
		if k >= len(idx) || idx[k] != i {
			return 0, 0, false
		}
		k++
	}
	if k != len(idx) {
		return 0, 0, false
	}
	return s.toks[open].end, s.toks[closing].start, true
}

// trimRawSpace narrows src[start:end] past leading and trailing whitespace,
// whitespace written as a character reference such as &nbsp; included.
func trimRawSpace(src string, start, end int) (int, int) {
	for start < end {
		r, size := utf8.DecodeRuneInString(src[start:end])
		if unicode.IsSpace(r) {
			start += size
			continue
		}
		if r == '&' {
			semi := strings.IndexByte(src[start:end], ';')
			if semi > 0 && semi < maxRefLen && isSpaceRef(src[start:start+semi+1]) {
				start += semi + 1
				continue
			}
		}
		break
	}
	for start < end {
		r, size := utf8.DecodeLastRuneInString(src[start:end])
		if unicode.IsSpace(r) {
			end -= size
			continue
		}
		if r == ';' {
			amp := strings.LastIndexByte(src[start:end-1], '&')
			if amp >= 0 && end-(start+amp) <= maxRefLen && isSpaceRef(src[start+amp:end]) {
				end = start + amp
				continue
			}
		}
		break
	}
	return start, end
}

func isSpaceRef(ref string) bool {
	s := html.UnescapeString(ref)
	return s != ref && strings.TrimSpace(s) == ""
}

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// decodeRaw unescapes raw text the way the tokenizer does.
func decodeRaw(raw string) string {
	return html.UnescapeString(newlines.Replace(raw))
}

// encodeSplice replaces each segment's source bytes with its token. It
// reports false, leaving ph untouched, when any segment cannot be located.
func (p *HTMLProcessor) encodeSplice(ph *parsedHTML, segments []TextSegment) (string, *PlaceholderMap, bool) {
	s, ok := newSplicer(ph.source, ph.root)
	if !ok {
		return "", nil, false
	}

	type edit struct {
		start, end int
		token      string
	}
	pm := wptl.NewPlaceholderMap()
	byKey := make(map[string]string)
	var edits []edit

	for _, seg := range segments {
		if seg.ID < 0 || seg.ID >= len(ph.targets) {
			pm.Drop(seg)
			continue
		}
		n := ph.targets[seg.ID]

		var start, end int
		if n.Type == html.TextNode {
			start, end, ok = s.textSpan(n)
		} else {
			start, end, ok = s.innerSpan(n)
		}
		if !ok {
			return "", nil, false
		}

		raw := ph.source[start:end]
		key := seg.Text + "\x00" + raw
		token, seen := byKey[key]
		if !seen {
			token = wptl.PlaceholderToken(pm.Len())
			byKey[key] = token
			pm.Add(token, seg, raw)
		}
		edits = append(edits, edit{start: start, end: end, token: token})
	}

	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	var b strings.Builder
	b.Grow(len(ph.source))
	last := 0
	for _, e := range edits {
		if e.start < last {
			return "", nil, false
		}
		b.WriteString(ph.source[last:e.start])
		b.WriteString(e.token)
		last = e.end
	}
	b.WriteString(ph.source[last:])
	return b.String(), pm, true
}
