package processor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/ZaguanLabs/xlitfix"
	"github.com/ZaguanLabs/xlitfix/script"
)

// skipAttr marks an element whose subtree must be left untouched.
const skipAttr = "data-no-transliterate"

// textAttrs are the element attributes whose values are corrected along with
// the text content.
var textAttrs = map[string]bool{
	"alt":         true,
	"title":       true,
	"placeholder": true,
	"aria-label":  true,
}

// HTMLProcessor extracts source-script text from HTML and applies corrections.
type HTMLProcessor struct {
	profile     script.Profile
	ignoredTags map[string]bool
}

// NewHTMLProcessor creates a new HTML processor with default ignored tags.
// Only text containing runes of the given script is extracted.
func NewHTMLProcessor(p script.Profile) *HTMLProcessor {
	return &HTMLProcessor{
		profile:     p,
		ignoredTags: xlitfix.IgnoredTags,
	}
}

// NewHTMLProcessorWithIgnoredTags creates a new HTML processor with custom ignored tags.
func NewHTMLProcessorWithIgnoredTags(p script.Profile, tags []string) *HTMLProcessor {
	ignored := make(map[string]bool)
	for _, tag := range tags {
		ignored[strings.ToLower(tag)] = true
	}
	return &HTMLProcessor{
		profile:     p,
		ignoredTags: ignored,
	}
}

// parsedHTML holds the parsed document.
type parsedHTML struct {
	doc *goquery.Document
}

// Extract parses HTML and extracts source-script text and attribute values.
func (p *HTMLProcessor) Extract(content string) (interface{}, []xlitfix.TextNode, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, nil, &xlitfix.ProcessorError{
			Message:     "failed to parse HTML",
			Cause:       err,
			ContentType: "html",
		}
	}

	var nodes []xlitfix.TextNode
	seenHashes := make(map[string]bool)

	add := func(text, nodeType string, meta map[string]string) {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" || !p.profile.Matches(trimmed) {
			return
		}
		hash := xlitfix.HashText(trimmed)

		// Deduplicate by hash
		if seenHashes[hash] {
			return
		}
		seenHashes[hash] = true

		nodes = append(nodes, xlitfix.TextNode{
			ID:       fmt.Sprintf("node-%d", len(nodes)),
			Text:     trimmed,
			Hash:     hash,
			NodeType: nodeType,
			Metadata: meta,
		})
	}

	p.walk(doc, func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			meta := map[string]string{}
			if n.Parent != nil {
				meta["parent_tag"] = n.Parent.Data
			}
			add(n.Data, "html_text", meta)
		case html.ElementNode:
			for _, attr := range n.Attr {
				if textAttrs[attr.Key] {
					add(attr.Val, "html_attr", map[string]string{
						"tag":       n.Data,
						"attribute": attr.Key,
					})
				}
			}
		}
	})

	return &parsedHTML{doc: doc}, nodes, nil
}

// Apply writes corrections, keyed by text hash, back into the document.
func (p *HTMLProcessor) Apply(parsed interface{}, nodes []xlitfix.TextNode, corrections map[string]string) (string, error) {
	ph, ok := parsed.(*parsedHTML)
	if !ok {
		return "", &xlitfix.ProcessorError{
			Message:     "invalid parsed content type",
			ContentType: "html",
		}
	}

	lookup := func(text string) (string, bool) {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return "", false
		}
		corrected, ok := corrections[xlitfix.HashText(trimmed)]
		return corrected, ok
	}

	p.walk(ph.doc, func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if corrected, ok := lookup(n.Data); ok {
				// Preserve original whitespace
				n.Data = preserveWhitespace(n.Data, corrected)
			}
		case html.ElementNode:
			for i, attr := range n.Attr {
				if !textAttrs[attr.Key] {
					continue
				}
				if corrected, ok := lookup(attr.Val); ok {
					n.Attr[i].Val = preserveWhitespace(attr.Val, corrected)
				}
			}
		}
	})

	out, err := ph.doc.Html()
	if err != nil {
		return "", &xlitfix.ProcessorError{
			Message:     "failed to serialize HTML",
			Cause:       err,
			ContentType: "html",
		}
	}

	return out, nil
}

// ContentType returns "html".
func (p *HTMLProcessor) ContentType() string {
	return "html"
}

// walk visits every node outside ignored and opted-out subtrees.
func (p *HTMLProcessor) walk(doc *goquery.Document, visit func(*html.Node)) {
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.ElementNode && p.skip(n) {
			return
		}
		visit(n)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}

	doc.Each(func(i int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			rec(n)
		}
	})
}

// skip reports whether an element's subtree is excluded from correction.
func (p *HTMLProcessor) skip(n *html.Node) bool {
	if p.ignoredTags[strings.ToLower(n.Data)] {
		return true
	}
	for _, attr := range n.Attr {
		if attr.Key == skipAttr || (attr.Key == "translate" && attr.Val == "no") {
			return true
		}
	}
	return false
}

// preserveWhitespace preserves the original leading/trailing whitespace.
func preserveWhitespace(original, corrected string) string {
	// Find leading whitespace
	leadingLen := len(original) - len(strings.TrimLeft(original, " \t\n\r"))
	leading := original[:leadingLen]

	// Find trailing whitespace
	trailingLen := len(original) - len(strings.TrimRight(original, " \t\n\r"))
	trailing := ""
	if trailingLen > 0 {
		trailing = original[len(original)-trailingLen:]
	}

	return leading + corrected + trailing
}

// Verify HTMLProcessor implements ContentProcessor
var _ ContentProcessor = (*HTMLProcessor)(nil)
