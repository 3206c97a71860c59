package news

import (
	"strings"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ContentBlockClass marks the article body on Yahoo Finance article pages.
const ContentBlockClass = "atoms-wrapper"

// ContentExtractor pulls the primary readable text block out of an article
// page. A page without the marker element is a soft miss, not an error.
type ContentExtractor struct {
	markerClass         string
	readabilityFallback bool
}

func NewContentExtractor(markerClass string, readabilityFallback bool) *ContentExtractor {
	if markerClass == "" {
		markerClass = ContentBlockClass
	}
	return &ContentExtractor{
		markerClass:         markerClass,
		readabilityFallback: readabilityFallback,
	}
}

// Extract returns the whitespace-collapsed text of the first element carrying
// the marker class. ok is false when nothing usable was found.
func (e *ContentExtractor) Extract(document string) (text string, ok bool) {
	defer func() {
		if recover() != nil {
			text, ok = "", false
		}
	}()

	if strings.TrimSpace(document) == "" {
		return "", false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return "", false
	}

	block := doc.Find("." + e.markerClass).First()
	if block.Length() > 0 {
		block.Find("script, style, noscript").Remove()
		if text := selectionText(block); text != "" {
			return text, true
		}
	}

	if e.readabilityFallback {
		return readableText(document)
	}
	return "", false
}

func readableText(document string) (string, bool) {
	article, err := readability.FromReader(strings.NewReader(document), nil)
	if err != nil {
		return "", false
	}
	var buf strings.Builder
	if err := article.RenderText(&buf); err != nil {
		return "", false
	}
	text := collapseWhitespace(buf.String())
	return text, text != ""
}

// htmlToText flattens an HTML fragment to collapsed plain text.
func htmlToText(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return collapseWhitespace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript").Remove()
	return selectionText(doc.Selection)
}

// selectionText joins every text node under sel with single spaces so that
// adjacent block elements do not run together.
func selectionText(sel *goquery.Selection) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return collapseWhitespace(strings.Join(parts, " "))
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
