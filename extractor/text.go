package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// textParts walks the selection's nodes and returns every non-blank text
// node, trimmed, in document order. Script, style and noscript content is
// skipped.
func textParts(sel *goquery.Selection) []string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return parts
}

// singleLineText returns the selection's text with all whitespace runs
// collapsed to one space.
func singleLineText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(strings.Join(textParts(sel), " ")), " ")
}

// multiLineText returns the selection's text nodes joined by newlines, so
// paragraph and <br> boundaries survive.
func multiLineText(sel *goquery.Selection) string {
	return strings.Join(textParts(sel), "\n")
}

// pageTitle returns the document's <title> text.
func pageTitle(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// visibleText returns the visible body text used by the block heuristic.
func visibleText(doc *goquery.Document) string {
	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	return strings.Join(textParts(body), " ")
}
