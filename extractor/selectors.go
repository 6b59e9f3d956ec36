package extractor

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Fallback selectors per field, most specific first. Compiled once.
var (
	titleSelectors = compileAll(
		`h1[da-id="property-title"]`,
		`h1.title`,
		`h1`,
	)
	priceSelectors = compileAll(
		`[data-automation-id="overview-price-txt"]`,
		`h2[da-id="price-amount"]`,
		`.amount`,
	)
	addressSelectors = compileAll(
		`.full-address__address`,
		`p[da-id="property-address"]`,
		`.address`,
	)
	descriptionSelectors = compileAll(
		`.listing-description`,
		`[da-id="description-widget"]`,
		`.description`,
	)

	ldJSONSelector = cascadia.MustCompile(`script[type="application/ld+json"]`)
	imageSelector  = cascadia.MustCompile(`img`)
)

func compileAll(selectors ...string) []cascadia.Selector {
	out := make([]cascadia.Selector, len(selectors))
	for i, s := range selectors {
		out[i] = cascadia.MustCompile(s)
	}
	return out
}

// firstText returns the text of the first candidate selector that matches an
// element with non-empty text.
func firstText(doc *goquery.Document, candidates []cascadia.Selector, text func(*goquery.Selection) string) string {
	for _, sel := range candidates {
		match := doc.FindMatcher(sel).First()
		if match.Length() == 0 {
			continue
		}
		if t := text(match); t != "" {
			return t
		}
	}
	return ""
}

// selectorOverlay resolves, from CSS selectors, only the fields that have
// not been set by an earlier stage.
func selectorOverlay(doc *goquery.Document, have overlay) overlay {
	var o overlay
	if have.title == "" {
		o.title = firstText(doc, titleSelectors, singleLineText)
	}
	if have.price == "" {
		o.price = firstText(doc, priceSelectors, singleLineText)
	}
	if have.address == "" {
		o.address = firstText(doc, addressSelectors, singleLineText)
	}
	if have.description == "" {
		o.description = firstText(doc, descriptionSelectors, multiLineText)
	}
	return o
}
