// Package extractor turns a fetched listing page into a models.Listing.
//
// Extraction runs in stages over an already-parsed document and never
// performs I/O:
//
//  1. Block check   – bot-challenge pages short-circuit to the blocked record.
//  2. JSON-LD       – structured listing data, authoritative when present.
//  3. CSS selectors – per-field fallback for whatever JSON-LD left unset.
//  4. Images        – JSON-LD images plus CDN <img> sources, normalized.
//
// Each stage yields an overlay holding only the fields it resolved; overlays
// are merged left to right and the first writer of a field wins.
package extractor

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/listingpress/models"
)

// overlay is the partial listing produced by one extraction stage.
type overlay struct {
	title       string
	price       string
	address     string
	description string
	images      []string
}

// merge combines overlays left to right. Text fields keep the first
// non-empty value; images accumulate in order.
func merge(overlays ...overlay) overlay {
	var out overlay
	for _, o := range overlays {
		if out.title == "" {
			out.title = o.title
		}
		if out.price == "" {
			out.price = o.price
		}
		if out.address == "" {
			out.address = o.address
		}
		if out.description == "" {
			out.description = o.description
		}
		out.images = append(out.images, o.images...)
	}
	return out
}

// listing materializes the overlay, filling unset fields with the defaults.
func (o overlay) listing() models.Listing {
	l := models.NewListing()
	if o.title != "" {
		l.Title = o.title
	}
	if o.price != "" {
		l.Price = o.price
	}
	l.Address = o.address
	l.Description = o.description
	l.Images = NormalizeImages(o.images)
	return l
}

// Extract builds a Listing from a parsed page.
func Extract(doc *goquery.Document) models.Listing {
	if Classify(pageTitle(doc), visibleText(doc)) == Blocked {
		return models.BlockedListing()
	}

	structured := structuredOverlay(doc)
	fields := merge(structured, selectorOverlay(doc, structured))
	images := overlay{images: domImages(doc)}

	return merge(fields, images).listing()
}

// ExtractHTML parses raw HTML and runs Extract on it.
func ExtractHTML(rawHTML string) (models.Listing, error) {
	return ExtractReader(strings.NewReader(rawHTML))
}

// ExtractReader parses HTML from r and runs Extract on it.
func ExtractReader(r io.Reader) (models.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return models.Listing{}, fmt.Errorf("extractor: parse html: %w", err)
	}
	return Extract(doc), nil
}
