package extractor

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// defaultCurrency is used when an offer carries a price but no currency.
const defaultCurrency = "SGD"

// listingTypes are the JSON-LD @type values that describe the listed unit.
var listingTypes = map[string]struct{}{
	"RealEstateListing":     {},
	"Product":               {},
	"Accommodation":         {},
	"Apartment":             {},
	"House":                 {},
	"SingleFamilyResidence": {},
	"Residence":             {},
}

// structuredOverlay scans every JSON-LD block in the document and merges the
// listing items it finds, first writer wins. Blocks that fail to parse are
// skipped: partial structured data is normal on real pages.
func structuredOverlay(doc *goquery.Document) overlay {
	var found []overlay
	doc.FindMatcher(ldJSONSelector).Each(func(_ int, s *goquery.Selection) {
		items, ok := parseBlock(s.Text())
		if !ok {
			return
		}
		found = append(found, items...)
	})
	return merge(found...)
}

// parseBlock decodes one JSON-LD block and returns an overlay per listing
// item in it. ok is false when the block is not valid JSON.
func parseBlock(raw string) (items []overlay, ok bool) {
	dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(raw)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	for _, item := range ldItems(v) {
		if !isListingType(item["@type"]) {
			continue
		}
		items = append(items, itemOverlay(item))
	}
	return items, true
}

// ldItems flattens a decoded block into its candidate objects: a single
// object, a top-level array, or the members of an @graph container.
func ldItems(v any) []map[string]any {
	var out []map[string]any
	switch t := v.(type) {
	case map[string]any:
		out = append(out, t)
		if graph, ok := t["@graph"].([]any); ok {
			for _, g := range graph {
				if m, ok := g.(map[string]any); ok {
					out = append(out, m)
				}
			}
		}
	case []any:
		for _, e := range t {
			if m, ok := e.(map[string]any); ok {
				out = append(out, m)
			}
		}
	}
	return out
}

func isListingType(v any) bool {
	switch t := v.(type) {
	case string:
		_, ok := listingTypes[t]
		return ok
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok {
				if _, hit := listingTypes[s]; hit {
					return true
				}
			}
		}
	}
	return false
}

func itemOverlay(item map[string]any) overlay {
	o := overlay{
		title:       scalarString(item["name"]),
		description: scalarString(item["description"]),
		price:       offerPrice(item["offers"]),
		images:      imageURLs(item["image"]),
	}
	for _, key := range []string{"spatialCoverage", "address"} {
		if addr := streetAddress(item[key], 0); addr != "" {
			o.address = addr
			break
		}
	}
	return o
}

// offerPrice formats an Offer (or the first of a list of offers) as
// "<currency> <amount>". It returns "" when there is no amount.
func offerPrice(v any) string {
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return ""
		}
		v = list[0]
	}
	offer, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	amount := scalarString(offer["price"])
	if amount == "" {
		return ""
	}
	currency := scalarString(offer["priceCurrency"])
	if currency == "" {
		currency = defaultCurrency
	}
	return currency + " " + amount
}

// streetAddress digs a street address out of a Place or PostalAddress,
// following nested "address" fields a couple of levels deep.
func streetAddress(v any, depth int) string {
	if depth > 2 {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		if s := scalarString(t["streetAddress"]); s != "" {
			return s
		}
		return streetAddress(t["address"], depth+1)
	}
	return ""
}

// imageURLs accepts a URL string, an ImageObject, or a list of either.
func imageURLs(v any) []string {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
	case map[string]any:
		if s := scalarString(t["url"]); s != "" {
			return []string{s}
		}
		if s := scalarString(t["contentUrl"]); s != "" {
			return []string{s}
		}
	case []any:
		var out []string
		for _, e := range t {
			out = append(out, imageURLs(e)...)
		}
		return out
	}
	return nil
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}
