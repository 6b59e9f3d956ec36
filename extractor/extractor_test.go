package extractor

import (
	"reflect"
	"strings"
	"testing"

	"github.com/use-agent/listingpress/models"
)

const listingPage = `<!DOCTYPE html>
<html><head><title>For Sale - Viva Vista | PropertyGuru Singapore</title>
<script type="application/ld+json">{ this is not json }</script>
<script type="application/ld+json">
{"@context":"https://schema.org","@type":"BreadcrumbList","name":"Breadcrumbs"}
</script>
<script type="application/ld+json">
[{"@type":"RealEstateListing","name":"Unit A","description":"Corner unit with greenery view.",
  "offers":{"@type":"Offer","price":1250000,"priceCurrency":"SGD"},
  "spatialCoverage":{"@type":"Place","address":{"@type":"PostalAddress","streetAddress":"3 Kensington Park Road"}},
  "image":["https://sg1-p.pgimgs.com/listing/1/UPHO.1.V550.jpg","https://sg1-p.pgimgs.com/listing/1/UPHO.2.V550.jpg"]}]
</script>
<script type="application/ld+json">
{"@type":"Product","name":"Unit C","description":"ignored","image":"https://sg1-p.pgimgs.com/listing/1/UPHO.3.V550.jpg"}
</script>
</head><body>
<h1 da-id="property-title">Unit B</h1>
<div data-automation-id="overview-price-txt">S$ 9,999</div>
<div class="full-address__address">Somewhere Else</div>
<img src="https://sg1-p.pgimgs.com/listing/1/UPHO.2.V550.jpg">
<img data-src="//sg1-p.pgimgs.com/listing/1/UPHO.4.R300X300.png" src="/img/placeholder.gif">
<img src="https://sg1-p.pgimgs.com/logo/agency-logo.png">
<img src="https://sg1-p.pgimgs.com/agent/avatar.jpg">
<img src="https://www.google.com/maps/marker.png">
<img>
</body></html>`

func TestExtract_StructuredDataWins(t *testing.T) {
	got, err := ExtractHTML(listingPage)
	if err != nil {
		t.Fatalf("ExtractHTML: %v", err)
	}

	want := models.Listing{
		Title:       "Unit A",
		Price:       "SGD 1250000",
		Address:     "3 Kensington Park Road",
		Description: "Corner unit with greenery view.",
		Images: []string{
			"https://sg1-p.pgimgs.com/listing/1/UPHO.1.V800.jpg",
			"https://sg1-p.pgimgs.com/listing/1/UPHO.2.V800.jpg",
			"https://sg1-p.pgimgs.com/listing/1/UPHO.3.V800.jpg",
			"https://sg1-p.pgimgs.com/listing/1/UPHO.4.V800.png",
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() =\n %+v\nwant\n %+v", got, want)
	}
	if got.Outcome() != models.OutcomeContent {
		t.Errorf("Outcome() = %s, want content", got.Outcome())
	}
}

func TestExtract_SelectorFallback(t *testing.T) {
	page := `<html><head><title>Listing</title>
<script type="application/ld+json">{"@type":"RealEstateListing","name":"From JSON-LD"}</script>
</head><body>
<h1 class="title">Ignored</h1>
<h2 da-id="price-amount">  S$  1,800,000  </h2>
<p da-id="property-address">12  Marine   Parade</p>
<div class="listing-description"><p>Line one.</p><p>Line  two.<br>Line three.</p></div>
</body></html>`

	got, err := ExtractHTML(page)
	if err != nil {
		t.Fatalf("ExtractHTML: %v", err)
	}
	if got.Title != "From JSON-LD" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Price != "S$ 1,800,000" {
		t.Errorf("Price = %q", got.Price)
	}
	if got.Address != "12 Marine Parade" {
		t.Errorf("Address = %q", got.Address)
	}
	if got.Description != "Line one.\nLine  two.\nLine three." {
		t.Errorf("Description = %q", got.Description)
	}
	if len(got.Images) != 0 {
		t.Errorf("Images = %v, want none", got.Images)
	}
}

func TestExtract_SelectorPriorityOverDocumentOrder(t *testing.T) {
	page := `<html><body>
<h1>Generic heading</h1>
<h1 da-id="property-title">Specific title</h1>
<span class="amount"></span>
<span class="amount">S$ 3,000 /mo</span>
</body></html>`

	got, _ := ExtractHTML(page)
	if got.Title != "Specific title" {
		t.Errorf("Title = %q, want the attribute-based match", got.Title)
	}
	// First .amount is empty; the candidate list moves on and nothing else
	// matches, so the sentinel stays.
	if got.Price != models.DefaultPrice {
		t.Errorf("Price = %q, want %q", got.Price, models.DefaultPrice)
	}
}

func TestExtract_BlockedPageLeaksNothing(t *testing.T) {
	pages := []string{
		`<html><head><title>Just a moment...</title>
<script type="application/ld+json">{"@type":"RealEstateListing","name":"Unit A","offers":{"price":1}}</script>
</head><body><h1>Unit A</h1><img src="https://sg1-p.pgimgs.com/listing/1/a.V550.jpg">` +
			strings.Repeat("<p>filler text to make the page long</p>", 200) + `</body></html>`,
		`<html><head><title>PropertyGuru</title></head><body>
<h1>Access denied</h1><p>You don't have permission.</p>
<img src="https://sg1-p.pgimgs.com/listing/1/a.V550.jpg"></body></html>`,
	}

	for i, page := range pages {
		got, err := ExtractHTML(page)
		if err != nil {
			t.Fatalf("case %d: ExtractHTML: %v", i, err)
		}
		if got.Title != models.BlockedTitle {
			t.Errorf("case %d: Title = %q, want blocked sentinel", i, got.Title)
		}
		if got.Price != "" || got.Address != "" || got.Description != "" || len(got.Images) != 0 {
			t.Errorf("case %d: blocked listing leaked fields: %+v", i, got)
		}
		if got.Outcome() != models.OutcomeBlocked {
			t.Errorf("case %d: Outcome() = %s", i, got.Outcome())
		}
	}
}

func TestExtract_EmptyPage(t *testing.T) {
	got, err := ExtractHTML(`<html><head><title>Home</title></head><body><p>Nothing here.</p></body></html>`)
	if err != nil {
		t.Fatalf("ExtractHTML: %v", err)
	}
	if got.Title != models.DefaultTitle || got.Price != models.DefaultPrice {
		t.Errorf("defaults not kept: %+v", got)
	}
	if got.Images == nil {
		t.Error("Images should be an empty slice, not nil")
	}
	if got.Outcome() != models.OutcomeEmpty {
		t.Errorf("Outcome() = %s, want empty", got.Outcome())
	}
}

func TestParseBlock(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
		want []overlay
	}{
		{"malformed", `{"@type":`, false, nil},
		{"unrelated type", `{"@type":"Organization","name":"PropertyGuru"}`, true, nil},
		{
			"type list and address string",
			`{"@type":["Apartment","Offer"],"name":"Unit","address":"1 Road","offers":[{"price":"2500"}]}`,
			true,
			[]overlay{{title: "Unit", address: "1 Road", price: "SGD 2500"}},
		},
		{
			"graph container and image object",
			`{"@context":"https://schema.org","@graph":[{"@type":"WebPage"},{"@type":"Accommodation","name":"Room","image":{"@type":"ImageObject","url":"https://x.pgimgs.com/1.jpg"}}]}`,
			true,
			[]overlay{{title: "Room", images: []string{"https://x.pgimgs.com/1.jpg"}}},
		},
		{
			"offer without amount",
			`{"@type":"Product","name":"P","offers":{"priceCurrency":"USD"}}`,
			true,
			[]overlay{{title: "P"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseBlock(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseBlock() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMerge_FirstWriterWins(t *testing.T) {
	got := merge(
		overlay{title: "first", images: []string{"a"}},
		overlay{title: "second", price: "SGD 1", images: []string{"b"}},
		overlay{price: "SGD 2", description: "d"},
	)
	want := overlay{title: "first", price: "SGD 1", description: "d", images: []string{"a", "b"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("merge() = %+v, want %+v", got, want)
	}
}
