package models

import (
	"errors"
	"testing"
)

func TestListingOutcome(t *testing.T) {
	tests := []struct {
		name    string
		listing Listing
		want    Outcome
	}{
		{"defaults", NewListing(), OutcomeEmpty},
		{"blocked", BlockedListing(), OutcomeBlocked},
		{"blocked prefix only", Listing{Title: BlockedPrefix + " Just a moment"}, OutcomeBlocked},
		{"render failed", RenderFailedListing(), OutcomeRenderFailed},
		{"content", Listing{Title: "The Sail @ Marina Bay", Price: DefaultPrice}, OutcomeContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.listing.Outcome(); got != tt.want {
				t.Errorf("Outcome() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSentinelListingsHaveNoImages(t *testing.T) {
	for _, l := range []Listing{NewListing(), BlockedListing(), RenderFailedListing()} {
		if l.Images == nil || len(l.Images) != 0 {
			t.Errorf("%q: Images = %#v, want empty non-nil slice", l.Title, l.Images)
		}
	}
}

func TestDescriptionExcerpt(t *testing.T) {
	l := Listing{Description: "近地铁站的公寓"}
	if got := l.DescriptionExcerpt(3); got != "近地铁" {
		t.Errorf("excerpt = %q", got)
	}
	if got := l.DescriptionExcerpt(100); got != l.Description {
		t.Errorf("short description should be returned whole, got %q", got)
	}
}

func TestIsListingURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.propertyguru.com.sg/listing/for-sale-the-sail-24937291", true},
		{"http://propertyguru.com.sg/listing/1", true},
		{"  https://www.PropertyGuru.com.sg/listing/1  ", true},
		{"https://www.99.co/singapore/sale/property/1", false},
		{"ftp://www.propertyguru.com.sg/listing/1", false},
		{"www.propertyguru.com.sg/listing/1", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsListingURL(tt.url); got != tt.want {
			t.Errorf("IsListingURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestGenerateRequestDefaults(t *testing.T) {
	req := GenerateRequest{URL: "https://www.propertyguru.com.sg/listing/1"}
	req.Defaults()
	if req.Mode != ModeNote {
		t.Errorf("Mode = %q, want %q", req.Mode, ModeNote)
	}

	req = GenerateRequest{Mode: ModeXHS}
	req.Defaults()
	if req.Mode != ModeXHS {
		t.Errorf("explicit mode overwritten: %q", req.Mode)
	}
}

func TestAPIError(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := NewAPIError(ErrCodeImageFetchFailed, "Could not proxy image", cause)

	if !errors.Is(err, cause) {
		t.Error("APIError should unwrap to its cause")
	}
	if got := err.Error(); got != "IMAGE_FETCH_FAILED: Could not proxy image: dial tcp: timeout" {
		t.Errorf("Error() = %q", got)
	}
	d := err.ToDetail()
	if d.Code != ErrCodeImageFetchFailed || d.Message != "Could not proxy image" {
		t.Errorf("ToDetail() = %+v", d)
	}
}
