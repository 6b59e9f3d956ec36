package models

import "strings"

// Sentinel values carried by a Listing. Callers inspect the title to tell a
// real listing from a failed scrape.
const (
	DefaultTitle = "No Title"
	DefaultPrice = "Price on ask"

	// BlockedPrefix marks a listing produced from a bot-challenge page.
	BlockedPrefix = "[BLOCKED]"
	BlockedTitle  = BlockedPrefix + " Bot Protection Detected"

	// RenderFailedTitle is returned when the browser fallback itself failed.
	RenderFailedTitle = "Error: Scraper blocked"

	// MaxImages caps the number of image URLs kept on a listing.
	MaxImages = 20
)

// Outcome classifies a Listing.
type Outcome string

const (
	OutcomeContent      Outcome = "content"
	OutcomeEmpty        Outcome = "empty"
	OutcomeBlocked      Outcome = "blocked"
	OutcomeRenderFailed Outcome = "render_failed"
)

// Listing is the structured record extracted from one listing page.
// It is built once per extraction and owned by the caller afterwards.
type Listing struct {
	Title       string   `json:"title"`
	Price       string   `json:"price"`
	Address     string   `json:"address"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
}

// NewListing returns a listing holding the default sentinels.
func NewListing() Listing {
	return Listing{
		Title:  DefaultTitle,
		Price:  DefaultPrice,
		Images: []string{},
	}
}

// BlockedListing returns the record for a page classified as a bot challenge.
func BlockedListing() Listing {
	return Listing{Title: BlockedTitle, Images: []string{}}
}

// RenderFailedListing returns the terminal record used when every strategy,
// including the browser fallback, failed outright.
func RenderFailedListing() Listing {
	return Listing{Title: RenderFailedTitle, Images: []string{}}
}

// Outcome reports which of the four listing shapes l is.
func (l Listing) Outcome() Outcome {
	switch {
	case strings.HasPrefix(l.Title, BlockedPrefix):
		return OutcomeBlocked
	case l.Title == RenderFailedTitle:
		return OutcomeRenderFailed
	case l.Title == DefaultTitle:
		return OutcomeEmpty
	default:
		return OutcomeContent
	}
}

// DescriptionExcerpt returns at most n runes of the description.
func (l Listing) DescriptionExcerpt(n int) string {
	r := []rune(l.Description)
	if len(r) <= n {
		return l.Description
	}
	return string(r[:n])
}
