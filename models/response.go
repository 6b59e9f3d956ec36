package models

// Article is the generated post, ready for the editor.
type Article struct {
	Title       string `json:"title"`
	ContentHTML string `json:"content_html"`
}

// GenerateResponse is the response for POST /api/generate.
type GenerateResponse struct {
	Title       string `json:"title"`
	ContentHTML string `json:"content_html"`

	// ContentMarkdown is ContentHTML converted to Markdown, without the
	// embedded image gallery.
	ContentMarkdown string `json:"content_markdown,omitempty"`

	// Listing is the scraped record the article was written from.
	Listing *Listing `json:"listing,omitempty"`

	// Error is populated only on failure.
	Error *ErrorDetail `json:"error,omitempty"`
}

// ScrapeResponse is the response for POST /api/scrape.
type ScrapeResponse struct {
	Success bool         `json:"success"`
	Outcome Outcome      `json:"outcome,omitempty"`
	Listing *Listing     `json:"listing,omitempty"`
	Timing  TimingInfo   `json:"timing"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}

// ErrorResponse is the body of a failed request on endpoints that have no
// richer response type.
type ErrorResponse struct {
	Error *ErrorDetail `json:"error"`
}
