package handler

import (
	"log/slog"
	"net/http"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/gin-gonic/gin"
	"github.com/use-agent/listingpress/models"
	"github.com/use-agent/listingpress/render"
)

// listingOrigin resolves relative links in generated Markdown.
const listingOrigin = "https://www.propertyguru.com.sg"

// Generate returns a handler for POST /api/generate.
//
// Flow:
//  1. Parse & validate request, apply defaults.
//  2. Fetch the listing through the fallback chain.
//  3. Write the article (placeholder or error article on LLM trouble).
//  4. Convert the article body to Markdown.
//  5. Append an inline gallery of the first embedLimit photos.
func Generate(src ListingSource, writer ArticleWriter, images ImageSource, conv *converter.Converter, embedLimit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		// ── 1. Parse request ────────────────────────────────────────
		var req models.GenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidInput(c, err.Error())
			return
		}
		req.Defaults()
		if !models.IsListingURL(req.URL) {
			invalidInput(c, "Invalid PropertyGuru URL")
			return
		}
		ctx := c.Request.Context()
		reqID := c.GetString("request_id")

		// ── 2. Fetch ────────────────────────────────────────────────
		res := src.FetchResult(ctx, req.URL)
		listing := res.Listing
		slog.Info("generate: listing fetched",
			"url", req.URL, "engine", res.Engine, "outcome", listing.Outcome(), "request_id", reqID)

		// ── 3. Write ────────────────────────────────────────────────
		article := writer.Write(ctx, listing, req.Mode)

		// ── 4. Markdown ─────────────────────────────────────────────
		markdown, err := render.ToMarkdown(conv, article.ContentHTML, listingOrigin)
		if err != nil {
			slog.Warn("generate: markdown conversion failed", "error", err, "request_id", reqID)
		}

		// ── 5. Gallery ──────────────────────────────────────────────
		slog.Info("generate: embedding images",
			"count", min(len(listing.Images), embedLimit), "request_id", reqID)
		gallery := render.Gallery(ctx, images, listing.Images, embedLimit)

		c.JSON(http.StatusOK, models.GenerateResponse{
			Title:           article.Title,
			ContentHTML:     article.ContentHTML + gallery,
			ContentMarkdown: markdown,
			Listing:         &listing,
		})
	}
}
