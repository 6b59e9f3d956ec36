package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/listingpress/models"
)

// Scrape returns a handler for POST /api/scrape.
//
// The fetch chain never fails outright, so the response is always 200;
// Success and Outcome tell the caller whether a real listing came back.
func Scrape(src ListingSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidInput(c, err.Error())
			return
		}
		if !models.IsListingURL(req.URL) {
			invalidInput(c, "Invalid PropertyGuru URL")
			return
		}

		// ── 2. Fetch ────────────────────────────────────────────────
		res := src.FetchResult(c.Request.Context(), req.URL)
		listing := res.Listing
		outcome := listing.Outcome()

		slog.Info("scrape finished",
			"url", req.URL,
			"engine", res.Engine,
			"outcome", outcome,
			"request_id", c.GetString("request_id"),
		)

		// ── 3. Respond ──────────────────────────────────────────────
		resp := models.ScrapeResponse{
			Success: outcome == models.OutcomeContent,
			Outcome: outcome,
			Listing: &listing,
			Timing:  models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()},
		}
		switch outcome {
		case models.OutcomeBlocked:
			resp.Error = &models.ErrorDetail{Code: models.ErrCodeScrapeBlocked, Message: "bot protection detected on every strategy"}
		case models.OutcomeRenderFailed:
			resp.Error = &models.ErrorDetail{Code: models.ErrCodeRenderFailed, Message: "browser fallback failed"}
		}
		c.JSON(http.StatusOK, resp)
	}
}
