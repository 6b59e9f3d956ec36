package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/listingpress/media"
	"github.com/use-agent/listingpress/models"
	"github.com/use-agent/listingpress/scraper"
)

// ListingSource fetches and extracts one listing.
type ListingSource interface {
	FetchResult(ctx context.Context, rawURL string) scraper.Result
}

// ArticleWriter turns a listing into an article.
type ArticleWriter interface {
	Write(ctx context.Context, listing models.Listing, mode string) models.Article
}

// ImageSource downloads one image.
type ImageSource interface {
	Fetch(ctx context.Context, rawURL string) (media.Image, error)
}

// PosterRenderer screenshots an article poster.
type PosterRenderer interface {
	Render(ctx context.Context, title, body string) ([]byte, error)
}

// respondError maps an APIError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error) {
	var apiErr *models.APIError
	if !errors.As(err, &apiErr) {
		apiErr = models.NewAPIError(models.ErrCodeInternal, err.Error(), err)
	}
	c.JSON(mapErrorToStatus(apiErr), models.ErrorResponse{Error: apiErr.ToDetail()})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.APIError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeImageFetchFailed, models.ErrCodeScrapeBlocked,
		models.ErrCodeLLMFailure, models.ErrCodeLLMAuthFailure, models.ErrCodeLLMRateLimited:
		return http.StatusBadGateway // 502
	default:
		return http.StatusInternalServerError // 500
	}
}

func invalidInput(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: &models.ErrorDetail{Code: models.ErrCodeInvalidInput, Message: msg},
	})
}
