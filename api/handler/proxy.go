package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/listingpress/media"
	"github.com/use-agent/listingpress/models"
)

// ProxyImage returns a handler for GET /api/proxy-image?url=.
//
// Editors that hotlink listing photos get blocked by the CDN, so the image
// is fetched server-side with a browser identity and relayed.
func ProxyImage(images ImageSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawURL := c.Query("url")
		if rawURL == "" {
			invalidInput(c, "url query parameter is required")
			return
		}

		img, err := images.Fetch(c.Request.Context(), rawURL)
		if err != nil {
			if errors.Is(err, media.ErrInvalidURL) {
				invalidInput(c, err.Error())
				return
			}
			slog.Warn("proxy-image failed", "url", rawURL, "error", err, "request_id", c.GetString("request_id"))
			respondError(c, models.NewAPIError(models.ErrCodeImageFetchFailed, "Could not proxy image", err))
			return
		}

		c.Header("Cache-Control", "max-age=31536000")
		c.Data(http.StatusOK, img.ContentType, img.Data)
	}
}
