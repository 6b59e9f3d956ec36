package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/listingpress/models"
)

// Poster returns a handler for POST /api/generate-poster. The response is
// a PNG of the article laid out as a phone-width poster.
func Poster(renderer PosterRenderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.PosterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidInput(c, err.Error())
			return
		}

		png, err := renderer.Render(c.Request.Context(), req.Title, req.HTML)
		if err != nil {
			slog.Error("poster render failed", "error", err, "request_id", c.GetString("request_id"))
			respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	}
}
