package api

import (
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/gin-gonic/gin"
	"github.com/use-agent/listingpress/api/handler"
	"github.com/use-agent/listingpress/api/middleware"
	"github.com/use-agent/listingpress/config"
)

// Deps are the services the routes are wired to.
type Deps struct {
	Listings handler.ListingSource
	Writer   handler.ArticleWriter
	Images   handler.ImageSource
	// Proxy serves /api/proxy-image; Images is used when nil.
	Proxy    handler.ImageSource
	Posters  handler.PosterRenderer
	Markdown *converter.Converter
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → RequestID → Logger → CORS
//	API:     RateLimit
//
// Health endpoints sit outside the rate limit so probes always work.
func NewRouter(deps Deps, cfg *config.Config, startTime time.Time, stop <-chan struct{}) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(gin.Logger())
	r.Use(middleware.CORS())

	health := handler.Health(startTime)
	r.GET("/health", health)

	apiGroup := r.Group("/api")
	apiGroup.GET("/health", health)

	limited := apiGroup.Group("")
	limited.Use(middleware.RateLimit(cfg.RateLimit, stop))

	limited.POST("/generate", handler.Generate(deps.Listings, deps.Writer, deps.Images, deps.Markdown, cfg.Media.EmbedImages))
	limited.POST("/scrape", handler.Scrape(deps.Listings))
	proxy := deps.Proxy
	if proxy == nil {
		proxy = deps.Images
	}
	limited.GET("/proxy-image", handler.ProxyImage(proxy))
	limited.POST("/generate-poster", handler.Poster(deps.Posters))

	return r
}
