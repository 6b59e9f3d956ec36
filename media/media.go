// Package media downloads listing photos through a browser identity so the
// image CDN serves them, and keeps recent downloads in memory.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/use-agent/listingpress/cache"
	"github.com/use-agent/listingpress/engine"
)

// DefaultContentType is assumed when the CDN omits Content-Type.
const DefaultContentType = "image/jpeg"

var (
	// ErrInvalidURL is returned for anything but an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid image url")

	// ErrNotImage is returned when the origin answers with a non-image body.
	ErrNotImage = errors.New("response is not an image")
)

// Image is a downloaded picture.
type Image struct {
	Data        []byte
	ContentType string
}

// DataURI encodes the image as a base64 data URI.
func (img Image) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", img.ContentType, base64.StdEncoding.EncodeToString(img.Data))
}

// Fetcher downloads images. It is safe for concurrent use.
type Fetcher struct {
	engine engine.Engine
	cache  *cache.Cache[Image]
}

// NewFetcher creates a Fetcher over eng. c may be nil to disable caching.
func NewFetcher(eng engine.Engine, c *cache.Cache[Image]) *Fetcher {
	return &Fetcher{engine: eng, cache: c}
}

// New creates a Fetcher presenting the chrome120 identity with the given
// per-download timeout.
func New(timeout time.Duration, c *cache.Cache[Image]) *Fetcher {
	return NewFetcher(engine.NewImpersonateEngine(engine.Chrome120, timeout), c)
}

// Fetch downloads rawURL, serving from the cache when possible.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Image, error) {
	if err := ValidateURL(rawURL); err != nil {
		return Image{}, err
	}

	key := cache.Key("image", rawURL)
	if f.cache != nil {
		if img, ok := f.cache.Get(key); ok {
			return img, nil
		}
	}

	res, err := f.engine.Fetch(ctx, &engine.FetchRequest{URL: rawURL, Headers: imageHeaders()})
	if err != nil {
		return Image{}, err
	}

	ct := res.ContentType
	if ct == "" {
		ct = DefaultContentType
	}
	if !strings.HasPrefix(strings.ToLower(ct), "image/") {
		return Image{}, fmt.Errorf("%w: %s", ErrNotImage, ct)
	}

	img := Image{Data: res.Body, ContentType: ct}
	if f.cache != nil {
		f.cache.Set(key, img)
	}
	return img, nil
}

// ValidateURL accepts absolute http and https URLs only.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	return nil
}

func imageHeaders() map[string]string {
	return map[string]string{
		"Accept":          "image/avif,image/webp,image/apng,image/*,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
		"Referer":         "https://www.propertyguru.com.sg/",
	}
}
