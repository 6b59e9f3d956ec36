package render

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"

	"github.com/use-agent/listingpress/media"
	"golang.org/x/sync/errgroup"
)

// ImageSource downloads one image.
type ImageSource interface {
	Fetch(ctx context.Context, rawURL string) (media.Image, error)
}

// galleryConcurrency bounds parallel image downloads for one gallery.
const galleryConcurrency = 3

var galleryTmpl = template.Must(template.New("gallery").Parse(
	`<div class="gallery" style="margin-top: 20px;">` +
		`{{range .}}<p style="text-align: center; margin-bottom: 20px;">` +
		`<img src="{{.}}" alt="Property Image" style="max-width: 100%; border-radius: 8px; display: block; margin: 0 auto;" width="600" />` +
		`</p>{{end}}</div>`))

// Gallery downloads up to limit of urls and returns them as an HTML block
// of inline data-URI images, in input order. Images that fail to
// download are left out.
func Gallery(ctx context.Context, src ImageSource, urls []string, limit int) string {
	if limit >= 0 && len(urls) > limit {
		urls = urls[:limit]
	}

	embedded := make([]template.URL, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(galleryConcurrency)
	for i, u := range urls {
		g.Go(func() error {
			img, err := src.Fetch(gctx, u)
			if err != nil {
				slog.Warn("gallery: image skipped", "url", u, "error", err)
				return nil
			}
			embedded[i] = template.URL(img.DataURI())
			return nil
		})
	}
	_ = g.Wait()

	kept := embedded[:0]
	for _, e := range embedded {
		if e != "" {
			kept = append(kept, e)
		}
	}

	var buf bytes.Buffer
	if err := galleryTmpl.Execute(&buf, kept); err != nil {
		slog.Error("gallery: render failed", "error", err)
		return ""
	}
	return buf.String()
}
