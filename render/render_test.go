package render

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/use-agent/listingpress/media"
)

// fakeSource serves a one-byte image for every URL except those marked bad.
type fakeSource struct {
	mu    sync.Mutex
	bad   map[string]bool
	calls []string
}

func (f *fakeSource) Fetch(_ context.Context, rawURL string) (media.Image, error) {
	f.mu.Lock()
	f.calls = append(f.calls, rawURL)
	f.mu.Unlock()
	if f.bad[rawURL] {
		return media.Image{}, errors.New("403")
	}
	return media.Image{Data: []byte(rawURL[len(rawURL)-1:]), ContentType: "image/jpeg"}, nil
}

func TestGallery_OrderLimitAndFailures(t *testing.T) {
	src := &fakeSource{bad: map[string]bool{"https://x/2": true}}
	urls := []string{"https://x/1", "https://x/2", "https://x/3", "https://x/4", "https://x/5", "https://x/6"}

	out := Gallery(context.Background(), src, urls, 5)

	if len(src.calls) != 5 {
		t.Errorf("downloads = %d, want 5", len(src.calls))
	}
	if !strings.HasPrefix(out, `<div class="gallery"`) || !strings.HasSuffix(out, "</div>") {
		t.Errorf("unexpected wrapper: %q", out)
	}
	if n := strings.Count(out, "<img "); n != 4 {
		t.Errorf("images = %d, want 4", n)
	}
	// "1", "3", "4", "5" base64-encoded, in order.
	order := []string{"data:image/jpeg;base64,MQ==", "data:image/jpeg;base64,Mw==", "data:image/jpeg;base64,NA==", "data:image/jpeg;base64,NQ=="}
	last := -1
	for _, d := range order {
		idx := strings.Index(out, d)
		if idx < 0 {
			t.Fatalf("missing %s in %q", d, out)
		}
		if idx < last {
			t.Errorf("%s out of order", d)
		}
		last = idx
	}
}

func TestGallery_Empty(t *testing.T) {
	out := Gallery(context.Background(), &fakeSource{}, nil, 5)
	if out != `<div class="gallery" style="margin-top: 20px;"></div>` {
		t.Errorf("out = %q", out)
	}
}

func TestPosterHTML(t *testing.T) {
	doc, err := PosterHTML(`Viva <Vista>`, `<h2>亮点</h2><p>Near MRT</p>`)
	if err != nil {
		t.Fatalf("PosterHTML: %v", err)
	}
	if !strings.Contains(doc, "<h1>Viva &lt;Vista&gt;</h1>") {
		t.Error("title should be escaped")
	}
	if !strings.Contains(doc, "<h2>亮点</h2><p>Near MRT</p>") {
		t.Error("body should be inserted verbatim")
	}
	if !strings.Contains(doc, "width: 375px") {
		t.Error("poster width missing")
	}
}

func TestToMarkdown(t *testing.T) {
	md, err := ToMarkdown(NewMarkdownConverter(), `<h2>Highlights</h2><ul><li>Pool</li><li>Gym</li></ul><p><strong>Freehold</strong></p>`, "")
	if err != nil {
		t.Fatalf("ToMarkdown: %v", err)
	}
	for _, want := range []string{"## Highlights", "- Pool", "- Gym", "**Freehold**"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}
