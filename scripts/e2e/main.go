// Command e2e probes a running ListingPress deployment: health, article
// generation for one listing, then a poster render of that article.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

var (
	apiURL  = flag.String("api-url", "http://localhost:8000", "ListingPress API base URL")
	listing = flag.String("url", "https://www.propertyguru.com.sg/listing/for-sale-the-sail-marina-bay-24937291", "Listing to generate from")
	mode    = flag.String("mode", "note", "Article style: note or xhs")
	poster  = flag.String("poster", "poster.png", "Where to write the rendered poster")
)

type generateResponse struct {
	Title       string `json:"title"`
	ContentHTML string `json:"content_html"`
	Listing     *struct {
		Title  string   `json:"title"`
		Images []string `json:"images"`
	} `json:"listing"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	flag.Parse()
	client := &http.Client{Timeout: 5 * time.Minute}
	failed := false

	// ── 1. Health ───────────────────────────────────────────────────
	start := time.Now()
	resp, err := client.Get(*apiURL + "/api/health")
	if err != nil {
		fatalf("health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		fatalf("health: status %d", resp.StatusCode)
	}
	fmt.Printf("[ok]   health (%s)\n", time.Since(start).Round(time.Millisecond))

	// ── 2. Generate ─────────────────────────────────────────────────
	start = time.Now()
	body, status, err := postJSON(client, "/api/generate", map[string]string{"url": *listing, "mode": *mode})
	if err != nil {
		fatalf("generate: %v", err)
	}
	if status != http.StatusOK {
		fatalf("generate: status %d: %s", status, body)
	}
	var gen generateResponse
	if err := json.Unmarshal(body, &gen); err != nil {
		fatalf("generate: decode: %v", err)
	}
	fmt.Printf("[ok]   generate %q (%s, %d bytes html)\n", gen.Title, time.Since(start).Round(time.Millisecond), len(gen.ContentHTML))
	if gen.Listing != nil {
		fmt.Printf("       listing title %q, %d images\n", gen.Listing.Title, len(gen.Listing.Images))
		if len(gen.Listing.Images) == 0 {
			fmt.Println("[warn] listing has no images")
		}
	}
	if !bytes.Contains([]byte(gen.ContentHTML), []byte(`class="gallery"`)) {
		fmt.Println("[fail] generated html has no gallery block")
		failed = true
	}

	// ── 3. Poster ───────────────────────────────────────────────────
	start = time.Now()
	png, status, err := postJSON(client, "/api/generate-poster", map[string]string{"html": gen.ContentHTML, "title": gen.Title})
	if err != nil {
		fatalf("poster: %v", err)
	}
	if status != http.StatusOK || !bytes.HasPrefix(png, []byte("\x89PNG")) {
		fmt.Printf("[fail] poster: status %d\n", status)
		failed = true
	} else {
		if err := os.WriteFile(*poster, png, 0644); err != nil {
			fatalf("poster: write: %v", err)
		}
		fmt.Printf("[ok]   poster %s (%s, %d bytes)\n", *poster, time.Since(start).Round(time.Millisecond), len(png))
	}

	if failed {
		os.Exit(1)
	}
}

func postJSON(client *http.Client, path string, payload interface{}) ([]byte, int, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}
	resp, err := client.Post(*apiURL+path, "application/json", bytes.NewReader(b))
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	return body, resp.StatusCode, err
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[fail] "+format+"\n", args...)
	os.Exit(1)
}
