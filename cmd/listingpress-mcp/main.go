package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// apiError mirrors the error object returned by the ListingPress API.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// listing mirrors the scraped listing record.
type listing struct {
	Title       string   `json:"title"`
	Price       string   `json:"price"`
	Address     string   `json:"address"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
}

// scrapeResponse mirrors POST /api/scrape.
type scrapeResponse struct {
	Success bool      `json:"success"`
	Outcome string    `json:"outcome"`
	Listing *listing  `json:"listing"`
	Error   *apiError `json:"error"`
}

// generateResponse mirrors POST /api/generate.
type generateResponse struct {
	Title           string    `json:"title"`
	ContentHTML     string    `json:"content_html"`
	ContentMarkdown string    `json:"content_markdown"`
	Error           *apiError `json:"error"`
}

func main() {
	apiURL := os.Getenv("LISTINGPRESS_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8000"
	}
	apiURL = strings.TrimRight(apiURL, "/")

	s := server.NewMCPServer(
		"listingpress",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	scrapeTool := mcp.NewTool("scrape_listing",
		mcp.WithDescription("Scrape a PropertyGuru Singapore listing and return its title, price, address, description and photo URLs. Falls back to a headless browser when the site blocks plain HTTP clients."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The PropertyGuru listing URL"),
		),
	)
	s.AddTool(scrapeTool, handleScrapeListing(apiURL))

	generateTool := mcp.NewTool("generate_article",
		mcp.WithDescription("Scrape a PropertyGuru listing and write a Chinese social-media article about it. Returns the article as Markdown."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The PropertyGuru listing URL"),
		),
		mcp.WithString("mode",
			mcp.Description("Article style: 'note' (default, professional) or 'xhs' (Xiaohongshu, with emoji)"),
			mcp.Enum("note", "xhs"),
		),
	)
	s.AddTool(generateTool, handleGenerateArticle(apiURL))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the ListingPress API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func handleScrapeListing(apiURL string) server.ToolHandlerFunc {
	// The browser fallback alone can take a minute and a half.
	client := &http.Client{Timeout: 180 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		respBody, err := apiPost(ctx, client, apiURL, "/api/scrape", map[string]string{"url": url})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var resp scrapeResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if resp.Listing == nil {
			return mcp.NewToolResultError(errorText(resp.Error, "scrape failed")), nil
		}
		if !resp.Success {
			return mcp.NewToolResultError(fmt.Sprintf("%s (outcome: %s)", errorText(resp.Error, "no listing content"), resp.Outcome)), nil
		}

		return mcp.NewToolResultText(formatListing(resp.Listing)), nil
	}
}

func handleGenerateArticle(apiURL string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 300 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}
		payload := map[string]string{"url": url}
		if mode := request.GetString("mode", ""); mode != "" {
			payload["mode"] = mode
		}

		respBody, err := apiPost(ctx, client, apiURL, "/api/generate", payload)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var resp generateResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if resp.Error != nil {
			return mcp.NewToolResultError(errorText(resp.Error, "generation failed")), nil
		}

		content := resp.ContentMarkdown
		if content == "" {
			content = resp.ContentHTML
		}
		return mcp.NewToolResultText(fmt.Sprintf("# %s\n\n%s", resp.Title, content)), nil
	}
}

func errorText(e *apiError, fallback string) string {
	if e == nil {
		return fallback
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func formatListing(l *listing) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\nPrice: %s\nAddress: %s\n", l.Title, l.Price, l.Address)
	if l.Description != "" {
		fmt.Fprintf(&sb, "\nDescription:\n%s\n", l.Description)
	}
	if len(l.Images) > 0 {
		fmt.Fprintf(&sb, "\nImages (%d):\n", len(l.Images))
		for _, img := range l.Images {
			sb.WriteString(img + "\n")
		}
	}
	return sb.String()
}
