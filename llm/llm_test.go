package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/use-agent/listingpress/config"
	"github.com/use-agent/listingpress/models"
)

func testClient(baseURL, key string) *Client {
	c := NewClient(config.LLMConfig{APIKey: key, BaseURL: baseURL, Model: "gemini-2.5-flash", Timeout: 5 * time.Second})
	c.http.RetryWaitMin = time.Millisecond
	c.http.RetryWaitMax = time.Millisecond
	return c
}

func TestClient_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer k" {
			t.Errorf("auth = %q", r.Header.Get("Authorization"))
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Model != "gemini-2.5-flash" || len(req.Messages) != 1 || req.Messages[0].Content != "hello" {
			t.Errorf("unexpected request: %+v", req)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"<p>hi</p>"}}]}`))
	}))
	defer srv.Close()

	out, err := testClient(srv.URL+"/", "k").Complete(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "<p>hi</p>" {
		t.Errorf("out = %q", out)
	}
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		status int
		body   string
		code   string
	}{
		{http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, models.ErrCodeLLMAuthFailure},
		{http.StatusTooManyRequests, `[{"error":{"message":"quota"}}]`, models.ErrCodeLLMRateLimited},
		{http.StatusBadRequest, `nope`, models.ErrCodeLLMFailure},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			_, _ = w.Write([]byte(tt.body))
		}))
		_, err := testClient(srv.URL, "k").Complete(context.Background(), "x")
		srv.Close()

		var apiErr *models.APIError
		if !errors.As(err, &apiErr) {
			t.Errorf("status %d: err = %v, want APIError", tt.status, err)
			continue
		}
		if apiErr.Code != tt.code {
			t.Errorf("status %d: code = %s, want %s", tt.status, apiErr.Code, tt.code)
		}
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	out, err := testClient(srv.URL, "k").Complete(context.Background(), "x")
	if err != nil || out != "ok" {
		t.Fatalf("out = %q, err = %v", out, err)
	}
	if hits.Load() != 2 {
		t.Errorf("hits = %d", hits.Load())
	}
}

// fakeCompleter records the prompt and returns a canned answer.
type fakeCompleter struct {
	configured bool
	out        string
	err        error
	prompt     string
}

func (f *fakeCompleter) Configured() bool { return f.configured }

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.out, f.err
}

var sampleListing = models.Listing{
	Title:       "Viva Vista",
	Price:       "SGD 1250000",
	Address:     "3 Kensington Park Road",
	Description: strings.Repeat("好", 2500),
	Images:      []string{},
}

func TestWriter_Success(t *testing.T) {
	fc := &fakeCompleter{configured: true, out: "```html\n<h2>亮点</h2><p>优质</p>\n```\nextra chatter"}
	art := NewWriter(fc).Write(context.Background(), sampleListing, models.ModeXHS)

	if art.Title != "Viva Vista" {
		t.Errorf("Title = %q", art.Title)
	}
	if art.ContentHTML != "<h2>亮点</h2><p>优质</p>" {
		t.Errorf("ContentHTML = %q", art.ContentHTML)
	}
	if !strings.Contains(fc.prompt, "小红书") {
		t.Error("xhs style missing from prompt")
	}
	if strings.Count(fc.prompt, "好") != maxDescriptionRunes {
		t.Errorf("description not truncated to %d runes", maxDescriptionRunes)
	}
}

func TestWriter_MissingKey(t *testing.T) {
	fc := &fakeCompleter{}
	art := NewWriter(fc).Write(context.Background(), sampleListing, models.ModeNote)
	if art.Title != "API Key Missing" {
		t.Errorf("Title = %q", art.Title)
	}
	if !strings.Contains(art.ContentHTML, "3 Kensington Park Road") || !strings.Contains(art.ContentHTML, "<pre>") {
		t.Errorf("placeholder should carry the listing JSON: %q", art.ContentHTML)
	}
	if fc.prompt != "" {
		t.Error("backend should not be called without a key")
	}
}

func TestWriter_Failure(t *testing.T) {
	fc := &fakeCompleter{configured: true, err: errors.New("quota <exceeded>")}
	art := NewWriter(fc).Write(context.Background(), models.NewListing(), models.ModeNote)
	if art.Title != models.DefaultTitle {
		t.Errorf("Title = %q", art.Title)
	}
	if art.ContentHTML != "<p>Oops! AI Generation failed: quota &lt;exceeded&gt;</p>" {
		t.Errorf("ContentHTML = %q", art.ContentHTML)
	}
}

func TestBuildPrompt_Modes(t *testing.T) {
	note := BuildPrompt(sampleListing, models.ModeNote)
	if !strings.Contains(note, "严禁使用任何Emoji") {
		t.Error("note style missing")
	}
	if BuildPrompt(sampleListing, "unknown") != note {
		t.Error("unknown mode should fall back to note")
	}
	for _, field := range []string{"Viva Vista", "SGD 1250000", "3 Kensington Park Road"} {
		if !strings.Contains(note, field) {
			t.Errorf("prompt missing %q", field)
		}
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<p>a</p>", "<p>a</p>"},
		{"  ```html\n<p>a</p>\n```  ", "<p>a</p>"},
		{"```\n<p>a</p>\n```", "<p>a</p>"},
		{"```html<p>a</p>```", "<p>a</p>"},
		{"<p>a</p>\n```\ntrailing", "<p>a</p>"},
	}
	for _, tt := range tests {
		if got := StripCodeFences(tt.in); got != tt.want {
			t.Errorf("StripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"ab", 1},
		{"abcdef", 2},
		{"新加坡公寓", 1},
		{"新加坡公寓出售", 2},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.in); got != tt.want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
