package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/use-agent/listingpress/models"
)

// maxDescriptionRunes bounds the listing description placed in the prompt.
const maxDescriptionRunes = 2000

// Completer is the text-generation backend used by Writer.
type Completer interface {
	Configured() bool
	Complete(ctx context.Context, prompt string) (string, error)
}

// Writer turns a listing into a marketing article.
type Writer struct {
	llm Completer
}

// NewWriter creates a Writer backed by llm.
func NewWriter(llm Completer) *Writer {
	return &Writer{llm: llm}
}

// Write generates an article for listing in the given style mode. It
// never fails: a missing key yields a placeholder carrying the listing
// data, and a backend error yields an article describing the failure.
func (w *Writer) Write(ctx context.Context, listing models.Listing, mode string) models.Article {
	if !w.llm.Configured() {
		slog.Warn("llm: api key missing, returning placeholder article")
		return placeholderArticle(listing)
	}

	prompt := BuildPrompt(listing, mode)
	slog.Debug("llm: generating article", "mode", mode, "promptTokens", EstimateTokens(prompt))

	out, err := w.llm.Complete(ctx, prompt)
	if err != nil {
		slog.Error("llm: generation failed", "mode", mode, "error", err)
		return models.Article{
			Title:       titleOr(listing, "Error"),
			ContentHTML: "<p>Oops! AI Generation failed: " + html.EscapeString(err.Error()) + "</p>",
		}
	}

	return models.Article{
		Title:       titleOr(listing, "Generated Article"),
		ContentHTML: StripCodeFences(out),
	}
}

func placeholderArticle(listing models.Listing) models.Article {
	data, _ := json.MarshalIndent(listing, "", "  ")
	return models.Article{
		Title: "API Key Missing",
		ContentHTML: "<h3>[API Key Missing]</h3><p>Please set GEMINI_API_KEY in .env</p><pre>" +
			html.EscapeString(string(data)) + "</pre>",
	}
}

func titleOr(listing models.Listing, fallback string) string {
	if listing.Title != "" {
		return listing.Title
	}
	return fallback
}

// StripCodeFences removes a Markdown code fence the model may wrap its
// HTML in. Anything after a closing fence is dropped.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimLeft(s[3:], "abcdefghijklmnopqrstuvwxyz")
		}
	}
	if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

const styleXHS = `- 风格：小红书爆款风格。
- 语言：简体中文。
- 特点：标题极其吸引人，正文大量使用Emoji，分段清晰。
- 内容：突出房产的氛围感、生活方式、稀缺性。
- 结尾：添加相关标签，如 #新加坡生活 #新加坡房产 #留学新加坡 等。`

const styleNote = `- 风格：专业、干练、高端。
- 语言：简体中文。
- 特点：严禁使用任何Emoji图标，使用清晰的列表和段落。
- 内容：突出房产的核心价值、地段优势、投资回报率。
- 语气：自信、诚恳、专业顾问视角。`

// BuildPrompt renders the generation prompt for listing. Unknown modes use
// the professional note style.
func BuildPrompt(listing models.Listing, mode string) string {
	style := styleNote
	if mode == models.ModeXHS {
		style = styleXHS
	}

	return fmt.Sprintf(`你是一位顶级房地产投资顾问。请根据以下 PropertyGuru 房产提取的数据，写一篇极其诱人的房产介绍。

%s

目标读者：希望在新加坡置业的高端客户或投资者。

房产数据：
标题: %s
价格: %s
地址: %s
描述: %s

要求：
1. 使用 HTML 格式输出（仅限正文部分，可以使用 <h1>, <h2>, <p>, <ul>, <li>, <strong>）。
2. 结构整齐。
3. 不要包含 <html> 或 <body> 标签，也不要包含文章标题（因为前端会单独处理）。
4. 如果是小红书模式，标题要放在第一行。
5. 确保内容是简体中文。
`, style, listing.Title, listing.Price, listing.Address, listing.DescriptionExcerpt(maxDescriptionRunes))
}
