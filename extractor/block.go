package extractor

import (
	"strings"
	"unicode/utf8"
)

// Verdict is the result of classifying a fetched page.
type Verdict int

const (
	// Content means the page looks like a real listing page.
	Content Verdict = iota
	// Blocked means the page looks like a bot-challenge interstitial.
	Blocked
)

func (v Verdict) String() string {
	if v == Blocked {
		return "blocked"
	}
	return "content"
}

// shortPageThreshold is the body length (in characters) under which a
// keyword hit in the body is enough to call the page blocked. Challenge
// pages are short; a long article that mentions Cloudflare is not one.
const shortPageThreshold = 2000

// blockKeywords are matched case-insensitively against title and body.
var blockKeywords = []string{
	"just a moment",
	"access denied",
	"bot protection",
	"checking your browser",
	"attention required",
	"cloudflare",
}

// Classify decides whether a page with the given <title> and visible body
// text is a bot challenge.
//
// A keyword in the title is decisive regardless of length. A keyword in the
// body only counts when the body is shorter than shortPageThreshold.
func Classify(title, bodyText string) Verdict {
	if containsKeyword(title) {
		return Blocked
	}
	if utf8.RuneCountInString(bodyText) < shortPageThreshold && containsKeyword(bodyText) {
		return Blocked
	}
	return Content
}

func containsKeyword(s string) bool {
	if s == "" {
		return false
	}
	lower := strings.ToLower(s)
	for _, k := range blockKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
