package extractor

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	longArticle := strings.Repeat("Condo prices in District 9 held steady this quarter. ", 60) +
		"Our site is served through Cloudflare. " +
		strings.Repeat("Buyers continue to favour units near MRT stations. ", 20)
	if len(longArticle) <= shortPageThreshold {
		t.Fatalf("test article too short: %d", len(longArticle))
	}

	tests := []struct {
		name  string
		title string
		body  string
		want  Verdict
	}{
		{"challenge title short body", "Just a moment...", "", Blocked},
		{"challenge title long body", "Just a moment...", longArticle, Blocked},
		{"title case-insensitive", "ACCESS DENIED", "", Blocked},
		{"attention required title", "Attention Required! | Cloudflare", "", Blocked},
		{"short body with keyword", "PropertyGuru", "Checking your browser before accessing the site.", Blocked},
		{"short body bot protection", "", "Bot Protection Detected", Blocked},
		{"long body mentioning cloudflare", "Market update", longArticle, Content},
		{"clean page", "3 Bedroom Condo for Sale", "Spacious unit with pool view.", Content},
		{"empty page", "", "", Content},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.title, tt.body); got != tt.want {
				t.Errorf("Classify(%q, body[%d]) = %v, want %v", tt.title, len(tt.body), got, tt.want)
			}
		})
	}
}

func TestVerdictString(t *testing.T) {
	if Blocked.String() != "blocked" || Content.String() != "content" {
		t.Errorf("unexpected verdict strings: %q %q", Blocked, Content)
	}
}
