package extractor

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/use-agent/listingpress/models"
)

func TestHighRes(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://sg1-p.pgimgs.com/listing/1/photo.V550.jpg", "https://sg1-p.pgimgs.com/listing/1/photo.V800.jpg"},
		{"https://sg1-p.pgimgs.com/listing/1/photo.R300X300.png", "https://sg1-p.pgimgs.com/listing/1/photo.V800.png"},
		{"https://sg1-p.pgimgs.com/listing/1/photo.V800.jpg", "https://sg1-p.pgimgs.com/listing/1/photo.V800.jpg"},
		{"https://sg1-p.pgimgs.com/listing/1/photo.jpg", "https://sg1-p.pgimgs.com/listing/1/photo.jpg"},
		{"https://sg1-p.pgimgs.com/listing/1/photo.V550.gif", "https://sg1-p.pgimgs.com/listing/1/photo.V550.gif"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := HighRes(tt.in); got != tt.want {
			t.Errorf("HighRes(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeImages_DedupeAndOrder(t *testing.T) {
	in := []string{
		"https://cdn.pgimgs.com/b.V550.jpg",
		"https://cdn.pgimgs.com/a.jpg",
		"https://cdn.pgimgs.com/b.V800.jpg", // same as the first after rewriting
		"",
		"https://cdn.pgimgs.com/a.jpg",
		"https://cdn.pgimgs.com/c.R100X100.png",
	}
	want := []string{
		"https://cdn.pgimgs.com/b.V800.jpg",
		"https://cdn.pgimgs.com/a.jpg",
		"https://cdn.pgimgs.com/c.V800.png",
	}
	got := NormalizeImages(in)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeImages() = %v, want %v", got, want)
	}
}

func TestNormalizeImages_Cap(t *testing.T) {
	var in []string
	for i := 0; i < 50; i++ {
		in = append(in, fmt.Sprintf("https://cdn.pgimgs.com/%d.V550.jpg", i))
		in = append(in, fmt.Sprintf("https://cdn.pgimgs.com/%d.V550.jpg", i))
	}
	got := NormalizeImages(in)
	if len(got) != models.MaxImages {
		t.Fatalf("len = %d, want %d", len(got), models.MaxImages)
	}
	if got[0] != "https://cdn.pgimgs.com/0.V800.jpg" || got[19] != "https://cdn.pgimgs.com/19.V800.jpg" {
		t.Errorf("unexpected order: first=%q last=%q", got[0], got[19])
	}
}

func TestNormalizeImages_Idempotent(t *testing.T) {
	inputs := [][]string{
		nil,
		{"https://cdn.pgimgs.com/x.V550.jpg", "https://cdn.pgimgs.com/x.V800.jpg"},
		{"https://cdn.pgimgs.com/a.v550.JPG", "https://cdn.pgimgs.com/a.V550.V300.jpg", "plain"},
	}
	var many []string
	for i := 0; i < 30; i++ {
		many = append(many, fmt.Sprintf("https://cdn.pgimgs.com/%d.R%dX%d.png", i%7, i, i))
	}
	inputs = append(inputs, many)

	for i, in := range inputs {
		once := NormalizeImages(in)
		twice := NormalizeImages(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("case %d: not idempotent:\n once  %v\n twice %v", i, once, twice)
		}
		seen := map[string]bool{}
		for _, u := range once {
			if seen[u] {
				t.Errorf("case %d: duplicate %q", i, u)
			}
			seen[u] = true
		}
		if len(once) > models.MaxImages {
			t.Errorf("case %d: %d entries exceeds cap", i, len(once))
		}
	}
}

func TestIsExcludedImage(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"https://sg1-p.pgimgs.com/logo/agency.png", true},
		{"https://sg1-p.pgimgs.com/agent/avatar.V550.jpg", true},
		{"https://sg1-static.pgimgs.com/hui/icons/bed.svg", true},
		{"https://sg1-p.pgimgs.com/APHO/123.jpg", true},
		{"https://sg1-p.pgimgs.com/listing/500010094/UPHO.1.V550.jpg", false},
	}
	for _, tt := range tests {
		if got := isExcludedImage(tt.src); got != tt.want {
			t.Errorf("isExcludedImage(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestOnImageCDN(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"https://sg1-p.pgimgs.com/listing/1.jpg", true},
		{"https://pgimgs.com/listing/1.jpg", true},
		{"https://notpgimgs.com/listing/1.jpg", false},
		{"https://example.com/pgimgs.com/1.jpg", false},
		{"/relative/1.jpg", false},
	}
	for _, tt := range tests {
		if got := onImageCDN(tt.src); got != tt.want {
			t.Errorf("onImageCDN(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}
