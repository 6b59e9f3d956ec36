package extractor

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/listingpress/models"
)

// imageCDNHost is the listing site's image CDN.
const imageCDNHost = "pgimgs.com"

// imageSourceAttrs is the order in which an <img>'s source is looked up.
var imageSourceAttrs = []string{"data-src", "src", "data-lazy"}

// imageExclusions mark icons, logos, avatars and other page chrome.
var imageExclusions = []string{
	"apho", "hui-svgicon", "logo", "avatar", "icon",
	"navbar-", "map-shortcut", "flags", "static",
}

// sizeTokenRe matches a size marker (".V550", ".R300X300") right before the
// file extension.
var sizeTokenRe = regexp.MustCompile(`(?i)\.(?:V\d+|R\d+X\d+)(\.(?:jpe?g|png|webp))`)

const highResToken = ".V800"

// NormalizeImages rewrites each URL to its high-resolution variant, drops
// duplicates (keeping the first occurrence) and caps the list at
// models.MaxImages. Applying it twice gives the same result as once.
func NormalizeImages(urls []string) []string {
	out := make([]string, 0, min(len(urls), models.MaxImages))
	seen := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if len(out) == models.MaxImages {
			break
		}
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		u = HighRes(u)
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// HighRes rewrites the size token of an image URL to the high-resolution
// one. URLs without a token are returned unchanged.
func HighRes(u string) string {
	return sizeTokenRe.ReplaceAllString(u, highResToken+"${1}")
}

// domImages collects listing photos from <img> elements: CDN-hosted, not
// page chrome.
func domImages(doc *goquery.Document) []string {
	var out []string
	doc.FindMatcher(imageSelector).Each(func(_ int, s *goquery.Selection) {
		src := imageSource(s)
		if src == "" || !onImageCDN(src) || isExcludedImage(src) {
			return
		}
		out = append(out, src)
	})
	return out
}

func imageSource(s *goquery.Selection) string {
	for _, attr := range imageSourceAttrs {
		if v, ok := s.Attr(attr); ok {
			if v = strings.TrimSpace(v); v != "" {
				return absoluteImageURL(v)
			}
		}
	}
	return ""
}

// absoluteImageURL gives protocol-relative URLs an https scheme.
func absoluteImageURL(src string) string {
	if strings.HasPrefix(src, "//") {
		return "https:" + src
	}
	return src
}

func onImageCDN(src string) bool {
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == imageCDNHost || strings.HasSuffix(host, "."+imageCDNHost)
}

func isExcludedImage(src string) bool {
	lower := strings.ToLower(src)
	for _, x := range imageExclusions {
		if strings.Contains(lower, x) {
			return true
		}
	}
	return false
}
