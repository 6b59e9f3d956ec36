package engine

import (
	tls "github.com/refraction-networking/utls"
)

// Identity is a browser fingerprint presented at both the TLS and the
// HTTP header layer.
type Identity struct {
	Name      string
	UserAgent string
	Hello     tls.ClientHelloID
}

var (
	SafariIOS16_5 = Identity{
		Name:      "safari_ios_16_5",
		UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 16_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.5 Mobile/15E148 Safari/604.1",
		Hello:     tls.HelloIOS_14,
	}
	Chrome120 = Identity{
		Name:      "chrome120",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Hello:     tls.HelloChrome_120,
	}
	Safari15_5 = Identity{
		Name:      "safari15_5",
		UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.5 Safari/605.1.15",
		Hello:     tls.HelloSafari_16_0,
	}
	Chrome110 = Identity{
		Name:      "chrome110",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/110.0.0.0 Safari/537.36",
		Hello:     tls.HelloChrome_102,
	}
)

// DefaultIdentities returns the impersonation order used by the scraper.
// Mobile Safari goes first; it is the least challenged profile.
func DefaultIdentities() []Identity {
	return []Identity{SafariIOS16_5, Chrome120, Safari15_5, Chrome110}
}

// IdentityByName looks up one of the default identities.
func IdentityByName(name string) (Identity, bool) {
	for _, id := range DefaultIdentities() {
		if id.Name == name {
			return id, true
		}
	}
	return Identity{}, false
}
