package urlx

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// CanonicalHostname returns a hostname in canonical form:
// - Lowercased
// - Trimmed of surrounding whitespace
// - No trailing dot
func CanonicalHostname(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	for strings.HasSuffix(name, ".") {
		name = strings.TrimSuffix(name, ".")
	}
	return name
}

// RegistrableDomain returns the eTLD+1 for a hostname, falling back to the
// canonical input when the public suffix list cannot resolve it (IP
// literals, single labels).
func RegistrableDomain(name string) string {
	name = CanonicalHostname(name)
	apex, err := publicsuffix.EffectiveTLDPlusOne(name)
	if err != nil {
		apex = name
	}
	return apex
}

// IsWebURL reports whether raw carries an http or https scheme. Anything
// else (chrome://, file://, about:) is outside the engine's remit.
func IsWebURL(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}

// Parsed is the decomposition of a navigation URL the engine cares about.
type Parsed struct {
	Hostname string // canonical (lowercased) hostname
	Secure   bool   // https scheme
	Protocol string // "http:" or "https:"
	Port     string // explicit port, or scheme default
}

// Parse validates and decomposes a navigation URL. Non-web schemes and
// URLs without a hostname return an error; the caller treats that as a
// skipped event, not a failure.
func Parse(raw string) (Parsed, error) {
	if !IsWebURL(raw) {
		return Parsed{}, fmt.Errorf("not a web url: %q", raw)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Parsed{}, fmt.Errorf("parse url: %w", err)
	}
	host := CanonicalHostname(u.Hostname())
	if host == "" {
		return Parsed{}, fmt.Errorf("url has no hostname: %q", raw)
	}
	p := Parsed{
		Hostname: host,
		Secure:   u.Scheme == "https",
		Protocol: u.Scheme + ":",
		Port:     u.Port(),
	}
	if p.Port == "" {
		if p.Secure {
			p.Port = "443"
		} else {
			p.Port = "80"
		}
	}
	return p, nil
}

// Subdomain returns the leftmost label when the hostname has more than
// two labels, otherwise the empty string.
func Subdomain(hostname string) string {
	labels := strings.Split(CanonicalHostname(hostname), ".")
	if len(labels) > 2 {
		return labels[0]
	}
	return ""
}

// TopLevelDomain returns the final label of the hostname.
func TopLevelDomain(hostname string) string {
	labels := strings.Split(CanonicalHostname(hostname), ".")
	return labels[len(labels)-1]
}
