package rules

import (
	"regexp"
	"strings"

	"github.com/RafalW3bCraft/cyberguard/internal/guard/common/urlx"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/domain"
)

// Trust score anchors. The score starts at the base and is adjusted by
// the feature bonuses and penalties below, then clamped to [0,100].
const (
	trustBase            = 50
	trustHTTPSBonus      = 20
	trustKnownBonus      = 30
	trustSuspiciousMalus = 30
	trustIPLiteralMalus  = 25
)

// trustedDomains earn the known-domain bonus on substring containment.
var trustedDomains = []string{
	"google.com", "youtube.com", "facebook.com", "amazon.com", "wikipedia.org",
}

// Pre-compiled hostname shape patterns (compiled once, used many times).
var (
	reIPv4Literal = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)
	reDigitRun    = regexp.MustCompile(`[0-9]{4,}`)
	reDashRun     = regexp.MustCompile(`-{2,}`)
	reShadyTLD    = regexp.MustCompile(`\.(tk|ml|ga|cf)$`)
	reLetterRun   = regexp.MustCompile(`[a-z]{20,}`)
	reMixedRun    = regexp.MustCompile(`[0-9][a-z]{2}[0-9]`)
)

var suspiciousPatterns = []*regexp.Regexp{
	reIPv4Literal, reDigitRun, reDashRun, reShadyTLD, reLetterRun, reMixedRun,
}

// Suspicious reports whether the hostname matches any of the shape
// patterns associated with throwaway or machine-generated domains.
func Suspicious(hostname string) bool {
	h := urlx.CanonicalHostname(hostname)
	for _, re := range suspiciousPatterns {
		if re.MatchString(h) {
			return true
		}
	}
	return false
}

// IsIPv4Literal reports whether the hostname is a raw dotted-quad.
func IsIPv4Literal(hostname string) bool {
	return reIPv4Literal.MatchString(urlx.CanonicalHostname(hostname))
}

// TrustScore computes a deterministic 0-100 trust score for a hostname.
// Missing technical data is treated as feature-absent: no bonus, no
// penalty. Pure function, no side effects.
func TrustScore(hostname string, tech domain.TechnicalData) int {
	h := urlx.CanonicalHostname(hostname)
	score := trustBase

	if tech.IsSecure {
		score += trustHTTPSBonus
	}
	for _, d := range trustedDomains {
		if strings.Contains(h, d) {
			score += trustKnownBonus
			break
		}
	}
	if Suspicious(h) {
		score -= trustSuspiciousMalus
	}
	if IsIPv4Literal(h) {
		score -= trustIPLiteralMalus
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
