// Package rules holds the pure classification and trust-scoring logic.
// Everything in here is deterministic, side-effect free, and safe to
// memoize per hostname.
package rules

import (
	"strings"

	"github.com/RafalW3bCraft/cyberguard/internal/guard/common/urlx"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/domain"
)

// threatKeywords flag a hostname as hostile on substring containment.
var threatKeywords = []string{
	"malware", "phishing", "scam", "fraud", "virus",
	"trojan", "ransomware", "suspicious", "dangerous",
}

// adultDomains are auto-blocked when adult-content blocking is enabled.
var adultDomains = []string{
	"pornhub.com", "xvideos.com", "xnxx.com", "redtube.com", "youporn.com",
	"tube8.com", "spankbang.com", "xhamster.com", "chaturbate.com", "cam4.com",
	"bongacams.com", "livejasmin.com", "stripchat.com", "camsoda.com",
	"onlyfans.com", "fansly.com", "manyvids.com", "clips4sale.com",
	"adult.com", "xxx.com", "sex.com", "porn.com", "nude.com",
}

// trackerDomains are the major tracking and analytics hosts. Tracker hits
// warn rather than hard-block so sites that embed them keep working.
var trackerDomains = []string{
	"google-analytics.com", "googletagmanager.com", "doubleclick.net",
	"connect.facebook.net", "analytics.twitter.com",
	"ads.twitter.com", "amazon-adsystem.com", "googlesyndication.com",
	"googleadservices.com", "adsystem.amazon.com", "quantserve.com",
	"scorecardresearch.com", "outbrain.com", "taboola.com", "criteo.com",
	"adsrvr.org", "turn.com", "rlcdn.com", "addthis.com", "sharethis.com",
}

// Classify evaluates a hostname against the static pattern lists.
// Matching is case-insensitive substring containment. Never panics for
// malformed input; the caller rejects non-web URLs before this point.
func Classify(hostname string) domain.Classification {
	h := urlx.CanonicalHostname(hostname)
	if h == "" {
		return domain.Classification{}
	}
	return domain.Classification{
		Threat:  containsAny(h, threatKeywords),
		Adult:   containsAny(h, adultDomains),
		Tracker: containsAny(h, trackerDomains),
	}
}

func containsAny(hostname string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(hostname, p) {
			return true
		}
	}
	return false
}
