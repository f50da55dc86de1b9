package domain

import "time"

// Geolocation is the optional enrichment record for a scanned host.
// Fields are strings so a failed lookup can carry explicit placeholders
// instead of zero values that look like real data.
type Geolocation struct {
	IP          string `json:"ip"`
	Latitude    string `json:"latitude"`
	Longitude   string `json:"longitude"`
	City        string `json:"city"`
	Region      string `json:"region"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	Timezone    string `json:"timezone"`
	ISP         string `json:"isp"`
	Org         string `json:"org"`
}

const geoUnknown = "Unknown"

// FailedGeolocation is the placeholder substituted when the lookup
// collaborator errors out. Enrichment failure never blocks a scan.
func FailedGeolocation() Geolocation {
	return Geolocation{
		IP:          "Lookup Failed",
		Latitude:    geoUnknown,
		Longitude:   geoUnknown,
		City:        geoUnknown,
		Region:      geoUnknown,
		Country:     geoUnknown,
		CountryCode: geoUnknown,
		Timezone:    geoUnknown,
		ISP:         geoUnknown,
		Org:         geoUnknown,
	}
}

// TechnicalData carries hostname shape features used by the trust scorer
// and shown on the scan report.
type TechnicalData struct {
	IsSecure          bool   `json:"isSecure"`
	HasWWW            bool   `json:"hasWWW"`
	DomainLength      int    `json:"domainLength"`
	Subdomain         string `json:"subdomain,omitempty"`
	TopLevelDomain    string `json:"topLevelDomain"`
	RegistrableDomain string `json:"registrableDomain,omitempty"`
}

// SecurityInfo is the security summary of a scanned site.
type SecurityInfo struct {
	HTTPSEnabled     bool `json:"httpsEnabled"`
	SuspiciousDomain bool `json:"suspiciousDomain"`
	TrustScore       int  `json:"trustScore"`
}

// SiteInfo aggregates everything gathered about one site during a scan.
type SiteInfo struct {
	Domain      string        `json:"domain"`
	FullURL     string        `json:"fullUrl"`
	Protocol    string        `json:"protocol"`
	Port        string        `json:"port"`
	Timestamp   time.Time     `json:"timestamp"`
	Geolocation *Geolocation  `json:"geolocation,omitempty"`
	Technical   TechnicalData `json:"technicalData"`
	Security    SecurityInfo  `json:"securityInfo"`
}

// ScanResult is one completed quantum scan. The latest result is persisted
// so the dashboard can recall it after the scan completed.
type ScanResult struct {
	Status         string       `json:"status"`
	ScanID         string       `json:"scanId"`
	Timestamp      time.Time    `json:"timestamp"`
	URL            string       `json:"url"`
	FullURL        string       `json:"fullUrl"`
	SiteInfo       SiteInfo     `json:"siteInfo"`
	ThreatAnalysis ThreatStatus `json:"threatAnalysis"`
}
