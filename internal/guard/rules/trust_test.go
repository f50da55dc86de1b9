package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RafalW3bCraft/cyberguard/internal/guard/domain"
)

func secure() domain.TechnicalData {
	return domain.TechnicalData{IsSecure: true}
}

func TestTrustScore(t *testing.T) {
	tests := []struct {
		name     string
		hostname string
		tech     domain.TechnicalData
		want     int
	}{
		{"plain http host", "example.com", domain.TechnicalData{}, 50},
		{"https bonus", "example.com", secure(), 70},
		{"trusted https", "www.google.com", secure(), 100},
		{"trusted http", "www.wikipedia.org", domain.TechnicalData{}, 80},
		{"ipv4 literal double penalty", "192.168.10.10", domain.TechnicalData{}, 0},
		{"ipv4 literal over https", "10.0.0.1", secure(), 15},
		{"shady tld", "free-stuff.tk", domain.TechnicalData{}, 20},
		{"digit run", "win1000000.example", domain.TechnicalData{}, 20},
		{"dash run", "cheap--meds.example", domain.TechnicalData{}, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TrustScore(tt.hostname, tt.tech))
		})
	}
}

func TestTrustScore_Clamped(t *testing.T) {
	// Every input must land inside [0,100] no matter how the penalties stack.
	hosts := []string{
		"1.2.3.4", "255.255.255.255", "evil--12345678.tk",
		"www.google.com", "example.com", "",
	}
	for _, h := range hosts {
		for _, sec := range []bool{true, false} {
			got := TrustScore(h, domain.TechnicalData{IsSecure: sec})
			assert.GreaterOrEqual(t, got, 0, "host %q", h)
			assert.LessOrEqual(t, got, 100, "host %q", h)
		}
	}
}

func TestTrustScore_MissingTechnicalData(t *testing.T) {
	// Zero-value technical data means feature absent: no HTTPS bonus.
	assert.Equal(t, 50, TrustScore("example.com", domain.TechnicalData{}))
}

func TestSuspicious(t *testing.T) {
	tests := []struct {
		hostname string
		want     bool
	}{
		{"1.2.3.4", true},
		{"win1000000.example", true},
		{"cheap--meds.example", true},
		{"free-stuff.tk", true},
		{"aaaaaaaaaaaaaaaaaaaaaaaa.com", true},
		{"x1ab2y.com", true},
		{"example.com", false},
		{"my-site.example", false},
	}
	for _, tt := range tests {
		t.Run(tt.hostname, func(t *testing.T) {
			assert.Equal(t, tt.want, Suspicious(tt.hostname))
		})
	}
}

func TestIsIPv4Literal(t *testing.T) {
	assert.True(t, IsIPv4Literal("127.0.0.1"))
	assert.False(t, IsIPv4Literal("example.com"))
}
