package urlx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalHostname(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Example.COM", "example.com"},
		{"  spaced.example.com  ", "spaced.example.com"},
		{"trailing.dot.com.", "trailing.dot.com"},
		{"multi.dots.com...", "multi.dots.com"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanonicalHostname(tt.input))
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Parsed
		wantErr bool
	}{
		{
			name: "https with default port",
			raw:  "https://Example.com/path?q=1",
			want: Parsed{Hostname: "example.com", Secure: true, Protocol: "https:", Port: "443"},
		},
		{
			name: "http with default port",
			raw:  "http://example.com",
			want: Parsed{Hostname: "example.com", Secure: false, Protocol: "http:", Port: "80"},
		},
		{
			name: "explicit port",
			raw:  "http://localhost:8080/admin",
			want: Parsed{Hostname: "localhost", Secure: false, Protocol: "http:", Port: "8080"},
		},
		{name: "chrome scheme rejected", raw: "chrome://settings", wantErr: true},
		{name: "file scheme rejected", raw: "file:///etc/passwd", wantErr: true},
		{name: "empty rejected", raw: "", wantErr: true},
		{name: "no hostname rejected", raw: "http://", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistrableDomain(t *testing.T) {
	assert.Equal(t, "example.com", RegistrableDomain("www.example.com"))
	assert.Equal(t, "example.co.uk", RegistrableDomain("deep.sub.example.co.uk"))
	// Unresolvable inputs fall back to the canonical name.
	assert.Equal(t, "localhost", RegistrableDomain("localhost"))
}

func TestSubdomainAndTLD(t *testing.T) {
	assert.Equal(t, "www", Subdomain("www.example.com"))
	assert.Equal(t, "", Subdomain("example.com"))
	assert.Equal(t, "com", TopLevelDomain("www.example.com"))
	assert.Equal(t, "localhost", TopLevelDomain("localhost"))
}
