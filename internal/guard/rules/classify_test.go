package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RafalW3bCraft/cyberguard/internal/guard/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		hostname string
		want     domain.Classification
	}{
		{"threat keyword", "malware-test.com", domain.Classification{Threat: true}},
		{"threat keyword embedded", "free-virus-scan.example", domain.Classification{Threat: true}},
		{"adult domain", "www.pornhub.com", domain.Classification{Adult: true}},
		{"tracker domain", "stats.google-analytics.com", domain.Classification{Tracker: true}},
		{"tracker doubleclick", "ad.doubleclick.net", domain.Classification{Tracker: true}},
		{"clean host", "example.com", domain.Classification{}},
		{"case insensitive", "MALWARE-TEST.COM", domain.Classification{Threat: true}},
		{"empty hostname", "", domain.Classification{}},
		{"garbage hostname", "....", domain.Classification{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.hostname))
		})
	}
}

func TestClassify_IsPure(t *testing.T) {
	first := Classify("phishing-site.example")
	second := Classify("phishing-site.example")
	assert.Equal(t, first, second)
	assert.True(t, first.Threat)
}
