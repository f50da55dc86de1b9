package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/RafalW3bCraft/cyberguard/internal/guard/common/urlx"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/domain"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/repos/state"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/rules"
)

// ErrNoScanData is returned by LastScan when no scan has completed yet.
var ErrNoScanData = errors.New("no scan data")

const scanStatusComplete = "SCAN_COMPLETE"

// QuantumScan gathers a full site report for a URL: technical hostname
// features, a security summary with the trust score, and optional
// geolocation enrichment. The result is persisted as the latest scan.
// Enrichment failure degrades to a placeholder record; it never fails
// the scan.
func (e *Engine) QuantumScan(ctx context.Context, rawURL string) (domain.ScanResult, error) {
	parsed, err := urlx.Parse(rawURL)
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("quantum scan: %w", err)
	}
	host := parsed.Hostname

	tech := domain.TechnicalData{
		IsSecure:          parsed.Secure,
		HasWWW:            strings.HasPrefix(host, "www."),
		DomainLength:      len(host),
		Subdomain:         urlx.Subdomain(host),
		TopLevelDomain:    urlx.TopLevelDomain(host),
		RegistrableDomain: urlx.RegistrableDomain(host),
	}

	info := domain.SiteInfo{
		Domain:    host,
		FullURL:   rawURL,
		Protocol:  parsed.Protocol,
		Port:      parsed.Port,
		Timestamp: e.clock.Now(),
		Technical: tech,
		Security: domain.SecurityInfo{
			HTTPSEnabled:     parsed.Secure,
			SuspiciousDomain: rules.Suspicious(host),
			TrustScore:       rules.TrustScore(host, tech),
		},
	}

	if e.geo != nil {
		geo, err := e.geo.Lookup(ctx, host)
		if err != nil {
			e.logger.Warn(map[string]any{"hostname": host, "error": err.Error()}, "geolocation lookup failed")
			placeholder := domain.FailedGeolocation()
			info.Geolocation = &placeholder
		} else {
			info.Geolocation = &geo
		}
	}

	result := domain.ScanResult{
		Status:         scanStatusComplete,
		ScanID:         "scan_" + uuid.NewString(),
		Timestamp:      e.clock.Now(),
		URL:            host,
		FullURL:        rawURL,
		SiteInfo:       info,
		ThreatAnalysis: e.state.status(),
	}

	if err := e.persistLastScan(ctx, result); err != nil {
		// The caller still gets the fresh result; only recall is degraded.
		e.logger.Error(map[string]any{"hostname": host, "error": err.Error()}, "persist scan result failed")
	}
	return result, nil
}

// LastScan returns the most recently persisted scan result.
func (e *Engine) LastScan(ctx context.Context) (domain.ScanResult, error) {
	raw, found, err := e.store.Get(ctx, state.KeyLastScan)
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("load last scan: %w", err)
	}
	if !found {
		return domain.ScanResult{}, ErrNoScanData
	}
	var result domain.ScanResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.ScanResult{}, fmt.Errorf("decode last scan: %w", err)
	}
	return result, nil
}

func (e *Engine) persistLastScan(ctx context.Context, result domain.ScanResult) error {
	return e.queue.Do(ctx, state.KeyLastScan, func(ctx context.Context) error {
		raw, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("encode scan result: %w", err)
		}
		return e.store.Set(ctx, state.KeyLastScan, raw)
	})
}
