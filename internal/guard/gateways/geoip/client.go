// Package geoip looks up geolocation data for a hostname via the
// ip-api.com JSON endpoint. The lookup is optional enrichment: callers
// substitute a placeholder record on any failure and carry on.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/RafalW3bCraft/cyberguard/internal/guard/common/log"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/domain"
)

const defaultBaseURL = "http://ip-api.com"

// lookupFields keeps the response payload small and stable.
const lookupFields = "status,message,country,countryCode,region,city,lat,lon,timezone,isp,org,query"

// Client queries the geolocation service.
type Client struct {
	baseURL string
	http    *http.Client
	logger  log.Logger
}

// Options configures a Client.
type Options struct {
	BaseURL string        // service root; defaults to ip-api.com
	Timeout time.Duration // per-request timeout
	Logger  log.Logger
}

// New constructs a geolocation Client.
func New(opts Options) *Client {
	base := opts.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// apiResponse mirrors the ip-api.com JSON schema.
type apiResponse struct {
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	Region      string  `json:"region"`
	City        string  `json:"city"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Timezone    string  `json:"timezone"`
	ISP         string  `json:"isp"`
	Org         string  `json:"org"`
	Query       string  `json:"query"`
}

// Lookup resolves geolocation data for hostname. Transport errors,
// non-2xx responses, and "fail" statuses from the service all surface as
// errors; the caller decides how to degrade.
func (c *Client) Lookup(ctx context.Context, hostname string) (domain.Geolocation, error) {
	u := fmt.Sprintf("%s/json/%s?fields=%s", c.baseURL, url.PathEscape(hostname), lookupFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Geolocation{}, fmt.Errorf("build geo request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Geolocation{}, fmt.Errorf("geo lookup: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return domain.Geolocation{}, fmt.Errorf("geo lookup: unexpected status %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Geolocation{}, fmt.Errorf("decode geo response: %w", err)
	}
	if body.Status != "success" {
		return domain.Geolocation{}, fmt.Errorf("geo lookup failed: %s", body.Message)
	}

	return domain.Geolocation{
		IP:          body.Query,
		Latitude:    strconv.FormatFloat(body.Lat, 'f', -1, 64),
		Longitude:   strconv.FormatFloat(body.Lon, 'f', -1, 64),
		City:        body.City,
		Region:      body.Region,
		Country:     body.Country,
		CountryCode: body.CountryCode,
		Timezone:    body.Timezone,
		ISP:         body.ISP,
		Org:         body.Org,
	}, nil
}
