// Package geo resolves the user's country from an IP geolocation service
// and derives the regional subscription pricing shown on the upgrade
// screen. Lookup failures never surface to the user: the locator degrades
// to the global default so the pricing card always renders.
package geo

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 5 * time.Second

// Location is the resolved origin of the current user. IP is the address
// the service saw the request from; empty on fallback.
type Location struct {
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
	IP          string `json:"ip"`
}

// Pricing is the regional subscription offer.
type Pricing struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Display  string  `json:"display"`
}

// Defaults applied when the geolocation service is unreachable or returns
// garbage. "US" keeps the pricing on the global tier.
var fallbackLocation = Location{Country: "Unknown", CountryCode: "US"}

// Locator queries an ipapi-style JSON endpoint for the caller's country.
type Locator struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewLocator creates a Locator against the given endpoint. A zero timeout
// means the default.
func NewLocator(endpoint string, timeout time.Duration, logger *zap.Logger) *Locator {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Locator{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// locationResponse mirrors the geolocation service's JSON body.
type locationResponse struct {
	CountryName string `json:"country_name"`
	CountryCode string `json:"country_code"`
	IP          string `json:"ip"`
}

// Locate resolves the caller's country. It never returns an error: any
// failure is logged and collapses to the Unknown/US fallback.
func (l *Locator) Locate(ctx context.Context) Location {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint, nil)
	if err != nil {
		l.logger.Warn("geolocation request build failed", zap.Error(err))
		return fallbackLocation
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		l.logger.Warn("geolocation lookup failed", zap.Error(err))
		return fallbackLocation
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		l.logger.Warn("geolocation service error", zap.Int("status", resp.StatusCode))
		return fallbackLocation
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		l.logger.Warn("geolocation read failed", zap.Error(err))
		return fallbackLocation
	}

	var decoded locationResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		l.logger.Warn("geolocation decode failed", zap.Error(err))
		return fallbackLocation
	}
	if decoded.CountryCode == "" {
		return fallbackLocation
	}
	return Location{Country: decoded.CountryName, CountryCode: decoded.CountryCode, IP: decoded.IP}
}

// PricingFor maps a location to the subscription offer. Sri Lanka gets the
// local-currency tier; everywhere else (including the fallback) gets the
// global USD tier.
func PricingFor(loc Location) Pricing {
	if loc.CountryCode == "LK" {
		return Pricing{
			Amount:   0.50,
			Currency: "LKR",
			Display:  "LKR 165.00/month ($0.50 USD)",
		}
	}
	return Pricing{
		Amount:   14.47,
		Currency: "USD",
		Display:  "$14.47/month",
	}
}

// LocatePricing is the one-call form the upgrade screen uses.
func (l *Locator) LocatePricing(ctx context.Context) (Location, Pricing) {
	loc := l.Locate(ctx)
	return loc, PricingFor(loc)
}
