package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestLocate_SriLanka(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"country_name":"Sri Lanka","country_code":"LK","ip":"112.134.88.1"}`))
	}))
	defer srv.Close()

	l := NewLocator(srv.URL, 0, zap.NewNop())
	loc, pricing := l.LocatePricing(context.Background())

	if loc.Country != "Sri Lanka" || loc.CountryCode != "LK" {
		t.Fatalf("location = %+v", loc)
	}
	if loc.IP != "112.134.88.1" {
		t.Fatalf("ip = %q", loc.IP)
	}
	if pricing.Amount != 0.50 || pricing.Currency != "LKR" {
		t.Fatalf("pricing = %+v", pricing)
	}
	if pricing.Display != "LKR 165.00/month ($0.50 USD)" {
		t.Fatalf("display = %q", pricing.Display)
	}
}

func TestLocate_OtherCountryGetsGlobalTier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"country_name":"Australia","country_code":"AU"}`))
	}))
	defer srv.Close()

	l := NewLocator(srv.URL, 0, zap.NewNop())
	_, pricing := l.LocatePricing(context.Background())

	if pricing.Amount != 14.47 || pricing.Currency != "USD" {
		t.Fatalf("pricing = %+v", pricing)
	}
	if pricing.Display != "$14.47/month" {
		t.Fatalf("display = %q", pricing.Display)
	}
}

func TestLocate_ServiceErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	l := NewLocator(srv.URL, 0, zap.NewNop())
	loc, pricing := l.LocatePricing(context.Background())

	if loc.Country != "Unknown" || loc.CountryCode != "US" || loc.IP != "" {
		t.Fatalf("fallback location = %+v", loc)
	}
	if pricing.Currency != "USD" {
		t.Fatalf("fallback pricing = %+v", pricing)
	}
}

func TestLocate_UnreachableFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	l := NewLocator(srv.URL, 0, zap.NewNop())
	loc := l.Locate(context.Background())

	if loc.Country != "Unknown" || loc.CountryCode != "US" || loc.IP != "" {
		t.Fatalf("fallback location = %+v", loc)
	}
}

func TestLocate_GarbageBodyFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	l := NewLocator(srv.URL, 0, zap.NewNop())
	loc := l.Locate(context.Background())

	if loc.CountryCode != "US" {
		t.Fatalf("fallback location = %+v", loc)
	}
}
