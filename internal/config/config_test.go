package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"NURSECARE_HTTP_ADDR", "NURSECARE_DB_DSN", "NURSECARE_REDIS_ADDR",
		"NURSECARE_FIREBASE_PROJECT_ID", "NURSECARE_PRICING_TIMEZONE",
		"NURSECARE_QUOTE_RPS", "NURSECARE_NEARBY_RADIUS_KM",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Pricing.Timezone != "Asia/Kolkata" {
		t.Errorf("Pricing.Timezone = %q", cfg.Pricing.Timezone)
	}
	if cfg.Pricing.QuoteRateLimit != 5 || cfg.Pricing.QuoteBurst != 20 {
		t.Errorf("quote limit = %v/%d", cfg.Pricing.QuoteRateLimit, cfg.Pricing.QuoteBurst)
	}
	if cfg.Location.NearbyRadiusKm != 10 {
		t.Errorf("NearbyRadiusKm = %v", cfg.Location.NearbyRadiusKm)
	}
	if cfg.FirebaseEnabled() {
		t.Errorf("firebase should be disabled without a project id")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("NURSECARE_HTTP_ADDR", ":9090")
	t.Setenv("NURSECARE_PRICING_TIMEZONE", "UTC")
	t.Setenv("NURSECARE_QUOTE_RPS", "0.5")
	t.Setenv("NURSECARE_QUOTE_BURST", "not-a-number")
	t.Setenv("NURSECARE_FIREBASE_PROJECT_ID", "nursecare-dev")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":9090" || cfg.Pricing.Timezone != "UTC" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Pricing.QuoteRateLimit != 0.5 {
		t.Errorf("QuoteRateLimit = %v", cfg.Pricing.QuoteRateLimit)
	}
	if cfg.Pricing.QuoteBurst != 20 {
		t.Errorf("bad int should fall back to default, got %d", cfg.Pricing.QuoteBurst)
	}
	if !cfg.FirebaseEnabled() {
		t.Errorf("firebase should be enabled")
	}
}
