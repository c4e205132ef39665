// README: Config loader with env defaults for HTTP, stores, Firebase, Maps, pricing and logging.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type PricingConfig struct {
	// Timezone is the zone whose wall clock surge windows are read in.
	Timezone string
	// TableFile optionally replaces the compiled-in rate table.
	TableFile      string
	QuoteRateLimit float64
	QuoteBurst     int
}

type LocationConfig struct {
	NearbyRadiusKm float64
	NearbyLimit    int
	MapsAPIKey     string
	MapsRegion     string
}

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		DSN string
	}
	Redis struct {
		Addr string
	}
	Firebase struct {
		ProjectID       string
		CredentialsFile string
	}
	Log struct {
		Level  string
		Format string
	}
	Pricing  PricingConfig
	Location LocationConfig
	Version  string
}

// Load reads a .env file when present, then the environment. Empty store
// and integration settings leave the component they back disabled.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	cfg.HTTP.Addr = envOrDefault("NURSECARE_HTTP_ADDR", ":8080")
	cfg.DB.DSN = os.Getenv("NURSECARE_DB_DSN")
	cfg.Redis.Addr = os.Getenv("NURSECARE_REDIS_ADDR")
	cfg.Firebase.ProjectID = os.Getenv("NURSECARE_FIREBASE_PROJECT_ID")
	cfg.Firebase.CredentialsFile = os.Getenv("NURSECARE_FIREBASE_CREDENTIALS")
	cfg.Log.Level = envOrDefault("NURSECARE_LOG_LEVEL", "info")
	cfg.Log.Format = envOrDefault("NURSECARE_LOG_FORMAT", "json")
	cfg.Pricing.Timezone = envOrDefault("NURSECARE_PRICING_TIMEZONE", "Asia/Kolkata")
	cfg.Pricing.TableFile = os.Getenv("NURSECARE_PRICING_TABLE")
	cfg.Pricing.QuoteRateLimit = envOrDefaultFloat("NURSECARE_QUOTE_RPS", 5)
	cfg.Pricing.QuoteBurst = envOrDefaultInt("NURSECARE_QUOTE_BURST", 20)
	cfg.Location.NearbyRadiusKm = envOrDefaultFloat("NURSECARE_NEARBY_RADIUS_KM", 10)
	cfg.Location.NearbyLimit = envOrDefaultInt("NURSECARE_NEARBY_LIMIT", 50)
	cfg.Location.MapsAPIKey = os.Getenv("NURSECARE_MAPS_API_KEY")
	cfg.Location.MapsRegion = envOrDefault("NURSECARE_MAPS_REGION", "in")
	cfg.Version = envOrDefault("NURSECARE_VERSION", "dev")
	return cfg, nil
}

// FirebaseEnabled reports whether auth and the booking store can start.
func (c Config) FirebaseEnabled() bool {
	return c.Firebase.ProjectID != ""
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}
