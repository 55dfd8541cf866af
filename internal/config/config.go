package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Provider identifiers accepted in WEATHER_PROVIDER.
const (
	ProviderWeatherAPI  = "weatherapi"
	ProviderOpenWeather = "openweathermap"
)

// AppConfig holds process-wide configuration loaded once at startup and passed
// by value into the components that need it. Core logic never reads the
// environment directly, so tests can run against fabricated configs.
type AppConfig struct {
	// Provider selects which upstream client serves all requests. Chosen once
	// here, never branched on per request.
	Provider string `validate:"required,oneof=weatherapi openweathermap"`

	// APIKey is the provider credential. Its presence is enforced by the
	// provider constructor so a misconfigured deployment fails at startup,
	// not on the first user request.
	APIKey string

	// BaseURL overrides the provider's default endpoint; mainly for tests.
	BaseURL string `validate:"omitempty,url"`

	// RequestTimeout bounds each outbound provider call.
	RequestTimeout time.Duration `validate:"required"`

	// HealthInterval controls how often the upstream reachability probe runs.
	HealthInterval time.Duration `validate:"required"`

	Port string `validate:"required"`

	// StaticDir is the directory the frontend assets are served from.
	StaticDir string `validate:"required"`
}

var validate = validator.New()

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		Provider:  getenvDefault("WEATHER_PROVIDER", ProviderWeatherAPI),
		BaseURL:   os.Getenv("WEATHER_BASE_URL"),
		Port:      getenvDefault("PORT", "8080"),
		StaticDir: getenvDefault("STATIC_DIR", "./web/static"),
	}

	switch cfg.Provider {
	case ProviderOpenWeather:
		cfg.APIKey = os.Getenv("OPENWEATHER_API_KEY")
	default:
		cfg.APIKey = os.Getenv("WEATHERAPI_API_KEY")
	}

	timeoutSec := getenvInt("REQUEST_TIMEOUT_SECONDS", 5)
	if timeoutSec <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive")
	}
	cfg.RequestTimeout = time.Duration(timeoutSec) * time.Second

	intervalStr := getenvDefault("HEALTH_PROBE_INTERVAL", "5m")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HEALTH_PROBE_INTERVAL: %w", err)
	}
	cfg.HealthInterval = interval

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
