package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

// ProxyConfig configures the weather proxy service.
type ProxyConfig struct {
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string

	// HTTPTimeout bounds each upstream call.
	HTTPTimeout time.Duration

	// UpstreamMaxRetries is the number of retries after the first attempt
	// for 429/5xx and transport failures.
	UpstreamMaxRetries int

	Port string
}

// DashboardConfig configures the dashboard CLI.
type DashboardConfig struct {
	ProxyURL string
	DBPath   string

	HTTPTimeout     time.Duration
	RefreshInterval time.Duration

	// Home position used by "here". Coordinates win over the address.
	Home        *weather.Coordinates
	HomeCity    string
	HomeCountry string

	GeocoderAPIKey string
}

// LoadProxy reads the proxy configuration from the environment with
// sensible defaults.
func LoadProxy() (*ProxyConfig, error) {
	loadDotEnv()
	cfg := &ProxyConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", providers.DefaultOpenWeatherBaseURL)
	cfg.Port = getenvDefault("PORT", "8080")

	timeout, err := getenvDuration("HTTP_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = timeout

	retries, err := getenvInt("UPSTREAM_MAX_RETRIES", providers.DefaultBackoff.MaxRetries)
	if err != nil {
		return nil, err
	}
	if retries < 0 {
		return nil, fmt.Errorf("invalid UPSTREAM_MAX_RETRIES: must not be negative")
	}
	cfg.UpstreamMaxRetries = retries

	return cfg, nil
}

// LoadDashboard reads the dashboard configuration from the environment
// with sensible defaults.
func LoadDashboard() (*DashboardConfig, error) {
	loadDotEnv()
	cfg := &DashboardConfig{}

	cfg.ProxyURL = getenvDefault("WEATHER_PROXY_URL", "http://localhost:8080/api/weather")
	cfg.DBPath = getenvDefault("WEATHER_DB_PATH", store.DefaultDBPath())
	cfg.HomeCity = os.Getenv("HOME_CITY")
	cfg.HomeCountry = os.Getenv("HOME_COUNTRY")
	cfg.GeocoderAPIKey = os.Getenv("GOOGLE_GEOCODER_API_KEY")

	timeout, err := getenvDuration("HTTP_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = timeout

	interval, err := getenvDuration("REFRESH_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.RefreshInterval = interval

	home, err := loadHome()
	if err != nil {
		return nil, err
	}
	cfg.Home = home

	return cfg, nil
}

func loadHome() (*weather.Coordinates, error) {
	latStr, lonStr := os.Getenv("HOME_LAT"), os.Getenv("HOME_LON")
	if latStr == "" && lonStr == "" {
		return nil, nil
	}
	if latStr == "" || lonStr == "" {
		return nil, fmt.Errorf("HOME_LAT and HOME_LON must be set together")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, fmt.Errorf("invalid HOME_LAT %q", latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("invalid HOME_LON %q", lonStr)
	}
	return &weather.Coordinates{Lat: lat, Lon: lon}, nil
}

func loadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
