package config

import (
	"testing"
	"time"

	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENWEATHER_API_KEY", "OPENWEATHER_BASE_URL", "PORT", "HTTP_TIMEOUT", "UPSTREAM_MAX_RETRIES",
		"WEATHER_PROXY_URL", "WEATHER_DB_PATH", "REFRESH_INTERVAL",
		"HOME_LAT", "HOME_LON", "HOME_CITY", "HOME_COUNTRY", "GOOGLE_GEOCODER_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadProxyDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadProxy()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.HTTPTimeout != 10*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.OpenWeatherBaseURL != providers.DefaultOpenWeatherBaseURL || cfg.UpstreamMaxRetries != 2 {
		t.Fatalf("unexpected upstream defaults: %+v", cfg)
	}
}

func TestLoadProxyOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENWEATHER_API_KEY", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("UPSTREAM_MAX_RETRIES", "0")

	cfg, err := LoadProxy()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OpenWeatherAPIKey != "secret" || cfg.Port != "9090" || cfg.HTTPTimeout != 3*time.Second || cfg.UpstreamMaxRetries != 0 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadDashboard(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME_LAT", "59.91")
	t.Setenv("HOME_LON", "10.75")
	t.Setenv("REFRESH_INTERVAL", "5m")

	cfg, err := LoadDashboard()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ProxyURL != "http://localhost:8080/api/weather" || cfg.DBPath != store.DefaultDBPath() {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.RefreshInterval != 5*time.Minute {
		t.Fatalf("unexpected interval: %s", cfg.RefreshInterval)
	}
	if cfg.Home == nil || cfg.Home.Lat != 59.91 || cfg.Home.Lon != 10.75 {
		t.Fatalf("unexpected home: %+v", cfg.Home)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		load func() error
	}{
		{"bad timeout", "HTTP_TIMEOUT", "soon", func() error { _, err := LoadProxy(); return err }},
		{"negative retries", "UPSTREAM_MAX_RETRIES", "-1", func() error { _, err := LoadProxy(); return err }},
		{"bad retries", "UPSTREAM_MAX_RETRIES", "two", func() error { _, err := LoadProxy(); return err }},
		{"bad interval", "REFRESH_INTERVAL", "0s", func() error { _, err := LoadDashboard(); return err }},
		{"half home", "HOME_LAT", "59.91", func() error { _, err := LoadDashboard(); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)
			if err := tt.load(); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.val)
			}
		})
	}

	t.Run("latitude out of range", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("HOME_LAT", "91")
		t.Setenv("HOME_LON", "0")
		if _, err := LoadDashboard(); err == nil {
			t.Fatal("expected error")
		}
	})
}
