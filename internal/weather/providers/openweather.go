package providers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"
)

// DefaultOpenWeatherBaseURL is the OpenWeather 2.5 data API root.
const DefaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// Upstream endpoints the proxy may forward to.
const (
	EndpointWeather      = "weather"
	EndpointForecast     = "forecast"
	EndpointAirPollution = "air_pollution"
)

// OpenWeatherConfig configures the upstream provider.
type OpenWeatherConfig struct {
	APIKey  string
	BaseURL string
	Backoff BackoffConfig
}

// OpenWeatherProvider forwards proxy requests to OpenWeatherMap, adding the
// API key server-side.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, cfg OpenWeatherConfig) *OpenWeatherProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenWeatherBaseURL
	}
	backoff := cfg.Backoff
	if backoff.InitialInterval <= 0 {
		backoff = DefaultBackoff
	}

	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: backoff,
		},
		circuit: newCircuitBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// Configured reports whether an API key is available.
func (p *OpenWeatherProvider) Configured() bool {
	return p.apiKey != ""
}

// Forward calls endpoint with params plus the API key. Non-2xx replies are
// returned as a Response, not an error; errors mean the upstream could not be
// reached (or the breaker is open).
func (p *OpenWeatherProvider) Forward(ctx context.Context, endpoint string, params url.Values) (*Response, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		for k, vs := range params {
			for _, v := range vs {
				values.Add(k, v)
			}
		}
		values.Set("appid", p.apiKey)

		u := fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		log.Printf("ERROR: provider %s: %s request failed: %v", p.name, endpoint, err)
		return nil, err
	}
	return resp, nil
}
