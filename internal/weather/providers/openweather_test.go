package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

var fastBackoff = BackoffConfig{
	MaxRetries:      2,
	InitialInterval: time.Millisecond,
	MaxInterval:     5 * time.Millisecond,
}

func newTestProvider(serverURL string) *OpenWeatherProvider {
	return NewOpenWeatherProvider(&http.Client{Timeout: time.Second}, OpenWeatherConfig{
		APIKey:  "secret",
		BaseURL: serverURL,
		Backoff: fastBackoff,
	})
}

func TestForwardAddsKeyAndEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast" {
			t.Errorf("expected /forecast, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("appid") != "secret" || q.Get("q") != "Oslo" || q.Get("units") != "metric" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"cod":"200"}`))
	}))
	defer server.Close()

	params := url.Values{"q": {"Oslo"}, "units": {"metric"}}
	resp, err := newTestProvider(server.URL).Forward(context.Background(), EndpointForecast, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK || string(resp.Body) != `{"cod":"200"}` {
		t.Fatalf("unexpected response: %d %s", resp.StatusCode, resp.Body)
	}
	if params.Get("appid") != "" {
		t.Fatal("caller params must not be mutated")
	}
}

func TestForwardPassesClientErrorsWithoutRetry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	}))
	defer server.Close()

	resp, err := newTestProvider(server.URL).Forward(context.Background(), EndpointWeather, url.Values{"q": {"Atlantis"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected a single upstream call, got %d", n)
	}
}

func TestForwardRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	resp, err := newTestProvider(server.URL).Forward(context.Background(), EndpointWeather, url.Values{"q": {"Oslo"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 after retries, got %d", resp.StatusCode)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Fatalf("expected 3 calls, got %d", n)
	}
}

func TestForwardReturnsLastServerErrorAfterRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"message":"maintenance"}`))
	}))
	defer server.Close()

	resp, err := newTestProvider(server.URL).Forward(context.Background(), EndpointWeather, url.Values{"q": {"Oslo"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable || string(resp.Body) != `{"message":"maintenance"}` {
		t.Fatalf("unexpected response: %d %s", resp.StatusCode, resp.Body)
	}
}

func TestForwardWithoutKey(t *testing.T) {
	p := NewOpenWeatherProvider(http.DefaultClient, OpenWeatherConfig{})
	if p.Configured() {
		t.Fatal("expected provider without key to be unconfigured")
	}
	if _, err := p.Forward(context.Background(), EndpointWeather, nil); err == nil {
		t.Fatal("expected error without api key")
	}
	if p.baseURL != DefaultOpenWeatherBaseURL {
		t.Fatalf("expected default base url, got %s", p.baseURL)
	}
}

func TestDoRequestWithResilienceValidatesConfig(t *testing.T) {
	cb := newCircuitBreaker("test")
	build := func() (*http.Request, error) { return http.NewRequest(http.MethodGet, "http://example.invalid", nil) }

	if _, err := doRequestWithResilience(context.Background(), HTTPClientConfig{}, cb, build); !errors.Is(err, errNoHTTPClient) {
		t.Fatalf("expected errNoHTTPClient, got %v", err)
	}
	cfg := HTTPClientConfig{Client: http.DefaultClient, Backoff: BackoffConfig{MaxRetries: -1, InitialInterval: time.Millisecond}}
	if _, err := doRequestWithResilience(context.Background(), cfg, cb, build); !errors.Is(err, errInvalidConfig) {
		t.Fatalf("expected errInvalidConfig, got %v", err)
	}
}
