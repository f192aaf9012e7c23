package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultTimeout is the per-request deadline applied when no client is supplied.
const DefaultTimeout = 10 * time.Second

// Request types understood by the proxy.
const (
	TypeWeather      = "weather"
	TypeForecast     = "forecast"
	TypeAirPollution = "air_pollution"
)

const (
	msgNotFound   = "City not found. Please check the spelling and try again."
	msgAuthConfig = "API configuration error. Please try again later."
	msgTimeout    = "Request timeout. Please check your internet connection."
	msgNetwork    = "Network error. Please check your internet connection."
	msgUnexpected = "An unexpected error occurred. Please try again."
)

// Client talks to the weather proxy endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the proxy at baseURL. A nil httpClient gets a
// default one with DefaultTimeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "?"),
		httpClient: httpClient,
	}
}

var _ weather.Source = (*Client)(nil)

func (c *Client) CurrentWeather(ctx context.Context, city string, unit weather.Unit) (*weather.WeatherSnapshot, error) {
	var out weather.WeatherSnapshot
	if err := c.get(ctx, TypeWeather, cityParams(city, unit), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CurrentWeatherByCoords(ctx context.Context, coord weather.Coordinates, unit weather.Unit) (*weather.WeatherSnapshot, error) {
	var out weather.WeatherSnapshot
	if err := c.get(ctx, TypeWeather, coordParams(coord, unit), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Forecast(ctx context.Context, city string, unit weather.Unit) (*weather.Forecast, error) {
	var out weather.Forecast
	if err := c.get(ctx, TypeForecast, cityParams(city, unit), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ForecastByCoords(ctx context.Context, coord weather.Coordinates, unit weather.Unit) (*weather.Forecast, error) {
	var out weather.Forecast
	if err := c.get(ctx, TypeForecast, coordParams(coord, unit), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AirQuality(ctx context.Context, coord weather.Coordinates) (*weather.AirQuality, error) {
	var out weather.AirQuality
	if err := c.get(ctx, TypeAirPollution, coordParams(coord, ""), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func cityParams(city string, unit weather.Unit) url.Values {
	v := url.Values{}
	v.Set("q", city)
	setUnit(v, unit)
	return v
}

func coordParams(coord weather.Coordinates, unit weather.Unit) url.Values {
	v := url.Values{}
	v.Set("lat", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	v.Set("lon", strconv.FormatFloat(coord.Lon, 'f', -1, 64))
	setUnit(v, unit)
	return v
}

func setUnit(v url.Values, unit weather.Unit) {
	if unit != "" {
		v.Set("units", string(unit))
	}
}

func (c *Client) get(ctx context.Context, typ string, params url.Values, out any) error {
	params.Set("type", typ)
	u := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return weather.NewError(weather.KindUnknown, msgUnexpected, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		log.Printf("WARN: client: undecodable %s payload: %v", typ, err)
		return weather.NewError(weather.KindUpstream, msgUnexpected, err)
	}
	return nil
}

// errorEnvelope covers both the proxy's {error} and the provider's {cod, message}.
type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func statusError(status int, body []byte) error {
	var env errorEnvelope
	_ = json.Unmarshal(body, &env)

	msg := env.Message
	if msg == "" {
		msg = env.Error
	}
	cause := fmt.Errorf("proxy returned status %d: %s", status, msg)

	switch {
	case strings.EqualFold(msg, "city not found"):
		return weather.NewError(weather.KindNotFound, msgNotFound, cause)
	case common.HasAny(msg, "Invalid API key"):
		return weather.NewError(weather.KindAuthConfig, msgAuthConfig, cause)
	case msg != "":
		return weather.NewError(weather.KindUpstream, msg, cause)
	case status == http.StatusNotFound:
		return weather.NewError(weather.KindNotFound, msgNotFound, cause)
	default:
		return weather.NewError(weather.KindUpstream, msgUnexpected, cause)
	}
}

func transportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return weather.NewError(weather.KindTimeout, msgTimeout, err)
	}
	return weather.NewError(weather.KindNetwork, msgNetwork, err)
}
