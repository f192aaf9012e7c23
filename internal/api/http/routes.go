package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

var validate = validator.New()

// Paths served by the proxy. The second keeps URLs written for the hosted
// function working.
var proxyPaths = []string{"/api/weather", "/.netlify/functions/weather"}

const (
	msgMissingParams   = `Missing required parameters. Provide "city" or "lat" and "lon".`
	msgNeedsCoords     = `Air quality requires "lat" and "lon".`
	msgMethod          = "Method not allowed. Use GET."
	msgServerConfig    = "Server configuration error"
	msgFetchFailed     = "Failed to fetch weather data"
	msgUnavailable     = "Weather service temporarily unavailable"
	msgUpstreamDefault = "Weather API error"
)

// Forwarder is the upstream the proxy hides its API key behind.
type Forwarder interface {
	Configured() bool
	Forward(ctx context.Context, endpoint string, params url.Values) (*providers.Response, error)
}

// ErrorHandler renders every error as the proxy's {"error": message} envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// RegisterRoutes wires the proxy handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, fwd Forwarder, m *metrics.Collector) {
	corsMiddleware := cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Content-Type",
		AllowMethods: "GET, OPTIONS",
	})

	// The cors middleware answers preflights itself with 204; the proxy
	// answers every OPTIONS with 200.
	preflight := func(c *fiber.Ctx) error {
		err := corsMiddleware(c)
		if c.Method() == fiber.MethodOptions && c.Response().StatusCode() == fiber.StatusNoContent {
			c.Response().ResetBody()
			c.Status(fiber.StatusOK)
		}
		return err
	}

	handler := proxyHandler(fwd, m)
	for _, path := range proxyPaths {
		app.Use(path, preflight)
		app.Options(path, func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})
		app.Get(path, handler)
		app.All(path, func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusMethodNotAllowed, msgMethod)
		})
	}
}

// proxyQuery holds the query parameters accepted by the proxy.
type proxyQuery struct {
	Type  string `validate:"oneof=weather forecast air_pollution"`
	City  string `validate:"omitempty,max=200"`
	Lat   string `validate:"omitempty,latitude"`
	Lon   string `validate:"omitempty,longitude"`
	Units string `validate:"oneof=metric imperial standard"`
}

func parseProxyQuery(c *fiber.Ctx) proxyQuery {
	return proxyQuery{
		Type:  c.Query("type", providers.EndpointWeather),
		City:  common.FirstNonEmpty(c.Query("city"), c.Query("q")),
		Lat:   c.Query("lat"),
		Lon:   c.Query("lon"),
		Units: c.Query("units", "metric"),
	}
}

func (q proxyQuery) hasCoords() bool {
	return q.Lat != "" && q.Lon != ""
}

func (q proxyQuery) check() error {
	if q.City == "" && !q.hasCoords() {
		return errors.New(msgMissingParams)
	}
	if q.Type == providers.EndpointAirPollution && !q.hasCoords() {
		return errors.New(msgNeedsCoords)
	}
	if err := validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("Invalid %q parameter", strings.ToLower(verrs[0].Field()))
		}
		return err
	}
	return nil
}

// upstreamParams prefers a city name over coordinates, as the hosted
// function did.
func (q proxyQuery) upstreamParams() url.Values {
	v := url.Values{}
	if q.City != "" && q.Type != providers.EndpointAirPollution {
		v.Set("q", q.City)
	} else {
		v.Set("lat", q.Lat)
		v.Set("lon", q.Lon)
	}
	v.Set("units", q.Units)
	return v
}

func proxyHandler(fwd Forwarder, m *metrics.Collector) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := parseProxyQuery(c)

		fail := func(code int, msg string) error {
			m.RecordProxyRequest(typeLabel(q.Type), code)
			return fiber.NewError(code, msg)
		}

		if !fwd.Configured() {
			log.Printf("ERROR: proxy: OPENWEATHER_API_KEY is not set")
			return fail(fiber.StatusInternalServerError, msgServerConfig)
		}

		if err := q.check(); err != nil {
			return fail(fiber.StatusBadRequest, err.Error())
		}

		target := q.City
		if target == "" || q.Type == providers.EndpointAirPollution {
			target = q.Lat + "," + q.Lon
		}
		log.Printf("INFO: proxy: fetching %s data for %s", q.Type, target)

		started := time.Now()
		resp, err := fwd.Forward(c.UserContext(), q.Type, q.upstreamParams())
		m.ObserveUpstream(q.Type, started)
		if err != nil {
			if errors.Is(err, providers.ErrCircuitOpen) {
				m.RecordUpstreamError("circuit_open")
				return fail(fiber.StatusServiceUnavailable, msgUnavailable)
			}
			m.RecordUpstreamError("transport")
			return fail(fiber.StatusInternalServerError, msgFetchFailed)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			m.RecordUpstreamError("upstream_status")
			log.Printf("WARN: proxy: upstream %s returned %d for %s", q.Type, resp.StatusCode, target)
			return fail(resp.StatusCode, upstreamMessage(resp.Body))
		}

		m.RecordProxyRequest(q.Type, fiber.StatusOK)
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Status(fiber.StatusOK).Send(resp.Body)
	}
}

// typeLabel keeps user input out of metric label values.
func typeLabel(t string) string {
	switch t {
	case providers.EndpointWeather, providers.EndpointForecast, providers.EndpointAirPollution:
		return t
	default:
		return "invalid"
	}
}

func upstreamMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Message == "" {
		return msgUpstreamDefault
	}
	return payload.Message
}
