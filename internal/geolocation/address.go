package geolocation

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// geocoder.ApiKey is package-global.
var apiKeyMu sync.Mutex

// AddressLocator forward-geocodes a configured home address through the
// Google geocoding API.
type AddressLocator struct {
	apiKey  string
	address geocoder.Address

	geocode func(geocoder.Address) (geocoder.Location, error)
}

// NewAddressLocator returns a locator for city, state and country.
func NewAddressLocator(apiKey, city, state, country string) *AddressLocator {
	return &AddressLocator{
		apiKey: apiKey,
		address: geocoder.Address{
			City:    strings.TrimSpace(city),
			State:   strings.TrimSpace(state),
			Country: strings.TrimSpace(country),
		},
		geocode: geocodeWithKey(apiKey),
	}
}

func geocodeWithKey(apiKey string) func(geocoder.Address) (geocoder.Location, error) {
	return func(addr geocoder.Address) (geocoder.Location, error) {
		apiKeyMu.Lock()
		defer apiKeyMu.Unlock()
		geocoder.ApiKey = apiKey
		return geocoder.Geocoding(addr)
	}
}

type geocodeResult struct {
	loc geocoder.Location
	err error
}

// Locate geocodes the address. The geocoder library has no context support,
// so the lookup runs in its own goroutine and ctx bounds the wait.
func (l *AddressLocator) Locate(ctx context.Context) (weather.Coordinates, error) {
	if l.apiKey == "" {
		return weather.Coordinates{}, &Error{Kind: KindPermissionDenied, Err: errors.New("geocoder api key not configured")}
	}
	if l.address.City == "" {
		return weather.Coordinates{}, &Error{Kind: KindPositionUnavailable, Err: errors.New("home city not configured")}
	}

	done := make(chan geocodeResult, 1)
	go func() {
		loc, err := l.geocode(l.address)
		done <- geocodeResult{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		log.Printf("WARN: geolocation: lookup for %s abandoned: %v", l.address.City, ctx.Err())
		return weather.Coordinates{}, Classify(ctx.Err())
	case res := <-done:
		if res.err != nil {
			log.Printf("WARN: geolocation: geocoding %s failed: %v", l.address.City, res.err)
			return weather.Coordinates{}, &Error{Kind: KindPositionUnavailable, Err: res.err}
		}
		coord := weather.Coordinates{Lat: res.loc.Latitude, Lon: res.loc.Longitude}
		log.Printf("DEBUG: geolocation: %s resolved to %.4f,%.4f", l.address.City, coord.Lat, coord.Lon)
		return coord, nil
	}
}
