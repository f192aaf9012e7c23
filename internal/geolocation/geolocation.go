// Package geolocation resolves the coordinates of "here" for the dashboard.
package geolocation

import (
	"context"
	"errors"
	"fmt"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// ErrorKind is the failure class of a location lookup.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindPermissionDenied
	KindPositionUnavailable
	KindTimeout
)

// Message returns the user-facing text for the kind.
func (k ErrorKind) Message() string {
	switch k {
	case KindPermissionDenied:
		return "Location permission denied. Please enable location access."
	case KindPositionUnavailable:
		return "Location information is unavailable."
	case KindTimeout:
		return "Location request timed out."
	default:
		return "An error occurred while getting your location."
	}
}

// Error is returned by every Locator.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind.Message(), e.Err)
	}
	return e.Kind.Message()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Classify converts any lookup failure into an *Error.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindUnknown, Err: err}
}

// Locator finds the device's current coordinates.
type Locator interface {
	Locate(ctx context.Context) (weather.Coordinates, error)
}

// StaticLocator always answers with a fixed position, typically the home
// coordinates from configuration.
type StaticLocator struct {
	coord weather.Coordinates
	set   bool
}

// NewStaticLocator returns a locator for coord.
func NewStaticLocator(coord weather.Coordinates) *StaticLocator {
	return &StaticLocator{coord: coord, set: true}
}

// Locate returns the configured coordinates, or KindPositionUnavailable
// when none were set.
func (l *StaticLocator) Locate(ctx context.Context) (weather.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return weather.Coordinates{}, Classify(err)
	}
	if l == nil || !l.set {
		return weather.Coordinates{}, &Error{Kind: KindPositionUnavailable}
	}
	return l.coord, nil
}
