package geolocation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

func TestKindMessagesAreDistinct(t *testing.T) {
	seen := map[string]ErrorKind{}
	for _, k := range []ErrorKind{KindUnknown, KindPermissionDenied, KindPositionUnavailable, KindTimeout} {
		msg := k.Message()
		if prev, ok := seen[msg]; ok {
			t.Fatalf("kinds %d and %d share message %q", prev, k, msg)
		}
		seen[msg] = k
	}
	if got := KindPermissionDenied.Message(); got != "Location permission denied. Please enable location access." {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestClassify(t *testing.T) {
	if Classify(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
	if got := Classify(context.DeadlineExceeded).Kind; got != KindTimeout {
		t.Fatalf("expected timeout, got %d", got)
	}
	if got := Classify(errors.New("boom")).Kind; got != KindUnknown {
		t.Fatalf("expected unknown, got %d", got)
	}
	wrapped := fmt.Errorf("locate: %w", &Error{Kind: KindPermissionDenied})
	if got := Classify(wrapped).Kind; got != KindPermissionDenied {
		t.Fatalf("expected permission denied, got %d", got)
	}
}

func TestStaticLocator(t *testing.T) {
	coord := weather.Coordinates{Lat: 59.91, Lon: 10.75}
	got, err := NewStaticLocator(coord).Locate(context.Background())
	if err != nil || got != coord {
		t.Fatalf("unexpected result: %v %v", got, err)
	}

	var empty StaticLocator
	_, err = empty.Locate(context.Background())
	if Classify(err).Kind != KindPositionUnavailable {
		t.Fatalf("expected position unavailable, got %v", err)
	}
}

func TestAddressLocator(t *testing.T) {
	l := NewAddressLocator("key", " Oslo ", "", "Norway")
	l.geocode = func(addr geocoder.Address) (geocoder.Location, error) {
		if addr.City != "Oslo" || addr.Country != "Norway" {
			t.Errorf("unexpected address: %+v", addr)
		}
		return geocoder.Location{Latitude: 59.91, Longitude: 10.75}, nil
	}

	got, err := l.Locate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Lat != 59.91 || got.Lon != 10.75 {
		t.Fatalf("unexpected coordinates: %+v", got)
	}
}

func TestAddressLocatorFailures(t *testing.T) {
	tests := []struct {
		name    string
		locator *AddressLocator
		timeout time.Duration
		want    ErrorKind
	}{
		{
			name:    "no api key",
			locator: NewAddressLocator("", "Oslo", "", "Norway"),
			want:    KindPermissionDenied,
		},
		{
			name:    "no city",
			locator: NewAddressLocator("key", "", "", "Norway"),
			want:    KindPositionUnavailable,
		},
		{
			name: "geocoding error",
			locator: &AddressLocator{
				apiKey:  "key",
				address: geocoder.Address{City: "Nowhere"},
				geocode: func(geocoder.Address) (geocoder.Location, error) {
					return geocoder.Location{}, errors.New("ZERO_RESULTS")
				},
			},
			want: KindPositionUnavailable,
		},
		{
			name: "slow lookup",
			locator: &AddressLocator{
				apiKey:  "key",
				address: geocoder.Address{City: "Oslo"},
				geocode: func(geocoder.Address) (geocoder.Location, error) {
					time.Sleep(200 * time.Millisecond)
					return geocoder.Location{}, nil
				},
			},
			timeout: 10 * time.Millisecond,
			want:    KindTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, tt.timeout)
				defer cancel()
			}
			_, err := tt.locator.Locate(ctx)
			if got := Classify(err); got == nil || got.Kind != tt.want {
				t.Fatalf("expected kind %d, got %v", tt.want, err)
			}
		})
	}
}
