package session

import (
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Status is the lifecycle of the active query.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// LastViewed caches the most recent successful fetch so it survives restarts.
type LastViewed struct {
	City       string                   `json:"city"`
	Unit       weather.Unit             `json:"unit,omitempty"` // unit the payloads were fetched in
	Weather    *weather.WeatherSnapshot `json:"weather"`
	Forecast   *weather.Forecast        `json:"forecast"`
	AirQuality *weather.AirQuality      `json:"airQuality"`
	Timestamp  int64                    `json:"timestamp"` // epoch milliseconds
}

// State is a point-in-time copy of the session. The weather payloads it
// points to are shared and must be treated as read-only.
type State struct {
	CurrentCity string
	Weather     *weather.WeatherSnapshot
	Forecast    *weather.Forecast
	AirQuality  *weather.AirQuality
	Favorites   []weather.FavoriteCity
	Status      Status
	Error       string
	Unit        weather.Unit
	LastViewed  *LastViewed
}

func (s State) clone() State {
	out := s
	out.Favorites = append([]weather.FavoriteCity(nil), s.Favorites...)
	if s.LastViewed != nil {
		lv := *s.LastViewed
		out.LastViewed = &lv
	}
	return out
}
