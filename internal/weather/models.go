package weather

import (
	"strings"
)

// Unit is the measurement system requested from the provider.
type Unit string

const (
	UnitMetric   Unit = "metric"
	UnitImperial Unit = "imperial"

	DefaultUnit = UnitMetric
)

// Valid reports whether u is one of the supported unit systems.
func (u Unit) Valid() bool {
	return u == UnitMetric || u == UnitImperial
}

// ParseUnit normalizes user input into a Unit.
func ParseUnit(s string) (Unit, bool) {
	u := Unit(strings.ToLower(strings.TrimSpace(s)))
	return u, u.Valid()
}

// Coordinates is a latitude/longitude pair as reported by the provider.
type Coordinates struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lon float64 `json:"lon" validate:"longitude"`
}

// Condition is a single entry of the provider's "weather" array.
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// MainData holds the temperature block shared by current and forecast payloads.
type MainData struct {
	Temp      float64  `json:"temp"`
	FeelsLike float64  `json:"feels_like"`
	TempMin   float64  `json:"temp_min"`
	TempMax   float64  `json:"temp_max"`
	Pressure  float64  `json:"pressure"`
	Humidity  float64  `json:"humidity"`
	SeaLevel  *float64 `json:"sea_level,omitempty"`
	GrndLevel *float64 `json:"grnd_level,omitempty"`
}

type Wind struct {
	Speed float64  `json:"speed"`
	Deg   float64  `json:"deg"`
	Gust  *float64 `json:"gust,omitempty"`
}

type Clouds struct {
	All int `json:"all"`
}

// Precipitation volumes in mm for the last 1h / 3h.
type Precipitation struct {
	OneHour   *float64 `json:"1h,omitempty"`
	ThreeHour *float64 `json:"3h,omitempty"`
}

type SysData struct {
	Type    int    `json:"type,omitempty"`
	ID      int    `json:"id,omitempty"`
	Country string `json:"country"`
	Sunrise int64  `json:"sunrise"`
	Sunset  int64  `json:"sunset"`
}

// WeatherSnapshot is the current-conditions record for one location at one
// observation time. A snapshot is replaced wholesale by the next fetch.
type WeatherSnapshot struct {
	Coord      Coordinates    `json:"coord"`
	Weather    []Condition    `json:"weather"`
	Base       string         `json:"base,omitempty"`
	Main       MainData       `json:"main"`
	Visibility int            `json:"visibility"`
	Wind       Wind           `json:"wind"`
	Clouds     Clouds         `json:"clouds"`
	Rain       *Precipitation `json:"rain,omitempty"`
	Snow       *Precipitation `json:"snow,omitempty"`
	Dt         int64          `json:"dt"`
	Sys        SysData        `json:"sys"`
	Timezone   int            `json:"timezone"`
	ID         int            `json:"id"`
	Name       string         `json:"name"`
	Cod        int            `json:"cod"`
}

// PrimaryCondition returns the first reported condition, if any.
func (w WeatherSnapshot) PrimaryCondition() (Condition, bool) {
	if len(w.Weather) == 0 {
		return Condition{}, false
	}
	return w.Weather[0], true
}

// ForecastItem is one 3-hour sample of a forecast series.
type ForecastItem struct {
	Dt         int64          `json:"dt"`
	Main       MainData       `json:"main"`
	Weather    []Condition    `json:"weather"`
	Clouds     Clouds         `json:"clouds"`
	Wind       Wind           `json:"wind"`
	Visibility int            `json:"visibility"`
	Pop        float64        `json:"pop"`
	Rain       *Precipitation `json:"rain,omitempty"`
	Snow       *Precipitation `json:"snow,omitempty"`
	Sys        struct {
		Pod string `json:"pod"`
	} `json:"sys"`
	// DtTxt is the provider's "YYYY-MM-DD HH:MM:SS" stamp. Day bucketing uses
	// this field rather than Dt.
	DtTxt string `json:"dt_txt"`
}

type CityData struct {
	ID         int         `json:"id"`
	Name       string      `json:"name"`
	Coord      Coordinates `json:"coord"`
	Country    string      `json:"country"`
	Population int         `json:"population"`
	Timezone   int         `json:"timezone"`
	Sunrise    int64       `json:"sunrise"`
	Sunset     int64       `json:"sunset"`
}

// Forecast is the 5 day / 3 hour forecast payload. List is ordered by
// non-decreasing timestamp and usually, but not always, holds 40 samples.
type Forecast struct {
	Cod     string         `json:"cod"`
	Message float64        `json:"message"`
	Cnt     int            `json:"cnt"`
	List    []ForecastItem `json:"list"`
	City    CityData       `json:"city"`
}

// Pollutants are raw concentrations in μg/m3.
type Pollutants struct {
	CO   float64 `json:"co"`
	NO   float64 `json:"no"`
	NO2  float64 `json:"no2"`
	O3   float64 `json:"o3"`
	SO2  float64 `json:"so2"`
	PM25 float64 `json:"pm2_5"`
	PM10 float64 `json:"pm10"`
	NH3  float64 `json:"nh3"`
}

type AirQualitySample struct {
	Dt   int64 `json:"dt"`
	Main struct {
		AQI int `json:"aqi"`
	} `json:"main"`
	Components Pollutants `json:"components"`
}

// AirQuality is the air pollution payload for a coordinate.
type AirQuality struct {
	Coord Coordinates        `json:"coord"`
	List  []AirQualitySample `json:"list"`
}

// Current returns the most recent sample.
func (a AirQuality) Current() (AirQualitySample, bool) {
	if len(a.List) == 0 {
		return AirQualitySample{}, false
	}
	return a.List[0], true
}

// FavoriteCity is a saved location. Names are unique case-insensitively;
// coordinates are not.
type FavoriteCity struct {
	ID      string      `json:"id" validate:"required"`
	Name    string      `json:"name" validate:"required"`
	Country string      `json:"country"`
	Coord   Coordinates `json:"coord"`
	AddedAt int64       `json:"addedAt"` // epoch milliseconds
}
