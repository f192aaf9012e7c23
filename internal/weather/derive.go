package weather

import (
	"fmt"
	"math"
)

// DayPeriod tells whether an observation falls between sunrise and sunset.
type DayPeriod string

const (
	Day   DayPeriod = "day"
	Night DayPeriod = "night"
)

// ClassifyDayPeriod expects all three values in the same epoch base.
func ClassifyDayPeriod(sunrise, sunset, now int64) DayPeriod {
	if now < sunrise || now > sunset {
		return Night
	}
	return Day
}

var compassLabels = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// WindCompassLabel maps a wind bearing in degrees to one of 16 compass points.
func WindCompassLabel(deg float64) (string, error) {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return "", fmt.Errorf("%w: wind direction %v is not a finite number", ErrInvalidInput, deg)
	}
	norm := math.Mod(deg, 360)
	if norm < 0 {
		norm += 360
	}
	idx := int(math.Round(norm/22.5)) % len(compassLabels)
	return compassLabels[idx], nil
}

// Tier describes one band of the 1-5 air quality index.
type Tier struct {
	Level        int    `json:"level"`
	Label        string `json:"label"`
	Description  string `json:"description"`
	SeverityRank int    `json:"severityRank"`
}

var aqiTiers = map[int]Tier{
	1: {Level: 1, Label: "Good", SeverityRank: 1,
		Description: "Air quality is satisfactory, and air pollution poses little or no risk."},
	2: {Level: 2, Label: "Fair", SeverityRank: 2,
		Description: "Air quality is acceptable. Some pollutants may pose a moderate health concern."},
	3: {Level: 3, Label: "Moderate", SeverityRank: 3,
		Description: "Members of sensitive groups may experience health effects."},
	4: {Level: 4, Label: "Poor", SeverityRank: 4,
		Description: "Everyone may begin to experience health effects."},
	5: {Level: 5, Label: "Very Poor", SeverityRank: 5,
		Description: "Health warnings of emergency conditions. Everyone is more likely to be affected."},
}

// AQITier returns the tier for an index value. Anything outside 1-5,
// including a missing value, is reported as Moderate.
func AQITier(aqi int) Tier {
	if t, ok := aqiTiers[aqi]; ok {
		return t
	}
	return aqiTiers[3]
}

// Category is a coarse grouping of provider condition codes.
type Category string

const (
	CategoryClear        Category = "clear"
	CategoryClouds       Category = "clouds"
	CategoryRain         Category = "rain"
	CategoryDrizzle      Category = "drizzle"
	CategoryThunderstorm Category = "thunderstorm"
	CategorySnow         Category = "snow"
	CategoryMist         Category = "mist"
	CategoryFog          Category = "fog"
	CategoryHaze         Category = "haze"
	CategoryDust         Category = "dust"
	CategorySmoke        Category = "smoke"
)

// CategoryFor groups an OpenWeather condition id.
func CategoryFor(id int) Category {
	switch {
	case id >= 200 && id < 300:
		return CategoryThunderstorm
	case id >= 300 && id < 400:
		return CategoryDrizzle
	case id >= 500 && id < 600:
		return CategoryRain
	case id >= 600 && id < 700:
		return CategorySnow
	case id == 701:
		return CategoryMist
	case id == 711:
		return CategorySmoke
	case id == 721:
		return CategoryHaze
	case id == 731 || id == 761:
		return CategoryDust
	case id == 741:
		return CategoryFog
	case id >= 801:
		return CategoryClouds
	default:
		return CategoryClear
	}
}

// FormatTemp rounds to whole degrees and appends the unit symbol.
func FormatTemp(temp float64, unit Unit) string {
	if unit == UnitImperial {
		return fmt.Sprintf("%d°F", int(math.Round(temp)))
	}
	return fmt.Sprintf("%d°C", int(math.Round(temp)))
}

func FormatWindSpeed(speed float64, unit Unit) string {
	if unit == UnitImperial {
		return fmt.Sprintf("%.1f mph", speed)
	}
	return fmt.Sprintf("%.1f m/s", speed)
}
