package weather

import (
	"context"
)

// Source abstracts the weather endpoint the session store reads from.
type Source interface {
	CurrentWeather(ctx context.Context, city string, unit Unit) (*WeatherSnapshot, error)
	CurrentWeatherByCoords(ctx context.Context, coord Coordinates, unit Unit) (*WeatherSnapshot, error)
	Forecast(ctx context.Context, city string, unit Unit) (*Forecast, error)
	ForecastByCoords(ctx context.Context, coord Coordinates, unit Unit) (*Forecast, error)
	AirQuality(ctx context.Context, coord Coordinates) (*AirQuality, error)
}
