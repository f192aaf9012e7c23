// Package session holds the dashboard's process-wide weather state: the
// active query, favorites, unit preference and the last-viewed cache.
package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-dashboard/internal/geolocation"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// ErrSuperseded is returned by a fetch that completed after a newer one was
// issued. Its result is discarded.
var ErrSuperseded = errors.New("superseded by a newer request")

const msgEmptyQuery = "Please enter a city name"

// target remembers what the last fetch asked for, so Refresh can repeat it.
type target struct {
	city  string
	coord *weather.Coordinates
	here  bool
}

// Option configures a Store.
type Option func(*Store)

// WithLocator sets the locator used by SearchCurrentLocation.
func WithLocator(l geolocation.Locator) Option {
	return func(s *Store) { s.locator = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is safe for concurrent use. Network calls run outside the lock;
// the latest issued fetch wins.
type Store struct {
	source    weather.Source
	persister Persister
	locator   geolocation.Locator
	now       func() time.Time

	mu    sync.Mutex
	state State
	seq   uint64
	last  *target

	saveMu sync.Mutex
}

// New creates the store and seeds it from durable storage. persister may be
// nil, in which case nothing is persisted.
func New(ctx context.Context, source weather.Source, persister Persister, opts ...Option) *Store {
	s := &Store{
		source:    source,
		persister: persister,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	rec := rehydrate(ctx, persister)
	s.state = State{
		Status:     StatusIdle,
		Unit:       rec.Unit,
		Favorites:  rec.Favorites,
		LastViewed: rec.LastViewed,
	}
	return s
}

// State returns a copy of the current session state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Search fetches conditions, forecast and air quality for a city name.
func (s *Store) Search(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		err := weather.NewError(weather.KindValidation, msgEmptyQuery, nil)
		s.mu.Lock()
		s.seq++
		s.state.Status = StatusFailed
		s.state.Error = err.Message
		s.mu.Unlock()
		return err
	}
	return s.fetch(ctx, target{city: query})
}

// LoadFavoriteWeather fetches by the favorite's stored coordinates.
func (s *Store) LoadFavoriteWeather(ctx context.Context, fav weather.FavoriteCity) error {
	coord := fav.Coord
	return s.fetch(ctx, target{city: fav.Name, coord: &coord})
}

// SearchCurrentLocation asks the locator for coordinates and fetches them.
func (s *Store) SearchCurrentLocation(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	token := s.seq
	s.state.Status = StatusLoading
	s.state.Error = ""
	s.mu.Unlock()

	if s.locator == nil {
		return s.fail(token, weather.NewError(weather.KindGeolocation,
			geolocation.KindPositionUnavailable.Message(), nil), false)
	}

	coord, err := s.locator.Locate(ctx)
	if err != nil {
		gerr := geolocation.Classify(err)
		log.Printf("WARN: session: locating failed: %v", gerr)
		return s.fail(token, weather.NewError(weather.KindGeolocation, gerr.Kind.Message(), gerr), false)
	}
	return s.fetch(ctx, target{coord: &coord, here: true})
}

// Refresh repeats the last fetch. It does nothing when nothing was fetched.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	if last == nil {
		return nil
	}
	return s.fetch(ctx, *last)
}

func (s *Store) fetch(ctx context.Context, t target) error {
	s.mu.Lock()
	s.seq++
	token := s.seq
	unit := s.state.Unit
	s.state.Status = StatusLoading
	s.state.Error = ""
	if !t.here {
		s.state.CurrentCity = t.city
	}
	s.last = &t
	s.mu.Unlock()

	current, forecast, err := s.fetchConditions(ctx, t, unit)
	if err != nil {
		// A failed name search clears the result; a failed coordinate
		// fetch keeps what was shown before.
		return s.fail(token, err, t.coord == nil)
	}

	aqCoord := current.Coord
	if t.coord != nil && !t.here {
		aqCoord = *t.coord
	}
	air, err := s.source.AirQuality(ctx, aqCoord)
	if err != nil {
		log.Printf("WARN: session: air quality unavailable for %.4f,%.4f: %v", aqCoord.Lat, aqCoord.Lon, err)
		air = nil
	}

	city := t.city
	if t.here {
		city = current.Name
	}

	s.mu.Lock()
	if token != s.seq {
		s.mu.Unlock()
		log.Printf("DEBUG: session: discarding stale result for %q", city)
		return ErrSuperseded
	}
	s.state.CurrentCity = city
	s.state.Weather = current
	s.state.Forecast = forecast
	s.state.AirQuality = air
	s.state.Status = StatusLoaded
	s.state.Error = ""
	s.state.LastViewed = &LastViewed{
		City:       city,
		Unit:       unit,
		Weather:    current,
		Forecast:   forecast,
		AirQuality: air,
		Timestamp:  s.now().UnixMilli(),
	}
	s.mu.Unlock()

	log.Printf("INFO: session: loaded weather for %s", city)
	s.persist()
	return nil
}

// fetchConditions runs the current-conditions and forecast calls
// concurrently; either failing fails both.
func (s *Store) fetchConditions(ctx context.Context, t target, unit weather.Unit) (*weather.WeatherSnapshot, *weather.Forecast, error) {
	var (
		wg          sync.WaitGroup
		current     *weather.WeatherSnapshot
		forecast    *weather.Forecast
		currentErr  error
		forecastErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		if t.coord != nil {
			current, currentErr = s.source.CurrentWeatherByCoords(ctx, *t.coord, unit)
		} else {
			current, currentErr = s.source.CurrentWeather(ctx, t.city, unit)
		}
	}()
	go func() {
		defer wg.Done()
		if t.coord != nil {
			forecast, forecastErr = s.source.ForecastByCoords(ctx, *t.coord, unit)
		} else {
			forecast, forecastErr = s.source.Forecast(ctx, t.city, unit)
		}
	}()
	wg.Wait()

	if currentErr != nil {
		return nil, nil, currentErr
	}
	if forecastErr != nil {
		return nil, nil, forecastErr
	}
	return current, forecast, nil
}

func (s *Store) fail(token uint64, err error, clear bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.seq {
		return ErrSuperseded
	}
	s.state.Status = StatusFailed
	s.state.Error = weather.Message(err)
	if clear {
		s.state.Weather = nil
		s.state.Forecast = nil
		s.state.AirQuality = nil
	}
	log.Printf("ERROR: session: fetch failed: %v", err)
	return err
}

// AddFavorite stores the snapshot's city. It reports false when a favorite
// with the same name (ignoring case) already exists, or when the snapshot
// would not survive a reload (blank name, out-of-range coordinates).
func (s *Store) AddFavorite(snapshot weather.WeatherSnapshot) bool {
	fav := weather.FavoriteCity{
		ID:      uuid.NewString(),
		Name:    strings.TrimSpace(snapshot.Name),
		Country: snapshot.Sys.Country,
		Coord:   snapshot.Coord,
		AddedAt: s.now().UnixMilli(),
	}
	if err := validate.Struct(fav); err != nil {
		log.Printf("WARN: session: refusing favorite %q: %v", snapshot.Name, err)
		return false
	}

	s.mu.Lock()
	if s.isFavoriteLocked(fav.Name) {
		s.mu.Unlock()
		return false
	}
	s.state.Favorites = append(s.state.Favorites, fav)
	s.mu.Unlock()

	s.persist()
	return true
}

// RemoveFavorite deletes the favorite with id and reports whether one existed.
func (s *Store) RemoveFavorite(id string) bool {
	s.mu.Lock()
	idx := -1
	for i, f := range s.state.Favorites {
		if f.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	favs := make([]weather.FavoriteCity, 0, len(s.state.Favorites)-1)
	favs = append(favs, s.state.Favorites[:idx]...)
	s.state.Favorites = append(favs, s.state.Favorites[idx+1:]...)
	s.mu.Unlock()

	s.persist()
	return true
}

// IsFavorite reports whether name (ignoring case) is a favorite.
func (s *Store) IsFavorite(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isFavoriteLocked(name)
}

func (s *Store) isFavoriteLocked(name string) bool {
	for _, f := range s.state.Favorites {
		if strings.EqualFold(f.Name, name) {
			return true
		}
	}
	return false
}

// SetUnit changes the unit preference and, if a city is being shown,
// searches it again so values come back in the new unit.
func (s *Store) SetUnit(ctx context.Context, unit weather.Unit) error {
	if !unit.Valid() {
		return weather.NewError(weather.KindValidation, "Unsupported unit "+string(unit), weather.ErrInvalidInput)
	}

	s.mu.Lock()
	s.state.Unit = unit
	city := s.state.CurrentCity
	s.mu.Unlock()

	s.persist()

	if city == "" {
		return nil
	}
	return s.Search(ctx, city)
}

// ClearSearch drops the active query and returns to Idle.
func (s *Store) ClearSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.last = nil
	s.state.CurrentCity = ""
	s.state.Weather = nil
	s.state.Forecast = nil
	s.state.AirQuality = nil
	s.state.Error = ""
	s.state.Status = StatusIdle
}

// ClearError dismisses the current error.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Error = ""
	if s.state.Status == StatusFailed {
		s.state.Status = StatusIdle
	}
}

// persist writes the current durable subset. saveMu keeps writes ordered so
// the last save always reflects the latest state.
func (s *Store) persist() {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	rec := recordOf(s.state)
	s.mu.Unlock()

	save(s.persister, rec)
}
