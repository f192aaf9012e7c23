package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Namespace is the durable storage key of the session.
const Namespace = "weather-storage"

const persistTimeout = 5 * time.Second

var validate = validator.New()

// Persister is durable key/value storage for the session's durable subset.
// Load returns store.ErrNotFound when nothing was saved yet.
type Persister interface {
	Load(ctx context.Context, namespace string) ([]byte, error)
	Save(ctx context.Context, namespace string, payload []byte) error
}

// durableRecord is the persisted layout. Unknown fields are ignored on read.
type durableRecord struct {
	Favorites  []weather.FavoriteCity `json:"favorites"`
	Unit       weather.Unit           `json:"unit"`
	LastViewed *LastViewed            `json:"lastViewed"`
}

func recordOf(st State) durableRecord {
	return durableRecord{
		Favorites:  append([]weather.FavoriteCity{}, st.Favorites...),
		Unit:       st.Unit,
		LastViewed: st.LastViewed,
	}
}

// rehydrate never fails: every problem is logged and defaults are used.
func rehydrate(ctx context.Context, p Persister) durableRecord {
	rec := durableRecord{Unit: weather.DefaultUnit}
	if p == nil {
		return rec
	}

	ctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()

	payload, err := p.Load(ctx, Namespace)
	if errors.Is(err, store.ErrNotFound) {
		log.Printf("DEBUG: session: no saved state, using defaults")
		return rec
	}
	if err != nil {
		logPersistence(weather.NewError(weather.KindPersistence, "failed to read saved state", err))
		return rec
	}

	var saved durableRecord
	if err := json.Unmarshal(payload, &saved); err != nil {
		logPersistence(weather.NewError(weather.KindPersistence, "saved state is corrupt", err))
		return rec
	}

	if u, ok := weather.ParseUnit(string(saved.Unit)); ok {
		rec.Unit = u
	}
	for _, fav := range saved.Favorites {
		if err := validate.Struct(fav); err != nil {
			log.Printf("WARN: session: dropping invalid favorite %q: %v", fav.Name, err)
			continue
		}
		rec.Favorites = append(rec.Favorites, fav)
	}
	rec.LastViewed = saved.LastViewed

	log.Printf("INFO: session: restored %d favorites, unit %s", len(rec.Favorites), rec.Unit)
	return rec
}

func save(p Persister, rec durableRecord) {
	if p == nil {
		return
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		logPersistence(weather.NewError(weather.KindPersistence, "failed to encode state", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := p.Save(ctx, Namespace, payload); err != nil {
		logPersistence(weather.NewError(weather.KindPersistence, "failed to save state", err))
	}
}

func logPersistence(err *weather.Error) {
	log.Printf("WARN: session: %s: %v", err.Message, err.Err)
}
