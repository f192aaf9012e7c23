package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

type durableStore interface {
	Load(ctx context.Context, namespace string) ([]byte, error)
	Save(ctx context.Context, namespace string, payload []byte) error
	Delete(ctx context.Context, namespace string) error
}

func exerciseStore(t *testing.T, s durableStore) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Load(ctx, "weather-storage"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Save(ctx, "weather-storage", []byte(`{"unit":"metric"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Save(ctx, "weather-storage", []byte(`{"unit":"imperial"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Save(ctx, "other", []byte(`x`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.Load(ctx, "weather-storage")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != `{"unit":"imperial"}` {
		t.Fatalf("expected last saved payload, got %s", got)
	}

	if err := s.Delete(ctx, "weather-storage"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Load(ctx, "weather-storage"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Fatalf("deleting a missing namespace should succeed, got %v", err)
	}
	if got, _ := s.Load(ctx, "other"); string(got) != "x" {
		t.Fatalf("namespaces should be independent, got %s", got)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreCopiesPayload(t *testing.T) {
	s := NewMemoryStore()
	payload := []byte("abc")
	if err := s.Save(context.Background(), "ns", payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	payload[0] = 'z'

	got, _ := s.Load(context.Background(), "ns")
	if string(got) != "abc" {
		t.Fatalf("stored payload was mutated: %s", got)
	}
}

func TestMemoryStoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewMemoryStore().Save(ctx, "ns", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")
	s, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()

	exerciseStore(t, s)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	s, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Save(ctx, "weather-storage", []byte(`{"favorites":[]}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Close()

	reopened, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Load(ctx, "weather-storage")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != `{"favorites":[]}` {
		t.Fatalf("unexpected payload: %s", got)
	}
}
