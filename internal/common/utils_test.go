package common

import "testing"

func TestHasAny(t *testing.T) {
	if !HasAny("Invalid API key. Please see", "quota", "Invalid API key") {
		t.Error("expected match")
	}
	if HasAny("city not found", "Invalid API key") {
		t.Error("expected no match")
	}
	if HasAny("anything") {
		t.Error("expected no match without substrings")
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty("", "  ", " Paris ", "Rome"); got != "Paris" {
		t.Errorf("expected Paris, got %q", got)
	}
	if got := FirstNonEmpty("", " "); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}
