package weather

import (
	"errors"
)

var (
	// ErrInvalidInput is returned by the aggregator for malformed samples or
	// non-finite numeric fields.
	ErrInvalidInput = errors.New("invalid input")
)

// ErrorKind classifies failures on the fetch path.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindNotFound
	KindAuthConfig
	KindTimeout
	KindNetwork
	KindUpstream
	KindGeolocation
	KindPersistence
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuthConfig:
		return "auth_config"
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	case KindUpstream:
		return "upstream"
	case KindGeolocation:
		return "geolocation"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Error carries a user-facing message; Err keeps the underlying cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so callers can write
// errors.Is(err, &weather.Error{Kind: weather.KindNotFound}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewError builds an *Error of the given kind.
func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// KindOf reports the kind of err, or KindUnknown if it is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the user-facing text for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "Failed to fetch weather data"
}
