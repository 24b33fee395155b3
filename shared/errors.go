package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies market data failures.
type ErrorKind int

const (
	// UnknownInstrument flags an instrument not present in the catalog,
	// failed before any network call.
	UnknownInstrument ErrorKind = iota
	// TransportTimeout flags a request that exceeded its timeout.
	TransportTimeout
	// ProviderRejected flags a non-2xx provider response.
	ProviderRejected
	// ProviderError flags a provider declared failure on an otherwise
	// successful response.
	ProviderError
	// MalformedPayload flags a payload that cannot be normalized into a
	// valid series.
	MalformedPayload
)

// String stringifies the provided error kind.
func (k ErrorKind) String() string {
	switch k {
	case UnknownInstrument:
		return "unknown instrument"
	case TransportTimeout:
		return "transport timeout"
	case ProviderRejected:
		return "provider rejected"
	case ProviderError:
		return "provider error"
	case MalformedPayload:
		return "malformed payload"
	default:
		return "unknown"
	}
}

// MarketError represents a classified market data failure.
type MarketError struct {
	// Kind is the failure classification.
	Kind ErrorKind
	// Status is the http status for provider rejections.
	Status int
	// Message describes the failure.
	Message string
	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface.
func (e *MarketError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind.String(), e.Message, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Kind.String(), e.Message)
}

// Unwrap returns the underlying error.
func (e *MarketError) Unwrap() error {
	return e.Err
}

// NewMarketError initializes a new market error.
func NewMarketError(kind ErrorKind, message string, err error) *MarketError {
	return &MarketError{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// ErrKind returns the classification of the provided error and whether it
// is a market error.
func ErrKind(err error) (ErrorKind, bool) {
	var mErr *MarketError
	if errors.As(err, &mErr) {
		return mErr.Kind, true
	}

	return 0, false
}

// IsErrKind checks whether the provided error is a market error of the
// provided kind.
func IsErrKind(err error, kind ErrorKind) bool {
	k, ok := ErrKind(err)
	return ok && k == kind
}
