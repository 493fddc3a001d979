package suggest

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind is the coarse classification the lifecycles act on.
type ErrorKind int

const (
	// KindOther is any failure not covered below.
	KindOther ErrorKind = iota
	// KindAuth means the credential was rejected.
	KindAuth
	// KindNotFound means the model or endpoint does not exist.
	KindNotFound
	// KindRateLimit means the provider asked us to slow down.
	KindRateLimit
	// KindNetwork means the request never got a usable answer.
	KindNetwork
)

// String returns the error kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindRateLimit:
		return "rate_limit"
	case KindNetwork:
		return "network"
	default:
		return "other"
	}
}

// Sentinel errors returned by providers and lifecycles.
var (
	// ErrRateLimited marks a rate-limit signal raised locally.
	ErrRateLimited = errors.New("rate limited")

	// ErrNoCredential indicates no API key is configured.
	ErrNoCredential = errors.New("no credential configured")

	// ErrEmptyResponse indicates the provider returned nothing usable.
	ErrEmptyResponse = errors.New("empty response")
)

// ProviderError wraps a failed provider call.
type ProviderError struct {
	Op     string // Provider operation (e.g., "autocomplete", "grammar")
	Vendor string // Vendor name (e.g., "openai")
	Status int    // HTTP status, 0 if unknown
	Err    error  // Underlying error
}

// NewProviderError creates a ProviderError.
func NewProviderError(vendor, op string, status int, err error) *ProviderError {
	return &ProviderError{Op: op, Vendor: vendor, Status: status, Err: err}
}

func (e *ProviderError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Op
	if e.Vendor != "" {
		msg = e.Vendor + " " + msg
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Kind classifies the error from its status code.
func (e *ProviderError) Kind() ErrorKind {
	if e == nil {
		return KindOther
	}
	switch {
	case e.Status == http.StatusTooManyRequests:
		return KindRateLimit
	case e.Status == http.StatusUnauthorized, e.Status == http.StatusForbidden:
		return KindAuth
	case e.Status == http.StatusNotFound:
		return KindNotFound
	case e.Status >= 500, e.Status == http.StatusRequestTimeout:
		return KindNetwork
	}
	return KindOther
}

var rateLimitMarkers = []string{
	"429",
	"rate limit",
	"rate_limit",
	"ratelimit",
	"too many requests",
	"resource_exhausted",
	"quota exceeded",
}

var authMarkers = []string{
	"401",
	"403",
	"unauthorized",
	"invalid api key",
	"invalid_api_key",
	"incorrect api key",
	"authentication",
	"permission_denied",
}

var notFoundMarkers = []string{
	"404",
	"not found",
	"not_found",
	"does not exist",
}

var networkMarkers = []string{
	"timeout",
	"deadline exceeded",
	"connection refused",
	"connection reset",
	"no such host",
	"eof",
}

// Classify maps err onto an ErrorKind. Typed status codes win; otherwise
// the message is scanned for well-known markers.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindOther
	}
	if errors.Is(err, ErrRateLimited) {
		return KindRateLimit
	}
	if errors.Is(err, ErrNoCredential) {
		return KindAuth
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		if k := pe.Kind(); k != KindOther {
			return k
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, rateLimitMarkers):
		return KindRateLimit
	case containsAny(msg, authMarkers):
		return KindAuth
	case containsAny(msg, notFoundMarkers):
		return KindNotFound
	case containsAny(msg, networkMarkers):
		return KindNetwork
	}
	return KindOther
}

// IsRateLimit reports whether err carries a rate-limit signal.
func IsRateLimit(err error) bool {
	return Classify(err) == KindRateLimit
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
