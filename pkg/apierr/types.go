package apierr

import (
	"errors"
	"fmt"
	"math"
	"net"
	"time"
)

// Resource names the kind of entity a NotFoundError refers to.
type Resource string

// Resources the API can report as missing.
const (
	ResourceVersion      Resource = "version"
	ResourceBook         Resource = "book"
	ResourceChapter      Resource = "chapter"
	ResourceVerse        Resource = "verse"
	ResourcePassage      Resource = "passage"
	ResourceLanguage     Resource = "language"
	ResourceOrganization Resource = "organization"
)

// DomainError is an expected failure returned as data inside a Result.
// The set is closed: only NotFoundError and ValidationError implement it.
type DomainError interface {
	error
	Kind() Kind
	domain()
}

// NotFoundError reports a 404 for a specific resource.
type NotFoundError struct {
	Resource   Resource
	Identifier string
	Message    string
}

func (e NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.Identifier)
}

// Kind implements DomainError.
func (e NotFoundError) Kind() Kind { return KindNotFound }

// Unwrap lets errors.Is(err, ErrNotFound) match.
func (e NotFoundError) Unwrap() error { return ErrNotFound }

func (NotFoundError) domain() {}

// ValidationError reports a 400 naming the offending request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Kind implements DomainError.
func (e ValidationError) Kind() Kind { return KindInvalidInput }

// Unwrap lets errors.Is(err, ErrInvalidInput) match.
func (e ValidationError) Unwrap() error { return ErrInvalidInput }

func (ValidationError) domain() {}

// ConnectionError wraps a transport failure: DNS, refused or reset
// connections and timeouts.
type ConnectionError struct {
	Method string
	URL    string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection failure: %s %s: %v", e.Method, e.URL, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *ConnectionError) Unwrap() []error { return []error{ErrConnection, e.Err} }

// Timeout reports whether the underlying cause was a timeout.
func (e *ConnectionError) Timeout() bool {
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// AuthError reports a 401.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return "authentication failed: " + e.Message
	}
	return "authentication failed: invalid or missing app key"
}

func (e *AuthError) Unwrap() error { return ErrAuth }

// RateLimitError reports a 429. RetryAfter holds the Retry-After header in
// seconds and is nil when the header was absent or unparseable.
type RateLimitError struct {
	RetryAfter *float64
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter != nil {
		return fmt.Sprintf("rate limited: retry after %gs", *e.RetryAfter)
	}
	return "rate limited"
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// RetryAfterDuration converts RetryAfter to a time.Duration.
func (e *RateLimitError) RetryAfterDuration() (time.Duration, bool) {
	if e.RetryAfter == nil {
		return 0, false
	}
	secs := *e.RetryAfter
	if secs < 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}

// ServerError reports a 5xx.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server fault: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server fault: status %d", e.StatusCode)
}

func (e *ServerError) Unwrap() error { return ErrServer }

// StatusError reports a non-2xx status that neither the transport nor the
// endpoint assigns a meaning to.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// DecodeError reports a 2xx body that could not be decoded into Target or
// failed its validation rules.
type DecodeError struct {
	Target string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Target, e.Err)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }
