package apierr

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Sentinel errors for every failure the client can report. Typed errors
// unwrap to exactly one of them so errors.Is works on any wrapped value.
var (
	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the server rejected the request parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrConnection indicates the request never produced an HTTP response
	ErrConnection = errors.New("connection failure")

	// ErrAuth indicates the access token was missing or rejected
	ErrAuth = errors.New("authentication failed")

	// ErrRateLimited indicates the server throttled the caller
	ErrRateLimited = errors.New("rate limited")

	// ErrServer indicates a 5xx response
	ErrServer = errors.New("server fault")

	// ErrUnexpectedStatus indicates a status the endpoint does not interpret
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrDecode indicates a successful response whose body does not match the schema
	ErrDecode = errors.New("decode failed")

	// ErrClosed indicates the client was used after Close
	ErrClosed = errors.New("client closed")
)

// Kind represents a category of error for easier classification and handling.
type Kind int

const (
	// KindUnknown represents an unclassified error
	KindUnknown Kind = iota
	// KindNotFound represents a missing resource (404)
	KindNotFound
	// KindInvalidInput represents a rejected request (400)
	KindInvalidInput
	// KindConnection represents DNS, connect, reset and timeout failures
	KindConnection
	// KindAuth represents a 401
	KindAuth
	// KindRateLimited represents a 429
	KindRateLimited
	// KindServer represents any 5xx
	KindServer
	// KindUnexpectedStatus represents a status outside the endpoint contract
	KindUnexpectedStatus
	// KindDecode represents a body that failed schema validation
	KindDecode
	// KindClosed represents use of a closed client
	KindClosed
	// KindCanceled represents context cancellation
	KindCanceled
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindInvalidInput:
		return "InvalidInput"
	case KindConnection:
		return "Connection"
	case KindAuth:
		return "Auth"
	case KindRateLimited:
		return "RateLimited"
	case KindServer:
		return "Server"
	case KindUnexpectedStatus:
		return "UnexpectedStatus"
	case KindDecode:
		return "Decode"
	case KindClosed:
		return "Closed"
	case KindCanceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

// Domain reports whether errors of this kind are delivered as data inside a Result.
func (k Kind) Domain() bool {
	return k == KindNotFound || k == KindInvalidInput
}

// Infrastructure reports whether errors of this kind are operational failures
// that are returned through the error channel.
func (k Kind) Infrastructure() bool {
	switch k {
	case KindConnection, KindAuth, KindRateLimited, KindServer:
		return true
	default:
		return false
	}
}

// kindPriorities defines the deterministic order for error classification.
// Higher priority (lower index) kinds are checked first in KindOf.
var kindPriorities = []struct {
	kind Kind
	err  error
}{
	{KindCanceled, nil},
	{KindConnection, ErrConnection},
	{KindAuth, ErrAuth},
	{KindRateLimited, ErrRateLimited},
	{KindServer, ErrServer},
	{KindNotFound, ErrNotFound},
	{KindInvalidInput, ErrInvalidInput},
	{KindUnexpectedStatus, ErrUnexpectedStatus},
	{KindDecode, ErrDecode},
	{KindClosed, ErrClosed},
}

// KindOf returns the Kind of err by checking it against the sentinel errors in
// priority order. Cancellation wins over everything else because a canceled
// call is an abrupt unwind, not a classified failure.
//
// A bare network timeout that was never wrapped by the transport still
// classifies as KindConnection.
//
//	switch apierr.KindOf(err) {
//	case apierr.KindRateLimited:
//	    // back off
//	case apierr.KindAuth:
//	    // refresh credentials
//	}
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	for _, p := range kindPriorities {
		if p.kind == KindCanceled {
			if errors.Is(err, context.Canceled) {
				return KindCanceled
			}
			continue
		}
		if errors.Is(err, p.err) {
			return p.kind
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindConnection
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindConnection
	}

	return KindUnknown
}

// HasKind reports whether the given error has the specified kind.
func HasKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsDomain reports whether err is a NotFoundError or a ValidationError.
func IsDomain(err error) bool {
	var de DomainError
	return errors.As(err, &de)
}

// IsInfrastructure reports whether err is a connection, auth, rate limit or server failure.
func IsInfrastructure(err error) bool {
	return KindOf(err).Infrastructure()
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput reports whether err is (or wraps) a ValidationError.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConnection reports whether err is a transport-level failure.
func IsConnection(err error) bool {
	return KindOf(err) == KindConnection
}

// IsAuth reports whether err is a rejected access token.
func IsAuth(err error) bool {
	return errors.Is(err, ErrAuth)
}

// IsRateLimited reports whether err is a 429 response.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsServer reports whether err is a 5xx response.
func IsServer(err error) bool {
	return errors.Is(err, ErrServer)
}

// IsDecode reports whether err is a schema mismatch in a success body.
func IsDecode(err error) bool {
	return errors.Is(err, ErrDecode)
}

// IsClosed reports whether err came from using a closed client.
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}

// Wrap wraps an error with additional context.
// It returns a new error that formats as "context: err".
// If err is nil, Wrap returns nil.
// If context is empty, returns the original error.
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	if context == "" {
		return err
	}
	return fmt.Errorf("%s: %w", context, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}
