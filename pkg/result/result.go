// Package result provides a two-variant Result type that carries either a
// success value or a domain error.
//
// A Result is returned alongside a Go error by every client call. The error
// reports infrastructure problems; the Result reports what the API said about
// a well-formed request:
//
//	res, err := client.GetVersion(ctx, 111)
//	if err != nil {
//	    return err // network, auth, rate limit, server
//	}
//	res.Match(
//	    func(v youversion.Version) { fmt.Println(v.Title) },
//	    func(e apierr.DomainError) { fmt.Println("not available:", e) },
//	)
package result

import (
	"fmt"

	"github.com/PandaWhoCodes/youversion/pkg/apierr"
)

// Tag identifies the variant held by a Result.
type Tag uint8

const (
	// TagNone is the zero Result, which holds neither variant.
	TagNone Tag = iota
	// TagSuccess holds a value.
	TagSuccess
	// TagFailure holds a domain error.
	TagFailure
)

func (t Tag) String() string {
	switch t {
	case TagSuccess:
		return "Success"
	case TagFailure:
		return "Failure"
	default:
		return "None"
	}
}

// Result holds exactly one of a success value of type T or a domain error.
// Construct it with Success or Failure; the zero value is invalid and its
// accessors panic.
type Result[T any] struct {
	tag   Tag
	value T
	err   apierr.DomainError
}

// Success wraps v.
func Success[T any](v T) Result[T] {
	return Result[T]{tag: TagSuccess, value: v}
}

// Failure wraps a domain error. It panics if err is nil.
func Failure[T any](err apierr.DomainError) Result[T] {
	if err == nil {
		panic("result: Failure called with nil error")
	}
	return Result[T]{tag: TagFailure, err: err}
}

// Tag returns the variant held by r.
func (r Result[T]) Tag() Tag { return r.tag }

// IsSuccess reports whether r holds a value.
func (r Result[T]) IsSuccess() bool { return r.tag == TagSuccess }

// IsFailure reports whether r holds a domain error.
func (r Result[T]) IsFailure() bool { return r.tag == TagFailure }

// Value returns the success value. It panics on a Failure or zero Result.
func (r Result[T]) Value() T {
	if r.tag != TagSuccess {
		panic(fmt.Sprintf("result: Value called on %s", r.tag))
	}
	return r.value
}

// Err returns the domain error. It panics on a Success or zero Result.
func (r Result[T]) Err() apierr.DomainError {
	if r.tag != TagFailure {
		panic(fmt.Sprintf("result: Err called on %s", r.tag))
	}
	return r.err
}

// Get returns the value and true for a Success, or the zero value and false.
func (r Result[T]) Get() (T, bool) {
	if r.tag != TagSuccess {
		var zero T
		return zero, false
	}
	return r.value, true
}

// Match calls exactly one of the two functions depending on the variant.
func (r Result[T]) Match(onSuccess func(T), onFailure func(apierr.DomainError)) {
	switch r.tag {
	case TagSuccess:
		onSuccess(r.value)
	case TagFailure:
		onFailure(r.err)
	default:
		panic("result: Match called on zero Result")
	}
}

func (r Result[T]) String() string {
	switch r.tag {
	case TagSuccess:
		return fmt.Sprintf("Success(%+v)", r.value)
	case TagFailure:
		return fmt.Sprintf("Failure(%v)", r.err)
	default:
		return "Result(<none>)"
	}
}

// Fold reduces r to a single value of type U.
func Fold[T, U any](r Result[T], onSuccess func(T) U, onFailure func(apierr.DomainError) U) U {
	switch r.tag {
	case TagSuccess:
		return onSuccess(r.value)
	case TagFailure:
		return onFailure(r.err)
	default:
		panic("result: Fold called on zero Result")
	}
}

// Map transforms the success value and passes a failure through unchanged.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	switch r.tag {
	case TagSuccess:
		return Success(fn(r.value))
	case TagFailure:
		return Result[U]{tag: TagFailure, err: r.err}
	default:
		panic("result: Map called on zero Result")
	}
}
