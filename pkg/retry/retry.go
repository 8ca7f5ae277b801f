package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/PandaWhoCodes/youversion/pkg/apierr"
)

// JitterStrategy selects how delays are randomized.
type JitterStrategy int

const (
	// JitterNone uses the computed delay as is.
	JitterNone JitterStrategy = iota
	// JitterEqual picks uniformly between half the delay and the delay.
	JitterEqual
	// JitterDecorrelated picks between the delay and 1.5 times the delay.
	JitterDecorrelated
)

// Policy defines retry behavior.
type Policy struct {
	// MaxAttempts counts the first call. 1 disables retries.
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	// MaxElapsed bounds the total time spent, 0 means no limit.
	MaxElapsed time.Duration
	Multiplier float64
	Jitter     JitterStrategy
	// Retryable decides which errors are retried. Defaults to Retryable.
	Retryable func(error) bool
	// OnRetry is called before each wait.
	OnRetry func(attempt int, err error, delay time.Duration)

	Rand  *rand.Rand
	Now   func() time.Time
	After func(time.Duration) <-chan time.Time
}

// DefaultPolicy retries three times with decorrelated jitter.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: 250 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2,
		Jitter:       JitterDecorrelated,
	}
}

// WithAttempts returns DefaultPolicy with n attempts in total.
func WithAttempts(n int) Policy {
	p := DefaultPolicy()
	p.MaxAttempts = n
	return p
}

func (p *Policy) normalize() error {
	if p.MaxAttempts <= 0 {
		return errors.New("retry: MaxAttempts must be positive")
	}
	if p.InitialDelay <= 0 {
		return errors.New("retry: InitialDelay must be positive")
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 30 * time.Second
	}
	if p.InitialDelay > p.MaxDelay {
		return errors.New("retry: InitialDelay cannot exceed MaxDelay")
	}
	if p.Multiplier == 0 {
		p.Multiplier = 2
	}
	if p.Multiplier < 1 {
		return errors.New("retry: Multiplier must be >= 1")
	}
	if p.MaxElapsed < 0 {
		return errors.New("retry: MaxElapsed cannot be negative")
	}
	if p.Retryable == nil {
		p.Retryable = Retryable
	}
	if p.Rand == nil {
		p.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.After == nil {
		p.After = time.After
	}
	return nil
}

// Retryable reports whether err is a transient API failure: rate limiting,
// a server fault or a connection failure. Domain errors, auth failures,
// decode failures, a closed client and cancellation are final.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	switch apierr.KindOf(err) {
	case apierr.KindRateLimited, apierr.KindServer, apierr.KindConnection:
		return true
	}
	return false
}

// ExhaustedError is returned when the policy gives up on a retryable error.
type ExhaustedError struct {
	Last     error
	Attempts int
	Elapsed  time.Duration
	Reason   string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry: %s after %s (%d attempts): %v", e.Reason, e.Elapsed, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Do calls fn until it succeeds, returns a final error or the policy runs out.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	_, err := Call(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Call is Do for functions returning a value, such as client methods:
//
//	res, err := retry.Call(ctx, policy, func(ctx context.Context) (result.Result[youversion.Version], error) {
//	    return c.GetVersion(ctx, 111)
//	})
func Call[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := p.normalize(); err != nil {
		return zero, err
	}

	start := p.Now()
	var last error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		last = err
		if !p.Retryable(err) {
			return zero, err
		}
		if attempt == p.MaxAttempts {
			break
		}

		delay := p.delay(attempt, err)
		elapsed := p.Now().Sub(start)
		if p.MaxElapsed > 0 && elapsed+delay > p.MaxElapsed {
			return zero, &ExhaustedError{Last: err, Attempts: attempt, Elapsed: elapsed, Reason: "max elapsed time exceeded"}
		}
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < delay {
			return zero, &ExhaustedError{Last: err, Attempts: attempt, Elapsed: elapsed, Reason: "context deadline too close"}
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, err, delay)
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-p.After(delay):
		}
	}
	return zero, &ExhaustedError{Last: last, Attempts: p.MaxAttempts, Elapsed: p.Now().Sub(start), Reason: "max attempts exceeded"}
}

// delay honors a server Retry-After hint, otherwise backs off exponentially.
func (p Policy) delay(attempt int, err error) time.Duration {
	var rl *apierr.RateLimitError
	if errors.As(err, &rl) {
		if d, ok := rl.RetryAfterDuration(); ok {
			return min(d, p.MaxDelay)
		}
	}
	return p.jitter(p.backoff(attempt))
}

func (p Policy) backoff(attempt int) time.Duration {
	d := p.InitialDelay
	for i := 1; i < attempt; i++ {
		next := time.Duration(float64(d) * p.Multiplier)
		if next > p.MaxDelay || next < d {
			return p.MaxDelay
		}
		d = next
	}
	return d
}

func (p Policy) jitter(d time.Duration) time.Duration {
	if d <= 1 {
		return d
	}
	switch p.Jitter {
	case JitterEqual:
		half := d / 2
		return half + time.Duration(p.Rand.Int63n(int64(d-half)+1))
	case JitterDecorrelated:
		return min(d+time.Duration(p.Rand.Int63n(int64(d/2)+1)), p.MaxDelay)
	default:
		return d
	}
}
