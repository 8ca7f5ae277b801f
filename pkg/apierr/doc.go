// Package apierr contains the error taxonomy shared by the YouVersion client
// and its transport.
//
// # Two tiers
//
// Failures are split into two groups that travel through different channels:
//
//   - Domain errors (NotFoundError, ValidationError) are expected outcomes of
//     a well-formed call. They are values, implement DomainError and are
//     delivered inside a result.Result.
//   - Infrastructure errors (ConnectionError, AuthError, RateLimitError,
//     ServerError) are operational failures returned through the error
//     return value. StatusError, DecodeError and ErrClosed travel the same
//     way and signal a contract mismatch or misuse.
//
// # Classification
//
// Every typed error unwraps to one sentinel, so both styles work:
//
//	if errors.Is(err, apierr.ErrRateLimited) {
//	    // back off
//	}
//
//	switch apierr.KindOf(err) {
//	case apierr.KindAuth:
//	    // refresh credentials
//	case apierr.KindConnection:
//	    // check network
//	}
//
// Use errors.As to get at the fields:
//
//	var rl *apierr.RateLimitError
//	if errors.As(err, &rl) {
//	    if d, ok := rl.RetryAfterDuration(); ok {
//	        time.Sleep(d)
//	    }
//	}
package apierr
