// Package retry re-issues YouVersion calls that failed for transient reasons.
//
// Only infrastructure errors that can clear up on their own are retried:
// rate limiting, server faults and connection failures. A rate limit with a
// Retry-After hint waits exactly that long (capped by MaxDelay); everything
// else backs off exponentially with jitter. Domain errors never reach the
// retry loop because they are returned inside the Result, not as an error.
//
//	res, err := retry.Call(ctx, retry.WithAttempts(4), func(ctx context.Context) (result.Result[youversion.Passage], error) {
//	    return c.GetPassage(ctx, 111, "JHN.3.16", nil)
//	})
//
// Waits are abandoned when ctx is done, and a wait that would outlast the
// context deadline is not started.
package retry
