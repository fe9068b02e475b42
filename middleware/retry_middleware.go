package middleware

import (
	"context"
	"time"

	"dapcore/client"
)

// RetryMiddleware retries a call up to maxRetries times with exponential
// backoff when the adapter reports failure (LogicalEvent.Success == false).
// A transport-level error (err != nil) is not retried here: the caller's
// CallFunc is responsible for deciding whether its own transport errors are
// retryable before this layer ever sees them.
func RetryMiddleware(maxRetries int, baseDelay time.Duration) Middleware {
	return func(next CallFunc) CallFunc {
		return func(ctx context.Context, req Request) (client.LogicalEvent, error) {
			levt, err := next(ctx, req)
			if err != nil {
				return levt, err
			}
			for i := 0; i < maxRetries && !levt.Success; i++ {
				select {
				case <-ctx.Done():
					return levt, ctx.Err()
				case <-time.After(baseDelay * time.Duration(1<<i)):
				}
				levt, err = next(ctx, req)
				if err != nil {
					return levt, err
				}
			}
			return levt, nil
		}
	}
}
