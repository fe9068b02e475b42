package middleware

import (
	"context"

	"dapcore/client"

	"github.com/roadrunner-server/errors"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware token-bucket limits outbound calls: tokens refill at
// r per second up to burst. The limiter is created once, in the outer
// closure, and shared across every call through this middleware instance —
// creating it per-call would hand every request a fresh full bucket and
// defeat the limiting entirely.
func RateLimitMiddleware(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next CallFunc) CallFunc {
		return func(ctx context.Context, req Request) (client.LogicalEvent, error) {
			if !limiter.Allow() {
				return client.LogicalEvent{}, errors.E(errors.Op("middleware.RateLimit"), errors.Str("rate limit exceeded: "+req.Command))
			}
			return next(ctx, req)
		}
	}
}
