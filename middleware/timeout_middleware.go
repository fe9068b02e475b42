package middleware

import (
	"context"
	"time"

	"dapcore/client"

	"github.com/roadrunner-server/errors"
)

// TimeoutMiddleware enforces a maximum duration for each call. If next
// doesn't complete within timeout, it returns an error immediately.
//
// The goroutine running next is not stopped: it receives the timed-out ctx,
// and whatever it returns afterwards is discarded. The sans-I/O engine has no way to abandon a request
// already written to the wire; the matching response, if it ever arrives,
// is simply delivered as an ordinary (or unsolicited) ResponseDelivery
// event on a later Recv.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next CallFunc) CallFunc {
		return func(ctx context.Context, req Request) (client.LogicalEvent, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			done := make(chan client.LogicalEvent, 1)
			errc := make(chan error, 1)
			go func() {
				levt, err := next(ctx, req)
				if err != nil {
					errc <- err
					return
				}
				done <- levt
			}()

			select {
			case levt := <-done:
				return levt, nil
			case err := <-errc:
				return client.LogicalEvent{}, err
			case <-ctx.Done():
				return client.LogicalEvent{}, errors.E(errors.Op("middleware.Timeout"), errors.Str("call timed out: "+req.Command))
			}
		}
	}
}
