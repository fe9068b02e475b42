// Package middleware implements the onion model middleware chain for the
// host-side request/response wrapper built on top of the sans-I/O client
// engine (package dapcore/client). The engine itself never blocks and has
// no notion of "call and wait for the matching response" — that is a host
// concern, and middleware hangs off the host's blocking Call function, not
// off Client.Recv/Send directly.
//
// Onion model execution order:
//
//	Chain(A, B, C)(call)  →  A(B(C(call)))
//
//	Request:   A.before → B.before → C.before → call
//	Response:  call → C.after → B.after → A.after
package middleware

import (
	"context"

	"dapcore/client"
)

// Request is one outbound command and its arguments, the unit a host's
// blocking Call function issues and waits on.
type Request struct {
	Command   string
	Arguments any
}

// CallFunc issues a request and blocks until the matching response arrives
// (or ctx is done). It is the function middleware wraps.
type CallFunc func(ctx context.Context, req Request) (client.LogicalEvent, error)

// Middleware takes a CallFunc and returns a new CallFunc that wraps it.
type Middleware func(next CallFunc) CallFunc

// Chain composes multiple middlewares into one. The first middleware in
// the list is the outermost layer: first to see the request, last to see
// the response.
func Chain(middlewares ...Middleware) Middleware {
	return func(next CallFunc) CallFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
