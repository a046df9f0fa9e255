// Package requestctx holds the per-request state shared by middleware and handlers.
package requestctx

import (
	"context"
	"runtime/debug"
	"time"
)

// RequestContext is owned by exactly one in-flight request. It is not safe
// for use from more than one goroutine.
type RequestContext struct {
	CorrelationID string
	StartedAt     time.Time
	ClientAddress string
	Method        string
	Path          string

	principalID string
	failure     *Failure
}

// Failure is a server fault recorded by a handler.
type Failure struct {
	Kind  string
	Err   error
	Stack string
}

// PrincipalID returns the authenticated user id, or "" before authentication.
func (rc *RequestContext) PrincipalID() string {
	if rc == nil {
		return ""
	}
	return rc.principalID
}

// SetPrincipal records the authenticated user id.
func (rc *RequestContext) SetPrincipal(id string) {
	if rc != nil {
		rc.principalID = id
	}
}

// RecordFailure marks the request as failed by a server fault. The first failure wins.
func (rc *RequestContext) RecordFailure(kind string, err error) {
	if rc == nil || rc.failure != nil {
		return
	}
	rc.failure = &Failure{Kind: kind, Err: err, Stack: string(debug.Stack())}
}

// Failure returns the recorded fault, if any.
func (rc *RequestContext) Failure() *Failure {
	if rc == nil {
		return nil
	}
	return rc.failure
}

type contextKey struct{}

// With returns a child context carrying rc.
func With(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, contextKey{}, rc)
}

// From returns the request context, or nil outside a request.
func From(ctx context.Context) *RequestContext {
	rc, _ := ctx.Value(contextKey{}).(*RequestContext)
	return rc
}

// CorrelationID returns the request's correlation id, or "".
func CorrelationID(ctx context.Context) string {
	if rc := From(ctx); rc != nil {
		return rc.CorrelationID
	}
	return ""
}
