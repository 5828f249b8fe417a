// Package ctxutil carries the acting user through a request context so the
// activity log can attribute every task mutation. It depends on nothing else
// in the module.
package ctxutil

import "context"

// ActorKey keys the actor ID in a context.
type ActorKey struct{}

// WithActorID returns a context carrying the given actor ID.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, ActorKey{}, actorID)
}

// ActorFromContext returns the actor ID carried by ctx, or "" when none is
// set. Callers fall back to a system identity for unattributed mutations.
func ActorFromContext(ctx context.Context) string {
	if v := ctx.Value(ActorKey{}); v != nil {
		return v.(string)
	}
	return ""
}
