// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// DefaultActor is recorded on counter value rows when no caller identity is
// present in the context. Matches the legacy integration user.
const DefaultActor = "INTER"

// ActorContext identifies the caller on whose behalf an allocation runs.
// It feeds the audit columns of persisted counter rows.
type ActorContext struct {
	UserCode string
	Site     string
}

type actorContextKey struct{}

// WithActor adds ActorContext to context.
func WithActor(ctx context.Context, actor *ActorContext) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// GetActor returns ActorContext from context.
func GetActor(ctx context.Context) *ActorContext {
	if v, ok := ctx.Value(actorContextKey{}).(*ActorContext); ok {
		return v
	}
	return nil
}

// GetActorCode returns the audit user code from context, falling back to
// DefaultActor when no actor is set.
func GetActorCode(ctx context.Context) string {
	if a := GetActor(ctx); a != nil && a.UserCode != "" {
		return a.UserCode
	}
	return DefaultActor
}
