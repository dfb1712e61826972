// internal/web/actor.go
package web

import (
	"context"

	"github.com/google/uuid"
)

// Actor is the already-authenticated identity attached to a request. The
// engine trusts it; verifying credentials happened at login. It travels in
// the request context, never in package state.
type Actor struct {
	ID   uuid.UUID
	Role string
}

const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

type contextKey string

const actorContextKey contextKey = "actor"

// WithActor returns a context carrying the actor.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// ActorFrom extracts the actor set by the authentication middleware.
func ActorFrom(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(Actor)
	return actor, ok
}
