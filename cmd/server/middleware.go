// cmd/server/middleware.go
package main

import (
	"net/http"

	"github.com/google/uuid"

	"librakeep/internal/membership"
	"librakeep/internal/web"
)

// authenticate resolves the session's user, if any, into an Actor on the
// request context. It never rejects; the role guards do that.
func (app *application) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		idStr := app.sessions.GetString(ctx, membership.SessionKeyUserID)
		if idStr == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := uuid.Parse(idStr)
		if err != nil {
			app.sessions.Remove(ctx, membership.SessionKeyUserID)
			app.sessions.Remove(ctx, membership.SessionKeyRole)
			next.ServeHTTP(w, r)
			return
		}

		user, err := app.users.GetUser(ctx, id)
		if err != nil {
			// Stale session pointing at a deleted user.
			app.sessions.Remove(ctx, membership.SessionKeyUserID)
			app.sessions.Remove(ctx, membership.SessionKeyRole)
			next.ServeHTTP(w, r)
			return
		}

		ctx = web.WithActor(ctx, web.Actor{ID: user.ID, Role: user.Role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (app *application) requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := web.ActorFrom(r.Context())
			if !ok {
				web.JSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
				return
			}
			if actor.Role != role {
				web.JSON(w, http.StatusForbidden, map[string]string{"error": "insufficient permissions"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
