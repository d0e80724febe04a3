// Package middleware provides HTTP middlewares for request correlation,
// logging and per-user route scoping.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type ctxKey string

const userKey ctxKey = "user"

// UserParam is the route parameter holding the user id.
const UserParam = "userID"

// UserLookup reports whether a user id belongs to an account.
type UserLookup interface {
	UserExists(ctx context.Context, id int64) (bool, error)
}

// UserScope resolves the {userID} route parameter, rejects ids that are
// malformed or unknown, and stores the id in the request context for the
// handlers below it.
func UserScope(users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.ParseInt(chi.URLParam(r, UserParam), 10, 64)
			if err != nil || id <= 0 {
				writeError(w, http.StatusBadRequest, "invalid user id")
				return
			}
			exists, err := users.UserExists(r.Context(), id)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if !exists {
				writeError(w, http.StatusNotFound, "user not found")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
		})
	}
}

// WithUserID returns a copy of ctx carrying the scoped user id.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userKey, id)
}

// GetUserIDFromContext extracts the scoped user id from the request context.
// It returns 0 if none is set.
func GetUserIDFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(userKey).(int64); ok {
		return id
	}
	return 0
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
