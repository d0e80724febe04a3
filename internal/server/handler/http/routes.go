package http

import (
	"net/http"

	"github.com/atinyakov/MediaKeeper/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the HTTP handler serving the MediaKeeper API.
//
// Routes:
//
//	POST   /api/auth/register              → authHandler.Register
//	POST   /api/auth/login                 → authHandler.Login
//	GET    /api/users/{userID}/media       → mediaHandler.List
//	POST   /api/users/{userID}/media       → mediaHandler.Create
//	PUT    /api/users/{userID}/media/{id}  → mediaHandler.Update
//	DELETE /api/users/{userID}/media/{id}  → mediaHandler.Delete
//
// Middleware chain (applied in order):
//  1. RequestID                          - X-Request-ID correlation
//  2. WithRequestLogging(logger)         - logs every request
//  3. Recoverer                          - turns panics into 500s
//  4. AllowContentType("application/json") - rejects non-JSON bodies
//  5. UserScope(users)                   - media routes only
func NewRouter(
	authHandler *AuthHandler,
	mediaHandler *MediaHandler,
	users middleware.UserLookup,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Route("/users/{"+middleware.UserParam+"}/media", func(r chi.Router) {
			r.Use(middleware.UserScope(users))
			r.Get("/", mediaHandler.List)
			r.Post("/", mediaHandler.Create)
			r.Put("/{id}", mediaHandler.Update)
			r.Delete("/{id}", mediaHandler.Delete)
		})
	})

	return r
}
