// Package server implements the HTTP server and routing logic.
package server

import (
	"net/http"

	"github.com/maruel/blogdb/internal/metrics"
	"github.com/maruel/blogdb/internal/server/handlers"
)

// NewRouter creates and configures the HTTP router.
//
// The API is served under /api/v1 and Prometheus metrics at /metrics.
func NewRouter(svc *handlers.Services, cfg *Config) http.Handler {
	c := Config{}
	if cfg != nil {
		c = *cfg
	}
	cfg = &c
	if cfg.History == nil {
		cfg.History = svc.History
	}
	if cfg.Files == nil {
		cfg.Files = svc.Files
	}
	mux := &http.ServeMux{}
	hh := handlers.NewHealthHandler(cfg.Version)
	uh := handlers.NewUserHandler(svc)
	ph := handlers.NewPostHandler(svc)
	ch := handlers.NewCommentHandler(svc)
	sh := handlers.NewSchemaHandler()
	histh := handlers.NewHistoryHandler(svc)

	mux.Handle("GET /api/v1/health", Wrap(hh.Health, cfg))

	// Users
	mux.Handle("GET /api/v1/users", Wrap(uh.ListUsers, cfg))
	mux.Handle("POST /api/v1/users", WrapCreated(uh.CreateUser, cfg))
	mux.Handle("GET /api/v1/users/{id}", Wrap(uh.GetUser, cfg))
	mux.Handle("PUT /api/v1/users/{id}", Wrap(uh.UpdateUser, cfg))
	mux.Handle("PATCH /api/v1/users/{id}", Wrap(uh.PatchUser, cfg))
	mux.Handle("DELETE /api/v1/users/{id}", Wrap(uh.DeleteUser, cfg))

	// Posts
	mux.Handle("GET /api/v1/posts", Wrap(ph.ListPosts, cfg))
	mux.Handle("POST /api/v1/posts", WrapCreated(ph.CreatePost, cfg))
	mux.Handle("GET /api/v1/posts/{id}", Wrap(ph.GetPost, cfg))
	mux.Handle("PUT /api/v1/posts/{id}", Wrap(ph.UpdatePost, cfg))
	mux.Handle("PATCH /api/v1/posts/{id}", Wrap(ph.PatchPost, cfg))
	mux.Handle("DELETE /api/v1/posts/{id}", Wrap(ph.DeletePost, cfg))
	mux.Handle("GET /api/v1/posts/{id}/comments", Wrap(ph.ListPostComments, cfg))

	// Comments
	mux.Handle("GET /api/v1/comments", Wrap(ch.ListComments, cfg))
	mux.Handle("POST /api/v1/comments", WrapCreated(ch.CreateComment, cfg))
	mux.Handle("GET /api/v1/comments/{id}", Wrap(ch.GetComment, cfg))
	mux.Handle("PUT /api/v1/comments/{id}", Wrap(ch.UpdateComment, cfg))
	mux.Handle("PATCH /api/v1/comments/{id}", Wrap(ch.PatchComment, cfg))
	mux.Handle("DELETE /api/v1/comments/{id}", Wrap(ch.DeleteComment, cfg))

	// Introspection
	mux.Handle("GET /api/v1/schema/{table}", Wrap(sh.GetSchema, cfg))
	mux.Handle("GET /api/v1/history", Wrap(histh.ListHistory, cfg))

	mux.Handle("GET /metrics", metrics.Handler())

	return LogRequests(metrics.InstrumentHandler(mux))
}
