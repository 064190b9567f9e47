package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.userMiddleware)
			r.Use(s.rateLimitMiddleware)
			r.Get("/words/next", s.handleNextWord)
			r.Post("/words/{id}/answer", s.handleAnswer)
		})
		if s.AdminToken != "" {
			r.Group(func(r chi.Router) {
				r.Use(s.adminMiddleware)
				r.Post("/admin/reconcile", s.handleReconcile)
			})
		}
	})
	return r
}
