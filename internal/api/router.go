package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(svc Service, adminToken string, rateLimit int, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(rateLimit))

	h := NewHandler(svc, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/criteria", h.Criteria)
		r.Post("/evaluate", h.Evaluate)
		r.Post("/match", h.Match)

		r.Post("/assessments", h.CreateAssessment)
		r.Get("/assessments/{id}", h.GetAssessment)
		r.Put("/assessments/{id}/answers", h.SubmitAnswers)
		r.Get("/assessments/{id}/report", h.Report)
		r.Post("/assessments/{id}/matches", h.MatchAssessment)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(adminToken))
			r.Post("/admin/lenders/invalidate", h.InvalidateLenders)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
