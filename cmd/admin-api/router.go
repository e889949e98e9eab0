package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mockprep/mockprep-go/internal/config"
	"github.com/mockprep/mockprep-go/internal/handler"
	"github.com/mockprep/mockprep-go/internal/middleware"
	"github.com/mockprep/mockprep-go/internal/repository"
	"github.com/mockprep/mockprep-go/internal/service"
)

func newRouter(ctx context.Context, cfg config.Config, store repository.Store, logger *slog.Logger, reg *prometheus.Registry) http.Handler {
	authHandler := handler.NewAuthHandler(
		service.NewAuthService(cfg.AdminEmail, cfg.AdminPasswordHash, cfg.JWTSecret, cfg.JWTExpiry),
		logger,
	)
	adminHandler := handler.NewAdminHandler(service.NewAdminService(store), logger)
	metrics := middleware.NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logger(logger))
	r.Use(metrics.Handler)

	r.Get("/health", handler.HandleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/admin", func(r chi.Router) {
		r.With(middleware.RateLimit(ctx, 5, 10)).Post("/login", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(cfg.JWTSecret))
			adminHandler.Routes(r)
		})
	})

	return r
}
