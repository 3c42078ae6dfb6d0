package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/montesion/montesion-api/internal/api"
	apiMiddleware "github.com/montesion/montesion-api/internal/api/middleware"
	"github.com/montesion/montesion-api/internal/api/shared"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)
	r.Use(app.metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.CORS.Origins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{shared.TraceIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := api.NewAuthHandler(app.accountService, app.logger)
	prayerHandler := api.NewPrayerHandler(app.prayerService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.accountService)

	var pinger api.Pinger
	if app.db != nil {
		pinger = app.db
	}
	infoHandler := api.NewInfoHandler(pinger, app.logger)

	r.Get("/", infoHandler.Root)
	r.Get("/health", infoHandler.Health)
	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	r.Route("/auth", func(r chi.Router) {
		// Public endpoints
		r.Post("/register", authHandler.Register)
		r.Post("/token", authHandler.Login)
		r.Post("/password-reset", authHandler.RequestPasswordReset)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Get("/auth", authHandler.CurrentUser)
			r.Put("/update", authHandler.UpdateProfile)
			r.Delete("/delete", authHandler.DeleteAccount)
		})
	})

	r.Route("/peticiones", func(r chi.Router) {
		r.Get("/", prayerHandler.Message)
		r.Post("/", prayerHandler.Submit)
	})

	return r
}
