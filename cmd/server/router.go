package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/habitutor/habitutor-api/internal/api"
	apiMiddleware "github.com/habitutor/habitutor-api/internal/api/middleware"
	"github.com/habitutor/habitutor-api/internal/platform/ratelimit"
	"github.com/rs/cors"
)

// setupRouter creates the router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.metrics.Middleware)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))

	authHandler := api.NewAuthHandler(app.authService)
	flashcardHandler := api.NewFlashcardHandler(app.flashcardService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.userStore)

	r.Route("/api", func(r chi.Router) {
		r.Use(ratelimit.Middleware(app.limiter, app.limiter.Window(), ratelimit.ByRemoteIP))

		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/flashcard", func(r chi.Router) {
				r.Get("/", flashcardHandler.Get)
				r.Post("/", flashcardHandler.Save)
				r.Post("/start", flashcardHandler.Start)
				r.Post("/submit", flashcardHandler.Submit)
				r.Get("/result", flashcardHandler.Result)
				r.With(apiMiddleware.RequirePremium).Get("/history", flashcardHandler.History)
			})
		})
	})

	r.Handle("/metrics", app.metrics.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return cors.New(cors.Options{
		AllowedOrigins:   app.config.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
	}).Handler(r)
}
