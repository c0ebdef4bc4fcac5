package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mnemo-app/mnemo-api/internal/api"
	apiMiddleware "github.com/mnemo-app/mnemo-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	sessionHandler := api.NewSessionHandler(
		app.reviewService,
		app.sessions,
		app.returnHorizon,
		app.logger,
	)
	cardHandler := api.NewCardHandler(app.reviewService, app.logger)

	r.Route("/api/users/{userID}", func(r chi.Router) {
		// Session lifecycle
		r.Route("/session", func(r chi.Router) {
			r.Post("/", sessionHandler.StartSession)
			r.Get("/", sessionHandler.GetState)
			r.Delete("/", sessionHandler.EndSession)
			r.Post("/reveal", sessionHandler.RevealAnswer)
			r.Post("/grade", sessionHandler.SubmitGrade)
			r.Post("/extend", sessionHandler.ExtendSession)
		})

		// Card authoring and scheduling maintenance
		r.Post("/cards", cardHandler.CreateCard)
		r.Post("/items/{itemID}/postpone", cardHandler.PostponeItem)
		r.Get("/config", cardHandler.GetConfig)
		r.Put("/config", cardHandler.UpdateConfig)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
