package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	r.Get("/health", apiHandler.HealthHandler)
	r.Post("/interview/chat", apiHandler.InterviewChatHandler)

	// Routes requiring a signed Telegram WebApp payload
	r.Group(func(r chi.Router) {
		r.Use(apiHandler.InitDataAuthMiddleware)
		r.Get("/me", apiHandler.MeHandler)
	})

	return r
}
