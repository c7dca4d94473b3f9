package handler

import (
	"github.com/gofiber/fiber/v2"

	"vocab-quiz/internal/middleware"
)

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Quiz *QuizHandler
	Auth *AuthHandler
	User *UserHandler
}

// RegisterRoutes mounts every API route on api.
func RegisterRoutes(api fiber.Router, h Handlers, tokens middleware.TokenValidator) {
	protected := middleware.Protected(tokens)
	optional := middleware.OptionalAuth(tokens)

	authGroup := api.Group("/auth")
	authGroup.Get("/google/login", h.Auth.GoogleLogin)
	authGroup.Get("/google/callback", h.Auth.GoogleCallback)
	authGroup.Post("/refresh", h.Auth.RefreshToken)
	authGroup.Post("/logout", protected, h.Auth.Logout)

	userGroup := api.Group("/users", protected)
	userGroup.Get("/me", h.User.GetMyProfile)
	userGroup.Get("/me/progress", h.User.GetMyProgress)

	api.Get("/levels", h.Quiz.ListLevels)
	api.Post("/grade", h.Quiz.Grade)

	sessions := api.Group("/sessions")
	sessions.Post("/", optional, h.Quiz.StartSession)
	sessions.Get("/:id", h.Quiz.GetSession)
	sessions.Post("/:id/answer", h.Quiz.SubmitAnswer)
	sessions.Post("/:id/next", h.Quiz.NextQuestion)
}
