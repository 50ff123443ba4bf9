package server

import (
	"net/http"
	"slices"

	"productpulse-backend/internal/handlers"
	customMiddleware "productpulse-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type Deps struct {
	Onboarding *handlers.OnboardingHandler
	Blog       *handlers.BlogHandler
	Auth       *handlers.AuthHandler

	JWTSecret      string
	AllowedOrigins []string
	Log            *zap.Logger
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.RequestLogger(d.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: !slices.Contains(d.AllowedOrigins, "*"),
		MaxAge:           300,
	}))

	r.Get("/health", handlers.Health)

	// Onboarding flow
	r.Get("/onboarding/options", d.Onboarding.Options)
	r.Post("/onboarding/sessions", d.Onboarding.Start)
	r.Route("/onboarding/sessions/{id}", func(r chi.Router) {
		r.Get("/", d.Onboarding.Get)
		r.Patch("/", d.Onboarding.Update)
		r.Delete("/", d.Onboarding.Discard)
		r.Post("/focus/{focus}", d.Onboarding.ToggleFocus)
		r.Post("/next", d.Onboarding.Next)
		r.Post("/back", d.Onboarding.Back)
		r.Post("/submit", d.Onboarding.Submit)
	})
	r.Post("/onboarding/submissions", d.Onboarding.SubmitForm)

	// Blog
	r.Get("/blog/posts", d.Blog.ListPosts)
	r.Get("/blog/categories", d.Blog.Categories)

	// Admin login
	r.Post("/auth/request", d.Auth.RequestLogin)
	r.Get("/auth/verify", d.Auth.VerifyToken)
	r.Get("/auth/redirect", d.Auth.RedirectToSite)

	// Admin routes (JWT required)
	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.JWTAuth(d.JWTSecret))
		r.Use(customMiddleware.RequireAdmin)

		r.Post("/blog/posts", d.Blog.CreatePost)
	})

	return r
}
