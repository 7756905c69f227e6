package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/taskvault/taskvault-api/internal/api/auth"
	"github.com/taskvault/taskvault-api/internal/api/todos"
	"github.com/taskvault/taskvault-api/internal/api/user"
)

// Config contains the handlers and middleware the router wires together.
type Config struct {
	AuthHandler            auth.Handler
	TodoHandler            todos.Handler
	UserHandler            user.Handler
	AuthenticateMiddleware func(http.Handler) http.Handler
}

// SetupRouter builds the application router. Server-wide middleware
// (request ID, logger, recoverer) is applied in main before mounting.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Public auth routes
	r.Group(func(r chi.Router) {
		r.Post("/auth/register", cfg.AuthHandler.Register)
		r.Post("/auth/login", cfg.AuthHandler.Login)
	})

	// Everything below requires a valid bearer token
	r.Group(func(r chi.Router) {
		r.Use(cfg.AuthenticateMiddleware)

		r.Route("/todos", func(r chi.Router) {
			r.Get("/", cfg.TodoHandler.List)
			r.Post("/", cfg.TodoHandler.Create)
			r.Put("/{todoID}", cfg.TodoHandler.Update)
			r.Delete("/{todoID}", cfg.TodoHandler.Delete)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", cfg.UserHandler.GetAll)
			r.Get("/me", cfg.UserHandler.GetMe)
		})
	})

	return r
}
