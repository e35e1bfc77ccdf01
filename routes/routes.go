package routes

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/petclinic/app"
	"github.com/upb/petclinic/auth"
	"github.com/upb/petclinic/handlers"
	"github.com/upb/petclinic/middleware"
	"github.com/upb/petclinic/models"
	"github.com/upb/petclinic/utils"
)

// SetupRoutes configures all application routes and middleware.
// Authentication runs for every request and never rejects; each route
// declares what it requires of the caller.
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	if deps.Config.Server.RequestTimeout > 0 {
		r.Use(chimw.Timeout(deps.Config.Server.RequestTimeout))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "WWW-Authenticate", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(deps.AuthMiddleware.Authenticate)

	guard := deps.AuthorizationMiddleware.Require
	authenticated := guard(auth.Authenticated())
	adminOnly := guard(auth.AnyRole(models.RoleAdmin))
	adminOrOwner := guard(auth.AnyRole(models.RoleAdmin).OrOwner(handlers.EmailParam))

	health := handlers.NewHealthHandler(sqlDB(deps), deps.Logger, healthCheckers(deps))
	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.Logger)
	petHandler := handlers.NewPetHandler(deps.PetService, deps.Logger)
	userHandler := handlers.NewUserHandler(deps.UserService, deps.Logger)
	notificationHandler := handlers.NewNotificationHandler(deps.NotificationService, deps.Logger)

	// Health check endpoints
	r.Get("/healthz", health.HandleHealth)
	r.Get("/readyz", health.HandleReadiness)

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", handlers.StatusHandler(deps.Config.Environment))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/signup", authHandler.HandleSignup)
		})

		r.Route("/pets", func(r chi.Router) {
			r.Get("/", petHandler.HandleList)
			r.Get("/{id}", petHandler.HandleGet)
			r.With(authenticated).Post("/", petHandler.HandleCreate)
			r.With(adminOnly).Delete("/{id}", petHandler.HandleDelete)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(adminOnly).Get("/", userHandler.HandleList)
			r.With(authenticated).Get("/me", userHandler.HandleMe)
		})

		r.With(adminOrOwner).Get("/notifications/users/{email}", notificationHandler.HandleListForUser)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})

	return r
}

func sqlDB(deps *app.Dependencies) *sql.DB {
	if deps.DB == nil {
		return nil
	}
	return deps.DB.DB
}

func healthCheckers(deps *app.Dependencies) map[string]handlers.Checker {
	checkers := make(map[string]handlers.Checker)
	if deps.Redis != nil {
		checkers["redis"] = func(ctx context.Context) error {
			return deps.Redis.Ping(ctx).Err()
		}
	}
	return checkers
}
