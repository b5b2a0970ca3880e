package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/apizfit/racekit/internal/api/handler"
	"github.com/apizfit/racekit/internal/api/middleware"
	"github.com/apizfit/racekit/internal/auth"
	"github.com/apizfit/racekit/internal/collection"
	"github.com/apizfit/racekit/internal/kit"
	"github.com/apizfit/racekit/internal/profile"
	"github.com/apizfit/racekit/internal/runner"
	"github.com/apizfit/racekit/internal/stats"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	DBPinger       handler.DBPinger
	Version        string
	AuthService    *auth.Service
	AccountRepo    auth.AccountRepository
	ProfileRepo    profile.Repository
	RunnerRepo     runner.Repository
	KitRepo        kit.Repository
	CollectionRepo collection.Repository
	StatsRepo      stats.Repository
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	authHandler := handler.NewAuthHandler(deps.AuthService)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.SignUp)
		r.Post("/login", authHandler.SignIn)
		r.Post("/password-reset", authHandler.RequestReset)
		r.Post("/password-reset/confirm", authHandler.ConfirmReset)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(deps.AuthService))
			r.Post("/logout", authHandler.SignOut)
			r.Get("/session", authHandler.Session)
			r.Patch("/password", authHandler.UpdatePassword)
		})
	})

	dashboardHandler := handler.NewDashboardHandler(deps.StatsRepo)
	runnerHandler := handler.NewRunnerHandler(deps.RunnerRepo, deps.KitRepo)
	kitHandler := handler.NewKitHandler(deps.KitRepo, deps.CollectionRepo)
	adminHandler := handler.NewAdminHandler(deps.ProfileRepo, deps.AccountRepo)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(deps.AuthService))

		r.Get("/dashboard", dashboardHandler.ServeHTTP)

		r.Route("/runners", func(r chi.Router) {
			r.Get("/", runnerHandler.List)
			r.Post("/", runnerHandler.Create)
			r.Post("/kits", runnerHandler.GenerateKits)
		})

		r.Route("/kits", func(r chi.Router) {
			r.Get("/", kitHandler.List)
			r.Post("/{id}/collect", kitHandler.Collect)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(profile.RoleAdmin, profile.RoleOrganizer))
				r.Get("/collections/export", kitHandler.ExportCollections)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(profile.RoleAdmin))
			r.Get("/users", adminHandler.List)
			r.Post("/users/{id}/activate", adminHandler.Activate)
			r.Post("/users/{id}/deactivate", adminHandler.Deactivate)
			r.Delete("/users/{id}", adminHandler.Delete)
		})
	})

	return r
}
