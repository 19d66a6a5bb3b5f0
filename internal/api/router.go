package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/planbird/planbird/internal/api/handler"
	customMiddleware "github.com/planbird/planbird/internal/api/middleware"
	"github.com/planbird/planbird/internal/config"
	"github.com/planbird/planbird/internal/repository/mongodb"
	"github.com/planbird/planbird/internal/repository/postgres"
	"github.com/planbird/planbird/internal/repository/redis"
	"github.com/planbird/planbird/internal/security"
	"github.com/planbird/planbird/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, db *postgres.DB, mongoClient *mongodb.Client, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize security components
	jwtManager := security.NewJWTManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	workspaceRepo := postgres.NewWorkspaceRepository(db)
	projectRepo := postgres.NewProjectRepository(db)
	taskRepo := postgres.NewTaskRepository(db)
	historyRepo := mongodb.NewHistoryRepository(mongoClient, cfg.Mongo.Collection)

	// Initialize rate limiter and board cache
	rateLimiter := redis.NewRateLimiter(
		redisClient,
		cfg.Security.RateLimit.RequestsPerMinute,
		cfg.Security.RateLimit.Burst,
	)
	boardCache := redis.NewBoardCache(redisClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager)
	workspaceService := service.NewWorkspaceService(workspaceRepo)
	projectService := service.NewProjectService(projectRepo, workspaceRepo, taskRepo, historyRepo)
	taskService := service.NewTaskService(taskRepo, workspaceRepo, projectRepo, historyRepo, boardCache)
	historyService := service.NewHistoryService(historyRepo, taskRepo, workspaceRepo, projectRepo, userRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService)
	projectHandler := handler.NewProjectHandler(projectService)
	taskHandler := handler.NewTaskHandler(taskService)
	historyHandler := handler.NewHistoryHandler(historyService)

	// Auth middleware
	authMiddleware := customMiddleware.NewAuthMiddleware(jwtManager)
	rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(rateLimiter)

	// Public routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(db, mongoClient, redisClient))

		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(rateLimitMiddleware.Limit)

			// Workspace routes
			r.Route("/workspaces", func(r chi.Router) {
				r.Get("/", workspaceHandler.List)
				r.Post("/", workspaceHandler.Create)

				r.Route("/{workspaceID}", func(r chi.Router) {
					r.Get("/", workspaceHandler.Get)
					r.Patch("/", workspaceHandler.Update)
					r.Delete("/", workspaceHandler.Delete)

					r.Route("/members", func(r chi.Router) {
						r.Get("/", workspaceHandler.ListMembers)
						r.Post("/", workspaceHandler.AddMember)
						r.Patch("/{memberID}", workspaceHandler.UpdateMemberRole)
						r.Delete("/{memberID}", workspaceHandler.RemoveMember)
					})

					// Project routes
					r.Route("/projects", func(r chi.Router) {
						r.Get("/", projectHandler.List)
						r.Post("/", projectHandler.Create)
					})
				})
			})

			// Project routes (by id)
			r.Route("/projects/{projectID}", func(r chi.Router) {
				r.Get("/", projectHandler.Get)
				r.Patch("/", projectHandler.Update)
				r.Delete("/", projectHandler.Delete)

				r.Route("/members", func(r chi.Router) {
					r.Get("/", projectHandler.ListMembers)
					r.Post("/", projectHandler.AddMember)
					r.Patch("/{memberID}", projectHandler.UpdateMemberRole)
					r.Delete("/{memberID}", projectHandler.RemoveMember)
				})

				r.Route("/tasks", func(r chi.Router) {
					r.Get("/", taskHandler.List)
					r.Post("/", taskHandler.Create)
				})
			})

			// Task routes
			r.Route("/tasks", func(r chi.Router) {
				r.Post("/bulk-update", taskHandler.BulkUpdate)

				r.Route("/{taskID}", func(r chi.Router) {
					r.Get("/", taskHandler.Get)
					r.Patch("/", taskHandler.Update)
					r.Delete("/", taskHandler.Delete)
				})
			})

			// History routes
			r.Route("/histories", func(r chi.Router) {
				r.Post("/", historyHandler.Create)
				r.Get("/{taskID}", historyHandler.ListByTask)
			})
		})
	})

	return r
}
