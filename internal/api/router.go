package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/hibiken/asynq"
	"github.com/quizhub/quizhub/internal/api/handlers"
	"github.com/quizhub/quizhub/internal/api/middleware"
	"github.com/quizhub/quizhub/internal/auth"
	"github.com/quizhub/quizhub/internal/company"
	"github.com/quizhub/quizhub/internal/membership"
	"github.com/quizhub/quizhub/internal/quiz"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AuthService    *auth.Service
	AsynqClient    *asynq.Client
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	// Rate limiting - applied globally to prevent abuse
	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	// CORS - restrict to configured origins, or allow all in development
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize services
	membershipService := membership.NewService(cfg.DB, cfg.AsynqClient, cfg.Logger)
	companyService := company.NewService(cfg.DB, membershipService, cfg.Logger)
	quizService := quiz.NewService(cfg.DB, membershipService, cfg.Logger)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService)
	userHandler := handlers.NewUserHandler(cfg.AuthService)
	companyHandler := handlers.NewCompanyHandler(companyService)
	membershipHandler := handlers.NewMembershipHandler(membershipService)
	quizHandler := handlers.NewQuizHandler(quizService)
	notificationHandler := handlers.NewNotificationHandler(cfg.DB)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService))

			// User endpoints
			r.Get("/me", userHandler.Me)
			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.List)
				r.Get("/{id}", userHandler.Get)
				r.Put("/{id}", userHandler.Update)
				r.Delete("/{id}", userHandler.Delete)
			})

			// Company endpoints
			r.Route("/companies", func(r chi.Router) {
				r.Get("/", companyHandler.List)
				r.Post("/", companyHandler.Create)
				r.Get("/my", companyHandler.ListOwned)
				r.Get("/{id}", companyHandler.Get)
				r.Put("/{id}", companyHandler.Update)
				r.Delete("/{id}", companyHandler.Delete)

				// Roster
				r.Get("/{id}/members", membershipHandler.ListMembers)
				r.Put("/{id}/members/{userID}/role", membershipHandler.UpdateRole)

				// Quizzes scoped to a company
				r.Get("/{id}/quizzes", quizHandler.ListByCompany)
				r.Post("/{id}/quizzes", quizHandler.Create)
			})

			// Membership application ledger
			r.Route("/memberships", func(r chi.Router) {
				r.Get("/", membershipHandler.List)
				r.Post("/", membershipHandler.Create)
				r.Post("/{id}/accept", membershipHandler.Accept)
				r.Delete("/{id}", membershipHandler.Reject)
			})

			// Member roster rows
			r.Delete("/members/{id}", membershipHandler.RemoveMember)

			// Quizzes and questions
			r.Route("/quizzes", func(r chi.Router) {
				r.Get("/{id}", quizHandler.Get)
				r.Put("/{id}", quizHandler.Update)
				r.Delete("/{id}", quizHandler.Delete)
				r.Post("/{id}/questions", quizHandler.AddQuestion)
			})
			r.Delete("/questions/{id}", quizHandler.DeleteQuestion)

			// Notifications
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Put("/{id}/read", notificationHandler.MarkRead)
			})
		})
	})

	return &Router{r}
}
