// Package stubserver is a development double of the helpdesk backend. It
// exists so the client core can be exercised end to end without the real
// service; it is not a production server.
package stubserver

import (
	"net/http"
	"time"

	"github.com/Rrens/deskflow/internal/config"
	"github.com/Rrens/deskflow/internal/security"
	"github.com/Rrens/deskflow/internal/stubserver/handler"
	custommw "github.com/Rrens/deskflow/internal/stubserver/middleware"
	"github.com/Rrens/deskflow/internal/stubserver/repository/redis"
	"github.com/Rrens/deskflow/internal/stubserver/repository/sqlite"
	"github.com/Rrens/deskflow/internal/stubserver/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates and configures the HTTP router. redisClient may be nil,
// in which case no rate limiting is applied.
func NewRouter(cfg *config.StubConfig, db *sqlite.DB, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommw.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Repositories
	userRepo := sqlite.NewUserRepository(db)
	ticketRepo := sqlite.NewTicketRepository(db)
	messageRepo := sqlite.NewMessageRepository(db)
	companyRepo := sqlite.NewCompanyRepository(db)
	statsRepo := sqlite.NewStatsRepository(db, ticketRepo)

	// Services
	authService := service.NewAuthService(userRepo, jwtManager)
	ticketService := service.NewTicketService(ticketRepo, messageRepo)
	directoryService := service.NewDirectoryService(userRepo, ticketRepo, companyRepo, statsRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	ticketHandler := handler.NewTicketHandler(ticketService)
	directoryHandler := handler.NewDirectoryHandler(directoryService)

	authMiddleware := custommw.NewAuthMiddleware(jwtManager)

	var limit func(http.Handler) http.Handler
	if redisClient != nil {
		rateLimiter := redis.NewRateLimiter(
			redisClient,
			cfg.Security.RateLimit.RequestsPerMinute,
			cfg.Security.RateLimit.Burst,
		)
		limit = custommw.NewRateLimitMiddleware(rateLimiter).Limit
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(db))

		// Auth routes (public, rate limited when Redis is configured)
		r.Group(func(r chi.Router) {
			if limit != nil {
				r.Use(limit)
			}
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/auth/me", authHandler.Me)
			r.Put("/users/profile", authHandler.UpdateProfile)

			r.Route("/tickets", func(r chi.Router) {
				r.Get("/", ticketHandler.List)
				r.Post("/", ticketHandler.Create)

				r.Route("/{ticketID}", func(r chi.Router) {
					r.Get("/", ticketHandler.Get)
					r.Put("/", ticketHandler.Update)
					r.Get("/messages", ticketHandler.ListMessages)
					r.Post("/messages", ticketHandler.SendMessage)
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", directoryHandler.ListUsers)
				r.Get("/{userID}", directoryHandler.GetUser)
				r.Get("/{userID}/tickets", directoryHandler.ListUserTickets)
			})

			r.Get("/companies", directoryHandler.ListCompanies)
			r.Get("/dashboard/stats", directoryHandler.DashboardStats)
			r.Get("/dashboard/analytics", directoryHandler.Analytics)
		})
	})

	return r
}
