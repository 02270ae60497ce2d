package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ordini-app/api/internal/config"
	"github.com/ordini-app/api/internal/database"
	"github.com/ordini-app/api/internal/handler"
	"github.com/ordini-app/api/internal/metrics"
	mw "github.com/ordini-app/api/internal/middleware"
	"github.com/ordini-app/api/internal/notify"
	"github.com/ordini-app/api/internal/service"
	"github.com/ordini-app/api/internal/slack"
	"github.com/ordini-app/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication and admin middleware as needed.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub, publisher *notify.Publisher) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000", // Next.js dev server
			cfg.AppURL,              // Production frontend
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	loc := cfg.Location()

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	menuHandler := handler.NewMenuHandler()
	menuHandler.RegisterRoutes(r)

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// Slack slash commands (signature-verified, public)
	slackHandler := handler.NewSlackHandler(
		queries,
		slack.NewClient(cfg.SlackBotToken),
		hub,
		publisher,
		cfg.SlackSigningSecret,
		cfg.AppURL,
	)
	slackHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Checkout and order history
		orderService := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore {
			return database.New(db)
		})
		orderHandler := handler.NewOrderHandler(orderService, queries, hub, publisher)
		orderHandler.RegisterRoutes(r)

		// Profile
		profileHandler := handler.NewProfileHandler(queries)
		profileHandler.RegisterRoutes(r)

		// Statistics
		statsHandler := handler.NewStatisticsHandler(queries)
		statsHandler.RegisterRoutes(r)

		// Admin console
		r.Route("/admin", func(r chi.Router) {
			r.Use(mw.RequireAdmin)

			consolidationService := service.NewConsolidationService(pool, func(db database.DBTX) service.ConsolidationStore {
				return database.New(db)
			}, loc)
			adminHandler := handler.NewAdminHandler(consolidationService, queries, hub, publisher, loc)
			adminHandler.RegisterRoutes(r)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
