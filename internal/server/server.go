// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"zonechat/internal/common/clock"
	"zonechat/internal/config"
	"zonechat/internal/domain/identity"
	"zonechat/internal/domain/zone"
	"zonechat/internal/server/handlers"
	chatService "zonechat/internal/service/chat"
	sessionService "zonechat/internal/service/session"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.ServerConfig,
	identities identity.Service,
	sessions *sessionService.Manager,
	chat *chatService.Service,
	zones zone.Store,
	registry handlers.ConnectionRegistry,
	clk clock.Clock,
) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Create handler dependencies
	communityHandler := handlers.NewCommunityHandler(sessions, chat)
	zoneHandler := handlers.NewZoneHandler(zones, chat, clk)

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			r.Use(handlers.Authenticator(identities))

			// Community API
			r.Route("/community", func(r chi.Router) {
				r.Post("/enter", communityHandler.Enter)

				r.Route("/sessions/{id}", func(r chi.Router) {
					r.Post("/location", communityHandler.CheckLocation)
					r.Post("/messages", communityHandler.SendMessage)
					r.Post("/report", communityHandler.Report)
				})

				r.Get("/zones/{id}/messages", communityHandler.GetMessages)
			})

			// Admin API
			r.Route("/admin", func(r chi.Router) {
				r.Use(handlers.RequireStaff)

				r.Route("/zones", func(r chi.Router) {
					r.Get("/", zoneHandler.ListZones)
					r.Post("/", zoneHandler.CreateZone)
					r.Put("/{id}", zoneHandler.UpdateZone)
					r.Delete("/{id}", zoneHandler.DeleteZone)
				})

				r.Delete("/messages/{id}", zoneHandler.DeleteMessage)
				r.Post("/reset", zoneHandler.Reset)
			})
		})
	})

	// WebSocket endpoint for real-time zone event delivery
	router.Get("/ws/zones/{id}", handlers.ZoneWebSocketHandler(registry))

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
