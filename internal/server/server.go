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
	"github.com/nats-io/nats.go"

	"itinera/internal/config"
	"itinera/internal/domain/continuity"
	"itinera/internal/domain/itinerary"
	"itinera/internal/server/handlers"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.ServerConfig,
	natsConn *nats.Conn,
	eventsTopic string,
	store itinerary.Store,
	detector continuity.Detector,
	matcher continuity.Matcher,
	inferencer continuity.Inferencer,
	adjuster continuity.Adjuster,
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
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Create handler dependencies
	itineraryHandler := handlers.NewItineraryHandler(store, adjuster, natsConn, eventsTopic)
	continuityHandler := handlers.NewContinuityHandler(store, detector, matcher, inferencer, natsConn, eventsTopic)

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			// Itineraries API
			r.Route("/itineraries/{id}", func(r chi.Router) {
				r.Get("/segments", itineraryHandler.ListSegments)
				r.Post("/segments", itineraryHandler.CreateSegment)
				r.Post("/segments/{sid}/move", itineraryHandler.MoveSegment)

				r.Post("/dependencies", itineraryHandler.AddDependency)
				r.Delete("/dependencies", itineraryHandler.RemoveDependency)

				r.Get("/gaps", continuityHandler.DetectGaps)
			})

			// Segments API
			r.Route("/segments/{id}", func(r chi.Router) {
				r.Put("/", itineraryHandler.UpdateSegment)
				r.Delete("/", itineraryHandler.DeleteSegment)
				r.Get("/duration", continuityHandler.EstimateDuration)
			})

			// Location matching API
			r.Post("/match", continuityHandler.MatchLocations)
		})
	})

	// WebSocket endpoint for real-time itinerary events
	router.Get("/ws/itineraries/{id}", handlers.ItineraryWebSocketHandler(natsConn, eventsTopic))

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
