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
	"github.com/go-chi/httprate"
	"github.com/nats-io/nats.go"

	"geosnap/internal/config"
	"geosnap/internal/domain/feed"
	"geosnap/internal/logging"
	"geosnap/internal/metrics"
	"geosnap/internal/server/handlers"
)

// Dependencies are the services the HTTP surface is built on
type Dependencies struct {
	Feed      feed.Service
	Refresher handlers.PoiRefresher
	NATS      *nats.Conn // optional

	PhotoSubject    string
	DiscoveryRadius float64
	MaxTrailPoints  int
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig, deps Dependencies) *Server {
	router := NewRouter(cfg, deps)

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

// NewRouter builds the route tree
func NewRouter(cfg config.ServerConfig, deps Dependencies) *chi.Mux {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", handlers.UserIDHeader},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	feedHandler := handlers.NewFeedHandler(deps.Feed, deps.MaxTrailPoints)
	placeHandler := handlers.NewPlaceHandler(deps.Refresher, deps.DiscoveryRadius)
	discoverSocket := handlers.NewDiscoverSocket(deps.Feed, deps.NATS, deps.PhotoSubject, deps.DiscoveryRadius)

	router.Handle("/metrics", metrics.Handler())

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			r.Use(handlers.RequireIdentity)
			if cfg.RateLimit > 0 {
				r.Use(httprate.Limit(
					cfg.RateLimit,
					cfg.RateLimitWindow,
					httprate.WithKeyFuncs(httprate.KeyByIP, identityKey),
				))
			}

			// Feeds API
			r.Route("/feed", func(r chi.Router) {
				r.Get("/discover", feedHandler.Discover)
				r.Post("/historical", feedHandler.Historical)
				r.Post("/friends", feedHandler.Friends)
			})

			// Places API
			if deps.Refresher != nil {
				r.Post("/places/refresh", placeHandler.Refresh)
			}
		})
	})

	// WebSocket endpoint for live discovery
	router.With(handlers.RequireIdentity).Get("/ws/discover", discoverSocket.ServeHTTP)

	return router
}

func identityKey(r *http.Request) (string, error) {
	return r.Header.Get(handlers.UserIDHeader), nil
}

// requestLogger logs one line per request through zerolog
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			logging.Ctx(r.Context()).Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("http request")
		}()

		next.ServeHTTP(ww, r)
	})
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
