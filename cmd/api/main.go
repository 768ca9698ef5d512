// cmd/api/main.go

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	goredis "github.com/redis/go-redis/v9"

	"geosnap/internal/adapter/directory"
	"geosnap/internal/adapter/events"
	"geosnap/internal/adapter/memory"
	"geosnap/internal/adapter/signing"
	"geosnap/internal/adapter/storage"
	"geosnap/internal/config"
	"geosnap/internal/domain/photo"
	"geosnap/internal/domain/place"
	"geosnap/internal/logging"
	"geosnap/internal/server"
	"geosnap/internal/service/classifier"
	feedService "geosnap/internal/service/feed"
)

func main() {
	// A missing .env file is fine outside local development
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize storage
	places, photos, closeStore, err := initStores(ctx, cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize storage")
	}
	defer closeStore()

	var natsConn *nats.Conn
	if cfg.NATS.Enabled {
		natsConn, err = initNATS(cfg.NATS)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to connect to NATS")
		}
		defer natsConn.Close()
	}

	// Initialize the POI directory, cached in Redis when enabled
	var poiDirectory place.Directory = directory.NewClient(cfg.Directory)
	if cfg.Redis.Enabled {
		redisClient := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logging.Warn().Err(err).Msg("redis unavailable, directory cache will miss until it recovers")
		}
		poiDirectory = directory.NewCachedDirectory(poiDirectory, redisClient, cfg.Directory.CacheTTL)
	}

	var publisher classifier.EventPublisher
	if natsConn != nil {
		publisher = events.NewPublisher(natsConn, cfg.NATS.PlacesTopic)
	}

	// Initialize services
	poiClassifier := classifier.NewClassifier(classifier.DefaultRuleTable(), places, poiDirectory, publisher)

	signer, err := signing.NewSigner(cfg.Signing.BaseURL, cfg.Signing.Secret)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize url signer")
	}

	feeds := feedService.NewService(places, photos, signer, poiClassifier, feedService.Config{
		DiscoveryRadius:        cfg.Feed.DiscoveryRadius,
		LookBack:               cfg.Feed.LookBack,
		HistoricalConcurrency:  cfg.Feed.HistoricalConcurrency,
		MaxTrailPoints:         cfg.Feed.MaxTrailPoints,
		FriendsWindow:          cfg.Feed.FriendsWindow,
		RefreshPoisOnDiscovery: cfg.Directory.RefreshOnUse,
		SigningBucket:          cfg.Signing.Bucket,
		SigningTTL:             cfg.Signing.TTL,
	})

	// Initialize HTTP server
	httpServer := server.NewServer(cfg.Server, server.Dependencies{
		Feed:            feeds,
		Refresher:       poiClassifier,
		NATS:            natsConn,
		PhotoSubject:    cfg.NATS.PhotoSubject,
		DiscoveryRadius: cfg.Feed.DiscoveryRadius,
		MaxTrailPoints:  cfg.Feed.MaxTrailPoints,
	})

	// Start HTTP server
	go func() {
		logging.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Str("store", cfg.Database.Driver).Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	logging.Info().Msg("shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logging.Info().Msg("shutdown complete")
}

// initStores selects the store driver
func initStores(ctx context.Context, cfg config.DatabaseConfig) (place.Store, photo.Store, func(), error) {
	if cfg.Driver == "memory" {
		store := memory.NewStore()
		return store, store, func() {}, nil
	}

	db, err := initDatabase(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	if cfg.EnsureSchema {
		if err := storage.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
	}

	return storage.NewPlaceStore(db), storage.NewPhotoStore(db), db.Close, nil
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig) (*nats.Conn, error) {
	options := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logging.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logging.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logging.Info().Msg("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
