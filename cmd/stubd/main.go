package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Rrens/deskflow/internal/config"
	"github.com/Rrens/deskflow/internal/stubserver"
	"github.com/Rrens/deskflow/internal/stubserver/repository/redis"
	"github.com/Rrens/deskflow/internal/stubserver/repository/sqlite"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().
		Str("addr", cfg.Stub.Server.Addr()).
		Str("db", cfg.Stub.Database.Path).
		Msg("Starting deskflow stub backend")

	// Initialize database
	db, err := sqlite.NewDB(context.Background(), cfg.Stub.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	if err := stubserver.Seed(context.Background(), &cfg.Stub, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed database")
	}

	// Optional Redis-backed rate limiting
	var redisClient *redis.Client
	if cfg.Stub.Redis.Enabled {
		redisClient, err = redis.NewClient(cfg.Stub.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
	}

	router := stubserver.NewRouter(&cfg.Stub, db, redisClient)

	server := &http.Server{
		Addr:         cfg.Stub.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Stub.Server.ReadTimeout,
		WriteTimeout: cfg.Stub.Server.WriteTimeout,
	}

	go func() {
		log.Info().Msgf("Stub backend listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down stub backend...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Stub.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Stub backend stopped")
}
