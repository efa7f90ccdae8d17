package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/guaianases/go-recruiting-backend/internal/config"
	httpapi "github.com/guaianases/go-recruiting-backend/internal/http"
	"github.com/guaianases/go-recruiting-backend/internal/notifycache"
	"github.com/guaianases/go-recruiting-backend/internal/observability"
	"github.com/guaianases/go-recruiting-backend/internal/repo"
	"github.com/guaianases/go-recruiting-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("setup tracing")
	}

	var slot notifycache.Slot
	if cfg.Cache.RedisAddr != "" {
		client := goredis.NewClient(&goredis.Options{Addr: cfg.Cache.RedisAddr})
		defer func() { _ = client.Close() }()
		slot = notifycache.NewRedisSlot(client, cfg.Cache.SlotKey)
		log.Info().Str("addr", cfg.Cache.RedisAddr).Str("key", cfg.Cache.SlotKey).Msg("notification cache backed by redis")
	} else {
		slot = notifycache.NewMemorySlot()
		log.Info().Msg("notification cache backed by process memory")
	}
	cache := notifycache.New(slot, notifycache.WithPollInterval(cfg.Cache.PollInterval))
	go cache.Run(ctx)

	r := gin.New()
	httpapi.RegisterRoutes(r, db, cache, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server stopped")
}
