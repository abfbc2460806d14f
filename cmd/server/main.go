package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/teranga/client-registry/internal/api"
	"github.com/teranga/client-registry/internal/core/service"
	"github.com/teranga/client-registry/internal/infrastructure/config"
	mongodb "github.com/teranga/client-registry/internal/infrastructure/db/mongo"
	redisdb "github.com/teranga/client-registry/internal/infrastructure/db/redis"
	"github.com/teranga/client-registry/internal/infrastructure/email"
	"github.com/teranga/client-registry/internal/infrastructure/qrcode"
	"github.com/teranga/client-registry/internal/infrastructure/queue"
	"github.com/teranga/client-registry/internal/infrastructure/storage"
	"github.com/teranga/client-registry/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		lg := logger.Init(logger.Options{})
		lg.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	repo := mongodb.NewClientRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	// --- Side-effect adapters ---
	generator := qrcode.NewGenerator(cfg.QR.Size)
	sender := email.NewSMTPSender(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		From:     cfg.SMTP.From,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		TLSMode:  cfg.SMTP.TLSMode,
		Timeout:  cfg.SMTP.Timeout,
	}, log)
	store, err := storage.NewCloudinaryStore(cfg.Cloudinary.URL, cfg.Cloudinary.Folder, cfg.Cloudinary.Timeout)
	if err != nil {
		log.Fatal().Err(err).Msg("cloudinary init failed")
	}

	// --- Event bus: registration handlers run off the request path ---
	// The bus gets its own context so a shutdown signal does not kill the
	// workers while buffered events are still pending; Stop drains them
	// after the HTTP server has stopped accepting requests.
	bus := queue.NewBus(cfg.Queue.Workers, log)
	bus.Subscribe(service.NewQRNotificationHandler(generator, sender, log))
	bus.Subscribe(service.NewImageUploadHandler(store, repo, log))
	bus.Start(context.Background())

	registry := service.NewRegistryService(repo, bus, redisdb.NewPublishGuard(rdb), log)

	// --- HTTP ---
	e := api.NewRouter(registry, db, rdb, log)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}

	// No new registrations can arrive now; drain the queued events so no
	// committed registration loses its mail or image.
	bus.Stop()
	log.Info().Msg("event bus drained")
}
