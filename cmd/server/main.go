package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"github.com/ahnxd/qrnotify/internal/api"
	"github.com/ahnxd/qrnotify/internal/bot"
	"github.com/ahnxd/qrnotify/internal/core/service"
	"github.com/ahnxd/qrnotify/internal/infrastructure/config"
	"github.com/ahnxd/qrnotify/internal/infrastructure/db/mongo"
	redisdb "github.com/ahnxd/qrnotify/internal/infrastructure/db/redis"
	"github.com/ahnxd/qrnotify/internal/infrastructure/decoder"
	"github.com/ahnxd/qrnotify/internal/infrastructure/notifier"
	"github.com/ahnxd/qrnotify/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// main wires the two ingress surfaces — the HTTP API and the Telegram
// consumer — around the shared store and runs them until a signal arrives.
func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.Env == "development"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	identityRepo := mongo.NewIdentityRepository(db)
	adminRepo := mongo.NewAdminRepository(db)
	linkRepo := mongo.NewLinkRepository(db)
	for name, ensure := range map[string]func(context.Context) error{
		"identities": identityRepo.EnsureIndexes,
		"admins":     adminRepo.EnsureIndexes,
		"links":      linkRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatal().Err(err).Str("collection", name).Msg("index creation failed")
		}
	}

	// --- Telegram ---
	tg, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram client init failed")
	}

	// --- Core services ---
	registration := service.NewRegistrationService(identityRepo, log)
	directory := service.NewDirectoryService(adminRepo, linkRepo, log)
	notify := service.NewNotifyService(
		directory,
		identityRepo,
		decoder.NewQRDecoder(),
		notifier.NewTelegramNotifier(tg),
		cfg.Greeting,
		cfg.SendTimeout,
		log,
	)

	// --- Ingress adapters ---
	e := api.NewRouter(db, rdb, api.Services{
		Registration: registration,
		Directory:    directory,
		Notify:       notify,
	}, cfg.JWTSecret, log)

	b := bot.New(tg, registration, directory, notify,
		redisdb.NewUpdateDeduper(rdb), nil, cfg.Telegram.Workers, log)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = cfg.Telegram.PollTimeout
		if err := b.Run(ctx, tg.GetUpdatesChan(u)); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		tg.StopReceivingUpdates()
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
	log.Info().Msg("shutdown complete")
}
