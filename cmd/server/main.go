package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/vidhyadham/server/internal/config"
	"github.com/vidhyadham/server/internal/database"
	"github.com/vidhyadham/server/internal/handler"
	"github.com/vidhyadham/server/internal/logger"
	"github.com/vidhyadham/server/internal/middleware"
	"github.com/vidhyadham/server/internal/notify"
	"github.com/vidhyadham/server/internal/queue"
	"github.com/vidhyadham/server/internal/repository"
	"github.com/vidhyadham/server/internal/router"
	"github.com/vidhyadham/server/internal/storage"
	"github.com/vidhyadham/server/internal/store"
)

func main() {
	_ = godotenv.Load() // absent .env is fine in production

	cfg := config.Load()
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := database.EnsureSchema(ctx, db, cfg.SeatCount); err != nil {
		log.Error("schema migration failed", "err", err)
		os.Exit(1)
	}

	// Build the state store and hydrate it from the database. The store is
	// the single writer from here on; repositories only load and persist.
	st := buildStore(ctx, cfg, db, log)

	emailSender := notify.NewEmailSender()
	telegramSender := notify.NewTelegramSender()

	// The consumer drains the committed-mutation queue and fans events out
	// to email and Telegram. It reconnects on its own until shutdown.
	if cfg.AMQPURL != "" {
		dispatcher := notify.NewDispatcher(st, emailSender, telegramSender, log)
		go func() {
			if err := queue.StartConsumer(ctx, cfg.AMQPURL, dispatcher.Dispatch, log); err != nil {
				log.Error("event consumer stopped", "err", err)
			}
		}()
	}

	rdb := config.NewRedisClient()
	var rateLimit, respCache echo.MiddlewareFunc
	if rdb != nil {
		rateLimit = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
		respCache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	}

	admins := repository.NewAdminRepo(db)
	tokens := repository.NewTokenRepo(db)

	api := &router.API{
		Auth:           handler.NewAuthHandler(cfg, admins, tokens),
		Users:          handler.NewUserHandler(st),
		Seats:          handler.NewSeatHandler(st),
		Stats:          handler.NewStatsHandler(st),
		Settings:       handler.NewSettingsHandler(st),
		Notify:         handler.NewNotifyHandler(st, emailSender, telegramSender),
		Uploads:        handler.NewUploadHandler(st, storage.NewLocal(cfg.UploadDir, cfg.UploadBaseURL)),
		JWTSecret:      cfg.JWTSecret,
		RateLimit:      rateLimit,
		ResponseCache:  respCache,
		MetricsEnabled: cfg.MetricsEnabled,
		UploadDir:      cfg.UploadDir,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	router.RegisterRoutes(e, api)
	router.RegisterAuth(e, api)
	router.RegisterAPI(e, api)

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "err", err)
	}
}

// buildStore loads all state from the database into a fresh store and wires
// the persister and, when RabbitMQ is configured, the event publisher.
func buildStore(ctx context.Context, cfg config.Config, db *sql.DB, log *slog.Logger) *store.Store {
	opts := []store.Option{}
	if cfg.AMQPURL != "" {
		pub := queue.NewPublisher(cfg.AMQPURL, log)
		opts = append(opts, store.WithPublisher(func(ctx context.Context, ev queue.UserEvent) {
			_ = pub.Publish(ctx, ev) // failures already logged by the publisher
		}))
	}
	st := store.New(repository.NewPersister(db), uint32(cfg.SeatCount), opts...)

	loadCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	users, err := repository.NewUserRepo(db).LoadAll(loadCtx)
	if err != nil {
		log.Error("loading users failed", "err", err)
		os.Exit(1)
	}
	seats, err := repository.NewSeatRepo(db).LoadAll(loadCtx)
	if err != nil {
		log.Error("loading seats failed", "err", err)
		os.Exit(1)
	}
	settings, err := repository.NewSettingsRepo(db).Load(loadCtx)
	if err != nil {
		log.Error("loading settings failed", "err", err)
		os.Exit(1)
	}
	st.Hydrate(users, seats, settings)
	log.Info("state hydrated", "users", len(users), "seats", len(seats))
	return st
}
