package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/iliyamo/shop-admin/internal/config"
	"github.com/iliyamo/shop-admin/internal/database"
	"github.com/iliyamo/shop-admin/internal/handler"
	"github.com/iliyamo/shop-admin/internal/logger"
	"github.com/iliyamo/shop-admin/internal/middleware"
	"github.com/iliyamo/shop-admin/internal/queue"
	"github.com/iliyamo/shop-admin/internal/realtime"
	"github.com/iliyamo/shop-admin/internal/repository"
	"github.com/iliyamo/shop-admin/internal/router"
	"github.com/iliyamo/shop-admin/internal/service"
	"github.com/iliyamo/shop-admin/internal/upload"
	"github.com/iliyamo/shop-admin/internal/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{})
		boot.Fatal().Err(err).Msg("config")
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: !cfg.IsProduction()})

	db, err := database.Open(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("mysql connect failed")
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}
	if err := database.Seed(ctx, db, cfg.Seed, cfg.BcryptCost, log); err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Warn().Str("addr", cfg.Redis.Address()).Msg("redis unreachable; cache and rate limit disabled")
	} else {
		defer rdb.Close()
	}

	images, err := upload.NewStore(filepath.Join(cfg.PublicDir, "uploads"))
	if err != nil {
		log.Fatal().Err(err).Msg("upload directory")
	}

	var events service.EventPublisher
	if cfg.AMQP.Enabled {
		events = queue.NewPublisher(cfg.AMQP.URL)
		if cfg.AMQP.StartConsumer {
			c := &queue.Consumer{URL: cfg.AMQP.URL, LogPath: cfg.AMQP.ConsumerLog, Log: log}
			go c.Run(ctx)
		}
	}

	users := repository.NewUserRepo(db)
	products := repository.NewProductRepo(db)
	tokens := utils.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL)

	authSvc := service.NewAuthService(users, tokens, cfg.BcryptCost)
	catalog := service.NewCatalogService(products, images, events, log)

	schema, err := handler.NewGraphQLSchema(catalog, log)
	if err != nil {
		log.Fatal().Err(err).Msg("graphql schema")
	}

	hub := realtime.NewHub(log)
	go hub.Run(ctx)

	e, err := router.New(router.Deps{
		Config:    cfg,
		Log:       log,
		Redis:     rdb,
		Gate:      &middleware.Gate{Tokens: tokens, Users: users},
		Auth:      handler.NewAuthHandler(authSvc, tokens.TTL(), cfg.IsProduction()),
		Products:  handler.NewProductHandler(catalog),
		GraphQL:   handler.NewGraphQLHandler(schema),
		Readiness: handler.NewReadinessHandler(db, rdb),
		Comments:  handler.Comments(hub, log),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("router")
	}

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
