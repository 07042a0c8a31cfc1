package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/campus-market/trading-api/docs" // swagger docs

	"github.com/campus-market/trading-api/internal/api"
	"github.com/campus-market/trading-api/internal/api/handler"
	"github.com/campus-market/trading-api/internal/core/service"
	"github.com/campus-market/trading-api/internal/infrastructure/config"
	mongodb "github.com/campus-market/trading-api/internal/infrastructure/db/mongo"
	redisdb "github.com/campus-market/trading-api/internal/infrastructure/db/redis"
	"github.com/campus-market/trading-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title Campus Trading API
// @version 1.0
// @description Second-hand trading platform for campus communities: item listings, orders, and buyer-seller messaging.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	// --- Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close failed")
		}
	}()

	// --- Repositories ---
	userRepo := mongodb.NewUserRepository(db)
	itemRepo := mongodb.NewItemRepository(db)
	orderRepo := mongodb.NewOrderRepository(db)
	messageRepo := mongodb.NewMessageRepository(db)

	for name, ensure := range map[string]func(context.Context) error{
		"users":    userRepo.EnsureIndexes,
		"items":    itemRepo.EnsureIndexes,
		"orders":   orderRepo.EnsureIndexes,
		"messages": messageRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatal().Err(err).Str("collection", name).Msg("index creation failed")
		}
	}

	purchaseLock := redisdb.NewPurchaseLock(rdb)

	// --- Services ---
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL)
	userService := service.NewUserService(userRepo, log)
	itemService := service.NewItemService(itemRepo, userRepo, log)
	orderService := service.NewOrderService(orderRepo, itemRepo, userRepo, purchaseLock, log)
	messageService := service.NewMessageService(messageRepo, log)

	// --- HTTP ---
	e := api.NewRouter(api.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		User:    handler.NewUserHandler(userService, itemService, orderService),
		Item:    handler.NewItemHandler(itemService),
		Order:   handler.NewOrderHandler(orderService),
		Message: handler.NewMessageHandler(messageService),
	}, authService, db, rdb, log)

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
