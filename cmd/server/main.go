// Package main is the entry point for the application.
// It initializes all dependencies, sets up the HTTP server,
// and starts the application.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paygate/internal/config"
	"paygate/internal/gateway/applepay"
	"paygate/internal/gateway/charges"
	"paygate/internal/handlers"
	"paygate/internal/logger"
	"paygate/internal/metrics"
	"paygate/internal/middleware"
	"paygate/internal/repositories"
	"paygate/internal/repositories/cache"
	"paygate/internal/routes"
	"paygate/internal/services/tokens"
	"paygate/internal/telemetry"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	log := logger.New(cfg.Env)
	defer log.Sync()

	shutdownTracing, err := telemetry.InitTracing(context.Background(), "paygate", cfg.OTLPEndpoint)
	if err != nil {
		log.Warnw("tracing disabled", "error", err)
		shutdownTracing = func(context.Context) error { return nil }
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Warnw("failed to flush traces", "error", err)
		}
	}()

	db, err := repositories.InitDB(cfg, log.Named("gorm"))
	if err != nil {
		log.Fatalw("failed to initialize database", "error", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Warnw("failed to close database connection", "error", err)
			}
		}
	}()

	redisClient := cache.NewRedisClient(&cache.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	cacheService := cache.NewCacheService(redisClient, cfg.TokenCacheTTL)
	defer func() {
		if err := cacheService.Close(); err != nil {
			log.Warnw("failed to close redis connection", "error", err)
		}
	}()
	if err := cacheService.HealthCheck(context.Background()); err != nil {
		log.Warnw("redis unavailable, payment tokens will be read from the database", "error", err)
	}

	applePayClient, err := applepay.NewClient(applepay.Config{
		MerchantID:  cfg.ApplePayMerchantID,
		DisplayName: cfg.ApplePayDisplayName,
		Domain:      cfg.ApplePayDomain,
		CertFile:    cfg.ApplePayCertFile,
		KeyFile:     cfg.ApplePayKeyFile,
		Timeout:     cfg.ApplePayTimeout,
	}, log.Named("applepay"))
	if err != nil {
		log.Fatalw("failed to initialize apple pay client", "error", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	collector := metrics.NewPrometheus(registry)
	cacheService.RegisterMetrics(registry)

	tokenService := tokens.NewService(
		repositories.NewPaymentTokenRepository(db),
		cacheService,
		charges.NewTestTokenizer(),
		log.Named("tokens"),
		tokens.WithMetrics(collector),
	)
	chargeGateway := charges.NewGateway(cfg.StripeSecretKey, log.Named("charges"), charges.WithMetrics(collector))

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE",
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use("/api/apple-pay", limiter.New(limiter.Config{
		Max:        20,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	}))

	routes.SetupRoutes(app, routes.Handlers{
		Auth:         middleware.NewAuthMiddleware(cfg.JWTSecret, log.Named("auth")),
		PaymentToken: handlers.NewPaymentTokenHandler(tokenService),
		ApplePay:     handlers.NewApplePayHandler(applePayClient),
		Charge:       handlers.NewChargeHandler(tokenService, chargeGateway),
		Metrics:      collector.Handler(),
		Health: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"database": repositories.DBHealth{DB: db},
			"redis":    cacheService,
		}),
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Errorw("server stopped", "error", err)
		}
	}()
	log.Infow("server started", "port", cfg.Port, "env", cfg.Env)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Errorw("graceful shutdown failed", "error", err)
	}
}
