package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kursadbilgin/auth-gate/internal/config"
	"github.com/kursadbilgin/auth-gate/internal/credential"
	"github.com/kursadbilgin/auth-gate/internal/domain"
	"github.com/kursadbilgin/auth-gate/internal/handler"
	"github.com/kursadbilgin/auth-gate/internal/infra/postgresql"
	"github.com/kursadbilgin/auth-gate/internal/infra/postgresql/migrations"
	infraredis "github.com/kursadbilgin/auth-gate/internal/infra/redis"
	"github.com/kursadbilgin/auth-gate/internal/observability"
	"github.com/kursadbilgin/auth-gate/internal/queue"
	"github.com/kursadbilgin/auth-gate/internal/repository"
	"github.com/kursadbilgin/auth-gate/internal/service"
	"github.com/kursadbilgin/auth-gate/internal/token"
	"github.com/kursadbilgin/auth-gate/internal/transport"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal("rabbitmq initialization failed", zap.Error(err))
	}
	publisher := queue.NewRabbitMQPublisher(rabbit)
	defer publisher.Close()

	issuer, err := token.NewIssuer(cfg.SigningKey, cfg.TokenExpiry())
	if err != nil {
		logger.Fatal("token issuer initialization failed", zap.Error(err))
	}

	throttle, err := infraredis.NewLoginThrottle(rdb, cfg.LoginRatePerMinute)
	if err != nil {
		logger.Fatal("login throttle initialization failed", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	uow := repository.NewGormUnitOfWork(db)
	bcrypt := credential.NewBcrypt(0)

	authService, err := service.NewAuthService(uow, bcrypt, issuer, publisher, cfg.Policy(), logger, metrics)
	if err != nil {
		logger.Fatal("auth service initialization failed", zap.Error(err))
	}
	accountService, err := service.NewAccountService(uow, bcrypt, logger)
	if err != nil {
		logger.Fatal("account service initialization failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName:      "auth-gate",
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(transport.CorrelationID())
	app.Use(metrics.HTTPMiddleware())

	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	metricsHandler := fasthttpadaptor.NewFastHTTPHandler(metrics.Handler())
	app.Get("/metrics", func(c *fiber.Ctx) error {
		metricsHandler(c.Context())
		return nil
	})

	v1 := app.Group("/v1")
	loginThrottle := transport.LoginThrottle(throttle, metrics, logger)
	if err := handler.RegisterAuthRoutes(v1, authService, loginThrottle); err != nil {
		logger.Fatal("auth routes registration failed", zap.Error(err))
	}

	authRequired := transport.RequireAuth(issuer)
	adminOnly := transport.RequireRole(domain.RoleAdmin)
	if err := handler.RegisterAccountRoutes(v1, accountService, authRequired, adminOnly); err != nil {
		logger.Fatal("account routes registration failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("auth-gate api started", zap.Int("port", cfg.APIPort))
		return app.Listen(fmt.Sprintf(":%d", cfg.APIPort))
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil {
		logger.Error("api stopped", zap.Error(err))
	}
}
