package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/lunchly/internal/config"
	"github.com/iliyamo/lunchly/internal/database"
	"github.com/iliyamo/lunchly/internal/handler"
	"github.com/iliyamo/lunchly/internal/logging"
	"github.com/iliyamo/lunchly/internal/metrics"
	"github.com/iliyamo/lunchly/internal/middleware"
	"github.com/iliyamo/lunchly/internal/queue"
	"github.com/iliyamo/lunchly/internal/repository"
	"github.com/iliyamo/lunchly/internal/router"
	"github.com/iliyamo/lunchly/internal/service"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	logger := logging.Component("server")

	db, err := database.Open(cfg)
	if err != nil {
		logger.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	// Redis is optional; without it every GET goes to MySQL.
	cacheCfg := config.LoadCacheConfig()
	rdb, err := config.NewRedisClient(config.LoadRedisConfig())
	if err != nil {
		logger.WithError(err).Warn("redis unavailable, response cache disabled")
	} else {
		defer rdb.Close()
	}
	cache := middleware.NewResponseCache(cacheCfg, rdb, logging.Component("cache"))

	reservations := repository.NewReservationRepo(db)
	customers := repository.NewCustomerRepo(db, reservations)
	m := metrics.New(nil)

	h := handler.NewCustomerHandler(customers, reservations)
	h.Publisher = service.NewAMQPPublisher(cfg.AMQPURL, logging.Component("publisher"))
	h.Cache = cache
	h.Metrics = m

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	auditFile, err := queue.OpenAuditLog(cfg.AuditLogPath)
	if err != nil {
		logger.WithError(err).Fatal("open audit log failed")
	}
	defer auditFile.Close()
	consumer := queue.NewAuditConsumer(cfg.AMQPURL, auditFile, logging.Component("audit-consumer"))
	consumerDone := consumer.Start(ctx)

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(logging.Component("http")))
	e.Use(m.Middleware())

	router.RegisterRoutes(e, db)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logging.Component("ratelimit"))
	router.RegisterAuth(e, handler.NewAuthHandler(cfg), limiter)
	router.RegisterCustomer(e, h, cache, cfg.JWTSecret)

	addr := ":" + cfg.Port
	logger.WithFields(log.Fields{"addr": addr, "env": cfg.Env}).Info("listening")

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
	// The audit file is closed on return, so the consumer must be done first.
	select {
	case err := <-consumerDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Error("audit consumer stopped")
		}
	case <-shutdownCtx.Done():
		logger.Warn("audit consumer did not stop before the shutdown deadline")
	}
	logger.Info("server stopped")
}
