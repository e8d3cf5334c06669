package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"eventboard/config"
	"eventboard/internal/adapters/auth"
	"eventboard/internal/adapters/email"
	"eventboard/internal/adapters/statsclient"
	delivery "eventboard/internal/delivery/http"
	"eventboard/internal/delivery/http/controllers"
	"eventboard/internal/delivery/http/middleware"
	"eventboard/internal/domain"
	"eventboard/internal/repository/postgres"
	"eventboard/internal/services"
)

const serviceTimeout = 5 * time.Second

// @title Eventboard API
// @version 1.0
// @description Event publishing platform: event lifecycle, participation requests and moderation.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := config.NewLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}
	logger.Info("database connected")

	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	requestRepo := postgres.NewRequestRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
		},
	})
	if err != nil {
		logger.Error("create mailer", "err", err)
		os.Exit(1)
	}
	notifier := services.NewNotificationService(mailer, email.NewTemplateRenderer())

	stats := statsclient.New(cfg.StatsServerURL, nil)
	clock := domain.SystemClock{}

	eventService := services.NewEventService(eventRepo, requestRepo, userRepo, categoryRepo, stats, notifier, clock, serviceTimeout)
	requestService := services.NewRequestService(requestRepo, eventRepo, userRepo, notifier, clock, serviceTimeout)
	categoryService := services.NewCategoryService(categoryRepo, serviceTimeout)
	userService := services.NewUserService(userRepo, auth.NewBcryptHasher(12), auth.NewJWTIssuer(cfg.JWTSecret), clock, serviceTimeout)

	var rateLimiter *middleware.RateLimiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		rateLimiter = middleware.NewRateLimiter(rdb, 100, time.Minute)
		logger.Info("rate limiting enabled", "redis", cfg.RedisAddr)
	}

	mux := delivery.NewRouter(delivery.Controllers{
		Events:       controllers.NewEventController(logger, eventService),
		AdminEvents:  controllers.NewAdminEventController(logger, eventService),
		PublicEvents: controllers.NewPublicEventController(logger, eventService),
		Requests:     controllers.NewRequestController(logger, requestService),
		Categories:   controllers.NewCategoryController(logger, categoryService),
		Users:        controllers.NewUserController(logger, userService),
		Auth:         controllers.NewAuthController(logger, userService),
	}, auth.NewJWTVerifier(cfg.JWTSecret), rateLimiter)

	var handler http.Handler = mux
	handler = middleware.CORS(strings.Split(cfg.AllowedOrigins, ","), handler)
	handler = middleware.LoggingMiddleware(logger, handler)
	handler = middleware.RequestID(handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel2()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}
