package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventboard/config"
	delivery "eventboard/internal/delivery/http"
	"eventboard/internal/delivery/http/controllers"
	"eventboard/internal/repository/statspg"
	"eventboard/internal/services"
)

const serviceTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := config.NewLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := statspg.Connect(ctx, cfg.StatsDBUrl)
	if err != nil {
		logger.Error("connect stats database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ready(ctx); err != nil {
		logger.Error("stats database not ready", "err", err)
		os.Exit(1)
	}
	logger.Info("stats database connected")

	statsService := services.NewStatsService(statspg.NewHitRepository(db), serviceTimeout)
	mux := delivery.NewStatsRouter(controllers.NewStatsController(logger, statsService))

	srv := &http.Server{
		Addr:              ":" + cfg.StatsPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("listening", "port", cfg.StatsPort)
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
