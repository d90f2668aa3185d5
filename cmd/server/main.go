package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DEFRA/assurance-frontend-sub000/internal/app"
	"github.com/DEFRA/assurance-frontend-sub000/internal/config"
	"github.com/DEFRA/assurance-frontend-sub000/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger is not up yet; this is a wiring failure.
		panic(err)
	}

	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := application.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
			stop()
		}
	}()

	log.Info("assurance dashboard started", "port", cfg.AppPort)

	<-ctx.Done()

	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("assurance dashboard stopped cleanly")
}
