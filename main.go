package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"goinsight/adapters/api"
	"goinsight/internal"
	"goinsight/internal/config"
	"goinsight/internal/container"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.LogLevel))

	appContainer, err := container.New(appConfig, logger)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stream session events before the first run so clients see every transition
	hub := api.NewSSEHub(30*time.Second, logger)
	events, unsubscribe := appContainer.Session.Subscribe()
	defer unsubscribe()
	go hub.Run(ctx, events)

	token, err := appContainer.Start(ctx)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}
	logger.Info("initial run %s started", token)

	handler := api.NewHandler(appContainer.Session, appContainer.Source, hub, logger)
	server := &http.Server{
		Addr:    ":" + appConfig.Server.Port,
		Handler: api.NewRouter(handler, appConfig.Server.GinMode),
	}

	go func() {
		logger.Info("API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown: %v", err)
	}
	if err := appContainer.Shutdown(shutdownCtx); err != nil {
		logger.Error("container shutdown: %v", err)
	}
}
