package main

import (
	"context"
	"log"

	"goinsight/internal"
	"goinsight/internal/config"
	"goinsight/internal/container"
	"goinsight/ui"

	"github.com/joho/godotenv"
)

func main() {
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
	defer appContainer.Shutdown(context.Background())

	ctx := context.Background()
	token, err := appContainer.Start(ctx)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}
	if _, err := appContainer.Session.Await(ctx, token); err != nil {
		log.Printf("Initial run failed: %v", err)
	}

	app := ui.NewApp(ui.Config{Port: appConfig.UI.Port}, appContainer.Session, appContainer.Renderer, logger)
	log.Printf("Starting goinsight UI on http://localhost:%s", appConfig.UI.Port)
	log.Fatal(app.Start())
}
