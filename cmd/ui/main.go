package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"surveyinsight/internal/config"
	"surveyinsight/internal/container"
	"surveyinsight/ui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	if err := appContainer.ImportDataFile(context.Background()); err != nil {
		log.Fatalf("Failed to import data file: %v", err)
	}

	app, err := ui.NewApp(appContainer.Service, ui.Config{
		Port:        appConfig.Server.UIPort,
		MaxUploadMB: appConfig.Server.MaxUploadMB,
	})
	if err != nil {
		log.Fatal("Failed to create UI app:", err)
	}

	log.Fatal(app.Start(":" + appConfig.Server.UIPort))
}
