package main

import (
	"context"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"abtest/internal"
	"abtest/internal/config"
	"abtest/internal/container"
	"abtest/internal/server"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level, _ := internal.ParseLogLevel(appConfig.LogLevel)
	logger := internal.NewLogger(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create dependency injection container
	appContainer, err := container.New(appConfig, logger)
	if err != nil {
		logger.Error("Failed to create application container: %v", err)
		os.Exit(1)
	}
	defer appContainer.Shutdown(context.Background())

	if err := appContainer.Connect(ctx); err != nil {
		logger.Error("Failed to initialize database: %v", err)
		os.Exit(1)
	}

	// Start profiling server on its own port
	if appConfig.Profiling.Enabled {
		go func() {
			logger.Info("pprof listening on :%s", appConfig.Profiling.Port)
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				logger.Warn("pprof server stopped: %v", err)
			}
		}()
	}

	logger.Info("A/B test analyzer starting on port %s (%d workers)", appConfig.Server.Port, appConfig.Engine.Workers)
	srv := server.New(appConfig.Server, appContainer.HTTPApp(), logger)
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("Server failed: %v", err)
		os.Exit(1)
	}
}
