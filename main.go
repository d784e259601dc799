package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/folionet/casfolio/backend/internal/config"
	"github.com/folionet/casfolio/backend/internal/logger"
)

func main() {
	ctx := context.Background()

	// Bootstrap logger, reconfigured once the config is loaded
	bootLogger, err := logger.NewLogger(&logger.Config{Level: "debug"})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	configService := config.NewConfigService(bootLogger)
	cfg, err := configService.Load(".")
	if err != nil {
		bootLogger.LogFatal(err, "Failed to load configuration")
	}

	appLogger, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		bootLogger.LogFatal(err, "Failed to initialize logger")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal")
		cancel()
	}()

	app, err := NewApp(ctx, cfg, appLogger)
	if err != nil {
		appLogger.LogFatal(err, "Failed to initialize application")
	}

	go func() {
		if err := app.Run(); err != nil {
			log.Printf("Application error: %v", err)
			cancel()
		}
	}()

	<-ctx.Done()

	if err := app.Shutdown(); err != nil {
		fmt.Printf("Error during shutdown: %v\n", err)
		os.Exit(1)
	}
}
