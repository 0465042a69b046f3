// The worker binary runs the whole pipeline in one process: the payment
// intake and ops HTTP server, the JetStream verification consumer, and the
// scheme administration API.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/dcastillo/commispipe/internal/config"
	"github.com/dcastillo/commispipe/internal/container"
)

func main() {
	// Missing .env is fine; containers and CI set real environment vars.
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx := context.Background()

	c := container.New(cfg)
	if err := c.Initialize(ctx); err != nil {
		log.Fatalf("failed to initialize container: %v", err)
	}

	runErr := c.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := c.Shutdown(shutdownCtx); err != nil {
		c.Logger().Error("Shutdown finished with errors", slog.String("error", err.Error()))
	}

	if runErr != nil {
		c.Logger().Error("Worker exited with error", slog.String("error", runErr.Error()))
		os.Exit(1)
	}
}
