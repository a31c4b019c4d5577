// sqlbench server - benchmarks SQL-generating remote agents and serves
// assessment results over HTTP/WebSocket.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/codeready-toolchain/sqlbench/pkg/api"
	"github.com/codeready-toolchain/sqlbench/pkg/config"
	"github.com/codeready-toolchain/sqlbench/pkg/database"
	"github.com/codeready-toolchain/sqlbench/pkg/dispatch"
	"github.com/codeready-toolchain/sqlbench/pkg/events"
	"github.com/codeready-toolchain/sqlbench/pkg/executor"
	"github.com/codeready-toolchain/sqlbench/pkg/notify"
	"github.com/codeready-toolchain/sqlbench/pkg/orchestrator"
	"github.com/codeready-toolchain/sqlbench/pkg/services"
)

func main() {
	envFile := flag.String("env-file", ".env", "Path to environment file")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("Warning: Could not load %s file: %v", *envFile, err)
		log.Printf("Continuing with existing environment variables...")
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	ctx := context.Background()

	cfg, err := config.LoadServerConfigFromEnv()
	if err != nil {
		log.Fatalf("Failed to load server config: %v", err)
	}

	catalog, err := config.LoadCatalog(cfg.TasksPath)
	if err != nil {
		log.Fatalf("Failed to load gold task catalog: %v", err)
	}

	dbConfig, err := database.LoadConfigFromEnv(cfg.Dialect)
	if err != nil {
		log.Fatalf("Failed to load reference database config: %v", err)
	}

	dbClient, err := database.NewClient(ctx, dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to reference database: %v", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			slog.Error("Error closing reference database", "error", err)
		}
	}()
	slog.Info("Connected to reference database", "dialect", cfg.Dialect)

	if cfg.SeedReferenceDB {
		schemaType := config.SchemaType(getEnv("REFDB_SCHEMA", string(config.SchemaEnterprise)))
		if err := dbClient.Seed(ctx, schemaType); err != nil {
			log.Fatalf("Failed to seed reference database: %v", err)
		}
	}

	adapter := executor.New(dbClient)
	client := dispatch.NewClient()
	orc := orchestrator.New(catalog, adapter, client)

	broadcaster := events.NewBroadcaster()
	connManager := events.NewConnectionManager(broadcaster, 10*time.Second)

	notifier := notify.NewService(notify.ServiceConfig{
		Token:        cfg.SlackToken,
		Channel:      cfg.SlackChannel,
		DashboardURL: cfg.DashboardURL,
	})
	if notifier == nil {
		slog.Info("Slack notifications disabled")
	}

	assessmentService := services.NewAssessmentService(orc, broadcaster, notifier)

	server := api.NewServer(cfg, catalog, dbClient, adapter, assessmentService, connManager)

	// Serve until interrupted, then drain in-flight requests.
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(":" + cfg.HTTPPort)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	case sig := <-sigCh:
		slog.Info("Shutting down", "signal", sig)
		shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
