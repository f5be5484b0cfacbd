package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"gobanner/adapters/memory"
	"gobanner/adapters/postgres"
	"gobanner/app"
	"gobanner/internal"
	"gobanner/internal/config"
	"gobanner/ports"
	"gobanner/ui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := internal.NewDefaultLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := runRepository(ctx, appConfig.Database, logger)
	if err != nil {
		log.Fatalf("Failed to initialize run store: %v", err)
	}
	defer closeRepo()

	pipelineConfig, err := app.PipelineConfigFromSettings(appConfig.Pipeline)
	if err != nil {
		log.Fatalf("Invalid pipeline settings: %v", err)
	}
	runs := app.NewRunService(app.NewPipeline(pipelineConfig, logger), repo, logger)

	serverConfig := ui.DefaultConfig()
	serverConfig.Port = appConfig.Server.Port
	if err := ui.NewServer(serverConfig, runs, logger).Start(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// runRepository picks PostgreSQL when DATABASE_URL is set, otherwise process memory
func runRepository(ctx context.Context, db config.DatabaseConfig, logger *internal.Logger) (ports.RunRepository, func(), error) {
	if db.URL == "" {
		logger.Info("[API] DATABASE_URL not set, keeping runs in memory")
		return memory.NewRunRepository(), func() {}, nil
	}

	conn, err := postgres.Open(ctx, db.URL)
	if err != nil {
		return nil, nil, err
	}
	conn.SetMaxOpenConns(db.MaxOpenConns)
	conn.SetMaxIdleConns(db.MaxIdleConns)

	repo := postgres.NewRunRepository(conn)
	if err := repo.EnsureSchema(ctx); err != nil {
		conn.Close()
		return nil, nil, err
	}
	logger.Info("[API] Run ledger stored in PostgreSQL")
	return repo, func() { conn.Close() }, nil
}
