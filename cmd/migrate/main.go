package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"vocab-quiz/internal/config"
	"vocab-quiz/internal/database"
	"vocab-quiz/internal/logger"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down (down reverts one version)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	l := logger.Get()
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		l.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	m, err := database.NewMigrator(db)
	if err != nil {
		l.Fatal("Failed to load migrations", zap.Error(err))
	}
	defer m.Close()

	switch *direction {
	case "up":
		applied, err := m.Up(ctx)
		if err != nil {
			l.Fatal("Failed to run migrations", zap.Error(err))
		}
		l.Info("Migrations applied", zap.Uints("versions", applied))
	case "down":
		version, err := m.Down(ctx)
		if err != nil {
			l.Fatal("Failed to revert migration", zap.Error(err))
		}
		l.Info("Migration reverted", zap.Uint("version", version))
	default:
		l.Fatal("Unknown direction", zap.String("direction", *direction))
	}
}
