package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/godror/godror" // Oracle driver (OCI)
	"github.com/jmoiron/sqlx"
	go_ora "github.com/sijms/go-ora/v2" // Oracle driver (pure Go)
	"go.uber.org/zap"

	"vocab-quiz/internal/config"
	"vocab-quiz/internal/logger"
)

// DriverName returns the database/sql driver name for the configured driver.
func DriverName(cfg config.DBConfig) string {
	if cfg.Driver == "godror" {
		return "godror"
	}
	return "oracle"
}

// DSN builds the connection string understood by the configured driver.
func DSN(cfg config.DBConfig) string {
	if cfg.Driver == "godror" {
		connectString := fmt.Sprintf("%s:%d/%s", cfg.Host, cfg.Port, cfg.DBName)
		return fmt.Sprintf(`user=%q password=%q connectString=%q`, cfg.User, cfg.Password, connectString)
	}
	return go_ora.BuildUrl(cfg.Host, cfg.Port, cfg.DBName, cfg.User, cfg.Password, nil)
}

// Open connects to Oracle, applies pool settings and pings the server.
func Open(ctx context.Context, cfg config.DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(DriverName(cfg), DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping Oracle database: %w", err)
	}

	logger.Get().Info("Connected to Oracle database",
		zap.String("driver", DriverName(cfg)),
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("service", cfg.DBName))
	return db, nil
}
