package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"vocab-quiz/internal/logger"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Migrator applies versioned SQL migrations to Oracle. Migration files follow
// the golang-migrate naming scheme (000001_name.up.sql / .down.sql) and each
// file may hold several statements separated by ";".
type Migrator struct {
	db  *sqlx.DB
	src source.Driver
}

// NewMigrator uses the migrations embedded in the binary.
func NewMigrator(db *sqlx.DB) (*Migrator, error) {
	return NewMigratorFS(db, embeddedMigrations, "migrations")
}

// NewMigratorFS reads migrations from dir inside fsys.
func NewMigratorFS(db *sqlx.DB, fsys fs.FS, dir string) (*Migrator, error) {
	src, err := iofs.New(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}
	return &Migrator{db: db, src: src}, nil
}

// Close releases the migration source.
func (m *Migrator) Close() error {
	return m.src.Close()
}

func (m *Migrator) ensureVersionTable(ctx context.Context) error {
	var count int
	query := `SELECT COUNT(*) FROM user_tables WHERE table_name = 'SCHEMA_MIGRATIONS'`
	if err := m.db.GetContext(ctx, &count, query); err != nil {
		return fmt.Errorf("failed to check schema_migrations: %w", err)
	}
	if count > 0 {
		return nil
	}
	_, err := m.db.ExecContext(ctx, `CREATE TABLE schema_migrations (
		version NUMBER(19) PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}
	return nil
}

func (m *Migrator) applied(ctx context.Context) (map[uint]bool, error) {
	var versions []int64
	if err := m.db.SelectContext(ctx, &versions, `SELECT version FROM schema_migrations`); err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	out := make(map[uint]bool, len(versions))
	for _, v := range versions {
		out[uint(v)] = true
	}
	return out, nil
}

// Up applies every migration that has not been applied yet, in version
// order. It returns the versions it applied.
func (m *Migrator) Up(ctx context.Context) ([]uint, error) {
	if err := m.ensureVersionTable(ctx); err != nil {
		return nil, err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	var ran []uint
	version, err := m.src.First()
	for err == nil {
		if !done[version] {
			if err := m.runUp(ctx, version); err != nil {
				return ran, err
			}
			ran = append(ran, version)
		}
		version, err = m.src.Next(version)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return ran, fmt.Errorf("failed to iterate migrations: %w", err)
	}
	return ran, nil
}

func (m *Migrator) runUp(ctx context.Context, version uint) error {
	body, ident, err := m.src.ReadUp(version)
	if err != nil {
		return fmt.Errorf("failed to read migration %d: %w", version, err)
	}
	if err := m.exec(ctx, body); err != nil {
		return fmt.Errorf("migration %d (%s) failed: %w", version, ident, err)
	}
	_, err = m.db.ExecContext(ctx, `INSERT INTO schema_migrations (version, applied_at) VALUES (:1, :2)`, int64(version), time.Now())
	if err != nil {
		return fmt.Errorf("failed to record migration %d: %w", version, err)
	}
	logger.Get().Info("Applied migration", zap.Uint("version", version), zap.String("name", ident))
	return nil
}

// Down reverts the most recently applied migration. It returns 0 when
// nothing is applied.
func (m *Migrator) Down(ctx context.Context) (uint, error) {
	if err := m.ensureVersionTable(ctx); err != nil {
		return 0, err
	}
	var latest int64
	if err := m.db.GetContext(ctx, &latest, `SELECT NVL(MAX(version), 0) FROM schema_migrations`); err != nil {
		return 0, fmt.Errorf("failed to read current version: %w", err)
	}
	if latest == 0 {
		return 0, nil
	}
	version := uint(latest)

	body, ident, err := m.src.ReadDown(version)
	if err != nil {
		return 0, fmt.Errorf("failed to read down migration %d: %w", version, err)
	}
	if err := m.exec(ctx, body); err != nil {
		return 0, fmt.Errorf("down migration %d (%s) failed: %w", version, ident, err)
	}
	if _, err := m.db.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = :1`, latest); err != nil {
		return 0, fmt.Errorf("failed to unrecord migration %d: %w", version, err)
	}
	logger.Get().Info("Reverted migration", zap.Uint("version", version), zap.String("name", ident))
	return version, nil
}

func (m *Migrator) exec(ctx context.Context, body io.ReadCloser) error {
	defer body.Close()
	raw, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	for _, stmt := range SplitStatements(string(raw)) {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w\nstatement: %s", err, stmt)
		}
	}
	return nil
}

// SplitStatements splits a migration file on ";" and drops empty statements
// and "--" comment lines. Oracle rejects a trailing ";" in a single statement.
func SplitStatements(content string) []string {
	var stmts []string
	for _, part := range strings.Split(content, ";") {
		var kept []string
		for _, line := range strings.Split(part, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				continue
			}
			kept = append(kept, line)
		}
		if stmt := strings.TrimSpace(strings.Join(kept, "\n")); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
