package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/repository/models"
	"vocab-quiz/internal/util"
)

const levelColumns = `id, level_number, title, passing_score, created_at, updated_at`

// LevelDatabaseAdapter implements domain.LevelRepository on Oracle.
type LevelDatabaseAdapter struct {
	db DBTX
}

// NewLevelDatabaseAdapter creates a level repository.
func NewLevelDatabaseAdapter(db *sqlx.DB) domain.LevelRepository {
	return &LevelDatabaseAdapter{db: db}
}

func (a *LevelDatabaseAdapter) ListLevels(ctx context.Context) ([]*domain.Level, error) {
	var rows []models.Level
	query := `SELECT ` + levelColumns + ` FROM levels ORDER BY level_number ASC`
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list levels: %w", err)
	}

	levels := make([]*domain.Level, 0, len(rows))
	for i := range rows {
		levels = append(levels, toDomainLevel(&rows[i]))
	}
	return levels, nil
}

func (a *LevelDatabaseAdapter) GetLevelByNumber(ctx context.Context, number int) (*domain.Level, error) {
	var row models.Level
	query := `SELECT ` + levelColumns + ` FROM levels WHERE level_number = :1`
	if err := GetExecutor(ctx, a.db).GetContext(ctx, &row, query, number); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get level %d: %w", number, err)
	}
	return toDomainLevel(&row), nil
}

// UpsertLevel inserts the level or updates the title and passing score of
// the level with the same number. level.ID is set to the stored ID.
func (a *LevelDatabaseAdapter) UpsertLevel(ctx context.Context, level *domain.Level) error {
	existing, err := a.GetLevelByNumber(ctx, level.Number)
	if err != nil {
		return err
	}

	exec := GetExecutor(ctx, a.db)
	now := time.Now()

	if existing != nil {
		query := `UPDATE levels SET title = :1, passing_score = :2, updated_at = :3 WHERE id = :4`
		if _, err := exec.ExecContext(ctx, query, level.Title, level.PassingScore, now, existing.ID); err != nil {
			return fmt.Errorf("failed to update level %d: %w", level.Number, err)
		}
		level.ID = existing.ID
		level.CreatedAt = existing.CreatedAt
		level.UpdatedAt = now
		return nil
	}

	if level.ID == "" {
		level.ID = util.NewULID()
	}
	query := `INSERT INTO levels (` + levelColumns + `) VALUES (:1, :2, :3, :4, :5, :6)`
	if _, err := exec.ExecContext(ctx, query, level.ID, level.Number, level.Title, level.PassingScore, now, now); err != nil {
		return fmt.Errorf("failed to insert level %d: %w", level.Number, err)
	}
	level.CreatedAt = now
	level.UpdatedAt = now
	return nil
}

func toDomainLevel(m *models.Level) *domain.Level {
	return &domain.Level{
		ID:           m.ID,
		Number:       m.LevelNumber,
		Title:        m.Title,
		PassingScore: m.PassingScore,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
