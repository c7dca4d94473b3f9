package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/repository/models"
	"vocab-quiz/internal/util"
)

// ProgressDatabaseAdapter implements domain.ProgressRepository on Oracle.
type ProgressDatabaseAdapter struct {
	db DBTX
}

// NewProgressDatabaseAdapter creates a progress repository.
func NewProgressDatabaseAdapter(db *sqlx.DB) domain.ProgressRepository {
	return &ProgressDatabaseAdapter{db: db}
}

const progressSelect = `SELECT p.id, p.user_id, p.level_id, l.level_number, p.is_passed, p.highest_score, p.updated_at
	FROM user_progress p JOIN levels l ON l.id = p.level_id`

func (a *ProgressDatabaseAdapter) GetProgress(ctx context.Context, userID, levelID string) (*domain.UserProgress, error) {
	var row models.UserProgress
	query := progressSelect + ` WHERE p.user_id = :1 AND p.level_id = :2`
	if err := GetExecutor(ctx, a.db).GetContext(ctx, &row, query, userID, levelID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return toDomainProgress(&row), nil
}

// SaveProgress upserts the record. The statement itself never lowers
// highest_score or clears is_passed, so concurrent writers cannot regress it.
func (a *ProgressDatabaseAdapter) SaveProgress(ctx context.Context, p *domain.UserProgress) error {
	query := `MERGE INTO user_progress t
	USING (SELECT :1 AS user_id, :2 AS level_id FROM dual) s
	ON (t.user_id = s.user_id AND t.level_id = s.level_id)
	WHEN MATCHED THEN UPDATE SET
		t.is_passed = GREATEST(t.is_passed, :3),
		t.highest_score = GREATEST(t.highest_score, :4),
		t.updated_at = :5
	WHEN NOT MATCHED THEN INSERT (id, user_id, level_id, is_passed, highest_score, updated_at)
		VALUES (:6, :7, :8, :9, :10, :11)`

	passed := util.BoolToNumber(p.IsPassed)
	_, err := GetExecutor(ctx, a.db).ExecContext(ctx, query,
		p.UserID, p.LevelID,
		passed, p.HighestScore, p.UpdatedAt,
		util.NewULID(), p.UserID, p.LevelID, passed, p.HighestScore, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

func (a *ProgressDatabaseAdapter) ListProgressByUser(ctx context.Context, userID string) ([]*domain.UserProgress, error) {
	var rows []models.UserProgress
	query := progressSelect + ` WHERE p.user_id = :1 ORDER BY l.level_number ASC`
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	out := make([]*domain.UserProgress, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainProgress(&rows[i]))
	}
	return out, nil
}

func toDomainProgress(m *models.UserProgress) *domain.UserProgress {
	return &domain.UserProgress{
		UserID:       m.UserID,
		LevelID:      m.LevelID,
		LevelNumber:  m.LevelNumber,
		IsPassed:     m.IsPassed != 0,
		HighestScore: m.HighestScore,
		UpdatedAt:    m.UpdatedAt,
	}
}
