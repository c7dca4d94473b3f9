package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/logger"
	"vocab-quiz/internal/repository/models"
	"vocab-quiz/internal/util"

	"go.uber.org/zap"
)

const questionColumns = `id, level_id, question_type, prompt, reading, answers_primary, answers_secondary, word_bank, position, created_at`

// QuestionDatabaseAdapter implements domain.QuestionRepository on Oracle.
type QuestionDatabaseAdapter struct {
	db DBTX
}

// NewQuestionDatabaseAdapter creates a question repository.
func NewQuestionDatabaseAdapter(db *sqlx.DB) domain.QuestionRepository {
	return &QuestionDatabaseAdapter{db: db}
}

// GetQuestionsByLevel returns the questions of a level in authored order.
func (a *QuestionDatabaseAdapter) GetQuestionsByLevel(ctx context.Context, levelID string) ([]*domain.Question, error) {
	var rows []models.Question
	query := `SELECT ` + questionColumns + ` FROM questions WHERE level_id = :1 ORDER BY position ASC, id ASC`
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &rows, query, levelID); err != nil {
		return nil, fmt.Errorf("failed to get questions for level %s: %w", levelID, err)
	}

	questions := make([]*domain.Question, 0, len(rows))
	for i := range rows {
		q, err := toDomainQuestion(&rows[i])
		if err != nil {
			// Unknown types are skipped, the rest of the level stays playable.
			logger.Get().Warn("skipping malformed question",
				zap.String("question_id", rows[i].ID),
				zap.Error(err))
			continue
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// ReplaceLevelQuestions deletes every question of the level and inserts the
// given ones in order. Callers should run it inside a transaction.
func (a *QuestionDatabaseAdapter) ReplaceLevelQuestions(ctx context.Context, levelID string, questions []*domain.Question) error {
	exec := GetExecutor(ctx, a.db)

	if _, err := exec.ExecContext(ctx, `DELETE FROM questions WHERE level_id = :1`, levelID); err != nil {
		return fmt.Errorf("failed to clear questions of level %s: %w", levelID, err)
	}

	query := `INSERT INTO questions (` + questionColumns + `) VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9, :10)`
	now := time.Now()
	for i, q := range questions {
		if q.ID == "" {
			q.ID = util.NewULID()
		}
		q.LevelID = levelID
		if q.CreatedAt.IsZero() {
			q.CreatedAt = now
		}
		_, err := exec.ExecContext(ctx, query,
			q.ID,
			q.LevelID,
			string(q.Type),
			q.Prompt,
			util.StringToNullString(q.Reading),
			util.StringToNullString(q.AnswersPrimary),
			util.StringToNullString(q.AnswersSecondary),
			models.StringSlice(q.WordBank),
			i+1,
			q.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert question %q: %w", q.Prompt, err)
		}
	}
	return nil
}

// UpdateAnswers overwrites both accepted answer fields of a question.
func (a *QuestionDatabaseAdapter) UpdateAnswers(ctx context.Context, questionID, primary, secondary string) error {
	query := `UPDATE questions SET answers_primary = :1, answers_secondary = :2 WHERE id = :3`
	res, err := GetExecutor(ctx, a.db).ExecContext(ctx, query,
		util.StringToNullString(primary),
		util.StringToNullString(secondary),
		questionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update answers of question %s: %w", questionID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NewNotFoundError(fmt.Sprintf("question not found: %s", questionID))
	}
	return nil
}

func toDomainQuestion(m *models.Question) (*domain.Question, error) {
	qType, err := domain.ParseQuestionType(m.QuestionType)
	if err != nil {
		return nil, err
	}
	var wordBank []string
	if len(m.WordBank) > 0 {
		wordBank = []string(m.WordBank)
	}
	return &domain.Question{
		ID:               m.ID,
		LevelID:          m.LevelID,
		Type:             qType,
		Prompt:           m.Prompt,
		Reading:          m.Reading.String,
		AnswersPrimary:   m.AnswersPrimary.String,
		AnswersSecondary: m.AnswersSecondary.String,
		WordBank:         wordBank,
		CreatedAt:        m.CreatedAt,
	}, nil
}
