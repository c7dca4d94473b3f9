package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestWithTransaction(t *testing.T) {
	t.Run("commit", func(t *testing.T) {
		db, mock := setupTestDB(t)
		tm := NewTransactionManagerAdapter(db)
		repo := NewQuestionDatabaseAdapter(db)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM questions")).WithArgs("L1").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := tm.WithTransaction(context.Background(), func(ctx context.Context) error {
			return repo.ReplaceLevelQuestions(ctx, "L1", nil)
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback on error", func(t *testing.T) {
		db, mock := setupTestDB(t)
		tm := NewTransactionManagerAdapter(db)
		boom := errors.New("boom")

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := tm.WithTransaction(context.Background(), func(ctx context.Context) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested joins outer", func(t *testing.T) {
		db, mock := setupTestDB(t)
		tm := NewTransactionManagerAdapter(db)

		mock.ExpectBegin()
		mock.ExpectCommit()

		err := tm.WithTransaction(context.Background(), func(ctx context.Context) error {
			return tm.WithTransaction(ctx, func(ctx context.Context) error { return nil })
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
