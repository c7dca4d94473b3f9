package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/repository/models"
)

var userCols = []string{"ID", "GOOGLE_ID", "EMAIL", "NAME", "PROFILE_PICTURE_URL", "CREATED_AT", "UPDATED_AT"}

func TestToDomainUser(t *testing.T) {
	now := time.Now()
	m := &models.User{
		ID:        "U1",
		GoogleID:  "g-1",
		Email:     "a@example.com",
		Name:      sql.NullString{String: "A", Valid: true},
		CreatedAt: now,
		UpdatedAt: now,
	}
	u := toDomainUser(m)
	assert.Equal(t, "A", u.Name)
	assert.Equal(t, "", u.ProfilePictureURL)
	assert.Nil(t, toDomainUser(nil))
}

func TestCreateUser(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewUserDatabaseAdapter(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(sqlmock.AnyArg(), "g-1", "a@example.com", "A", nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u := &domain.User{GoogleID: "g-1", Email: "a@example.com", Name: "A"}
	require.NoError(t, repo.CreateUser(context.Background(), u))
	assert.NotEmpty(t, u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByGoogleID(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewUserDatabaseAdapter(db)
	query := regexp.QuoteMeta("FROM users WHERE google_id = :1")
	now := time.Now()

	mock.ExpectQuery(query).WithArgs("g-1").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("U1", "g-1", "a@example.com", "A", nil, now, now))
	u, err := repo.GetUserByGoogleID(context.Background(), "g-1")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "U1", u.ID)

	mock.ExpectQuery(query).WithArgs("g-2").WillReturnRows(sqlmock.NewRows(userCols))
	u, err = repo.GetUserByGoogleID(context.Background(), "g-2")
	assert.NoError(t, err)
	assert.Nil(t, u)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUser_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewUserDatabaseAdapter(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET")).WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateUser(context.Background(), &domain.User{ID: "nope", Email: "x@example.com"})
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
