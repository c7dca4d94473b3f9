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

const userColumns = `id, google_id, email, name, profile_picture_url, created_at, updated_at`

// UserDatabaseAdapter implements domain.UserRepository using sqlx.
type UserDatabaseAdapter struct {
	db DBTX
}

// NewUserDatabaseAdapter creates a new user repository.
func NewUserDatabaseAdapter(db *sqlx.DB) domain.UserRepository {
	return &UserDatabaseAdapter{db: db}
}

// CreateUser inserts a new user into the database. An empty ID is filled in.
func (r *UserDatabaseAdapter) CreateUser(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = util.NewULID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `INSERT INTO users (` + userColumns + `) VALUES (:1, :2, :3, :4, :5, :6, :7)`
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		user.ID,
		user.GoogleID,
		user.Email,
		util.StringToNullString(user.Name),
		util.StringToNullString(user.ProfilePictureURL),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByGoogleID retrieves a user by their Google ID. It returns nil, nil when not found.
func (r *UserDatabaseAdapter) GetUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE google_id = :1`, googleID)
}

// GetUserByID retrieves a user by their internal ID. It returns nil, nil when not found.
func (r *UserDatabaseAdapter) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = :1`, userID)
}

func (r *UserDatabaseAdapter) getOne(ctx context.Context, query string, arg string) (*domain.User, error) {
	var row models.User
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return toDomainUser(&row), nil
}

// UpdateUser updates the profile fields of an existing user.
func (r *UserDatabaseAdapter) UpdateUser(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now()

	query := `UPDATE users SET email = :1, name = :2, profile_picture_url = :3, updated_at = :4 WHERE id = :5`
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		user.Email,
		util.StringToNullString(user.Name),
		util.StringToNullString(user.ProfilePictureURL),
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.NewNotFoundError(fmt.Sprintf("user not found: %s", user.ID))
	}
	return nil
}

func toDomainUser(m *models.User) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		ID:                m.ID,
		GoogleID:          m.GoogleID,
		Email:             m.Email,
		Name:              m.Name.String,
		ProfilePictureURL: m.ProfilePictureURL.String,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
