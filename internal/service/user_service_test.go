package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vocab-quiz/internal/domain"
)

func TestUserService_GetUserProfile(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo)

	repo.On("GetUserByID", mock.Anything, "u1").Return(&domain.User{ID: "u1", Email: "a@example.com", Name: "A"}, nil)
	repo.On("GetUserByID", mock.Anything, "u2").Return(nil, nil)
	repo.On("GetUserByID", mock.Anything, "u3").Return(nil, errors.New("db down"))

	profile, err := svc.GetUserProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", profile.Email)

	_, err = svc.GetUserProfile(context.Background(), "u2")
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))

	_, err = svc.GetUserProfile(context.Background(), "u3")
	assert.True(t, domain.IsCode(err, domain.CodeInternal))
}
