package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocab-quiz/internal/cache"
	"vocab-quiz/internal/domain"
)

func TestSessionStore_RoundTrip(t *testing.T) {
	c := newMemCache()
	store := NewSessionStore(c, time.Hour)
	ctx := context.Background()

	level := &domain.Level{ID: "lvl", Number: 1, PassingScore: 3}
	q := domain.NewQuestion(domain.QuestionTypeWord, "猫", "ねこ", "แมว", "cat")
	sess := domain.NewSession("01HZX", level, "user-1", []*domain.Question{q}, time.Now())

	require.NoError(t, store.Save(ctx, sess))
	assert.Equal(t, time.Hour, c.ttls[cache.SessionKey("01HZX")])

	got, err := store.Load(ctx, "01HZX")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, "user-1", got.UserID)
	require.Len(t, got.Questions, 1)
	assert.Equal(t, "แมว", got.Questions[0].AnswersPrimary)
	assert.Equal(t, domain.SessionStateAwaitingInput, got.State)

	require.NoError(t, store.Delete(ctx, "01HZX"))
	_, err = store.Load(ctx, "01HZX")
	assert.True(t, domain.IsCode(err, domain.CodeSessionNotFound))
}

func TestSessionStore_LoadMissing(t *testing.T) {
	store := NewSessionStore(newMemCache(), time.Hour)
	_, err := store.Load(context.Background(), "nope")
	assert.True(t, domain.IsCode(err, domain.CodeSessionNotFound))
}

func TestSessionStore_LoadCorrupt(t *testing.T) {
	c := newMemCache()
	_ = c.Set(context.Background(), cache.SessionKey("bad"), "{not json", 0)
	store := NewSessionStore(c, time.Hour)
	_, err := store.Load(context.Background(), "bad")
	assert.True(t, domain.IsCode(err, domain.CodeInternal))
}
