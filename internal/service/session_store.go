package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vocab-quiz/internal/cache"
	"vocab-quiz/internal/domain"
)

// SessionStore keeps whole session snapshots.
type SessionStore interface {
	Save(ctx context.Context, s *domain.Session) error
	// Load returns a SESSION_NOT_FOUND error for unknown or expired sessions.
	Load(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

type cacheSessionStore struct {
	cache domain.Cache
	ttl   time.Duration
}

// NewSessionStore stores sessions as JSON in c. Every save restarts the TTL.
func NewSessionStore(c domain.Cache, ttl time.Duration) SessionStore {
	return &cacheSessionStore{cache: c, ttl: ttl}
}

func (s *cacheSessionStore) Save(ctx context.Context, sess *domain.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return domain.NewInternalError("failed to encode session", err)
	}
	if err := s.cache.Set(ctx, cache.SessionKey(sess.ID), string(data), s.ttl); err != nil {
		return domain.NewInternalError("failed to store session", err)
	}
	return nil
}

func (s *cacheSessionStore) Load(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := s.cache.Get(ctx, cache.SessionKey(id))
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, domain.NewSessionNotFoundError(id)
		}
		return nil, domain.NewInternalError("failed to load session", err)
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, domain.NewInternalError(fmt.Sprintf("corrupt session %s", id), err)
	}
	return &sess, nil
}

func (s *cacheSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.cache.Delete(ctx, cache.SessionKey(id)); err != nil {
		return domain.NewInternalError("failed to delete session", err)
	}
	return nil
}
