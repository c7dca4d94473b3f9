package service

import (
	"context"

	"go.uber.org/zap"

	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/dto"
	"vocab-quiz/internal/logger"
)

// ProgressService records finished sessions and reports per level progress.
type ProgressService interface {
	RecordSessionResult(ctx context.Context, ev domain.SessionFinishedEvent) error
	ListUserProgress(ctx context.Context, userID string) (*dto.ProgressResponse, error)
}

type progressServiceImpl struct {
	repo domain.ProgressRepository
	tx   domain.TransactionManager
}

func NewProgressService(repo domain.ProgressRepository, tx domain.TransactionManager) ProgressService {
	return &progressServiceImpl{repo: repo, tx: tx}
}

// RecordSessionResult folds a finished session into the user's progress.
// Anonymous sessions are ignored.
func (s *progressServiceImpl) RecordSessionResult(ctx context.Context, ev domain.SessionFinishedEvent) error {
	if ev.UserID == "" {
		return nil
	}

	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetProgress(ctx, ev.UserID, ev.LevelID)
		if err != nil {
			return domain.NewInternalError("failed to load progress", err)
		}
		isNew := p == nil
		if isNew {
			p = &domain.UserProgress{
				UserID:      ev.UserID,
				LevelID:     ev.LevelID,
				LevelNumber: ev.LevelNumber,
			}
		}

		changed := p.Apply(ev.Score, ev.PassingScore, ev.FinishedAt)
		if !changed && !isNew {
			return nil
		}
		if isNew && !changed {
			p.UpdatedAt = ev.FinishedAt
		}
		if err := s.repo.SaveProgress(ctx, p); err != nil {
			return domain.NewInternalError("failed to save progress", err)
		}

		logger.Get().Info("Progress updated",
			zap.String("user_id", ev.UserID),
			zap.Int("level", ev.LevelNumber),
			zap.Int("highest_score", p.HighestScore),
			zap.Bool("is_passed", p.IsPassed))
		return nil
	})
}

func (s *progressServiceImpl) ListUserProgress(ctx context.Context, userID string) (*dto.ProgressResponse, error) {
	if userID == "" {
		return nil, domain.NewUnauthorizedError("user is not authenticated")
	}
	items, err := s.repo.ListProgressByUser(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to list progress", err)
	}
	resp := &dto.ProgressResponse{Progress: make([]dto.ProgressItem, 0, len(items))}
	for _, p := range items {
		resp.Progress = append(resp.Progress, dto.ProgressItem{
			LevelID:      p.LevelID,
			LevelNumber:  p.LevelNumber,
			IsPassed:     p.IsPassed,
			HighestScore: p.HighestScore,
			UpdatedAt:    p.UpdatedAt,
		})
	}
	return resp, nil
}
