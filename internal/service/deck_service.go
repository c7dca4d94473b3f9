package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/logger"
)

// ImportReport summarizes a deck import.
type ImportReport struct {
	LevelNumber int
	Imported    int
	Skipped     int
}

// DeckService writes imported decks into the catalog.
type DeckService interface {
	ImportDeck(ctx context.Context, deck *domain.Deck) (*ImportReport, error)
}

type deckServiceImpl struct {
	levels    domain.LevelRepository
	questions domain.QuestionRepository
	tx        domain.TransactionManager
	// defaultPassingScore applies when the deck does not set one.
	defaultPassingScore int
}

func NewDeckService(levels domain.LevelRepository, questions domain.QuestionRepository, tx domain.TransactionManager, defaultPassingScore int) DeckService {
	return &deckServiceImpl{
		levels:              levels,
		questions:           questions,
		tx:                  tx,
		defaultPassingScore: defaultPassingScore,
	}
}

// ImportDeck upserts the deck's level and replaces all of its questions in a
// single transaction. Invalid questions are skipped and logged.
func (s *deckServiceImpl) ImportDeck(ctx context.Context, deck *domain.Deck) (*ImportReport, error) {
	appLogger := logger.Get()

	title := deck.Title
	if title == "" {
		title = domain.DeckTitle(deck.LevelNumber)
	}
	level := domain.NewLevel(deck.LevelNumber, title)
	if deck.PassingScore > 0 {
		level.PassingScore = deck.PassingScore
	} else if s.defaultPassingScore > 0 {
		level.PassingScore = s.defaultPassingScore
	}
	if err := level.Validate(); err != nil {
		return nil, err
	}

	report := &ImportReport{LevelNumber: deck.LevelNumber}
	valid := make([]*domain.Question, 0, len(deck.Questions))
	for i, q := range deck.Questions {
		if err := q.Validate(); err != nil {
			appLogger.Warn("Skipping invalid question",
				zap.String("source", deck.Source),
				zap.Int("row", i+1),
				zap.Error(err))
			report.Skipped++
			continue
		}
		valid = append(valid, q)
	}
	if len(valid) == 0 {
		return report, domain.NewLevelEmptyError(deck.LevelNumber).WithContext("source", deck.Source)
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.levels.UpsertLevel(ctx, level); err != nil {
			return fmt.Errorf("upsert level %d: %w", level.Number, err)
		}
		for _, q := range valid {
			q.LevelID = level.ID
		}
		if err := s.questions.ReplaceLevelQuestions(ctx, level.ID, valid); err != nil {
			return fmt.Errorf("replace questions of level %d: %w", level.Number, err)
		}
		return nil
	})
	if err != nil {
		return report, domain.NewInternalError("failed to import deck", err)
	}

	report.Imported = len(valid)
	appLogger.Info("Deck imported",
		zap.String("source", deck.Source),
		zap.Int("level", deck.LevelNumber),
		zap.Int("imported", report.Imported),
		zap.Int("skipped", report.Skipped))
	return report, nil
}
