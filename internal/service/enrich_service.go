package service

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vocab-quiz/internal/config"
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/grader"
	"vocab-quiz/internal/logger"
)

// EnrichReport counts what happened to each question of a level.
type EnrichReport struct {
	Total   int
	Updated int
	Skipped int
	Failed  int
}

// EnrichService grows the primary accepted answers of a level with synonyms.
type EnrichService interface {
	EnrichLevel(ctx context.Context, levelNumber int) (*EnrichReport, error)
}

type enrichServiceImpl struct {
	levels    domain.LevelRepository
	questions domain.QuestionRepository
	suggester domain.SynonymSuggester
	cfg       config.EnricherConfig
}

func NewEnrichService(levels domain.LevelRepository, questions domain.QuestionRepository, suggester domain.SynonymSuggester, cfg config.EnricherConfig) EnrichService {
	if cfg.TargetTotal <= 0 {
		cfg.TargetTotal = 4
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &enrichServiceImpl{levels: levels, questions: questions, suggester: suggester, cfg: cfg}
}

// EnrichLevel asks the suggester for each question that has fewer than
// TargetTotal primary answers. A failing question is counted and logged, it
// does not stop the others.
func (s *enrichServiceImpl) EnrichLevel(ctx context.Context, levelNumber int) (*EnrichReport, error) {
	level, err := s.levels.GetLevelByNumber(ctx, levelNumber)
	if err != nil {
		return nil, domain.NewInternalError("failed to load level", err)
	}
	if level == nil {
		return nil, domain.NewLevelNotFoundError(levelNumber)
	}
	questions, err := s.questions.GetQuestionsByLevel(ctx, level.ID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load questions", err)
	}

	report := &EnrichReport{Total: len(questions)}
	var mu sync.Mutex
	count := func(field *int) {
		mu.Lock()
		*field++
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, q := range questions {
		g.Go(func() error {
			updated, err := s.enrichQuestion(gctx, q)
			switch {
			case err != nil:
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logger.Get().Warn("Failed to enrich question",
					zap.String("question_id", q.ID),
					zap.String("prompt", q.Prompt),
					zap.Error(err))
				count(&report.Failed)
			case updated:
				count(&report.Updated)
			default:
				count(&report.Skipped)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	logger.Get().Info("Level enriched",
		zap.Int("level", levelNumber),
		zap.Int("total", report.Total),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report, nil
}

func (s *enrichServiceImpl) enrichQuestion(ctx context.Context, q *domain.Question) (bool, error) {
	existing := primaryAnswers(q.AnswersPrimary)
	want := s.cfg.TargetTotal - len(existing)
	if want <= 0 {
		return false, nil
	}

	extra, err := s.suggester.SuggestSynonyms(ctx, q, want)
	if err != nil {
		return false, err
	}
	merged := MergeSynonyms(existing, extra, s.cfg.TargetTotal)
	if len(merged) == len(existing) {
		return false, nil
	}

	primary := strings.Join(merged, ", ")
	if err := s.questions.UpdateAnswers(ctx, q.ID, primary, q.AnswersSecondary); err != nil {
		return false, err
	}
	return true, nil
}

// MergeSynonyms appends extra to existing, keeping the first spelling of
// entries that normalize to the same text, and stops at limit entries.
// Existing entries are never dropped.
func MergeSynonyms(existing, extra []string, limit int) []string {
	seen := make(map[string]struct{}, len(existing)+len(extra))
	out := make([]string, 0, max(limit, len(existing)))
	for _, e := range existing {
		key := grader.Normalize(e)
		if _, ok := seen[key]; ok || key == "" {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, strings.TrimSpace(e))
	}
	for _, e := range extra {
		if len(out) >= limit {
			break
		}
		key := grader.Normalize(e)
		if _, ok := seen[key]; ok || key == "" {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, strings.TrimSpace(e))
	}
	return out
}

func primaryAnswers(field string) []string {
	var out []string
	for _, seg := range grader.SplitAnswers(field) {
		if grader.Normalize(seg) != "" {
			out = append(out, strings.TrimSpace(seg))
		}
	}
	return out
}
