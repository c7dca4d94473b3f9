package service

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"go.uber.org/zap"

	"vocab-quiz/internal/config"
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/dto"
	"vocab-quiz/internal/grader"
	"vocab-quiz/internal/logger"
	"vocab-quiz/internal/util"
)

// QuizService runs quiz sessions: it starts them, grades the current
// question and advances until the session is finished.
type QuizService interface {
	ListLevels(ctx context.Context) (*dto.LevelListResponse, error)
	StartSession(ctx context.Context, levelNumber int, userID string) (*dto.SessionResponse, error)
	GetSession(ctx context.Context, sessionID string) (*dto.SessionResponse, error)
	GradeCurrent(ctx context.Context, sessionID string, req dto.AnswerRequest) (*dto.AnswerResponse, error)
	AdvanceNext(ctx context.Context, sessionID string) (*dto.SessionResponse, error)
	Grade(ctx context.Context, req dto.GradeRequest) (*dto.GradeResponse, error)
}

type quizServiceImpl struct {
	levels    domain.LevelRepository
	questions domain.QuestionRepository
	store     SessionStore
	grader    *grader.Grader
	publisher domain.EventPublisher
	cfg       config.QuizConfig

	// perm returns a random permutation of [0, n).
	perm func(n int) []int
	now  func() time.Time
}

// NewQuizService creates the quiz session engine.
func NewQuizService(
	levels domain.LevelRepository,
	questions domain.QuestionRepository,
	store SessionStore,
	g *grader.Grader,
	publisher domain.EventPublisher,
	cfg config.QuizConfig,
) QuizService {
	return &quizServiceImpl{
		levels:    levels,
		questions: questions,
		store:     store,
		grader:    g,
		publisher: publisher,
		cfg:       cfg,
		perm:      rand.Perm,
		now:       time.Now,
	}
}

func (s *quizServiceImpl) ListLevels(ctx context.Context) (*dto.LevelListResponse, error) {
	levels, err := s.levels.ListLevels(ctx)
	if err != nil {
		return nil, domain.NewInternalError("failed to list levels", err)
	}
	resp := &dto.LevelListResponse{Levels: make([]dto.LevelResponse, 0, len(levels))}
	for _, l := range levels {
		resp.Levels = append(resp.Levels, dto.LevelResponse{
			ID:           l.ID,
			Number:       l.Number,
			Title:        l.Title,
			PassingScore: s.passingScore(l),
		})
	}
	return resp, nil
}

// StartSession picks the session's questions from the level. Levels with more
// questions than quiz.questions_per_session are sampled at random; smaller
// levels are played in authored order.
func (s *quizServiceImpl) StartSession(ctx context.Context, levelNumber int, userID string) (*dto.SessionResponse, error) {
	level, err := s.levels.GetLevelByNumber(ctx, levelNumber)
	if err != nil {
		return nil, domain.NewInternalError("failed to load level", err)
	}
	if level == nil {
		return nil, domain.NewLevelNotFoundError(levelNumber)
	}

	all, err := s.questions.GetQuestionsByLevel(ctx, level.ID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load questions", err)
	}
	if len(all) == 0 {
		return nil, domain.NewLevelEmptyError(levelNumber)
	}

	picked := s.sample(all)
	lvl := *level
	lvl.PassingScore = s.passingScore(level)

	sess := domain.NewSession(util.NewULID(), &lvl, userID, picked, s.now())
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}

	logger.Get().Info("Quiz session started",
		zap.String("session_id", sess.ID),
		zap.Int("level", levelNumber),
		zap.Int("questions", len(picked)),
		zap.Bool("authenticated", userID != ""))
	return toSessionResponse(sess), nil
}

func (s *quizServiceImpl) GetSession(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	sess, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(sess), nil
}

// GradeCurrent grades the answer for the current question. A word bank
// answer is the chosen tokens joined by single spaces.
func (s *quizServiceImpl) GradeCurrent(ctx context.Context, sessionID string, req dto.AnswerRequest) (*dto.AnswerResponse, error) {
	sess, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.State != domain.SessionStateAwaitingInput {
		return nil, domain.NewInvalidStateError(sess.State, "grade an answer")
	}

	answer := req.Answer
	if len(req.Tokens) > 0 {
		answer = strings.Join(req.Tokens, " ")
	}

	res := s.grader.Grade(sess.Current(), answer)
	outcome := domain.GradeOutcome{
		Answer:          answer,
		Correct:         res.Correct,
		ReferenceAnswer: res.ReferenceAnswer,
		Similarity:      res.Similarity,
	}
	if err := sess.RecordGrade(outcome, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}

	logger.Get().Debug("Answer graded",
		zap.String("session_id", sess.ID),
		zap.Int("index", sess.Index),
		zap.Bool("correct", res.Correct),
		zap.Float64("similarity", res.Similarity))

	return &dto.AnswerResponse{
		Correct:         res.Correct,
		ReferenceAnswer: res.ReferenceAnswer,
		Score:           sess.Score,
		State:           string(sess.State),
	}, nil
}

// AdvanceNext moves past the graded question. Finishing the session
// publishes a session finished event.
func (s *quizServiceImpl) AdvanceNext(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	sess, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	finished, err := sess.Advance(s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}

	if finished {
		logger.Get().Info("Quiz session finished",
			zap.String("session_id", sess.ID),
			zap.Int("score", sess.Score),
			zap.Int("total", sess.Total()),
			zap.Bool("passed", sess.Passed()))
		if s.publisher != nil {
			if err := s.publisher.PublishSessionFinished(ctx, sess.FinishedEvent()); err != nil {
				// The session itself is already stored, only progress tracking is lost.
				logger.Get().Error("Failed to publish session finished event",
					zap.String("session_id", sess.ID), zap.Error(err))
			}
		}
	}
	return toSessionResponse(sess), nil
}

// Grade grades an answer against an ad-hoc question without a session.
func (s *quizServiceImpl) Grade(_ context.Context, req dto.GradeRequest) (*dto.GradeResponse, error) {
	qType, err := domain.ParseQuestionType(req.Type)
	if err != nil {
		return nil, domain.NewInvalidInputError(err.Error())
	}
	res := s.grader.Grade(&domain.Question{
		Type:             qType,
		AnswersPrimary:   req.AcceptedPrimary,
		AnswersSecondary: req.AcceptedSecondary,
	}, req.Answer)
	return &dto.GradeResponse{
		Correct:         res.Correct,
		ReferenceAnswer: res.ReferenceAnswer,
		Similarity:      res.Similarity,
	}, nil
}

func (s *quizServiceImpl) passingScore(l *domain.Level) int {
	if l.PassingScore > 0 {
		return l.PassingScore
	}
	return s.cfg.DefaultPassingScore
}

func (s *quizServiceImpl) sample(all []*domain.Question) []*domain.Question {
	n := s.cfg.QuestionsPerSession
	if n <= 0 || len(all) <= n {
		out := make([]*domain.Question, len(all))
		copy(out, all)
		return out
	}
	idx := s.perm(len(all))[:n]
	out := make([]*domain.Question, 0, n)
	for _, i := range idx {
		out = append(out, all[i])
	}
	return out
}

func toSessionResponse(sess *domain.Session) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		ID:          sess.ID,
		LevelNumber: sess.LevelNumber,
		State:       string(sess.State),
		Index:       sess.Index,
		Total:       sess.Total(),
		Score:       sess.Score,
		Passed:      sess.State == domain.SessionStateFinished && sess.Passed(),
		StartedAt:   sess.StartedAt,
	}
	if q := sess.Current(); q != nil {
		view := &dto.QuestionView{
			Prompt:  q.Prompt,
			Reading: q.Reading,
			Type:    string(q.Type),
		}
		if len(q.WordBank) > 0 {
			view.WordBank = shuffledTokens(q.WordBank, sess.ID, sess.Index)
		}
		resp.Question = view
	}
	if sess.LastOutcome != nil {
		resp.LastResult = &dto.GradeResultResponse{
			Correct:         sess.LastOutcome.Correct,
			ReferenceAnswer: sess.LastOutcome.ReferenceAnswer,
			Similarity:      sess.LastOutcome.Similarity,
		}
	}
	return resp
}

// shuffledTokens returns the word bank in an order that is stable for a
// given session position, so repeated reads show the same layout.
func shuffledTokens(tokens []string, sessionID string, index int) []string {
	out := make([]string, len(tokens))
	copy(out, tokens)
	var seed uint64
	for _, b := range []byte(sessionID) {
		seed = seed*31 + uint64(b)
	}
	r := rand.New(rand.NewPCG(seed, uint64(index)))
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
