package domain

import (
	"time"
)

// SessionState is the position of a quiz session in its lifecycle.
type SessionState string

const (
	SessionStateAwaitingInput SessionState = "awaiting_input"
	SessionStateGraded        SessionState = "graded"
	SessionStateFinished      SessionState = "finished"
)

// GradeOutcome is the verdict recorded for the current question.
type GradeOutcome struct {
	Answer          string  `json:"answer"`
	Correct         bool    `json:"correct"`
	ReferenceAnswer string  `json:"reference_answer"`
	Similarity      float64 `json:"similarity"`
}

// Session is one run through a fixed, ordered set of questions.
// It is mutated only through RecordGrade and Advance.
type Session struct {
	ID           string        `json:"id"`
	LevelID      string        `json:"level_id"`
	LevelNumber  int           `json:"level_number"`
	PassingScore int           `json:"passing_score"`
	UserID       string        `json:"user_id,omitempty"`
	Questions    []*Question   `json:"questions"`
	Index        int           `json:"index"`
	Score        int           `json:"score"`
	State        SessionState  `json:"state"`
	LastOutcome  *GradeOutcome `json:"last_outcome,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// NewSession creates a session positioned on the first question.
// A session without questions is finished from the start.
func NewSession(id string, level *Level, userID string, questions []*Question, now time.Time) *Session {
	s := &Session{
		ID:           id,
		LevelID:      level.ID,
		LevelNumber:  level.Number,
		PassingScore: level.PassingScore,
		UserID:       userID,
		Questions:    questions,
		State:        SessionStateAwaitingInput,
		StartedAt:    now,
		UpdatedAt:    now,
	}
	if len(questions) == 0 {
		s.State = SessionStateFinished
	}
	return s
}

// Current returns the question at the current position, or nil once finished.
func (s *Session) Current() *Question {
	if s.State == SessionStateFinished || s.Index < 0 || s.Index >= len(s.Questions) {
		return nil
	}
	return s.Questions[s.Index]
}

// Total is the number of questions in the session.
func (s *Session) Total() int {
	return len(s.Questions)
}

// Remaining counts questions after the current one.
func (s *Session) Remaining() int {
	if s.State == SessionStateFinished {
		return 0
	}
	r := len(s.Questions) - s.Index - 1
	if r < 0 {
		return 0
	}
	return r
}

// RecordGrade stores the verdict for the current question. Only one grade is
// allowed per question.
func (s *Session) RecordGrade(outcome GradeOutcome, now time.Time) error {
	if s.State != SessionStateAwaitingInput {
		return NewInvalidStateError(s.State, "grade an answer")
	}
	if outcome.Correct {
		s.Score++
	}
	s.LastOutcome = &outcome
	s.State = SessionStateGraded
	s.UpdatedAt = now
	return nil
}

// Advance moves past a graded question. It reports whether the session
// finished as a result.
func (s *Session) Advance(now time.Time) (bool, error) {
	if s.State != SessionStateGraded {
		return false, NewInvalidStateError(s.State, "advance")
	}
	s.UpdatedAt = now
	if s.Index+1 >= len(s.Questions) {
		s.State = SessionStateFinished
		return true, nil
	}
	s.Index++
	s.LastOutcome = nil
	s.State = SessionStateAwaitingInput
	return false, nil
}

// Passed reports whether the score reached the level's passing score.
func (s *Session) Passed() bool {
	return s.Score >= s.PassingScore
}

// SessionFinishedEvent is published once a session reaches the finished state.
type SessionFinishedEvent struct {
	SessionID    string    `json:"session_id"`
	UserID       string    `json:"user_id,omitempty"`
	LevelID      string    `json:"level_id"`
	LevelNumber  int       `json:"level_number"`
	Score        int       `json:"score"`
	Total        int       `json:"total"`
	PassingScore int       `json:"passing_score"`
	FinishedAt   time.Time `json:"finished_at"`
}

// FinishedEvent builds the event describing a finished session.
func (s *Session) FinishedEvent() SessionFinishedEvent {
	return SessionFinishedEvent{
		SessionID:    s.ID,
		UserID:       s.UserID,
		LevelID:      s.LevelID,
		LevelNumber:  s.LevelNumber,
		Score:        s.Score,
		Total:        len(s.Questions),
		PassingScore: s.PassingScore,
		FinishedAt:   s.UpdatedAt,
	}
}
