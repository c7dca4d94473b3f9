package dto

import "time"

// LevelResponse describes a playable level.
type LevelResponse struct {
	ID           string `json:"id"`
	Number       int    `json:"number"`
	Title        string `json:"title"`
	PassingScore int    `json:"passing_score"`
}

// LevelListResponse wraps the level catalog.
type LevelListResponse struct {
	Levels []LevelResponse `json:"levels"`
}

// StartSessionRequest starts a quiz run on a level.
// @Description Request body for starting a quiz session
type StartSessionRequest struct {
	LevelNumber int `json:"level_number" validate:"required,min=1,max=1000"`
}

// QuestionView is the current question as shown to the learner. Accepted
// answers are never included.
type QuestionView struct {
	Prompt   string   `json:"prompt"`
	Reading  string   `json:"reading"`
	Type     string   `json:"type"`
	WordBank []string `json:"word_bank,omitempty"`
}

// GradeResultResponse is the verdict for the last graded question.
type GradeResultResponse struct {
	Correct         bool    `json:"correct"`
	ReferenceAnswer string  `json:"reference_answer"`
	Similarity      float64 `json:"similarity"`
}

// SessionResponse is a snapshot of a quiz session.
type SessionResponse struct {
	ID          string               `json:"id"`
	LevelNumber int                  `json:"level_number"`
	State       string               `json:"state"`
	Index       int                  `json:"index"`
	Total       int                  `json:"total"`
	Score       int                  `json:"score"`
	Passed      bool                 `json:"passed"`
	Question    *QuestionView        `json:"question,omitempty"`
	LastResult  *GradeResultResponse `json:"last_result,omitempty"`
	StartedAt   time.Time            `json:"started_at"`
}

// AnswerRequest submits an answer for the current question. Either Answer
// or Tokens (word bank order) must be given.
// @Description Request body for answering the current question
type AnswerRequest struct {
	Answer string   `json:"answer" validate:"max=2000"`
	Tokens []string `json:"tokens,omitempty" validate:"max=100,dive,max=200"`
}

// AnswerResponse is returned after grading the current question.
type AnswerResponse struct {
	Correct         bool   `json:"correct"`
	ReferenceAnswer string `json:"reference_answer"`
	Score           int    `json:"score"`
	State           string `json:"state"`
}

// GradeRequest grades an answer against an ad-hoc question.
// @Description Request body for stateless grading
type GradeRequest struct {
	Answer            string `json:"answer" validate:"max=2000"`
	Type              string `json:"type" validate:"omitempty,oneof=word sentence"`
	AcceptedPrimary   string `json:"accepted_primary" validate:"max=2000"`
	AcceptedSecondary string `json:"accepted_secondary" validate:"max=2000"`
}

// GradeResponse is the verdict of a stateless grade.
type GradeResponse struct {
	Correct         bool    `json:"correct"`
	ReferenceAnswer string  `json:"reference_answer"`
	Similarity      float64 `json:"similarity"`
}

// ProgressItem is the best result on one level.
type ProgressItem struct {
	LevelID      string    `json:"level_id"`
	LevelNumber  int       `json:"level_number"`
	IsPassed     bool      `json:"is_passed"`
	HighestScore int       `json:"highest_score"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProgressResponse lists the caller's progress.
type ProgressResponse struct {
	Progress []ProgressItem `json:"progress"`
}
