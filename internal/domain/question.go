package domain

import (
	"fmt"
	"strings"
	"time"
)

// QuestionType distinguishes single-word flashcards from full sentences.
// The two types are graded with different similarity thresholds.
type QuestionType string

const (
	QuestionTypeWord     QuestionType = "word"
	QuestionTypeSentence QuestionType = "sentence"
)

// ParseQuestionType converts a stored or imported value into a QuestionType.
// An empty value defaults to word, matching how vocabulary decks are imported.
func ParseQuestionType(s string) (QuestionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "word":
		return QuestionTypeWord, nil
	case "sentence":
		return QuestionTypeSentence, nil
	default:
		return "", fmt.Errorf("unknown question type %q", s)
	}
}

// Level is a group of questions played together, e.g. one JLPT grade.
type Level struct {
	ID           string    `json:"id"`
	Number       int       `json:"number"`
	Title        string    `json:"title"`
	PassingScore int       `json:"passing_score"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DefaultPassingScore is the minimum score needed to pass a level unless configured otherwise.
const DefaultPassingScore = 3

// NewLevel creates a new Level instance
func NewLevel(number int, title string) *Level {
	now := time.Now()
	return &Level{
		Number:       number,
		Title:        title,
		PassingScore: DefaultPassingScore,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate validates the level
func (l *Level) Validate() error {
	if l.Number <= 0 {
		return NewInvalidInputError("level number must be positive")
	}
	if strings.TrimSpace(l.Title) == "" {
		return NewInvalidInputError("level title is required")
	}
	if l.PassingScore < 0 {
		return NewInvalidInputError("passing score cannot be negative")
	}
	return nil
}

// Question is a single flashcard. Accepted answers are stored as the
// comma-separated strings they were authored with; AnswersPrimary is the
// language shown back to the learner when they miss.
type Question struct {
	ID               string       `json:"id"`
	LevelID          string       `json:"level_id"`
	Type             QuestionType `json:"type"`
	Prompt           string       `json:"prompt"`
	Reading          string       `json:"reading"`
	AnswersPrimary   string       `json:"answers_primary"`
	AnswersSecondary string       `json:"answers_secondary"`
	WordBank         []string     `json:"word_bank,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}

// NewQuestion creates a new Question instance. A missing reading falls back to the prompt.
func NewQuestion(qType QuestionType, prompt, reading, primary, secondary string) *Question {
	if strings.TrimSpace(reading) == "" {
		reading = prompt
	}
	return &Question{
		Type:             qType,
		Prompt:           prompt,
		Reading:          reading,
		AnswersPrimary:   primary,
		AnswersSecondary: secondary,
		CreatedAt:        time.Now(),
	}
}

// Validate validates the question
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Prompt) == "" {
		return NewInvalidInputError("question prompt is required")
	}
	if q.Type != QuestionTypeWord && q.Type != QuestionTypeSentence {
		return NewInvalidInputError(fmt.Sprintf("unsupported question type: %s", q.Type))
	}
	if q.Type == QuestionTypeWord && len(q.WordBank) > 0 {
		return NewInvalidInputError("word bank is only allowed for sentence questions")
	}
	return nil
}
