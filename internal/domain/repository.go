package domain

import "context"

// LevelRepository persists levels.
type LevelRepository interface {
	ListLevels(ctx context.Context) ([]*Level, error)
	// GetLevelByNumber returns nil, nil when the level does not exist.
	GetLevelByNumber(ctx context.Context, number int) (*Level, error)
	UpsertLevel(ctx context.Context, level *Level) error
}

// QuestionRepository persists questions of a level.
type QuestionRepository interface {
	GetQuestionsByLevel(ctx context.Context, levelID string) ([]*Question, error)
	ReplaceLevelQuestions(ctx context.Context, levelID string, questions []*Question) error
	UpdateAnswers(ctx context.Context, questionID, primary, secondary string) error
}

// ProgressRepository persists per user level progress.
type ProgressRepository interface {
	// GetProgress returns nil, nil when the user never finished the level.
	GetProgress(ctx context.Context, userID, levelID string) (*UserProgress, error)
	SaveProgress(ctx context.Context, progress *UserProgress) error
	ListProgressByUser(ctx context.Context, userID string) ([]*UserProgress, error)
}

// TransactionManager runs fn inside a database transaction. Repositories
// pick the transaction up from the context.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher publishes domain events.
type EventPublisher interface {
	PublishSessionFinished(ctx context.Context, event SessionFinishedEvent) error
}

// SynonymSuggester proposes additional accepted answers for a question.
type SynonymSuggester interface {
	SuggestSynonyms(ctx context.Context, q *Question, want int) ([]string, error)
}
