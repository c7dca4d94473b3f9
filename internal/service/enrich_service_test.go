package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vocab-quiz/internal/config"
	"vocab-quiz/internal/domain"
)

func TestMergeSynonyms(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		extra    []string
		limit    int
		want     []string
	}{
		{"appends in order", []string{"แมว"}, []string{"เหมียว", "วิฬาร์"}, 4, []string{"แมว", "เหมียว", "วิฬาร์"}},
		{"caps", []string{"a"}, []string{"b", "c", "d", "e"}, 3, []string{"a", "b", "c"}},
		{"dedupes on normalized text", []string{"Cat"}, []string{"cat!", " c a t", "kitty"}, 4, []string{"Cat", "kitty"}},
		{"drops empty", []string{"a"}, []string{"", "  ", "!!"}, 4, []string{"a"}},
		{"keeps existing over limit", []string{"a", "b", "c"}, []string{"d"}, 2, []string{"a", "b", "c"}},
		{"trims", nil, []string{"  หมา "}, 4, []string{"หมา"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeSynonyms(tt.existing, tt.extra, tt.limit))
		})
	}
}

func TestEnrichService_EnrichLevel(t *testing.T) {
	levels := new(MockLevelRepository)
	questions := new(MockQuestionRepository)
	suggester := new(MockSynonymSuggester)
	svc := NewEnrichService(levels, questions, suggester, config.EnricherConfig{TargetTotal: 3, Concurrency: 2})

	full := &domain.Question{ID: "q1", Prompt: "猫", AnswersPrimary: "แมว, เหมียว, วิฬาร์", AnswersSecondary: "cat"}
	grow := &domain.Question{ID: "q2", Prompt: "犬", AnswersPrimary: "หมา", AnswersSecondary: "dog"}
	same := &domain.Question{ID: "q3", Prompt: "鳥", AnswersPrimary: "นก", AnswersSecondary: "bird"}
	broken := &domain.Question{ID: "q4", Prompt: "魚", AnswersPrimary: "ปลา", AnswersSecondary: "fish"}

	levels.On("GetLevelByNumber", mock.Anything, 1).Return(&domain.Level{ID: "lvl-1", Number: 1}, nil)
	questions.On("GetQuestionsByLevel", mock.Anything, "lvl-1").Return([]*domain.Question{full, grow, same, broken}, nil)
	suggester.On("SuggestSynonyms", mock.Anything, grow, 2).Return([]string{"สุนัข", "หมา", "หมู"}, nil)
	suggester.On("SuggestSynonyms", mock.Anything, same, 2).Return([]string{"นก!"}, nil)
	suggester.On("SuggestSynonyms", mock.Anything, broken, 2).Return(nil, errors.New("bad json"))
	questions.On("UpdateAnswers", mock.Anything, "q2", "หมา, สุนัข, หมู", "dog").Return(nil)

	report, err := svc.EnrichLevel(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, &EnrichReport{Total: 4, Updated: 1, Skipped: 2, Failed: 1}, report)
	questions.AssertExpectations(t)
	suggester.AssertNotCalled(t, "SuggestSynonyms", mock.Anything, full, mock.Anything)
}

func TestEnrichService_UnknownLevel(t *testing.T) {
	levels := new(MockLevelRepository)
	svc := NewEnrichService(levels, new(MockQuestionRepository), new(MockSynonymSuggester), config.EnricherConfig{})
	levels.On("GetLevelByNumber", mock.Anything, 7).Return(nil, nil)

	_, err := svc.EnrichLevel(context.Background(), 7)
	assert.True(t, domain.IsCode(err, domain.CodeLevelNotFound))
}
