package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLevel() *Level {
	return &Level{ID: "L1", Number: 1, Title: "JLPT N5 Vocabulary", PassingScore: 2}
}

func testQuestions(n int) []*Question {
	qs := make([]*Question, n)
	for i := range qs {
		qs[i] = NewQuestion(QuestionTypeWord, "猫", "ねこ", "แมว", "cat")
	}
	return qs
}

func TestNewSession(t *testing.T) {
	now := time.Now()

	t.Run("starts awaiting input on first question", func(t *testing.T) {
		s := NewSession("S1", testLevel(), "", testQuestions(3), now)
		assert.Equal(t, SessionStateAwaitingInput, s.State)
		assert.Equal(t, 0, s.Index)
		assert.Equal(t, 0, s.Score)
		assert.Equal(t, 2, s.PassingScore)
		assert.NotNil(t, s.Current())
		assert.Equal(t, 2, s.Remaining())
	})

	t.Run("empty question set is finished", func(t *testing.T) {
		s := NewSession("S2", testLevel(), "", nil, now)
		assert.Equal(t, SessionStateFinished, s.State)
		assert.Nil(t, s.Current())
		assert.Equal(t, 0, s.Remaining())
	})
}

func TestSessionFlow(t *testing.T) {
	now := time.Now()
	s := NewSession("S1", testLevel(), "U1", testQuestions(2), now)

	require.NoError(t, s.RecordGrade(GradeOutcome{Answer: "cat", Correct: true, ReferenceAnswer: "แมว"}, now))
	assert.Equal(t, SessionStateGraded, s.State)
	assert.Equal(t, 1, s.Score)
	require.NotNil(t, s.LastOutcome)
	assert.True(t, s.LastOutcome.Correct)

	err := s.RecordGrade(GradeOutcome{Correct: true}, now)
	assert.True(t, IsCode(err, CodeInvalidState), "grading twice must fail")
	assert.Equal(t, 1, s.Score)

	finished, err := s.Advance(now)
	require.NoError(t, err)
	assert.False(t, finished)
	assert.Equal(t, 1, s.Index)
	assert.Equal(t, SessionStateAwaitingInput, s.State)
	assert.Nil(t, s.LastOutcome)

	_, err = s.Advance(now)
	assert.True(t, IsCode(err, CodeInvalidState), "advance before grading must fail")

	require.NoError(t, s.RecordGrade(GradeOutcome{Answer: "dog", Correct: false, ReferenceAnswer: "แมว"}, now))
	assert.Equal(t, 1, s.Score)

	finished, err = s.Advance(now)
	require.NoError(t, err)
	assert.True(t, finished)
	assert.Equal(t, SessionStateFinished, s.State)
	assert.Nil(t, s.Current())
	assert.False(t, s.Passed())

	assert.True(t, IsCode(s.RecordGrade(GradeOutcome{}, now), CodeInvalidState))
	_, err = s.Advance(now)
	assert.True(t, IsCode(err, CodeInvalidState))

	ev := s.FinishedEvent()
	assert.Equal(t, "S1", ev.SessionID)
	assert.Equal(t, "U1", ev.UserID)
	assert.Equal(t, 1, ev.Score)
	assert.Equal(t, 2, ev.Total)
	assert.Equal(t, 2, ev.PassingScore)
}

func TestUserProgress_Apply(t *testing.T) {
	now := time.Now()
	p := &UserProgress{UserID: "U1", LevelID: "L1"}

	assert.True(t, p.Apply(2, 3, now))
	assert.Equal(t, 2, p.HighestScore)
	assert.False(t, p.IsPassed)

	assert.True(t, p.Apply(4, 3, now))
	assert.Equal(t, 4, p.HighestScore)
	assert.True(t, p.IsPassed)

	assert.False(t, p.Apply(1, 3, now), "lower score changes nothing")
	assert.Equal(t, 4, p.HighestScore)
	assert.True(t, p.IsPassed)
}

func TestQuestion_Validate(t *testing.T) {
	q := NewQuestion(QuestionTypeWord, "猫", "", "แมว", "cat")
	assert.NoError(t, q.Validate())
	assert.Equal(t, "猫", q.Reading, "reading falls back to prompt")

	q.WordBank = []string{"a"}
	assert.Error(t, q.Validate())

	q = NewQuestion(QuestionTypeSentence, " ", "", "", "")
	assert.True(t, IsCode(q.Validate(), CodeInvalidInput))
}

func TestParseQuestionType(t *testing.T) {
	tests := []struct {
		in      string
		want    QuestionType
		wantErr bool
	}{
		{"", QuestionTypeWord, false},
		{"Word", QuestionTypeWord, false},
		{" sentence ", QuestionTypeSentence, false},
		{"phrase", "", true},
	}
	for _, tt := range tests {
		got, err := ParseQuestionType(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
