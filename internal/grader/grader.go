// Package grader decides whether a typed answer matches any of a question's
// accepted answers using normalization, substring containment and edit
// distance similarity.
package grader

import (
	"strings"
	"unicode/utf8"

	"vocab-quiz/internal/domain"
)

// Thresholds tunes how forgiving the grader is.
type Thresholds struct {
	// Sentence is the minimum similarity accepted for sentence questions.
	Sentence float64
	// Word is the minimum similarity accepted for word questions.
	Word float64
	// MinSubstringLen is the shortest answer, in runes, that may match a word
	// candidate by containment.
	MinSubstringLen int
}

// DefaultThresholds returns the thresholds used when none are configured.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Sentence:        0.65,
		Word:            0.80,
		MinSubstringLen: 2,
	}
}

// Grader grades answers against accepted answer lists.
type Grader struct {
	th Thresholds
}

// New creates a Grader. Zero valued fields fall back to the defaults.
func New(th Thresholds) *Grader {
	def := DefaultThresholds()
	if th.Sentence <= 0 {
		th.Sentence = def.Sentence
	}
	if th.Word <= 0 {
		th.Word = def.Word
	}
	if th.MinSubstringLen <= 0 {
		th.MinSubstringLen = def.MinSubstringLen
	}
	return &Grader{th: th}
}

// Thresholds returns the thresholds in effect.
func (g *Grader) Thresholds() Thresholds {
	return g.th
}

// Result is the verdict for one answer.
type Result struct {
	Correct bool
	// ReferenceAnswer is the first primary-language answer, shown when the
	// learner misses.
	ReferenceAnswer string
	// Matched is the normalized candidate that accepted the answer.
	Matched string
	// Similarity is the best similarity seen across candidates.
	Similarity float64
}

// IsAcceptable reports whether userAnswer matches any candidate in accepted.
func (g *Grader) IsAcceptable(userAnswer string, accepted []string, qType domain.QuestionType) bool {
	candidates := make([]string, len(accepted))
	for i, c := range accepted {
		candidates[i] = Normalize(c)
	}
	ok, _, _ := g.match(Normalize(userAnswer), candidates, qType)
	return ok
}

// Grade checks rawInput against both accepted answer fields of q. Malformed
// or empty answer fields never accept anything.
func (g *Grader) Grade(q *domain.Question, rawInput string) Result {
	if q == nil {
		return Result{}
	}
	res := Result{ReferenceAnswer: ReferenceAnswer(q)}

	candidates := make([]string, 0, 8)
	for _, field := range []string{q.AnswersPrimary, q.AnswersSecondary} {
		for _, part := range SplitAnswers(field) {
			if n := Normalize(part); n != "" {
				candidates = append(candidates, n)
			}
		}
	}

	res.Correct, res.Matched, res.Similarity = g.match(Normalize(rawInput), candidates, q.Type)
	return res
}

// ReferenceAnswer returns the first comma separated segment of the primary
// answer field, trimmed.
func ReferenceAnswer(q *domain.Question) string {
	parts := SplitAnswers(q.AnswersPrimary)
	if len(parts) == 0 {
		return ""
	}
	return strings.TrimSpace(parts[0])
}

// match expects user and candidates already normalized. The first accepting
// candidate wins.
func (g *Grader) match(user string, candidates []string, qType domain.QuestionType) (bool, string, float64) {
	best := 0.0
	userLen := utf8.RuneCountInString(user)

	for _, cand := range candidates {
		if user == cand {
			return true, cand, 1.0
		}

		sim := ratio(user, cand)
		if sim > best {
			best = sim
		}

		switch qType {
		case domain.QuestionTypeSentence:
			if sim >= g.th.Sentence {
				return true, cand, best
			}
		default:
			if userLen >= g.th.MinSubstringLen && strings.Contains(cand, user) {
				return true, cand, best
			}
			if sim >= g.th.Word {
				return true, cand, best
			}
		}
	}

	return false, "", best
}
