// Package importer reads vocabulary decks from CSV, XLSX and YAML files.
//
// Tabular files carry one row per word with the columns expression, reading,
// meaning_th and meaning_en. The optional type and word_bank columns describe
// sentence questions, and rows with jp_sentence and th_sentence filled in also
// yield an example sentence question.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"vocab-quiz/internal/domain"
)

const (
	colExpression = "expression"
	colReading    = "reading"
	colMeaningTH  = "meaning_th"
	colMeaningEN  = "meaning_en"
	colType       = "type"
	colWordBank   = "word_bank"
	colSentenceJP = "jp_sentence"
	colSentenceTH = "th_sentence"
)

var headerAliases = map[string]string{
	"ความหมาย":      colMeaningTH,
	"thai_meaning":  colMeaningTH,
	"th_meaning":    colMeaningTH,
	"meaning":       colMeaningEN,
	"en_meaning":    colMeaningEN,
	"jp_text":       colExpression,
	"jp_reading":    colReading,
	"question_type": colType,
}

var requiredColumns = []string{colExpression, colMeaningTH, colMeaningEN}

// RowError describes a row that could not be turned into a question.
type RowError struct {
	Row     int
	Message string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// Result is a parsed deck plus the rows that were skipped.
type Result struct {
	Deck   *domain.Deck
	Errors []RowError
}

var (
	jlptName  = regexp.MustCompile(`(?i)(?:^|[^a-z])n([1-5])(?:[^0-9]|$)`)
	levelName = regexp.MustCompile(`(?i)level[_-]?(\d+)`)
)

// LevelFromFilename maps deck file names to level numbers: n5 is level 1 and
// n1 is level 5. Names like level_7.csv map to their number.
func LevelFromFilename(path string) (int, bool) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if m := levelName.FindStringSubmatch(base); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			return n, true
		}
	}
	if m := jlptName.FindStringSubmatch(base); m != nil {
		n, _ := strconv.Atoi(m[1])
		return 6 - n, true
	}
	return 0, false
}

// LoadFile parses the deck at path. levelNumber overrides the level derived
// from the file name when positive.
func LoadFile(path string, levelNumber int) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open deck: %w", err)
	}
	defer f.Close()

	var res *Result
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		res, err = ParseCSV(f)
	case ".xlsx":
		res, err = ParseXLSX(f)
	case ".yaml", ".yml":
		res, err = ParseYAML(f)
	default:
		return nil, fmt.Errorf("unsupported deck format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	res.Deck.Source = path
	switch {
	case levelNumber > 0:
		res.Deck.LevelNumber = levelNumber
	case res.Deck.LevelNumber > 0:
	default:
		n, ok := LevelFromFilename(path)
		if !ok {
			return nil, fmt.Errorf("cannot derive level from %s, pass it explicitly", filepath.Base(path))
		}
		res.Deck.LevelNumber = n
	}
	if res.Deck.Title == "" {
		res.Deck.Title = domain.DeckTitle(res.Deck.LevelNumber)
	}
	return res, nil
}

// IsDeckFile reports whether path has a supported extension.
func IsDeckFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx", ".yaml", ".yml":
		return true
	}
	return false
}

// header maps canonical column names to their index.
type header map[string]int

func parseHeader(cells []string) (header, error) {
	h := make(header, len(cells))
	for i, c := range cells {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(c, "\ufeff")))
		if canon, ok := headerAliases[name]; ok {
			name = canon
		}
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := h[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}
	return h, nil
}

func (h header) get(record []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// rowsToResult turns tabular records (header first) into a deck.
func rowsToResult(records [][]string) (*Result, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("deck is empty")
	}
	h, err := parseHeader(records[0])
	if err != nil {
		return nil, err
	}

	res := &Result{Deck: &domain.Deck{}}
	for i, record := range records[1:] {
		rowNum := i + 2
		if blank(record) {
			continue
		}
		qs, err := h.questions(record)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Row: rowNum, Message: err.Error()})
			continue
		}
		res.Deck.Questions = append(res.Deck.Questions, qs...)
	}
	return res, nil
}

func (h header) questions(record []string) ([]*domain.Question, error) {
	entry := Entry{
		Expression: h.get(record, colExpression),
		Reading:    h.get(record, colReading),
		MeaningTH:  h.get(record, colMeaningTH),
		MeaningEN:  h.get(record, colMeaningEN),
		Type:       h.get(record, colType),
		WordBank:   splitWordBank(h.get(record, colWordBank)),
		SentenceJP: h.get(record, colSentenceJP),
		SentenceTH: h.get(record, colSentenceTH),
	}
	return entry.Questions()
}

// Entry is one deck row.
type Entry struct {
	Expression string   `yaml:"expression"`
	Reading    string   `yaml:"reading"`
	MeaningTH  string   `yaml:"meaning_th"`
	MeaningEN  string   `yaml:"meaning_en"`
	Type       string   `yaml:"type"`
	WordBank   []string `yaml:"word_bank"`
	SentenceJP string   `yaml:"jp_sentence"`
	SentenceTH string   `yaml:"th_sentence"`
}

// Questions builds the entry's question and, when the example sentence
// columns are filled, a sentence question for it.
func (e Entry) Questions() ([]*domain.Question, error) {
	if strings.TrimSpace(e.Expression) == "" {
		return nil, fmt.Errorf("expression is empty")
	}
	if strings.TrimSpace(e.MeaningTH) == "" && strings.TrimSpace(e.MeaningEN) == "" {
		return nil, fmt.Errorf("no meaning for %q", e.Expression)
	}

	qType := domain.QuestionTypeWord
	if e.Type != "" {
		t, err := domain.ParseQuestionType(strings.ToLower(e.Type))
		if err != nil {
			return nil, err
		}
		qType = t
	} else if len(e.WordBank) > 0 {
		qType = domain.QuestionTypeSentence
	}

	q := domain.NewQuestion(qType, e.Expression, e.Reading, e.MeaningTH, e.MeaningEN)
	q.WordBank = e.WordBank
	out := []*domain.Question{q}

	if jp, th := strings.TrimSpace(e.SentenceJP), strings.TrimSpace(e.SentenceTH); jp != "" && th != "" {
		out = append(out, domain.NewQuestion(domain.QuestionTypeSentence, jp, "", th, ""))
	}
	return out, nil
}

// splitWordBank accepts "a|b|c" or whitespace separated tokens.
func splitWordBank(s string) []string {
	if s == "" {
		return nil
	}
	var parts []string
	if strings.Contains(s, "|") {
		parts = strings.Split(s, "|")
	} else {
		parts = strings.Fields(s)
	}
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func blank(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
