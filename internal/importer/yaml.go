package importer

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"vocab-quiz/internal/domain"
)

// yamlDeck is the YAML deck document. A bare list of entries is accepted too.
type yamlDeck struct {
	Level        int     `yaml:"level"`
	Title        string  `yaml:"title"`
	PassingScore int     `yaml:"passing_score"`
	Questions    []Entry `yaml:"questions"`
}

// ParseYAML reads a YAML deck.
func ParseYAML(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read yaml: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, fmt.Errorf("deck is empty")
	}

	var doc yamlDeck
	if node.Content[0].Kind == yaml.SequenceNode {
		if err := node.Content[0].Decode(&doc.Questions); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}

	res := &Result{Deck: &domain.Deck{
		LevelNumber:  doc.Level,
		Title:        doc.Title,
		PassingScore: doc.PassingScore,
	}}
	for i, e := range doc.Questions {
		qs, err := e.Questions()
		if err != nil {
			res.Errors = append(res.Errors, RowError{Row: i + 1, Message: err.Error()})
			continue
		}
		res.Deck.Questions = append(res.Deck.Questions, qs...)
	}
	return res, nil
}
