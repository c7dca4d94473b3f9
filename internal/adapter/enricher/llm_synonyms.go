package enricher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"

	"vocab-quiz/internal/config"
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/logger"
)

const promptTemplate = `You add Thai synonyms for a language-learning dataset.

Generate EXACTLY %d NEW Thai synonyms for the Japanese word below.
- NEW synonyms must NOT repeat anything already in "existing"
- Each synonym should be short (word or short phrase)
- Thai only

Word: %s (%s)
English: %s
Existing: %s

Respond with ONLY a JSON object: {"synonyms": ["...", "..."]}`

// llmSuggester implements domain.SynonymSuggester with a langchaingo model.
type llmSuggester struct {
	model   llms.Model
	timeout time.Duration
}

// NewLLMSuggester wraps any langchaingo model.
func NewLLMSuggester(model llms.Model, timeout time.Duration) domain.SynonymSuggester {
	return &llmSuggester{model: model, timeout: timeout}
}

// NewOllamaSuggester connects to the configured Ollama server.
func NewOllamaSuggester(cfg config.LLMConfig) (domain.SynonymSuggester, error) {
	llm, err := ollama.New(ollama.WithServerURL(cfg.ServerURL), ollama.WithModel(cfg.Model))
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}
	return NewLLMSuggester(llm, cfg.Timeout), nil
}

func (s *llmSuggester) SuggestSynonyms(ctx context.Context, q *domain.Question, want int) ([]string, error) {
	if want <= 0 {
		return nil, nil
	}
	prompt := fmt.Sprintf(promptTemplate, want, q.Prompt, q.Reading, q.AnswersSecondary, q.AnswersPrimary)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	raw, err := llms.GenerateFromSinglePrompt(ctx, s.model, prompt, llms.WithTemperature(0.1))
	if err != nil {
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}
	logger.Get().Debug("Raw LLM response received",
		zap.String("question_id", q.ID),
		zap.String("raw_response", raw))

	synonyms, err := ParseSynonyms(raw)
	if err != nil {
		return nil, err
	}
	if len(synonyms) > want {
		synonyms = synonyms[:want]
	}
	return synonyms, nil
}

// ParseSynonyms extracts {"synonyms": [...]} from a model reply. Markdown
// fences and <think> blocks around the object are ignored, and a plain
// comma separated string value is accepted as well.
func ParseSynonyms(raw string) ([]string, error) {
	cleaned := stripThink(strings.TrimSpace(raw))

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object found in LLM response: %q", cleaned)
	}

	var resp struct {
		Synonyms json.RawMessage `json:"synonyms"`
	}
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON from LLM: %w", err)
	}
	if len(resp.Synonyms) == 0 {
		return nil, fmt.Errorf("LLM response has no synonyms field")
	}

	var list []string
	if err := json.Unmarshal(resp.Synonyms, &list); err != nil {
		var joined string
		if err := json.Unmarshal(resp.Synonyms, &joined); err != nil {
			return nil, fmt.Errorf("synonyms must be a list or a string: %w", err)
		}
		list = strings.Split(joined, ",")
	}

	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func stripThink(s string) string {
	for {
		start := strings.Index(s, "<think>")
		if start == -1 {
			return s
		}
		end := strings.Index(s, "</think>")
		if end == -1 || end < start {
			return strings.TrimSpace(s[:start])
		}
		s = strings.TrimSpace(s[:start] + s[end+len("</think>"):])
	}
}
