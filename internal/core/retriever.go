package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/F0nkell/AI-careerist/internal/store"
)

// HintQuestionCount is how many stored questions are injected as hints.
const HintQuestionCount = 3

// QuestionSampler is the slice of the store the retriever needs.
type QuestionSampler interface {
	RandomQuestionsByCategory(ctx context.Context, category string, n int) ([]store.Question, error)
}

// Retriever fetches a small random sample of stored questions for a category
// and formats them as a hint block for the model.
type Retriever struct {
	sampler QuestionSampler
	logger  *slog.Logger
}

func NewRetriever(sampler QuestionSampler, logger *slog.Logger) *Retriever {
	return &Retriever{sampler: sampler, logger: logger}
}

// Context returns the hint block for a category, or an empty string when the
// store has no questions for it. An empty result is not an error.
func (r *Retriever) Context(ctx context.Context, category string) (string, error) {
	questions, err := r.sampler.RandomQuestionsByCategory(ctx, category, HintQuestionCount)
	if err != nil {
		return "", fmt.Errorf("failed to sample questions for %q: %w", category, err)
	}
	if len(questions) == 0 {
		r.logger.Debug("no stored questions for category", "category", category)
		return "", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Вот примеры реальных вопросов по теме «%s», опирайся на них:\n", category)
	for i, q := range questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q.Text)
	}
	b.WriteString("Отвечай только на русском языке. Если вопрос из примеров на другом языке, переведи его.")
	return b.String(), nil
}
