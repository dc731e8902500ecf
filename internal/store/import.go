package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// importedQuestion is the shape of one entry in a dataset file.
type importedQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Level    string `json:"level"`
}

// ImportQuestionsDir reads every *.json file in dir and bulk-inserts its
// questions. The file name is the category: marketing.json -> marketing.
// knownCategory reports whether a category is one the classifier can produce;
// unknown categories are imported but flagged, since questions filed under
// them are unreachable at serve time.
func (s *SQLiteStore) ImportQuestionsDir(ctx context.Context, dir string, knownCategory func(string) bool, logger *slog.Logger) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read dataset directory %s: %w", dir, err)
	}

	total := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		category := strings.ToLower(strings.TrimSuffix(entry.Name(), ".json"))
		if knownCategory != nil && !knownCategory(category) {
			logger.Warn("dataset category is outside the classifier vocabulary, its questions will never be retrieved",
				"category", category, "file", entry.Name())
		}

		path := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			logger.Error("failed to read dataset file, skipping", "file", path, "error", err)
			continue
		}

		var items []importedQuestion
		if err := json.Unmarshal(content, &items); err != nil {
			logger.Error("failed to parse dataset file, skipping", "file", path, "error", err)
			continue
		}

		questions := make([]Question, 0, len(items))
		for _, item := range items {
			if item.Question == "" {
				continue
			}
			questions = append(questions, Question{
				Category:       category,
				Level:          item.Level,
				Text:           item.Question,
				ExpectedAnswer: item.Answer,
				Source:         "Custom JSON",
			})
		}

		count, err := s.InsertQuestions(ctx, questions)
		if err != nil {
			return total + count, fmt.Errorf("failed to import %s: %w", path, err)
		}
		logger.Info("imported questions", "category", category, "count", count)
		total += count
	}

	return total, nil
}
