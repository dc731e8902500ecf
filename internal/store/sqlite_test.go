package store

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUpsertUser_CreateThenUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.UpsertUser(ctx, &User{ID: 5000000001, FirstName: "Alice", Username: "alice"})
	require.NoError(t, err)

	user, err := s.GetUser(ctx, 5000000001)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Alice", user.FirstName)
	assert.Nil(t, user.UpdatedAt, "updated_at is only set on mutation")

	err = s.UpsertUser(ctx, &User{ID: 5000000001, FirstName: "Alisa", Username: "alice", IsPremium: true})
	require.NoError(t, err)

	user, err = s.GetUser(ctx, 5000000001)
	require.NoError(t, err)
	assert.Equal(t, "Alisa", user.FirstName)
	assert.True(t, user.IsPremium)
	require.NotNil(t, user.UpdatedAt, "updated_at must be set by the second upsert")
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestStore(t)

	user, err := s.GetUser(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestRandomQuestionsByCategory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.InsertQuestions(ctx, []Question{
		{Category: "Python", Text: "What is the GIL?"},
		{Category: "python", Text: "Чем list отличается от tuple?"},
		{Category: "python", Text: "Как работают декораторы?"},
		{Category: "python", Text: "Что такое itertools?"},
		{Category: "hr", Text: "Расскажите о себе."},
		{Category: "python", Text: ""}, // empty text rows are skipped
	})
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	// Category match is case-insensitive in both directions.
	questions, err := s.RandomQuestionsByCategory(ctx, "PYTHON", 3)
	require.NoError(t, err)
	require.Len(t, questions, 3)
	for _, q := range questions {
		assert.Equal(t, "python", q.Category)
		assert.Equal(t, "all", q.Level)
	}

	// Unknown category yields an empty result, not an error.
	questions, err = s.RandomQuestionsByCategory(ctx, "devops", 3)
	require.NoError(t, err)
	assert.Empty(t, questions)

	count, err := s.CountQuestions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestImportQuestionsDir(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	dir := t.TempDir()

	marketing := []map[string]string{
		{"question": "Что такое CTR?", "answer": "Click-through rate", "level": "junior"},
		{"question": "Как считается CAC?"},
	}
	data, err := json.Marshal(marketing)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marketing.json"), data, 0o644))

	// A category the classifier does not know: imported, but flagged.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "devops.json"), []byte(`[{"question":"Что такое CI?"}]`), 0o644))

	// Non-JSON files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("notes"), 0o644))

	known := func(cat string) bool { return cat == "marketing" }
	total, err := s.ImportQuestionsDir(ctx, dir, known, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	questions, err := s.RandomQuestionsByCategory(ctx, "marketing", 10)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	for _, q := range questions {
		assert.Equal(t, "Custom JSON", q.Source)
	}
}
