package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS questions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        category TEXT NOT NULL,
        level TEXT NOT NULL DEFAULT 'all',
        text TEXT NOT NULL,
        expected_answer TEXT,
        source TEXT
    );
    CREATE INDEX IF NOT EXISTS idx_questions_category ON questions (category);

    CREATE TABLE IF NOT EXISTS users (
        id INTEGER PRIMARY KEY, -- Telegram id, 64-bit
        username TEXT,
        first_name TEXT NOT NULL,
        last_name TEXT,
        is_premium BOOLEAN NOT NULL DEFAULT FALSE,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// Question methods

// RandomQuestionsByCategory returns up to n questions sampled uniformly from
// the category. Category matching is case-insensitive; an unknown category
// yields an empty slice, not an error.
func (s *SQLiteStore) RandomQuestionsByCategory(ctx context.Context, category string, n int) ([]Question, error) {
	query := `
        SELECT id, category, level, text, COALESCE(expected_answer, ''), COALESCE(source, '')
        FROM questions
        WHERE category = ? COLLATE NOCASE
        ORDER BY RANDOM()
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, query, strings.ToLower(category), n)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	var questions []Question
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.Category, &q.Level, &q.Text, &q.ExpectedAnswer, &q.Source); err != nil {
			return nil, fmt.Errorf("failed to scan question row: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *SQLiteStore) InsertQuestions(ctx context.Context, questions []Question) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO questions (category, level, text, expected_answer, source) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare question insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for _, q := range questions {
		if q.Text == "" {
			continue
		}
		level := q.Level
		if level == "" {
			level = "all"
		}
		if _, err := stmt.ExecContext(ctx, strings.ToLower(q.Category), level, q.Text, q.ExpectedAnswer, q.Source); err != nil {
			return count, fmt.Errorf("failed to insert question: %w", err)
		}
		count++
	}
	if err := tx.Commit(); err != nil {
		return count, fmt.Errorf("failed to commit question inserts: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) CountQuestions(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM questions").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}

// User methods

// UpsertUser inserts a user on first contact and refreshes the profile fields
// (and updated_at) on every subsequent call.
func (s *SQLiteStore) UpsertUser(ctx context.Context, user *User) error {
	query := `
        INSERT INTO users (id, username, first_name, last_name, is_premium, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT (id) DO UPDATE SET
            username = excluded.username,
            first_name = excluded.first_name,
            last_name = excluded.last_name,
            is_premium = excluded.is_premium,
            updated_at = ?
    `
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, query, user.ID, user.Username, user.FirstName, user.LastName, user.IsPremium, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert user %d: %w", user.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (*User, error) {
	var user User
	var username, lastName sql.NullString
	var updatedAt sql.NullTime
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, first_name, last_name, is_premium, created_at, updated_at FROM users WHERE id = ?", id,
	).Scan(&user.ID, &username, &user.FirstName, &lastName, &user.IsPremium, &user.CreatedAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	user.Username = username.String
	user.LastName = lastName.String
	if updatedAt.Valid {
		user.UpdatedAt = &updatedAt.Time
	}
	return &user, nil
}
