package store

import "time"

// Question is an interview question row. Imported in bulk by the -import
// command and read-only at serve time.
type Question struct {
	ID             int64  `json:"id"`
	Category       string `json:"category"` // python, hr, marketing, ...
	Level          string `json:"level"`    // junior, middle, "all"
	Text           string `json:"text"`
	ExpectedAnswer string `json:"expected_answer,omitempty"`
	Source         string `json:"source,omitempty"`
}

// User is a Telegram user. The primary key is the Telegram id, which can
// exceed 32 bits.
type User struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username,omitempty"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name,omitempty"`
	IsPremium bool       `json:"is_premium"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
