package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringSlice stores a string list as a JSON array in a text column.
type StringSlice []string

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface. NULL, empty and "null" all
// scan to an empty slice.
func (s *StringSlice) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*s = StringSlice{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("StringSlice Scan: unsupported type %T", value)
	}

	if len(raw) == 0 || string(raw) == "null" {
		*s = StringSlice{}
		return nil
	}
	return json.Unmarshal(raw, s)
}

// Level is a row of the levels table.
type Level struct {
	ID           string    `db:"ID"`
	LevelNumber  int       `db:"LEVEL_NUMBER"`
	Title        string    `db:"TITLE"`
	PassingScore int       `db:"PASSING_SCORE"`
	CreatedAt    time.Time `db:"CREATED_AT"`
	UpdatedAt    time.Time `db:"UPDATED_AT"`
}

// Question is a row of the questions table.
type Question struct {
	ID               string         `db:"ID"`
	LevelID          string         `db:"LEVEL_ID"`
	QuestionType     string         `db:"QUESTION_TYPE"`
	Prompt           string         `db:"PROMPT"`
	Reading          sql.NullString `db:"READING"`
	AnswersPrimary   sql.NullString `db:"ANSWERS_PRIMARY"`
	AnswersSecondary sql.NullString `db:"ANSWERS_SECONDARY"`
	WordBank         StringSlice    `db:"WORD_BANK"`
	Position         int            `db:"POSITION"`
	CreatedAt        time.Time      `db:"CREATED_AT"`
}

// UserProgress is a row of user_progress joined with its level number.
type UserProgress struct {
	ID           string    `db:"ID"`
	UserID       string    `db:"USER_ID"`
	LevelID      string    `db:"LEVEL_ID"`
	LevelNumber  int       `db:"LEVEL_NUMBER"`
	IsPassed     int       `db:"IS_PASSED"` // NUMBER(1)
	HighestScore int       `db:"HIGHEST_SCORE"`
	UpdatedAt    time.Time `db:"UPDATED_AT"`
}

// User represents a user in the system.
type User struct {
	ID                string         `db:"ID"`                  // ULID
	GoogleID          string         `db:"GOOGLE_ID"`           // Google's unique identifier for the user
	Email             string         `db:"EMAIL"`               // User's email address
	Name              sql.NullString `db:"NAME"`                // User's full name
	ProfilePictureURL sql.NullString `db:"PROFILE_PICTURE_URL"` // URL of the user's profile picture
	CreatedAt         time.Time      `db:"CREATED_AT"`
	UpdatedAt         time.Time      `db:"UPDATED_AT"`
}
