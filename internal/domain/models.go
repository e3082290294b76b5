package domain

import (
	"fmt"
	"strings"
	"time"
)

// Set is a named collection of quiz questions.
type Set struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	DateCreated time.Time `json:"dateCreated"`
}

// Question belongs to exactly one set. Answer is the exact-match expected text.
type Question struct {
	ID     int64  `json:"id"`
	SetID  int64  `json:"setId"`
	Prompt string `json:"prompt"`
	Answer string `json:"answer,omitempty"`
}

// QuestionDraft is the input shape for creating questions in bulk.
type QuestionDraft struct {
	Prompt string `json:"prompt"`
	Answer string `json:"answer"`
}

// User is a registered quiz taker with a PIN credential.
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	PIN  string `json:"pin,omitempty"`
}

// Result is the immutable outcome of one finished session. Total is the
// question count at the moment the session started, not a live join.
type Result struct {
	ID        int64     `json:"id"`
	TakerName string    `json:"takerName"`
	SetID     int64     `json:"setId"`
	SetName   string    `json:"setName"`
	Score     int       `json:"score"`
	Total     int       `json:"total"`
	DateTaken time.Time `json:"dateTaken"`
}

// DeletedSetLabel is rendered for results whose set no longer exists.
const DeletedSetLabel = "(deleted set)"

// SessionState tracks the linear quiz walk.
type SessionState string

const (
	StateInProgress SessionState = "in_progress"
	StateFinished   SessionState = "finished"
)

// Session is one taker's walk through a set's questions. The question
// snapshot is taken at start time and never re-read, so edits to the set
// mid-session do not change the total.
type Session struct {
	Token     string       `json:"token"`
	TakerName string       `json:"takerName"`
	SetID     int64        `json:"setId"`
	SetName   string       `json:"setName"`
	Questions []Question   `json:"questions"`
	Index     int          `json:"index"`
	Score     int          `json:"score"`
	State     SessionState `json:"state"`
	Recorded  bool         `json:"recorded"`
	StartedAt time.Time    `json:"startedAt"`
}

// Summary is what finish() hands back to the caller.
type Summary struct {
	Token     string `json:"token"`
	TakerName string `json:"takerName"`
	SetName   string `json:"setName"`
	Score     int    `json:"score"`
	Total     int    `json:"total"`
}

// AnswerOutcome reports the grading of a single submitted answer.
type AnswerOutcome struct {
	Correct   bool `json:"correct"`
	Score     int  `json:"score"`
	Index     int  `json:"index"`
	Remaining int  `json:"remaining"`
}

// Average is the per-set mean of score/total across results, as a percentage.
// HasResults is false when the set has no results at all.
type Average struct {
	Percent    float64 `json:"percent"`
	HasResults bool    `json:"hasResults"`
}

// String renders the two-decimal percentage, or the no-results sentinel.
func (a Average) String() string {
	if !a.HasResults {
		return "no results"
	}
	return fmt.Sprintf("%.2f%%", a.Percent)
}

// Overview is the admin dashboard snapshot.
type Overview struct {
	SetCount    int          `json:"setCount"`
	TakerCount  int          `json:"takerCount"`
	SetAverages []SetAverage `json:"setAverages"`
}

// SetAverage pairs a set with its historical average.
type SetAverage struct {
	SetID   int64   `json:"setId"`
	SetName string  `json:"setName"`
	Average Average `json:"average"`
}

// Grade applies the grading rule: trim both sides, compare case-insensitively.
func Grade(submitted, expected string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(expected))
}
