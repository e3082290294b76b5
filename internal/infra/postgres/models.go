package postgres

import (
	"time"

	"github.com/uptrace/bun"
)

type setRow struct {
	bun.BaseModel `bun:"table:sets"`

	ID          int64     `bun:"set_id,pk,autoincrement"`
	Name        string    `bun:"set_name,notnull"`
	DateCreated time.Time `bun:"date_created"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID     int64  `bun:"question_id,pk,autoincrement"`
	SetID  int64  `bun:"set_id"`
	Prompt string `bun:"question_text"`
	Answer string `bun:"answer"`
}

type resultRow struct {
	bun.BaseModel `bun:"table:results"`

	ID        int64     `bun:"result_id,pk,autoincrement"`
	UserName  string    `bun:"user_name"`
	SetID     int64     `bun:"set_id"`
	Score     int       `bun:"score"`
	Total     int       `bun:"total"`
	DateTaken time.Time `bun:"date_taken"`
}

type userRow struct {
	bun.BaseModel `bun:"table:users"`

	ID   int64  `bun:"user_id,pk,autoincrement"`
	Name string `bun:"user_name,notnull"`
	PIN  string `bun:"pin"`
}

// resultJoinRow is the read shape for history queries, joined with the set
// name when the set still exists.
type resultJoinRow struct {
	ResultID  int64     `bun:"result_id"`
	UserName  string    `bun:"user_name"`
	SetID     int64     `bun:"set_id"`
	SetName   string    `bun:"set_name"`
	Score     int       `bun:"score"`
	Total     int       `bun:"total"`
	DateTaken time.Time `bun:"date_taken"`
}
