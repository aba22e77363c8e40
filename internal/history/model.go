// Package history records quiz outcomes and the questions a user has already seen.
package history

import (
	"context"
	"time"

	"github.com/at-ishikawa/quizler/internal/question"
)

// Entry is the outcome of one quiz session. Entries are append-only.
type Entry struct {
	ID            int64               `db:"id" json:"-"`
	Timestamp     time.Time           `db:"played_at" json:"timestamp"`
	User          string              `db:"user_name" json:"user,omitempty"`
	Category      string              `db:"category" json:"category"`
	Difficulty    question.Difficulty `db:"difficulty" json:"difficulty"`
	Score         int                 `db:"score" json:"score"`
	Correct       int                 `db:"correct" json:"correct"`
	QuestionCount int                 `db:"question_count" json:"question_count"`
	Abandoned     bool                `db:"abandoned" json:"abandoned,omitempty"`
	CreatedAt     time.Time           `db:"created_at" json:"-"`
}

// Accuracy is the share of correct answers in percent.
func (e Entry) Accuracy() float64 {
	if e.QuestionCount == 0 {
		return 0
	}
	return float64(e.Correct) / float64(e.QuestionCount) * 100
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	User     string
	Category string
	Since    time.Time
}

func (f Filter) match(e Entry) bool {
	if f.User != "" && e.User != f.User {
		return false
	}
	if f.Category != "" && question.Slug(e.Category) != question.Slug(f.Category) {
		return false
	}
	if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
		return false
	}
	return true
}

//go:generate mockgen -source=model.go -destination=../mocks/history/mock_repository.go -package=mock_history

// Repository stores history entries.
type Repository interface {
	Append(ctx context.Context, entry Entry) error
	List(ctx context.Context, filter Filter) ([]Entry, error)
}
