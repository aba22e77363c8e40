package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// Append inserts a new history entry.
func (r *DBRepository) Append(ctx context.Context, entry Entry) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO quiz_history (played_at, user_name, category, difficulty, score, correct, question_count, abandoned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Timestamp, entry.User, entry.Category, entry.Difficulty,
		entry.Score, entry.Correct, entry.QuestionCount, entry.Abandoned); err != nil {
		return fmt.Errorf("db.ExecContext(insert quiz_history) > %w", err)
	}
	return nil
}

// List returns entries matching the filter ordered by play time.
func (r *DBRepository) List(ctx context.Context, filter Filter) ([]Entry, error) {
	var conditions []string
	var args []any
	if filter.User != "" {
		conditions = append(conditions, "user_name = ?")
		args = append(args, filter.User)
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, "played_at >= ?")
		args = append(args, filter.Since)
	}

	query := "SELECT * FROM quiz_history"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY played_at, id"

	var entries []Entry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext(quiz_history) > %w", err)
	}
	return entries, nil
}
