package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/quizler/internal/question"
)

func TestFileRepository_AppendAndList(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	entries := []Entry{
		{Timestamp: base, User: "alice", Category: "Science", Difficulty: question.DifficultyEasy, Score: 3, Correct: 3, QuestionCount: 5},
		{Timestamp: base.Add(time.Hour), User: "bob", Category: "History", Difficulty: question.DifficultyHard, Score: 1, Correct: 1, QuestionCount: 5},
		{Timestamp: base.Add(48 * time.Hour), User: "alice", Category: "History", Difficulty: question.DifficultyMedium, Score: 4, Correct: 4, QuestionCount: 4},
	}

	tests := []struct {
		name       string
		filter     Filter
		wantScores []int
	}{
		{
			name:       "no filter returns everything in order",
			wantScores: []int{3, 1, 4},
		},
		{
			name:       "filter by user",
			filter:     Filter{User: "alice"},
			wantScores: []int{3, 4},
		},
		{
			name:       "filter by category ignores case",
			filter:     Filter{Category: "history"},
			wantScores: []int{1, 4},
		},
		{
			name:       "filter by time",
			filter:     Filter{Since: base.Add(24 * time.Hour)},
			wantScores: []int{4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFileRepository(filepath.Join(t.TempDir(), "data", "history.json"))
			ctx := context.Background()
			for _, e := range entries {
				require.NoError(t, repo.Append(ctx, e))
			}

			got, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			scores := make([]int, 0, len(got))
			for _, e := range got {
				scores = append(scores, e.Score)
			}
			assert.Equal(t, tt.wantScores, scores)
		})
	}
}

func TestFileRepository_CountMatchesAppends(t *testing.T) {
	repo := NewFileRepository(filepath.Join(t.TempDir(), "history.json"))
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		require.NoError(t, repo.Append(ctx, Entry{Timestamp: time.Now(), Category: "Music", Difficulty: question.DifficultyEasy}))
	}
	got, err := repo.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, got, 7)
	assert.Equal(t, int64(7), got[6].ID)
}

func TestFileRepository_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	repo := NewFileRepository(path)

	_, err := repo.List(context.Background(), Filter{})
	assert.ErrorContains(t, err, "json.Unmarshal")

	err = repo.Append(context.Background(), Entry{})
	assert.Error(t, err)
}

func TestEntry_Accuracy(t *testing.T) {
	assert.Equal(t, 0.0, Entry{}.Accuracy())
	assert.Equal(t, 75.0, Entry{Correct: 3, QuestionCount: 4}.Accuracy())
}
