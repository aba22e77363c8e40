package generator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/quizler/internal/question"
)

const fallbackJSON = `{
	"Science": {
		"easy": [
			{"question": "What is H2O?", "options": ["Water", "Salt", "Sugar", "Air"], "correct_answer": "Water"},
			{"question": "What gas do plants absorb?", "options": ["Oxygen", "Carbon dioxide", "Helium", "Neon"], "correct_answer": 1}
		]
	},
	"History": {
		"hard": [
			{"question": "Who was Hammurabi?", "options": ["A king", "A poet", "A river", "A god"], "correct_answer": 0}
		]
	}
}`

func TestStaticSource_Fetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fallback_questions.json")
	require.NoError(t, os.WriteFile(path, []byte(fallbackJSON), 0644))

	tests := []struct {
		name         string
		request      Request
		pick         int
		wantQuestion string
		wantAnswer   string
		wantNoEntry  bool
	}{
		{
			name:         "picks a record of the category",
			request:      Request{Category: "science", Difficulty: question.DifficultyEasy},
			pick:         1,
			wantQuestion: "What gas do plants absorb?",
			wantAnswer:   "Carbon dioxide",
		},
		{
			name: "skips excluded prompts",
			request: func() Request {
				r := Request{Category: "Science", Difficulty: question.DifficultyEasy}
				WithExclude("what gas do plants absorb?")(&r)
				return r
			}(),
			wantQuestion: "What is H2O?",
			wantAnswer:   "Water",
		},
		{
			name:        "no record for the difficulty",
			request:     Request{Category: "Science", Difficulty: question.DifficultyHard},
			wantNoEntry: true,
		},
		{
			name:        "other categories are not substituted",
			request:     Request{Category: "Music", Difficulty: question.DifficultyHard},
			wantNoEntry: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := NewStaticSource(path)
			source.intN = func(n int) int {
				require.Less(t, tt.pick, n)
				return tt.pick
			}

			got, err := source.Fetch(context.Background(), tt.request)
			if tt.wantNoEntry {
				assert.ErrorIs(t, err, ErrNoEntry)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantQuestion, got.Question)
			assert.Equal(t, tt.wantAnswer, got.CorrectOption())
		})
	}
}

func TestStaticSource_MissingFile(t *testing.T) {
	source := NewStaticSource(filepath.Join(t.TempDir(), "missing.json"))
	_, err := source.Fetch(context.Background(), Request{Category: "Science", Difficulty: question.DifficultyEasy})
	assert.ErrorContains(t, err, "os.ReadFile")
}
