package question

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ImportYAML(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCount int
		wantErr   bool
	}{
		{
			name: "records inherit category and difficulty",
			input: `category: Science
questions:
  easy:
    - question: What planet is known as the Red Planet?
      options: [Venus, Mars, Jupiter, Saturn]
      correct_answer: 1
  hard:
    - question: What is the half-life of Carbon-14?
      options: [5730 years, 1000 years, 10000 years, 50 years]
      correct_answer: 0
`,
			wantCount: 2,
		},
		{
			name: "multiple documents",
			input: `category: Music
questions:
  easy:
    - question: How many strings does a standard guitar have?
      options: ["4", "6", "8", "12"]
      correct_answer: 1
---
category: Sports
questions:
  medium:
    - question: How many players are on a soccer team on the field?
      options: ["9", "10", "11", "12"]
      correct_answer: 2
`,
			wantCount: 2,
		},
		{
			name: "invalid record is rejected",
			input: `category: Science
questions:
  easy:
    - question: Broken
      options: [only]
      correct_answer: 0
`,
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			input:   "category: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newTestStore(t)

			got, err := store.ImportYAML(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.wantCount)
			for _, record := range got {
				assert.NotEmpty(t, record.ID)
				assert.NotEmpty(t, record.Category)
				assert.True(t, record.Difficulty.Valid())
			}
		})
	}
}

func TestStore_ExportYAMLRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Add(testRecord("Literature", DifficultyMedium, "Who wrote Hamlet?"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, store.ExportYAML(&buf, "Literature"))
	assert.Contains(t, buf.String(), "category: Literature")
	assert.Contains(t, buf.String(), "Who wrote Hamlet?")

	other, _ := newTestStore(t)
	imported, err := other.ImportYAML(&buf)
	require.NoError(t, err)
	require.Len(t, imported, 1)
	assert.Equal(t, DifficultyMedium, imported[0].Difficulty)
}
