// Package testutil provides shared test helpers for creating config files and question fixtures.
package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/quizler/internal/question"
)

// SetupTestConfig creates a minimal config file and all required directories for testing.
// The remote trivia API and the model are disabled. Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	dirs := []string{"data", "backups", "users"}
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, d), 0755))
	}

	configContent := fmt.Sprintf(`storage:
  data_directory: %s
  backup_directory: %s
  max_backups: 2
fallback:
  file: %s
history:
  backend: file
  file: %s
  seen_directory: %s
generator:
  use_model: false
  use_trivia: false
quiz:
  per_question: 30s
`,
		filepath.Join(tmpDir, "data"),
		filepath.Join(tmpDir, "backups"),
		filepath.Join(tmpDir, "fallback_questions.json"),
		filepath.Join(tmpDir, "quiz_history.json"),
		filepath.Join(tmpDir, "users"),
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// Records returns n valid records of the category and difficulty.
// The i-th record has the prompt "<category> <difficulty> question <i>?" and answer index i%4.
func Records(category string, difficulty question.Difficulty, n int) []question.Record {
	records := make([]question.Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, question.Record{
			Question:   fmt.Sprintf("%s %s question %d?", category, difficulty, i),
			Options:    []string{"A", "B", "C", "D"},
			Answer:     i % 4,
			Category:   category,
			Difficulty: difficulty,
			Source:     question.SourceHuman,
		})
	}
	return records
}

// WriteFallbackFile writes a fallback question file in the {category: {difficulty: [records]}} layout.
func WriteFallbackFile(t *testing.T, path string, records map[string]map[question.Difficulty][]question.Record) {
	t.Helper()

	contents, err := json.MarshalIndent(records, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, contents, 0644))
}
