package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/quizler/internal/question"
)

func testRecords() map[question.Difficulty][]question.Record {
	return map[question.Difficulty][]question.Record{
		question.DifficultyEasy: {
			{
				Question:   "What is H2O?",
				Options:    []string{"Salt", "Water", "Gold", "Air"},
				Answer:     1,
				Category:   "Science",
				Difficulty: question.DifficultyEasy,
				Source:     question.SourceHuman,
			},
		},
		question.DifficultyHard: {
			{
				Question:   "What is the atomic number of Iron?",
				Options:    []string{"24", "25", "26", "27"},
				Answer:     2,
				Category:   "Science",
				Difficulty: question.DifficultyHard,
			},
		},
	}
}

func TestNewQuestionSheet(t *testing.T) {
	sheet := NewQuestionSheet("Science", testRecords(), true)

	require.Len(t, sheet.Sections, 2)
	assert.Equal(t, question.DifficultyEasy, sheet.Sections[0].Difficulty)
	assert.Equal(t, question.DifficultyHard, sheet.Sections[1].Difficulty)

	hard := sheet.Sections[1].Questions[0]
	assert.Equal(t, 2, hard.Number)
	assert.Equal(t, "C", hard.AnswerLabel)
	assert.Equal(t, "26", hard.Answer)
	assert.Equal(t, SheetOption{Label: "D", Text: "27"}, hard.Options[3])
}

func TestWriteQuestionSheet(t *testing.T) {
	tests := []struct {
		name         string
		templatePath string
		showAnswers  bool

		wantContains    []string
		wantNotContains []string
	}{
		{
			name:        "embedded template with answers",
			showAnswers: true,
			wantContains: []string{
				"# Science",
				"## Easy (1)",
				"### 1. What is H2O?",
				"- B) Water",
				"**Answer:** B) Water _(human)_",
				"## Hard (1)",
				"**Answer:** C) 26",
			},
		},
		{
			name:            "embedded template without answers",
			wantContains:    []string{"### 2. What is the atomic number of Iron?", "- A) 24"},
			wantNotContains: []string{"**Answer:**", "## Medium"},
		},
		{
			name: "filesystem template",
			templatePath: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "custom.md.go.tmpl")
				content := `{{ .Category }}:{{ range .Sections }} {{ title .Difficulty }}={{ len .Questions }}{{ end }}`
				require.NoError(t, os.WriteFile(path, []byte(content), 0644))
				return path
			}(t),
			wantContains: []string{"Science: Easy=1 Hard=1"},
		},
		{
			name:         "falls back when the template does not exist",
			templatePath: "/non/existent/sheet.md.go.tmpl",
			wantContains: []string{"# Science", "### 1. What is H2O?"},
		},
		{
			name: "falls back when the template is broken",
			templatePath: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "broken.md.go.tmpl")
				require.NoError(t, os.WriteFile(path, []byte(`{{ .Category `), 0644))
				return path
			}(t),
			wantContains: []string{"# Science"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := WriteQuestionSheet(&buf, tt.templatePath, NewQuestionSheet("Science", testRecords(), tt.showAnswers))
			require.NoError(t, err)

			got := buf.String()
			for _, want := range tt.wantContains {
				assert.Contains(t, got, want)
			}
			for _, unwanted := range tt.wantNotContains {
				assert.NotContains(t, got, unwanted)
			}
		})
	}
}

func TestRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderMarkdown(&buf, "", "Science", testRecords(), false))
	assert.Contains(t, buf.String(), "# Science")
	assert.NotContains(t, buf.String(), "**Answer:**")
}
