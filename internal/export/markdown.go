// Package export renders the questions of a category as Markdown and PDF sheets.
package export

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/at-ishikawa/quizler/internal/question"
)

const embeddedTemplateName = "question-sheet.md.go.tmpl"

//go:embed templates/question-sheet.md.go.tmpl
var fallbackQuestionSheetTemplate string

// QuestionSheet is the top-level data structure for question sheet templates
type QuestionSheet struct {
	Category    string
	ShowAnswers bool
	Sections    []Section
}

type Section struct {
	Difficulty question.Difficulty
	Questions  []SheetQuestion
}

type SheetQuestion struct {
	Number      int
	Question    string
	Options     []SheetOption
	Answer      string
	AnswerLabel string
	Source      question.Source
}

type SheetOption struct {
	Label string
	Text  string
}

func optionLabel(i int) string {
	return string(rune('A' + i))
}

// NewQuestionSheet groups records by difficulty in presentation order. Empty difficulties are left out.
func NewQuestionSheet(category string, records map[question.Difficulty][]question.Record, showAnswers bool) QuestionSheet {
	sheet := QuestionSheet{
		Category:    category,
		ShowAnswers: showAnswers,
	}
	number := 0
	for _, difficulty := range question.AllDifficulties {
		bucket := records[difficulty]
		if len(bucket) == 0 {
			continue
		}
		section := Section{Difficulty: difficulty}
		for _, record := range bucket {
			number++
			q := SheetQuestion{
				Number:      number,
				Question:    record.Question,
				Answer:      record.CorrectOption(),
				AnswerLabel: optionLabel(record.Answer),
				Source:      record.Source,
			}
			for i, option := range record.Options {
				q.Options = append(q.Options, SheetOption{Label: optionLabel(i), Text: option})
			}
			section.Questions = append(section.Questions, q)
		}
		sheet.Sections = append(sheet.Sections, section)
	}
	return sheet
}

// WriteQuestionSheet renders sheet with the template at templatePath, or with the
// embedded template when templatePath is empty or cannot be parsed.
func WriteQuestionSheet(output io.Writer, templatePath string, sheet QuestionSheet) error {
	tmpl, err := parseTemplateWithFallback(templatePath, fallbackQuestionSheetTemplate)
	if err != nil {
		return fmt.Errorf("parseTemplateWithFallback() > %w", err)
	}
	if err := tmpl.Execute(output, sheet); err != nil {
		return fmt.Errorf("tmpl.Execute() > %w", err)
	}
	return nil
}

func parseTemplateWithFallback(templatePath string, fallbackTemplate string) (*template.Template, error) {
	funcMap := template.FuncMap{
		"join": strings.Join,
		"title": func(d question.Difficulty) string {
			s := d.String()
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
	}

	if templatePath != "" {
		if _, err := os.Stat(templatePath); err == nil {
			fileName := filepath.Base(templatePath)
			tmpl, err := template.New(fileName).
				Funcs(funcMap).
				ParseFiles(templatePath)
			if err == nil {
				return tmpl, nil
			}
			slog.Default().Warn("failed to parse a templatePath",
				slog.String("templatePath", templatePath),
				slog.Any("error", err),
			)
		}
	}

	tmpl, err := template.New(embeddedTemplateName).
		Funcs(funcMap).
		Parse(fallbackTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded template: %w", err)
	}
	return tmpl, nil
}

// RenderMarkdown writes the question sheet of a category.
func RenderMarkdown(output io.Writer, templatePath, category string, records map[question.Difficulty][]question.Record, showAnswers bool) error {
	return WriteQuestionSheet(output, templatePath, NewQuestionSheet(category, records, showAnswers))
}
