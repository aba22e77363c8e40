package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/quizler/internal/export"
	"github.com/at-ishikawa/quizler/internal/generator"
	"github.com/at-ishikawa/quizler/internal/question"
)

func newQuestionCommand() *cobra.Command {
	questionCommand := &cobra.Command{
		Use:   "question",
		Short: "Manage the questions of a category",
	}

	questionCommand.AddCommand(
		newQuestionListCommand(),
		newQuestionAddCommand(),
		newQuestionDeleteCommand(),
		newQuestionGenerateCommand(),
		newQuestionImportCommand(),
		newQuestionExportCommand(),
	)

	return questionCommand
}

func newQuestionListCommand() *cobra.Command {
	var (
		category   string
		difficulty question.Difficulty
	)

	command := &cobra.Command{
		Use:   "list",
		Short: "List the questions of a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			all, err := newStore(cfg).All(category)
			if err != nil {
				return fmt.Errorf("store.All() > %w", err)
			}

			out := cmd.OutOrStdout()
			for _, d := range question.AllDifficulties {
				if difficulty != "" && d != difficulty {
					continue
				}
				for _, record := range all[d] {
					fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", record.ID, d, record.Source, record.Question)
					for i, option := range record.Options {
						marker := " "
						if i == record.Answer {
							marker = "*"
						}
						fmt.Fprintf(out, "\t%s %d) %s\n", marker, i+1, option)
					}
				}
			}
			return nil
		},
	}

	command.Flags().StringVar(&category, "category", "", "Category of the questions")
	command.Flags().Var(newDifficultyValue("", &difficulty), "difficulty", "Only list easy, medium or hard questions")
	_ = command.MarkFlagRequired("category")

	return command
}

func newQuestionAddCommand() *cobra.Command {
	var (
		category   string
		difficulty question.Difficulty
		prompt     string
		options    []string
		answer     int
	)

	command := &cobra.Command{
		Use:   "add",
		Short: "Add a question written by hand",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			record, err := newStore(cfg).Add(question.Record{
				Question:   prompt,
				Options:    options,
				Answer:     answer - 1,
				Category:   category,
				Difficulty: difficulty,
				Source:     question.SourceHuman,
			})
			if err != nil {
				return fmt.Errorf("store.Add() > %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added question %s\n", record.ID)
			return nil
		},
	}

	command.Flags().StringVar(&category, "category", "", "Category of the question")
	command.Flags().Var(newDifficultyValue(question.DifficultyEasy, &difficulty), "difficulty", "easy, medium or hard")
	command.Flags().StringVar(&prompt, "question", "", "Question text")
	command.Flags().StringArrayVar(&options, "option", nil, "Answer option, repeat for each option")
	command.Flags().IntVar(&answer, "answer", 0, "Number of the correct option, starting from 1")
	_ = command.MarkFlagRequired("category")
	_ = command.MarkFlagRequired("question")
	_ = command.MarkFlagRequired("option")
	_ = command.MarkFlagRequired("answer")

	return command
}

func newQuestionDeleteCommand() *cobra.Command {
	var (
		category   string
		difficulty question.Difficulty
		id         string
	)

	command := &cobra.Command{
		Use:   "delete",
		Short: "Delete a question by its ID",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := newStore(cfg).Delete(category, difficulty, id); err != nil {
				return fmt.Errorf("store.Delete() > %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted question %s\n", id)
			return nil
		},
	}

	command.Flags().StringVar(&category, "category", "", "Category of the question")
	command.Flags().Var(newDifficultyValue(question.DifficultyEasy, &difficulty), "difficulty", "easy, medium or hard")
	command.Flags().StringVar(&id, "id", "", "ID of the question")
	_ = command.MarkFlagRequired("category")
	_ = command.MarkFlagRequired("id")

	return command
}

func newQuestionGenerateCommand() *cobra.Command {
	var (
		category   string
		difficulty question.Difficulty
		count      int
	)

	command := &cobra.Command{
		Use:   "generate",
		Short: "Generate questions and add them to a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive")
			}
			ctx := cmd.Context()
			services, err := newServices(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = services.Close()
			}()

			existing, err := services.Store.Get(category, difficulty)
			if err != nil {
				return fmt.Errorf("store.Get() > %w", err)
			}
			prompts := make([]string, 0, len(existing)+count)
			for _, record := range existing {
				prompts = append(prompts, record.Question)
			}

			out := cmd.OutOrStdout()
			generated := 0
			for i := 0; i < count; i++ {
				record, err := services.Generator.Generate(ctx, category, difficulty, generator.WithExclude(prompts...))
				if err != nil {
					fmt.Fprintf(out, "failed to generate a question: %v\n", err)
					continue
				}
				prompts = append(prompts, record.Question)
				generated++
				fmt.Fprintf(out, "[%s] %s\n", record.Source, record.Question)
			}
			fmt.Fprintf(out, "Generated %d of %d questions\n", generated, count)
			if generated == 0 {
				return fmt.Errorf("no question was generated for %s/%s", category, difficulty)
			}
			return nil
		},
	}

	command.Flags().StringVar(&category, "category", "", "Category of the questions")
	command.Flags().Var(newDifficultyValue(question.DifficultyEasy, &difficulty), "difficulty", "easy, medium or hard")
	command.Flags().IntVar(&count, "count", 1, "Number of questions to generate")
	_ = command.MarkFlagRequired("category")

	return command
}

func newQuestionImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import questions from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("os.Open(%s) > %w", args[0], err)
			}
			defer func() {
				_ = file.Close()
			}()

			records, err := newStore(cfg).ImportYAML(file)
			if err != nil {
				return fmt.Errorf("store.ImportYAML() > %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d questions\n", len(records))
			return nil
		},
	}
}

func newQuestionExportCommand() *cobra.Command {
	var (
		category    string
		format      string
		output      string
		showAnswers bool
	)

	command := &cobra.Command{
		Use:   "export",
		Short: "Export the questions of a category as YAML, Markdown or PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			switch format {
			case "yaml", "markdown", "pdf":
			default:
				return fmt.Errorf("unsupported format %q: must be yaml, markdown or pdf", format)
			}
			if format == "pdf" && output == "" {
				return fmt.Errorf("--output is required for pdf")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store := newStore(cfg)

			var w io.Writer = cmd.OutOrStdout()
			markdownPath := output
			if format == "pdf" {
				markdownPath = strings.TrimSuffix(output, filepath.Ext(output)) + ".md"
			}
			if markdownPath != "" {
				if err := os.MkdirAll(filepath.Dir(markdownPath), 0755); err != nil {
					return fmt.Errorf("os.MkdirAll() > %w", err)
				}
				file, err := os.Create(markdownPath)
				if err != nil {
					return fmt.Errorf("os.Create(%s) > %w", markdownPath, err)
				}
				defer func() {
					_ = file.Close()
				}()
				w = file
			}

			if format == "yaml" {
				if err := store.ExportYAML(w, category); err != nil {
					return fmt.Errorf("store.ExportYAML() > %w", err)
				}
				return nil
			}

			records, err := store.All(category)
			if err != nil {
				return fmt.Errorf("store.All() > %w", err)
			}
			if err := export.RenderMarkdown(w, cfg.Templates.QuestionSheetTemplate, category, records, showAnswers); err != nil {
				return fmt.Errorf("export.RenderMarkdown() > %w", err)
			}
			if format != "pdf" {
				return nil
			}

			pdfPath, err := export.ConvertMarkdownToPDF(markdownPath)
			if err != nil {
				return fmt.Errorf("export.ConvertMarkdownToPDF() > %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "PDF generated: %s\n", pdfPath)
			return nil
		},
	}

	command.Flags().StringVar(&category, "category", "", "Category of the questions")
	command.Flags().StringVar(&format, "format", "yaml", "yaml, markdown or pdf")
	command.Flags().StringVar(&output, "output", "", "Output file. Standard output when empty, except for pdf")
	command.Flags().BoolVar(&showAnswers, "answers", false, "Show the answers in Markdown and PDF sheets")
	_ = command.MarkFlagRequired("category")

	return command
}
