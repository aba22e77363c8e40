package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/quizler/internal/cli"
	"github.com/at-ishikawa/quizler/internal/question"
	"github.com/at-ishikawa/quizler/internal/quiz"
)

func newQuizCommand() *cobra.Command {
	quizCommand := &cobra.Command{
		Use:   "quiz",
		Short: "Quiz commands",
	}

	quizCommand.AddCommand(newQuizStartCommand())

	return quizCommand
}

func newQuizStartCommand() *cobra.Command {
	var (
		category   string
		difficulty question.Difficulty
		count      int
		seconds    int
		user       string
	)

	command := &cobra.Command{
		Use:   "start",
		Short: "Start an interactive quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 0 {
				return fmt.Errorf("--count must not be negative")
			}
			if seconds < 0 {
				return fmt.Errorf("--seconds must not be negative")
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()

			services, err := newServices(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = services.Close()
			}()

			quizCLI := cli.NewQuizCLI(services.Controller, cmd.InOrStdin(), cmd.OutOrStdout())
			_, err = quizCLI.Run(ctx, quiz.StartRequest{
				User:        user,
				Category:    category,
				Difficulty:  difficulty,
				Count:       count,
				PerQuestion: time.Duration(seconds) * time.Second,
			})
			return err
		},
	}

	command.Flags().StringVar(&category, "category", "", "Category of the questions")
	command.Flags().Var(newDifficultyValue(question.DifficultyEasy, &difficulty), "difficulty", "easy, medium or hard")
	command.Flags().IntVar(&count, "count", 0, "Number of questions (0 uses the configured default)")
	command.Flags().IntVar(&seconds, "seconds", 0, "Seconds per question (0 uses the configured default)")
	command.Flags().StringVar(&user, "user", os.Getenv("USER"), "User name recorded in the history")
	_ = command.MarkFlagRequired("category")

	return command
}
