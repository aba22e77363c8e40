package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/quizler/internal/question"
)

func newCategoryCommand() *cobra.Command {
	categoryCommand := &cobra.Command{
		Use:   "category",
		Short: "Manage categories",
	}

	categoryCommand.AddCommand(newCategoryListCommand(), newCategoryAddCommand())

	return categoryCommand
}

func newCategoryListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories with the number of questions per difficulty",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store := newStore(cfg)

			categories, err := store.Categories()
			if err != nil {
				return fmt.Errorf("store.Categories() > %w", err)
			}
			out := cmd.OutOrStdout()
			for _, category := range categories {
				counts, err := store.Counts(category)
				if err != nil {
					return fmt.Errorf("store.Counts(%s) > %w", category, err)
				}
				fmt.Fprintf(out, "%-20s easy: %3d  medium: %3d  hard: %3d\n",
					category,
					counts[question.DifficultyEasy],
					counts[question.DifficultyMedium],
					counts[question.DifficultyHard],
				)
			}
			return nil
		},
	}
}

func newCategoryAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME",
		Short: "Register a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			added, err := newStore(cfg).AddCategory(args[0])
			if err != nil {
				return fmt.Errorf("store.AddCategory() > %w", err)
			}
			if !added {
				fmt.Fprintf(cmd.OutOrStdout(), "Category %s already exists\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added category %s\n", args[0])
			return nil
		},
	}
}
