package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/quizler/internal/cli"
	"github.com/at-ishikawa/quizler/internal/config"
	"github.com/at-ishikawa/quizler/internal/database"
	"github.com/at-ishikawa/quizler/internal/datasync"
	"github.com/at-ishikawa/quizler/internal/history"
	"github.com/at-ishikawa/quizler/internal/statistics"
	"github.com/at-ishikawa/quizler/schemas"
)

func newHistoryCommand() *cobra.Command {
	historyCommand := &cobra.Command{
		Use:   "history",
		Short: "Show and copy quiz history",
	}

	historyCommand.AddCommand(
		newHistoryListCommand(),
		newHistoryStatsCommand(),
		newHistoryMigrateCommand(),
		newHistorySyncCommand(),
	)

	return historyCommand
}

// openHistory returns the repository of the configured backend.
func openHistory(ctx context.Context, cfg *config.Config) (history.Repository, func() error, error) {
	if cfg.History.Backend != "database" {
		return history.NewFileRepository(cfg.History.File), func() error { return nil }, nil
	}
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return history.NewDBRepository(db), db.Close, nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.Migrate(ctx, db, schemas.Migrations); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

func newHistoryListCommand() *cobra.Command {
	var (
		user     string
		category string
		since    string
	)

	command := &cobra.Command{
		Use:   "list",
		Short: "List quiz results",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := history.Filter{User: user, Category: category}
			if since != "" {
				t, err := time.ParseInLocation(time.DateOnly, since, time.Local)
				if err != nil {
					return fmt.Errorf("--since must be a date like 2025-01-31: %w", err)
				}
				filter.Since = t
			}

			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			repository, closeRepository, err := openHistory(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = closeRepository()
			}()

			entries, err := repository.List(ctx, filter)
			if err != nil {
				return fmt.Errorf("repository.List() > %w", err)
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				status := ""
				if e.Abandoned {
					status = " (abandoned)"
				}
				fmt.Fprintf(out, "%s  %-10s %-15s %-6s %2d/%-2d score %d%s\n",
					e.Timestamp.Local().Format(time.DateTime),
					e.User,
					e.Category,
					e.Difficulty,
					e.Correct,
					e.QuestionCount,
					e.Score,
					status,
				)
			}
			return nil
		},
	}

	command.Flags().StringVar(&user, "user", "", "Filter by user")
	command.Flags().StringVar(&category, "category", "", "Filter by category")
	command.Flags().StringVar(&since, "since", "", "Only results played on or after the date (YYYY-MM-DD)")

	return command
}

func newHistoryStatsCommand() *cobra.Command {
	var (
		year, month int
		user        string
	)

	command := &cobra.Command{
		Use:   "stats",
		Short: "Show statistics of quiz results",
		RunE: func(cmd *cobra.Command, args []string) error {
			if month != 0 && year == 0 {
				return fmt.Errorf("--month requires --year to be specified")
			}
			if month < 0 || month > 12 {
				return fmt.Errorf("--month must be between 1 and 12")
			}

			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			repository, closeRepository, err := openHistory(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = closeRepository()
			}()

			entries, err := repository.List(ctx, history.Filter{User: user})
			if err != nil {
				return fmt.Errorf("repository.List() > %w", err)
			}
			cli.WriteStatisticsReport(cmd.OutOrStdout(), statistics.CalculateStatistics(entries, year, month))
			return nil
		},
	}

	command.Flags().IntVar(&year, "year", 0, "Filter by year (e.g., 2025)")
	command.Flags().IntVar(&month, "month", 0, "Filter by month (1-12), requires --year")
	command.Flags().StringVar(&user, "user", "", "Filter by user")

	return command
}

func newHistoryMigrateCommand() *cobra.Command {
	var dryRun bool

	command := &cobra.Command{
		Use:   "migrate",
		Short: "Copy quiz results from the history file into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDatabase(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			return copyHistory(cmd, history.NewFileRepository(cfg.History.File), history.NewDBRepository(db), dryRun)
		},
	}
	command.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be copied without writing")

	return command
}

func newHistorySyncCommand() *cobra.Command {
	var dryRun bool

	command := &cobra.Command{
		Use:   "sync",
		Short: "Copy quiz results from the database into the history file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDatabase(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			return copyHistory(cmd, history.NewDBRepository(db), history.NewFileRepository(cfg.History.File), dryRun)
		},
	}
	command.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be copied without writing")

	return command
}

func copyHistory(cmd *cobra.Command, source, target history.Repository, dryRun bool) error {
	ctx := cmd.Context()
	entries, err := source.List(ctx, history.Filter{})
	if err != nil {
		return fmt.Errorf("source.List() > %w", err)
	}

	out := cmd.OutOrStdout()
	result, err := datasync.NewImporter(target, out).ImportHistory(ctx, entries, datasync.ImportOptions{DryRun: dryRun})
	if err != nil {
		return fmt.Errorf("import history: %w", err)
	}

	fmt.Fprintln(out, "\nImport Summary:")
	if dryRun {
		fmt.Fprintln(out, "  (dry-run mode, no changes made)")
	}
	fmt.Fprintf(out, "  Entries: %d new, %d skipped\n", result.EntriesNew, result.EntriesSkipped)
	return nil
}
