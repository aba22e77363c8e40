// Package datasync copies quiz history between the JSON log and the database.
package datasync

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/at-ishikawa/quizler/internal/history"
)

// ImportResult tracks counts for an import.
type ImportResult struct {
	EntriesNew     int
	EntriesSkipped int
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun bool
}

// Importer writes history entries into a target repository, skipping the ones it already has.
type Importer struct {
	target history.Repository
	writer io.Writer
}

// NewImporter creates a new Importer.
func NewImporter(target history.Repository, writer io.Writer) *Importer {
	return &Importer{
		target: target,
		writer: writer,
	}
}

// ImportHistory copies entries missing from the target. Entries are identified by
// play time, user, category and difficulty.
func (imp *Importer) ImportHistory(ctx context.Context, entries []history.Entry, opts ImportOptions) (*ImportResult, error) {
	existing, err := imp.target.List(ctx, history.Filter{})
	if err != nil {
		return nil, fmt.Errorf("target.List() > %w", err)
	}
	known := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		known[entryKey(e)] = struct{}{}
	}

	var result ImportResult
	for _, e := range entries {
		key := entryKey(e)
		if _, ok := known[key]; ok {
			fmt.Fprintf(imp.writer, "  [SKIP]  %s\n", describe(e))
			result.EntriesSkipped++
			continue
		}
		if !opts.DryRun {
			if err := imp.target.Append(ctx, e); err != nil {
				return nil, fmt.Errorf("target.Append(%s) > %w", describe(e), err)
			}
		}
		known[key] = struct{}{}
		fmt.Fprintf(imp.writer, "  [NEW]  %s\n", describe(e))
		result.EntriesNew++
	}
	return &result, nil
}

func entryKey(e history.Entry) string {
	// Databases may drop sub-second precision.
	return fmt.Sprintf("%s|%s|%s|%s", e.Timestamp.UTC().Truncate(time.Second).Format(time.RFC3339), e.User, e.Category, e.Difficulty)
}

func describe(e history.Entry) string {
	return fmt.Sprintf("%s %s/%s %d/%d", e.Timestamp.Format(time.DateTime), e.Category, e.Difficulty, e.Correct, e.QuestionCount)
}
