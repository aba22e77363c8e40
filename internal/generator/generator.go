// Package generator produces new questions from a text-generation model,
// falling back to a remote trivia API and then to a static fallback file.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/at-ishikawa/quizler/internal/question"
)

// Request describes the question a source should produce.
type Request struct {
	Category   string
	Difficulty question.Difficulty
	exclude    map[string]struct{}
}

func (r Request) excluded(record question.Record) bool {
	_, ok := r.exclude[record.Key()]
	return ok
}

// Source is one step of the fallback chain.
type Source interface {
	Name() string
	Provenance() question.Source
	Fetch(ctx context.Context, request Request) (question.Record, error)
}

// Saver persists generated records.
type Saver interface {
	Add(record question.Record) (question.Record, error)
}

type Option func(*Request)

// WithExclude rejects questions whose prompt matches one of prompts.
func WithExclude(prompts ...string) Option {
	return func(r *Request) {
		if r.exclude == nil {
			r.exclude = make(map[string]struct{}, len(prompts))
		}
		for _, prompt := range prompts {
			r.exclude[question.NormalizeText(prompt)] = struct{}{}
		}
	}
}

// Result is delivered by GenerateAsync.
type Result struct {
	Record question.Record
	Source string
	Err    error
}

type Generator struct {
	store   Saver
	sources []Source
}

// NewGenerator tries sources in the given order.
func NewGenerator(store Saver, sources ...Source) *Generator {
	return &Generator{
		store:   store,
		sources: sources,
	}
}

// Ready reports whether the model source can serve requests right now.
func (g *Generator) Ready() bool {
	for _, source := range g.sources {
		if r, ok := source.(interface{ Ready() bool }); ok && r.Ready() {
			return true
		}
	}
	return false
}

// Generate produces a question and appends it to the store.
// A failure to store the question is logged and the question is still returned.
func (g *Generator) Generate(
	ctx context.Context,
	category string,
	difficulty question.Difficulty,
	opts ...Option,
) (question.Record, error) {
	record, _, err := g.produce(ctx, category, difficulty, opts...)
	if err != nil {
		return question.Record{}, err
	}
	saved, err := g.Save(record)
	if err != nil {
		slog.Default().Warn("failed to store generated question",
			"category", category,
			"difficulty", difficulty,
			"error", err,
		)
		return record, nil
	}
	return saved, nil
}

// GenerateAsync produces a question on another goroutine and sends exactly one
// Result on the returned channel. It does not touch the store.
func (g *Generator) GenerateAsync(
	ctx context.Context,
	category string,
	difficulty question.Difficulty,
	opts ...Option,
) <-chan Result {
	results := make(chan Result, 1)
	go func() {
		defer close(results)
		record, source, err := g.produce(ctx, category, difficulty, opts...)
		results <- Result{Record: record, Source: source, Err: err}
	}()
	return results
}

// Save appends a generated record to its category file.
func (g *Generator) Save(record question.Record) (question.Record, error) {
	if g.store == nil {
		return record, errors.New("no store is configured")
	}
	saved, err := g.store.Add(record)
	if err != nil {
		return record, fmt.Errorf("store.Add > %w", err)
	}
	return saved, nil
}

func (g *Generator) produce(
	ctx context.Context,
	category string,
	difficulty question.Difficulty,
	opts ...Option,
) (question.Record, string, error) {
	request := Request{Category: category, Difficulty: difficulty}
	for _, opt := range opts {
		opt(&request)
	}

	var causes []error
	for _, source := range g.sources {
		if err := ctx.Err(); err != nil {
			causes = append(causes, err)
			break
		}

		record, err := source.Fetch(ctx, request)
		if err == nil {
			record.Category = category
			record.Difficulty = difficulty
			record.Source = source.Provenance()
			err = record.Validate()
		}
		if err == nil && request.excluded(record) {
			err = fmt.Errorf("%w: %q", ErrDuplicate, record.Question)
		}
		if err != nil {
			logSourceFailure(source.Name(), category, difficulty, err)
			causes = append(causes, fmt.Errorf("%s > %w", source.Name(), err))
			continue
		}

		slog.Default().Info("generated question",
			"source", source.Name(),
			"category", category,
			"difficulty", difficulty,
		)
		return record, source.Name(), nil
	}

	return question.Record{}, "", &GenerationError{
		Category:   category,
		Difficulty: difficulty,
		Causes:     causes,
	}
}

func logSourceFailure(source, category string, difficulty question.Difficulty, err error) {
	logger := slog.Default().With(
		"source", source,
		"category", category,
		"difficulty", difficulty,
		"error", err,
	)
	switch {
	case errors.Is(err, ErrModelUnavailable), errors.Is(err, ErrNoEntry):
		logger.Debug("question source has nothing to offer")
	default:
		logger.Warn("question source failed")
	}
}
