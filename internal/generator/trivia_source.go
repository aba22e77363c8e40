package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/at-ishikawa/quizler/internal/question"
	"github.com/at-ishikawa/quizler/internal/trivia"
)

type TriviaFetcher interface {
	Fetch(ctx context.Context, category string, difficulty question.Difficulty) (question.Record, error)
}

// TriviaSource produces questions with a remote trivia API.
type TriviaSource struct {
	client TriviaFetcher
}

func NewTriviaSource(client TriviaFetcher) *TriviaSource {
	return &TriviaSource{client: client}
}

func (s *TriviaSource) Name() string {
	return "trivia"
}

func (s *TriviaSource) Provenance() question.Source {
	return question.SourceFallback
}

func (s *TriviaSource) Fetch(ctx context.Context, request Request) (question.Record, error) {
	record, err := s.client.Fetch(ctx, request.Category, request.Difficulty)
	if errors.Is(err, trivia.ErrNoEntry) {
		return question.Record{}, fmt.Errorf("%w: %w", ErrNoEntry, err)
	}
	if err != nil {
		return question.Record{}, fmt.Errorf("client.Fetch > %w", err)
	}
	return record, nil
}
