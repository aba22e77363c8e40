package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/at-ishikawa/quizler/internal/question"
)

// StaticSource picks questions from a fallback file shaped as
// {"<category>": {"easy": [...], "medium": [...], "hard": [...]}}.
type StaticSource struct {
	path string
	intN func(n int) int
}

func NewStaticSource(path string) *StaticSource {
	return &StaticSource{
		path: path,
		intN: rand.IntN,
	}
}

func (s *StaticSource) Name() string {
	return "static"
}

func (s *StaticSource) Provenance() question.Source {
	return question.SourceFallback
}

// Fetch returns a random record of the category and difficulty that is not excluded.
// Other categories are never used as a substitute.
func (s *StaticSource) Fetch(ctx context.Context, request Request) (question.Record, error) {
	if err := ctx.Err(); err != nil {
		return question.Record{}, err
	}
	fallback, err := s.read()
	if err != nil {
		return question.Record{}, err
	}

	var candidates []question.Record
	for category, buckets := range fallback {
		if question.Slug(category) != question.Slug(request.Category) {
			continue
		}
		for _, record := range buckets[request.Difficulty] {
			if request.excluded(record) {
				continue
			}
			candidates = append(candidates, record)
		}
	}
	if len(candidates) == 0 {
		return question.Record{}, fmt.Errorf("%w in %s", ErrNoEntry, s.path)
	}

	record := candidates[s.intN(len(candidates))]
	record.ID = ""
	return record, nil
}

func (s *StaticSource) read() (map[string]map[question.Difficulty][]question.Record, error) {
	contents, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", s.path, err)
	}
	var fallback map[string]map[question.Difficulty][]question.Record
	if err := json.Unmarshal(contents, &fallback); err != nil {
		return nil, fmt.Errorf("json.Unmarshal(%s) > %w", s.path, err)
	}
	return fallback, nil
}
