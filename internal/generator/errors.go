package generator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/at-ishikawa/quizler/internal/question"
)

var (
	// ErrGeneration matches every *GenerationError.
	ErrGeneration = errors.New("question generation failed")
	// ErrModelUnavailable is returned while the model is not loaded, still loading or failed to load.
	ErrModelUnavailable = errors.New("model is unavailable")
	// ErrNoEntry is returned by a source that has nothing for the category and difficulty.
	ErrNoEntry = errors.New("no entry")
	// ErrParse is returned when generated text cannot be turned into a question.
	ErrParse = errors.New("failed to parse generated question")
	// ErrDuplicate is returned when a source produced an excluded question.
	ErrDuplicate = errors.New("duplicate question")
)

// GenerationError is returned when no source produced a question.
type GenerationError struct {
	Category   string
	Difficulty question.Difficulty
	Causes     []error
}

func (e *GenerationError) Error() string {
	causes := make([]string, 0, len(e.Causes))
	for _, cause := range e.Causes {
		causes = append(causes, cause.Error())
	}
	return fmt.Sprintf("%s for %s/%s: [%s]", ErrGeneration, e.Category, e.Difficulty, strings.Join(causes, "; "))
}

func (e *GenerationError) Is(target error) bool {
	return target == ErrGeneration
}

func (e *GenerationError) Unwrap() []error {
	return e.Causes
}
