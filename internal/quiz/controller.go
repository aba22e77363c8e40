package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/at-ishikawa/quizler/internal/generator"
	"github.com/at-ishikawa/quizler/internal/history"
	"github.com/at-ishikawa/quizler/internal/question"
)

//go:generate mockgen -source=controller.go -destination=../mocks/quiz/mock_controller.go -package=mock_quiz

type QuestionStore interface {
	Get(category string, difficulty question.Difficulty) ([]question.Record, error)
}

type QuestionGenerator interface {
	GenerateAsync(ctx context.Context, category string, difficulty question.Difficulty, opts ...generator.Option) <-chan generator.Result
	Save(record question.Record) (question.Record, error)
}

type ControllerOption func(*Controller)

// WithSeenTracker makes sessions prefer questions the user has not seen yet.
func WithSeenTracker(tracker func(user string) history.SeenTracker) ControllerOption {
	return func(c *Controller) {
		c.seenTracker = tracker
	}
}

func WithClock(clock Clock) ControllerOption {
	return func(c *Controller) {
		c.clock = clock
	}
}

func withShuffle(shuffle func(n int, swap func(i, j int))) ControllerOption {
	return func(c *Controller) {
		c.shuffle = shuffle
	}
}

// Controller starts quiz sessions from the question store, topping them up with generated questions.
type Controller struct {
	store       QuestionStore
	generator   QuestionGenerator
	history     history.Repository
	config      Config
	seenTracker func(user string) history.SeenTracker
	clock       Clock
	shuffle     func(n int, swap func(i, j int))
}

func NewController(
	store QuestionStore,
	questionGenerator QuestionGenerator,
	repository history.Repository,
	config Config,
	opts ...ControllerOption,
) *Controller {
	if config.PointsPerCorrect == 0 {
		config.PointsPerCorrect = DefaultPointsPerCorrect
	}
	if config.DefaultCount == 0 {
		config.DefaultCount = DefaultQuestionCount
	}
	if config.PerQuestion == 0 {
		config.PerQuestion = DefaultPerQuestion
	}
	c := &Controller{
		store:     store,
		generator: questionGenerator,
		history:   repository,
		config:    config,
		clock:     realClock{},
		shuffle:   rand.Shuffle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) normalize(request StartRequest) (StartRequest, error) {
	request.Category = strings.TrimSpace(request.Category)
	if request.Category == "" {
		return request, fmt.Errorf("%w: category is required", ErrInvalidRequest)
	}
	if !request.Difficulty.Valid() {
		return request, fmt.Errorf("%w: difficulty %q", ErrInvalidRequest, request.Difficulty)
	}
	if request.Count < 0 {
		return request, fmt.Errorf("%w: count must not be negative", ErrInvalidRequest)
	}
	if request.PerQuestion < 0 {
		return request, fmt.Errorf("%w: time per question must not be negative", ErrInvalidRequest)
	}
	if request.Count == 0 {
		request.Count = c.config.DefaultCount
	}
	if request.PerQuestion == 0 {
		request.PerQuestion = c.config.PerQuestion
	}
	return request, nil
}

// Start draws up to request.Count questions and returns a session with its first question open.
func (c *Controller) Start(ctx context.Context, request StartRequest) (*Session, error) {
	request, err := c.normalize(request)
	if err != nil {
		return nil, err
	}

	records, err := c.store.Get(request.Category, request.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("store.Get > %w", err)
	}

	var tracker history.SeenTracker
	if c.seenTracker != nil {
		tracker = c.seenTracker(request.User)
	}
	questions := c.draw(request, records, tracker)
	if shortfall := request.Count - len(questions); shortfall > 0 && c.generator != nil {
		questions = append(questions, c.topUp(ctx, request, records, questions, shortfall)...)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w for %s/%s", ErrNoQuestions, request.Category, request.Difficulty)
	}

	if tracker != nil {
		if err := tracker.MarkSeen(request.Category, questions); err != nil {
			slog.Default().Warn("failed to mark questions as seen",
				"user", request.User,
				"error", err,
			)
		}
	}

	session := newSession(request, questions, c.config.PointsPerCorrect, c.clock)
	session.recorder = c.recorder(session)
	session.begin()

	slog.Default().Info("started quiz",
		"user", request.User,
		"category", request.Category,
		"difficulty", request.Difficulty,
		"questions", len(questions),
		"requested", request.Count,
	)
	return session, nil
}

// draw prefers unseen questions and falls back to seen ones, each group in random order.
func (c *Controller) draw(request StartRequest, records []question.Record, tracker history.SeenTracker) []question.Record {
	unseen := records
	var seen []question.Record
	if tracker != nil {
		var err error
		unseen, seen, err = tracker.FilterUnseen(request.Category, records)
		if err != nil {
			slog.Default().Warn("failed to read seen questions",
				"user", request.User,
				"error", err,
			)
			unseen, seen = records, nil
		}
	}

	ordered := make([]question.Record, 0, len(records))
	for _, group := range [][]question.Record{unseen, seen} {
		shuffled := append([]question.Record(nil), group...)
		c.shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		ordered = append(ordered, shuffled...)
	}
	if len(ordered) > request.Count {
		ordered = ordered[:request.Count]
	}
	return ordered
}

// topUp asks for one generated question per missing question. Failures and
// duplicates reduce the number of questions of the session.
func (c *Controller) topUp(
	ctx context.Context,
	request StartRequest,
	existing []question.Record,
	drawn []question.Record,
	shortfall int,
) []question.Record {
	known := make(map[string]struct{}, len(existing)+len(drawn))
	prompts := make([]string, 0, len(existing)+len(drawn)+shortfall)
	for _, group := range [][]question.Record{existing, drawn} {
		for _, record := range group {
			if _, ok := known[record.Key()]; ok {
				continue
			}
			known[record.Key()] = struct{}{}
			prompts = append(prompts, record.Question)
		}
	}

	results := c.generateSequentially(ctx, request, prompts, shortfall)

	var generated []question.Record
	for {
		var result generator.Result
		select {
		case r, ok := <-results:
			if !ok {
				return generated
			}
			result = r
		case <-ctx.Done():
			slog.Default().Warn("stopped waiting for generated questions", "error", ctx.Err())
			return generated
		}

		if result.Err != nil {
			slog.Default().Warn("failed to generate question",
				"category", request.Category,
				"difficulty", request.Difficulty,
				"error", result.Err,
			)
			continue
		}
		if _, ok := known[result.Record.Key()]; ok {
			slog.Default().Info("dropped duplicate generated question", "question", result.Record.Question)
			continue
		}
		known[result.Record.Key()] = struct{}{}

		record := result.Record
		if saved, err := c.generator.Save(record); err != nil {
			slog.Default().Warn("failed to store generated question", "error", err)
		} else {
			record = saved
		}
		generated = append(generated, record)
	}
}

// generateSequentially requests n questions one after another on a single goroutine.
// Each generated prompt is excluded from the following requests.
func (c *Controller) generateSequentially(
	ctx context.Context,
	request StartRequest,
	prompts []string,
	n int,
) <-chan generator.Result {
	results := make(chan generator.Result, n)
	exclude := append([]string(nil), prompts...)
	go func() {
		defer close(results)
		for i := 0; i < n; i++ {
			pending := c.generator.GenerateAsync(ctx, request.Category, request.Difficulty, generator.WithExclude(exclude...))
			var result generator.Result
			select {
			case r, ok := <-pending:
				if !ok {
					continue
				}
				result = r
			case <-ctx.Done():
				return
			}
			if result.Err == nil {
				exclude = append(exclude, result.Record.Question)
			}
			results <- result
		}
	}()
	return results
}

func (c *Controller) recorder(session *Session) func(ctx context.Context, summary Summary) error {
	return func(ctx context.Context, summary Summary) error {
		if c.history == nil {
			return nil
		}
		if summary.Abandoned && !c.config.RecordAbandoned {
			return nil
		}
		if err := c.history.Append(ctx, session.historyEntry(summary)); err != nil {
			return fmt.Errorf("history.Append > %w", err)
		}
		return nil
	}
}
