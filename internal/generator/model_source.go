package generator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/avast/retry-go"

	"github.com/at-ishikawa/quizler/internal/inference"
	"github.com/at-ishikawa/quizler/internal/question"
)

const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 256
	DefaultMaxAttempts = 3
	// DefaultWaitForModel covers the model lookup at start-up. Waiting ends as soon as loading finishes.
	DefaultWaitForModel = 10 * time.Second

	temperatureStep = 0.1
	maxTemperature  = 1.0
	maxTokensStep   = 64
)

type ModelConfig struct {
	Temperature float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `mapstructure:"max_tokens" validate:"gte=0"`
	// MaxAttempts bounds the number of completions per question, including the first one.
	MaxAttempts  uint          `mapstructure:"max_attempts" validate:"lte=10"`
	WaitForModel time.Duration `mapstructure:"wait_for_model"`
}

// ModelSource produces questions with a text-generation model.
type ModelSource struct {
	client inference.Client
	loader *inference.Loader
	config ModelConfig
}

// NewModelSource returns a source that is unavailable until loader reports ready.
// A nil client or loader makes the source permanently unavailable.
func NewModelSource(client inference.Client, loader *inference.Loader, config ModelConfig) *ModelSource {
	if config.Temperature == 0 {
		config.Temperature = DefaultTemperature
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultMaxTokens
	}
	if config.MaxAttempts == 0 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	return &ModelSource{
		client: client,
		loader: loader,
		config: config,
	}
}

func (s *ModelSource) Name() string {
	return "model"
}

func (s *ModelSource) Provenance() question.Source {
	return question.SourceAI
}

func (s *ModelSource) Ready() bool {
	return s.client != nil && s.loader != nil && s.loader.Ready()
}

func (s *ModelSource) awaitReady(ctx context.Context) error {
	if s.Ready() {
		return nil
	}
	if s.client == nil || s.loader == nil || s.config.WaitForModel <= 0 {
		return ErrModelUnavailable
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.config.WaitForModel)
	defer cancel()
	if err := s.loader.Wait(waitCtx); err != nil {
		return fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	if !s.Ready() {
		return ErrModelUnavailable
	}
	return nil
}

// completionParams returns the sampling parameters of a zero-based attempt.
func (s *ModelSource) completionParams(attempt uint) (float64, int) {
	temperature := s.config.Temperature + temperatureStep*float64(attempt)
	temperature = math.Min(math.Round(temperature*100)/100, maxTemperature)
	return temperature, s.config.MaxTokens + maxTokensStep*int(attempt)
}

func (s *ModelSource) Fetch(ctx context.Context, request Request) (question.Record, error) {
	if err := s.awaitReady(ctx); err != nil {
		return question.Record{}, err
	}

	var record question.Record
	var attempt uint
	err := retry.Do(
		func() error {
			temperature, maxTokens := s.completionParams(attempt)
			simplified := attempt > 0
			attempt++

			response, err := s.client.Complete(ctx, inference.CompletionRequest{
				System:      systemPrompt,
				Prompt:      buildPrompt(request.Category, request.Difficulty, simplified),
				Temperature: temperature,
				MaxTokens:   maxTokens,
			})
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("client.Complete > %w", err))
			}

			parsed, err := ParseCompletion(response.Text)
			if err != nil {
				return err
			}
			parsed.Category = request.Category
			parsed.Difficulty = request.Difficulty
			parsed.Source = question.SourceAI
			if err := parsed.Validate(); err != nil {
				return fmt.Errorf("%w: %w", ErrParse, err)
			}
			record = parsed
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(s.config.MaxAttempts),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.Default().Info("regenerating question",
				"attempt", n+1,
				"category", request.Category,
				"difficulty", request.Difficulty,
				"error", err,
			)
		}),
	)
	if err != nil {
		return question.Record{}, err
	}
	return record, nil
}
