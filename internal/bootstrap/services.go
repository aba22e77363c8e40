package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/quizler/internal/config"
	"github.com/at-ishikawa/quizler/internal/database"
	"github.com/at-ishikawa/quizler/internal/generator"
	"github.com/at-ishikawa/quizler/internal/history"
	"github.com/at-ishikawa/quizler/internal/inference"
	"github.com/at-ishikawa/quizler/internal/inference/openai"
	"github.com/at-ishikawa/quizler/internal/question"
	"github.com/at-ishikawa/quizler/internal/quiz"
	"github.com/at-ishikawa/quizler/internal/trivia"
	"github.com/at-ishikawa/quizler/schemas"
)

const (
	HistoryBackendFile     = "file"
	HistoryBackendDatabase = "database"
)

// Services holds the components shared by the CLI and the server.
type Services struct {
	Config     *config.Config
	Store      *question.Store
	History    history.Repository
	Loader     *inference.Loader
	Generator  *generator.Generator
	Controller *quiz.Controller

	closers []func() error
}

type ServicesOption func(*servicesOptions)

type servicesOptions struct {
	db         *sqlx.DB
	quizOption []quiz.ControllerOption
}

// WithDB uses db instead of opening a connection from the database config.
// The schema of db is not migrated.
func WithDB(db *sqlx.DB) ServicesOption {
	return func(o *servicesOptions) {
		o.db = db
	}
}

func WithControllerOptions(opts ...quiz.ControllerOption) ServicesOption {
	return func(o *servicesOptions) {
		o.quizOption = append(o.quizOption, opts...)
	}
}

// NewServices wires the store, history, generator and quiz controller from cfg.
// The model starts loading in the background; Loader is nil when the model is disabled.
func NewServices(ctx context.Context, cfg *config.Config, opts ...ServicesOption) (*Services, error) {
	var options servicesOptions
	for _, opt := range opts {
		opt(&options)
	}

	services := &Services{
		Config: cfg,
		Store: question.NewStore(question.StoreConfig{
			DataDirectory:   cfg.Storage.DataDirectory,
			BackupDirectory: cfg.Storage.BackupDirectory,
			CategoriesFile:  cfg.Storage.CategoriesFile,
			MaxBackups:      cfg.Storage.MaxBackups,
		}),
	}

	repository, err := services.openHistory(ctx, cfg, options.db)
	if err != nil {
		_ = services.Close()
		return nil, fmt.Errorf("openHistory > %w", err)
	}
	services.History = repository

	var client inference.Client
	if cfg.ModelEnabled() {
		openaiClient := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.MaxRetryAttempts)
		if cfg.OpenAI.BaseURL != "" {
			openaiClient.SetBaseURL(cfg.OpenAI.BaseURL)
		}
		services.closers = append(services.closers, openaiClient.Close)
		client = openaiClient

		services.Loader = inference.NewLoader()
		services.Loader.Start(ctx, openaiClient.LoadModel)
	} else {
		slog.Default().Debug("question generation by model is disabled")
	}

	sources := []generator.Source{
		generator.NewModelSource(client, services.Loader, cfg.Generator.ModelConfig),
	}
	if cfg.Generator.UseTrivia {
		sources = append(sources, generator.NewTriviaSource(trivia.NewClient(cfg.Trivia)))
	}
	if cfg.Fallback.File != "" {
		sources = append(sources, generator.NewStaticSource(cfg.Fallback.File))
	}
	services.Generator = generator.NewGenerator(services.Store, sources...)

	controllerOptions := options.quizOption
	if dir := cfg.History.SeenDirectory; dir != "" {
		controllerOptions = append([]quiz.ControllerOption{
			quiz.WithSeenTracker(func(user string) history.SeenTracker {
				return history.NewFileSeenTracker(dir, user)
			}),
		}, controllerOptions...)
	}
	services.Controller = quiz.NewController(services.Store, services.Generator, services.History, cfg.Quiz, controllerOptions...)

	return services, nil
}

func (s *Services) openHistory(ctx context.Context, cfg *config.Config, db *sqlx.DB) (history.Repository, error) {
	switch cfg.History.Backend {
	case "", HistoryBackendFile:
		return history.NewFileRepository(cfg.History.File), nil
	case HistoryBackendDatabase:
		if db != nil {
			return history.NewDBRepository(db), nil
		}
		db, err := database.Open(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("database.Open > %w", err)
		}
		s.closers = append(s.closers, db.Close)
		if err := database.Migrate(ctx, db, schemas.Migrations); err != nil {
			return nil, fmt.Errorf("database.Migrate > %w", err)
		}
		return history.NewDBRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.History.Backend)
	}
}

// Close releases connections opened by NewServices.
func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
