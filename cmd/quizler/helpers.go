package main

import (
	"context"
	"fmt"

	"github.com/at-ishikawa/quizler/internal/bootstrap"
	"github.com/at-ishikawa/quizler/internal/config"
	"github.com/at-ishikawa/quizler/internal/question"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newStore(cfg *config.Config) *question.Store {
	return question.NewStore(question.StoreConfig{
		DataDirectory:   cfg.Storage.DataDirectory,
		BackupDirectory: cfg.Storage.BackupDirectory,
		CategoriesFile:  cfg.Storage.CategoriesFile,
		MaxBackups:      cfg.Storage.MaxBackups,
	})
}

func newServices(ctx context.Context) (*bootstrap.Services, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	services, err := bootstrap.NewServices(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap.NewServices() > %w", err)
	}
	return services, nil
}
