package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		debugMode bool
		wantLevel slog.Level
	}{
		{
			name:      "debug mode enabled",
			debugMode: true,
			wantLevel: slog.LevelDebug,
		},
		{
			name:      "debug mode disabled",
			debugMode: false,
			wantLevel: slog.LevelInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupLogger(tt.debugMode)
			logger := slog.Default()
			assert.NotNil(t, logger)
			assert.Equal(t, tt.wantLevel <= slog.LevelDebug, logger.Enabled(context.Background(), slog.LevelDebug))
		})
	}
}

func TestNewRootCommand(t *testing.T) {
	cmd := newRootCommand()

	assert.Equal(t, "quizler", cmd.Use)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("debug"))

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"quiz", "question", "category", "history"})
}

func TestCommands_configError(t *testing.T) {
	tests := [][]string{
		{"category", "list"},
		{"question", "list", "--category", "Science"},
		{"history", "stats"},
		{"history", "migrate"},
		{"quiz", "start", "--category", "Science"},
	}

	for _, args := range tests {
		t.Run(args[0]+" "+args[1], func(t *testing.T) {
			setConfigFile(t, setupBrokenConfigFile(t))
			_, err := execute(t, "", args...)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "load config")
		})
	}
}
