// go build +integration
package openai_test

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/at-ishikawa/quizler/internal/inference"
	"github.com/at-ishikawa/quizler/internal/inference/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClient_Complete_Evaluate calls the real API.
// Run with: OPENAI_API_KEY=your-key go test -v ./internal/inference/openai -run TestClient_Complete_Evaluate
func TestClient_Complete_Evaluate(t *testing.T) {
	slog.SetDefault(
		slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:     slog.LevelDebug,
			AddSource: true,
		})),
	)

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY environment variable not set, skipping integration test")
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	client := openai.NewClient(apiKey, model, inference.DefaultMaxRetryAttempts)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	require.NoError(t, client.LoadModel(ctx))

	response, err := client.Complete(ctx, inference.CompletionRequest{
		Prompt: "Write one easy multiple-choice question about Geography.\n" +
			"Question: <text>\nA) <option>\nB) <option>\nC) <option>\nD) <option>\nAnswer: <letter>",
		Temperature: 0.7,
		MaxTokens:   256,
	})
	require.NoError(t, err)
	assert.True(t, strings.Contains(response.Text, "Answer:"), response.Text)
}
