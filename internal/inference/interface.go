package inference

import (
	"context"
)

//go:generate mockgen -source=interface.go -destination=../mocks/inference/mock_client.go -package=mock_inference

// Client interface defines the methods for text generation
type Client interface {
	Complete(ctx context.Context, request CompletionRequest) (CompletionResponse, error)
	// LoadModel prepares the model so that Complete can be served.
	LoadModel(ctx context.Context) error
}

// CompletionRequest holds the prompt and sampling parameters for one completion
type CompletionRequest struct {
	System      string  `json:"system,omitempty"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

type CompletionResponse struct {
	Text  string
	Model string
}

const (
	DefaultMaxRetryAttempts = 3
)
