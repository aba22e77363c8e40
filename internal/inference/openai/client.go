package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/at-ishikawa/quizler/internal/inference"
	"github.com/avast/retry-go"
	"resty.dev/v3"
)

const DefaultBaseURL = "https://api.openai.com/v1"

type Client struct {
	httpClient       *resty.Client
	model            string
	maxRetryAttempts uint
}

func NewClient(apiKey, model string, retryAttempts uint) *Client {
	client := resty.New()
	client.SetBaseURL(DefaultBaseURL)
	client.SetHeader("Authorization", "Bearer "+apiKey)
	client.SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient:       client,
		model:            model,
		maxRetryAttempts: retryAttempts,
	}
}

// SetBaseURL points the client at another OpenAI-compatible endpoint.
func (client *Client) SetBaseURL(baseURL string) *Client {
	if baseURL != "" {
		client.httpClient.SetBaseURL(baseURL)
	}
	return client
}

func (client Client) Close() error {
	return client.httpClient.Close()
}

// GetModel returns the model name configured for this client
func (client Client) GetModel() string {
	return client.model
}

type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Index        int           `json:"index"`
	Message      ChoiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type ChoiceMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type ModelResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	OwnedBy string `json:"owned_by"`
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	if strings.Contains(errStr, "json.Unmarshal") || strings.Contains(errStr, "unexpected end of JSON input") {
		return true
	}

	// Retry on network-related errors
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") {
		return true
	}

	// Retry on 5xx errors (server errors)
	if strings.Contains(errStr, "response error 5") {
		return true
	}

	// Retry on rate limiting (429)
	if strings.Contains(errStr, "response error 429") {
		return true
	}

	return false
}

func (client *Client) withRetry(ctx context.Context, fn func() error) error {
	return retry.Do(
		func() error {
			err := fn()
			if err != nil && !isRetryableError(err) {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(client.maxRetryAttempts+1),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	)
}

// Complete implements the inference.Client interface
func (client *Client) Complete(
	ctx context.Context,
	request inference.CompletionRequest,
) (inference.CompletionResponse, error) {
	var result inference.CompletionResponse
	if err := client.withRetry(ctx, func() error {
		response, err := client.complete(ctx, request)
		if err != nil {
			return err
		}
		result = response
		return nil
	}); err != nil {
		return inference.CompletionResponse{}, err
	}
	return result, nil
}

// LoadModel checks that the configured model is served by the endpoint.
func (client *Client) LoadModel(ctx context.Context) error {
	return client.withRetry(ctx, func() error {
		response, err := client.httpClient.R().
			SetContext(ctx).
			SetPathParam("model", client.model).
			SetResult(&ModelResponse{}).
			Get("/models/{model}")
		if err != nil {
			return fmt.Errorf("httpClient.Get > %w", err)
		}
		if response.IsError() {
			return fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
		}
		model := response.Result().(*ModelResponse)
		slog.Default().Debug("openai model available",
			"model", client.model,
			"owned_by", model.OwnedBy,
		)
		return nil
	})
}

func (client *Client) getRequestBody(request inference.CompletionRequest) ChatCompletionRequest {
	messages := make([]Message, 0, 2)
	if request.System != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: request.System})
	}
	messages = append(messages, Message{Role: RoleUser, Content: request.Prompt})

	return ChatCompletionRequest{
		Model:       client.model,
		Messages:    messages,
		Temperature: request.Temperature,
		MaxTokens:   request.MaxTokens,
	}
}

func (client *Client) complete(
	ctx context.Context,
	request inference.CompletionRequest,
) (inference.CompletionResponse, error) {
	requestBody := client.getRequestBody(request)

	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&ChatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		return inference.CompletionResponse{}, fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return inference.CompletionResponse{}, fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	responseBody := response.Result().(*ChatCompletionResponse)
	if responseBody == nil || len(responseBody.Choices) == 0 {
		return inference.CompletionResponse{}, fmt.Errorf("empty response body or choices: %s", response.String())
	}

	content := strings.TrimSpace(responseBody.Choices[0].Message.Content)
	if content == "" {
		return inference.CompletionResponse{}, fmt.Errorf("empty response content: %s", response.String())
	}
	slog.Default().Debug("openai response content",
		"request", requestBody,
		"usage", responseBody.Usage,
	)
	return inference.CompletionResponse{
		Text:  content,
		Model: responseBody.Model,
	}, nil
}
