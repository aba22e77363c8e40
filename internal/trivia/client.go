// Package trivia fetches multiple-choice questions from the Open Trivia DB API.
package trivia

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/at-ishikawa/quizler/internal/question"
)

const DefaultBaseURL = "https://opentdb.com"

// ErrNoEntry is returned when the API has no question for a category and difficulty.
var ErrNoEntry = errors.New("trivia: no entry")

// categoryIDs maps quiz categories to Open Trivia DB category ids.
var categoryIDs = map[string]int{
	"science":    17, // Science & Nature
	"history":    23,
	"geography":  22,
	"literature": 10, // Books
	"movies":     11, // Film
	"sports":     21,
	"technology": 18, // Computers
	"music":      12,
}

// CategoryID returns the Open Trivia DB id for a category.
func CategoryID(category string) (int, bool) {
	id, ok := categoryIDs[question.Slug(category)]
	return id, ok
}

// Response codes of the API.
const (
	responseCodeSuccess   = 0
	responseCodeNoResults = 1
)

type Response struct {
	ResponseCode int      `json:"response_code"`
	Results      []Result `json:"results"`
}

type Result struct {
	Category         string   `json:"category"`
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type Config struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Client struct {
	httpClient *resty.Client
	shuffle    func(n int, swap func(i, j int))
}

func NewClient(config Config) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		httpClient: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout),
		shuffle: rand.Shuffle,
	}
}

// Fetch asks the API for one question. The options are shuffled and the
// correct answer is recorded as an index into them.
func (c *Client) Fetch(ctx context.Context, category string, difficulty question.Difficulty) (question.Record, error) {
	id, ok := CategoryID(category)
	if !ok {
		return question.Record{}, fmt.Errorf("category %q is not mapped > %w", category, ErrNoEntry)
	}

	var body Response
	res, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"amount":     "1",
			"type":       "multiple",
			"category":   strconv.Itoa(id),
			"difficulty": difficulty.String(),
		}).
		SetResult(&body).
		Get("/api.php")
	if err != nil {
		return question.Record{}, fmt.Errorf("client.R.Get > %w", err)
	}
	if res.IsError() {
		return question.Record{}, fmt.Errorf("status code: %d, body: %s", res.StatusCode(), string(res.Body()))
	}

	switch body.ResponseCode {
	case responseCodeSuccess:
	case responseCodeNoResults:
		return question.Record{}, ErrNoEntry
	default:
		return question.Record{}, fmt.Errorf("response code: %d", body.ResponseCode)
	}
	if len(body.Results) == 0 {
		return question.Record{}, ErrNoEntry
	}

	record := c.toRecord(body.Results[0], category, difficulty)
	slog.Default().Debug("fetched trivia question",
		"category", category,
		"difficulty", difficulty,
		"question", record.Question,
	)
	return record, nil
}

func (c *Client) toRecord(result Result, category string, difficulty question.Difficulty) question.Record {
	correct := html.UnescapeString(result.CorrectAnswer)
	options := make([]string, 0, len(result.IncorrectAnswers)+1)
	options = append(options, correct)
	for _, answer := range result.IncorrectAnswers {
		options = append(options, html.UnescapeString(answer))
	}
	c.shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	answer := 0
	for i, option := range options {
		if option == correct {
			answer = i
			break
		}
	}

	return question.Record{
		Question:   html.UnescapeString(result.Question),
		Options:    options,
		Answer:     answer,
		Category:   category,
		Difficulty: difficulty,
		Source:     question.SourceFallback,
	}
}
