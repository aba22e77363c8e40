package server

import (
	"time"

	"github.com/at-ishikawa/quizler/internal/quiz"
)

type ListCategoriesRequest struct{}

type Category struct {
	Name string `json:"name"`
	// Counts is the number of stored questions per difficulty
	Counts map[string]int `json:"counts"`
}

type ListCategoriesResponse struct {
	Categories []Category `json:"categories"`
}

type StartQuizRequest struct {
	User               string `json:"user"`
	Category           string `json:"category"`
	Difficulty         string `json:"difficulty"`
	Count              int    `json:"count"`
	SecondsPerQuestion int    `json:"seconds_per_question"`
}

type Question struct {
	Index      int        `json:"index"`
	Total      int        `json:"total"`
	ID         string     `json:"id,omitempty"`
	Question   string     `json:"question"`
	Options    []string   `json:"options"`
	Category   string     `json:"category"`
	Difficulty string     `json:"difficulty"`
	Deadline   *time.Time `json:"deadline,omitempty"`
}

type StartQuizResponse struct {
	SessionID string   `json:"session_id"`
	Total     int      `json:"total"`
	Question  Question `json:"question"`
}

type AnswerRequest struct {
	SessionID     string `json:"session_id"`
	QuestionIndex int    `json:"question_index"`
	Option        int    `json:"option"`
}

type TimeoutRequest struct {
	SessionID     string `json:"session_id"`
	QuestionIndex int    `json:"question_index"`
}

type Outcome struct {
	Index         int    `json:"index"`
	Selected      int    `json:"selected"`
	Correct       bool   `json:"correct"`
	TimedOut      bool   `json:"timed_out"`
	CorrectAnswer int    `json:"correct_answer"`
	CorrectOption string `json:"correct_option"`
	Score         int    `json:"score"`
	Finished      bool   `json:"finished"`
}

// AnswerResponse is returned by both Answer and Timeout.
// Next is nil when the session has no open question left.
type AnswerResponse struct {
	Outcome Outcome   `json:"outcome"`
	Next    *Question `json:"next,omitempty"`
}

type EndQuizRequest struct {
	SessionID string `json:"session_id"`
}

type CategoryScore struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

type EndQuizResponse struct {
	Score      int                      `json:"score"`
	Correct    int                      `json:"correct"`
	Total      int                      `json:"total"`
	Answered   int                      `json:"answered"`
	Abandoned  bool                     `json:"abandoned"`
	Accuracy   float64                  `json:"accuracy"`
	ByCategory map[string]CategoryScore `json:"by_category"`
}

func toQuestion(presented quiz.Presented) Question {
	q := Question{
		Index:      presented.Index,
		Total:      presented.Total,
		ID:         presented.ID,
		Question:   presented.Question,
		Options:    presented.Options,
		Category:   presented.Category,
		Difficulty: presented.Difficulty.String(),
	}
	if !presented.Deadline.IsZero() {
		deadline := presented.Deadline
		q.Deadline = &deadline
	}
	return q
}

func toOutcome(outcome quiz.Outcome) Outcome {
	return Outcome{
		Index:         outcome.Index,
		Selected:      outcome.Selected,
		Correct:       outcome.Correct,
		TimedOut:      outcome.TimedOut,
		CorrectAnswer: outcome.CorrectAnswer,
		CorrectOption: outcome.CorrectOption,
		Score:         outcome.Score,
		Finished:      outcome.Finished,
	}
}

func toEndQuizResponse(summary quiz.Summary) *EndQuizResponse {
	response := &EndQuizResponse{
		Score:      summary.Score,
		Correct:    summary.Correct,
		Total:      summary.Total,
		Answered:   summary.Answered,
		Abandoned:  summary.Abandoned,
		Accuracy:   summary.Accuracy(),
		ByCategory: make(map[string]CategoryScore, len(summary.ByCategory)),
	}
	for category, score := range summary.ByCategory {
		response.ByCategory[category] = CategoryScore{Correct: score.Correct, Total: score.Total}
	}
	return response
}
