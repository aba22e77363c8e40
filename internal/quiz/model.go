// Package quiz runs timed multiple-choice quiz sessions.
package quiz

import (
	"errors"
	"time"

	"github.com/at-ishikawa/quizler/internal/question"
)

var (
	ErrInvalidRequest  = errors.New("invalid quiz request")
	ErrNoQuestions     = errors.New("no questions available")
	ErrSessionFinished = errors.New("quiz session is finished")
	ErrInvalidAnswer   = errors.New("answer is not one of the options")
	// ErrQuestionClosed is returned when an answer names a question that is no longer open.
	ErrQuestionClosed = errors.New("question is already closed")
)

const (
	DefaultQuestionCount    = 10
	DefaultPerQuestion      = 30 * time.Second
	DefaultPointsPerCorrect = 1
)

type State int

const (
	StateNotStarted State = iota
	StateInProgress
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateInProgress:
		return "in_progress"
	case StateFinished:
		return "finished"
	}
	return "unknown"
}

type Config struct {
	PointsPerCorrect int           `mapstructure:"points_per_correct" validate:"gte=0"`
	DefaultCount     int           `mapstructure:"default_count" validate:"gte=0"`
	PerQuestion      time.Duration `mapstructure:"per_question" validate:"gte=0"`
	// RecordAbandoned writes a history entry for sessions ended before the last question.
	RecordAbandoned bool `mapstructure:"record_abandoned"`
}

// StartRequest describes a quiz to start. Zero Count and PerQuestion use the configured defaults.
type StartRequest struct {
	User        string
	Category    string
	Difficulty  question.Difficulty
	Count       int
	PerQuestion time.Duration
}

// Presented is the question currently asked, without its answer.
type Presented struct {
	Index      int
	Total      int
	ID         string
	Question   string
	Options    []string
	Category   string
	Difficulty question.Difficulty
	// Deadline is zero when questions are not timed.
	Deadline time.Time
}

// Outcome is the result of closing one question.
type Outcome struct {
	Index         int
	Selected      int
	Correct       bool
	TimedOut      bool
	CorrectAnswer int
	CorrectOption string
	Score         int
	Finished      bool
}

type CategoryScore struct {
	Correct int
	Total   int
}

type Summary struct {
	Score      int
	Correct    int
	Total      int
	Answered   int
	Abandoned  bool
	ByCategory map[string]CategoryScore
}

// Accuracy is the share of correct answers in percent.
func (s Summary) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total) * 100
}
