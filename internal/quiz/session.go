package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/at-ishikawa/quizler/internal/history"
	"github.com/at-ishikawa/quizler/internal/question"
)

type answer struct {
	selected int
	correct  bool
	timedOut bool
}

// Session is one run of a quiz. It is owned by the caller of Controller.Start
// and is safe for concurrent use.
type Session struct {
	user        string
	category    string
	difficulty  question.Difficulty
	questions   []question.Record
	perQuestion time.Duration
	points      int

	clock    Clock
	recorder func(ctx context.Context, summary Summary) error

	mu       sync.Mutex
	state    State
	index    int
	deadline time.Time
	answers  []answer
	score    int
	correct  int
	// seq identifies the open question; countdowns armed for an older seq are ignored.
	seq     uint64
	timer   Timer
	expired chan Outcome

	ended   bool
	summary Summary
}

func newSession(request StartRequest, questions []question.Record, points int, clock Clock) *Session {
	return &Session{
		user:        request.User,
		category:    request.Category,
		difficulty:  request.Difficulty,
		questions:   questions,
		perQuestion: request.PerQuestion,
		points:      points,
		clock:       clock,
		state:       StateNotStarted,
		answers:     make([]answer, 0, len(questions)),
		expired:     make(chan Outcome, len(questions)),
	}
}

func (s *Session) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateNotStarted {
		return
	}
	s.state = StateInProgress
	s.armLocked()
}

func (s *Session) User() string                    { return s.user }
func (s *Session) Category() string                { return s.category }
func (s *Session) Difficulty() question.Difficulty { return s.difficulty }

// Total is the number of questions of the session.
func (s *Session) Total() int {
	return len(s.questions)
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Expired delivers the outcome of every question closed by its countdown.
func (s *Session) Expired() <-chan Outcome {
	return s.expired
}

// Current returns the open question. It returns false once the session finished.
func (s *Session) Current() (Presented, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return Presented{}, false
	}
	record := s.questions[s.index]
	return Presented{
		Index:      s.index,
		Total:      len(s.questions),
		ID:         record.ID,
		Question:   record.Question,
		Options:    append([]string(nil), record.Options...),
		Category:   record.Category,
		Difficulty: record.Difficulty,
		Deadline:   s.deadline,
	}, true
}

// Answer closes the open question with the selected option index.
// An answer arriving after the deadline counts as a timeout.
func (s *Session) Answer(option int) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return Outcome{}, ErrSessionFinished
	}
	return s.answerLocked(option)
}

// AnswerAt is Answer for the question at index. It fails with ErrQuestionClosed
// when that question was already closed, e.g. by its countdown.
func (s *Session) AnswerAt(index, option int) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return Outcome{}, ErrSessionFinished
	}
	if index != s.index {
		return Outcome{}, fmt.Errorf("%w: %d", ErrQuestionClosed, index)
	}
	return s.answerLocked(option)
}

func (s *Session) answerLocked(option int) (Outcome, error) {
	record := s.questions[s.index]
	if option < 0 || option >= len(record.Options) {
		return Outcome{}, fmt.Errorf("%w: %d", ErrInvalidAnswer, option)
	}
	if !s.deadline.IsZero() && s.clock.Now().After(s.deadline) {
		return s.closeLocked(-1, true), nil
	}
	return s.closeLocked(option, false), nil
}

// Timeout closes the open question as unanswered. It is also used to skip a question.
func (s *Session) Timeout() (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return Outcome{}, ErrSessionFinished
	}
	return s.closeLocked(-1, true), nil
}

// TimeoutAt is Timeout for the question at index.
func (s *Session) TimeoutAt(index int) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return Outcome{}, ErrSessionFinished
	}
	if index != s.index {
		return Outcome{}, fmt.Errorf("%w: %d", ErrQuestionClosed, index)
	}
	return s.closeLocked(-1, true), nil
}

// End finishes the session and returns its summary. Ending an unfinished session
// abandons it. The outcome is recorded once; later calls return the same summary.
func (s *Session) End(ctx context.Context) (Summary, error) {
	s.mu.Lock()
	if s.ended {
		summary := s.summary
		s.mu.Unlock()
		return summary, nil
	}
	abandoned := s.state != StateFinished
	if abandoned {
		s.stopLocked()
		s.state = StateFinished
	}
	s.ended = true
	s.summary = s.summaryLocked(abandoned)
	summary := s.summary
	recorder := s.recorder
	s.mu.Unlock()

	if recorder == nil {
		return summary, nil
	}
	if err := recorder(ctx, summary); err != nil {
		return summary, fmt.Errorf("record history > %w", err)
	}
	return summary, nil
}

func (s *Session) closeLocked(selected int, timedOut bool) Outcome {
	s.stopLocked()
	s.seq++

	record := s.questions[s.index]
	correct := !timedOut && selected == record.Answer
	if correct {
		s.score += s.points
		s.correct++
	}
	s.answers = append(s.answers, answer{selected: selected, correct: correct, timedOut: timedOut})

	outcome := Outcome{
		Index:         s.index,
		Selected:      selected,
		Correct:       correct,
		TimedOut:      timedOut,
		CorrectAnswer: record.Answer,
		CorrectOption: record.CorrectOption(),
		Score:         s.score,
	}

	s.index++
	if s.index >= len(s.questions) {
		s.state = StateFinished
		s.deadline = time.Time{}
		outcome.Finished = true
		return outcome
	}
	s.armLocked()
	return outcome
}

func (s *Session) armLocked() {
	if s.perQuestion <= 0 {
		s.deadline = time.Time{}
		return
	}
	s.deadline = s.clock.Now().Add(s.perQuestion)
	seq := s.seq
	s.timer = s.clock.AfterFunc(s.perQuestion, func() {
		s.expire(seq)
	})
}

func (s *Session) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// expire closes the question armed with seq unless it was already closed.
func (s *Session) expire(seq uint64) {
	s.mu.Lock()
	if s.state != StateInProgress || s.seq != seq {
		s.mu.Unlock()
		return
	}
	outcome := s.closeLocked(-1, true)
	s.mu.Unlock()

	select {
	case s.expired <- outcome:
	default:
		slog.Default().Warn("dropped expired outcome", "index", outcome.Index)
	}
}

func (s *Session) summaryLocked(abandoned bool) Summary {
	summary := Summary{
		Score:      s.score,
		Correct:    s.correct,
		Total:      len(s.questions),
		Answered:   len(s.answers),
		Abandoned:  abandoned,
		ByCategory: make(map[string]CategoryScore),
	}
	for i, a := range s.answers {
		category := s.questions[i].Category
		score := summary.ByCategory[category]
		score.Total++
		if a.correct {
			score.Correct++
		}
		summary.ByCategory[category] = score
	}
	return summary
}

func (s *Session) historyEntry(summary Summary) history.Entry {
	return history.Entry{
		Timestamp:     s.clock.Now(),
		User:          s.user,
		Category:      s.category,
		Difficulty:    s.difficulty,
		Score:         summary.Score,
		Correct:       summary.Correct,
		QuestionCount: summary.Total,
		Abandoned:     summary.Abandoned,
	}
}
