package quiz

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/quizler/internal/generator"
	"github.com/at-ishikawa/quizler/internal/history"
	mock_history "github.com/at-ishikawa/quizler/internal/mocks/history"
	mock_quiz "github.com/at-ishikawa/quizler/internal/mocks/quiz"
	"github.com/at-ishikawa/quizler/internal/question"
	"github.com/at-ishikawa/quizler/internal/testutil"
)

type fakeTimer struct {
	mu      sync.Mutex
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

// fire runs the callback even when the timer was stopped, like a timer that
// already fired while Stop was being called.
func (t *fakeTimer) fire() {
	t.f()
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &fakeTimer{f: f}
	c.timers = append(c.timers, timer)
	return timer
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) lastTimer() *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timers[len(c.timers)-1]
}

func noShuffle(n int, swap func(i, j int)) {}

func records(category string, difficulty question.Difficulty, n int) []question.Record {
	result := make([]question.Record, 0, n)
	for i := 0; i < n; i++ {
		result = append(result, question.Record{
			ID:         fmt.Sprintf("%s-%d", difficulty, i),
			Question:   fmt.Sprintf("%s %s question %d?", category, difficulty, i),
			Options:    []string{"A", "B", "C", "D"},
			Answer:     i % 4,
			Category:   category,
			Difficulty: difficulty,
			Source:     question.SourceHuman,
		})
	}
	return result
}

func resultChannel(result generator.Result) <-chan generator.Result {
	ch := make(chan generator.Result, 1)
	ch <- result
	close(ch)
	return ch
}

func TestController_Start(t *testing.T) {
	tests := []struct {
		name      string
		request   StartRequest
		stored    []question.Record
		storeErr  error
		generated []generator.Result

		wantQuestions int
		wantErr       error
	}{
		{
			name:          "enough stored questions need no generation",
			request:       StartRequest{Category: "Science", Difficulty: question.DifficultyEasy, Count: 5},
			stored:        records("Science", question.DifficultyEasy, 5),
			wantQuestions: 5,
		},
		{
			name:          "more stored questions than requested",
			request:       StartRequest{Category: "Science", Difficulty: question.DifficultyEasy, Count: 3},
			stored:        records("Science", question.DifficultyEasy, 8),
			wantQuestions: 3,
		},
		{
			name:    "shortfall is generated",
			request: StartRequest{Category: "History", Difficulty: question.DifficultyHard, Count: 5},
			stored:  records("History", question.DifficultyHard, 2),
			generated: []generator.Result{
				{Record: question.Record{Question: "Generated 1?", Options: []string{"a", "b"}, Answer: 0, Category: "History", Difficulty: question.DifficultyHard}, Source: "model"},
				{Record: question.Record{Question: "Generated 2?", Options: []string{"a", "b"}, Answer: 1, Category: "History", Difficulty: question.DifficultyHard}, Source: "trivia"},
				{Record: question.Record{Question: "Generated 3?", Options: []string{"a", "b"}, Answer: 0, Category: "History", Difficulty: question.DifficultyHard}, Source: "static"},
			},
			wantQuestions: 5,
		},
		{
			name:    "failed and duplicate generations reduce the count",
			request: StartRequest{Category: "History", Difficulty: question.DifficultyHard, Count: 5},
			stored:  records("History", question.DifficultyHard, 2),
			generated: []generator.Result{
				{Err: &generator.GenerationError{Category: "History", Difficulty: question.DifficultyHard}},
				{Record: question.Record{Question: "history HARD question 0?", Options: []string{"a", "b"}, Answer: 0}, Source: "static"},
				{Record: question.Record{Question: "Generated?", Options: []string{"a", "b"}, Answer: 0}, Source: "static"},
			},
			wantQuestions: 3,
		},
		{
			name:    "nothing stored and nothing generated",
			request: StartRequest{Category: "Music", Difficulty: question.DifficultyMedium, Count: 2},
			generated: []generator.Result{
				{Err: &generator.GenerationError{Category: "Music", Difficulty: question.DifficultyMedium}},
				{Err: &generator.GenerationError{Category: "Music", Difficulty: question.DifficultyMedium}},
			},
			wantErr: ErrNoQuestions,
		},
		{
			name:     "store error is returned",
			request:  StartRequest{Category: "Science", Difficulty: question.DifficultyEasy, Count: 5},
			storeErr: &question.StoreError{Category: "Science", Op: "read", Err: errors.New("unexpected end of JSON input")},
			wantErr:  &question.StoreError{},
		},
		{
			name:    "missing category",
			request: StartRequest{Difficulty: question.DifficultyEasy, Count: 5},
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "unknown difficulty",
			request: StartRequest{Category: "Science", Difficulty: "extreme", Count: 5},
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "negative count",
			request: StartRequest{Category: "Science", Difficulty: question.DifficultyEasy, Count: -1},
			wantErr: ErrInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := mock_quiz.NewMockQuestionStore(ctrl)
			questionGenerator := mock_quiz.NewMockQuestionGenerator(ctrl)

			invalidRequest := errors.Is(tt.wantErr, ErrInvalidRequest)
			if !invalidRequest {
				store.EXPECT().Get(tt.request.Category, tt.request.Difficulty).Return(tt.stored, tt.storeErr)
			}

			var mu sync.Mutex
			calls := 0
			questionGenerator.EXPECT().
				GenerateAsync(gomock.Any(), tt.request.Category, tt.request.Difficulty, gomock.Any()).
				DoAndReturn(func(ctx context.Context, category string, difficulty question.Difficulty, opts ...generator.Option) <-chan generator.Result {
					mu.Lock()
					defer mu.Unlock()
					result := tt.generated[calls]
					calls++
					return resultChannel(result)
				}).
				Times(len(tt.generated))
			questionGenerator.EXPECT().
				Save(gomock.Any()).
				DoAndReturn(func(record question.Record) (question.Record, error) {
					record.ID = "saved-" + record.Question
					return record, nil
				}).
				AnyTimes()

			controller := NewController(store, questionGenerator, nil, Config{}, WithClock(newFakeClock()), withShuffle(noShuffle))
			session, err := controller.Start(context.Background(), tt.request)

			if tt.wantErr != nil {
				var storeErr *question.StoreError
				if errors.As(tt.wantErr, &storeErr) {
					assert.ErrorAs(t, err, &storeErr)
				} else {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				assert.Nil(t, session)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantQuestions, session.Total())
			assert.Equal(t, StateInProgress, session.State())

			current, ok := session.Current()
			require.True(t, ok)
			assert.Equal(t, 0, current.Index)
			assert.Equal(t, tt.wantQuestions, current.Total)
			assert.False(t, current.Deadline.IsZero())

			seen := map[string]bool{}
			for _, record := range session.questions {
				assert.False(t, seen[record.Key()], "questions in a session are unique")
				seen[record.Key()] = true
				assert.NotEmpty(t, record.ID)
			}
		})
	}
}

func TestController_StartTopsUpFromFallbackFile(t *testing.T) {
	all := testutil.Records("Science", question.DifficultyHard, 5)

	for i := 0; i < 20; i++ {
		tmpDir := t.TempDir()
		store := question.NewStore(question.StoreConfig{DataDirectory: filepath.Join(tmpDir, "data")})
		_, err := store.AddAll(all[:2])
		require.NoError(t, err)

		fallbackFile := filepath.Join(tmpDir, "fallback_questions.json")
		testutil.WriteFallbackFile(t, fallbackFile, map[string]map[question.Difficulty][]question.Record{
			"Science": {question.DifficultyHard: all[2:]},
		})
		questionGenerator := generator.NewGenerator(store, generator.NewStaticSource(fallbackFile))

		controller := NewController(store, questionGenerator, nil, Config{}, WithClock(newFakeClock()))
		session, err := controller.Start(context.Background(), StartRequest{Category: "Science", Difficulty: question.DifficultyHard, Count: 5})
		require.NoError(t, err)
		require.Equal(t, 5, session.Total(), "every fallback question is used once")

		stored, err := store.Get("Science", question.DifficultyHard)
		require.NoError(t, err)
		assert.Len(t, stored, 5)
	}
}

func TestController_StartPrefersUnseenQuestions(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock_quiz.NewMockQuestionStore(ctrl)
	stored := records("Science", question.DifficultyEasy, 4)
	store.EXPECT().Get("Science", question.DifficultyEasy).Return(stored, nil).Times(2)

	dir := t.TempDir()
	controller := NewController(store, nil, nil, Config{},
		WithClock(newFakeClock()),
		withShuffle(noShuffle),
		WithSeenTracker(func(user string) history.SeenTracker {
			return history.NewFileSeenTracker(dir, user)
		}),
	)

	request := StartRequest{User: "alice", Category: "Science", Difficulty: question.DifficultyEasy, Count: 2}
	first, err := controller.Start(context.Background(), request)
	require.NoError(t, err)
	assert.Equal(t, []question.Record{stored[0], stored[1]}, first.questions)

	second, err := controller.Start(context.Background(), request)
	require.NoError(t, err)
	assert.Equal(t, []question.Record{stored[2], stored[3]}, second.questions)
}

func TestController_HistoryIsWrittenPerFinishedSession(t *testing.T) {
	tests := []struct {
		name            string
		finished        int
		abandoned       int
		recordAbandoned bool
		wantEntries     int
	}{
		{name: "finished sessions", finished: 3, wantEntries: 3},
		{name: "abandoned sessions are not recorded", finished: 1, abandoned: 2, wantEntries: 1},
		{name: "abandoned sessions are recorded when configured", finished: 1, abandoned: 2, recordAbandoned: true, wantEntries: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := mock_quiz.NewMockQuestionStore(ctrl)
			store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(records("Science", question.DifficultyEasy, 3), nil).AnyTimes()

			repository := history.NewFileRepository(filepath.Join(t.TempDir(), "history.json"))
			controller := NewController(store, nil, repository, Config{RecordAbandoned: tt.recordAbandoned},
				WithClock(newFakeClock()), withShuffle(noShuffle))
			ctx := context.Background()
			request := StartRequest{User: "bob", Category: "Science", Difficulty: question.DifficultyEasy, Count: 3}

			for i := 0; i < tt.finished; i++ {
				session, err := controller.Start(ctx, request)
				require.NoError(t, err)
				for session.State() == StateInProgress {
					_, err := session.Answer(0)
					require.NoError(t, err)
				}
				summary, err := session.End(ctx)
				require.NoError(t, err)
				assert.False(t, summary.Abandoned)
				// A second End does not write again.
				_, err = session.End(ctx)
				require.NoError(t, err)
			}
			for i := 0; i < tt.abandoned; i++ {
				session, err := controller.Start(ctx, request)
				require.NoError(t, err)
				_, err = session.Answer(0)
				require.NoError(t, err)
				summary, err := session.End(ctx)
				require.NoError(t, err)
				assert.True(t, summary.Abandoned)
				assert.Equal(t, 1, summary.Answered)
			}

			entries, err := repository.List(ctx, history.Filter{})
			require.NoError(t, err)
			assert.Len(t, entries, tt.wantEntries)
			for _, entry := range entries {
				assert.Equal(t, "bob", entry.User)
				assert.Equal(t, 3, entry.QuestionCount)
			}
		})
	}
}

func TestController_HistoryFailureIsReported(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock_quiz.NewMockQuestionStore(ctrl)
	store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(records("Science", question.DifficultyEasy, 1), nil)
	repository := mock_history.NewMockRepository(ctrl)
	repository.EXPECT().Append(gomock.Any(), gomock.Any()).Return(errors.New("disk full")).Times(1)

	controller := NewController(store, nil, repository, Config{}, WithClock(newFakeClock()))
	session, err := controller.Start(context.Background(), StartRequest{Category: "Science", Difficulty: question.DifficultyEasy, Count: 1})
	require.NoError(t, err)
	_, err = session.Answer(0)
	require.NoError(t, err)

	summary, err := session.End(context.Background())
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, 1, summary.Total)

	_, err = session.End(context.Background())
	assert.NoError(t, err)
}
