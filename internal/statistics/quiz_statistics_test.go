package statistics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/at-ishikawa/quizler/internal/history"
	"github.com/at-ishikawa/quizler/internal/question"
)

func mustParseDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func entry(date, category string, difficulty question.Difficulty, correct, total int) history.Entry {
	return history.Entry{
		Timestamp:     mustParseDate(date),
		Category:      category,
		Difficulty:    difficulty,
		Score:         correct,
		Correct:       correct,
		QuestionCount: total,
	}
}

func TestCalculateStatistics(t *testing.T) {
	entries := []history.Entry{
		entry("2025-01-10", "Science", question.DifficultyEasy, 4, 5),
		entry("2025-01-20", "History", question.DifficultyHard, 1, 5),
		entry("2025-02-03", "science", question.DifficultyEasy, 5, 5),
		{Timestamp: mustParseDate("2025-02-04"), Category: "Music", Difficulty: question.DifficultyMedium, Correct: 1, QuestionCount: 5, Abandoned: true},
	}

	tests := []struct {
		name              string
		year              int
		month             int
		expectedAggregate Totals
		expectedPeriods   []string
		expectedBest      string
		expectedAbandoned int
	}{
		{
			name: "all time",
			expectedAggregate: Totals{
				Quizzes: 3, Questions: 15, Correct: 10, Score: 10, BestScore: 5,
				AverageAccuracy: (80.0 + 20.0 + 100.0) / 3,
			},
			expectedPeriods:   []string{"2025-02", "2025-01"},
			expectedBest:      "Science",
			expectedAbandoned: 1,
		},
		{
			name:  "filtered by month",
			year:  2025,
			month: 1,
			expectedAggregate: Totals{
				Quizzes: 2, Questions: 10, Correct: 5, Score: 5, BestScore: 4,
				AverageAccuracy: 50,
			},
			expectedPeriods: []string{"2025-01"},
			expectedBest:    "Science",
		},
		{
			name:              "filtered by another year",
			year:              2024,
			expectedAggregate: Totals{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateStatistics(entries, tt.year, tt.month)

			assert.InDelta(t, tt.expectedAggregate.AverageAccuracy, result.Aggregate.AverageAccuracy, 0.001)
			tt.expectedAggregate.AverageAccuracy = result.Aggregate.AverageAccuracy
			assert.Equal(t, tt.expectedAggregate, result.Aggregate)

			var periods []string
			for _, p := range result.Periods {
				periods = append(periods, p.Period)
			}
			assert.Equal(t, tt.expectedPeriods, periods)
			assert.Equal(t, tt.expectedBest, result.BestCategory)
			assert.Equal(t, tt.expectedAbandoned, result.Abandoned)
		})
	}
}

func TestCalculateStatistics_Groups(t *testing.T) {
	entries := []history.Entry{
		entry("2025-01-10", "Science", question.DifficultyEasy, 4, 5),
		entry("2025-01-11", "Science", question.DifficultyHard, 2, 5),
		entry("2025-01-12", "History", question.DifficultyHard, 3, 5),
	}

	result := CalculateStatistics(entries, 0, 0)

	assert.Len(t, result.Categories, 2)
	assert.Equal(t, "History", result.Categories[0].Category)
	assert.Equal(t, 1, result.Categories[0].Quizzes)
	assert.Equal(t, "Science", result.Categories[1].Category)
	assert.Equal(t, 2, result.Categories[1].Quizzes)
	assert.Equal(t, 6, result.Categories[1].Correct)

	assert.Len(t, result.Difficulties, 2)
	assert.Equal(t, question.DifficultyEasy, result.Difficulties[0].Difficulty)
	assert.Equal(t, question.DifficultyHard, result.Difficulties[1].Difficulty)
	assert.Equal(t, 2, result.Difficulties[1].Quizzes)

	// History 60% vs Science (80+40)/2 = 60%: ties go to more quizzes.
	assert.Equal(t, "Science", result.BestCategory)
}
