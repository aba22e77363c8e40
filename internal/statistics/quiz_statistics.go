package statistics

import (
	"fmt"
	"sort"

	"github.com/at-ishikawa/quizler/internal/history"
	"github.com/at-ishikawa/quizler/internal/question"
)

// Totals holds the counts of a group of quiz sessions
type Totals struct {
	Quizzes   int
	Questions int
	Correct   int
	Score     int
	BestScore int
	// AverageAccuracy is the mean of the per-quiz accuracy in percent
	AverageAccuracy float64
}

// PeriodStatistics holds statistics for a month such as "2025-01"
type PeriodStatistics struct {
	Period string
	Totals
}

type CategoryStatistics struct {
	Category string
	Totals
}

type DifficultyStatistics struct {
	Difficulty question.Difficulty
	Totals
}

// StatisticsResult holds both per-group and aggregate statistics
type StatisticsResult struct {
	Aggregate    Totals
	BestCategory string
	Categories   []CategoryStatistics
	Difficulties []DifficultyStatistics
	Periods      []PeriodStatistics
	Abandoned    int
}

type accumulator struct {
	Totals
	accuracySum float64
}

func (a *accumulator) add(entry history.Entry) {
	a.Quizzes++
	a.Questions += entry.QuestionCount
	a.Correct += entry.Correct
	a.Score += entry.Score
	if entry.Score > a.BestScore {
		a.BestScore = entry.Score
	}
	a.accuracySum += entry.Accuracy()
}

func (a *accumulator) totals() Totals {
	totals := a.Totals
	if a.Quizzes > 0 {
		totals.AverageAccuracy = a.accuracySum / float64(a.Quizzes)
	}
	return totals
}

// CalculateStatistics aggregates history entries.
// It accepts optional year and month filters (0 means no filter).
// Abandoned sessions are counted separately and do not contribute to the totals.
func CalculateStatistics(entries []history.Entry, year, month int) StatisticsResult {
	var aggregate accumulator
	categories := make(map[string]*accumulator)
	categoryNames := make(map[string]string)
	difficulties := make(map[question.Difficulty]*accumulator)
	periods := make(map[string]*accumulator)
	abandoned := 0

	for _, entry := range entries {
		if !matchesFilter(entry.Timestamp.Year(), int(entry.Timestamp.Month()), year, month) {
			continue
		}
		if entry.Abandoned {
			abandoned++
			continue
		}

		aggregate.add(entry)

		slug := question.Slug(entry.Category)
		if categories[slug] == nil {
			categories[slug] = &accumulator{}
			categoryNames[slug] = entry.Category
		}
		categories[slug].add(entry)

		if difficulties[entry.Difficulty] == nil {
			difficulties[entry.Difficulty] = &accumulator{}
		}
		difficulties[entry.Difficulty].add(entry)

		period := fmt.Sprintf("%d-%02d", entry.Timestamp.Year(), int(entry.Timestamp.Month()))
		if periods[period] == nil {
			periods[period] = &accumulator{}
		}
		periods[period].add(entry)
	}

	result := StatisticsResult{
		Aggregate: aggregate.totals(),
		Abandoned: abandoned,
	}

	for slug, acc := range categories {
		result.Categories = append(result.Categories, CategoryStatistics{
			Category: categoryNames[slug],
			Totals:   acc.totals(),
		})
	}
	sort.Slice(result.Categories, func(i, j int) bool {
		return result.Categories[i].Category < result.Categories[j].Category
	})
	result.BestCategory = bestCategory(result.Categories)

	for _, difficulty := range question.AllDifficulties {
		if acc, ok := difficulties[difficulty]; ok {
			result.Difficulties = append(result.Difficulties, DifficultyStatistics{
				Difficulty: difficulty,
				Totals:     acc.totals(),
			})
		}
	}

	for period, acc := range periods {
		result.Periods = append(result.Periods, PeriodStatistics{
			Period: period,
			Totals: acc.totals(),
		})
	}
	// Sort by period descending (newest first)
	sort.Slice(result.Periods, func(i, j int) bool {
		return result.Periods[i].Period > result.Periods[j].Period
	})

	return result
}

// bestCategory is the category with the highest average accuracy; ties go to the one with more quizzes.
func bestCategory(categories []CategoryStatistics) string {
	best := ""
	var bestTotals Totals
	for _, c := range categories {
		if best == "" ||
			c.AverageAccuracy > bestTotals.AverageAccuracy ||
			(c.AverageAccuracy == bestTotals.AverageAccuracy && c.Quizzes > bestTotals.Quizzes) {
			best = c.Category
			bestTotals = c.Totals
		}
	}
	return best
}

func matchesFilter(entryYear, entryMonth, filterYear, filterMonth int) bool {
	if filterYear == 0 {
		return true
	}
	if entryYear != filterYear {
		return false
	}
	if filterMonth == 0 {
		return true
	}
	return entryMonth == filterMonth
}
