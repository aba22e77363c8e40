package cli

import (
	"fmt"
	"io"

	"github.com/at-ishikawa/quizler/internal/statistics"
)

const reportRowFormat = "%-12s  %7s  %9s  %9s  %8s  %10s\n"

// WriteStatisticsReport prints quiz statistics as plain text tables.
func WriteStatisticsReport(w io.Writer, result statistics.StatisticsResult) {
	if result.Aggregate.Quizzes == 0 {
		fmt.Fprintln(w, "No quiz records found for the specified period.")
		if result.Abandoned > 0 {
			fmt.Fprintf(w, "Abandoned quizzes: %d\n", result.Abandoned)
		}
		return
	}

	fmt.Fprintln(w, "Quiz Statistics Report")
	fmt.Fprintln(w, "======================")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Quizzes:          %d\n", result.Aggregate.Quizzes)
	fmt.Fprintf(w, "Questions:        %d\n", result.Aggregate.Questions)
	fmt.Fprintf(w, "Correct answers:  %d\n", result.Aggregate.Correct)
	fmt.Fprintf(w, "Average accuracy: %.1f%%\n", result.Aggregate.AverageAccuracy)
	fmt.Fprintf(w, "Best score:       %d\n", result.Aggregate.BestScore)
	if result.BestCategory != "" {
		fmt.Fprintf(w, "Best category:    %s\n", result.BestCategory)
	}
	if result.Abandoned > 0 {
		fmt.Fprintf(w, "Abandoned:        %d\n", result.Abandoned)
	}

	fmt.Fprintln(w)
	writeHeader(w, "Category")
	for _, c := range result.Categories {
		writeTotals(w, c.Category, c.Totals)
	}

	fmt.Fprintln(w)
	writeHeader(w, "Difficulty")
	for _, d := range result.Difficulties {
		writeTotals(w, d.Difficulty.String(), d.Totals)
	}

	fmt.Fprintln(w)
	writeHeader(w, "Period")
	for _, p := range result.Periods {
		writeTotals(w, p.Period, p.Totals)
	}
}

func writeHeader(w io.Writer, name string) {
	fmt.Fprintf(w, reportRowFormat, name, "Quizzes", "Questions", "Correct", "Accuracy", "Best score")
	fmt.Fprintf(w, reportRowFormat, "------------", "-------", "---------", "---------", "--------", "----------")
}

func writeTotals(w io.Writer, name string, totals statistics.Totals) {
	fmt.Fprintf(w, reportRowFormat,
		name,
		fmt.Sprint(totals.Quizzes),
		fmt.Sprint(totals.Questions),
		fmt.Sprint(totals.Correct),
		fmt.Sprintf("%.1f%%", totals.AverageAccuracy),
		fmt.Sprint(totals.BestScore),
	)
}
