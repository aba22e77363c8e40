package generator

import (
	"fmt"
	"strings"

	"github.com/at-ishikawa/quizler/internal/question"
)

const systemPrompt = `You write factual multiple-choice quiz questions.
Answer with exactly one question in this format and nothing else:

Question: <question text>
A) <option>
B) <option>
C) <option>
D) <option>
Answer: <letter of the correct option>

All four options must be different and exactly one of them must be correct.`

// categoryHints narrows the topic for well-known categories.
var categoryHints = map[string]string{
	"geography": "It should be about countries, capitals, landmarks, rivers, mountains, or other geographical features.",
	"history":   "It should be about historical events, figures, periods, or discoveries.",
	"science":   "It should be about physics, chemistry, biology, astronomy, or other scientific fields.",
}

var difficultyHints = map[question.Difficulty]string{
	question.DifficultyEasy:   "The question should be answerable by most people.",
	question.DifficultyMedium: "The question should require some knowledge of the topic.",
	question.DifficultyHard:   "The question should challenge someone who knows the topic well.",
}

// buildPrompt embeds category and difficulty into the user prompt. The simplified
// prompt drops the hints and repeats the format, which helps when earlier output did not parse.
func buildPrompt(category string, difficulty question.Difficulty, simplified bool) string {
	if simplified {
		return fmt.Sprintf(`Generate one multiple-choice %s question about %s.
Question: <question text>
A) <option>
B) <option>
C) <option>
D) <option>
Answer: <letter>`, difficulty, category)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate one factual multiple-choice %s question about %s.\n", difficulty, category)
	if hint, ok := categoryHints[question.Slug(category)]; ok {
		b.WriteString(hint)
		b.WriteString("\n")
	}
	if hint, ok := difficultyHints[difficulty]; ok {
		b.WriteString(hint)
		b.WriteString("\n")
	}
	b.WriteString("Example:\nQuestion: What is the capital of France?\nA) London\nB) Paris\nC) Berlin\nD) Madrid\nAnswer: B")
	return b.String()
}
