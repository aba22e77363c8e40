package generator

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/at-ishikawa/quizler/internal/question"
)

// NumOptions is the number of options a generated question must have.
const NumOptions = 4

var (
	questionLine = regexp.MustCompile(`(?i)^(?:\d+[.)]\s*)?question\s*\d*\s*[:.-]\s*(.*)$`)
	optionLine   = regexp.MustCompile(`^\(?([A-Da-d])[).:\]]\s*(.+)$`)
	answerLine   = regexp.MustCompile(`(?i)^(?:correct\s+)?answer\s*[:.-]\s*(.+)$`)
	answerLetter = regexp.MustCompile(`^\(?([A-Da-d])\)?(?:[).:\s]|$)`)
)

// ParseCompletion turns generated text into a question. The expected form is
//
//	Question: <text>
//	A) <option>
//	B) <option>
//	C) <option>
//	D) <option>
//	Answer: <letter>
//
// A JSON object or array with question, options and correct_answer is accepted as well.
// Category, difficulty and provenance are left empty.
func ParseCompletion(text string) (question.Record, error) {
	record, err := parseDelimited(text)
	if err == nil {
		return record, nil
	}
	if strings.ContainsAny(text, "{[") {
		if jsonRecord, jsonErr := parseJSON(text); jsonErr == nil {
			return jsonRecord, nil
		}
	}
	return question.Record{}, err
}

func parseDelimited(text string) (question.Record, error) {
	var stem, preamble []string
	var options []string
	var answer string
	inStem := false
	hasQuestionLine := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.ReplaceAll(line, "**", ""))
		if line == "" {
			continue
		}
		if m := questionLine.FindStringSubmatch(line); m != nil && !hasQuestionLine {
			hasQuestionLine = true
			inStem = true
			if m[1] != "" {
				stem = append(stem, m[1])
			}
			continue
		}
		if m := answerLine.FindStringSubmatch(line); m != nil {
			if answer == "" {
				answer = strings.TrimSpace(m[1])
			}
			inStem = false
			if len(options) == NumOptions {
				break
			}
			continue
		}
		if m := optionLine.FindStringSubmatch(line); m != nil {
			inStem = false
			index := int(strings.ToUpper(m[1])[0] - 'A')
			if index == len(options) {
				options = append(options, strings.TrimSpace(m[2]))
			}
			continue
		}
		if inStem {
			stem = append(stem, line)
			continue
		}
		if !hasQuestionLine && len(options) == 0 {
			preamble = append(preamble, line)
		}
	}

	if !hasQuestionLine {
		stem = preamble
	}
	prompt := strings.Join(stem, " ")
	if prompt == "" {
		return question.Record{}, fmt.Errorf("%w: missing question text", ErrParse)
	}
	if len(options) != NumOptions {
		return question.Record{}, fmt.Errorf("%w: expected %d options, got %d", ErrParse, NumOptions, len(options))
	}
	if answer == "" {
		return question.Record{}, fmt.Errorf("%w: missing answer", ErrParse)
	}
	index, err := resolveAnswer(answer, options)
	if err != nil {
		return question.Record{}, err
	}

	return question.Record{
		Question: prompt,
		Options:  options,
		Answer:   index,
	}, nil
}

// resolveAnswer accepts the option text itself or its letter.
func resolveAnswer(answer string, options []string) (int, error) {
	normalized := question.NormalizeText(answer)
	for i, option := range options {
		if question.NormalizeText(option) == normalized {
			return i, nil
		}
	}
	if m := answerLetter.FindStringSubmatch(answer); m != nil {
		index := int(strings.ToUpper(m[1])[0] - 'A')
		if index < len(options) {
			return index, nil
		}
	}
	return -1, fmt.Errorf("%w: answer %q does not match any option", ErrParse, answer)
}

func parseJSON(text string) (question.Record, error) {
	start := strings.IndexAny(text, "[{")
	if start < 0 {
		return question.Record{}, fmt.Errorf("%w: no JSON found", ErrParse)
	}
	decoder := json.NewDecoder(strings.NewReader(text[start:]))

	var record question.Record
	if text[start] == '[' {
		var records []question.Record
		if err := decoder.Decode(&records); err != nil {
			return question.Record{}, fmt.Errorf("%w: json.Decode > %w", ErrParse, err)
		}
		if len(records) == 0 {
			return question.Record{}, fmt.Errorf("%w: empty JSON array", ErrParse)
		}
		record = records[0]
	} else if err := decoder.Decode(&record); err != nil {
		return question.Record{}, fmt.Errorf("%w: json.Decode > %w", ErrParse, err)
	}

	if record.Question == "" || record.Answer < 0 {
		return question.Record{}, fmt.Errorf("%w: incomplete JSON question", ErrParse)
	}
	return question.Record{
		Question: record.Question,
		Options:  record.Options,
		Answer:   record.Answer,
	}, nil
}
