// Package question provides the question record model and the per-category question store.
package question

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Difficulty partitions the questions of a category.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// AllDifficulties lists difficulties in presentation order.
var AllDifficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty converts a user supplied value into a Difficulty.
func ParseDifficulty(value string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(value)))
	if !d.Valid() {
		return "", fmt.Errorf("invalid difficulty %q: must be one of %v", value, AllDifficulties)
	}
	return d, nil
}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

func (d Difficulty) String() string {
	return string(d)
}

// Source is the provenance tag of a record.
type Source string

const (
	SourceHuman    Source = "human"
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

var ErrInvalidRecord = errors.New("invalid question record")

// Record is a single multiple-choice question.
// Answer is an index into Options; the first option is not necessarily the correct one.
type Record struct {
	ID         string     `json:"id,omitempty" yaml:"id,omitempty"`
	Question   string     `json:"question" yaml:"question" validate:"required"`
	Options    []string   `json:"options" yaml:"options" validate:"min=2,dive,required"`
	Answer     int        `json:"correct_answer" yaml:"correct_answer" validate:"min=0"`
	Category   string     `json:"category" yaml:"category" validate:"required"`
	Difficulty Difficulty `json:"difficulty" yaml:"difficulty" validate:"oneof=easy medium hard"`
	Source     Source     `json:"source,omitempty" yaml:"source,omitempty" validate:"omitempty,oneof=human ai fallback"`
}

// CorrectOption returns the text of the correct option.
func (r Record) CorrectOption() string {
	if r.Answer < 0 || r.Answer >= len(r.Options) {
		return ""
	}
	return r.Options[r.Answer]
}

// Validate reports whether the record satisfies the record invariants.
// The returned error wraps ErrInvalidRecord.
func (r Record) Validate() error {
	return validateRecord(r)
}

// Key is the normalised prompt used to detect repeated questions.
func (r Record) Key() string {
	return NormalizeText(r.Question)
}

func NormalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// UnmarshalJSON accepts correct_answer either as an option index or,
// as older files store it, as the text of the correct option.
func (r *Record) UnmarshalJSON(data []byte) error {
	type alias Record
	aux := struct {
		*alias
		Answer json.RawMessage `json:"correct_answer"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	raw := bytes.TrimSpace(aux.Answer)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		r.Answer = -1
	case raw[0] == '"':
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return fmt.Errorf("json.Unmarshal(correct_answer) > %w", err)
		}
		r.Answer = indexOfOption(r.Options, text)
		if r.Answer < 0 {
			return fmt.Errorf("%w: correct_answer %q is not one of the options", ErrInvalidRecord, text)
		}
	default:
		var index int
		if err := json.Unmarshal(raw, &index); err != nil {
			return fmt.Errorf("%w: correct_answer must be an index or an option: %s", ErrInvalidRecord, string(raw))
		}
		r.Answer = index
	}
	if r.Source == "" {
		r.Source = SourceHuman
	}
	return nil
}

func indexOfOption(options []string, text string) int {
	want := NormalizeText(text)
	for i, option := range options {
		if NormalizeText(option) == want {
			return i
		}
	}
	return -1
}
