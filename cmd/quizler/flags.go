package main

import (
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/quizler/internal/question"
)

// difficultyValue is a pflag.Value accepting easy, medium or hard in any case.
type difficultyValue struct {
	difficulty *question.Difficulty
}

var _ pflag.Value = difficultyValue{}

func newDifficultyValue(defaultValue question.Difficulty, p *question.Difficulty) difficultyValue {
	*p = defaultValue
	return difficultyValue{difficulty: p}
}

func (v difficultyValue) String() string {
	if v.difficulty == nil {
		return ""
	}
	return v.difficulty.String()
}

func (v difficultyValue) Set(value string) error {
	d, err := question.ParseDifficulty(value)
	if err != nil {
		return err
	}
	*v.difficulty = d
	return nil
}

func (v difficultyValue) Type() string {
	return "difficulty"
}
