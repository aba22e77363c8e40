package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/at-ishikawa/quizler/internal/quiz"
)

//go:generate mockgen -source=quiz_cli.go -destination=../mocks/cli/mock_session_starter.go -package=mock_cli SessionStarter

type SessionStarter interface {
	Start(ctx context.Context, request quiz.StartRequest) (*quiz.Session, error)
}

// QuizCLI runs a quiz session in the terminal.
// Input is read on a background goroutine so that countdowns can close questions while waiting.
type QuizCLI struct {
	starter      SessionStarter
	stdinReader  io.Reader
	stdoutWriter io.Writer
	bold         *color.Color
	italic       *color.Color
	green        *color.Color
	red          *color.Color
	yellow       *color.Color
}

func NewQuizCLI(starter SessionStarter, stdin io.Reader, stdout io.Writer) *QuizCLI {
	return &QuizCLI{
		starter:      starter,
		stdinReader:  stdin,
		stdoutWriter: stdout,
		bold:         color.New(color.Bold),
		italic:       color.New(color.Italic),
		green:        color.New(color.FgGreen),
		red:          color.New(color.FgRed),
		yellow:       color.New(color.FgYellow),
	}
}

type command int

const (
	commandAnswer command = iota
	commandSkip
	commandQuit
)

var errUnknownInput = errors.New("unknown input")

// parseInput accepts an option number (1-based), an option letter, s to skip or q to quit.
func parseInput(line string, numOptions int) (command, int, error) {
	input := strings.ToLower(strings.TrimSpace(line))
	switch input {
	case "q", "quit":
		return commandQuit, 0, nil
	case "s", "skip":
		return commandSkip, 0, nil
	}

	option := -1
	if n, err := strconv.Atoi(input); err == nil {
		option = n - 1
	} else if len(input) == 1 && input[0] >= 'a' && input[0] <= 'z' {
		option = int(input[0] - 'a')
	}
	if option < 0 || option >= numOptions {
		return commandAnswer, 0, fmt.Errorf("%w: %q", errUnknownInput, line)
	}
	return commandAnswer, option, nil
}

// Run starts a session for request and asks its questions until it finishes or the user quits.
func (cli *QuizCLI) Run(ctx context.Context, request quiz.StartRequest) (quiz.Summary, error) {
	session, err := cli.starter.Start(ctx, request)
	if err != nil {
		return quiz.Summary{}, fmt.Errorf("starter.Start > %w", err)
	}
	if session.Total() < request.Count {
		cli.yellow.Fprintf(cli.stdoutWriter, "Only %d questions are available.\n", session.Total())
	}

	done := make(chan struct{})
	defer close(done)
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(cli.stdinReader)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()

	for {
		current, ok := session.Current()
		if !ok {
			break
		}
		cli.printQuestion(current)

		quit, err := cli.ask(ctx, session, current, lines)
		if err != nil {
			return quiz.Summary{}, err
		}
		if quit {
			break
		}
	}

	// The history must be written even when the quiz was interrupted.
	summary, err := session.End(context.WithoutCancel(ctx))
	cli.printSummary(summary)
	if err != nil {
		return summary, fmt.Errorf("session.End > %w", err)
	}
	return summary, nil
}

// ask waits for the current question to be closed by the user or by its countdown.
func (cli *QuizCLI) ask(ctx context.Context, session *quiz.Session, current quiz.Presented, lines <-chan string) (bool, error) {
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(cli.stdoutWriter, "Received interrupt signal, exiting...")
			return true, nil
		case outcome := <-session.Expired():
			if outcome.Index != current.Index {
				continue
			}
			cli.printOutcome(outcome)
			return false, nil
		case line, ok := <-lines:
			if !ok {
				return true, nil
			}
			cmd, option, err := parseInput(line, len(current.Options))
			if err != nil {
				fmt.Fprintf(cli.stdoutWriter, "Answer with 1-%d, s to skip or q to quit.\n", len(current.Options))
				continue
			}

			var outcome quiz.Outcome
			switch cmd {
			case commandQuit:
				return true, nil
			case commandSkip:
				outcome, err = session.TimeoutAt(current.Index)
			default:
				outcome, err = session.AnswerAt(current.Index, option)
			}
			if errors.Is(err, quiz.ErrQuestionClosed) {
				// the countdown won; its outcome is waiting in Expired
				continue
			}
			if errors.Is(err, quiz.ErrSessionFinished) {
				return true, nil
			}
			if err != nil {
				return false, fmt.Errorf("answer question %d > %w", current.Index+1, err)
			}
			cli.printOutcome(outcome)
			return false, nil
		}
	}
}

func (cli *QuizCLI) printQuestion(current quiz.Presented) {
	fmt.Fprintln(cli.stdoutWriter)
	cli.bold.Fprintf(cli.stdoutWriter, "Question %d/%d: %s\n", current.Index+1, current.Total, current.Question)
	for i, option := range current.Options {
		fmt.Fprintf(cli.stdoutWriter, "  %d) %s\n", i+1, option)
	}
	if !current.Deadline.IsZero() {
		seconds := int(time.Until(current.Deadline).Round(time.Second).Seconds())
		cli.italic.Fprintf(cli.stdoutWriter, "You have %d seconds. s: skip, q: quit\n", seconds)
	}
}

func (cli *QuizCLI) printOutcome(outcome quiz.Outcome) {
	switch {
	case outcome.Correct:
		cli.green.Fprintf(cli.stdoutWriter, "Correct! Score: %d\n", outcome.Score)
	case outcome.TimedOut:
		cli.red.Fprintf(cli.stdoutWriter, "Time's up. The answer was %d) %s\n", outcome.CorrectAnswer+1, outcome.CorrectOption)
	default:
		cli.red.Fprintf(cli.stdoutWriter, "Wrong. The answer was %d) %s\n", outcome.CorrectAnswer+1, outcome.CorrectOption)
	}
}

func (cli *QuizCLI) printSummary(summary quiz.Summary) {
	fmt.Fprintln(cli.stdoutWriter)
	if summary.Abandoned {
		cli.yellow.Fprintf(cli.stdoutWriter, "Quiz abandoned after %d of %d questions.\n", summary.Answered, summary.Total)
	}
	cli.bold.Fprintf(cli.stdoutWriter, "Score: %d (%d/%d correct, %.1f%%)\n",
		summary.Score, summary.Correct, summary.Total, summary.Accuracy())

	categories := make([]string, 0, len(summary.ByCategory))
	for category := range summary.ByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		score := summary.ByCategory[category]
		fmt.Fprintf(cli.stdoutWriter, "  %s: %d/%d\n", category, score.Correct, score.Total)
	}
}
