// Package server provides Connect RPC handlers for the quiz service.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/at-ishikawa/quizler/internal/question"
	"github.com/at-ishikawa/quizler/internal/quiz"
)

const (
	QuizServiceName = "quizler.v1.QuizService"

	ListCategoriesProcedure = "/" + QuizServiceName + "/ListCategories"
	StartQuizProcedure      = "/" + QuizServiceName + "/StartQuiz"
	AnswerProcedure         = "/" + QuizServiceName + "/Answer"
	TimeoutProcedure        = "/" + QuizServiceName + "/Timeout"
	EndQuizProcedure        = "/" + QuizServiceName + "/EndQuiz"
)

//go:generate mockgen -source=quiz_handler.go -destination=../mocks/server/mock_quiz_handler.go -package=mock_server

type SessionStarter interface {
	Start(ctx context.Context, request quiz.StartRequest) (*quiz.Session, error)
}

type CategoryLister interface {
	Categories() ([]string, error)
	Counts(category string) (map[question.Difficulty]int, error)
}

// QuizHandler serves quiz sessions. Sessions live in memory until EndQuiz or Close.
type QuizHandler struct {
	starter    SessionStarter
	categories CategoryLister
	newID      func() string

	mu       sync.Mutex
	sessions map[string]*quiz.Session
}

func NewQuizHandler(starter SessionStarter, categories CategoryLister) *QuizHandler {
	return &QuizHandler{
		starter:    starter,
		categories: categories,
		newID:      uuid.NewString,
		sessions:   make(map[string]*quiz.Session),
	}
}

// NewQuizServiceHandler returns the path prefix of the service and its handler.
func NewQuizServiceHandler(h *QuizHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(ListCategoriesProcedure, connect.NewUnaryHandler(ListCategoriesProcedure, h.ListCategories, opts...))
	mux.Handle(StartQuizProcedure, connect.NewUnaryHandler(StartQuizProcedure, h.StartQuiz, opts...))
	mux.Handle(AnswerProcedure, connect.NewUnaryHandler(AnswerProcedure, h.Answer, opts...))
	mux.Handle(TimeoutProcedure, connect.NewUnaryHandler(TimeoutProcedure, h.Timeout, opts...))
	mux.Handle(EndQuizProcedure, connect.NewUnaryHandler(EndQuizProcedure, h.EndQuiz, opts...))
	return "/" + QuizServiceName + "/", mux
}

// ListCategories returns every category with its question counts.
func (h *QuizHandler) ListCategories(
	ctx context.Context,
	req *connect.Request[ListCategoriesRequest],
) (*connect.Response[ListCategoriesResponse], error) {
	names, err := h.categories.Categories()
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("list categories: %w", err))
	}

	categories := make([]Category, 0, len(names))
	for _, name := range names {
		counts, err := h.categories.Counts(name)
		if err != nil {
			return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("count questions(%s): %w", name, err))
		}
		category := Category{Name: name, Counts: make(map[string]int, len(counts))}
		for difficulty, count := range counts {
			category.Counts[difficulty.String()] = count
		}
		categories = append(categories, category)
	}
	return connect.NewResponse(&ListCategoriesResponse{Categories: categories}), nil
}

// StartQuiz starts a session and returns its first question.
func (h *QuizHandler) StartQuiz(
	ctx context.Context,
	req *connect.Request[StartQuizRequest],
) (*connect.Response[StartQuizResponse], error) {
	difficulty, err := question.ParseDifficulty(req.Msg.Difficulty)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if req.Msg.SecondsPerQuestion < 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("seconds_per_question must not be negative"))
	}

	session, err := h.starter.Start(ctx, quiz.StartRequest{
		User:        req.Msg.User,
		Category:    req.Msg.Category,
		Difficulty:  difficulty,
		Count:       req.Msg.Count,
		PerQuestion: time.Duration(req.Msg.SecondsPerQuestion) * time.Second,
	})
	if err != nil {
		return nil, toConnectError(fmt.Errorf("start quiz: %w", err))
	}
	current, ok := session.Current()
	if !ok {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("session started without a question"))
	}

	id := h.newID()
	h.mu.Lock()
	h.sessions[id] = session
	h.mu.Unlock()

	return connect.NewResponse(&StartQuizResponse{
		SessionID: id,
		Total:     session.Total(),
		Question:  toQuestion(current),
	}), nil
}

// Answer closes the question at QuestionIndex with the selected option.
func (h *QuizHandler) Answer(
	ctx context.Context,
	req *connect.Request[AnswerRequest],
) (*connect.Response[AnswerResponse], error) {
	session, err := h.session(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	outcome, err := session.AnswerAt(req.Msg.QuestionIndex, req.Msg.Option)
	if err != nil {
		return nil, toConnectError(fmt.Errorf("answer: %w", err))
	}
	return connect.NewResponse(answerResponse(session, outcome)), nil
}

// Timeout closes the question at QuestionIndex as unanswered.
func (h *QuizHandler) Timeout(
	ctx context.Context,
	req *connect.Request[TimeoutRequest],
) (*connect.Response[AnswerResponse], error) {
	session, err := h.session(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	outcome, err := session.TimeoutAt(req.Msg.QuestionIndex)
	if err != nil {
		return nil, toConnectError(fmt.Errorf("timeout: %w", err))
	}
	return connect.NewResponse(answerResponse(session, outcome)), nil
}

// EndQuiz ends the session, abandoning it when questions are left, and forgets it.
func (h *QuizHandler) EndQuiz(
	ctx context.Context,
	req *connect.Request[EndQuizRequest],
) (*connect.Response[EndQuizResponse], error) {
	h.mu.Lock()
	session, ok := h.sessions[req.Msg.SessionID]
	delete(h.sessions, req.Msg.SessionID)
	h.mu.Unlock()
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("session %q not found", req.Msg.SessionID))
	}

	summary, err := session.End(ctx)
	if err != nil {
		// the summary is still valid when only the history write failed
		slog.Default().Error("failed to record quiz history",
			"session", req.Msg.SessionID,
			"error", err,
		)
	}
	return connect.NewResponse(toEndQuizResponse(summary)), nil
}

// Close ends all open sessions.
func (h *QuizHandler) Close(ctx context.Context) error {
	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[string]*quiz.Session)
	h.mu.Unlock()

	var errs []error
	for id, session := range sessions {
		if _, err := session.End(ctx); err != nil {
			errs = append(errs, fmt.Errorf("end session %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (h *QuizHandler) session(id string) (*quiz.Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	session, ok := h.sessions[id]
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("session %q not found", id))
	}
	return session, nil
}

func answerResponse(session *quiz.Session, outcome quiz.Outcome) *AnswerResponse {
	response := &AnswerResponse{Outcome: toOutcome(outcome)}
	if next, ok := session.Current(); ok {
		q := toQuestion(next)
		response.Next = &q
	}
	return response
}

func toConnectError(err error) error {
	switch {
	case errors.Is(err, quiz.ErrInvalidRequest), errors.Is(err, quiz.ErrInvalidAnswer):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, quiz.ErrNoQuestions):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, quiz.ErrSessionFinished), errors.Is(err, quiz.ErrQuestionClosed):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}
