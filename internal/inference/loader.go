package inference

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrNotStarted is returned by Wait when no load was started.
var ErrNotStarted = errors.New("model loading has not been started")

// Loader runs a model load once in the background and exposes whether it finished successfully.
type Loader struct {
	once    sync.Once
	started chan struct{}
	done    chan struct{}

	mu    sync.RWMutex
	ready bool
	err   error
}

func NewLoader() *Loader {
	return &Loader{
		started: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches load on its own goroutine. Calls after the first are ignored.
func (l *Loader) Start(ctx context.Context, load func(ctx context.Context) error) {
	l.once.Do(func() {
		close(l.started)
		go func() {
			defer close(l.done)

			startedAt := time.Now()
			err := load(ctx)

			l.mu.Lock()
			l.ready = err == nil
			l.err = err
			l.mu.Unlock()

			if err != nil {
				slog.Default().Warn("failed to load model",
					"error", err,
					"elapsed", time.Since(startedAt),
				)
				return
			}
			slog.Default().Info("model loaded", "elapsed", time.Since(startedAt))
		}()
	})
}

func (l *Loader) Ready() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ready
}

// Done is closed once loading finished, successfully or not.
func (l *Loader) Done() <-chan struct{} {
	return l.done
}

func (l *Loader) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// Wait blocks until loading finished or ctx is done.
func (l *Loader) Wait(ctx context.Context) error {
	select {
	case <-l.started:
	default:
		return ErrNotStarted
	}
	select {
	case <-l.done:
		return l.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
