package inference

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader(t *testing.T) {
	tests := []struct {
		name      string
		load      func(ctx context.Context) error
		wantReady bool
		wantErr   bool
	}{
		{
			name:      "load succeeds",
			load:      func(ctx context.Context) error { return nil },
			wantReady: true,
		},
		{
			name:    "load fails",
			load:    func(ctx context.Context) error { return errors.New("model not found") },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewLoader()
			assert.False(t, loader.Ready())

			loader.Start(context.Background(), tt.load)
			err := loader.Wait(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				assert.Error(t, loader.Err())
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantReady, loader.Ready())

			select {
			case <-loader.Done():
			default:
				t.Fatal("Done must be closed after Wait returns")
			}
		})
	}
}

func TestLoader_NotReadyWhileLoading(t *testing.T) {
	loader := NewLoader()
	release := make(chan struct{})
	loader.Start(context.Background(), func(ctx context.Context) error {
		<-release
		return nil
	})

	assert.False(t, loader.Ready())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, loader.Wait(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, loader.Wait(context.Background()))
	assert.True(t, loader.Ready())
}

func TestLoader_StartRunsOnce(t *testing.T) {
	loader := NewLoader()
	var calls atomic.Int32
	load := func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}

	loader.Start(context.Background(), load)
	loader.Start(context.Background(), load)
	require.NoError(t, loader.Wait(context.Background()))

	assert.Equal(t, int32(1), calls.Load())
}

func TestLoader_WaitWithoutStart(t *testing.T) {
	loader := NewLoader()
	assert.ErrorIs(t, loader.Wait(context.Background()), ErrNotStarted)
}
