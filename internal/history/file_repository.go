package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/at-ishikawa/quizler/internal/fileutil"
)

// FileRepository keeps the history log as a JSON array in a single file.
type FileRepository struct {
	path string
	mu   sync.Mutex
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

func (r *FileRepository) Append(ctx context.Context, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.readAll()
	if err != nil {
		return err
	}
	entry.ID = int64(len(entries) + 1)
	entries = append(entries, entry)

	contents, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent > %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("os.MkdirAll > %w", err)
	}
	if err := fileutil.WriteFileAtomic(r.path, contents); err != nil {
		return fmt.Errorf("fileutil.WriteFileAtomic(%s) > %w", r.path, err)
	}
	return nil
}

func (r *FileRepository) List(ctx context.Context, filter Filter) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.readAll()
	if err != nil {
		return nil, err
	}
	result := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if filter.match(e) {
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *FileRepository) readAll() ([]Entry, error) {
	contents, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", r.path, err)
	}
	var entries []Entry
	if err := json.Unmarshal(contents, &entries); err != nil {
		return nil, fmt.Errorf("json.Unmarshal(%s) > %w", r.path, err)
	}
	for i := range entries {
		entries[i].ID = int64(i + 1)
	}
	return entries, nil
}
