package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/at-ishikawa/quizler/internal/fileutil"
	"github.com/at-ishikawa/quizler/internal/question"
)

// SeenTracker remembers which questions a user was already asked so that
// new quizzes can prefer questions the user has not seen.
type SeenTracker interface {
	// FilterUnseen splits records into unseen and seen ones, keeping their order.
	FilterUnseen(category string, records []question.Record) (unseen, seen []question.Record, err error)
	MarkSeen(category string, records []question.Record) error
	// Clear forgets a category, or every category when category is empty.
	Clear(category string) error
}

// FileSeenTracker stores the seen prompts of one user in seen_<user>.json.
type FileSeenTracker struct {
	path string
	user string
	mu   sync.Mutex
}

func NewFileSeenTracker(directory, user string) *FileSeenTracker {
	return &FileSeenTracker{
		path: filepath.Join(directory, fmt.Sprintf("seen_%s.json", question.Slug(user))),
		user: user,
	}
}

func (t *FileSeenTracker) FilterUnseen(category string, records []question.Record) ([]question.Record, []question.Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	seenByCategory, err := t.read()
	if err != nil {
		return nil, nil, err
	}
	seenKeys := make(map[string]struct{})
	for _, key := range seenByCategory[question.Slug(category)] {
		seenKeys[key] = struct{}{}
	}

	var unseen, seen []question.Record
	for _, record := range records {
		if _, ok := seenKeys[record.Key()]; ok {
			seen = append(seen, record)
			continue
		}
		unseen = append(unseen, record)
	}
	return unseen, seen, nil
}

func (t *FileSeenTracker) MarkSeen(category string, records []question.Record) error {
	if len(records) == 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	seenByCategory, err := t.read()
	if err != nil {
		return err
	}
	slug := question.Slug(category)
	keys := make(map[string]struct{})
	for _, key := range seenByCategory[slug] {
		keys[key] = struct{}{}
	}
	for _, record := range records {
		keys[record.Key()] = struct{}{}
	}
	merged := make([]string, 0, len(keys))
	for key := range keys {
		merged = append(merged, key)
	}
	sort.Strings(merged)
	seenByCategory[slug] = merged

	return t.write(seenByCategory)
}

func (t *FileSeenTracker) Clear(category string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	seenByCategory, err := t.read()
	if err != nil {
		return err
	}
	if category == "" {
		seenByCategory = map[string][]string{}
	} else {
		delete(seenByCategory, question.Slug(category))
	}
	slog.Default().Info("cleared seen questions",
		"user", t.user,
		"category", category,
	)
	return t.write(seenByCategory)
}

func (t *FileSeenTracker) read() (map[string][]string, error) {
	seen := map[string][]string{}
	contents, err := os.ReadFile(t.path)
	if errors.Is(err, os.ErrNotExist) {
		return seen, nil
	}
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", t.path, err)
	}
	if err := json.Unmarshal(contents, &seen); err != nil {
		return nil, fmt.Errorf("json.Unmarshal(%s) > %w", t.path, err)
	}
	return seen, nil
}

func (t *FileSeenTracker) write(seen map[string][]string) error {
	contents, err := json.MarshalIndent(seen, "", "    ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent > %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(t.path), 0755); err != nil {
		return fmt.Errorf("os.MkdirAll > %w", err)
	}
	if err := fileutil.WriteFileAtomic(t.path, contents); err != nil {
		return fmt.Errorf("fileutil.WriteFileAtomic(%s) > %w", t.path, err)
	}
	return nil
}
