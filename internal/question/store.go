package question

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/at-ishikawa/quizler/internal/fileutil"
)

var ErrNotFound = errors.New("question not found")

// StoreError reports a category file that cannot be read or written.
// A category whose file is corrupt stays unusable until the file is corrected.
type StoreError struct {
	Category string
	Op       string
	Path     string
	Err      error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("question store: %s %s (%s): %v", e.Op, e.Category, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

type StoreConfig struct {
	DataDirectory   string
	BackupDirectory string
	CategoriesFile  string
	MaxBackups      int
}

// categoryDocument is the on-disk shape of a category file.
type categoryDocument map[Difficulty][]Record

// Store keeps one JSON document per category.
// Every read goes to disk so that edits made outside the process are picked up.
type Store struct {
	config StoreConfig
	mu     sync.Mutex
	now    func() time.Time
}

func NewStore(config StoreConfig) *Store {
	if config.CategoriesFile == "" {
		config.CategoriesFile = filepath.Join(config.DataDirectory, "categories.json")
	}
	return &Store{
		config: config,
		now:    time.Now,
	}
}

// Slug converts a category name into the file name stem used on disk.
func Slug(category string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(category)), " ", "_")
}

func (s *Store) categoryPath(category string) string {
	return filepath.Join(s.config.DataDirectory, Slug(category)+"_questions.json")
}

// Get returns the ordered questions of a category for a difficulty.
// A category without a file has no questions.
func (s *Store) Get(category string, difficulty Difficulty) ([]Record, error) {
	if !difficulty.Valid() {
		return nil, fmt.Errorf("invalid difficulty %q", difficulty)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(category)
	if err != nil {
		return nil, err
	}
	records := make([]Record, len(doc[difficulty]))
	copy(records, doc[difficulty])
	return records, nil
}

// Counts returns the number of questions per difficulty.
func (s *Store) Counts(category string) (map[Difficulty]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(category)
	if err != nil {
		return nil, err
	}
	counts := make(map[Difficulty]int, len(AllDifficulties))
	for _, d := range AllDifficulties {
		counts[d] = len(doc[d])
	}
	return counts, nil
}

// Add validates the record, assigns an ID when it has none and appends it to its bucket.
func (s *Store) Add(record Record) (Record, error) {
	added, err := s.AddAll([]Record{record})
	if err != nil {
		return Record{}, err
	}
	return added[0], nil
}

// AddAll appends records, possibly spanning several categories, and writes each file once.
func (s *Store) AddAll(records []Record) ([]Record, error) {
	prepared := make([]Record, 0, len(records))
	for _, record := range records {
		record.Difficulty = Difficulty(strings.ToLower(string(record.Difficulty)))
		if record.Source == "" {
			record.Source = SourceHuman
		}
		if record.ID == "" {
			record.ID = uuid.NewString()
		}
		if err := record.Validate(); err != nil {
			return nil, fmt.Errorf("question %q > %w", record.Question, err)
		}
		prepared = append(prepared, record)
	}

	byCategory := make(map[string][]Record)
	var order []string
	for _, record := range prepared {
		slug := Slug(record.Category)
		if _, ok := byCategory[slug]; !ok {
			order = append(order, slug)
		}
		byCategory[slug] = append(byCategory[slug], record)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, slug := range order {
		group := byCategory[slug]
		category := group[0].Category
		doc, err := s.read(category)
		if err != nil {
			return nil, err
		}
		for _, record := range group {
			doc[record.Difficulty] = append(doc[record.Difficulty], record)
		}
		if err := s.write(category, doc); err != nil {
			return nil, err
		}
		slog.Default().Info("added questions",
			"category", category,
			"count", len(group),
		)
	}
	return prepared, nil
}

// Delete removes the question with the given ID.
func (s *Store) Delete(category string, difficulty Difficulty, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(category)
	if err != nil {
		return err
	}
	bucket := doc[difficulty]
	for i, record := range bucket {
		if record.ID != id {
			continue
		}
		doc[difficulty] = append(bucket[:i:i], bucket[i+1:]...)
		return s.write(category, doc)
	}
	return fmt.Errorf("%w: %s in %s/%s", ErrNotFound, id, category, difficulty)
}

// All returns every difficulty bucket of a category.
func (s *Store) All(category string) (map[Difficulty][]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(category)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Store) read(category string) (categoryDocument, error) {
	path := s.categoryPath(category)
	doc := categoryDocument{}
	for _, d := range AllDifficulties {
		doc[d] = []Record{}
	}

	contents, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, &StoreError{Category: category, Op: "read", Path: path, Err: err}
	}

	var raw map[string][]Record
	if err := json.Unmarshal(contents, &raw); err != nil {
		return nil, &StoreError{Category: category, Op: "read", Path: path, Err: fmt.Errorf("json.Unmarshal > %w", err)}
	}
	for key, records := range raw {
		d := Difficulty(key)
		if !d.Valid() {
			return nil, &StoreError{Category: category, Op: "read", Path: path, Err: fmt.Errorf("unknown difficulty %q", key)}
		}
		for i, record := range records {
			if err := record.Validate(); err != nil {
				return nil, &StoreError{Category: category, Op: "read", Path: path, Err: fmt.Errorf("%s[%d] > %w", key, i, err)}
			}
			if record.Difficulty != d {
				return nil, &StoreError{Category: category, Op: "read", Path: path, Err: fmt.Errorf("%s[%d]: difficulty %q does not match its bucket", key, i, record.Difficulty)}
			}
			if Slug(record.Category) != Slug(category) {
				return nil, &StoreError{Category: category, Op: "read", Path: path, Err: fmt.Errorf("%s[%d]: category %q does not match the file", key, i, record.Category)}
			}
		}
		doc[d] = records
	}
	return doc, nil
}

func (s *Store) write(category string, doc categoryDocument) error {
	path := s.categoryPath(category)
	if err := os.MkdirAll(s.config.DataDirectory, 0755); err != nil {
		return &StoreError{Category: category, Op: "write", Path: path, Err: err}
	}
	if err := s.backup(category, path); err != nil {
		slog.Default().Warn("failed to back up a category file",
			"category", category,
			"error", err,
		)
	}

	for _, records := range doc {
		for i := range records {
			if records[i].ID == "" {
				records[i].ID = uuid.NewString()
			}
		}
	}
	contents, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return &StoreError{Category: category, Op: "write", Path: path, Err: fmt.Errorf("json.MarshalIndent > %w", err)}
	}
	if err := fileutil.WriteFileAtomic(path, contents); err != nil {
		return &StoreError{Category: category, Op: "write", Path: path, Err: err}
	}
	return nil
}

// backup copies the current category file into the backup directory and prunes old copies.
func (s *Store) backup(category, path string) error {
	if s.config.BackupDirectory == "" {
		return nil
	}
	src, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("os.Open > %w", err)
	}
	defer func() {
		_ = src.Close()
	}()

	if err := os.MkdirAll(s.config.BackupDirectory, 0755); err != nil {
		return fmt.Errorf("os.MkdirAll > %w", err)
	}
	prefix := Slug(category) + "_questions_backup_"
	name := prefix + s.now().Format("20060102_150405.000000000") + ".json"
	dst, err := os.Create(filepath.Join(s.config.BackupDirectory, name))
	if err != nil {
		return fmt.Errorf("os.Create > %w", err)
	}
	defer func() {
		_ = dst.Close()
	}()
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("io.Copy > %w", err)
	}
	return s.pruneBackups(prefix)
}

func (s *Store) pruneBackups(prefix string) error {
	if s.config.MaxBackups <= 0 {
		return nil
	}
	entries, err := os.ReadDir(s.config.BackupDirectory)
	if err != nil {
		return fmt.Errorf("os.ReadDir > %w", err)
	}
	var names []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), prefix) && strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, entry.Name())
		}
	}
	// timestamps in the names sort chronologically
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	for _, name := range names[min(len(names), s.config.MaxBackups):] {
		if err := os.Remove(filepath.Join(s.config.BackupDirectory, name)); err != nil {
			return fmt.Errorf("os.Remove(%s) > %w", name, err)
		}
		slog.Default().Debug("removed old backup", "file", name)
	}
	return nil
}
