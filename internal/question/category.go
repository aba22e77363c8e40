package question

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/at-ishikawa/quizler/internal/fileutil"
)

// DefaultCategories are always offered even before any question exists for them.
var DefaultCategories = []string{
	"Science", "History", "Geography", "Literature",
	"Movies", "Sports", "Technology", "Music",
}

// CustomCategory is an entry of the categories file.
type CustomCategory struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Categories returns the sorted union of default, registered and on-disk categories.
func (s *Store) Categories() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories()
}

func (s *Store) categories() ([]string, error) {
	bySlug := make(map[string]string)
	for _, name := range DefaultCategories {
		bySlug[Slug(name)] = name
	}

	custom, err := s.readCustomCategories()
	if err != nil {
		return nil, err
	}
	for _, c := range custom {
		bySlug[Slug(c.Name)] = c.Name
	}

	entries, err := os.ReadDir(s.config.DataDirectory)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("os.ReadDir > %w", err)
	}
	for _, entry := range entries {
		slug, ok := strings.CutSuffix(entry.Name(), "_questions.json")
		if !ok || entry.IsDir() {
			continue
		}
		if _, ok := bySlug[slug]; ok {
			continue
		}
		bySlug[slug] = s.categoryNameFromFile(slug)
	}

	names := make([]string, 0, len(bySlug))
	for _, name := range bySlug {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// categoryNameFromFile prefers the category stored in the records and falls back to the file name.
func (s *Store) categoryNameFromFile(slug string) string {
	doc, err := s.read(slug)
	if err == nil {
		for _, d := range AllDifficulties {
			if len(doc[d]) > 0 && doc[d][0].Category != "" {
				return doc[d][0].Category
			}
		}
	}
	return strings.ReplaceAll(slug, "_", " ")
}

// AddCategory registers a custom category. It returns false when the category already exists.
func (s *Store) AddCategory(name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, errors.New("category name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.categories()
	if err != nil {
		return false, err
	}
	for _, c := range existing {
		if Slug(c) == Slug(name) {
			slog.Default().Info("category already exists", "category", name)
			return false, nil
		}
	}

	custom, err := s.readCustomCategories()
	if err != nil {
		return false, err
	}
	custom = append(custom, CustomCategory{Name: name, CreatedAt: s.now()})

	contents, err := json.MarshalIndent(custom, "", "    ")
	if err != nil {
		return false, fmt.Errorf("json.MarshalIndent > %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.config.CategoriesFile), 0755); err != nil {
		return false, fmt.Errorf("os.MkdirAll > %w", err)
	}
	if err := fileutil.WriteFileAtomic(s.config.CategoriesFile, contents); err != nil {
		return false, fmt.Errorf("fileutil.WriteFileAtomic(%s) > %w", s.config.CategoriesFile, err)
	}
	slog.Default().Info("added new category", "category", name)
	return true, nil
}

func (s *Store) readCustomCategories() ([]CustomCategory, error) {
	contents, err := os.ReadFile(s.config.CategoriesFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", s.config.CategoriesFile, err)
	}
	var custom []CustomCategory
	if err := json.Unmarshal(contents, &custom); err != nil {
		return nil, fmt.Errorf("json.Unmarshal(%s) > %w", s.config.CategoriesFile, err)
	}
	return custom, nil
}
