package question

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// yamlDocument is the import/export shape: a category with its buckets.
type yamlDocument struct {
	Category  string                  `yaml:"category"`
	Questions map[Difficulty][]Record `yaml:"questions"`
}

// ImportYAML reads one or more YAML documents and adds their questions.
// Records inherit the document's category and their bucket's difficulty when they omit them.
func (s *Store) ImportYAML(r io.Reader) ([]Record, error) {
	decoder := yaml.NewDecoder(r)
	var records []Record
	for {
		var doc yamlDocument
		err := decoder.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("yaml.Decode > %w", err)
		}
		for _, d := range AllDifficulties {
			for _, record := range doc.Questions[d] {
				if record.Category == "" {
					record.Category = doc.Category
				}
				if record.Difficulty == "" {
					record.Difficulty = d
				}
				records = append(records, record)
			}
		}
	}
	if len(records) == 0 {
		return nil, nil
	}
	return s.AddAll(records)
}

// ExportYAML writes every question of a category as a YAML document.
func (s *Store) ExportYAML(w io.Writer, category string) error {
	doc, err := s.All(category)
	if err != nil {
		return err
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(yamlDocument{Category: category, Questions: doc}); err != nil {
		return fmt.Errorf("yaml.Encode > %w", err)
	}
	return encoder.Close()
}
