package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, dir string) string
		contents string
		wantErr  bool
	}{
		{
			name: "creates a new file",
			setup: func(t *testing.T, dir string) string {
				return filepath.Join(dir, "history.json")
			},
			contents: `[]`,
		},
		{
			name: "replaces an existing file",
			setup: func(t *testing.T, dir string) string {
				path := filepath.Join(dir, "science_questions.json")
				require.NoError(t, os.WriteFile(path, []byte(`{"easy":[]}`), 0644))
				return path
			},
			contents: `{"easy":[],"hard":[]}`,
		},
		{
			name: "rename onto a directory fails",
			setup: func(t *testing.T, dir string) string {
				path := filepath.Join(dir, "target.json")
				require.NoError(t, os.MkdirAll(filepath.Join(path, "child"), 0755))
				return path
			},
			contents: `[]`,
			wantErr:  true,
		},
		{
			name: "missing parent directory",
			setup: func(t *testing.T, dir string) string {
				return filepath.Join(dir, "missing", "history.json")
			},
			contents: `[]`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := tt.setup(t, dir)

			err := WriteFileAtomic(path, []byte(tt.contents))

			entries, readErr := os.ReadDir(filepath.Dir(path))
			if readErr == nil {
				for _, e := range entries {
					assert.NotContains(t, e.Name(), ".tmp-", "temporary files are removed")
				}
			}
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.contents, string(got))
		})
	}
}
