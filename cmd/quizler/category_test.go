package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryCommands(t *testing.T) {
	setupConfig(t)

	out, err := execute(t, "", "category", "add", "Astronomy")
	require.NoError(t, err)
	assert.Contains(t, out, "Added category Astronomy")

	out, err = execute(t, "", "category", "add", "astronomy")
	require.NoError(t, err)
	assert.Contains(t, out, "Category astronomy already exists")

	out, err = execute(t, "", "category", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Astronomy")
	assert.Contains(t, out, "Science")
	assert.Contains(t, out, "easy:   0")

	_, err = execute(t, "", "category", "add")
	assert.Error(t, err)
}
