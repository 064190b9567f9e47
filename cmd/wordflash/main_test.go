package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_ImportAssignReconcile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(dir, "wordflash.db"))
	t.Setenv("LOG_LEVEL", "ERROR")

	words := filepath.Join(dir, "words.json")
	require.NoError(t, os.WriteFile(words, []byte(`[
		{"english": "dog", "russian": "собака", "set": "animals"},
		{"english": "red", "russian": "красный"}
	]`), 0o644))

	out, err := run(t, "import", words)
	require.NoError(t, err)
	assert.Contains(t, out, "processed 2, imported 2, skipped 0, new sets 1")

	out, err = run(t, "assign", "--user", "5", "--set", "animals")
	require.NoError(t, err)
	assert.Contains(t, out, `assigned set "animals" to user 5`)

	_, err = run(t, "assign", "--user", "5", "--set", "missing")
	assert.Error(t, err)

	out, err = run(t, "reconcile", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "0 records would be fixed")

	out, err = run(t, "reconcile")
	require.NoError(t, err)
	assert.Contains(t, out, `"fixed_count": 0`)
}

func TestCLI_InvalidConfig(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")

	_, err := run(t, "reconcile")
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestCLI_ImportNeedsFile(t *testing.T) {
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "w.db"))

	_, err := run(t, "import")
	assert.Error(t, err)
}
