package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pario-ai/findcache/pkg/config"
)

func run(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(append([]string{"-c", filepath.Join(t.TempDir(), "missing.yaml")}, args...))
	root.SetOut(&out)
	root.SetIn(strings.NewReader(stdin))
	require.NoError(t, root.Execute())
	return out.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestInsertFindRoundTrip(t *testing.T) {
	for _, backend := range []string{config.BackendFile, config.BackendSQLite, config.BackendBadger} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			t.Setenv(config.EnvDir, filepath.Join(dir, "cache"))
			t.Setenv(config.EnvBackend, backend)
			t.Setenv(config.EnvLogLevel, "error")

			src := writeFile(t, dir, "main.py", "def f(x):\n    return 1 / x  # boom\n")
			payload := `{"description":"division by zero","code_snippet":"return 1 / x","severity":"high"}`

			id := strings.TrimSpace(run(t, payload, "insert", "--category", "defect", "--file", src))
			assert.True(t, strings.HasPrefix(id, "bug_"), id)

			out := run(t, "", "find", "--category", "defect", "--file", src)
			var found struct {
				IDs []string `json:"ids"`
			}
			require.NoError(t, json.Unmarshal([]byte(out), &found))
			assert.Equal(t, []string{id}, found.IDs)

			stats := run(t, "", "cache", "stats", "-o", "json")
			assert.Contains(t, stats, `"defect": 1`)

			assert.Contains(t, run(t, "", "cache", "evict"), "Removed 0 expired")
			assert.Contains(t, run(t, "", "cache", "clear"), "cleared")
			assert.Contains(t, run(t, "", "cache", "stats"), "Entries:  0")
		})
	}
}

func TestMergeCmd(t *testing.T) {
	t.Setenv(config.EnvLogLevel, "error")
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `{"total_score": 80, "missing_aspects": ["a"], "overall_assessment": "first"}`)
	b := writeFile(t, dir, "b.json", `{"total_score": 60, "missing_aspects": ["b"], "overall_assessment": "second"}`)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(run(t, "", "merge", "--schema", "requirements", a, b)), &got))
	assert.Equal(t, 70.0, got["total_score"])
	assert.Equal(t, []any{"a", "b"}, got["missing_aspects"])
	assert.True(t, strings.HasPrefix(got["overall_assessment"].(string), "second"))
}

func TestSplitCmd(t *testing.T) {
	t.Setenv(config.EnvLogLevel, "error")
	text := strings.Repeat("line\n", 100)

	var chunks []string
	require.NoError(t, json.Unmarshal([]byte(run(t, text, "split", "--size", "100", "--overlap", "10")), &chunks))
	assert.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 100)
	}
}
