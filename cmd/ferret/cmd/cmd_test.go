package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeTextFiles(t *testing.T, dir string, texts ...string) []string {
	var names []string
	for i, text := range texts {
		name := filepath.Join(dir, fmt.Sprintf("doc%v.txt", i))
		require.NoError(t, os.WriteFile(name, []byte(text), 0644))
		names = append(names, name)
	}
	return names
}

// A merge factor of 2 keeps every add in its own segment.
func writeConfig(t *testing.T, dir, yaml string) string {
	name := filepath.Join(dir, "writer.yaml")
	require.NoError(t, os.WriteFile(name, []byte(yaml), 0644))
	return name
}

func TestAddInfoTermsCheckOptimize(t *testing.T) {
	tmp := t.TempDir()
	indexDir := filepath.Join(tmp, "index")
	conf := writeConfig(t, tmp, "mergeFactor: 2\n")
	files := writeTextFiles(t, tmp,
		"The quick brown fox",
		"jumped over the lazy dog",
		"quick quick slow")

	out, err := run(t, "add", indexDir, files[0], files[1], "--config", conf)
	require.NoError(t, err)
	assert.Contains(t, out, "added 2 files")

	out, err = run(t, "add", indexDir, files[2], "--config", conf)
	require.NoError(t, err)
	assert.Contains(t, out, "index holds 3 documents")

	out, err = run(t, "info", indexDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Segments: 2")
	assert.Contains(t, out, "3 documents (0 deleted)")

	out, err = run(t, "terms", indexDir, "--field", "contents", "--prefix", "qu")
	require.NoError(t, err)
	assert.Equal(t, "contents:quick\t2\n", out)

	out, err = run(t, "terms", indexDir)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 8+3) // distinct words plus one path term per file
	assert.Contains(t, lines, "contents:fox\t1")

	out, err = run(t, "check", indexDir)
	require.NoError(t, err)
	assert.Contains(t, out, "No problems were detected with this index.")

	out, err = run(t, "optimize", indexDir)
	require.NoError(t, err)
	assert.Contains(t, out, "merged 2 segments holding 3 documents")

	out, err = run(t, "info", indexDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Segments: 1")
}

func TestCommandsRejectMissingIndex(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nothing")

	_, err := run(t, "info", missing)
	assert.Error(t, err)
	_, err = run(t, "optimize", missing)
	assert.Error(t, err)
	_, err = run(t, "terms", missing, "--prefix", "a")
	assert.EqualError(t, err, "--prefix requires --field")
}

func TestOptimizeWithConfigFile(t *testing.T) {
	tmp := t.TempDir()
	indexDir := filepath.Join(tmp, "index")
	files := writeTextFiles(t, tmp, "one", "two", "three")
	conf := writeConfig(t, tmp, "mergeFactor: 2\nuseCompoundFile: false\n")
	_, err := run(t, "add", indexDir, files[0], "--config", conf)
	require.NoError(t, err)
	_, err = run(t, "add", indexDir, files[1], files[2], "--config", conf)
	require.NoError(t, err)

	_, err = run(t, "optimize", indexDir, "--config", conf)
	require.NoError(t, err)

	names, err := filepath.Glob(filepath.Join(indexDir, "*.cfs"))
	require.NoError(t, err)
	assert.Empty(t, names)
	out, err := run(t, "check", indexDir)
	require.NoError(t, err)
	assert.Contains(t, out, "OK")
}
