package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dbalmain/ferret-sub000/core/analysis"
	"github.com/dbalmain/ferret-sub000/core/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexWriterConfigDefaults(t *testing.T) {
	conf := newTestConfig()
	assert.Equal(t, OPEN_MODE_CREATE_OR_APPEND, conf.OpenMode())
	assert.Equal(t, 10, conf.MergeFactor())
	assert.Equal(t, 10, conf.MaxBufferedDocs())
	assert.Equal(t, 10000, conf.MaxFieldLength())
	assert.EqualValues(t, 128, conf.TermIndexInterval())
	assert.True(t, conf.UseCompoundFile())
	assert.EqualValues(t, 1000, conf.WriteLockTimeout())
	assert.EqualValues(t, 10000, conf.CommitLockTimeout())
	assert.Equal(t, DefaultSimilarity{}, conf.Similarity())
	assert.Contains(t, conf.String(), "mergeFactor=10")
}

func TestParseIndexWriterConfig(t *testing.T) {
	conf, err := ParseIndexWriterConfig([]byte(`
openMode: create
mergeFactor: 20
maxBufferedDocs: 100
useCompoundFile: false
termIndexInterval: 64
writeLockTimeout: 0
`), analysis.WhitespaceAnalyzer{})
	require.NoError(t, err)
	assert.Equal(t, OPEN_MODE_CREATE, conf.OpenMode())
	assert.Equal(t, 20, conf.MergeFactor())
	assert.Equal(t, 100, conf.MaxBufferedDocs())
	assert.False(t, conf.UseCompoundFile())
	assert.EqualValues(t, 64, conf.TermIndexInterval())
	assert.EqualValues(t, 0, conf.WriteLockTimeout())
	// untouched keys keep their defaults
	assert.Equal(t, DEFAULT_MAX_MERGE_DOCS, conf.MaxMergeDocs())
	assert.EqualValues(t, COMMIT_LOCK_TIMEOUT, conf.CommitLockTimeout())
}

func TestParseIndexWriterConfigErrors(t *testing.T) {
	for _, data := range []string{
		"mergeFactor: 1",
		"maxBufferedDocs: 0",
		"maxFieldLength: -5",
		"termIndexInterval: 0",
		"writeLockTimeout: -5",
		"commitLockTimeout: -2",
		"openMode: sideways",
		"mergeFactor: [1, 2]",
	} {
		_, err := ParseIndexWriterConfig([]byte(data), analysis.WhitespaceAnalyzer{})
		assert.Error(t, err, data)
	}
}

func TestLockTimeoutBounds(t *testing.T) {
	conf, err := ParseIndexWriterConfig([]byte("writeLockTimeout: -1\ncommitLockTimeout: 0"),
		analysis.WhitespaceAnalyzer{})
	require.NoError(t, err)
	assert.EqualValues(t, store.LOCK_OBTAIN_WAIT_FOREVER, conf.WriteLockTimeout())
	assert.EqualValues(t, 0, conf.CommitLockTimeout())

	assert.Panics(t, func() { newTestConfig().SetWriteLockTimeout(-5) })
	assert.Panics(t, func() { newTestConfig().SetCommitLockTimeout(-2) })
}

func TestLoadIndexWriterConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "writer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("openMode: append\nmaxMergeDocs: 5000\n"), 0o644))
	conf, err := LoadIndexWriterConfig(path, analysis.WhitespaceAnalyzer{})
	require.NoError(t, err)
	assert.Equal(t, OPEN_MODE_APPEND, conf.OpenMode())
	assert.Equal(t, 5000, conf.MaxMergeDocs())

	_, err = LoadIndexWriterConfig(filepath.Join(t.TempDir(), "missing.yaml"), analysis.WhitespaceAnalyzer{})
	assert.Error(t, err)
}
