package index

import (
	"errors"
	"strings"
	"testing"

	"github.com/dbalmain/ferret-sub000/core/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWriter(t *testing.T, dir store.Directory, conf *IndexWriterConfig) *IndexWriter {
	w, err := NewIndexWriter(dir, conf)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w
}

func TestMergeCascade(t *testing.T) {
	w := newTestWriter(t, store.NewRAMDirectory(), newTestConfig())

	addTestDocs(t, w, 0, 9)
	assert.Equal(t, 9, w.SegmentCount())
	addTestDocs(t, w, 9, 10)
	assert.Equal(t, 1, w.SegmentCount())
	assert.Equal(t, 10, w.DocCount())
	assert.Equal(t, 1.0, testutil.ToFloat64(w.Metrics().Merges))

	addTestDocs(t, w, 10, 100)
	assert.Equal(t, 1, w.SegmentCount()) // ten segments of 10 became one of 100
	assert.Equal(t, 100, w.DocCount())
	assert.Equal(t, 11.0, testutil.ToFloat64(w.Metrics().Merges))
	assert.Equal(t, 200.0, testutil.ToFloat64(w.Metrics().MergedDocs))

	addTestDocs(t, w, 100, 105)
	assert.Equal(t, 6, w.SegmentCount())
	assert.Equal(t, 105.0, testutil.ToFloat64(w.Metrics().DocsAdded))
}

func TestSegmentCountStaysBounded(t *testing.T) {
	conf := newTestConfig().SetMergeFactor(3).SetMaxBufferedDocs(2)
	w := newTestWriter(t, store.NewRAMDirectory(), conf)
	for i := 0; i < 200; i++ {
		require.NoError(t, w.AddDocument(newTestDoc(i, testBody(i))))
		// at most mergeFactor-1 segments per size class plus the RAM buffer
		assert.LessOrEqual(t, w.SegmentCount(), 2*5+2, "after %v docs", i+1)
		assert.Equal(t, i+1, w.DocCount())
	}
}

func TestMaxMergeDocs(t *testing.T) {
	conf := newTestConfig().SetMaxMergeDocs(20)
	w := newTestWriter(t, store.NewRAMDirectory(), conf)
	addTestDocs(t, w, 0, 100)
	assert.Equal(t, 10, w.SegmentCount()) // segments of 10 are never merged further
}

func TestCloseFlushesBufferedDocs(t *testing.T) {
	dir := store.NewRAMDirectory()
	w, err := NewIndexWriter(dir, newTestConfig())
	require.NoError(t, err)
	addTestDocs(t, w, 0, 5)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.Equal(t, 1.0, testutil.ToFloat64(w.Metrics().Flushes))

	err = w.AddDocument(newTestDoc(5, testBody(5)))
	assert.True(t, errors.Is(err, ErrAlreadyClosed), "%v", err)
	assert.False(t, IsLocked(dir))

	r := openTestReader(t, dir)
	assert.Equal(t, 5, r.NumDocs())
	doc, err := r.Document(4)
	require.NoError(t, err)
	assert.Equal(t, "4", doc.Get("id"))
}

func TestOptimize(t *testing.T) {
	dir := store.NewRAMDirectory()
	w := newTestWriter(t, dir, newTestConfig())
	addTestDocs(t, w, 0, 25)
	require.NoError(t, w.Optimize())
	assert.Equal(t, 1, w.SegmentCount())
	assert.Equal(t, 25, w.DocCount())
	require.NoError(t, w.Close())

	files, err := dir.ListAll()
	require.NoError(t, err)
	var compound []string
	for _, file := range files {
		switch {
		case file == "segments" || file == "deletable":
		case strings.HasSuffix(file, ".cfs"):
			compound = append(compound, file)
		default:
			t.Errorf("unexpected file %v", file)
		}
	}
	assert.Len(t, compound, 1)

	r := openTestReader(t, dir)
	assert.IsType(t, &SegmentReader{}, r)
	assert.Equal(t, 25, r.NumDocs())
}

func TestOptimizeWithoutCompoundFiles(t *testing.T) {
	dir := store.NewRAMDirectory()
	w := newTestWriter(t, dir, newTestConfig().SetUseCompoundFile(false))
	addTestDocs(t, w, 0, 25)
	require.NoError(t, w.Optimize())
	require.NoError(t, w.Close())

	files, err := dir.ListAll()
	require.NoError(t, err)
	for _, file := range files {
		assert.False(t, strings.HasSuffix(file, ".cfs"), file)
	}
	r := openTestReader(t, dir)
	assert.Equal(t, 25, r.NumDocs())
}

func TestWriteLockExcludesSecondWriter(t *testing.T) {
	dir := store.NewRAMDirectory()
	w := newTestWriter(t, dir, newTestConfig())
	assert.True(t, IsLocked(dir))

	_, err := NewIndexWriter(dir, newTestConfig().SetWriteLockTimeout(0))
	assert.True(t, errors.Is(err, store.ErrLockObtainFailed), "%v", err)

	require.NoError(t, w.Close())
	w2 := newTestWriter(t, dir, newTestConfig().SetWriteLockTimeout(0))
	require.NoError(t, w2.Close())
}

func TestOpenModes(t *testing.T) {
	dir := newTestIndex(t, newTestConfig(), 10)

	w := newTestWriter(t, dir, newTestConfig().SetOpenMode(OPEN_MODE_APPEND))
	assert.Equal(t, 10, w.DocCount())
	require.NoError(t, w.Close())

	w = newTestWriter(t, dir, newTestConfig().SetOpenMode(OPEN_MODE_CREATE))
	assert.Equal(t, 0, w.DocCount())
	require.NoError(t, w.Close())
	files, err := dir.ListAll()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"segments", "deletable"}, files)

	empty := store.NewRAMDirectory()
	_, err = NewIndexWriter(empty, newTestConfig().SetOpenMode(OPEN_MODE_APPEND))
	assert.Error(t, err)
	assert.False(t, IsLocked(empty))
	assert.False(t, IndexExists(empty))
}

func TestAddIndexes(t *testing.T) {
	first := newTestIndex(t, newTestConfig(), 12)
	second := newTestIndex(t, newTestConfig(), 7)

	dir := store.NewRAMDirectory()
	w := newTestWriter(t, dir, newTestConfig())
	addTestDocs(t, w, 100, 103)
	require.NoError(t, w.AddIndexes(first, second))
	assert.Equal(t, 22, w.DocCount())
	assert.Equal(t, 1, w.SegmentCount())
	require.NoError(t, w.Close())

	r := openTestReader(t, dir)
	assert.Equal(t, 22, r.NumDocs())
	var ids []string
	for i := 0; i < r.MaxDoc(); i++ {
		doc, err := r.Document(i)
		require.NoError(t, err)
		ids = append(ids, doc.Get("id"))
	}
	assert.Equal(t, []string{"100", "101", "102",
		"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11",
		"0", "1", "2", "3", "4", "5", "6"}, ids)

	// the source indexes are untouched
	src := openTestReader(t, first)
	assert.Equal(t, 12, src.NumDocs())
}

func TestAddIndexesReaders(t *testing.T) {
	src := openTestReader(t, newTestIndex(t, newTestConfig(), 12))
	n, err := src.DeleteDocuments(NewTerm("body", "odd"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	dir := store.NewRAMDirectory()
	w := newTestWriter(t, dir, newTestConfig())
	addTestDocs(t, w, 100, 102)
	require.NoError(t, w.AddIndexesReaders(src))
	assert.Equal(t, 8, w.DocCount())
	require.NoError(t, w.Close())

	// the added reader stays open
	assert.Equal(t, 6, src.NumDocs())

	r := openTestReader(t, dir)
	df, err := r.DocFreq(NewTerm("body", "odd"))
	require.NoError(t, err)
	assert.Equal(t, 1, df) // doc 101 of the writer itself
	df, err = r.DocFreq(NewTerm("body", "even"))
	require.NoError(t, err)
	assert.Equal(t, 7, df)
}

func TestWriterMetricsShareRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	w1 := newTestWriter(t, store.NewRAMDirectory(), newTestConfig().SetRegisterer(reg))
	w2 := newTestWriter(t, store.NewRAMDirectory(), newTestConfig().SetRegisterer(reg))
	addTestDocs(t, w1, 0, 10)
	addTestDocs(t, w2, 0, 3)

	assert.Equal(t, 13.0, testutil.ToFloat64(w1.Metrics().DocsAdded))
	assert.Same(t, w1.Metrics().DocsAdded, w2.Metrics().DocsAdded)

	count, err := testutil.GatherAndCount(reg, "ferret_writer_docs_added_total", "ferret_writer_merges_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStaleReaderCannotDelete(t *testing.T) {
	dir := newTestIndex(t, newTestConfig(), 10)
	r := openTestReader(t, dir)
	current, err := r.IsCurrent()
	require.NoError(t, err)
	assert.True(t, current)

	w, err := NewIndexWriter(dir, newTestConfig())
	require.NoError(t, err)
	addTestDocs(t, w, 10, 15)
	require.NoError(t, w.Close())

	current, err = r.IsCurrent()
	require.NoError(t, err)
	assert.False(t, current)

	err = r.DeleteDocument(0)
	assert.True(t, errors.Is(err, ErrStaleReader), "%v", err)
	assert.False(t, IsLocked(dir))
	err = r.SetNorm(0, "body", 1)
	assert.True(t, errors.Is(err, ErrStaleReader), "%v", err)
	assert.False(t, r.IsDeleted(0))

	// a fresh reader may delete
	fresh, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, fresh.DeleteDocument(0))
	assert.True(t, IsLocked(dir))
	require.NoError(t, fresh.Close())
	assert.False(t, IsLocked(dir))

	reopened := openTestReader(t, dir)
	assert.Equal(t, 14, reopened.NumDocs())
	assert.True(t, reopened.IsDeleted(0))
}
