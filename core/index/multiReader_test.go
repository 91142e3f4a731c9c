package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderIndex(t *testing.T) {
	starts := []int{0, 5, 8, 15} // sub-readers of 5, 3 and 7 docs
	for doc, want := range map[int]int{0: 0, 4: 0, 5: 1, 6: 1, 7: 1, 8: 2, 14: 2} {
		assert.Equal(t, want, readerIndex(doc, starts, 3), "doc %v", doc)
	}

	// empty sub-readers never own a document
	starts = []int{0, 5, 5, 5, 8}
	assert.Equal(t, 0, readerIndex(4, starts, 4))
	assert.Equal(t, 3, readerIndex(5, starts, 4))
	assert.Equal(t, 3, readerIndex(7, starts, 4))
}

func TestMultiReaderDispatch(t *testing.T) {
	conf := newTestConfig().SetMaxBufferedDocs(5)
	dir := newTestIndex(t, conf, 18) // the last 3 docs are flushed into the third segment
	r := openTestReader(t, dir)
	mr, ok := r.(*MultiReader)
	require.True(t, ok)
	assert.Equal(t, []int{0, 5, 10, 18}, mr.Starts())
	assert.Equal(t, 18, r.MaxDoc())
	assert.Equal(t, 18, r.NumDocs())

	for i := 0; i < r.MaxDoc(); i++ {
		doc, err := r.Document(i)
		require.NoError(t, err)
		assert.Equal(t, testBody(i), doc.Get("body"))

		tv, err := r.TermFreqVector(i, "body")
		require.NoError(t, err)
		require.NotNil(t, tv)
		assert.Contains(t, tv.Terms, "all")
		assert.GreaterOrEqual(t, tv.IndexOf("n"+doc.Get("id")), 0)
	}

	e, err := r.Terms()
	require.NoError(t, err)
	terms := allTerms(t, e)
	require.NoError(t, e.Close())
	assert.Len(t, terms, 3+18+18) // all/even/odd, n<i>, id values
	for i := 1; i < len(terms); i++ {
		assert.Less(t, terms[i-1], terms[i])
	}

	e, err = r.TermsFrom(NewTerm("body", "even"))
	require.NoError(t, err)
	assert.Equal(t, NewTerm("body", "even"), e.Term())
	assert.Equal(t, 9, e.DocFreq()) // summed over all sub-readers
	ok, err = e.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, NewTerm("body", "n0"), e.Term())
	assert.Equal(t, 1, e.DocFreq())
	require.NoError(t, e.Close())

	df, err := r.DocFreq(NewTerm("body", "all"))
	require.NoError(t, err)
	assert.Equal(t, 18, df)

	td, err := r.TermDocsFor(NewTerm("body", "n16"))
	require.NoError(t, err)
	docs, freqs := collectDocs(t, td)
	require.NoError(t, td.Close())
	assert.Equal(t, []int{16}, docs)
	assert.Equal(t, []int{1}, freqs)
}

func TestMultiReaderDeletesAndCaches(t *testing.T) {
	dir := newTestIndex(t, newTestConfig().SetMaxBufferedDocs(5), 18)
	r := openTestReader(t, dir)

	assert.False(t, r.HasDeletions())
	require.NoError(t, r.DeleteDocument(6))
	require.NoError(t, r.DeleteDocument(17))
	assert.True(t, r.HasDeletions())
	assert.True(t, r.IsDeleted(6))
	assert.True(t, r.IsDeleted(17))
	assert.False(t, r.IsDeleted(5))
	assert.Equal(t, 16, r.NumDocs())
	assert.True(t, r.(*MultiReader).SubReaders()[1].IsDeleted(1))

	n, err := r.DeleteDocuments(NewTerm("body", "all"))
	require.NoError(t, err)
	assert.Equal(t, 16, n)
	assert.Equal(t, 0, r.NumDocs())

	require.NoError(t, r.UndeleteAll())
	assert.False(t, r.HasDeletions())
	assert.Equal(t, 18, r.NumDocs())

	norms, err := r.Norms("body")
	require.NoError(t, err)
	require.Len(t, norms, 18)
	again, err := r.Norms("body")
	require.NoError(t, err)
	assert.Same(t, &norms[0], &again[0]) // cached

	require.NoError(t, r.SetNorm(12, "body", 7))
	updated, err := r.Norms("body")
	require.NoError(t, err)
	assert.EqualValues(t, 7, updated[12])
	assert.Equal(t, norms[11], updated[11])

	into := make([]byte, 20)
	require.NoError(t, r.NormsInto("body", into, 2))
	assert.Equal(t, updated, into[2:])

	missing, err := r.Norms("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMultiReaderNormsFollowSubReaderChanges(t *testing.T) {
	first := openTestReader(t, newTestIndex(t, newTestConfig(), 4))
	second := openTestReader(t, newTestIndex(t, newTestConfig(), 3))
	r := NewMultiReader(first, second)

	norms, err := r.Norms("body")
	require.NoError(t, err)
	require.Len(t, norms, 7)

	require.NoError(t, second.SetNorm(1, "body", 9))
	updated, err := r.Norms("body")
	require.NoError(t, err)
	assert.EqualValues(t, 9, updated[5])
	assert.Equal(t, norms[4], updated[4])

	into := make([]byte, 7)
	require.NoError(t, r.NormsInto("body", into, 0))
	assert.Equal(t, updated, into)

	outer := NewMultiReader(r)
	cached, err := outer.Norms("body")
	require.NoError(t, err)
	require.NoError(t, first.SetNorm(0, "body", 3))
	fresh, err := outer.Norms("body")
	require.NoError(t, err)
	assert.EqualValues(t, 3, fresh[0])
	assert.NotEqual(t, cached[0], fresh[0])
}

func TestNewMultiReaderOverIndexes(t *testing.T) {
	first := openTestReader(t, newTestIndex(t, newTestConfig(), 4))
	second := openTestReader(t, newTestIndex(t, newTestConfig(), 3))
	r := NewMultiReader(first, second)

	assert.Equal(t, 7, r.MaxDoc())
	doc, err := r.Document(5)
	require.NoError(t, err)
	assert.Equal(t, "1", doc.Get("id"))

	df, err := r.DocFreq(NewTerm("id", "1"))
	require.NoError(t, err)
	assert.Equal(t, 2, df)

	td, err := r.TermDocsFor(NewTerm("id", "2"))
	require.NoError(t, err)
	docs, _ := collectDocs(t, td)
	require.NoError(t, td.Close())
	assert.Equal(t, []int{2, 6}, docs)

	assert.Equal(t, []string{"body", "id"}, r.FieldNames(FIELD_OPTION_ALL))
}
