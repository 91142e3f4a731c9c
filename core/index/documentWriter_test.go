package index

import (
	"math"
	"testing"

	"github.com/dbalmain/ferret-sub000/core/analysis"
	"github.com/dbalmain/ferret-sub000/core/document"
	"github.com/dbalmain/ferret-sub000/core/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gapAnalyzer struct {
	analysis.WhitespaceAnalyzer
}

func (gapAnalyzer) PositionIncrementGap(fieldName string) int {
	return 10
}

func writeSingleDoc(t *testing.T, dw *DocumentWriter, doc *document.Document) *SegmentReader {
	dir := dw.directory
	require.NoError(t, dw.AddDocument("_x", doc))
	r, err := openSegmentReader(NewSegmentInfo("_x", 1, dir))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestDocumentWriterInvertsFields(t *testing.T) {
	dw := NewDocumentWriter(store.NewRAMDirectory(), gapAnalyzer{}, DefaultSimilarity{},
		DEFAULT_MAX_FIELD_LENGTH, DEFAULT_TERM_INDEX_INTERVAL)

	doc := document.NewDocument()
	doc.Add(document.NewStringField("id", "doc-1", document.STORE_YES))
	first := document.NewTextField("body", "a b", document.STORE_YES, document.TERM_VECTOR_WITH_POSITIONS_OFFSETS)
	first.SetBoost(2)
	doc.Add(first)
	doc.Add(document.NewTextField("body", "c b", document.STORE_YES, document.TERM_VECTOR_WITH_POSITIONS_OFFSETS))
	doc.Add(document.NewStoredField("note", "not indexed"))
	r := writeSingleDoc(t, dw, doc)

	assert.Equal(t, 1, r.MaxDoc())
	stored, err := r.Document(0)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", stored.Get("id"))
	assert.Equal(t, []string{"a b", "c b"}, stored.GetValues("body"))
	assert.Equal(t, "not indexed", stored.Get("note"))

	assert.Equal(t, []string{"body", "id"}, r.FieldNames(FIELD_OPTION_INDEXED))
	assert.Equal(t, []string{"note"}, r.FieldNames(FIELD_OPTION_UNINDEXED))
	assert.Equal(t, []string{"body"}, r.FieldNames(FIELD_OPTION_TERMVECTOR_WITH_POSITION_OFFSET))

	e, err := r.Terms()
	require.NoError(t, err)
	assert.Equal(t, []string{"body:a", "body:b", "body:c", "id:doc-1"}, allTerms(t, e))
	require.NoError(t, e.Close())

	tp, err := r.TermPositionsFor(NewTerm("body", "b"))
	require.NoError(t, err)
	ok, err := tp.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, tp.Freq())
	for _, want := range []int{1, 13} { // second value starts after the gap
		pos, err := tp.NextPosition()
		require.NoError(t, err)
		assert.Equal(t, want, pos)
	}
	require.NoError(t, tp.Close())

	tv, err := r.TermFreqVector(0, "body")
	require.NoError(t, err)
	require.NotNil(t, tv)
	assert.Equal(t, []string{"a", "b", "c"}, tv.Terms)
	assert.Equal(t, []int{1, 2, 1}, tv.Freqs)
	assert.Equal(t, [][]int{{0}, {1, 13}, {12}}, tv.Positions)
	assert.Equal(t, [][]TermVectorOffsetInfo{
		{{0, 1}},
		{{2, 3}, {6, 7}},
		{{4, 5}},
	}, tv.Offsets)
	assert.Equal(t, 1, tv.IndexOf("b"))
	assert.Equal(t, -1, tv.IndexOf("z"))

	tv, err = r.TermFreqVector(0, "id")
	require.NoError(t, err)
	assert.Nil(t, tv)

	// boost 2 times lengthNorm 1/sqrt(4)
	norms, err := r.Norms("body")
	require.NoError(t, err)
	assert.Equal(t, []byte{EncodeNorm(1)}, norms)
	norms, err = r.Norms("id")
	require.NoError(t, err)
	assert.Equal(t, []byte{EncodeNorm(1)}, norms)
	assert.False(t, r.HasNorms("note"))
}

func TestDocumentWriterMaxFieldLength(t *testing.T) {
	dw := NewDocumentWriter(store.NewRAMDirectory(), analysis.WhitespaceAnalyzer{}, DefaultSimilarity{},
		3, DEFAULT_TERM_INDEX_INTERVAL)
	doc := document.NewDocument()
	doc.Add(document.NewTextField("body", "a b c d e", document.STORE_NO, document.TERM_VECTOR_NO))
	r := writeSingleDoc(t, dw, doc)

	for text, want := range map[string]int{"a": 1, "c": 1, "d": 0, "e": 0} {
		df, err := r.DocFreq(NewTerm("body", text))
		require.NoError(t, err)
		assert.Equal(t, want, df, text)
	}
	norms, err := r.Norms("body")
	require.NoError(t, err)
	assert.Equal(t, []byte{EncodeNorm(float32(1 / math.Sqrt(3)))}, norms)

	stored, err := r.Document(0)
	require.NoError(t, err)
	assert.Empty(t, stored.Fields())
}

func TestDocumentWriterStopWordGaps(t *testing.T) {
	dw := NewDocumentWriter(store.NewRAMDirectory(), analysis.NewStandardAnalyzer(), DefaultSimilarity{},
		DEFAULT_MAX_FIELD_LENGTH, DEFAULT_TERM_INDEX_INTERVAL)
	doc := document.NewDocument()
	doc.Add(document.NewTextField("body", "The quick fox and the dog", document.STORE_NO,
		document.TERM_VECTOR_WITH_POSITIONS))
	r := writeSingleDoc(t, dw, doc)

	tv, err := r.TermFreqVector(0, "body")
	require.NoError(t, err)
	require.NotNil(t, tv)
	assert.Equal(t, []string{"dog", "fox", "quick"}, tv.Terms)
	assert.Equal(t, [][]int{{5}, {2}, {1}}, tv.Positions)
	assert.Nil(t, tv.Offsets)
}
