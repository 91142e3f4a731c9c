package index

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/dbalmain/ferret-sub000/core/analysis"
	"github.com/dbalmain/ferret-sub000/core/document"
	"github.com/dbalmain/ferret-sub000/core/store"
	"github.com/stretchr/testify/require"
)

func newTestConfig() *IndexWriterConfig {
	return NewIndexWriterConfig(analysis.WhitespaceAnalyzer{})
}

func newTestDoc(id int, body string) *document.Document {
	doc := document.NewDocument()
	doc.Add(document.NewStringField("id", strconv.Itoa(id), document.STORE_YES))
	doc.Add(document.NewTextField("body", body, document.STORE_YES,
		document.TERM_VECTOR_WITH_POSITIONS_OFFSETS))
	return doc
}

// "all" in every doc, "even" or "odd", and a unique "n<i>".
func testBody(i int) string {
	parity := "odd"
	if i%2 == 0 {
		parity = "even"
	}
	return fmt.Sprintf("all %v n%v", parity, i)
}

func addTestDocs(t *testing.T, w *IndexWriter, from, to int) {
	for i := from; i < to; i++ {
		require.NoError(t, w.AddDocument(newTestDoc(i, testBody(i))))
	}
}

func newTestIndex(t *testing.T, conf *IndexWriterConfig, numDocs int) *store.RAMDirectory {
	dir := store.NewRAMDirectory()
	w, err := NewIndexWriter(dir, conf)
	require.NoError(t, err)
	addTestDocs(t, w, 0, numDocs)
	require.NoError(t, w.Close())
	return dir
}

func openTestReader(t *testing.T, dir store.Directory) IndexReader {
	r, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func collectDocs(t *testing.T, td TermDocs) (docs, freqs []int) {
	for {
		ok, err := td.Next()
		require.NoError(t, err)
		if !ok {
			return
		}
		docs = append(docs, td.Doc())
		freqs = append(freqs, td.Freq())
	}
}

func collectTerms(t *testing.T, e TermEnum) []string {
	var terms []string
	for t1 := e.Term(); t1 != nil; t1 = e.Term() {
		terms = append(terms, t1.String())
		ok, err := e.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
	}
	return terms
}

// Drains an enum that is positioned before its first term.
func allTerms(t *testing.T, e TermEnum) []string {
	var terms []string
	for {
		ok, err := e.Next()
		require.NoError(t, err)
		if !ok {
			return terms
		}
		terms = append(terms, e.Term().String())
	}
}
