package index

import (
	"strings"
	"testing"

	"github.com/dbalmain/ferret-sub000/core/document"
	"github.com/dbalmain/ferret-sub000/core/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWildcardEquals(t *testing.T) {
	for _, c := range []struct {
		pattern, s string
		want       bool
	}{
		{"", "", true},
		{"", "a", false},
		{"abc", "abc", true},
		{"abc", "abd", false},
		{"a?c", "abc", true},
		{"a?c", "ac", false},
		{"*", "", true},
		{"*", "anything", true},
		{"a*", "a", true},
		{"a*c", "abbbc", true},
		{"a*c", "abbbd", false},
		{"*b*", "abc", true},
		{"a**?", "ab", true},
		{"a**?", "a", false},
		{"?é", "xé", true},
	} {
		assert.Equal(t, c.want, WildcardEquals([]rune(c.pattern), []rune(c.s)), "%q ~ %q", c.pattern, c.s)
	}
}

func newWordsIndex(t *testing.T) IndexReader {
	dir := store.NewRAMDirectory()
	w, err := NewIndexWriter(dir, newTestConfig())
	require.NoError(t, err)
	for _, text := range []string{"apple apply", "applet banana", "bandana band", "ape"} {
		doc := document.NewDocument()
		doc.Add(document.NewTextField("body", text, document.STORE_NO, document.TERM_VECTOR_NO))
		doc.Add(document.NewStringField("tag", strings.Fields(text)[0], document.STORE_NO))
		require.NoError(t, w.AddDocument(doc))
	}
	require.NoError(t, w.Close())
	return openTestReader(t, dir)
}

func TestPrefixTermEnum(t *testing.T) {
	r := newWordsIndex(t)

	e, err := NewPrefixTermEnum(r, NewTerm("body", "app"))
	require.NoError(t, err)
	assert.Equal(t, []string{"body:apple", "body:applet", "body:apply"}, collectTerms(t, e))
	require.NoError(t, e.Close())

	e, err = NewPrefixTermEnum(r, NewTerm("body", "band"))
	require.NoError(t, err)
	assert.Equal(t, 1, e.DocFreq())
	assert.Equal(t, []string{"body:band", "body:bandana"}, collectTerms(t, e))
	require.NoError(t, e.Close())

	// the enumeration stops at the end of the field
	e, err = NewPrefixTermEnum(r, NewTerm("body", "zz"))
	require.NoError(t, err)
	assert.Nil(t, e.Term())
	assert.Equal(t, -1, e.DocFreq())
	require.NoError(t, e.Close())
}

func TestWildcardTermEnum(t *testing.T) {
	r := newWordsIndex(t)

	e, err := NewWildcardTermEnum(r, NewTerm("body", "ap*e"))
	require.NoError(t, err)
	assert.Equal(t, []string{"body:ape", "body:apple"}, collectTerms(t, e))
	require.NoError(t, e.Close())

	e, err = NewWildcardTermEnum(r, NewTerm("body", "ban?"))
	require.NoError(t, err)
	assert.Equal(t, []string{"body:band"}, collectTerms(t, e))
	require.NoError(t, e.Close())

	e, err = NewWildcardTermEnum(r, NewTerm("body", "*an*"))
	require.NoError(t, err)
	assert.Equal(t, []string{"body:banana", "body:band", "body:bandana"}, collectTerms(t, e))
	require.NoError(t, e.Close())

	e, err = NewWildcardTermEnum(r, NewTerm("tag", "a*"))
	require.NoError(t, err)
	assert.Equal(t, []string{"tag:ape", "tag:apple", "tag:applet"}, collectTerms(t, e))
	require.NoError(t, e.Close())
}

func TestFilteredTermEnumPredicate(t *testing.T) {
	r := newWordsIndex(t)
	actual, err := r.Terms()
	require.NoError(t, err)
	e, err := NewFilteredTermEnum(actual,
		func(term *Term) bool { return len(term.Text) == 4 },
		func(term *Term) bool { return term.Field != "body" })
	require.NoError(t, err)
	assert.Equal(t, []string{"body:band"}, collectTerms(t, e))
	require.NoError(t, e.Close())
}
