package index

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dbalmain/ferret-sub000/core/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type termAndInfo struct {
	term *Term
	info *TermInfo
}

func writeTestTermInfos(t *testing.T, dir store.Directory, interval int32) (*FieldInfos, []termAndInfo) {
	fis := NewFieldInfos()
	fis.Add("body", true, false, false, false)
	fis.Add("author", true, false, false, false)

	var entries []termAndInfo
	var freqPointer, proxPointer int64
	for _, field := range []string{"author", "body"} {
		for i := 0; i < 300; i++ {
			df := int32(i%40 + 1)
			ti := &TermInfo{DocFreq: df, FreqPointer: freqPointer, ProxPointer: proxPointer}
			if df >= DEFAULT_SKIP_INTERVAL {
				ti.SkipOffset = int32(i * 3)
			}
			entries = append(entries, termAndInfo{NewTerm(field, fmt.Sprintf("term%04d", i)), ti})
			freqPointer += int64(df) * 2
			proxPointer += int64(df) * 3
		}
	}

	w, err := NewTermInfosWriter(dir, "_t", fis, interval)
	require.NoError(t, err)
	for _, e := range entries {
		require.NoError(t, w.Add(e.term, e.info))
	}
	assert.EqualValues(t, len(entries), w.Size())
	require.NoError(t, w.Close())
	return fis, entries
}

func TestTermInfosRoundTrip(t *testing.T) {
	dir := store.NewRAMDirectory()
	fis, entries := writeTestTermInfos(t, dir, 16)

	r, err := NewTermInfosReader(dir, "_t", fis)
	require.NoError(t, err)
	defer r.Close()
	assert.EqualValues(t, len(entries), r.Size())

	// random order access goes through the index
	for i := len(entries) - 1; i >= 0; i -= 7 {
		ti, err := r.Get(entries[i].term)
		require.NoError(t, err)
		require.NotNil(t, ti, "%v", entries[i].term)
		assert.Equal(t, *entries[i].info, *ti, "%v", entries[i].term)
	}
	// sequential access scans the cached enum
	for _, e := range entries {
		ti, err := r.Get(e.term)
		require.NoError(t, err)
		require.NotNil(t, ti)
		assert.Equal(t, *e.info, *ti, "%v", e.term)
	}

	for _, missing := range []*Term{
		NewTerm("author", "a"), NewTerm("body", "term0000x"),
		NewTerm("body", "zzz"), NewTerm("title", "term0001"),
	} {
		ti, err := r.Get(missing)
		require.NoError(t, err)
		assert.Nil(t, ti, "%v", missing)
	}
}

func TestTermInfosEnumerationOrder(t *testing.T) {
	dir := store.NewRAMDirectory()
	fis, entries := writeTestTermInfos(t, dir, 128)

	r, err := NewTermInfosReader(dir, "_t", fis)
	require.NoError(t, err)
	defer r.Close()

	e := r.Terms()
	var prev *Term
	n := 0
	for {
		ok, err := e.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		cur := e.Term()
		if prev != nil {
			assert.True(t, prev.CompareTo(cur) < 0, "%v !< %v", prev, cur)
		}
		assert.Equal(t, *entries[n].term, *cur)
		assert.Equal(t, *entries[n].info, *e.TermInfo())
		prev = cur
		n++
	}
	assert.Equal(t, len(entries), n)
	require.NoError(t, e.Close())

	from, err := r.TermsFrom(NewTerm("body", "term0150x"))
	require.NoError(t, err)
	assert.Equal(t, NewTerm("body", "term0151"), from.Term())
	require.NoError(t, from.Close())

	past, err := r.TermsFrom(NewTerm("zzz", ""))
	require.NoError(t, err)
	assert.Nil(t, past.Term())
	require.NoError(t, past.Close())
}

func TestTermInfosWriterRejectsDisorder(t *testing.T) {
	dir := store.NewRAMDirectory()
	fis := NewFieldInfos()
	fis.Add("body", true, false, false, false)

	w, err := NewTermInfosWriter(dir, "_t", fis, DEFAULT_TERM_INDEX_INTERVAL)
	require.NoError(t, err)
	require.NoError(t, w.Add(NewTerm("body", "b"), &TermInfo{DocFreq: 1, FreqPointer: 10, ProxPointer: 10}))

	err = w.Add(NewTerm("body", "a"), &TermInfo{DocFreq: 1, FreqPointer: 20, ProxPointer: 20})
	assert.True(t, errors.Is(err, ErrTermOutOfOrder), "%v", err)
	err = w.Add(NewTerm("body", "b"), &TermInfo{DocFreq: 1, FreqPointer: 20, ProxPointer: 20})
	assert.True(t, errors.Is(err, ErrTermOutOfOrder), "%v", err)
	err = w.Add(NewTerm("body", "c"), &TermInfo{DocFreq: 1, FreqPointer: 5, ProxPointer: 20})
	assert.True(t, errors.Is(err, ErrPointerRegression), "%v", err)
	err = w.Add(NewTerm("body", "c"), &TermInfo{DocFreq: 1, FreqPointer: 20, ProxPointer: 5})
	assert.True(t, errors.Is(err, ErrPointerRegression), "%v", err)

	require.NoError(t, w.Add(NewTerm("body", "c"), &TermInfo{DocFreq: 1, FreqPointer: 20, ProxPointer: 20}))
	assert.EqualValues(t, 2, w.Size())
	require.NoError(t, w.Close())
}

func TestTermInfosReaderRejectsUnknownFormat(t *testing.T) {
	dir := store.NewRAMDirectory()
	for _, name := range []string{"_t.tis", "_t.tii"} {
		out, err := dir.CreateOutput(name, store.IO_CONTEXT_DEFAULT)
		require.NoError(t, err)
		require.NoError(t, out.WriteInt(-1))
		require.NoError(t, out.WriteLong(0))
		require.NoError(t, out.Close())
	}
	_, err := NewTermInfosReader(dir, "_t", NewFieldInfos())
	var formatErr *FormatError
	require.True(t, errors.As(err, &formatErr), "%v", err)
	assert.EqualValues(t, -1, formatErr.Version)
	assert.EqualValues(t, TERM_INFOS_FORMAT, formatErr.Expected)
}
