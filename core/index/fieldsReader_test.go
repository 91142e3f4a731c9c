package index

import (
	"errors"
	"testing"

	"github.com/dbalmain/ferret-sub000/core/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldsReaderRejectsNegativeLength(t *testing.T) {
	dir := store.NewRAMDirectory()
	fis := NewFieldInfos()
	fis.Add("id", false, false, false, false)

	fdt, err := dir.CreateOutput("_f.fdt", store.IO_CONTEXT_DEFAULT)
	require.NoError(t, err)
	require.NoError(t, fdt.WriteVInt(1))  // field count
	require.NoError(t, fdt.WriteVInt(0))  // field number
	require.NoError(t, fdt.WriteByte(0))  // bits
	require.NoError(t, fdt.WriteVInt(-1)) // length
	require.NoError(t, fdt.Close())

	fdx, err := dir.CreateOutput("_f.fdx", store.IO_CONTEXT_DEFAULT)
	require.NoError(t, err)
	require.NoError(t, fdx.WriteLong(0))
	require.NoError(t, fdx.Close())

	r, err := NewFieldsReader(dir, "_f", fis)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, 1, r.Size())

	doc, err := r.Doc(0)
	assert.Nil(t, doc)
	assert.True(t, errors.Is(err, ErrCorruptIndex), "%v", err)
}

func TestFieldsReaderRoundTrip(t *testing.T) {
	dir := store.NewRAMDirectory()
	fis := NewFieldInfos()
	doc := newTestDoc(7, testBody(7))
	fis.AddDocument(doc)

	w, err := NewFieldsWriter(dir, "_f", fis)
	require.NoError(t, err)
	require.NoError(t, w.AddDocument(doc))
	require.NoError(t, w.Close())

	r, err := NewFieldsReader(dir, "_f", fis)
	require.NoError(t, err)
	defer r.Close()
	got, err := r.Doc(0)
	require.NoError(t, err)
	assert.Equal(t, "7", got.Get("id"))
	assert.Equal(t, testBody(7), got.Get("body"))
}
