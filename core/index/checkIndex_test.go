package index

import (
	"bytes"
	"testing"

	"github.com/dbalmain/ferret-sub000/core/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckIndexClean(t *testing.T) {
	dir := newTestIndex(t, newTestConfig(), 25)
	r, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, r.DeleteDocument(3))
	require.NoError(t, r.Close())

	var out bytes.Buffer
	status, err := NewCheckIndex(dir, &out).CheckIndex()
	require.NoError(t, err)
	assert.True(t, status.Clean)
	assert.False(t, status.MissingSegments)
	assert.Equal(t, 3, status.NumSegments)
	require.Len(t, status.SegmentInfos, 3)
	assert.Contains(t, out.String(), "No problems were detected with this index.")

	first := status.SegmentInfos[0]
	assert.NoError(t, first.Error)
	assert.True(t, first.OpenReaderPassed)
	assert.True(t, first.Compound)
	assert.True(t, first.HasDeletions)
	assert.Equal(t, 1, first.NumDeleted)
	assert.Positive(t, first.SizeBytes)
	assert.EqualValues(t, 9, first.FieldDocs["body"].GetCardinality())
	assert.False(t, first.FieldDocs["body"].Contains(3))
	assert.Equal(t, 9, first.StoredFieldStatus.DocCount)
	assert.Positive(t, first.TermIndexStatus.TermCount)
	assert.Equal(t, 2, first.FieldNormStatus.TotFields)

	last := status.SegmentInfos[2]
	assert.Equal(t, 5, last.DocCount)
	assert.False(t, last.HasDeletions)
	assert.EqualValues(t, 5, last.FieldDocs["id"].GetCardinality())
	assert.Equal(t, 5, last.TermVectorStatus.DocCount)
}

func TestCheckIndexMissingSegments(t *testing.T) {
	status, err := NewCheckIndex(store.NewRAMDirectory(), nil).CheckIndex()
	require.NoError(t, err)
	assert.True(t, status.MissingSegments)
	assert.False(t, status.Clean)
}

func TestCheckIndexBrokenSegment(t *testing.T) {
	dir := newTestIndex(t, newTestConfig(), 25)
	sis, err := ReadSegmentInfos(dir)
	require.NoError(t, err)
	require.NoError(t, dir.DeleteFile(sis.Info(1).Name+".cfs"))

	status, err := NewCheckIndex(dir, nil).CheckIndex()
	require.NoError(t, err)
	assert.False(t, status.Clean)
	assert.Equal(t, 1, status.NumBadSegments)
	assert.Equal(t, 10, status.TotLoseDocCount)
	assert.False(t, status.SegmentInfos[1].OpenReaderPassed)
	assert.Error(t, status.SegmentInfos[1].Error)
	assert.NoError(t, status.SegmentInfos[0].Error)
}
