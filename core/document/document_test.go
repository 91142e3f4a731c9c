package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentAccessors(t *testing.T) {
	doc := NewDocument()
	doc.Add(NewStringField("id", "42", STORE_YES))
	doc.Add(NewTextField("body", "hello world", STORE_COMPRESS, TERM_VECTOR_WITH_POSITIONS_OFFSETS))
	doc.Add(NewTextField("body", "second value", STORE_NO, TERM_VECTOR_NO))
	doc.Add(NewBinaryField("raw", []byte{1, 2}, STORE_YES))
	doc.Add(NewTextFieldFromReader("stream", strings.NewReader("from a reader"), TERM_VECTOR_YES))

	assert.Equal(t, "42", doc.Get("id"))
	assert.Equal(t, []string{"hello world", "second value"}, doc.GetValues("body"))
	assert.Equal(t, []byte{1, 2}, doc.GetBinaryValue("raw"))
	assert.Equal(t, "", doc.Get("raw"))
	assert.NotNil(t, doc.GetField("stream").ReaderValue())

	body := doc.GetField("body").FieldType()
	assert.True(t, body.Stored() && body.Compressed() && body.Indexed() && body.Tokenized())
	assert.True(t, body.StoreTermVectors() && body.StoreTermVectorPositions() && body.StoreTermVectorOffsets())

	id := doc.GetField("id").FieldType()
	assert.False(t, id.Tokenized())
	assert.False(t, id.StoreTermVectors())

	doc.RemoveFields("body")
	assert.Nil(t, doc.GetValues("body"))
	assert.Equal(t, float32(1.0), doc.Boost())
}

func TestFrozenFieldType(t *testing.T) {
	assert.Panics(t, func() { STORED_FIELD_TYPE.SetIndexed(true) })
	ft := NewFieldTypeFrom(STORED_FIELD_TYPE)
	ft.SetIndexed(true)
	assert.True(t, ft.Indexed())
	assert.False(t, STORED_FIELD_TYPE.Indexed())
}
