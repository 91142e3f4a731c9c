package document

import (
	"fmt"
	"io"
)

// document/Field.java

/*
Expert: directly create a field for a document. Most users should use
one of the sugar constructors: NewTextField, NewStringField,
NewStoredField, NewBinaryField.

A field is a section of a Document. Each field has three parts: name,
type and value. Values may be text (string or io.Reader) or binary.
*/
type Field struct {
	_type  *FieldType
	name   string
	data   interface{} // string, io.Reader or []byte
	_boost float32
}

// Create field with Reader value. Reader-valued fields are indexed
// but never stored.
func NewFieldFromReader(name string, reader io.Reader, ft *FieldType) *Field {
	assert2(name != "", "name cannot be empty")
	assert2(ft != nil, "type cannot be nil")
	assert2(reader != nil, "reader cannot be nil")
	assert2(!ft.stored, "fields with a Reader value cannot be stored")
	assert2(ft.indexed && ft.tokenized, "non-tokenized fields must use String values")
	return &Field{ft, name, reader, 1.0}
}

// Create field with String value.
func NewFieldFromString(name, value string, ft *FieldType) *Field {
	assert2(name != "", "name cannot be empty")
	assert2(ft != nil, "type cannot be nil")
	assert2(ft.stored || ft.indexed,
		"it doesn't make sense to have a field that is neither indexed nor stored")
	assert2(ft.indexed || !ft.storeTermVectors,
		"cannot store term vector information for a field that is not indexed")
	return &Field{ft, name, value, 1.0}
}

// Create a stored field with binary value.
func NewFieldFromBytes(name string, value []byte, ft *FieldType) *Field {
	assert2(name != "", "name cannot be empty")
	assert2(ft != nil, "type cannot be nil")
	assert2(!ft.indexed, "Fields with BytesRef values cannot be indexed")
	return &Field{ft, name, value, 1.0}
}

func (f *Field) Name() string {
	return f.name
}

func (f *Field) FieldType() *FieldType {
	return f._type
}

// The value of the field as a string, or "" when it is not a string.
func (f *Field) StringValue() string {
	if s, ok := f.data.(string); ok {
		return s
	}
	return ""
}

// The value of the field as a Reader, or nil.
func (f *Field) ReaderValue() io.Reader {
	if r, ok := f.data.(io.Reader); ok {
		return r
	}
	return nil
}

// The value of the field in binary, or nil.
func (f *Field) BinaryValue() []byte {
	if b, ok := f.data.([]byte); ok {
		return b
	}
	return nil
}

func (f *Field) IsBinary() bool {
	_, ok := f.data.([]byte)
	return ok
}

/*
Returns the boost factor for hits for this field. The default value
is 1.0. It is multiplied into the field's norm when the document is
indexed.
*/
func (f *Field) Boost() float32 {
	return f._boost
}

func (f *Field) SetBoost(boost float32) {
	f._boost = boost
}

func (f *Field) String() string {
	var value interface{} = f.data
	if b, ok := f.data.([]byte); ok {
		value = fmt.Sprintf("[%v bytes]", len(b))
	}
	return fmt.Sprintf("%v<%v:%v>", f._type, f.name, value)
}

/* Specifies whether and how a field should be stored. */
type Store int

const (
	// Store the original field value in the index.
	STORE_YES = Store(1)
	// Do not store the field's value in the index.
	STORE_NO = Store(2)
	// Store the original value in compressed form.
	STORE_COMPRESS = Store(3)
)

/* Specifies whether and how a field should have term vectors. */
type TermVector int

const (
	TERM_VECTOR_NO                     = TermVector(0)
	TERM_VECTOR_YES                    = TermVector(1)
	TERM_VECTOR_WITH_POSITIONS         = TermVector(2)
	TERM_VECTOR_WITH_OFFSETS           = TermVector(3)
	TERM_VECTOR_WITH_POSITIONS_OFFSETS = TermVector(4)
)

func (ft *FieldType) applyStore(store Store) *FieldType {
	ft.stored = store != STORE_NO
	ft.compressed = store == STORE_COMPRESS
	return ft
}

func (ft *FieldType) applyTermVector(tv TermVector) *FieldType {
	ft.storeTermVectors = tv != TERM_VECTOR_NO
	ft.storeTermVectorPositions = tv == TERM_VECTOR_WITH_POSITIONS || tv == TERM_VECTOR_WITH_POSITIONS_OFFSETS
	ft.storeTermVectorOffsets = tv == TERM_VECTOR_WITH_OFFSETS || tv == TERM_VECTOR_WITH_POSITIONS_OFFSETS
	return ft
}

// document/StringField.java

/*
Creates a new field that is indexed but not tokenized: the entire
String value is indexed as a single token. For example, this might be
used for a 'country' field or an 'id' field.
*/
func NewStringField(name, value string, store Store) *Field {
	ft := NewFieldType().applyStore(store)
	ft.indexed = true
	ft.tokenized = false
	return NewFieldFromString(name, value, ft.Freeze())
}

// document/TextField.java

/*
A field that is indexed and tokenized. For example, this would be
used on a 'body' field, that contains the bulk of a document's text.
*/
func NewTextField(name, value string, store Store, tv TermVector) *Field {
	ft := NewFieldType().applyStore(store).applyTermVector(tv)
	ft.indexed = true
	return NewFieldFromString(name, value, ft.Freeze())
}

// Un-stored tokenized field reading its text from r.
func NewTextFieldFromReader(name string, r io.Reader, tv TermVector) *Field {
	ft := NewFieldType().applyTermVector(tv)
	ft.indexed = true
	return NewFieldFromReader(name, r, ft.Freeze())
}

// document/StoredField.java

var STORED_FIELD_TYPE = func() *FieldType {
	ft := NewFieldType()
	ft.stored = true
	ft.tokenized = false
	return ft.Freeze()
}()

var COMPRESSED_FIELD_TYPE = func() *FieldType {
	ft := NewFieldType()
	ft.stored = true
	ft.compressed = true
	ft.tokenized = false
	return ft.Freeze()
}()

// A stored-only field with a string value.
func NewStoredField(name, value string) *Field {
	return NewFieldFromString(name, value, STORED_FIELD_TYPE)
}

// A stored-only field with a binary value. The slice is not copied.
func NewBinaryField(name string, value []byte, store Store) *Field {
	ft := STORED_FIELD_TYPE
	if store == STORE_COMPRESS {
		ft = COMPRESSED_FIELD_TYPE
	}
	return NewFieldFromBytes(name, value, ft)
}
