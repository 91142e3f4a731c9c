package document

import (
	"bytes"
	"fmt"
)

// document/FieldType.java

// Describes the properties of a field.
type FieldType struct {
	indexed                  bool
	stored                   bool
	tokenized                bool
	compressed               bool
	storeTermVectors         bool
	storeTermVectorOffsets   bool
	storeTermVectorPositions bool
	frozen                   bool
}

// Create a new mutable FieldType with all of the properties from ref
func NewFieldTypeFrom(ref *FieldType) *FieldType {
	ft := *ref
	ft.frozen = false // Do not copy frozen!
	return &ft
}

// Create a new FieldType with default properties.
func NewFieldType() *FieldType {
	return &FieldType{tokenized: true}
}

func (ft *FieldType) checkIfFrozen() {
	assert2(!ft.frozen, "this FieldType is already frozen and cannot be changed")
}

func (ft *FieldType) Indexed() bool        { return ft.indexed }
func (ft *FieldType) SetIndexed(v bool)    { ft.checkIfFrozen(); ft.indexed = v }
func (ft *FieldType) Stored() bool         { return ft.stored }
func (ft *FieldType) SetStored(v bool)     { ft.checkIfFrozen(); ft.stored = v }
func (ft *FieldType) Tokenized() bool      { return ft.tokenized }
func (ft *FieldType) SetTokenized(v bool)  { ft.checkIfFrozen(); ft.tokenized = v }
func (ft *FieldType) Compressed() bool     { return ft.compressed }
func (ft *FieldType) SetCompressed(v bool) { ft.checkIfFrozen(); ft.compressed = v }

func (ft *FieldType) StoreTermVectors() bool       { return ft.storeTermVectors }
func (ft *FieldType) SetStoreTermVectors(v bool)   { ft.checkIfFrozen(); ft.storeTermVectors = v }
func (ft *FieldType) StoreTermVectorOffsets() bool { return ft.storeTermVectorOffsets }
func (ft *FieldType) SetStoreTermVectorOffsets(v bool) {
	ft.checkIfFrozen()
	ft.storeTermVectorOffsets = v
}
func (ft *FieldType) StoreTermVectorPositions() bool { return ft.storeTermVectorPositions }
func (ft *FieldType) SetStoreTermVectorPositions(v bool) {
	ft.checkIfFrozen()
	ft.storeTermVectorPositions = v
}

// Prevents future changes.
func (ft *FieldType) Freeze() *FieldType {
	ft.frozen = true
	return ft
}

func (ft *FieldType) String() string {
	var buf bytes.Buffer
	if ft.stored {
		buf.WriteString("stored")
		if ft.compressed {
			buf.WriteString("/compressed")
		}
	}
	if ft.indexed {
		if buf.Len() > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("indexed")
		if ft.tokenized {
			buf.WriteString(",tokenized")
		}
		if ft.storeTermVectors {
			buf.WriteString(",termVector")
		}
		if ft.storeTermVectorOffsets {
			buf.WriteString(",termVectorOffsets")
		}
		if ft.storeTermVectorPositions {
			buf.WriteString(",termVectorPosition")
		}
	}
	return buf.String()
}

func assert2(ok bool, msg string, args ...interface{}) {
	if !ok {
		panic(fmt.Sprintf(msg, args...))
	}
}
