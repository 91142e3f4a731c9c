package index

import (
	"fmt"

	"github.com/dbalmain/ferret-sub000/core/document"
	"github.com/dbalmain/ferret-sub000/core/store"
	"github.com/dbalmain/ferret-sub000/core/util"
)

// index/FieldInfo.java

// Access to the Field Info file that describes document fields and
// whether or not they are indexed. Each segment has a separate Field
// Info file.
type FieldInfo struct {
	Name   string
	Number int32

	IsIndexed                   bool
	StoreTermVector             bool
	StorePositionWithTermVector bool
	StoreOffsetWithTermVector   bool
}

func (fi *FieldInfo) String() string {
	return fmt.Sprintf("%v(%v)", fi.Name, fi.Number)
}

// flag bits in the .fnm file
const (
	IS_INDEXED                      = 0x1
	STORE_TERMVECTOR                = 0x2
	STORE_POSITIONS_WITH_TERMVECTOR = 0x4
	STORE_OFFSET_WITH_TERMVECTOR    = 0x8
)

// index/FieldInfos.java

/*
Collection of FieldInfo(s), accessible by number or by name. Field
numbers are assigned in first-seen order. Flags are sticky: adding a
field again may turn flags on but never turns them off.
*/
type FieldInfos struct {
	byNumber []*FieldInfo
	byName   map[string]*FieldInfo
}

func NewFieldInfos() *FieldInfos {
	return &FieldInfos{byName: make(map[string]*FieldInfo)}
}

// Reads the field infos stored in name.
func ReadFieldInfos(dir store.Directory, name string) (fis *FieldInfos, err error) {
	input, err := dir.OpenInput(name, store.IO_CONTEXT_READONCE)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = util.CloseWhileHandlingError(err, input)
	}()

	fis = NewFieldInfos()
	size, err := input.ReadVInt()
	if err != nil {
		return nil, err
	}
	for i := int32(0); i < size; i++ {
		name, err := input.ReadString()
		if err != nil {
			return nil, err
		}
		bits, err := input.ReadByte()
		if err != nil {
			return nil, err
		}
		fis.addInternal(name, bits&IS_INDEXED != 0, bits&STORE_TERMVECTOR != 0,
			bits&STORE_POSITIONS_WITH_TERMVECTOR != 0, bits&STORE_OFFSET_WITH_TERMVECTOR != 0)
	}
	return fis, nil
}

// Adds field info for every field of doc.
func (fis *FieldInfos) AddDocument(doc *document.Document) {
	for _, field := range doc.Fields() {
		ft := field.FieldType()
		fis.Add(field.Name(), ft.Indexed(), ft.StoreTermVectors(),
			ft.StoreTermVectorPositions(), ft.StoreTermVectorOffsets())
	}
}

// Merges in the flags of every field of other.
func (fis *FieldInfos) AddAll(other *FieldInfos) {
	for _, fi := range other.byNumber {
		fis.Add(fi.Name, fi.IsIndexed, fi.StoreTermVector,
			fi.StorePositionWithTermVector, fi.StoreOffsetWithTermVector)
	}
}

/*
If the field is not yet known, adds it. If it is known, turns on the
given flags that are not already set. Returns the field's info.
*/
func (fis *FieldInfos) Add(name string, isIndexed, storeTermVector,
	storePositions, storeOffsets bool) *FieldInfo {

	fi, ok := fis.byName[name]
	if !ok {
		return fis.addInternal(name, isIndexed, storeTermVector, storePositions, storeOffsets)
	}
	fi.IsIndexed = fi.IsIndexed || isIndexed
	fi.StoreTermVector = fi.StoreTermVector || storeTermVector
	fi.StorePositionWithTermVector = fi.StorePositionWithTermVector || storePositions
	fi.StoreOffsetWithTermVector = fi.StoreOffsetWithTermVector || storeOffsets
	return fi
}

func (fis *FieldInfos) addInternal(name string, isIndexed, storeTermVector,
	storePositions, storeOffsets bool) *FieldInfo {

	fi := &FieldInfo{
		Name:                        name,
		Number:                      int32(len(fis.byNumber)),
		IsIndexed:                   isIndexed,
		StoreTermVector:             storeTermVector,
		StorePositionWithTermVector: storePositions,
		StoreOffsetWithTermVector:   storeOffsets,
	}
	fis.byNumber = append(fis.byNumber, fi)
	fis.byName[name] = fi
	return fi
}

// Returns the number of the named field, or -1 if it is unknown.
func (fis *FieldInfos) FieldNumber(name string) int32 {
	if fi, ok := fis.byName[name]; ok {
		return fi.Number
	}
	return -1
}

// Returns the name of the numbered field, or "" if it is unknown.
func (fis *FieldInfos) FieldName(number int32) string {
	if fi := fis.FieldInfoByNumber(number); fi != nil {
		return fi.Name
	}
	return ""
}

func (fis *FieldInfos) FieldInfo(name string) *FieldInfo {
	return fis.byName[name]
}

func (fis *FieldInfos) FieldInfoByNumber(number int32) *FieldInfo {
	if number < 0 || int(number) >= len(fis.byNumber) {
		return nil
	}
	return fis.byNumber[number]
}

func (fis *FieldInfos) Size() int {
	return len(fis.byNumber)
}

// Field infos in number order.
func (fis *FieldInfos) Values() []*FieldInfo {
	return fis.byNumber
}

func (fis *FieldInfos) HasVectors() bool {
	for _, fi := range fis.byNumber {
		if fi.StoreTermVector {
			return true
		}
	}
	return false
}

func (fis *FieldInfos) Write(dir store.Directory, name string) (err error) {
	output, err := dir.CreateOutput(name, store.IO_CONTEXT_DEFAULT)
	if err != nil {
		return err
	}
	defer func() {
		err = util.CloseWhileHandlingError(err, output)
	}()

	if err = output.WriteVInt(int32(len(fis.byNumber))); err != nil {
		return err
	}
	for _, fi := range fis.byNumber {
		var bits byte
		if fi.IsIndexed {
			bits |= IS_INDEXED
		}
		if fi.StoreTermVector {
			bits |= STORE_TERMVECTOR
		}
		if fi.StorePositionWithTermVector {
			bits |= STORE_POSITIONS_WITH_TERMVECTOR
		}
		if fi.StoreOffsetWithTermVector {
			bits |= STORE_OFFSET_WITH_TERMVECTOR
		}
		if err = output.WriteString(fi.Name); err != nil {
			return err
		}
		if err = output.WriteByte(bits); err != nil {
			return err
		}
	}
	return nil
}
