package index

import (
	"fmt"

	"github.com/dbalmain/ferret-sub000/core/store"
)

// index/SegmentTermEnum.java

// Enumerates the entries of a .tis or .tii file in term order.
type SegmentTermEnum struct {
	input      store.IndexInput
	fieldInfos *FieldInfos
	size       int64
	position   int64

	termBuffer TermBuffer
	prevBuffer TermBuffer
	scanBuffer TermBuffer

	termInfo     TermInfo
	format       int32
	isIndex      bool
	indexPointer int64

	indexInterval int32
	skipInterval  int32
}

func newSegmentTermEnum(input store.IndexInput, fis *FieldInfos, isIndex bool) (*SegmentTermEnum, error) {
	e := &SegmentTermEnum{
		input:      input,
		fieldInfos: fis,
		isIndex:    isIndex,
		position:   -1,
	}
	var err error
	if e.format, err = input.ReadInt(); err != nil {
		return nil, err
	}
	if e.format != TERM_INFOS_FORMAT {
		return nil, &FormatError{fmt.Sprint(input), e.format, TERM_INFOS_FORMAT}
	}
	if e.size, err = input.ReadLong(); err != nil {
		return nil, err
	}
	if e.indexInterval, err = input.ReadInt(); err != nil {
		return nil, err
	}
	if e.skipInterval, err = input.ReadInt(); err != nil {
		return nil, err
	}
	return e, nil
}

// Returns an independent enum at the same position.
func (e *SegmentTermEnum) Clone() *SegmentTermEnum {
	clone := *e
	clone.input = e.input.Clone()
	clone.termBuffer = TermBuffer{}
	clone.termBuffer.SetFrom(&e.termBuffer)
	clone.prevBuffer = TermBuffer{}
	clone.prevBuffer.SetFrom(&e.prevBuffer)
	clone.scanBuffer = TermBuffer{}
	return &clone
}

func (e *SegmentTermEnum) seek(pointer, p int64, t *Term, ti *TermInfo) error {
	if err := e.input.Seek(pointer); err != nil {
		return err
	}
	e.position = p
	e.termBuffer.Set(t)
	e.prevBuffer.Reset()
	e.termInfo.Set(ti)
	return nil
}

// Increments the enumeration to the next element. True if one exists.
func (e *SegmentTermEnum) Next() (bool, error) {
	if e.position >= e.size-1 {
		e.position = e.size
		e.prevBuffer.SetFrom(&e.termBuffer)
		e.termBuffer.Reset()
		return false, nil
	}
	e.position++

	e.prevBuffer.SetFrom(&e.termBuffer)
	if err := e.termBuffer.Read(e.input, e.fieldInfos); err != nil {
		return false, err
	}

	var err error
	if e.termInfo.DocFreq, err = e.input.ReadVInt(); err != nil { // read doc freq
		return false, err
	}
	var delta int64
	if delta, err = e.input.ReadVLong(); err != nil { // read freq pointer
		return false, err
	}
	e.termInfo.FreqPointer += delta
	if delta, err = e.input.ReadVLong(); err != nil { // read prox pointer
		return false, err
	}
	e.termInfo.ProxPointer += delta

	e.termInfo.SkipOffset = 0
	if e.termInfo.DocFreq >= e.skipInterval {
		if e.termInfo.SkipOffset, err = e.input.ReadVInt(); err != nil {
			return false, err
		}
	}

	if e.isIndex {
		if delta, err = e.input.ReadVLong(); err != nil {
			return false, err
		}
		e.indexPointer += delta
	}
	return true, nil
}

// Optimized scan, without allocating new terms.
func (e *SegmentTermEnum) scanTo(term *Term) error {
	e.scanBuffer.Set(term)
	for e.scanBuffer.CompareTo(&e.termBuffer) > 0 {
		ok, err := e.Next()
		if err != nil || !ok {
			return err
		}
	}
	return nil
}

// Returns the current term, or nil if the enum is not positioned on one.
func (e *SegmentTermEnum) Term() *Term {
	if e.position < 0 || e.position >= e.size {
		return nil
	}
	return e.termBuffer.ToTerm()
}

// Returns the previous term enumerated, or nil.
func (e *SegmentTermEnum) prev() *Term {
	if e.position <= 0 {
		return nil
	}
	return e.prevBuffer.ToTerm()
}

// Returns a copy of the current TermInfo.
func (e *SegmentTermEnum) TermInfo() *TermInfo {
	ti := e.termInfo
	return &ti
}

func (e *SegmentTermEnum) DocFreq() int {
	return int(e.termInfo.DocFreq)
}

func (e *SegmentTermEnum) FreqPointer() int64 {
	return e.termInfo.FreqPointer
}

func (e *SegmentTermEnum) ProxPointer() int64 {
	return e.termInfo.ProxPointer
}

// Number of entries in the file.
func (e *SegmentTermEnum) Size() int64 {
	return e.size
}

func (e *SegmentTermEnum) Close() error {
	return e.input.Close()
}
