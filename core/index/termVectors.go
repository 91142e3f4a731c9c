package index

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/dbalmain/ferret-sub000/core/store"
	"github.com/dbalmain/ferret-sub000/core/util"
)

// index/TermFreqVector.java

type TermVectorOffsetInfo struct {
	StartOffset int
	EndOffset   int
}

/*
Provides access to stored term vector of a document field. The vector
consists of the name of the field, an array of the terms that occur in
the field of the document and a parallel array of frequencies. Terms
are sorted. Positions and offsets are only present when the field was
indexed with them.
*/
type TermFreqVector struct {
	Field     string
	Terms     []string
	Freqs     []int
	Positions [][]int
	Offsets   [][]TermVectorOffsetInfo
}

// Number of unique terms in the field.
func (v *TermFreqVector) Size() int {
	return len(v.Terms)
}

// Returns the index of term in Terms, or -1.
func (v *TermFreqVector) IndexOf(term string) int {
	if i := sort.SearchStrings(v.Terms, term); i < len(v.Terms) && v.Terms[i] == term {
		return i
	}
	return -1
}

func (v *TermFreqVector) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "{%v: ", v.Field)
	for i, t := range v.Terms {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%v/%v", t, v.Freqs[i])
	}
	buf.WriteString("}")
	return buf.String()
}

// index/TermVectorsWriter.java

const (
	TERM_VECTORS_FORMAT = 2

	STORE_POSITIONS_WITH_TERMVECTOR_FLAG = 0x1
	STORE_OFFSET_WITH_TERMVECTOR_FLAG    = 0x2
)

/*
Writer works by opening a document and then opening the fields within
the document and then writing out the vectors for each field.

	.tvx: format, then one .tvd pointer per document
	.tvd: format, then per document the field count, the field
	      numbers and the .tvf pointers of each field (delta coded)
	.tvf: format, then per field the term count, a flag byte and the
	      front-coded terms with freqs, positions and offsets
*/
type TermVectorsWriter struct {
	fieldInfos *FieldInfos
	tvx        store.IndexOutput
	tvd        store.IndexOutput
	tvf        store.IndexOutput
}

func NewTermVectorsWriter(dir store.Directory, segment string, fis *FieldInfos) (w *TermVectorsWriter, err error) {
	w = &TermVectorsWriter{fieldInfos: fis}
	outputs := []*store.IndexOutput{&w.tvx, &w.tvd, &w.tvf}
	for i, ext := range util.VECTOR_EXTENSIONS {
		if *outputs[i], err = dir.CreateOutput(util.SegmentFileName(segment, ext), store.IO_CONTEXT_DEFAULT); err == nil {
			err = (*outputs[i]).WriteInt(TERM_VECTORS_FORMAT)
		}
		if err != nil {
			return nil, util.CloseWhileHandlingError(err, w)
		}
	}
	return w, nil
}

// Adds the vectors of the next document; nil or empty vectors write an
// entry with no fields.
func (w *TermVectorsWriter) AddDocument(vectors []*TermFreqVector) error {
	if err := w.tvx.WriteLong(w.tvd.FilePointer()); err != nil {
		return err
	}

	sorted := make([]*TermFreqVector, len(vectors))
	copy(sorted, vectors)
	sort.SliceStable(sorted, func(i, j int) bool {
		return w.fieldInfos.FieldNumber(sorted[i].Field) < w.fieldInfos.FieldNumber(sorted[j].Field)
	})

	pointers := make([]int64, len(sorted))
	for i, v := range sorted {
		pointers[i] = w.tvf.FilePointer()
		if err := w.writeField(v); err != nil {
			return err
		}
	}

	if err := w.tvd.WriteVInt(int32(len(sorted))); err != nil {
		return err
	}
	lastFieldNumber := int32(0)
	for _, v := range sorted {
		number := w.fieldInfos.FieldNumber(v.Field)
		if number < 0 {
			return fmt.Errorf("term vector for unknown field %v", v.Field)
		}
		if err := w.tvd.WriteVInt(number - lastFieldNumber); err != nil {
			return err
		}
		lastFieldNumber = number
	}
	lastFieldPointer := int64(0)
	for _, pointer := range pointers {
		if err := w.tvd.WriteVLong(pointer - lastFieldPointer); err != nil {
			return err
		}
		lastFieldPointer = pointer
	}
	return nil
}

func (w *TermVectorsWriter) writeField(v *TermFreqVector) error {
	out := w.tvf
	if err := out.WriteVInt(int32(len(v.Terms))); err != nil {
		return err
	}
	storePositions := v.Positions != nil
	storeOffsets := v.Offsets != nil
	var bits byte
	if storePositions {
		bits |= STORE_POSITIONS_WITH_TERMVECTOR_FLAG
	}
	if storeOffsets {
		bits |= STORE_OFFSET_WITH_TERMVECTOR_FLAG
	}
	if err := out.WriteByte(bits); err != nil {
		return err
	}

	lastTerm := ""
	for i, term := range v.Terms {
		start := util.StringDifference(lastTerm, term)
		if err := out.WriteVInt(int32(start)); err != nil {
			return err
		}
		if err := out.WriteVInt(int32(len(term) - start)); err != nil {
			return err
		}
		if err := out.WriteBytes([]byte(term[start:])); err != nil {
			return err
		}
		if err := out.WriteVInt(int32(v.Freqs[i])); err != nil {
			return err
		}
		lastTerm = term

		if storePositions {
			position := 0
			for _, p := range v.Positions[i] {
				if err := out.WriteVInt(int32(p - position)); err != nil {
					return err
				}
				position = p
			}
		}
		if storeOffsets {
			position := 0
			for _, o := range v.Offsets[i] {
				if err := out.WriteVInt(int32(o.StartOffset - position)); err != nil {
					return err
				}
				if err := out.WriteVInt(int32(o.EndOffset - o.StartOffset)); err != nil {
					return err
				}
				position = o.EndOffset
			}
		}
	}
	return nil
}

func (w *TermVectorsWriter) Close() error {
	return util.Close(w.tvx, w.tvd, w.tvf)
}

// index/TermVectorsReader.java

/*
Reads the term vectors of a segment. A reader keeps file positions
and is not safe for concurrent use; callers take a Clone() each.
*/
type TermVectorsReader struct {
	fieldInfos *FieldInfos
	tvx        store.IndexInput
	tvd        store.IndexInput
	tvf        store.IndexInput
	size       int
}

func NewTermVectorsReader(d store.Directory, segment string, fis *FieldInfos) (r *TermVectorsReader, err error) {
	r = &TermVectorsReader{fieldInfos: fis}
	inputs := []*store.IndexInput{&r.tvx, &r.tvd, &r.tvf}
	for i, ext := range util.VECTOR_EXTENSIONS {
		name := util.SegmentFileName(segment, ext)
		if *inputs[i], err = d.OpenInput(name, store.IO_CONTEXT_READ); err == nil {
			err = checkValidFormat(*inputs[i], name)
		}
		if err != nil {
			return nil, util.CloseWhileHandlingError(err, r)
		}
	}
	r.size = int(r.tvx.Length() / 8)
	return r, nil
}

func checkValidFormat(in store.IndexInput, name string) error {
	format, err := in.ReadInt()
	if err != nil {
		return err
	}
	if format != TERM_VECTORS_FORMAT {
		return &FormatError{name, format, TERM_VECTORS_FORMAT}
	}
	return nil
}

func (r *TermVectorsReader) Close() error {
	return util.Close(r.tvx, r.tvd, r.tvf)
}

// Number of documents in the reader.
func (r *TermVectorsReader) Size() int {
	return r.size
}

func (r *TermVectorsReader) Clone() *TermVectorsReader {
	return &TermVectorsReader{
		fieldInfos: r.fieldInfos,
		tvx:        r.tvx.Clone(),
		tvd:        r.tvd.Clone(),
		tvf:        r.tvf.Clone(),
		size:       r.size,
	}
}

// Returns the field numbers and .tvf pointers of docNum.
func (r *TermVectorsReader) fieldPointers(docNum int) ([]int32, []int64, error) {
	if docNum < 0 || docNum >= r.size {
		return nil, nil, fmt.Errorf("document %v out of range [0,%v)", docNum, r.size)
	}
	if err := r.tvx.Seek(int64(docNum)*8 + 4); err != nil {
		return nil, nil, err
	}
	position, err := r.tvx.ReadLong()
	if err != nil {
		return nil, nil, err
	}
	if err = r.tvd.Seek(position); err != nil {
		return nil, nil, err
	}
	fieldCount, err := r.tvd.ReadVInt()
	if err != nil || fieldCount == 0 {
		return nil, nil, err
	}
	numbers := make([]int32, fieldCount)
	number := int32(0)
	for i := range numbers {
		delta, err := r.tvd.ReadVInt()
		if err != nil {
			return nil, nil, err
		}
		number += delta
		numbers[i] = number
	}
	pointers := make([]int64, fieldCount)
	pointer := int64(0)
	for i := range pointers {
		delta, err := r.tvd.ReadVLong()
		if err != nil {
			return nil, nil, err
		}
		pointer += delta
		pointers[i] = pointer
	}
	return numbers, pointers, nil
}

// Retrieves the term vector of field for docNum, or nil when the field
// has none.
func (r *TermVectorsReader) Get(docNum int, field string) (*TermFreqVector, error) {
	fieldNumber := r.fieldInfos.FieldNumber(field)
	numbers, pointers, err := r.fieldPointers(docNum)
	if err != nil {
		return nil, err
	}
	for i, number := range numbers {
		if number == fieldNumber {
			return r.readTermVector(field, pointers[i])
		}
	}
	return nil, nil
}

// Returns all term vectors of docNum in field number order, or nil.
func (r *TermVectorsReader) GetAll(docNum int) ([]*TermFreqVector, error) {
	numbers, pointers, err := r.fieldPointers(docNum)
	if err != nil || len(numbers) == 0 {
		return nil, err
	}
	ans := make([]*TermFreqVector, len(numbers))
	for i, number := range numbers {
		if ans[i], err = r.readTermVector(r.fieldInfos.FieldName(number), pointers[i]); err != nil {
			return nil, err
		}
	}
	return ans, nil
}

func (r *TermVectorsReader) readTermVector(field string, pointer int64) (*TermFreqVector, error) {
	in := r.tvf
	if err := in.Seek(pointer); err != nil {
		return nil, err
	}
	numTerms, err := in.ReadVInt()
	if err != nil {
		return nil, err
	}
	bits, err := in.ReadByte()
	if err != nil {
		return nil, err
	}
	v := &TermFreqVector{
		Field: field,
		Terms: make([]string, numTerms),
		Freqs: make([]int, numTerms),
	}
	storePositions := bits&STORE_POSITIONS_WITH_TERMVECTOR_FLAG != 0
	storeOffsets := bits&STORE_OFFSET_WITH_TERMVECTOR_FLAG != 0
	if storePositions {
		v.Positions = make([][]int, numTerms)
	}
	if storeOffsets {
		v.Offsets = make([][]TermVectorOffsetInfo, numTerms)
	}

	var buffer []byte
	for i := 0; i < int(numTerms); i++ {
		start, err := in.ReadVInt()
		if err != nil {
			return nil, err
		}
		deltaLength, err := in.ReadVInt()
		if err != nil {
			return nil, err
		}
		if int(start) > len(buffer) {
			return nil, fmt.Errorf("corrupt term vector of %v: prefix %v > %v", field, start, len(buffer))
		}
		buffer = append(buffer[:start], make([]byte, deltaLength)...)
		if err = in.ReadBytes(buffer[start:]); err != nil {
			return nil, err
		}
		v.Terms[i] = string(buffer)
		freq, err := in.ReadVInt()
		if err != nil {
			return nil, err
		}
		v.Freqs[i] = int(freq)

		if storePositions {
			positions := make([]int, freq)
			prevPosition := 0
			for j := range positions {
				delta, err := in.ReadVInt()
				if err != nil {
					return nil, err
				}
				prevPosition += int(delta)
				positions[j] = prevPosition
			}
			v.Positions[i] = positions
		}
		if storeOffsets {
			offsets := make([]TermVectorOffsetInfo, freq)
			prevOffset := 0
			for j := range offsets {
				startOffset, err := in.ReadVInt()
				if err != nil {
					return nil, err
				}
				endOffset, err := in.ReadVInt()
				if err != nil {
					return nil, err
				}
				offsets[j].StartOffset = prevOffset + int(startOffset)
				offsets[j].EndOffset = offsets[j].StartOffset + int(endOffset)
				prevOffset = offsets[j].EndOffset
			}
			v.Offsets[i] = offsets
		}
	}
	return v, nil
}

/*
Hands out clones of one TermVectorsReader so that each caller owns a
cursor for the duration of a call. Released clones are kept for reuse
and closed with the pool.
*/
type termVectorsPool struct {
	sync.Mutex
	orig *TermVectorsReader
	free []*TermVectorsReader
}

func (p *termVectorsPool) get() *TermVectorsReader {
	p.Lock()
	defer p.Unlock()
	if n := len(p.free); n > 0 {
		r := p.free[n-1]
		p.free = p.free[:n-1]
		return r
	}
	return p.orig.Clone()
}

func (p *termVectorsPool) put(r *TermVectorsReader) {
	p.Lock()
	defer p.Unlock()
	p.free = append(p.free, r)
}

func (p *termVectorsPool) Close() error {
	p.Lock()
	defer p.Unlock()
	var err error
	for _, r := range p.free {
		if err2 := r.Close(); err2 != nil {
			err = err2
		}
	}
	p.free = nil
	return util.CloseWhileHandlingError(err, p.orig)
}
