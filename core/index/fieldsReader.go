package index

import (
	"fmt"
	"sync"

	"github.com/dbalmain/ferret-sub000/core/document"
	"github.com/dbalmain/ferret-sub000/core/store"
	"github.com/dbalmain/ferret-sub000/core/util"
	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// index/FieldsReader.java

// Class responsible for access to stored document fields.
type FieldsReader struct {
	fieldInfos   *FieldInfos
	sync.Mutex   // guards the streams
	fieldsStream store.IndexInput
	indexStream  store.IndexInput
	size         int
}

func NewFieldsReader(d store.Directory, segment string, fn *FieldInfos) (r *FieldsReader, err error) {
	r = &FieldsReader{fieldInfos: fn}
	if r.fieldsStream, err = d.OpenInput(util.SegmentFileName(segment, "fdt"), store.IO_CONTEXT_READ); err != nil {
		return nil, err
	}
	if r.indexStream, err = d.OpenInput(util.SegmentFileName(segment, "fdx"), store.IO_CONTEXT_READ); err != nil {
		return nil, util.CloseWhileHandlingError(err, r.fieldsStream)
	}
	r.size = int(r.indexStream.Length() / 8)
	return r, nil
}

func (r *FieldsReader) Close() error {
	return util.Close(r.fieldsStream, r.indexStream)
}

func (r *FieldsReader) Size() int {
	return r.size
}

// Returns the stored fields of document n.
func (r *FieldsReader) Doc(n int) (*document.Document, error) {
	if n < 0 || n >= r.size {
		return nil, fmt.Errorf("document %v out of range [0,%v)", n, r.size)
	}
	r.Lock()
	defer r.Unlock()

	if err := r.indexStream.Seek(int64(n) * 8); err != nil {
		return nil, err
	}
	position, err := r.indexStream.ReadLong()
	if err != nil {
		return nil, err
	}
	if err = r.fieldsStream.Seek(position); err != nil {
		return nil, err
	}

	doc := document.NewDocument()
	numFields, err := r.fieldsStream.ReadVInt()
	if err != nil {
		return nil, err
	}
	for i := int32(0); i < numFields; i++ {
		fieldNumber, err := r.fieldsStream.ReadVInt()
		if err != nil {
			return nil, err
		}
		fi := r.fieldInfos.FieldInfoByNumber(fieldNumber)
		if fi == nil {
			return nil, fmt.Errorf("unknown field number %v in stored fields of doc %v", fieldNumber, n)
		}
		bits, err := r.fieldsStream.ReadByte()
		if err != nil {
			return nil, err
		}
		length, err := r.fieldsStream.ReadVInt()
		if err != nil {
			return nil, err
		}
		if length < 0 {
			return nil, errors.Wrapf(ErrCorruptIndex, "negative length %v for field %v of doc %v", length, fi.Name, n)
		}
		data := make([]byte, length)
		if err = r.fieldsStream.ReadBytes(data); err != nil {
			return nil, err
		}
		if bits&FIELD_IS_COMPRESSED != 0 {
			if data, err = snappy.Decode(nil, data); err != nil {
				return nil, errors.Wrapf(err, "field %v of doc %v", fi.Name, n)
			}
		}
		doc.Add(storedField(fi, bits, data))
	}
	return doc, nil
}

func storedField(fi *FieldInfo, bits byte, data []byte) *document.Field {
	compressed := bits&FIELD_IS_COMPRESSED != 0
	if bits&FIELD_IS_BINARY != 0 {
		st := document.STORE_YES
		if compressed {
			st = document.STORE_COMPRESS
		}
		return document.NewBinaryField(fi.Name, data, st)
	}
	ft := document.NewFieldType()
	ft.SetStored(true)
	ft.SetCompressed(compressed)
	ft.SetIndexed(fi.IsIndexed)
	ft.SetTokenized(bits&FIELD_IS_TOKENIZED != 0)
	if fi.IsIndexed {
		ft.SetStoreTermVectors(fi.StoreTermVector)
		ft.SetStoreTermVectorPositions(fi.StorePositionWithTermVector)
		ft.SetStoreTermVectorOffsets(fi.StoreOffsetWithTermVector)
	}
	return document.NewFieldFromString(fi.Name, string(data), ft.Freeze())
}
