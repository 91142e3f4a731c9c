package index

import (
	"github.com/dbalmain/ferret-sub000/core/document"
	"github.com/dbalmain/ferret-sub000/core/store"
	"github.com/dbalmain/ferret-sub000/core/util"
	"github.com/golang/snappy"
)

// index/FieldsWriter.java

const (
	FIELD_IS_TOKENIZED  = 0x1
	FIELD_IS_BINARY     = 0x2
	FIELD_IS_COMPRESSED = 0x4
)

// Writes the stored fields of each added document to .fdt, and the
// start pointer of each document to .fdx.
type FieldsWriter struct {
	fieldInfos   *FieldInfos
	fieldsStream store.IndexOutput
	indexStream  store.IndexOutput
}

func NewFieldsWriter(dir store.Directory, segment string, fn *FieldInfos) (fw *FieldsWriter, err error) {
	fw = &FieldsWriter{fieldInfos: fn}
	if fw.fieldsStream, err = dir.CreateOutput(util.SegmentFileName(segment, "fdt"), store.IO_CONTEXT_DEFAULT); err != nil {
		return nil, err
	}
	if fw.indexStream, err = dir.CreateOutput(util.SegmentFileName(segment, "fdx"), store.IO_CONTEXT_DEFAULT); err != nil {
		return nil, util.CloseWhileHandlingError(err, fw.fieldsStream)
	}
	return fw, nil
}

func (fw *FieldsWriter) Close() error {
	return util.Close(fw.fieldsStream, fw.indexStream)
}

func (fw *FieldsWriter) AddDocument(doc *document.Document) error {
	if err := fw.indexStream.WriteLong(fw.fieldsStream.FilePointer()); err != nil {
		return err
	}

	var stored []*document.Field
	for _, field := range doc.Fields() {
		if field.FieldType().Stored() {
			stored = append(stored, field)
		}
	}
	if err := fw.fieldsStream.WriteVInt(int32(len(stored))); err != nil {
		return err
	}

	for _, field := range stored {
		ft := field.FieldType()
		if err := fw.fieldsStream.WriteVInt(fw.fieldInfos.FieldNumber(field.Name())); err != nil {
			return err
		}
		var bits byte
		if ft.Tokenized() {
			bits |= FIELD_IS_TOKENIZED
		}
		if field.IsBinary() {
			bits |= FIELD_IS_BINARY
		}
		if ft.Compressed() {
			bits |= FIELD_IS_COMPRESSED
		}
		if err := fw.fieldsStream.WriteByte(bits); err != nil {
			return err
		}

		var data []byte
		if field.IsBinary() {
			data = field.BinaryValue()
		} else {
			data = []byte(field.StringValue())
		}
		if ft.Compressed() {
			data = snappy.Encode(nil, data)
		}
		if err := fw.fieldsStream.WriteVInt(int32(len(data))); err != nil {
			return err
		}
		if err := fw.fieldsStream.WriteBytes(data); err != nil {
			return err
		}
	}
	return nil
}
