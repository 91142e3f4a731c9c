package index

import (
	"io"
	"sort"
	"strings"

	"github.com/dbalmain/ferret-sub000/core/analysis"
	"github.com/dbalmain/ferret-sub000/core/document"
	"github.com/dbalmain/ferret-sub000/core/store"
	"github.com/dbalmain/ferret-sub000/core/util"
)

// index/DocumentWriter.java

// Occurrences of one term in the document being inverted.
type posting struct {
	term      *Term
	freq      int
	positions []int
	offsets   []TermVectorOffsetInfo
}

/*
Inverts a single document into a one-document segment: field infos,
stored fields, term dictionary, postings, norms and term vectors.
*/
type DocumentWriter struct {
	analyzer          analysis.Analyzer
	directory         store.Directory
	similarity        Similarity
	maxFieldLength    int
	termIndexInterval int32
	infoStream        util.InfoStream

	// Keys are Terms, values are Postings.
	// Used to buffer a document before it is written to the index.
	postingTable   map[Term]*posting
	fieldInfos     *FieldInfos
	fieldLengths   []int
	fieldPositions []int
	fieldOffsets   []int
	fieldBoosts    []float32
}

func NewDocumentWriter(directory store.Directory, analyzer analysis.Analyzer,
	similarity Similarity, maxFieldLength int, termIndexInterval int32) *DocumentWriter {

	return &DocumentWriter{
		directory:         directory,
		analyzer:          analyzer,
		similarity:        similarity,
		maxFieldLength:    maxFieldLength,
		termIndexInterval: termIndexInterval,
		infoStream:        util.DefaultInfoStream(),
	}
}

func (w *DocumentWriter) SetInfoStream(infoStream util.InfoStream) {
	w.infoStream = infoStream
}

// Writes doc as the single document of the new segment.
func (w *DocumentWriter) AddDocument(segment string, doc *document.Document) error {
	// write field names
	w.fieldInfos = NewFieldInfos()
	w.fieldInfos.AddDocument(doc)
	if err := w.fieldInfos.Write(w.directory, util.SegmentFileName(segment, "fnm")); err != nil {
		return err
	}

	// write field values
	fieldsWriter, err := NewFieldsWriter(w.directory, segment, w.fieldInfos)
	if err != nil {
		return err
	}
	err = fieldsWriter.AddDocument(doc)
	if err = util.CloseWhileHandlingError(err, fieldsWriter); err != nil {
		return err
	}

	// invert doc into postingTable
	w.postingTable = make(map[Term]*posting) // clear postingTable
	n := w.fieldInfos.Size()
	w.fieldLengths = make([]int, n)   // init fieldLengths
	w.fieldPositions = make([]int, n) // init fieldPositions
	w.fieldOffsets = make([]int, n)   // init fieldOffsets
	w.fieldBoosts = make([]float32, n)
	for i := range w.fieldBoosts {
		w.fieldBoosts[i] = doc.Boost()
	}
	if err = w.invertDocument(doc); err != nil {
		return err
	}

	// sort postingTable into an array
	postings := w.sortPostingTable()

	// write postings
	if err = w.writePostings(postings, segment); err != nil {
		return err
	}

	// write norms of indexed fields
	return w.writeNorms(segment)
}

// Tokenizes the fields of a document into Postings.
func (w *DocumentWriter) invertDocument(doc *document.Document) error {
	for _, field := range doc.Fields() {
		ft := field.FieldType()
		if !ft.Indexed() {
			continue
		}
		fieldName := field.Name()
		fieldNumber := w.fieldInfos.FieldNumber(fieldName)

		length := w.fieldLengths[fieldNumber]     // length of field
		position := w.fieldPositions[fieldNumber] // position in field
		if length > 0 {
			position += w.analyzer.PositionIncrementGap(fieldName)
		}
		offset := w.fieldOffsets[fieldNumber] // offset field

		if !ft.Tokenized() { // un-tokenized field
			stringValue := field.StringValue()
			if ft.StoreTermVectorOffsets() {
				w.addPosition(fieldName, stringValue, position, &TermVectorOffsetInfo{offset, offset + len(stringValue)})
			} else {
				w.addPosition(fieldName, stringValue, position, nil)
			}
			position++
			offset += len(stringValue)
			length++
		} else {
			reader := field.ReaderValue()
			if reader == nil {
				reader = strings.NewReader(field.StringValue())
			}
			var err error
			if length, position, offset, err = w.invertTokens(field, reader, length, position, offset); err != nil {
				return err
			}
		}

		w.fieldLengths[fieldNumber] = length // save field length
		w.fieldPositions[fieldNumber] = position
		w.fieldBoosts[fieldNumber] *= field.Boost()
		w.fieldOffsets[fieldNumber] = offset
	}
	return nil
}

func (w *DocumentWriter) invertTokens(field *document.Field, reader io.Reader,
	length, position, offset int) (int, int, int, error) {

	fieldName := field.Name()
	stream, err := w.analyzer.TokenStream(fieldName, reader)
	if err != nil {
		return 0, 0, 0, err
	}
	defer stream.Close()

	storeOffsets := field.FieldType().StoreTermVectorOffsets()
	var lastToken *analysis.Token
	for {
		t, ok, err := stream.Next()
		if err != nil {
			return 0, 0, 0, err
		}
		if !ok {
			break
		}
		if length >= w.maxFieldLength {
			if w.infoStream.IsEnabled("IW") {
				w.infoStream.Message("IW", "maxFieldLength %v reached, ignoring following tokens", w.maxFieldLength)
			}
			break
		}
		position += t.PositionIncrement - 1
		if storeOffsets {
			w.addPosition(fieldName, t.Text, position, &TermVectorOffsetInfo{offset + t.Start, offset + t.End})
		} else {
			w.addPosition(fieldName, t.Text, position, nil)
		}
		position++
		lastToken = &t
		length++
	}
	if lastToken != nil {
		offset += lastToken.End + 1
	}
	return length, position, offset, nil
}

func (w *DocumentWriter) addPosition(field, text string, position int, offset *TermVectorOffsetInfo) {
	key := Term{Field: field, Text: text}
	ti, ok := w.postingTable[key]
	if !ok { // word not seen before
		ti = &posting{term: &Term{Field: field, Text: text}}
		w.postingTable[key] = ti
	}
	ti.freq++
	ti.positions = append(ti.positions, position)
	if offset != nil {
		ti.offsets = append(ti.offsets, *offset)
	}
}

func (w *DocumentWriter) sortPostingTable() []*posting {
	// copy postingTable into an array
	postings := make([]*posting, 0, len(w.postingTable))
	for _, p := range w.postingTable {
		postings = append(postings, p)
	}
	// sort the array
	sort.Slice(postings, func(i, j int) bool {
		return postings[i].term.CompareTo(postings[j].term) < 0
	})
	return postings
}

func (w *DocumentWriter) writePostings(postings []*posting, segment string) (err error) {
	var freq, prox store.IndexOutput
	var tis *TermInfosWriter
	var termVectorWriter *TermVectorsWriter
	defer func() {
		err = util.CloseWhileHandlingError(err, freq, prox, tis, termVectorWriter)
	}()

	// open files for inverse index storage
	if freq, err = w.directory.CreateOutput(util.SegmentFileName(segment, "frq"), store.IO_CONTEXT_DEFAULT); err != nil {
		return err
	}
	if prox, err = w.directory.CreateOutput(util.SegmentFileName(segment, "prx"), store.IO_CONTEXT_DEFAULT); err != nil {
		return err
	}
	if tis, err = NewTermInfosWriter(w.directory, segment, w.fieldInfos, w.termIndexInterval); err != nil {
		return err
	}
	writer := newPostingsWriter(freq, prox, int(tis.SkipInterval()))

	var vectors []*TermFreqVector
	var current *TermFreqVector
	for _, p := range postings {
		writer.startTerm()
		if err = writer.addDoc(0, p.freq, p.positions); err != nil {
			return err
		}
		ti, err := writer.finishTerm()
		if err != nil {
			return err
		}
		if err = tis.Add(p.term, ti); err != nil {
			return err
		}

		// check to see if we want to store term vectors for this field
		fi := w.fieldInfos.FieldInfo(p.term.Field)
		if !fi.StoreTermVector {
			continue
		}
		if current == nil || current.Field != fi.Name {
			current = &TermFreqVector{Field: fi.Name}
			vectors = append(vectors, current)
		}
		current.Terms = append(current.Terms, p.term.Text)
		current.Freqs = append(current.Freqs, p.freq)
		if fi.StorePositionWithTermVector {
			current.Positions = append(current.Positions, p.positions)
		}
		if fi.StoreOffsetWithTermVector {
			current.Offsets = append(current.Offsets, p.offsets)
		}
	}

	if w.fieldInfos.HasVectors() {
		if termVectorWriter, err = NewTermVectorsWriter(w.directory, segment, w.fieldInfos); err != nil {
			return err
		}
		if err = termVectorWriter.AddDocument(vectors); err != nil {
			return err
		}
	}
	return nil
}

func (w *DocumentWriter) writeNorms(segment string) error {
	for _, fi := range w.fieldInfos.Values() {
		if !fi.IsIndexed {
			continue
		}
		norm := w.fieldBoosts[fi.Number] * w.similarity.LengthNorm(fi.Name, w.fieldLengths[fi.Number])
		norms, err := w.directory.CreateOutput(util.NormFileName(segment, fi.Number, false), store.IO_CONTEXT_DEFAULT)
		if err != nil {
			return err
		}
		err = norms.WriteByte(EncodeNorm(norm))
		if err = util.CloseWhileHandlingError(err, norms); err != nil {
			return err
		}
	}
	return nil
}
