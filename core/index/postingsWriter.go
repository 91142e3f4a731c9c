package index

import (
	"github.com/dbalmain/ferret-sub000/core/store"
	"github.com/dbalmain/ferret-sub000/core/util"
	"github.com/pkg/errors"
)

/*
Encodes the postings of one term at a time into the .frq and .prx
streams of a segment. Documents are delta coded with the low bit of
the doc code flagging freq == 1. Positions are delta coded within each
document. After every skipInterval-th document a skip entry
(docDelta, freqPointerDelta, proxPointerDelta) is buffered; the
buffered entries are appended to .frq after the term's postings.
*/
type postingsWriter struct {
	freqOutput   store.IndexOutput
	proxOutput   store.IndexOutput
	skipInterval int
	skipBuffer   *util.ByteSliceDataOutput

	freqPointer int64
	proxPointer int64
	df          int
	lastDoc     int

	lastSkipDoc         int
	lastSkipFreqPointer int64
	lastSkipProxPointer int64
}

func newPostingsWriter(freqOutput, proxOutput store.IndexOutput, skipInterval int) *postingsWriter {
	return &postingsWriter{
		freqOutput:   freqOutput,
		proxOutput:   proxOutput,
		skipInterval: skipInterval,
		skipBuffer:   util.NewByteSliceDataOutput(),
	}
}

func (w *postingsWriter) startTerm() {
	w.freqPointer = w.freqOutput.FilePointer()
	w.proxPointer = w.proxOutput.FilePointer()
	w.df = 0
	w.lastDoc = 0
	w.skipBuffer.Reset()
	w.lastSkipDoc = 0
	w.lastSkipFreqPointer = w.freqPointer
	w.lastSkipProxPointer = w.proxPointer
}

// Appends one posting. Documents must be strictly ascending.
func (w *postingsWriter) addDoc(doc, freq int, positions []int) error {
	if w.df > 0 && doc <= w.lastDoc || doc < 0 {
		return errors.Wrapf(ErrDocsOutOfOrder, "doc %v after %v", doc, w.lastDoc)
	}
	docCode := int32(doc-w.lastDoc) << 1 // use low bit to flag freq=1
	w.lastDoc = doc
	if freq == 1 {
		if err := w.freqOutput.WriteVInt(docCode | 1); err != nil { // write doc & freq=1
			return err
		}
	} else {
		if err := w.freqOutput.WriteVInt(docCode); err != nil { // write doc
			return err
		}
		if err := w.freqOutput.WriteVInt(int32(freq)); err != nil { // write frequency in doc
			return err
		}
	}

	lastPosition := 0 // write position deltas
	for _, position := range positions {
		if err := w.proxOutput.WriteVInt(int32(position - lastPosition)); err != nil {
			return err
		}
		lastPosition = position
	}

	w.df++
	if w.df%w.skipInterval == 0 {
		return w.bufferSkip(doc)
	}
	return nil
}

func (w *postingsWriter) bufferSkip(doc int) error {
	freqPointer := w.freqOutput.FilePointer()
	proxPointer := w.proxOutput.FilePointer()
	out := w.skipBuffer
	if err := out.WriteVInt(int32(doc - w.lastSkipDoc)); err != nil {
		return err
	}
	if err := out.WriteVInt(int32(freqPointer - w.lastSkipFreqPointer)); err != nil {
		return err
	}
	if err := out.WriteVInt(int32(proxPointer - w.lastSkipProxPointer)); err != nil {
		return err
	}
	w.lastSkipDoc = doc
	w.lastSkipFreqPointer = freqPointer
	w.lastSkipProxPointer = proxPointer
	return nil
}

// Writes any buffered skip data and returns the term's info. The
// returned DocFreq is zero when no postings were added.
func (w *postingsWriter) finishTerm() (*TermInfo, error) {
	ti := &TermInfo{
		DocFreq:     int32(w.df),
		FreqPointer: w.freqPointer,
		ProxPointer: w.proxPointer,
	}
	if w.df >= w.skipInterval {
		skipPointer := w.freqOutput.FilePointer()
		if err := w.freqOutput.WriteBytes(w.skipBuffer.Bytes()); err != nil {
			return nil, err
		}
		ti.SkipOffset = int32(skipPointer - w.freqPointer)
	}
	return ti, nil
}
