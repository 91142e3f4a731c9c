package index

import (
	"github.com/dbalmain/ferret-sub000/core/store"
	"github.com/dbalmain/ferret-sub000/core/util"
	"github.com/pkg/errors"
)

// index/TermInfosWriter.java

// The file format version, a negative number.
const TERM_INFOS_FORMAT = -2

const (
	DEFAULT_TERM_INDEX_INTERVAL = 128
	DEFAULT_SKIP_INTERVAL       = 16
)

/*
Writes a term dictionary: the main .tis file holding every term, and
its .tii companion holding every indexInterval-th entry plus a pointer
into the .tis. Terms must be added in strictly ascending order.
*/
type TermInfosWriter struct {
	output     store.IndexOutput
	lastTerm   *Term
	lastTi     *TermInfo
	size       int64
	fieldInfos *FieldInfos

	// Expert: The fraction of terms in the "dictionary" which should be
	// stored in RAM. Smaller values use more memory, but make searching
	// slightly faster, while larger values use less memory and make
	// searching slightly slower.
	indexInterval int32
	// Expert: The fraction of TermDocs entries stored in skip tables,
	// used to accelerate SkipTo().
	skipInterval int32

	lastIndexPointer int64
	isIndex          bool
	other            *TermInfosWriter
}

func NewTermInfosWriter(dir store.Directory, segment string,
	fis *FieldInfos, interval int32) (tiw *TermInfosWriter, err error) {

	tiw, err = newTermInfosWriter(dir, segment, fis, interval, false)
	if err != nil {
		return nil, err
	}
	tiw.other, err = newTermInfosWriter(dir, segment, fis, interval, true)
	if err != nil {
		util.CloseWhileSuppressingError(tiw.output)
		return nil, err
	}
	tiw.other.other = tiw
	return tiw, nil
}

func newTermInfosWriter(dir store.Directory, segment string, fis *FieldInfos,
	interval int32, isIndex bool) (*TermInfosWriter, error) {

	ext := "tis"
	if isIndex {
		ext = "tii"
	}
	output, err := dir.CreateOutput(util.SegmentFileName(segment, ext), store.IO_CONTEXT_DEFAULT)
	if err != nil {
		return nil, err
	}
	tiw := &TermInfosWriter{
		output:        output,
		lastTerm:      &Term{},
		lastTi:        &TermInfo{},
		fieldInfos:    fis,
		indexInterval: interval,
		skipInterval:  DEFAULT_SKIP_INTERVAL,
		isIndex:       isIndex,
	}
	if err = tiw.writeHeader(); err != nil {
		util.CloseWhileSuppressingError(output)
		return nil, err
	}
	return tiw, nil
}

func (tiw *TermInfosWriter) writeHeader() (err error) {
	out := tiw.output
	if err = out.WriteInt(TERM_INFOS_FORMAT); err == nil {
		if err = out.WriteLong(0); err == nil { // leave space for size
			if err = out.WriteInt(tiw.indexInterval); err == nil {
				err = out.WriteInt(tiw.skipInterval)
			}
		}
	}
	return
}

/*
Adds a new term with the given info to this file. Term must be
lexicographically greater than all previous terms added, and the
TermInfo pointers must be non-decreasing.
*/
func (tiw *TermInfosWriter) Add(term *Term, ti *TermInfo) error {
	if !tiw.isIndex && tiw.size > 0 && term.CompareTo(tiw.lastTerm) <= 0 {
		return errors.Wrapf(ErrTermOutOfOrder, "%v after %v", term, tiw.lastTerm)
	}
	if ti.FreqPointer < tiw.lastTi.FreqPointer {
		return errors.Wrapf(ErrPointerRegression, "freqPointer %v < %v",
			ti.FreqPointer, tiw.lastTi.FreqPointer)
	}
	if ti.ProxPointer < tiw.lastTi.ProxPointer {
		return errors.Wrapf(ErrPointerRegression, "proxPointer %v < %v",
			ti.ProxPointer, tiw.lastTi.ProxPointer)
	}

	if !tiw.isIndex && tiw.size%int64(tiw.indexInterval) == 0 {
		// add an index term
		if err := tiw.other.Add(tiw.lastTerm, tiw.lastTi); err != nil {
			return err
		}
	}

	out := tiw.output
	if err := tiw.writeTerm(term); err != nil {
		return err
	}
	if err := out.WriteVInt(ti.DocFreq); err != nil {
		return err
	}
	if err := out.WriteVLong(ti.FreqPointer - tiw.lastTi.FreqPointer); err != nil {
		return err
	}
	if err := out.WriteVLong(ti.ProxPointer - tiw.lastTi.ProxPointer); err != nil {
		return err
	}
	if ti.DocFreq >= tiw.skipInterval {
		if err := out.WriteVInt(ti.SkipOffset); err != nil {
			return err
		}
	}

	if tiw.isIndex {
		pointer := tiw.other.output.FilePointer()
		if err := out.WriteVLong(pointer - tiw.lastIndexPointer); err != nil {
			return err
		}
		tiw.lastIndexPointer = pointer
	}

	tiw.lastTi.Set(ti)
	tiw.size++
	return nil
}

func (tiw *TermInfosWriter) writeTerm(term *Term) error {
	start := util.StringDifference(tiw.lastTerm.Text, term.Text)
	length := len(term.Text) - start

	out := tiw.output
	if err := out.WriteVInt(int32(start)); err != nil { // write shared prefix length
		return err
	}
	if err := out.WriteVInt(int32(length)); err != nil { // write delta length
		return err
	}
	if err := out.WriteBytes([]byte(term.Text[start:])); err != nil { // write delta bytes
		return err
	}
	if err := out.WriteVInt(tiw.fieldInfos.FieldNumber(term.Field)); err != nil {
		return err
	}
	tiw.lastTerm = term
	return nil
}

// Number of terms added so far.
func (tiw *TermInfosWriter) Size() int64 {
	return tiw.size
}

func (tiw *TermInfosWriter) SkipInterval() int32 {
	return tiw.skipInterval
}

// Back-patches the term count and closes both the .tis and .tii.
func (tiw *TermInfosWriter) Close() (err error) {
	if err = tiw.output.Seek(4); err == nil { // write size after format
		err = tiw.output.WriteLong(tiw.size)
	}
	err = util.CloseWhileHandlingError(err, tiw.output)
	if !tiw.isIndex {
		return util.CloseWhileHandlingError(err, tiw.other)
	}
	return err
}
