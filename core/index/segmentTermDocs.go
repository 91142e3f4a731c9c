package index

import (
	"sort"

	"github.com/dbalmain/ferret-sub000/core/store"
	"github.com/dbalmain/ferret-sub000/core/util"
	"github.com/pkg/errors"
)

// index/SegmentTermDocs.java

// Hooks overridden by SegmentTermPositions.
type termDocsSPI interface {
	Next() (bool, error)
	seekTermInfo(ti *TermInfo) error
	skippingDoc() error
	skipProx(proxPointer int64) error
}

type SegmentTermDocs struct {
	spi         termDocsSPI
	parent      *SegmentReader
	freqStream  store.IndexInput
	count       int
	df          int
	deletedDocs *util.BitVector
	doc         int
	freq        int

	skipInterval int
	numSkips     int
	skipLoaded   bool
	skipDocs     []int
	skipFreqs    []int64
	skipProxs    []int64

	freqPointer int64
	proxPointer int64
	skipPointer int64
}

func newSegmentTermDocs(parent *SegmentReader) *SegmentTermDocs {
	td := &SegmentTermDocs{
		parent:       parent,
		freqStream:   parent.freqStream.Clone(),
		skipInterval: int(parent.tis.SkipInterval()),
	}
	td.spi = td
	return td
}

func (td *SegmentTermDocs) Seek(term *Term) error {
	ti, err := td.parent.tis.Get(term)
	if err != nil {
		return err
	}
	return td.seek(ti)
}

func (td *SegmentTermDocs) SeekEnum(termEnum TermEnum) error {
	// use comparison of fieldinfos to verify that termEnum belongs to
	// the same segment as this SegmentTermDocs
	if se, ok := termEnum.(*SegmentTermEnum); ok && se.fieldInfos == td.parent.fieldInfos {
		if se.Term() == nil {
			return td.seek(nil)
		}
		return td.seek(se.TermInfo())
	}
	term := termEnum.Term()
	if term == nil {
		return td.seek(nil)
	}
	return td.Seek(term)
}

func (td *SegmentTermDocs) seek(ti *TermInfo) error {
	td.count = 0
	td.deletedDocs = td.parent.deletedDocsSnapshot()
	if ti == nil {
		td.df = 0
		return td.spi.seekTermInfo(nil)
	}
	td.df = int(ti.DocFreq)
	td.doc = 0
	td.numSkips = td.df / td.skipInterval
	td.skipLoaded = false
	td.freqPointer = ti.FreqPointer
	td.proxPointer = ti.ProxPointer
	td.skipPointer = ti.FreqPointer + int64(ti.SkipOffset)
	if err := td.freqStream.Seek(ti.FreqPointer); err != nil {
		return err
	}
	return td.spi.seekTermInfo(ti)
}

func (td *SegmentTermDocs) Close() error {
	return td.freqStream.Close()
}

func (td *SegmentTermDocs) Doc() int  { return td.doc }
func (td *SegmentTermDocs) Freq() int { return td.freq }

func (td *SegmentTermDocs) seekTermInfo(ti *TermInfo) error { return nil }
func (td *SegmentTermDocs) skippingDoc() error              { return nil }
func (td *SegmentTermDocs) skipProx(proxPointer int64) error { return nil }

func (td *SegmentTermDocs) readPosting() error {
	docCode, err := td.freqStream.ReadVInt()
	if err != nil {
		return err
	}
	td.doc += int(uint32(docCode) >> 1) // shift off low bit
	if docCode&1 != 0 {                // if low bit is set
		td.freq = 1 // freq is one
	} else {
		freq, err := td.freqStream.ReadVInt() // else read freq
		if err != nil {
			return err
		}
		td.freq = int(freq)
	}
	td.count++
	return nil
}

func (td *SegmentTermDocs) Next() (bool, error) {
	for {
		if td.count == td.df {
			return false, nil
		}
		if err := td.readPosting(); err != nil {
			return false, err
		}
		if td.deletedDocs == nil || !td.deletedDocs.At(td.doc) {
			return true, nil
		}
		if err := td.spi.skippingDoc(); err != nil {
			return false, err
		}
	}
}

// Optimized implementation.
func (td *SegmentTermDocs) Read(docs, freqs []int) (int, error) {
	length := len(docs)
	if len(freqs) < length {
		length = len(freqs)
	}
	i := 0
	for i < length && td.count < td.df {
		if err := td.readPosting(); err != nil {
			return i, err
		}
		if td.deletedDocs == nil || !td.deletedDocs.At(td.doc) {
			docs[i] = td.doc
			freqs[i] = td.freq
			i++
		} else if err := td.spi.skippingDoc(); err != nil {
			return i, err
		}
	}
	return i, nil
}

func (td *SegmentTermDocs) loadSkips() error {
	td.skipLoaded = true
	skipStream := td.freqStream.Clone()
	defer skipStream.Close()
	if err := skipStream.Seek(td.skipPointer); err != nil {
		return err
	}
	td.skipDocs = td.skipDocs[:0]
	td.skipFreqs = td.skipFreqs[:0]
	td.skipProxs = td.skipProxs[:0]
	doc, freqPointer, proxPointer := 0, td.freqPointer, td.proxPointer
	for i := 0; i < td.numSkips; i++ {
		delta, err := skipStream.ReadVInt()
		if err != nil {
			return err
		}
		doc += int(delta)
		if delta, err = skipStream.ReadVInt(); err != nil {
			return err
		}
		freqPointer += int64(delta)
		if delta, err = skipStream.ReadVInt(); err != nil {
			return err
		}
		proxPointer += int64(delta)
		td.skipDocs = append(td.skipDocs, doc)
		td.skipFreqs = append(td.skipFreqs, freqPointer)
		td.skipProxs = append(td.skipProxs, proxPointer)
	}
	return nil
}

func (td *SegmentTermDocs) SkipTo(target int) (bool, error) {
	if td.numSkips > 0 { // optimized case
		if !td.skipLoaded {
			if err := td.loadSkips(); err != nil {
				return false, err
			}
		}
		// skip entry j lies after posting (j+1)*skipInterval
		j := sort.SearchInts(td.skipDocs, target) - 1
		if j >= 0 && (j+1)*td.skipInterval > td.count {
			if err := td.freqStream.Seek(td.skipFreqs[j]); err != nil {
				return false, err
			}
			if err := td.spi.skipProx(td.skipProxs[j]); err != nil {
				return false, err
			}
			td.doc = td.skipDocs[j]
			td.count = (j + 1) * td.skipInterval
		}
	}

	// done skipping, now just scan
	for {
		ok, err := td.spi.Next()
		if err != nil || !ok {
			return false, err
		}
		if td.doc >= target {
			return true, nil
		}
	}
}

// index/SegmentTermPositions.java

type SegmentTermPositions struct {
	*SegmentTermDocs
	proxStream store.IndexInput
	proxCount  int
	position   int
}

func newSegmentTermPositions(parent *SegmentReader) *SegmentTermPositions {
	tp := &SegmentTermPositions{
		SegmentTermDocs: newSegmentTermDocs(parent),
		proxStream:      parent.proxStream.Clone(),
	}
	tp.spi = tp
	return tp
}

func (tp *SegmentTermPositions) seekTermInfo(ti *TermInfo) error {
	tp.proxCount = 0
	if ti != nil {
		return tp.proxStream.Seek(ti.ProxPointer)
	}
	return nil
}

func (tp *SegmentTermPositions) Close() error {
	return util.Close(tp.SegmentTermDocs, tp.proxStream)
}

func (tp *SegmentTermPositions) NextPosition() (int, error) {
	assert2(tp.proxCount > 0, "NextPosition() called more than Freq() times")
	tp.proxCount--
	delta, err := tp.proxStream.ReadVInt()
	if err != nil {
		return 0, err
	}
	tp.position += int(delta)
	return tp.position, nil
}

// Skips the positions of a deleted document.
func (tp *SegmentTermPositions) skippingDoc() error {
	for f := tp.freq; f > 0; f-- {
		if _, err := tp.proxStream.ReadVInt(); err != nil {
			return err
		}
	}
	return nil
}

func (tp *SegmentTermPositions) skipProx(proxPointer int64) error {
	tp.proxCount = 0
	return tp.proxStream.Seek(proxPointer)
}

func (tp *SegmentTermPositions) skipPendingPositions() error {
	for ; tp.proxCount > 0; tp.proxCount-- {
		if _, err := tp.proxStream.ReadVInt(); err != nil {
			return err
		}
	}
	return nil
}

func (tp *SegmentTermPositions) Next() (bool, error) {
	if err := tp.skipPendingPositions(); err != nil {
		return false, err
	}
	ok, err := tp.SegmentTermDocs.Next()
	if ok {
		tp.proxCount = tp.freq
		tp.position = 0
	}
	return ok, err
}

func (tp *SegmentTermPositions) Read(docs, freqs []int) (int, error) {
	return 0, errors.Wrap(store.ErrUnsupported,
		"TermPositions does not support processing multiple documents in one call, use TermDocs")
}
