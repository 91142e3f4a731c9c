package index

import (
	"sync"

	"github.com/dbalmain/ferret-sub000/core/store"
	"github.com/dbalmain/ferret-sub000/core/util"
	"github.com/hashicorp/golang-lru/v2"
)

// index/TermInfosReader.java

// Number of recent Term lookups kept per reader.
const DEFAULT_TERM_CACHE_SIZE = 1024

/*
This stores a monotonically increasing set of <Term, TermInfo> pairs
in a Directory. Pairs are accessed either by Term or by ordinal
position in the set.

The sparse .tii index is loaded into memory on open. A single cursor
over the .tis file serves random lookups; it is guarded by a mutex so
that the reader can be shared. Recent lookups are cached.
*/
type TermInfosReader struct {
	directory  store.Directory
	segment    string
	fieldInfos *FieldInfos

	sync.Mutex // guards enumerator
	enumerator *SegmentTermEnum
	origEnum   *SegmentTermEnum
	size       int64

	indexTerms    []*Term
	indexInfos    []*TermInfo
	indexPointers []int64

	cache *lru.Cache[Term, TermInfo]
}

func NewTermInfosReader(dir store.Directory, seg string, fis *FieldInfos) (r *TermInfosReader, err error) {
	r = &TermInfosReader{directory: dir, segment: seg, fieldInfos: fis}

	var input store.IndexInput
	if input, err = dir.OpenInput(util.SegmentFileName(seg, "tis"), store.IO_CONTEXT_READ); err != nil {
		return nil, err
	}
	if r.origEnum, err = newSegmentTermEnum(input, fis, false); err != nil {
		return nil, util.CloseWhileHandlingError(err, input)
	}
	r.size = r.origEnum.size
	r.enumerator = r.origEnum.Clone()

	if err = r.readIndex(); err != nil {
		return nil, util.CloseWhileHandlingError(err, r.enumerator, r.origEnum)
	}
	if r.cache, err = lru.New[Term, TermInfo](DEFAULT_TERM_CACHE_SIZE); err != nil {
		return nil, util.CloseWhileHandlingError(err, r.enumerator, r.origEnum)
	}
	return r, nil
}

func (r *TermInfosReader) readIndex() (err error) {
	input, err := r.directory.OpenInput(util.SegmentFileName(r.segment, "tii"), store.IO_CONTEXT_READONCE)
	if err != nil {
		return err
	}
	indexEnum, err := newSegmentTermEnum(input, r.fieldInfos, true)
	if err != nil {
		return util.CloseWhileHandlingError(err, input)
	}
	defer func() {
		err = util.CloseWhileHandlingError(err, indexEnum)
	}()

	indexSize := int(indexEnum.size)
	r.indexTerms = make([]*Term, 0, indexSize)
	r.indexInfos = make([]*TermInfo, 0, indexSize)
	r.indexPointers = make([]int64, 0, indexSize)
	for {
		ok, err := indexEnum.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		t := *indexEnum.Term()
		r.indexTerms = append(r.indexTerms, &t)
		r.indexInfos = append(r.indexInfos, indexEnum.TermInfo())
		r.indexPointers = append(r.indexPointers, indexEnum.indexPointer)
	}
	return nil
}

func (r *TermInfosReader) SkipInterval() int32 {
	return r.origEnum.skipInterval
}

// Returns the number of term/value pairs in the set.
func (r *TermInfosReader) Size() int64 {
	return r.size
}

// Returns the offset of the greatest index entry which is less than
// or equal to term.
func (r *TermInfosReader) indexOffset(term *Term) int {
	lo, hi := 0, len(r.indexTerms)-1
	for hi >= lo {
		mid := int(uint(lo+hi) >> 1)
		delta := term.CompareTo(r.indexTerms[mid])
		if delta < 0 {
			hi = mid - 1
		} else if delta > 0 {
			lo = mid + 1
		} else {
			return mid
		}
	}
	return hi
}

func (r *TermInfosReader) seekEnum(indexOffset int) error {
	return r.enumerator.seek(r.indexPointers[indexOffset],
		int64(indexOffset)*int64(r.enumerator.indexInterval)-1,
		r.indexTerms[indexOffset], r.indexInfos[indexOffset])
}

// Returns the TermInfo for a Term in the set, or nil.
func (r *TermInfosReader) Get(term *Term) (*TermInfo, error) {
	if r.size == 0 {
		return nil, nil
	}
	if ti, ok := r.cache.Get(*term); ok {
		return &ti, nil
	}

	r.Lock()
	defer r.Unlock()
	ti, err := r.get(term)
	if err == nil && ti != nil {
		r.cache.Add(*term, *ti)
	}
	return ti, err
}

// Must be called with the lock held. Leaves the enumerator on the
// first term greater than or equal to term.
func (r *TermInfosReader) get(term *Term) (*TermInfo, error) {
	// optimize sequential access: first try scanning cached enum w/o seeking
	e := r.enumerator
	if cur := e.Term(); cur != nil { // term is at or past current
		if prev := e.prev(); (prev != nil && term.CompareTo(prev) > 0) || term.CompareTo(cur) >= 0 {
			enumOffset := int(e.position/int64(e.indexInterval)) + 1
			if len(r.indexTerms) == enumOffset || term.CompareTo(r.indexTerms[enumOffset]) < 0 {
				return r.scanEnum(term) // no need to seek
			}
		}
	}

	// random-access: must seek
	if err := r.seekEnum(r.indexOffset(term)); err != nil {
		return nil, err
	}
	return r.scanEnum(term)
}

// Scans within block for matching term.
func (r *TermInfosReader) scanEnum(term *Term) (*TermInfo, error) {
	if err := r.enumerator.scanTo(term); err != nil {
		return nil, err
	}
	if cur := r.enumerator.Term(); cur != nil && term.CompareTo(cur) == 0 {
		return r.enumerator.TermInfo(), nil
	}
	return nil, nil
}

// Returns an enumeration of all the Terms and TermInfos in the set.
func (r *TermInfosReader) Terms() *SegmentTermEnum {
	return r.origEnum.Clone()
}

// Returns an enumeration of terms starting at or after the named term.
func (r *TermInfosReader) TermsFrom(term *Term) (*SegmentTermEnum, error) {
	r.Lock()
	defer r.Unlock()
	if r.size > 0 {
		if _, err := r.get(term); err != nil {
			return nil, err
		}
	}
	return r.enumerator.Clone(), nil
}

func (r *TermInfosReader) Close() error {
	r.cache.Purge()
	return util.Close(r.enumerator, r.origEnum)
}
