package index

import (
	"fmt"
	"time"

	"github.com/dbalmain/ferret-sub000/core/store"
	"github.com/dbalmain/ferret-sub000/core/util"
)

// index/SegmentInfo.java

// Name, document count and owning directory of one segment.
type SegmentInfo struct {
	Name     string // unique name in dir
	DocCount int    // number of docs in seg
	Dir      store.Directory
}

func NewSegmentInfo(name string, docCount int, dir store.Directory) *SegmentInfo {
	return &SegmentInfo{name, docCount, dir}
}

// Segment infos are equal when both name and doc count match.
func (si *SegmentInfo) Equals(other *SegmentInfo) bool {
	return other != nil && si.Name == other.Name && si.DocCount == other.DocCount
}

func (si *SegmentInfo) String() string {
	return fmt.Sprintf("%v(%v)", si.Name, si.DocCount)
}

// index/SegmentInfos.java

// The file format version of the segments file, a negative number.
const SEGMENTS_FORMAT = -1

/*
An ordered list of the segments of an index, together with the
version of the index (incremented on every write) and the counter
used to name new segments.

The segments file holds, in order: int32 format, int64 version,
int64 counter, int32 segment count, then per segment the name and
int32 doc count.
*/
type SegmentInfos struct {
	Segments []*SegmentInfo
	// counts how often the index has been changed by adding or deleting
	// docs. Starting with the current time in milliseconds forces to
	// create unique version numbers.
	Version int64
	// used to name new segments
	Counter int64
}

func NewSegmentInfos() *SegmentInfos {
	return &SegmentInfos{Version: time.Now().UnixNano() / int64(time.Millisecond)}
}

func (sis *SegmentInfos) Size() int {
	return len(sis.Segments)
}

func (sis *SegmentInfos) Info(i int) *SegmentInfo {
	return sis.Segments[i]
}

func (sis *SegmentInfos) Add(si *SegmentInfo) {
	sis.Segments = append(sis.Segments, si)
}

// Replaces the segments in [start,end) with si.
func (sis *SegmentInfos) Replace(start, end int, si *SegmentInfo) {
	segments := make([]*SegmentInfo, 0, len(sis.Segments)-(end-start)+1)
	segments = append(segments, sis.Segments[:start]...)
	segments = append(segments, si)
	segments = append(segments, sis.Segments[end:]...)
	sis.Segments = segments
}

// Returns a unique segment name and advances the counter.
func (sis *SegmentInfos) NewSegmentName() string {
	name := util.SegmentNameFromCounter(sis.Counter)
	sis.Counter++
	return name
}

// Total number of documents in all segments, deleted ones included.
func (sis *SegmentInfos) TotalDocCount() int {
	count := 0
	for _, si := range sis.Segments {
		count += si.DocCount
	}
	return count
}

// Reads the segments file of directory. Every SegmentInfo refers to
// directory.
func ReadSegmentInfos(directory store.Directory) (sis *SegmentInfos, err error) {
	input, err := directory.OpenInput(util.SEGMENTS, store.IO_CONTEXT_READONCE)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = util.CloseWhileHandlingError(err, input)
	}()

	format, err := input.ReadInt()
	if err != nil {
		return nil, err
	}
	if format != SEGMENTS_FORMAT {
		return nil, &FormatError{util.SEGMENTS, format, SEGMENTS_FORMAT}
	}
	sis = &SegmentInfos{}
	if sis.Version, err = input.ReadLong(); err != nil {
		return nil, err
	}
	if sis.Counter, err = input.ReadLong(); err != nil {
		return nil, err
	}
	count, err := input.ReadInt()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("invalid segment count %v in %v", count, util.SEGMENTS)
	}
	sis.Segments = make([]*SegmentInfo, 0, count)
	for i := int32(0); i < count; i++ {
		name, err := input.ReadString()
		if err != nil {
			return nil, err
		}
		docCount, err := input.ReadInt()
		if err != nil {
			return nil, err
		}
		sis.Add(NewSegmentInfo(name, int(docCount), directory))
	}
	return sis, nil
}

/*
Increments the version and writes the list to directory. The file is
written as "segments.new" and then renamed over "segments", so
readers see either the old or the new list.
*/
func (sis *SegmentInfos) Write(directory store.Directory) error {
	const tmpName = util.SEGMENTS + ".new"
	output, err := directory.CreateOutput(tmpName, store.IO_CONTEXT_DEFAULT)
	if err != nil {
		return err
	}
	err = func() error {
		if err := output.WriteInt(SEGMENTS_FORMAT); err != nil {
			return err
		}
		if err := output.WriteLong(sis.Version + 1); err != nil {
			return err
		}
		if err := output.WriteLong(sis.Counter); err != nil {
			return err
		}
		if err := output.WriteInt(int32(len(sis.Segments))); err != nil {
			return err
		}
		for _, si := range sis.Segments {
			if err := output.WriteString(si.Name); err != nil {
				return err
			}
			if err := output.WriteInt(int32(si.DocCount)); err != nil {
				return err
			}
		}
		return nil
	}()
	if err = util.CloseWhileHandlingError(err, output); err != nil {
		util.DeleteFilesIgnoringErrors(directory, tmpName)
		return err
	}
	// install new segment info
	if err = directory.RenameFile(tmpName, util.SEGMENTS); err != nil {
		return err
	}
	sis.Version++
	return nil
}

// Reads the version of the index in directory without reading the
// segment list.
func ReadCurrentVersion(directory store.Directory) (version int64, err error) {
	input, err := directory.OpenInput(util.SEGMENTS, store.IO_CONTEXT_READONCE)
	if err != nil {
		return 0, err
	}
	defer func() {
		err = util.CloseWhileHandlingError(err, input)
	}()

	format, err := input.ReadInt()
	if err != nil {
		return 0, err
	}
	if format != SEGMENTS_FORMAT {
		return 0, &FormatError{util.SEGMENTS, format, SEGMENTS_FORMAT}
	}
	return input.ReadLong()
}
