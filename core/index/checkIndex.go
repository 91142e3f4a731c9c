package index

import (
	"fmt"
	"io"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/dbalmain/ferret-sub000/core/store"
	"github.com/dbalmain/ferret-sub000/core/util"
	"github.com/pkg/errors"
)

// index/CheckIndex.java

// Returned from CheckIndex() detailing the health and status of the index
type CheckIndexStatus struct {
	// True if no problems found with the index.
	Clean bool
	// True if we were unable to locate and load the segments file.
	MissingSegments bool
	// Version of the segments file.
	Version int64
	// Number of segments in the index.
	NumSegments int
	// How many bad segments were found.
	NumBadSegments int
	// How many documents will be lost to bad segments.
	TotLoseDocCount int
	// Status of each segment in the index.
	SegmentInfos []*SegmentInfoStatus
}

// Holds the status of each segment in the index.
type SegmentInfoStatus struct {
	Name         string
	DocCount     int
	Compound     bool
	NumFiles     int
	SizeBytes    int64
	HasDeletions bool
	NumDeleted   int
	// True if we were able to open a SegmentReader on this segment.
	OpenReaderPassed bool

	FieldNormStatus   FieldNormStatus
	TermIndexStatus   TermIndexStatus
	StoredFieldStatus StoredFieldStatus
	TermVectorStatus  TermVectorStatus

	// Documents with at least one posting, per field.
	FieldDocs map[string]*roaring.Bitmap

	// First problem found, if any.
	Error error
}

type FieldNormStatus struct {
	TotFields int
	Error     error
}

type TermIndexStatus struct {
	TermCount int64
	TotFreq   int64
	TotPos    int64
	TotSkips  int64
	Error     error
}

type StoredFieldStatus struct {
	DocCount  int
	TotFields int64
	Error     error
}

type TermVectorStatus struct {
	DocCount   int
	TotVectors int64
	Error      error
}

/*
Basic tool and API to check the health of an index: every segment is
opened and its field norms, term dictionary, postings, stored fields
and term vectors are read back and cross-checked.

As this tool checks every byte in the index, on a large index it can
take a long time to run.
*/
type CheckIndex struct {
	infoStream io.Writer
	dir        store.Directory
}

// Creates a checker for dir. Progress is written to infoStream, which
// may be nil.
func NewCheckIndex(dir store.Directory, infoStream io.Writer) *CheckIndex {
	return &CheckIndex{dir: dir, infoStream: infoStream}
}

func (ch *CheckIndex) msg(format string, args ...interface{}) {
	if ch.infoStream != nil {
		fmt.Fprintf(ch.infoStream, format+"\n", args...)
	}
}

/*
Returns a Status instance detailing the state of the index.

WARNING: make sure you only call this when the index is not opened
by any writer.
*/
func (ch *CheckIndex) CheckIndex() (*CheckIndexStatus, error) {
	status := &CheckIndexStatus{}
	var sis *SegmentInfos
	err := store.WithLock(ch.dir.MakeLock(COMMIT_LOCK_NAME), COMMIT_LOCK_TIMEOUT, func() (err error) {
		sis, err = ReadSegmentInfos(ch.dir)
		return
	})
	if err != nil {
		if errors.Is(err, store.ErrLockObtainFailed) {
			return nil, err
		}
		ch.msg("ERROR: could not read any segments file in directory %v: %v", ch.dir, err)
		status.MissingSegments = true
		return status, nil
	}

	status.Version = sis.Version
	status.NumSegments = sis.Size()
	ch.msg("Segments file=%v numSegments=%v version=%v", util.SEGMENTS, sis.Size(), sis.Version)

	for i, si := range sis.Segments {
		ch.msg("  %v of %v: name=%v docCount=%v", i+1, sis.Size(), si.Name, si.DocCount)
		segStatus := ch.checkSegment(si)
		status.SegmentInfos = append(status.SegmentInfos, segStatus)
		if segStatus.Error != nil {
			ch.msg("    FAILED")
			ch.msg("    WARNING: fixIndex() would remove reference to this segment; full error:")
			ch.msg("    %v", segStatus.Error)
			status.TotLoseDocCount += si.DocCount
			status.NumBadSegments++
			continue
		}
		ch.msg("    OK")
	}

	if status.NumBadSegments == 0 {
		status.Clean = true
		ch.msg("No problems were detected with this index.")
	} else {
		ch.msg("WARNING: %v broken segments (containing %v documents) detected",
			status.NumBadSegments, status.TotLoseDocCount)
	}
	return status, nil
}

func (ch *CheckIndex) checkSegment(si *SegmentInfo) (status *SegmentInfoStatus) {
	status = &SegmentInfoStatus{
		Name:      si.Name,
		DocCount:  si.DocCount,
		Compound:  UsesCompoundFile(si),
		FieldDocs: make(map[string]*roaring.Bitmap),
	}
	ch.msg("    compound=%v", status.Compound)

	reader, err := openSegmentReader(si)
	if err != nil {
		status.Error = errors.Wrap(err, "open reader")
		return status
	}
	defer func() {
		if err := reader.Close(); err != nil && status.Error == nil {
			status.Error = err
		}
	}()
	status.OpenReaderPassed = true

	files := reader.Files()
	status.NumFiles = len(files)
	for _, file := range files {
		length, err := si.Dir.FileLength(file)
		if err != nil {
			status.Error = err
			return status
		}
		status.SizeBytes += length
	}
	ch.msg("    numFiles=%v size=%v bytes", status.NumFiles, status.SizeBytes)

	numDocs := reader.NumDocs()
	if reader.HasDeletions() {
		status.HasDeletions = true
		status.NumDeleted = si.DocCount - numDocs
		if reader.deletedDocs.Count() != status.NumDeleted {
			status.Error = errors.Errorf("delete count mismatch: info=%v vs deletedDocs=%v",
				status.NumDeleted, reader.deletedDocs.Count())
			return status
		}
		ch.msg("    has deletions [delCount=%v]", status.NumDeleted)
	}
	if reader.MaxDoc() != si.DocCount {
		status.Error = errors.Errorf("SegmentReader.MaxDoc() %v != SegmentInfos.DocCount %v",
			reader.MaxDoc(), si.DocCount)
		return status
	}

	status.FieldNormStatus = ch.testFieldNorms(reader)
	status.TermIndexStatus = ch.testPostings(reader, status.FieldDocs)
	status.StoredFieldStatus = ch.testStoredFields(reader)
	status.TermVectorStatus = ch.testTermVectors(reader)

	for _, err := range []error{status.FieldNormStatus.Error, status.TermIndexStatus.Error,
		status.StoredFieldStatus.Error, status.TermVectorStatus.Error} {
		if err != nil {
			status.Error = err
			break
		}
	}
	return status
}

func (ch *CheckIndex) testFieldNorms(reader *SegmentReader) (status FieldNormStatus) {
	ch.msg("    test: field norms.........")
	for _, name := range reader.FieldNames(FIELD_OPTION_INDEXED) {
		norms, err := reader.Norms(name)
		if err != nil {
			status.Error = err
			return
		}
		if len(norms) != reader.MaxDoc() {
			status.Error = errors.Errorf("field %v has %v norms, expected %v", name, len(norms), reader.MaxDoc())
			return
		}
		status.TotFields++
	}
	ch.msg("OK [%v fields]", status.TotFields)
	return
}

// Walks every term and its postings, checking term order, doc order
// and bounds, positions, and that docFreq covers the live postings.
func (ch *CheckIndex) testPostings(reader *SegmentReader, fieldDocs map[string]*roaring.Bitmap) (status TermIndexStatus) {
	ch.msg("    test: terms, freq, prox...")
	maxDoc := reader.MaxDoc()
	termEnum, err := reader.Terms()
	if err != nil {
		status.Error = err
		return
	}
	postings, err := reader.TermPositions()
	if err != nil {
		status.Error = util.CloseWhileHandlingError(err, termEnum)
		return
	}
	skipper, err := reader.TermDocs()
	if err != nil {
		status.Error = util.CloseWhileHandlingError(err, termEnum, postings)
		return
	}
	defer func() {
		status.Error = util.CloseWhileHandlingError(status.Error, termEnum, postings, skipper)
	}()

	var lastTerm *Term
	for {
		ok, err := termEnum.Next()
		if err != nil {
			status.Error = err
			return
		}
		if !ok {
			break
		}
		term := termEnum.Term()
		if lastTerm != nil && term.CompareTo(lastTerm) <= 0 {
			status.Error = errors.Wrapf(ErrTermOutOfOrder, "term %v after %v", term, lastTerm)
			return
		}
		lastTerm = term
		status.TermCount++

		docFreq := termEnum.DocFreq()
		if err = postings.SeekEnum(termEnum); err != nil {
			status.Error = err
			return
		}
		docs := fieldDocs[term.Field]
		if docs == nil {
			docs = roaring.New()
			fieldDocs[term.Field] = docs
		}

		lastDoc, count := -1, 0
		for {
			ok, err := postings.Next()
			if err != nil {
				status.Error = err
				return
			}
			if !ok {
				break
			}
			doc, freq := postings.Doc(), postings.Freq()
			if doc <= lastDoc {
				status.Error = errors.Wrapf(ErrDocsOutOfOrder, "term %v: doc %v <= lastDoc %v", term, doc, lastDoc)
				return
			}
			if doc >= maxDoc {
				status.Error = errors.Errorf("term %v: doc %v >= maxDoc %v", term, doc, maxDoc)
				return
			}
			if freq <= 0 {
				status.Error = errors.Errorf("term %v: doc %v: freq %v is out of bounds", term, doc, freq)
				return
			}
			lastPos := -1
			for j := 0; j < freq; j++ {
				pos, err := postings.NextPosition()
				if err != nil {
					status.Error = err
					return
				}
				if pos < lastPos {
					status.Error = errors.Errorf("term %v: doc %v: pos %v < lastPos %v", term, doc, pos, lastPos)
					return
				}
				lastPos = pos
			}
			status.TotPos += int64(freq)
			docs.Add(uint32(doc))
			lastDoc = doc
			count++
		}
		status.TotFreq += int64(count)

		if count > docFreq {
			status.Error = errors.Errorf("term %v: docFreq=%v < %v live postings", term, docFreq, count)
			return
		}

		// the skip list must land on the last posting
		if count > 0 && docFreq >= int(reader.tis.SkipInterval()) {
			if err = skipper.SeekEnum(termEnum); err != nil {
				status.Error = err
				return
			}
			ok, err := skipper.SkipTo(lastDoc)
			if err != nil {
				status.Error = err
				return
			}
			if !ok || skipper.Doc() != lastDoc {
				status.Error = errors.Errorf("term %v: SkipTo(%v) did not find the last posting", term, lastDoc)
				return
			}
			status.TotSkips++
		}
	}

	for field, docs := range fieldDocs {
		if reader.HasDeletions() {
			deleted := roaring.New()
			for doc := docs.Iterator(); doc.HasNext(); {
				if d := doc.Next(); reader.IsDeleted(int(d)) {
					deleted.Add(d)
				}
			}
			if !deleted.IsEmpty() {
				status.Error = errors.Errorf("field %v: %v deleted docs still have postings", field, deleted.GetCardinality())
				return
			}
		}
	}
	ch.msg("OK [%v terms; %v terms/docs pairs; %v tokens; %v skips]",
		status.TermCount, status.TotFreq, status.TotPos, status.TotSkips)
	return
}

func (ch *CheckIndex) testStoredFields(reader *SegmentReader) (status StoredFieldStatus) {
	ch.msg("    test: stored fields.......")
	for j := 0; j < reader.MaxDoc(); j++ {
		if reader.IsDeleted(j) {
			continue
		}
		doc, err := reader.Document(j)
		if err != nil {
			status.Error = errors.Wrapf(err, "document %v", j)
			return
		}
		status.DocCount++
		status.TotFields += int64(len(doc.Fields()))
	}
	if status.DocCount != reader.NumDocs() {
		status.Error = errors.Errorf("docCount=%v but saw %v undeleted docs", reader.NumDocs(), status.DocCount)
		return
	}
	ch.msg("OK [%v total field count; avg %.1f fields per doc]",
		status.TotFields, float64(status.TotFields)/float64(max(status.DocCount, 1)))
	return
}

func (ch *CheckIndex) testTermVectors(reader *SegmentReader) (status TermVectorStatus) {
	ch.msg("    test: term vectors........")
	for j := 0; j < reader.MaxDoc(); j++ {
		if reader.IsDeleted(j) {
			continue
		}
		vectors, err := reader.TermFreqVectors(j)
		if err != nil {
			status.Error = errors.Wrapf(err, "term vectors of document %v", j)
			return
		}
		for _, v := range vectors {
			if len(v.Freqs) != len(v.Terms) {
				status.Error = errors.Errorf("document %v field %v: %v terms but %v freqs",
					j, v.Field, len(v.Terms), len(v.Freqs))
				return
			}
		}
		status.DocCount++
		status.TotVectors += int64(len(vectors))
	}
	ch.msg("OK [%v total vector count; avg %.1f term/freq vector fields per doc]",
		status.TotVectors, float64(status.TotVectors)/float64(max(status.DocCount, 1)))
	return
}
