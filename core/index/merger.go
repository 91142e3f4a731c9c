package index

import (
	"io"
	"time"

	"github.com/dbalmain/ferret-sub000/core/store"
	"github.com/dbalmain/ferret-sub000/core/util"
)

// index/SegmentMerger.java

// Counters describing one completed merge.
type MergeStats struct {
	Readers  int
	Docs     int
	Terms    int64
	Postings int64
	Elapsed  time.Duration
}

/*
SegmentMerger combines two or more segments, represented by an
IndexReader (Add()), into a single segment. After adding the
appropriate readers, call Merge() to combine the segments.

If the compoundFile flag is set, then the segments will be merged
into a compound file.
*/
type SegmentMerger struct {
	directory         store.Directory
	segment           string
	termIndexInterval int32
	infoStream        util.InfoStream

	readers    []IndexReader
	fieldInfos *FieldInfos

	freqOutput store.IndexOutput
	proxOutput store.IndexOutput
	termInfos  *TermInfosWriter
	postings   *postingsWriter
	queue      *util.PriorityQueue[*SegmentMergeInfo]

	stats MergeStats
}

/*
Creates a merger writing the new segment name into dir. The term
dictionary of the result samples every termIndexInterval-th term.
*/
func NewSegmentMerger(dir store.Directory, name string, termIndexInterval int32) *SegmentMerger {
	return &SegmentMerger{
		directory:         dir,
		segment:           name,
		termIndexInterval: termIndexInterval,
		infoStream:        util.DefaultInfoStream(),
	}
}

// Add an IndexReader to the collection of readers that are to be merged
func (m *SegmentMerger) Add(reader IndexReader) {
	m.readers = append(m.readers, reader)
}

// Returns the i-th reader added.
func (m *SegmentMerger) SegmentReader(i int) IndexReader {
	return m.readers[i]
}

func (m *SegmentMerger) Stats() MergeStats {
	return m.stats
}

/*
Merges the readers specified by Add() into the directory passed to
the constructor. Returns the number of documents that were merged.
*/
func (m *SegmentMerger) Merge() (mergedDocs int, err error) {
	start := time.Now()
	if mergedDocs, err = m.mergeFields(); err != nil {
		return 0, err
	}
	if err = m.mergeTerms(); err != nil {
		return 0, err
	}
	if err = m.mergeNorms(); err != nil {
		return 0, err
	}
	if m.fieldInfos.HasVectors() {
		if err = m.mergeVectors(); err != nil {
			return 0, err
		}
	}
	m.stats.Readers = len(m.readers)
	m.stats.Docs = mergedDocs
	m.stats.Elapsed = time.Since(start)
	if m.infoStream.IsEnabled("SM") {
		m.infoStream.Message("SM", "merged %v readers into %v: %v docs, %v terms, %v postings in %v",
			len(m.readers), m.segment, mergedDocs, m.stats.Terms, m.stats.Postings, m.stats.Elapsed)
	}
	return mergedDocs, nil
}

/*
Close all IndexReaders that have been added. Should not be called
before Merge().
*/
func (m *SegmentMerger) CloseReaders() error {
	var errs []error
	for _, reader := range m.readers { // close readers
		errs = append(errs, reader.Close())
	}
	return util.JoinErrors(errs...)
}

// Files of the merged segment that go into its compound file.
func (m *SegmentMerger) segmentFiles() []string {
	files := make([]string, 0, len(util.COMPOUND_EXTENSIONS)+m.fieldInfos.Size()+len(util.VECTOR_EXTENSIONS))

	// Basic files
	for _, ext := range util.COMPOUND_EXTENSIONS {
		files = append(files, util.SegmentFileName(m.segment, ext))
	}

	// Field norm files
	for _, fi := range m.fieldInfos.Values() {
		if fi.IsIndexed {
			files = append(files, util.NormFileName(m.segment, fi.Number, false))
		}
	}

	// Vector files
	if m.fieldInfos.HasVectors() {
		for _, ext := range util.VECTOR_EXTENSIONS {
			files = append(files, util.SegmentFileName(m.segment, ext))
		}
	}
	return files
}

/*
Packs the files of the merged segment into the compound file
fileName. Returns the packed files, which the caller deletes once the
compound file is committed.
*/
func (m *SegmentMerger) CreateCompoundFile(fileName string) ([]string, error) {
	cfsWriter := store.NewCompoundFileWriter(m.directory, fileName)
	files := m.segmentFiles()
	for _, file := range files {
		if err := cfsWriter.AddFile(file); err != nil {
			return nil, err
		}
	}
	// Perform the merge
	if err := cfsWriter.Close(); err != nil {
		return nil, err
	}
	return files, nil
}

// Merges field infos and stored fields. Returns the number of
// documents in the new segment.
func (m *SegmentMerger) mergeFields() (docCount int, err error) {
	m.fieldInfos = NewFieldInfos() // merge field names
	for _, reader := range m.readers {
		if sr, ok := reader.(*SegmentReader); ok {
			m.fieldInfos.AddAll(sr.FieldInfos())
			continue
		}
		addFieldNames(m.fieldInfos, reader)
	}
	if err = m.fieldInfos.Write(m.directory, util.SegmentFileName(m.segment, "fnm")); err != nil {
		return 0, err
	}

	fieldsWriter, err := NewFieldsWriter(m.directory, m.segment, m.fieldInfos)
	if err != nil {
		return 0, err
	}
	defer func() {
		err = util.CloseWhileHandlingError(err, fieldsWriter)
	}()
	for _, reader := range m.readers {
		maxDoc := reader.MaxDoc()
		for j := 0; j < maxDoc; j++ {
			if reader.IsDeleted(j) { // skip deleted docs
				continue
			}
			doc, err := reader.Document(j)
			if err != nil {
				return 0, err
			}
			if err = fieldsWriter.AddDocument(doc); err != nil {
				return 0, err
			}
			docCount++
		}
	}
	return docCount, nil
}

// Registers the fields of a composite reader, one term vector variant
// at a time so the sticky flags come out right.
func addFieldNames(fis *FieldInfos, reader IndexReader) {
	for _, name := range reader.FieldNames(FIELD_OPTION_TERMVECTOR_WITH_POSITION_OFFSET) {
		fis.Add(name, true, true, true, true)
	}
	for _, name := range reader.FieldNames(FIELD_OPTION_TERMVECTOR_WITH_POSITION) {
		fis.Add(name, true, true, true, false)
	}
	for _, name := range reader.FieldNames(FIELD_OPTION_TERMVECTOR_WITH_OFFSET) {
		fis.Add(name, true, true, false, true)
	}
	for _, name := range reader.FieldNames(FIELD_OPTION_TERMVECTOR) {
		fis.Add(name, true, true, false, false)
	}
	for _, name := range reader.FieldNames(FIELD_OPTION_INDEXED) {
		fis.Add(name, true, false, false, false)
	}
	for _, name := range reader.FieldNames(FIELD_OPTION_UNINDEXED) {
		fis.Add(name, false, false, false, false)
	}
}

// Merge the TermVectors from each of the segments into the new one.
func (m *SegmentMerger) mergeVectors() (err error) {
	termVectorsWriter, err := NewTermVectorsWriter(m.directory, m.segment, m.fieldInfos)
	if err != nil {
		return err
	}
	defer func() {
		err = util.CloseWhileHandlingError(err, termVectorsWriter)
	}()
	for _, reader := range m.readers {
		maxDoc := reader.MaxDoc()
		for docNum := 0; docNum < maxDoc; docNum++ {
			// skip deleted docs
			if reader.IsDeleted(docNum) {
				continue
			}
			vectors, err := reader.TermFreqVectors(docNum)
			if err != nil {
				return err
			}
			if err = termVectorsWriter.AddDocument(vectors); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *SegmentMerger) mergeTerms() (err error) {
	if m.freqOutput, err = m.directory.CreateOutput(util.SegmentFileName(m.segment, "frq"), store.IO_CONTEXT_DEFAULT); err != nil {
		return err
	}
	if m.proxOutput, err = m.directory.CreateOutput(util.SegmentFileName(m.segment, "prx"), store.IO_CONTEXT_DEFAULT); err != nil {
		return util.CloseWhileHandlingError(err, m.freqOutput)
	}
	if m.termInfos, err = NewTermInfosWriter(m.directory, m.segment, m.fieldInfos, m.termIndexInterval); err != nil {
		return util.CloseWhileHandlingError(err, m.freqOutput, m.proxOutput)
	}
	m.postings = newPostingsWriter(m.freqOutput, m.proxOutput, int(m.termInfos.SkipInterval()))
	m.queue = newSegmentMergeQueue(len(m.readers))

	defer func() {
		var queueErr error
		if m.queue != nil {
			queueErr = closeQueue(m.queue)
		}
		err = util.CloseWhileHandlingError(err, m.freqOutput, m.proxOutput, m.termInfos)
		if err == nil {
			err = queueErr
		}
	}()
	return m.mergeTermInfos()
}

func (m *SegmentMerger) mergeTermInfos() error {
	base := 0
	for _, reader := range m.readers {
		termEnum, err := reader.Terms()
		if err != nil {
			return err
		}
		smi := newSegmentMergeInfo(base, termEnum, reader)
		base += reader.NumDocs()
		ok, err := smi.next()
		if err != nil {
			return util.CloseWhileHandlingError(err, smi)
		}
		if ok {
			m.queue.Put(smi) // initialize queue
		} else if err = smi.Close(); err != nil {
			return err
		}
	}

	match := make([]*SegmentMergeInfo, 0, len(m.readers))
	for m.queue.Len() > 0 {
		match = match[:0]
		top, _ := m.queue.Pop() // pop matching terms
		match = append(match, top)
		term := top.term
		for top, ok := m.queue.Top(); ok && term.CompareTo(top.term) == 0; top, ok = m.queue.Top() {
			m.queue.Pop()
			match = append(match, top)
		}

		if err := m.mergeTermInfo(match); err != nil { // add new TermInfo
			util.CloseWhileSuppressingError(smiClosers(match)...)
			return err
		}

		for i, smi := range match {
			ok, err := smi.next()
			if err != nil {
				util.CloseWhileSuppressingError(smiClosers(match[i:])...)
				return err
			}
			if ok {
				m.queue.Put(smi) // restore queue
			} else if err = smi.Close(); err != nil { // done with a segment
				util.CloseWhileSuppressingError(smiClosers(match[i+1:])...)
				return err
			}
		}
	}
	return nil
}

func smiClosers(infos []*SegmentMergeInfo) []io.Closer {
	closers := make([]io.Closer, len(infos))
	for i, smi := range infos {
		closers[i] = smi
	}
	return closers
}

/*
Merge one term found in one or more segments. The array smis contains
segments that are positioned at the same term. Terms whose postings
all belong to deleted documents are dropped.
*/
func (m *SegmentMerger) mergeTermInfo(smis []*SegmentMergeInfo) error {
	m.postings.startTerm()
	if err := m.appendPostings(smis); err != nil {
		return err
	}
	ti, err := m.postings.finishTerm()
	if err != nil {
		return err
	}
	if ti.DocFreq > 0 {
		if err = m.termInfos.Add(smis[0].term, ti); err != nil {
			return err
		}
		m.stats.Terms++
		m.stats.Postings += int64(ti.DocFreq)
	}
	return nil
}

/*
Process postings from multiple segments all positioned on the same
term. Writes out merged entries into freqOutput and the proxOutput
streams.
*/
func (m *SegmentMerger) appendPostings(smis []*SegmentMergeInfo) error {
	var positions []int
	for _, smi := range smis {
		postings, err := smi.getPositions()
		if err != nil {
			return err
		}
		base := smi.base
		docMap := smi.getDocMap()
		if err = postings.SeekEnum(smi.termEnum); err != nil {
			return err
		}
		for {
			ok, err := postings.Next()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			doc := postings.Doc()
			if docMap != nil {
				doc = docMap[doc] // map around deletions
			}
			doc += base // convert to merged space

			freq := postings.Freq()
			positions = positions[:0]
			for j := 0; j < freq; j++ {
				position, err := postings.NextPosition()
				if err != nil {
					return err
				}
				positions = append(positions, position)
			}
			if err = m.postings.addDoc(doc, freq, positions); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *SegmentMerger) mergeNorms() error {
	for _, fi := range m.fieldInfos.Values() {
		if !fi.IsIndexed {
			continue
		}
		if err := m.mergeFieldNorms(fi); err != nil {
			return err
		}
	}
	return nil
}

func (m *SegmentMerger) mergeFieldNorms(fi *FieldInfo) (err error) {
	output, err := m.directory.CreateOutput(util.NormFileName(m.segment, fi.Number, false), store.IO_CONTEXT_DEFAULT)
	if err != nil {
		return err
	}
	defer func() {
		err = util.CloseWhileHandlingError(err, output)
	}()
	var input []byte
	for _, reader := range m.readers {
		maxDoc := reader.MaxDoc()
		if cap(input) < maxDoc {
			input = make([]byte, maxDoc)
		}
		input = input[:maxDoc]
		if err = reader.NormsInto(fi.Name, input, 0); err != nil {
			return err
		}
		for k := 0; k < maxDoc; k++ {
			if !reader.IsDeleted(k) {
				if err = output.WriteByte(input[k]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
