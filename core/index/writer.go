package index

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dbalmain/ferret-sub000/core/analysis"
	"github.com/dbalmain/ferret-sub000/core/document"
	"github.com/dbalmain/ferret-sub000/core/store"
	"github.com/dbalmain/ferret-sub000/core/util"
	"github.com/pkg/errors"
)

// index/IndexWriter.java

/*
An IndexWriter creates and maintains an index.

The OpenMode of the config determines whether a new index is created,
or whether an existing index is opened for the addition of new
documents.

In either case, documents are added with AddDocument(). When finished
adding documents, Close() should be called.

If an index will not have more documents added for a while and
optimal search performance is desired, then the Optimize() method
should be called before the index is closed.

Opening an IndexWriter creates a lock file for the directory in use.
Trying to open another IndexWriter on the same directory will lead to
an error wrapping store.ErrLockObtainFailed. The error is also
returned if an IndexReader on the same directory is used to delete
documents from the index.

Each added document becomes a one-document segment in an in-memory
directory. Whenever MaxBufferedDocs segments of a size class have
accumulated they are merged into one segment of the next class, which
bounds the number of segments to about MergeFactor per size class.
*/
type IndexWriter struct {
	sync.Mutex

	directory store.Directory // where this index resides
	closeDir  bool
	config    *IndexWriterConfig
	analyzer  analysis.Analyzer // how to analyze text

	infoStream util.InfoStream
	metrics    *WriterMetrics

	segmentInfos *SegmentInfos       // the segments
	ramDirectory *store.RAMDirectory // for temp segs

	writeLock store.Lock
	closed    bool
}

/*
Constructs an IndexWriter for the index in d. The write lock is held
until Close(). Depending on conf.OpenMode(), the segments file is
created fresh or read under the commit lock.
*/
func NewIndexWriter(d store.Directory, conf *IndexWriterConfig) (w *IndexWriter, err error) {
	return newIndexWriter(d, conf, false)
}

// Opens or creates the index at path, closing the FSDirectory with the
// writer.
func NewIndexWriterPath(path string, conf *IndexWriterConfig) (*IndexWriter, error) {
	directory, err := store.OpenFSDirectory(path, nil)
	if err != nil {
		return nil, err
	}
	w, err := newIndexWriter(directory, conf, true)
	if err != nil {
		return nil, util.CloseWhileHandlingError(err, directory)
	}
	return w, nil
}

func newIndexWriter(d store.Directory, conf *IndexWriterConfig, closeDir bool) (w *IndexWriter, err error) {
	assert2(conf.analyzer != nil, "analyzer must not be nil")
	metrics, err := NewWriterMetrics(conf.registerer)
	if err != nil {
		return nil, err
	}
	w = &IndexWriter{
		directory:    d,
		closeDir:     closeDir,
		config:       conf,
		analyzer:     conf.analyzer,
		infoStream:   conf.infoStream,
		metrics:      metrics,
		segmentInfos: NewSegmentInfos(),
		ramDirectory: store.NewRAMDirectory(),
	}

	writeLock := d.MakeLock(WRITE_LOCK_NAME)
	if _, err = writeLock.ObtainWithin(conf.writeLockTimeout); err != nil { // obtain write lock
		return nil, errors.Wrap(err, "Index locked for write")
	}
	w.writeLock = writeLock // save it
	defer func() {
		if err != nil {
			util.CloseWhileSuppressingError(writeLock)
		}
	}()

	err = store.WithLock(d.MakeLock(COMMIT_LOCK_NAME), conf.commitLockTimeout, func() error {
		create := conf.openMode == OPEN_MODE_CREATE
		if conf.openMode == OPEN_MODE_CREATE_OR_APPEND {
			create = !IndexExists(d)
		}
		if !create {
			sis, err := ReadSegmentInfos(d)
			if err != nil {
				return err
			}
			w.segmentInfos = sis
			return nil
		}
		return w.createIndex()
	})
	if err != nil {
		return nil, err
	}
	w.metrics.Segments.Set(float64(w.segmentInfos.Size()))
	if w.infoStream.IsEnabled("IW") {
		w.infoStream.Message("IW", "init: mode=%v segments=%v\n%v", conf.openMode, w.segmentInfos.Size(), conf)
	}
	return w, nil
}

// Writes an empty segments file, removing the files of any index it
// replaces. Called with the commit lock held.
func (w *IndexWriter) createIndex() error {
	var obsolete []string
	if IndexExists(w.directory) {
		if old, err := ReadSegmentInfos(w.directory); err == nil {
			for _, si := range old.Segments {
				files, err := segmentFiles(w.directory, si.Name)
				if err != nil {
					return err
				}
				obsolete = append(obsolete, files...)
			}
		} else {
			log.Warningf("Ignoring unreadable segments file while creating %v: %v", w.directory, err)
		}
	}
	if err := w.segmentInfos.Write(w.directory); err != nil {
		return err
	}
	if len(obsolete) == 0 {
		return nil
	}
	return w.deleteFiles(obsolete)
}

// Files of segment name in dir, found by name prefix.
func segmentFiles(dir store.Directory, name string) ([]string, error) {
	all, err := dir.ListAll()
	if err != nil {
		return nil, err
	}
	prefix := name + "."
	var files []string
	for _, file := range all {
		if strings.HasPrefix(file, prefix) {
			files = append(files, file)
		}
	}
	return files, nil
}

func (w *IndexWriter) ensureOpen() error {
	if w.closed {
		return errors.Wrap(ErrAlreadyClosed, "this IndexWriter is closed")
	}
	return nil
}

func (w *IndexWriter) Directory() store.Directory {
	return w.directory
}

func (w *IndexWriter) Analyzer() analysis.Analyzer {
	return w.analyzer
}

func (w *IndexWriter) Config() *IndexWriterConfig {
	return w.config
}

func (w *IndexWriter) Metrics() *WriterMetrics {
	return w.metrics
}

// Flushes all changes to an index and closes all associated files.
func (w *IndexWriter) Close() error {
	w.Lock()
	defer w.Unlock()
	if w.closed {
		return nil
	}
	err := w.flushRamSegments()
	w.closed = true
	errs := []error{err, w.ramDirectory.Close()}
	if w.writeLock != nil {
		errs = append(errs, w.writeLock.Close()) // release write lock
		w.writeLock = nil
	}
	if w.closeDir {
		errs = append(errs, w.directory.Close())
	}
	return util.JoinErrors(errs...)
}

// Returns the number of documents currently in this index.
func (w *IndexWriter) DocCount() int {
	w.Lock()
	defer w.Unlock()
	return w.segmentInfos.TotalDocCount()
}

// Returns the number of segments, RAM buffered ones included.
func (w *IndexWriter) SegmentCount() int {
	w.Lock()
	defer w.Unlock()
	return w.segmentInfos.Size()
}

/*
Adds a document to this index. If the document contains more than
MaxFieldLength terms for a given field, the remainder are discarded.
*/
func (w *IndexWriter) AddDocument(doc *document.Document) error {
	return w.AddDocumentWithAnalyzer(doc, w.analyzer)
}

/*
Adds a document to this index, using the provided analyzer instead of
the configured one. If the document contains more than MaxFieldLength
terms for a given field, the remainder are discarded.
*/
func (w *IndexWriter) AddDocumentWithAnalyzer(doc *document.Document, analyzer analysis.Analyzer) error {
	dw := NewDocumentWriter(w.ramDirectory, analyzer, w.config.similarity,
		w.config.maxFieldLength, w.config.termIndexInterval)
	dw.SetInfoStream(w.infoStream)

	segmentName, err := w.newSegmentName()
	if err != nil {
		return err
	}
	if err = dw.AddDocument(segmentName, doc); err != nil {
		files, _ := segmentFiles(w.ramDirectory, segmentName)
		util.DeleteFilesIgnoringErrors(w.ramDirectory, files...)
		return err
	}

	w.Lock()
	defer w.Unlock()
	if err = w.ensureOpen(); err != nil {
		return err
	}
	w.segmentInfos.Add(NewSegmentInfo(segmentName, 1, w.ramDirectory))
	w.metrics.DocsAdded.Inc()
	return w.maybeMergeSegments()
}

func (w *IndexWriter) newSegmentName() (string, error) {
	w.Lock()
	defer w.Unlock()
	if err := w.ensureOpen(); err != nil {
		return "", err
	}
	return w.segmentInfos.NewSegmentName(), nil
}

// Reports whether the index already is a single compound segment of
// this writer's directory without deletions or separate norms.
func (w *IndexWriter) isOptimized() bool {
	if w.segmentInfos.Size() > 1 {
		return false
	}
	if w.segmentInfos.Size() == 0 {
		return true
	}
	si := w.segmentInfos.Info(0)
	return !HasDeletions(si) && si.Dir == w.directory &&
		(!w.config.useCompoundFile || (UsesCompoundFile(si) && !HasSeparateNorms(si)))
}

// Merges all segments together into a single segment, optimizing an
// index for search.
func (w *IndexWriter) Optimize() error {
	w.Lock()
	defer w.Unlock()
	if err := w.ensureOpen(); err != nil {
		return err
	}
	return w.optimize()
}

func (w *IndexWriter) optimize() error {
	if err := w.flushRamSegments(); err != nil {
		return err
	}
	for !w.isOptimized() {
		minSegment := w.segmentInfos.Size() - w.config.mergeFactor
		if minSegment < 0 {
			minSegment = 0
		}
		if err := w.mergeSegments(minSegment, w.segmentInfos.Size()); err != nil {
			return err
		}
	}
	return nil
}

/*
Merges all segments from an array of indexes into this index.

This may be used to parallelize batch indexing. A large document
collection can be broken into sub-collections. Each sub-collection
can be indexed in parallel, on a different goroutine, process or
machine. The complete index can then be created by merging
sub-collection indexes with this method.

After this completes, the index is optimized.
*/
func (w *IndexWriter) AddIndexes(dirs ...store.Directory) error {
	w.Lock()
	defer w.Unlock()
	if err := w.ensureOpen(); err != nil {
		return err
	}
	if err := w.optimize(); err != nil { // start with zero or 1 seg
		return err
	}

	start := w.segmentInfos.Size()
	for _, dir := range dirs {
		sis, err := readSegmentInfosLocked(dir, w.config.commitLockTimeout)
		if err != nil {
			return err
		}
		for _, si := range sis.Segments {
			w.segmentInfos.Add(si)
		}
	}

	// merge newly added segments in log(n) passes
	for w.segmentInfos.Size() > start+w.config.mergeFactor {
		for base := start; base < w.segmentInfos.Size(); base++ {
			end := base + w.config.mergeFactor
			if end > w.segmentInfos.Size() {
				end = w.segmentInfos.Size()
			}
			if end-base > 1 {
				if err := w.mergeSegments(base, end); err != nil {
					return err
				}
			}
		}
	}

	return w.optimize() // final cleanup
}

func readSegmentInfosLocked(dir store.Directory, timeout int64) (sis *SegmentInfos, err error) {
	err = store.WithLock(dir.MakeLock(COMMIT_LOCK_NAME), timeout, func() (err error) {
		sis, err = ReadSegmentInfos(dir)
		return
	})
	return
}

/*
Merges the provided indexes into this index.

After this completes, the index is optimized.

The provided IndexReaders are not closed.
*/
func (w *IndexWriter) AddIndexesReaders(readers ...IndexReader) (err error) {
	w.Lock()
	defer w.Unlock()
	if err = w.ensureOpen(); err != nil {
		return err
	}
	if err = w.optimize(); err != nil { // start with zero or 1 seg
		return err
	}

	mergedName := w.segmentInfos.NewSegmentName()
	merger := NewSegmentMerger(w.directory, mergedName, w.config.termIndexInterval)
	merger.infoStream = w.infoStream

	var segmentsToDelete []IndexReader
	var sReader *SegmentReader
	if w.segmentInfos.Size() == 1 { // add existing index, if any
		if sReader, err = openSegmentReader(w.segmentInfos.Info(0)); err != nil {
			return err
		}
		merger.Add(sReader)
		segmentsToDelete = append(segmentsToDelete, sReader) // queue segment for deletion
	}
	for _, reader := range readers { // add new indexes
		merger.Add(reader)
	}

	docCount, err := merger.Merge() // merge 'em
	if sReader != nil {
		err = util.CloseWhileHandlingError(err, sReader)
	}
	if err != nil {
		return err
	}
	w.recordMerge(merger.Stats())

	// pop old infos & add new
	w.segmentInfos.Segments = []*SegmentInfo{NewSegmentInfo(mergedName, docCount, w.directory)}
	return w.commitMerge(merger, mergedName, segmentsToDelete)
}

/*
Merges all RAM-resident segments. The trailing run of RAM segments is
merged together with the newest on-disk segment when their combined
size stays within MergeFactor.
*/
func (w *IndexWriter) flushRamSegments() error {
	minSegment := w.segmentInfos.Size() - 1
	docCount := 0
	for minSegment >= 0 && w.segmentInfos.Info(minSegment).Dir == w.ramDirectory {
		docCount += w.segmentInfos.Info(minSegment).DocCount
		minSegment--
	}
	if minSegment < 0 || // add one FS segment?
		docCount+w.segmentInfos.Info(minSegment).DocCount > w.config.mergeFactor ||
		w.segmentInfos.Info(w.segmentInfos.Size()-1).Dir != w.ramDirectory {
		minSegment++
	}
	if minSegment >= w.segmentInfos.Size() {
		return nil // none to merge
	}
	w.metrics.Flushes.Inc()
	return w.mergeSegments(minSegment, w.segmentInfos.Size())
}

/*
Incremental segment merger. Starting with maxBufferedDocs, looks at
the newest segments smaller than the target size; when together they
reach the target they are merged, and the target grows by
mergeFactor, up to maxMergeDocs.
*/
func (w *IndexWriter) maybeMergeSegments() error {
	targetMergeDocs := w.config.maxBufferedDocs
	for targetMergeDocs <= w.config.maxMergeDocs {
		// find segments smaller than current target size
		minSegment := w.segmentInfos.Size()
		mergeDocs := 0
		for minSegment--; minSegment >= 0; minSegment-- {
			si := w.segmentInfos.Info(minSegment)
			if si.DocCount >= targetMergeDocs {
				break
			}
			mergeDocs += si.DocCount
		}

		if mergeDocs < targetMergeDocs {
			break
		}
		// found a merge to do
		if err := w.mergeSegments(minSegment+1, w.segmentInfos.Size()); err != nil {
			return err
		}
		if targetMergeDocs > w.config.maxMergeDocs/w.config.mergeFactor {
			break // next target would overflow maxMergeDocs
		}
		targetMergeDocs *= w.config.mergeFactor // increase target size
	}
	return nil
}

/*
Merges the named range of segments, replacing them in the stack with
a single segment.
*/
func (w *IndexWriter) mergeSegments(minSegment, end int) (err error) {
	mergedName := w.segmentInfos.NewSegmentName()
	if w.infoStream.IsEnabled("IW") {
		var b strings.Builder
		for i := minSegment; i < end; i++ {
			si := w.segmentInfos.Info(i)
			fmt.Fprintf(&b, " %v (%v docs)", si.Name, si.DocCount)
		}
		w.infoStream.Message("IW", "merging segments%v into %v", b.String(), mergedName)
	}

	merger := NewSegmentMerger(w.directory, mergedName, w.config.termIndexInterval)
	merger.infoStream = w.infoStream
	var segmentsToDelete []IndexReader
	for i := minSegment; i < end; i++ {
		si := w.segmentInfos.Info(i)
		reader, err := openSegmentReader(si)
		if err != nil {
			return util.CloseWhileHandlingError(err, closerFunc(merger.CloseReaders))
		}
		merger.Add(reader)
		if reader.Directory() == w.directory || // if we own the directory
			reader.Directory() == w.ramDirectory {
			segmentsToDelete = append(segmentsToDelete, reader) // queue segment for deletion
		}
	}

	mergedDocCount, err := merger.Merge()
	if err = util.CloseWhileHandlingError(err, closerFunc(merger.CloseReaders)); err != nil {
		return err
	}
	w.recordMerge(merger.Stats())
	if w.infoStream.IsEnabled("IW") {
		w.infoStream.Message("IW", "merged %v into %v (%v docs)", end-minSegment, mergedName, mergedDocCount)
	}

	w.segmentInfos.Replace(minSegment, end, NewSegmentInfo(mergedName, mergedDocCount, w.directory))
	return w.commitMerge(merger, mergedName, segmentsToDelete)
}

func (w *IndexWriter) recordMerge(stats MergeStats) {
	w.metrics.Merges.Inc()
	w.metrics.MergedDocs.Add(float64(stats.Docs))
	w.metrics.MergeDuration.Observe(stats.Elapsed.Seconds())
}

/*
Writes the new segments file and deletes the merged segments under
the commit lock. With compound files enabled the new segment is then
packed into <name>.cfs: written as <name>.tmp and renamed under the
commit lock, after which the loose files are deleted.
*/
func (w *IndexWriter) commitMerge(merger *SegmentMerger, mergedName string, segmentsToDelete []IndexReader) error {
	commitLock := w.directory.MakeLock(COMMIT_LOCK_NAME)
	err := store.WithLock(commitLock, w.config.commitLockTimeout, func() error {
		if err := w.segmentInfos.Write(w.directory); err != nil { // commit before deleting
			return err
		}
		w.metrics.Segments.Set(float64(w.segmentInfos.Size()))
		return w.deleteSegments(segmentsToDelete) // delete now-unused segments
	})
	if err != nil || !w.config.useCompoundFile {
		return err
	}

	tmpName := util.SegmentFileName(mergedName, "tmp")
	filesToDelete, err := merger.CreateCompoundFile(tmpName)
	if err != nil {
		util.DeleteFilesIgnoringErrors(w.directory, tmpName)
		return err
	}
	return store.WithLock(w.directory.MakeLock(COMMIT_LOCK_NAME), w.config.commitLockTimeout, func() error {
		// make compound file visible for SegmentReaders
		if err := w.directory.RenameFile(tmpName, util.SegmentFileName(mergedName, util.COMPOUND_FILE_EXTENSION)); err != nil {
			return err
		}
		// delete now unused files of segment
		return w.deleteFiles(filesToDelete)
	})
}

/*
Some operating systems (e.g. Windows) don't permit a file to be
deleted while it is opened for read (e.g. by another process or
goroutine). So we assume that when a delete fails it is because the
file is open in another process, and queue the file for subsequent
deletion.
*/
func (w *IndexWriter) deleteSegments(segments []IndexReader) error {
	var deletable []string

	pending, err := w.readDeletableFiles()
	if err != nil {
		return err
	}
	w.deleteFilesInto(pending, &deletable) // try to delete deletable

	for _, reader := range segments {
		files := readerFiles(reader)
		if reader.Directory() == w.directory {
			w.deleteFilesInto(files, &deletable) // try to delete our files
		} else {
			deleteFilesIn(files, reader.Directory()) // delete other files
		}
	}

	return w.writeDeletableFiles(deletable) // note files we can't delete
}

func readerFiles(reader IndexReader) []string {
	if sr, ok := reader.(*SegmentReader); ok {
		return sr.Files()
	}
	return nil
}

func (w *IndexWriter) deleteFiles(files []string) error {
	var deletable []string
	pending, err := w.readDeletableFiles()
	if err != nil {
		return err
	}
	w.deleteFilesInto(pending, &deletable) // try to delete deletable
	w.deleteFilesInto(files, &deletable)   // try to delete our files
	return w.writeDeletableFiles(deletable) // note files we can't delete
}

func deleteFilesIn(files []string, directory store.Directory) {
	for _, file := range files {
		if err := directory.DeleteFile(file); err != nil {
			log.Warningf("Cannot delete %v from %v: %v", file, directory, err)
		}
	}
}

func (w *IndexWriter) deleteFilesInto(files []string, deletable *[]string) {
	for _, file := range files {
		err := w.directory.DeleteFile(file)
		if err == nil {
			w.metrics.DeletedFiles.Inc()
			if w.infoStream.IsEnabled("IFD") {
				w.infoStream.Message("IFD", "deleted %v", file)
			}
			continue
		}
		if w.directory.FileExists(file) {
			if w.infoStream.IsEnabled("IFD") {
				w.infoStream.Message("IFD", "%v; Will re-try later.", err)
			}
			w.metrics.DeferredFiles.Inc()
			*deletable = append(*deletable, file) // add to deletable
		}
	}
}

func (w *IndexWriter) readDeletableFiles() ([]string, error) {
	if !w.directory.FileExists(util.DELETABLE) {
		return nil, nil
	}
	input, err := w.directory.OpenInput(util.DELETABLE, store.IO_CONTEXT_READONCE)
	if err != nil {
		return nil, err
	}
	var result []string
	err = func() error {
		count, err := input.ReadInt()
		if err != nil {
			return err
		}
		for i := int32(0); i < count; i++ {
			file, err := input.ReadString()
			if err != nil {
				return err
			}
			result = append(result, file)
		}
		return nil
	}()
	if err = util.CloseWhileHandlingError(err, input); err != nil {
		return nil, errors.Wrapf(err, "reading %v", util.DELETABLE)
	}
	return result, nil
}

func (w *IndexWriter) writeDeletableFiles(files []string) error {
	const tmpName = util.DELETABLE + ".new"
	output, err := w.directory.CreateOutput(tmpName, store.IO_CONTEXT_DEFAULT)
	if err != nil {
		return err
	}
	err = output.WriteInt(int32(len(files)))
	for i := 0; err == nil && i < len(files); i++ {
		err = output.WriteString(files[i])
	}
	if err = util.CloseWhileHandlingError(err, output); err != nil {
		return err
	}
	return w.directory.RenameFile(tmpName, util.DELETABLE)
}

// Returns the files listed in the deletable file of dir.
func DeletableFiles(dir store.Directory) ([]string, error) {
	w := &IndexWriter{directory: dir}
	return w.readDeletableFiles()
}
