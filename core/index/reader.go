package index

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/dbalmain/ferret-sub000/core/document"
	"github.com/dbalmain/ferret-sub000/core/store"
	"github.com/dbalmain/ferret-sub000/core/util"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const (
	WRITE_LOCK_NAME  = "write.lock"
	COMMIT_LOCK_NAME = "commit.lock"
)

// index/IndexReader.java

/*
IndexReader is an interface for accessing an index. Search of an
index is done entirely through this interface, so that any subclass
which implements it is searchable.

Concrete readers are usually constructed with a call to Open(). For
efficiency, in this API documents are often referred to via document
numbers, non-negative integers which each name a unique document in
the index. These document numbers are ephemeral: they may change as
documents are added to and deleted from an index. Clients should thus
not rely on a given document having the same number between sessions.

An IndexReader can be opened on a directory for which an IndexWriter
is opened already, but it cannot be used to delete documents from the
index then.
*/
type IndexReader interface {
	io.Closer
	Directory() store.Directory
	// Version of the segments snapshot this reader was opened on.
	Version() int64
	// Reports whether the index on disk still has this reader's version.
	IsCurrent() (bool, error)

	// Returns the number of documents in this index.
	NumDocs() int
	// Returns one greater than the largest possible document number.
	MaxDoc() int
	// Returns the stored fields of the nth document.
	Document(n int) (*document.Document, error)
	// Returns true if document n has been deleted.
	IsDeleted(n int) bool
	// Returns true if any documents have been deleted.
	HasDeletions() bool

	// Returns true if there are norms stored for this field.
	HasNorms(field string) bool
	// Returns the byte-encoded normalization factor for the named
	// field of every document, or nil if the field has no norms.
	Norms(field string) ([]byte, error)
	// Reads the norms of field into bytes, starting at offset.
	NormsInto(field string, bytes []byte, offset int) error
	// Expert: Resets the normalization factor for the named field of
	// the named document.
	SetNorm(doc int, field string, value byte) error
	SetNormFloat(doc int, field string, value float32) error

	// Returns an enumeration of all the terms in the index.
	Terms() (TermEnum, error)
	// Returns an enumeration of all terms after a given term.
	TermsFrom(t *Term) (TermEnum, error)
	// Returns the number of documents containing the term t.
	DocFreq(t *Term) (int, error)
	TermDocs() (TermDocs, error)
	TermDocsFor(t *Term) (TermDocs, error)
	TermPositions() (TermPositions, error)
	TermPositionsFor(t *Term) (TermPositions, error)

	// Returns the term vectors of each vectorized field of document n.
	TermFreqVectors(n int) ([]*TermFreqVector, error)
	// Returns the term vector of field in document n, or nil.
	TermFreqVector(n int, field string) (*TermFreqVector, error)
	// Returns the sorted names of the fields matching option.
	FieldNames(option FieldOption) []string

	// Deletes the document numbered docNum.
	DeleteDocument(docNum int) error
	// Deletes all documents containing term. Returns the number deleted.
	DeleteDocuments(term *Term) (int, error)
	// Undeletes all documents currently marked as deleted.
	UndeleteAll() error
	// Commit changes resulting from delete, undeleteAll, or setNorm
	// operations.
	Commit() error
}

// Options for selecting fields in FieldNames().
type FieldOption int

const (
	FIELD_OPTION_ALL = FieldOption(iota)
	FIELD_OPTION_INDEXED
	FIELD_OPTION_UNINDEXED
	FIELD_OPTION_INDEXED_WITH_TERMVECTOR
	FIELD_OPTION_INDEXED_NO_TERMVECTOR
	FIELD_OPTION_TERMVECTOR
	FIELD_OPTION_TERMVECTOR_WITH_POSITION
	FIELD_OPTION_TERMVECTOR_WITH_OFFSET
	FIELD_OPTION_TERMVECTOR_WITH_POSITION_OFFSET
)

func (option FieldOption) matches(fi *FieldInfo) bool {
	switch option {
	case FIELD_OPTION_INDEXED:
		return fi.IsIndexed
	case FIELD_OPTION_UNINDEXED:
		return !fi.IsIndexed
	case FIELD_OPTION_INDEXED_WITH_TERMVECTOR:
		return fi.IsIndexed && fi.StoreTermVector
	case FIELD_OPTION_INDEXED_NO_TERMVECTOR:
		return fi.IsIndexed && !fi.StoreTermVector
	case FIELD_OPTION_TERMVECTOR:
		return fi.StoreTermVector && !fi.StorePositionWithTermVector && !fi.StoreOffsetWithTermVector
	case FIELD_OPTION_TERMVECTOR_WITH_POSITION:
		return fi.StorePositionWithTermVector && !fi.StoreOffsetWithTermVector
	case FIELD_OPTION_TERMVECTOR_WITH_OFFSET:
		return fi.StoreOffsetWithTermVector && !fi.StorePositionWithTermVector
	case FIELD_OPTION_TERMVECTOR_WITH_POSITION_OFFSET:
		return fi.StorePositionWithTermVector && fi.StoreOffsetWithTermVector
	}
	return true
}

// Implemented by concrete readers.
type indexReaderSPI interface {
	IndexReader
	doDelete(docNum int) error
	doUndeleteAll() error
	doSetNorm(doc int, field string, value byte) error
	doCommit() error
	doClose() error
}

/*
Common state of all readers. Mutations of a reader that owns its
directory first obtain the directory's write lock and verify that no
other writer committed since the reader was opened.
*/
type IndexReaderImpl struct {
	spi indexReaderSPI
	sync.Mutex

	directory      store.Directory
	directoryOwner bool
	closeDirectory bool
	segmentInfos   *SegmentInfos
	writeLock      store.Lock
	stale          bool
	hasChanges     bool
	closed         bool
	normsGen       atomic.Int64 // bumped by every SetNorm
}

// Constructor used if IndexReader is not owner of its directory. This
// is used for IndexReaders that are used within other IndexReaders
// that take care of locking.
func newIndexReader(spi indexReaderSPI, directory store.Directory) *IndexReaderImpl {
	return &IndexReaderImpl{spi: spi, directory: directory}
}

// Constructor used if IndexReader is owner of its directory. If
// IndexReader is owner of its directory, it locks its directory in
// case of write operations.
func newOwnerIndexReader(spi indexReaderSPI, directory store.Directory,
	segmentInfos *SegmentInfos, closeDirectory bool) *IndexReaderImpl {

	return &IndexReaderImpl{
		spi:            spi,
		directory:      directory,
		directoryOwner: true,
		closeDirectory: closeDirectory,
		segmentInfos:   segmentInfos,
	}
}

// Returns the directory this index resides in.
func (r *IndexReaderImpl) Directory() store.Directory {
	return r.directory
}

func (r *IndexReaderImpl) Version() int64 {
	if r.segmentInfos == nil {
		return 0
	}
	return r.segmentInfos.Version
}

func (r *IndexReaderImpl) IsCurrent() (bool, error) {
	if r.segmentInfos == nil {
		return false, errors.Wrap(store.ErrUnsupported, "reader does not own its directory")
	}
	version, err := ReadCurrentVersion(r.directory)
	return version == r.segmentInfos.Version, err
}

func (r *IndexReaderImpl) ensureOpen() error {
	if r.closed {
		return errors.Wrap(ErrAlreadyClosed, "this IndexReader is closed")
	}
	return nil
}

/*
Tries to acquire the write lock on this directory. This method is only
valid if this IndexReader is directory owner. Fails with
ErrStaleReader if the index changed since this reader was opened.
*/
func (r *IndexReaderImpl) acquireWriteLock() error {
	if r.stale {
		return ErrStaleReader
	}
	if r.writeLock != nil {
		return nil
	}
	writeLock := r.directory.MakeLock(WRITE_LOCK_NAME)
	if _, err := writeLock.ObtainWithin(WRITE_LOCK_TIMEOUT); err != nil {
		return errors.Wrap(err, "Index locked for write")
	}

	// we have to check whether index has changed since this reader was
	// opened. if so, this reader is no longer valid for deletion
	version, err := ReadCurrentVersion(r.directory)
	if err == nil && version > r.segmentInfos.Version {
		r.stale = true
		err = ErrStaleReader
	}
	if err != nil {
		return util.CloseWhileHandlingError(err, writeLock)
	}
	r.writeLock = writeLock
	return nil
}

func (r *IndexReaderImpl) mutate(body func() error) error {
	r.Lock()
	defer r.Unlock()
	if err := r.ensureOpen(); err != nil {
		return err
	}
	if r.directoryOwner {
		if err := r.acquireWriteLock(); err != nil {
			return err
		}
	}
	if err := body(); err != nil {
		return err
	}
	r.hasChanges = true
	return nil
}

/*
Deletes the document numbered docNum. Once a document is deleted it
will not appear in TermDocs or TermPositions enumerations. Attempts
to read its field with the Document() method will result in an error.
The presence of this document may still be reflected in the DocFreq()
statistic, though this will be corrected eventually as the index is
further modified.
*/
func (r *IndexReaderImpl) DeleteDocument(docNum int) error {
	return r.mutate(func() error { return r.spi.doDelete(docNum) })
}

/*
Deletes all documents containing term. This is useful if one uses a
document field to hold a unique ID string for the document. Then to
delete such a document, one merely constructs a term with the
appropriate field and the unique ID string as its text and passes it
to this method.
*/
func (r *IndexReaderImpl) DeleteDocuments(term *Term) (n int, err error) {
	docs, err := r.spi.TermDocsFor(term)
	if err != nil {
		return 0, err
	}
	defer func() {
		err = util.CloseWhileHandlingError(err, docs)
	}()
	for {
		ok, err := docs.Next()
		if err != nil || !ok {
			return n, err
		}
		if err = r.DeleteDocument(docs.Doc()); err != nil {
			return n, err
		}
		n++
	}
}

func (r *IndexReaderImpl) UndeleteAll() error {
	return r.mutate(r.spi.doUndeleteAll)
}

func (r *IndexReaderImpl) SetNorm(doc int, field string, value byte) error {
	return r.mutate(func() error {
		if err := r.spi.doSetNorm(doc, field, value); err != nil {
			return err
		}
		r.normsGen.Add(1)
		return nil
	})
}

// Changes whenever a norm of this reader is set.
func (r *IndexReaderImpl) normsGeneration() int64 {
	return r.normsGen.Load()
}

func (r *IndexReaderImpl) SetNormFloat(doc int, field string, value float32) error {
	return r.SetNorm(doc, field, EncodeNorm(value))
}

/*
Commit changes resulting from delete, undeleteAll, or setNorm
operations. The segments file is rewritten under the commit lock and
the write lock is released.
*/
func (r *IndexReaderImpl) Commit() error {
	r.Lock()
	defer r.Unlock()
	return r.commit()
}

func (r *IndexReaderImpl) commit() error {
	if !r.hasChanges {
		return nil
	}
	if r.directoryOwner {
		err := store.WithLock(r.directory.MakeLock(COMMIT_LOCK_NAME), COMMIT_LOCK_TIMEOUT, func() error {
			if err := r.spi.doCommit(); err != nil {
				return err
			}
			return r.segmentInfos.Write(r.directory)
		})
		if err != nil {
			return err
		}
		if r.writeLock != nil {
			if err = r.writeLock.Close(); err != nil { // release write lock
				return err
			}
			r.writeLock = nil
		}
	} else if err := r.spi.doCommit(); err != nil {
		return err
	}
	r.hasChanges = false
	return nil
}

/*
Closes files associated with this index. Also saves any new deletions
to disk. No other methods should be called after this has been
called.
*/
func (r *IndexReaderImpl) Close() error {
	r.Lock()
	defer r.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	var errs []error
	if err := r.commit(); err != nil {
		errs = append(errs, err)
	}
	if err := r.spi.doClose(); err != nil {
		errs = append(errs, err)
	}
	if r.writeLock != nil {
		if err := r.writeLock.Close(); err != nil {
			errs = append(errs, err)
		}
		r.writeLock = nil
	}
	if r.closeDirectory {
		if err := r.directory.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return util.JoinErrors(errs...)
}

// Returns an IndexReader reading the index in the given Directory.
func Open(directory store.Directory) (IndexReader, error) {
	return open(directory, false)
}

// Returns an IndexReader reading the index at path. The directory is
// closed with the reader.
func OpenPath(path string) (IndexReader, error) {
	directory, err := store.OpenFSDirectory(path, nil)
	if err != nil {
		return nil, err
	}
	r, err := open(directory, true)
	if err != nil {
		return nil, util.CloseWhileHandlingError(err, directory)
	}
	return r, nil
}

func open(directory store.Directory, closeDirectory bool) (r IndexReader, err error) {
	err = store.WithLock(directory.MakeLock(COMMIT_LOCK_NAME), COMMIT_LOCK_TIMEOUT, func() error {
		infos, err := ReadSegmentInfos(directory)
		if err != nil {
			return err
		}
		if infos.Size() == 1 { // index is optimized
			r, err = openOwnerSegmentReader(directory, infos, infos.Info(0), closeDirectory)
			return err
		}

		readers := make([]IndexReader, infos.Size())
		var g errgroup.Group
		for i, si := range infos.Segments {
			g.Go(func() error {
				sr, err := openSegmentReader(si)
				if err == nil {
					readers[i] = sr
				}
				return err
			})
		}
		if err = g.Wait(); err != nil {
			for _, sr := range readers {
				if sr != nil {
					util.CloseWhileSuppressingError(sr)
				}
			}
			return err
		}
		r = newOwnerMultiReader(directory, infos, closeDirectory, readers)
		return nil
	})
	return r, err
}

// Returns true if an index exists in the directory.
func IndexExists(directory store.Directory) bool {
	return directory.FileExists(util.SEGMENTS)
}

// Reads version number from segments files. The version number is
// initialized with a timestamp and then increased by one for each
// change of the index.
func CurrentVersion(directory store.Directory) (int64, error) {
	var version int64
	err := store.WithLock(directory.MakeLock(COMMIT_LOCK_NAME), COMMIT_LOCK_TIMEOUT, func() (err error) {
		version, err = ReadCurrentVersion(directory)
		return
	})
	return version, err
}

// Returns true iff the index in the named directory is currently
// locked.
func IsLocked(directory store.Directory) bool {
	return directory.MakeLock(WRITE_LOCK_NAME).IsLocked() ||
		directory.MakeLock(COMMIT_LOCK_NAME).IsLocked()
}

/*
Forcibly unlocks the index in the named directory.

Caution: this should only be used by failure recovery code, when it
is known that no other process nor thread is in fact currently
accessing this index.
*/
func Unlock(directory store.Directory) error {
	err := directory.ClearLock(WRITE_LOCK_NAME)
	if err2 := directory.ClearLock(COMMIT_LOCK_NAME); err == nil {
		err = err2
	}
	return err
}
