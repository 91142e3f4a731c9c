package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dbalmain/ferret-sub000/core/util"
	"github.com/pkg/errors"
)

// index/CompoundFileReader.java

type fileEntry struct {
	offset int64
	length int64
}

/*
Class for accessing a compound stream. This class implements a
read-only Directory, where all files are entries of the compound
file. Mutating operations return ErrUnsupported.

All inputs opened from one reader share a single base stream; every
read through it seeks and reads inside one critical section.
*/
type CompoundFileReader struct {
	*DirectoryImpl
	sync.Locker

	directory Directory
	fileName  string

	stream  IndexInput
	entries map[string]fileEntry
}

func NewCompoundFileReader(dir Directory, name string, context IOContext) (r *CompoundFileReader, err error) {
	r = &CompoundFileReader{
		DirectoryImpl: NewDirectoryImpl(nil),
		Locker:        &sync.Mutex{},
		directory:     dir,
		fileName:      name,
		entries:       make(map[string]fileEntry),
	}
	success := false
	defer func() {
		if !success {
			util.CloseWhileSuppressingError(r.stream)
		}
	}()

	if r.stream, err = dir.OpenInput(name, context); err != nil {
		return nil, err
	}
	// read the directory and init files
	count, err := r.stream.ReadVInt()
	if err != nil {
		return nil, err
	}
	var last string
	for i := int32(0); i < count; i++ {
		offset, err := r.stream.ReadLong()
		if err != nil {
			return nil, err
		}
		id, err := r.stream.ReadString()
		if err != nil {
			return nil, err
		}
		if i > 0 {
			// set length of the previous entry
			entry := r.entries[last]
			entry.length = offset - entry.offset
			r.entries[last] = entry
		}
		r.entries[id] = fileEntry{offset: offset}
		last = id
	}
	// set the length of the final entry
	if count > 0 {
		entry := r.entries[last]
		entry.length = r.stream.Length() - entry.offset
		r.entries[last] = entry
	}
	success = true
	return r, nil
}

func (r *CompoundFileReader) Directory() Directory {
	return r.directory
}

func (r *CompoundFileReader) Name() string {
	return r.fileName
}

func (r *CompoundFileReader) Close() error {
	r.Lock() // synchronized
	defer r.Unlock()
	if r.stream == nil {
		return errors.Wrap(ErrAlreadyClosed, r.fileName)
	}
	r.entries = make(map[string]fileEntry)
	err := r.stream.Close()
	r.stream = nil
	r.IsOpen = false
	return err
}

func (r *CompoundFileReader) OpenInput(id string, context IOContext) (IndexInput, error) {
	r.Lock() // synchronized
	defer r.Unlock()
	if r.stream == nil {
		return nil, errors.Wrap(ErrAlreadyClosed, "Stream closed")
	}
	entry, ok := r.entries[id]
	if !ok {
		return nil, errors.Wrapf(ErrNoSuchFile, "No sub-file with id %v found in %v", id, r.fileName)
	}
	return newCSIndexInput(fmt.Sprintf("CSIndexInput(%v in %v)", id, r.fileName),
		r.stream, r.Locker, entry.offset, entry.length, context), nil
}

// Returns an array of strings, one for each file in the directory.
func (r *CompoundFileReader) ListAll() ([]string, error) {
	r.Lock() // synchronized
	defer r.Unlock()
	res := make([]string, 0, len(r.entries))
	for id := range r.entries {
		res = append(res, id)
	}
	sort.Strings(res)
	return res, nil
}

func (r *CompoundFileReader) FileExists(name string) bool {
	r.Lock() // synchronized
	defer r.Unlock()
	_, ok := r.entries[name]
	return ok
}

func (r *CompoundFileReader) FileLength(name string) (int64, error) {
	r.Lock() // synchronized
	defer r.Unlock()
	entry, ok := r.entries[name]
	if !ok {
		return 0, errors.Wrap(ErrNoSuchFile, name)
	}
	return entry.length, nil
}

func (r *CompoundFileReader) DeleteFile(name string) error {
	return errors.Wrap(ErrUnsupported, "DeleteFile on compound file")
}

func (r *CompoundFileReader) RenameFile(from, to string) error {
	return errors.Wrap(ErrUnsupported, "RenameFile on compound file")
}

func (r *CompoundFileReader) CreateOutput(name string, context IOContext) (IndexOutput, error) {
	return nil, errors.Wrap(ErrUnsupported, "CreateOutput on compound file")
}

func (r *CompoundFileReader) MakeLock(name string) Lock {
	return unsupportedLock{name}
}

func (r *CompoundFileReader) ClearLock(name string) error {
	return errors.Wrap(ErrUnsupported, "ClearLock on compound file")
}

func (r *CompoundFileReader) LockID() string {
	return r.directory.LockID() + "/" + r.fileName
}

func (r *CompoundFileReader) String() string {
	return fmt.Sprintf("CompoundFileReader(%v in %v)", r.fileName, r.directory)
}

type unsupportedLock struct {
	name string
}

func (l unsupportedLock) Obtain() (bool, error) {
	return false, errors.Wrapf(ErrUnsupported, "lock %v on compound file", l.name)
}

func (l unsupportedLock) ObtainWithin(int64) (bool, error) {
	return l.Obtain()
}

func (l unsupportedLock) IsLocked() bool { return false }
func (l unsupportedLock) Close() error   { return nil }

// Implementation of an IndexInput that reads from a portion of the
// compound file.
type CSIndexInput struct {
	*BufferedIndexInput
	base       IndexInput
	baseLock   sync.Locker
	fileOffset int64
	length     int64
}

func newCSIndexInput(desc string, base IndexInput, baseLock sync.Locker,
	fileOffset, length int64, context IOContext) *CSIndexInput {
	ans := &CSIndexInput{base: base, baseLock: baseLock, fileOffset: fileOffset, length: length}
	ans.BufferedIndexInput = newBufferedIndexInput(ans, desc, context)
	return ans
}

func (in *CSIndexInput) readInternal(buf []byte, pos int64) error {
	if pos+int64(len(buf)) > in.length {
		return readPastEOF(in)
	}
	in.baseLock.Lock() // synchronized on base
	defer in.baseLock.Unlock()
	if err := in.base.Seek(in.fileOffset + pos); err != nil {
		return err
	}
	return in.base.ReadBytes(buf)
}

func (in *CSIndexInput) Length() int64 {
	return in.length
}

func (in *CSIndexInput) Clone() IndexInput {
	ans := &CSIndexInput{base: in.base, baseLock: in.baseLock, fileOffset: in.fileOffset, length: in.length}
	ans.BufferedIndexInput = in.cloneFor(ans)
	return ans
}

// The base stream is owned by the CompoundFileReader.
func (in *CSIndexInput) Close() error {
	return nil
}
