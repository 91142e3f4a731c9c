package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// store/RAMDirectory.java

/*
A memory-resident Directory implementation. Locking implementation
is by default the SingleInstanceLockFactory but can be changed with
SetLockFactory().

IndexWriter buffers freshly added documents as one-document segments
in a private RAMDirectory before merging them into the real index.
*/
type RAMDirectory struct {
	*DirectoryImpl

	fileMap     map[string]*RAMFile // synchronized
	fileMapLock *sync.RWMutex
}

func NewRAMDirectory() *RAMDirectory {
	return &RAMDirectory{
		DirectoryImpl: NewDirectoryImpl(NewSingleInstanceLockFactory()),
		fileMap:       make(map[string]*RAMFile),
		fileMapLock:   &sync.RWMutex{},
	}
}

/*
Creates a new RAMDirectory instance from a different Directory
implementation. This can be used to load a disk-based index into
memory.

Note that the resulting RAMDirectory instance is fully independent
from the original Directory (it is a complete copy). Any subsequent
changes to the original Directory will not be visible in the
RAMDirectory instance.
*/
func NewRAMDirectoryFrom(dir Directory, ctx IOContext) (*RAMDirectory, error) {
	ans := NewRAMDirectory()
	files, err := dir.ListAll()
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		if err = Copy(dir, ans, file, file, ctx); err != nil {
			return nil, err
		}
	}
	return ans, nil
}

func (rd *RAMDirectory) ListAll() (names []string, err error) {
	if err = rd.EnsureOpen(); err != nil {
		return nil, err
	}
	rd.fileMapLock.RLock()
	defer rd.fileMapLock.RUnlock()
	names = make([]string, 0, len(rd.fileMap))
	for name := range rd.fileMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Returns true iff the named file exists in this directory
func (rd *RAMDirectory) FileExists(name string) bool {
	rd.fileMapLock.RLock()
	defer rd.fileMapLock.RUnlock()
	_, ok := rd.fileMap[name]
	return ok
}

func (rd *RAMDirectory) file(name string) (*RAMFile, error) {
	if err := rd.EnsureOpen(); err != nil {
		return nil, err
	}
	rd.fileMapLock.RLock()
	defer rd.fileMapLock.RUnlock()
	file, ok := rd.fileMap[name]
	if !ok {
		return nil, errors.Wrap(ErrNoSuchFile, name)
	}
	return file, nil
}

// Returns the length in bytes of a file in the directory.
func (rd *RAMDirectory) FileLength(name string) (length int64, err error) {
	file, err := rd.file(name)
	if err != nil {
		return 0, err
	}
	return file.Length(), nil
}

// Returns the time the named file was last modified.
func (rd *RAMDirectory) FileModified(name string) (time.Time, error) {
	file, err := rd.file(name)
	if err != nil {
		return time.Time{}, err
	}
	file.Lock()
	defer file.Unlock()
	return file.lastModified, nil
}

// Removes an existing file in the directory
func (rd *RAMDirectory) DeleteFile(name string) error {
	if err := rd.EnsureOpen(); err != nil {
		return err
	}
	rd.fileMapLock.Lock()
	defer rd.fileMapLock.Unlock()
	if _, ok := rd.fileMap[name]; !ok {
		return errors.Wrap(ErrNoSuchFile, name)
	}
	delete(rd.fileMap, name)
	return nil
}

// Renames an existing file in the directory, replacing any file
// named to.
func (rd *RAMDirectory) RenameFile(from, to string) error {
	if err := rd.EnsureOpen(); err != nil {
		return err
	}
	rd.fileMapLock.Lock()
	defer rd.fileMapLock.Unlock()
	file, ok := rd.fileMap[from]
	if !ok {
		return errors.Wrap(ErrNoSuchFile, from)
	}
	delete(rd.fileMap, from)
	rd.fileMap[to] = file
	return nil
}

// Creates a new, empty file in the directory with the given name.
// Returns a stream writing this file.
func (rd *RAMDirectory) CreateOutput(name string, context IOContext) (out IndexOutput, err error) {
	if err = rd.EnsureOpen(); err != nil {
		return nil, err
	}
	file := NewRAMFile()
	rd.fileMapLock.Lock()
	defer rd.fileMapLock.Unlock()
	rd.fileMap[name] = file
	return NewRAMOutputStream(name, file), nil
}

// Returns a stream reading an existing file.
func (rd *RAMDirectory) OpenInput(name string, context IOContext) (in IndexInput, err error) {
	file, err := rd.file(name)
	if err != nil {
		return nil, err
	}
	return newRAMInputStream(name, file), nil
}

// Closes the store to future operations, releasing associated memory.
func (rd *RAMDirectory) Close() error {
	rd.IsOpen = false
	rd.fileMapLock.Lock()
	defer rd.fileMapLock.Unlock()
	rd.fileMap = make(map[string]*RAMFile)
	return nil
}

func (rd *RAMDirectory) LockID() string {
	return fmt.Sprintf("lucene-%p", rd)
}

func (rd *RAMDirectory) String() string {
	return fmt.Sprintf("RAMDirectory@%p lockFactory=%v", rd, rd.LockFactory())
}

// store/RAMFile.java

// Represents a file in RAM as a growable byte slice.
type RAMFile struct {
	sync.Mutex
	data         []byte
	lastModified time.Time
}

func NewRAMFile() *RAMFile {
	return &RAMFile{lastModified: time.Now()}
}

func (rf *RAMFile) Length() int64 {
	rf.Lock()
	defer rf.Unlock()
	return int64(len(rf.data))
}

func (rf *RAMFile) writeAt(buf []byte, pos int64) {
	rf.Lock()
	defer rf.Unlock()
	if end := int(pos) + len(buf); end > len(rf.data) {
		if end > cap(rf.data) {
			grown := make([]byte, end, 2*end)
			copy(grown, rf.data)
			rf.data = grown
		} else {
			rf.data = rf.data[:end]
		}
	}
	copy(rf.data[pos:], buf)
	rf.lastModified = time.Now()
}

func (rf *RAMFile) readAt(buf []byte, pos int64) int {
	rf.Lock()
	defer rf.Unlock()
	if pos >= int64(len(rf.data)) {
		return 0
	}
	return copy(buf, rf.data[pos:])
}

// store/RAMInputStream.java

// A memory-resident IndexInput implementation.
type RAMInputStream struct {
	*BufferedIndexInput
	file   *RAMFile
	length int64
}

func newRAMInputStream(name string, f *RAMFile) *RAMInputStream {
	ans := &RAMInputStream{file: f, length: f.Length()}
	ans.BufferedIndexInput = newBufferedIndexInputBySize(ans,
		fmt.Sprintf("RAMInputStream(name=%v)", name), BUFFER_SIZE)
	return ans
}

func (in *RAMInputStream) readInternal(buf []byte, pos int64) error {
	if pos+int64(len(buf)) > in.length || in.file.readAt(buf, pos) < len(buf) {
		return readPastEOF(in)
	}
	return nil
}

func (in *RAMInputStream) Length() int64 {
	return in.length
}

func (in *RAMInputStream) Clone() IndexInput {
	ans := &RAMInputStream{file: in.file, length: in.length}
	ans.BufferedIndexInput = in.cloneFor(ans)
	return ans
}

func (in *RAMInputStream) Close() error {
	return nil
}

// store/RAMOutputStream.java

// A memory-resident IndexOutput implementation.
type RAMOutputStream struct {
	*BufferedIndexOutput
	name string
	file *RAMFile
	pos  int64
}

func NewRAMOutputStream(name string, f *RAMFile) *RAMOutputStream {
	ans := &RAMOutputStream{name: name, file: f}
	ans.BufferedIndexOutput = newBufferedIndexOutput(ans)
	return ans
}

func (out *RAMOutputStream) flushBuffer(buf []byte) error {
	out.file.writeAt(buf, out.pos)
	out.pos += int64(len(buf))
	return nil
}

func (out *RAMOutputStream) seekInternal(pos int64) error {
	out.pos = pos
	return nil
}

func (out *RAMOutputStream) Length() (int64, error) {
	if err := out.Flush(); err != nil {
		return 0, err
	}
	return out.file.Length(), nil
}

func (out *RAMOutputStream) Close() error {
	return out.Flush()
}

func (out *RAMOutputStream) String() string {
	return fmt.Sprintf("RAMOutputStream(name=%v)", out.name)
}
