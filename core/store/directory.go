package store

import (
	"fmt"
	"io"

	"github.com/dbalmain/ferret-sub000/core/util"
	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var log = logging.MustGetLogger("store")

var (
	ErrReadPastEOF      = errors.New("read past EOF")
	ErrAlreadyClosed    = errors.New("this Directory is closed")
	ErrNoSuchFile       = errors.New("no such file")
	ErrIllegalState     = errors.New("illegal state")
	ErrUnsupported      = errors.New("operation not supported")
	ErrLockObtainFailed = errors.New("Lock obtain timed out")
)

// store/IOContext.java

const (
	IO_CONTEXT_TYPE_MERGE   = 1
	IO_CONTEXT_TYPE_READ    = 2
	IO_CONTEXT_TYPE_DEFAULT = 3
)

type IOContextType int

var (
	IO_CONTEXT_DEFAULT  = IOContext{context: IO_CONTEXT_TYPE_DEFAULT}
	IO_CONTEXT_READONCE = IOContext{context: IO_CONTEXT_TYPE_READ, readOnce: true}
	IO_CONTEXT_READ     = IOContext{context: IO_CONTEXT_TYPE_READ}
	// Sequential reads of whole files while merging; inputs get a
	// larger buffer.
	IO_CONTEXT_MERGE = IOContext{context: IO_CONTEXT_TYPE_MERGE, readOnce: true}
)

/*
IOContext holds additional details on the merge/search context. It is
passed as a parameter to either OpenInput() or CreateOutput().
*/
type IOContext struct {
	context  IOContextType
	readOnce bool
}

func (ctx IOContext) String() string {
	return fmt.Sprintf("IOContext [context=%v, readOnce=%v]", ctx.context, ctx.readOnce)
}

/*
A Directory is a flat list of files. Files may be written once, when
they are created. Once a file is created it may only be opened for
read, renamed or deleted. Random access is permitted both when
reading and writing.

Locking is implemented by an instance of LockFactory, and can be
changed for each Directory instance using SetLockFactory().
*/
type Directory interface {
	io.Closer
	fmt.Stringer
	// Returns the names of all files in the directory.
	ListAll() (paths []string, err error)
	// Returns true iff a file with the given name exists.
	FileExists(name string) bool
	// Returns the length of a file in the directory. Returns an error
	// if the file doesn't exist.
	FileLength(name string) (n int64, err error)
	// Removes an existing file in the directory.
	DeleteFile(name string) error
	// Renames an existing file in the directory. If a file already
	// exists with the new name, then it is replaced. The replacement
	// should be atomic.
	RenameFile(from, to string) error
	// Creates a new, empty file in the directory with the given name.
	// Returns a stream writing this file.
	CreateOutput(name string, ctx IOContext) (out IndexOutput, err error)
	// Returns a stream reading an existing file.
	OpenInput(name string, ctx IOContext) (in IndexInput, err error)
	// Construct a Lock.
	MakeLock(name string) Lock
	// Attempt to clear (forcefully unlock and remove) the specified
	// lock. Only call this at a time when you are certain this lock is
	// no longer in use.
	ClearLock(name string) error
	SetLockFactory(lockFactory LockFactory)
	LockFactory() LockFactory
	// Returns a string identifier that uniquely differentiates this
	// Directory instance from other Directory instances.
	LockID() string
}

/* Base implementation for a concrete Directory. */
type DirectoryImpl struct {
	IsOpen      bool
	lockFactory LockFactory
}

func NewDirectoryImpl(lockFactory LockFactory) *DirectoryImpl {
	return &DirectoryImpl{IsOpen: true, lockFactory: lockFactory}
}

func (d *DirectoryImpl) MakeLock(name string) Lock {
	return d.lockFactory.Make(name)
}

func (d *DirectoryImpl) ClearLock(name string) error {
	if d.lockFactory != nil {
		return d.lockFactory.Clear(name)
	}
	return nil
}

func (d *DirectoryImpl) SetLockFactory(lockFactory LockFactory) {
	assertTrue(lockFactory != nil)
	d.lockFactory = lockFactory
}

func (d *DirectoryImpl) LockFactory() LockFactory {
	return d.lockFactory
}

func (d *DirectoryImpl) EnsureOpen() error {
	if !d.IsOpen {
		return ErrAlreadyClosed
	}
	return nil
}

/*
Copies the file src to 'to' under the new file name dest.

If you want to copy the entire source directory to the destination
one, you can do so like this:

	var to Directory // the directory to copy to
	for _, file := range dir.ListAll() {
		Copy(dir, to, file, file, IO_CONTEXT_DEFAULT)
	}

NOTE: this method does not check whether dest exists and will
overwrite it if it does.
*/
func Copy(from, to Directory, src, dest string, ctx IOContext) (err error) {
	var os IndexOutput
	var is IndexInput
	var success = false
	defer func() {
		if success {
			err = util.Close(os, is)
		} else {
			util.CloseWhileSuppressingError(os, is)
			to.DeleteFile(dest) // ignore error
		}
	}()

	if os, err = to.CreateOutput(dest, ctx); err != nil {
		return err
	}
	if is, err = from.OpenInput(src, ctx); err != nil {
		return err
	}
	if err = os.CopyBytes(is, is.Length()); err != nil {
		return err
	}
	success = true
	return nil
}

func assertTrue(ok bool) {
	if !ok {
		panic("assert fail")
	}
}

func assert2(ok bool, msg string, args ...interface{}) {
	if !ok {
		panic(fmt.Sprintf(msg, args...))
	}
}
