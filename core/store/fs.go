package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// store/FSDirectory.java

type NoSuchDirectoryError struct {
	msg string
}

func (err *NoSuchDirectoryError) Error() string {
	return err.msg
}

/*
Straightforward Directory implementation over a file system folder.
Inputs read through positional reads on one shared file handle per
OpenInput() call, so clones can be used from different goroutines
without coordinating seeks.

Locks default to FlockLockFactory placed in the index folder itself.
*/
type FSDirectory struct {
	*DirectoryImpl
	path string
}

/*
Opens (creating when missing) the folder at path. lockFactory may be
nil, in which case advisory file locks are placed in the folder. If
the given factory keeps its locks elsewhere and has no prefix, the
directory's LockID() is used as prefix so that several indexes can
share one lock folder.
*/
func OpenFSDirectory(path string, lockFactory LockFactory) (d *FSDirectory, err error) {
	if path, err = filepath.Abs(path); err != nil {
		return nil, err
	}
	if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
		return nil, &NoSuchDirectoryError{fmt.Sprintf("file '%v' exists but is not a directory", path)}
	}
	if err = os.MkdirAll(path, 0755); err != nil {
		return nil, err
	}
	d = &FSDirectory{path: path}
	if lockFactory == nil {
		lockFactory = NewFlockLockFactory(path)
	}
	d.DirectoryImpl = NewDirectoryImpl(nil)
	d.SetLockFactory(lockFactory)
	return d, nil
}

func (d *FSDirectory) SetLockFactory(lockFactory LockFactory) {
	d.DirectoryImpl.SetLockFactory(lockFactory)
	if lf, ok := lockFactory.(*FlockLockFactory); ok {
		if lf.lockDir != d.path && lf.LockPrefix() == "" {
			lf.SetLockPrefix(d.LockID() + "-")
		}
	}
}

func (d *FSDirectory) Path() string {
	return d.path
}

func (d *FSDirectory) ListAll() (paths []string, err error) {
	if err = d.EnsureOpen(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			paths = append(paths, entry.Name())
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (d *FSDirectory) FileExists(name string) bool {
	_, err := os.Stat(filepath.Join(d.path, name))
	return err == nil
}

func (d *FSDirectory) FileLength(name string) (int64, error) {
	fi, err := os.Stat(filepath.Join(d.path, name))
	if os.IsNotExist(err) {
		return 0, errors.Wrap(ErrNoSuchFile, name)
	}
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

func (d *FSDirectory) DeleteFile(name string) error {
	if err := d.EnsureOpen(); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(d.path, name))
	if os.IsNotExist(err) {
		return errors.Wrap(ErrNoSuchFile, name)
	}
	return err
}

func (d *FSDirectory) RenameFile(from, to string) error {
	if err := d.EnsureOpen(); err != nil {
		return err
	}
	return os.Rename(filepath.Join(d.path, from), filepath.Join(d.path, to))
}

func (d *FSDirectory) CreateOutput(name string, context IOContext) (IndexOutput, error) {
	if err := d.EnsureOpen(); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(filepath.Join(d.path, name), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	return newFSIndexOutput(name, file), nil
}

func (d *FSDirectory) OpenInput(name string, context IOContext) (IndexInput, error) {
	if err := d.EnsureOpen(); err != nil {
		return nil, err
	}
	path := filepath.Join(d.path, name)
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(ErrNoSuchFile, name)
	}
	if err != nil {
		return nil, err
	}
	fi, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	return newFSIndexInput(fmt.Sprintf("FSIndexInput(path=\"%v\")", path), file, fi.Size(), context), nil
}

func (d *FSDirectory) Close() error {
	d.IsOpen = false
	return nil
}

// The lock identity is a hash of the canonical folder path.
func (d *FSDirectory) LockID() string {
	return fmt.Sprintf("lucene-%016x", xxhash.Sum64String(d.path))
}

func (d *FSDirectory) String() string {
	return fmt.Sprintf("FSDirectory@%v lockFactory=%v", d.path, d.LockFactory())
}

type fsIndexInput struct {
	*BufferedIndexInput
	file    *os.File
	length  int64
	isClone bool
}

func newFSIndexInput(desc string, file *os.File, length int64, context IOContext) *fsIndexInput {
	ans := &fsIndexInput{file: file, length: length}
	ans.BufferedIndexInput = newBufferedIndexInput(ans, desc, context)
	return ans
}

func (in *fsIndexInput) readInternal(buf []byte, pos int64) error {
	n, err := in.file.ReadAt(buf, pos)
	if n < len(buf) {
		if err == nil {
			err = readPastEOF(in)
		}
		return errors.Wrapf(err, "read %v of %v bytes at %v from %v", n, len(buf), pos, in)
	}
	return nil
}

func (in *fsIndexInput) Length() int64 {
	return in.length
}

func (in *fsIndexInput) Clone() IndexInput {
	ans := &fsIndexInput{file: in.file, length: in.length, isClone: true}
	ans.BufferedIndexInput = in.cloneFor(ans)
	return ans
}

// Only the original closes the shared file handle.
func (in *fsIndexInput) Close() error {
	if in.isClone {
		return nil
	}
	return in.file.Close()
}

type fsIndexOutput struct {
	*BufferedIndexOutput
	name string
	file *os.File
}

func newFSIndexOutput(name string, file *os.File) *fsIndexOutput {
	ans := &fsIndexOutput{name: name, file: file}
	ans.BufferedIndexOutput = newBufferedIndexOutput(ans)
	return ans
}

func (out *fsIndexOutput) flushBuffer(buf []byte) error {
	_, err := out.file.Write(buf)
	return err
}

func (out *fsIndexOutput) seekInternal(pos int64) error {
	_, err := out.file.Seek(pos, 0)
	return err
}

func (out *fsIndexOutput) Length() (int64, error) {
	if err := out.Flush(); err != nil {
		return 0, err
	}
	fi, err := out.file.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

func (out *fsIndexOutput) Close() error {
	err := out.Flush()
	if err2 := out.file.Close(); err == nil {
		err = err2
	}
	return err
}

func (out *fsIndexOutput) String() string {
	return fmt.Sprintf("FSIndexOutput(name=%v)", out.name)
}
