package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dbalmain/ferret-sub000/core/store"
	"github.com/pkg/errors"
)

// store/MockDirectoryWrapper.java

// Returned by DeleteFile for a file that still has open inputs.
var ErrFileStillOpen = errors.New("file is still open")

/*
This is a Directory wrapper that adds methods intended to be used
only by unit tests. It tracks the inputs opened through it and, like
some operating systems do, refuses to delete a file while an input on
it is still open. Close fails while inputs remain open.
*/
type MockDirectoryWrapper struct {
	*BaseDirectoryWrapper
	sync.Locker // simulate Java's synchronized keyword

	noDeleteOpenFile bool
	openFiles        map[string]int
	// Only tracked if noDeleteOpenFile is true: if an attempt is made
	// to delete an open file, we enroll it here.
	openFilesDeleted map[string]bool
}

func NewMockDirectoryWrapper(delegate store.Directory) *MockDirectoryWrapper {
	return &MockDirectoryWrapper{
		BaseDirectoryWrapper: NewBaseDirectoryWrapper(delegate),
		Locker:               &sync.Mutex{},
		noDeleteOpenFile:     true,
		openFiles:            make(map[string]int),
		openFilesDeleted:     make(map[string]bool),
	}
}

/*
Emulate windows whereby deleting an open file is not allowed (raise
error).
*/
func (mdw *MockDirectoryWrapper) SetNoDeleteOpenFile(value bool) {
	mdw.Lock()
	defer mdw.Unlock()
	mdw.noDeleteOpenFile = value
}

// Names of the files with open inputs, sorted.
func (mdw *MockDirectoryWrapper) OpenFiles() []string {
	mdw.Lock()
	defer mdw.Unlock()
	names := make([]string, 0, len(mdw.openFiles))
	for name := range mdw.openFiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reports whether a delete of name was refused because it was open.
func (mdw *MockDirectoryWrapper) DeleteRefused(name string) bool {
	mdw.Lock()
	defer mdw.Unlock()
	return mdw.openFilesDeleted[name]
}

func (mdw *MockDirectoryWrapper) DeleteFile(name string) error {
	mdw.Lock()
	if mdw.noDeleteOpenFile && mdw.openFiles[name] > 0 {
		mdw.openFilesDeleted[name] = true
		mdw.Unlock()
		return errors.Wrapf(ErrFileStillOpen, "MockDirectoryWrapper: cannot delete %v", name)
	}
	delete(mdw.openFilesDeleted, name)
	mdw.Unlock()
	return mdw.delegate.DeleteFile(name)
}

func (mdw *MockDirectoryWrapper) OpenInput(name string, ctx store.IOContext) (store.IndexInput, error) {
	in, err := mdw.delegate.OpenInput(name, ctx)
	if err != nil {
		return nil, err
	}
	mdw.Lock()
	defer mdw.Unlock()
	mdw.openFiles[name]++
	return &mockIndexInput{IndexInput: in, dir: mdw, name: name}, nil
}

func (mdw *MockDirectoryWrapper) removeOpenFile(name string) {
	mdw.Lock()
	defer mdw.Unlock()
	if mdw.openFiles[name] <= 1 {
		delete(mdw.openFiles, name)
	} else {
		mdw.openFiles[name]--
	}
}

func (mdw *MockDirectoryWrapper) Close() error {
	if open := mdw.OpenFiles(); len(open) > 0 {
		return fmt.Errorf("MockDirectoryWrapper: cannot close: there are still open files: %v", open)
	}
	return mdw.BaseDirectoryWrapper.Close()
}

func (mdw *MockDirectoryWrapper) String() string {
	return fmt.Sprintf("MockDirectoryWrapper(%v)", mdw.delegate)
}

// store/MockIndexInputWrapper.java

// Used by MockDirectoryWrapper to track open inputs. Clones are not
// tracked.
type mockIndexInput struct {
	store.IndexInput
	dir    *MockDirectoryWrapper
	name   string
	closed bool
}

func (in *mockIndexInput) Close() error {
	if in.closed {
		return nil
	}
	in.closed = true
	in.dir.removeOpenFile(in.name)
	return in.IndexInput.Close()
}
