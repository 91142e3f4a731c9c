package store

import (
	"fmt"

	"github.com/dbalmain/ferret-sub000/core/store"
)

// store/BaseDirectoryWrapper.java

/*
Forwards every call to the wrapped directory. OnClose, when set, runs
before the delegate is closed, e.g. to check the index left behind by
a test.
*/
type BaseDirectoryWrapper struct {
	// our in directory
	delegate store.Directory
	isOpen   bool
	OnClose  func(dir store.Directory) error
}

func NewBaseDirectoryWrapper(delegate store.Directory) *BaseDirectoryWrapper {
	return &BaseDirectoryWrapper{delegate: delegate, isOpen: true}
}

func (dw *BaseDirectoryWrapper) Delegate() store.Directory {
	return dw.delegate
}

func (dw *BaseDirectoryWrapper) IsOpen() bool {
	return dw.isOpen
}

func (dw *BaseDirectoryWrapper) Close() error {
	dw.isOpen = false
	if dw.OnClose != nil {
		if err := dw.OnClose(dw); err != nil {
			return err
		}
	}
	return dw.delegate.Close()
}

func (dw *BaseDirectoryWrapper) ListAll() ([]string, error) {
	return dw.delegate.ListAll()
}

func (dw *BaseDirectoryWrapper) FileExists(name string) bool {
	return dw.delegate.FileExists(name)
}

func (dw *BaseDirectoryWrapper) FileLength(name string) (int64, error) {
	return dw.delegate.FileLength(name)
}

func (dw *BaseDirectoryWrapper) DeleteFile(name string) error {
	return dw.delegate.DeleteFile(name)
}

func (dw *BaseDirectoryWrapper) RenameFile(from, to string) error {
	return dw.delegate.RenameFile(from, to)
}

func (dw *BaseDirectoryWrapper) CreateOutput(name string, ctx store.IOContext) (store.IndexOutput, error) {
	return dw.delegate.CreateOutput(name, ctx)
}

func (dw *BaseDirectoryWrapper) OpenInput(name string, ctx store.IOContext) (store.IndexInput, error) {
	return dw.delegate.OpenInput(name, ctx)
}

func (dw *BaseDirectoryWrapper) MakeLock(name string) store.Lock {
	return dw.delegate.MakeLock(name)
}

func (dw *BaseDirectoryWrapper) ClearLock(name string) error {
	return dw.delegate.ClearLock(name)
}

func (dw *BaseDirectoryWrapper) SetLockFactory(lockFactory store.LockFactory) {
	dw.delegate.SetLockFactory(lockFactory)
}

func (dw *BaseDirectoryWrapper) LockFactory() store.LockFactory {
	return dw.delegate.LockFactory()
}

func (dw *BaseDirectoryWrapper) LockID() string {
	return dw.delegate.LockID()
}

func (dw *BaseDirectoryWrapper) String() string {
	return fmt.Sprintf("BaseDirectoryWrapper(%v)", dw.delegate)
}
