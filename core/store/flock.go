package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// store/NativeFSLockFactory.java

/*
Implements LockFactory using OS advisory file locks (flock(2) on
Unix, LockFileEx on Windows). Locks are held on an open file
description, so two Lock instances for the same file exclude each
other even inside one process, and a crashed process never leaves a
stale lock behind.

The lock files themselves are left in place on release; only Clear()
removes them.
*/
type FlockLockFactory struct {
	*LockFactoryImpl
	lockDir string
}

func NewFlockLockFactory(lockDir string) *FlockLockFactory {
	return &FlockLockFactory{&LockFactoryImpl{}, lockDir}
}

func (f *FlockLockFactory) path(lockName string) string {
	return filepath.Join(f.lockDir, f.LockPrefix()+lockName)
}

func (f *FlockLockFactory) Make(lockName string) Lock {
	ans := &FlockLock{path: f.path(lockName), lockDir: f.lockDir}
	ans.LockImpl = NewLockImpl(ans)
	return ans
}

func (f *FlockLockFactory) Clear(lockName string) error {
	err := os.Remove(f.path(lockName))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (f *FlockLockFactory) String() string {
	return fmt.Sprintf("FlockLockFactory@%v", f.lockDir)
}

type FlockLock struct {
	*LockImpl
	path    string
	lockDir string
	fl      *flock.Flock
}

func (lock *FlockLock) Obtain() (bool, error) {
	if lock.fl != nil && lock.fl.Locked() {
		return false, nil
	}
	if err := os.MkdirAll(lock.lockDir, 0755); err != nil {
		lock.failureReason = err
		return false, err
	}
	fl := flock.New(lock.path)
	ok, err := fl.TryLock()
	if err != nil {
		lock.failureReason = err
		return false, nil
	}
	if ok {
		lock.fl = fl
	}
	return ok, nil
}

func (lock *FlockLock) Close() error {
	if lock.fl == nil {
		return nil
	}
	fl := lock.fl
	lock.fl = nil
	return fl.Unlock()
}

func (lock *FlockLock) IsLocked() bool {
	if lock.fl != nil && lock.fl.Locked() {
		return true
	}
	// A failed TryLock releases its file handle before returning.
	other := flock.New(lock.path)
	ok, err := other.TryLock()
	if err != nil {
		return false
	}
	if ok {
		other.Unlock()
		return false
	}
	return true
}

func (lock *FlockLock) String() string {
	return fmt.Sprintf("FlockLock@%v", lock.path)
}
