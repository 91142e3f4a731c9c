package store

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// store/Lock.java

// How long ObtainWithin() waits, in milliseconds, in between attempts
// to acquire the lock.
var LOCK_POLL_INTERVAL int64 = 1000

// Pass this value to ObtainWithin() to try forever to obtain the lock
const LOCK_OBTAIN_WAIT_FOREVER = -1

/*
An interprocess mutex lock.

Typical use might look like:

	err := WithLock(directory.MakeLock("my.lock"), timeout, func() error {
		// code to execute while locked
	})
*/
type Lock interface {
	// Releases exclusive access.
	io.Closer
	// Attempts to obtain exclusive access and immediately return
	// upon success or failure. Use Close() to release the lock.
	Obtain() (ok bool, err error)
	// Attempts to obtain an exclusive lock within amount of time
	// given. Polls once per LOCK_POLL_INTERVAL milliseconds until
	// lockWaitTimeout is passed. Returns an error wrapping
	// ErrLockObtainFailed on timeout.
	ObtainWithin(lockWaitTimeout int64) (ok bool, err error)
	// Returns true if the resource is currently locked. Note that one
	// must still call Obtain() before using the resource.
	IsLocked() bool
}

type LockImpl struct {
	self Lock
	// If a lock obtain called, this failureReason may be set with the
	// "root cause" error as to why the lock was not obtained
	failureReason error
}

func NewLockImpl(self Lock) *LockImpl {
	return &LockImpl{self: self}
}

func (lock *LockImpl) ObtainWithin(lockWaitTimeout int64) (locked bool, err error) {
	assert2(lockWaitTimeout >= 0 || lockWaitTimeout == LOCK_OBTAIN_WAIT_FOREVER,
		"lockWaitTimeout should be LOCK_OBTAIN_WAIT_FOREVER or a non-negative number (got %v)",
		lockWaitTimeout)
	lock.failureReason = nil
	if locked, err = lock.self.Obtain(); err != nil {
		return
	}
	maxSleepCount := lockWaitTimeout / LOCK_POLL_INTERVAL
	for sleepCount := int64(0); !locked; locked, err = lock.self.Obtain() {
		if err != nil {
			return false, err
		}
		if lockWaitTimeout != LOCK_OBTAIN_WAIT_FOREVER && sleepCount >= maxSleepCount {
			if lock.failureReason != nil {
				return false, errors.Wrapf(ErrLockObtainFailed, "%v: %v", lock.self, lock.failureReason)
			}
			return false, errors.Wrapf(ErrLockObtainFailed, "%v", lock.self)
		}
		sleepCount++
		time.Sleep(time.Duration(LOCK_POLL_INTERVAL) * time.Millisecond)
	}
	return true, nil
}

/*
Utility to execute code with exclusive access. The lock is obtained
within lockWaitTimeout milliseconds, body runs, and the lock is
released on every exit path.
*/
func WithLock(lock Lock, lockWaitTimeout int64, body func() error) (err error) {
	if _, err = lock.ObtainWithin(lockWaitTimeout); err != nil {
		return err
	}
	defer func() {
		if err2 := lock.Close(); err == nil {
			err = err2
		}
	}()
	return body()
}

// store/LockFactory.java

/*
Base class for Locking implementation. Directory uses instances of
this class to implement locking.
*/
type LockFactory interface {
	fmt.Stringer
	// Return a new Lock instance identified by lockName.
	Make(name string) Lock
	// Attempt to clear (forcefully unlock and remove) the specified
	// lock.
	Clear(name string) error
	SetLockPrefix(prefix string)
	LockPrefix() string
}

type LockFactoryImpl struct {
	lockPrefix string
}

func (f *LockFactoryImpl) SetLockPrefix(prefix string) {
	f.lockPrefix = prefix
}

func (f *LockFactoryImpl) LockPrefix() string {
	return f.lockPrefix
}

// store/SingleInstanceLockFactory.java

/*
Implements LockFactory for a single in-process instance, meaning all
locking will take place through this one instance. Only use this
LockFactory when you are certain all IndexReaders and IndexWriters
for a given index are running against a single shared in-process
Directory instance. This is currently the default locking for
RAMDirectory.
*/
type SingleInstanceLockFactory struct {
	*LockFactoryImpl
	sync.Locker
	locks map[string]bool
}

func NewSingleInstanceLockFactory() *SingleInstanceLockFactory {
	return &SingleInstanceLockFactory{
		LockFactoryImpl: &LockFactoryImpl{},
		Locker:          &sync.Mutex{},
		locks:           make(map[string]bool),
	}
}

func (fac *SingleInstanceLockFactory) Make(lockName string) Lock {
	// We do not use the LockPrefix at all, because the private map
	// instance effectively scopes the locking to this single Directory
	// instance.
	return newSingleInstanceLock(fac, lockName)
}

func (fac *SingleInstanceLockFactory) Clear(lockName string) error {
	fac.Lock() // synchronized
	defer fac.Unlock()
	delete(fac.locks, lockName)
	return nil
}

func (fac *SingleInstanceLockFactory) String() string {
	return fmt.Sprintf("SingleInstanceLockFactory@%p", fac)
}

type SingleInstanceLock struct {
	*LockImpl
	owner    *SingleInstanceLockFactory
	lockName string
	obtained bool
}

func newSingleInstanceLock(owner *SingleInstanceLockFactory, lockName string) *SingleInstanceLock {
	ans := &SingleInstanceLock{owner: owner, lockName: lockName}
	ans.LockImpl = NewLockImpl(ans)
	return ans
}

func (lock *SingleInstanceLock) Obtain() (ok bool, err error) {
	lock.owner.Lock() // synchronized
	defer lock.owner.Unlock()
	if lock.owner.locks[lock.lockName] {
		return false, nil
	}
	lock.owner.locks[lock.lockName] = true
	lock.obtained = true
	return true, nil
}

func (lock *SingleInstanceLock) Close() error {
	lock.owner.Lock() // synchronized
	defer lock.owner.Unlock()
	if lock.obtained {
		delete(lock.owner.locks, lock.lockName)
		lock.obtained = false
	}
	return nil
}

func (lock *SingleInstanceLock) IsLocked() bool {
	lock.owner.Lock() // synchronized
	defer lock.owner.Unlock()
	return lock.owner.locks[lock.lockName]
}

func (lock *SingleInstanceLock) String() string {
	return fmt.Sprintf("SingleInstanceLock: %v", lock.lockName)
}
