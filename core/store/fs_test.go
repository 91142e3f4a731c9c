package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSDirectoryIO(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index")
	dir, err := OpenFSDirectory(path, nil)
	require.NoError(t, err)
	defer dir.Close()

	data := make([]byte, 40000)
	for i := range data {
		data[i] = byte(i)
	}
	writeFile(t, dir, "_0.frq", data)
	assert.True(t, dir.FileExists("_0.frq"))
	n, err := dir.FileLength("_0.frq")
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)
	assert.Equal(t, data, readFile(t, dir, "_0.frq"))

	in, err := dir.OpenInput("_0.frq", IO_CONTEXT_DEFAULT)
	require.NoError(t, err)
	clone := in.Clone()
	require.NoError(t, clone.Seek(39999))
	b, err := clone.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, data[39999], b)
	require.NoError(t, clone.Close())
	b, err = in.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, data[0], b)
	require.NoError(t, in.Close())

	require.NoError(t, dir.RenameFile("_0.frq", "_1.frq"))
	assert.False(t, dir.FileExists("_0.frq"))
	require.NoError(t, dir.DeleteFile("_1.frq"))
	assert.True(t, errors.Is(dir.DeleteFile("_1.frq"), ErrNoSuchFile))
}

func TestFlockLock(t *testing.T) {
	dir, err := OpenFSDirectory(t.TempDir(), nil)
	require.NoError(t, err)

	l1 := dir.MakeLock("write.lock")
	l2 := dir.MakeLock("write.lock")
	ok, err := l1.Obtain()
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, l2.IsLocked())

	ok, err = l2.Obtain()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l1.Close())
	assert.False(t, l2.IsLocked())
	ok, err = l2.Obtain()
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, l2.Close())
	require.NoError(t, dir.ClearLock("write.lock"))
	assert.False(t, dir.FileExists("write.lock"))
}

func TestSharedLockDirUsesLockID(t *testing.T) {
	lockDir := t.TempDir()
	d1, err := OpenFSDirectory(t.TempDir(), NewFlockLockFactory(lockDir))
	require.NoError(t, err)
	d2, err := OpenFSDirectory(t.TempDir(), NewFlockLockFactory(lockDir))
	require.NoError(t, err)
	assert.NotEqual(t, d1.LockID(), d2.LockID())

	l1 := d1.MakeLock("write.lock")
	ok, err := l1.Obtain()
	require.NoError(t, err)
	require.True(t, ok)
	defer l1.Close()
	assert.False(t, d2.MakeLock("write.lock").IsLocked())
}
