package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertEquals(t *testing.T, a, b interface{}) {
	if a != b {
		t.Errorf("Expected '%v', but '%v'", b, a)
	}
}

func writeFile(t *testing.T, dir Directory, name string, data []byte) {
	out, err := dir.CreateOutput(name, IO_CONTEXT_DEFAULT)
	require.NoError(t, err)
	require.NoError(t, out.WriteBytes(data))
	require.NoError(t, out.Close())
}

func readFile(t *testing.T, dir Directory, name string) []byte {
	in, err := dir.OpenInput(name, IO_CONTEXT_DEFAULT)
	require.NoError(t, err)
	defer in.Close()
	buf := make([]byte, in.Length())
	require.NoError(t, in.ReadBytes(buf))
	return buf
}

func TestIO(t *testing.T) {
	filename := "a.txt"
	testdata := "hello world"

	dir := NewRAMDirectory()
	func() {
		out, err := dir.CreateOutput(filename, IO_CONTEXT_DEFAULT)
		require.NoError(t, err)
		defer out.Close()
		require.NoError(t, out.WriteString(testdata))
	}()

	n, err := dir.FileLength(filename)
	require.NoError(t, err)
	assertEquals(t, n, int64(len(testdata))+1)

	in, err := dir.OpenInput(filename, IO_CONTEXT_DEFAULT)
	require.NoError(t, err)
	s, err := in.ReadString()
	require.NoError(t, err)
	assertEquals(t, s, testdata)

	_, err = in.ReadByte()
	assert.True(t, errors.Is(err, ErrReadPastEOF))
}

func TestRAMSeekAndClone(t *testing.T) {
	dir := NewRAMDirectory()
	data := make([]byte, 5000)
	for i := range data {
		data[i] = byte(i % 251)
	}
	writeFile(t, dir, "big", data)

	in, err := dir.OpenInput("big", IO_CONTEXT_DEFAULT)
	require.NoError(t, err)
	require.NoError(t, in.Seek(4000))
	b, err := in.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, data[4000], b)

	clone := in.Clone()
	assert.Equal(t, int64(4001), clone.FilePointer())
	require.NoError(t, in.Seek(10))
	b, err = clone.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, data[4001], b)

	buf := make([]byte, 3000)
	require.NoError(t, in.ReadBytes(buf))
	assert.Equal(t, data[10:3010], buf)
}

func TestOutputSeekBackpatch(t *testing.T) {
	dir := NewRAMDirectory()
	out, err := dir.CreateOutput("patched", IO_CONTEXT_DEFAULT)
	require.NoError(t, err)
	require.NoError(t, out.WriteInt(7))
	require.NoError(t, out.WriteLong(0))
	require.NoError(t, out.WriteString("tail"))
	require.NoError(t, out.Seek(4))
	require.NoError(t, out.WriteLong(42))
	length, err := out.Length()
	require.NoError(t, err)
	assert.Equal(t, int64(17), length)
	require.NoError(t, out.Close())

	in, err := dir.OpenInput("patched", IO_CONTEXT_DEFAULT)
	require.NoError(t, err)
	i, _ := in.ReadInt()
	l, _ := in.ReadLong()
	s, _ := in.ReadString()
	assert.Equal(t, int32(7), i)
	assert.Equal(t, int64(42), l)
	assert.Equal(t, "tail", s)
}

func TestRAMDirectoryFileOps(t *testing.T) {
	dir := NewRAMDirectory()
	writeFile(t, dir, "a", []byte{1, 2, 3})
	writeFile(t, dir, "b", []byte{4})

	require.NoError(t, dir.RenameFile("a", "b"))
	assert.False(t, dir.FileExists("a"))
	assert.Equal(t, []byte{1, 2, 3}, readFile(t, dir, "b"))

	names, err := dir.ListAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names)

	assert.True(t, errors.Is(dir.DeleteFile("a"), ErrNoSuchFile))
	require.NoError(t, dir.DeleteFile("b"))
	_, err = dir.OpenInput("b", IO_CONTEXT_DEFAULT)
	assert.True(t, errors.Is(err, ErrNoSuchFile))

	copied, err := NewRAMDirectoryFrom(dir, IO_CONTEXT_DEFAULT)
	require.NoError(t, err)
	names, _ = copied.ListAll()
	assert.Empty(t, names)
}

func TestSingleInstanceLock(t *testing.T) {
	dir := NewRAMDirectory()
	l1 := dir.MakeLock("write.lock")
	l2 := dir.MakeLock("write.lock")

	ok, err := l1.Obtain()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, l2.IsLocked())

	ok, err = l2.ObtainWithin(0)
	assert.False(t, ok)
	assert.True(t, errors.Is(err, ErrLockObtainFailed))

	// releasing a lock that was never obtained is a no-op
	require.NoError(t, l2.Close())
	assert.True(t, l1.IsLocked())

	require.NoError(t, l1.Close())
	assert.False(t, l2.IsLocked())

	ran := false
	err = WithLock(l2, 0, func() error {
		ran = true
		assert.True(t, l1.IsLocked())
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.False(t, l1.IsLocked())
}
