package store

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFileLength = int64(100 * 1024)

func byten(n int64) byte {
	return byte(n * n % 256)
}

// Serves byten(pos) for every position below length.
type generatedInput struct {
	*BufferedIndexInput
	length int64
}

func newGeneratedInput(length int64) *generatedInput {
	ans := &generatedInput{length: length}
	ans.BufferedIndexInput = newBufferedIndexInputBySize(ans,
		fmt.Sprintf("generatedInput(len=%v)", length), BUFFER_SIZE)
	return ans
}

func (in *generatedInput) readInternal(buf []byte, pos int64) error {
	for i := range buf {
		buf[i] = byten(pos + int64(i))
	}
	return nil
}

func (in *generatedInput) Length() int64 { return in.length }
func (in *generatedInput) Close() error  { return nil }

func (in *generatedInput) Clone() IndexInput {
	ans := &generatedInput{length: in.length}
	ans.BufferedIndexInput = in.cloneFor(ans)
	return ans
}

func TestReadByte(t *testing.T) {
	input := newGeneratedInput(math.MaxInt64)
	for i := 0; i < BUFFER_SIZE*3; i++ {
		b, err := input.ReadByte()
		require.NoError(t, err)
		require.Equal(t, byten(int64(i)), b, "byte %v", i)
	}
}

func checkReadBytes(t *testing.T, input IndexInput, size int, pos int64) error {
	require.Equal(t, pos, input.FilePointer())
	if left := input.Length() - pos; left < int64(size) {
		size = int(left)
	}
	// an arbitrary offset checks that only the given slice is filled
	offset := size % 10
	buf := make([]byte, offset+size)
	if err := input.ReadBytes(buf[offset:]); err != nil {
		return err
	}
	require.Equal(t, pos+int64(size), input.FilePointer())
	for i := 0; i < size; i++ {
		require.Equal(t, byten(pos+int64(i)), buf[offset+i], "byte %v", pos+int64(i))
	}
	return nil
}

func runReadBytes(t *testing.T, input IndexInput, bufferSize int) {
	r := rand.New(rand.NewSource(42))
	pos := int64(0)
	advance := func(size int) {
		require.NoError(t, checkReadBytes(t, input, size, pos))
		if pos += int64(size); pos >= testFileLength { // wrap
			pos = 0
			require.NoError(t, input.Seek(0))
		}
	}
	// gradually increasing size
	for size := 1; size < bufferSize*10; size += size/200 + 1 {
		advance(size)
	}
	// wildly fluctuating size
	for i := 0; i < 100; i++ {
		advance(r.Intn(10000) + 1)
	}
	// constant small size
	for i := 0; i < bufferSize; i++ {
		advance(7)
	}
}

func TestReadBytes(t *testing.T) {
	runReadBytes(t, newGeneratedInput(testFileLength), BUFFER_SIZE)
}

func TestReadBytesFromFile(t *testing.T) {
	dir, err := OpenFSDirectory(t.TempDir(), nil)
	require.NoError(t, err)
	defer dir.Close()

	out, err := dir.CreateOutput("input.bin", IO_CONTEXT_DEFAULT)
	require.NoError(t, err)
	for i := int64(0); i < testFileLength; i++ {
		require.NoError(t, out.WriteByte(byten(i)))
	}
	require.NoError(t, out.Close())

	in, err := dir.OpenInput("input.bin", IO_CONTEXT_DEFAULT)
	require.NoError(t, err)
	defer in.Close()
	assert.Equal(t, testFileLength, in.Length())
	runReadBytes(t, in, BUFFER_SIZE)
}

func TestReadPastEOF(t *testing.T) {
	input := newGeneratedInput(1024)
	require.NoError(t, checkReadBytes(t, input, 1024, 0))

	pos := input.Length() - 10
	for _, size := range []int{11, 50, 100000} {
		require.NoError(t, input.Seek(pos))
		err := input.ReadBytes(make([]byte, size))
		assert.True(t, errors.Is(err, ErrReadPastEOF), "size %v: %v", size, err)
	}
	require.NoError(t, input.Seek(pos))
	require.NoError(t, checkReadBytes(t, input, 10, pos))
	_, err := input.ReadByte()
	assert.True(t, errors.Is(err, ErrReadPastEOF))
}

func TestCloneKeepsOwnPosition(t *testing.T) {
	input := newGeneratedInput(testFileLength)
	require.NoError(t, input.Seek(5000))
	clone := input.Clone()
	assert.Equal(t, int64(5000), clone.FilePointer())

	require.NoError(t, checkReadBytes(t, clone, 3000, 5000))
	assert.Equal(t, int64(5000), input.FilePointer())
	require.NoError(t, checkReadBytes(t, input, 10, 5000))
}

func TestReadVIntAcrossBuffer(t *testing.T) {
	dir := NewRAMDirectory()
	out, err := dir.CreateOutput("vints", IO_CONTEXT_DEFAULT)
	require.NoError(t, err)
	values := []int32{0, 1, 127, 128, 16383, 16384, math.MaxInt32}
	// enough values that some straddle the read buffer boundary
	for i := 0; i < BUFFER_SIZE; i++ {
		require.NoError(t, out.WriteVInt(values[i%len(values)]))
	}
	require.NoError(t, out.Close())

	in, err := dir.OpenInput("vints", IO_CONTEXT_DEFAULT)
	require.NoError(t, err)
	defer in.Close()
	for i := 0; i < BUFFER_SIZE; i++ {
		n, err := in.ReadVInt()
		require.NoError(t, err)
		require.Equal(t, values[i%len(values)], n, "value %v", i)
	}
}
