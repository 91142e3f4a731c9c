package store

import (
	"github.com/dbalmain/ferret-sub000/core/util"
)

// store/BufferedIndexInput.java

// Implemented by concrete buffered inputs to refill the buffer.
type SeekReader interface {
	// Reads len(buf) bytes starting at absolute position pos.
	readInternal(buf []byte, pos int64) error
	Length() int64
}

/* Default buffer size */
const BUFFER_SIZE = 1024

/* Buffer size used for merging */
const MERGE_BUFFER_SIZE = 4096

/* Minimum buffer size allowed */
const MIN_BUFFER_SIZE = 8

func bufferSize(context IOContext) int {
	if context.context == IO_CONTEXT_TYPE_MERGE {
		return MERGE_BUFFER_SIZE
	}
	return BUFFER_SIZE
}

/* Base implementation for buffered IndexInput. */
type BufferedIndexInput struct {
	*IndexInputImpl
	spi            SeekReader
	bufferSize     int
	buffer         []byte
	bufferStart    int64 // position in file of buffer
	bufferLength   int   // end of valid bytes
	bufferPosition int   // next byte to read
}

func newBufferedIndexInput(spi SeekReader, desc string, context IOContext) *BufferedIndexInput {
	return newBufferedIndexInputBySize(spi, desc, bufferSize(context))
}

func newBufferedIndexInputBySize(spi SeekReader, desc string, bufferSize int) *BufferedIndexInput {
	assert2(bufferSize >= MIN_BUFFER_SIZE,
		"bufferSize must be at least MIN_BUFFER_SIZE (got %v)", bufferSize)
	ans := &BufferedIndexInput{spi: spi, bufferSize: bufferSize}
	ans.IndexInputImpl = NewIndexInputImpl(desc, ans)
	return ans
}

func (in *BufferedIndexInput) ReadByte() (b byte, err error) {
	if in.bufferPosition >= in.bufferLength {
		if err = in.refill(); err != nil {
			return 0, err
		}
	}
	b = in.buffer[in.bufferPosition]
	in.bufferPosition++
	return
}

func (in *BufferedIndexInput) ReadBytes(buf []byte) error {
	available := in.bufferLength - in.bufferPosition
	if length := len(buf); length <= available {
		// the buffer contains enough data to satisfy this request
		copy(buf, in.buffer[in.bufferPosition:in.bufferPosition+length])
		in.bufferPosition += length
		return nil
	}
	// the buffer does not have enough data. First serve all we've got.
	if available > 0 {
		copy(buf, in.buffer[in.bufferPosition:in.bufferLength])
		buf = buf[available:]
		in.bufferPosition += available
	}
	if length := len(buf); length < in.bufferSize {
		// If the amount left to read is small enough, fill the buffer
		// and copy from it:
		if err := in.refill(); err != nil {
			return err
		}
		if in.bufferLength < length {
			return readPastEOF(in)
		}
		copy(buf, in.buffer[0:length])
		in.bufferPosition += length
		return nil
	}
	// The amount left to read is larger than the buffer - read it all
	// at once, bypassing the buffer.
	start := in.bufferStart + int64(in.bufferPosition)
	after := start + int64(len(buf))
	if after > in.spi.Length() {
		return readPastEOF(in)
	}
	if err := in.spi.readInternal(buf, start); err != nil {
		return err
	}
	in.bufferStart = after
	in.bufferPosition = 0
	in.bufferLength = 0 // trigger refill() on read
	return nil
}

func (in *BufferedIndexInput) ReadVInt() (n int32, err error) {
	if 5 <= in.bufferLength-in.bufferPosition {
		b := in.buffer[in.bufferPosition]
		in.bufferPosition++
		n = int32(b & 0x7F)
		for shift := uint(7); b >= 128; shift += 7 {
			b = in.buffer[in.bufferPosition]
			in.bufferPosition++
			if shift == 28 && b&0xF0 != 0 {
				return 0, util.ErrInvalidVInt
			}
			n |= int32(b&0x7F) << shift
		}
		return n, nil
	}
	return in.DataInputImpl.ReadVInt()
}

func (in *BufferedIndexInput) refill() error {
	start := in.bufferStart + int64(in.bufferPosition)
	end := start + int64(in.bufferSize)
	if length := in.spi.Length(); end > length { // don't read past EOF
		end = length
	}
	newLength := int(end - start)
	if newLength <= 0 {
		return readPastEOF(in)
	}
	if in.buffer == nil {
		in.buffer = make([]byte, in.bufferSize)
	}
	if err := in.spi.readInternal(in.buffer[:newLength], start); err != nil {
		return err
	}
	in.bufferLength = newLength
	in.bufferStart = start
	in.bufferPosition = 0
	return nil
}

func (in *BufferedIndexInput) FilePointer() int64 {
	return in.bufferStart + int64(in.bufferPosition)
}

func (in *BufferedIndexInput) Seek(pos int64) error {
	if pos >= in.bufferStart && pos < in.bufferStart+int64(in.bufferLength) {
		in.bufferPosition = int(pos - in.bufferStart) // seek within buffer
		return nil
	}
	in.bufferStart = pos
	in.bufferPosition = 0
	in.bufferLength = 0 // trigger refill() on read()
	return nil
}

// Returns a copy of the buffer state, positioned at the current file
// pointer, reading through spi.
func (in *BufferedIndexInput) cloneFor(spi SeekReader) *BufferedIndexInput {
	ans := &BufferedIndexInput{
		spi:         spi,
		bufferSize:  in.bufferSize,
		bufferStart: in.FilePointer(),
	}
	ans.IndexInputImpl = NewIndexInputImpl(in.desc, ans)
	return ans
}
