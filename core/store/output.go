package store

import (
	"io"

	"github.com/dbalmain/ferret-sub000/core/util"
)

// store/IndexOutput.java

/*
Abstract base for output to a file in a Directory. A random-access
output stream. Used for all index data writes.
*/
type IndexOutput interface {
	io.Closer
	util.DataOutput
	// Forces any buffered output to be written.
	Flush() error
	// Returns the current position in this file, where the next write
	// will occur.
	FilePointer() int64
	// Sets current position in this file, where the next write will
	// occur. Used to back-patch headers.
	Seek(pos int64) error
	// The number of bytes in the file.
	Length() (int64, error)
}

// store/BufferedIndexOutput.java

// Implemented by concrete buffered outputs.
type flushBufferer interface {
	// Expert: implements buffer write. Writes bytes at the current
	// position in the output.
	flushBuffer(buf []byte) error
	// Expert: moves the underlying position used by flushBuffer.
	seekInternal(pos int64) error
}

const OUTPUT_BUFFER_SIZE = 16384

/* Base implementation for buffered IndexOutput. */
type BufferedIndexOutput struct {
	*util.DataOutputImpl
	spi            flushBufferer
	buffer         []byte
	bufferStart    int64 // position in file of buffer
	bufferPosition int   // position in buffer
}

func newBufferedIndexOutput(spi flushBufferer) *BufferedIndexOutput {
	ans := &BufferedIndexOutput{spi: spi, buffer: make([]byte, OUTPUT_BUFFER_SIZE)}
	ans.DataOutputImpl = util.NewDataOutput(ans)
	return ans
}

func (out *BufferedIndexOutput) WriteByte(b byte) error {
	if out.bufferPosition >= len(out.buffer) {
		if err := out.Flush(); err != nil {
			return err
		}
	}
	out.buffer[out.bufferPosition] = b
	out.bufferPosition++
	return nil
}

func (out *BufferedIndexOutput) WriteBytes(buf []byte) error {
	if len(buf) <= len(out.buffer)-out.bufferPosition {
		copy(out.buffer[out.bufferPosition:], buf)
		out.bufferPosition += len(buf)
		return nil
	}
	if err := out.Flush(); err != nil {
		return err
	}
	if len(buf) < len(out.buffer) {
		copy(out.buffer, buf)
		out.bufferPosition = len(buf)
		return nil
	}
	// too large for the buffer: write it directly
	if err := out.spi.flushBuffer(buf); err != nil {
		return err
	}
	out.bufferStart += int64(len(buf))
	return nil
}

func (out *BufferedIndexOutput) Flush() error {
	if out.bufferPosition == 0 {
		return nil
	}
	if err := out.spi.flushBuffer(out.buffer[:out.bufferPosition]); err != nil {
		return err
	}
	out.bufferStart += int64(out.bufferPosition)
	out.bufferPosition = 0
	return nil
}

func (out *BufferedIndexOutput) FilePointer() int64 {
	return out.bufferStart + int64(out.bufferPosition)
}

func (out *BufferedIndexOutput) Seek(pos int64) error {
	if err := out.Flush(); err != nil {
		return err
	}
	out.bufferStart = pos
	return out.spi.seekInternal(pos)
}
