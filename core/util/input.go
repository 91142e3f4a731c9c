package util

import (
	"errors"
)

// store/DataInput.java

/*
Abstract base for performing read operations of the index's low-level
data types.

DataInput may only be used from one goroutine, because it is not
thread safe (it keeps internal state like file position). To allow
concurrent use, every DataInput instance must be cloned before used
in another goroutine.
*/
type DataInput interface {
	ReadByte() (b byte, err error)
	ReadBytes(buf []byte) error
	ReadInt() (n int32, err error)
	ReadVInt() (n int32, err error)
	ReadLong() (n int64, err error)
	ReadVLong() (n int64, err error)
	ReadString() (s string, err error)
}

type DataReader interface {
	/* Reads and returns a single byte.	*/
	ReadByte() (b byte, err error)
	/* Reads a specified number of bytes into an array */
	ReadBytes(buf []byte) error
}

const SKIP_BUFFER_SIZE = 1024

var ErrInvalidVInt = errors.New("Invalid vInt detected (too many bits)")
var ErrInvalidVLong = errors.New("Invalid vLong detected (negative values disallowed)")

type DataInputImpl struct {
	Reader     DataReader
	skipBuffer []byte
}

func NewDataInput(spi DataReader) *DataInputImpl {
	return &DataInputImpl{Reader: spi}
}

/* Reads four bytes and returns an int, high-order bytes first. */
func (in *DataInputImpl) ReadInt() (n int32, err error) {
	var b byte
	for i := 0; i < 4; i++ {
		if b, err = in.Reader.ReadByte(); err != nil {
			return 0, err
		}
		n = (n << 8) | int32(b)
	}
	return n, nil
}

/*
Reads an int stored in variable-length format. Reads between one and
five bytes. Smaller values take fewer bytes. Negative numbers are not
supported.
*/
func (in *DataInputImpl) ReadVInt() (n int32, err error) {
	var b byte
	for shift := uint(0); shift < 32; shift += 7 {
		if b, err = in.Reader.ReadByte(); err != nil {
			return 0, err
		}
		if shift == 28 && b&0xF0 != 0 {
			return 0, ErrInvalidVInt
		}
		n |= int32(b&0x7F) << shift
		if b < 128 {
			return n, nil
		}
	}
	return 0, ErrInvalidVInt
}

/* Reads eight bytes and returns a long. */
func (in *DataInputImpl) ReadLong() (n int64, err error) {
	d1, err := in.ReadInt()
	if err != nil {
		return 0, err
	}
	d2, err := in.ReadInt()
	if err != nil {
		return 0, err
	}
	return (int64(d1) << 32) | int64(d2)&0xFFFFFFFF, nil
}

/* Reads a long stored in variable-length format. */
func (in *DataInputImpl) ReadVLong() (n int64, err error) {
	var b byte
	for shift := uint(0); shift < 63; shift += 7 {
		if b, err = in.Reader.ReadByte(); err != nil {
			return 0, err
		}
		n |= int64(b&0x7F) << shift
		if b < 128 {
			return n, nil
		}
	}
	return 0, ErrInvalidVLong
}

/* Reads a string written by DataOutput.WriteString(). */
func (in *DataInputImpl) ReadString() (s string, err error) {
	length, err := in.ReadVInt()
	if err != nil {
		return "", err
	}
	if length == 0 {
		return "", nil
	}
	bytes := make([]byte, length)
	if err = in.Reader.ReadBytes(bytes); err != nil {
		return "", err
	}
	return string(bytes), nil
}

/*
Skip over numBytes bytes. The contract on this method is that it
should have the same behavior as reading the same number of bytes
into a buffer and discarding its content. Negative values of numBytes
are not supported.
*/
func (in *DataInputImpl) SkipBytes(numBytes int64) (err error) {
	assert2(numBytes >= 0, "numBytes must be >= 0, got %v", numBytes)
	if in.skipBuffer == nil {
		in.skipBuffer = make([]byte, SKIP_BUFFER_SIZE)
	}
	var step int
	for skipped := int64(0); skipped < numBytes; {
		step = int(numBytes - skipped)
		if SKIP_BUFFER_SIZE < step {
			step = SKIP_BUFFER_SIZE
		}
		if err = in.Reader.ReadBytes(in.skipBuffer[:step]); err != nil {
			return
		}
		skipped += int64(step)
	}
	return nil
}

// store/ByteArrayDataInput.java

// DataInput backed by a byte slice.
type ByteArrayDataInput struct {
	*DataInputImpl
	bytes []byte
	pos   int
}

func NewByteArrayDataInput(bytes []byte) *ByteArrayDataInput {
	ans := &ByteArrayDataInput{bytes: bytes}
	ans.DataInputImpl = NewDataInput(ans)
	return ans
}

func (in *ByteArrayDataInput) Position() int {
	return in.pos
}

func (in *ByteArrayDataInput) EOF() bool {
	return in.pos >= len(in.bytes)
}

func (in *ByteArrayDataInput) ReadByte() (b byte, err error) {
	if in.pos >= len(in.bytes) {
		return 0, errors.New("read past EOF")
	}
	b = in.bytes[in.pos]
	in.pos++
	return b, nil
}

func (in *ByteArrayDataInput) ReadBytes(buf []byte) error {
	if in.pos+len(buf) > len(in.bytes) {
		return errors.New("read past EOF")
	}
	copy(buf, in.bytes[in.pos:])
	in.pos += len(buf)
	return nil
}
