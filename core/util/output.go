package util

/*
Abstract base for performing write operations of the index's
low-level data types.

DataOutput may only be used from one goroutine, because it is not
thread safe (it keeps internal state like file position).
*/
type DataOutput interface {
	DataWriter
	WriteInt(i int32) error
	WriteVInt(i int32) error
	WriteLong(i int64) error
	WriteVLong(i int64) error
	WriteString(s string) error
	CopyBytes(input DataInput, numBytes int64) error
}

type DataWriter interface {
	WriteByte(b byte) error
	WriteBytes(buf []byte) error
}

type DataOutputImpl struct {
	Writer     DataWriter
	copyBuffer []byte
}

func NewDataOutput(part DataWriter) *DataOutputImpl {
	assertTrue(part != nil)
	return &DataOutputImpl{Writer: part}
}

/*
Writes an int as four bytes.

32-bit unsigned integer written as four bytes, high-order bytes first.
*/
func (out *DataOutputImpl) WriteInt(i int32) error {
	return out.Writer.WriteBytes([]byte{
		byte(i >> 24), byte(i >> 16), byte(i >> 8), byte(i),
	})
}

/*
Writes an int in a variable-length format. Writes between one and
five bytes. Smaller values take fewer bytes.

VByte is a variable-length format. For positive integers, it is
defined where the high-order bit of each byte indicates whether more
bytes remain to be read. The low-order seven bits are appended as
increasingly more significant bits in the resulting integer value.
Thus values from zero to 127 may be stored in a single byte, values
from 128 to 16,383 may be stored in two bytes, and so on.

	| Value		| Byte 1		| Byte 2		| Byte 3		|
	| 0				| 00000000	|
	| 127			| 01111111	|
	| 128			| 10000000	| 00000001	|
	| 16,383	| 11111111	| 01111111	|
	| 16,384	| 10000000	| 10000000	| 00000001	|
*/
func (out *DataOutputImpl) WriteVInt(i int32) error {
	var buf [5]byte
	n := 0
	u := uint32(i)
	for u&^0x7F != 0 {
		buf[n] = byte(u&0x7F) | 0x80
		n++
		u >>= 7
	}
	buf[n] = byte(u)
	return out.Writer.WriteBytes(buf[:n+1])
}

/*
Writes a long as eight bytes.

64-bit unsigned integer written as eight bytes, high-order bytes first.
*/
func (out *DataOutputImpl) WriteLong(i int64) error {
	err := out.WriteInt(int32(i >> 32))
	if err == nil {
		err = out.WriteInt(int32(i))
	}
	return err
}

/*
Writes an long in a variable-length format. Writes between one and
nine bytes. Smaller values take fewer bytes. Negative number are not
supported.

The format is described further in WriteVInt().
*/
func (out *DataOutputImpl) WriteVLong(i int64) error {
	assert2(i >= 0, "negative vlong: %v", i)
	var buf [9]byte
	n := 0
	u := uint64(i)
	for u&^0x7F != 0 {
		buf[n] = byte(u&0x7F) | 0x80
		n++
		u >>= 7
	}
	buf[n] = byte(u)
	return out.Writer.WriteBytes(buf[:n+1])
}

/*
Writes a string.

Writes strings as UTF-8 encoded bytes. First the length, in bytes, is
written as a VInt, followed by the bytes.
*/
func (out *DataOutputImpl) WriteString(s string) error {
	err := out.WriteVInt(int32(len(s)))
	if err == nil && len(s) > 0 {
		err = out.Writer.WriteBytes([]byte(s))
	}
	return err
}

const DATA_OUTPUT_COPY_BUFFER_SIZE = 16384

/* Copy numBytes bytes from input to ourself. */
func (out *DataOutputImpl) CopyBytes(input DataInput, numBytes int64) error {
	assertTrue(numBytes >= 0)
	left := numBytes
	if out.copyBuffer == nil {
		out.copyBuffer = make([]byte, DATA_OUTPUT_COPY_BUFFER_SIZE)
	}
	for left > 0 {
		toCopy := int64(DATA_OUTPUT_COPY_BUFFER_SIZE)
		if left < toCopy {
			toCopy = left
		}
		if err := input.ReadBytes(out.copyBuffer[0:toCopy]); err != nil {
			return err
		}
		if err := out.Writer.WriteBytes(out.copyBuffer[0:toCopy]); err != nil {
			return err
		}
		left -= toCopy
	}
	return nil
}

// Collects written bytes in memory; used to buffer skip data.
type ByteSliceDataOutput struct {
	*DataOutputImpl
	bytes []byte
}

func NewByteSliceDataOutput() *ByteSliceDataOutput {
	ans := new(ByteSliceDataOutput)
	ans.DataOutputImpl = NewDataOutput(ans)
	return ans
}

func (out *ByteSliceDataOutput) WriteByte(b byte) error {
	out.bytes = append(out.bytes, b)
	return nil
}

func (out *ByteSliceDataOutput) WriteBytes(buf []byte) error {
	out.bytes = append(out.bytes, buf...)
	return nil
}

func (out *ByteSliceDataOutput) Bytes() []byte {
	return out.bytes
}

func (out *ByteSliceDataOutput) Len() int {
	return len(out.bytes)
}

func (out *ByteSliceDataOutput) Reset() {
	out.bytes = out.bytes[:0]
}
