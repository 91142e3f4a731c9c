package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVIntRoundTrip(t *testing.T) {
	values := []int32{0, 1, 127, 128, 129, 16383, 16384, 1 << 21, math.MaxInt32}
	out := NewByteSliceDataOutput()
	for _, v := range values {
		require.NoError(t, out.WriteVInt(v))
	}
	assert.Equal(t, []byte{0x80, 0x01}, []byte(out.Bytes()[3:5]))

	in := NewByteArrayDataInput(out.Bytes())
	for _, v := range values {
		got, err := in.ReadVInt()
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	assert.True(t, in.EOF())
}

func TestVLongAndFixedWidth(t *testing.T) {
	out := NewByteSliceDataOutput()
	require.NoError(t, out.WriteVLong(math.MaxInt64))
	require.NoError(t, out.WriteLong(-2))
	require.NoError(t, out.WriteInt(-1))
	require.NoError(t, out.WriteString("héllo"))
	require.NoError(t, out.WriteString(""))

	in := NewByteArrayDataInput(out.Bytes())
	l, err := in.ReadVLong()
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), l)
	l, err = in.ReadLong()
	require.NoError(t, err)
	assert.Equal(t, int64(-2), l)
	i, err := in.ReadInt()
	require.NoError(t, err)
	assert.Equal(t, int32(-1), i)
	s, err := in.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "héllo", s)
	s, err = in.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "", s)

	_, err = in.ReadByte()
	assert.Error(t, err)
}

func TestInvalidVInt(t *testing.T) {
	in := NewByteArrayDataInput([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x7F})
	_, err := in.ReadVInt()
	assert.Equal(t, ErrInvalidVInt, err)
}

func TestSkipBytes(t *testing.T) {
	data := make([]byte, 3000)
	data[2500] = 42
	in := NewByteArrayDataInput(data)
	require.NoError(t, in.SkipBytes(2500))
	b, err := in.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(42), b)
}
