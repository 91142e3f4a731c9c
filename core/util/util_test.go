package util

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatToByte315(t *testing.T) {
	assert.Equal(t, byte(124), FloatToByte315(1.0))
	assert.Equal(t, float32(1.0), Byte315ToFloat(124))
	assert.Equal(t, byte(0), FloatToByte315(0))
	assert.Equal(t, byte(0), FloatToByte315(-1))
	assert.Equal(t, byte(1), FloatToByte315(1e-20))
	assert.Equal(t, byte(255), FloatToByte315(1e20))

	// lossy but monotonic
	prev := float32(-1)
	for b := 0; b < 256; b++ {
		f := Byte315ToFloat(byte(b))
		if f <= prev {
			t.Errorf("decode not monotonic at %v: %v <= %v", b, f, prev)
		}
		prev = f
		if b > 0 && FloatToByte315(f) != byte(b) {
			t.Errorf("encode(decode(%v)) = %v", b, FloatToByte315(f))
		}
	}
}

func TestSegmentNames(t *testing.T) {
	assert.Equal(t, "_0", SegmentNameFromCounter(0))
	assert.Equal(t, "_z", SegmentNameFromCounter(35))
	assert.Equal(t, "_10", SegmentNameFromCounter(36))
	assert.Equal(t, "_a.s3", NormFileName("_a", 3, true))
	assert.Equal(t, "_a.f0", NormFileName("_a", 0, false))
	assert.Equal(t, 3, StringDifference("abcd", "abce"))
	assert.Equal(t, 2, StringDifference("ab", "abc"))
}

func TestPriorityQueue(t *testing.T) {
	pq := NewPriorityQueue(4, func(a, b int) bool { return a < b })
	input := []int{5, 1, 9, 3, 7, 3}
	for _, v := range input {
		pq.Put(v)
	}
	top, ok := pq.Top()
	require.True(t, ok)
	assert.Equal(t, 1, top)

	var got []int
	for pq.Len() > 0 {
		v, _ := pq.Pop()
		got = append(got, v)
	}
	sort.Ints(input)
	assert.Equal(t, input, got)

	_, ok = pq.Pop()
	assert.False(t, ok)
}

func TestBitVector(t *testing.T) {
	bv := NewBitVector(70)
	bv.Set(0)
	bv.Set(9)
	bv.Set(69)
	assert.Equal(t, 3, bv.Count())
	bv.Clear(9)
	assert.Equal(t, 2, bv.Count())
	assert.True(t, bv.At(69))
	assert.False(t, bv.At(9))

	out := NewByteSliceDataOutput()
	require.NoError(t, bv.WriteTo(out))
	assert.Equal(t, 8+9, out.Len())

	bv2, err := ReadBitVector(NewByteArrayDataInput(out.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 70, bv2.Length())
	assert.Equal(t, 2, bv2.Count())
	for i := 0; i < 70; i++ {
		assert.Equal(t, bv.At(i), bv2.At(i), "bit %v", i)
	}
}

type closer struct {
	err    error
	closed bool
}

func (c *closer) Close() error {
	c.closed = true
	return c.err
}

func TestCloseReturnsLastError(t *testing.T) {
	first, last := errors.New("first"), errors.New("last")
	a, b, c := &closer{err: first}, &closer{}, &closer{err: last}
	var missing *closer
	err := Close(a, missing, b, c)
	assert.True(t, a.closed && b.closed && c.closed)
	assert.Equal(t, "last", err.Error())
	assert.True(t, errors.Is(err, last))

	prior := errors.New("prior")
	assert.Equal(t, prior, CloseWhileHandlingError(prior, &closer{err: first}))
	assert.NoError(t, Close(&closer{}))
}
