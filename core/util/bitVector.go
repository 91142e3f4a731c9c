package util

import (
	"github.com/bits-and-blooms/bitset"
)

// util/BitVector.java

/*
Optimized implementation of a vector of bits, used for deleted
documents. It supports:

  - a count() method, which efficiently computes the number of one
    bits;
  - reading/writing to a DataInput/DataOutput.

The serialized form is the bit count as int32, the number of set bits
as int32, then ceil(size/8) bytes with bit i stored at byte i>>3,
bit i&7.
*/
type BitVector struct {
	bits  *bitset.BitSet
	size  int
	count int // cached, -1 when dirty
}

func NewBitVector(n int) *BitVector {
	return &BitVector{bits: bitset.New(uint(n)), size: n, count: 0}
}

// Sets the value of bit to one.
func (bv *BitVector) Set(bit int) {
	assert2(bit >= 0 && bit < bv.size, "bit index %v out of bounds: %v", bit, bv.size)
	bv.bits.Set(uint(bit))
	bv.count = -1
}

// Sets the value of bit to zero.
func (bv *BitVector) Clear(bit int) {
	assert2(bit >= 0 && bit < bv.size, "bit index %v out of bounds: %v", bit, bv.size)
	bv.bits.Clear(uint(bit))
	bv.count = -1
}

// Returns true if bit is one and false if it is zero.
func (bv *BitVector) At(bit int) bool {
	assert2(bit >= 0 && bit < bv.size, "bit index %v out of bounds: %v", bit, bv.size)
	return bv.bits.Test(uint(bit))
}

// Returns the number of bits in this vector. This is also one greater
// than the number of the largest valid bit number.
func (bv *BitVector) Length() int {
	return bv.size
}

// Returns the total number of one bits in this vector. This is
// efficiently computed and cached, so that, if the vector is not
// changed, no recomputation is done for repeated calls.
func (bv *BitVector) Count() int {
	if bv.count == -1 {
		bv.count = int(bv.bits.Count())
	}
	return bv.count
}

func (bv *BitVector) Clone() *BitVector {
	return &BitVector{bits: bv.bits.Clone(), size: bv.size, count: bv.count}
}

// Writes this vector to out, in a format that can be read by ReadBitVector().
func (bv *BitVector) WriteTo(out DataOutput) error {
	if err := out.WriteInt(int32(bv.size)); err != nil {
		return err
	}
	if err := out.WriteInt(int32(bv.Count())); err != nil {
		return err
	}
	bytes := make([]byte, (bv.size+7)>>3)
	for i, ok := bv.bits.NextSet(0); ok && int(i) < bv.size; i, ok = bv.bits.NextSet(i + 1) {
		bytes[i>>3] |= 1 << (i & 7)
	}
	return out.WriteBytes(bytes)
}

// Reads a vector written by BitVector.WriteTo().
func ReadBitVector(in DataInput) (*BitVector, error) {
	size, err := in.ReadInt()
	if err != nil {
		return nil, err
	}
	count, err := in.ReadInt()
	if err != nil {
		return nil, err
	}
	bytes := make([]byte, (size+7)>>3)
	if err = in.ReadBytes(bytes); err != nil {
		return nil, err
	}
	bv := NewBitVector(int(size))
	for i, b := range bytes {
		for j := 0; b != 0; j++ {
			if b&1 != 0 {
				bv.bits.Set(uint(i<<3 + j))
			}
			b >>= 1
		}
	}
	bv.count = int(count)
	return bv, nil
}
