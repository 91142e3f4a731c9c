package index

import (
	"math"

	"github.com/dbalmain/ferret-sub000/core/util"
)

// search/Similarity.java

// Computes the length normalization factor stored per field per
// document at indexing time.
type Similarity interface {
	// Computes the normalization value for a field given the total
	// number of terms contained in it.
	LengthNorm(field string, numTokens int) float32
}

// Expert: the default scoring implementation: 1/sqrt(numTokens).
type DefaultSimilarity struct{}

func (s DefaultSimilarity) LengthNorm(field string, numTokens int) float32 {
	if numTokens <= 0 {
		return 1.0
	}
	return float32(1.0 / math.Sqrt(float64(numTokens)))
}

var normDecoder = func() (table [256]float32) {
	for i := range table {
		table[i] = util.Byte315ToFloat(byte(i))
	}
	return
}()

// Decodes a normalization factor stored in an index.
func DecodeNorm(b byte) float32 {
	return normDecoder[b]
}

/*
Encodes a normalization factor for storage in an index.

The encoding uses a three-bit mantissa, a five-bit exponent, and the
zero-exponent point at 15, thus representing values from around
7x10^9 to 2x10^-9 with about one significant decimal digit of
accuracy. Zero is also represented. Negative numbers are rounded up
to zero. Values too large to represent are rounded down to the
largest representable value. Positive values too small to represent
are rounded up to the smallest positive representable value.
*/
func EncodeNorm(f float32) byte {
	return util.FloatToByte315(f)
}
