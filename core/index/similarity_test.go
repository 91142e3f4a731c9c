package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLengthNorm(t *testing.T) {
	sim := DefaultSimilarity{}
	assert.Equal(t, float32(1), sim.LengthNorm("body", 0))
	assert.Equal(t, float32(1), sim.LengthNorm("body", 1))
	assert.Equal(t, float32(0.5), sim.LengthNorm("body", 4))
	assert.Equal(t, float32(0.1), sim.LengthNorm("body", 100))
}

func TestNormCodec(t *testing.T) {
	assert.Equal(t, byte(0), EncodeNorm(0))
	assert.Equal(t, byte(0), EncodeNorm(-3))
	assert.Equal(t, float32(0), DecodeNorm(0))
	assert.Equal(t, byte(124), EncodeNorm(1))
	assert.Equal(t, float32(1), DecodeNorm(124))
	assert.Equal(t, float32(0.5), DecodeNorm(EncodeNorm(0.5)))
	assert.Equal(t, byte(255), EncodeNorm(1e20))
	assert.Equal(t, byte(1), EncodeNorm(1e-20))

	// decoding is monotonic and encode(decode(b)) == b
	for b := 1; b < 256; b++ {
		assert.Less(t, DecodeNorm(byte(b-1)), DecodeNorm(byte(b)))
		assert.Equal(t, byte(b), EncodeNorm(DecodeNorm(byte(b))))
	}
	// encoding rounds down
	for _, f := range []float32{0.3, 0.7, 1.3, 17, 1000} {
		assert.LessOrEqual(t, DecodeNorm(EncodeNorm(f)), f)
	}
}
