package util

import (
	"math"
)

// util/SmallFloat.java

/*
Converts a 32-bit float to an 8-bit float: 3 bits of mantissa and 5
bits of exponent, with the zero exponent point at 15.

smallest non-zero value = 5.820766E-10
largest value = 7.5161928E9
epsilon = 0.125

Values are truncated (rounded down) to the nearest 8 bit value.
Values between zero and the smallest representable value are rounded
up.
*/
func FloatToByte315(f float32) byte {
	bits := int32(math.Float32bits(f))
	smallfloat := bits >> (24 - 3)
	if smallfloat <= ((63 - 15) << 3) {
		if bits <= 0 {
			return 0
		}
		return 1
	}
	if smallfloat >= ((63-15)<<3)+0x100 {
		return 255
	}
	return byte(smallfloat - ((63 - 15) << 3))
}

// Converts an 8-bit float produced by FloatToByte315 back to a float32.
func Byte315ToFloat(b byte) float32 {
	if b == 0 {
		return 0
	}
	bits := uint32(b) << (24 - 3)
	bits += (63 - 15) << 24
	return math.Float32frombits(bits)
}
