// Package bits implements helpers to address validity bitmaps: densely packed
// sequences of bits, least significant bit first, where a set bit marks a
// present (non-null) value.
package bits

import "math/bits"

// ByteCount returns the number of bytes needed to hold n bits.
func ByteCount(n uint) int { return int((n + 7) / 8) }

// Get returns the bit at index i.
func Get(data []byte, i int64) bool {
	return (data[i>>3] & (1 << uint(i&7))) != 0
}

// Set sets the bit at index i to 1.
func Set(data []byte, i int64) {
	data[i>>3] |= 1 << uint(i&7)
}

// Clear sets the bit at index i to 0.
func Clear(data []byte, i int64) {
	data[i>>3] &^= 1 << uint(i&7)
}

// CountOnes returns the number of bits set in the range [offset, offset+n).
//
// The function panics if the range exceeds the length of data.
func CountOnes(data []byte, offset int64, n int) int {
	if n <= 0 {
		return 0
	}
	end := offset + int64(n)
	_ = data[(end-1)>>3]
	count := 0

	for offset < end && (offset&7) != 0 {
		if Get(data, offset) {
			count++
		}
		offset++
	}

	for ; offset+8 <= end; offset += 8 {
		count += bits.OnesCount8(data[offset>>3])
	}

	for ; offset < end; offset++ {
		if Get(data, offset) {
			count++
		}
	}

	return count
}

// CountZeros returns the number of cleared bits in [offset, offset+n).
func CountZeros(data []byte, offset int64, n int) int {
	return n - CountOnes(data, offset, n)
}
