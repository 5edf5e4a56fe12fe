package memory

import (
	"math/bits"
	"unsafe"

	"github.com/parquet-go/bitpack/unsafecast"
)

// Datum is the constraint of types that slice buffers can hold.
type Datum interface {
	~byte | ~int32 | ~int64 | ~uint32 | ~uint64 | ~float32 | ~float64
}

const (
	minBucketBits = 10 // 1 KiB
	maxBucketBits = 26 // 64 MiB
	numBuckets    = maxBucketBits - minBucketBits + 1
)

type slice struct {
	data []byte
}

var slicePools [numBuckets]Pool[slice]

// SliceBuffer holds a contiguous slice of values backed by memory taken from
// size-class pools. Growing the buffer moves its content to the next size
// class and releases the previous memory.
//
// The zero value is an empty buffer. Buffers are not safe for concurrent use.
type SliceBuffer[T Datum] struct {
	mem  *slice
	data []T
}

// Len returns the number of values in the buffer.
func (b *SliceBuffer[T]) Len() int { return len(b.data) }

// Slice returns the values in the buffer. The slice remains valid until the
// next call to a method that changes the buffer length.
func (b *SliceBuffer[T]) Slice() []T { return b.data }

// Append adds values to the end of the buffer.
func (b *SliceBuffer[T]) Append(values ...T) {
	n := len(b.data)
	b.reserve(n + len(values))
	b.data = b.data[:n+len(values)]
	copy(b.data[n:], values)
}

// Resize sets the buffer length to n and returns the values. Values within
// the previous length are preserved, the others are zero.
func (b *SliceBuffer[T]) Resize(n int) []T {
	if n < 0 {
		n = 0
	}
	prev := len(b.data)
	b.reserve(n)
	b.data = b.data[:n]
	if n > prev {
		clear(b.data[prev:])
	}
	return b.data
}

// Reset releases the memory of the buffer, leaving it empty.
func (b *SliceBuffer[T]) Reset() {
	putSlice(b.mem)
	b.mem, b.data = nil, nil
}

func (b *SliceBuffer[T]) reserve(n int) {
	if n <= cap(b.data) {
		return
	}
	size := int(unsafe.Sizeof(*new(T)))
	mem := getSlice(n * size)
	data := unsafecast.Slice[T](mem.data[:cap(mem.data)])[:len(b.data)]
	copy(data, b.data)
	putSlice(b.mem)
	b.mem, b.data = mem, data
}

// bucketOf returns the index of the smallest size class holding size bytes,
// or -1 if size exceeds the largest class.
func bucketOf(size int) int {
	if size <= 1<<minBucketBits {
		return 0
	}
	i := bits.Len(uint(size-1)) - minBucketBits
	if i >= numBuckets {
		return -1
	}
	return i
}

func bucketSize(i int) int { return 1 << (minBucketBits + i) }

func getSlice(size int) *slice {
	i := bucketOf(size)
	if i < 0 {
		return &slice{data: make([]byte, 0, size)}
	}
	return slicePools[i].Get(
		func() *slice { return &slice{data: make([]byte, 0, bucketSize(i))} },
		func(s *slice) { s.data = s.data[:0] },
	)
}

func putSlice(s *slice) {
	if s == nil {
		return
	}
	// Oversized allocations are left to the garbage collector.
	if i := bucketOf(cap(s.data)); i >= 0 && bucketSize(i) == cap(s.data) {
		slicePools[i].Put(s)
	}
}
