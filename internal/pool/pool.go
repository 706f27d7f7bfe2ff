// Package pool provides bucketed sync.Pool instances for the float32 tensors
// exchanged with the inference backend. Buffers are organized by size class
// to minimize waste.
package pool

import "sync"

// Size classes for bucketed pools, in elements.
const (
	Size4K   = 4096
	Size64K  = 65536
	Size256K = 262144
	Size1M   = 1048576
	Size4M   = 4194304
	Size16M  = 16777216
)

// bucketIndex returns the pool index for a given length.
func bucketIndex(n int) int {
	switch {
	case n <= Size4K:
		return 0
	case n <= Size64K:
		return 1
	case n <= Size256K:
		return 2
	case n <= Size1M:
		return 3
	case n <= Size4M:
		return 4
	default:
		return 5
	}
}

var sizes = [6]int{Size4K, Size64K, Size256K, Size1M, Size4M, Size16M}

var pools [6]sync.Pool

func init() {
	for i := range pools {
		sz := sizes[i]
		pools[i] = sync.Pool{
			New: func() any {
				b := make([]float32, sz)
				return &b
			},
		}
	}
}

// GetFloat32 returns a float32 slice of length n from the pool. Its contents
// are unspecified. The caller must call PutFloat32 when done.
func GetFloat32(n int) []float32 {
	idx := bucketIndex(n)
	bp := pools[idx].Get().(*[]float32)
	b := *bp
	if cap(b) < n {
		b = make([]float32, n)
		*bp = b
		return b
	}
	return b[:n]
}

// PutFloat32 returns a slice to the pool. Slices smaller than Size4K are not
// pooled, nor are slices larger than the biggest class.
func PutFloat32(b []float32) {
	c := cap(b)
	if c < Size4K || c > Size16M {
		return
	}
	// A slice lands in the largest class it fully covers, so Get from that
	// class never sees a short buffer.
	idx := bucketIndex(c)
	if c < sizes[idx] {
		idx--
	}
	b = b[:c]
	pools[idx].Put(&b)
}
