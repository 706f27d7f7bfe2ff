// Package bitio provides bit-granular storage for decoder side information.
package bitio

// BitVector is a dense, growable sequence of bits. Bit k is stored at
// byte k/8, bit position k%8 (least significant bit first).
//
// Writes past the end grow the buffer by whole increments of zero bytes, so
// every previously written bit is preserved. Reads past the end are reported
// to the caller rather than answered with zero.
type BitVector struct {
	buf  []byte
	grow int
}

// NewBitVector returns a vector with size zeroed bytes that grows by
// growBytes at a time (at least 1).
func NewBitVector(size, growBytes int) *BitVector {
	if growBytes < 1 {
		growBytes = 1
	}
	return &BitVector{buf: make([]byte, size), grow: growBytes}
}

// Len returns the capacity in bytes.
func (v *BitVector) Len() int { return len(v.buf) }

// Get returns bit k. ok is false when byte k/8 lies outside the buffer.
func (v *BitVector) Get(k int) (bit uint8, ok bool) {
	i := k >> 3
	if k < 0 || i >= len(v.buf) {
		return 0, false
	}
	return (v.buf[i] >> uint(k&7)) & 1, true
}

// Set stores bit k, growing the buffer first if needed.
func (v *BitVector) Set(k int, bit bool) {
	i := k >> 3
	if i >= len(v.buf) {
		v.ensure(i + 1)
	}
	if bit {
		v.buf[i] |= 1 << uint(k&7)
	} else {
		v.buf[i] &^= 1 << uint(k&7)
	}
}

// ensure grows the buffer by whole increments until it holds n bytes.
func (v *BitVector) ensure(n int) {
	size := len(v.buf)
	for size < n {
		size += v.grow
	}
	if size <= cap(v.buf) {
		old := len(v.buf)
		v.buf = v.buf[:size]
		clear(v.buf[old:])
		return
	}
	tmp := make([]byte, size)
	copy(tmp, v.buf)
	v.buf = tmp
}

// Bytes returns the bytes holding the first n bits, growing the buffer with
// zeros if it is shorter. The slice aliases the vector.
func (v *BitVector) Bytes(n int) []byte {
	nb := (n + 7) >> 3
	if nb > len(v.buf) {
		v.ensure(nb)
	}
	return v.buf[:nb]
}

// Clear zeroes every byte without changing the capacity.
func (v *BitVector) Clear() {
	clear(v.buf)
}

// Load replaces the contents with b. The vector takes ownership of b.
func (v *BitVector) Load(b []byte) {
	v.buf = b
}
