// Package container frames the segments of a cache-reset profile file.
//
// A profile is a concatenation of segments, each a little-endian int32 bit
// count followed by ceil(count/8) bytes of packed bits.
package container

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"slices"
)

// SegmentHeaderSize is the size of the bit count preceding each payload.
const SegmentHeaderSize = 4

// MaxSegmentBits bounds the bit count of one segment.
const MaxSegmentBits = 1<<31 - 1

const readChunk = 1 << 20

// Common errors.
var (
	ErrTruncated  = errors.New("container: truncated segment")
	ErrBadSegment = errors.New("container: invalid segment bit count")
	ErrShortWrite = errors.New("container: short segment write")
)

// PayloadSize returns the number of bytes holding bits bits.
func PayloadSize(bits int) int {
	return (bits + 7) >> 3
}

// ReadSegment reads one segment from r. The payload reuses buf when it is
// large enough. A clean end of input before the header returns io.EOF.
func ReadSegment(r io.Reader, buf []byte) (bits int, payload []byte, err error) {
	var hdr [SegmentHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.EOF {
			return 0, nil, io.EOF
		}
		return 0, nil, fmt.Errorf("%w: reading header: %v", ErrTruncated, err)
	}
	count := int32(binary.LittleEndian.Uint32(hdr[:]))
	if count < 0 {
		return 0, nil, fmt.Errorf("%w: %d", ErrBadSegment, count)
	}
	bits = int(count)

	n := PayloadSize(bits)
	if cap(buf) >= n {
		payload = buf[:n]
		if _, err := io.ReadFull(r, payload); err != nil {
			return 0, nil, fmt.Errorf("%w: reading %d payload bytes: %v", ErrTruncated, n, err)
		}
		return bits, payload, nil
	}
	// Grow in chunks so a corrupt count cannot force a huge allocation
	// ahead of the data.
	payload = buf[:0]
	for len(payload) < n {
		m := min(n-len(payload), readChunk)
		payload = slices.Grow(payload, m)
		got, err := io.ReadFull(r, payload[len(payload):len(payload)+m])
		payload = payload[:len(payload)+got]
		if err != nil {
			return 0, nil, fmt.Errorf("%w: read %d of %d payload bytes: %v", ErrTruncated, len(payload), n, err)
		}
	}
	return bits, payload, nil
}

// WriteSegment writes a segment of bits bits taken from payload.
func WriteSegment(w io.Writer, bits int, payload []byte) error {
	if bits < 0 || bits > MaxSegmentBits {
		return fmt.Errorf("%w: %d", ErrBadSegment, bits)
	}
	n := PayloadSize(bits)
	if len(payload) < n {
		return fmt.Errorf("%w: %d bits need %d bytes, have %d", ErrBadSegment, bits, n, len(payload))
	}
	var hdr [SegmentHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(bits))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("%w: header: %v", ErrShortWrite, err)
	}
	if _, err := w.Write(payload[:n]); err != nil {
		return fmt.Errorf("%w: payload: %v", ErrShortWrite, err)
	}
	return nil
}
