package container

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// FuzzReadSegment checks that arbitrary input never panics and that every
// segment read back re-encodes to the bytes it came from.
func FuzzReadSegment(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{8, 0, 0, 0, 0x4d})
	f.Add([]byte{9, 0, 0, 0, 0x02, 0x01, 0, 0, 0, 0})
	f.Add([]byte{0xff, 0xff, 0xff, 0x7f, 1, 2, 3})
	f.Add([]byte{0, 0, 0, 0x80})
	f.Add([]byte{1, 0})

	f.Fuzz(func(t *testing.T, data []byte) {
		r := bytes.NewReader(data)
		var buf []byte
		consumed := 0
		for {
			bits, payload, err := ReadSegment(r, buf)
			if err != nil {
				if err != io.EOF && !errors.Is(err, ErrTruncated) && !errors.Is(err, ErrBadSegment) {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var out bytes.Buffer
			if err := WriteSegment(&out, bits, payload); err != nil {
				t.Fatalf("re-encode: %v", err)
			}
			n := out.Len()
			if !bytes.Equal(out.Bytes(), data[consumed:consumed+n]) {
				t.Fatalf("segment at %d re-encodes differently", consumed)
			}
			consumed += n
			buf = payload
		}
	})
}
