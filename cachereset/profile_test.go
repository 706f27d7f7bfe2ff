package cachereset

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeBits(t *testing.T, p *Profile, bits []bool) {
	t.Helper()
	for _, b := range bits {
		if err := p.WriteBit(b); err != nil {
			t.Fatalf("WriteBit: %v", err)
		}
	}
}

func readBits(t *testing.T, p *Profile, n int) []bool {
	t.Helper()
	out := make([]bool, n)
	for i := range out {
		b, err := p.ReadBit()
		if err != nil {
			t.Fatalf("ReadBit %d: %v", i, err)
		}
		out[i] = b
	}
	return out
}

func equalBits(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRoundTrip(t *testing.T) {
	for _, name := range []string{"profile", "profile.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			pattern := []bool{true, false, true, true, false, false, true, false}

			w, err := Open(path, ModeWrite, nil)
			if err != nil {
				t.Fatal(err)
			}
			writeBits(t, w, pattern)
			if err := w.WriteSegment(); err != nil {
				t.Fatal(err)
			}
			if w.Offset() != 0 {
				t.Errorf("Offset after WriteSegment = %d", w.Offset())
			}
			if err := w.Close(); err != nil {
				t.Fatal(err)
			}

			r, err := Open(path, ModeRead, nil)
			if err != nil {
				t.Fatal(err)
			}
			defer r.Close()
			if err := r.ReadSegment(); err != nil {
				t.Fatal(err)
			}
			if got := readBits(t, r, len(pattern)); !equalBits(got, pattern) {
				t.Errorf("read %v, want %v", got, pattern)
			}
		})
	}
}

func TestFileLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout")
	w, err := Open(path, ModeWrite, nil)
	if err != nil {
		t.Fatal(err)
	}
	writeBits(t, w, []bool{true, false, true, true, false, false, true, false})
	_ = w.WriteSegment()
	writeBits(t, w, []bool{false, true, false, false, false, false, false, false, true})
	_ = w.WriteSegment()
	_ = w.Close()

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{8, 0, 0, 0, 0x4d, 9, 0, 0, 0, 0x02, 0x01}
	if !bytes.Equal(got, want) {
		t.Errorf("file % x, want % x", got, want)
	}
}

func TestMultipleSegments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "multi.zst")
	segments := [][]bool{
		{true},
		{},
		{false, false, true, false, true, true, true, false, false, true, true},
	}
	w, err := Open(path, ModeWrite, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range segments {
		writeBits(t, w, s)
		if err := w.WriteSegment(); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := Open(path, ModeRead, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	for i, s := range segments {
		if err := r.ReadSegment(); err != nil {
			t.Fatalf("segment %d: %v", i, err)
		}
		if got := readBits(t, r, len(s)); !equalBits(got, s) {
			t.Errorf("segment %d: %v, want %v", i, got, s)
		}
	}
	err = r.ReadSegment()
	if !errors.Is(err, ErrShortRead) || !errors.Is(err, io.EOF) {
		t.Errorf("ReadSegment past end: err = %v, want ErrShortRead and io.EOF", err)
	}
}

// TestGrowthPreservesBits writes 1,000,001 bits in one segment and checks
// the bits written before each buffer growth survive it.
func TestGrowthPreservesBits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "growth")
	w, err := Open(path, ModeWrite, nil)
	if err != nil {
		t.Fatal(err)
	}
	if w.Capacity() != GrowBytes {
		t.Errorf("initial capacity = %d, want %d", w.Capacity(), GrowBytes)
	}
	const n = 1000001
	for k := 0; k < n; k++ {
		if err := w.WriteBit(k == 0 || k == 999999 || k%1001 == 0); err != nil {
			t.Fatal(err)
		}
	}
	if w.Capacity()%GrowBytes != 0 || w.Capacity() < (n+7)/8 {
		t.Errorf("capacity = %d", w.Capacity())
	}
	if err := w.WriteSegment(); err != nil {
		t.Fatal(err)
	}
	_ = w.Close()

	r, err := Open(path, ModeRead, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if err := r.ReadSegment(); err != nil {
		t.Fatal(err)
	}
	for k := 0; k < n; k++ {
		b, err := r.ReadBit()
		if err != nil {
			t.Fatalf("ReadBit %d: %v", k, err)
		}
		if want := k == 0 || k == 999999 || k%1001 == 0; b != want {
			t.Fatalf("bit %d = %v, want %v", k, b, want)
		}
	}
}

func TestReadPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short")
	w, _ := Open(path, ModeWrite, nil)
	writeBits(t, w, []bool{true, true, true})
	_ = w.WriteSegment()
	_ = w.Close()

	t.Run("strict", func(t *testing.T) {
		r, err := Open(path, ModeRead, nil)
		if err != nil {
			t.Fatal(err)
		}
		defer r.Close()
		if _, err := r.ReadBit(); !errors.Is(err, ErrBitOutOfRange) {
			t.Errorf("ReadBit before any segment: err = %v", err)
		}
		_ = r.ReadSegment()
		// The range check is per byte: the padding bits of the last byte read
		// back as zero.
		got := readBits(t, r, 8)
		if !equalBits(got, []bool{true, true, true, false, false, false, false, false}) {
			t.Errorf("bits %v", got)
		}
		if _, err := r.ReadBit(); !errors.Is(err, ErrBitOutOfRange) {
			t.Errorf("ReadBit past segment: err = %v", err)
		}
		if r.Offset() != 8 {
			t.Errorf("cursor advanced to %d on out-of-range read", r.Offset())
		}
	})

	t.Run("no-reset", func(t *testing.T) {
		var logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, nil))
		r, err := Open(path, ModeRead, &Options{Policy: PolicyNoReset, Logger: logger})
		if err != nil {
			t.Fatal(err)
		}
		defer r.Close()
		_ = r.ReadSegment()
		readBits(t, r, 8)
		for i := 0; i < 3; i++ {
			b, err := r.ReadBit()
			if err != nil || b {
				t.Errorf("degraded ReadBit = %v, %v; want false, nil", b, err)
			}
		}
		if r.Misses() != 3 {
			t.Errorf("Misses() = %d, want 3", r.Misses())
		}
		if !strings.Contains(logs.String(), "level=WARN") {
			t.Errorf("no warning logged: %q", logs.String())
		}
	})
}

func TestModeErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "modes")
	w, err := Open(path, ModeWrite, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.ReadSegment(); !errors.Is(err, ErrWrongMode) {
		t.Errorf("ReadSegment in write mode: %v", err)
	}
	if _, err := w.ReadBit(); !errors.Is(err, ErrWrongMode) {
		t.Errorf("ReadBit in write mode: %v", err)
	}
	_ = w.WriteSegment()
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteBit(true); !errors.Is(err, ErrClosed) {
		t.Errorf("WriteBit after Close: %v", err)
	}
	if err := w.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close: %v", err)
	}

	r, err := Open(path, ModeRead, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if err := r.WriteBit(true); !errors.Is(err, ErrWrongMode) {
		t.Errorf("WriteBit in read mode: %v", err)
	}
	if err := r.WriteSegment(); !errors.Is(err, ErrWrongMode) {
		t.Errorf("WriteSegment in read mode: %v", err)
	}

	if _, err := Open(path, Mode(7), nil); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("Open with Mode(7): %v", err)
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent"), ModeRead, nil)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want fs.ErrNotExist", err)
	}
}

func TestTruncatedSegment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truncated")
	if err := os.WriteFile(path, []byte{16, 0, 0, 0, 0xff}, 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := Open(path, ModeRead, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if err := r.ReadSegment(); !errors.Is(err, ErrShortRead) {
		t.Errorf("err = %v, want ErrShortRead", err)
	}
}

// TestFailedReadKeepsSegment checks that a short read leaves the segment
// loaded before it readable.
func TestFailedReadKeepsSegment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short-second")
	data := []byte{16, 0, 0, 0, 0xff, 0xff, 16, 0, 0, 0, 0x00}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := Open(path, ModeRead, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if err := r.ReadSegment(); err != nil {
		t.Fatal(err)
	}
	if bit, err := r.ReadBit(); err != nil || !bit {
		t.Fatalf("bit 0 = %v, %v", bit, err)
	}
	if err := r.ReadSegment(); !errors.Is(err, ErrShortRead) {
		t.Fatalf("second segment: err = %v, want ErrShortRead", err)
	}
	for i := 1; i < 16; i++ {
		bit, err := r.ReadBit()
		if err != nil || !bit {
			t.Fatalf("bit %d after failed read = %v, %v", i, bit, err)
		}
	}
}

func TestNegativeSegmentCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "negative")
	if err := os.WriteFile(path, []byte{0, 0, 0, 0x80}, 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := Open(path, ModeRead, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	err = r.ReadSegment()
	if !errors.Is(err, ErrBadSegment) || !errors.Is(err, ErrShortRead) {
		t.Errorf("err = %v, want ErrBadSegment and ErrShortRead", err)
	}
}

func BenchmarkWriteBit(b *testing.B) {
	path := filepath.Join(b.TempDir(), "bench")
	w, err := Open(path, ModeWrite, nil)
	if err != nil {
		b.Fatal(err)
	}
	defer w.Close()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = w.WriteBit(i&1 == 0)
		if i%100000 == 99999 {
			_ = w.WriteSegment()
		}
	}
}
