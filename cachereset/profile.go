// Package cachereset reads and writes cache-reset profiles: per-unit
// decisions on whether a cached, interpolated result must be discarded and
// recomputed, stored as one bit per decoded unit.
//
// A profile is opened either for writing (recording decisions during an
// analysis pass) or for reading (playing them back during decode). Bits are
// grouped into segments, one per logical decode chunk; see
// internal/container for the file layout. Paths ending in ".zst" are
// transparently zstd-compressed.
//
// A Profile is not safe for concurrent use.
package cachereset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/deepteams/vp9sr/internal/bitio"
	"github.com/deepteams/vp9sr/internal/container"
)

// GrowBytes is the buffer growth increment of a profile being written.
const GrowBytes = 1000

// CompressedSuffix marks profile paths stored zstd-compressed.
const CompressedSuffix = ".zst"

// Mode is the direction a profile is opened in.
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
)

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Policy decides what a read past the loaded segment returns.
type Policy int

const (
	// PolicyStrict reports ErrBitOutOfRange.
	PolicyStrict Policy = iota
	// PolicyNoReset answers "no reset", logs a warning and counts the miss.
	PolicyNoReset
)

func (p Policy) String() string {
	switch p {
	case PolicyStrict:
		return "strict"
	case PolicyNoReset:
		return "no-reset"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// Common errors.
var (
	ErrWrongMode     = errors.New("cachereset: operation not valid in this mode")
	ErrClosed        = errors.New("cachereset: profile closed")
	ErrBitOutOfRange = errors.New("cachereset: bit read past loaded segment")
	ErrShortRead     = errors.New("cachereset: short segment read")

	// ErrBadSegment marks a segment header with a negative bit count. It is
	// returned wrapped in ErrShortRead.
	ErrBadSegment = container.ErrBadSegment

	ErrShortWrite  = errors.New("cachereset: short segment write")
	ErrInvalidMode = errors.New("cachereset: invalid mode")
)

// Options configures a Profile. The zero value is usable.
type Options struct {
	Policy Policy
	Logger *slog.Logger // nil discards
}

// Profile is an open cache-reset profile.
type Profile struct {
	path   string
	mode   Mode
	closed bool
	policy Policy
	logger *slog.Logger

	f  *os.File
	r  *bufio.Reader
	w  *bufio.Writer
	zr *zstd.Decoder
	zw *zstd.Encoder

	bits    *bitio.BitVector
	segment []byte // backs bits while a segment is loaded
	spare   []byte // read buffer for the next segment
	offset  int
	misses  int
}

// Open opens the profile at path. A missing file in read mode yields an
// error wrapping fs.ErrNotExist. Write mode truncates an existing file.
func Open(path string, mode Mode, opts *Options) (*Profile, error) {
	if opts == nil {
		opts = &Options{}
	}
	p := &Profile{
		path:   path,
		mode:   mode,
		policy: opts.Policy,
		logger: opts.Logger,
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	compressed := strings.HasSuffix(path, CompressedSuffix)

	switch mode {
	case ModeRead:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("cachereset: open %s: %w", path, err)
		}
		p.f = f
		var src io.Reader = f
		if compressed {
			zr, err := zstd.NewReader(f)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("cachereset: open %s: %w", path, err)
			}
			p.zr = zr
			src = zr
		}
		p.r = bufio.NewReader(src)
		// Allocated by the first ReadSegment.
		p.bits = bitio.NewBitVector(0, GrowBytes)
	case ModeWrite:
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("cachereset: create %s: %w", path, err)
		}
		p.f = f
		var dst io.Writer = f
		if compressed {
			zw, err := zstd.NewWriter(f)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("cachereset: create %s: %w", path, err)
			}
			p.zw = zw
			dst = zw
		}
		p.w = bufio.NewWriter(dst)
		p.bits = bitio.NewBitVector(GrowBytes, GrowBytes)
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, int(mode))
	}
	return p, nil
}

func (p *Profile) check(want Mode) error {
	if p.closed {
		return ErrClosed
	}
	if p.mode != want {
		return fmt.Errorf("%w: profile opened for %v", ErrWrongMode, p.mode)
	}
	return nil
}

// ReadSegment loads the next segment and rewinds the cursor. Reaching the
// end of the file is a short read; the error also matches io.EOF. A failed
// read leaves the loaded segment and the cursor as they were.
func (p *Profile) ReadSegment() error {
	if err := p.check(ModeRead); err != nil {
		return err
	}
	_, payload, err := container.ReadSegment(p.r, p.spare)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrShortRead, p.path, err)
	}
	p.spare = p.segment
	p.segment = payload[:cap(payload)]
	p.bits.Load(payload)
	p.offset = 0
	return nil
}

// WriteSegment appends the bits written since the last segment to the file,
// then rewinds the cursor and clears the buffer for reuse.
func (p *Profile) WriteSegment() error {
	if err := p.check(ModeWrite); err != nil {
		return err
	}
	if err := container.WriteSegment(p.w, p.offset, p.bits.Bytes(p.offset)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrShortWrite, p.path, err)
	}
	if err := p.w.Flush(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrShortWrite, p.path, err)
	}
	if p.zw != nil {
		if err := p.zw.Flush(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrShortWrite, p.path, err)
		}
	}
	p.offset = 0
	p.bits.Clear()
	return nil
}

// ReadBit returns the bit at the cursor and advances it. A cursor past the
// loaded segment does not advance and is handled by the read policy.
func (p *Profile) ReadBit() (bool, error) {
	if err := p.check(ModeRead); err != nil {
		return false, err
	}
	bit, ok := p.bits.Get(p.offset)
	if !ok {
		if p.policy == PolicyNoReset {
			p.misses++
			p.logger.Warn("cache-reset bit past loaded segment, assuming no reset",
				"path", p.path, "bit", p.offset, "bytes", p.bits.Len(), "misses", p.misses)
			return false, nil
		}
		return false, fmt.Errorf("%w: bit %d, %d bytes loaded", ErrBitOutOfRange, p.offset, p.bits.Len())
	}
	p.offset++
	return bit == 1, nil
}

// WriteBit stores a bit at the cursor, growing the buffer by GrowBytes when
// the cursor passes its end, and advances the cursor.
func (p *Profile) WriteBit(reset bool) error {
	if err := p.check(ModeWrite); err != nil {
		return err
	}
	p.bits.Set(p.offset, reset)
	p.offset++
	return nil
}

// Close releases the buffer and the file. Bits written after the last
// WriteSegment are discarded.
func (p *Profile) Close() error {
	if p.closed {
		return ErrClosed
	}
	p.closed = true
	p.bits = nil
	p.segment = nil

	var errs []error
	if p.zr != nil {
		p.zr.Close()
	}
	if p.zw != nil {
		errs = append(errs, p.zw.Close())
	}
	errs = append(errs, p.f.Close())
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("cachereset: close %s: %w", p.path, err)
	}
	return nil
}

// Offset returns the cursor: the next bit index to read or write.
func (p *Profile) Offset() int { return p.offset }

// Capacity returns the buffer length in bytes.
func (p *Profile) Capacity() int {
	if p.bits == nil {
		return 0
	}
	return p.bits.Len()
}

// Misses returns the number of out-of-range reads answered under
// PolicyNoReset.
func (p *Profile) Misses() int { return p.misses }

// Mode returns the direction the profile was opened in.
func (p *Profile) Mode() Mode { return p.mode }

// Path returns the file path.
func (p *Profile) Path() string { return p.path }
