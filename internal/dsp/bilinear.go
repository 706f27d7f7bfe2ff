package dsp

import "fmt"

// Mode selects how the bilinear result reaches the destination.
type Mode int

const (
	// Overwrite stores clip(result).
	Overwrite Mode = iota
	// Accumulate stores clip(dst + result), used for residual planes.
	Accumulate
)

func (m Mode) String() string {
	switch m {
	case Overwrite:
		return "overwrite"
	case Accumulate:
		return "accumulate"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Sample is the set of source element types: 8-bit pixels or signed 16-bit
// residuals.
type Sample interface {
	~uint8 | ~int16
}

// Resample upscales the w x h block at (xOff, yOff) of src by t.Scale into
// the block at (xOff*Scale, yOff*Scale) of dst. Interpolation is separable:
// a horizontal pass into int16 scratch, then a vertical pass into dst.
// Each pass computes left + round((right-left) * weight / 2^FractionBits).
//
// All preconditions are checked before any write; on error dst is untouched.
func Resample[T Sample](src []T, srcStride int, dst []byte, dstStride int,
	xOff, yOff, w, h int, t *Table, mode Mode, s *Scratch) error {
	if xOff < 0 || yOff < 0 {
		return ErrInvalidExtent
	}
	if t == nil {
		return ErrTableMismatch
	}
	return ResampleBlock(src, yOff*srcStride+xOff, srcStride,
		dst, yOff*t.Scale*dstStride+xOff*t.Scale, dstStride, w, h, t, mode, s)
}

// ResampleBlock is Resample with the block origins given as buffer offsets.
func ResampleBlock[T Sample](src []T, srcOff, srcStride int, dst []byte, dstOff, dstStride int,
	w, h int, t *Table, mode Mode, s *Scratch) error {
	if err := checkResample(len(src), srcOff, srcStride, len(dst), dstOff, dstStride, w, h, t, mode); err != nil {
		return err
	}
	tmp := s.bilinear[:]

	switch v := any(src).(type) {
	case []uint8:
		horizPass8(v, srcOff, srcStride, tmp, w, h, t.X)
	case []int16:
		horizPass16(v, srcOff, srcStride, tmp, w, h, t.X)
	default:
		horizPassScalar(src, srcOff, srcStride, tmp, w, h, t.X)
	}
	vertPass(tmp, dst, dstOff, dstStride, w*t.Scale, t.Y, mode == Accumulate)
	return nil
}

func checkResample(srcLen, srcOff, srcStride, dstLen, dstOff, dstStride, w, h int, t *Table, mode Mode) error {
	if t == nil || t.X == nil || t.Y == nil {
		return ErrTableMismatch
	}
	if t.Scale < MinScale || t.Scale > MaxScale {
		return fmt.Errorf("%w: %d", ErrUnsupportedScale, t.Scale)
	}
	if mode != Overwrite && mode != Accumulate {
		return fmt.Errorf("dsp: invalid mode %d", int(mode))
	}
	if w <= 0 || h <= 0 {
		return ErrInvalidExtent
	}
	if w != t.Width || h != t.Height || t.X.Len() != w*t.Scale || t.Y.Len() != h*t.Scale {
		return fmt.Errorf("%w: block %dx%d, table %dx%d", ErrTableMismatch, w, h, t.Width, t.Height)
	}
	if w*t.Scale > TempStride || h > TempRows {
		return fmt.Errorf("%w: %dx%d at scale %d", ErrBlockTooLarge, w, h, t.Scale)
	}
	if !BlockFits(srcLen, srcOff, srcStride, w, h) {
		return fmt.Errorf("%w: source", ErrBufferTooSmall)
	}
	if !BlockFits(dstLen, dstOff, dstStride, w*t.Scale, h*t.Scale) {
		return fmt.Errorf("%w: destination", ErrBufferTooSmall)
	}
	return nil
}

// BlockFits reports whether a w x h block at off with the given stride lies
// inside a buffer of n elements.
func BlockFits(n, off, stride, w, h int) bool {
	return off >= 0 && w > 0 && h > 0 && stride >= w && off+(h-1)*stride+w <= n
}

// interp returns a + round((b-a)*w / 2^FractionBits).
func interp(a, b, w int) int {
	return a + (((b-a)*w + (1 << (FractionBits - 1))) >> FractionBits)
}

func horizPassScalar[T Sample](src []T, srcOff, srcStride int, tmp []int16, w, h int, x *AxisTable) {
	n := x.Len()
	for y := 0; y < h; y++ {
		row := src[srcOff+y*srcStride : srcOff+y*srcStride+w]
		out := tmp[y*TempStride : y*TempStride+n]
		for i := range out {
			out[i] = int16(interp(int(row[x.Low[i]]), int(row[x.High[i]]), int(x.Weight[i])))
		}
	}
}

// horizPassPairs computes two outputs per iteration.
func horizPassPairs[T Sample](src []T, srcOff, srcStride int, tmp []int16, w, h int, x *AxisTable) {
	n := x.Len()
	low, high, wt := x.Low[:n], x.High[:n], x.Weight[:n]
	for y := 0; y < h; y++ {
		row := src[srcOff+y*srcStride : srcOff+y*srcStride+w]
		out := tmp[y*TempStride : y*TempStride+n]
		i := 0
		for ; i+1 < n; i += 2 {
			a0, b0 := int(row[low[i]]), int(row[high[i]])
			a1, b1 := int(row[low[i+1]]), int(row[high[i+1]])
			out[i] = int16(a0 + (((b0-a0)*int(wt[i]) + 16) >> FractionBits))
			out[i+1] = int16(a1 + (((b1-a1)*int(wt[i+1]) + 16) >> FractionBits))
		}
		for ; i < n; i++ {
			out[i] = int16(interp(int(row[low[i]]), int(row[high[i]]), int(wt[i])))
		}
	}
}

func vertPassScalar(tmp []int16, dst []byte, dstOff, dstStride, w int, y *AxisTable, accumulate bool) {
	for j := 0; j < y.Len(); j++ {
		top := tmp[y.Low[j]*TempStride : y.Low[j]*TempStride+w]
		bot := tmp[y.High[j]*TempStride : y.High[j]*TempStride+w]
		wy := int(y.Weight[j])
		d := dst[dstOff+j*dstStride : dstOff+j*dstStride+w]
		for i := range d {
			v := interp(int(top[i]), int(bot[i]), wy)
			if accumulate {
				v += int(d[i])
			}
			d[i] = Clip8b(v)
		}
	}
}

// vertPassQuad computes four outputs per iteration.
func vertPassQuad(tmp []int16, dst []byte, dstOff, dstStride, w int, y *AxisTable, accumulate bool) {
	for j := 0; j < y.Len(); j++ {
		top := tmp[y.Low[j]*TempStride : y.Low[j]*TempStride+w]
		bot := tmp[y.High[j]*TempStride : y.High[j]*TempStride+w]
		wy := int(y.Weight[j])
		d := dst[dstOff+j*dstStride : dstOff+j*dstStride+w]
		var acc [4]int
		i := 0
		for ; i+3 < w; i += 4 {
			v0 := interp(int(top[i]), int(bot[i]), wy)
			v1 := interp(int(top[i+1]), int(bot[i+1]), wy)
			v2 := interp(int(top[i+2]), int(bot[i+2]), wy)
			v3 := interp(int(top[i+3]), int(bot[i+3]), wy)
			if accumulate {
				acc = [4]int{int(d[i]), int(d[i+1]), int(d[i+2]), int(d[i+3])}
			}
			d[i] = Clip8b(v0 + acc[0])
			d[i+1] = Clip8b(v1 + acc[1])
			d[i+2] = Clip8b(v2 + acc[2])
			d[i+3] = Clip8b(v3 + acc[3])
		}
		for ; i < w; i++ {
			v := interp(int(top[i]), int(bot[i]), wy)
			if accumulate {
				v += int(d[i])
			}
			d[i] = Clip8b(v)
		}
	}
}
