package dsp

// Residual frames carry signed 16-bit differences. Filtering them keeps the
// full range (no clip) and only the final add into the 8-bit prediction
// clips.

func convolveHoriz16(src []int16, srcOff, srcStride int, dst []int16, dstOff, dstStride int,
	k *Kernels, x0Q4, xStepQ4, w, h int) {
	srcOff -= SubpelTaps/2 - 1
	for y := 0; y < h; y++ {
		s := src[srcOff+y*srcStride:]
		d := dst[dstOff+y*dstStride : dstOff+y*dstStride+w]
		xQ4 := x0Q4
		for x := range d {
			p := s[xQ4>>SubpelBits : xQ4>>SubpelBits+SubpelTaps]
			f := &k[xQ4&SubpelMask]
			sum := 0
			for t := range p {
				sum += int(p[t]) * int(f[t])
			}
			d[x] = int16(RoundPow2(sum, FilterBits))
			xQ4 += xStepQ4
		}
	}
}

func convolveVert16(src []int16, srcOff, srcStride int, dst []int16, dstOff, dstStride int,
	k *Kernels, y0Q4, yStepQ4, w, h int) {
	srcOff -= srcStride * (SubpelTaps/2 - 1)
	for x := 0; x < w; x++ {
		yQ4 := y0Q4
		for y := 0; y < h; y++ {
			base := srcOff + (yQ4>>SubpelBits)*srcStride + x
			f := &k[yQ4&SubpelMask]
			sum := 0
			for t := 0; t < SubpelTaps; t++ {
				sum += int(src[base+t*srcStride]) * int(f[t])
			}
			dst[dstOff+y*dstStride+x] = int16(RoundPow2(sum, FilterBits))
			yQ4 += yStepQ4
		}
	}
}

// CopyAdd adds a w x h residual block to dst with clipping.
func CopyAdd(res []int16, resOff, resStride int, dst []byte, dstOff, dstStride int, w, h int) {
	for y := 0; y < h; y++ {
		r := res[resOff+y*resStride : resOff+y*resStride+w]
		d := dst[dstOff+y*dstStride : dstOff+y*dstStride+w]
		for x := range d {
			d[x] = Clip8b(int(d[x]) + int(r[x]))
		}
	}
}

// Convolve2DAccumulate filters a residual block in both directions and adds
// the result to dst. The steps follow the same limits as Convolve2D.
func Convolve2DAccumulate(res []int16, resOff, resStride int, dst []byte, dstOff, dstStride int,
	k *Kernels, x0Q4, xStepQ4, y0Q4, yStepQ4, w, h int, s *Scratch) error {
	if err := CheckConvolve(w, h, xStepQ4, yStepQ4); err != nil {
		return err
	}
	rows := SpanQ4(h, y0Q4, yStepQ4)
	convolveHoriz16(res, resOff-resStride*(SubpelTaps/2-1), resStride,
		s.conv16[:], 0, MaxBlock, k, x0Q4, xStepQ4, w, rows)
	convolveVert16(s.conv16[:], MaxBlock*(SubpelTaps/2-1), MaxBlock,
		s.block16[:], 0, MaxBlock, k, y0Q4, yStepQ4, w, h)
	CopyAdd(s.block16[:], 0, MaxBlock, dst, dstOff, dstStride, w, h)
	return nil
}

// SumAbs16 returns the sum of absolute values of a w x h residual block.
func SumAbs16(res []int16, off, stride, w, h int) int {
	sum := 0
	for y := 0; y < h; y++ {
		for _, v := range res[off+y*stride : off+y*stride+w] {
			if v < 0 {
				sum -= int(v)
			} else {
				sum += int(v)
			}
		}
	}
	return sum
}
