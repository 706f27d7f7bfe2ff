package dsp

// 8-tap sub-pixel convolution. Positions are in 1/16 pel (q4): the integer
// part selects the source sample and the low SubpelBits select the kernel.
// The horizontal pass reads SubpelTaps/2-1 samples to the left of each
// position and the vertical pass as many rows above it.
//
// These functions do not bounds-check beyond the implicit slice checks;
// callers validate geometry with CheckConvolve.

// CheckConvolve validates the step and block limits of the 2-D convolution
// intermediate buffer.
func CheckConvolve(w, h, xStepQ4, yStepQ4 int) error {
	if w <= 0 || h <= 0 || w > MaxBlock || h > MaxBlock {
		return ErrInvalidExtent
	}
	if xStepQ4 <= 0 || xStepQ4 > 64 {
		return ErrInvalidStep
	}
	if yStepQ4 <= 0 || yStepQ4 > 64 || (yStepQ4 > 32 && h > 32) {
		return ErrInvalidStep
	}
	return nil
}

// SpanQ4 returns the number of source samples touched by n outputs starting
// at phase x0Q4 with the given step, including the filter support.
func SpanQ4(n, x0Q4, stepQ4 int) int {
	return (((n-1)*stepQ4 + x0Q4) >> SubpelBits) + SubpelTaps
}

func convolveHoriz(src []byte, srcOff, srcStride int, dst []byte, dstOff, dstStride int,
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
			d[x] = Kclip1(RoundPow2(sum, FilterBits))
			xQ4 += xStepQ4
		}
	}
}

func convolveAvgHoriz(src []byte, srcOff, srcStride int, dst []byte, dstOff, dstStride int,
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
			v := Kclip1(RoundPow2(sum, FilterBits))
			d[x] = uint8((int(d[x]) + int(v) + 1) >> 1)
			xQ4 += xStepQ4
		}
	}
}

func convolveVert(src []byte, srcOff, srcStride int, dst []byte, dstOff, dstStride int,
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
			dst[dstOff+y*dstStride+x] = Kclip1(RoundPow2(sum, FilterBits))
			yQ4 += yStepQ4
		}
	}
}

func convolveAvgVert(src []byte, srcOff, srcStride int, dst []byte, dstOff, dstStride int,
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
			v := Kclip1(RoundPow2(sum, FilterBits))
			i := dstOff + y*dstStride + x
			dst[i] = uint8((int(dst[i]) + int(v) + 1) >> 1)
			yQ4 += yStepQ4
		}
	}
}

// ConvolveHoriz filters w x h pixels horizontally into dst.
func ConvolveHoriz(src []byte, srcOff, srcStride int, dst []byte, dstOff, dstStride int,
	k *Kernels, x0Q4, xStepQ4, w, h int) {
	convolveHoriz(src, srcOff, srcStride, dst, dstOff, dstStride, k, x0Q4, xStepQ4, w, h)
}

// ConvolveAvgHoriz filters horizontally and averages with dst.
func ConvolveAvgHoriz(src []byte, srcOff, srcStride int, dst []byte, dstOff, dstStride int,
	k *Kernels, x0Q4, xStepQ4, w, h int) {
	convolveAvgHoriz(src, srcOff, srcStride, dst, dstOff, dstStride, k, x0Q4, xStepQ4, w, h)
}

// ConvolveVert filters w x h pixels vertically into dst.
func ConvolveVert(src []byte, srcOff, srcStride int, dst []byte, dstOff, dstStride int,
	k *Kernels, y0Q4, yStepQ4, w, h int) {
	convolveVert(src, srcOff, srcStride, dst, dstOff, dstStride, k, y0Q4, yStepQ4, w, h)
}

// ConvolveAvgVert filters vertically and averages with dst.
func ConvolveAvgVert(src []byte, srcOff, srcStride int, dst []byte, dstOff, dstStride int,
	k *Kernels, y0Q4, yStepQ4, w, h int) {
	convolveAvgVert(src, srcOff, srcStride, dst, dstOff, dstStride, k, y0Q4, yStepQ4, w, h)
}

// Convolve2D runs the horizontal pass into the scratch intermediate and the
// vertical pass from it into dst.
func Convolve2D(src []byte, srcOff, srcStride int, dst []byte, dstOff, dstStride int,
	k *Kernels, x0Q4, xStepQ4, y0Q4, yStepQ4, w, h int, s *Scratch) error {
	if err := CheckConvolve(w, h, xStepQ4, yStepQ4); err != nil {
		return err
	}
	rows := SpanQ4(h, y0Q4, yStepQ4)
	convolveHoriz(src, srcOff-srcStride*(SubpelTaps/2-1), srcStride,
		s.conv[:], 0, MaxBlock, k, x0Q4, xStepQ4, w, rows)
	convolveVert(s.conv[:], MaxBlock*(SubpelTaps/2-1), MaxBlock,
		dst, dstOff, dstStride, k, y0Q4, yStepQ4, w, h)
	return nil
}

// ConvolveAvg2D runs Convolve2D into scratch and averages the result with dst.
func ConvolveAvg2D(src []byte, srcOff, srcStride int, dst []byte, dstOff, dstStride int,
	k *Kernels, x0Q4, xStepQ4, y0Q4, yStepQ4, w, h int, s *Scratch) error {
	if err := Convolve2D(src, srcOff, srcStride, s.block[:], 0, MaxBlock,
		k, x0Q4, xStepQ4, y0Q4, yStepQ4, w, h, s); err != nil {
		return err
	}
	Average(s.block[:], 0, MaxBlock, dst, dstOff, dstStride, w, h)
	return nil
}

// Copy copies a w x h block.
func Copy(src []byte, srcOff, srcStride int, dst []byte, dstOff, dstStride int, w, h int) {
	for y := 0; y < h; y++ {
		copy(dst[dstOff+y*dstStride:dstOff+y*dstStride+w], src[srcOff+y*srcStride:srcOff+y*srcStride+w])
	}
}

// Average replaces each dst pixel with the rounded mean of dst and src.
func Average(src []byte, srcOff, srcStride int, dst []byte, dstOff, dstStride int, w, h int) {
	for y := 0; y < h; y++ {
		s := src[srcOff+y*srcStride : srcOff+y*srcStride+w]
		d := dst[dstOff+y*dstStride : dstOff+y*dstStride+w]
		for x := range d {
			d[x] = uint8((int(d[x]) + int(s[x]) + 1) >> 1)
		}
	}
}
