// Package dsp provides the pixel reconstruction kernels of the decoder:
// 8-tap sub-pixel convolution, fixed-point bilinear upscaling and residual
// helpers. This file contains the clip lookup table used on the convolution
// paths, where the filtered value range is known in advance.
package dsp

// clip1 covers every value an 8-tap pass over 8-bit input can produce after
// rounding ([-80, 335] for the regular kernels) with room to spare.
var clip1 [255 + 511 + 1]uint8 // clips [-255, 511] to [0, 255]

const clip1Offset = 255

// Kclip1 returns the value of v clipped to [0, 255]. v must lie in [-255, 511].
func Kclip1(v int) uint8 { return clip1[clip1Offset+v] }

// Clip8b clips v to the range [0, 255].
// Uses unsigned comparison for single-branch hot path when v is in [0, 255].
func Clip8b(v int) uint8 {
	if uint(v) <= 255 {
		return uint8(v)
	}
	// Arithmetic right shift: v>>63 is 0 for positive, -1 for negative.
	return uint8(^(v >> 63) & 255)
}

// RoundPow2 returns v / 2^n rounded half up. Negative values use an
// arithmetic shift, so -0.5 rounds towards zero.
func RoundPow2(v, n int) int {
	return (v + (1 << (n - 1))) >> n
}

func initClipTables() {
	for i := -255; i <= 511; i++ {
		v := i
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		clip1[clip1Offset+i] = uint8(v)
	}
}
