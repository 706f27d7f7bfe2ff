package dsp

// Sub-pixel convolution constants, in the VP9 convention.
const (
	SubpelBits = 4
	SubpelMask = (1 << SubpelBits) - 1
	SubpelTaps = 8
	FilterBits = 7
)

// InterpKernel is one 8-tap filter; taps sum to 1 << FilterBits.
type InterpKernel [SubpelTaps]int16

// Kernels holds one kernel per 1/16-pel phase.
type Kernels [1 << SubpelBits]InterpKernel

// RegularKernels is the EIGHTTAP (regular) filter bank.
var RegularKernels = Kernels{
	{0, 0, 0, 128, 0, 0, 0, 0},
	{0, 1, -5, 126, 8, -3, 1, 0},
	{-1, 3, -10, 122, 18, -6, 2, 0},
	{-1, 4, -13, 118, 27, -9, 3, -1},
	{-1, 4, -16, 112, 37, -11, 4, -1},
	{-1, 5, -18, 105, 48, -14, 4, -1},
	{-1, 5, -19, 97, 58, -16, 5, -1},
	{-1, 6, -19, 88, 68, -18, 5, -1},
	{-1, 6, -19, 78, 78, -19, 6, -1},
	{-1, 5, -18, 68, 88, -19, 6, -1},
	{-1, 5, -16, 58, 97, -19, 5, -1},
	{-1, 4, -14, 48, 105, -18, 5, -1},
	{-1, 4, -11, 37, 112, -16, 4, -1},
	{-1, 3, -9, 27, 118, -13, 4, -1},
	{0, 2, -6, 18, 122, -10, 3, -1},
	{0, 1, -3, 8, 126, -5, 1, 0},
}

// BilinearKernels is the two-tap filter bank expressed in 8-tap form.
var BilinearKernels = Kernels{
	{0, 0, 0, 128, 0, 0, 0, 0},
	{0, 0, 0, 120, 8, 0, 0, 0},
	{0, 0, 0, 112, 16, 0, 0, 0},
	{0, 0, 0, 104, 24, 0, 0, 0},
	{0, 0, 0, 96, 32, 0, 0, 0},
	{0, 0, 0, 88, 40, 0, 0, 0},
	{0, 0, 0, 80, 48, 0, 0, 0},
	{0, 0, 0, 72, 56, 0, 0, 0},
	{0, 0, 0, 64, 64, 0, 0, 0},
	{0, 0, 0, 56, 72, 0, 0, 0},
	{0, 0, 0, 48, 80, 0, 0, 0},
	{0, 0, 0, 40, 88, 0, 0, 0},
	{0, 0, 0, 32, 96, 0, 0, 0},
	{0, 0, 0, 24, 104, 0, 0, 0},
	{0, 0, 0, 16, 112, 0, 0, 0},
	{0, 0, 0, 8, 120, 0, 0, 0},
}
