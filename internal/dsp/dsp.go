package dsp

import (
	"errors"

	"golang.org/x/sys/cpu"
)

// Errors returned by the resampling and convolution entry points. They are
// precondition failures: the destination is left untouched.
var (
	ErrUnsupportedScale = errors.New("dsp: unsupported scale")
	ErrInvalidExtent    = errors.New("dsp: invalid block extent")
	ErrBlockTooLarge    = errors.New("dsp: block exceeds scratch capacity")
	ErrTableMismatch    = errors.New("dsp: table does not match block size")
	ErrBufferTooSmall   = errors.New("dsp: buffer too small for block")
	ErrInvalidStep      = errors.New("dsp: convolution step out of range")
)

// Bilinear pass function variables. Init sets them to the scalar
// implementations and switches to the unrolled variants on hosts with wide
// vector units, where the compiler schedules them better. Both variants
// produce identical output.
var (
	horizPass8  func(src []uint8, srcOff, srcStride int, tmp []int16, w, h int, x *AxisTable)
	horizPass16 func(src []int16, srcOff, srcStride int, tmp []int16, w, h int, x *AxisTable)
	vertPass    func(tmp []int16, dst []byte, dstOff, dstStride, w int, y *AxisTable, accumulate bool)
)

// unrolled reports whether the unrolled bilinear passes are in use.
var unrolled bool

// Init initialises the pass function variables. It runs from the package
// init and may be called again to restore the defaults.
func Init() {
	initClipTables()

	horizPass8 = horizPassScalar[uint8]
	horizPass16 = horizPassScalar[int16]
	vertPass = vertPassScalar
	unrolled = false

	if cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD {
		horizPass8 = horizPassPairs[uint8]
		horizPass16 = horizPassPairs[int16]
		vertPass = vertPassQuad
		unrolled = true
	}
}

// Unrolled reports whether Init selected the unrolled bilinear passes.
func Unrolled() bool { return unrolled }

func init() {
	Init()
}
