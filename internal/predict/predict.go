package predict

import (
	"errors"
	"fmt"

	"github.com/deepteams/vp9sr/internal/dsp"
)

// ErrMissingInput is returned when Args lacks a buffer, kernel bank, table
// or scratch that the routine needs.
var ErrMissingInput = errors.New("predict: missing routine input")

// Args carries the operands of one routine call. Pixel routines read Src;
// residual routines read Res with the same offset and stride. Positions and
// steps are in 1/16 pel.
type Args struct {
	Src       []byte
	Res       []int16
	SrcOff    int
	SrcStride int

	Dst       []byte
	DstOff    int
	DstStride int

	W, H int

	Kernels *dsp.Kernels
	X0Q4    int
	XStepQ4 int
	Y0Q4    int
	YStepQ4 int

	// Table and Scratch serve the bilinear and 2-D routines.
	Table   *dsp.Table
	Scratch *dsp.Scratch
}

// Execute runs r on a. Geometry is validated before any write, so a failed
// call leaves the destination untouched.
func Execute(r Routine, a *Args) error {
	if err := check(r, a); err != nil {
		return fmt.Errorf("predict: %v: %w", r, err)
	}
	var err error
	switch r {
	case Copy:
		dsp.Copy(a.Src, a.SrcOff, a.SrcStride, a.Dst, a.DstOff, a.DstStride, a.W, a.H)
	case Average:
		dsp.Average(a.Src, a.SrcOff, a.SrcStride, a.Dst, a.DstOff, a.DstStride, a.W, a.H)
	case ConvolveVert, ScaledVert:
		dsp.ConvolveVert(a.Src, a.SrcOff, a.SrcStride, a.Dst, a.DstOff, a.DstStride,
			a.Kernels, a.Y0Q4, a.YStepQ4, a.W, a.H)
	case ConvolveAvgVert, ScaledAvgVert:
		dsp.ConvolveAvgVert(a.Src, a.SrcOff, a.SrcStride, a.Dst, a.DstOff, a.DstStride,
			a.Kernels, a.Y0Q4, a.YStepQ4, a.W, a.H)
	case ConvolveHoriz, ScaledHoriz:
		dsp.ConvolveHoriz(a.Src, a.SrcOff, a.SrcStride, a.Dst, a.DstOff, a.DstStride,
			a.Kernels, a.X0Q4, a.XStepQ4, a.W, a.H)
	case ConvolveAvgHoriz, ScaledAvgHoriz:
		dsp.ConvolveAvgHoriz(a.Src, a.SrcOff, a.SrcStride, a.Dst, a.DstOff, a.DstStride,
			a.Kernels, a.X0Q4, a.XStepQ4, a.W, a.H)
	case Convolve2D, Scaled2D:
		err = dsp.Convolve2D(a.Src, a.SrcOff, a.SrcStride, a.Dst, a.DstOff, a.DstStride,
			a.Kernels, a.X0Q4, a.XStepQ4, a.Y0Q4, a.YStepQ4, a.W, a.H, a.Scratch)
	case ConvolveAvg2D, ScaledAvg2D:
		err = dsp.ConvolveAvg2D(a.Src, a.SrcOff, a.SrcStride, a.Dst, a.DstOff, a.DstStride,
			a.Kernels, a.X0Q4, a.XStepQ4, a.Y0Q4, a.YStepQ4, a.W, a.H, a.Scratch)
	case Bilinear2D:
		err = dsp.ResampleBlock(a.Src, a.SrcOff, a.SrcStride, a.Dst, a.DstOff, a.DstStride,
			a.W, a.H, a.Table, dsp.Overwrite, a.Scratch)
	case BilinearAccumulate2D:
		err = dsp.ResampleBlock(a.Res, a.SrcOff, a.SrcStride, a.Dst, a.DstOff, a.DstStride,
			a.W, a.H, a.Table, dsp.Accumulate, a.Scratch)
	case CopyAccumulate:
		dsp.CopyAdd(a.Res, a.SrcOff, a.SrcStride, a.Dst, a.DstOff, a.DstStride, a.W, a.H)
	case Convolve2DAccumulate, ScaledAccumulate2D:
		err = dsp.Convolve2DAccumulate(a.Res, a.SrcOff, a.SrcStride, a.Dst, a.DstOff, a.DstStride,
			a.Kernels, a.X0Q4, a.XStepQ4, a.Y0Q4, a.YStepQ4, a.W, a.H, a.Scratch)
	default:
		return fmt.Errorf("predict: unknown routine %v", r)
	}
	if err != nil {
		return fmt.Errorf("predict: %v: %w", r, err)
	}
	return nil
}

// filters reports which axes r runs the 8-tap filter over.
func filters(r Routine) (x, y bool) {
	switch r {
	case ConvolveVert, ConvolveAvgVert, ScaledVert, ScaledAvgVert:
		return false, true
	case ConvolveHoriz, ConvolveAvgHoriz, ScaledHoriz, ScaledAvgHoriz:
		return true, false
	case Convolve2D, ConvolveAvg2D, Scaled2D, ScaledAvg2D,
		Convolve2DAccumulate, ScaledAccumulate2D:
		return true, true
	}
	return false, false
}

func check(r Routine, a *Args) error {
	if r == None || r >= numRoutines {
		return fmt.Errorf("unknown routine %d", uint8(r))
	}
	if a == nil {
		return ErrMissingInput
	}
	if r.Bilinear() {
		// Geometry is validated by the resampler itself.
		if a.Table == nil || a.Scratch == nil {
			return ErrMissingInput
		}
		return nil
	}
	if a.W <= 0 || a.H <= 0 || a.W > dsp.MaxBlock || a.H > dsp.MaxBlock {
		return dsp.ErrInvalidExtent
	}
	if !dsp.BlockFits(len(a.Dst), a.DstOff, a.DstStride, a.W, a.H) {
		return fmt.Errorf("%w: destination", dsp.ErrBufferTooSmall)
	}

	fx, fy := filters(r)
	if fx || fy {
		if a.Kernels == nil {
			return ErrMissingInput
		}
	}
	if fx && fy {
		if a.Scratch == nil {
			return ErrMissingInput
		}
		if err := dsp.CheckConvolve(a.W, a.H, a.XStepQ4, a.YStepQ4); err != nil {
			return err
		}
	}
	if (fx && a.XStepQ4 <= 0) || (fy && a.YStepQ4 <= 0) {
		return dsp.ErrInvalidStep
	}
	if (fx && (a.X0Q4 < 0 || a.X0Q4 > dsp.SubpelMask)) || (fy && (a.Y0Q4 < 0 || a.Y0Q4 > dsp.SubpelMask)) {
		return dsp.ErrInvalidStep
	}

	// Source footprint, including the filter support around each axis.
	left, cols := 0, a.W
	if fx {
		left, cols = dsp.SubpelTaps/2-1, dsp.SpanQ4(a.W, a.X0Q4, a.XStepQ4)
	}
	top, rows := 0, a.H
	if fy {
		top, rows = dsp.SubpelTaps/2-1, dsp.SpanQ4(a.H, a.Y0Q4, a.YStepQ4)
	}
	n := len(a.Src)
	if r.Residual() {
		n = len(a.Res)
	}
	if !dsp.BlockFits(n, a.SrcOff-top*a.SrcStride-left, a.SrcStride, cols, rows) {
		return fmt.Errorf("%w: source", dsp.ErrBufferTooSmall)
	}
	return nil
}
