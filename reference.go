package vp9sr

import (
	"fmt"

	"github.com/deepteams/vp9sr/internal/dsp"
	"github.com/deepteams/vp9sr/internal/predict"
	"github.com/deepteams/vp9sr/internal/scale"
)

// MV is a motion vector in 1/16 pel of the predicted plane.
type MV = scale.MV

// Routine identifies a prediction routine.
type Routine = predict.Routine

// InterpFilter selects the 8-tap kernel bank of a block.
type InterpFilter int

const (
	FilterRegular InterpFilter = iota
	FilterBilinear
)

func (f InterpFilter) kernels() (*dsp.Kernels, error) {
	switch f {
	case FilterRegular:
		return &dsp.RegularKernels, nil
	case FilterBilinear:
		return &dsp.BilinearKernels, nil
	}
	return nil, fmt.Errorf("%w: filter %d", ErrInvalidConfig, int(f))
}

// InterBlock describes one inter-predicted block of a plane: its position
// and extent in the current frame, its motion vector and whether the result
// is averaged into the prediction already in the destination.
type InterBlock struct {
	X, Y    int
	W, H    int
	MV      MV
	Average bool
	Filter  InterpFilter
}

// RefPredictor predicts blocks of one frame from one reference. It is
// immutable and may be shared between workers.
type RefPredictor struct {
	factors scale.Factors
	table   *predict.Table
}

func newRefPredictor(f scale.Factors, refW, refH, curW, curH int) (*RefPredictor, error) {
	if !f.IsValid() {
		return nil, fmt.Errorf("%w: reference %dx%d for frame %dx%d", ErrInvalidScale, refW, refH, curW, curH)
	}
	t, err := predict.NewTable(f, false)
	if err != nil {
		return nil, err
	}
	return &RefPredictor{factors: f, table: t}, nil
}

// Scaled reports whether the reference differs in size from the frame.
func (rp *RefPredictor) Scaled() bool { return rp.factors.IsScaled() }

// Routine returns the routine a block with the given sub-pel phases uses.
func (rp *RefPredictor) Routine(subpelX, subpelY, average bool) Routine {
	return rp.table.Routine(subpelX, subpelY, average)
}

func (rp *RefPredictor) String() string { return rp.factors.String() }

// PredictBlock writes the motion-compensated prediction of b from ref into
// dst. Reads beyond the reference crop see its replicated edge pixels.
func (w *Worker) PredictBlock(rp *RefPredictor, ref, dst *Plane, b InterBlock) error {
	if err := ref.validate(); err != nil {
		return fmt.Errorf("reference: %w", err)
	}
	if b.X < 0 || b.Y < 0 || b.W <= 0 || b.H <= 0 || b.W > dsp.MaxBlock || b.H > dsp.MaxBlock ||
		b.X+b.W > dst.Stride || !dsp.BlockFits(len(dst.Pix), b.Y*dst.Stride+b.X, dst.Stride, b.W, b.H) {
		return fmt.Errorf("%w: %dx%d at (%d,%d)", ErrInvalidBlock, b.W, b.H, b.X, b.Y)
	}
	k, err := b.Filter.kernels()
	if err != nil {
		return err
	}

	f := rp.factors
	x0, y0 := b.X, b.Y
	mv := scale.MV32{Row: int32(b.MV.Row), Col: int32(b.MV.Col)}
	if f.IsScaled() {
		x0, y0 = f.ScaledX(b.X), f.ScaledY(b.Y)
		mv = f.ScaleMV(b.MV, b.X, b.Y)
	}
	subX := int(mv.Col) & scale.SubpelMask
	subY := int(mv.Row) & scale.SubpelMask
	x0 += int(mv.Col) >> scale.SubpelBits
	y0 += int(mv.Row) >> scale.SubpelBits

	r := rp.table.Routine(subX != 0, subY != 0, b.Average)
	a := predict.Args{
		Dst:       dst.Pix,
		DstOff:    b.Y*dst.Stride + b.X,
		DstStride: dst.Stride,
		W:         b.W,
		H:         b.H,
		Kernels:   k,
		X0Q4:      subX,
		XStepQ4:   f.XStepQ4,
		Y0Q4:      subY,
		YStepQ4:   f.YStepQ4,
		Scratch:   w.scratch,
	}

	// Footprint including the filter support on both axes.
	const border = dsp.SubpelTaps/2 - 1
	left, top := x0-border, y0-border
	cols := dsp.SpanQ4(b.W, subX, f.XStepQ4)
	rows := dsp.SpanQ4(b.H, subY, f.YStepQ4)
	if left >= 0 && top >= 0 && left+cols <= ref.Width && top+rows <= ref.Height {
		a.Src, a.SrcStride = ref.Pix, ref.Stride
		a.SrcOff = y0*ref.Stride + x0
	} else {
		if cols > mcStride || rows > mcRows {
			return fmt.Errorf("%w: footprint %dx%d", ErrBlockTooLarge, cols, rows)
		}
		w.extendEdges(ref, left, top, cols, rows)
		a.Src, a.SrcStride = w.mc, mcStride
		a.SrcOff = border*mcStride + border
	}
	return predict.Execute(r, &a)
}

// extendEdges copies the cols x rows region at (left, top) of ref into the
// worker's edge buffer, clamping coordinates to the crop.
func (w *Worker) extendEdges(ref *Plane, left, top, cols, rows int) {
	for r := 0; r < rows; r++ {
		sy := min(max(top+r, 0), ref.Height-1)
		row := ref.Pix[sy*ref.Stride : sy*ref.Stride+ref.Width]
		out := w.mc[r*mcStride : r*mcStride+cols]
		for c := range out {
			out[c] = row[min(max(left+c, 0), ref.Width-1)]
		}
	}
}
