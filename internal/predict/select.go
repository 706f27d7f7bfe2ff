package predict

import (
	"fmt"

	"github.com/deepteams/vp9sr/internal/dsp"
	"github.com/deepteams/vp9sr/internal/scale"
)

// Request describes what a block asks of the predictor.
type Request struct {
	Average  bool // average into an existing prediction (compound)
	SubpelX  bool // horizontal sub-pel phase is nonzero
	SubpelY  bool // vertical sub-pel phase is nonzero
	Residual bool // source is a residual added onto the prediction
}

// blockUpscale reports whether f describes a whole-block 2x, 3x or 4x
// upscale. Such steps lie outside the 8-tap filter design range and go to
// the bilinear engine.
func blockUpscale(f scale.Factors) bool {
	k := f.Factor()
	return k >= 2 && k <= 4
}

// Select returns the routine for req under f. It is total over valid
// factors; invalid factors yield scale.ErrInvalidScale and no routine.
// Upscale factors must describe a whole 2x, 3x or 4x ratio on both axes, or
// none at all: the 8-tap routines would read their steps as a downscale.
func Select(f scale.Factors, req Request) (Routine, error) {
	if !f.IsValid() {
		return None, scale.ErrInvalidScale
	}
	if f.Upscale() && f.Regime() != scale.Unscaled && !blockUpscale(f) {
		return None, fmt.Errorf("%w: %v", dsp.ErrUnsupportedScale, f)
	}
	switch f.Regime() {
	case scale.Unscaled:
		return selectUnscaled(req), nil
	case scale.YScaled:
		switch {
		case req.Residual:
			return ScaledAccumulate2D, nil
		case req.SubpelX:
			return pick(req.Average, Scaled2D, ScaledAvg2D), nil
		}
		return pick(req.Average, ScaledVert, ScaledAvgVert), nil
	case scale.XScaled:
		switch {
		case req.Residual:
			return ScaledAccumulate2D, nil
		case req.SubpelY:
			return pick(req.Average, Scaled2D, ScaledAvg2D), nil
		}
		return pick(req.Average, ScaledHoriz, ScaledAvgHoriz), nil
	case scale.BothScaled:
		if f.Upscale() {
			if req.Residual {
				return BilinearAccumulate2D, nil
			}
			return Bilinear2D, nil
		}
		if req.Residual {
			return ScaledAccumulate2D, nil
		}
		return pick(req.Average, Scaled2D, ScaledAvg2D), nil
	}
	return None, fmt.Errorf("predict: unknown regime %v", f.Regime())
}

func selectUnscaled(req Request) Routine {
	if req.Residual {
		if req.SubpelX || req.SubpelY {
			return Convolve2DAccumulate
		}
		return CopyAccumulate
	}
	switch {
	case req.SubpelX && req.SubpelY:
		return pick(req.Average, Convolve2D, ConvolveAvg2D)
	case req.SubpelX:
		return pick(req.Average, ConvolveHoriz, ConvolveAvgHoriz)
	case req.SubpelY:
		return pick(req.Average, ConvolveVert, ConvolveAvgVert)
	}
	return pick(req.Average, Copy, Average)
}

func pick(avg bool, plain, averaging Routine) Routine {
	if avg {
		return averaging
	}
	return plain
}

// Table is the routine matrix of one reference for one frame, indexed by
// sub-pel presence and averaging. Every cell is filled.
type Table struct {
	factors  scale.Factors
	residual bool
	cells    [2][2][2]Routine
}

// NewTable evaluates Select for every cell. residual selects the
// accumulate routines used when reconstructing residual planes.
func NewTable(f scale.Factors, residual bool) (*Table, error) {
	t := &Table{factors: f, residual: residual}
	for sx := 0; sx < 2; sx++ {
		for sy := 0; sy < 2; sy++ {
			for avg := 0; avg < 2; avg++ {
				r, err := Select(f, Request{
					Average:  avg == 1,
					SubpelX:  sx == 1,
					SubpelY:  sy == 1,
					Residual: residual,
				})
				if err != nil {
					return nil, err
				}
				t.cells[sx][sy][avg] = r
			}
		}
	}
	return t, nil
}

// Routine returns the routine for a block with the given sub-pel phases.
func (t *Table) Routine(subpelX, subpelY, average bool) Routine {
	return t.cells[b2i(subpelX)][b2i(subpelY)][b2i(average)]
}

// Factors returns the scale factors t was built from.
func (t *Table) Factors() scale.Factors { return t.factors }

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
