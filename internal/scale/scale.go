// Package scale computes the fixed-point scale factors between a reference
// frame and the frame being reconstructed, and classifies the scaling regime
// that selects the prediction routine.
package scale

import (
	"errors"
	"fmt"
)

// Fixed-point constants. Scale factors carry RefScaleShift fractional bits;
// positions and steps are in 1/16 pel.
const (
	RefScaleShift   = 14
	RefNoScale      = 1 << RefScaleShift
	RefInvalidScale = -1

	SubpelBits = 4
	SubpelMask = (1 << SubpelBits) - 1

	// UnitStep is one full pixel in q4 units: the step of an unscaled axis.
	UnitStep = 1 << SubpelBits

	// MaxUpscale bounds the ratio accepted by NewUpscale.
	MaxUpscale = 16
)

// ErrInvalidScale is returned when scale factors carry the invalid sentinel.
var ErrInvalidScale = errors.New("scale: invalid scale factors")

// Regime classifies which axes are resampled.
type Regime int

const (
	Unscaled Regime = iota
	YScaled         // x unscaled, y scaled
	XScaled         // x scaled, y unscaled
	BothScaled
)

func (r Regime) String() string {
	switch r {
	case Unscaled:
		return "unscaled"
	case YScaled:
		return "y-scaled"
	case XScaled:
		return "x-scaled"
	case BothScaled:
		return "both-scaled"
	}
	return fmt.Sprintf("Regime(%d)", int(r))
}

// Factors is the scaling relationship of one reference/current frame pair.
// It is computed once per frame setup and is immutable afterwards.
type Factors struct {
	XScaleFP int // reference units per current unit, Q14
	YScaleFP int
	XStepQ4  int // source step per output pixel, 1/16 pel
	YStepQ4  int

	upscale bool
}

// fixedPoint returns (other << RefScaleShift) / this, truncated.
func fixedPoint(other, this int) int {
	return (other << RefScaleShift) / this
}

// validRefSize reports whether a reference may be used to predict the
// current frame: at most 2x larger and at most 16x smaller on each axis.
func validRefSize(refW, refH, curW, curH int) bool {
	return 2*curW >= refW && 2*curH >= refH &&
		curW <= 16*refW && curH <= 16*refH
}

// Invalid returns the invalid-scale sentinel.
func Invalid() Factors {
	return Factors{XScaleFP: RefInvalidScale, YScaleFP: RefInvalidScale}
}

// Identity returns unscaled factors.
func Identity() Factors {
	return Factors{XScaleFP: RefNoScale, YScaleFP: RefNoScale, XStepQ4: UnitStep, YStepQ4: UnitStep}
}

// New computes the factors that map positions of a curW x curH frame into a
// refW x refH reference. An unusable pair yields the invalid sentinel.
func New(refW, refH, curW, curH int) Factors {
	if refW <= 0 || refH <= 0 || curW <= 0 || curH <= 0 || !validRefSize(refW, refH, curW, curH) {
		return Invalid()
	}
	f := Factors{
		XScaleFP: fixedPoint(refW, curW),
		YScaleFP: fixedPoint(refH, curH),
	}
	f.XStepQ4 = f.ScaledX(UnitStep)
	f.YStepQ4 = f.ScaledY(UnitStep)
	return f
}

// NewUpscale computes the factors for reconstructing a highW x highH frame
// from a lowW x lowH one. The steps express the upscale ratio (32 for 2x)
// while the scale factors map high-resolution positions back to the low
// resolution source.
func NewUpscale(lowW, lowH, highW, highH int) Factors {
	if lowW <= 0 || lowH <= 0 || highW < lowW || highH < lowH ||
		highW > MaxUpscale*lowW || highH > MaxUpscale*lowH {
		return Invalid()
	}
	step := Factors{
		XScaleFP: fixedPoint(highW, lowW),
		YScaleFP: fixedPoint(highH, lowH),
	}
	return Factors{
		XScaleFP: fixedPoint(lowW, highW),
		YScaleFP: fixedPoint(lowH, highH),
		XStepQ4:  step.ScaledX(UnitStep),
		YStepQ4:  step.ScaledY(UnitStep),
		upscale:  true,
	}
}

// IsValid reports whether f is not the invalid sentinel.
func (f Factors) IsValid() bool {
	return f.XScaleFP != RefInvalidScale && f.YScaleFP != RefInvalidScale
}

// IsScaled reports whether either scale factor differs from 1.
func (f Factors) IsScaled() bool {
	return f.IsValid() && (f.XScaleFP != RefNoScale || f.YScaleFP != RefNoScale)
}

// Upscale reports whether f was built by NewUpscale.
func (f Factors) Upscale() bool { return f.upscale }

// Regime classifies f by its steps.
func (f Factors) Regime() Regime {
	x, y := f.XStepQ4 != UnitStep, f.YStepQ4 != UnitStep
	switch {
	case x && y:
		return BothScaled
	case x:
		return XScaled
	case y:
		return YScaled
	}
	return Unscaled
}

// Factor returns the integer upscale ratio of upscale factors whose axes
// share one whole-pixel step, and 0 otherwise.
func (f Factors) Factor() int {
	if !f.upscale || !f.IsValid() || f.XStepQ4 != f.YStepQ4 || f.XStepQ4&SubpelMask != 0 {
		return 0
	}
	return f.XStepQ4 >> SubpelBits
}

// ScaledX maps a horizontal position or distance into the reference.
func (f Factors) ScaledX(v int) int {
	if f.XScaleFP == RefNoScale {
		return v
	}
	return int(int64(v) * int64(f.XScaleFP) >> RefScaleShift)
}

// ScaledY maps a vertical position or distance into the reference.
func (f Factors) ScaledY(v int) int {
	if f.YScaleFP == RefNoScale {
		return v
	}
	return int(int64(v) * int64(f.YScaleFP) >> RefScaleShift)
}

func (f Factors) String() string {
	if !f.IsValid() {
		return "scale{invalid}"
	}
	return fmt.Sprintf("scale{fp=%d/%d step=%d/%d %s}", f.XScaleFP, f.YScaleFP, f.XStepQ4, f.YStepQ4, f.Regime())
}
