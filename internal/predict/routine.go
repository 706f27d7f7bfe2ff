// Package predict selects and runs the pixel reconstruction routine for a
// predicted block. Selection is a pure function of the frame's scale factors
// and the block's sub-pel phases; execution is a single switch over the
// routine catalog.
package predict

import "fmt"

// Routine identifies one reconstruction kernel.
type Routine uint8

const (
	// None is the zero value and never selected.
	None Routine = iota

	Copy
	Average

	ConvolveVert
	ConvolveAvgVert
	ConvolveHoriz
	ConvolveAvgHoriz
	Convolve2D
	ConvolveAvg2D

	ScaledVert
	ScaledAvgVert
	ScaledHoriz
	ScaledAvgHoriz
	Scaled2D
	ScaledAvg2D

	Bilinear2D
	BilinearAccumulate2D

	// Residual routines add a filtered int16 residual into the prediction.
	CopyAccumulate
	Convolve2DAccumulate
	ScaledAccumulate2D

	numRoutines
)

var routineNames = [numRoutines]string{
	None:                 "none",
	Copy:                 "copy",
	Average:              "avg",
	ConvolveVert:         "convolve8_vert",
	ConvolveAvgVert:      "convolve8_avg_vert",
	ConvolveHoriz:        "convolve8_horiz",
	ConvolveAvgHoriz:     "convolve8_avg_horiz",
	Convolve2D:           "convolve8",
	ConvolveAvg2D:        "convolve8_avg",
	ScaledVert:           "scaled_vert",
	ScaledAvgVert:        "scaled_avg_vert",
	ScaledHoriz:          "scaled_horiz",
	ScaledAvgHoriz:       "scaled_avg_horiz",
	Scaled2D:             "scaled_2d",
	ScaledAvg2D:          "scaled_avg_2d",
	Bilinear2D:           "bilinear_2d",
	BilinearAccumulate2D: "bilinear_accumulate_2d",
	CopyAccumulate:       "copy_add",
	Convolve2DAccumulate: "convolve8_add",
	ScaledAccumulate2D:   "scaled_add_2d",
}

func (r Routine) String() string {
	if r < numRoutines {
		return routineNames[r]
	}
	return fmt.Sprintf("Routine(%d)", uint8(r))
}

// Residual reports whether r consumes an int16 residual source.
func (r Routine) Residual() bool {
	switch r {
	case BilinearAccumulate2D, CopyAccumulate, Convolve2DAccumulate, ScaledAccumulate2D:
		return true
	}
	return false
}

// Bilinear reports whether r runs the bilinear upscaling engine.
func (r Routine) Bilinear() bool {
	return r == Bilinear2D || r == BilinearAccumulate2D
}
