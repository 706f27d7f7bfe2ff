package dsp

// Scratch capacity of the bilinear engine: the horizontal pass output of a
// block must fit TempStride columns by TempRows rows.
const (
	TempStride = 256
	TempRows   = 256
)

// Convolution intermediate sizes. 135 rows cover (64-1)*32+15 >> 4 plus the
// filter support, the largest intermediate allowed by the step limits.
const (
	MaxBlock     = 64
	convTempRows = 64 + 71
)

// Scratch holds the per-worker intermediate buffers of the pixel kernels.
// A Scratch must not be shared between goroutines.
type Scratch struct {
	bilinear [TempStride * TempRows]int16
	conv     [MaxBlock * convTempRows]uint8
	conv16   [MaxBlock * convTempRows]int16
	block    [MaxBlock * MaxBlock]uint8
	block16  [MaxBlock * MaxBlock]int16
}

// NewScratch allocates a Scratch.
func NewScratch() *Scratch {
	return new(Scratch)
}
