package scale

// MV is a motion vector in 1/16 pel of the plane it predicts. Luma vectors
// are decoded in 1/8 pel and doubled; chroma vectors keep their precision.
type MV struct {
	Row, Col int16
}

// MV32 is a motion vector scaled into the reference, in 1/16 pel.
type MV32 struct {
	Row, Col int32
}

// ScaleMV scales mv for the block at pixel position (x, y) and adds the
// sub-pel phase the block position itself acquires in the reference.
func (f Factors) ScaleMV(mv MV, x, y int) MV32 {
	xOffQ4 := f.ScaledX(x<<SubpelBits) & SubpelMask
	yOffQ4 := f.ScaledY(y<<SubpelBits) & SubpelMask
	return MV32{
		Row: int32(f.ScaledY(int(mv.Row)) + yOffQ4),
		Col: int32(f.ScaledX(int(mv.Col)) + xOffQ4),
	}
}
