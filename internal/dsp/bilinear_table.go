package dsp

import (
	"errors"
	"fmt"
)

// FractionBits is the precision of the bilinear interpolation weights.
const FractionBits = 5

// Supported integer upscale factors. Scale 1 yields an identity table.
const (
	MinScale = 1
	MaxScale = 4
)

// ErrNoTable is returned by TableSet.Lookup for a geometry that was not
// precomputed.
var ErrNoTable = errors.New("dsp: no precomputed bilinear table")

// AxisTable maps each of Extent*Scale output positions along one axis to two
// input positions and a weight. Output i corresponds to the input coordinate
// (i+0.5)/Scale - 0.5; Low and High are its floor and ceiling clamped to
// [0, Extent-1] and Weight is the fractional part in 1/2^FractionBits units.
type AxisTable struct {
	Extent int
	Scale  int
	Low    []int
	High   []int
	Weight []int16
}

// Len returns the number of output positions.
func (a *AxisTable) Len() int { return len(a.Weight) }

// BuildAxis computes the table for one axis. The mapping is evaluated in
// exact integer arithmetic: (2i+1-scale) / (2*scale).
func BuildAxis(extent, scale int) (*AxisTable, error) {
	if scale < MinScale || scale > MaxScale {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedScale, scale)
	}
	if extent <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidExtent, extent)
	}
	n := extent * scale
	a := &AxisTable{
		Extent: extent,
		Scale:  scale,
		Low:    make([]int, n),
		High:   make([]int, n),
		Weight: make([]int16, n),
	}
	den := 2 * scale
	for i := 0; i < n; i++ {
		num := 2*i + 1 - scale
		fl := floorDiv(num, den)
		rem := num - fl*den

		hi := fl
		if rem != 0 {
			hi++
		}
		a.Low[i] = max(fl, 0)
		a.High[i] = min(hi, extent-1)
		a.Weight[i] = int16(((rem << FractionBits) + den/2) / den)
	}
	return a, nil
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Table is the pair of axis tables for a width x height block upscaled by
// Scale. A Table is immutable once built and safe for concurrent reads.
type Table struct {
	Width  int
	Height int
	Scale  int
	X      *AxisTable
	Y      *AxisTable
}

// BuildTable computes the table for a width x height block.
func BuildTable(width, height, scale int) (*Table, error) {
	x, err := BuildAxis(width, scale)
	if err != nil {
		return nil, err
	}
	y := x
	if height != width {
		if y, err = BuildAxis(height, scale); err != nil {
			return nil, err
		}
	}
	return &Table{Width: width, Height: height, Scale: scale, X: x, Y: y}, nil
}

// BuildSquareTable computes the table for an extent x extent block.
func BuildSquareTable(extent, scale int) (*Table, error) {
	return BuildTable(extent, extent, scale)
}

// TableStep is the extent granularity of a TableSet.
const TableStep = 4

type tableKey struct{ w, h, scale int }

// TableSet holds the tables of every width and height in
// [TableStep, maxExtent] that is a multiple of TableStep, for each scale.
// It is built once and only read afterwards.
type TableSet struct {
	maxExtent int
	scales    []int
	tables    map[tableKey]*Table
}

// NewTableSet precomputes the tables. Axis tables are shared between block
// shapes with a common extent.
func NewTableSet(maxExtent int, scales []int) (*TableSet, error) {
	if maxExtent < TableStep {
		return nil, fmt.Errorf("%w: %d", ErrInvalidExtent, maxExtent)
	}
	ts := &TableSet{
		maxExtent: maxExtent,
		scales:    append([]int(nil), scales...),
		tables:    make(map[tableKey]*Table),
	}
	for _, s := range scales {
		axes := make(map[int]*AxisTable)
		for e := TableStep; e <= maxExtent; e += TableStep {
			a, err := BuildAxis(e, s)
			if err != nil {
				return nil, err
			}
			axes[e] = a
		}
		for w := TableStep; w <= maxExtent; w += TableStep {
			for h := TableStep; h <= maxExtent; h += TableStep {
				ts.tables[tableKey{w, h, s}] = &Table{
					Width: w, Height: h, Scale: s,
					X: axes[w], Y: axes[h],
				}
			}
		}
	}
	return ts, nil
}

// Lookup returns the table for a w x h block at the given scale.
func (ts *TableSet) Lookup(w, h, scale int) (*Table, error) {
	t, ok := ts.tables[tableKey{w, h, scale}]
	if !ok {
		return nil, fmt.Errorf("%w: %dx%d scale %d", ErrNoTable, w, h, scale)
	}
	return t, nil
}

// Scales returns the scales the set was built for.
func (ts *TableSet) Scales() []int {
	return append([]int(nil), ts.scales...)
}
