package vp9sr

import "fmt"

// Plane is one 8-bit sample plane. Width and Height are the visible (crop)
// extent; rows are Stride bytes apart.
type Plane struct {
	Pix    []byte
	Stride int
	Width  int
	Height int
}

// ResidualPlane is one plane of signed 16-bit residuals.
type ResidualPlane struct {
	Res    []int16
	Stride int
	Width  int
	Height int
}

// Frame is a three-plane 4:2:0, 4:2:2 or 4:4:4 picture. The buffers belong
// to the caller; nothing in this package reallocates them.
type Frame struct {
	Planes       [3]Plane
	SubsamplingX int
	SubsamplingY int
}

// ResidualFrame holds the residual planes of one decoded frame.
type ResidualFrame struct {
	Planes       [3]ResidualPlane
	SubsamplingX int
	SubsamplingY int
}

// planeSize returns the extent of plane p of a width x height picture.
func planeSize(width, height, ssx, ssy, p int) (int, int) {
	if p == 0 {
		return width, height
	}
	return (width + ssx) >> ssx, (height + ssy) >> ssy
}

// NewFrame allocates a frame with tightly packed planes.
func NewFrame(width, height, ssx, ssy int) *Frame {
	f := &Frame{SubsamplingX: ssx, SubsamplingY: ssy}
	for p := range f.Planes {
		w, h := planeSize(width, height, ssx, ssy, p)
		f.Planes[p] = Plane{Pix: make([]byte, w*h), Stride: w, Width: w, Height: h}
	}
	return f
}

// NewResidualFrame allocates a residual frame with tightly packed planes.
func NewResidualFrame(width, height, ssx, ssy int) *ResidualFrame {
	f := &ResidualFrame{SubsamplingX: ssx, SubsamplingY: ssy}
	for p := range f.Planes {
		w, h := planeSize(width, height, ssx, ssy, p)
		f.Planes[p] = ResidualPlane{Res: make([]int16, w*h), Stride: w, Width: w, Height: h}
	}
	return f
}

// Width returns the luma crop width.
func (f *Frame) Width() int { return f.Planes[0].Width }

// Height returns the luma crop height.
func (f *Frame) Height() int { return f.Planes[0].Height }

func (p *Plane) validate() error {
	if p.Width <= 0 || p.Height <= 0 || p.Stride < p.Width ||
		len(p.Pix) < (p.Height-1)*p.Stride+p.Width {
		return fmt.Errorf("%w: %dx%d stride %d len %d", ErrInvalidFrame, p.Width, p.Height, p.Stride, len(p.Pix))
	}
	return nil
}

func (p *ResidualPlane) validate() error {
	if p.Width <= 0 || p.Height <= 0 || p.Stride < p.Width ||
		len(p.Res) < (p.Height-1)*p.Stride+p.Width {
		return fmt.Errorf("%w: residual %dx%d stride %d len %d", ErrInvalidFrame, p.Width, p.Height, p.Stride, len(p.Res))
	}
	return nil
}

func validSubsampling(ssx, ssy int) bool {
	return ssx >= 0 && ssx <= 1 && ssy >= 0 && ssy <= 1
}

// Validate checks every plane against its declared geometry.
func (f *Frame) Validate() error {
	if !validSubsampling(f.SubsamplingX, f.SubsamplingY) {
		return fmt.Errorf("%w: subsampling %d,%d", ErrInvalidFrame, f.SubsamplingX, f.SubsamplingY)
	}
	for i := range f.Planes {
		if err := f.Planes[i].validate(); err != nil {
			return fmt.Errorf("plane %d: %w", i, err)
		}
	}
	return nil
}

// Validate checks every plane against its declared geometry.
func (f *ResidualFrame) Validate() error {
	if !validSubsampling(f.SubsamplingX, f.SubsamplingY) {
		return fmt.Errorf("%w: subsampling %d,%d", ErrInvalidFrame, f.SubsamplingX, f.SubsamplingY)
	}
	for i := range f.Planes {
		if err := f.Planes[i].validate(); err != nil {
			return fmt.Errorf("plane %d: %w", i, err)
		}
	}
	return nil
}
