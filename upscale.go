package vp9sr

import (
	"fmt"
	"sync/atomic"

	"github.com/deepteams/vp9sr/internal/dsp"
	"github.com/deepteams/vp9sr/internal/pool"
	"github.com/deepteams/vp9sr/internal/predict"
	"github.com/deepteams/vp9sr/internal/scale"
)

// Shape is the layout of a tensor exchanged with an inference backend:
// Height rows of Width pixels of Channels values, row-major.
type Shape struct {
	Height   int
	Width    int
	Channels int
}

// Len returns the number of values in a tensor of shape s.
func (s Shape) Len() int { return s.Height * s.Width * s.Channels }

// Inferencer runs a super-resolution model. Input values are normalized
// to [0, 1]; the output must hold the upscaled plane in the same layout.
// The input slice is only valid for the duration of the call.
type Inferencer interface {
	Infer(input []float32, shape Shape) ([]float32, error)
}

// Upscaler produces high-resolution planes with an inference backend and
// falls back to the bilinear engine when the backend fails.
type Upscaler struct {
	session *Session
	backend Inferencer

	inferred  atomic.Int64
	fallbacks atomic.Int64
}

// NewUpscaler returns an Upscaler using backend. A nil backend, or a decode
// mode that does not use inference, upscales every plane bilinearly.
func (s *Session) NewUpscaler(backend Inferencer) *Upscaler {
	return &Upscaler{session: s, backend: backend}
}

// Inferred returns how many planes the backend produced.
func (u *Upscaler) Inferred() int64 { return u.inferred.Load() }

// Fallbacks returns how many planes fell back to bilinear after a backend
// failure.
func (u *Upscaler) Fallbacks() int64 { return u.fallbacks.Load() }

// UpscaleFrame upscales every plane of lr by k into hr. It reports whether
// all planes came from the backend.
func (u *Upscaler) UpscaleFrame(w *Worker, lr, hr *Frame, k int) (bool, error) {
	if err := lr.Validate(); err != nil {
		return false, err
	}
	if lr.SubsamplingX != hr.SubsamplingX || lr.SubsamplingY != hr.SubsamplingY {
		return false, fmt.Errorf("%w: subsampling mismatch", ErrInvalidFrame)
	}
	all := true
	for p := range lr.Planes {
		ok, err := u.UpscalePlane(w, &lr.Planes[p], &hr.Planes[p], k)
		if err != nil {
			return false, fmt.Errorf("plane %d: %w", p, err)
		}
		all = all && ok
	}
	return all, nil
}

// UpscalePlane upscales src by k into the top-left src.Width*k x
// src.Height*k region of dst. It reports whether the backend produced the
// result. Backend failures are logged and never returned.
func (u *Upscaler) UpscalePlane(w *Worker, src, dst *Plane, k int) (bool, error) {
	if err := src.validate(); err != nil {
		return false, err
	}
	if k < dsp.MinScale || k > dsp.MaxScale {
		return false, fmt.Errorf("%w: %d", ErrUnsupportedScale, k)
	}
	if dst.Stride < src.Width*k || !dsp.BlockFits(len(dst.Pix), 0, dst.Stride, src.Width*k, src.Height*k) {
		return false, fmt.Errorf("%w: destination too small for %dx upscale", ErrInvalidFrame, k)
	}

	if u.backend != nil && u.session.cfg.DecodeMode.UsesInference() {
		err := u.infer(src, dst, k)
		if err == nil {
			u.inferred.Add(1)
			return true, nil
		}
		u.fallbacks.Add(1)
		u.session.logger.Warn("inference failed, upscaling bilinearly",
			"worker", w.index, "width", src.Width, "height", src.Height, "scale", k, "err", err)
	}
	return false, w.upscaleBilinear(src, dst, k)
}

func (u *Upscaler) infer(src, dst *Plane, k int) error {
	in := Shape{Height: src.Height, Width: src.Width, Channels: 1}
	buf := pool.GetFloat32(in.Len())
	defer pool.PutFloat32(buf)
	for y := 0; y < src.Height; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+src.Width]
		out := buf[y*src.Width : (y+1)*src.Width]
		for x, v := range row {
			out[x] = float32(v) * (1.0 / 255)
		}
	}

	res, err := u.backend.Infer(buf, in)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInferenceFailed, err)
	}
	ow, oh := src.Width*k, src.Height*k
	if len(res) != ow*oh {
		return fmt.Errorf("%w: output has %d values, want %d", ErrInferenceFailed, len(res), ow*oh)
	}
	for y := 0; y < oh; y++ {
		row := res[y*ow : (y+1)*ow]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+ow]
		for x, v := range row {
			out[x] = toPixel(v)
		}
	}
	return nil
}

// toPixel maps a normalized sample back to 8 bits. NaN maps to 0.
func toPixel(v float32) byte {
	v = v*255 + 0.5
	if !(v > 0) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v)
}

// upscaleBilinear upscales src tile by tile. Tiles are at most
// MaxBlockExtent square so they fit the bilinear scratch at every scale.
func (w *Worker) upscaleBilinear(src, dst *Plane, k int) error {
	f := scale.NewUpscale(src.Width, src.Height, src.Width*k, src.Height*k)
	r, err := predict.Select(f, predict.Request{})
	if err != nil {
		return err
	}
	a := predict.Args{
		Src:       src.Pix,
		SrcStride: src.Stride,
		Dst:       dst.Pix,
		DstStride: dst.Stride,
		Scratch:   w.scratch,
	}
	for ty := 0; ty < src.Height; ty += MaxBlockExtent {
		th := min(MaxBlockExtent, src.Height-ty)
		for tx := 0; tx < src.Width; tx += MaxBlockExtent {
			tw := min(MaxBlockExtent, src.Width-tx)
			a.SrcOff = ty*src.Stride + tx
			a.DstOff = ty*k*dst.Stride + tx*k
			a.W, a.H = tw, th
			a.Table = nil
			if r.Bilinear() {
				if a.Table, err = w.table(tw, th, k); err != nil {
					return err
				}
			}
			if err := predict.Execute(r, &a); err != nil {
				return fmt.Errorf("tile (%d,%d): %w", tx, ty, err)
			}
		}
	}
	return nil
}
