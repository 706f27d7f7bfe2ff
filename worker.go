package vp9sr

import (
	"errors"
	"fmt"

	"github.com/deepteams/vp9sr/cachereset"
	"github.com/deepteams/vp9sr/internal/dsp"
	"github.com/deepteams/vp9sr/internal/predict"
	"github.com/deepteams/vp9sr/internal/scale"
)

// Edge-extension buffer of PredictBlock. It covers the footprint of a 64x64
// block at the largest reference step.
const (
	mcStride = 272
	mcRows   = 272
)

type tableKey struct{ w, h, scale int }

// Worker is the per-thread decode state: its cache-reset profile, kernel
// scratch and the blocks recorded for interpolation. A Worker must not be
// used by more than one goroutine at a time.
type Worker struct {
	index   int
	session *Session
	profile *cachereset.Profile
	scratch *dsp.Scratch
	mc      []byte

	// Tables for edge blocks whose extents the session set does not hold.
	local map[tableKey]*dsp.Table

	// Intra holds blocks regenerated from decoded low-resolution pixels,
	// Inter blocks whose residual is added onto the high-resolution frame.
	Intra BlockList
	Inter BlockList
}

func newWorker(s *Session, index int) *Worker {
	return &Worker{
		index:   index,
		session: s,
		scratch: dsp.NewScratch(),
		mc:      make([]byte, mcStride*mcRows),
		local:   make(map[tableKey]*dsp.Table),
	}
}

// Index returns the worker's position in the session.
func (w *Worker) Index() int { return w.index }

// ResetBlocks empties both block lists.
func (w *Worker) ResetBlocks() {
	w.Intra.Reset()
	w.Inter.Reset()
}

func (w *Worker) table(width, height, k int) (*dsp.Table, error) {
	t, err := w.session.tables.Lookup(width, height, k)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, dsp.ErrNoTable) {
		return nil, err
	}
	key := tableKey{width, height, k}
	if t, ok := w.local[key]; ok {
		return t, nil
	}
	t, err = dsp.BuildTable(width, height, k)
	if err != nil {
		return nil, err
	}
	w.local[key] = t
	return t, nil
}

// cacheActive reports whether the worker has a live profile for mode.
func (w *Worker) cacheActive(mode CacheMode) bool {
	return w.profile != nil && w.session.cfg.CacheMode == mode && w.session.cacheReset.Load()
}

func (w *Worker) fail(err error) error {
	err = fmt.Errorf("worker %d: %w", w.index, err)
	w.session.disableCacheReset(err)
	return err
}

// StartSegment loads the next recorded segment when playing back a profile.
// Otherwise it does nothing.
func (w *Worker) StartSegment() error {
	if !w.cacheActive(ApplyCacheReset) {
		return nil
	}
	if err := w.profile.ReadSegment(); err != nil {
		return w.fail(err)
	}
	return nil
}

// ShouldReset returns the next recorded reset decision. Without an active
// profile it never asks for a reset.
func (w *Worker) ShouldReset() (bool, error) {
	if !w.cacheActive(ApplyCacheReset) {
		return false, nil
	}
	reset, err := w.profile.ReadBit()
	if err != nil {
		return false, w.fail(err)
	}
	return reset, nil
}

// RecordReset appends a reset decision when recording a profile.
func (w *Worker) RecordReset(reset bool) error {
	if !w.cacheActive(ProfileCacheReset) {
		return nil
	}
	if err := w.profile.WriteBit(reset); err != nil {
		return w.fail(err)
	}
	return nil
}

// RecordResidual decides whether the width x height residual block at
// (x, y) is large enough to invalidate the cached high-resolution pixels,
// and records the decision.
func (w *Worker) RecordResidual(res *ResidualPlane, x, y, width, height int) (bool, error) {
	if x < 0 || y < 0 || width <= 0 || height <= 0 || x+width > res.Stride ||
		!dsp.BlockFits(len(res.Res), y*res.Stride+x, res.Stride, width, height) {
		return false, fmt.Errorf("%w: residual %dx%d at (%d,%d)", ErrInvalidBlock, width, height, x, y)
	}
	reset := dsp.SumAbs16(res.Res, y*res.Stride+x, res.Stride, width, height) > w.session.cfg.ResetThreshold
	return reset, w.RecordReset(reset)
}

// FinishSegment writes the decisions recorded since the last segment.
func (w *Worker) FinishSegment() error {
	if !w.cacheActive(ProfileCacheReset) {
		return nil
	}
	if err := w.profile.WriteSegment(); err != nil {
		return w.fail(err)
	}
	return nil
}

// InterpolateIntra upscales the Intra blocks of lr into hr.
func (w *Worker) InterpolateIntra(lr, hr *Frame) error {
	if err := lr.Validate(); err != nil {
		return err
	}
	return w.interpolate(w.Intra.Blocks(), lr, nil, hr)
}

// InterpolateInter upscales the residual of the Inter blocks and adds it to
// the prediction already in hr.
func (w *Worker) InterpolateInter(res *ResidualFrame, hr *Frame) error {
	if err := res.Validate(); err != nil {
		return err
	}
	return w.interpolate(w.Inter.Blocks(), nil, res, hr)
}

// interpolate runs the upscale routine over blocks. Exactly one of lr and
// res is set.
func (w *Worker) interpolate(blocks []InterpBlock, lr *Frame, res *ResidualFrame, hr *Frame) error {
	if err := hr.Validate(); err != nil {
		return err
	}
	var lowW, lowH, ssx, ssy int
	if lr != nil {
		lowW, lowH, ssx, ssy = lr.Width(), lr.Height(), lr.SubsamplingX, lr.SubsamplingY
	} else {
		lowW, lowH, ssx, ssy = res.Planes[0].Width, res.Planes[0].Height, res.SubsamplingX, res.SubsamplingY
	}
	if ssx != hr.SubsamplingX || ssy != hr.SubsamplingY {
		return fmt.Errorf("%w: subsampling mismatch", ErrInvalidFrame)
	}

	f := scale.NewUpscale(lowW, lowH, hr.Width(), hr.Height())
	if !f.IsValid() {
		return fmt.Errorf("%w: %dx%d to %dx%d", ErrInvalidScale, lowW, lowH, hr.Width(), hr.Height())
	}
	r, err := predict.Select(f, predict.Request{Residual: res != nil})
	if err != nil {
		return err
	}
	k := f.Factor()

	for i := range blocks {
		b := &blocks[i]
		for p := 0; p < 3; p++ {
			if err := w.interpolateBlock(r, k, b, p, lr, res, hr); err != nil {
				return fmt.Errorf("block (%d,%d) plane %d: %w", b.MIRow, b.MICol, p, err)
			}
		}
	}
	return nil
}

func (w *Worker) interpolateBlock(r predict.Routine, k int, b *InterpBlock, p int, lr *Frame, res *ResidualFrame, hr *Frame) error {
	sx, sy := 0, 0
	if p > 0 {
		sx, sy = hr.SubsamplingX, hr.SubsamplingY
	}
	x := (b.MICol * MISize) >> sx
	y := (b.MIRow * MISize) >> sy
	bw, bh := b.N4W[p]*4, b.N4H[p]*4

	a := predict.Args{Scratch: w.scratch}
	var cropW, cropH int
	if lr != nil {
		pl := &lr.Planes[p]
		a.Src, a.SrcStride = pl.Pix, pl.Stride
		cropW, cropH = pl.Width, pl.Height
	} else {
		pl := &res.Planes[p]
		a.Res, a.SrcStride = pl.Res, pl.Stride
		cropW, cropH = pl.Width, pl.Height
	}
	// Blocks straddling the frame edge are cropped; chroma extents left
	// unset by SetPlane are skipped.
	if bw <= 0 || bh <= 0 || x >= cropW || y >= cropH {
		return nil
	}
	bw = min(bw, cropW-x)
	bh = min(bh, cropH-y)

	dst := &hr.Planes[p]
	a.SrcOff = y*a.SrcStride + x
	a.Dst, a.DstStride = dst.Pix, dst.Stride
	a.DstOff = y*k*dst.Stride + x*k
	a.W, a.H = bw, bh
	if r.Bilinear() {
		t, err := w.table(bw, bh, k)
		if err != nil {
			return err
		}
		a.Table = t
	}
	return predict.Execute(r, &a)
}
