// Package vp9sr is the super-resolution core of a VP9 decoder. It
// reconstructs high-resolution frames from a low-resolution stream by
// combining model inference on selected frames with cheap bilinear
// interpolation of the blocks that change in between.
//
// The package provides:
//   - Reference scaling and per-block inter prediction (8-tap, scaled and
//     averaging variants)
//   - Block-wise bilinear upscaling of decoded pixels and residuals by 2x,
//     3x and 4x from precomputed fixed-point tables
//   - Cache-reset profiles recording, per worker, which blocks must be
//     regenerated, optionally zstd-compressed
//   - An inference hook that falls back to bilinear when the model fails
//   - A parallel driver that keeps each worker on one goroutine
//
// Basic usage:
//
//	s, err := vp9sr.NewSession(&vp9sr.Config{
//		DecodeMode: vp9sr.DecodeCache,
//		CacheMode:  vp9sr.ApplyCacheReset,
//		ProfileDir: dir,
//		NumWorkers: 4,
//		Scales:     []int{2, 3, 4},
//	})
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//	err = s.Run(tiles, func(w *vp9sr.Worker, tile int) error {
//		// decode tile, then:
//		return w.InterpolateIntra(lr, hr)
//	})
package vp9sr
