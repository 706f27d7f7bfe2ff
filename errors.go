package vp9sr

import (
	"errors"

	"github.com/deepteams/vp9sr/internal/dsp"
	"github.com/deepteams/vp9sr/internal/scale"
)

// Configuration errors. They fail the current frame or operation and are
// never retried.
var (
	ErrInvalidConfig         = errors.New("vp9sr: invalid configuration")
	ErrUnsupportedResolution = errors.New("vp9sr: unsupported resolution")
	ErrInvalidFrame          = errors.New("vp9sr: invalid frame buffer")
	ErrInvalidBlock          = errors.New("vp9sr: block outside frame")
	ErrNoBlock               = errors.New("vp9sr: block list is empty")
	ErrSessionClosed         = errors.New("vp9sr: session closed")

	// ErrInvalidScale marks a reference that cannot predict the current
	// frame at its size.
	ErrInvalidScale = scale.ErrInvalidScale

	ErrUnsupportedScale = dsp.ErrUnsupportedScale
	ErrBlockTooLarge    = dsp.ErrBlockTooLarge
	ErrTableMismatch    = dsp.ErrTableMismatch
	ErrNoTable          = dsp.ErrNoTable
)

// ErrInferenceFailed wraps every inference backend failure. Callers see it
// only through logs: the plane is upscaled with the bilinear engine instead.
var ErrInferenceFailed = errors.New("vp9sr: inference failed")

// ErrCacheResetDisabled is returned by cache-reset operations after a
// profile failure has turned the feature off for the session.
var ErrCacheResetDisabled = errors.New("vp9sr: cache reset disabled")
