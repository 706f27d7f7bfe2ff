package vp9sr

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/deepteams/vp9sr/cachereset"
	"github.com/deepteams/vp9sr/internal/dsp"
)

// DecodeMode selects how high-resolution frames are produced.
type DecodeMode int

const (
	// Decode decodes at the stream resolution without super-resolution.
	Decode DecodeMode = iota
	// DecodeSR runs inference on every frame.
	DecodeSR
	// DecodeCache runs inference on anchor frames and reuses the upscaled
	// result for the others, interpolating only the blocks that change.
	DecodeCache
	// DecodeBilinear upscales every frame with the bilinear engine.
	DecodeBilinear
)

func (m DecodeMode) String() string {
	switch m {
	case Decode:
		return "decode"
	case DecodeSR:
		return "decode-sr"
	case DecodeCache:
		return "decode-cache"
	case DecodeBilinear:
		return "decode-bilinear"
	}
	return fmt.Sprintf("DecodeMode(%d)", int(m))
}

// UsesInference reports whether m consults the inference backend.
func (m DecodeMode) UsesInference() bool {
	return m == DecodeSR || m == DecodeCache
}

// CacheMode selects what workers do with cache-reset profiles.
type CacheMode int

const (
	NoCacheReset      CacheMode = iota
	ProfileCacheReset           // record reset decisions
	ApplyCacheReset             // play back recorded decisions
)

func (m CacheMode) String() string {
	switch m {
	case NoCacheReset:
		return "none"
	case ProfileCacheReset:
		return "profile"
	case ApplyCacheReset:
		return "apply"
	}
	return fmt.Sprintf("CacheMode(%d)", int(m))
}

// MaxBlockExtent is the largest block edge the precomputed bilinear tables
// cover.
const MaxBlockExtent = 64

// Config controls a decode session.
type Config struct {
	DecodeMode DecodeMode
	CacheMode  CacheMode

	// ReadPolicy handles reads past a loaded profile segment.
	ReadPolicy cachereset.Policy

	// ProfileDir and Prefix locate the per-worker profile files
	// <ProfileDir>/cache_reset_<Prefix>_thread<i>.
	ProfileDir string
	Prefix     string

	// CompressProfiles stores profiles zstd-compressed, with a ".zst" suffix.
	CompressProfiles bool

	// NumWorkers is the number of decode workers (default GOMAXPROCS).
	NumWorkers int

	// Scales are the upscale factors whose bilinear tables are precomputed.
	Scales []int

	// ScalePolicy maps a stream's vertical resolution to an upscale factor.
	ScalePolicy func(resolution int) (int, error)

	// ResetThreshold is the residual magnitude, sum of |r| over a block,
	// above which a recorded profile asks for a cache reset.
	ResetThreshold int

	Logger *slog.Logger // nil discards
}

// DefaultConfig returns a configuration for bilinear decoding with cache
// reset disabled.
func DefaultConfig() *Config {
	return &Config{
		DecodeMode:     DecodeBilinear,
		CacheMode:      NoCacheReset,
		ReadPolicy:     cachereset.PolicyStrict,
		ProfileDir:     ".",
		NumWorkers:     runtime.GOMAXPROCS(0),
		Scales:         []int{2, 3, 4},
		ScalePolicy:    DefaultScalePolicy,
		ResetThreshold: 0,
	}
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.DecodeMode < Decode || c.DecodeMode > DecodeBilinear {
		return fmt.Errorf("%w: decode mode %d", ErrInvalidConfig, int(c.DecodeMode))
	}
	if c.CacheMode < NoCacheReset || c.CacheMode > ApplyCacheReset {
		return fmt.Errorf("%w: cache mode %d", ErrInvalidConfig, int(c.CacheMode))
	}
	if c.ReadPolicy != cachereset.PolicyStrict && c.ReadPolicy != cachereset.PolicyNoReset {
		return fmt.Errorf("%w: read policy %d", ErrInvalidConfig, int(c.ReadPolicy))
	}
	if c.NumWorkers < 1 {
		return fmt.Errorf("%w: NumWorkers %d (must be >= 1)", ErrInvalidConfig, c.NumWorkers)
	}
	if len(c.Scales) == 0 {
		return fmt.Errorf("%w: no scales", ErrInvalidConfig)
	}
	for _, s := range c.Scales {
		if s < 2 || s > dsp.MaxScale {
			return fmt.Errorf("%w: scale %d (must be 2-%d)", ErrInvalidConfig, s, dsp.MaxScale)
		}
	}
	if c.ResetThreshold < 0 {
		return fmt.Errorf("%w: ResetThreshold %d (must be >= 0)", ErrInvalidConfig, c.ResetThreshold)
	}
	if c.CacheMode != NoCacheReset && c.ProfileDir == "" {
		return fmt.Errorf("%w: cache mode %v needs ProfileDir", ErrInvalidConfig, c.CacheMode)
	}
	return nil
}

// ProfilePath returns the cache-reset profile path of worker i.
func (c *Config) ProfilePath(i int) string {
	name := "cache_reset_" + c.Prefix + "_thread" + strconv.Itoa(i)
	if c.CompressProfiles {
		name += cachereset.CompressedSuffix
	}
	return filepath.Join(c.ProfileDir, name)
}

// DefaultScalePolicy maps the common stream heights to the upscale factor
// that reaches 1080p: 240p and 270p by 4, 360p by 3, 480p by 2. 720p and
// 1080p are not upscaled.
func DefaultScalePolicy(resolution int) (int, error) {
	switch resolution {
	case 240, 270:
		return 4, nil
	case 360:
		return 3, nil
	case 480:
		return 2, nil
	case 720, 1080:
		return 1, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnsupportedResolution, resolution)
}
