package vp9sr

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/deepteams/vp9sr/cachereset"
	"github.com/deepteams/vp9sr/internal/dsp"
	"github.com/deepteams/vp9sr/internal/scale"
)

// Session holds the state shared by the workers of one decode: the
// configuration, the precomputed bilinear tables and the cache-reset
// switch. Workers own everything else.
type Session struct {
	cfg     Config
	logger  *slog.Logger
	tables  *dsp.TableSet
	workers []*Worker

	cacheReset atomic.Bool
	mu         sync.Mutex
	cacheErr   error

	closed atomic.Bool
}

// NewSession validates cfg, precomputes the bilinear tables and opens one
// cache-reset profile per worker. A nil cfg uses DefaultConfig.
//
// A profile that cannot be opened does not fail the session: cache reset is
// turned off and the cause is kept for CacheResetErr.
func NewSession(cfg *Config) (*Session, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := *cfg
	c.Scales = slices.Clone(cfg.Scales)
	if c.ScalePolicy == nil {
		c.ScalePolicy = DefaultScalePolicy
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	tables, err := dsp.NewTableSet(MaxBlockExtent, c.Scales)
	if err != nil {
		return nil, fmt.Errorf("vp9sr: bilinear tables: %w", err)
	}
	s := &Session{cfg: c, logger: logger, tables: tables}
	s.workers = make([]*Worker, c.NumWorkers)
	for i := range s.workers {
		s.workers[i] = newWorker(s, i)
	}
	if c.CacheMode != NoCacheReset {
		s.cacheReset.Store(true)
		s.openProfiles()
	}
	logger.Debug("session started",
		"decode_mode", c.DecodeMode,
		"cache_mode", c.CacheMode,
		"workers", c.NumWorkers,
		"scales", c.Scales)
	return s, nil
}

func (s *Session) openProfiles() {
	mode := cachereset.ModeWrite
	if s.cfg.CacheMode == ApplyCacheReset {
		mode = cachereset.ModeRead
	}
	opts := &cachereset.Options{Policy: s.cfg.ReadPolicy, Logger: s.logger}
	for i, w := range s.workers {
		p, err := cachereset.Open(s.cfg.ProfilePath(i), mode, opts)
		if err != nil {
			s.disableCacheReset(fmt.Errorf("worker %d: %w", i, err))
			return
		}
		w.profile = p
	}
}

// disableCacheReset turns cache reset off for every worker. The first cause
// is kept.
func (s *Session) disableCacheReset(cause error) {
	s.mu.Lock()
	if s.cacheErr == nil {
		s.cacheErr = cause
	}
	s.mu.Unlock()
	if s.cacheReset.Swap(false) {
		s.logger.Error("turn off cache reset", "mode", s.cfg.CacheMode, "err", cause)
	}
}

// CacheResetEnabled reports whether workers still read or record profiles.
func (s *Session) CacheResetEnabled() bool { return s.cacheReset.Load() }

// CacheResetErr returns why cache reset was turned off, or nil.
func (s *Session) CacheResetErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cacheErr == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrCacheResetDisabled, s.cacheErr)
}

// Config returns a copy of the session configuration.
func (s *Session) Config() Config {
	c := s.cfg
	c.Scales = slices.Clone(s.cfg.Scales)
	return c
}

// NumWorkers returns the number of workers.
func (s *Session) NumWorkers() int { return len(s.workers) }

// Worker returns worker i. A worker must only be used by one goroutine at
// a time.
func (s *Session) Worker(i int) *Worker { return s.workers[i] }

// ScaleFor returns the upscale factor for a stream of the given vertical
// resolution. Factors other than 1 must be among the configured scales.
func (s *Session) ScaleFor(resolution int) (int, error) {
	k, err := s.cfg.ScalePolicy(resolution)
	if err != nil {
		return 0, err
	}
	if k == 1 || slices.Contains(s.cfg.Scales, k) {
		return k, nil
	}
	return 0, fmt.Errorf("%w: %d for resolution %d", ErrUnsupportedScale, k, resolution)
}

// SetupReference prepares the prediction of a curW x curH frame from a
// refW x refH reference.
func (s *Session) SetupReference(refW, refH, curW, curH int) (*RefPredictor, error) {
	return newRefPredictor(scale.New(refW, refH, curW, curH), refW, refH, curW, curH)
}

// Close closes every worker profile, flushing recorded segments to disk.
func (s *Session) Close() error {
	if s.closed.Swap(true) {
		return ErrSessionClosed
	}
	var errs []error
	for _, w := range s.workers {
		if w.profile == nil {
			continue
		}
		if err := w.profile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("worker %d: %w", w.index, err))
		}
	}
	s.logger.Debug("session closed", "cache_reset", s.cacheReset.Load())
	return errors.Join(errs...)
}
