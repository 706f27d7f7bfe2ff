package vp9sr

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/deepteams/vp9sr/cachereset"
)

func TestDefaultScalePolicy(t *testing.T) {
	tests := []struct {
		resolution int
		want       int
	}{
		{240, 4},
		{270, 4},
		{360, 3},
		{480, 2},
		{720, 1},
		{1080, 1},
	}
	for _, tt := range tests {
		got, err := DefaultScalePolicy(tt.resolution)
		if err != nil || got != tt.want {
			t.Errorf("DefaultScalePolicy(%d) = %d, %v; want %d", tt.resolution, got, err, tt.want)
		}
	}
	for _, r := range []int{0, 144, 1440, -1} {
		if _, err := DefaultScalePolicy(r); !errors.Is(err, ErrUnsupportedResolution) {
			t.Errorf("DefaultScalePolicy(%d): err = %v", r, err)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"decode mode", func(c *Config) { c.DecodeMode = DecodeMode(9) }},
		{"cache mode", func(c *Config) { c.CacheMode = CacheMode(-1) }},
		{"read policy", func(c *Config) { c.ReadPolicy = cachereset.Policy(5) }},
		{"workers", func(c *Config) { c.NumWorkers = 0 }},
		{"no scales", func(c *Config) { c.Scales = nil }},
		{"scale 1", func(c *Config) { c.Scales = []int{1} }},
		{"scale 5", func(c *Config) { c.Scales = []int{2, 5} }},
		{"threshold", func(c *Config) { c.ResetThreshold = -1 }},
		{"profile dir", func(c *Config) { c.CacheMode = ApplyCacheReset; c.ProfileDir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			if err := c.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestProfilePath(t *testing.T) {
	c := &Config{ProfileDir: "/data/profiles", Prefix: "news_360p"}
	if got, want := c.ProfilePath(3), filepath.Join("/data/profiles", "cache_reset_news_360p_thread3"); got != want {
		t.Errorf("ProfilePath = %q, want %q", got, want)
	}
	c.CompressProfiles = true
	if got, want := c.ProfilePath(0), filepath.Join("/data/profiles", "cache_reset_news_360p_thread0.zst"); got != want {
		t.Errorf("ProfilePath = %q, want %q", got, want)
	}
}

func TestModeStrings(t *testing.T) {
	if DecodeCache.String() != "decode-cache" || DecodeMode(7).String() != "DecodeMode(7)" {
		t.Errorf("DecodeMode strings: %v %v", DecodeCache, DecodeMode(7))
	}
	if ApplyCacheReset.String() != "apply" || CacheMode(7).String() != "CacheMode(7)" {
		t.Errorf("CacheMode strings: %v %v", ApplyCacheReset, CacheMode(7))
	}
	if !DecodeSR.UsesInference() || !DecodeCache.UsesInference() || DecodeBilinear.UsesInference() || Decode.UsesInference() {
		t.Error("UsesInference")
	}
}
