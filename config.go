package ggdraw

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gogpu/gg"
	"github.com/gogpu/ggdraw/pool"
)

// ErrConfig is returned for invalid configuration.
var ErrConfig = errors.New("ggdraw: invalid config")

// Config is the TOML-loadable configuration of a System.
//
//	backend = "raster"
//	fallback_color = "#ff0000"
//	background = "#ffffffff"
//
//	[pool]
//	max_per_bucket = 8
type Config struct {
	// Backend names the canvas backend; empty selects the best available.
	Backend string `toml:"backend"`

	// FallbackColor paints styles and shaders that have no handler.
	FallbackColor string `toml:"fallback_color"`

	// Background is the clear color of render contexts.
	Background string `toml:"background"`

	Pool PoolConfig `toml:"pool"`
}

// PoolConfig configures the backing-target pool.
type PoolConfig struct {
	// MaxPerBucket bounds the idle canvases kept per size; 0 keeps all.
	MaxPerBucket int `toml:"max_per_bucket"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		FallbackColor: "#ff0000",
		Background:    "#00000000",
		Pool:          PoolConfig{MaxPerBucket: pool.DefaultMaxPerBucket},
	}
}

// ParseConfig decodes TOML over DefaultConfig and validates the result.
// Unknown keys are rejected.
func ParseConfig(data string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("%w: unknown keys %s", ErrConfig, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses the TOML file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return ParseConfig(string(data))
}

// Validate checks colors and pool limits.
func (c Config) Validate() error {
	if _, err := gg.ParseHex(c.FallbackColor); err != nil {
		return fmt.Errorf("%w: fallback_color: %w", ErrConfig, err)
	}
	if _, err := gg.ParseHex(c.Background); err != nil {
		return fmt.Errorf("%w: background: %w", ErrConfig, err)
	}
	if c.Pool.MaxPerBucket < 0 {
		return fmt.Errorf("%w: pool.max_per_bucket must not be negative", ErrConfig)
	}
	return nil
}

// FallbackRGBA returns the parsed fallback color.
func (c Config) FallbackRGBA() gg.RGBA { return gg.Hex(c.FallbackColor) }

// BackgroundRGBA returns the parsed background color.
func (c Config) BackgroundRGBA() gg.RGBA { return gg.Hex(c.Background) }
