// Package config loads sectorc settings from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/chazu/sector/pkg/engine"
	"github.com/chazu/sector/pkg/kernel/sdfx"
	"github.com/chazu/sector/pkg/layout"
	"gopkg.in/yaml.v3"
)

// Config holds the tunables of a sector build. The zero value is not
// useful; start from Default.
type Config struct {
	// Workers bounds concurrent per-kind conversion. 0 converts
	// sequentially on the calling goroutine.
	Workers int `yaml:"workers"`
	// EvalTimeout limits fixture evaluation, e.g. "2s".
	EvalTimeout time.Duration `yaml:"eval_timeout"`
	// PreviewCells is the marching cubes resolution of STL previews.
	PreviewCells int `yaml:"preview_cells"`
	// Layouts overrides attribute offsets per output kind. Kinds and
	// attributes not mentioned keep their default offsets.
	Layouts layout.Set `yaml:"layouts"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Workers:      0,
		EvalTimeout:  engine.DefaultTimeout,
		PreviewCells: sdfx.DefaultMeshCells,
		Layouts:      layout.Defaults(),
	}
}

// Parse decodes YAML settings on top of Default.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads settings from path. A missing file yields Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w (in %s)", err, path)
	}
	return cfg, nil
}

// Validate rejects settings no build can use.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must be >= 0, got %d", c.Workers)
	}
	if c.EvalTimeout <= 0 {
		return fmt.Errorf("config: eval_timeout must be positive, got %s", c.EvalTimeout)
	}
	if c.PreviewCells <= 0 {
		return fmt.Errorf("config: preview_cells must be positive, got %d", c.PreviewCells)
	}
	return nil
}
