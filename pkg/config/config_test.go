package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chazu/sector/pkg/layout"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() invalid: %v", err)
	}
	if cfg.Workers != 0 {
		t.Errorf("Workers = %d, want 0", cfg.Workers)
	}
	if cfg.EvalTimeout != 5*time.Second {
		t.Errorf("EvalTimeout = %s, want 5s", cfg.EvalTimeout)
	}
	if len(cfg.Layouts) != int(layout.NumKinds) {
		t.Errorf("Layouts has %d kinds, want %d", len(cfg.Layouts), layout.NumKinds)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
workers: 4
eval_timeout: 250ms
preview_cells: 64
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Workers != 4 || cfg.EvalTimeout != 250*time.Millisecond || cfg.PreviewCells != 64 {
		t.Errorf("got %+v", cfg)
	}
	// Layouts untouched when absent.
	off, ok := cfg.Layouts[layout.Cone].Offset(layout.CenterA)
	if !ok || off != 16 {
		t.Errorf("cone centerA offset = %d, %v; want 16, true", off, ok)
	}
}

func TestParseLayoutOverride(t *testing.T) {
	cfg, err := Parse([]byte(`
layouts:
  cone:
    angle: 12
    arcAngle: 8
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tests := []struct {
		attr layout.Attribute
		want int
	}{
		{layout.Angle, 12},
		{layout.ArcAngle, 8},
		{layout.CenterA, 16},
		{layout.TreeIndex, 0},
	}
	for _, tt := range tests {
		t.Run(tt.attr.String(), func(t *testing.T) {
			off, ok := cfg.Layouts[layout.Cone].Offset(tt.attr)
			if !ok || off != tt.want {
				t.Errorf("offset = %d, %v; want %d, true", off, ok, tt.want)
			}
		})
	}
	if off, _ := cfg.Layouts[layout.Box].Offset(layout.InstanceMatrix); off != 8 {
		t.Errorf("box instanceMatrix offset = %d, want 8", off)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"bad yaml", "workers: [", "config:"},
		{"negative workers", "workers: -1", "workers"},
		{"zero timeout", "eval_timeout: 0s", "eval_timeout"},
		{"bad duration", "eval_timeout: soon", "config:"},
		{"zero cells", "preview_cells: 0", "preview_cells"},
		{"unknown kind", "layouts: {blob: {angle: 8}}", "unknown output kind"},
		{"unknown attribute", "layouts: {cone: {colour: 8}}", "unknown attribute"},
		{"past stride", "layouts: {cone: {angle: 200}}", "exceeds stride"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if cfg.PreviewCells != Default().PreviewCells {
		t.Errorf("missing file did not yield defaults: %+v", cfg)
	}

	path := filepath.Join(dir, "sector.yaml")
	if err := os.WriteFile(path, []byte("workers: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.Workers)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("workers: nope\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil || !strings.Contains(err.Error(), "bad.yaml") {
		t.Errorf("Load(bad) error = %v, want mention of file", err)
	}
}
