package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunWritesBuffers(t *testing.T) {
	dir := t.TempDir()
	fixture := writeFile(t, dir, "fixture.lisp", `
(box :tree-index 1 :normal [0 0 1] :delta [2 2 2])
(box :tree-index 2 :normal [0 0 1] :delta [1 1 1])
(sphere :center [0 0 0] :radius 1)
`)
	out := filepath.Join(dir, "out")
	stl := filepath.Join(dir, "preview.stl")

	var stderr bytes.Buffer
	args := []string{"-config", filepath.Join(dir, "none.yaml"), "-out", out, "-stl", stl, "-workers", "2", fixture}
	if err := run(context.Background(), args, &stderr); err != nil {
		t.Fatalf("run: %v\n%s", err, stderr.String())
	}

	box, err := os.ReadFile(filepath.Join(out, "box.bin"))
	if err != nil {
		t.Fatalf("box.bin: %v", err)
	}
	if len(box) != 2*72 {
		t.Errorf("box.bin is %d bytes, want %d", len(box), 2*72)
	}
	if _, err := os.Stat(filepath.Join(out, "spherical-segment.bin")); err != nil {
		t.Errorf("sphere output missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "cone.bin")); !os.IsNotExist(err) {
		t.Errorf("empty output kinds should not be written, stat err = %v", err)
	}

	preview, err := os.ReadFile(stl)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if len(preview) < 84 || binary.LittleEndian.Uint32(preview[80:]) == 0 {
		t.Error("preview has no triangles")
	}
	if !strings.Contains(stderr.String(), "sector written") {
		t.Errorf("missing summary log:\n%s", stderr.String())
	}
}

func TestRunConfigLayout(t *testing.T) {
	dir := t.TempDir()
	fixture := writeFile(t, dir, "fixture.lisp", `(box :tree-index 9 :normal [0 0 1] :delta [1 1 1])`)
	// Move treeIndex from byte 0 to byte 4 and color to byte 0.
	cfg := writeFile(t, dir, "sector.yaml", `
layouts:
  box:
    treeIndex: 4
    color: 0
`)
	var stderr bytes.Buffer
	if err := run(context.Background(), []string{"-config", cfg, "-out", dir, fixture}, &stderr); err != nil {
		t.Fatalf("run: %v\n%s", err, stderr.String())
	}
	box, err := os.ReadFile(filepath.Join(dir, "box.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if got := binary.LittleEndian.Uint32(box[4:]); got != 0x41100000 { // float32(9)
		t.Errorf("treeIndex bits at offset 4 = %#x, want float32(9)", got)
	}
}

func TestRunWarnsOnDegenerateInput(t *testing.T) {
	dir := t.TempDir()
	fixture := writeFile(t, dir, "fixture.lisp", `(open-cylinder :height 1 :radius 1)`)
	var stderr bytes.Buffer
	if err := run(context.Background(), []string{"-out", dir, fixture}, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stderr.String(), "zero direction") {
		t.Errorf("missing warning in log:\n%s", stderr.String())
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.lisp", `(sphere :radius 1)`)
	bad := writeFile(t, dir, "bad.lisp", `(sphere :radius 1 :colour 3)`)
	badCfg := writeFile(t, dir, "bad.yaml", `workers: -3`)
	degenerate := writeFile(t, dir, "degenerate.lisp", `(open-cylinder :height 1 :radius 1)`)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no fixture", nil, "exactly one fixture"},
		{"missing fixture", []string{filepath.Join(dir, "nope.lisp")}, "nope.lisp"},
		{"eval error", []string{bad}, "evaluation error"},
		{"bad config", []string{"-config", badCfg, good}, "workers"},
		{"strict warnings", []string{"-strict", degenerate}, "1 warning"},
		{"unknown flag", []string{"-frobnicate", good}, "frobnicate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			err := run(context.Background(), append([]string{"-out", dir}, tt.args...), &stderr)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
