// Command sectorc converts a fixture of CAD sector primitives into GPU
// instancing buffers, one <output-kind>.bin file per non-empty output.
//
//	sectorc [-config sector.yaml] [-out dir] [-stl preview.stl] [-workers n] [-strict] [-v] fixture.lisp
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/chazu/sector/pkg/config"
	"github.com/chazu/sector/pkg/engine"
	"github.com/chazu/sector/pkg/kernel"
	"github.com/chazu/sector/pkg/kernel/sdfx"
	"github.com/chazu/sector/pkg/primitive"
	"github.com/chazu/sector/pkg/sector"
	"github.com/chazu/sector/pkg/tessellate"
	"github.com/chazu/sector/pkg/validate"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "sectorc: %v\n", err)
		}
		os.Exit(1)
	}
}

// run is main without the process exit, so tests can drive it.
func run(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("sectorc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath = fs.String("config", "sector.yaml", "settings file; missing means defaults")
		outDir     = fs.String("out", ".", "directory for output buffers")
		stlPath    = fs.String("stl", "", "write an STL preview of the fixture to this file")
		workers    = fs.Int("workers", -1, "concurrent conversions; overrides the config file when >= 0")
		strict     = fs.Bool("strict", false, "treat input warnings as errors")
		verbose    = fs.Bool("v", false, "debug logging")
	)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: sectorc [flags] fixture.lisp")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("expected exactly one fixture file")
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	sector.SetLogger(logger)
	defer sector.SetLogger(nil)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *workers >= 0 {
		cfg.Workers = *workers
	}

	source, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	inputs, evalErrs, err := engine.NewEngine(engine.WithTimeout(cfg.EvalTimeout)).Evaluate(string(source))
	if err != nil {
		return err
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			fmt.Fprintf(stderr, "%s: %s\n", fs.Arg(0), e.Error())
		}
		return fmt.Errorf("%s: %d evaluation error(s)", fs.Arg(0), len(evalErrs))
	}

	lint := validate.Check(inputs)
	for _, f := range lint.All() {
		logger.Warn(f.Message, "severity", f.Severity, "kind", f.Kind, "record", f.Index, "field", f.Field)
	}
	if !lint.OK() || (*strict && len(lint.Warnings) > 0) {
		return fmt.Errorf("%s: %d input error(s), %d warning(s)", fs.Arg(0), len(lint.Errors), len(lint.Warnings))
	}

	res, err := sector.Build(ctx, inputs, cfg.Layouts, sector.WithWorkers(cfg.Workers))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}
	for _, kind := range res.Kinds() {
		path := filepath.Join(*outDir, kind.String()+".bin")
		if err := os.WriteFile(path, res.Bytes(kind), 0o644); err != nil {
			return err
		}
		logger.Debug("wrote buffer", "path", path, "records", res.Records(kind))
	}
	logger.Info("sector written", "dir", *outDir, "outputs", len(res.Kinds()), "bytes", res.Size())

	if *stlPath != "" {
		if err := writePreview(*stlPath, inputs, sdfx.New(cfg.PreviewCells), logger); err != nil {
			return err
		}
	}
	return nil
}

// writePreview tessellates the previewable inputs into a binary STL file.
func writePreview(path string, inputs primitive.Inputs, k kernel.Kernel, logger *slog.Logger) error {
	meshes, err := tessellate.Tessellate(inputs, k)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := kernel.WriteSTL(f, meshes...); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	triangles := 0
	for _, m := range meshes {
		triangles += m.TriangleCount()
	}
	logger.Info("preview written", "path", path, "meshes", len(meshes), "triangles", triangles)
	return nil
}
