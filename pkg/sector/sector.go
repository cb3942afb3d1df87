// Package sector builds every output buffer of a sector in one pass.
//
// Build sizes each output buffer from the inputs, allocates it once and
// hands every input kind its own region of each buffer it feeds. Regions
// are laid out in input kind order, so the bytes produced do not depend on
// how many workers run the kinds.
package sector

import (
	"context"
	"fmt"
	"time"

	"github.com/chazu/sector/pkg/layout"
	"github.com/chazu/sector/pkg/primitive"
	"golang.org/x/sync/errgroup"
)

// Result holds the filled output buffers of a sector.
type Result struct {
	buffers [layout.NumKinds][]byte
}

// Bytes returns the buffer for kind, nil when nothing feeds it.
func (r *Result) Bytes(kind layout.Kind) []byte { return r.buffers[kind] }

// Records returns how many kind records the buffer holds.
func (r *Result) Records(kind layout.Kind) int {
	return len(r.buffers[kind]) / kind.Stride()
}

// Kinds returns the output kinds with a non-empty buffer, in kind order.
func (r *Result) Kinds() []layout.Kind {
	var kinds []layout.Kind
	for _, k := range layout.Kinds() {
		if len(r.buffers[k]) > 0 {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Size returns the total byte size of all buffers.
func (r *Result) Size() int {
	n := 0
	for _, b := range r.buffers {
		n += len(b)
	}
	return n
}

// Option configures Build.
type Option func(*options)

type options struct {
	workers int
}

// WithWorkers runs up to n input kinds concurrently. n <= 1 runs them
// sequentially on the calling goroutine.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// region is the slice of one output buffer owned by one input kind.
type region struct {
	output     layout.Kind
	start, end int
}

// job is one input kind and the regions it fills.
type job struct {
	kind    primitive.InputKind
	input   []byte
	records int
	regions []region
}

// Build transforms inputs into freshly allocated output buffers laid out
// by layouts. A nil layouts uses layout.Defaults. Build checks ctx between
// input kinds and returns ctx.Err() if it is cancelled; a record loop that
// has started always finishes.
func Build(ctx context.Context, inputs primitive.Inputs, layouts layout.Set, opts ...Option) (*Result, error) {
	o := options{workers: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if layouts == nil {
		layouts = layout.Defaults()
	}
	start := time.Now()

	jobs, sizes, err := plan(inputs)
	if err != nil {
		return nil, err
	}
	if err := checkLayouts(sizes, layouts); err != nil {
		return nil, err
	}

	res := &Result{}
	for k, size := range sizes {
		if size > 0 {
			res.buffers[k] = make([]byte, size)
		}
	}

	log := Logger()
	run := func(j *job) error {
		var out primitive.Outputs
		for _, r := range j.regions {
			buf := res.buffers[r.output][r.start:r.end:r.end]
			out[r.output] = primitive.NewTarget(r.output, buf, layouts[r.output])
		}
		offsets := primitive.Transform(j.kind, j.input, &out)
		for _, r := range j.regions {
			if got, want := offsets[r.output], r.end-r.start; got != want {
				return fmt.Errorf("sector: %s input filled %d of %d bytes of its %s region",
					j.kind, got, want, r.output)
			}
		}
		log.Debug("sector: transformed", "input", j.kind.String(), "records", j.records, "regions", len(j.regions))
		return nil
	}

	if o.workers <= 1 {
		for i := range jobs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := run(&jobs[i]); err != nil {
				return nil, err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(o.workers)
		for i := range jobs {
			if gctx.Err() != nil {
				break
			}
			j := &jobs[i]
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				return run(j)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	log.Info("sector: built",
		"inputKinds", len(jobs),
		"outputKinds", len(res.Kinds()),
		"bytes", res.Size(),
		"workers", o.workers,
		"elapsed", time.Since(start),
	)
	return res, nil
}

// plan validates the inputs and assigns every input kind its regions. It
// returns the jobs in input kind order and the total size of each output
// buffer.
func plan(inputs primitive.Inputs) ([]job, [layout.NumKinds]int, error) {
	var sizes [layout.NumKinds]int
	var jobs []job
	for kind := range inputs {
		if !kind.Valid() {
			return nil, sizes, fmt.Errorf("sector: unknown input kind %d", int(kind))
		}
	}
	for _, kind := range primitive.InputKinds() {
		buf := inputs[kind]
		if len(buf)%kind.Size() != 0 {
			return nil, sizes, fmt.Errorf("sector: %s input is %d bytes, not a multiple of the %d-byte record",
				kind, len(buf), kind.Size())
		}
		n := len(buf) / kind.Size()
		if n == 0 {
			continue
		}
		j := job{kind: kind, input: buf, records: n}
		for _, e := range primitive.RuleFor(kind).Emits {
			size := n * e.Count * e.Output.Stride()
			j.regions = append(j.regions, region{
				output: e.Output,
				start:  sizes[e.Output],
				end:    sizes[e.Output] + size,
			})
			sizes[e.Output] += size
		}
		Logger().Debug("sector: planned", "input", kind.String(), "records", n)
		jobs = append(jobs, j)
	}
	return jobs, sizes, nil
}

// checkLayouts reports the first output kind that will be written but whose
// layout cannot hold its attributes.
func checkLayouts(sizes [layout.NumKinds]int, layouts layout.Set) error {
	for _, kind := range layout.Kinds() {
		if sizes[kind] == 0 {
			continue
		}
		l := layouts[kind]
		if l == nil {
			return fmt.Errorf("sector: no layout for %s output", kind)
		}
		for _, a := range primitive.Attributes(kind) {
			off, ok := l.Offset(a)
			if !ok {
				return fmt.Errorf("sector: %s layout is missing attribute %s", kind, a)
			}
			if off < 0 || off+a.Width() > kind.Stride() {
				return fmt.Errorf("sector: %s layout places %s at %d, outside the %d-byte record",
					kind, a, off, kind.Stride())
			}
		}
	}
	return nil
}
