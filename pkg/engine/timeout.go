package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chazu/sector/pkg/primitive"
)

// DefaultTimeout bounds a single evaluation.
const DefaultTimeout = 5 * time.Second

// errSuperseded reports that a newer Evaluate call started while this one
// was running.
var errSuperseded = errors.New("engine: evaluation superseded by newer request")

// outcome is what an evaluation goroutine hands back to its caller.
type outcome struct {
	inputs primitive.Inputs
	errors []EvalError
	err    error
}

// begin claims a new generation; only the latest one may return inputs.
func (e *Engine) begin() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	return e.generation
}

func (e *Engine) latest(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}

// await blocks until done delivers or e.timeout elapses. A sandbox cannot
// be interrupted, so a timed-out goroutine finishes on its own and its
// outcome is dropped into the buffered channel.
func (e *Engine) await(done <-chan outcome, gen uint64) (primitive.Inputs, []EvalError, error) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	select {
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("engine: evaluation timed out after %s", e.timeout)
	case out := <-done:
		if !e.latest(gen) {
			return nil, nil, errSuperseded
		}
		return out.inputs, out.errors, out.err
	}
}
