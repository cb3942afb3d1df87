// Package engine evaluates sector fixtures: small zygomys Lisp programs
// that describe primitives and produce the raw input buffers the
// transforms consume.
//
//	(def up (vec3 0 0 1))
//	(closed-cone :tree-index 1 :color (rgba 200 0 0 255)
//	             :center (vec3 0 0 0) :axis up :height 10
//	             :radius-a 3 :radius-b 5)
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/sector/pkg/primitive"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError is a non-fatal error in fixture source, such as a parse error
// or a bad builtin argument.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine evaluates fixtures. It is safe for concurrent use; every call to
// Evaluate runs in a fresh sandbox.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	timeout    time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout overrides DefaultTimeout. A non-positive d keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewEngine creates an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs fixture source and returns the input buffers it built,
// keyed by input kind.
//
// Return semantics:
//   - On success: inputs + nil errors + nil error
//   - On parse/eval failure: nil inputs + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): nil + nil + error
func (e *Engine) Evaluate(source string) (primitive.Inputs, []EvalError, error) {
	gen := e.begin()
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("engine: panic during evaluation: %v", r)}
			}
		}()

		inputs, evalErrs, err := e.evaluate(source)
		done <- outcome{inputs: inputs, errors: evalErrs, err: err}
	}()

	return e.await(done, gen)
}

func (e *Engine) evaluate(source string) (primitive.Inputs, []EvalError, error) {
	inputs := make(primitive.Inputs)
	if strings.TrimSpace(source) == "" {
		return inputs, nil, nil
	}

	// The sandbox has no filesystem or system access.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, inputs)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return inputs, nil, nil
}

// linePattern matches "Error on line N: ..." messages.
var linePattern = regexp.MustCompile(`(?is)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches "line N: ..." messages.
var linePatternShort = regexp.MustCompile(`(?is)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into EvalErrors, keeping the
// line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, p := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := p.FindStringSubmatchIndex(msg); m != nil {
			line, _ := strconv.Atoi(msg[m[2]:m[3]])
			// Keep any text zygomys put before the location.
			detail := msg[:m[0]] + msg[m[4]:m[5]]
			return []EvalError{{Line: line, Message: strings.TrimSpace(detail)}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
