package engine

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/chazu/sector/pkg/primitive"
)

func TestEvaluateEmptyString(t *testing.T) {
	for _, src := range []string{"", "   \n\t  \n  "} {
		inputs, evalErrs, err := NewEngine().Evaluate(src)
		if err != nil {
			t.Fatalf("unexpected fatal error: %v", err)
		}
		if len(evalErrs) > 0 {
			t.Fatalf("unexpected eval errors: %v", evalErrs)
		}
		if inputs == nil {
			t.Fatal("expected non-nil inputs")
		}
		if len(inputs) != 0 {
			t.Errorf("expected no input buffers, got %d", len(inputs))
		}
	}
}

func TestEvaluatePlainLisp(t *testing.T) {
	source := `
(def x 10)
(def y 20)
(+ x y)
`
	inputs, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if len(inputs) != 0 {
		t.Errorf("arithmetic alone produced %d input buffers", len(inputs))
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	inputs, evalErrs, err := NewEngine().Evaluate("(+ 1 2)\n(+ 3")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if inputs != nil {
		t.Fatal("expected nil inputs on syntax error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error")
	}
	if evalErrs[0].Message == "" {
		t.Error("eval error message should not be empty")
	}
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	inputs, evalErrs, err := NewEngine().Evaluate("(+ 1 undefined-symbol)")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if inputs != nil {
		t.Fatal("expected nil inputs on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for undefined symbol")
	}
}

func TestEvalErrorImplementsError(t *testing.T) {
	e := EvalError{Line: 5, Message: "something went wrong"}
	if s := e.Error(); !strings.Contains(s, "line 5") || !strings.Contains(s, "something went wrong") {
		t.Errorf("Error() = %q", s)
	}
	if s := (EvalError{Message: "no location"}).Error(); strings.Contains(s, "line") {
		t.Errorf("Error() with no line should not contain 'line', got: %s", s)
	}
}

func TestWithTimeout(t *testing.T) {
	if got := NewEngine().timeout; got != DefaultTimeout {
		t.Errorf("default timeout = %s, want %s", got, DefaultTimeout)
	}
	if got := NewEngine(WithTimeout(time.Second)).timeout; got != time.Second {
		t.Errorf("timeout = %s, want 1s", got)
	}
	if got := NewEngine(WithTimeout(0)).timeout; got != DefaultTimeout {
		t.Errorf("zero timeout = %s, want default", got)
	}
}

func TestAwaitTimesOut(t *testing.T) {
	e := NewEngine(WithTimeout(20 * time.Millisecond))
	gen := e.begin()
	done := make(chan outcome) // never sends

	start := time.Now()
	_, _, err := e.await(done, gen)
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !strings.Contains(err.Error(), "timed out after 20ms") {
		t.Errorf("expected timeout error message, got: %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("timeout took %s", time.Since(start))
	}
}

func TestAwaitDiscardsStale(t *testing.T) {
	e := NewEngine()
	stale := e.begin()
	e.begin()

	done := make(chan outcome, 1)
	done <- outcome{inputs: primitive.Inputs{}}

	inputs, _, err := e.await(done, stale)
	if !errors.Is(err, errSuperseded) {
		t.Fatalf("err = %v, want superseded", err)
	}
	if inputs != nil {
		t.Error("stale inputs returned")
	}
}

func TestAwaitPassesLatest(t *testing.T) {
	e := NewEngine()
	gen := e.begin()
	done := make(chan outcome, 1)
	done <- outcome{errors: []EvalError{{Line: 2, Message: "boom"}}}

	_, evalErrs, err := e.await(done, gen)
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	if len(evalErrs) != 1 || evalErrs[0].Line != 2 {
		t.Errorf("eval errors = %v", evalErrs)
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{"error on line format", "Error on line 5: unexpected token\n", 5, "unexpected token"},
		{"no line info", "some generic error", 0, "some generic error"},
		{"line format lowercase", "error on line 12: missing paren", 12, "missing paren"},
		{"short line format", "line 3: bad radius", 3, "bad radius"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			e := errs[0]
			if e.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", e.Line, tt.wantLine)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", e.Message, tt.wantMsg)
			}
		})
	}
}

type errString string

func (e errString) Error() string { return string(e) }
