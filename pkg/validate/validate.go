// Package validate lints sector input buffers before conversion.
//
// Conversion never rejects a record: a zero axis yields NaN outputs and a
// negative radius yields an inside-out instance. Check reports such
// records so callers can decide whether to proceed. Misaligned buffers
// are errors because conversion refuses them.
package validate

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/chazu/sector/pkg/codec"
	"github.com/chazu/sector/pkg/geometry"
	"github.com/chazu/sector/pkg/primitive"
	"github.com/chewxy/math32"
)

// Severity indicates whether a finding blocks conversion or is advisory.
type Severity int

const (
	SeverityError   Severity = iota // blocks conversion
	SeverityWarning                 // advisory
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Finding describes one problem in an input buffer.
type Finding struct {
	Kind     primitive.InputKind
	Index    int    // record index, -1 for the buffer as a whole
	Field    string // fixture field name, empty for buffer or record level
	Message  string
	Severity Severity
}

func (f Finding) Error() string {
	where := f.Kind.String()
	if f.Index >= 0 {
		where = fmt.Sprintf("%s #%d", where, f.Index)
	}
	if f.Field != "" {
		where += " " + f.Field
	}
	return fmt.Sprintf("[%s] %s: %s", f.Severity, where, f.Message)
}

// Result separates blocking findings from advisory ones.
type Result struct {
	Errors   []Finding
	Warnings []Finding
}

// OK reports whether conversion can proceed.
func (r Result) OK() bool { return len(r.Errors) == 0 }

// All returns errors followed by warnings.
func (r Result) All() []Finding {
	return append(append([]Finding(nil), r.Errors...), r.Warnings...)
}

func (r *Result) add(f Finding) {
	if f.Severity == SeverityError {
		r.Errors = append(r.Errors, f)
	} else {
		r.Warnings = append(r.Warnings, f)
	}
}

// Fields holding directions that are normalized during conversion.
var directions = map[string]bool{
	"axis":       true,
	"normal":     true,
	"cap-normal": true,
}

// Fields holding lengths.
var lengths = map[string]bool{
	"diagonal":          true,
	"height":            true,
	"radius":            true,
	"radius-a":          true,
	"radius-b":          true,
	"horizontal-radius": true,
	"vertical-radius":   true,
	"inner-radius":      true,
	"outer-radius":      true,
	"tube-radius":       true,
	"thickness":         true,
}

// Check lints every record of inputs. Findings are ordered by input kind,
// then record, then field name. inputs is never modified.
func Check(inputs primitive.Inputs) Result {
	var res Result
	for _, kind := range inputs.Kinds() {
		buf := inputs[kind]
		if !kind.Valid() {
			res.add(Finding{
				Kind:     kind,
				Index:    -1,
				Message:  "unknown input kind",
				Severity: SeverityError,
			})
			continue
		}
		if len(buf)%kind.Size() != 0 {
			res.add(Finding{
				Kind:     kind,
				Index:    -1,
				Message:  fmt.Sprintf("buffer is %d bytes, not a multiple of the %d byte record", len(buf), kind.Size()),
				Severity: SeverityError,
			})
			continue
		}
		rule := primitive.RuleFor(kind)
		fields := primitive.FieldPaths(reflect.TypeOf(rule.NewRecord()).Elem())
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)

		for i, rec := range rule.DecodeAll(buf) {
			v := reflect.ValueOf(rec).Elem()
			for _, name := range names {
				if f, ok := checkField(name, v.FieldByIndex(fields[name]).Interface()); ok {
					f.Kind, f.Index, f.Field = kind, i, name
					res.add(f)
				}
			}
			if f, ok := checkRadii(v, fields); ok {
				f.Kind, f.Index = kind, i
				res.add(f)
			}
			if f, ok := checkArc(v, fields); ok {
				f.Kind, f.Index, f.Field = kind, i, "arc-angle"
				res.add(f)
			}
		}
	}
	return res
}

func warn(format string, args ...any) (Finding, bool) {
	return Finding{Message: fmt.Sprintf(format, args...), Severity: SeverityWarning}, true
}

func finite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}

// checkField applies the per-field rules to one decoded value.
func checkField(name string, value any) (Finding, bool) {
	switch x := value.(type) {
	case float32:
		if !finite(x) {
			return warn("value %v is not finite", x)
		}
		if lengths[name] && x < 0 {
			return warn("negative length %v", x)
		}
	case codec.Vec3f:
		for _, c := range x {
			if !finite(c) {
				return warn("vector %v is not finite", x)
			}
		}
		if directions[name] && x.Vec64().Len() == 0 {
			return warn("zero direction; outputs will be NaN")
		}
		if name == "delta" && (x[0] < 0 || x[1] < 0 || x[2] < 0) {
			return warn("negative extent %v", x)
		}
	}
	return Finding{}, false
}

// checkRadii flags rings whose inner radius exceeds the outer one.
func checkRadii(v reflect.Value, fields map[string][]int) (Finding, bool) {
	in, okIn := fields["inner-radius"]
	out, okOut := fields["outer-radius"]
	if !okIn || !okOut {
		return Finding{}, false
	}
	inner := v.FieldByIndex(in).Interface().(float32)
	outer := v.FieldByIndex(out).Interface().(float32)
	if inner > outer {
		return warn("inner radius %v exceeds outer radius %v", inner, outer)
	}
	return Finding{}, false
}

// checkArc flags arcs that sweep more than a full turn.
func checkArc(v reflect.Value, fields map[string][]int) (Finding, bool) {
	path, ok := fields["arc-angle"]
	if !ok {
		return Finding{}, false
	}
	arc := float64(v.FieldByIndex(path).Interface().(float32))
	if arc < 0 || arc > geometry.TwoPi+1e-5 {
		return warn("arc angle %v outside [0, 2π]", arc)
	}
	return Finding{}, false
}
