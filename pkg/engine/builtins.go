package engine

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/chazu/sector/pkg/codec"
	"github.com/chazu/sector/pkg/primitive"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites fixture source before zygomys sees it:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keywords need
//     no global symbols and cannot clash with user variables.
//  2. Kebab-case identifiers become underscores (closed-cone ->
//     closed_cone). zygomys reads a hyphen inside a symbol as subtraction.
//  3. ; line comments become // comments.
//
// String literals are left untouched.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ':' && i+1 < len(b) {
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, kwPrefix...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// A hyphen between identifier characters joins words; anywhere
		// else it is the minus operator or a sign.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isLetter(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// builtinName returns the zygomys symbol for an input kind builtin.
func builtinName(kind primitive.InputKind) string {
	return strings.ReplaceAll(kind.String(), "-", "_")
}

// ---------------------------------------------------------------------------
// Custom Sexp types
// ---------------------------------------------------------------------------

// sexpVec3 carries a vector between builtins.
type sexpVec3 struct {
	vec codec.Vec3f
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec[0], v.vec[1], v.vec[2])
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpColor carries an RGBA color between builtins.
type sexpColor struct {
	color codec.Color
}

func (c *sexpColor) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(rgba %d %d %d %d)", c.color[0], c.color[1], c.color[2], c.color[3])
}
func (c *sexpColor) Type() *zygo.RegisteredType { return nil }

// sexpRecord is returned by the primitive builtins: the kind and index of
// the record just appended.
type sexpRecord struct {
	kind  primitive.InputKind
	index int
}

func (r *sexpRecord) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s #%d)", r.kind, r.index)
}
func (r *sexpRecord) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix marks keyword names rewritten by preprocessSource.
const kwPrefix = "__kw_"

// isKW reports whether s is a preprocessed keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs is a call's argument list split into keywords and positionals.
// order keeps keywords in call order for error reporting.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	order      []string
	positional []zygo.Sexp
}

func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			i++
			continue
		}
		if _, seen := result.kw[name]; !seen {
			result.order = append(result.order, name)
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i += 2
		} else {
			result.kw[name] = zygo.SexpNull
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 accepts a (vec3 ...) value or a three-element list or array.
func toVec3(s zygo.Sexp) (codec.Vec3f, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return codec.Vec3f{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
	}
	if len(items) != 3 {
		return codec.Vec3f{}, fmt.Errorf("expected 3 components, got %d", len(items))
	}
	var v codec.Vec3f
	for i, item := range items {
		f, err := toFloat64(item)
		if err != nil {
			return codec.Vec3f{}, fmt.Errorf("component %d: %w", i, err)
		}
		v[i] = float32(f)
	}
	return v, nil
}

// toColor accepts an (rgba ...) value or a four-element list or array of
// channel values in 0..255.
func toColor(s zygo.Sexp) (codec.Color, error) {
	if c, ok := s.(*sexpColor); ok {
		return c.color, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return codec.Color{}, fmt.Errorf("expected rgba, got %T (%s)", s, s.SexpString(nil))
	}
	return colorFrom(items)
}

func colorFrom(items []zygo.Sexp) (codec.Color, error) {
	if len(items) != 4 {
		return codec.Color{}, fmt.Errorf("expected 4 channels, got %d", len(items))
	}
	var c codec.Color
	for i, item := range items {
		f, err := toFloat64(item)
		if err != nil {
			return codec.Color{}, fmt.Errorf("channel %d: %w", i, err)
		}
		if f < 0 || f > 255 || f != math.Trunc(f) {
			return codec.Color{}, fmt.Errorf("channel %d: %v is not an integer in 0..255", i, f)
		}
		c[i] = uint8(f)
	}
	return c, nil
}

// sexpListToSlice converts a list or array to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Record fields
// ---------------------------------------------------------------------------

var (
	vec3Type  = reflect.TypeOf(codec.Vec3f{})
	colorType = reflect.TypeOf(codec.Color{})
)

// setField stores s into field v, converting by the field's type.
func setField(v reflect.Value, s zygo.Sexp) error {
	switch {
	case v.Type() == vec3Type:
		vec, err := toVec3(s)
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(vec))
	case v.Type() == colorType:
		c, err := toColor(s)
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(c))
	case v.Kind() == reflect.Float32:
		f, err := toFloat64(s)
		if err != nil {
			return err
		}
		v.SetFloat(f)
	default:
		panic(fmt.Sprintf("engine: unsupported record field type %s", v.Type()))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the fixture builtins into env. Records built
// by the primitive builtins are appended to inputs in evaluation order.
//
// Source must go through preprocessSource first so :keyword arguments
// arrive as recognizable strings.
func registerBuiltins(env *zygo.Zlisp, inputs primitive.Inputs) {

	// (vec3 1 2 3)
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		v, err := toVec3(&zygo.SexpArray{Val: args})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %w", err)
		}
		return &sexpVec3{vec: v}, nil
	})

	// (rgba 255 128 0 255)
	env.AddFunction("rgba", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		c, err := colorFrom(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rgba: %w", err)
		}
		return &sexpColor{color: c}, nil
	})

	// (radians 90)
	env.AddFunction("radians", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("radians requires exactly 1 argument, got %d", len(args))
		}
		deg, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("radians: %w", err)
		}
		return &zygo.SexpFloat{Val: deg * math.Pi / 180}, nil
	})

	// (closed-cone :tree-index 1 :color (rgba 255 0 0 255)
	//              :center (vec3 0 0 0) :axis (vec3 0 0 1)
	//              :height 10 :radius-a 3 :radius-b 5)
	//
	// One builtin per input kind, registered under its underscore name.
	// Omitted fields are zero.
	for _, kind := range primitive.InputKinds() {
		rule := primitive.RuleFor(kind)
		fields := primitive.FieldPaths(reflect.TypeOf(rule.NewRecord()).Elem())

		env.AddFunction(builtinName(kind), func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			if len(pa.positional) > 0 {
				return zygo.SexpNull, fmt.Errorf("%s: takes keyword arguments only, got %d positional",
					kind, len(pa.positional))
			}

			rec := rule.NewRecord()
			v := reflect.ValueOf(rec).Elem()
			for _, kw := range pa.order {
				path, ok := fields[kw]
				if !ok {
					return zygo.SexpNull, fmt.Errorf("%s: unknown field :%s", kind, kw)
				}
				if err := setField(v.FieldByIndex(path), pa.kw[kw]); err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: %s: %w", kind, kw, err)
				}
			}

			buf, err := binary.Append(inputs[kind], binary.LittleEndian, rec)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: encode: %w", kind, err)
			}
			inputs[kind] = buf
			return &sexpRecord{kind: kind, index: len(buf)/kind.Size() - 1}, nil
		})
	}
}
