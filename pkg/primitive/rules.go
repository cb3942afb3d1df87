package primitive

import (
	"fmt"

	"github.com/chazu/sector/pkg/codec"
	"github.com/chazu/sector/pkg/layout"
)

// Emit is one output kind a rule feeds and how many records it writes
// there per input record.
type Emit struct {
	Output layout.Kind
	Count  int
}

// Rule is the decomposition of one input kind into output records.
type Rule struct {
	Input  InputKind
	Emits  []Emit
	apply  func(buf []byte, out *Outputs)
	zero   func() any
	decode func(buf []byte) []any
}

// NewRecord returns a pointer to a zero input record of the rule's schema,
// such as *ConeInput for ClosedCone.
func (r Rule) NewRecord() any { return r.zero() }

// DecodeAll decodes buf into pointers to fresh records of the rule's
// schema. It panics if buf is not a whole number of records.
func (r Rule) DecodeAll(buf []byte) []any { return r.decode(buf) }

// rule binds a generator for records of type T to kind.
func rule[T any, PT Record[T]](kind InputKind, gen func(*T, *Outputs), emits ...Emit) Rule {
	return Rule{
		Input: kind,
		Emits: emits,
		apply: func(buf []byte, out *Outputs) {
			each[T, PT](kind, buf, func(rec *T) { gen(rec, out) })
		},
		decode: func(buf []byte) []any {
			var out []any
			each[T, PT](kind, buf, func(rec *T) {
				v := *rec
				out = append(out, &v)
			})
			return out
		},
		zero: func() any { return new(T) },
	}
}

func emit(kind layout.Kind, count int) Emit {
	return Emit{Output: kind, Count: count}
}

var rules = [NumInputKinds]Rule{
	Box:    rule(Box, box, emit(layout.Box, 1)),
	Circle: rule(Circle, circle, emit(layout.Circle, 1)),

	ClosedCone:     rule(ClosedCone, cone(true), emit(layout.Cone, 1), emit(layout.Circle, 2)),
	OpenCone:       rule(OpenCone, cone(false), emit(layout.Cone, 1)),
	ClosedCylinder: rule(ClosedCylinder, cylinder(true), emit(layout.Cone, 1), emit(layout.Circle, 2)),
	OpenCylinder:   rule(OpenCylinder, cylinder(false), emit(layout.Cone, 1)),

	ClosedEccentricCone: rule(ClosedEccentricCone, eccentricCone(true), emit(layout.EccentricCone, 1), emit(layout.Circle, 2)),
	OpenEccentricCone:   rule(OpenEccentricCone, eccentricCone(false), emit(layout.EccentricCone, 1)),

	Ellipsoid:              rule(Ellipsoid, ellipsoid, emit(layout.EllipsoidSegment, 1)),
	ClosedEllipsoidSegment: rule(ClosedEllipsoidSegment, ellipsoidSegment(true), emit(layout.EllipsoidSegment, 1), emit(layout.Circle, 1)),
	OpenEllipsoidSegment:   rule(OpenEllipsoidSegment, ellipsoidSegment(false), emit(layout.EllipsoidSegment, 1)),

	Sphere:                 rule(Sphere, sphere, emit(layout.SphericalSegment, 1)),
	ClosedSphericalSegment: rule(ClosedSphericalSegment, sphericalSegment(true), emit(layout.SphericalSegment, 1), emit(layout.Circle, 1)),
	OpenSphericalSegment:   rule(OpenSphericalSegment, sphericalSegment(false), emit(layout.SphericalSegment, 1)),

	ExtrudedRing:              rule(ExtrudedRing, extrudedRing, emit(layout.GeneralRing, 2), emit(layout.Cone, 2)),
	ClosedExtrudedRingSegment: rule(ClosedExtrudedRingSegment, extrudedRingSegment, emit(layout.GeneralRing, 2), emit(layout.Cone, 2), emit(layout.Quad, 2)),
	OpenExtrudedRingSegment:   rule(OpenExtrudedRingSegment, extrudedRingSegment, emit(layout.GeneralRing, 2), emit(layout.Cone, 2), emit(layout.Quad, 2)),

	Nut:  rule(Nut, nut, emit(layout.Nut, 1)),
	Ring: rule(Ring, ring, emit(layout.GeneralRing, 1)),

	Torus:              rule(Torus, torus, emit(layout.TorusSegment, 1)),
	ClosedTorusSegment: rule(ClosedTorusSegment, torusSegment, emit(layout.TorusSegment, 1)),
	OpenTorusSegment:   rule(OpenTorusSegment, torusSegment, emit(layout.TorusSegment, 1)),

	OpenGeneralCylinder:        rule(OpenGeneralCylinder, generalCylinder(false), emit(layout.GeneralCylinder, 1)),
	ClosedGeneralCylinder:      rule(ClosedGeneralCylinder, generalCylinder(true), emit(layout.GeneralCylinder, 1), emit(layout.GeneralRing, 2)),
	SolidOpenGeneralCylinder:   rule(SolidOpenGeneralCylinder, solidGeneralCylinder(false), emit(layout.GeneralCylinder, 2), emit(layout.GeneralRing, 2)),
	SolidClosedGeneralCylinder: rule(SolidClosedGeneralCylinder, solidGeneralCylinder(true), emit(layout.GeneralCylinder, 2), emit(layout.GeneralRing, 2), emit(layout.Trapezium, 2)),

	OpenGeneralCone:        rule(OpenGeneralCone, generalCone(false), emit(layout.Cone, 1)),
	ClosedGeneralCone:      rule(ClosedGeneralCone, generalCone(true), emit(layout.Cone, 1), emit(layout.GeneralRing, 2)),
	SolidOpenGeneralCone:   rule(SolidOpenGeneralCone, solidGeneralCone(false), emit(layout.Cone, 2), emit(layout.GeneralRing, 2)),
	SolidClosedGeneralCone: rule(SolidClosedGeneralCone, solidGeneralCone(true), emit(layout.Cone, 2), emit(layout.GeneralRing, 2), emit(layout.Trapezium, 2)),
}

// Rules returns the decomposition table in input kind order.
func Rules() []Rule {
	return append([]Rule(nil), rules[:]...)
}

// RuleFor returns the decomposition of kind.
func RuleFor(kind InputKind) Rule {
	kind.mustBeKnown()
	return rules[kind]
}

// Transform decodes every record of input and writes the derived records
// into out, starting at each target's current offset. It returns the
// offsets following the last record written for each output kind the
// rule feeds.
//
// Before any record is written, Transform checks that input is a whole
// number of records and that every target it needs exists and has room.
// Violations panic.
func Transform(kind InputKind, input []byte, out *Outputs) Offsets {
	r := &rules[kind]
	n := codec.Records(input, kind.Size(), kind.String())

	offsets := make(Offsets, len(r.Emits))
	for _, e := range r.Emits {
		t := out[e.Output]
		if t == nil {
			if n == 0 {
				continue
			}
			panic(fmt.Sprintf("primitive: %s input needs a %s output target", kind, e.Output))
		}
		if need := n * e.Count; t.Remaining() < need {
			panic(fmt.Sprintf("primitive: %s output has room for %d records, %s input needs %d",
				e.Output, t.Remaining(), kind, need))
		}
	}

	if n > 0 {
		r.apply(input, out)
	}

	for _, e := range r.Emits {
		if t := out[e.Output]; t != nil {
			offsets[e.Output] = t.Offset()
		}
	}
	return offsets
}

// ---------------------------------------------------------------------------
// Output sizes
// ---------------------------------------------------------------------------

// Records returns how many kind records the rules derive from inputs.
func Records(kind layout.Kind, inputs Inputs) int {
	total := 0
	for i := range rules {
		r := &rules[i]
		for _, e := range r.Emits {
			if e.Output == kind {
				total += inputs.Records(r.Input) * e.Count
			}
		}
	}
	return total
}

// OutputSize returns the exact byte size of the kind buffer that
// transforming inputs fills.
func OutputSize(kind layout.Kind, inputs Inputs) int {
	return Records(kind, inputs) * kind.Stride()
}

// BoxOutputSize returns the box buffer size for inputs.
func BoxOutputSize(inputs Inputs) int { return OutputSize(layout.Box, inputs) }

// CircleOutputSize returns the circle buffer size for inputs.
func CircleOutputSize(inputs Inputs) int { return OutputSize(layout.Circle, inputs) }

// ConeOutputSize returns the cone buffer size for inputs.
func ConeOutputSize(inputs Inputs) int { return OutputSize(layout.Cone, inputs) }

// EccentricConeOutputSize returns the eccentric cone buffer size for inputs.
func EccentricConeOutputSize(inputs Inputs) int { return OutputSize(layout.EccentricCone, inputs) }

// EllipsoidSegmentOutputSize returns the ellipsoid segment buffer size for inputs.
func EllipsoidSegmentOutputSize(inputs Inputs) int {
	return OutputSize(layout.EllipsoidSegment, inputs)
}

// GeneralCylinderOutputSize returns the general cylinder buffer size for inputs.
func GeneralCylinderOutputSize(inputs Inputs) int {
	return OutputSize(layout.GeneralCylinder, inputs)
}

// GeneralRingOutputSize returns the general ring buffer size for inputs.
func GeneralRingOutputSize(inputs Inputs) int { return OutputSize(layout.GeneralRing, inputs) }

// NutOutputSize returns the nut buffer size for inputs.
func NutOutputSize(inputs Inputs) int { return OutputSize(layout.Nut, inputs) }

// QuadOutputSize returns the quad buffer size for inputs.
func QuadOutputSize(inputs Inputs) int { return OutputSize(layout.Quad, inputs) }

// SphericalSegmentOutputSize returns the spherical segment buffer size for inputs.
func SphericalSegmentOutputSize(inputs Inputs) int {
	return OutputSize(layout.SphericalSegment, inputs)
}

// TorusSegmentOutputSize returns the torus segment buffer size for inputs.
func TorusSegmentOutputSize(inputs Inputs) int { return OutputSize(layout.TorusSegment, inputs) }

// TrapeziumOutputSize returns the trapezium buffer size for inputs.
func TrapeziumOutputSize(inputs Inputs) int { return OutputSize(layout.Trapezium, inputs) }
