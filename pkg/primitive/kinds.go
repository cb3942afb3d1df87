// Package primitive turns sector input records into instanced output
// records. Each input kind is described by one Rule in a declarative table:
// which output kinds it feeds, how many records per input, and the
// generator that derives and writes them. Size calculation and the
// transform driver both read that table, so the bytes a transform writes
// always match the size computed for it.
//
// The package performs no validation of geometry. Contract violations
// (misaligned input buffers, missing layout attributes, undersized output
// buffers) are caller bugs and panic.
package primitive

import (
	"fmt"
	"sort"
)

// InputKind identifies one input buffer produced by the sector parser.
type InputKind int

const (
	Box InputKind = iota
	Circle
	ClosedCone
	ClosedCylinder
	ClosedEccentricCone
	ClosedEllipsoidSegment
	ClosedExtrudedRingSegment
	ClosedSphericalSegment
	ClosedTorusSegment
	Ellipsoid
	ExtrudedRing
	Nut
	OpenCone
	OpenCylinder
	OpenEccentricCone
	OpenEllipsoidSegment
	OpenExtrudedRingSegment
	OpenSphericalSegment
	OpenTorusSegment
	Ring
	Sphere
	Torus
	OpenGeneralCylinder
	ClosedGeneralCylinder
	SolidOpenGeneralCylinder
	SolidClosedGeneralCylinder
	OpenGeneralCone
	ClosedGeneralCone
	SolidOpenGeneralCone
	SolidClosedGeneralCone

	// NumInputKinds is the number of input kinds.
	NumInputKinds
)

var inputInfo = [NumInputKinds]struct {
	name string
	size int
}{
	Box:                        {"box", 52},
	Circle:                     {"circle", 40},
	ClosedCone:                 {"closed-cone", 48},
	ClosedCylinder:             {"closed-cylinder", 44},
	ClosedEccentricCone:        {"closed-eccentric-cone", 60},
	ClosedEllipsoidSegment:     {"closed-ellipsoid-segment", 48},
	ClosedExtrudedRingSegment:  {"closed-extruded-ring-segment", 56},
	ClosedSphericalSegment:     {"closed-spherical-segment", 44},
	ClosedTorusSegment:         {"closed-torus-segment", 52},
	Ellipsoid:                  {"ellipsoid", 44},
	ExtrudedRing:               {"extruded-ring", 48},
	Nut:                        {"nut", 48},
	OpenCone:                   {"open-cone", 48},
	OpenCylinder:               {"open-cylinder", 44},
	OpenEccentricCone:          {"open-eccentric-cone", 60},
	OpenEllipsoidSegment:       {"open-ellipsoid-segment", 48},
	OpenExtrudedRingSegment:    {"open-extruded-ring-segment", 56},
	OpenSphericalSegment:       {"open-spherical-segment", 44},
	OpenTorusSegment:           {"open-torus-segment", 52},
	Ring:                       {"ring", 44},
	Sphere:                     {"sphere", 28},
	Torus:                      {"torus", 44},
	OpenGeneralCylinder:        {"open-general-cylinder", 68},
	ClosedGeneralCylinder:      {"closed-general-cylinder", 68},
	SolidOpenGeneralCylinder:   {"solid-open-general-cylinder", 72},
	SolidClosedGeneralCylinder: {"solid-closed-general-cylinder", 72},
	OpenGeneralCone:            {"open-general-cone", 72},
	ClosedGeneralCone:          {"closed-general-cone", 72},
	SolidOpenGeneralCone:       {"solid-open-general-cone", 76},
	SolidClosedGeneralCone:     {"solid-closed-general-cone", 76},
}

// InputKinds returns every input kind in declaration order.
func InputKinds() []InputKind {
	out := make([]InputKind, NumInputKinds)
	for i := range out {
		out[i] = InputKind(i)
	}
	return out
}

// String returns the kebab-case kind name, which is also the fixture DSL
// builtin that produces records of this kind.
func (k InputKind) String() string {
	if k < 0 || k >= NumInputKinds {
		return fmt.Sprintf("InputKind(%d)", int(k))
	}
	return inputInfo[k].name
}

// Size returns the byte size of one input record. It panics if k is not
// a known kind.
func (k InputKind) Size() int {
	k.mustBeKnown()
	return inputInfo[k].size
}

// Valid reports whether k is one of the declared input kinds.
func (k InputKind) Valid() bool { return k >= 0 && k < NumInputKinds }

func (k InputKind) mustBeKnown() {
	if !k.Valid() {
		panic(fmt.Sprintf("primitive: unknown input kind %d", int(k)))
	}
}

// ParseInputKind resolves a kebab-case input kind name.
func ParseInputKind(name string) (InputKind, error) {
	for i, info := range inputInfo {
		if info.name == name {
			return InputKind(i), nil
		}
	}
	return 0, fmt.Errorf("primitive: unknown input kind %q", name)
}

// Inputs holds the raw input buffer of each kind present in a sector.
// Absent kinds are treated as empty buffers.
type Inputs map[InputKind][]byte

// Records returns the number of records held for kind. It panics if the
// buffer length is not a multiple of the record size.
func (in Inputs) Records(kind InputKind) int {
	buf := in[kind]
	if len(buf)%kind.Size() != 0 {
		panic(fmt.Sprintf("primitive: %s input length %d is not a multiple of %d",
			kind, len(buf), kind.Size()))
	}
	return len(buf) / kind.Size()
}

// Kinds returns the kinds present in, in declaration order.
func (in Inputs) Kinds() []InputKind {
	kinds := make([]InputKind, 0, len(in))
	for k := range in {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
