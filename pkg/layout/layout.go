// Package layout describes the byte layout of output records. The renderer
// owns the layout: every output kind has a fixed stride, and each attribute
// a writer emits is placed at an offset looked up through a Layout.
package layout

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Output kinds
// ---------------------------------------------------------------------------

// Kind identifies an output buffer.
type Kind int

const (
	Box Kind = iota
	Circle
	Cone
	EccentricCone
	EllipsoidSegment
	GeneralCylinder
	GeneralRing
	Nut
	Quad
	SphericalSegment
	TorusSegment
	Trapezium

	// NumKinds is the number of output kinds.
	NumKinds
)

var kindInfo = [NumKinds]struct {
	name   string
	stride int
}{
	Box:              {"box", 72},
	Circle:           {"circle", 84},
	Cone:             {"cone", 60},
	EccentricCone:    {"eccentric-cone", 52},
	EllipsoidSegment: {"ellipsoid-segment", 44},
	GeneralCylinder:  {"general-cylinder", 88},
	GeneralRing:      {"general-ring", 96},
	Nut:              {"nut", 72},
	Quad:             {"quad", 72},
	SphericalSegment: {"spherical-segment", 40},
	TorusSegment:     {"torus-segment", 88},
	Trapezium:        {"trapezium", 56},
}

// Kinds returns every output kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, NumKinds)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// String returns the kebab-case name used in file names and config keys.
func (k Kind) String() string {
	if k < 0 || k >= NumKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindInfo[k].name
}

// Stride returns the size in bytes of one output record.
func (k Kind) Stride() int {
	return kindInfo[k].stride
}

// ParseKind resolves a kebab-case output kind name.
func ParseKind(name string) (Kind, error) {
	for i, info := range kindInfo {
		if info.name == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("layout: unknown output kind %q", name)
}

// ---------------------------------------------------------------------------
// Attributes
// ---------------------------------------------------------------------------

// Attribute names one field of an output record.
type Attribute int

const (
	TreeIndex Attribute = iota
	Color
	InstanceMatrix
	Normal
	CenterA
	CenterB
	RadiusA
	RadiusB
	Angle
	ArcAngle
	LocalXAxis
	Center
	HorizontalRadius
	VerticalRadius
	Height
	Radius
	PlaneA
	PlaneB
	Thickness
	Size
	TubeRadius
	Vertex1
	Vertex2
	Vertex3
	Vertex4

	// NumAttributes is the number of attributes.
	NumAttributes
)

const (
	float = 4
	vec3  = 12
	vec4  = 16
	mat4  = 64
)

var attributeInfo = [NumAttributes]struct {
	name  string
	width int
}{
	TreeIndex:        {"treeIndex", float},
	Color:            {"color", 4},
	InstanceMatrix:   {"instanceMatrix", mat4},
	Normal:           {"normal", vec3},
	CenterA:          {"centerA", vec3},
	CenterB:          {"centerB", vec3},
	RadiusA:          {"radiusA", float},
	RadiusB:          {"radiusB", float},
	Angle:            {"angle", float},
	ArcAngle:         {"arcAngle", float},
	LocalXAxis:       {"localXAxis", vec3},
	Center:           {"center", vec3},
	HorizontalRadius: {"horizontalRadius", float},
	VerticalRadius:   {"verticalRadius", float},
	Height:           {"height", float},
	Radius:           {"radius", float},
	PlaneA:           {"planeA", vec4},
	PlaneB:           {"planeB", vec4},
	Thickness:        {"thickness", float},
	Size:             {"size", float},
	TubeRadius:       {"tubeRadius", float},
	Vertex1:          {"vertex1", vec3},
	Vertex2:          {"vertex2", vec3},
	Vertex3:          {"vertex3", vec3},
	Vertex4:          {"vertex4", vec3},
}

func (a Attribute) String() string {
	if a < 0 || a >= NumAttributes {
		return fmt.Sprintf("Attribute(%d)", int(a))
	}
	return attributeInfo[a].name
}

// Width returns the encoded size of the attribute in bytes.
func (a Attribute) Width() int {
	return attributeInfo[a].width
}

// ParseAttribute resolves a camelCase attribute name.
func ParseAttribute(name string) (Attribute, error) {
	for i, info := range attributeInfo {
		if info.name == name {
			return Attribute(i), nil
		}
	}
	return 0, fmt.Errorf("layout: unknown attribute %q", name)
}

// ---------------------------------------------------------------------------
// Layouts
// ---------------------------------------------------------------------------

// Layout maps attributes to byte offsets within one output record.
type Layout interface {
	Offset(a Attribute) (int, bool)
}

// Compile-time interface check.
var _ Layout = AttributeMap(nil)

// AttributeMap is a Layout backed by a plain map.
type AttributeMap map[Attribute]int

// Offset returns the byte offset of a, if present.
func (m AttributeMap) Offset(a Attribute) (int, bool) {
	off, ok := m[a]
	return off, ok
}

// Validate checks that every attribute fits inside one record of kind.
func (m AttributeMap) Validate(kind Kind) error {
	for _, a := range m.sorted() {
		off := m[a]
		if off < 0 || off+a.Width() > kind.Stride() {
			return fmt.Errorf("layout: %s: %s at offset %d (width %d) exceeds stride %d",
				kind, a, off, a.Width(), kind.Stride())
		}
	}
	return nil
}

func (m AttributeMap) sorted() []Attribute {
	attrs := make([]Attribute, 0, len(m))
	for a := range m {
		attrs = append(attrs, a)
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i] < attrs[j] })
	return attrs
}

func (m AttributeMap) clone() AttributeMap {
	out := make(AttributeMap, len(m))
	for a, off := range m {
		out[a] = off
	}
	return out
}

func (m AttributeMap) String() string {
	parts := make([]string, 0, len(m))
	for _, a := range m.sorted() {
		parts = append(parts, fmt.Sprintf("%s@%d", a, m[a]))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// Set holds one layout per output kind.
type Set map[Kind]Layout

// Defaults returns the packed layouts used by the stock instancing shaders.
func Defaults() Set {
	header := func(rest AttributeMap) AttributeMap {
		rest[TreeIndex] = 0
		rest[Color] = 4
		return rest
	}
	matrix := func() AttributeMap { return header(AttributeMap{InstanceMatrix: 8}) }

	return Set{
		Box:    matrix(),
		Nut:    matrix(),
		Quad:   matrix(),
		Circle: header(AttributeMap{InstanceMatrix: 8, Normal: 72}),
		Cone: header(AttributeMap{
			Angle: 8, ArcAngle: 12, CenterA: 16, CenterB: 28,
			RadiusA: 40, RadiusB: 44, LocalXAxis: 48,
		}),
		EccentricCone: header(AttributeMap{
			CenterA: 8, CenterB: 20, RadiusA: 32, RadiusB: 36, Normal: 40,
		}),
		EllipsoidSegment: header(AttributeMap{
			Center: 8, Normal: 20, HorizontalRadius: 32, VerticalRadius: 36, Height: 40,
		}),
		GeneralCylinder: header(AttributeMap{
			CenterA: 8, CenterB: 20, Radius: 32, Angle: 36,
			PlaneA: 40, PlaneB: 56, ArcAngle: 72, LocalXAxis: 76,
		}),
		GeneralRing: header(AttributeMap{
			Normal: 8, Thickness: 20, Angle: 24, ArcAngle: 28, InstanceMatrix: 32,
		}),
		SphericalSegment: header(AttributeMap{
			Center: 8, Normal: 20, Radius: 32, Height: 36,
		}),
		TorusSegment: header(AttributeMap{
			Size: 8, Radius: 12, TubeRadius: 16, ArcAngle: 20, InstanceMatrix: 24,
		}),
		Trapezium: header(AttributeMap{
			Vertex1: 8, Vertex2: 20, Vertex3: 32, Vertex4: 44,
		}),
	}
}

// UnmarshalYAML reads per-kind attribute overrides on top of Defaults:
//
//	cone:
//	  angle: 8
//	  localXAxis: 48
//
// Attributes not mentioned keep their default offsets. Unknown kinds or
// attributes and offsets that overflow the stride are errors.
func (s *Set) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]map[string]int
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	out, err := Defaults().Override(raw)
	if err != nil {
		return err
	}
	*s = out
	return nil
}

// Override returns a copy of s with the named offsets replaced. Only
// AttributeMap layouts can be overridden.
func (s Set) Override(overrides map[string]map[string]int) (Set, error) {
	out := make(Set, len(s))
	for k, l := range s {
		out[k] = l
	}

	kinds := make([]string, 0, len(overrides))
	for name := range overrides {
		kinds = append(kinds, name)
	}
	sort.Strings(kinds)

	for _, name := range kinds {
		kind, err := ParseKind(name)
		if err != nil {
			return nil, err
		}
		var m AttributeMap
		switch base := out[kind].(type) {
		case AttributeMap:
			m = base.clone()
		case nil:
			m = AttributeMap{}
		default:
			return nil, fmt.Errorf("layout: %s: cannot override layout of type %T", kind, base)
		}
		for attrName, off := range overrides[name] {
			a, err := ParseAttribute(attrName)
			if err != nil {
				return nil, fmt.Errorf("layout: %s: unknown attribute %q", kind, attrName)
			}
			m[a] = off
		}
		if err := m.Validate(kind); err != nil {
			return nil, err
		}
		out[kind] = m
	}
	return out, nil
}
