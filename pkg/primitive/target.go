package primitive

import (
	"fmt"

	"github.com/chazu/sector/pkg/codec"
	"github.com/chazu/sector/pkg/layout"
	"github.com/go-gl/mathgl/mgl64"
)

// attributes lists, per output kind, every attribute its writers emit.
var attributes = [layout.NumKinds][]layout.Attribute{
	layout.Box:    {layout.TreeIndex, layout.Color, layout.InstanceMatrix},
	layout.Nut:    {layout.TreeIndex, layout.Color, layout.InstanceMatrix},
	layout.Quad:   {layout.TreeIndex, layout.Color, layout.InstanceMatrix},
	layout.Circle: {layout.TreeIndex, layout.Color, layout.InstanceMatrix, layout.Normal},
	layout.Cone: {
		layout.TreeIndex, layout.Color, layout.Angle, layout.ArcAngle,
		layout.CenterA, layout.CenterB, layout.RadiusA, layout.RadiusB, layout.LocalXAxis,
	},
	layout.EccentricCone: {
		layout.TreeIndex, layout.Color, layout.CenterA, layout.CenterB,
		layout.RadiusA, layout.RadiusB, layout.Normal,
	},
	layout.EllipsoidSegment: {
		layout.TreeIndex, layout.Color, layout.Center, layout.Normal,
		layout.HorizontalRadius, layout.VerticalRadius, layout.Height,
	},
	layout.GeneralCylinder: {
		layout.TreeIndex, layout.Color, layout.CenterA, layout.CenterB, layout.Radius,
		layout.Angle, layout.PlaneA, layout.PlaneB, layout.ArcAngle, layout.LocalXAxis,
	},
	layout.GeneralRing: {
		layout.TreeIndex, layout.Color, layout.Normal, layout.Thickness,
		layout.Angle, layout.ArcAngle, layout.InstanceMatrix,
	},
	layout.SphericalSegment: {
		layout.TreeIndex, layout.Color, layout.Center, layout.Normal, layout.Radius, layout.Height,
	},
	layout.TorusSegment: {
		layout.TreeIndex, layout.Color, layout.Size, layout.Radius,
		layout.TubeRadius, layout.ArcAngle, layout.InstanceMatrix,
	},
	layout.Trapezium: {
		layout.TreeIndex, layout.Color, layout.Vertex1, layout.Vertex2, layout.Vertex3, layout.Vertex4,
	},
}

// Attributes returns the attributes a layout for kind must provide.
func Attributes(kind layout.Kind) []layout.Attribute {
	return append([]layout.Attribute(nil), attributes[kind]...)
}

// Target is an output buffer being filled with records of one kind. It
// writes each record at the current offset and advances by the stride.
type Target struct {
	kind    layout.Kind
	buf     []byte
	off     int
	offsets [layout.NumAttributes]int
}

// NewTarget wraps buf as an output target for kind. Every attribute the
// kind's writers need is resolved against l here; a missing or
// out-of-record attribute panics before anything is written.
func NewTarget(kind layout.Kind, buf []byte, l layout.Layout) *Target {
	if l == nil {
		panic(fmt.Sprintf("primitive: no layout for %s output", kind))
	}
	t := &Target{kind: kind, buf: buf}
	for i := range t.offsets {
		t.offsets[i] = -1
	}
	for _, a := range attributes[kind] {
		off, ok := l.Offset(a)
		if !ok {
			panic(fmt.Sprintf("primitive: %s layout is missing attribute %s", kind, a))
		}
		if off < 0 || off+a.Width() > kind.Stride() {
			panic(fmt.Sprintf("primitive: %s layout places %s at %d, outside the %d-byte record",
				kind, a, off, kind.Stride()))
		}
		t.offsets[a] = off
	}
	return t
}

// Kind returns the output kind of t.
func (t *Target) Kind() layout.Kind { return t.kind }

// Offset returns the byte offset of the next record.
func (t *Target) Offset() int { return t.off }

// Bytes returns the whole underlying buffer.
func (t *Target) Bytes() []byte { return t.buf }

// Remaining returns how many more records fit in the buffer.
func (t *Target) Remaining() int {
	return (len(t.buf) - t.off) / t.kind.Stride()
}

// begin reserves the next record and writes the common header.
func (t *Target) begin(h *Header) record {
	stride := t.kind.Stride()
	if t.off+stride > len(t.buf) {
		panic(fmt.Sprintf("primitive: %s output overflow at offset %d (buffer %d bytes)",
			t.kind, t.off, len(t.buf)))
	}
	r := record{t: t, base: t.off}
	t.off += stride
	r.float(layout.TreeIndex, float64(h.TreeIndex))
	codec.PutColor(t.buf, r.at(layout.Color), h.Color)
	return r
}

// record addresses one output record inside a Target.
type record struct {
	t    *Target
	base int
}

func (r record) at(a layout.Attribute) int {
	off := r.t.offsets[a]
	if off < 0 {
		panic(fmt.Sprintf("primitive: %s writer uses undeclared attribute %s", r.t.kind, a))
	}
	return r.base + off
}

func (r record) float(a layout.Attribute, v float64) {
	codec.PutFloat(r.t.buf, r.at(a), v)
}

func (r record) vec3(a layout.Attribute, v mgl64.Vec3) {
	codec.PutVec3(r.t.buf, r.at(a), v)
}

func (r record) vec4(a layout.Attribute, v mgl64.Vec4) {
	codec.PutVec4(r.t.buf, r.at(a), v)
}

func (r record) mat4(a layout.Attribute, m mgl64.Mat4) {
	codec.PutMat4(r.t.buf, r.at(a), m)
}

// Outputs holds the target for each output kind. Kinds a transform does
// not emit may be nil.
type Outputs [layout.NumKinds]*Target

// NewOutputs allocates exactly sized buffers for every output kind fed by
// inputs and wraps them in targets using layouts.
func NewOutputs(inputs Inputs, layouts layout.Set) *Outputs {
	var out Outputs
	for _, kind := range layout.Kinds() {
		size := OutputSize(kind, inputs)
		if size == 0 {
			continue
		}
		out[kind] = NewTarget(kind, make([]byte, size), layouts[kind])
	}
	return &out
}

// Offsets maps output kinds to the byte offset following the last record
// written, so callers can keep appending.
type Offsets map[layout.Kind]int
