package primitive

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/chazu/sector/pkg/codec"
	"github.com/chazu/sector/pkg/layout"
	"github.com/go-gl/mathgl/mgl64"
)

const tol = 1e-5

var (
	testHeader = Header{TreeIndex: 7, Color: codec.Color{10, 20, 30, 255}, Diagonal: 3}
	origin     = codec.Vec3f{0, 0, 0}
	up         = codec.Vec3f{0, 0, 1}
)

// encode serializes records in wire order.
func encode(recs ...any) []byte {
	var buf []byte
	for _, rec := range recs {
		var err error
		buf, err = binary.Append(buf, binary.LittleEndian, rec)
		if err != nil {
			panic(err)
		}
	}
	return buf
}

// sample returns one well-formed record of kind.
func sample(kind InputKind) any {
	h := testHeader
	gcyl := GeneralCylinderInput{
		Header: h, Center: codec.Vec3f{1, 2, 3}, Axis: codec.Vec3f{0, 1, 1},
		Height: 10, Radius: 2, RotationAngle: 0.3, ArcAngle: 2,
		SlopeA: 0.2, SlopeB: -0.1, ZAngleA: 0.5, ZAngleB: 1,
	}
	gcone := GeneralConeInput{
		Header: h, Center: codec.Vec3f{1, 2, 3}, Axis: codec.Vec3f{1, 0, 0},
		Height: 10, RadiusA: 2, RadiusB: 3, RotationAngle: 0.3, ArcAngle: 2,
	}
	switch kind {
	case Box:
		return BoxInput{Header: h, Center: origin, Normal: up, Delta: codec.Vec3f{2, 2, 2}}
	case Circle:
		return CircleInput{Header: h, Center: origin, Normal: up, Radius: 1}
	case ClosedCone, OpenCone:
		return ConeInput{Header: h, Center: origin, Axis: up, Height: 10, RadiusA: 3, RadiusB: 5}
	case ClosedCylinder, OpenCylinder:
		return CylinderInput{Header: h, Center: origin, Axis: up, Height: 4, Radius: 1}
	case ClosedEccentricCone, OpenEccentricCone:
		return EccentricConeInput{
			Header: h, Center: origin, Axis: codec.Vec3f{0, 0.6, 0.8}, Height: 4,
			RadiusA: 1, RadiusB: 2, CapNormal: up,
		}
	case Ellipsoid:
		return EllipsoidInput{Header: h, Center: origin, Normal: up, HorizontalRadius: 4, VerticalRadius: 5}
	case ClosedEllipsoidSegment, OpenEllipsoidSegment:
		return EllipsoidSegmentInput{
			EllipsoidInput: EllipsoidInput{Header: h, Center: origin, Normal: up, HorizontalRadius: 4, VerticalRadius: 5},
			Height:         2,
		}
	case ExtrudedRing:
		return ExtrudedRingInput{Header: h, Center: origin, Axis: up, Height: 2, InnerRadius: 1, OuterRadius: 3}
	case ClosedExtrudedRingSegment, OpenExtrudedRingSegment:
		return ExtrudedRingSegmentInput{
			ExtrudedRingInput: ExtrudedRingInput{Header: h, Center: origin, Axis: up, Height: 2, InnerRadius: 1, OuterRadius: 3},
			RotationAngle:     0,
			ArcAngle:          math.Pi / 2,
		}
	case Nut:
		return NutInput{Header: h, Center: origin, Axis: up, Height: 1, Radius: 2, RotationAngle: 0.5}
	case Ring:
		return RingInput{Header: h, Center: origin, Normal: up, InnerRadius: 1, OuterRadius: 4}
	case Sphere:
		return SphereInput{Header: h, Center: origin, Radius: 5}
	case ClosedSphericalSegment, OpenSphericalSegment:
		return SphericalSegmentInput{Header: h, Center: origin, Normal: up, Radius: 5, Height: 2}
	case Torus:
		return TorusInput{Header: h, Center: origin, Normal: up, Radius: 5, TubeRadius: 1}
	case ClosedTorusSegment, OpenTorusSegment:
		return TorusSegmentInput{
			TorusInput:    TorusInput{Header: h, Center: origin, Normal: up, Radius: 5, TubeRadius: 1},
			RotationAngle: 0.25,
			ArcAngle:      1,
		}
	case OpenGeneralCylinder, ClosedGeneralCylinder:
		return gcyl
	case SolidOpenGeneralCylinder, SolidClosedGeneralCylinder:
		return SolidGeneralCylinderInput{GeneralCylinderInput: gcyl, Thickness: 0.5}
	case OpenGeneralCone, ClosedGeneralCone:
		return gcone
	case SolidOpenGeneralCone, SolidClosedGeneralCone:
		return SolidGeneralConeInput{GeneralConeInput: gcone, Thickness: 0.5}
	}
	panic("no sample for " + kind.String())
}

// samples returns n copies of the sample record of kind.
func samples(kind InputKind, n int) []byte {
	recs := make([]any, n)
	for i := range recs {
		recs[i] = sample(kind)
	}
	return encode(recs...)
}

// run transforms a single input kind into freshly allocated outputs.
func run(t *testing.T, kind InputKind, buf []byte) *Outputs {
	t.Helper()
	inputs := Inputs{kind: buf}
	out := NewOutputs(inputs, layout.Defaults())
	Transform(kind, buf, out)
	return out
}

// field reads output records back for assertions.
type field struct {
	t      *testing.T
	buf    []byte
	layout layout.Layout
	stride int
}

func reader(t *testing.T, out *Outputs, kind layout.Kind) field {
	t.Helper()
	target := out[kind]
	if target == nil {
		t.Fatalf("no %s output", kind)
	}
	return field{t: t, buf: target.Bytes(), layout: layout.Defaults()[kind], stride: kind.Stride()}
}

func (f field) count() int { return len(f.buf) / f.stride }

func (f field) at(i int, a layout.Attribute) []byte {
	off, ok := f.layout.Offset(a)
	if !ok {
		f.t.Fatalf("layout has no %s", a)
	}
	return f.buf[i*f.stride+off:]
}

func (f field) float(i int, a layout.Attribute) float64 {
	return float64(codec.NewReader(f.at(i, a)).Float32())
}

func (f field) vec3(i int, a layout.Attribute) mgl64.Vec3 {
	return codec.NewReader(f.at(i, a)).Vec3().Vec64()
}

func (f field) vec4(i int, a layout.Attribute) mgl64.Vec4 {
	r := codec.NewReader(f.at(i, a))
	return mgl64.Vec4{float64(r.Float32()), float64(r.Float32()), float64(r.Float32()), float64(r.Float32())}
}

func (f field) mat4(i int, a layout.Attribute) mgl64.Mat4 {
	r := codec.NewReader(f.at(i, a))
	var m mgl64.Mat4
	for j := range m {
		m[j] = float64(r.Float32())
	}
	return m
}

func near(a, b float64) bool { return math.Abs(a-b) <= tol }

func vecNear(a, b mgl64.Vec3) bool { return a.ApproxEqualThreshold(b, tol) }

func mustPanic(t *testing.T, what string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s: expected panic", what)
		}
	}()
	fn()
}

func allZero(b []byte) bool {
	return bytes.Count(b, []byte{0}) == len(b)
}
