package primitive

import (
	"math"
	"testing"

	"github.com/chazu/sector/pkg/codec"
	"github.com/chazu/sector/pkg/geometry"
	"github.com/chazu/sector/pkg/layout"
	"github.com/go-gl/mathgl/mgl64"
)

func straightCylinder() GeneralCylinderInput {
	return GeneralCylinderInput{
		Header: testHeader, Center: origin, Axis: up,
		Height: 10, Radius: 2, ArcAngle: geometry.TwoPi,
	}
}

func TestGeneralCylinderFlatCaps(t *testing.T) {
	out := run(t, ClosedGeneralCylinder, encode(straightCylinder()))

	body := reader(t, out, layout.GeneralCylinder)
	if got := body.vec4(0, layout.PlaneA); !got.ApproxEqualThreshold(mgl64.Vec4{0, 0, 1, 5}, tol) {
		t.Errorf("planeA = %v, want (0,0,1,5)", got)
	}
	if got := body.vec4(0, layout.PlaneB); !got.ApproxEqualThreshold(mgl64.Vec4{0, 0, -1, -5}, tol) {
		t.Errorf("planeB = %v, want (0,0,-1,-5)", got)
	}
	if got := body.vec3(0, layout.CenterA); !vecNear(got, mgl64.Vec3{0, 0, 5}) {
		t.Errorf("centerA = %v, want (0,0,5)", got)
	}
	if got := body.float(0, layout.Radius); got != 2 {
		t.Errorf("radius = %v, want 2", got)
	}

	rings := reader(t, out, layout.GeneralRing)
	for i := 0; i < 2; i++ {
		if got := rings.float(i, layout.Angle); !near(got, 0) {
			t.Errorf("ring %d angle = %v, want 0", i, got)
		}
		if got := rings.float(i, layout.Thickness); got != 1 {
			t.Errorf("ring %d thickness = %v, want 1", i, got)
		}
	}
	m := rings.mat4(0, layout.InstanceMatrix)
	if got := geometry.TransformPoint(m, mgl64.Vec3{0.5, 0, 0}); !vecNear(got, mgl64.Vec3{2, 0, 5}) {
		t.Errorf("ring A rim = %v, want (2,0,5)", got)
	}
}

func TestCylinderCapAngles(t *testing.T) {
	in := straightCylinder()
	g := NewGeneralCylinder(&in)
	if !near(g.CapA.Angle, 0) || !near(g.CapB.Angle, 0) {
		t.Errorf("cap angles = %v, %v, want 0, 0", g.CapA.Angle, g.CapB.Angle)
	}
	if !near(g.RingAngleA(), 0) || !near(g.RingAngleB(), 0) {
		t.Errorf("ring angles = %v, %v, want 0, 0", g.RingAngleA(), g.RingAngleB())
	}
	if g.CapA.MajorRadius != 2 || g.CapA.MinorRadius != 2 {
		t.Errorf("flat cap radii = %v, %v, want 2, 2", g.CapA.MajorRadius, g.CapA.MinorRadius)
	}
}

func TestSlopedCap(t *testing.T) {
	in := straightCylinder()
	in.SlopeA = math.Pi / 4
	g := NewGeneralCylinder(&in)

	if got := g.CapA.MajorRadius; !near(got, 2*math.Sqrt2) {
		t.Errorf("major radius = %v, want 2√2", got)
	}
	if got := g.CapA.MinorRadius; got != 2 {
		t.Errorf("minor radius = %v, want 2", got)
	}
	if !vecNear(g.CenterA, mgl64.Vec3{0, 0, 7}) {
		t.Errorf("centerA = %v, want (0,0,7)", g.CenterA)
	}
	if !vecNear(g.CenterB, mgl64.Vec3{0, 0, -5}) {
		t.Errorf("centerB = %v, want (0,0,-5) for a flat cap B", g.CenterB)
	}
	want := mgl64.Vec3{1, 0, 1}.Normalize()
	if !vecNear(g.CapA.Normal, want) {
		t.Errorf("normal = %v, want %v", g.CapA.Normal, want)
	}
	// The major axis stays in the cap plane.
	if d := g.CapA.MajorAxis.Dot(g.CapA.Normal); !near(d, 0) {
		t.Errorf("major axis · normal = %v, want 0", d)
	}
}

func TestCapsOppose(t *testing.T) {
	tests := []struct {
		name           string
		axis           codec.Vec3f
		slopeA, slopeB float32
		zA, zB         float32
	}{
		{"up flat", codec.Vec3f{0, 0, 1}, 0, 0, 0, 0},
		{"up sloped", codec.Vec3f{0, 0, 1}, 0.7, -0.4, 0.2, 2},
		{"x steep", codec.Vec3f{1, 0, 0}, 1.4, 1.4, 3, -3},
		{"diagonal", codec.Vec3f{1, 1, 1}, 0.3, 0.9, 1, 0.5},
		{"down", codec.Vec3f{0, 0, -1}, 0.5, 0.5, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := straightCylinder()
			in.Axis = tt.axis
			in.SlopeA, in.SlopeB = tt.slopeA, tt.slopeB
			in.ZAngleA, in.ZAngleB = tt.zA, tt.zB
			g := NewGeneralCylinder(&in)
			axis := tt.axis.Vec64().Normalize()

			if d := g.CapA.Normal.Dot(axis); d <= 0 {
				t.Errorf("cap A normal · axis = %v, want > 0", d)
			}
			if d := g.CapB.Normal.Dot(axis); d >= 0 {
				t.Errorf("cap B normal · axis = %v, want < 0", d)
			}
			if !near(g.CapA.Normal.Len(), 1) || !near(g.CapB.Normal.Len(), 1) {
				t.Errorf("normals not unit: %v, %v", g.CapA.Normal, g.CapB.Normal)
			}
			if g.CapA.MajorRadius < g.CapA.MinorRadius-tol {
				t.Errorf("major radius %v below minor %v", g.CapA.MajorRadius, g.CapA.MinorRadius)
			}
			for _, a := range []float64{g.RingAngleA(), g.RingAngleB(), g.CapA.Angle, g.CapB.Angle} {
				if a <= -math.Pi || a > math.Pi {
					t.Errorf("angle %v outside (-π, π]", a)
				}
			}
		})
	}
}

func TestWall(t *testing.T) {
	in := straightCylinder()
	g := NewGeneralCylinder(&in)
	got := g.Wall(0, 0.5)
	want := [4]mgl64.Vec3{{2, 0, 5}, {1.5, 0, 5}, {1.5, 0, -5}, {2, 0, -5}}
	for i := range want {
		if !vecNear(got[i], want[i]) {
			t.Errorf("corner %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSlopedWallMeetsCapPlane(t *testing.T) {
	in := straightCylinder()
	in.SlopeA, in.ZAngleA = 0.5, 0.3
	in.SlopeB = -0.2
	g := NewGeneralCylinder(&in)
	for _, angle := range []float64{0, 1, 2.5} {
		v := g.Wall(angle, 0.5)
		for i, c := range []*CylinderCap{&g.CapA, &g.CapA, &g.CapB, &g.CapB} {
			if d := c.Normal.Dot(v[i].Sub(c.Center)); !near(d, 0) {
				t.Errorf("angle %v corner %d off its cap plane by %v", angle, i, d)
			}
		}
	}
}

func TestSolidGeneralCylinderOutputs(t *testing.T) {
	in := SolidGeneralCylinderInput{GeneralCylinderInput: straightCylinder(), Thickness: 0.5}
	in.ArcAngle = math.Pi
	out := run(t, SolidClosedGeneralCylinder, encode(in))

	bodies := reader(t, out, layout.GeneralCylinder)
	if bodies.float(0, layout.Radius) != 2 || bodies.float(1, layout.Radius) != 1.5 {
		t.Errorf("body radii = %v, %v, want 2, 1.5", bodies.float(0, layout.Radius), bodies.float(1, layout.Radius))
	}
	rings := reader(t, out, layout.GeneralRing)
	if got := rings.float(0, layout.Thickness); got != 0.25 {
		t.Errorf("ring thickness = %v, want 0.25", got)
	}

	walls := reader(t, out, layout.Trapezium)
	if got := walls.vec3(0, layout.Vertex2); !vecNear(got, mgl64.Vec3{1.5, 0, 5}) {
		t.Errorf("first wall inner A = %v", got)
	}
	if got := walls.vec3(1, layout.Vertex1); !vecNear(got, mgl64.Vec3{-2, 0, 5}) {
		t.Errorf("second wall outer A = %v, want (-2,0,5)", got)
	}
}
