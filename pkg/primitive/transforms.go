package primitive

import (
	"math"

	"github.com/chazu/sector/pkg/codec"
	"github.com/chazu/sector/pkg/geometry"
	"github.com/chazu/sector/pkg/layout"
	"github.com/go-gl/mathgl/mgl64"
)

// frame is the local coordinate system of an axial primitive: +Z maps to
// the axis and +X to localX.
type frame struct {
	center   mgl64.Vec3
	axis     mgl64.Vec3
	localX   mgl64.Vec3
	rotation mgl64.Mat4
}

func newFrame(center, axis codec.Vec3f) frame {
	a := axis.Vec64().Normalize()
	rot := geometry.RotateToZ(a)
	return frame{
		center:   center.Vec64(),
		axis:     a,
		localX:   geometry.TransformDirection(rot, geometry.XAxis),
		rotation: rot,
	}
}

// ends returns the centers of the +axis (A) and -axis (B) ends.
func (f frame) ends(height float64) (a, b mgl64.Vec3) {
	half := f.axis.Mul(height / 2)
	return f.center.Add(half), f.center.Sub(half)
}

// radial returns the unit direction at angle about the axis, measured from
// localX.
func (f frame) radial(angle float64) mgl64.Vec3 {
	sin, cos := math.Sincos(angle)
	return geometry.TransformDirection(f.rotation, mgl64.Vec3{cos, sin, 0})
}

// ---------------------------------------------------------------------------
// Record writers
// ---------------------------------------------------------------------------

func writeMatrix(t *Target, h *Header, m mgl64.Mat4) {
	t.begin(h).mat4(layout.InstanceMatrix, m)
}

func writeCircle(t *Target, h *Header, center, normal mgl64.Vec3, radius float64) {
	m := geometry.Compose(
		geometry.Translation(center),
		geometry.RotateToZ(normal),
		geometry.Scale(mgl64.Vec3{2 * radius, 2 * radius, 1}),
	)
	r := t.begin(h)
	r.mat4(layout.InstanceMatrix, m)
	r.vec3(layout.Normal, normal)
}

func writeCone(t *Target, h *Header, centerA, centerB mgl64.Vec3, radiusA, radiusB, angle, arc float64, localX mgl64.Vec3) {
	r := t.begin(h)
	r.float(layout.Angle, angle)
	r.float(layout.ArcAngle, arc)
	r.vec3(layout.CenterA, centerA)
	r.vec3(layout.CenterB, centerB)
	r.float(layout.RadiusA, radiusA)
	r.float(layout.RadiusB, radiusB)
	r.vec3(layout.LocalXAxis, localX)
}

func writeGeneralRing(t *Target, h *Header, normal mgl64.Vec3, thickness, angle, arc float64, m mgl64.Mat4) {
	r := t.begin(h)
	r.vec3(layout.Normal, normal)
	r.float(layout.Thickness, thickness)
	r.float(layout.Angle, angle)
	r.float(layout.ArcAngle, arc)
	r.mat4(layout.InstanceMatrix, m)
}

func writeGeneralCylinder(t *Target, h *Header, g *GeneralCylinder, radius float64) {
	r := t.begin(h)
	r.vec3(layout.CenterA, g.CenterA)
	r.vec3(layout.CenterB, g.CenterB)
	r.float(layout.Radius, radius)
	r.float(layout.Angle, g.Angle)
	r.vec4(layout.PlaneA, g.CapA.Plane)
	r.vec4(layout.PlaneB, g.CapB.Plane)
	r.float(layout.ArcAngle, g.ArcAngle)
	r.vec3(layout.LocalXAxis, g.LocalXAxis)
}

func writeCapRings(t *Target, h *Header, g *GeneralCylinder, thicknessA, thicknessB float64) {
	writeGeneralRing(t, h, g.CapA.Normal, thicknessA, g.RingAngleA(), g.ArcAngle, g.CapA.RingMatrix)
	writeGeneralRing(t, h, g.CapB.Normal, thicknessB, g.RingAngleB(), g.ArcAngle, g.CapB.RingMatrix)
}

func writeTrapezium(t *Target, h *Header, v [4]mgl64.Vec3) {
	r := t.begin(h)
	r.vec3(layout.Vertex1, v[0])
	r.vec3(layout.Vertex2, v[1])
	r.vec3(layout.Vertex3, v[2])
	r.vec3(layout.Vertex4, v[3])
}

func writeWalls(t *Target, h *Header, g *GeneralCylinder, thickness float64) {
	writeTrapezium(t, h, g.Wall(g.Angle, thickness))
	writeTrapezium(t, h, g.Wall(g.Angle+g.ArcAngle, thickness))
}

// writeCapCircle closes a sphere or ellipsoid segment. The cut lies
// vRadius-height from the center along normal and faces away from the
// segment.
func writeCapCircle(t *Target, h *Header, center, normal mgl64.Vec3, hRadius, vRadius, height float64) {
	d := vRadius - height
	radius := math.Sqrt(vRadius*vRadius-d*d) * hRadius / vRadius
	writeCircle(t, h, center.Add(normal.Mul(d)), normal.Mul(-1), radius)
}

// ---------------------------------------------------------------------------
// Generators, one per input schema
// ---------------------------------------------------------------------------

func box(in *BoxInput, out *Outputs) {
	m := geometry.Compose(
		geometry.Translation(in.Center.Vec64()),
		geometry.RotationAroundZ(float64(in.RotationAngle)),
		geometry.RotateToZ(in.Normal.Vec64()),
		geometry.Scale(in.Delta.Vec64()),
	)
	writeMatrix(out[layout.Box], &in.Header, m)
}

func circle(in *CircleInput, out *Outputs) {
	writeCircle(out[layout.Circle], &in.Header, in.Center.Vec64(), in.Normal.Vec64().Normalize(), float64(in.Radius))
}

func cone(closed bool) func(*ConeInput, *Outputs) {
	return func(in *ConeInput, out *Outputs) {
		f := newFrame(in.Center, in.Axis)
		a, b := f.ends(float64(in.Height))
		rA, rB := float64(in.RadiusA), float64(in.RadiusB)
		writeCone(out[layout.Cone], &in.Header, a, b, rA, rB, 0, geometry.TwoPi, f.localX)
		if closed {
			writeCircle(out[layout.Circle], &in.Header, a, f.axis, rA)
			writeCircle(out[layout.Circle], &in.Header, b, f.axis.Mul(-1), rB)
		}
	}
}

func cylinder(closed bool) func(*CylinderInput, *Outputs) {
	return func(in *CylinderInput, out *Outputs) {
		f := newFrame(in.Center, in.Axis)
		a, b := f.ends(float64(in.Height))
		r := float64(in.Radius)
		writeCone(out[layout.Cone], &in.Header, a, b, r, r, 0, geometry.TwoPi, f.localX)
		if closed {
			writeCircle(out[layout.Circle], &in.Header, a, f.axis, r)
			writeCircle(out[layout.Circle], &in.Header, b, f.axis.Mul(-1), r)
		}
	}
}

func eccentricCone(closed bool) func(*EccentricConeInput, *Outputs) {
	return func(in *EccentricConeInput, out *Outputs) {
		f := newFrame(in.Center, in.Axis)
		a, b := f.ends(float64(in.Height))
		rA, rB := float64(in.RadiusA), float64(in.RadiusB)
		n := in.CapNormal.Vec64().Normalize()
		if n.Dot(a.Sub(b)) < 0 {
			n = n.Mul(-1)
		}

		r := out[layout.EccentricCone].begin(&in.Header)
		r.vec3(layout.CenterA, a)
		r.vec3(layout.CenterB, b)
		r.float(layout.RadiusA, rA)
		r.float(layout.RadiusB, rB)
		r.vec3(layout.Normal, n)

		if closed {
			writeCircle(out[layout.Circle], &in.Header, a, n, rA)
			writeCircle(out[layout.Circle], &in.Header, b, n.Mul(-1), rB)
		}
	}
}

func writeEllipsoidSegment(t *Target, h *Header, center, normal mgl64.Vec3, hRadius, vRadius, height float64) {
	r := t.begin(h)
	r.vec3(layout.Center, center)
	r.vec3(layout.Normal, normal)
	r.float(layout.HorizontalRadius, hRadius)
	r.float(layout.VerticalRadius, vRadius)
	r.float(layout.Height, height)
}

func ellipsoid(in *EllipsoidInput, out *Outputs) {
	vR := float64(in.VerticalRadius)
	writeEllipsoidSegment(out[layout.EllipsoidSegment], &in.Header,
		in.Center.Vec64(), in.Normal.Vec64().Normalize(), float64(in.HorizontalRadius), vR, 2*vR)
}

func ellipsoidSegment(closed bool) func(*EllipsoidSegmentInput, *Outputs) {
	return func(in *EllipsoidSegmentInput, out *Outputs) {
		c, n := in.Center.Vec64(), in.Normal.Vec64().Normalize()
		hR, vR, height := float64(in.HorizontalRadius), float64(in.VerticalRadius), float64(in.Height)
		writeEllipsoidSegment(out[layout.EllipsoidSegment], &in.Header, c, n, hR, vR, height)
		if closed {
			writeCapCircle(out[layout.Circle], &in.Header, c, n, hR, vR, height)
		}
	}
}

func writeSphericalSegment(t *Target, h *Header, center, normal mgl64.Vec3, radius, height float64) {
	r := t.begin(h)
	r.vec3(layout.Center, center)
	r.vec3(layout.Normal, normal)
	r.float(layout.Radius, radius)
	r.float(layout.Height, height)
}

func sphere(in *SphereInput, out *Outputs) {
	r := float64(in.Radius)
	writeSphericalSegment(out[layout.SphericalSegment], &in.Header, in.Center.Vec64(), geometry.ZAxis, r, 2*r)
}

func sphericalSegment(closed bool) func(*SphericalSegmentInput, *Outputs) {
	return func(in *SphericalSegmentInput, out *Outputs) {
		c, n := in.Center.Vec64(), in.Normal.Vec64().Normalize()
		r, height := float64(in.Radius), float64(in.Height)
		writeSphericalSegment(out[layout.SphericalSegment], &in.Header, c, n, r, height)
		if closed {
			writeCapCircle(out[layout.Circle], &in.Header, c, n, r, r, height)
		}
	}
}

func nut(in *NutInput, out *Outputs) {
	d := 2 * float64(in.Radius)
	m := geometry.Compose(
		geometry.Translation(in.Center.Vec64()),
		geometry.RotateToZ(in.Axis.Vec64()),
		geometry.RotationAroundZ(float64(in.RotationAngle)),
		geometry.Scale(mgl64.Vec3{d, d, float64(in.Height)}),
	)
	writeMatrix(out[layout.Nut], &in.Header, m)
}

func ring(in *RingInput, out *Outputs) {
	f := newFrame(in.Center, in.Normal)
	outer := float64(in.OuterRadius)
	thickness := (outer - float64(in.InnerRadius)) / outer
	m := geometry.GeneralRingMatrix(f.center, f.axis, f.localX, outer, outer)
	writeGeneralRing(out[layout.GeneralRing], &in.Header, f.axis, thickness, 0, geometry.TwoPi, m)
}

func writeTorusSegment(t *Target, in *TorusInput, rotation, arc float64) {
	m := geometry.Compose(
		geometry.Translation(in.Center.Vec64()),
		geometry.RotateToZ(in.Normal.Vec64()),
		geometry.RotationAroundZ(rotation),
	)
	r := t.begin(&in.Header)
	r.float(layout.Size, float64(in.Diagonal))
	r.float(layout.Radius, float64(in.Radius))
	r.float(layout.TubeRadius, float64(in.TubeRadius))
	r.float(layout.ArcAngle, arc)
	r.mat4(layout.InstanceMatrix, m)
}

func torus(in *TorusInput, out *Outputs) {
	writeTorusSegment(out[layout.TorusSegment], in, 0, geometry.TwoPi)
}

func torusSegment(in *TorusSegmentInput, out *Outputs) {
	writeTorusSegment(out[layout.TorusSegment], &in.TorusInput, float64(in.RotationAngle), float64(in.ArcAngle))
}

// ---------------------------------------------------------------------------
// Extruded rings
// ---------------------------------------------------------------------------

// writeExtrudedRing emits the two end faces and the two shells of a ring
// extruded along its axis, covering arc radians from rotation.
func writeExtrudedRing(out *Outputs, in *ExtrudedRingInput, rotation, arc float64) frame {
	f := newFrame(in.Center, in.Axis)
	a, b := f.ends(float64(in.Height))
	inner, outer := float64(in.InnerRadius), float64(in.OuterRadius)
	thickness := (outer - inner) / outer

	rings := out[layout.GeneralRing]
	writeGeneralRing(rings, &in.Header, f.axis, thickness,
		geometry.NormalizeRadians(rotation), arc,
		geometry.GeneralRingMatrix(a, f.axis, f.localX, outer, outer))
	down := f.axis.Mul(-1)
	writeGeneralRing(rings, &in.Header, down, thickness,
		geometry.NormalizeRadians(-(rotation + arc)), arc,
		geometry.GeneralRingMatrix(b, down, f.localX, outer, outer))

	cones := out[layout.Cone]
	writeCone(cones, &in.Header, a, b, outer, outer, rotation, arc, f.localX)
	writeCone(cones, &in.Header, a, b, inner, inner, rotation, arc, f.localX)
	return f
}

func extrudedRing(in *ExtrudedRingInput, out *Outputs) {
	writeExtrudedRing(out, in, 0, geometry.TwoPi)
}

// extrudedRingSegment also closes both cut ends with quads, whether or not
// the segment is flagged closed.
func extrudedRingSegment(in *ExtrudedRingSegmentInput, out *Outputs) {
	rotation, arc := float64(in.RotationAngle), float64(in.ArcAngle)
	f := writeExtrudedRing(out, &in.ExtrudedRingInput, rotation, arc)

	inner, outer := float64(in.InnerRadius), float64(in.OuterRadius)
	height := float64(in.Height)
	quads := out[layout.Quad]
	for i, angle := range [2]float64{rotation, rotation + arc} {
		d := f.radial(angle)
		mid := f.center.Add(d.Mul((inner + outer) / 2))
		// The far cut is mirrored so both quads face out of the segment.
		x := d
		if i == 1 {
			x = d.Mul(-1)
		}
		m := mgl64.Mat4FromCols(
			x.Mul(outer-inner).Vec4(0),
			f.axis.Mul(height).Vec4(0),
			x.Cross(f.axis).Vec4(0),
			mid.Vec4(1),
		)
		writeMatrix(quads, &in.Header, m)
	}
}

// ---------------------------------------------------------------------------
// General cylinders and cones
// ---------------------------------------------------------------------------

func generalCylinder(closed bool) func(*GeneralCylinderInput, *Outputs) {
	return func(in *GeneralCylinderInput, out *Outputs) {
		g := NewGeneralCylinder(in)
		writeGeneralCylinder(out[layout.GeneralCylinder], &in.Header, &g, g.RadiusA)
		if closed {
			writeCapRings(out[layout.GeneralRing], &in.Header, &g, 1, 1)
		}
	}
}

func solidGeneralCylinder(closed bool) func(*SolidGeneralCylinderInput, *Outputs) {
	return func(in *SolidGeneralCylinderInput, out *Outputs) {
		g := NewGeneralCylinder(&in.GeneralCylinderInput)
		t := float64(in.Thickness)
		bodies := out[layout.GeneralCylinder]
		writeGeneralCylinder(bodies, &in.Header, &g, g.RadiusA)
		writeGeneralCylinder(bodies, &in.Header, &g, g.RadiusA-t)
		writeCapRings(out[layout.GeneralRing], &in.Header, &g, t/g.RadiusA, t/g.RadiusB)
		if closed {
			writeWalls(out[layout.Trapezium], &in.Header, &g, t)
		}
	}
}

func writeGeneralConeBody(t *Target, h *Header, g *GeneralCylinder, inset float64) {
	writeCone(t, h, g.CenterA, g.CenterB, g.RadiusA-inset, g.RadiusB-inset, g.Angle, g.ArcAngle, g.LocalXAxis)
}

func generalCone(closed bool) func(*GeneralConeInput, *Outputs) {
	return func(in *GeneralConeInput, out *Outputs) {
		g := NewGeneralCone(in)
		writeGeneralConeBody(out[layout.Cone], &in.Header, &g, 0)
		if closed {
			writeCapRings(out[layout.GeneralRing], &in.Header, &g, 1, 1)
		}
	}
}

func solidGeneralCone(closed bool) func(*SolidGeneralConeInput, *Outputs) {
	return func(in *SolidGeneralConeInput, out *Outputs) {
		g := NewGeneralCone(&in.GeneralConeInput)
		t := float64(in.Thickness)
		cones := out[layout.Cone]
		writeGeneralConeBody(cones, &in.Header, &g, 0)
		writeGeneralConeBody(cones, &in.Header, &g, t)
		writeCapRings(out[layout.GeneralRing], &in.Header, &g, t/g.RadiusA, t/g.RadiusB)
		if closed {
			writeWalls(out[layout.Trapezium], &in.Header, &g, t)
		}
	}
}
