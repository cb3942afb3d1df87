package primitive

import (
	"math"

	"github.com/chazu/sector/pkg/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// CylinderCap is one end face of a general cylinder or cone. A sloped cap
// is an ellipse: its major axis lies along the slope direction and its
// minor radius is the body radius.
type CylinderCap struct {
	Center      mgl64.Vec3 // on the axis, at the cap's nominal height
	Normal      mgl64.Vec3 // outward, world space
	Plane       mgl64.Vec4 // local-frame normal and axial position of the cap
	MajorAxis   mgl64.Vec3
	MajorRadius float64
	MinorRadius float64
	RingMatrix  mgl64.Mat4
	Angle       float64 // from the body's local X axis to MajorAxis about Normal
}

// side is +1 for cap A (the +axis end) and -1 for cap B.
type side float64

const (
	sideA side = 1
	sideB side = -1
)

func newCylinderCap(s side, f frame, radius, halfHeight, slope, zAngle float64) CylinderCap {
	sign := float64(s)
	sinS, cosS := math.Sincos(slope)
	sinZ, cosZ := math.Sincos(zAngle)

	local := mgl64.Vec3{sinS * cosZ, sinS * sinZ, cosS}.Mul(sign)
	normal := geometry.TransformDirection(f.rotation, local)
	center := f.center.Add(f.axis.Mul(sign * halfHeight))

	// Project the two surface points in the slope direction onto the cap
	// plane; the chord between them is the ellipse's major axis.
	ext := geometry.TransformDirection(f.rotation, mgl64.Vec3{cosZ, sinZ, 0}).Mul(radius)
	pA := geometry.Intersect(f.axis, center.Add(ext), normal, center)
	pB := geometry.Intersect(f.axis, center.Sub(ext), normal, center)
	chord := pA.Sub(pB)
	major := chord.Normalize()
	majorRadius := chord.Len() / 2

	return CylinderCap{
		Center:      center,
		Normal:      normal,
		Plane:       local.Vec4(sign * halfHeight),
		MajorAxis:   major,
		MajorRadius: majorRadius,
		MinorRadius: radius,
		RingMatrix:  geometry.GeneralRingMatrix(center, normal, major, majorRadius, radius),
		Angle:       geometry.NormalizeRadians(geometry.AngleBetweenVectors(f.localX, major, normal)),
	}
}

// GeneralCylinder bundles the caps and body of a general cylinder or
// general cone record. Cones use it with flat caps.
type GeneralCylinder struct {
	CapA, CapB CylinderCap

	// Body ends, pushed past the cap centers so the sloped caps clip the
	// body instead of leaving a gap.
	CenterA, CenterB mgl64.Vec3
	RadiusA, RadiusB float64
	Angle            float64
	ArcAngle         float64
	LocalXAxis       mgl64.Vec3

	frame frame
}

// NewGeneralCylinder derives the caps and body of in.
func NewGeneralCylinder(in *GeneralCylinderInput) GeneralCylinder {
	r := float64(in.Radius)
	return newGeneralCylinder(
		newFrame(in.Center, in.Axis), float64(in.Height), r, r,
		float64(in.RotationAngle), float64(in.ArcAngle),
		float64(in.SlopeA), float64(in.SlopeB), float64(in.ZAngleA), float64(in.ZAngleB),
	)
}

// NewGeneralCone derives the caps and body of in. Slope and z-angle fields
// are ignored: general cone caps are flat.
func NewGeneralCone(in *GeneralConeInput) GeneralCylinder {
	return newGeneralCylinder(
		newFrame(in.Center, in.Axis), float64(in.Height),
		float64(in.RadiusA), float64(in.RadiusB),
		float64(in.RotationAngle), float64(in.ArcAngle),
		0, 0, 0, 0,
	)
}

func newGeneralCylinder(f frame, height, radiusA, radiusB, rotation, arc, slopeA, slopeB, zAngleA, zAngleB float64) GeneralCylinder {
	half := height / 2
	capA := newCylinderCap(sideA, f, radiusA, half, slopeA, zAngleA)
	capB := newCylinderCap(sideB, f, radiusB, half, slopeB, zAngleB)

	return GeneralCylinder{
		CapA:       capA,
		CapB:       capB,
		CenterA:    capA.Center.Add(f.axis.Mul(radiusA * math.Abs(math.Tan(slopeA)))),
		CenterB:    capB.Center.Sub(f.axis.Mul(radiusB * math.Abs(math.Tan(slopeB)))),
		RadiusA:    radiusA,
		RadiusB:    radiusB,
		Angle:      rotation,
		ArcAngle:   arc,
		LocalXAxis: f.localX,
		frame:      f,
	}
}

// RingAngleA returns the start angle of cap A's ring in the cap's frame.
func (g *GeneralCylinder) RingAngleA() float64 {
	return geometry.NormalizeRadians(g.Angle - g.CapA.Angle)
}

// RingAngleB returns the start angle of cap B's ring. Cap B's frame is
// mirrored, so the arc runs backwards from its far end.
func (g *GeneralCylinder) RingAngleB() float64 {
	return geometry.NormalizeRadians(-(g.Angle + g.ArcAngle) - g.CapB.Angle)
}

// Wall returns the corners of the cut face at angle through a wall of the
// given thickness: outer A, inner A, inner B, outer B. Each corner is where
// the generating line at that radius meets the cap plane.
func (g *GeneralCylinder) Wall(angle, thickness float64) [4]mgl64.Vec3 {
	sin, cos := math.Sincos(angle)
	dir := geometry.TransformDirection(g.frame.rotation, mgl64.Vec3{cos, sin, 0})
	at := func(c *CylinderCap, r float64) mgl64.Vec3 {
		return geometry.Intersect(g.frame.axis, c.Center.Add(dir.Mul(r)), c.Normal, c.Center)
	}
	return [4]mgl64.Vec3{
		at(&g.CapA, g.RadiusA),
		at(&g.CapA, g.RadiusA-thickness),
		at(&g.CapB, g.RadiusB-thickness),
		at(&g.CapB, g.RadiusB),
	}
}
