// Package geometry is the affine math kernel used by the primitive
// transforms. Every function is pure and works on mgl64 value types, so a
// vector or matrix can feed several derivations without aliasing.
//
// Nothing here panics. Degenerate input (a zero-length normal or axis)
// produces NaN or Inf components, which callers pass through unchanged.
package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Unit axes.
var (
	XAxis = mgl64.Vec3{1, 0, 0}
	YAxis = mgl64.Vec3{0, 1, 0}
	ZAxis = mgl64.Vec3{0, 0, 1}
)

// TwoPi is a full turn in radians.
const TwoPi = 2 * math.Pi

// Translation returns the matrix that moves the origin to center.
func Translation(center mgl64.Vec3) mgl64.Mat4 {
	return mgl64.Translate3D(center[0], center[1], center[2])
}

// Scale returns a non-uniform scale matrix.
func Scale(v mgl64.Vec3) mgl64.Mat4 {
	return mgl64.Scale3D(v[0], v[1], v[2])
}

// RotationAroundZ returns a rotation of angle radians about +Z.
func RotationAroundZ(angle float64) mgl64.Mat4 {
	return mgl64.HomogRotate3DZ(angle)
}

// RotationAxisAngle returns a rotation of angle radians about axis.
// The axis is normalized first.
func RotationAxisAngle(axis mgl64.Vec3, angle float64) mgl64.Mat4 {
	return mgl64.HomogRotate3D(angle, axis.Normalize())
}

// RotationBetween returns the shortest-arc rotation taking the direction
// from onto the direction to. Parallel unit inputs yield the exact
// identity; anti-parallel inputs rotate half a turn about an axis
// perpendicular to from.
func RotationBetween(from, to mgl64.Vec3) mgl64.Mat4 {
	return quatBetween(from.Normalize(), to.Normalize()).Mat4()
}

// quatBetween expects unit vectors.
func quatBetween(from, to mgl64.Vec3) mgl64.Quat {
	r := from.Dot(to) + 1
	var q mgl64.Quat
	if r < 1e-12 {
		if math.Abs(from[0]) > math.Abs(from[2]) {
			q = mgl64.Quat{W: 0, V: mgl64.Vec3{-from[1], from[0], 0}}
		} else {
			q = mgl64.Quat{W: 0, V: mgl64.Vec3{0, -from[2], from[1]}}
		}
	} else {
		q = mgl64.Quat{W: r, V: from.Cross(to)}
	}
	l := math.Sqrt(q.W*q.W + q.V.Dot(q.V))
	return mgl64.Quat{W: q.W / l, V: q.V.Mul(1 / l)}
}

// RotateToZ is shorthand for RotationBetween(ZAxis, to).
func RotateToZ(to mgl64.Vec3) mgl64.Mat4 {
	return RotationBetween(ZAxis, to)
}

// Compose multiplies the matrices left to right, so the last matrix is
// applied to a point first. Compose(T, R, S) is the usual
// translate ∘ rotate ∘ scale instance transform.
func Compose(ms ...mgl64.Mat4) mgl64.Mat4 {
	out := mgl64.Ident4()
	for _, m := range ms {
		out = out.Mul4(m)
	}
	return out
}

// TransformPoint applies m to the point p.
func TransformPoint(m mgl64.Mat4, p mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// TransformDirection applies the linear part of m to v.
func TransformDirection(m mgl64.Mat4, v mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(v.Vec4(0)).Vec3()
}

// GeneralRingMatrix builds the instance transform of an elliptical ring
// or disc. The local frame is (localXAxis, normal × localXAxis, normal)
// placed at center, scaled by (2·radiusA, 2·radiusB, 1).
func GeneralRingMatrix(center, normal, localXAxis mgl64.Vec3, radiusA, radiusB float64) mgl64.Mat4 {
	y := normal.Cross(localXAxis)
	basis := mgl64.Mat4FromCols(
		localXAxis.Vec4(0),
		y.Vec4(0),
		normal.Vec4(0),
		center.Vec4(1),
	)
	return basis.Mul4(mgl64.Scale3D(2*radiusA, 2*radiusB, 1))
}

// Intersect returns the point where the line through rayPoint with
// direction rayDir crosses the plane through planePoint with normal
// planeNormal. A line parallel to the plane yields Inf or NaN.
func Intersect(rayDir, rayPoint, planeNormal, planePoint mgl64.Vec3) mgl64.Vec3 {
	t := planeNormal.Dot(planePoint.Sub(rayPoint)) / planeNormal.Dot(rayDir)
	return rayPoint.Add(rayDir.Mul(t))
}

// NormalizeRadians wraps angle into (-π, π]. Non-finite angles are
// returned unchanged.
func NormalizeRadians(angle float64) float64 {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return angle
	}
	if angle > math.Pi || angle <= -math.Pi {
		angle = math.Mod(angle, TwoPi)
	}
	for angle > math.Pi {
		angle -= TwoPi
	}
	for angle <= -math.Pi {
		angle += TwoPi
	}
	return angle
}

// AngleBetweenVectors returns the angle from v1 to v2 in [0, 2π). The
// rotation sense is counter-clockwise when looking down up, decided by
// the sign of up · (v1 × v2).
func AngleBetweenVectors(v1, v2, up mgl64.Vec3) float64 {
	a := v1.Normalize()
	b := v2.Normalize()
	cos := math.Max(-1, math.Min(1, a.Dot(b)))
	angle := math.Acos(cos)
	if up.Dot(a.Cross(b)) < 0 {
		angle = TwoPi - angle
	}
	if angle >= TwoPi {
		return 0
	}
	return angle
}
