// Package kernel defines the solid modeling interface used to preview
// sector primitives as triangle meshes. Solids are centered on the origin
// with their axis along +Z; callers orient and place them with the
// transform methods.
package kernel

import "github.com/go-gl/mathgl/mgl64"

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel builds and tessellates solids.
type Kernel interface {
	// Primitives, centered on the origin.
	Box(size mgl64.Vec3) Solid
	Cylinder(height, radius float64) Solid
	Cone(height, radiusA, radiusB float64) Solid // radiusA at the +Z end
	Sphere(radius float64) Solid

	Union(solids ...Solid) Solid

	// Transforms
	Translate(s Solid, v mgl64.Vec3) Solid
	RotateTo(s Solid, axis mgl64.Vec3) Solid // turns +Z onto axis
	RotateZ(s Solid, angle float64) Solid    // radians

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
