// Package sdfx implements kernel.Kernel on the github.com/deadsy/sdfx
// SDF library.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/sector/pkg/geometry"
	"github.com/chazu/sector/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells is the marching cubes resolution along the longest
// bounding box edge.
const DefaultMeshCells = 200

type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a kernel meshing at cells resolution. cells <= 0 uses
// DefaultMeshCells.
func New(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

func vec(v mgl64.Vec3) v3.Vec {
	return v3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// Box creates a box of the given size centered on the origin.
func (k *SdfxKernel) Box(size mgl64.Vec3) kernel.Solid {
	s, err := sdf.Box3D(vec(size), 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Box3D: %v", err))
	}
	return wrap(s)
}

// Cylinder creates a cylinder along Z centered on the origin.
func (k *SdfxKernel) Cylinder(height, radius float64) kernel.Solid {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Cylinder3D: %v", err))
	}
	return wrap(s)
}

// Cone creates a truncated cone along Z with radiusA at +height/2 and
// radiusB at -height/2.
func (k *SdfxKernel) Cone(height, radiusA, radiusB float64) kernel.Solid {
	s, err := sdf.Cone3D(height, radiusB, radiusA, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Cone3D: %v", err))
	}
	return wrap(s)
}

// Sphere creates a sphere centered on the origin.
func (k *SdfxKernel) Sphere(radius float64) kernel.Solid {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Sphere3D: %v", err))
	}
	return wrap(s)
}

// Union returns the union of solids.
func (k *SdfxKernel) Union(solids ...kernel.Solid) kernel.Solid {
	s := make([]sdf.SDF3, len(solids))
	for i, solid := range solids {
		s[i] = unwrap(solid)
	}
	return wrap(sdf.Union3D(s...))
}

// Translate moves a solid by v.
func (k *SdfxKernel) Translate(s kernel.Solid, v mgl64.Vec3) kernel.Solid {
	return wrap(sdf.Transform3D(unwrap(s), sdf.Translate3d(vec(v))))
}

// RotateTo turns a solid so that its +Z axis points along axis.
func (k *SdfxKernel) RotateTo(s kernel.Solid, axis mgl64.Vec3) kernel.Solid {
	a := axis.Normalize()
	cross := geometry.ZAxis.Cross(a)
	sin := cross.Len()
	if sin < 1e-12 {
		if a[2] > 0 {
			return s
		}
		return wrap(sdf.Transform3D(unwrap(s), sdf.Rotate3d(v3.Vec{X: 1}, math.Pi)))
	}
	angle := math.Atan2(sin, a[2])
	return wrap(sdf.Transform3D(unwrap(s), sdf.Rotate3d(vec(cross.Mul(1/sin)), angle)))
}

// RotateZ rotates a solid about Z by angle radians.
func (k *SdfxKernel) RotateZ(s kernel.Solid, angle float64) kernel.Solid {
	return wrap(sdf.Transform3D(unwrap(s), sdf.RotateZ(angle)))
}

// ToMesh converts a solid to a triangle mesh using marching cubes. Each
// triangle gets its own three vertices carrying the face normal.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(unwrap(s), renderer)

	numVerts := len(triangles) * 3
	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)
		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
