// Package tessellate previews sector input buffers as triangle meshes
// using a geometry kernel. Boxes, cylinders, cones and spheres are
// supported; other input kinds are skipped. One mesh is produced per input
// kind present.
package tessellate

import (
	"fmt"
	"math"

	"github.com/chazu/sector/pkg/codec"
	"github.com/chazu/sector/pkg/kernel"
	"github.com/chazu/sector/pkg/primitive"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl64"
)

// solidsFunc decodes an input buffer into placed solids.
type solidsFunc func(k kernel.Kernel, kind primitive.InputKind, buf []byte) []kernel.Solid

var builders = map[primitive.InputKind]solidsFunc{
	primitive.Box:            boxes,
	primitive.OpenCylinder:   cylinders,
	primitive.ClosedCylinder: cylinders,
	primitive.OpenCone:       cones,
	primitive.ClosedCone:     cones,
	primitive.Sphere:         spheres,
}

// Supported reports whether kind can be previewed.
func Supported(kind primitive.InputKind) bool {
	_, ok := builders[kind]
	return ok
}

// Tessellate builds one mesh per supported input kind in inputs, in input
// kind order. Records with non-positive or non-finite dimensions are
// skipped. The inputs are never modified.
func Tessellate(inputs primitive.Inputs, k kernel.Kernel) ([]*kernel.Mesh, error) {
	var meshes []*kernel.Mesh
	for _, kind := range inputs.Kinds() {
		build, ok := builders[kind]
		if !ok {
			continue
		}
		if n := len(inputs[kind]); n%kind.Size() != 0 {
			return nil, fmt.Errorf("tessellate: %s input is %d bytes, not a multiple of %d",
				kind, n, kind.Size())
		}
		solids := build(k, kind, inputs[kind])
		if len(solids) == 0 {
			continue
		}
		mesh, err := k.ToMesh(k.Union(solids...))
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for %s: %w", kind, err)
		}
		mesh.Name = kind.String()
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

func positive(vs ...float32) bool {
	for _, v := range vs {
		if !(v > 0) || math32.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func usableAxis(v codec.Vec3f) bool {
	a := v.Vec64()
	l := a.Len()
	return l > 0 && !math.IsInf(l, 0) && !math.IsNaN(l)
}

// place orients a Z-aligned solid along axis and moves it to center.
func place(k kernel.Kernel, s kernel.Solid, center, axis codec.Vec3f) kernel.Solid {
	return k.Translate(k.RotateTo(s, axis.Vec64()), center.Vec64())
}

func boxes(k kernel.Kernel, kind primitive.InputKind, buf []byte) []kernel.Solid {
	var out []kernel.Solid
	for _, in := range primitive.Decode[primitive.BoxInput](kind, buf) {
		if !positive(in.Delta[0], in.Delta[1], in.Delta[2]) || !usableAxis(in.Normal) {
			continue
		}
		s := k.RotateTo(k.Box(in.Delta.Vec64()), in.Normal.Vec64())
		s = k.RotateZ(s, float64(in.RotationAngle))
		out = append(out, k.Translate(s, in.Center.Vec64()))
	}
	return out
}

func cylinders(k kernel.Kernel, kind primitive.InputKind, buf []byte) []kernel.Solid {
	var out []kernel.Solid
	for _, in := range primitive.Decode[primitive.CylinderInput](kind, buf) {
		if !positive(in.Height, in.Radius) || !usableAxis(in.Axis) {
			continue
		}
		out = append(out, place(k, k.Cylinder(float64(in.Height), float64(in.Radius)), in.Center, in.Axis))
	}
	return out
}

func cones(k kernel.Kernel, kind primitive.InputKind, buf []byte) []kernel.Solid {
	var out []kernel.Solid
	for _, in := range primitive.Decode[primitive.ConeInput](kind, buf) {
		if !positive(in.Height) || !usableAxis(in.Axis) {
			continue
		}
		if !(in.RadiusA >= 0 && in.RadiusB >= 0) || !positive(in.RadiusA+in.RadiusB) {
			continue
		}
		cone := k.Cone(float64(in.Height), float64(in.RadiusA), float64(in.RadiusB))
		out = append(out, place(k, cone, in.Center, in.Axis))
	}
	return out
}

func spheres(k kernel.Kernel, kind primitive.InputKind, buf []byte) []kernel.Solid {
	var out []kernel.Solid
	for _, in := range primitive.Decode[primitive.SphereInput](kind, buf) {
		if !positive(in.Radius) {
			continue
		}
		out = append(out, k.Translate(k.Sphere(float64(in.Radius)), in.Center.Vec64()))
	}
	return out
}

// Bounds returns the axis-aligned bounds of the preview of inputs, and
// false when nothing in inputs can be previewed. Misaligned buffers are
// skipped.
func Bounds(inputs primitive.Inputs, k kernel.Kernel) (min, max mgl64.Vec3, ok bool) {
	for _, kind := range inputs.Kinds() {
		build, supported := builders[kind]
		if !supported || len(inputs[kind])%kind.Size() != 0 {
			continue
		}
		for _, s := range build(k, kind, inputs[kind]) {
			lo, hi := s.BoundingBox()
			if !ok {
				min, max, ok = lo, hi, true
				continue
			}
			for i := 0; i < 3; i++ {
				min[i] = math.Min(min[i], lo[i])
				max[i] = math.Max(max[i], hi[i])
			}
		}
	}
	return min, max, ok
}
