package kernel

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Mesh is a triangle mesh. All arrays are flat: vertices has 3 floats per
// vertex (x,y,z), normals has 3 floats per vertex, indices has 3 uint32s
// per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name"`     // input kind the mesh was built from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// stlTriangle is one facet of a binary STL file.
type stlTriangle struct {
	Normal [3]float32
	V      [3][3]float32
	Attr   uint16
}

// WriteSTL writes meshes to w as a single binary STL. The facet normal is
// the normal of each triangle's first vertex.
func WriteSTL(w io.Writer, meshes ...*Mesh) error {
	total := 0
	for _, m := range meshes {
		total += m.TriangleCount()
	}

	bw := bufio.NewWriter(w)
	var header [80]byte
	copy(header[:], "sector preview")
	if _, err := bw.Write(header[:]); err != nil {
		return fmt.Errorf("kernel: write stl header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(total)); err != nil {
		return fmt.Errorf("kernel: write stl header: %w", err)
	}

	for _, m := range meshes {
		for i := 0; i+2 < len(m.Indices); i += 3 {
			var tri stlTriangle
			for j := 0; j < 3; j++ {
				v := int(m.Indices[i+j]) * 3
				copy(tri.V[j][:], m.Vertices[v:v+3])
			}
			n := int(m.Indices[i]) * 3
			copy(tri.Normal[:], m.Normals[n:n+3])
			if err := binary.Write(bw, binary.LittleEndian, &tri); err != nil {
				return fmt.Errorf("kernel: write stl %s: %w", m.Name, err)
			}
		}
	}
	return bw.Flush()
}
