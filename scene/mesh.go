package scene

import (
	"glitch-scene/core"
)

// DrawMode controls the OpenGL primitive type used when rendering a mesh.
type DrawMode int

const (
	DrawTriangles DrawMode = iota // gl.TRIANGLES (default)
	DrawLines                     // gl.LINES, pairs of indices form line segments
)

// Mesh holds CPU-side vertex/index data.
// GPU upload is managed by the renderer backend.
type Mesh struct {
	Name       string
	Vertices   []core.Vertex
	Indices    []uint32
	IndexCount uint32
	DrawMode   DrawMode

	// Cached local-space AABB (computed by CreateMeshFromData).
	LocalAABB    AABB
	HasLocalAABB bool

	// Material holds surface shading properties. If nil, DefaultMaterial() is used.
	Material *Material

	// Skinning data; Skin is nil for rigid meshes.
	Skin         *Skin
	Joints       [][4]uint16
	Weights      [][4]float32
	bindVertices []core.Vertex

	// Dirty is set when Vertices changed after upload. The backend
	// re-uploads and clears it.
	Dirty bool

	// GPUData is set by the renderer backend (e.g. *opengl.GPUMesh).
	// Do not access directly; use the renderer's API.
	GPUData interface{}
}

// CreateMeshFromData builds a Mesh and pre-computes its local-space AABB.
func CreateMeshFromData(name string, vertices []core.Vertex, indices []uint32) *Mesh {
	m := &Mesh{
		Name:       name,
		Vertices:   vertices,
		Indices:    indices,
		IndexCount: uint32(len(indices)),
	}
	m.updateLocalAABB()
	return m
}

func (m *Mesh) updateLocalAABB() {
	if len(m.Vertices) == 0 {
		m.HasLocalAABB = false
		return
	}
	lo := m.Vertices[0].Position
	hi := lo
	for _, v := range m.Vertices[1:] {
		lo = lo.Min(v.Position)
		hi = hi.Max(v.Position)
	}
	m.LocalAABB = AABB{Min: lo, Max: hi}
	m.HasLocalAABB = true
}

// Triangle returns the vertex indices of triangle i, whether or not the
// mesh is indexed.
func (m *Mesh) Triangle(i int) (uint32, uint32, uint32) {
	if len(m.Indices) > 0 {
		return m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]
	}
	base := uint32(3 * i)
	return base, base + 1, base + 2
}

// TriangleCount is zero for line meshes.
func (m *Mesh) TriangleCount() int {
	if m.DrawMode != DrawTriangles {
		return 0
	}
	if len(m.Indices) > 0 {
		return len(m.Indices) / 3
	}
	return len(m.Vertices) / 3
}
