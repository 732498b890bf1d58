package scene

import "glitch-scene/math"

// ComputeTangents fills per-vertex tangent frames for normal mapping.
// Triangles with a degenerate UV area contribute nothing; vertices left
// without a tangent get an arbitrary one perpendicular to the normal.
func ComputeTangents(m *Mesh) {
	tangents := make([]math.Vec3, len(m.Vertices))
	bitangents := make([]math.Vec3, len(m.Vertices))

	for tri := 0; tri < m.TriangleCount(); tri++ {
		i0, i1, i2 := m.Triangle(tri)
		if int(max(i0, i1, i2)) >= len(m.Vertices) {
			continue
		}
		v0, v1, v2 := m.Vertices[i0], m.Vertices[i1], m.Vertices[i2]

		e1 := v1.Position.Sub(v0.Position)
		e2 := v2.Position.Sub(v0.Position)
		uv1 := v1.UV.Sub(v0.UV)
		uv2 := v2.UV.Sub(v0.UV)

		denom := uv1.X*uv2.Y - uv2.X*uv1.Y
		if denom == 0 {
			continue
		}
		r := 1 / denom
		t := e1.Mul(uv2.Y * r).Sub(e2.Mul(uv1.Y * r))
		b := e2.Mul(uv1.X * r).Sub(e1.Mul(uv2.X * r))

		for _, idx := range [3]uint32{i0, i1, i2} {
			tangents[idx] = tangents[idx].Add(t)
			bitangents[idx] = bitangents[idx].Add(b)
		}
	}

	for i := range m.Vertices {
		n := m.Vertices[i].Normal
		// Gram-Schmidt against the normal.
		t := tangents[i].Sub(n.Mul(n.Dot(tangents[i])))
		if t.LengthSqr() < 1e-8 {
			if n.X < 0.9 && n.X > -0.9 {
				t = math.Vec3Right.Sub(n.Mul(n.X))
			} else {
				t = math.Vec3Up.Sub(n.Mul(n.Y))
			}
		}
		t = t.Normalize()

		b := bitangents[i]
		if b.LengthSqr() < 1e-8 {
			b = n.Cross(t)
		}
		m.Vertices[i].Tangent = t
		m.Vertices[i].Bitangent = b.Normalize()
	}
}
