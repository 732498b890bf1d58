package scene

import (
	"glitch-scene/core"
	"glitch-scene/math"
)

// Skin binds a mesh to a joint hierarchy.
type Skin struct {
	Name        string
	Joints      []*Node
	InverseBind []math.Mat4
}

// jointMatrices returns, per joint, the transform from the mesh's bind
// space into the space of the mesh node whose world matrix is meshWorld.
func (s *Skin) jointMatrices(meshWorld math.Mat4) []math.Mat4 {
	toMesh := meshWorld.Inverse()
	out := make([]math.Mat4, len(s.Joints))
	for i, joint := range s.Joints {
		inv := math.Mat4Identity()
		if i < len(s.InverseBind) {
			inv = s.InverseBind[i]
		}
		out[i] = inv.Mul(joint.GetWorldMatrix()).Mul(toMesh)
	}
	return out
}

// BindSkin attaches per-vertex joint influences and keeps a copy of the
// current vertices as the bind pose.
func (m *Mesh) BindSkin(skin *Skin, joints [][4]uint16, weights [][4]float32) {
	m.Skin = skin
	m.Joints = joints
	m.Weights = weights
	m.bindVertices = append([]core.Vertex(nil), m.Vertices...)
}

// ApplySkin re-poses Vertices from the bind pose using the current joint
// transforms and marks the mesh dirty.
func (m *Mesh) ApplySkin(meshWorld math.Mat4) {
	if m.Skin == nil || len(m.bindVertices) == 0 {
		return
	}
	mats := m.Skin.jointMatrices(meshWorld)

	for i, bind := range m.bindVertices {
		if i >= len(m.Joints) || i >= len(m.Weights) {
			m.Vertices[i] = bind
			continue
		}
		var blend math.Mat4
		var total float32
		for k := 0; k < 4; k++ {
			w := m.Weights[i][k]
			j := int(m.Joints[i][k])
			if w == 0 || j >= len(mats) {
				continue
			}
			blend = blend.Add(mats[j].Scaled(w))
			total += w
		}
		if total == 0 {
			m.Vertices[i] = bind
			continue
		}
		if total != 1 {
			blend = blend.Scaled(1 / total)
		}

		v := bind
		v.Position = blend.MulVec3(bind.Position)
		v.Normal = blend.MulDir(bind.Normal).Normalize()
		v.Tangent = blend.MulDir(bind.Tangent).Normalize()
		v.Bitangent = blend.MulDir(bind.Bitangent).Normalize()
		m.Vertices[i] = v
	}
	m.updateLocalAABB()
	m.Dirty = true
}
