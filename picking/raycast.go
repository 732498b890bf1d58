// Package picking casts rays from the camera into the scene.
package picking

import (
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"

	"glitch-scene/math"
	"glitch-scene/scene"
)

// Ray represents a ray in 3D space
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// HitResult stores the result of a ray intersection test
type HitResult struct {
	Hit      bool
	Distance float32
	Point    math.Vec3
	Normal   math.Vec3
	Node     *scene.Node
	FaceIdx  int // triangle index in the mesh
}

// RayFromCamera builds a world-space ray from the camera through a point
// given in normalized device coordinates.
func RayFromCamera(ndc math.Vec2, camera *scene.Camera) Ray {
	invVP := camera.GetViewProjectionMatrix().Mgl().Inv()
	p := invVP.Mul4x1(mgl32.Vec4{ndc.X, ndc.Y, 0.5, 1})
	if p[3] != 0 {
		p = p.Mul(1 / p[3])
	}
	target := math.Vec3FromMgl(p.Vec3())

	return Ray{
		Origin:    camera.Position,
		Direction: target.Sub(camera.Position).Normalize(),
	}
}

// IntersectNodes tests the ray against the given nodes and their
// descendants and returns the closest hit.
func IntersectNodes(ray Ray, nodes ...*scene.Node) HitResult {
	closest := HitResult{Distance: float32(stdmath.MaxFloat32)}

	for _, root := range nodes {
		root.Traverse(func(node *scene.Node) {
			if node.Mesh == nil || !node.Visible {
				return
			}
			// Broad phase: world AABB
			aabb := scene.ComputeAABB(node.Mesh, node.GetWorldMatrix())
			t, hit := aabb.IntersectRay(ray.Origin, ray.Direction)
			if !hit || t > closest.Distance {
				return
			}
			// Narrow phase: triangles
			result := rayMeshIntersect(ray, node)
			if result.Hit && result.Distance < closest.Distance {
				closest = result
			}
		})
	}

	return closest
}

// rayMeshIntersect performs per-triangle intersection using Möller–Trumbore algorithm.
// Back faces only count for double-sided materials, matching what is drawn.
func rayMeshIntersect(ray Ray, node *scene.Node) HitResult {
	mesh := node.Mesh
	worldMatrix := node.GetWorldMatrix()
	cullBack := mesh.Material == nil || !mesh.Material.DoubleSided
	closest := HitResult{Distance: float32(stdmath.MaxFloat32)}

	for tri := 0; tri < mesh.TriangleCount(); tri++ {
		i0, i1, i2 := mesh.Triangle(tri)
		if int(max(i0, i1, i2)) >= len(mesh.Vertices) {
			continue
		}
		v0 := worldMatrix.MulVec3(mesh.Vertices[i0].Position)
		v1 := worldMatrix.MulVec3(mesh.Vertices[i1].Position)
		v2 := worldMatrix.MulVec3(mesh.Vertices[i2].Position)

		t, hit := mollerTrumbore(ray, v0, v1, v2, cullBack)
		if hit && t < closest.Distance {
			closest.Hit = true
			closest.Distance = t
			closest.Point = ray.At(t)
			closest.Normal = v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
			closest.Node = node
			closest.FaceIdx = tri
		}
	}

	return closest
}

// mollerTrumbore implements the Möller–Trumbore ray-triangle intersection algorithm.
// With cullBack set, triangles wound clockwise as seen along the ray are skipped.
func mollerTrumbore(ray Ray, v0, v1, v2 math.Vec3, cullBack bool) (float32, bool) {
	const epsilon = 0.0000001

	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	if a > -epsilon && a < epsilon {
		return 0, false // parallel
	}
	if cullBack && a < 0 {
		return 0, false
	}

	f := 1.0 / a
	s := ray.Origin.Sub(v0)
	u := f * s.Dot(h)

	if u < 0.0 || u > 1.0 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)

	if v < 0.0 || u+v > 1.0 {
		return 0, false
	}

	t := f * edge2.Dot(q)
	return t, t > epsilon
}
