package scene

import (
	stdmath "math"

	"glitch-scene/math"
)

// Plane represents a half-space: ax + by + cz + d = 0
// Normal (a, b, c) points into the "inside" of the frustum.
type Plane struct {
	Normal math.Vec3
	D      float32
}

// DistanceTo returns the signed distance from a point to the plane.
// Positive means on the "inside" (same side as Normal).
func (p Plane) DistanceTo(pt math.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Frustum holds the six clip planes of a view frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumFromVP extracts the six frustum planes from a view-projection matrix.
// The planes are normalized so DistanceTo returns a true distance in world units.
//
// vp is a row-vector view*projection matrix, so the clip-space rows that
// Gribb/Hartmann extraction works on are the columns of vp.
func FrustumFromVP(vp math.Mat4) Frustum {
	col := func(i int) math.Vec4 {
		return math.Vec4{X: vp[0][i], Y: vp[1][i], Z: vp[2][i], W: vp[3][i]}
	}
	r0, r1, r2, r3 := col(0), col(1), col(2), col(3)

	var f Frustum
	// Left:   r3 + r0
	f.Planes[0] = normalizePlane(r3.X+r0.X, r3.Y+r0.Y, r3.Z+r0.Z, r3.W+r0.W)
	// Right:  r3 - r0
	f.Planes[1] = normalizePlane(r3.X-r0.X, r3.Y-r0.Y, r3.Z-r0.Z, r3.W-r0.W)
	// Bottom: r3 + r1
	f.Planes[2] = normalizePlane(r3.X+r1.X, r3.Y+r1.Y, r3.Z+r1.Z, r3.W+r1.W)
	// Top:    r3 - r1
	f.Planes[3] = normalizePlane(r3.X-r1.X, r3.Y-r1.Y, r3.Z-r1.Z, r3.W-r1.W)
	// Near:   r3 + r2
	f.Planes[4] = normalizePlane(r3.X+r2.X, r3.Y+r2.Y, r3.Z+r2.Z, r3.W+r2.W)
	// Far:    r3 - r2
	f.Planes[5] = normalizePlane(r3.X-r2.X, r3.Y-r2.Y, r3.Z-r2.Z, r3.W-r2.W)
	return f
}

func normalizePlane(a, b, c, d float32) Plane {
	l := math.Vec3{X: a, Y: b, Z: c}.Length()
	if l == 0 {
		return Plane{}
	}
	return Plane{Normal: math.Vec3{X: a / l, Y: b / l, Z: c / l}, D: d / l}
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max math.Vec3
}

// IntersectsFrustum returns false if the AABB is completely outside the frustum.
// Uses the "n-vertex" test: for each plane, check if the "positive vertex"
// (the corner most aligned with the plane normal) is on the outside.
func (box AABB) IntersectsFrustum(f *Frustum) bool {
	for i := 0; i < 6; i++ {
		p := f.Planes[i]
		// Choose the positive vertex (most in the direction of the plane normal)
		px := box.Max.X
		if p.Normal.X < 0 {
			px = box.Min.X
		}
		py := box.Max.Y
		if p.Normal.Y < 0 {
			py = box.Min.Y
		}
		pz := box.Max.Z
		if p.Normal.Z < 0 {
			pz = box.Min.Z
		}
		if p.DistanceTo(math.Vec3{X: px, Y: py, Z: pz}) < 0 {
			return false // outside this plane
		}
	}
	return true
}

// ComputeAABB computes the world-space AABB for a mesh transformed by worldMatrix.
func ComputeAABB(mesh *Mesh, worldMatrix math.Mat4) AABB {
	if !mesh.HasLocalAABB {
		return AABB{}
	}
	mn, mx := mesh.LocalAABB.Min, mesh.LocalAABB.Max
	corners := [8]math.Vec3{
		{X: mn.X, Y: mn.Y, Z: mn.Z},
		{X: mx.X, Y: mn.Y, Z: mn.Z},
		{X: mn.X, Y: mx.Y, Z: mn.Z},
		{X: mx.X, Y: mx.Y, Z: mn.Z},
		{X: mn.X, Y: mn.Y, Z: mx.Z},
		{X: mx.X, Y: mn.Y, Z: mx.Z},
		{X: mn.X, Y: mx.Y, Z: mx.Z},
		{X: mx.X, Y: mx.Y, Z: mx.Z},
	}
	first := worldMatrix.MulVec3(corners[0])
	out := AABB{Min: first, Max: first}
	for _, c := range corners[1:] {
		wp := worldMatrix.MulVec3(c)
		out.Min = out.Min.Min(wp)
		out.Max = out.Max.Max(wp)
	}
	return out
}

// IntersectRay is the slab test. It returns the entry distance along dir,
// or the exit distance when origin is inside the box.
func (box AABB) IntersectRay(origin, dir math.Vec3) (float32, bool) {
	tmin := float32(-stdmath.MaxFloat32)
	tmax := float32(stdmath.MaxFloat32)
	o := [3]float32{origin.X, origin.Y, origin.Z}
	d := [3]float32{dir.X, dir.Y, dir.Z}
	lo := [3]float32{box.Min.X, box.Min.Y, box.Min.Z}
	hi := [3]float32{box.Max.X, box.Max.Y, box.Max.Z}
	for i := 0; i < 3; i++ {
		if d[i] == 0 {
			if o[i] < lo[i] || o[i] > hi[i] {
				return 0, false
			}
			continue
		}
		t1 := (lo[i] - o[i]) / d[i]
		t2 := (hi[i] - o[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}
	if tmax < 0 || tmin > tmax {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}
