package scene

import (
	reMath "glitch-scene/math"
)

// Camera is a perspective camera aimed at a target point.
type Camera struct {
	Position    reMath.Vec3
	Target      reMath.Vec3
	Up          reMath.Vec3
	FOV         float32 // vertical, radians
	AspectRatio float32
	NearPlane   float32
	FarPlane    float32

	// Cached matrices
	viewMatrix       reMath.Mat4
	projectionMatrix reMath.Mat4
	viewProjMatrix   reMath.Mat4
	dirty            bool
}

func NewCamera(fov, aspectRatio, nearPlane, farPlane float32) *Camera {
	return &Camera{
		Position:    reMath.Vec3Zero,
		Target:      reMath.Vec3Back,
		Up:          reMath.Vec3Up,
		FOV:         fov,
		AspectRatio: aspectRatio,
		NearPlane:   nearPlane,
		FarPlane:    farPlane,
		dirty:       true,
	}
}

func (c *Camera) UpdateAspectRatio(width, height float32) {
	if height > 0 {
		c.AspectRatio = width / height
		c.dirty = true
	}
}

func (c *Camera) SetPosition(pos reMath.Vec3) {
	c.Position = pos
	c.dirty = true
}

func (c *Camera) LookAt(target, up reMath.Vec3) {
	c.Target = target
	c.Up = up
	c.dirty = true
}

func (c *Camera) GetViewMatrix() reMath.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.viewMatrix
}

func (c *Camera) GetProjectionMatrix() reMath.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.projectionMatrix
}

// GetViewProjectionMatrix returns view * projection.
func (c *Camera) GetViewProjectionMatrix() reMath.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.viewProjMatrix
}

func (c *Camera) GetForward() reMath.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}

func (c *Camera) GetRight() reMath.Vec3 {
	return c.GetForward().Cross(c.Up).Normalize()
}

// GetUp is the camera's true up, orthogonal to forward.
func (c *Camera) GetUp() reMath.Vec3 {
	return c.GetRight().Cross(c.GetForward())
}

func (c *Camera) updateMatrices() {
	c.viewMatrix = reMath.Mat4LookAt(c.Position, c.Target, c.Up)
	c.projectionMatrix = reMath.Mat4Perspective(c.FOV, c.AspectRatio, c.NearPlane, c.FarPlane)
	c.viewProjMatrix = c.viewMatrix.Mul(c.projectionMatrix)
	c.dirty = false
}
