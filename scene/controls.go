package scene

import (
	"math"

	"glitch-scene/core"
	reMath "glitch-scene/math"
)

type dragMode int

const (
	dragNone dragMode = iota
	dragRotate
	dragPan
)

// OrbitControls orbits a camera around Target. Input accumulates deltas;
// Update applies them, and with damping enabled spreads each delta over
// several frames so motion eases out.
type OrbitControls struct {
	Camera *Camera
	Target reMath.Vec3

	EnableDamping bool
	DampingFactor float32
	RotateSpeed   float32
	PanSpeed      float32
	ZoomSpeed     float32
	MinDistance   float32
	MaxDistance   float32
	MinPolarAngle float32
	MaxPolarAngle float32

	sphericalDelta reMath.Spherical
	scale          float32
	panOffset      reMath.Vec3

	mode         dragMode
	lastX, lastY float64
}

// NewOrbitControls aims camera at target straight away.
func NewOrbitControls(camera *Camera, target reMath.Vec3) *OrbitControls {
	c := &OrbitControls{
		Camera:        camera,
		Target:        target,
		DampingFactor: 0.05,
		RotateSpeed:   1,
		PanSpeed:      1,
		ZoomSpeed:     1,
		MinDistance:   0,
		MaxDistance:   float32(math.Inf(1)),
		MinPolarAngle: 0,
		MaxPolarAngle: math.Pi,
		scale:         1,
	}
	c.Update()
	return c
}

// Update moves the camera by the pending deltas. It returns true if the
// camera moved noticeably.
func (c *OrbitControls) Update() bool {
	before := c.Camera.Position
	offset := c.Camera.Position.Sub(c.Target)
	s := reMath.SphericalFromVec3(offset)

	if c.EnableDamping {
		s.Theta += c.sphericalDelta.Theta * c.DampingFactor
		s.Phi += c.sphericalDelta.Phi * c.DampingFactor
	} else {
		s.Theta += c.sphericalDelta.Theta
		s.Phi += c.sphericalDelta.Phi
	}

	s.Phi = reMath.Clamp(s.Phi, c.MinPolarAngle, c.MaxPolarAngle)
	s = s.MakeSafe()

	s.Radius = reMath.Clamp(s.Radius*c.scale, c.MinDistance, c.MaxDistance)

	if c.EnableDamping {
		c.Target = c.Target.Add(c.panOffset.Mul(c.DampingFactor))
	} else {
		c.Target = c.Target.Add(c.panOffset)
	}

	c.Camera.SetPosition(c.Target.Add(s.ToVec3()))
	c.Camera.LookAt(c.Target, reMath.Vec3Up)

	if c.EnableDamping {
		c.sphericalDelta.Theta *= 1 - c.DampingFactor
		c.sphericalDelta.Phi *= 1 - c.DampingFactor
		c.panOffset = c.panOffset.Mul(1 - c.DampingFactor)
	} else {
		c.sphericalDelta = reMath.Spherical{}
		c.panOffset = reMath.Vec3Zero
	}
	c.scale = 1

	return before.Sub(c.Camera.Position).LengthSqr() > 1e-6
}

// RotateLeft turns the camera around the target's vertical axis.
func (c *OrbitControls) RotateLeft(angle float32) {
	c.sphericalDelta.Theta -= angle
}

func (c *OrbitControls) RotateUp(angle float32) {
	c.sphericalDelta.Phi -= angle
}

// Pan shifts the target in screen space by a pixel delta.
func (c *OrbitControls) Pan(dx, dy, viewportHeight float32) {
	if viewportHeight <= 0 {
		return
	}
	distance := c.Camera.Position.Sub(c.Target).Length()
	distance *= float32(math.Tan(float64(c.Camera.FOV) / 2))

	left := c.Camera.GetRight().Mul(-2 * dx * distance / viewportHeight)
	up := c.Camera.GetUp().Mul(2 * dy * distance / viewportHeight)
	c.panOffset = c.panOffset.Add(left).Add(up)
}

// DollyIn moves towards the target by factor (< 1).
func (c *OrbitControls) DollyIn(factor float32) {
	c.scale *= factor
}

func (c *OrbitControls) DollyOut(factor float32) {
	c.scale /= factor
}

func (c *OrbitControls) zoomScale() float32 {
	return float32(math.Pow(0.95, float64(c.ZoomSpeed)))
}

// BeginDrag starts rotating on the left button and panning on the right.
func (c *OrbitControls) BeginDrag(button core.MouseButton, x, y float64) {
	switch button {
	case core.MouseLeft:
		c.mode = dragRotate
	case core.MouseRight, core.MouseMiddle:
		c.mode = dragPan
	default:
		return
	}
	c.lastX, c.lastY = x, y
}

func (c *OrbitControls) EndDrag() {
	c.mode = dragNone
}

// Drag feeds a pointer position while a button is held.
func (c *OrbitControls) Drag(x, y, viewportHeight float64) {
	if c.mode == dragNone || viewportHeight <= 0 {
		return
	}
	dx := float32(x - c.lastX)
	dy := float32(y - c.lastY)
	c.lastX, c.lastY = x, y

	h := float32(viewportHeight)
	switch c.mode {
	case dragRotate:
		c.RotateLeft(2 * math.Pi * dx * c.RotateSpeed / h)
		c.RotateUp(2 * math.Pi * dy * c.RotateSpeed / h)
	case dragPan:
		c.Pan(dx*c.PanSpeed, dy*c.PanSpeed, h)
	}
}

// Scroll dollies on a wheel step; positive yoff zooms in.
func (c *OrbitControls) Scroll(yoff float64) {
	switch {
	case yoff > 0:
		c.DollyIn(c.zoomScale())
	case yoff < 0:
		c.DollyOut(c.zoomScale())
	}
}
