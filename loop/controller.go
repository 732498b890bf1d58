// Package loop drives the scene frame by frame: it advances time, orbit
// controls and animation, feeds the floor shader, renders, and moves the
// light ball to wherever the pointer meets the floor.
package loop

import (
	"fmt"

	"glitch-scene/math"
	"glitch-scene/picking"
	"glitch-scene/scene"
)

const (
	// PhaseStep is added to the floor shader phase on every step.
	PhaseStep float32 = 0.05

	// TimeUniform is the floor shader uniform that receives the phase.
	TimeUniform = "time"
)

// Clock reports seconds since it was started.
type Clock interface {
	Elapsed() float64
}

// Controls is advanced once per step (damped orbit controls).
type Controls interface {
	Update() bool
}

// Animator is advanced by the real time delta once it exists.
type Animator interface {
	Update(dt float32)
}

// Pipeline draws a frame: scene pass followed by post-processing.
type Pipeline interface {
	Render() error
	Resize(width, height int)
}

// UniformTarget receives the phase value (a shader material).
type UniformTarget interface {
	SetFloat(name string, value float32)
}

// SceneGraph accepts a loaded model root.
type SceneGraph interface {
	AddNode(node *scene.Node)
}

// Host owns the window: event polling and presentation.
type Host interface {
	ShouldClose() bool
	PollEvents()
	SwapBuffers()
}

// Context is everything the controller touches. Camera, Floor, Light and
// Clock are required; the rest may be nil and are then skipped.
type Context struct {
	Camera      *scene.Camera
	Scene       SceneGraph
	Floor       *scene.Node
	FloorShader UniformTarget
	Light       *scene.Node
	Controls    Controls
	Pipeline    Pipeline
	Clock       Clock
}

// Controller is the per-frame state machine. All methods must be called
// from the goroutine that owns the GL context.
type Controller struct {
	// PhaseStep overrides the package default when set before the first Step.
	PhaseStep float32

	ctx      Context
	previous float64
	elapsed  float64
	delta    float64
	phase    float32
	frames   uint64
	animator Animator
	pending  <-chan Asset
}

func NewController(ctx Context) (*Controller, error) {
	switch {
	case ctx.Clock == nil:
		return nil, fmt.Errorf("loop: no clock")
	case ctx.Camera == nil:
		return nil, fmt.Errorf("loop: no camera")
	case ctx.Floor == nil:
		return nil, fmt.Errorf("loop: no floor node")
	case ctx.Light == nil:
		return nil, fmt.Errorf("loop: no light node")
	}
	return &Controller{PhaseStep: PhaseStep, ctx: ctx}, nil
}

// Await hands the controller the channel an asset load will complete on.
// The result is picked up at the start of a later Step.
func (c *Controller) Await(assets <-chan Asset) {
	c.pending = assets
}

// Step runs one iteration of the loop.
func (c *Controller) Step() {
	c.receiveAsset()

	c.elapsed = c.ctx.Clock.Elapsed()
	c.delta = c.elapsed - c.previous
	c.previous = c.elapsed

	c.phase += c.PhaseStep
	c.frames++

	if c.ctx.Controls != nil {
		c.ctx.Controls.Update()
	}

	if c.animator != nil {
		c.animator.Update(float32(c.delta))
	}

	if c.ctx.FloorShader != nil {
		c.ctx.FloorShader.SetFloat(TimeUniform, c.phase)
	}

	if c.ctx.Pipeline != nil {
		if err := c.ctx.Pipeline.Render(); err != nil {
			fmt.Printf("render: %v\n", err)
		}
	}
}

// receiveAsset installs a finished load without blocking. A failed load is
// logged and leaves the scene without animation for good.
func (c *Controller) receiveAsset() {
	if c.pending == nil {
		return
	}
	select {
	case asset, ok := <-c.pending:
		c.pending = nil
		if !ok {
			return
		}
		if asset.Err != nil {
			fmt.Printf("model load failed: %v\n", asset.Err)
			return
		}
		if asset.ClipErr != nil {
			fmt.Printf("model animations skipped: %v\n", asset.ClipErr)
		}
		if asset.Root != nil && c.ctx.Scene != nil {
			c.ctx.Scene.AddNode(asset.Root)
		}
		if asset.Animator != nil {
			c.animator = asset.Animator
		}
		fmt.Printf("model loaded: %s (%d clips)\n", asset.Name, len(asset.Clips))
	default:
	}
}

// OnPointerMove maps a pointer position in window coordinates to the floor
// and moves the light there. It reports whether the light moved; a miss or
// an empty viewport leaves it where it was.
func (c *Controller) OnPointerMove(x, y, width, height float64) bool {
	ndc, ok := math.PointerToNDC(x, y, width, height)
	if !ok {
		return false
	}
	ray := picking.RayFromCamera(ndc, c.ctx.Camera)
	hit := picking.IntersectNodes(ray, c.ctx.Floor)
	if !hit.Hit {
		return false
	}
	c.ctx.Light.SetPosition(hit.Point)
	return true
}

// OnResize follows a drawable size change. Zero sizes (minimised windows)
// are ignored.
func (c *Controller) OnResize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.ctx.Camera.UpdateAspectRatio(float32(width), float32(height))
	if c.ctx.Pipeline != nil {
		c.ctx.Pipeline.Resize(width, height)
	}
}

// Run steps once per presented frame until the host asks to close.
func (c *Controller) Run(host Host) {
	for !host.ShouldClose() {
		host.PollEvents()
		c.Step()
		host.SwapBuffers()
	}
}

// Phase is the accumulated floor shader phase.
func (c *Controller) Phase() float32 { return c.phase }

// Elapsed is the clock reading of the last Step.
func (c *Controller) Elapsed() float64 { return c.elapsed }

// Delta is the time between the last two Steps.
func (c *Controller) Delta() float64 { return c.delta }

// Frames counts completed Steps.
func (c *Controller) Frames() uint64 { return c.frames }

// Animator is nil until a loaded asset provides one.
func (c *Controller) Animator() Animator { return c.animator }
