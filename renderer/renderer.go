package renderer

import (
	"fmt"
	"math/rand"

	"glitch-scene/core"
	"glitch-scene/internal/opengl"
	"glitch-scene/scene"
)

// RenderEngine is the high-level renderer that drives the OpenGL backend.
// Each Render draws the scene into the composer's off-screen target and
// then runs the post-processing chain to the window.
type RenderEngine struct {
	gl                 *opengl.Renderer
	window             *core.Window
	Scene              *scene.Scene
	FrustumCulling     bool
	PostProcessEnabled bool // enable via EnablePostProcess()

	composer *opengl.Composer
	glitch   *opengl.GlitchPass

	// Per-frame stats (populated during Render)
	lastObjects   int
	lastVertices  int
	lastTriangles int
	lastCulled    int
}

func NewRenderEngine(window *core.Window) (*RenderEngine, error) {
	glRenderer, err := opengl.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenGL renderer: %w", err)
	}

	glRenderer.SetViewport(window.GetFramebufferSize())

	fmt.Println("Render engine initialized (OpenGL)")
	return &RenderEngine{
		gl:             glRenderer,
		window:         window,
		FrustumCulling: true,
	}, nil
}

// EnablePostProcess creates the composer at the window's drawable size.
// Call once after NewRenderEngine, before the first Render.
func (re *RenderEngine) EnablePostProcess() error {
	if re.composer != nil {
		return nil
	}
	w, h := re.window.DrawableSize()
	composer, err := opengl.NewComposer(w, h)
	if err != nil {
		return fmt.Errorf("post-process: %w", err)
	}
	re.composer = composer
	re.PostProcessEnabled = true
	return nil
}

// EnableGlitch appends the digital-glitch pass. EnablePostProcess must be
// called first. rng seeds both the heightmap and the burst schedule; nil
// picks a random seed.
func (re *RenderEngine) EnableGlitch(rng *rand.Rand, goWild bool) error {
	if re.composer == nil {
		return fmt.Errorf("glitch: post-processing is not enabled")
	}
	if re.glitch != nil {
		re.glitch.Schedule.GoWild = goWild
		return nil
	}
	pass, err := opengl.NewGlitchPass(rng)
	if err != nil {
		return fmt.Errorf("glitch: %w", err)
	}
	pass.Schedule.GoWild = goWild
	re.composer.AddPass(pass)
	re.glitch = pass
	return nil
}

// SetGlitchEnabled toggles the glitch pass; when off the scene image is
// copied to the screen unchanged.
func (re *RenderEngine) SetGlitchEnabled(on bool) {
	if re.glitch != nil {
		re.glitch.SetEnabled(on)
	}
}

func (re *RenderEngine) SetScene(s *scene.Scene) {
	re.Scene = s
}

// Render draws one frame: the scene pass followed by every post-processing
// pass. Buffers are swapped by the caller.
func (re *RenderEngine) Render() error {
	if re.Scene == nil || re.Scene.Camera == nil {
		return fmt.Errorf("no scene or camera")
	}

	re.Scene.Prepare()

	if re.composer != nil {
		re.composer.BeginScene()
	} else {
		re.gl.BindScreen()
	}

	re.gl.BeginFrame(
		re.Scene.ClearColor,
		re.Scene.Lights,
		re.Scene.Ambient,
		re.Scene.Camera.Position,
	)

	view := re.Scene.Camera.GetViewMatrix()
	proj := re.Scene.Camera.GetProjectionMatrix()
	frustum := scene.FrustumFromVP(view.Mul(proj))

	objects, vertices, triangles, culled := 0, 0, 0, 0

	for _, node := range re.Scene.GetVisibleNodes() {
		model := node.GetWorldMatrix()

		if re.FrustumCulling && node.Mesh.HasLocalAABB {
			aabb := scene.ComputeAABB(node.Mesh, model)
			if !aabb.IntersectsFrustum(&frustum) {
				culled++
				continue
			}
		}

		mvp := model.Mul(view).Mul(proj)
		re.gl.DrawMesh(node.Mesh, mvp, model)

		objects++
		vertices += len(node.Mesh.Vertices)
		triangles += node.Mesh.TriangleCount()
	}

	re.lastObjects = objects
	re.lastVertices = vertices
	re.lastTriangles = triangles
	re.lastCulled = culled

	if re.composer != nil {
		re.composer.Render(re.gl.Viewport())
	}
	return nil
}

// Resize follows a change of the drawable size. The default framebuffer
// viewport is taken from the window, which may be larger when the pixel
// ratio is capped.
func (re *RenderEngine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	re.gl.SetViewport(re.window.GetFramebufferSize())
	if re.composer != nil {
		re.composer.Resize(width, height)
	}
}

func (re *RenderEngine) Destroy() {
	if re.composer != nil {
		re.composer.Destroy()
	}
	re.gl.Destroy()
}

// DrawStats returns stats from the most recent Render call.
func (re *RenderEngine) DrawStats() (objects, vertices, triangles, culled int) {
	return re.lastObjects, re.lastVertices, re.lastTriangles, re.lastCulled
}
