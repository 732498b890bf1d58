package main

import (
	"fmt"
	"math/rand"
	"time"

	"glitch-scene/core"
	"glitch-scene/io"
	"glitch-scene/loop"
	"glitch-scene/renderer"
)

func main() {
	fmt.Println("Starting glitch scene...")

	cfg, err := io.LoadSceneFile(io.DefaultConfigPath)
	if err != nil {
		fmt.Printf("Config error (using defaults): %v\n", err)
		cfg = io.NewDefaultSceneFile("glitch-scene")
	}

	window, err := core.NewWindow(cfg.WindowConfig())
	if err != nil {
		fmt.Printf("Failed to create window: %v\n", err)
		return
	}
	defer window.Destroy()

	renderEngine, err := renderer.NewRenderEngine(window)
	if err != nil {
		fmt.Printf("Failed to create render engine: %v\n", err)
		return
	}
	defer renderEngine.Destroy()

	if err := renderEngine.EnablePostProcess(); err != nil {
		fmt.Printf("Post-process init failed (continuing without it): %v\n", err)
	} else {
		seed := cfg.Glitch.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		if err := renderEngine.EnableGlitch(rand.New(rand.NewSource(seed)), cfg.Glitch.GoWild); err != nil {
			fmt.Printf("Glitch pass init failed (continuing without it): %v\n", err)
		} else {
			renderEngine.SetGlitchEnabled(cfg.Glitch.Enabled)
			fmt.Printf("Glitch pass ready (enabled %v, seed %d, go wild %v)\n", cfg.Glitch.Enabled, seed, cfg.Glitch.GoWild)
		}
	}

	w, h := window.DrawableSize()
	world := buildWorld(cfg, float32(w)/float32(h))
	renderEngine.SetScene(world.scene)

	controller, err := loop.NewController(loop.Context{
		Camera:      world.camera,
		Scene:       world.scene,
		Floor:       world.floor,
		FloorShader: world.floorShader,
		Light:       world.light,
		Controls:    world.controls,
		Pipeline:    renderEngine,
		Clock:       core.NewClock(),
	})
	if err != nil {
		fmt.Printf("Failed to create loop: %v\n", err)
		return
	}
	controller.PhaseStep = cfg.Settings.PhaseStep

	fmt.Printf("Loading model %s...\n", cfg.Model.Path)
	controller.Await(loop.LoadModel(cfg.Model.Path))

	dragging := false
	window.OnPointerMove(func(x, y float64) {
		if dragging {
			world.controls.Drag(x, y, float64(window.Height))
		}
		controller.OnPointerMove(x, y, float64(window.Width), float64(window.Height))
	})
	window.OnMouseButton(func(button core.MouseButton, pressed bool, x, y float64) {
		if pressed {
			world.controls.BeginDrag(button, x, y)
			dragging = true
			return
		}
		world.controls.EndDrag()
		dragging = false
	})
	window.OnScroll(world.controls.Scroll)
	window.OnResize(controller.OnResize)

	controller.Run(&escapeHost{Window: window})

	objects, vertices, triangles, culled := renderEngine.DrawStats()
	fmt.Printf("Frames: %d, last frame: %d objects, %d vertices, %d triangles, %d culled\n",
		controller.Frames(), objects, vertices, triangles, culled)
}

// escapeHost closes the window on Escape.
type escapeHost struct {
	*core.Window
}

func (h *escapeHost) ShouldClose() bool {
	if h.IsKeyPressed(core.KeyEscape) {
		h.SetShouldClose(true)
	}
	return h.Window.ShouldClose()
}
