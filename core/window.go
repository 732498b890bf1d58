package core

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW and the GL context must stay on the main thread.
	runtime.LockOSThread()
}

type MouseButton int

const (
	MouseLeft   = MouseButton(glfw.MouseButtonLeft)
	MouseRight  = MouseButton(glfw.MouseButtonRight)
	MouseMiddle = MouseButton(glfw.MouseButtonMiddle)
)

const (
	KeyEscape = int(glfw.KeyEscape)
)

// Window owns the GLFW window and its OpenGL 4.1 core context. Width and
// Height are in screen coordinates, the space pointer events arrive in;
// the drawable size is the framebuffer size capped by MaxPixelRatio.
type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string

	maxPixelRatio float32

	onPointerMove func(x, y float64)
	onButton      func(button MouseButton, pressed bool, x, y float64)
	onScroll      func(yoff float64)
	onResize      func(width, height int)
}

type WindowConfig struct {
	Width         int
	Height        int
	Title         string
	Resizable     bool
	VSync         bool
	Fullscreen    bool
	MaxPixelRatio float32
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Width:         1280,
		Height:        720,
		Title:         "Glitch Scene",
		Resizable:     true,
		VSync:         true,
		Fullscreen:    false,
		MaxPixelRatio: 2,
	}
}

func NewWindow(config WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, boolToInt(config.Resizable))

	monitor := (*glfw.Monitor)(nil)
	if config.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()
	if config.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	maxRatio := config.MaxPixelRatio
	if maxRatio <= 0 {
		maxRatio = 1
	}

	window := &Window{
		Handle:        handle,
		Width:         config.Width,
		Height:        config.Height,
		Title:         config.Title,
		maxPixelRatio: maxRatio,
	}

	handle.SetSizeCallback(func(_ *glfw.Window, width, height int) {
		window.Width = width
		window.Height = height
	})
	// GLFW reports the framebuffer size before the window size, so the
	// window size is read here rather than taken from the size callback.
	handle.SetFramebufferSizeCallback(func(w *glfw.Window, fbWidth, fbHeight int) {
		window.Width, window.Height = w.GetSize()
		if window.onResize != nil {
			window.onResize(DrawableSizeFor(fbWidth, fbHeight, window.Width, window.Height, window.maxPixelRatio))
		}
	})
	handle.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if window.onPointerMove != nil {
			window.onPointerMove(x, y)
		}
	})
	handle.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if window.onButton == nil || action == glfw.Repeat {
			return
		}
		x, y := w.GetCursorPos()
		window.onButton(MouseButton(button), action == glfw.Press, x, y)
	})
	handle.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if window.onScroll != nil {
			window.onScroll(yoff)
		}
	})

	return window, nil
}

// OnPointerMove registers the cursor handler; coordinates are in screen
// space relative to the top-left corner.
func (w *Window) OnPointerMove(fn func(x, y float64)) { w.onPointerMove = fn }

func (w *Window) OnMouseButton(fn func(button MouseButton, pressed bool, x, y float64)) {
	w.onButton = fn
}

func (w *Window) OnScroll(fn func(yoff float64)) { w.onScroll = fn }

// OnResize receives the new drawable size.
func (w *Window) OnResize(fn func(width, height int)) { w.onResize = fn }

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

func (w *Window) SetShouldClose(v bool) {
	w.Handle.SetShouldClose(v)
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) SwapBuffers() {
	w.Handle.SwapBuffers()
}

func (w *Window) GetFramebufferSize() (int, int) {
	return w.Handle.GetFramebufferSize()
}

// DrawableSize is the resolution the scene is rendered at.
func (w *Window) DrawableSize() (int, int) {
	fbWidth, fbHeight := w.Handle.GetFramebufferSize()
	return DrawableSizeFor(fbWidth, fbHeight, w.Width, w.Height, w.maxPixelRatio)
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}

func (w *Window) IsKeyPressed(key int) bool {
	return w.Handle.GetKey(glfw.Key(key)) == glfw.Press
}

// ClampPixelRatio returns framebufferWidth/windowWidth limited to maxRatio.
func ClampPixelRatio(framebufferWidth, windowWidth int, maxRatio float32) float32 {
	if windowWidth <= 0 || framebufferWidth <= 0 {
		return 1
	}
	ratio := float32(framebufferWidth) / float32(windowWidth)
	if ratio > maxRatio {
		return maxRatio
	}
	return ratio
}

// DrawableSizeFor is the window size scaled by the capped pixel ratio.
// When the ratio is not capped it equals the framebuffer size.
func DrawableSizeFor(fbWidth, fbHeight, windowWidth, windowHeight int, maxRatio float32) (int, int) {
	if windowWidth <= 0 || windowHeight <= 0 {
		return fbWidth, fbHeight
	}
	ratio := ClampPixelRatio(fbWidth, windowWidth, maxRatio)
	if ratio == float32(fbWidth)/float32(windowWidth) {
		return fbWidth, fbHeight
	}
	return int(float32(windowWidth) * ratio), int(float32(windowHeight) * ratio)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
