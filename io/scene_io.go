package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"glitch-scene/core"
	"glitch-scene/math"
)

// DefaultConfigPath is read from the working directory when present.
const DefaultConfigPath = "glitchscene.json"

// SceneFile is the optional JSON configuration of the glitch scene. Fields
// missing from the file keep their defaults.
type SceneFile struct {
	Version  string        `json:"version"`
	Name     string        `json:"name"`
	Window   WindowData    `json:"window"`
	Camera   CameraData    `json:"camera"`
	Controls ControlsData  `json:"controls"`
	Light    LightData     `json:"light"`
	Floor    FloorData     `json:"floor"`
	Plane    PlaneData     `json:"plane"`
	Model    ModelData     `json:"model"`
	Glitch   GlitchData    `json:"glitch"`
	Settings SceneSettings `json:"settings"`
}

// WindowData stores the window setup
type WindowData struct {
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	Title         string  `json:"title"`
	VSync         bool    `json:"vsync"`
	MaxPixelRatio float32 `json:"max_pixel_ratio"`
}

// CameraData stores camera state
type CameraData struct {
	Position [3]float32 `json:"position"`
	Target   [3]float32 `json:"target"`
	FOV      float32    `json:"fov"` // vertical, degrees
	Near     float32    `json:"near"`
	Far      float32    `json:"far"`
}

// ControlsData configures the orbit controls
type ControlsData struct {
	EnableDamping bool    `json:"enable_damping"`
	DampingFactor float32 `json:"damping_factor"`
}

// LightData describes the pointer-following light ball
type LightData struct {
	Color     [4]float32 `json:"color"`
	Intensity float32    `json:"intensity"`
	Range     float32    `json:"range"`
	Radius    float32    `json:"radius"`   // size of the visible ball
	Segments  int        `json:"segments"` // sphere tessellation of the ball
}

// FloorData describes the shader-textured floor sphere
type FloorData struct {
	Radius   float32 `json:"radius"`
	Segments int     `json:"segments"`
}

// PlaneData describes the dark metallic plane under the scene
type PlaneData struct {
	Width     float32    `json:"width"`
	Height    float32    `json:"height"`
	Y         float32    `json:"y"`
	Color     [4]float32 `json:"color"`
	Metallic  float32    `json:"metallic"`
	Roughness float32    `json:"roughness"`
}

// ModelData points at the animated model
type ModelData struct {
	Path string `json:"path"`
}

// GlitchData configures the post-processing pass
type GlitchData struct {
	Enabled bool  `json:"enabled"`
	GoWild  bool  `json:"go_wild"`
	Seed    int64 `json:"seed,omitempty"` // 0 = random
}

// SceneSettings stores loop and colour settings
type SceneSettings struct {
	PhaseStep    float32    `json:"phase_step"`
	AmbientColor [4]float32 `json:"ambient_color"`
	ClearColor   [4]float32 `json:"clear_color"`
}

// SaveScene serializes scene data to a JSON file
func SaveScene(path string, scene *SceneFile) error {
	data, err := json.MarshalIndent(scene, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scene: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadScene deserializes a scene config over the defaults.
func LoadScene(path string) (*SceneFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}

	scene := NewDefaultSceneFile("glitch-scene")
	if err := json.Unmarshal(data, scene); err != nil {
		return nil, fmt.Errorf("failed to parse scene file: %w", err)
	}
	if err := scene.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scene file %q: %w", path, err)
	}
	return scene, nil
}

// LoadSceneFile is LoadScene that falls back to the defaults when the file
// does not exist.
func LoadSceneFile(path string) (*SceneFile, error) {
	scene, err := LoadScene(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewDefaultSceneFile("glitch-scene"), nil
	}
	return scene, err
}

// NewDefaultSceneFile returns the stock scene.
func NewDefaultSceneFile(name string) *SceneFile {
	return &SceneFile{
		Version: "1.0",
		Name:    name,
		Window: WindowData{
			Width:         1280,
			Height:        720,
			Title:         "Glitch Scene",
			VSync:         true,
			MaxPixelRatio: 2,
		},
		Camera: CameraData{
			Position: [3]float32{0, 2, 5},
			Target:   [3]float32{0, 0.75, 0},
			FOV:      75,
			Near:     0.1,
			Far:      100,
		},
		Controls: ControlsData{
			EnableDamping: true,
			DampingFactor: 0.05,
		},
		Light: LightData{
			Color:     [4]float32{1, 1, 1, 1},
			Intensity: 0.6,
			Range:     50,
			Radius:    0.1,
			Segments:  20,
		},
		Floor: FloorData{
			Radius:   5,
			Segments: 50,
		},
		Plane: PlaneData{
			Width:     15,
			Height:    20,
			Y:         0.2,
			Color:     [4]float32{0, 0, 0, 1},
			Metallic:  2,
			Roughness: 0.5,
		},
		Model: ModelData{
			Path: "models/hell/hellnew.glb",
		},
		Glitch: GlitchData{
			Enabled: true,
		},
		Settings: SceneSettings{
			PhaseStep:    0.05,
			AmbientColor: [4]float32{0, 0, 0, 1},
			ClearColor:   [4]float32{0, 0, 0, 1},
		},
	}
}

// Validate rejects values the scene cannot be built from.
func (s *SceneFile) Validate() error {
	switch {
	case s.Window.Width <= 0 || s.Window.Height <= 0:
		return fmt.Errorf("window size %dx%d", s.Window.Width, s.Window.Height)
	case s.Camera.FOV <= 0 || s.Camera.FOV >= 180:
		return fmt.Errorf("camera fov %v", s.Camera.FOV)
	case s.Camera.Near <= 0 || s.Camera.Far <= s.Camera.Near:
		return fmt.Errorf("camera clip range [%v, %v]", s.Camera.Near, s.Camera.Far)
	case s.Floor.Radius <= 0 || s.Floor.Segments < 3:
		return fmt.Errorf("floor radius %v segments %d", s.Floor.Radius, s.Floor.Segments)
	case s.Light.Radius <= 0 || s.Light.Segments < 3:
		return fmt.Errorf("light radius %v segments %d", s.Light.Radius, s.Light.Segments)
	case s.Controls.DampingFactor < 0 || s.Controls.DampingFactor > 1:
		return fmt.Errorf("damping factor %v", s.Controls.DampingFactor)
	case s.Settings.PhaseStep <= 0:
		return fmt.Errorf("phase step %v", s.Settings.PhaseStep)
	}
	return nil
}

// WindowConfig converts the window section for core.NewWindow.
func (s *SceneFile) WindowConfig() core.WindowConfig {
	cfg := core.DefaultWindowConfig()
	cfg.Width = s.Window.Width
	cfg.Height = s.Window.Height
	cfg.VSync = s.Window.VSync
	if s.Window.Title != "" {
		cfg.Title = s.Window.Title
	}
	if s.Window.MaxPixelRatio > 0 {
		cfg.MaxPixelRatio = s.Window.MaxPixelRatio
	}
	return cfg
}

// --- Helper conversions ---

// ArrayToVec3 converts a [3]float32 to Vec3
func ArrayToVec3(a [3]float32) math.Vec3 {
	return math.Vec3{X: a[0], Y: a[1], Z: a[2]}
}

// ArrayToColor converts [4]float32 to Color
func ArrayToColor(a [4]float32) core.Color {
	return core.Color{R: a[0], G: a[1], B: a[2], A: a[3]}
}
