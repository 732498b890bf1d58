package scene

import (
	"glitch-scene/core"
	"glitch-scene/math"
)

// Scene manages a collection of nodes and the active camera
type Scene struct {
	Root       *Node
	Camera     *Camera
	Lights     []*Light
	Ambient    core.Color
	ClearColor core.Color
}

// Light types
const (
	LightTypeDirectional = iota
	LightTypePoint
)

// Light represents a light source. A light with an Anchor takes its
// position from that node every frame.
type Light struct {
	Type      int
	Position  math.Vec3
	Direction math.Vec3
	Color     core.Color
	Intensity float32
	Range     float32 // zero means no distance cutoff
	Anchor    *Node
}

// NewPointLight returns a point light riding on anchor.
func NewPointLight(color core.Color, intensity, rangeDist float32, anchor *Node) *Light {
	return &Light{
		Type:      LightTypePoint,
		Color:     color,
		Intensity: intensity,
		Range:     rangeDist,
		Anchor:    anchor,
	}
}

func NewScene() *Scene {
	return &Scene{
		Root:       NewNode("Root"),
		Lights:     make([]*Light, 0),
		Ambient:    core.Color{},
		ClearColor: core.ColorBlack,
	}
}

func (s *Scene) SetCamera(camera *Camera) {
	s.Camera = camera
}

func (s *Scene) AddNode(node *Node) {
	s.Root.AddChild(node)
}

func (s *Scene) AddLight(light *Light) {
	s.Lights = append(s.Lights, light)
}

// Prepare brings derived state up to date before drawing: anchored
// lights follow their nodes and skinned meshes are re-posed.
func (s *Scene) Prepare() {
	for _, l := range s.Lights {
		if l.Anchor != nil {
			l.Position = l.Anchor.WorldPosition()
		}
	}
	s.Root.Traverse(func(node *Node) {
		if node.Mesh != nil && node.Mesh.Skin != nil {
			node.Mesh.ApplySkin(node.GetWorldMatrix())
		}
	})
}

// GetVisibleNodes returns all nodes with meshes that are visible. A hidden
// node hides its whole subtree.
func (s *Scene) GetVisibleNodes() []*Node {
	var visible []*Node
	var walk func(*Node)
	walk = func(node *Node) {
		if !node.Visible {
			return
		}
		if node.Mesh != nil {
			visible = append(visible, node)
		}
		for _, child := range node.Children {
			walk(child)
		}
	}
	walk(s.Root)
	return visible
}
