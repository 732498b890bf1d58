package scene

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	stdmath "math"
	"testing"

	"glitch-scene/core"
	"glitch-scene/math"
)

func approx(a, b, eps float32) bool {
	return float32(stdmath.Abs(float64(a-b))) <= eps
}

func orbitFixture(damping bool) (*Camera, *OrbitControls) {
	cam := NewCamera(stdmath.Pi/3, 1, 0.1, 100)
	cam.SetPosition(math.NewVec3(0, 0, 5))
	c := NewOrbitControls(cam, math.Vec3Zero)
	c.EnableDamping = damping
	return cam, c
}

func TestOrbitControlsFacesTarget(t *testing.T) {
	cam, _ := orbitFixture(true)
	if !cam.Position.Approx(math.NewVec3(0, 0, 5), 1e-4) {
		t.Errorf("construction should not move the camera, got %v", cam.Position)
	}
	if cam.Target != math.Vec3Zero {
		t.Errorf("camera should look at the target, got %v", cam.Target)
	}
}

func TestOrbitControlsWithoutDamping(t *testing.T) {
	cam, c := orbitFixture(false)
	c.RotateLeft(stdmath.Pi / 2)
	if !c.Update() {
		t.Fatal("expected the camera to move")
	}
	if !approx(cam.Position.Length(), 5, 1e-3) {
		t.Errorf("rotation must keep the distance, got %v", cam.Position.Length())
	}
	if !approx(cam.Position.Z, 0, 1e-3) {
		t.Errorf("quarter turn should leave the camera on the X axis, got %v", cam.Position)
	}
	if c.Update() {
		t.Error("without damping the delta is consumed in one step")
	}
}

func TestOrbitControlsDampingDecays(t *testing.T) {
	cam, c := orbitFixture(true)
	c.RotateLeft(1)

	var steps []float32
	prev := cam.Position
	for i := 0; i < 5; i++ {
		c.Update()
		steps = append(steps, cam.Position.Sub(prev).Length())
		prev = cam.Position
	}
	for i := 1; i < len(steps); i++ {
		if steps[i] >= steps[i-1] {
			t.Errorf("step %d moved %v, not less than %v", i, steps[i], steps[i-1])
		}
	}
	if !approx(c.sphericalDelta.Theta, -float32(stdmath.Pow(0.95, 5)), 1e-5) {
		t.Errorf("remaining delta: got %v", c.sphericalDelta.Theta)
	}
}

func TestOrbitControlsScroll(t *testing.T) {
	cam, c := orbitFixture(true)
	c.Scroll(1)
	c.Update()
	if !approx(cam.Position.Length(), 4.75, 1e-3) {
		t.Errorf("scroll in: expected distance 4.75, got %v", cam.Position.Length())
	}
	c.Scroll(-1)
	c.Update()
	if !approx(cam.Position.Length(), 5, 1e-3) {
		t.Errorf("scroll out: expected distance 5, got %v", cam.Position.Length())
	}
}

func TestOrbitControlsPolarClamp(t *testing.T) {
	cam, c := orbitFixture(false)
	c.RotateUp(10)
	c.Update()
	if cam.Position.Y <= 0 || !approx(cam.Position.Length(), 5, 1e-3) {
		t.Errorf("camera should stop near the pole, got %v", cam.Position)
	}
}

func TestCameraAspectIgnoresZeroHeight(t *testing.T) {
	cam := NewCamera(1, 1, 0.1, 10)
	cam.UpdateAspectRatio(800, 0)
	if cam.AspectRatio != 1 {
		t.Errorf("expected aspect unchanged, got %v", cam.AspectRatio)
	}
	cam.UpdateAspectRatio(800, 400)
	if cam.AspectRatio != 2 {
		t.Errorf("expected aspect 2, got %v", cam.AspectRatio)
	}
}

func TestPrepareMovesAnchoredLights(t *testing.T) {
	s := NewScene()
	parent := NewNode("parent")
	parent.SetPosition(math.NewVec3(1, 0, 0))
	ball := NewNode("ball")
	ball.SetPosition(math.NewVec3(0, 2, 0))
	parent.AddChild(ball)
	s.AddNode(parent)

	light := NewPointLight(core.ColorWhite, 0.6, 50, ball)
	s.AddLight(light)
	s.Prepare()
	if !light.Position.Approx(math.NewVec3(1, 2, 0), 1e-5) {
		t.Errorf("light should follow its anchor, got %v", light.Position)
	}

	ball.SetPosition(math.NewVec3(0, 0, 3))
	s.Prepare()
	if !light.Position.Approx(math.NewVec3(1, 0, 3), 1e-5) {
		t.Errorf("light should follow a moved anchor, got %v", light.Position)
	}
}

func TestVisibleNodesSkipHiddenSubtrees(t *testing.T) {
	s := NewScene()
	hidden := NewMeshNode("hidden", CreatePlane(1, 1, 1))
	hidden.Visible = false
	hidden.AddChild(NewMeshNode("child", CreatePlane(1, 1, 1)))
	s.AddNode(hidden)
	s.AddNode(NewMeshNode("shown", CreatePlane(1, 1, 1)))

	visible := s.GetVisibleNodes()
	if len(visible) != 1 || visible[0].Name != "shown" {
		t.Errorf("expected only the shown node, got %d nodes", len(visible))
	}
}

func TestFrustumCulling(t *testing.T) {
	cam := NewCamera(stdmath.Pi/2, 1, 0.1, 100)
	f := FrustumFromVP(cam.GetViewProjectionMatrix())

	tests := []struct {
		name   string
		center math.Vec3
		want   bool
	}{
		{"ahead", math.NewVec3(0, 0, -10), true},
		{"behind", math.NewVec3(0, 0, 10), false},
		{"beyond far", math.NewVec3(0, 0, -200), false},
		{"far left", math.NewVec3(-50, 0, -10), false},
		{"straddling near", math.NewVec3(0, 0, 0), true},
	}
	half := math.NewVec3(1, 1, 1)
	for _, tt := range tests {
		box := AABB{Min: tt.center.Sub(half), Max: tt.center.Add(half)}
		if got := box.IntersectsFrustum(&f); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestAABBIntersectRay(t *testing.T) {
	box := AABB{Min: math.NewVec3(-1, -1, -1), Max: math.NewVec3(1, 1, 1)}
	d, ok := box.IntersectRay(math.NewVec3(0, 0, 5), math.NewVec3(0, 0, -1))
	if !ok || !approx(d, 4, 1e-5) {
		t.Errorf("entry: got %v, %v", d, ok)
	}
	if _, ok := box.IntersectRay(math.NewVec3(0, 5, 5), math.NewVec3(0, 0, -1)); ok {
		t.Error("expected a miss")
	}
}

func TestCreateSphere(t *testing.T) {
	m := CreateSphere(5, 50, 50)
	if len(m.Vertices) != 51*51 {
		t.Errorf("vertices: got %d", len(m.Vertices))
	}
	for i, v := range m.Vertices {
		if !approx(v.Position.Length(), 5, 1e-4) {
			t.Fatalf("vertex %d off the sphere: %v", i, v.Position)
		}
	}
	for _, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			t.Fatalf("index %d out of range", idx)
		}
	}
	if !m.LocalAABB.Max.Approx(math.NewVec3(5, 5, 5), 0.1) {
		t.Errorf("bounds: got %v", m.LocalAABB)
	}

	// Counter-clockwise from outside: the face normal points away from the centre.
	a, b, c := m.Triangle(m.TriangleCount() / 2)
	pa, pb, pc := m.Vertices[a].Position, m.Vertices[b].Position, m.Vertices[c].Position
	n := pb.Sub(pa).Cross(pc.Sub(pa))
	if n.Dot(pa) <= 0 {
		t.Error("sphere faces should wind outward")
	}
}

func TestCreatePlane(t *testing.T) {
	m := CreatePlane(15, 20, 1)
	if len(m.Vertices) != 4 || m.TriangleCount() != 2 {
		t.Fatalf("got %d vertices, %d triangles", len(m.Vertices), m.TriangleCount())
	}
	if m.LocalAABB.Min != math.NewVec3(-7.5, -10, 0) || m.LocalAABB.Max != math.NewVec3(7.5, 10, 0) {
		t.Errorf("bounds: got %v", m.LocalAABB)
	}
	for _, v := range m.Vertices {
		if v.Normal != math.Vec3Front {
			t.Errorf("normal: got %v", v.Normal)
		}
	}
}

func TestApplySkin(t *testing.T) {
	joint := NewNode("joint")
	skin := &Skin{Joints: []*Node{joint}, InverseBind: []math.Mat4{math.Mat4Identity()}}

	m := CreateMeshFromData("skinned", []core.Vertex{
		{Position: math.NewVec3(1, 0, 0), Normal: math.Vec3Up},
		{Position: math.NewVec3(0, 0, 1), Normal: math.Vec3Up},
	}, nil)
	m.BindSkin(skin, [][4]uint16{{0}, {0}}, [][4]float32{{1}, {0}})

	joint.SetPosition(math.NewVec3(0, 2, 0))
	m.ApplySkin(math.Mat4Identity())

	if !m.Dirty {
		t.Error("skinning should mark the mesh dirty")
	}
	if !m.Vertices[0].Position.Approx(math.NewVec3(1, 2, 0), 1e-5) {
		t.Errorf("weighted vertex: got %v", m.Vertices[0].Position)
	}
	if m.Vertices[1].Position != math.NewVec3(0, 0, 1) {
		t.Errorf("unweighted vertex should stay in bind pose, got %v", m.Vertices[1].Position)
	}
	if !approx(m.LocalAABB.Max.Y, 2, 1e-5) {
		t.Errorf("bounds should follow the pose, got %v", m.LocalAABB)
	}

	// Re-posing starts from the bind pose, not the previous pose.
	joint.SetPosition(math.NewVec3(0, 1, 0))
	m.ApplySkin(math.Mat4Identity())
	if !m.Vertices[0].Position.Approx(math.NewVec3(1, 1, 0), 1e-5) {
		t.Errorf("second pose: got %v", m.Vertices[0].Position)
	}
}

func TestShaderMaterialFloats(t *testing.T) {
	sm := NewShaderMaterial("floor", "vs", "fs")
	sm.SetFloat("time", 1.5)
	sm.SetFloat("amount", 0.2)
	if v, ok := sm.Float("time"); !ok || v != 1.5 {
		t.Errorf("time: got %v, %v", v, ok)
	}
	if _, ok := sm.Float("missing"); ok {
		t.Error("unset uniform should report false")
	}
	names := sm.FloatNames()
	if len(names) != 2 || names[0] != "amount" || names[1] != "time" {
		t.Errorf("names: got %v", names)
	}

	mat := NewShaderMaterialWith(sm)
	if mat.Shader != sm || mat.Name != "floor" {
		t.Errorf("material: got %+v", mat)
	}
}

func TestDecodeTexture(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{B: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	tex, err := DecodeTexture("test.png", &buf)
	if err != nil {
		t.Fatalf("DecodeTexture: %v", err)
	}
	if tex.Width != 2 || tex.Height != 1 || len(tex.Pixels) != 8 {
		t.Fatalf("got %dx%d with %d bytes", tex.Width, tex.Height, len(tex.Pixels))
	}
	if tex.Pixels[0] != 255 || tex.Pixels[6] != 255 {
		t.Errorf("pixels: got %v", tex.Pixels)
	}

	if _, err := DecodeTexture("bad.png", bytes.NewReader([]byte("nope"))); err == nil {
		t.Error("expected a decode error")
	}
}
