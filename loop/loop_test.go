package loop

import (
	"errors"
	stdmath "math"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"

	"glitch-scene/math"
	"glitch-scene/scene"
)

type fakeClock struct {
	readings []float64
	i        int
}

func (c *fakeClock) Elapsed() float64 {
	if c.i >= len(c.readings) {
		return c.readings[len(c.readings)-1]
	}
	v := c.readings[c.i]
	c.i++
	return v
}

type fakeControls struct{ updates int }

func (c *fakeControls) Update() bool {
	c.updates++
	return false
}

type fakeAnimator struct{ deltas []float32 }

func (a *fakeAnimator) Update(dt float32) { a.deltas = append(a.deltas, dt) }

type fakePipeline struct {
	renders int
	err     error
	w, h    int
}

func (p *fakePipeline) Render() error {
	p.renders++
	return p.err
}

func (p *fakePipeline) Resize(w, h int) { p.w, p.h = w, h }

type fakeGraph struct{ added []*scene.Node }

func (g *fakeGraph) AddNode(n *scene.Node) { g.added = append(g.added, n) }

type fakeHost struct {
	frames, polls, swaps int
}

func (h *fakeHost) ShouldClose() bool { return h.swaps >= h.frames }
func (h *fakeHost) PollEvents()       { h.polls++ }
func (h *fakeHost) SwapBuffers()      { h.swaps++ }

type fixture struct {
	ctl      *Controller
	clock    *fakeClock
	controls *fakeControls
	pipeline *fakePipeline
	graph    *fakeGraph
	shader   *scene.ShaderMaterial
	floor    *scene.Node
	light    *scene.Node
	camera   *scene.Camera
}

func newFixture(t *testing.T, readings ...float64) *fixture {
	t.Helper()
	if len(readings) == 0 {
		readings = []float64{0}
	}
	f := &fixture{
		clock:    &fakeClock{readings: readings},
		controls: &fakeControls{},
		pipeline: &fakePipeline{},
		graph:    &fakeGraph{},
		shader:   scene.NewShaderMaterial("floor", "", ""),
		floor:    scene.NewMeshNode("floor", scene.CreateSphere(5, 50, 50)),
		light:    scene.NewNode("light"),
		camera:   scene.NewCamera(75*stdmath.Pi/180, 16.0/9.0, 0.1, 100),
	}
	f.camera.SetPosition(math.NewVec3(0, 2, 5))
	f.camera.LookAt(math.NewVec3(0, 0.75, 0), math.Vec3Up)

	ctl, err := NewController(Context{
		Camera:      f.camera,
		Scene:       f.graph,
		Floor:       f.floor,
		FloorShader: f.shader,
		Light:       f.light,
		Controls:    f.controls,
		Pipeline:    f.pipeline,
		Clock:       f.clock,
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	f.ctl = ctl
	return f
}

func near(a, b float64) bool {
	return stdmath.Abs(a-b) <= 1e-6
}

func TestNewControllerRequiresContext(t *testing.T) {
	if _, err := NewController(Context{}); err == nil {
		t.Error("expected an error for an empty context")
	}
}

func TestPhaseStartsAtZero(t *testing.T) {
	f := newFixture(t)
	if f.ctl.Phase() != 0 {
		t.Errorf("expected phase 0 before any step, got %v", f.ctl.Phase())
	}
	if _, ok := f.shader.Float(TimeUniform); ok {
		t.Error("time uniform should not be written before the first step")
	}
}

func TestPhaseAdvancesPerStep(t *testing.T) {
	f := newFixture(t, 0.1, 0.2, 0.3, 10, 10.5)
	for i := 1; i <= 5; i++ {
		f.ctl.Step()
		want := float64(i) * 0.05
		if !near(float64(f.ctl.Phase()), want) {
			t.Errorf("step %d: expected phase %v, got %v", i, want, f.ctl.Phase())
		}
		if got, _ := f.shader.Float(TimeUniform); got != f.ctl.Phase() {
			t.Errorf("step %d: time uniform %v, phase %v", i, got, f.ctl.Phase())
		}
	}
	if f.controls.updates != 5 || f.pipeline.renders != 5 {
		t.Errorf("expected 5 control updates and renders, got %d and %d", f.controls.updates, f.pipeline.renders)
	}
}

func TestDeltaFromClock(t *testing.T) {
	f := newFixture(t, 0.5, 0.75, 1.75)
	want := []float64{0.5, 0.25, 1.0}
	for i, w := range want {
		f.ctl.Step()
		if !near(f.ctl.Delta(), w) {
			t.Errorf("step %d: expected delta %v, got %v", i, w, f.ctl.Delta())
		}
	}
	if f.ctl.Elapsed() != 1.75 {
		t.Errorf("expected elapsed 1.75, got %v", f.ctl.Elapsed())
	}
}

func TestStepWithoutAnimator(t *testing.T) {
	f := newFixture(t, 0.1, 0.2)
	f.ctl.Step()
	f.ctl.Step()
	if f.ctl.Animator() != nil {
		t.Error("no animator expected before an asset arrives")
	}
}

func TestAnimatorInstalledFromAsset(t *testing.T) {
	f := newFixture(t, 0.1, 0.3, 0.6, 1.0)
	assets := make(chan Asset, 1)
	f.ctl.Await(assets)

	// Nothing pending yet: the step must not block.
	f.ctl.Step()

	anim := &fakeAnimator{}
	root := scene.NewNode("model")
	assets <- Asset{Name: "model", Root: root, Animator: anim}

	f.ctl.Step()
	f.ctl.Step()
	f.ctl.Step()

	if f.ctl.Animator() != anim {
		t.Fatal("expected the asset's animator to be installed")
	}
	want := []float32{0.2, 0.3, 0.4}
	if len(anim.deltas) != len(want) {
		t.Fatalf("expected %d animator updates, got %d", len(want), len(anim.deltas))
	}
	for i := range want {
		if !near(float64(anim.deltas[i]), float64(want[i])) {
			t.Errorf("update %d: expected dt %v, got %v", i, want[i], anim.deltas[i])
		}
	}
	if len(f.graph.added) != 1 || f.graph.added[0] != root {
		t.Errorf("expected the model root added once, got %v", f.graph.added)
	}
}

func TestFailedAssetLeavesAnimatorAbsent(t *testing.T) {
	f := newFixture(t, 0.1, 0.2, 0.3)
	assets := make(chan Asset, 1)
	assets <- Asset{Name: "broken", Err: errors.New("boom")}
	f.ctl.Await(assets)

	f.ctl.Step()
	f.ctl.Step()
	f.ctl.Step()

	if f.ctl.Animator() != nil {
		t.Error("failed load must not install an animator")
	}
	if len(f.graph.added) != 0 {
		t.Errorf("failed load must not add nodes, got %v", f.graph.added)
	}
	if f.ctl.Phase() == 0 {
		t.Error("the loop should keep running after a failed load")
	}
}

func TestAssetWithoutClips(t *testing.T) {
	f := newFixture(t, 0.1)
	assets := make(chan Asset, 1)
	assets <- Asset{Name: "static", Root: scene.NewNode("static")}
	f.ctl.Await(assets)
	f.ctl.Step()

	if f.ctl.Animator() != nil {
		t.Error("a model without clips has no animator")
	}
	if len(f.graph.added) != 1 {
		t.Errorf("expected the root to be added, got %v", f.graph.added)
	}
}

func TestRenderErrorDoesNotStopLoop(t *testing.T) {
	f := newFixture(t, 0.1, 0.2)
	f.pipeline.err = errors.New("lost context")
	f.ctl.Step()
	f.ctl.Step()
	if f.pipeline.renders != 2 {
		t.Errorf("expected 2 render attempts, got %d", f.pipeline.renders)
	}
}

func TestPointerCenterHitsFloorNearPoint(t *testing.T) {
	f := newFixture(t)
	if !f.ctl.OnPointerMove(400, 300, 800, 600) {
		t.Fatal("expected the center of the view to hit the floor")
	}

	// Analytic entry point of the view ray into the radius 5 sphere.
	o := f.camera.Position
	d := math.NewVec3(0, 0.75, 0).Sub(o).Normalize()
	b := o.Dot(d)
	c := o.Dot(o) - 25
	tEntry := -b - float32(stdmath.Sqrt(float64(b*b-c)))
	want := o.Add(d.Mul(tEntry))

	if got := f.light.Transform.Position; !got.Approx(want, 0.05) {
		t.Errorf("light: expected about %v, got %v", want, got)
	}
}

func TestPointerMissKeepsLight(t *testing.T) {
	f := newFixture(t)
	start := math.NewVec3(1, 2, 3)
	f.light.SetPosition(start)
	f.floor.SetPosition(math.NewVec3(100, 0, 0))

	if f.ctl.OnPointerMove(400, 300, 800, 600) {
		t.Error("expected a miss")
	}
	if f.light.Transform.Position != start {
		t.Errorf("light moved on a miss: %v", f.light.Transform.Position)
	}
}

func TestPointerInsideFloorKeepsLight(t *testing.T) {
	f := newFixture(t)
	// Two scroll steps in from the default position end up inside the floor.
	f.camera.SetPosition(math.NewVec3(0, 1.878, 4.5125))
	f.camera.LookAt(math.NewVec3(0, 0.75, 0), math.Vec3Up)
	start := math.NewVec3(1, 2, 3)
	f.light.SetPosition(start)

	if f.ctl.OnPointerMove(400, 300, 800, 600) {
		t.Error("the inside of the floor is not drawn and must not be hit")
	}
	if f.light.Transform.Position != start {
		t.Errorf("light moved: %v", f.light.Transform.Position)
	}
}

func TestPointerEmptyViewportIgnored(t *testing.T) {
	f := newFixture(t)
	start := math.NewVec3(1, 2, 3)
	f.light.SetPosition(start)
	if f.ctl.OnPointerMove(10, 10, 0, 0) {
		t.Error("zero-size viewport should be ignored")
	}
	if f.light.Transform.Position != start {
		t.Errorf("light moved: %v", f.light.Transform.Position)
	}
}

func TestOnResize(t *testing.T) {
	f := newFixture(t)
	f.ctl.OnResize(1000, 500)
	if f.camera.AspectRatio != 2 {
		t.Errorf("expected aspect 2, got %v", f.camera.AspectRatio)
	}
	if f.pipeline.w != 1000 || f.pipeline.h != 500 {
		t.Errorf("pipeline size: got %dx%d", f.pipeline.w, f.pipeline.h)
	}

	f.ctl.OnResize(0, 0)
	if f.camera.AspectRatio != 2 || f.pipeline.w != 1000 {
		t.Error("zero size must be ignored")
	}
}

func TestRunStepsUntilClose(t *testing.T) {
	f := newFixture(t, 0.1, 0.2, 0.3)
	host := &fakeHost{frames: 3}
	f.ctl.Run(host)
	if f.ctl.Frames() != 3 || host.polls != 3 {
		t.Errorf("expected 3 frames and polls, got %d and %d", f.ctl.Frames(), host.polls)
	}
}

func TestBuildAssetUsesFirstRoot(t *testing.T) {
	a, b := scene.NewNode("a"), scene.NewNode("b")
	result := &scene.GLTFResult{
		Roots:    []*scene.Node{a, b},
		Nodes:    []*scene.Node{a, b},
		Document: &gltf.Document{},
	}
	asset := BuildAsset("model.glb", result)
	if asset.Root != a {
		t.Errorf("expected root 0, got %v", asset.Root)
	}
	if asset.Animator != nil || asset.Mixer != nil {
		t.Error("a document without animations has no animator")
	}
	if b.Parent == nil || b.Parent != a.Parent {
		t.Error("all roots should share the holder node")
	}
}

func TestBuildAssetNoRoots(t *testing.T) {
	asset := BuildAsset("empty.glb", &scene.GLTFResult{Document: &gltf.Document{}})
	if asset.Root != nil {
		t.Errorf("expected no root, got %v", asset.Root)
	}
}

func TestLoadModelMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.glb")
	asset := <-LoadModel(path)
	if asset.Err == nil {
		t.Error("expected an error for a missing file")
	}
}
