package loop

import (
	stdmath "math"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"glitch-scene/math"
	"glitch-scene/scene"
)

// animatedResult is a one-node model whose first clip slides the node
// along X and turns it a quarter about Y at one second.
func animatedResult(moveValues any) *scene.GLTFResult {
	doc := gltf.NewDocument()
	doc.Nodes = []*gltf.Node{{Name: "bone"}}

	s := float32(stdmath.Sin(stdmath.Pi / 4))
	moveTimes := modeler.WriteAccessor(doc, gltf.TargetNone, []float32{0, 1, 2})
	move := modeler.WriteAccessor(doc, gltf.TargetNone, moveValues)
	turnTimes := modeler.WriteAccessor(doc, gltf.TargetNone, []float32{0, 1})
	turn := modeler.WriteAccessor(doc, gltf.TargetNone, [][4]float32{{0, 0, 0, 1}, {0, s, 0, s}})

	doc.Animations = []*gltf.Animation{{
		Name: "walk",
		Samplers: []*gltf.AnimationSampler{
			{Input: moveTimes, Output: move},
			{Input: turnTimes, Output: turn, Interpolation: gltf.InterpolationStep},
		},
		Channels: []*gltf.AnimationChannel{
			{Sampler: 0, Target: gltf.AnimationChannelTarget{Node: gltf.Index(0), Path: gltf.TRSTranslation}},
			{Sampler: 1, Target: gltf.AnimationChannelTarget{Node: gltf.Index(0), Path: gltf.TRSRotation}},
		},
	}}

	bone := scene.NewNode("bone")
	return &scene.GLTFResult{
		Roots:    []*scene.Node{bone},
		Nodes:    []*scene.Node{bone},
		Document: doc,
	}
}

func TestBuildAssetPlaysFirstClip(t *testing.T) {
	result := animatedResult([][3]float32{{0, 0, 0}, {2, 0, 0}, {4, 0, 0}})
	bone := result.Nodes[0]

	asset := BuildAsset("walker.glb", result)
	if asset.ClipErr != nil {
		t.Fatalf("unexpected clip error: %v", asset.ClipErr)
	}
	if asset.Root != bone || len(asset.Clips) != 1 || asset.Mixer == nil {
		t.Fatalf("asset: got root %v, %d clips, mixer %v", asset.Root, len(asset.Clips), asset.Mixer)
	}
	if asset.Animator == nil {
		t.Fatal("expected an animator for an animated model")
	}

	asset.Animator.Update(0.5)
	if !bone.Transform.Position.Approx(math.NewVec3(1, 0, 0), 1e-4) {
		t.Errorf("position at 0.5s: got %v", bone.Transform.Position)
	}
	if !bone.Transform.Rotation.RotateVector(math.Vec3Front).Approx(math.Vec3Front, 1e-4) {
		t.Errorf("rotation before the step should be identity, got %v", bone.Transform.Rotation)
	}

	asset.Animator.Update(1)
	if !bone.Transform.Position.Approx(math.NewVec3(3, 0, 0), 1e-4) {
		t.Errorf("position at 1.5s: got %v", bone.Transform.Position)
	}
	if got := bone.Transform.Rotation.RotateVector(math.Vec3Front); !got.Approx(math.Vec3Right, 1e-4) {
		t.Errorf("quarter turn about Y should take +Z to +X, got %v", got)
	}

	// Loop repeat: 2.5s wraps to 0.5s.
	asset.Animator.Update(1)
	if !bone.Transform.Position.Approx(math.NewVec3(1, 0, 0), 1e-4) {
		t.Errorf("position after wrap: got %v", bone.Transform.Position)
	}
}

func TestBuildAssetKeepsModelWhenClipsFail(t *testing.T) {
	result := animatedResult([][3]int16{{0, 0, 0}, {2, 0, 0}, {4, 0, 0}})

	asset := BuildAsset("quantized.glb", result)
	if asset.ClipErr == nil {
		t.Error("expected a clip error for quantized translations")
	}
	if asset.Root != result.Nodes[0] {
		t.Errorf("model root should be kept, got %v", asset.Root)
	}
	if asset.Animator != nil || asset.Mixer != nil {
		t.Error("no animator expected when clips cannot be read")
	}

	f := newFixture(t, 0.1, 0.2)
	assets := make(chan Asset, 1)
	assets <- asset
	f.ctl.Await(assets)
	f.ctl.Step()
	f.ctl.Step()
	if len(f.graph.added) != 1 || f.ctl.Animator() != nil {
		t.Errorf("static model expected in the scene, got %d nodes, animator %v", len(f.graph.added), f.ctl.Animator())
	}
}

func TestLoadModelFromFile(t *testing.T) {
	doc := animatedResult([][3]float32{{0, 0, 0}, {2, 0, 0}, {4, 0, 0}}).Document
	doc.Scenes[0].Nodes = []int{0}
	path := filepath.Join(t.TempDir(), "walker.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}

	asset := <-LoadModel(path)
	if asset.Err != nil {
		t.Fatalf("LoadModel: %v", asset.Err)
	}
	if asset.Name != "walker.glb" || asset.Root == nil || asset.Root.Name != "bone" {
		t.Fatalf("asset: got name %q root %v", asset.Name, asset.Root)
	}
	if asset.Animator == nil || len(asset.Clips) != 1 {
		t.Fatalf("expected clip 0 to be playing, got %d clips", len(asset.Clips))
	}
	asset.Animator.Update(0.5)
	if !asset.Root.Transform.Position.Approx(math.NewVec3(1, 0, 0), 1e-4) {
		t.Errorf("position at 0.5s: got %v", asset.Root.Transform.Position)
	}
}
