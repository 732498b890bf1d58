package main

import (
	"testing"

	"glitch-scene/io"
	"glitch-scene/math"
	"glitch-scene/scene"
)

func TestBuildWorld(t *testing.T) {
	cfg := io.NewDefaultSceneFile("test")
	w := buildWorld(cfg, 16.0/9.0)

	if w.scene.Camera != w.camera {
		t.Fatal("camera not attached to the scene")
	}
	if len(w.scene.Lights) != 1 || w.scene.Lights[0].Anchor != w.light {
		t.Fatalf("expected one point light riding on the ball, got %+v", w.scene.Lights)
	}
	if w.scene.Lights[0].Type != scene.LightTypePoint || w.scene.Lights[0].Intensity != 0.6 {
		t.Errorf("light: got %+v", w.scene.Lights[0])
	}
	if w.floor.Mesh.Material.Shader != w.floorShader {
		t.Error("floor should draw with the floor shader")
	}
	if v, ok := w.floorShader.Float("time"); !ok || v != 0 {
		t.Errorf("time uniform: got %v, %v", v, ok)
	}
	if !w.light.Mesh.Material.Unlit {
		t.Error("light ball should be unlit")
	}

	plane := w.scene.Root.Find("Plane")
	if plane == nil {
		t.Fatal("plane missing")
	}
	// Rotated flat: the plane's +Z normal now points up.
	up := plane.Transform.Rotation.RotateVector(math.Vec3Front)
	if !up.Approx(math.Vec3Up, 1e-5) {
		t.Errorf("plane normal: got %v", up)
	}
	if plane.Transform.Position.Y != 0.2 {
		t.Errorf("plane height: got %v", plane.Transform.Position.Y)
	}
}
