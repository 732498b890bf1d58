package scene

import (
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"glitch-scene/math"
)

func writeTriangleGLB(t *testing.T) string {
	t.Helper()
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Attributes: gltf.PrimitiveAttributes{gltf.POSITION: pos},
			Indices:    gltf.Index(idx),
		}},
	}}
	doc.Nodes = []*gltf.Node{
		{Name: "body", Children: []int{1}, Translation: [3]float64{0, 1, 0}},
		{Name: "body", Mesh: gltf.Index(0)},
		{Name: ""},
	}
	doc.Scenes[0].Nodes = []int{0, 2}

	path := filepath.Join(t.TempDir(), "tri.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}
	return path
}

func TestLoadGLTF(t *testing.T) {
	result, err := LoadGLTF(writeTriangleGLB(t))
	if err != nil {
		t.Fatalf("LoadGLTF: %v", err)
	}
	if result.Document == nil || len(result.Nodes) != 3 {
		t.Fatalf("expected 3 nodes and the document, got %d", len(result.Nodes))
	}
	if len(result.Roots) != 2 || result.Roots[0] != result.Nodes[0] || result.Roots[1] != result.Nodes[2] {
		t.Fatalf("roots: got %v", result.Roots)
	}

	body, child, unnamed := result.Nodes[0], result.Nodes[1], result.Nodes[2]
	if body.Name != "body" || child.Name != "body_1" || unnamed.Name != "node_2" {
		t.Errorf("names should be unique: got %q, %q, %q", body.Name, child.Name, unnamed.Name)
	}
	if child.Parent != body {
		t.Error("child should be parented to body")
	}
	if body.Transform.Position != math.NewVec3(0, 1, 0) || body.Transform.Scale != math.Vec3One {
		t.Errorf("body transform: got %+v", body.Transform)
	}

	if child.Mesh == nil {
		t.Fatal("child mesh missing")
	}
	if len(child.Mesh.Vertices) != 3 || child.Mesh.TriangleCount() != 1 {
		t.Errorf("mesh: got %d vertices, %d triangles", len(child.Mesh.Vertices), child.Mesh.TriangleCount())
	}
	if !child.WorldPosition().Approx(math.NewVec3(0, 1, 0), 1e-6) {
		t.Errorf("child world position: got %v", child.WorldPosition())
	}
}

func TestLoadGLTFMissing(t *testing.T) {
	if _, err := LoadGLTF(filepath.Join(t.TempDir(), "none.glb")); err == nil {
		t.Error("expected an error")
	}
}
