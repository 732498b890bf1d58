package scene

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"glitch-scene/core"
	"glitch-scene/math"
)

// GLTFResult holds the scene graph loaded from a .glb / .gltf file.
// Textures are uploaded lazily by the renderer on first draw.
type GLTFResult struct {
	Roots    []*Node    // top-level nodes of the default scene
	Nodes    []*Node    // indexed like the document's nodes
	Skins    []*Skin    // indexed like the document's skins
	Textures []*Texture // textures referenced by materials

	// Document is kept for consumers that read more than geometry, such
	// as animation clips.
	Document *gltf.Document
}

var identityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// LoadGLTF opens a .glb or .gltf file and builds nodes, meshes, PBR
// materials, textures and skins. Node names are made unique so they can
// address animation targets.
func LoadGLTF(path string) (*GLTFResult, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	return buildGLTF(doc, filepath.Dir(path))
}

func buildGLTF(doc *gltf.Document, dir string) (*GLTFResult, error) {
	result := &GLTFResult{Document: doc}

	texCache := loadGLTFTextures(doc, dir)
	for _, tex := range texCache {
		if tex != nil {
			result.Textures = append(result.Textures, tex)
		}
	}
	matCache := loadGLTFMaterials(doc, texCache)

	// meshPrims[meshIdx] = one Mesh per primitive
	meshPrims := make([][]*Mesh, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			m, err := loadGLTFPrimitive(doc, gm.Name, pi, prim)
			if err != nil {
				fmt.Printf("gltf: mesh %d prim %d: %v\n", mi, pi, err)
				continue
			}
			if prim.Material != nil && *prim.Material < len(matCache) {
				m.Material = matCache[*prim.Material]
			}
			if m.Material != nil && m.Material.NormalTexture != nil {
				ComputeTangents(m)
			}
			meshPrims[mi] = append(meshPrims[mi], m)
		}
	}

	names := make(map[string]int)
	nodes := make([]*Node, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		name := uniqueName(names, gn.Name, i)
		n := NewNode(name)
		applyGLTFTransform(n, gn)

		if gn.Mesh != nil && *gn.Mesh < len(meshPrims) {
			prims := meshPrims[*gn.Mesh]
			switch len(prims) {
			case 0:
			case 1:
				n.Mesh = prims[0]
			default:
				for pi, p := range prims {
					child := NewMeshNode(uniqueName(names, fmt.Sprintf("%s_prim%d", name, pi), -1), p)
					n.AddChild(child)
				}
			}
		}
		nodes[i] = n
	}
	result.Nodes = nodes

	for i, gn := range doc.Nodes {
		for _, childIdx := range gn.Children {
			if childIdx < len(nodes) {
				nodes[i].AddChild(nodes[childIdx])
			}
		}
	}

	skins, err := loadGLTFSkins(doc, nodes)
	if err != nil {
		return nil, err
	}
	result.Skins = skins
	for i, gn := range doc.Nodes {
		if gn.Skin == nil || *gn.Skin >= len(skins) || gn.Mesh == nil || *gn.Mesh >= len(doc.Meshes) {
			continue
		}
		for pi, prim := range doc.Meshes[*gn.Mesh].Primitives {
			if pi >= len(meshPrims[*gn.Mesh]) {
				break
			}
			if err := bindGLTFSkin(doc, prim, meshPrims[*gn.Mesh][pi], skins[*gn.Skin]); err != nil {
				fmt.Printf("gltf: node %d skin: %v\n", i, err)
			}
		}
	}

	result.Roots = gltfRoots(doc, nodes)
	return result, nil
}

func uniqueName(used map[string]int, name string, index int) string {
	if name == "" {
		name = fmt.Sprintf("node_%d", index)
	}
	n := used[name]
	used[name] = n + 1
	if n == 0 {
		return name
	}
	return fmt.Sprintf("%s_%d", name, n)
}

func applyGLTFTransform(n *Node, gn *gltf.Node) {
	if m := gn.MatrixOrDefault(); m != identityMatrix {
		var g mgl32.Mat4
		for k, v := range m {
			g[k] = float32(v)
		}
		scale := math.Vec3{X: g.Col(0).Vec3().Len(), Y: g.Col(1).Vec3().Len(), Z: g.Col(2).Vec3().Len()}
		rot := g
		for c := 0; c < 3; c++ {
			s := [3]float32{scale.X, scale.Y, scale.Z}[c]
			if s != 0 {
				rot.SetCol(c, rot.Col(c).Mul(1/s))
			}
		}
		q := mgl32.Mat4ToQuat(rot).Normalize()
		n.SetPosition(math.Vec3{X: g[12], Y: g[13], Z: g[14]})
		n.SetRotation(math.Quaternion{X: q.V[0], Y: q.V[1], Z: q.V[2], W: q.W})
		n.SetScale(scale)
		return
	}

	t := gn.TranslationOrDefault()
	n.SetPosition(math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])})

	sc := gn.ScaleOrDefault()
	n.SetScale(math.Vec3{X: float32(sc[0]), Y: float32(sc[1]), Z: float32(sc[2])})

	r := gn.RotationOrDefault() // [x, y, z, w]
	n.SetRotation(math.Quaternion{
		X: float32(r[0]), Y: float32(r[1]),
		Z: float32(r[2]), W: float32(r[3]),
	})
}

func gltfRoots(doc *gltf.Document, nodes []*Node) []*Node {
	var roots []*Node
	sceneIdx := 0
	if doc.Scene != nil {
		sceneIdx = *doc.Scene
	}
	if sceneIdx < len(doc.Scenes) {
		for _, rootIdx := range doc.Scenes[sceneIdx].Nodes {
			if rootIdx < len(nodes) {
				roots = append(roots, nodes[rootIdx])
			}
		}
		return roots
	}
	// No scenes at all: every parentless node is a root.
	for _, n := range nodes {
		if n.Parent == nil {
			roots = append(roots, n)
		}
	}
	return roots
}

func loadGLTFTextures(doc *gltf.Document, dir string) []*Texture {
	texCache := make([]*Texture, len(doc.Textures))
	for i, gt := range doc.Textures {
		if gt.Source == nil || *gt.Source >= len(doc.Images) {
			continue
		}
		img := doc.Images[*gt.Source]
		name := img.Name
		if name == "" {
			name = fmt.Sprintf("gltf_img_%d", *gt.Source)
		}

		var raw []byte
		var err error
		switch {
		case img.BufferView != nil:
			raw, err = modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
		case img.IsEmbeddedResource():
			raw, err = img.MarshalData()
		case img.URI != "":
			texCache[i], err = LoadTexture(filepath.Join(dir, img.URI))
			if err != nil {
				fmt.Printf("gltf: image %d (%s): %v\n", *gt.Source, img.URI, err)
			}
			continue
		}
		if err != nil {
			fmt.Printf("gltf: image %d: %v\n", *gt.Source, err)
			continue
		}
		if raw == nil {
			continue
		}
		tex, err := DecodeTexture(name, bytes.NewReader(raw))
		if err != nil {
			fmt.Printf("gltf: image %d: %v\n", *gt.Source, err)
			continue
		}
		texCache[i] = tex
	}
	return texCache
}

func loadGLTFMaterials(doc *gltf.Document, texCache []*Texture) []*Material {
	texture := func(idx int) *Texture {
		if idx >= 0 && idx < len(texCache) {
			return texCache[idx]
		}
		return nil
	}

	matCache := make([]*Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		mat := NewPBRMaterial(gm.Name, core.ColorWhite, 1, 1)
		mat.DoubleSided = gm.DoubleSided

		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			cf := pbr.BaseColorFactorOrDefault()
			mat.Albedo = core.Color{
				R: float32(cf[0]), G: float32(cf[1]),
				B: float32(cf[2]), A: float32(cf[3]),
			}
			mat.Metallic = float32(pbr.MetallicFactorOrDefault())
			mat.Roughness = float32(pbr.RoughnessFactorOrDefault())
			if pbr.BaseColorTexture != nil {
				mat.AlbedoTexture = texture(pbr.BaseColorTexture.Index)
			}
			if pbr.MetallicRoughnessTexture != nil {
				mat.MetallicRoughnessTexture = texture(pbr.MetallicRoughnessTexture.Index)
			}
		}

		ef := gm.EmissiveFactor
		mat.EmissiveColor = core.Color{R: float32(ef[0]), G: float32(ef[1]), B: float32(ef[2]), A: 1}
		if gm.EmissiveTexture != nil {
			mat.EmissiveTexture = texture(gm.EmissiveTexture.Index)
		}
		if gm.NormalTexture != nil && gm.NormalTexture.Index != nil {
			mat.NormalTexture = texture(*gm.NormalTexture.Index)
		}
		matCache[i] = mat
	}
	return matCache
}

func loadGLTFSkins(doc *gltf.Document, nodes []*Node) ([]*Skin, error) {
	skins := make([]*Skin, len(doc.Skins))
	for i, gs := range doc.Skins {
		skin := &Skin{Name: gs.Name}
		for _, j := range gs.Joints {
			if j >= len(nodes) {
				return nil, fmt.Errorf("skin %d: joint %d out of range", i, j)
			}
			skin.Joints = append(skin.Joints, nodes[j])
		}
		if gs.InverseBindMatrices != nil {
			data, err := modeler.ReadAccessor(doc, doc.Accessors[*gs.InverseBindMatrices], nil)
			if err != nil {
				return nil, fmt.Errorf("skin %d inverse bind matrices: %w", i, err)
			}
			mats, ok := data.([][4][4]float32)
			if !ok {
				return nil, fmt.Errorf("skin %d: inverse bind matrices are %T", i, data)
			}
			for _, m := range mats {
				// glTF columns are Mat4 rows in the row-vector layout.
				skin.InverseBind = append(skin.InverseBind, math.Mat4(m))
			}
		}
		skins[i] = skin
	}
	return skins, nil
}

func bindGLTFSkin(doc *gltf.Document, prim *gltf.Primitive, m *Mesh, skin *Skin) error {
	jIdx, okJ := prim.Attributes["JOINTS_0"]
	wIdx, okW := prim.Attributes["WEIGHTS_0"]
	if !okJ || !okW {
		return nil
	}
	joints, err := modeler.ReadJoints(doc, doc.Accessors[jIdx], nil)
	if err != nil {
		return fmt.Errorf("joints: %w", err)
	}
	weights, err := modeler.ReadWeights(doc, doc.Accessors[wIdx], nil)
	if err != nil {
		return fmt.Errorf("weights: %w", err)
	}
	m.BindSkin(skin, joints, weights)
	return nil
}

// loadGLTFPrimitive converts one glTF mesh primitive into a scene.Mesh.
func loadGLTFPrimitive(doc *gltf.Document, meshName string, primIdx int, prim *gltf.Primitive) (*Mesh, error) {
	name := fmt.Sprintf("%s_p%d", meshName, primIdx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", primIdx)
	}

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32

	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: math.Vec3{X: p[0], Y: p[1], Z: p[2]},
			Normal:   math.Vec3Up,
			Color:    core.ColorWhite,
		}
		if i < len(normals) {
			n := normals[i]
			v.Normal = math.Vec3{X: n[0], Y: n[1], Z: n[2]}
		}
		if i < len(uvs) {
			v.UV = math.Vec2{X: uvs[i][0], Y: uvs[i][1]}
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}

	m := CreateMeshFromData(name, verts, indices)
	if prim.Mode == gltf.PrimitiveLines {
		m.DrawMode = DrawLines
	}
	return m, nil
}
