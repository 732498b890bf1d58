package scene

import (
	"sort"

	"glitch-scene/core"
)

// Material describes surface appearance properties for a mesh.
// Supports both Phong shading and PBR (Cook-Torrance BRDF).
// Set UsePBR = true to use physically-based rendering, or Shader to draw
// with a custom program instead of the built-in one.
type Material struct {
	Name      string
	Albedo    core.Color // base diffuse color (multiplied with albedo texture if set)
	Specular  core.Color // Phong specular highlight color (ignored when UsePBR = true)
	Shininess float32    // Phong shininess exponent (ignored when UsePBR = true)
	Unlit     bool       // output raw albedo/texture color

	UsePBR        bool
	Metallic      float32 // 0 = dielectric, 1 = fully metallic
	Roughness     float32 // 0 = perfectly smooth, 1 = fully rough
	EmissiveColor core.Color

	DoubleSided bool

	// Optional albedo texture; if set, it is multiplied with Albedo.
	AlbedoTexture *Texture

	// Optional tangent-space normal map.
	NormalTexture *Texture

	// Optional glTF metallic-roughness texture: G = roughness, B = metallic.
	MetallicRoughnessTexture *Texture

	// Optional emissive texture; multiplied with EmissiveColor.
	EmissiveTexture *Texture

	Shader *ShaderMaterial
}

// DefaultMaterial returns a plain white matte Phong material.
func DefaultMaterial() *Material {
	return &Material{
		Name:      "Default",
		Albedo:    core.ColorWhite,
		Specular:  core.Color{R: 0.3, G: 0.3, B: 0.3, A: 1},
		Shininess: 32,
		Roughness: 0.5,
	}
}

// NewUnlitMaterial ignores lighting and draws color as-is.
func NewUnlitMaterial(name string, color core.Color) *Material {
	return &Material{
		Name:   name,
		Albedo: color,
		Unlit:  true,
	}
}

// NewPBRMaterial creates a PBR material with the given albedo, metallic, and roughness.
func NewPBRMaterial(name string, albedo core.Color, metallic, roughness float32) *Material {
	return &Material{
		Name:      name,
		Albedo:    albedo,
		Metallic:  metallic,
		Roughness: roughness,
		UsePBR:    true,
	}
}

// NewShaderMaterialWith wraps a custom program in a Material.
func NewShaderMaterialWith(shader *ShaderMaterial) *Material {
	return &Material{
		Name:   shader.Name,
		Albedo: core.ColorWhite,
		Shader: shader,
	}
}

// ShaderMaterial is a user-supplied GLSL program. The backend binds the
// standard mvp and model matrices and every float uniform set here.
type ShaderMaterial struct {
	Name           string
	VertexSource   string
	FragmentSource string

	floats map[string]float32

	// GPUData is owned by the renderer backend.
	GPUData interface{}
}

func NewShaderMaterial(name, vertexSource, fragmentSource string) *ShaderMaterial {
	return &ShaderMaterial{
		Name:           name,
		VertexSource:   vertexSource,
		FragmentSource: fragmentSource,
		floats:         make(map[string]float32),
	}
}

func (m *ShaderMaterial) SetFloat(name string, value float32) {
	m.floats[name] = value
}

func (m *ShaderMaterial) Float(name string) (float32, bool) {
	v, ok := m.floats[name]
	return v, ok
}

// FloatNames lists the float uniforms in a stable order.
func (m *ShaderMaterial) FloatNames() []string {
	names := make([]string, 0, len(m.floats))
	for name := range m.floats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
