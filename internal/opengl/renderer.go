package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"glitch-scene/core"
	"glitch-scene/math"
	"glitch-scene/scene"
)

// MaxPointLights is the number of point lights the lit program evaluates.
const MaxPointLights = 8

// GPUMesh holds the OpenGL buffer objects for an uploaded mesh.
type GPUMesh struct {
	VAO         uint32
	VBO         uint32
	EBO         uint32
	IndexCount  int32
	HasIndices  bool
	VertexCount int
}

// Renderer is the OpenGL rendering backend.
type Renderer struct {
	program uint32

	// Vertex transform uniforms
	mvpLoc   int32
	modelLoc int32

	// Lighting uniforms — directional
	lightDirLoc       int32
	lightColorLoc     int32
	lightIntensityLoc int32
	ambientColorLoc   int32

	// Lighting uniforms — point lights
	pointLightCountLoc     int32
	pointLightPosLoc       [MaxPointLights]int32
	pointLightColorLoc     [MaxPointLights]int32
	pointLightIntensityLoc [MaxPointLights]int32
	pointLightRangeLoc     [MaxPointLights]int32

	cameraPosLoc int32

	// Material uniforms — Phong
	matAlbedoLoc    int32
	matSpecularLoc  int32
	matShininessLoc int32

	// Material uniforms — PBR
	usePBRLoc       int32
	matMetallicLoc  int32
	matRoughnessLoc int32
	matEmissiveLoc  int32

	albedoTexLoc               int32
	hasTextureLoc              int32
	normalTexLoc               int32
	hasNormalTexLoc            int32
	metallicRoughnessTexLoc    int32
	hasMetallicRoughnessTexLoc int32
	emissiveTexLoc             int32
	hasEmissiveTexLoc          int32

	unlitLoc int32

	viewportW int32
	viewportH int32

	gpuMeshes   map[*scene.Mesh]*GPUMesh
	shaderProgs map[*scene.ShaderMaterial]*shaderProgram
	textures    map[*scene.Texture]struct{}
}

// NewRenderer initialises OpenGL.
// Must be called after the GLFW window context is made current.
func NewRenderer() (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	fmt.Printf("OpenGL version: %s\n", version)

	prog, err := newProgram(litVertSrc, litFragSrc)
	if err != nil {
		return nil, fmt.Errorf("main shader compile: %w", err)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.FrontFace(gl.CCW)
	gl.CullFace(gl.BACK)

	r := &Renderer{
		program: prog,

		mvpLoc:   uniform(prog, "mvp"),
		modelLoc: uniform(prog, "model"),

		lightDirLoc:       uniform(prog, "lightDir"),
		lightColorLoc:     uniform(prog, "lightColor"),
		lightIntensityLoc: uniform(prog, "lightIntensity"),
		ambientColorLoc:   uniform(prog, "ambientColor"),

		pointLightCountLoc: uniform(prog, "pointLightCount"),
		cameraPosLoc:       uniform(prog, "cameraPos"),

		matAlbedoLoc:    uniform(prog, "matAlbedo"),
		matSpecularLoc:  uniform(prog, "matSpecular"),
		matShininessLoc: uniform(prog, "matShininess"),

		usePBRLoc:       uniform(prog, "usePBR"),
		matMetallicLoc:  uniform(prog, "matMetallic"),
		matRoughnessLoc: uniform(prog, "matRoughness"),
		matEmissiveLoc:  uniform(prog, "matEmissive"),

		albedoTexLoc:               uniform(prog, "albedoTex"),
		hasTextureLoc:              uniform(prog, "hasTexture"),
		normalTexLoc:               uniform(prog, "normalTex"),
		hasNormalTexLoc:            uniform(prog, "hasNormalTex"),
		metallicRoughnessTexLoc:    uniform(prog, "metallicRoughnessTex"),
		hasMetallicRoughnessTexLoc: uniform(prog, "hasMetallicRoughnessTex"),
		emissiveTexLoc:             uniform(prog, "emissiveTex"),
		hasEmissiveTexLoc:          uniform(prog, "hasEmissiveTex"),

		unlitLoc: uniform(prog, "unlit"),

		gpuMeshes:   make(map[*scene.Mesh]*GPUMesh),
		shaderProgs: make(map[*scene.ShaderMaterial]*shaderProgram),
		textures:    make(map[*scene.Texture]struct{}),
	}

	for i := 0; i < MaxPointLights; i++ {
		r.pointLightPosLoc[i] = uniform(prog, fmt.Sprintf("pointLightPos[%d]", i))
		r.pointLightColorLoc[i] = uniform(prog, fmt.Sprintf("pointLightColor[%d]", i))
		r.pointLightIntensityLoc[i] = uniform(prog, fmt.Sprintf("pointLightIntensity[%d]", i))
		r.pointLightRangeLoc[i] = uniform(prog, fmt.Sprintf("pointLightRange[%d]", i))
	}

	// Texture units: albedo=0, normalMap=1, metallicRoughness=2, emissive=3
	gl.UseProgram(prog)
	gl.Uniform1i(r.albedoTexLoc, 0)
	gl.Uniform1i(r.normalTexLoc, 1)
	gl.Uniform1i(r.metallicRoughnessTexLoc, 2)
	gl.Uniform1i(r.emissiveTexLoc, 3)

	return r, nil
}

// SetViewport stores the drawable size used for the default framebuffer.
func (r *Renderer) SetViewport(width, height int) {
	r.viewportW = int32(width)
	r.viewportH = int32(height)
	gl.Viewport(0, 0, int32(width), int32(height))
}

// BindScreen targets the default framebuffer at the stored viewport.
func (r *Renderer) BindScreen() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, r.viewportW, r.viewportH)
}

// Viewport returns the size last passed to SetViewport.
func (r *Renderer) Viewport() (int, int) {
	return int(r.viewportW), int(r.viewportH)
}

// BeginFrame clears the currently bound framebuffer and sets per-frame
// lighting and camera uniforms on the lit program.
func (r *Renderer) BeginFrame(clear core.Color, lights []*scene.Light, ambient core.Color, camPos math.Vec3) {
	gl.Enable(gl.DEPTH_TEST)
	gl.ClearColor(clear.R, clear.G, clear.B, clear.A)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.UseProgram(r.program)
	gl.Uniform3f(r.ambientColorLoc, ambient.R, ambient.G, ambient.B)
	gl.Uniform3f(r.cameraPosLoc, camPos.X, camPos.Y, camPos.Z)

	// No directional light unless the scene has one.
	dirLight := math.Vec3{X: 0, Y: -1, Z: 0}
	dirColor := core.ColorWhite
	dirIntensity := float32(0)

	pointIdx := 0
	for _, l := range lights {
		if l == nil {
			continue
		}
		switch l.Type {
		case scene.LightTypeDirectional:
			dirLight = l.Direction.Normalize()
			dirColor = l.Color
			dirIntensity = l.Intensity
		case scene.LightTypePoint:
			if pointIdx < MaxPointLights {
				gl.Uniform3f(r.pointLightPosLoc[pointIdx], l.Position.X, l.Position.Y, l.Position.Z)
				gl.Uniform3f(r.pointLightColorLoc[pointIdx], l.Color.R, l.Color.G, l.Color.B)
				gl.Uniform1f(r.pointLightIntensityLoc[pointIdx], l.Intensity)
				gl.Uniform1f(r.pointLightRangeLoc[pointIdx], l.Range)
				pointIdx++
			}
		}
	}

	gl.Uniform3f(r.lightDirLoc, dirLight.X, dirLight.Y, dirLight.Z)
	gl.Uniform3f(r.lightColorLoc, dirColor.R, dirColor.G, dirColor.B)
	gl.Uniform1f(r.lightIntensityLoc, dirIntensity)
	gl.Uniform1i(r.pointLightCountLoc, int32(pointIdx))
}

// DrawMesh draws a mesh with the given MVP and model matrices. Meshes whose
// material carries a ShaderMaterial are drawn with that program instead of
// the lit one.
func (r *Renderer) DrawMesh(mesh *scene.Mesh, mvp, model math.Mat4) {
	gpu := r.ensureUploaded(mesh)
	if gpu == nil {
		return
	}

	mat := mesh.Material
	if mat == nil {
		mat = scene.DefaultMaterial()
	}

	if mat.DoubleSided {
		gl.Disable(gl.CULL_FACE)
	} else {
		gl.Enable(gl.CULL_FACE)
	}

	if mat.Shader != nil {
		sp, err := r.ensureShaderProgram(mat.Shader)
		if err != nil {
			return
		}
		sp.apply(mat.Shader, mvp, model)
	} else {
		gl.UseProgram(r.program)
		gl.UniformMatrix4fv(r.mvpLoc, 1, false, (*float32)(unsafe.Pointer(&mvp[0][0])))
		gl.UniformMatrix4fv(r.modelLoc, 1, false, (*float32)(unsafe.Pointer(&model[0][0])))
		r.applyMaterial(mat)
	}

	primitive := uint32(gl.TRIANGLES)
	if mesh.DrawMode == scene.DrawLines {
		primitive = gl.LINES
	}

	gl.BindVertexArray(gpu.VAO)
	if gpu.HasIndices {
		gl.DrawElements(primitive, gpu.IndexCount, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(primitive, 0, int32(gpu.VertexCount))
	}
	gl.BindVertexArray(0)
}

// applyMaterial sets all material-related shader uniforms and binds textures.
// Must be called while r.program is active.
func (r *Renderer) applyMaterial(mat *scene.Material) {
	gl.Uniform3f(r.matAlbedoLoc, mat.Albedo.R, mat.Albedo.G, mat.Albedo.B)
	gl.Uniform3f(r.matSpecularLoc, mat.Specular.R, mat.Specular.G, mat.Specular.B)
	gl.Uniform1f(r.matShininessLoc, mat.Shininess)

	gl.Uniform1i(r.usePBRLoc, boolInt(mat.UsePBR))
	gl.Uniform1f(r.matMetallicLoc, mat.Metallic)
	gl.Uniform1f(r.matRoughnessLoc, mat.Roughness)
	gl.Uniform3f(r.matEmissiveLoc, mat.EmissiveColor.R, mat.EmissiveColor.G, mat.EmissiveColor.B)

	gl.Uniform1i(r.unlitLoc, boolInt(mat.Unlit))

	r.bindTexture(mat.AlbedoTexture, gl.TEXTURE0, r.hasTextureLoc)
	r.bindTexture(mat.NormalTexture, gl.TEXTURE1, r.hasNormalTexLoc)
	r.bindTexture(mat.MetallicRoughnessTexture, gl.TEXTURE2, r.hasMetallicRoughnessTexLoc)
	r.bindTexture(mat.EmissiveTexture, gl.TEXTURE3, r.hasEmissiveTexLoc)
}

// bindTexture uploads tex on first use. Textures decoded on a loader
// goroutine reach the GPU here, on the thread that owns the context.
func (r *Renderer) bindTexture(tex *scene.Texture, unit uint32, hasLoc int32) {
	if tex != nil && tex.GLID == 0 && len(tex.Pixels) > 0 {
		if err := UploadTexture(tex); err != nil {
			fmt.Printf("texture %q: %v\n", tex.Name, err)
		} else {
			r.textures[tex] = struct{}{}
		}
	}
	if tex == nil || tex.GLID == 0 {
		gl.Uniform1i(hasLoc, 0)
		return
	}
	gl.ActiveTexture(unit)
	gl.BindTexture(gl.TEXTURE_2D, tex.GLID)
	gl.Uniform1i(hasLoc, 1)
}

// ReleaseMesh frees GPU buffers for the given mesh.
func (r *Renderer) ReleaseMesh(mesh *scene.Mesh) {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		gl.DeleteVertexArrays(1, &gpu.VAO)
		gl.DeleteBuffers(1, &gpu.VBO)
		if gpu.HasIndices {
			gl.DeleteBuffers(1, &gpu.EBO)
		}
		delete(r.gpuMeshes, mesh)
		mesh.GPUData = nil
	}
}

// Destroy releases all GPU resources.
func (r *Renderer) Destroy() {
	for mesh := range r.gpuMeshes {
		r.ReleaseMesh(mesh)
	}
	for sm, sp := range r.shaderProgs {
		sp.destroy()
		sm.GPUData = nil
	}
	for tex := range r.textures {
		DeleteTexture(tex)
	}
	gl.DeleteProgram(r.program)
}

// ensureUploaded uploads vertex/index data if not already done. A mesh
// flagged Dirty (re-skinned on the CPU) has its vertex buffer refreshed.
func (r *Renderer) ensureUploaded(mesh *scene.Mesh) *GPUMesh {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		if !mesh.Dirty {
			return gpu
		}
		if len(mesh.Vertices) == gpu.VertexCount {
			r.refreshVertices(gpu, mesh)
			return gpu
		}
		// Vertex count changed; rebuild everything.
		r.ReleaseMesh(mesh)
	}
	if len(mesh.Vertices) == 0 {
		return nil
	}

	stride := int32(unsafe.Sizeof(core.Vertex{}))

	gpu := &GPUMesh{
		IndexCount:  int32(len(mesh.Indices)),
		HasIndices:  len(mesh.Indices) > 0,
		VertexCount: len(mesh.Vertices),
	}

	usage := uint32(gl.STATIC_DRAW)
	if mesh.Skin != nil {
		usage = gl.DYNAMIC_DRAW
	}

	gl.GenVertexArrays(1, &gpu.VAO)
	gl.GenBuffers(1, &gpu.VBO)
	gl.BindVertexArray(gpu.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferData(gl.ARRAY_BUFFER,
		len(mesh.Vertices)*int(stride),
		gl.Ptr(mesh.Vertices),
		usage)

	var v core.Vertex
	posOff := int(unsafe.Offsetof(v.Position))
	normOff := int(unsafe.Offsetof(v.Normal))
	uvOff := int(unsafe.Offsetof(v.UV))
	colorOff := int(unsafe.Offsetof(v.Color))
	tangentOff := int(unsafe.Offsetof(v.Tangent))
	bitangentOff := int(unsafe.Offsetof(v.Bitangent))

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(posOff))

	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(normOff))

	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, gl.PtrOffset(uvOff))

	gl.EnableVertexAttribArray(3)
	gl.VertexAttribPointer(3, 4, gl.FLOAT, false, stride, gl.PtrOffset(colorOff))

	gl.EnableVertexAttribArray(4)
	gl.VertexAttribPointer(4, 3, gl.FLOAT, false, stride, gl.PtrOffset(tangentOff))

	gl.EnableVertexAttribArray(5)
	gl.VertexAttribPointer(5, 3, gl.FLOAT, false, stride, gl.PtrOffset(bitangentOff))

	if gpu.HasIndices {
		gl.GenBuffers(1, &gpu.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER,
			len(mesh.Indices)*4,
			gl.Ptr(mesh.Indices),
			gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)

	r.gpuMeshes[mesh] = gpu
	mesh.GPUData = gpu
	mesh.Dirty = false
	return gpu
}

func (r *Renderer) refreshVertices(gpu *GPUMesh, mesh *scene.Mesh) {
	mesh.Dirty = false
	stride := int(unsafe.Sizeof(core.Vertex{}))
	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(mesh.Vertices)*stride, gl.Ptr(mesh.Vertices))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
