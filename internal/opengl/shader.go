package opengl

import (
	"fmt"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"glitch-scene/math"
	"glitch-scene/scene"
)

// litVertSrc: MVP + model transform, world-space position and normal to fragment.
const litVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inUV;
layout(location = 3) in vec4 inColor;
layout(location = 4) in vec3 inTangent;
layout(location = 5) in vec3 inBitangent;

uniform mat4 mvp;
uniform mat4 model;

out vec4 fragColor;
out vec3 fragNormal;
out vec2 fragUV;
out vec3 fragWorldPos;
out vec3 fragTangent;
out vec3 fragBitangent;

void main() {
    mat3 normalMat = mat3(model);
    vec4 worldPos  = model * vec4(inPosition, 1.0);

    gl_Position   = mvp * vec4(inPosition, 1.0);
    fragColor     = inColor;
    fragNormal    = normalMat * inNormal;
    fragUV        = inUV;
    fragWorldPos  = worldPos.xyz;
    fragTangent   = normalMat * inTangent;
    fragBitangent = normalMat * inBitangent;
}
` + "\x00"

// litFragSrc: Phong or PBR (Cook-Torrance) with one directional light and
// up to eight point lights.
const litFragSrc = `
#version 410 core
in vec4 fragColor;
in vec3 fragNormal;
in vec2 fragUV;
in vec3 fragWorldPos;
in vec3 fragTangent;
in vec3 fragBitangent;

out vec4 outColor;

uniform vec3  lightDir;
uniform vec3  lightColor;
uniform float lightIntensity;
uniform vec3  ambientColor;

#define MAX_POINT_LIGHTS 8
uniform int   pointLightCount;
uniform vec3  pointLightPos[MAX_POINT_LIGHTS];
uniform vec3  pointLightColor[MAX_POINT_LIGHTS];
uniform float pointLightIntensity[MAX_POINT_LIGHTS];
uniform float pointLightRange[MAX_POINT_LIGHTS];

uniform vec3 cameraPos;

uniform vec3  matAlbedo;
uniform vec3  matSpecular;
uniform float matShininess;

uniform bool  usePBR;
uniform float matMetallic;
uniform float matRoughness;
uniform vec3  matEmissive;

uniform sampler2D albedoTex;
uniform bool      hasTexture;
uniform sampler2D normalTex;
uniform bool      hasNormalTex;
// G = roughness, B = metallic
uniform sampler2D metallicRoughnessTex;
uniform bool      hasMetallicRoughnessTex;
uniform sampler2D emissiveTex;
uniform bool      hasEmissiveTex;

uniform bool unlit;

const float PI = 3.14159265359;

vec3 calcSpecular(vec3 N, vec3 L, vec3 V) {
    vec3 H = normalize(L + V);
    return matSpecular * pow(max(dot(N, H), 0.0), matShininess);
}

// A range of zero disables the distance cutoff.
float rangeAtten(float dist, float range) {
    if (range <= 0.0) return 1.0;
    float a = clamp(1.0 - (dist * dist) / (range * range), 0.0, 1.0);
    return a * a;
}

float DistributionGGX(vec3 N, vec3 H, float roughness) {
    float a  = roughness * roughness;
    float a2 = a * a;
    float NdH = max(dot(N, H), 0.0);
    float d   = NdH * NdH * (a2 - 1.0) + 1.0;
    return a2 / (PI * d * d);
}

float GeometrySchlickGGX(float cosTheta, float roughness) {
    float r = roughness + 1.0;
    float k = (r * r) / 8.0;
    return cosTheta / (cosTheta * (1.0 - k) + k);
}

float GeometrySmith(float NdV, float NdL, float roughness) {
    return GeometrySchlickGGX(NdV, roughness) * GeometrySchlickGGX(NdL, roughness);
}

vec3 FresnelSchlick(float cosTheta, vec3 F0) {
    return F0 + (1.0 - F0) * pow(clamp(1.0 - cosTheta, 0.0, 1.0), 5.0);
}

vec3 evalPBR(vec3 N, vec3 V, vec3 L, vec3 rad, vec3 albedo, float metallic, float roughness, vec3 F0) {
    float NdL = max(dot(N, L), 0.0);
    if (NdL <= 0.0) return vec3(0.0);

    vec3  H   = normalize(V + L);
    float NdV = max(dot(N, V), 0.0);

    float D = DistributionGGX(N, H, roughness);
    float G = GeometrySmith(NdV, NdL, roughness);
    vec3  F = FresnelSchlick(max(dot(H, V), 0.0), F0);

    vec3 kD       = (vec3(1.0) - F) * (1.0 - metallic);
    vec3 specular = D * G * F / max(4.0 * NdV * NdL, 0.001);

    return (kD * albedo / PI + specular) * rad * NdL;
}

void main() {
    vec3 N;
    if (hasNormalTex) {
        mat3 TBN = mat3(normalize(fragTangent), normalize(fragBitangent), normalize(fragNormal));
        N = normalize(TBN * (texture(normalTex, fragUV).rgb * 2.0 - 1.0));
    } else {
        N = normalize(fragNormal);
    }
    if (!gl_FrontFacing) {
        N = -N;
    }
    vec3 V = normalize(cameraPos - fragWorldPos);

    vec4 baseColor = fragColor * vec4(matAlbedo, 1.0);
    if (hasTexture) {
        baseColor *= texture(albedoTex, fragUV);
    }

    if (unlit) {
        outColor = baseColor;
        return;
    }

    vec3 emissive = matEmissive;
    if (hasEmissiveTex) {
        emissive *= texture(emissiveTex, fragUV).rgb;
    }

    if (usePBR) {
        float metallic  = clamp(matMetallic, 0.0, 1.0);
        float roughness = clamp(matRoughness, 0.04, 1.0);
        if (hasMetallicRoughnessTex) {
            vec4 mr = texture(metallicRoughnessTex, fragUV);
            roughness = clamp(mr.g * roughness, 0.04, 1.0);
            metallic  = mr.b * metallic;
        }

        vec3 albedo = baseColor.rgb;
        vec3 F0     = mix(vec3(0.04), albedo, metallic);
        vec3 color  = ambientColor * albedo * (1.0 - 0.5 * metallic);

        color += evalPBR(N, V, normalize(-lightDir), lightColor * lightIntensity, albedo, metallic, roughness, F0);

        for (int i = 0; i < pointLightCount && i < MAX_POINT_LIGHTS; i++) {
            vec3  toLight = pointLightPos[i] - fragWorldPos;
            float atten   = rangeAtten(length(toLight), pointLightRange[i]);
            vec3  rad     = pointLightColor[i] * pointLightIntensity[i] * atten;
            color += evalPBR(N, V, normalize(toLight), rad, albedo, metallic, roughness, F0);
        }

        outColor = vec4(color + emissive, baseColor.a);
        return;
    }

    vec3 color = ambientColor * baseColor.rgb;

    vec3 L_dir = normalize(-lightDir);
    float NdL  = max(dot(N, L_dir), 0.0);
    color += lightColor * lightIntensity * NdL * baseColor.rgb;
    if (NdL > 0.0) {
        color += lightColor * lightIntensity * calcSpecular(N, L_dir, V);
    }

    for (int i = 0; i < pointLightCount && i < MAX_POINT_LIGHTS; i++) {
        vec3  toLight = pointLightPos[i] - fragWorldPos;
        float atten   = rangeAtten(length(toLight), pointLightRange[i]);
        vec3  L_pt    = normalize(toLight);
        float NdL2    = max(dot(N, L_pt), 0.0);
        color += pointLightColor[i] * pointLightIntensity[i] * atten * NdL2 * baseColor.rgb;
        if (NdL2 > 0.0) {
            color += pointLightColor[i] * pointLightIntensity[i] * atten * calcSpecular(N, L_pt, V);
        }
    }

    outColor = vec4(color + emissive, baseColor.a);
}
` + "\x00"

// shaderProgram is the compiled form of a scene.ShaderMaterial.
type shaderProgram struct {
	prog     uint32
	mvpLoc   int32
	modelLoc int32
	floats   map[string]int32
}

// ensureShaderProgram compiles sm on first use. A material that failed to
// compile is remembered so the error is reported once.
func (r *Renderer) ensureShaderProgram(sm *scene.ShaderMaterial) (*shaderProgram, error) {
	if sp, ok := r.shaderProgs[sm]; ok {
		if sp == nil {
			return nil, fmt.Errorf("shader material %q unavailable", sm.Name)
		}
		return sp, nil
	}

	prog, err := newProgram(terminate(sm.VertexSource), terminate(sm.FragmentSource))
	if err != nil {
		fmt.Printf("shader material %q: %v\n", sm.Name, err)
		r.shaderProgs[sm] = nil
		return nil, err
	}
	sp := &shaderProgram{
		prog:     prog,
		mvpLoc:   uniform(prog, "mvp"),
		modelLoc: uniform(prog, "model"),
		floats:   make(map[string]int32),
	}
	r.shaderProgs[sm] = sp
	sm.GPUData = sp
	return sp, nil
}

func (sp *shaderProgram) apply(sm *scene.ShaderMaterial, mvp, model math.Mat4) {
	gl.UseProgram(sp.prog)
	gl.UniformMatrix4fv(sp.mvpLoc, 1, false, (*float32)(unsafe.Pointer(&mvp[0][0])))
	gl.UniformMatrix4fv(sp.modelLoc, 1, false, (*float32)(unsafe.Pointer(&model[0][0])))
	for _, name := range sm.FloatNames() {
		loc, ok := sp.floats[name]
		if !ok {
			loc = uniform(sp.prog, name)
			sp.floats[name] = loc
		}
		v, _ := sm.Float(name)
		gl.Uniform1f(loc, v)
	}
}

func (sp *shaderProgram) destroy() {
	if sp != nil && sp.prog != 0 {
		gl.DeleteProgram(sp.prog)
		sp.prog = 0
	}
}

// terminate appends the NUL terminator the GL bindings expect.
func terminate(src string) string {
	if strings.HasSuffix(src, "\x00") {
		return src
	}
	return src + "\x00"
}

func uniform(prog uint32, name string) int32 {
	return gl.GetUniformLocation(prog, gl.Str(name+"\x00"))
}

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link failed: %v", log)
	}

	gl.DeleteShader(vert)
	gl.DeleteShader(frag)
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %v", log)
	}
	return shader, nil
}
