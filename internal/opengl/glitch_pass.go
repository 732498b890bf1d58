package opengl

import (
	"fmt"
	"math/rand"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"glitch-scene/postfx"
)

// HeightmapSize is the edge length of the displacement texture.
const HeightmapSize = 64

const glitchFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform int       byp;
uniform sampler2D tDiffuse;
uniform sampler2D tDisp;
uniform float     amount;
uniform float     angle;
uniform float     seed;
uniform float     seed_x;
uniform float     seed_y;
uniform float     distortion_x;
uniform float     distortion_y;
uniform float     col_s;

float rand(vec2 co) {
    return fract(sin(dot(co.xy, vec2(12.9898, 78.233))) * 43758.5453);
}

void main() {
    if (byp >= 1) {
        outColor = texture(tDiffuse, fragUV);
        return;
    }

    vec2  p  = fragUV;
    float xs = floor(gl_FragCoord.x / 0.5);
    float ys = floor(gl_FragCoord.y / 0.5);
    vec4 normal = texture(tDisp, p * seed * seed);

    // Horizontal and vertical tearing bands.
    if (p.y < distortion_x + col_s && p.y > distortion_x - col_s * seed) {
        if (seed_x > 0.0) {
            p.y = 1.0 - (p.y + distortion_y);
        } else {
            p.y = distortion_y;
        }
    }
    if (p.x < distortion_y + col_s && p.x > distortion_y - col_s * seed) {
        if (seed_y > 0.0) {
            p.x = distortion_x;
        } else {
            p.x = 1.0 - (p.x + distortion_x);
        }
    }
    p.x += normal.x * seed_x * (seed / 5.0);
    p.y += normal.y * seed_y * (seed / 5.0);

    // RGB split along angle.
    vec2 offset = amount * vec2(cos(angle), sin(angle));
    vec4 cr  = texture(tDiffuse, p + offset);
    vec4 cga = texture(tDiffuse, p);
    vec4 cb  = texture(tDiffuse, p - offset);
    outColor = vec4(cr.r, cga.g, cb.b, cga.a);

    vec4 snow = 200.0 * amount * vec4(rand(vec2(xs * seed, ys * seed * 50.0)) * 0.2);
    outColor += snow;
}
` + "\x00"

// GlitchPass draws the digital-glitch effect. The burst schedule lives in
// postfx.Glitch; this type only feeds its parameters to the shader.
type GlitchPass struct {
	Schedule *postfx.Glitch

	prog    uint32
	dispTex uint32
	enabled bool

	bypLoc, amountLoc, angleLoc, seedLoc   int32
	seedXLoc, seedYLoc, distXLoc, distYLoc int32
	colSLoc, diffuseLoc, dispLoc           int32
}

// NewGlitchPass compiles the glitch program and uploads a fresh
// displacement heightmap drawn from rng.
func NewGlitchPass(rng *rand.Rand) (*GlitchPass, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	prog, err := newProgram(fullscreenVertSrc, glitchFragSrc)
	if err != nil {
		return nil, fmt.Errorf("glitch pass shader: %w", err)
	}
	disp, err := UploadHeightmap(postfx.Heightmap(rng, HeightmapSize), HeightmapSize)
	if err != nil {
		gl.DeleteProgram(prog)
		return nil, fmt.Errorf("glitch heightmap: %w", err)
	}

	p := &GlitchPass{
		Schedule: postfx.NewGlitch(rng),
		prog:     prog,
		dispTex:  disp,
		enabled:  true,

		bypLoc:     uniform(prog, "byp"),
		amountLoc:  uniform(prog, "amount"),
		angleLoc:   uniform(prog, "angle"),
		seedLoc:    uniform(prog, "seed"),
		seedXLoc:   uniform(prog, "seed_x"),
		seedYLoc:   uniform(prog, "seed_y"),
		distXLoc:   uniform(prog, "distortion_x"),
		distYLoc:   uniform(prog, "distortion_y"),
		colSLoc:    uniform(prog, "col_s"),
		diffuseLoc: uniform(prog, "tDiffuse"),
		dispLoc:    uniform(prog, "tDisp"),
	}
	gl.UseProgram(prog)
	gl.Uniform1i(p.diffuseLoc, 0)
	gl.Uniform1i(p.dispLoc, 1)
	return p, nil
}

func (p *GlitchPass) Enabled() bool { return p.enabled }

func (p *GlitchPass) SetEnabled(on bool) { p.enabled = on }

func (p *GlitchPass) Resize(width, height int) {}

// Render advances the schedule by one frame.
func (p *GlitchPass) Render(c *Composer, src, dst *RenderTarget) {
	params := p.Schedule.Next()

	gl.UseProgram(p.prog)
	gl.Uniform1i(p.bypLoc, boolInt(params.Bypass))
	gl.Uniform1f(p.seedLoc, params.Seed)
	gl.Uniform1f(p.amountLoc, params.Amount)
	gl.Uniform1f(p.angleLoc, params.Angle)
	gl.Uniform1f(p.seedXLoc, params.SeedX)
	gl.Uniform1f(p.seedYLoc, params.SeedY)
	gl.Uniform1f(p.distXLoc, params.DistortionX)
	gl.Uniform1f(p.distYLoc, params.DistortionY)
	gl.Uniform1f(p.colSLoc, params.ColS)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, src.ColorTex)
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, p.dispTex)
	c.DrawFullscreen()
	gl.ActiveTexture(gl.TEXTURE0)
}

func (p *GlitchPass) Destroy() {
	if p.dispTex != 0 {
		gl.DeleteTextures(1, &p.dispTex)
		p.dispTex = 0
	}
	if p.prog != 0 {
		gl.DeleteProgram(p.prog)
		p.prog = 0
	}
}
