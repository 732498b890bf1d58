package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// RenderTarget is an off-screen RGBA16F colour buffer with a depth texture.
type RenderTarget struct {
	FBO      uint32
	ColorTex uint32
	DepthTex uint32
	Width    int32
	Height   int32
}

// Pass is one fullscreen step of the post-processing chain. dst is nil when
// the pass draws to the default framebuffer.
type Pass interface {
	Enabled() bool
	Render(c *Composer, src, dst *RenderTarget)
	Resize(width, height int)
	Destroy()
}

// Composer renders the scene into an off-screen target and runs the pass
// chain over it, ping-ponging between two targets. The last enabled pass
// draws to the screen.
type Composer struct {
	targets [2]*RenderTarget
	read    int

	passes []Pass
	copy   *CopyPass

	quadVAO uint32 // empty VAO for the fullscreen triangle
}

// fullscreenVertSrc draws a fullscreen triangle via gl_VertexID (no VBO needed).
const fullscreenVertSrc = `
#version 410 core
out vec2 fragUV;
void main() {
    const vec2 pos[3] = vec2[3](
        vec2(-1.0, -1.0),
        vec2( 3.0, -1.0),
        vec2(-1.0,  3.0)
    );
    gl_Position = vec4(pos[gl_VertexID], 0.0, 1.0);
    fragUV      = pos[gl_VertexID] * 0.5 + 0.5;
}
` + "\x00"

const copyFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D tDiffuse;
uniform float     opacity;

void main() {
    vec4 texel = texture(tDiffuse, fragUV);
    outColor = vec4(texel.rgb, texel.a * opacity);
}
` + "\x00"

// NewComposer allocates both render targets at the given pixel size.
func NewComposer(width, height int) (*Composer, error) {
	cp, err := NewCopyPass()
	if err != nil {
		return nil, err
	}
	c := &Composer{copy: cp}
	gl.GenVertexArrays(1, &c.quadVAO)
	for i := range c.targets {
		c.targets[i] = allocTarget(width, height)
	}
	return c, nil
}

// AddPass appends p to the chain.
func (c *Composer) AddPass(p Pass) {
	c.passes = append(c.passes, p)
}

// Size returns the pixel size of the render targets.
func (c *Composer) Size() (int, int) {
	t := c.targets[0]
	return int(t.Width), int(t.Height)
}

// BeginScene binds the read target so the scene pass draws into it.
func (c *Composer) BeginScene() {
	t := c.targets[c.read]
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.FBO)
	gl.Viewport(0, 0, t.Width, t.Height)
}

// Render runs every enabled pass over the scene image, the last one into a
// screenW x screenH viewport of the default framebuffer. With no enabled
// passes the image is copied to the screen unchanged.
func (c *Composer) Render(screenW, screenH int) {
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.BindVertexArray(c.quadVAO)

	var active []Pass
	for _, p := range c.passes {
		if p.Enabled() {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		active = []Pass{c.copy}
	}

	for i, p := range active {
		src := c.targets[c.read]
		if i == len(active)-1 {
			gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
			gl.Viewport(0, 0, int32(screenW), int32(screenH))
			p.Render(c, src, nil)
			break
		}
		dst := c.targets[1-c.read]
		gl.BindFramebuffer(gl.FRAMEBUFFER, dst.FBO)
		gl.Viewport(0, 0, dst.Width, dst.Height)
		p.Render(c, src, dst)
		c.read = 1 - c.read
	}

	gl.BindVertexArray(0)
	gl.Enable(gl.DEPTH_TEST)
}

// DrawFullscreen issues the fullscreen triangle. The caller has bound its
// program and inputs.
func (c *Composer) DrawFullscreen() {
	gl.BindVertexArray(c.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
}

// Resize recreates both render targets at the new pixel dimensions.
func (c *Composer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	for i, t := range c.targets {
		freeTarget(t)
		c.targets[i] = allocTarget(width, height)
	}
	for _, p := range c.passes {
		p.Resize(width, height)
	}
}

// Destroy frees all GPU resources owned by the composer and its passes.
func (c *Composer) Destroy() {
	for _, p := range c.passes {
		p.Destroy()
	}
	c.passes = nil
	c.copy.Destroy()
	for _, t := range c.targets {
		freeTarget(t)
	}
	if c.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &c.quadVAO)
		c.quadVAO = 0
	}
}

func allocTarget(width, height int) *RenderTarget {
	t := &RenderTarget{Width: int32(width), Height: int32(height)}

	gl.GenTextures(1, &t.ColorTex)
	gl.BindTexture(gl.TEXTURE_2D, t.ColorTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F,
		int32(width), int32(height), 0, gl.RGBA, gl.HALF_FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenTextures(1, &t.DepthTex)
	gl.BindTexture(gl.TEXTURE_2D, t.DepthTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT32F,
		int32(width), int32(height), 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenFramebuffers(1, &t.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.FBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0,
		gl.TEXTURE_2D, t.ColorTex, 0)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT,
		gl.TEXTURE_2D, t.DepthTex, 0)
	if s := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); s != gl.FRAMEBUFFER_COMPLETE {
		fmt.Printf("WARNING: render target incomplete (0x%X)\n", s)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return t
}

func freeTarget(t *RenderTarget) {
	if t == nil {
		return
	}
	if t.FBO != 0 {
		gl.DeleteFramebuffers(1, &t.FBO)
		t.FBO = 0
	}
	if t.ColorTex != 0 {
		gl.DeleteTextures(1, &t.ColorTex)
		t.ColorTex = 0
	}
	if t.DepthTex != 0 {
		gl.DeleteTextures(1, &t.DepthTex)
		t.DepthTex = 0
	}
}

// CopyPass draws its input unchanged.
type CopyPass struct {
	Opacity float32

	prog       uint32
	texLoc     int32
	opacityLoc int32
}

func NewCopyPass() (*CopyPass, error) {
	prog, err := newProgram(fullscreenVertSrc, copyFragSrc)
	if err != nil {
		return nil, fmt.Errorf("copy pass shader: %w", err)
	}
	p := &CopyPass{
		Opacity:    1,
		prog:       prog,
		texLoc:     uniform(prog, "tDiffuse"),
		opacityLoc: uniform(prog, "opacity"),
	}
	gl.UseProgram(prog)
	gl.Uniform1i(p.texLoc, 0)
	return p, nil
}

func (p *CopyPass) Enabled() bool { return true }
func (p *CopyPass) Resize(width, height int) {}

func (p *CopyPass) Render(c *Composer, src, dst *RenderTarget) {
	gl.UseProgram(p.prog)
	gl.Uniform1f(p.opacityLoc, p.Opacity)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, src.ColorTex)
	c.DrawFullscreen()
}

func (p *CopyPass) Destroy() {
	if p.prog != 0 {
		gl.DeleteProgram(p.prog)
		p.prog = 0
	}
}
