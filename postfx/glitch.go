// Package postfx holds the CPU side of full-screen effects: per-frame
// parameters and generated lookup data, independent of the GPU backend.
package postfx

import (
	"math"
	"math/rand"
)

// GlitchParams are the shader inputs for one frame of the glitch effect.
type GlitchParams struct {
	Bypass      bool
	Seed        float32
	Amount      float32
	Angle       float32
	SeedX       float32
	SeedY       float32
	DistortionX float32
	DistortionY float32
	ColS        float32
}

// Glitch schedules digital-glitch bursts. Most frames pass through; every
// randX frames a strong burst fires, followed by randX/5 frames of mild
// distortion.
type Glitch struct {
	// GoWild makes every frame a strong burst.
	GoWild bool

	rng    *rand.Rand
	curF   int
	randX  int
	params GlitchParams
}

// NewGlitch seeds the schedule from rng; a nil rng uses a time seed.
func NewGlitch(rng *rand.Rand) *Glitch {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	g := &Glitch{rng: rng}
	g.params.ColS = 0.05
	g.generateTrigger()
	return g
}

// Next advances one frame and returns the parameters to draw it with.
// Frames that bypass keep the previous burst values.
func (g *Glitch) Next() GlitchParams {
	p := &g.params
	p.Seed = g.rng.Float32()
	p.Bypass = false

	switch {
	case g.curF%g.randX == 0 || g.GoWild:
		p.Amount = g.rng.Float32() / 30
		p.Angle = g.randFloat(-math.Pi, math.Pi)
		p.SeedX = g.randFloat(-1, 1)
		p.SeedY = g.randFloat(-1, 1)
		p.DistortionX = g.randFloat(0, 1)
		p.DistortionY = g.randFloat(0, 1)
		g.curF = 0
		g.generateTrigger()
	case float32(g.curF%g.randX) < float32(g.randX)/5:
		p.Amount = g.rng.Float32() / 90
		p.Angle = g.randFloat(-math.Pi, math.Pi)
		p.DistortionX = g.randFloat(0, 1)
		p.DistortionY = g.randFloat(0, 1)
		p.SeedX = g.randFloat(-0.3, 0.3)
		p.SeedY = g.randFloat(-0.3, 0.3)
	default:
		p.Bypass = true
	}

	g.curF++
	return *p
}

// Period is the current number of frames between strong bursts.
func (g *Glitch) Period() int { return g.randX }

func (g *Glitch) generateTrigger() {
	g.randX = 120 + g.rng.Intn(121)
}

func (g *Glitch) randFloat(lo, hi float32) float32 {
	return lo + g.rng.Float32()*(hi-lo)
}

// Heightmap returns size*size random values in [0, 1) used as the
// displacement texture.
func Heightmap(rng *rand.Rand, size int) []float32 {
	data := make([]float32, size*size)
	for i := range data {
		data[i] = rng.Float32()
	}
	return data
}
