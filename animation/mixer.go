package animation

import (
	stdmath "math"

	"glitch-scene/math"
	"glitch-scene/scene"
)

type LoopMode int

const (
	LoopRepeat LoopMode = iota
	LoopOnce
)

type binding struct {
	node  *scene.Node
	track *Track
}

// Action is the playback state of one clip on a mixer.
type Action struct {
	Clip      *Clip
	Loop      LoopMode
	TimeScale float32

	bindings []binding
	time     float32
	playing  bool
}

func (a *Action) Play() *Action {
	a.playing = true
	return a
}

func (a *Action) IsRunning() bool { return a.playing }

func (a *Action) Time() float32 { return a.time }

// Bound reports how many tracks found their target node.
func (a *Action) Bound() int { return len(a.bindings) }

func (a *Action) advance(dt float32) {
	a.time += dt * a.TimeScale
	d := a.Clip.Duration
	if d <= 0 {
		a.time = 0
		return
	}
	switch a.Loop {
	case LoopOnce:
		if a.time >= d {
			a.time = d
			a.playing = false
		} else if a.time < 0 {
			a.time = 0
			a.playing = false
		}
	default:
		a.time = float32(stdmath.Mod(float64(a.time), float64(d)))
		if a.time < 0 {
			a.time += d
		}
	}
}

func (a *Action) apply() {
	var buf [4]float32
	for _, b := range a.bindings {
		if !b.track.Sample(a.time, buf[:]) {
			continue
		}
		switch b.track.Path {
		case PathTranslation:
			b.node.SetPosition(math.Vec3{X: buf[0], Y: buf[1], Z: buf[2]})
		case PathRotation:
			b.node.SetRotation(quat(buf[:]).Normalize())
		case PathScale:
			b.node.SetScale(math.Vec3{X: buf[0], Y: buf[1], Z: buf[2]})
		}
	}
}

// Mixer drives the actions of clips bound under one root node.
type Mixer struct {
	root    *scene.Node
	actions []*Action
	time    float64
}

func NewMixer(root *scene.Node) *Mixer {
	return &Mixer{root: root}
}

// ClipAction returns the action for clip, creating it on first use. Tracks
// are bound to nodes by name under the mixer root at this point, so later
// reparenting of those nodes does not break playback.
func (m *Mixer) ClipAction(clip *Clip) *Action {
	for _, a := range m.actions {
		if a.Clip == clip {
			return a
		}
	}
	a := &Action{Clip: clip, TimeScale: 1}
	for _, t := range clip.Tracks {
		if node := m.root.Find(t.NodeName); node != nil {
			a.bindings = append(a.bindings, binding{node: node, track: t})
		}
	}
	m.actions = append(m.actions, a)
	return a
}

// Update advances running actions by dt seconds and poses their nodes.
func (m *Mixer) Update(dt float32) {
	m.time += float64(dt)
	for _, a := range m.actions {
		if !a.playing {
			continue
		}
		a.advance(dt)
		a.apply()
	}
}

// Time is the total time the mixer has been advanced by.
func (m *Mixer) Time() float64 { return m.time }
