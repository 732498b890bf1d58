// Package animation plays keyframed node transforms, such as the clips
// bundled in a glTF file.
package animation

import (
	"sort"

	"glitch-scene/math"
)

// Path selects which part of a node transform a track drives.
type Path int

const (
	PathTranslation Path = iota
	PathRotation
	PathScale
)

func (p Path) stride() int {
	if p == PathRotation {
		return 4
	}
	return 3
}

type Interpolation int

const (
	InterpolationLinear Interpolation = iota
	InterpolationStep
	// InterpolationCubicSpline stores an in-tangent, value and out-tangent
	// per keyframe, in that order.
	InterpolationCubicSpline
)

// Track is the keyframe data for one property of one node.
type Track struct {
	NodeName      string
	Path          Path
	Interpolation Interpolation
	Times         []float32
	Values        []float32
}

// Clip is a named set of tracks played together.
type Clip struct {
	Name     string
	Duration float32
	Tracks   []*Track
}

// NewClip derives the duration from the latest keyframe.
func NewClip(name string, tracks []*Track) *Clip {
	c := &Clip{Name: name, Tracks: tracks}
	for _, t := range tracks {
		if n := len(t.Times); n > 0 && t.Times[n-1] > c.Duration {
			c.Duration = t.Times[n-1]
		}
	}
	return c
}

// keyValue returns the value of keyframe k.
func (t *Track) keyValue(k int) []float32 {
	s := t.Path.stride()
	if t.Interpolation == InterpolationCubicSpline {
		base := k*3*s + s
		return t.Values[base : base+s]
	}
	return t.Values[k*s : k*s+s]
}

func (t *Track) tangents(k int) (in, out []float32) {
	s := t.Path.stride()
	base := k * 3 * s
	return t.Values[base : base+s], t.Values[base+2*s : base+3*s]
}

func (t *Track) keyCount() int {
	per := t.Path.stride()
	if t.Interpolation == InterpolationCubicSpline {
		per *= 3
	}
	return min(len(t.Times), len(t.Values)/per)
}

// Sample evaluates the track at time into out, which must hold 3 values
// for translation and scale or 4 for rotation. Times before the first key
// hold the first value and times after the last key hold the last. It
// returns false for an empty track.
func (t *Track) Sample(time float32, out []float32) bool {
	n := t.keyCount()
	if n == 0 {
		return false
	}
	if n == 1 || time <= t.Times[0] {
		copy(out, t.keyValue(0))
		return true
	}
	if time >= t.Times[n-1] {
		copy(out, t.keyValue(n-1))
		return true
	}

	k1 := sort.Search(n, func(i int) bool { return t.Times[i] > time })
	k0 := k1 - 1
	t0, t1 := t.Times[k0], t.Times[k1]
	dt := t1 - t0
	u := float32(0)
	if dt > 0 {
		u = (time - t0) / dt
	}

	switch t.Interpolation {
	case InterpolationStep:
		copy(out, t.keyValue(k0))
	case InterpolationCubicSpline:
		t.hermite(k0, k1, u, dt, out)
	default:
		a, b := t.keyValue(k0), t.keyValue(k1)
		if t.Path == PathRotation {
			q := quat(a).Slerp(quat(b), u)
			out[0], out[1], out[2], out[3] = q.X, q.Y, q.Z, q.W
			return true
		}
		for i := range a {
			out[i] = a[i] + (b[i]-a[i])*u
		}
	}
	return true
}

func (t *Track) hermite(k0, k1 int, u, dt float32, out []float32) {
	p0, p1 := t.keyValue(k0), t.keyValue(k1)
	_, m0 := t.tangents(k0)
	m1, _ := t.tangents(k1)

	u2 := u * u
	u3 := u2 * u
	h00 := 2*u3 - 3*u2 + 1
	h10 := u3 - 2*u2 + u
	h01 := -2*u3 + 3*u2
	h11 := u3 - u2

	for i := range p0 {
		out[i] = h00*p0[i] + h10*dt*m0[i] + h01*p1[i] + h11*dt*m1[i]
	}
	if t.Path == PathRotation {
		q := quat(out).Normalize()
		out[0], out[1], out[2], out[3] = q.X, q.Y, q.Z, q.W
	}
}

func quat(v []float32) math.Quaternion {
	return math.Quaternion{X: v[0], Y: v[1], Z: v[2], W: v[3]}
}
