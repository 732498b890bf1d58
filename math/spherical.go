package math

import "math"

const sphericalEps = 1e-6

// Spherical coordinates around the Y axis. Phi is the polar angle from +Y,
// Theta the azimuth from +Z towards +X.
type Spherical struct {
	Radius, Phi, Theta float32
}

func SphericalFromVec3(v Vec3) Spherical {
	r := v.Length()
	if r == 0 {
		return Spherical{}
	}
	return Spherical{
		Radius: r,
		Theta:  float32(math.Atan2(float64(v.X), float64(v.Z))),
		Phi:    float32(math.Acos(float64(Clamp(v.Y/r, -1, 1)))),
	}
}

func (s Spherical) ToVec3() Vec3 {
	sinPhi := float32(math.Sin(float64(s.Phi)))
	return Vec3{
		X: s.Radius * sinPhi * float32(math.Sin(float64(s.Theta))),
		Y: s.Radius * float32(math.Cos(float64(s.Phi))),
		Z: s.Radius * sinPhi * float32(math.Cos(float64(s.Theta))),
	}
}

// MakeSafe keeps Phi off the poles where the view direction would align
// with the up vector.
func (s Spherical) MakeSafe() Spherical {
	s.Phi = Clamp(s.Phi, sphericalEps, math.Pi-sphericalEps)
	return s
}

func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
