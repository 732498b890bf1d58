package scene

import (
	stdmath "math"

	"glitch-scene/core"
	"glitch-scene/math"
)

// CreateSphere generates a UV-sphere mesh with counter-clockwise faces seen
// from outside. V runs from 1 at the north pole to 0 at the south pole.
func CreateSphere(radius float32, segments, rings int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	if rings < 2 {
		rings = 2
	}

	vertices := make([]core.Vertex, 0, (rings+1)*(segments+1))
	indices := make([]uint32, 0, rings*segments*6)

	for ring := 0; ring <= rings; ring++ {
		phi := float64(ring) * stdmath.Pi / float64(rings)
		sinPhi := float32(stdmath.Sin(phi))
		cosPhi := float32(stdmath.Cos(phi))

		for seg := 0; seg <= segments; seg++ {
			theta := float64(seg) * 2.0 * stdmath.Pi / float64(segments)
			sinTheta := float32(stdmath.Sin(theta))
			cosTheta := float32(stdmath.Cos(theta))

			normal := math.Vec3{X: sinPhi * cosTheta, Y: cosPhi, Z: sinPhi * sinTheta}
			vertices = append(vertices, core.Vertex{
				Position: normal.Mul(radius),
				Normal:   normal,
				UV:       math.Vec2{X: float32(seg) / float32(segments), Y: 1 - float32(ring)/float32(rings)},
				Color:    core.ColorWhite,
			})
		}
	}

	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			current := uint32(ring*(segments+1) + seg)
			next := current + uint32(segments+1)

			if ring != 0 {
				indices = append(indices, current, current+1, next)
			}
			if ring != rings-1 {
				indices = append(indices, current+1, next+1, next)
			}
		}
	}

	return CreateMeshFromData("Sphere", vertices, indices)
}

// CreatePlane generates a width x height plane in the XY plane facing +Z,
// split into subdivisions x subdivisions quads.
func CreatePlane(width, height float32, subdivisions int) *Mesh {
	if subdivisions < 1 {
		subdivisions = 1
	}

	var vertices []core.Vertex
	var indices []uint32

	halfW := width / 2.0
	halfH := height / 2.0

	for y := 0; y <= subdivisions; y++ {
		for x := 0; x <= subdivisions; x++ {
			u := float32(x) / float32(subdivisions)
			v := float32(y) / float32(subdivisions)

			vertices = append(vertices, core.Vertex{
				Position: math.Vec3{X: -halfW + u*width, Y: -halfH + v*height},
				Normal:   math.Vec3Front,
				UV:       math.Vec2{X: u, Y: v},
				Color:    core.ColorWhite,
			})
		}
	}

	for y := 0; y < subdivisions; y++ {
		for x := 0; x < subdivisions; x++ {
			bottomLeft := uint32(y*(subdivisions+1) + x)
			bottomRight := bottomLeft + 1
			topLeft := bottomLeft + uint32(subdivisions+1)
			topRight := topLeft + 1

			indices = append(indices, bottomLeft, bottomRight, topLeft)
			indices = append(indices, bottomRight, topRight, topLeft)
		}
	}

	return CreateMeshFromData("Plane", vertices, indices)
}
