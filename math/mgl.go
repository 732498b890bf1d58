package math

import "github.com/go-gl/mathgl/mgl32"

// Mgl reinterprets m as an mgl32 matrix. The row-vector layout of Mat4
// stored row by row is the column-major layout mgl32 expects, so the
// result represents the same transform in column-vector form.
func (m Mat4) Mgl() mgl32.Mat4 {
	var g mgl32.Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			g[i*4+j] = m[i][j]
		}
	}
	return g
}

func Mat4FromMgl(g mgl32.Mat4) Mat4 {
	var m Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			m[i][j] = g[i*4+j]
		}
	}
	return m
}

// Mat4FromColumnMajor reads a glTF-style column-major float array.
func Mat4FromColumnMajor(a [16]float32) Mat4 {
	return Mat4FromMgl(mgl32.Mat4(a))
}

func (v Vec3) Mgl() mgl32.Vec3 {
	return mgl32.Vec3{v.X, v.Y, v.Z}
}

func Vec3FromMgl(v mgl32.Vec3) Vec3 {
	return Vec3{X: v[0], Y: v[1], Z: v[2]}
}
