package math

import "math"

// Quaternion is a rotation in glTF component order (x, y, z, w).
type Quaternion struct {
	X, Y, Z, W float32
}

func QuaternionIdentity() Quaternion {
	return Quaternion{X: 0, Y: 0, Z: 0, W: 1}
}

func NewQuaternion(x, y, z, w float32) Quaternion {
	return Quaternion{X: x, Y: y, Z: z, W: w}
}

func QuaternionFromAxisAngle(axis Vec3, angle float32) Quaternion {
	halfAngle := angle / 2
	s := float32(math.Sin(float64(halfAngle)))
	c := float32(math.Cos(float64(halfAngle)))

	axis = axis.Normalize()
	return Quaternion{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: c,
	}
}

func (q Quaternion) Mul(other Quaternion) Quaternion {
	return Quaternion{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

func (q Quaternion) Add(other Quaternion) Quaternion {
	return Quaternion{X: q.X + other.X, Y: q.Y + other.Y, Z: q.Z + other.Z, W: q.W + other.W}
}

func (q Quaternion) Scale(s float32) Quaternion {
	return Quaternion{X: q.X * s, Y: q.Y * s, Z: q.Z * s, W: q.W * s}
}

func (q Quaternion) Dot(other Quaternion) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

func (q Quaternion) Normalize() Quaternion {
	length := float32(math.Sqrt(float64(q.Dot(q))))
	if length > 0 {
		return q.Scale(1 / length)
	}
	return q
}

func (q Quaternion) RotateVector(v Vec3) Vec3 {
	qVec := Vec3{X: q.X, Y: q.Y, Z: q.Z}
	t := qVec.Cross(v).Mul(2)
	return v.Add(t.Mul(q.W)).Add(qVec.Cross(t))
}

func (q Quaternion) ToMat4() Mat4 {
	xx := q.X * q.X
	yy := q.Y * q.Y
	zz := q.Z * q.Z
	xy := q.X * q.Y
	xz := q.X * q.Z
	yz := q.Y * q.Z
	wx := q.W * q.X
	wy := q.W * q.Y
	wz := q.W * q.Z

	return Mat4{
		{1 - 2*(yy+zz), 2 * (xy + wz), 2 * (xz - wy), 0},
		{2 * (xy - wz), 1 - 2*(xx+zz), 2 * (yz + wx), 0},
		{2 * (xz + wy), 2 * (yz - wx), 1 - 2*(xx+yy), 0},
		{0, 0, 0, 1},
	}
}

// Lerp is a normalized linear blend; cheap but not constant speed.
func (q Quaternion) Lerp(other Quaternion, t float32) Quaternion {
	return q.Add(other.Sub(q).Scale(t)).Normalize()
}

func (q Quaternion) Sub(other Quaternion) Quaternion {
	return q.Add(other.Scale(-1))
}

// Slerp takes the shortest arc between q and other.
func (q Quaternion) Slerp(other Quaternion, t float32) Quaternion {
	dot := q.Dot(other)

	if dot < 0 {
		dot = -dot
		other = other.Scale(-1)
	}

	if dot > 0.9995 {
		return q.Lerp(other, t)
	}

	theta0 := math.Acos(float64(dot))
	theta := theta0 * float64(t)
	sinTheta := math.Sin(theta)
	sinTheta0 := math.Sin(theta0)

	s0 := float32(math.Cos(theta) - float64(dot)*sinTheta/sinTheta0)
	s1 := float32(sinTheta / sinTheta0)

	return q.Scale(s0).Add(other.Scale(s1))
}
