package math

type Vec2 struct {
	X, Y float32
}

func NewVec2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

func (v Vec2) Mul(scalar float32) Vec2 {
	return Vec2{X: v.X * scalar, Y: v.Y * scalar}
}

// PointerToNDC maps a pointer position in window coordinates (origin top
// left, Y down) to normalized device coordinates in [-1, 1] with Y up.
// ok is false for an empty viewport.
func PointerToNDC(x, y, width, height float64) (ndc Vec2, ok bool) {
	if width <= 0 || height <= 0 {
		return Vec2{}, false
	}
	return Vec2{
		X: float32(x/width*2 - 1),
		Y: float32(-(y/height)*2 + 1),
	}, true
}
