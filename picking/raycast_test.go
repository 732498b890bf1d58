package picking

import (
	stdmath "math"
	"testing"

	"glitch-scene/math"
	"glitch-scene/scene"
)

func defaultCamera() *scene.Camera {
	cam := scene.NewCamera(75*stdmath.Pi/180, 16.0/9.0, 0.1, 100)
	cam.SetPosition(math.NewVec3(0, 2, 5))
	cam.LookAt(math.NewVec3(0, 0.75, 0), math.Vec3Up)
	return cam
}

// sphereEntry intersects a ray with an analytic sphere at the origin.
func sphereEntry(ray Ray, radius float32) math.Vec3 {
	b := ray.Origin.Dot(ray.Direction)
	c := ray.Origin.Dot(ray.Origin) - radius*radius
	t := -b - float32(stdmath.Sqrt(float64(b*b-c)))
	return ray.At(t)
}

func TestRayFromCameraCenter(t *testing.T) {
	cam := defaultCamera()
	ray := RayFromCamera(math.NewVec2(0, 0), cam)

	if ray.Origin != cam.Position {
		t.Errorf("origin: expected %v, got %v", cam.Position, ray.Origin)
	}
	want := cam.GetForward()
	if !ray.Direction.Approx(want, 1e-4) {
		t.Errorf("direction: expected %v, got %v", want, ray.Direction)
	}
}

func TestRayFromCameraCorner(t *testing.T) {
	cam := defaultCamera()
	ray := RayFromCamera(math.NewVec2(1, 1), cam)

	// The top-right ray leans right and up relative to the view direction.
	if ray.Direction.Dot(cam.GetRight()) <= 0 {
		t.Errorf("expected rightward component, got %v", ray.Direction)
	}
	if ray.Direction.Dot(cam.GetUp()) <= 0 {
		t.Errorf("expected upward component, got %v", ray.Direction)
	}
	// Vertical half-angle of the frustum is fov/2.
	up := ray.Direction.Dot(cam.GetUp())
	fwd := ray.Direction.Dot(cam.GetForward())
	angle := stdmath.Atan2(float64(up), float64(fwd))
	if stdmath.Abs(angle-75*stdmath.Pi/360) > 1e-3 {
		t.Errorf("vertical angle: expected %v, got %v", 75*stdmath.Pi/360, angle)
	}
}

func TestIntersectFloorSphereNearPoint(t *testing.T) {
	cam := defaultCamera()
	floor := scene.NewMeshNode("floor", scene.CreateSphere(5, 50, 50))

	ray := RayFromCamera(math.NewVec2(0, 0), cam)
	hit := IntersectNodes(ray, floor)
	if !hit.Hit {
		t.Fatal("expected the center ray to hit the floor sphere")
	}
	want := sphereEntry(ray, 5)
	if !hit.Point.Approx(want, 0.05) {
		t.Errorf("hit point: expected about %v, got %v", want, hit.Point)
	}
	if hit.Node != floor {
		t.Errorf("hit node: expected floor, got %v", hit.Node)
	}
	// Nearest of the two crossings: closer to the camera than the center.
	if hit.Distance >= cam.Position.Length() {
		t.Errorf("expected the near crossing, distance %v", hit.Distance)
	}
}

func TestIntersectMiss(t *testing.T) {
	floor := scene.NewMeshNode("floor", scene.CreateSphere(5, 16, 16))
	ray := Ray{Origin: math.NewVec3(0, 0, 20), Direction: math.NewVec3(0, 0, 1)}
	if hit := IntersectNodes(ray, floor); hit.Hit {
		t.Errorf("ray pointing away should miss, got %v", hit.Point)
	}
}

func TestIntersectRespectsTransform(t *testing.T) {
	floor := scene.NewMeshNode("floor", scene.CreateSphere(1, 24, 24))
	floor.SetPosition(math.NewVec3(10, 0, 0))

	ray := Ray{Origin: math.NewVec3(10, 0, 5), Direction: math.NewVec3(0, 0, -1)}
	hit := IntersectNodes(ray, floor)
	if !hit.Hit {
		t.Fatal("expected a hit on the moved sphere")
	}
	if !hit.Point.Approx(math.NewVec3(10, 0, 1), 0.02) {
		t.Errorf("hit point: expected about (10,0,1), got %v", hit.Point)
	}
}

func TestIntersectSkipsHiddenNodes(t *testing.T) {
	floor := scene.NewMeshNode("floor", scene.CreateSphere(5, 16, 16))
	floor.Visible = false
	ray := Ray{Origin: math.NewVec3(0, 0, 20), Direction: math.NewVec3(0, 0, -1)}
	if hit := IntersectNodes(ray, floor); hit.Hit {
		t.Error("hidden node should not be hit")
	}
}

func TestIntersectSkipsBackFaces(t *testing.T) {
	floor := scene.NewMeshNode("floor", scene.CreateSphere(5, 24, 24))
	ray := Ray{Origin: math.Vec3Zero, Direction: math.NewVec3(0, 0, -1)}
	if hit := IntersectNodes(ray, floor); hit.Hit {
		t.Errorf("single-sided sphere seen from inside should not be hit, got %v", hit.Point)
	}

	floor.Mesh.Material = scene.DefaultMaterial()
	floor.Mesh.Material.DoubleSided = true
	hit := IntersectNodes(ray, floor)
	if !hit.Hit {
		t.Fatal("double-sided sphere should be hit from inside")
	}
	if stdmath.Abs(float64(hit.Distance-5)) > 0.1 {
		t.Errorf("distance: expected about 5, got %v", hit.Distance)
	}
}
