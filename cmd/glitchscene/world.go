package main

import (
	stdmath "math"

	"glitch-scene/io"
	"glitch-scene/math"
	"glitch-scene/scene"
	"glitch-scene/shaders"
)

// world is everything the loop needs a handle on after setup.
type world struct {
	scene       *scene.Scene
	camera      *scene.Camera
	controls    *scene.OrbitControls
	floor       *scene.Node
	floorShader *scene.ShaderMaterial
	light       *scene.Node
}

func buildWorld(cfg *io.SceneFile, aspect float32) *world {
	s := scene.NewScene()
	s.Ambient = io.ArrayToColor(cfg.Settings.AmbientColor)
	s.ClearColor = io.ArrayToColor(cfg.Settings.ClearColor)

	fov := cfg.Camera.FOV * stdmath.Pi / 180
	camera := scene.NewCamera(fov, aspect, cfg.Camera.Near, cfg.Camera.Far)
	camera.SetPosition(io.ArrayToVec3(cfg.Camera.Position))
	s.SetCamera(camera)

	controls := scene.NewOrbitControls(camera, io.ArrayToVec3(cfg.Camera.Target))
	controls.EnableDamping = cfg.Controls.EnableDamping
	controls.DampingFactor = cfg.Controls.DampingFactor

	// Light ball: a small unlit sphere carrying the point light.
	lightColor := io.ArrayToColor(cfg.Light.Color)
	ballMesh := scene.CreateSphere(cfg.Light.Radius, cfg.Light.Segments, cfg.Light.Segments)
	ballMesh.Material = scene.NewUnlitMaterial("LightBall", lightColor)
	light := scene.NewMeshNode("LightBall", ballMesh)
	s.AddNode(light)
	s.AddLight(scene.NewPointLight(lightColor, cfg.Light.Intensity, cfg.Light.Range, light))

	floorShader := scene.NewShaderMaterial("Floor", shaders.FloorVertex, shaders.FloorFragment)
	floorShader.SetFloat("time", 0)
	floorMesh := scene.CreateSphere(cfg.Floor.Radius, cfg.Floor.Segments, cfg.Floor.Segments)
	floorMesh.Material = scene.NewShaderMaterialWith(floorShader)
	floor := scene.NewMeshNode("Floor", floorMesh)
	s.AddNode(floor)

	planeMesh := scene.CreatePlane(cfg.Plane.Width, cfg.Plane.Height, 1)
	planeMesh.Material = scene.NewPBRMaterial("Plane", io.ArrayToColor(cfg.Plane.Color), cfg.Plane.Metallic, cfg.Plane.Roughness)
	plane := scene.NewMeshNode("Plane", planeMesh)
	plane.SetPosition(math.NewVec3(0, cfg.Plane.Y, 0))
	plane.SetRotation(math.QuaternionFromAxisAngle(math.Vec3Right, -stdmath.Pi/2))
	s.AddNode(plane)

	return &world{
		scene:       s,
		camera:      camera,
		controls:    controls,
		floor:       floor,
		floorShader: floorShader,
		light:       light,
	}
}
