package viewer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"scene-tour/controls"
	"scene-tour/core"
)

// CameraConfig is the camera's lens and starting pose.
type CameraConfig struct {
	FOV       float32 // vertical, degrees
	NearPlane float32
	FarPlane  float32
	Position  mgl32.Vec3
	Rotation  mgl32.Vec3 // Euler XYZ, radians
}

// Config holds every tunable of the viewer.
type Config struct {
	Window     core.WindowConfig
	ModelPath  string
	Background core.Color
	Camera     CameraConfig
	Orbit      controls.OrbitConfig
	Movement   controls.MovementConfig
	Presets    [3]mgl32.Vec3

	// TrackResize follows framebuffer resizes. Off by default: the viewport
	// and aspect ratio are fixed at startup.
	TrackResize bool

	// InspectAddr enables the pose inspector on this address when set.
	InspectAddr string
}

// DefaultConfig tours the Swedish royal model from its fixed starting pose
// and viewpoints.
func DefaultConfig() Config {
	orbit := controls.DefaultOrbitConfig()
	orbit.EnableDamping = true
	orbit.EnableZoom = true
	orbit.EnablePan = false
	orbit.RotateSpeed = 0.2

	return Config{
		Window:     core.DefaultWindowConfig(),
		ModelPath:  "model/swedish-royal/scene.gltf",
		Background: core.ColorBlack,
		Camera: CameraConfig{
			FOV:       45,
			NearPlane: 0.1,
			FarPlane:  1000,
			Position:  mgl32.Vec3{-4.9, 4.4, 1.9},
			Rotation:  mgl32.Vec3{-0.9, -0.8, -0.8},
		},
		Orbit:    orbit,
		Movement: controls.DefaultMovementConfig(),
		Presets: [3]mgl32.Vec3{
			{-6.0, 1.72, 1.34},
			{0.48, 2.09, -2.11},
			{-1.49, 1.7, 0.48},
		},
	}
}

func (c CameraConfig) fovRadians() float32 {
	return c.FOV * math.Pi / 180
}
