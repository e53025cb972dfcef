package viewer

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"scene-tour/core"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "model/swedish-royal/scene.gltf", cfg.ModelPath)

	assert.Equal(t, float32(45), cfg.Camera.FOV)
	assert.Equal(t, float32(0.1), cfg.Camera.NearPlane)
	assert.Equal(t, float32(1000), cfg.Camera.FarPlane)
	assert.Equal(t, mgl32.Vec3{-4.9, 4.4, 1.9}, cfg.Camera.Position)
	assert.Equal(t, mgl32.Vec3{-0.9, -0.8, -0.8}, cfg.Camera.Rotation)

	assert.True(t, cfg.Orbit.EnableDamping)
	assert.Equal(t, float32(0.05), cfg.Orbit.DampingFactor)
	assert.Equal(t, float32(0.2), cfg.Orbit.RotateSpeed)
	assert.True(t, cfg.Orbit.EnableZoom)
	assert.False(t, cfg.Orbit.EnablePan)

	assert.Equal(t, float32(0.1), cfg.Movement.Step)
	assert.False(t, cfg.Movement.ScaleByDelta)

	assert.Equal(t, [3]mgl32.Vec3{
		{-6.0, 1.72, 1.34},
		{0.48, 2.09, -2.11},
		{-1.49, 1.7, 0.48},
	}, cfg.Presets)

	assert.Equal(t, core.Color{R: 0, G: 0, B: 0, A: 1}, cfg.Background)
	assert.False(t, cfg.TrackResize)
	assert.Empty(t, cfg.InspectAddr)
}

func TestFOVRadians(t *testing.T) {
	c := CameraConfig{FOV: 90}
	assert.InDelta(t, math.Pi/2, c.fovRadians(), 1e-6)
}
