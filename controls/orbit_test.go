package controls

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"scene-tour/scene"
)

func assertVecNear(t *testing.T, want, got mgl32.Vec3, delta float64, msgAndArgs ...interface{}) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], delta, msgAndArgs...)
	}
}

func newOrbitAt(pos mgl32.Vec3, cfg OrbitConfig) (*Orbit, *scene.Camera) {
	cam := scene.NewCamera(float32(math.Pi/4), 1, 0.1, 100)
	cam.SetPosition(pos)
	o := NewOrbit(cam, cfg)
	o.SetViewportHeight(100)
	return o, cam
}

func TestOrbitUpdateWithoutInputKeepsPosition(t *testing.T) {
	o, cam := newOrbitAt(mgl32.Vec3{0, 0, 5}, DefaultOrbitConfig())

	o.Update()

	assertVecNear(t, mgl32.Vec3{0, 0, 5}, cam.Position, 1e-4)
	assertVecNear(t, mgl32.Vec3{0, 0, -1}, cam.GetForward(), 1e-4)
}

func TestOrbitRotateLeft(t *testing.T) {
	o, cam := newOrbitAt(mgl32.Vec3{0, 0, 5}, DefaultOrbitConfig())

	o.RotateLeft(math.Pi / 2)
	o.Update()

	assertVecNear(t, mgl32.Vec3{-5, 0, 0}, cam.Position, 1e-4)
	assertVecNear(t, mgl32.Vec3{1, 0, 0}, cam.GetForward(), 1e-4)

	// consumed without damping
	o.Update()
	assertVecNear(t, mgl32.Vec3{-5, 0, 0}, cam.Position, 1e-4)
}

func TestOrbitPrimaryDragRotates(t *testing.T) {
	o, cam := newOrbitAt(mgl32.Vec3{0, 0, 5}, DefaultOrbitConfig())

	o.PointerDown(ButtonPrimary, 10, 10)
	o.PointerMove(35, 10) // a quarter of the viewport height
	o.PointerUp(ButtonPrimary)
	o.Update()

	assertVecNear(t, mgl32.Vec3{-5, 0, 0}, cam.Position, 1e-4)
}

func TestOrbitRotateSpeedScalesDrag(t *testing.T) {
	cfg := DefaultOrbitConfig()
	cfg.RotateSpeed = 0.2
	o, cam := newOrbitAt(mgl32.Vec3{0, 0, 5}, cfg)

	o.PointerDown(ButtonPrimary, 0, 0)
	o.PointerMove(25, 0)
	o.Update()

	theta := math.Atan2(float64(cam.Position.X()), float64(cam.Position.Z()))
	assert.InDelta(t, -0.2*math.Pi/2, theta, 1e-4)
}

func TestOrbitMoveWithoutDragDoesNothing(t *testing.T) {
	o, cam := newOrbitAt(mgl32.Vec3{0, 0, 5}, DefaultOrbitConfig())

	o.PointerMove(50, 50)
	o.PointerMove(90, 10)
	o.Update()

	assertVecNear(t, mgl32.Vec3{0, 0, 5}, cam.Position, 1e-4)
}

func TestOrbitDamping(t *testing.T) {
	cfg := DefaultOrbitConfig()
	cfg.EnableDamping = true
	cfg.DampingFactor = 0.05
	o, cam := newOrbitAt(mgl32.Vec3{0, 0, 5}, cfg)

	o.RotateLeft(1)
	o.Update()
	theta := math.Atan2(float64(cam.Position.X()), float64(cam.Position.Z()))
	assert.InDelta(t, -0.05, theta, 1e-4)

	for i := 0; i < 400; i++ {
		o.Update()
	}
	theta = math.Atan2(float64(cam.Position.X()), float64(cam.Position.Z()))
	assert.InDelta(t, -1, theta, 1e-3)
	assert.InDelta(t, 5, cam.Position.Len(), 1e-3)
}

func TestOrbitWheelZoom(t *testing.T) {
	o, cam := newOrbitAt(mgl32.Vec3{0, 0, 5}, DefaultOrbitConfig())

	o.Wheel(1)
	o.Update()
	assert.InDelta(t, 5*0.95, cam.Position.Len(), 1e-4)

	o.Wheel(-1)
	o.Update()
	assert.InDelta(t, 5, cam.Position.Len(), 1e-4)
}

func TestOrbitZoomDisabled(t *testing.T) {
	cfg := DefaultOrbitConfig()
	cfg.EnableZoom = false
	o, cam := newOrbitAt(mgl32.Vec3{0, 0, 5}, cfg)

	o.Wheel(3)
	o.PointerDown(ButtonMiddle, 0, 0)
	o.PointerMove(0, 40)
	o.Update()

	assert.InDelta(t, 5, cam.Position.Len(), 1e-4)
}

func TestOrbitMiddleDragDollies(t *testing.T) {
	o, cam := newOrbitAt(mgl32.Vec3{0, 0, 5}, DefaultOrbitConfig())

	o.PointerDown(ButtonMiddle, 0, 0)
	o.PointerMove(0, 10)
	o.Update()

	assert.InDelta(t, 5/0.95, cam.Position.Len(), 1e-4)
}

func TestOrbitDistanceLimits(t *testing.T) {
	cfg := DefaultOrbitConfig()
	cfg.MinDistance = 4.9
	o, cam := newOrbitAt(mgl32.Vec3{0, 0, 5}, cfg)

	for i := 0; i < 10; i++ {
		o.Wheel(1)
	}
	o.Update()

	assert.InDelta(t, 4.9, cam.Position.Len(), 1e-4)
}

func TestOrbitPanDisabled(t *testing.T) {
	cfg := DefaultOrbitConfig()
	cfg.EnablePan = false
	o, cam := newOrbitAt(mgl32.Vec3{0, 0, 5}, cfg)

	o.PointerDown(ButtonSecondary, 0, 0)
	o.PointerMove(40, 40)
	o.Update()

	assert.Equal(t, mgl32.Vec3{}, o.Target)
	assertVecNear(t, mgl32.Vec3{0, 0, 5}, cam.Position, 1e-4)
}

func TestOrbitPanMovesTargetAndCamera(t *testing.T) {
	o, cam := newOrbitAt(mgl32.Vec3{0, 0, 5}, DefaultOrbitConfig())
	o.Update()

	o.PointerDown(ButtonSecondary, 0, 0)
	o.PointerMove(-10, 0) // drag left: scene follows, view slides right
	o.Update()

	assert.Greater(t, o.Target.X(), float32(0))
	assert.InDelta(t, o.Target.X(), cam.Position.X(), 1e-4)
	assert.InDelta(t, 5, cam.Position.Sub(o.Target).Len(), 1e-4)
}

func TestOrbitSetTargetReaimsInPlace(t *testing.T) {
	o, cam := newOrbitAt(mgl32.Vec3{0, 0, 5}, DefaultOrbitConfig())

	o.SetTarget(mgl32.Vec3{1, 0, 0})
	o.Update()

	assertVecNear(t, mgl32.Vec3{0, 0, 5}, cam.Position, 1e-4)
	assertVecNear(t, mgl32.Vec3{1, 0, -5}.Normalize(), cam.GetForward(), 1e-4)
}

func TestOrbitAbsorbsExternalTranslation(t *testing.T) {
	o, cam := newOrbitAt(mgl32.Vec3{0, 0, 5}, DefaultOrbitConfig())
	o.Update()

	cam.TranslateZ(-1)
	o.Update()

	assertVecNear(t, mgl32.Vec3{0, 0, 4}, cam.Position, 1e-4)
}

func TestOrbitPolarClampStaysFinite(t *testing.T) {
	o, cam := newOrbitAt(mgl32.Vec3{0, 0, 5}, DefaultOrbitConfig())

	o.RotateUp(10)
	o.Update()

	for i := 0; i < 3; i++ {
		assert.False(t, math.IsNaN(float64(cam.Position[i])))
	}
	assert.InDelta(t, 5, cam.Position.Len(), 1e-3)
	assert.Greater(t, cam.Position.Y(), float32(4.99))
}
