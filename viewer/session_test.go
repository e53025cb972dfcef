package viewer

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-tour/controls"
	"scene-tour/core"
	"scene-tour/scene"
)

func newTestSession(t *testing.T) *session {
	t.Helper()
	return newSession(DefaultConfig(), 800, 600, 600, core.Discard)
}

func testModel() *scene.GLTFResult {
	root := scene.NewNode("hall")
	root.Mesh = scene.CreateMeshFromData("floor", []core.Vertex{
		{Position: mgl32.Vec3{-1, 0, -1}},
		{Position: mgl32.Vec3{1, 0, -1}},
		{Position: mgl32.Vec3{0, 0, 1}},
	}, []uint32{0, 1, 2})
	return &scene.GLTFResult{ID: uuid.New(), Path: "hall.glb", Roots: []*scene.Node{root}, Meshes: 1}
}

func TestSessionInitialPose(t *testing.T) {
	s := newTestSession(t)

	assert.Equal(t, mgl32.Vec3{-4.9, 4.4, 1.9}, s.camera.Position)
	want := mgl32.QuatRotate(-0.9, mgl32.Vec3{1, 0, 0}).
		Mul(mgl32.QuatRotate(-0.8, mgl32.Vec3{0, 1, 0})).
		Mul(mgl32.QuatRotate(-0.8, mgl32.Vec3{0, 0, 1}))
	assert.InDelta(t, 1, math.Abs(float64(want.Dot(s.camera.Rotation))), 1e-5)
	assert.InDelta(t, 800.0/600.0, s.camera.AspectRatio, 1e-6)
	assert.InDelta(t, mgl32.DegToRad(45), s.camera.FOV, 1e-6)
	assert.Equal(t, float32(0.1), s.camera.NearPlane)
	assert.Equal(t, float32(1000), s.camera.FarPlane)
	assert.Equal(t, mgl32.Vec3{}, s.orbit.Target)
	assert.False(t, s.tour.Armed())
	assert.Equal(t, 0, s.tour.Index())
}

func TestSessionMouseUpBeforeLoadDoesNothing(t *testing.T) {
	s := newTestSession(t)

	s.mouseEvent(controls.ButtonPrimary, true, 10, 10)
	s.mouseEvent(controls.ButtonPrimary, false, 10, 10)

	assert.Equal(t, 0, s.tour.Index())
	assert.Equal(t, mgl32.Vec3{}, s.orbit.Target)
}

func TestSessionFailedLoadStaysDisarmed(t *testing.T) {
	s := newTestSession(t)

	s.handleLoad(scene.LoadResult{Err: errors.New("no such file")})
	s.mouseEvent(controls.ButtonPrimary, false, 0, 0)

	assert.False(t, s.tour.Armed())
	assert.Nil(t, s.model)
	assert.Empty(t, s.scene.GetVisibleNodes())
	assert.Equal(t, mgl32.Vec3{}, s.orbit.Target)
}

func TestSessionLoadArmsPresetCycle(t *testing.T) {
	cfg := DefaultConfig()
	s := newTestSession(t)
	m := testModel()

	s.handleLoad(scene.LoadResult{Model: m})
	require.True(t, s.tour.Armed())
	assert.Len(t, s.scene.GetVisibleNodes(), 1)

	want := []int{1, 2, 0, 1}
	for _, idx := range want {
		s.mouseEvent(controls.ButtonPrimary, true, 5, 5)
		s.mouseEvent(controls.ButtonPrimary, false, 5, 5)
		assert.Equal(t, idx, s.tour.Index())
		assert.Equal(t, cfg.Presets[idx], s.orbit.Target)
	}

	p := s.pose()
	assert.Equal(t, [3]float32{0.48, 2.09, -2.11}, p.Presets[1])
	assert.Equal(t, m.ID.String(), p.Model)
	assert.True(t, p.Armed)
	assert.Equal(t, 1, p.Index)
	assert.Equal(t, [3]float32(cfg.Presets[1]), p.Target)
}

func TestSessionStepMovesCamera(t *testing.T) {
	s := newTestSession(t)
	s.step(1.0 / 60)
	before := s.camera.Position
	fwd := s.camera.GetForward()

	s.keyEvent("w", true)
	s.step(1.0 / 60)
	assert.True(t, s.pose().Flags.Forward)

	moved := s.camera.Position.Sub(before)
	assert.Greater(t, moved.Dot(fwd), float32(0), "w moves along the view direction")
	assert.Equal(t, uint64(2), s.pose().Frame)

	s.keyEvent("w", false)
	assert.False(t, s.pose().Flags.Forward)
}

func TestSessionResize(t *testing.T) {
	s := newTestSession(t)
	s.resize(1000, 500)
	assert.InDelta(t, 2.0, s.camera.AspectRatio, 1e-6)
}

// azimuthAfterDrag drags the primary button dx units to the right and
// returns the change in the camera's angle around the Y axis.
func azimuthAfterDrag(s *session, dx float64) float64 {
	before := s.camera.Position
	s.mouseEvent(controls.ButtonPrimary, true, 0, 0)
	s.orbit.PointerMove(dx, 0)
	s.mouseEvent(controls.ButtonPrimary, false, dx, 0)
	s.orbit.Update()
	after := s.camera.Position

	a := math.Atan2(float64(before.X()), float64(before.Z()))
	b := math.Atan2(float64(after.X()), float64(after.Z()))
	d := math.Abs(b - a)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}

func undampedConfig() Config {
	cfg := DefaultConfig()
	cfg.Orbit.EnableDamping = false
	return cfg
}

func TestSessionDragUsesPointerHeight(t *testing.T) {
	// 2x display: 1600x1200 framebuffer, 800x600 window.
	s := newSession(undampedConfig(), 1600, 1200, 600, core.Discard)
	assert.InDelta(t, 1600.0/1200.0, s.camera.AspectRatio, 1e-6)

	// 2π·dx/600·0.2 = π/2 for dx = 750
	assert.InDelta(t, math.Pi/2, azimuthAfterDrag(s, 750), 1e-3)
}

func TestSessionPointerAreaResize(t *testing.T) {
	s := newSession(undampedConfig(), 1600, 1200, 600, core.Discard)
	s.resizePointerArea(800, 300)
	s.resize(1600, 600)

	assert.InDelta(t, 1600.0/600.0, s.camera.AspectRatio, 1e-6)
	// Same drag, half the height: twice the angle.
	assert.InDelta(t, math.Pi/2, azimuthAfterDrag(s, 375), 1e-3)
}

func TestSessionLoadLogsNodeCount(t *testing.T) {
	var out bytes.Buffer
	s := newSession(DefaultConfig(), 800, 600, 600, core.NewLoggerTo(&out, &out, "", false))
	m := testModel()
	m.Roots[0].AddChild(scene.NewNode("door"))

	s.handleLoad(scene.LoadResult{Model: m})
	assert.Contains(t, out.String(), "2 nodes, 1 meshes")
}
