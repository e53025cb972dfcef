package viewer

import (
	"github.com/go-gl/mathgl/mgl32"

	"scene-tour/controls"
	"scene-tour/core"
	"scene-tour/inspect"
	"scene-tour/scene"
)

// session is everything the viewer mutates per frame that does not need a
// GL context: scene graph, camera and controllers.
type session struct {
	log    core.Logger
	scene  *scene.Scene
	camera *scene.Camera
	orbit  *controls.Orbit
	tour   *controls.Tour
	model  *scene.GLTFResult
	frame  uint64
}

// newSession builds the per-frame state for a framebuffer of width x height
// pixels. pointerHeight is the window height in the units cursor positions
// use; drag rotation is measured against it.
func newSession(cfg Config, width, height, pointerHeight int, log core.Logger) *session {
	s := scene.NewScene()
	s.Background = cfg.Background

	aspect := float32(16.0 / 9.0)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}
	cam := scene.NewCamera(cfg.Camera.fovRadians(), aspect, cfg.Camera.NearPlane, cfg.Camera.FarPlane)
	cam.SetPosition(cfg.Camera.Position)
	r := cfg.Camera.Rotation
	cam.SetEuler(r.X(), r.Y(), r.Z())

	orbit := controls.NewOrbit(cam, cfg.Orbit)
	orbit.SetViewportHeight(pointerHeight)

	return &session{
		log:    log,
		scene:  s,
		camera: cam,
		orbit:  orbit,
		tour:   controls.NewTour(cam, orbit, cfg.Presets, cfg.Movement),
	}
}

// handleLoad attaches a loaded model and arms preset cycling. A failed load
// is logged and otherwise ignored: the scene stays empty and mouse releases
// keep doing nothing.
func (s *session) handleLoad(res scene.LoadResult) {
	if res.Err != nil {
		s.log.Errorf("model load failed: %v", res.Err)
		return
	}
	m := res.Model
	for _, root := range m.Roots {
		s.scene.AddNode(root)
	}
	s.model = m
	s.tour.Arm()

	nodes := 0
	for _, root := range m.Roots {
		root.Traverse(func(*scene.Node) { nodes++ })
	}
	s.log.Infof("model %s loaded from %s: %d nodes, %d meshes, %d textures",
		m.ID, m.Path, nodes, m.Meshes, len(m.Textures))
	if box, ok := s.scene.Bounds(); ok {
		s.log.Debugf("model bounds min=%v max=%v center=%v", box.Min, box.Max, box.Center())
	}
}

// keyEvent and mouseEvent are the window callbacks' entry points.
func (s *session) keyEvent(name string, pressed bool) {
	if pressed {
		s.tour.KeyDown(name)
	} else {
		s.tour.KeyUp(name)
	}
}

func (s *session) mouseEvent(button int, pressed bool, x, y float64) {
	if pressed {
		s.orbit.PointerDown(button, x, y)
		return
	}
	s.orbit.PointerUp(button)
	s.tour.MouseUp()
}

// resize follows the framebuffer; resizePointerArea follows the window in
// screen coordinates.
func (s *session) resize(width, height int) {
	s.camera.UpdateAspectRatio(float32(width), float32(height))
}

func (s *session) resizePointerArea(width, height int) {
	s.orbit.SetViewportHeight(height)
}

// step runs the post-render half of a tick: orbit damping, then keyboard
// movement.
func (s *session) step(dt float32) {
	s.orbit.Update()
	s.tour.UpdateMovement(dt)
	s.frame++
}

func (s *session) pose() inspect.Pose {
	p := inspect.Pose{
		Frame:    s.frame,
		Position: vec(s.camera.Position),
		Target:   vec(s.orbit.Target),
		Index:    s.tour.Index(),
		Presets:  presets(s.tour.Presets()),
		Armed:    s.tour.Armed(),
		Flags:    s.tour.Flags(),
	}
	if s.model != nil {
		p.Model = s.model.ID.String()
	}
	return p
}

func vec(v mgl32.Vec3) [3]float32 {
	return [3]float32(v)
}

func presets(ps [3]mgl32.Vec3) [3][3]float32 {
	var out [3][3]float32
	for i, p := range ps {
		out[i] = vec(p)
	}
	return out
}
