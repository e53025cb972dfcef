package controls

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Mover translates a camera in its own frame. *scene.Camera satisfies it.
type Mover interface {
	TranslateX(distance float32)
	TranslateZ(distance float32)
}

// TargetSetter receives look-at targets. *Orbit satisfies it.
type TargetSetter interface {
	SetTarget(target mgl32.Vec3)
}

// MovementFlags records which movement keys are currently held. Opposite
// directions are independent: holding both applies both.
type MovementFlags struct {
	Forward  bool `json:"forward"`
	Backward bool `json:"backward"`
	Left     bool `json:"left"`
	Right    bool `json:"right"`
}

// MovementConfig sets how far WASD moves the camera.
type MovementConfig struct {
	// Step is the distance moved per frame for each held key.
	Step float32
	// ScaleByDelta multiplies Step by dt*60, making the speed independent
	// of the refresh rate. Off by default: one step per frame.
	ScaleByDelta bool
}

// DefaultMovementConfig moves 0.1 units per frame.
func DefaultMovementConfig() MovementConfig {
	return MovementConfig{Step: 0.1}
}

// Tour is the viewer's interaction state: WASD flags and the preset look-at
// cycle. All methods are meant to be called from the render thread.
type Tour struct {
	cfg     MovementConfig
	mover   Mover
	targets TargetSetter

	flags   MovementFlags
	presets [3]mgl32.Vec3
	index   int
	armed   bool
}

// NewTour starts at preset index 0, disarmed, with no keys held.
func NewTour(mover Mover, targets TargetSetter, presets [3]mgl32.Vec3, cfg MovementConfig) *Tour {
	return &Tour{
		cfg:     cfg,
		mover:   mover,
		targets: targets,
		presets: presets,
	}
}

// KeyDown sets the flag bound to key. Keys other than w, a, s and d are
// ignored.
func (t *Tour) KeyDown(key string) {
	t.setKey(key, true)
}

// KeyUp clears the flag bound to key.
func (t *Tour) KeyUp(key string) {
	t.setKey(key, false)
}

func (t *Tour) setKey(key string, down bool) {
	switch key {
	case "w":
		t.flags.Forward = down
	case "s":
		t.flags.Backward = down
	case "a":
		t.flags.Left = down
	case "d":
		t.flags.Right = down
	}
}

// UpdateMovement applies one step along the camera's local axes for every
// held key. dt is only used when ScaleByDelta is set.
func (t *Tour) UpdateMovement(dt float32) {
	step := t.cfg.Step
	if t.cfg.ScaleByDelta {
		step *= dt * 60
	}
	if t.flags.Forward {
		t.mover.TranslateZ(-step)
	}
	if t.flags.Backward {
		t.mover.TranslateZ(step)
	}
	if t.flags.Left {
		t.mover.TranslateX(-step)
	}
	if t.flags.Right {
		t.mover.TranslateX(step)
	}
}

// Arm enables MouseUp. The viewer arms the tour once the model has loaded.
func (t *Tour) Arm() {
	t.armed = true
}

// Armed reports whether the model has loaded and MouseUp is live.
func (t *Tour) Armed() bool {
	return t.armed
}

// MouseUp advances to the next preset and points the orbit at it. Any
// button, anywhere in the window, counts. Before Arm it does nothing.
func (t *Tour) MouseUp() {
	if !t.armed {
		return
	}
	t.index = (t.index + 1) % len(t.presets)
	t.targets.SetTarget(t.presets[t.index])
}

// Index is the preset the orbit currently targets.
func (t *Tour) Index() int {
	return t.index
}

func (t *Tour) Flags() MovementFlags {
	return t.flags
}

func (t *Tour) Presets() [3]mgl32.Vec3 {
	return t.presets
}
