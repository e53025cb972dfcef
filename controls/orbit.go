// Package controls turns raw pointer and keyboard input into camera motion:
// an orbit controller that pivots the camera around a target, and the tour
// controller that adds WASD translation and preset look-at targets on top.
package controls

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"scene-tour/scene"
)

const orbitEpsilon = 1e-6

// Mouse buttons as numbered by GLFW.
const (
	ButtonPrimary   = 0
	ButtonSecondary = 1
	ButtonMiddle    = 2
)

// OrbitConfig switches and scales the orbit's input handling.
type OrbitConfig struct {
	EnableDamping bool
	DampingFactor float32

	EnableRotate bool
	RotateSpeed  float32

	EnableZoom bool
	ZoomSpeed  float32

	EnablePan bool
	PanSpeed  float32

	MinDistance float32
	MaxDistance float32

	// Polar angle limits in radians, measured from +Y.
	MinPolarAngle float32
	MaxPolarAngle float32
}

func DefaultOrbitConfig() OrbitConfig {
	return OrbitConfig{
		EnableDamping: false,
		DampingFactor: 0.05,
		EnableRotate:  true,
		RotateSpeed:   1,
		EnableZoom:    true,
		ZoomSpeed:     1,
		EnablePan:     true,
		PanSpeed:      1,
		MinDistance:   0,
		MaxDistance:   float32(math.Inf(1)),
		MinPolarAngle: 0,
		MaxPolarAngle: math.Pi,
	}
}

type dragState int

const (
	dragNone dragState = iota
	dragRotate
	dragDolly
	dragPan
)

// Orbit keeps a camera on a sphere around Target. The camera position is
// re-read on every Update, so anything else that moves the camera between
// frames (keyboard translation, a new Target) is absorbed rather than
// overwritten.
type Orbit struct {
	Target mgl32.Vec3

	cfg    OrbitConfig
	camera *scene.Camera

	// pending spherical deltas, decayed by damping
	deltaTheta float32
	deltaPhi   float32
	scale      float32
	panOffset  mgl32.Vec3

	viewportHeight float32
	drag           dragState
	lastX, lastY   float64
}

// NewOrbit targets the origin. Call SetViewportHeight before the first drag.
func NewOrbit(camera *scene.Camera, cfg OrbitConfig) *Orbit {
	return &Orbit{
		cfg:            cfg,
		camera:         camera,
		scale:          1,
		viewportHeight: 1,
	}
}

// SetTarget moves the pivot. The camera keeps its position and re-aims on
// the next Update.
func (o *Orbit) SetTarget(target mgl32.Vec3) {
	o.Target = target
}

// SetViewportHeight sets the height drag distances are measured against,
// in the same units as the cursor positions passed to PointerMove.
func (o *Orbit) SetViewportHeight(height int) {
	if height > 0 {
		o.viewportHeight = float32(height)
	}
}

// RotateLeft queues an azimuth change in radians.
func (o *Orbit) RotateLeft(angle float32) {
	o.deltaTheta -= angle
}

// RotateUp queues a polar change in radians.
func (o *Orbit) RotateUp(angle float32) {
	o.deltaPhi -= angle
}

// DollyIn shrinks the orbit radius by factor (0 < factor < 1 zooms in).
func (o *Orbit) DollyIn(factor float32) {
	o.scale *= factor
}

// DollyOut grows the orbit radius by 1/factor.
func (o *Orbit) DollyOut(factor float32) {
	o.scale /= factor
}

func (o *Orbit) zoomScale() float32 {
	return float32(math.Pow(0.95, float64(o.cfg.ZoomSpeed)))
}

// PointerDown starts a drag. Primary rotates, middle dollies, secondary pans.
func (o *Orbit) PointerDown(button int, x, y float64) {
	o.lastX, o.lastY = x, y
	switch {
	case button == ButtonPrimary && o.cfg.EnableRotate:
		o.drag = dragRotate
	case button == ButtonMiddle && o.cfg.EnableZoom:
		o.drag = dragDolly
	case button == ButtonSecondary && o.cfg.EnablePan:
		o.drag = dragPan
	default:
		o.drag = dragNone
	}
}

// PointerMove feeds cursor motion to the active drag, if any.
func (o *Orbit) PointerMove(x, y float64) {
	dx := float32(x - o.lastX)
	dy := float32(y - o.lastY)
	o.lastX, o.lastY = x, y

	switch o.drag {
	case dragRotate:
		o.RotateLeft(2 * math.Pi * dx / o.viewportHeight * o.cfg.RotateSpeed)
		o.RotateUp(2 * math.Pi * dy / o.viewportHeight * o.cfg.RotateSpeed)
	case dragDolly:
		if dy > 0 {
			o.DollyOut(o.zoomScale())
		} else if dy < 0 {
			o.DollyIn(o.zoomScale())
		}
	case dragPan:
		o.pan(dx*o.cfg.PanSpeed, dy*o.cfg.PanSpeed)
	}
}

// PointerUp ends any drag.
func (o *Orbit) PointerUp(button int) {
	o.drag = dragNone
}

// Wheel handles a scroll step. Positive yoff (wheel up) zooms in.
func (o *Orbit) Wheel(yoff float64) {
	if !o.cfg.EnableZoom || o.drag != dragNone {
		return
	}
	if yoff > 0 {
		o.DollyIn(o.zoomScale())
	} else if yoff < 0 {
		o.DollyOut(o.zoomScale())
	}
}

// pan shifts the target in the view plane so that the model follows the
// cursor at the target's depth.
func (o *Orbit) pan(dx, dy float32) {
	distance := o.camera.Position.Sub(o.Target).Len()
	distance *= float32(math.Tan(float64(o.camera.FOV) / 2))
	left := o.camera.GetRight().Mul(-2 * dx * distance / o.viewportHeight)
	up := o.camera.GetUp().Mul(2 * dy * distance / o.viewportHeight)
	o.panOffset = o.panOffset.Add(left).Add(up)
}

// Update applies pending input to the camera. Call once per frame.
func (o *Orbit) Update() {
	offset := o.camera.Position.Sub(o.Target)

	radius := offset.Len()
	var theta, phi float32
	if radius > 0 {
		theta = float32(math.Atan2(float64(offset.X()), float64(offset.Z())))
		phi = float32(math.Acos(float64(mgl32.Clamp(offset.Y()/radius, -1, 1))))
	}

	if o.cfg.EnableDamping {
		theta += o.deltaTheta * o.cfg.DampingFactor
		phi += o.deltaPhi * o.cfg.DampingFactor
	} else {
		theta += o.deltaTheta
		phi += o.deltaPhi
	}

	phi = mgl32.Clamp(phi, o.cfg.MinPolarAngle, o.cfg.MaxPolarAngle)
	phi = mgl32.Clamp(phi, orbitEpsilon, math.Pi-orbitEpsilon)

	radius *= o.scale
	radius = maxf(o.cfg.MinDistance, minf(o.cfg.MaxDistance, radius))

	if o.cfg.EnableDamping {
		o.Target = o.Target.Add(o.panOffset.Mul(o.cfg.DampingFactor))
	} else {
		o.Target = o.Target.Add(o.panOffset)
	}

	sinPhi := float32(math.Sin(float64(phi)))
	offset = mgl32.Vec3{
		radius * sinPhi * float32(math.Sin(float64(theta))),
		radius * float32(math.Cos(float64(phi))),
		radius * sinPhi * float32(math.Cos(float64(theta))),
	}

	o.camera.SetPosition(o.Target.Add(offset))
	o.camera.LookAt(o.Target, mgl32.Vec3{0, 1, 0})

	if o.cfg.EnableDamping {
		o.deltaTheta *= 1 - o.cfg.DampingFactor
		o.deltaPhi *= 1 - o.cfg.DampingFactor
		o.panOffset = o.panOffset.Mul(1 - o.cfg.DampingFactor)
	} else {
		o.deltaTheta, o.deltaPhi = 0, 0
		o.panOffset = mgl32.Vec3{}
	}
	o.scale = 1
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
