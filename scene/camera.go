package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a perspective camera that looks down its local -Z axis.
type Camera struct {
	Position    mgl32.Vec3
	Rotation    mgl32.Quat
	FOV         float32 // vertical, radians
	AspectRatio float32
	NearPlane   float32
	FarPlane    float32

	// Cached matrices
	viewMatrix       mgl32.Mat4
	projectionMatrix mgl32.Mat4
	dirty            bool
}

func NewCamera(fov, aspectRatio, nearPlane, farPlane float32) *Camera {
	return &Camera{
		Position:    mgl32.Vec3{0, 0, 0},
		Rotation:    mgl32.QuatIdent(),
		FOV:         fov,
		AspectRatio: aspectRatio,
		NearPlane:   nearPlane,
		FarPlane:    farPlane,
		dirty:       true,
	}
}

func (c *Camera) UpdateAspectRatio(width, height float32) {
	if height > 0 {
		c.AspectRatio = width / height
		c.dirty = true
	}
}

func (c *Camera) SetPosition(pos mgl32.Vec3) {
	c.Position = pos
	c.dirty = true
}

func (c *Camera) SetRotation(rot mgl32.Quat) {
	c.Rotation = rot
	c.dirty = true
}

// SetEuler sets the rotation from intrinsic X, then Y, then Z angles in
// radians.
func (c *Camera) SetEuler(x, y, z float32) {
	qx := mgl32.QuatRotate(x, mgl32.Vec3{1, 0, 0})
	qy := mgl32.QuatRotate(y, mgl32.Vec3{0, 1, 0})
	qz := mgl32.QuatRotate(z, mgl32.Vec3{0, 0, 1})
	c.SetRotation(qx.Mul(qy).Mul(qz).Normalize())
}

// TranslateX moves the camera along its local X (right) axis.
func (c *Camera) TranslateX(distance float32) {
	c.translateOnAxis(mgl32.Vec3{1, 0, 0}, distance)
}

// TranslateZ moves the camera along its local Z axis. Negative distances
// move forward.
func (c *Camera) TranslateZ(distance float32) {
	c.translateOnAxis(mgl32.Vec3{0, 0, 1}, distance)
}

func (c *Camera) translateOnAxis(axis mgl32.Vec3, distance float32) {
	c.Position = c.Position.Add(c.Rotation.Rotate(axis).Mul(distance))
	c.dirty = true
}

// LookAt rotates the camera in place so that -Z points at target.
func (c *Camera) LookAt(target, up mgl32.Vec3) {
	c.SetRotation(lookRotation(c.Position, target, up))
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.viewMatrix
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.projectionMatrix
}

func (c *Camera) GetViewProjectionMatrix() mgl32.Mat4 {
	return c.GetProjectionMatrix().Mul4(c.GetViewMatrix())
}

func (c *Camera) GetForward() mgl32.Vec3 {
	return c.Rotation.Rotate(mgl32.Vec3{0, 0, -1})
}

func (c *Camera) GetRight() mgl32.Vec3 {
	return c.Rotation.Rotate(mgl32.Vec3{1, 0, 0})
}

func (c *Camera) GetUp() mgl32.Vec3 {
	return c.Rotation.Rotate(mgl32.Vec3{0, 1, 0})
}

func (c *Camera) updateMatrices() {
	p := c.Position
	c.viewMatrix = c.Rotation.Conjugate().Mat4().Mul4(mgl32.Translate3D(-p.X(), -p.Y(), -p.Z()))
	c.projectionMatrix = mgl32.Perspective(c.FOV, c.AspectRatio, c.NearPlane, c.FarPlane)
	c.dirty = false
}

// lookRotation builds the world rotation whose -Z axis points from eye to
// target. When the view direction is parallel to up, the basis is nudged
// off-axis instead of collapsing.
func lookRotation(eye, target, up mgl32.Vec3) mgl32.Quat {
	z := eye.Sub(target)
	if z.Len() == 0 {
		z = mgl32.Vec3{0, 0, 1}
	}
	z = z.Normalize()

	x := up.Cross(z)
	if x.Len() == 0 {
		if absf(up.Z()) == 1 {
			z[0] += 0.0001
		} else {
			z[2] += 0.0001
		}
		z = z.Normalize()
		x = up.Cross(z)
	}
	x = x.Normalize()
	y := z.Cross(x)

	m := mgl32.Mat4FromCols(x.Vec4(0), y.Vec4(0), z.Vec4(0), mgl32.Vec4{0, 0, 0, 1})
	return mgl32.Mat4ToQuat(m).Normalize()
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
