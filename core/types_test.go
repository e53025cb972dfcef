package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestTransformMatrixOrder(t *testing.T) {
	tr := NewTransform()
	tr.Position = mgl32.Vec3{1, 0, 0}
	tr.Rotation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	tr.Scale = mgl32.Vec3{2, 2, 2}

	// scale, then rotate +X onto -Z, then translate
	p := mgl32.TransformCoordinate(mgl32.Vec3{1, 0, 0}, tr.GetMatrix())
	assert.True(t, p.ApproxEqualThreshold(mgl32.Vec3{1, 0, -2}, 1e-5), "got %v", p)
}

func TestTransformAxes(t *testing.T) {
	tr := NewTransform()
	assert.Equal(t, mgl32.Vec3{0, 0, -1}, tr.GetForward())
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, tr.GetRight())
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, tr.GetUp())

	tr.Rotation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	assert.True(t, tr.GetForward().ApproxEqualThreshold(mgl32.Vec3{-1, 0, 0}, 1e-6))
	assert.True(t, tr.GetRight().ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-6))
}
