package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"scene-tour/core"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max mgl32.Vec3
}

func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) Union(o AABB) AABB {
	return AABB{
		Min: mgl32.Vec3{minf(b.Min[0], o.Min[0]), minf(b.Min[1], o.Min[1]), minf(b.Min[2], o.Min[2])},
		Max: mgl32.Vec3{maxf(b.Max[0], o.Max[0]), maxf(b.Max[1], o.Max[1]), maxf(b.Max[2], o.Max[2])},
	}
}

// Transform returns the box around the eight transformed corners.
func (b AABB) Transform(m mgl32.Mat4) AABB {
	var out AABB
	for i := 0; i < 8; i++ {
		corner := mgl32.Vec3{b.Min[0], b.Min[1], b.Min[2]}
		if i&1 != 0 {
			corner[0] = b.Max[0]
		}
		if i&2 != 0 {
			corner[1] = b.Max[1]
		}
		if i&4 != 0 {
			corner[2] = b.Max[2]
		}
		p := mgl32.TransformCoordinate(corner, m)
		if i == 0 {
			out = AABB{Min: p, Max: p}
			continue
		}
		out = out.Union(AABB{Min: p, Max: p})
	}
	return out
}

// Mesh holds CPU-side vertex/index data.
// GPU upload is managed by the renderer backend.
type Mesh struct {
	Name     string
	Vertices []core.Vertex
	Indices  []uint32

	// Cached local-space AABB (computed by CreateMeshFromData).
	LocalAABB    AABB
	HasLocalAABB bool

	// Material holds surface shading properties. If nil, DefaultMaterial() is used.
	Material *Material
}

// CreateMeshFromData builds a Mesh and pre-computes its local-space AABB.
func CreateMeshFromData(name string, vertices []core.Vertex, indices []uint32) *Mesh {
	m := &Mesh{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
	}
	if len(vertices) > 0 {
		m.LocalAABB = computeLocalAABB(vertices)
		m.HasLocalAABB = true
	}
	return m
}

func computeLocalAABB(vertices []core.Vertex) AABB {
	box := AABB{Min: vertices[0].Position, Max: vertices[0].Position}
	for _, v := range vertices[1:] {
		box = box.Union(AABB{Min: v.Position, Max: v.Position})
	}
	return box
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
