package scene

import (
	"scene-tour/core"
)

// Scene is the graph root handed to the renderer.
type Scene struct {
	Root       *Node
	Background core.Color
}

func NewScene() *Scene {
	return &Scene{
		Root:       NewNode("Root"),
		Background: core.ColorBlack,
	}
}

func (s *Scene) AddNode(node *Node) {
	s.Root.AddChild(node)
}

// GetVisibleNodes returns all nodes with meshes whose whole ancestor chain
// is visible.
func (s *Scene) GetVisibleNodes() []*Node {
	var visible []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if !n.Visible {
			return
		}
		if n.Mesh != nil {
			visible = append(visible, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(s.Root)
	return visible
}

// Bounds returns the world-space box around every visible mesh. ok is false
// for a scene with no geometry.
func (s *Scene) Bounds() (box AABB, ok bool) {
	for _, n := range s.GetVisibleNodes() {
		if !n.Mesh.HasLocalAABB {
			continue
		}
		b := n.Mesh.LocalAABB.Transform(n.GetWorldMatrix())
		if !ok {
			box, ok = b, true
			continue
		}
		box = box.Union(b)
	}
	return box, ok
}
