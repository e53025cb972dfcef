package scene

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"scene-tour/core"
)

// GLTFResult holds the nodes and textures loaded from a .glb / .gltf file.
// Textures are uploaded lazily by the renderer the first time a mesh that
// samples them is drawn.
type GLTFResult struct {
	ID       uuid.UUID
	Path     string
	Roots    []*Node    // top-level nodes; add each with scene.AddNode(n)
	Textures []*Texture // every decoded texture, in document order
	Meshes   int        // primitives converted to meshes
}

// LoadGLTF opens a .glb or .gltf file and returns a ready-to-use scene graph.
// Broken textures and primitives are logged to log and skipped; only a
// document that cannot be opened at all is an error.
func LoadGLTF(path string, log core.Logger) (*GLTFResult, error) {
	if log == nil {
		log = core.Discard
	}
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	dir := filepath.Dir(path)
	result := &GLTFResult{ID: uuid.New(), Path: path}

	texCache := make([]*Texture, len(doc.Textures))
	for i, gt := range doc.Textures {
		if gt.Source == nil || *gt.Source >= len(doc.Images) {
			continue
		}
		tex, err := loadGLTFImage(doc, dir, *gt.Source)
		if err != nil {
			log.Warnf("gltf: image %d: %v", *gt.Source, err)
			continue
		}
		if tex != nil {
			texCache[i] = tex
			result.Textures = append(result.Textures, tex)
		}
	}

	matCache := make([]*Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		matCache[i] = convertGLTFMaterial(gm, texCache)
	}

	// meshPrims[meshIdx] = []*Mesh (one entry per primitive)
	meshPrims := make([][]*Mesh, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				log.Debugf("gltf: mesh %d prim %d: skipping non-triangle mode %d", mi, pi, prim.Mode)
				continue
			}
			m, err := loadGLTFPrimitive(doc, gm.Name, pi, *prim)
			if err != nil {
				log.Warnf("gltf: mesh %d prim %d: %v", mi, pi, err)
				continue
			}
			if prim.Material != nil && *prim.Material < len(matCache) {
				m.Material = matCache[*prim.Material]
			}
			meshPrims[mi] = append(meshPrims[mi], m)
			result.Meshes++
		}
	}

	nodes := make([]*Node, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		name := gn.Name
		if name == "" {
			name = fmt.Sprintf("node_%d", i)
		}
		n := NewNode(name)
		applyGLTFTransform(n, gn)

		if gn.Mesh != nil && *gn.Mesh < len(meshPrims) {
			prims := meshPrims[*gn.Mesh]
			switch len(prims) {
			case 0:
			case 1:
				n.Mesh = prims[0]
			default:
				// one child node per primitive
				for pi, p := range prims {
					child := NewNode(fmt.Sprintf("%s_prim%d", name, pi))
					child.Mesh = p
					n.AddChild(child)
				}
			}
		}
		nodes[i] = n
	}

	for i, gn := range doc.Nodes {
		for _, childIdx := range gn.Children {
			if childIdx < 0 || childIdx >= len(nodes) {
				log.Warnf("gltf: node %d: child index %d out of range", i, childIdx)
				continue
			}
			child := nodes[childIdx]
			// The node hierarchy must be a forest.
			if child.Parent != nil || isAncestor(child, nodes[i]) {
				log.Warnf("gltf: node %d: dropping child %d, it already has a parent or would form a cycle", i, childIdx)
				continue
			}
			nodes[i].AddChild(child)
		}
	}

	sceneIdx := -1
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		sceneIdx = *doc.Scene
	} else if len(doc.Scenes) > 0 {
		sceneIdx = 0
	}
	if sceneIdx >= 0 {
		for _, rootIdx := range doc.Scenes[sceneIdx].Nodes {
			if rootIdx >= 0 && rootIdx < len(nodes) && nodes[rootIdx].Parent == nil {
				result.Roots = append(result.Roots, nodes[rootIdx])
			}
		}
	} else {
		// No scene at all: every parentless node is a root
		for _, n := range nodes {
			if n.Parent == nil {
				result.Roots = append(result.Roots, n)
			}
		}
	}

	return result, nil
}

func applyGLTFTransform(n *Node, gn *gltf.Node) {
	if mat := gn.MatrixOrDefault(); mat != gltf.DefaultMatrix {
		var m mgl32.Mat4
		for i, v := range mat {
			m[i] = float32(v)
		}
		n.SetPosition(m.Col(3).Vec3())
		sx := m.Col(0).Vec3().Len()
		sy := m.Col(1).Vec3().Len()
		sz := m.Col(2).Vec3().Len()
		n.SetScale(mgl32.Vec3{sx, sy, sz})
		if sx == 0 || sy == 0 || sz == 0 {
			// Collapsed axis: no rotation can be recovered.
			n.SetRotation(mgl32.QuatIdent())
			return
		}
		rot := mgl32.Mat4FromCols(
			m.Col(0).Mul(1/sx), m.Col(1).Mul(1/sy), m.Col(2).Mul(1/sz), mgl32.Vec4{0, 0, 0, 1},
		)
		n.SetRotation(mgl32.Mat4ToQuat(rot).Normalize())
		return
	}

	t := gn.TranslationOrDefault()
	n.SetPosition(mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])})

	sc := gn.ScaleOrDefault()
	n.SetScale(mgl32.Vec3{float32(sc[0]), float32(sc[1]), float32(sc[2])})

	r := gn.RotationOrDefault() // [x, y, z, w]
	n.SetRotation(mgl32.Quat{
		W: float32(r[3]),
		V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])},
	})
}

// isAncestor reports whether a is n or one of its ancestors.
func isAncestor(a, n *Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == a {
			return true
		}
	}
	return false
}

func convertGLTFMaterial(gm *gltf.Material, texCache []*Texture) *Material {
	mat := DefaultMaterial()
	mat.Name = gm.Name
	mat.DoubleSided = gm.DoubleSided

	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		cf := pbr.BaseColorFactorOrDefault()
		mat.Albedo = core.Color{
			R: float32(cf[0]), G: float32(cf[1]),
			B: float32(cf[2]), A: float32(cf[3]),
		}
		if pbr.BaseColorTexture != nil {
			idx := pbr.BaseColorTexture.Index
			if idx < len(texCache) && texCache[idx] != nil {
				mat.AlbedoTexture = texCache[idx]
			}
		}
		mat.Metallic = float32(pbr.MetallicFactorOrDefault())
		mat.Roughness = float32(pbr.RoughnessFactorOrDefault())
	}

	ef := gm.EmissiveFactor
	mat.Emissive = core.Color{R: float32(ef[0]), G: float32(ef[1]), B: float32(ef[2]), A: 1}
	return mat
}

func loadGLTFImage(doc *gltf.Document, dir string, imgIdx int) (*Texture, error) {
	img := doc.Images[imgIdx]
	name := img.Name
	if name == "" {
		name = fmt.Sprintf("gltf_img_%d", imgIdx)
	}

	switch {
	case img.BufferView != nil:
		// Binary GLB: image data lives in a buffer view
		raw, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
		if err != nil {
			return nil, fmt.Errorf("bufferview: %w", err)
		}
		return DecodeTexture(name, bytes.NewReader(raw))
	case img.IsEmbeddedResource():
		raw, err := img.MarshalData()
		if err != nil {
			return nil, fmt.Errorf("data uri: %w", err)
		}
		return DecodeTexture(name, bytes.NewReader(raw))
	case img.URI != "":
		return LoadTexture(filepath.Join(dir, img.URI))
	}
	return nil, nil
}

// loadGLTFPrimitive converts one glTF mesh primitive into a scene.Mesh.
func loadGLTFPrimitive(doc *gltf.Document, meshName string, primIdx int, prim gltf.Primitive) (*Mesh, error) {
	name := fmt.Sprintf("%s_p%d", meshName, primIdx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", primIdx)
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: mgl32.Vec3{p[0], p[1], p[2]},
			Normal:   mgl32.Vec3{0, 1, 0},
			Color:    core.ColorWhite,
		}
		if i < len(normals) {
			v.Normal = mgl32.Vec3{normals[i][0], normals[i][1], normals[i][2]}
		}
		if i < len(uvs) {
			v.UV = mgl32.Vec2{uvs[i][0], uvs[i][1]}
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}

	return CreateMeshFromData(name, verts, indices), nil
}

// LoadResult is delivered once per LoadAsync call.
type LoadResult struct {
	Model *GLTFResult
	Err   error
}

// Loader parses glTF documents off the render thread.
type Loader struct {
	log core.Logger
}

func NewLoader(log core.Logger) *Loader {
	if log == nil {
		log = core.Discard
	}
	return &Loader{log: log}
}

// LoadAsync parses path on a new goroutine. The returned channel is
// buffered and receives exactly one result, so a caller that stops reading
// does not leak the goroutine. The parse itself cannot be interrupted; a
// context cancelled before it finishes only replaces the result's error.
func (l *Loader) LoadAsync(ctx context.Context, path string) <-chan LoadResult {
	out := make(chan LoadResult, 1)
	go func() {
		model, err := LoadGLTF(path, l.log)
		if err == nil && ctx.Err() != nil {
			model, err = nil, fmt.Errorf("gltf load %q: %w", path, ctx.Err())
		}
		out <- LoadResult{Model: model, Err: err}
	}()
	return out
}
