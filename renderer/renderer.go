// Package renderer draws a scene.Scene through OpenGL 4.1 core. It must be
// created and used on the goroutine that owns the window's GL context.
package renderer

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"scene-tour/core"
	"scene-tour/scene"
)

// GPUMesh holds the OpenGL buffer objects for an uploaded mesh.
type GPUMesh struct {
	VAO        uint32
	VBO        uint32
	EBO        uint32
	IndexCount int32
	HasIndices bool
}

type uniforms struct {
	mvp, model, albedo, emissive, hasTexture, albedoTex int32
}

// Renderer is the OpenGL rendering backend.
type Renderer struct {
	program   uint32
	loc       uniforms
	gpuMeshes map[*scene.Mesh]*GPUMesh
	textures  map[*scene.Texture]struct{}
	log       core.Logger

	// per-frame stats
	lastDraws     int
	lastTriangles int
	lastCulled    int
}

// New initialises OpenGL.
// Must be called after the GLFW window context is made current.
func New(width, height int, log core.Logger) (*Renderer, error) {
	if log == nil {
		log = core.Discard
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Infof("OpenGL version: %s", gl.GoStr(gl.GetString(gl.VERSION)))

	prog, err := newProgram(vertSrc, fragSrc)
	if err != nil {
		return nil, fmt.Errorf("shader compile: %w", err)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	r := &Renderer{
		program:   prog,
		gpuMeshes: make(map[*scene.Mesh]*GPUMesh),
		textures:  make(map[*scene.Texture]struct{}),
		log:       log,
	}
	r.loc = uniforms{
		mvp:        r.uniform("mvp"),
		model:      r.uniform("model"),
		albedo:     r.uniform("albedo"),
		emissive:   r.uniform("emissive"),
		hasTexture: r.uniform("hasTexture"),
		albedoTex:  r.uniform("albedoTex"),
	}
	r.SetViewport(width, height)
	return r, nil
}

func (r *Renderer) uniform(name string) int32 {
	return gl.GetUniformLocation(r.program, gl.Str(name+"\x00"))
}

// SetViewport resizes the OpenGL viewport.
func (r *Renderer) SetViewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Render clears to the scene background and draws every visible mesh from
// the camera's point of view.
func (r *Renderer) Render(s *scene.Scene, camera *scene.Camera) {
	bg := s.Background
	gl.ClearColor(bg.R, bg.G, bg.B, bg.A)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	r.lastDraws, r.lastTriangles, r.lastCulled = 0, 0, 0
	viewProj := camera.GetViewProjectionMatrix()
	frustum := scene.FrustumFromVP(viewProj)

	gl.UseProgram(r.program)
	gl.Uniform1i(r.loc.albedoTex, 0)
	for _, node := range s.GetVisibleNodes() {
		model := node.GetWorldMatrix()
		if node.Mesh.HasLocalAABB && !frustum.Contains(node.Mesh.LocalAABB.Transform(model)) {
			r.lastCulled++
			continue
		}
		mvp := viewProj.Mul4(model)
		r.drawMesh(node.Mesh, mvp, model)
	}
	gl.BindVertexArray(0)
}

// Stats reports the last Render: draw calls, triangles and meshes skipped
// by frustum culling.
func (r *Renderer) Stats() (draws, triangles, culled int) {
	return r.lastDraws, r.lastTriangles, r.lastCulled
}

func (r *Renderer) drawMesh(mesh *scene.Mesh, mvp, model mgl32.Mat4) {
	gpu := r.ensureUploaded(mesh)
	if gpu == nil {
		return
	}

	mat := mesh.Material
	if mat == nil {
		mat = scene.DefaultMaterial()
	}

	// mgl32 matrices are column-major, matching GLSL (transpose=false).
	gl.UniformMatrix4fv(r.loc.mvp, 1, false, &mvp[0])
	gl.UniformMatrix4fv(r.loc.model, 1, false, &model[0])
	gl.Uniform4f(r.loc.albedo, mat.Albedo.R, mat.Albedo.G, mat.Albedo.B, mat.Albedo.A)
	gl.Uniform3f(r.loc.emissive, mat.Emissive.R, mat.Emissive.G, mat.Emissive.B)

	gl.ActiveTexture(gl.TEXTURE0)
	if tex := mat.AlbedoTexture; tex != nil && r.ensureTexture(tex) {
		gl.Uniform1i(r.loc.hasTexture, 1)
		gl.BindTexture(gl.TEXTURE_2D, tex.GLID)
	} else {
		gl.Uniform1i(r.loc.hasTexture, 0)
		gl.BindTexture(gl.TEXTURE_2D, 0)
	}

	if mat.DoubleSided {
		gl.Disable(gl.CULL_FACE)
	} else {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	}

	gl.BindVertexArray(gpu.VAO)
	if gpu.HasIndices {
		gl.DrawElements(gl.TRIANGLES, gpu.IndexCount, gl.UNSIGNED_INT, nil)
		r.lastTriangles += int(gpu.IndexCount) / 3
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, int32(len(mesh.Vertices)))
		r.lastTriangles += len(mesh.Vertices) / 3
	}
	r.lastDraws++
}

// ensureUploaded uploads vertex/index data if not already done.
func (r *Renderer) ensureUploaded(mesh *scene.Mesh) *GPUMesh {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		return gpu
	}
	if len(mesh.Vertices) == 0 {
		return nil
	}

	stride := int32(unsafe.Sizeof(core.Vertex{}))

	gpu := &GPUMesh{
		IndexCount: int32(len(mesh.Indices)),
		HasIndices: len(mesh.Indices) > 0,
	}

	gl.GenVertexArrays(1, &gpu.VAO)
	gl.GenBuffers(1, &gpu.VBO)
	gl.BindVertexArray(gpu.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferData(gl.ARRAY_BUFFER,
		len(mesh.Vertices)*int(stride),
		gl.Ptr(mesh.Vertices),
		gl.STATIC_DRAW)

	var v core.Vertex
	attribs := []struct {
		size   int32
		offset uintptr
	}{
		{3, unsafe.Offsetof(v.Position)},
		{3, unsafe.Offsetof(v.Normal)},
		{2, unsafe.Offsetof(v.UV)},
		{4, unsafe.Offsetof(v.Color)},
	}
	for i, a := range attribs {
		gl.EnableVertexAttribArray(uint32(i))
		gl.VertexAttribPointerWithOffset(uint32(i), a.size, gl.FLOAT, false, stride, a.offset)
	}

	if gpu.HasIndices {
		gl.GenBuffers(1, &gpu.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER,
			len(mesh.Indices)*4,
			gl.Ptr(mesh.Indices),
			gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)

	r.gpuMeshes[mesh] = gpu
	return gpu
}

// ensureTexture uploads tex on first use. A texture that fails to upload is
// remembered and drawn untextured from then on.
func (r *Renderer) ensureTexture(tex *scene.Texture) bool {
	if tex.GLID != 0 {
		return true
	}
	if _, tried := r.textures[tex]; tried {
		return false
	}
	r.textures[tex] = struct{}{}
	if err := uploadTexture(tex); err != nil {
		r.log.Warnf("texture %q: %v", tex.Name, err)
		return false
	}
	return true
}

// ReleaseMesh frees GPU buffers for the given mesh.
func (r *Renderer) ReleaseMesh(mesh *scene.Mesh) {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		gl.DeleteVertexArrays(1, &gpu.VAO)
		gl.DeleteBuffers(1, &gpu.VBO)
		if gpu.HasIndices {
			gl.DeleteBuffers(1, &gpu.EBO)
		}
		delete(r.gpuMeshes, mesh)
	}
}

// Destroy releases all GPU resources.
func (r *Renderer) Destroy() {
	for mesh := range r.gpuMeshes {
		r.ReleaseMesh(mesh)
	}
	for tex := range r.textures {
		deleteTexture(tex)
	}
	gl.DeleteProgram(r.program)
}
