package scene

import "scene-tour/core"

// Material is the subset of glTF metallic-roughness the viewer shades with.
type Material struct {
	Name          string
	Albedo        core.Color // multiplied with AlbedoTexture if set
	AlbedoTexture *Texture
	Metallic      float32
	Roughness     float32
	Emissive      core.Color
	DoubleSided   bool
}

// DefaultMaterial returns a plain white matte material.
func DefaultMaterial() *Material {
	return &Material{
		Name:      "Default",
		Albedo:    core.ColorWhite,
		Metallic:  1,
		Roughness: 1,
		Emissive:  core.Color{A: 1},
	}
}
