// Package sceneio loads a small JSON scene fixture for demos and
// tests: a handful of named models (faces + texture coefficients)
// placed as components, plus a listener and source position. It is
// not part of the engine's external interface — the embedding audio
// module owns real scene-graph plumbing; this package only exists to
// feed cmd/auralctl and integration tests something to point the
// probe at.
//
// Grounded on internal/audio/decoder.go's Metadata: parse into an
// anonymous JSON-shaped struct, then build the caller's real types
// from it, wrapping parse errors with fmt.Errorf %w.
package sceneio

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/resonantfield/auralcore/internal/component"
	"github.com/resonantfield/auralcore/internal/geom"
	"github.com/resonantfield/auralcore/internal/material"
)

type vec3 [3]float64

func (v vec3) toVec() geom.Vec { return geom.Vec{X: v[0], Y: v[1], Z: v[2]} }

type bands3 [3]float64

func (b bands3) toBands() material.Bands { return material.Bands{b[0], b[1], b[2]} }

type jsonTexture struct {
	Name       string `json:"name"`
	Absorption bands3 `json:"absorption"`
	Thickness  bands3 `json:"thickness"`
}

type jsonFace struct {
	V0      vec3 `json:"v0"`
	V1      vec3 `json:"v1"`
	V2      vec3 `json:"v2"`
	Texture int  `json:"texture"`
}

type jsonModel struct {
	Name     string        `json:"name"`
	Faces    []jsonFace    `json:"faces"`
	Textures []jsonTexture `json:"textures"`
}

type jsonComponent struct {
	Model       string `json:"model"`
	Translation vec3   `json:"translation"`
	Scale       vec3   `json:"scale"`
	Right       vec3   `json:"right"`
	Up          vec3   `json:"up"`
	Forward     vec3   `json:"forward"`
	LayerMask   uint32 `json:"layerMask"`
}

type jsonScene struct {
	Models     []jsonModel     `json:"models"`
	Components []jsonComponent `json:"components"`
	Listener   vec3            `json:"listener"`
	Source     vec3            `json:"source"`
}

// Scene is a fully constructed demo/test scene: models built into
// component.Model instances, placed as component.Component instances,
// and a listener/source position.
type Scene struct {
	Models     map[string]*component.Model
	Components []*component.Component
	Listener   geom.Vec
	Source     geom.Vec
}

// Load reads and parses a scene fixture from path.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sceneio: failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a Scene from raw JSON scene-fixture bytes.
func Parse(data []byte) (*Scene, error) {
	var js jsonScene
	if err := json.Unmarshal(data, &js); err != nil {
		return nil, fmt.Errorf("sceneio: failed to parse scene: %w", err)
	}

	scene := &Scene{
		Models:   make(map[string]*component.Model, len(js.Models)),
		Listener: js.Listener.toVec(),
		Source:   js.Source.toVec(),
	}

	for _, m := range js.Models {
		faces := make([]geom.Face, len(m.Faces))
		for i, f := range m.Faces {
			faces[i] = geom.NewFace(f.V0.toVec(), f.V1.toVec(), f.V2.toVec(), i, f.Texture)
		}

		textures := make([]component.Texture, len(m.Textures))
		for i, t := range m.Textures {
			coeff := material.Coefficients{
				Absorption: t.Absorption.toBands(),
				Thickness:  t.Thickness.toBands(),
			}.Clamp()
			textures[i] = component.NewTexture(t.Name, coeff)
		}

		scene.Models[m.Name] = component.NewModel(m.Name, faces, textures)
	}

	for _, c := range js.Components {
		model, ok := scene.Models[c.Model]
		if !ok {
			return nil, fmt.Errorf("sceneio: component references unknown model %q", c.Model)
		}

		scale := c.Scale
		if scale == (vec3{}) {
			scale = vec3{1, 1, 1}
		}
		right, up, forward := c.Right, c.Up, c.Forward
		if right == (vec3{}) && up == (vec3{}) && forward == (vec3{}) {
			right, up, forward = vec3{1, 0, 0}, vec3{0, 1, 0}, vec3{0, 0, 1}
		}

		inst := component.NewComponent(model, c.Translation.toVec(), scale.toVec(),
			right.toVec(), up.toVec(), forward.toVec(), c.LayerMask)
		scene.Components = append(scene.Components, inst)
	}

	return scene, nil
}
