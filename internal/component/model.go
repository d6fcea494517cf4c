package component

import (
	"sync"

	"github.com/resonantfield/auralcore/internal/bvh"
	"github.com/resonantfield/auralcore/internal/geom"
	"github.com/resonantfield/auralcore/internal/raycache"
)

// Model is a read-only triangle list in local space shared by many
// component instances (spec §3). It owns nothing that depends on
// instance transform: placement, scale and texture overrides live on
// Component.
//
// The BVH is built lazily on first use and then lives as long as the
// model; the ray cache persists across ticks. Both are guarded the way
// the teacher's FeatureStore guards its lazily-populated maps
// (internal/analysis/db.go), via a RWMutex taken only to check/set the
// cached BVH pointer.
type Model struct {
	Name     string
	Faces    []geom.Face // local space, immutable after construction
	Textures []Texture

	mu       sync.RWMutex
	tree     *bvh.Tree
	cache    *raycache.Cache
}

// NewModel constructs a model from its local-space faces and texture
// slots. faces is taken by reference and must not be mutated afterward.
func NewModel(name string, faces []geom.Face, textures []Texture) *Model {
	return &Model{
		Name:     name,
		Faces:    faces,
		Textures: textures,
		cache:    raycache.New(),
	}
}

// BVH returns the model's per-model BVH, building it on first call.
// Safe for concurrent callers; the build itself runs at most once.
func (m *Model) BVH() *bvh.Tree {
	m.mu.RLock()
	t := m.tree
	m.mu.RUnlock()
	if t != nil {
		return t
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tree == nil {
		// Build consumes and reorders a copy of Faces so Model.Faces
		// itself stays in original (source) order for diagnostics.
		faces := make([]geom.Face, len(m.Faces))
		copy(faces, m.Faces)
		m.tree = bvh.Build(faces)
	}
	return m.tree
}

// RayCache returns the model's persistent ray cache.
func (m *Model) RayCache() *raycache.Cache { return m.cache }

// Texture returns the texture at index and true, or a zero Texture and
// false if the index is out of range. Component.Coefficients falls back
// to material.NoEffect when neither an override nor the model maps an
// index.
func (m *Model) Texture(index int) (Texture, bool) {
	if index < 0 || index >= len(m.Textures) {
		return Texture{}, false
	}
	return m.Textures[index], true
}

// InvalidateBVH discards the cached BVH, forcing a rebuild on next use.
// Used when a model's face data changes out from under it (skinned
// models rebuild their own per-component BVH instead; this exists for
// completeness / tests).
func (m *Model) InvalidateBVH() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tree = nil
}
