package component

import (
	"sync"

	"github.com/resonantfield/auralcore/internal/bvh"
	"github.com/resonantfield/auralcore/internal/geom"
	"github.com/resonantfield/auralcore/internal/material"
)

// Component is an instance of a Model placed in the world (spec §3):
// position/orientation/scale, a layer mask, per-texture coefficient
// overrides, world-space extents, and — for skinned components — an
// owned dynamic BVH rebuilt each frame from fresh skin-deformed faces.
type Component struct {
	Model     *Model
	LayerMask uint32

	mu          sync.RWMutex
	matrix      geom.Mat4
	inverse     geom.Mat4
	extents     geom.AABB
	overrides   map[int]material.Coefficients
	skinFaces   []geom.Face
	skinTree    *bvh.Tree
	affects     bool
}

// NewComponent places model in the world with the given translation,
// per-axis scale and orientation basis (right, up, forward — must be
// orthonormal).
func NewComponent(model *Model, translation, scale, right, up, forward geom.Vec, layerMask uint32) *Component {
	c := &Component{
		Model:     model,
		LayerMask: layerMask,
		overrides: make(map[int]material.Coefficients),
	}
	c.SetTransform(translation, scale, right, up, forward)

	c.mu.Lock()
	c.affects = c.computeAffectsLocked()
	c.mu.Unlock()

	return c
}

// SetTransform recomputes the component's world/local matrices, its
// algebraic inverse (spec §3 invariant: "a component's inverse matrix
// is the exact algebraic inverse of its matrix"), and its world-space
// extents from the model's local-space faces (or the current skin
// faces, if any).
func (c *Component) SetTransform(translation, scale, right, up, forward geom.Vec) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.matrix = geom.NewTRS(translation, scale, right, up, forward)
	c.inverse = c.matrix.Inverse()
	c.recomputeExtentsLocked()
}

// Matrix returns the component's local→world transform.
func (c *Component) Matrix() geom.Mat4 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.matrix
}

// InverseMatrix returns the component's world→local transform.
func (c *Component) InverseMatrix() geom.Mat4 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inverse
}

// WorldExtents returns the component's world-space AABB, including the
// current frame's skin deformation if any (spec §3 invariant).
func (c *Component) WorldExtents() geom.AABB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.extents
}

// SetOverride replaces the material coefficients a component uses for
// texture index, in place of the model's own texture at that slot.
func (c *Component) SetOverride(textureIndex int, coeff material.Coefficients) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overrides[textureIndex] = coeff.Clamp()
	c.affects = c.computeAffectsLocked()
}

// Coefficients returns the effective per-band coefficients a face with
// the given texture index should use: an instance override if present,
// else the model's own texture, else material.NoEffect if neither maps
// the index. The ray visitors do not discard hits on unmapped faces:
// such a hit is still reported, and callers see NoEffect coefficients
// for it (no absorption, no transmission loss).
func (c *Component) Coefficients(textureIndex int) material.Coefficients {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.coefficientsLocked(textureIndex)
}

func (c *Component) coefficientsLocked(textureIndex int) material.Coefficients {
	if ov, ok := c.overrides[textureIndex]; ok {
		return ov
	}
	if tex, ok := c.Model.Texture(textureIndex); ok {
		return tex.Coefficients
	}
	return material.NoEffect
}

// AffectsSound reports whether any texture this component uses (its
// own overrides, falling back to the model's textures) has non-zero
// absorption or finite transmission thickness in any band (spec §3).
func (c *Component) AffectsSound() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.affects
}

func (c *Component) computeAffectsLocked() bool {
	for i := range c.Model.Textures {
		if c.coefficientsLocked(i).AffectsSound() {
			return true
		}
	}
	for i := range c.overrides {
		if c.coefficientsLocked(i).AffectsSound() {
			return true
		}
	}
	return false
}

// UpdateSkin replaces the component's per-frame skin-deformed faces,
// given in the component's local space like the model's own static
// faces, and rebuilds its dynamic BVH. Called once per frame, before
// the tick's WorldBVH is built, by the animation pipeline — outside
// the scope of this engine (spec §4.1, "per-component skin-deformed
// geometry"). worldbvh's ray traversal transforms every query into
// local space before testing it against this BVH, skinned or not, so
// skin-deformed faces must stay in the same frame the static model
// faces use.
func (c *Component) UpdateSkin(localFaces []geom.Face) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skinFaces = localFaces
	c.skinTree = bvh.Build(localFaces)
	c.recomputeExtentsLocked()
}

// SkinBVH returns the component's dynamic, skin-deformed BVH, or nil if
// the component is not skinned.
func (c *Component) SkinBVH() *bvh.Tree {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.skinTree
}

// IsSkinned reports whether the component owns a dynamic BVH.
func (c *Component) IsSkinned() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.skinTree != nil
}

// recomputeExtentsLocked recomputes world-space extents from the
// component's local-space faces — the current skin faces if any, else
// the model's own — each vertex transformed through the component
// matrix. Callers must hold c.mu for writing.
func (c *Component) recomputeExtentsLocked() {
	faces := c.skinFaces
	if len(faces) == 0 {
		faces = c.Model.Faces
	}
	if len(faces) == 0 {
		c.extents = geom.AABB{Center: c.matrix.TransformPoint(geom.Vec{})}
		return
	}
	var pts []geom.Vec
	for _, f := range faces {
		for _, v := range f.Vertices {
			pts = append(pts, c.matrix.TransformPoint(v))
		}
	}
	c.extents = geom.UnionPoints(pts...)
}
