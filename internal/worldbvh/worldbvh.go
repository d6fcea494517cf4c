// Package worldbvh builds the per-query, per-tick BVH over component
// bounding boxes (spec §4.3): a binary median-split tree like
// internal/bvh, but over components instead of triangles, rebuilt
// fresh every tick so skinning and layer-mask changes are picked up
// without incremental maintenance.
package worldbvh

import (
	"github.com/resonantfield/auralcore/internal/bvh"
	"github.com/resonantfield/auralcore/internal/component"
	"github.com/resonantfield/auralcore/internal/geom"
)

const (
	maxDepth            = 30
	leafComponentCount  = 2
	leafExtent          = 1.0
)

// leaf is one component slot in the tree: the component itself, its
// listener-relative world AABB, and the baked world→local transform
// used to cast a query ray into the component's local frame.
type leaf struct {
	Component *component.Component
	Box       geom.AABB
	ToLocal   geom.Mat4
}

// node mirrors bvh.Node but indexes the Leaves slice instead of faces.
type node struct {
	Box                  geom.AABB
	Left, Right          int
	FirstLeaf, LeafCount int
}

func (n *node) isLeaf() bool { return n.Left < 0 }

// Tree is a per-tick, per-listener-position world BVH (spec §4.3).
type Tree struct {
	Nodes       []node
	Leaves      []leaf
	ListenerPos geom.Vec
}

// Build constructs a world BVH for a listening point over the given
// sound-affecting components. Box centers (and the baked per-leaf
// transform) are stored relative to listenerPos, per spec's "positions
// are stored relative to the listener to improve float precision".
func Build(listenerPos geom.Vec, components []*component.Component) *Tree {
	t := &Tree{ListenerPos: listenerPos}
	t.Leaves = make([]leaf, len(components))

	// A pure-translation matrix T(listenerPos). Baking
	// component.InverseMatrix() * T lets a query work directly in
	// listener-relative coordinates: for any world point p expressed as
	// p_rel + listenerPos, (inv*T).TransformPoint(p_rel) ==
	// inv.TransformPoint(p_rel + listenerPos), since both the linear
	// part and the parameter t of a ray origin+t*dir are preserved by
	// an affine map applied to a translated argument.
	translate := geom.NewTRS(listenerPos, geom.Vec{X: 1, Y: 1, Z: 1},
		geom.Vec{X: 1}, geom.Vec{Y: 1}, geom.Vec{Z: 1})

	for i, c := range components {
		ext := c.WorldExtents()
		box := geom.AABB{Center: geom.Sub(ext.Center, listenerPos), HalfSize: ext.HalfSize}
		t.Leaves[i] = leaf{
			Component: c,
			Box:       box,
			ToLocal:   c.InverseMatrix().Mul(translate),
		}
	}

	if len(t.Leaves) == 0 {
		t.Nodes = []node{{Left: -1, Right: -1, FirstLeaf: 0, LeafCount: 0}}
		return t
	}
	t.Nodes = make([]node, 0, 2*len(t.Leaves))
	t.build(0, len(t.Leaves), 0)
	return t
}

// RootBox returns the world BVH's root AABB (listener-relative).
func (t *Tree) RootBox() geom.AABB { return t.Nodes[0].Box }

func (t *Tree) build(lo, hi, depth int) int {
	leaves := t.Leaves[lo:hi]
	box := leafRangeBox(leaves)

	if len(leaves) <= leafComponentCount || depth >= maxDepth || centroidExtent(leaves) < leafExtent {
		idx := len(t.Nodes)
		t.Nodes = append(t.Nodes, node{Box: box, Left: -1, Right: -1, FirstLeaf: lo, LeafCount: hi - lo})
		return idx
	}

	axis, lo0, hi0 := widestCentroidAxis(leaves)
	if hi0-lo0 < geom.Epsilon {
		idx := len(t.Nodes)
		t.Nodes = append(t.Nodes, node{Box: box, Left: -1, Right: -1, FirstLeaf: lo, LeafCount: hi - lo})
		return idx
	}
	mid := (lo0 + hi0) / 2

	split := partition(leaves, axis, mid)
	if split == 0 || split == len(leaves) {
		idx := len(t.Nodes)
		t.Nodes = append(t.Nodes, node{Box: box, Left: -1, Right: -1, FirstLeaf: lo, LeafCount: hi - lo})
		return idx
	}

	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, node{Box: box})
	left := t.build(lo, lo+split, depth+1)
	right := t.build(lo+split, hi, depth+1)
	t.Nodes[idx].Left = left
	t.Nodes[idx].Right = right
	return idx
}

func partition(leaves []leaf, axis int, mid float64) int {
	i, j := 0, len(leaves)-1
	for i <= j {
		for i <= j && geom.Component(leaves[i].Box.Center, axis) < mid {
			i++
		}
		for i <= j && geom.Component(leaves[j].Box.Center, axis) >= mid {
			j--
		}
		if i < j {
			leaves[i], leaves[j] = leaves[j], leaves[i]
			i++
			j--
		}
	}
	return i
}

func leafRangeBox(leaves []leaf) geom.AABB {
	box := leaves[0].Box
	for _, l := range leaves[1:] {
		box = box.Union(l.Box)
	}
	return box
}

func centroidExtent(leaves []leaf) float64 {
	_, lo, hi := widestCentroidAxis(leaves)
	return hi - lo
}

func widestCentroidAxis(leaves []leaf) (axis int, lo, hi float64) {
	min := leaves[0].Box.Center
	max := min
	for _, l := range leaves[1:] {
		c := l.Box.Center
		min = geom.Min(min, c)
		max = geom.Max(max, c)
	}
	dx := max.X - min.X
	dy := max.Y - min.Y
	dz := max.Z - min.Z
	switch {
	case dx >= dy && dx >= dz:
		return 0, min.X, max.X
	case dy >= dx && dy >= dz:
		return 1, min.Y, max.Y
	default:
		return 2, min.Z, max.Z
	}
}

func orderChildren(t *Tree, n *node, origin, dir geom.Vec) (first, second int) {
	lc := &t.Nodes[n.Left]
	rc := &t.Nodes[n.Right]
	ld := geom.Dot(geom.Sub(lc.Box.Center, origin), dir)
	rd := geom.Dot(geom.Sub(rc.Box.Center, origin), dir)
	if ld <= rd {
		return n.Left, n.Right
	}
	return n.Right, n.Left
}

func modelTree(c *component.Component) *bvh.Tree {
	if c.IsSkinned() {
		return c.SkinBVH()
	}
	return c.Model.BVH()
}
