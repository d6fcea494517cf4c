package worldbvh

import (
	"sort"

	"github.com/resonantfield/auralcore/internal/bvh"
	"github.com/resonantfield/auralcore/internal/component"
	"github.com/resonantfield/auralcore/internal/geom"
)

// Hit extends a local-space geometry hit with the world component it
// was found on.
type Hit struct {
	geom.Hit
	Component *component.Component
}

// modelHits returns every hit along the listener-relative ray
// (origin, dir, limit) against leaf's model (or skin) geometry, routed
// through the component's model-level ray cache (spec §4.6) when the
// component isn't skinned this tick.
//
// The cache keys on a unit direction and stores lu = t*|localDirRaw|,
// the distance parametrized in the model's local frame, so a query
// and a later insert agree on fingerprint regardless of the
// component's scale. Converting a cached hit's Distance back to the
// listener-relative world distance only needs dividing by
// s = |localDirRaw|, since t = lu/s.
func modelHits(l *leaf, origin, dir geom.Vec, limit float64) []geom.Hit {
	tree := modelTree(l.Component)
	if tree == nil {
		return nil
	}

	localOrigin := l.ToLocal.TransformPoint(origin)
	localDirRaw := l.ToLocal.TransformDirection(dir)
	s := geom.Norm(localDirRaw)
	if s < geom.Epsilon {
		return nil
	}
	unitLocalDir := geom.Scale(1/s, localDirRaw)
	localLimit := limit * s

	if l.Component.IsSkinned() {
		return rescaleHits(bvh.AllHits(tree, localOrigin, unitLocalDir, localLimit), s)
	}

	cache := l.Component.Model.RayCache()
	if hits, ok := cache.Find(localOrigin, unitLocalDir, localLimit); ok {
		return rescaleHits(hits, s)
	}
	hits := bvh.AllHits(tree, localOrigin, unitLocalDir, localLimit)
	cache.Insert(localOrigin, unitLocalDir, localLimit, hits)
	return rescaleHits(hits, s)
}

func rescaleHits(hits []geom.Hit, s float64) []geom.Hit {
	out := make([]geom.Hit, len(hits))
	for i, h := range hits {
		h.Distance /= s
		out[i] = h
	}
	return out
}

// Blocked reports whether any forward-facing hit exists within limit on
// any candidate component whose material has nonzero absorption in any
// band (spec §4.2/§4.4 step "look up the material for the hit face").
func Blocked(t *Tree, origin, dir geom.Vec, limit float64) bool {
	invDir := geom.InvDir(dir)
	return blockedNode(t, 0, origin, dir, invDir, limit)
}

func blockedNode(t *Tree, idx int, origin, dir, invDir geom.Vec, limit float64) bool {
	n := &t.Nodes[idx]
	if !n.Box.IntersectRay(origin, invDir, limit) {
		return false
	}
	if n.isLeaf() {
		for i := n.FirstLeaf; i < n.FirstLeaf+n.LeafCount; i++ {
			l := &t.Leaves[i]
			for _, h := range modelHits(l, origin, dir, limit) {
				if !h.Front {
					continue
				}
				if l.Component.Coefficients(h.Face.TextureIndex).Absorption.Max() > 0 {
					return true
				}
			}
		}
		return false
	}
	first, second := orderChildren(t, n, origin, dir)
	if blockedNode(t, first, origin, dir, invDir, limit) {
		return true
	}
	return blockedNode(t, second, origin, dir, invDir, limit)
}

// Closest finds the nearest forward-facing hit across every candidate
// component within limit (spec §4.3).
func Closest(t *Tree, origin, dir geom.Vec, limit float64) (Hit, bool) {
	invDir := geom.InvDir(dir)
	best := Hit{}
	found := false
	limitDistance := limit
	closestNode(t, 0, origin, dir, invDir, &limitDistance, &best, &found)
	return best, found
}

func closestNode(t *Tree, idx int, origin, dir, invDir geom.Vec, limitDistance *float64, best *Hit, found *bool) {
	n := &t.Nodes[idx]
	if !n.Box.IntersectRay(origin, invDir, *limitDistance) {
		return
	}
	if n.isLeaf() {
		for i := n.FirstLeaf; i < n.FirstLeaf+n.LeafCount; i++ {
			l := &t.Leaves[i]
			for _, h := range modelHits(l, origin, dir, *limitDistance) {
				if !h.Front {
					continue
				}
				if h.Distance < *limitDistance {
					*best = Hit{Hit: h, Component: l.Component}
					*found = true
					*limitDistance = h.Distance
				}
			}
		}
		return
	}
	first, second := orderChildren(t, n, origin, dir)
	closestNode(t, first, origin, dir, invDir, limitDistance, best, found)
	closestNode(t, second, origin, dir, invDir, limitDistance, best, found)
}

// AllHits returns every hit within limit across all candidate
// components, sorted by ascending distance.
func AllHits(t *Tree, origin, dir geom.Vec, limit float64) []Hit {
	invDir := geom.InvDir(dir)
	var hits []Hit
	allHitsNode(t, 0, origin, dir, invDir, limit, &hits)
	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

func allHitsNode(t *Tree, idx int, origin, dir, invDir geom.Vec, limit float64, hits *[]Hit) {
	n := &t.Nodes[idx]
	if !n.Box.IntersectRay(origin, invDir, limit) {
		return
	}
	if n.isLeaf() {
		for i := n.FirstLeaf; i < n.FirstLeaf+n.LeafCount; i++ {
			l := &t.Leaves[i]
			for _, h := range modelHits(l, origin, dir, limit) {
				*hits = append(*hits, Hit{Hit: h, Component: l.Component})
			}
		}
		return
	}
	first, second := orderChildren(t, n, origin, dir)
	allHitsNode(t, first, origin, dir, invDir, limit, hits)
	allHitsNode(t, second, origin, dir, invDir, limit, hits)
}
