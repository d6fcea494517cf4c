package bvh

import (
	"sort"

	"github.com/resonantfield/auralcore/internal/geom"
)

// Blocked reports whether any forward-facing hit exists within limit
// whose face has nonzero absorption in any band, per affects(face). The
// caller supplies affects so the BVH stays material-agnostic; a nil
// affects counts every hit. Only front-facing hits (dot(normal, dir) < 0)
// are considered.
func Blocked(t *Tree, origin, dir geom.Vec, limit float64, affects func(*geom.Face) bool) bool {
	invDir := geom.InvDir(dir)
	return blockedNode(t, 0, origin, dir, invDir, limit, affects)
}

func blockedNode(t *Tree, idx int, origin, dir, invDir geom.Vec, limit float64, affects func(*geom.Face) bool) bool {
	n := &t.Nodes[idx]
	if !n.Box.IntersectRay(origin, invDir, limit) {
		return false
	}
	if n.isLeaf() {
		for i := n.FirstFace; i < n.FirstFace+n.FaceCount; i++ {
			f := &t.Faces[i]
			hit, ok := f.Intersect(origin, dir, limit)
			if !ok || !hit.Front {
				continue
			}
			if affects == nil || affects(f) {
				return true
			}
		}
		return false
	}
	first, second := orderChildren(t, n, origin, dir)
	if blockedNode(t, first, origin, dir, invDir, limit, affects) {
		return true
	}
	return blockedNode(t, second, origin, dir, invDir, limit, affects)
}

// Closest returns the nearest front-facing hit within limit, tightening
// its search bound as hits are found (spec §4.2).
func Closest(t *Tree, origin, dir geom.Vec, limit float64) (geom.Hit, bool) {
	invDir := geom.InvDir(dir)
	best := geom.Hit{}
	found := false
	limitDistance := limit
	closestNode(t, 0, origin, dir, invDir, &limitDistance, &best, &found)
	return best, found
}

func closestNode(t *Tree, idx int, origin, dir, invDir geom.Vec, limitDistance *float64, best *geom.Hit, found *bool) {
	n := &t.Nodes[idx]
	if !n.Box.IntersectRay(origin, invDir, *limitDistance) {
		return
	}
	if n.isLeaf() {
		for i := n.FirstFace; i < n.FirstFace+n.FaceCount; i++ {
			f := &t.Faces[i]
			hit, ok := f.Intersect(origin, dir, *limitDistance)
			if !ok || !hit.Front {
				continue
			}
			if hit.Distance < *limitDistance {
				*best = hit
				*found = true
				*limitDistance = hit.Distance
			}
		}
		return
	}
	first, second := orderChildren(t, n, origin, dir)
	closestNode(t, first, origin, dir, invDir, limitDistance, best, found)
	closestNode(t, second, origin, dir, invDir, limitDistance, best, found)
}

// AllHits appends every hit (front and back) within limit, sorted by
// ascending distance.
func AllHits(t *Tree, origin, dir geom.Vec, limit float64) []geom.Hit {
	invDir := geom.InvDir(dir)
	var hits []geom.Hit
	allHitsNode(t, 0, origin, dir, invDir, limit, &hits)
	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

func allHitsNode(t *Tree, idx int, origin, dir, invDir geom.Vec, limit float64, hits *[]geom.Hit) {
	n := &t.Nodes[idx]
	if !n.Box.IntersectRay(origin, invDir, limit) {
		return
	}
	if n.isLeaf() {
		for i := n.FirstFace; i < n.FirstFace+n.FaceCount; i++ {
			f := &t.Faces[i]
			if hit, ok := f.Intersect(origin, dir, limit); ok {
				*hits = append(*hits, hit)
			}
		}
		return
	}
	first, second := orderChildren(t, n, origin, dir)
	allHitsNode(t, first, origin, dir, invDir, limit, hits)
	allHitsNode(t, second, origin, dir, invDir, limit, hits)
}

// orderChildren returns a node's children ordered so the child whose
// center lies closer along dir from origin is visited first (spec
// §4.2), an early-out heuristic for Blocked/Closest.
func orderChildren(t *Tree, n *Node, origin, dir geom.Vec) (first, second int) {
	lc := &t.Nodes[n.Left]
	rc := &t.Nodes[n.Right]
	ld := geom.Dot(geom.Sub(lc.Box.Center, origin), dir)
	rd := geom.Dot(geom.Sub(rc.Box.Center, origin), dir)
	if ld <= rd {
		return n.Left, n.Right
	}
	return n.Right, n.Left
}
