// Package bvh builds and traverses a binary bounding-volume hierarchy
// over a flat face array (spec §4.1). The recursive median-split shape
// mirrors the teacher's community-detection divide step in
// internal/analysis/communities.go (now removed — its recursive
// partition-and-recurse structure survives here, retargeted from graph
// edges to triangle centroids).
package bvh

import "github.com/resonantfield/auralcore/internal/geom"

// maxDepth bounds recursion for stack safety (spec §4.1).
const maxDepth = 30

// leafFaceCount is the face-count leaf threshold.
const leafFaceCount = 2

// leafExtent is the centroid-extent leaf threshold, in meters.
const leafExtent = 0.1

// Node is one BVH node. Internal nodes have Left/Right >= 0 indexing
// into the tree's Nodes slice; leaves have Left == Right == -1 and
// describe a face range via FirstFace/FaceCount.
type Node struct {
	Box        geom.AABB
	Left       int
	Right      int
	FirstFace  int
	FaceCount  int
}

func (n *Node) isLeaf() bool { return n.Left < 0 }

// RootBox returns the AABB of the whole tree.
func (t *Tree) RootBox() geom.AABB { return t.Nodes[0].Box }

// Tree is an immutable per-model BVH. Build is not safe to call
// concurrently with itself or with Visit; once built, Visit is safe for
// any number of concurrent callers (spec §4.1, §5).
type Tree struct {
	Nodes []Node
	Faces []geom.Face
}

// Build constructs a BVH over faces, reordering faces in place so that
// leaves reference contiguous ranges.
func Build(faces []geom.Face) *Tree {
	t := &Tree{Faces: faces}
	if len(faces) == 0 {
		t.Nodes = []Node{{Left: -1, Right: -1, FirstFace: 0, FaceCount: 0}}
		return t
	}
	t.Nodes = make([]Node, 0, 2*len(faces))
	t.build(0, len(faces), 0)
	return t
}

// build recursively partitions Faces[lo:hi], appending nodes, and
// returns the index of the node it created.
func (t *Tree) build(lo, hi, depth int) int {
	faces := t.Faces[lo:hi]
	box := faceRangeBox(faces)

	if len(faces) <= leafFaceCount || depth >= maxDepth || centroidExtent(faces) < leafExtent {
		idx := len(t.Nodes)
		t.Nodes = append(t.Nodes, Node{Box: box, Left: -1, Right: -1, FirstFace: lo, FaceCount: hi - lo})
		return idx
	}

	axis, lo0, hi0 := widestCentroidAxis(faces)
	if hi0-lo0 < geom.Epsilon {
		idx := len(t.Nodes)
		t.Nodes = append(t.Nodes, Node{Box: box, Left: -1, Right: -1, FirstFace: lo, FaceCount: hi - lo})
		return idx
	}
	mid := (lo0 + hi0) / 2

	split := partition(faces, axis, mid)
	if split == 0 || split == len(faces) {
		idx := len(t.Nodes)
		t.Nodes = append(t.Nodes, Node{Box: box, Left: -1, Right: -1, FirstFace: lo, FaceCount: hi - lo})
		return idx
	}

	// Reserve this node's slot before recursing so children know their
	// parent's position is fixed, then patch Left/Right in afterward.
	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{Box: box})
	left := t.build(lo, lo+split, depth+1)
	right := t.build(lo+split, hi, depth+1)
	t.Nodes[idx].Left = left
	t.Nodes[idx].Right = right
	return idx
}

// partition reorders faces[lo:hi] (a slice view, mutating the backing
// Faces array) so that every face with centroid[axis] < mid comes
// before every face with centroid[axis] >= mid, and returns the split
// point.
func partition(faces []geom.Face, axis int, mid float64) int {
	i, j := 0, len(faces)-1
	for i <= j {
		for i <= j && geom.Component(faces[i].Centroid(), axis) < mid {
			i++
		}
		for i <= j && geom.Component(faces[j].Centroid(), axis) >= mid {
			j--
		}
		if i < j {
			faces[i], faces[j] = faces[j], faces[i]
			i++
			j--
		}
	}
	return i
}

func faceRangeBox(faces []geom.Face) geom.AABB {
	box := faces[0].AABB()
	for _, f := range faces[1:] {
		box = box.Union(f.AABB())
	}
	return box
}

// centroidExtent returns the largest per-axis centroid range.
func centroidExtent(faces []geom.Face) float64 {
	_, lo, hi := widestCentroidAxis(faces)
	return hi - lo
}

// widestCentroidAxis returns the axis (0=X,1=Y,2=Z) with the largest
// centroid range, and that range's [lo, hi) bounds.
func widestCentroidAxis(faces []geom.Face) (axis int, lo, hi float64) {
	min := faces[0].Centroid()
	max := min
	for _, f := range faces[1:] {
		c := f.Centroid()
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
