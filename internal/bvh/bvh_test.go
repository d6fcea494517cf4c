package bvh

import (
	"testing"

	"github.com/resonantfield/auralcore/internal/geom"
)

func gridFaces(n int) []geom.Face {
	faces := make([]geom.Face, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x := float64(i)
			z := float64(j)
			faces = append(faces, geom.NewFace(
				geom.Vec{X: x, Y: 0, Z: z},
				geom.Vec{X: x, Y: 0, Z: z + 1},
				geom.Vec{X: x + 1, Y: 0, Z: z},
				len(faces), 0,
			))
		}
	}
	return faces
}

func TestBuildLeavesContainAllFaces(t *testing.T) {
	faces := gridFaces(6)
	total := len(faces)
	tree := Build(faces)

	var count int
	var walk func(idx int)
	walk = func(idx int) {
		n := &tree.Nodes[idx]
		if n.isLeaf() {
			count += n.FaceCount
			if n.FaceCount > leafFaceCount {
				// still permitted if extent-bounded, but grid faces are
				// far from the 0.1m extent leaf threshold so this would
				// indicate a bug in the split logic.
				t.Errorf("leaf with %d faces exceeds threshold", n.FaceCount)
			}
			return
		}
		walk(n.Left)
		walk(n.Right)
	}
	walk(0)

	if count != total {
		t.Fatalf("leaves cover %d faces, want %d", count, total)
	}
}

func TestBuildNodeBoxesContainChildren(t *testing.T) {
	faces := gridFaces(5)
	tree := Build(faces)

	var walk func(idx int)
	walk = func(idx int) {
		n := &tree.Nodes[idx]
		if n.isLeaf() {
			return
		}
		lc, rc := &tree.Nodes[n.Left], &tree.Nodes[n.Right]
		if !n.Box.Contains(lc.Box) {
			t.Errorf("node %d box does not contain left child box", idx)
		}
		if !n.Box.Contains(rc.Box) {
			t.Errorf("node %d box does not contain right child box", idx)
		}
		walk(n.Left)
		walk(n.Right)
	}
	walk(0)
}

func TestClosestFindsNearestFrontFace(t *testing.T) {
	faces := gridFaces(4)
	tree := Build(faces)

	origin := geom.Vec{X: 1.5, Y: 5, Z: 1.5}
	dir := geom.Vec{X: 0, Y: -1, Z: 0}
	hit, ok := Closest(tree, origin, dir, 100)
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.Distance <= 0 || hit.Distance > 5 {
		t.Errorf("unexpected distance %v", hit.Distance)
	}
}

func TestAllHitsSortedByDistance(t *testing.T) {
	faces := gridFaces(3)
	tree := Build(faces)
	origin := geom.Vec{X: 1, Y: -5, Z: 1}
	dir := geom.Vec{X: 0, Y: 1, Z: 0}
	hits := AllHits(tree, origin, dir, 100)
	for i := 1; i < len(hits); i++ {
		if hits[i].Distance < hits[i-1].Distance {
			t.Fatalf("hits not sorted: %v before %v", hits[i-1].Distance, hits[i].Distance)
		}
	}
}

func TestBlockedMissWhenNoMaterialAffectsSound(t *testing.T) {
	faces := gridFaces(3)
	tree := Build(faces)
	origin := geom.Vec{X: 1, Y: 5, Z: 1}
	dir := geom.Vec{X: 0, Y: -1, Z: 0}
	if Blocked(tree, origin, dir, 100, func(*geom.Face) bool { return false }) {
		t.Fatal("expected no block when affects() always false")
	}
	if !Blocked(tree, origin, dir, 100, func(*geom.Face) bool { return true }) {
		t.Fatal("expected a block when affects() always true")
	}
}

func TestEmptyFacesProducesEmptyLeafRoot(t *testing.T) {
	tree := Build(nil)
	if len(tree.Nodes) != 1 || !tree.Nodes[0].isLeaf() {
		t.Fatal("expected single empty leaf root for empty input")
	}
	if _, ok := Closest(tree, geom.Vec{}, geom.Vec{X: 1}, 10); ok {
		t.Fatal("expected no hit against empty tree")
	}
}
