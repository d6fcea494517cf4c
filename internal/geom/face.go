package geom

// Face is a precomputed triangle: plane normal, three inward edge
// normals with their plane distances, and the "safe" distances used to
// make near-edge ray tests deterministic (spec §3, §4.1, §8).
//
// Faces are immutable after construction. A skinned component rebuilds
// its Faces (and BVH) each frame rather than mutating one in place.
type Face struct {
	Vertices [3]Vec

	Normal Vec

	// EdgeNormal[i] is the in-plane inward normal of the edge running
	// from Vertices[i] to Vertices[(i+1)%3].
	EdgeNormal [3]Vec
	// EdgeDistance[i] = EdgeNormal[i] . Vertices[i].
	EdgeDistance [3]float64
	// EdgeSafeDistance[i] = EdgeDistance[i] - SafeMargin.
	EdgeSafeDistance [3]float64

	// SourceFaceIndex is the index of this face in the model's original
	// (unreorganized) triangle array.
	SourceFaceIndex int
	// TextureIndex selects the component texture/material slot.
	TextureIndex int

	// Degenerate marks a zero-area or NaN-vertex triangle (spec §7): it
	// is kept in the array (so indices stay stable) but never hits.
	Degenerate bool
}

// NewFace builds a Face from three vertices in winding order, computing
// the plane normal and the three edge-normal/distance pairs.
func NewFace(v0, v1, v2 Vec, sourceFaceIndex, textureIndex int) Face {
	f := Face{
		Vertices:        [3]Vec{v0, v1, v2},
		SourceFaceIndex: sourceFaceIndex,
		TextureIndex:    textureIndex,
	}

	e1 := Sub(v1, v0)
	e2 := Sub(v2, v0)
	n := Cross(e1, e2)
	area := Norm(n)
	if area < Epsilon || hasNaN(v0) || hasNaN(v1) || hasNaN(v2) {
		f.Degenerate = true
		return f
	}
	f.Normal = Scale(1/area, n)

	verts := f.Vertices
	for i := 0; i < 3; i++ {
		a := verts[i]
		b := verts[(i+1)%3]
		opposite := verts[(i+2)%3]

		edge := Sub(b, a)
		candidate := Cross(f.Normal, edge)
		if Norm(candidate) < Epsilon {
			f.Degenerate = true
			continue
		}
		candidate = Normalize(candidate)
		// Orient inward: candidate must point towards the opposite vertex.
		if Dot(candidate, Sub(opposite, a)) < 0 {
			candidate = Scale(-1, candidate)
		}
		f.EdgeNormal[i] = candidate
		dist := Dot(candidate, a)
		f.EdgeDistance[i] = dist
		f.EdgeSafeDistance[i] = dist - SafeMargin
	}
	return f
}

func hasNaN(v Vec) bool {
	return v.X != v.X || v.Y != v.Y || v.Z != v.Z
}

// AABB returns the face's bounding box.
func (f Face) AABB() AABB {
	return UnionPoints(f.Vertices[0], f.Vertices[1], f.Vertices[2])
}

// Centroid returns the arithmetic mean of the face's vertices, used as
// the BVH split key (spec §4.1).
func (f Face) Centroid() Vec {
	return Scale(1.0/3.0, Add(Add(f.Vertices[0], f.Vertices[1]), f.Vertices[2]))
}
