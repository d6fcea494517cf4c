package geom

// Hit describes a ray/face intersection.
type Hit struct {
	Distance float64
	Point    Vec
	Front    bool // true if the ray opposes the face normal (dot(n,d) < 0)
	Face     *Face
}

// Intersect performs the plane-then-edge test of spec §4.2 against a
// single face. origin/dir describe the ray (dir need not be unit length
// for this test; distance is reported in units of dir). limit bounds the
// accepted parametric distance. A parallel ray (|n.d| < Epsilon) never
// hits (spec §8 boundary behavior), and a degenerate face never hits
// (spec §7).
func (f *Face) Intersect(origin, dir Vec, limit float64) (Hit, bool) {
	if f.Degenerate {
		return Hit{}, false
	}

	dot := Dot(f.Normal, dir)
	if dot > -Epsilon && dot < Epsilon {
		return Hit{}, false
	}

	lambda := Dot(Sub(f.Vertices[0], origin), f.Normal) / dot
	if lambda < 0 || lambda > limit {
		return Hit{}, false
	}

	p := Add(origin, Scale(lambda, dir))

	for i := 0; i < 3; i++ {
		if Dot(f.EdgeNormal[i], p) < f.EdgeSafeDistance[i] {
			return Hit{}, false
		}
	}

	return Hit{
		Distance: lambda,
		Point:    p,
		Front:    dot < 0,
		Face:     f,
	}, true
}
