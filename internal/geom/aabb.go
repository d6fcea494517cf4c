package geom

import "math"

// AABB is an axis-aligned bounding box, stored as center+half-size so BVH
// nodes (spec §4.1, §4.3) can test and union without repeated min/max
// reconstruction.
type AABB struct {
	Center   Vec
	HalfSize Vec
}

// AABBFromMinMax builds an AABB from its corner points.
func AABBFromMinMax(min, max Vec) AABB {
	return AABB{
		Center:   Scale(0.5, Add(min, max)),
		HalfSize: Scale(0.5, Sub(max, min)),
	}
}

// Min returns the box's minimum corner.
func (b AABB) Min() Vec { return Sub(b.Center, b.HalfSize) }

// Max returns the box's maximum corner.
func (b AABB) Max() Vec { return Add(b.Center, b.HalfSize) }

// Union returns the smallest AABB containing both b and other.
func (b AABB) Union(other AABB) AABB {
	return AABBFromMinMax(Min(b.Min(), other.Min()), Max(b.Max(), other.Max()))
}

// Contains reports whether b fully contains other (used by the §8
// "every BVH node's box contains its children's boxes" invariant).
func (b AABB) Contains(other AABB) bool {
	bmin, bmax := b.Min(), b.Max()
	omin, omax := other.Min(), other.Max()
	return bmin.X <= omin.X+Epsilon && bmin.Y <= omin.Y+Epsilon && bmin.Z <= omin.Z+Epsilon &&
		bmax.X >= omax.X-Epsilon && bmax.Y >= omax.Y-Epsilon && bmax.Z >= omax.Z-Epsilon
}

// UnionPoints grows an AABB (or, if n==0, initializes one) to contain pts.
func UnionPoints(pts ...Vec) AABB {
	if len(pts) == 0 {
		return AABB{}
	}
	min, max := pts[0], pts[0]
	for _, p := range pts[1:] {
		min = Min(min, p)
		max = Max(max, p)
	}
	return AABBFromMinMax(min, max)
}

// IntersectRay performs the standard slab test against a ray with
// precomputed inverse direction (spec §4.2). tMax bounds the ray length.
// An axis where the direction component is ~0 is skipped by giving its
// inverse a zero value, per spec's "guard per axis" rule.
func (b AABB) IntersectRay(origin, invDir Vec, tMax float64) bool {
	tmin, tmax := 0.0, tMax

	test := func(o, invd, c, h float64) bool {
		if invd == 0 {
			// Ray parallel to this axis: only a hit if origin lies
			// within the slab: miss otherwise.
			return o >= c-h && o <= c+h
		}
		t1 := (c - h - o) * invd
		t2 := (c + h - o) * invd
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		return tmin <= tmax
	}

	if !test(origin.X, invDir.X, b.Center.X, b.HalfSize.X) {
		return false
	}
	if !test(origin.Y, invDir.Y, b.Center.Y, b.HalfSize.Y) {
		return false
	}
	if !test(origin.Z, invDir.Z, b.Center.Z, b.HalfSize.Z) {
		return false
	}
	return tmin <= tmax && tmin <= tMax && tmax >= 0
}

// InvDir computes the per-axis inverse of a ray direction, zeroing any
// axis whose component is effectively zero (spec §4.2).
func InvDir(d Vec) Vec {
	inv := func(x float64) float64 {
		if math.Abs(x) < Epsilon {
			return 0
		}
		return 1 / x
	}
	return Vec{X: inv(d.X), Y: inv(d.Y), Z: inv(d.Z)}
}
