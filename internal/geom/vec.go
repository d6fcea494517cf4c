// Package geom provides the vector, matrix and triangle primitives shared
// by the BVH, ray-cache and probe packages.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec is a 3D vector. It is a plain alias of gonum's r3.Vec so geometry
// code composes with gonum's own vector helpers (r3.Add, r3.Dot, ...)
// without a wrapper type getting in the way.
type Vec = r3.Vec

// Epsilon is the default tolerance used for facing/parallel tests.
const Epsilon = 1e-8

// SafeMargin is subtracted from each edge-plane distance to give
// EdgeSafeDistance, so a hit point up to SafeMargin outside an edge
// still counts as inside and near-edge hits resolve deterministically
// (spec §3, §8).
const SafeMargin = 1e-5

// Add returns a+b.
func Add(a, b Vec) Vec { return r3.Add(a, b) }

// Sub returns a-b.
func Sub(a, b Vec) Vec { return r3.Sub(a, b) }

// Scale returns v scaled by s.
func Scale(s float64, v Vec) Vec { return r3.Scale(s, v) }

// Dot returns a·b.
func Dot(a, b Vec) float64 { return r3.Dot(a, b) }

// Cross returns a×b.
func Cross(a, b Vec) Vec { return r3.Cross(a, b) }

// Norm returns the Euclidean length of v.
func Norm(v Vec) float64 { return r3.Norm(v) }

// Normalize returns v scaled to unit length. The zero vector is returned
// unchanged rather than producing NaNs.
func Normalize(v Vec) Vec {
	n := Norm(v)
	if n < Epsilon {
		return v
	}
	return Scale(1/n, v)
}

// Reflect reflects direction d off a surface with unit normal n:
// d' = d - 2*(d.n)*n. Reflecting twice across the same plane recovers d
// (spec §8 round-trip law).
func Reflect(d, n Vec) Vec {
	return Sub(d, Scale(2*Dot(d, n), n))
}

// Lerp linearly interpolates between a and b by t in [0,1].
func Lerp(a, b Vec, t float64) Vec {
	return Add(Scale(1-t, a), Scale(t, b))
}

// Min returns the component-wise minimum of a and b.
func Min(a, b Vec) Vec {
	return Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

// Max returns the component-wise maximum of a and b.
func Max(a, b Vec) Vec {
	return Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

// Component returns the value of v along axis (0=X, 1=Y, 2=Z).
func Component(v Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// LinearStep mirrors the GLSL-style smoothstep's linear cousin used by
// spec §3/§4.4 for transmission falloff: for x<=lo returns outLo, for
// x>=hi returns outHi, linear between.
func LinearStep(x, lo, hi, outLo, outHi float64) float64 {
	if hi <= lo {
		if x <= lo {
			return outLo
		}
		return outHi
	}
	t := (x - lo) / (hi - lo)
	if t <= 0 {
		return outLo
	}
	if t >= 1 {
		return outHi
	}
	return outLo + t*(outHi-outLo)
}
