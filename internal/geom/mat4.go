package geom

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Mat4 is a 4x4 row-major homogeneous transform, backed by gonum's
// general-purpose dense matrix so inversion and multiplication reuse
// gonum's LU-decomposition solver instead of a hand-rolled cofactor
// expansion.
type Mat4 struct {
	m *mat.Dense
}

// Identity returns the 4x4 identity transform.
func Identity() Mat4 {
	d := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		d.Set(i, i, 1)
	}
	return Mat4{m: d}
}

// NewTRS builds a world transform from translation, per-axis scale and an
// orientation given as three orthonormal basis vectors (right, up, fwd).
// Non-uniform scale is applied before rotation, matching component
// placement in spec §3.
func NewTRS(translation Vec, scale Vec, right, up, fwd Vec) Mat4 {
	d := mat.NewDense(4, 4, nil)
	set := func(col int, v Vec, s float64) {
		d.Set(0, col, v.X*s)
		d.Set(1, col, v.Y*s)
		d.Set(2, col, v.Z*s)
	}
	set(0, right, scale.X)
	set(1, up, scale.Y)
	set(2, fwd, scale.Z)
	d.Set(0, 3, translation.X)
	d.Set(1, 3, translation.Y)
	d.Set(2, 3, translation.Z)
	d.Set(3, 3, 1)
	return Mat4{m: d}
}

// Inverse returns the algebraic inverse of m. Per spec §8 this must
// satisfy ||m.Mul(m.Inverse()) - I||_F <= 1e-6 for any component with
// non-identity scale.
func (m Mat4) Inverse() Mat4 {
	inv := mat.NewDense(4, 4, nil)
	if err := inv.Inverse(m.m); err != nil {
		// Degenerate transform (zero scale on some axis): fall back to
		// identity rather than propagating NaNs through the scene.
		return Identity()
	}
	return Mat4{m: inv}
}

// Mul returns m*other.
func (m Mat4) Mul(other Mat4) Mat4 {
	d := mat.NewDense(4, 4, nil)
	d.Mul(m.m, other.m)
	return Mat4{m: d}
}

// TransformPoint applies m to a point (w=1).
func (m Mat4) TransformPoint(p Vec) Vec {
	return Vec{
		X: m.m.At(0, 0)*p.X + m.m.At(0, 1)*p.Y + m.m.At(0, 2)*p.Z + m.m.At(0, 3),
		Y: m.m.At(1, 0)*p.X + m.m.At(1, 1)*p.Y + m.m.At(1, 2)*p.Z + m.m.At(1, 3),
		Z: m.m.At(2, 0)*p.X + m.m.At(2, 1)*p.Y + m.m.At(2, 2)*p.Z + m.m.At(2, 3),
	}
}

// TransformDirection applies the linear (non-translating) part of m to a
// direction vector.
func (m Mat4) TransformDirection(v Vec) Vec {
	return Vec{
		X: m.m.At(0, 0)*v.X + m.m.At(0, 1)*v.Y + m.m.At(0, 2)*v.Z,
		Y: m.m.At(1, 0)*v.X + m.m.At(1, 1)*v.Y + m.m.At(1, 2)*v.Z,
		Z: m.m.At(2, 0)*v.X + m.m.At(2, 1)*v.Y + m.m.At(2, 2)*v.Z,
	}
}

// FrobeniusDeviationFromIdentity returns ||m - I||_F, used by the §8
// invariant test for matrix/inverse round-tripping.
func (m Mat4) FrobeniusDeviationFromIdentity() float64 {
	var sum float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			diff := m.m.At(i, j) - want
			sum += diff * diff
		}
	}
	return math.Sqrt(sum)
}
