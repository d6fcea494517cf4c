package probe

import (
	"math"

	"github.com/resonantfield/auralcore/internal/geom"
)

// FibonacciSphere returns n unit directions distributed evenly over
// the sphere via the spherical Fibonacci lattice (spec §4.4: "N
// pre-generated unit directions (spherical Fibonacci distribution)").
// For n<=0 it returns nil, matching spec §8's "a probe with rayCount=0
// produces all-zero reverb output".
func FibonacciSphere(n int) []geom.Vec {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []geom.Vec{{X: 0, Y: 1, Z: 0}}
	}

	dirs := make([]geom.Vec, n)
	goldenAngle := math.Pi * (3 - math.Sqrt(5))
	last := float64(n - 1)
	for i := 0; i < n; i++ {
		y := 1 - 2*float64(i)/last
		radius := math.Sqrt(math.Max(0, 1-y*y))
		theta := goldenAngle * float64(i)
		dirs[i] = geom.Vec{
			X: math.Cos(theta) * radius,
			Y: y,
			Z: math.Sin(theta) * radius,
		}
	}
	return dirs
}
