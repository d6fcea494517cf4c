package listener

import (
	"math"
	"testing"

	"github.com/resonantfield/auralcore/internal/geom"
	"github.com/resonantfield/auralcore/internal/material"
	"github.com/resonantfield/auralcore/internal/soundray"
)

func TestSphereRadius(t *testing.T) {
	if r := SphereRadius(0, 162); r != 0 {
		t.Fatalf("zero meanFreePath: got %v, want 0", r)
	}
	if r := SphereRadius(10, 0); r != 0 {
		t.Fatalf("zero rayCount: got %v, want 0", r)
	}

	got := SphereRadius(6.67, 162)
	want := 6.67 * math.Sqrt(2*math.Pi/162)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("SphereRadius = %v, want %v", got, want)
	}
}

func TestGatherSegment_HitsWithinRadius(t *testing.T) {
	seg := soundray.Segment{
		Origin:      geom.Vec{X: -5, Y: 0, Z: 0},
		Direction:   geom.Vec{X: 1, Y: 0, Z: 0},
		Length:      10,
		PathLength:  5,
		GainOnEntry: material.Bands{0.5, 0.5, 0.5},
		Bounce:      1,
	}
	listener := geom.Vec{X: 0.02, Y: 0, Z: 0}

	imp, ok := gatherSegment(seg, listener, 0.1, 343)
	if !ok {
		t.Fatal("expected a hit within radius")
	}
	if imp.Bounce != 1 {
		t.Fatalf("Bounce = %d, want 1", imp.Bounce)
	}
	if imp.Gain[material.Low] <= 0 {
		t.Fatalf("expected nonzero gain, got %v", imp.Gain)
	}
}

func TestGatherSegment_OutsideRadius(t *testing.T) {
	seg := soundray.Segment{
		Origin:    geom.Vec{X: -5, Y: 0, Z: 0},
		Direction: geom.Vec{X: 1, Y: 0, Z: 0},
		Length:    10,
	}
	listener := geom.Vec{X: 0, Y: 5, Z: 0}

	if _, ok := gatherSegment(seg, listener, 0.1, 343); ok {
		t.Fatal("expected a miss: listener far outside radius")
	}
}

func TestGatherSegment_OutsideParametricRange(t *testing.T) {
	seg := soundray.Segment{
		Origin:    geom.Vec{X: 0, Y: 0, Z: 0},
		Direction: geom.Vec{X: 1, Y: 0, Z: 0},
		Length:    2,
	}
	listener := geom.Vec{X: 10, Y: 0, Z: 0}

	if _, ok := gatherSegment(seg, listener, 0.1, 343); ok {
		t.Fatal("expected a miss: closest point beyond segment length")
	}

	behind := geom.Vec{X: -10, Y: 0, Z: 0}
	if _, ok := gatherSegment(seg, behind, 0.1, 343); ok {
		t.Fatal("expected a miss: closest point before segment origin")
	}
}

func buildTwoBounceList() *soundray.List {
	list := soundray.New()
	ray := list.AddRootRay(geom.Vec{}, geom.Vec{X: 1}, material.Bands{1, 1, 1})

	list.AddSegment(ray, soundray.Segment{
		Origin:      geom.Vec{X: -5, Y: 0, Z: 0},
		Direction:   geom.Vec{X: 1, Y: 0, Z: 0},
		Length:      10,
		PathLength:  0,
		GainOnEntry: material.Bands{1, 1, 1},
		Bounce:      0,
	})
	list.AddSegment(ray, soundray.Segment{
		Origin:      geom.Vec{X: -5, Y: 0.01, Z: 0},
		Direction:   geom.Vec{X: 1, Y: 0, Z: 0},
		Length:      10,
		PathLength:  5,
		GainOnEntry: material.Bands{0.6, 0.5, 0.4},
		Bounce:      1,
	})
	list.AddSegment(ray, soundray.Segment{
		Origin:      geom.Vec{X: -5, Y: -0.01, Z: 0},
		Direction:   geom.Vec{X: 1, Y: 0, Z: 0},
		Length:      10,
		PathLength:  12,
		GainOnEntry: material.Bands{0.3, 0.25, 0.2},
		Bounce:      2,
	})
	return list
}

func TestGather_BucketsByBounce(t *testing.T) {
	list := buildTwoBounceList()
	acc := Gather(list, geom.Vec{}, 6.67, 162, 343)

	if !acc.HasReflection {
		t.Fatal("expected a first-bounce impulse to be gathered")
	}
	if !acc.HasReverberation {
		t.Fatal("expected a later-bounce impulse to be gathered")
	}
	if acc.ReflectedGain.Max() <= 0 {
		t.Fatalf("ReflectedGain = %v, want nonzero", acc.ReflectedGain)
	}
	if acc.ReverberationGain.Max() <= 0 {
		t.Fatalf("ReverberationGain = %v, want nonzero", acc.ReverberationGain)
	}
	if acc.ReverberationDelay < acc.ReflectionDelay+1e-3-1e-12 {
		t.Fatalf("ReverberationDelay %v not floored at ReflectionDelay+1ms (%v)",
			acc.ReverberationDelay, acc.ReflectionDelay+1e-3)
	}
}

func TestGather_ZeroMeanFreePathSkipsGathering(t *testing.T) {
	list := buildTwoBounceList()
	acc := Gather(list, geom.Vec{}, 0, 162, 343)

	if acc.HasReflection || acc.HasReverberation {
		t.Fatal("expected no gathered impulses when meanFreePath is zero")
	}
}
