package probe

import (
	"context"
	"math"
	"testing"

	"github.com/resonantfield/auralcore/internal/component"
	"github.com/resonantfield/auralcore/internal/geom"
	"github.com/resonantfield/auralcore/internal/material"
	"github.com/resonantfield/auralcore/internal/soundray"
	"github.com/resonantfield/auralcore/internal/worldbvh"
)

func TestTraceSoundRaysRecordsFirstHitTotals(t *testing.T) {
	c := floorComponent(t, material.Bands{0.3, 0.3, 0.3})
	listenerPos := geom.Vec{X: 0, Y: 5, Z: 0}
	tree := worldbvh.Build(listenerPos, []*component.Component{c})

	list := soundray.New()
	cfg := DefaultConfig()
	res := TraceSoundRays(context.Background(), tree, geom.Vec{}, geom.Vec{X: 0, Y: -1, Z: 0}, cfg, list)

	if !res.Hit {
		t.Fatal("expected the first-hit room totals to be recorded")
	}
	if math.Abs(res.RoomVolume-125) > 1e-6 {
		t.Errorf("expected roomVolume 125, got %v", res.RoomVolume)
	}
	if len(list.SegmentsOf(res.RootRay)) == 0 {
		t.Fatal("expected at least one recorded segment")
	}
}

func TestTraceSoundRaysMissMarksOutside(t *testing.T) {
	tree := worldbvh.Build(geom.Vec{}, nil)
	list := soundray.New()
	cfg := DefaultConfig()
	res := TraceSoundRays(context.Background(), tree, geom.Vec{}, geom.Vec{X: 0, Y: -1, Z: 0}, cfg, list)

	if res.Hit {
		t.Fatal("expected no first hit in an empty world")
	}
	if !list.Rays[res.RootRay].Outside {
		t.Fatal("expected a ray through empty space to be marked outside")
	}
}

func TestTraceSoundRaysRespectsCancellation(t *testing.T) {
	c := floorComponent(t, material.Bands{0.01, 0.01, 0.01})
	listenerPos := geom.Vec{X: 0, Y: 5, Z: 0}
	tree := worldbvh.Build(listenerPos, []*component.Component{c})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	list := soundray.New()
	res := TraceSoundRays(ctx, tree, geom.Vec{}, geom.Vec{X: 0, Y: -1, Z: 0}, DefaultConfig(), list)
	if !res.Cancelled {
		t.Fatal("expected a pre-cancelled context to mark the trace cancelled")
	}
}

func TestCastStepwiseFindsHitPastFirstStride(t *testing.T) {
	c := floorComponent(t, material.Bands{0.3, 0.3, 0.3})
	listenerPos := geom.Vec{X: 0, Y: 25, Z: 0} // farther than the default initial stride (10m)
	tree := worldbvh.Build(listenerPos, []*component.Component{c})

	cfg := DefaultConfig()
	hit, ok := castStepwise(tree, geom.Vec{}, geom.Vec{X: 0, Y: -1, Z: 0}, cfg.Range, cfg)
	if !ok {
		t.Fatal("expected the doubling cast to eventually find the floor")
	}
	if math.Abs(hit.Distance-25) > 1e-6 {
		t.Errorf("expected hit distance 25, got %v", hit.Distance)
	}
}
