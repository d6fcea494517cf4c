package probe

import (
	"math"
	"testing"

	"github.com/resonantfield/auralcore/internal/component"
	"github.com/resonantfield/auralcore/internal/geom"
	"github.com/resonantfield/auralcore/internal/material"
	"github.com/resonantfield/auralcore/internal/worldbvh"
)

func floorComponent(t *testing.T, absorption material.Bands) *component.Component {
	t.Helper()
	faces := []geom.Face{
		geom.NewFace(
			geom.Vec{X: -5, Y: 0, Z: -5},
			geom.Vec{X: -5, Y: 0, Z: 5},
			geom.Vec{X: 5, Y: 0, Z: -5},
			0, 0,
		),
		geom.NewFace(
			geom.Vec{X: 5, Y: 0, Z: -5},
			geom.Vec{X: -5, Y: 0, Z: 5},
			geom.Vec{X: 5, Y: 0, Z: 5},
			1, 0,
		),
	}
	coeff := material.Coefficients{Absorption: absorption, Thickness: material.Bands{1, 1, 1}}
	model := component.NewModel("floor", faces, []component.Texture{component.NewTexture("floor", coeff)})
	return component.NewComponent(model, geom.Vec{}, geom.Vec{X: 1, Y: 1, Z: 1},
		geom.Vec{X: 1}, geom.Vec{Y: 1}, geom.Vec{Z: 1}, 1)
}

func TestRoomEstimateNoHit(t *testing.T) {
	tree := worldbvh.Build(geom.Vec{}, nil)
	s := RoomEstimate(tree, geom.Vec{}, geom.Vec{X: 0, Y: -1, Z: 0}, DefaultConfig())
	if s.Hit {
		t.Fatal("expected no hit against an empty world")
	}
}

func TestRoomEstimateHitComputesTotals(t *testing.T) {
	c := floorComponent(t, material.Bands{0.3, 0.3, 0.3})
	listenerPos := geom.Vec{X: 0, Y: 5, Z: 0}
	tree := worldbvh.Build(listenerPos, []*component.Component{c})

	cfg := DefaultConfig()
	s := RoomEstimate(tree, geom.Vec{}, geom.Vec{X: 0, Y: -1, Z: 0}, cfg)
	if !s.Hit {
		t.Fatal("expected a hit straight down onto the floor")
	}
	if math.Abs(s.RoomVolume-125) > 1e-6 {
		t.Errorf("expected roomVolume 5^3=125, got %v", s.RoomVolume)
	}
	// Straight-down ray onto an upward-facing floor: cosOut = 1, so the
	// grazing term vanishes and roomSurface reduces to d^2.
	if math.Abs(s.RoomSurface-25) > 1e-6 {
		t.Errorf("expected roomSurface 25, got %v", s.RoomSurface)
	}
	wantSabine := s.RoomSurface * 0.3
	if math.Abs(s.Sabine[material.Low]-wantSabine) > 1e-6 {
		t.Errorf("expected sabine_low %v, got %v", wantSabine, s.Sabine[material.Low])
	}
}

func TestRoomEstimateFinishTreatsMissesAsFullAbsorption(t *testing.T) {
	cfg := DefaultConfig()
	samples := []RoomEstimateSample{
		{}, // miss
		{}, // miss
	}
	res := RoomEstimateFinish(samples, cfg)
	for b := 0; b < material.NumBands; b++ {
		if math.Abs(res.AvgAbsorption[b]-1) > 1e-9 {
			t.Errorf("expected avgAbsorption band %d = 1 for an all-miss probe, got %v", b, res.AvgAbsorption[b])
		}
	}
	if res.HitCount != 0 {
		t.Errorf("expected hitCount 0, got %d", res.HitCount)
	}
}

func TestRoomEstimateFinishEmptyIsZero(t *testing.T) {
	res := RoomEstimateFinish(nil, DefaultConfig())
	if res.RayCount != 0 || res.RoomVolume != 0 || res.MeanFreePath != 0 {
		t.Fatalf("expected all-zero result for an empty sample set, got %+v", res)
	}
}

func TestEyringT60ClampedRange(t *testing.T) {
	cfg := DefaultConfig()
	t60 := eyringT60(1000, material.Bands{60, 60, 60}, cfg)
	for b := 0; b < material.NumBands; b++ {
		if t60[b] < 0.1 || t60[b] > 20 {
			t.Errorf("band %d T60 %v out of [0.1,20]", b, t60[b])
		}
	}
	// Roughly matches spec §8 scenario 3: T60 ~ 0.1611*1000/60 ~ 2.68s.
	if math.Abs(t60[material.Low]-2.685) > 0.05 {
		t.Errorf("expected T60 near 2.685s, got %v", t60[material.Low])
	}
}
